// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package games 彙整內建遊戲：設定檔 FS 與邏輯 registry 的單一入口。
package games

import (
	"io/fs"

	"github.com/zintix-labs/reellab/games/configs"
	"github.com/zintix-labs/reellab/games/lines"
	"github.com/zintix-labs/reellab/sdk/slot"
)

// ConfigFS 回傳內建設定檔的 flat FS。
func ConfigFS() fs.FS { return configs.FS }

// Registry 回傳內建邏輯的 registry。
func Registry() (*slot.LogicRegistry, error) {
	return lines.Registry()
}

// Names 內建遊戲名稱（與設定檔的 game_name 一致）。
func Names() []string {
	return []string{"jewel_rush", "golden_reef"}
}
