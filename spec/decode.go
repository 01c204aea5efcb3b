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

package spec

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/reellab/errs"
)

// GetGameSettingByYAML 由 YAML bytes 解出設定並完成 Init 驗證。
func GetGameSettingByYAML(raw []byte) (*GameSetting, error) {
	if len(raw) == 0 {
		return nil, errs.NewFatal("empty yaml config")
	}
	gs := new(GameSetting)
	if err := yaml.Unmarshal(raw, gs); err != nil {
		return nil, errs.Wrap(err, "yaml config unmarshal failed")
	}
	if err := gs.Init(); err != nil {
		return nil, err
	}
	return gs, nil
}

// GetGameSettingByJSON 由 JSON bytes 解出設定並完成 Init 驗證。
func GetGameSettingByJSON(raw []byte) (*GameSetting, error) {
	if len(raw) == 0 {
		return nil, errs.NewFatal("empty json config")
	}
	gs := new(GameSetting)
	if err := json.Unmarshal(raw, gs); err != nil {
		return nil, errs.Wrap(err, "json config unmarshal failed")
	}
	if err := gs.Init(); err != nil {
		return nil, err
	}
	return gs, nil
}
