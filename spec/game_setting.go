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

// Package spec 定義遊戲數學模型的設定結構。
//
// 一份 GameSetting 完整描述一款線型老虎機：盤面尺寸、符號與賠付表、
// 轉輪帶、中獎線、分散符號獎勵 / 免費遊戲規則、以及調機目標。
// 設定由 YAML/JSON 載入，Init 做一次性驗證與衍生資料展開；
// 驗證失敗一律是 Fatal（設定錯誤沒有帶病運轉的空間）。
package spec

import (
	"fmt"

	"github.com/zintix-labs/reellab/errs"
)

// GID 遊戲編號。
type GID uint32

// LogicKey 指定這份設定要掛到哪個遊戲邏輯（registry 的 key）。
type LogicKey string

// GameSetting 是一款遊戲的完整數學模型設定。
type GameSetting struct {
	GameName string   `yaml:"game_name" json:"game_name"`
	GameID   GID      `yaml:"game_id" json:"game_id"`
	LogicKey LogicKey `yaml:"logic_key" json:"logic_key"`

	Screen  ScreenSetting `yaml:"screen" json:"screen"`
	Symbols SymbolSetting `yaml:"symbols" json:"symbols"`
	Reels   ReelSetting   `yaml:"reels" json:"reels"`
	Lines   LineSetting   `yaml:"paylines" json:"paylines"`
	Bonus   BonusSetting  `yaml:"bonus" json:"bonus"`
	Tune    TuneSetting   `yaml:"tune" json:"tune"`
}

// Init 依依賴順序初始化所有子設定並做交叉驗證。
// 載入器（catalog / decode）在回傳設定前必須呼叫過一次。
func (gs *GameSetting) Init() error {
	if gs.GameName == "" {
		return errs.NewFatal("game setting: empty game_name")
	}
	if gs.GameID == 0 {
		return errs.NewFatal(fmt.Sprintf("game setting %q: game_id must be > 0", gs.GameName))
	}
	if gs.LogicKey == "" {
		return errs.NewFatal(fmt.Sprintf("game setting %q: empty logic_key", gs.GameName))
	}

	if err := gs.Screen.Init(); err != nil {
		return errs.Wrap(err, fmt.Sprintf("game %q screen", gs.GameName))
	}
	if err := gs.Symbols.Init(gs.Screen.Columns); err != nil {
		return errs.Wrap(err, fmt.Sprintf("game %q symbols", gs.GameName))
	}
	if err := gs.Reels.Init(gs.Screen.Columns, gs.Screen.Rows, &gs.Symbols); err != nil {
		return errs.Wrap(err, fmt.Sprintf("game %q reels", gs.GameName))
	}
	if err := gs.Lines.Init(gs.Screen.Columns, gs.Screen.Rows); err != nil {
		return errs.Wrap(err, fmt.Sprintf("game %q paylines", gs.GameName))
	}
	if err := gs.Bonus.Init(gs.Screen.Columns * gs.Screen.Rows); err != nil {
		return errs.Wrap(err, fmt.Sprintf("game %q bonus", gs.GameName))
	}
	if err := gs.Tune.Init(); err != nil {
		return errs.Wrap(err, fmt.Sprintf("game %q tune", gs.GameName))
	}
	return nil
}

// CloneWithStrips 以指定的轉輪帶（符號 ID 形式）複製出一份新設定並重新 Init。
// 調機器每輪變異都走這裡，保證候選設定跟正式載入走完全相同的驗證。
func (gs *GameSetting) CloneWithStrips(strips [][]int16) (*GameSetting, error) {
	cp := *gs

	names := make([][]string, len(strips))
	for col, strip := range strips {
		names[col] = make([]string, len(strip))
		for i, id := range strip {
			name := gs.Symbols.Name(id)
			if name == "" {
				return nil, errs.NewFatal(fmt.Sprintf("clone strips: unknown symbol id %d", id))
			}
			names[col][i] = name
		}
	}
	cp.Reels = ReelSetting{Strips: names}

	if err := cp.Init(); err != nil {
		return nil, err
	}
	return &cp, nil
}
