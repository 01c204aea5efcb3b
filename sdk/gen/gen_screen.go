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

// Package gen 負責由轉輪帶生成盤面。
package gen

import (
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/spec"
)

// ReelSpinner 以物理帶模型生成盤面：
// 每輪均勻抽一個停點，從停點起連續取 Rows 個符號（帶尾回繞帶頭）。
//
// 盤面與停點 buffer 內部重用，Spin 之間內容會被覆寫；
// 需要保留的呼叫端要自行拷貝。非並行安全，一台機台一個 spinner。
type ReelSpinner struct {
	strips  [][]int16
	columns int
	rows    int

	screen []int16 // row-major, len = columns*rows
	stops  []int16 // len = columns
}

// NewReelSpinner 由已驗證的設定建 spinner。
func NewReelSpinner(gs *spec.GameSetting) (*ReelSpinner, error) {
	if gs == nil {
		return nil, errs.NewFatal("reel spinner: nil game setting")
	}
	strips := gs.Reels.StripIDs()
	if len(strips) != gs.Screen.Columns {
		return nil, errs.NewFatal("reel spinner: strips do not match screen columns")
	}
	return &ReelSpinner{
		strips:  strips,
		columns: gs.Screen.Columns,
		rows:    gs.Screen.Rows,
		screen:  make([]int16, gs.Screen.Size()),
		stops:   make([]int16, gs.Screen.Columns),
	}, nil
}

// Spin 抽一次盤面。回傳的 screen/stops 都指向內部 buffer。
func (sp *ReelSpinner) Spin(c *core.Core) (screen []int16, stops []int16) {
	for col := 0; col < sp.columns; col++ {
		strip := sp.strips[col]
		stop := c.IntN(len(strip))
		sp.stops[col] = int16(stop)
		for row := 0; row < sp.rows; row++ {
			idx := stop + row
			if idx >= len(strip) {
				idx -= len(strip)
			}
			sp.screen[row*sp.columns+col] = strip[idx]
		}
	}
	return sp.screen, sp.stops
}

// Columns/Rows/ScreenSize 提供上層佈局資訊。
func (sp *ReelSpinner) Columns() int    { return sp.columns }
func (sp *ReelSpinner) Rows() int       { return sp.rows }
func (sp *ReelSpinner) ScreenSize() int { return sp.columns * sp.rows }

// StripLen 回傳第 col 輪帶長。
func (sp *ReelSpinner) StripLen(col int) int { return len(sp.strips[col]) }
