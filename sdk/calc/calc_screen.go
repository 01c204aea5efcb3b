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

// Package calc 負責盤面算分：線型連線與分散符號計數。
package calc

import (
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/spec"
)

// LineWin 單條線的中獎明細。
type LineWin struct {
	Line   int   // 線表索引
	Symbol int16 // 賠付符號（全百搭時為百搭本身）
	Count  int   // 連線長度
	Pay    int   // 贏分（line-bet 單位，未乘任何模式倍數）
}

// ScreenCalculator 持有算分需要的唯讀模型資料。非並行安全。
type ScreenCalculator struct {
	sym      *spec.SymbolSetting
	lineFlat []int16
	lines    int
	columns  int
	size     int
}

func NewScreenCalculator(gs *spec.GameSetting) (*ScreenCalculator, error) {
	if gs == nil {
		return nil, errs.NewFatal("screen calculator: nil game setting")
	}
	return &ScreenCalculator{
		sym:      &gs.Symbols,
		lineFlat: gs.Lines.Flat(),
		lines:    gs.Lines.Count(),
		columns:  gs.Screen.Columns,
		size:     gs.Screen.Size(),
	}, nil
}

// EvalLines 對盤面算所有線，逐線中獎明細 append 到 out（可傳入重用的切片），
// 回傳更新後的 out 與線贏分合計（line-bet 單位）。
//
// 單線規則（左起連續）：
//   - 分散符號不走線：計連在它出現處截止，也不被百搭替代。
//   - 前綴百搭沿用第一個非百搭賠付符號；全百搭算百搭自己的賠付列。
//   - 同一條線只取最高的一種解讀：前綴百搭當獨立連線
//     vs 百搭併入替代連線，兩者取賠付較高者（同分取替代連線）。
//   - 未達 MinRun 的連線賠 0，不產生明細。
func (sc *ScreenCalculator) EvalLines(screen []int16, out []LineWin) ([]LineWin, int) {
	total := 0
	for li := 0; li < sc.lines; li++ {
		win, ok := sc.evalLine(screen, li)
		if !ok {
			continue
		}
		out = append(out, win)
		total += win.Pay
	}
	return out, total
}

func (sc *ScreenCalculator) evalLine(screen []int16, li int) (LineWin, bool) {
	line := sc.lineFlat[li*sc.columns : (li+1)*sc.columns]
	wild := sc.sym.WildID()

	// 前綴百搭長度
	wl := 0
	for wl < sc.columns && screen[line[wl]] == wild {
		wl++
	}

	// 全百搭：算百搭自己的賠付列
	if wl == sc.columns {
		pay := sc.sym.Pay(wild, wl)
		if pay == 0 {
			return LineWin{}, false
		}
		return LineWin{Line: li, Symbol: wild, Count: wl, Pay: pay}, true
	}

	first := screen[line[wl]]

	// 替代連線：first 為賠付符號時，從頭數 first/百搭的連續長度。
	// first 是分散時沒有替代解讀，只剩前綴百搭自成一線。
	subPay, subCount := 0, 0
	if !sc.sym.IsScatter(first) {
		count := wl
		for i := wl; i < sc.columns; i++ {
			s := screen[line[i]]
			if s == first || s == wild {
				count++
				continue
			}
			break
		}
		subPay = sc.sym.Pay(first, count)
		subCount = count
	}

	wildPay := sc.sym.Pay(wild, wl)

	switch {
	case subPay == 0 && wildPay == 0:
		return LineWin{}, false
	case wildPay > subPay:
		return LineWin{Line: li, Symbol: wild, Count: wl, Pay: wildPay}, true
	default:
		return LineWin{Line: li, Symbol: first, Count: subCount, Pay: subPay}, true
	}
}

// CountScatters 全盤計數分散符號。
func (sc *ScreenCalculator) CountScatters(screen []int16) int {
	scatter := sc.sym.ScatterID()
	n := 0
	for _, s := range screen[:sc.size] {
		if s == scatter {
			n++
		}
	}
	return n
}

// Lines 線數。
func (sc *ScreenCalculator) Lines() int { return sc.lines }
