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

package calc

import (
	"testing"

	"github.com/zintix-labs/reellab/spec"
)

// 測試用符號：W 百搭、S 分散、H1 高賠、L1 低賠。
// 盤面 5x3，單一中線 + 上線，方便手算。
func testCalc(t *testing.T) (*ScreenCalculator, *spec.GameSetting) {
	t.Helper()
	gs := &spec.GameSetting{
		GameName: "calc_game",
		GameID:   1,
		LogicKey: "lines20",
		Screen:   spec.ScreenSetting{Columns: 5, Rows: 3},
		Symbols: spec.SymbolSetting{
			Names:   []string{"W", "S", "H1", "L1"},
			Wild:    "W",
			Scatter: "S",
			PayTable: map[string][]int{
				"W":  {50, 200, 1000},
				"H1": {30, 100, 500},
				"L1": {10, 30, 100},
			},
		},
		Reels: spec.ReelSetting{
			Strips: [][]string{
				{"W", "S", "H1"}, {"W", "S", "H1"}, {"W", "S", "H1"},
				{"W", "S", "H1"}, {"W", "S", "H1"},
			},
		},
		Lines: spec.LineSetting{
			Lines: [][]int{
				{1, 1, 1, 1, 1}, // line 0: 中列
				{0, 0, 0, 0, 0}, // line 1: 上列
			},
		},
		Bonus: spec.BonusSetting{
			ScatterPays: map[int]int{3: 5, 4: 20, 5: 100},
			FreeSpins:   map[int]int{3: 10, 4: 15, 5: 25},
		},
		Tune: spec.TuneSetting{TargetRTP: 0.96},
	}
	if err := gs.Init(); err != nil {
		t.Fatalf("setting init: %v", err)
	}
	sc, err := NewScreenCalculator(gs)
	if err != nil {
		t.Fatal(err)
	}
	return sc, gs
}

// screenOf 以符號名稱組盤面，rows[r] 為第 r 列的五個符號。
func screenOf(t *testing.T, gs *spec.GameSetting, rows [3][5]string) []int16 {
	t.Helper()
	screen := make([]int16, 15)
	for r := 0; r < 3; r++ {
		for c := 0; c < 5; c++ {
			id, ok := gs.Symbols.ID(rows[r][c])
			if !ok {
				t.Fatalf("unknown symbol %q", rows[r][c])
			}
			screen[r*5+c] = id
		}
	}
	return screen
}

func TestEvalLinesCases(t *testing.T) {
	sc, gs := testCalc(t)

	cases := []struct {
		name    string
		middle  [5]string // line 0 的符號（其他列填 L1 不干擾）
		wantSym string
		wantCnt int
		wantPay int
		wantHit bool
	}{
		{"no win", [5]string{"H1", "L1", "H1", "L1", "H1"}, "", 0, 0, false},
		{"three of a kind", [5]string{"H1", "H1", "H1", "L1", "H1"}, "H1", 3, 30, true},
		{"five of a kind", [5]string{"H1", "H1", "H1", "H1", "H1"}, "H1", 5, 500, true},
		{"wild substitute", [5]string{"H1", "W", "H1", "H1", "L1"}, "H1", 4, 100, true},
		{"leading wilds adopt", [5]string{"W", "W", "L1", "L1", "H1"}, "L1", 4, 30, true},
		{"five wilds pay wild row once", [5]string{"W", "W", "W", "W", "W"}, "W", 5, 1000, true},
		{"wild run beats cheap substitute", [5]string{"W", "W", "W", "L1", "H1"}, "W", 3, 50, true},
		{"substitute beats short wild run", [5]string{"W", "W", "H1", "H1", "H1"}, "H1", 5, 500, true},
		{"scatter breaks the line", [5]string{"H1", "H1", "S", "H1", "H1"}, "", 0, 0, false},
		{"scatter after win keeps it", [5]string{"H1", "H1", "H1", "S", "H1"}, "H1", 3, 30, true},
		{"wilds then scatter pay wild run", [5]string{"W", "W", "W", "S", "L1"}, "W", 3, 50, true},
		{"two wilds then scatter no win", [5]string{"W", "W", "S", "L1", "L1"}, "", 0, 0, false},
		{"gap does not resume", [5]string{"L1", "L1", "H1", "L1", "L1"}, "", 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			screen := screenOf(t, gs, [3][5]string{
				{"L1", "H1", "L1", "H1", "L1"}, // 上列交錯，不可能連線
				tc.middle,
				{"H1", "L1", "H1", "L1", "H1"},
			})
			wins, total := sc.EvalLines(screen, nil)

			var hit *LineWin
			for i := range wins {
				if wins[i].Line == 0 {
					hit = &wins[i]
				}
			}
			if tc.wantHit {
				if hit == nil {
					t.Fatalf("expected a win on line 0, got %v", wins)
				}
				wantID, _ := gs.Symbols.ID(tc.wantSym)
				if hit.Symbol != wantID || hit.Count != tc.wantCnt || hit.Pay != tc.wantPay {
					t.Fatalf("line 0 win = {sym %d cnt %d pay %d}, want {sym %d cnt %d pay %d}",
						hit.Symbol, hit.Count, hit.Pay, wantID, tc.wantCnt, tc.wantPay)
				}
			} else if hit != nil {
				t.Fatalf("unexpected win on line 0: %+v", hit)
			}

			// total 必須等於逐線 Pay 的合計
			sum := 0
			for _, w := range wins {
				sum += w.Pay
			}
			if sum != total {
				t.Fatalf("total %d != sum of line pays %d", total, sum)
			}
		})
	}
}

func TestEvalLinesMultiLine(t *testing.T) {
	sc, gs := testCalc(t)
	// 上列與中列同時三連 H1
	screen := screenOf(t, gs, [3][5]string{
		{"H1", "H1", "H1", "L1", "L1"},
		{"H1", "H1", "H1", "L1", "L1"},
		{"L1", "H1", "L1", "H1", "L1"},
	})
	wins, total := sc.EvalLines(screen, nil)
	if len(wins) != 2 {
		t.Fatalf("want 2 winning lines, got %d", len(wins))
	}
	if total != 60 {
		t.Fatalf("total = %d, want 60", total)
	}
}

func TestEvalLinesReusesOut(t *testing.T) {
	sc, gs := testCalc(t)
	screen := screenOf(t, gs, [3][5]string{
		{"L1", "H1", "L1", "H1", "L1"},
		{"H1", "H1", "H1", "H1", "H1"},
		{"H1", "L1", "H1", "L1", "H1"},
	})
	buf := make([]LineWin, 0, 8)
	wins, _ := sc.EvalLines(screen, buf[:0])
	if len(wins) != 1 || cap(wins) != 8 {
		t.Fatalf("expected reuse of caller buffer, len=%d cap=%d", len(wins), cap(wins))
	}
}

func TestCountScatters(t *testing.T) {
	sc, gs := testCalc(t)
	screen := screenOf(t, gs, [3][5]string{
		{"S", "L1", "L1", "S", "L1"},
		{"L1", "S", "L1", "L1", "L1"},
		{"L1", "L1", "L1", "L1", "S"},
	})
	if got := sc.CountScatters(screen); got != 4 {
		t.Fatalf("scatters = %d, want 4", got)
	}

	zero := screenOf(t, gs, [3][5]string{
		{"L1", "L1", "L1", "L1", "L1"},
		{"L1", "L1", "L1", "L1", "L1"},
		{"L1", "L1", "L1", "L1", "L1"},
	})
	if got := sc.CountScatters(zero); got != 0 {
		t.Fatalf("scatters = %d, want 0", got)
	}
}
