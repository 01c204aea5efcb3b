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
	"strings"
	"testing"
)

func testSetting() *GameSetting {
	return &GameSetting{
		GameName: "unit_game",
		GameID:   7,
		LogicKey: "lines20",
		Screen:   ScreenSetting{Columns: 5, Rows: 3},
		Symbols: SymbolSetting{
			Names:   []string{"W", "S", "H1", "L1"},
			Wild:    "W",
			Scatter: "S",
			PayTable: map[string][]int{
				"W":  {50, 200, 1000},
				"H1": {30, 100, 500},
				"L1": {10, 30, 100},
			},
		},
		Reels: ReelSetting{
			Strips: [][]string{
				{"W", "S", "H1", "L1", "L1", "H1"},
				{"H1", "L1", "W", "S", "L1", "H1"},
				{"L1", "H1", "S", "W", "L1", "L1"},
				{"S", "L1", "H1", "L1", "W", "H1"},
				{"L1", "W", "L1", "H1", "S", "L1"},
			},
		},
		Lines: LineSetting{
			Lines: [][]int{
				{1, 1, 1, 1, 1},
				{0, 0, 0, 0, 0},
				{2, 2, 2, 2, 2},
			},
		},
		Bonus: BonusSetting{
			ScatterPays:  map[int]int{3: 5, 4: 20, 5: 100},
			FreeSpins:    map[int]int{3: 10, 4: 15, 5: 25},
			FreeSpinMult: 3,
		},
		Tune: TuneSetting{TargetRTP: 0.96},
	}
}

func TestInitValid(t *testing.T) {
	gs := testSetting()
	if err := gs.Init(); err != nil {
		t.Fatalf("valid setting rejected: %v", err)
	}

	if gs.Symbols.MinRun != 3 {
		t.Fatalf("min_run default = %d, want 3", gs.Symbols.MinRun)
	}
	if gs.Tune.Tolerance != defaultTolerance || gs.Tune.MaxIters != defaultMaxIters {
		t.Fatal("tune defaults not applied")
	}

	wild, _ := gs.Symbols.ID("W")
	if !gs.Symbols.IsWild(wild) || gs.Symbols.Kind(wild) != KindWild {
		t.Fatal("wild id misclassified")
	}
	if got := gs.Symbols.Pay(wild, 5); got != 1000 {
		t.Fatalf("wild 5-run pay = %d, want 1000", got)
	}
	if got := gs.Symbols.Pay(wild, 2); got != 0 {
		t.Fatalf("below-min-run pay = %d, want 0", got)
	}
}

func TestInitRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GameSetting)
		expect string
	}{
		{"empty name", func(g *GameSetting) { g.GameName = "" }, "game_name"},
		{"zero id", func(g *GameSetting) { g.GameID = 0 }, "game_id"},
		{"no logic", func(g *GameSetting) { g.LogicKey = "" }, "logic_key"},
		{"bad columns", func(g *GameSetting) { g.Screen.Columns = 2 }, "columns"},
		{"unknown wild", func(g *GameSetting) { g.Symbols.Wild = "WX" }, "wild"},
		{"wild equals scatter", func(g *GameSetting) { g.Symbols.Scatter = "W" }, "distinct"},
		{"scatter paytable row", func(g *GameSetting) { g.Symbols.PayTable["S"] = []int{1, 2, 3} }, "scatter"},
		{"missing pay row", func(g *GameSetting) { delete(g.Symbols.PayTable, "H1") }, "paytable"},
		{"short pay row", func(g *GameSetting) { g.Symbols.PayTable["H1"] = []int{30} }, "entries"},
		{"decreasing pays", func(g *GameSetting) { g.Symbols.PayTable["H1"] = []int{30, 20, 500} }, "non-decreasing"},
		{"missing strip", func(g *GameSetting) { g.Reels.Strips = g.Reels.Strips[:4] }, "strips"},
		{"short strip", func(g *GameSetting) { g.Reels.Strips[0] = []string{"W", "S"} }, "stops"},
		{"unknown strip symbol", func(g *GameSetting) { g.Reels.Strips[0][0] = "ZZ" }, "unknown symbol"},
		{"no paylines", func(g *GameSetting) { g.Lines.Lines = nil }, "paylines"},
		{"short payline", func(g *GameSetting) { g.Lines.Lines[0] = []int{1, 1} }, "entries"},
		{"payline row oob", func(g *GameSetting) { g.Lines.Lines[0] = []int{0, 0, 3, 0, 0} }, "out of range"},
		{"bad scatter count", func(g *GameSetting) { g.Bonus.ScatterPays[99] = 1 }, "out of range"},
		{"bad target rtp", func(g *GameSetting) { g.Tune.TargetRTP = 0 }, "target_rtp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gs := testSetting()
			tc.mutate(gs)
			err := gs.Init()
			if err == nil {
				t.Fatal("expected init error")
			}
			if !strings.Contains(err.Error(), tc.expect) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.expect)
			}
		})
	}
}

func TestLineSettingFlat(t *testing.T) {
	gs := testSetting()
	if err := gs.Init(); err != nil {
		t.Fatal(err)
	}
	// 第 0 條線為中列：row=1 → idx = 1*5+col
	middle := gs.Lines.Line(0)
	for col, idx := range middle {
		if int(idx) != 5+col {
			t.Fatalf("middle line col %d idx = %d, want %d", col, idx, 5+col)
		}
	}
	if gs.Lines.Count() != 3 {
		t.Fatalf("line count = %d, want 3", gs.Lines.Count())
	}
}

func TestBonusLookups(t *testing.T) {
	gs := testSetting()
	if err := gs.Init(); err != nil {
		t.Fatal(err)
	}
	b := &gs.Bonus
	if b.ScatterPay(2) != 0 || b.ScatterPay(3) != 5 || b.ScatterPay(5) != 100 {
		t.Fatal("scatter pay lookup wrong")
	}
	if b.Spins(2) != 0 || b.Spins(3) != 10 || b.Spins(4) != 15 || b.Spins(5) != 25 {
		t.Fatal("free spin lookup wrong")
	}
	// 超過表上限時沿用最後一項
	if b.ScatterPay(7) != 100 || b.Spins(7) != 25 {
		t.Fatal("beyond-max count should reuse the last entry")
	}
}

func TestCloneWithStrips(t *testing.T) {
	gs := testSetting()
	if err := gs.Init(); err != nil {
		t.Fatal(err)
	}

	strips := gs.Reels.CopyStrips()
	wild := gs.Symbols.WildID()
	strips[0][3] = wild

	cp, err := gs.CloneWithStrips(strips)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if cp.Reels.Strip(0)[3] != wild {
		t.Fatal("clone did not take mutated strip")
	}
	if gs.Reels.Strip(0)[3] == wild {
		t.Fatal("clone mutated the source setting")
	}

	// 帶入未知符號 ID 必須失敗
	bad := gs.Reels.CopyStrips()
	bad[1][0] = 99
	if _, err := gs.CloneWithStrips(bad); err == nil {
		t.Fatal("expected error for unknown symbol id")
	}
}

func TestDecodeYAML(t *testing.T) {
	raw := []byte(`
game_name: yaml_game
game_id: 3
logic_key: lines20
screen: {columns: 5, rows: 3}
symbols:
  names: [W, S, H1, L1]
  wild: W
  scatter: S
  paytable:
    W: [50, 200, 1000]
    H1: [30, 100, 500]
    L1: [10, 30, 100]
reels:
  strips:
    - [W, S, H1, L1, L1, H1]
    - [H1, L1, W, S, L1, H1]
    - [L1, H1, S, W, L1, L1]
    - [S, L1, H1, L1, W, H1]
    - [L1, W, L1, H1, S, L1]
paylines:
  lines:
    - [1, 1, 1, 1, 1]
    - [0, 0, 0, 0, 0]
bonus:
  scatter_pays: {3: 5, 4: 20, 5: 100}
  free_spins: {3: 10, 4: 15, 5: 25}
  free_spin_multiplier: 3
tune:
  target_rtp: 0.96
`)
	gs, err := GetGameSettingByYAML(raw)
	if err != nil {
		t.Fatalf("yaml decode: %v", err)
	}
	if gs.GameName != "yaml_game" || gs.Lines.Count() != 2 {
		t.Fatal("yaml decode produced wrong setting")
	}

	if _, err := GetGameSettingByYAML(nil); err == nil {
		t.Fatal("expected error for empty yaml")
	}
	if _, err := GetGameSettingByYAML([]byte("game_name: [")); err == nil {
		t.Fatal("expected error for broken yaml")
	}
	if _, err := GetGameSettingByJSON([]byte("{}")); err == nil {
		t.Fatal("expected init error for empty json object")
	}
}
