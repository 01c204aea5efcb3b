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

package lines

import (
	"testing"

	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/slot"
	"github.com/zintix-labs/reellab/spec"
)

// scriptPRNG 依序回傳預排的停點，讓測試能指定盤面。
type scriptPRNG struct {
	vals []int
	i    int
}

func (s *scriptPRNG) next() int {
	if s.i >= len(s.vals) {
		panic("scriptPRNG: out of scripted values")
	}
	v := s.vals[s.i]
	s.i++
	return v
}

func (s *scriptPRNG) Uint64() uint64        { return uint64(s.next()) }
func (s *scriptPRNG) Float64() float64      { return 0 }
func (s *scriptPRNG) UintN(n uint64) uint64 { return uint64(s.next()) % n }
func (s *scriptPRNG) IntN(n int) int        { return s.next() % n }

func (s *scriptPRNG) Snapshot() ([]byte, error) { return nil, errs.NewWarn("not snapshotable") }
func (s *scriptPRNG) Restore([]byte) error      { return errs.NewWarn("not restorable") }

// settingWithStrips 固定 5x3、兩條線（中排、上排），帶由各測試指定。
// 免費次數刻意壓短，讓免費段可以整段驗算。
func settingWithStrips(t *testing.T, strips [][]string) *spec.GameSetting {
	t.Helper()
	gs := &spec.GameSetting{
		GameName: "lines_test",
		GameID:   1,
		LogicKey: LogicKey,
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
		Reels: spec.ReelSetting{Strips: strips},
		Lines: spec.LineSetting{Lines: [][]int{
			{1, 1, 1, 1, 1},
			{0, 0, 0, 0, 0},
		}},
		Bonus: spec.BonusSetting{
			ScatterPays:  map[int]int{3: 5, 4: 20, 5: 100},
			FreeSpins:    map[int]int{3: 2, 4: 3, 5: 4},
			FreeSpinMult: 3,
		},
		Tune: spec.TuneSetting{TargetRTP: 0.96},
	}
	if err := gs.Init(); err != nil {
		t.Fatalf("init setting: %v", err)
	}
	return gs
}

func scriptedGame(t *testing.T, gs *spec.GameSetting, stops []int) *slot.Game {
	t.Helper()
	reg, err := Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	c, err := core.NewCore(&scriptPRNG{vals: stops})
	if err != nil {
		t.Fatalf("core: %v", err)
	}
	g, err := slot.NewGame(gs, reg, c)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func TestLineWinWithWild(t *testing.T) {
	// stop 0 的中排 = H1 W H1 L1 L1：百搭補位成 3 連 H1。
	gs := settingWithStrips(t, [][]string{
		{"L1", "H1", "S"},
		{"H1", "W", "L1"},
		{"L1", "H1", "H1"},
		{"H1", "L1", "L1"},
		{"L1", "L1", "H1"},
	})
	g := scriptedGame(t, gs, []int{0, 0, 0, 0, 0})

	res, err := g.Spin()
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if got := res.BasePayX(); got != 30 {
		t.Fatalf("base payx = %d, want 30", got)
	}
	if res.FreeSpinsAwarded() != 0 || len(res.Free.Rounds) != 0 {
		t.Fatal("single scatter must not trigger free spins")
	}
	if got := res.TotalX(); got != 15.0 {
		t.Fatalf("total x = %v, want 15", got)
	}
	wins := res.Base.RoundWins(0)
	if len(wins) != 1 || wins[0].Count != 3 || wins[0].Pay != 30 {
		t.Fatalf("wins = %+v", wins)
	}
}

func TestScatterTriggersFreeSession(t *testing.T) {
	// stop 0 的上排有 3 個分散；中排只有 2 連，沒有線贏。
	strips := [][]string{
		{"S", "H1", "L1"},
		{"S", "H1", "L1"},
		{"S", "L1", "H1"},
		{"H1", "L1", "L1"},
		{"L1", "L1", "H1"},
	}
	gs := settingWithStrips(t, strips)

	// 基礎 1 輪 + 免費 2 轉，每轉 5 個停點，全部停 0。
	g := scriptedGame(t, gs, make([]int, 5+2*5))

	res, err := g.Spin()
	if err != nil {
		t.Fatalf("spin: %v", err)
	}

	if res.FreeSpinsAwarded() != 2 {
		t.Fatalf("free spins awarded = %d, want 2", res.FreeSpinsAwarded())
	}
	if len(res.Free.Rounds) != 2 {
		t.Fatalf("free rounds = %d, want 2", len(res.Free.Rounds))
	}
	if res.Free.Mult != 3 {
		t.Fatalf("free mult = %d, want 3", res.Free.Mult)
	}

	// 基礎：線贏 0，分散 3 → 5。PayX = 5*lines = 10。
	if got := res.BasePayX(); got != 10 {
		t.Fatalf("base payx = %d, want 10", got)
	}
	// 免費：同一盤面兩轉，各得分散 5，段倍數 3。PayX = (5+5)*2*3 = 60。
	if got := res.FreePayX(); got != 60 {
		t.Fatalf("free payx = %d, want 60", got)
	}
	if got := res.TotalX(); got != 35.0 {
		t.Fatalf("total x = %v, want 35", got)
	}

	// 免費段內的分散不得再觸發
	for i := range res.Free.Rounds {
		if res.Free.Rounds[i].FreeSpins != 0 {
			t.Fatal("free rounds must not retrigger")
		}
		if res.Free.Rounds[i].ScatterCount != 3 {
			t.Fatalf("free round %d scatter count = %d", i, res.Free.Rounds[i].ScatterCount)
		}
	}
}

func TestTriggerSpinMapping(t *testing.T) {
	// 停點全押 0，上排分散數由帶內容決定。
	mk := func(scatterCols int) [][]string {
		strips := make([][]string, 5)
		for c := 0; c < 5; c++ {
			top := "L1"
			if c < scatterCols {
				top = "S"
			}
			strips[c] = []string{top, "L1", "H1"}
		}
		return strips
	}

	cases := []struct {
		scatters  int
		wantSpins int
	}{
		{0, 0}, {1, 0}, {2, 0}, {3, 2}, {4, 3}, {5, 4},
	}
	for _, tc := range cases {
		gs := settingWithStrips(t, mk(tc.scatters))
		g := scriptedGame(t, gs, make([]int, 5+tc.wantSpins*5))
		res, err := g.Spin()
		if err != nil {
			t.Fatalf("scatters=%d: %v", tc.scatters, err)
		}
		if got := res.FreeSpinsAwarded(); got != tc.wantSpins {
			t.Fatalf("scatters=%d: spins = %d, want %d", tc.scatters, got, tc.wantSpins)
		}
	}
}

func TestDeterministicWithSeededCore(t *testing.T) {
	gs := settingWithStrips(t, [][]string{
		{"W", "S", "H1", "L1", "L1", "H1"},
		{"H1", "L1", "W", "S", "L1", "H1"},
		{"L1", "H1", "S", "W", "L1", "L1"},
		{"S", "L1", "H1", "L1", "W", "H1"},
		{"L1", "W", "L1", "H1", "S", "L1"},
	})
	reg, err := Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	run := func(seed int64) []float64 {
		g, err := slot.NewGame(gs, reg, core.NewDefault().New(seed))
		if err != nil {
			t.Fatalf("new game: %v", err)
		}
		out := make([]float64, 0, 200)
		for i := 0; i < 200; i++ {
			res, err := g.Spin()
			if err != nil {
				t.Fatalf("spin: %v", err)
			}
			out = append(out, res.TotalX())
		}
		return out
	}

	a, b := run(42), run(42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("spin %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}
