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

package optimizer

import (
	"math"
	"testing"

	"github.com/zintix-labs/reellab/games/lines"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/slot"
	"github.com/zintix-labs/reellab/spec"
)

func testSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs := &spec.GameSetting{
		GameName: "tune_test",
		GameID:   7,
		LogicKey: lines.LogicKey,
		Screen:   spec.ScreenSetting{Columns: 5, Rows: 3},
		Symbols: spec.SymbolSetting{
			Names:   []string{"W", "S", "H1", "H2", "H3", "L1", "L2", "L3", "L4"},
			Wild:    "W",
			Scatter: "S",
			PayTable: map[string][]int{
				"W":  {100, 500, 2500},
				"H1": {50, 200, 1000},
				"H2": {40, 150, 700},
				"H3": {30, 100, 400},
				"L1": {15, 50, 200},
				"L2": {10, 40, 150},
				"L3": {8, 30, 100},
				"L4": {5, 20, 80},
			},
		},
		Reels: spec.ReelSetting{Strips: [][]string{
			{"L4", "L2", "H3", "L1", "L3", "H2", "L4", "S", "L2", "H1", "L3", "W", "L1", "L4", "L2", "L3"},
			{"L1", "H3", "L4", "L2", "S", "H1", "L3", "L4", "L2", "W", "L1", "H2", "L3", "L4", "L2", "L1"},
			{"L3", "L1", "H2", "L4", "L2", "S", "H3", "L1", "W", "L3", "L2", "H1", "L4", "L1", "L2", "L3"},
			{"L2", "L4", "H1", "L1", "L3", "S", "H3", "L2", "L4", "W", "L1", "H2", "L3", "L4", "L2", "L1"},
			{"L4", "L1", "H3", "L2", "L3", "S", "H2", "L4", "L1", "W", "L2", "H1", "L3", "L4", "L1", "L2"},
		}},
		Lines: spec.LineSetting{Lines: [][]int{
			{1, 1, 1, 1, 1},
			{0, 0, 0, 0, 0},
			{2, 2, 2, 2, 2},
		}},
		Bonus: spec.BonusSetting{
			ScatterPays:  map[int]int{3: 4, 4: 20, 5: 100},
			FreeSpins:    map[int]int{3: 5, 4: 8, 5: 12},
			FreeSpinMult: 2,
		},
		Tune: spec.TuneSetting{TargetRTP: 0.95, Tolerance: 0.01, MaxIters: 10, Rounds: 5000},
	}
	if err := gs.Init(); err != nil {
		t.Fatalf("init setting: %v", err)
	}
	return gs
}

func testRegistry(t *testing.T) *slot.LogicRegistry {
	t.Helper()
	reg, err := lines.Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func TestBuildTiers(t *testing.T) {
	gs := testSetting(t)
	tier, err := buildTiers(gs)
	if err != nil {
		t.Fatalf("tiers: %v", err)
	}

	if len(tier.highIDs) != 4 || tier.highIDs[0] != gs.Symbols.WildID() {
		t.Fatalf("high ids: %v", tier.highIDs)
	}
	if len(tier.lowIDs) != 4 {
		t.Fatalf("low ids: %v", tier.lowIDs)
	}

	scatter := gs.Symbols.ScatterID()
	seen := map[int16]bool{}
	for _, id := range tier.highIDs {
		if id == scatter {
			t.Fatal("分散不該進高檔")
		}
		seen[id] = true
	}
	for _, id := range tier.lowIDs {
		if id == scatter {
			t.Fatal("分散不該進低檔")
		}
		if seen[id] {
			t.Fatalf("符號 %d 同時在高低檔", id)
		}
	}

	// 權重由強到弱遞增
	if tier.highWeight[tier.highIDs[0]] != 3 || tier.highWeight[tier.highIDs[3]] != 6 {
		t.Fatalf("high weights: %v", tier.highWeight)
	}
	if tier.lowWeight[tier.lowIDs[0]] != 1 || tier.lowWeight[tier.lowIDs[3]] != 4 {
		t.Fatalf("low weights: %v", tier.lowWeight)
	}
}

func countSymbols(strip []int16) map[int16]int {
	m := map[int16]int{}
	for _, id := range strip {
		m[id]++
	}
	return m
}

func TestMutateInvariants(t *testing.T) {
	gs := testSetting(t)
	tier, err := buildTiers(gs)
	if err != nil {
		t.Fatalf("tiers: %v", err)
	}
	c := core.NewDefault().New(99)
	scatter := gs.Symbols.ScatterID()

	cand := Candidate{Strips: gs.Reels.CopyStrips(), RTP: 0.5}
	before := gs.Reels.CopyStrips()

	for iter := 0; iter < 50; iter++ {
		next := Mutate(tier, cand, 0.95, c)

		// 純函數：原候選完全不動
		for col := range cand.Strips {
			for i := range cand.Strips[col] {
				if cand.Strips[col][i] != before[col][i] {
					t.Fatalf("iter %d 原候選被改動 (col %d pos %d)", iter, col, i)
				}
			}
		}

		for col, strip := range next.Strips {
			if len(strip) != len(cand.Strips[col]) {
				t.Fatalf("帶長改變: col %d", col)
			}
			oldCount := countSymbols(cand.Strips[col])
			newCount := countSymbols(strip)

			if newCount[scatter] != oldCount[scatter] {
				t.Fatalf("分散停點被動到: col %d", col)
			}
			for id, n := range oldCount {
				if n > 0 && newCount[id] == 0 {
					t.Fatalf("符號 %d 在 col %d 被換光", id, col)
				}
			}
		}

		cand = next
		cand.RTP = 0.5 // 持續往上拉的方向
		before = make([][]int16, len(cand.Strips))
		for col := range cand.Strips {
			before[col] = append([]int16(nil), cand.Strips[col]...)
		}
	}
}

func TestMutateDirection(t *testing.T) {
	gs := testSetting(t)
	tier, err := buildTiers(gs)
	if err != nil {
		t.Fatalf("tiers: %v", err)
	}
	c := core.NewDefault().New(7)

	highSet := map[int16]bool{}
	for _, id := range tier.highIDs {
		highSet[id] = true
	}
	countHigh := func(strips [][]int16) int {
		n := 0
		for _, strip := range strips {
			for _, id := range strip {
				if highSet[id] {
					n++
				}
			}
		}
		return n
	}

	cand := Candidate{Strips: gs.Reels.CopyStrips(), RTP: 0.5}
	raised := Mutate(tier, cand, 0.95, c)
	if countHigh(raised.Strips) < countHigh(cand.Strips) {
		t.Fatal("RTP 偏低時高檔符號數不該下降")
	}

	cand.RTP = 1.5
	lowered := Mutate(tier, cand, 0.95, c)
	if countHigh(lowered.Strips) > countHigh(cand.Strips) {
		t.Fatal("RTP 偏高時高檔符號數不該上升")
	}
}

func TestTunerValidation(t *testing.T) {
	gs := testSetting(t)
	reg := testRegistry(t)
	cf := core.NewDefault()

	cases := []Tuner{
		{Target: 0, Tolerance: 0.01, MaxIters: 5, Rounds: 100},
		{Target: 0.95, Tolerance: 0, MaxIters: 5, Rounds: 100},
		{Target: 0.95, Tolerance: 0.01, MaxIters: 0, Rounds: 100},
		{Target: 0.95, Tolerance: 0.01, MaxIters: 5, Rounds: 0},
	}
	for i, tn := range cases {
		if _, err := tn.Run(gs, reg, cf, 1); err == nil {
			t.Fatalf("case %d 應該失敗", i)
		}
	}
}

func TestTunerRunDeterministic(t *testing.T) {
	gs := testSetting(t)
	reg := testRegistry(t)
	cf := core.NewDefault()

	run := func() *Result {
		tn := &Tuner{Target: gs.Tune.TargetRTP, Tolerance: 0.02, MaxIters: 4, Rounds: 4000, Workers: 2}
		res, err := tn.Run(gs, reg, cf, 123)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res
	}

	r1 := run()
	r2 := run()

	if len(r1.History) == 0 || len(r1.History) != len(r2.History) {
		t.Fatalf("history: %d vs %d", len(r1.History), len(r2.History))
	}
	if r1.Best.RTP != r2.Best.RTP || r1.Iterations != r2.Iterations || r1.Converged != r2.Converged {
		t.Fatalf("不可重現: %+v vs %+v", r1, r2)
	}
	for col := range r1.Best.Strips {
		for i := range r1.Best.Strips[col] {
			if r1.Best.Strips[col][i] != r2.Best.Strips[col][i] {
				t.Fatal("最佳候選帶子不一致")
			}
		}
	}
	if r1.Best.Volatility < 0 || r1.Best.HitRate < 0 || r1.Best.HitRate > 1 {
		t.Fatalf("量測欄位異常: %+v", r1.Best)
	}
}

func TestTunerConvergence(t *testing.T) {
	gs := testSetting(t)
	reg := testRegistry(t)
	cf := core.NewDefault()

	tn := &Tuner{Tolerance: 0.2, MaxIters: 40, Rounds: 12000, Workers: 2}

	// 依 Run 的種子消耗順序重建起點量測，Run 之前就知道起點 RTP
	seeds := newSeedStream(31)
	_ = seeds.next() // 變異 core 的種子
	start := Candidate{Strips: gs.Reels.CopyStrips()}
	if err := tn.measure(gs, reg, cf, seeds, &start); err != nil {
		t.Fatalf("measure: %v", err)
	}

	// 目標放在起點容忍範圍外，起點必然要先變異才可能收斂
	tn.Target = start.RTP + 0.3
	if tn.Target >= 1.9 {
		tn.Target = start.RTP - 0.3
	}

	res, err := tn.Run(gs, reg, cf, 31)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.History) == 0 || res.History[0].RTP != start.RTP {
		t.Fatalf("起點量測不可重現: %+v vs %v", res.History, start.RTP)
	}
	if res.Iterations == 0 {
		t.Fatal("起點在容忍範圍外，不該零輪變異")
	}
	if !res.Converged {
		t.Fatalf("應收斂: best rtp %v target %v", res.Best.RTP, tn.Target)
	}
	if math.Abs(res.Best.RTP-tn.Target) > tn.Tolerance {
		t.Fatalf("收斂但超出容忍: rtp %v target %v", res.Best.RTP, tn.Target)
	}
}

func TestTunerNonConvergence(t *testing.T) {
	gs := testSetting(t)
	reg := testRegistry(t)

	// 不可能達標的容忍度：跑滿輪數也不是錯誤
	tn := &Tuner{Target: 1.99, Tolerance: 1e-9, MaxIters: 2, Rounds: 300}
	res, err := tn.Run(gs, reg, core.NewDefault(), 5)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Converged {
		t.Fatal("不該收斂")
	}
	if res.Iterations != 2 || len(res.History) != 3 {
		t.Fatalf("iters=%d history=%d", res.Iterations, len(res.History))
	}
}
