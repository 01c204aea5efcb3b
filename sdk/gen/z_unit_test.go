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

package gen

import (
	"testing"

	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/spec"
)

func testSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs := &spec.GameSetting{
		GameName: "gen_game",
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
				{"W", "S", "H1", "L1"},
				{"H1", "L1", "W", "S", "L1"},
				{"L1", "H1", "S", "W", "L1", "L1"},
				{"S", "L1", "H1", "L1", "W", "H1", "L1"},
				{"L1", "W", "L1", "H1", "S", "L1", "H1", "L1"},
			},
		},
		Lines: spec.LineSetting{Lines: [][]int{{1, 1, 1, 1, 1}}},
		Bonus: spec.BonusSetting{
			ScatterPays: map[int]int{3: 5},
			FreeSpins:   map[int]int{3: 10},
		},
		Tune: spec.TuneSetting{TargetRTP: 0.96},
	}
	if err := gs.Init(); err != nil {
		t.Fatalf("setting init: %v", err)
	}
	return gs
}

func TestSpinWindowMatchesStrips(t *testing.T) {
	gs := testSetting(t)
	sp, err := NewReelSpinner(gs)
	if err != nil {
		t.Fatal(err)
	}
	c := core.NewDefault().New(11)

	for round := 0; round < 5000; round++ {
		screen, stops := sp.Spin(c)
		for col := 0; col < gs.Screen.Columns; col++ {
			strip := gs.Reels.Strip(col)
			stop := int(stops[col])
			if stop < 0 || stop >= len(strip) {
				t.Fatalf("round %d col %d: stop %d out of range", round, col, stop)
			}
			for row := 0; row < gs.Screen.Rows; row++ {
				want := strip[(stop+row)%len(strip)]
				got := screen[row*gs.Screen.Columns+col]
				if got != want {
					t.Fatalf("round %d col %d row %d: screen %d, strip window %d", round, col, row, got, want)
				}
			}
		}
	}
}

func TestSpinStopsUniform(t *testing.T) {
	gs := testSetting(t)
	sp, err := NewReelSpinner(gs)
	if err != nil {
		t.Fatal(err)
	}
	c := core.NewDefault().New(22)

	// 第 0 輪帶長 4：每個停點期望 1/4
	const rounds = 400000
	counts := make([]int, sp.StripLen(0))
	for i := 0; i < rounds; i++ {
		_, stops := sp.Spin(c)
		counts[stops[0]]++
	}
	want := rounds / len(counts)
	for stop, got := range counts {
		if got < want*98/100 || got > want*102/100 {
			t.Fatalf("stop %d hit %d times, want about %d", stop, got, want)
		}
	}
}

func TestSpinDeterministic(t *testing.T) {
	gs := testSetting(t)
	spA, _ := NewReelSpinner(gs)
	spB, _ := NewReelSpinner(gs)
	cA := core.NewDefault().New(33)
	cB := core.NewDefault().New(33)

	for i := 0; i < 1000; i++ {
		sA, stA := spA.Spin(cA)
		sB, stB := spB.Spin(cB)
		for j := range sA {
			if sA[j] != sB[j] {
				t.Fatalf("same seed diverged at spin %d cell %d", i, j)
			}
		}
		for j := range stA {
			if stA[j] != stB[j] {
				t.Fatalf("same seed stops diverged at spin %d col %d", i, j)
			}
		}
	}
}

func TestNewReelSpinnerNil(t *testing.T) {
	if _, err := NewReelSpinner(nil); err == nil {
		t.Fatal("expected error for nil setting")
	}
}
