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

package sampler

import (
	"math"
	"testing"

	"github.com/zintix-labs/reellab/sdk/core"
)

func newTestCore(seed int64) *core.Core {
	return core.NewDefault().New(seed)
}

func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic: %s", msg)
		}
	}()
	f()
}

// checkDistribution 驗證抽樣頻率與權重比例的偏差在 tolerance 內。
func checkDistribution(t *testing.T, name string, weights []int, counts []int, rounds int, tolerance float64) {
	t.Helper()
	total := 0
	for _, w := range weights {
		total += w
	}
	for i, w := range weights {
		want := float64(w) / float64(total)
		got := float64(counts[i]) / float64(rounds)
		if math.Abs(got-want) > tolerance {
			t.Fatalf("%s: index %d freq %.4f, want %.4f (tol %.4f)", name, i, got, want, tolerance)
		}
	}
}

func TestLUTDistribution(t *testing.T) {
	c := newTestCore(1)
	weights := []int{3, 5, 0, 2}
	lut := BuildLUT(weights)
	if lut.Len() != 10 {
		t.Fatalf("lut len = %d, want 10", lut.Len())
	}

	const rounds = 200000
	counts := make([]int, len(weights))
	for i := 0; i < rounds; i++ {
		idx := lut.Pick(c)
		if idx == 2 {
			t.Fatal("picked zero-weight index")
		}
		counts[idx]++
	}
	checkDistribution(t, "lut", weights, counts, rounds, 0.01)
}

func TestLUTPanics(t *testing.T) {
	assertPanic(t, func() { BuildLUT([]int{1, -1}) }, "negative weight")
	assertPanic(t, func() { BuildLUT([]int{0, 0}) }, "all zero")
}

func TestLUTEmpty(t *testing.T) {
	if got := BuildLUT([]int{}).Pick(newTestCore(1)); got != -1 {
		t.Fatalf("empty lut pick = %d, want -1", got)
	}
}

func TestAliasTableDistribution(t *testing.T) {
	c := newTestCore(2)
	// 模擬結果表量級的權重：總和遠超 LUT 可展開範圍也要能用
	weights := []int{977123, 12345, 4444, 0, 1}
	at := BuildAliasTable(weights)

	const rounds = 400000
	counts := make([]int, len(weights))
	for i := 0; i < rounds; i++ {
		idx := at.Pick(c)
		if idx == 3 {
			t.Fatal("picked zero-weight index")
		}
		counts[idx]++
	}
	checkDistribution(t, "alias", weights, counts, rounds, 0.01)
}

func TestAliasTablePanics(t *testing.T) {
	assertPanic(t, func() { BuildAliasTable([]int{-1}) }, "negative weight")
	assertPanic(t, func() { BuildAliasTable([]int{0, 0, 0}) }, "all zero")
}

func TestAliasTableEmpty(t *testing.T) {
	if got := BuildAliasTable(nil).Pick(newTestCore(3)); got != -1 {
		t.Fatalf("empty table pick = %d, want -1", got)
	}
}

func TestWeightedSampleBasic(t *testing.T) {
	c := newTestCore(4)
	weights := []int{10, 0, 5, 1}

	got := WeightedSample(c, weights, 2)
	if len(got) != 2 {
		t.Fatalf("sample size = %d, want 2", len(got))
	}
	if got[0] == got[1] {
		t.Fatal("sample returned duplicate index")
	}
	for _, idx := range got {
		if idx == 1 {
			t.Fatal("sampled zero-weight index")
		}
	}
}

func TestWeightedSampleKExceedsPositives(t *testing.T) {
	c := newTestCore(5)
	got := WeightedSample(c, []int{0, 3, 0, 7}, 10)
	if len(got) != 2 {
		t.Fatalf("sample size = %d, want 2 (only two positive weights)", len(got))
	}
}

func TestWeightedSampleAllZero(t *testing.T) {
	if got := WeightedSample(newTestCore(6), []int{0, 0}, 1); got != nil {
		t.Fatalf("expected nil for all-zero weights, got %v", got)
	}
}

func TestWeightedSampleNegativePanics(t *testing.T) {
	assertPanic(t, func() { WeightedSample(newTestCore(7), []int{1, -2}, 1) }, "negative weight")
}

func TestWeightedSampleFrequency(t *testing.T) {
	// k=1 時首位抽中頻率應與權重成比例
	c := newTestCore(8)
	weights := []int{3, 4, 5, 6}
	const rounds = 120000
	counts := make([]int, len(weights))
	for i := 0; i < rounds; i++ {
		counts[WeightedSample(c, weights, 1)[0]]++
	}
	checkDistribution(t, "weighted-sample", weights, counts, rounds, 0.015)
}

func TestWeightedShuffleCoversAll(t *testing.T) {
	c := newTestCore(9)
	weights := []int{1, 2, 3, 4, 5}
	got := WeightedShuffle(c, weights)
	if len(got) != len(weights) {
		t.Fatalf("shuffle size = %d, want %d", len(got), len(weights))
	}
	seen := make(map[int]bool, len(got))
	for _, idx := range got {
		if seen[idx] {
			t.Fatalf("duplicate index %d in shuffle", idx)
		}
		seen[idx] = true
	}
}
