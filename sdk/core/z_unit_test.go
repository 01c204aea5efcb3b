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

package core

import (
	"testing"
)

func TestPCG64Deterministic(t *testing.T) {
	a := newPCG64(42)
	b := newPCG64(42)
	for i := 0; i < 1000; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("same seed diverged at step %d: %d vs %d", i, x, y)
		}
	}
}

func TestPCG64SeedSeparation(t *testing.T) {
	// 低熵 seed（相鄰整數）經 splitmix64 展開後，序列不該相同。
	a := newPCG64(1)
	b := newPCG64(2)
	same := 0
	for i := 0; i < 64; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same > 0 {
		t.Fatalf("adjacent seeds collided %d times", same)
	}
}

func TestUintNBounds(t *testing.T) {
	p := newPCG64(7)
	for _, n := range []uint64{1, 2, 3, 30, 97, 1 << 40} {
		for i := 0; i < 200; i++ {
			if v := p.UintN(n); v >= n {
				t.Fatalf("UintN(%d) = %d out of range", n, v)
			}
		}
	}
}

func TestUintNRoughUniformity(t *testing.T) {
	p := newPCG64(123)
	const n = 30
	const rounds = 300000
	var hist [n]int
	for i := 0; i < rounds; i++ {
		hist[p.IntN(n)]++
	}
	want := rounds / n
	for k, got := range hist {
		// 3% 容忍，對 10000 期望值來說是很寬鬆的界
		if got < want*97/100 || got > want*103/100 {
			t.Fatalf("bucket %d = %d, want about %d", k, got, want)
		}
	}
}

func TestFloat64Range(t *testing.T) {
	p := newPCG64(99)
	for i := 0; i < 10000; i++ {
		f := p.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64() = %v out of [0,1)", f)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	p := newPCG64(2026)
	for i := 0; i < 17; i++ {
		p.Uint64()
	}
	snap, err := p.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	var expect [32]uint64
	for i := range expect {
		expect[i] = p.Uint64()
	}

	if err := p.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i := range expect {
		if got := p.Uint64(); got != expect[i] {
			t.Fatalf("restored stream diverged at %d: %d vs %d", i, got, expect[i])
		}
	}
}

func TestRestoreRejectsEmptyState(t *testing.T) {
	p := newPCG64(1)
	if err := p.Restore(nil); err == nil {
		t.Fatal("expected error on empty state")
	}
}

func TestCoreFactory(t *testing.T) {
	cf := NewDefault()
	a := cf.New(5)
	b := cf.New(5)
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatal("factory cores with same seed diverged")
		}
	}
	if _, err := NewCore(nil); err == nil {
		t.Fatal("expected error for nil prng")
	}
	if _, err := NewFactory(nil); err == nil {
		t.Fatal("expected error for nil prng factory")
	}
}
