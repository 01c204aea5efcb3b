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
	"math/bits"
	"math/rand/v2"

	"github.com/zintix-labs/reellab/errs"
)

// pcg64 以標準庫 math/rand/v2 的 PCG 為底。
// 128-bit 狀態由 int64 seed 經 splitmix64 兩次展開而來，
// 避免使用者丟進低熵 seed（0、1、2...）時造成初始狀態相近。
type pcg64 struct {
	src *rand.PCG
}

func newPCG64(seed int64) *pcg64 {
	s := uint64(seed)
	hi := splitmix64(&s)
	lo := splitmix64(&s)
	return &pcg64{src: rand.NewPCG(hi, lo)}
}

// splitmix64 為標準的 seed 展開函數（Vigna）。
// 每呼叫一次推進一步，輸出通過 finalizer 打散。
func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (p *pcg64) Uint64() uint64 { return p.src.Uint64() }

// Float64 取 53-bit 均勻浮點數，區間 [0, 1)。
func (p *pcg64) Float64() float64 {
	return float64(p.src.Uint64()>>11) * 0x1.0p-53
}

// UintN 回傳 [0, n) 的均勻整數（Lemire 無偏拒絕取樣）。
func (p *pcg64) UintN(n uint64) uint64 {
	if n == 0 {
		panic("pcg64: UintN with n == 0")
	}
	hi, lo := bits.Mul64(p.src.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(p.src.Uint64(), n)
		}
	}
	return hi
}

func (p *pcg64) IntN(n int) int {
	if n <= 0 {
		panic("pcg64: IntN with n <= 0")
	}
	return int(p.UintN(uint64(n)))
}

// Snapshot 導出 PCG 狀態（與 math/rand/v2 的二進位格式一致）。
func (p *pcg64) Snapshot() ([]byte, error) {
	b, err := p.src.MarshalBinary()
	if err != nil {
		return nil, errs.Wrap(err, "pcg64 snapshot failed")
	}
	return b, nil
}

// Restore 從 Snapshot 的輸出無損還原狀態。
func (p *pcg64) Restore(state []byte) error {
	if len(state) == 0 {
		return errs.NewWarn("pcg64 restore: empty state")
	}
	if err := p.src.UnmarshalBinary(state); err != nil {
		return errs.Wrap(err, "pcg64 restore failed")
	}
	return nil
}
