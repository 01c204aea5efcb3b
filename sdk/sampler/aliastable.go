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
	"math/bits"

	"github.com/zintix-labs/reellab/sdk/core"
)

// AliasTable 是 Vose 別名表：建表 O(n)、抽樣 O(1)、記憶體 O(n)。
// 全程整數運算（權重乘上 n 做 scaling），不做浮點正規化，
// 因此抽樣機率與輸入權重嚴格成比例，沒有浮點誤差累積。
//
// 結果表抽樣（以各結果的出現次數為權重）走這裡：
// 次數總和等於模擬回合數，展開式 LUT 會大到不可用。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 依非負整數權重建表。
//
// 流程：
//  1. prob[i] = w[i] * n（整數 scaling，以 total 為比較基準）。
//  2. 依 prob[i] < total 分進 small / large 兩桶。
//  3. 反覆從兩桶各取一個 (s, l)：l 成為 s 的 alias，並把 l 的
//     prob 扣掉補給 s 的缺口，維持 sum(prob) = total*n。
//  4. 任一桶空了即完成。
//
// 負權重、全零權重或 scaling 會溢位時 panic（建表參數是程式錯誤）。
func BuildAliasTable(weights []int) *AliasTable {
	if len(weights) == 0 {
		return &AliasTable{Prob: []int{}, Aliases: []int{}}
	}

	n := len(weights)
	total := uint64(0)
	for _, w := range weights {
		if w < 0 {
			panic("aliastable: negative weight")
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			panic("aliastable: total weight overflow")
		}
		total += uint64(w)
	}
	if total == 0 {
		panic("aliastable: all weights are zero")
	}
	if !safeMul(int(total), n) {
		panic("aliastable: weights too large, scaling overflows")
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		prob[i] = w * n
		if prob[i] < int(total) {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		prob[l] = prob[l] + prob[s] - int(total)

		if prob[l] < int(total) {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	return &AliasTable{
		Prob:    prob,
		Aliases: aliases,
		Size:    n,
		Total:   int(total),
	}
}

// Pick 抽一個索引。空表回 -1。
//
// 兩次取數：先均勻選欄位 idx，再以整數比較 IntN(Total) < Prob[idx]
// 決定取 idx 本身或其 alias（浮點版 U < p 的整數等價式）。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}

func safeMul(a, b int) bool {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return hi == 0 && lo <= math.MaxInt64
}
