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
	"container/heap"
	"math"

	"github.com/zintix-labs/reellab/sdk/core"
)

// weightEntry 為 Efraimidis-Spirakis 加權抽樣使用的項目。
// score = U^(1/w)，U 為 (0,1) 均勻隨機數；score 越大越優先。
type weightEntry struct {
	idx   int
	score float64
}

type weightHeap []weightEntry

func (h weightHeap) Len() int            { return len(h) }
func (h weightHeap) Less(i, j int) bool  { return h[i].score > h[j].score }
func (h weightHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *weightHeap) Push(x any)         { *h = append(*h, x.(weightEntry)) }
func (h *weightHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// WeightedSample 依權重做「不放回」抽樣，回傳 k 個相異索引。
//
//   - 權重為 0 的索引不會被抽中；負權重 panic。
//   - k 超過正權重數量時，回傳所有正權重索引（數量可能小於 k）。
//   - 回傳順序即抽出順序（權重大的傾向排前面）。
//
// 調機變異用它挑选要替換的停點位置。
func WeightedSample(c *core.Core, weights []int, k int) []int {
	if k <= 0 || len(weights) == 0 {
		return nil
	}

	h := make(weightHeap, 0, len(weights))
	for i, w := range weights {
		if w < 0 {
			panic("sampler: negative weight in WeightedSample")
		}
		if w == 0 {
			continue
		}
		// u 避開 0，否則 log(0) 會吃掉整個 score
		u := c.Float64()
		for u == 0 {
			u = c.Float64()
		}
		score := math.Pow(u, 1.0/float64(w))
		h = append(h, weightEntry{idx: i, score: score})
	}
	if len(h) == 0 {
		return nil
	}

	heap.Init(&h)
	if k > len(h) {
		k = len(h)
	}
	out := make([]int, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, heap.Pop(&h).(weightEntry).idx)
	}
	return out
}

// WeightedShuffle 回傳所有正權重索引的加權排列（權重大的傾向在前）。
func WeightedShuffle(c *core.Core, weights []int) []int {
	return WeightedSample(c, weights, len(weights))
}
