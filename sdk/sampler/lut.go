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

// Package sampler 提供加權抽樣工具。
//
// 兩種 O(1) 抽樣結構的選用原則：
//   - LUT：權重總和小（調機的符號替換權重、個位數權重表）。建表 O(sum)。
//   - AliasTable：權重總和大（以模擬次數為權重的結果表抽樣）。建表 O(n)。
package sampler

import (
	"fmt"

	"github.com/zintix-labs/reellab/sdk/core"
)

// Integers 約束所有底層為整數的型別。
type Integers interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// maxLUTCap 限制展開表的大小。超過這個總和應改用 AliasTable。
const maxLUTCap = 1 << 20

// LUT 是展開式查找表：索引 i 依權重 w[i] 重複寫入 w[i] 次，
// 抽樣時均勻取一格即為加權抽樣。
//
// 例：權重 [3,5,0] 展開為 [0,0,0,1,1,1,1,1]，抽到 0 的機率為 3/8。
type LUT []int

// BuildLUT 依非負整數權重建表。負權重、全零權重或總和超限會 panic，
// 這些都屬於設定/程式錯誤，不是執行期可恢復的狀況。
func BuildLUT[T Integers](src []T) LUT {
	if len(src) == 0 {
		return LUT{}
	}

	acc := uint64(0)
	for _, v := range src {
		if v < 0 {
			panic("lut: negative weight")
		}
		acc += uint64(v)
	}
	if acc == 0 {
		panic("lut: all weights are zero")
	}
	if acc > maxLUTCap {
		panic(fmt.Sprintf("lut: total weight %d exceeds %d, use alias table", acc, maxLUTCap))
	}

	lut := make(LUT, 0, int(acc))
	for i, v := range src {
		for j := T(0); j < v; j++ {
			lut = append(lut, i)
		}
	}
	return lut
}

// Pick 均勻取一格。空表回 -1。
func (l LUT) Pick(c *core.Core) int {
	if len(l) == 0 {
		return -1
	}
	return l[c.IntN(len(l))]
}

// Len 回傳展開後的格數（即權重總和）。
func (l LUT) Len() int { return len(l) }

