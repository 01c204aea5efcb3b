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
	"fmt"

	"github.com/zintix-labs/reellab/errs"
)

// BonusSetting 定義分散符號獎勵與免費遊戲規則。
//
//   - ScatterPays：分散數量 → 總押注倍數（不走線、全盤計數）。
//   - FreeSpins：分散數量 → 觸發的免費次數。免費遊戲內不重複觸發。
//   - FreeSpinMult：免費遊戲全程的贏分倍數。
type BonusSetting struct {
	ScatterPays  map[int]int `yaml:"scatter_pays" json:"scatter_pays"`
	FreeSpins    map[int]int `yaml:"free_spins" json:"free_spins"`
	FreeSpinMult int         `yaml:"free_spin_multiplier" json:"free_spin_multiplier"`

	// derived：以分散數量為索引的查表
	scatterPay []int
	freeSpins  []int
}

func (b *BonusSetting) Init(maxScatters int) error {
	if b.FreeSpinMult == 0 {
		b.FreeSpinMult = 1
	}
	if b.FreeSpinMult < 1 {
		return errs.NewFatal(fmt.Sprintf("free_spin_multiplier %d must be >= 1", b.FreeSpinMult))
	}

	var err error
	b.scatterPay, err = expandByCount("scatter_pays", b.ScatterPays, maxScatters)
	if err != nil {
		return err
	}
	b.freeSpins, err = expandByCount("free_spins", b.FreeSpins, maxScatters)
	if err != nil {
		return err
	}
	return nil
}

func expandByCount(what string, m map[int]int, maxCount int) ([]int, error) {
	out := make([]int, maxCount+1)
	for count, v := range m {
		if count < 1 || count > maxCount {
			return nil, errs.NewFatal(fmt.Sprintf("%s: count %d out of range [1,%d]", what, count, maxCount))
		}
		if v < 0 {
			return nil, errs.NewFatal(fmt.Sprintf("%s: value for count %d is negative", what, count))
		}
		out[count] = v
	}
	// 超過表內最大數量的部分沿用最後一個有值的項（例如 6 個分散照 5 個賠）
	last := 0
	for i := range out {
		if out[i] == 0 && last > 0 {
			out[i] = last
		}
		if out[i] > 0 {
			if out[i] < last {
				return nil, errs.NewFatal(fmt.Sprintf("%s must be non-decreasing in count", what))
			}
			last = out[i]
		}
	}
	return out, nil
}

// ScatterPay 回傳 count 個分散的總押注倍數，無獎勵為 0。
func (b *BonusSetting) ScatterPay(count int) int {
	if count < 0 || count >= len(b.scatterPay) {
		if count >= len(b.scatterPay) && len(b.scatterPay) > 0 {
			return b.scatterPay[len(b.scatterPay)-1]
		}
		return 0
	}
	return b.scatterPay[count]
}

// Spins 回傳 count 個分散觸發的免費次數，未觸發為 0。
func (b *BonusSetting) Spins(count int) int {
	if count < 0 || count >= len(b.freeSpins) {
		if count >= len(b.freeSpins) && len(b.freeSpins) > 0 {
			return b.freeSpins[len(b.freeSpins)-1]
		}
		return 0
	}
	return b.freeSpins[count]
}
