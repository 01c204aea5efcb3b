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
	"sort"

	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/sampler"
	"github.com/zintix-labs/reellab/spec"
)

// maxSwapsPerReel 單輪變異每條帶最多換幾個停點。
const maxSwapsPerReel = 6

// tiers 把賠付符號分成高低兩檔，並備好兩個方向的抽樣表。
//
// 高檔 = 百搭 + 賠付最高的 3 個一般符號，權重 {3,4,5,6}（賠付越低越常被抽中，變異才走得穩）。
// 低檔 = 其餘一般符號裡賠付最低的 4 個，權重 {1,2,3,4}（同樣偏向最弱的）。
// 分散不屬於任何一檔：分散停點永遠不動，動了會偏掉免費遊戲的觸發率。
type tiers struct {
	highIDs []int16
	lowIDs  []int16

	raise sampler.LUT // 抽 highIDs 的索引（拉高 RTP 時的替換符號）
	lower sampler.LUT // 抽 lowIDs 的索引（壓低 RTP 時的替換符號）

	highWeight map[int16]int // 停點持有高檔符號時被選中替換的權重
	lowWeight  map[int16]int
}

func buildTiers(gs *spec.GameSetting) (*tiers, error) {
	cols := gs.Screen.Columns
	sym := &gs.Symbols

	// 一般符號依滿線賠付排序
	normals := make([]int16, 0, sym.Count())
	for id := int16(0); id < int16(sym.Count()); id++ {
		if sym.Kind(id) == spec.KindPay {
			normals = append(normals, id)
		}
	}
	sort.Slice(normals, func(i, j int) bool {
		return sym.Pay(normals[i], cols) > sym.Pay(normals[j], cols)
	})
	if len(normals) < 2 {
		return nil, errs.NewWarn("tune needs at least 2 pay symbols")
	}

	nHigh := min(3, len(normals)-1)
	t := &tiers{
		highIDs:    append([]int16{sym.WildID()}, normals[:nHigh]...),
		lowIDs:     nil,
		highWeight: map[int16]int{},
		lowWeight:  map[int16]int{},
	}

	lows := normals[nHigh:]
	if len(lows) > 4 {
		lows = lows[len(lows)-4:]
	}
	t.lowIDs = lows

	// 權重順序固定：高檔由強到弱 3,4,5,6；低檔由強到弱 1,2,3,4
	hw := make([]int, len(t.highIDs))
	for i := range t.highIDs {
		hw[i] = 3 + i
		t.highWeight[t.highIDs[i]] = hw[i]
	}
	lw := make([]int, len(t.lowIDs))
	for i := range t.lowIDs {
		lw[i] = 1 + i
		t.lowWeight[t.lowIDs[i]] = lw[i]
	}

	t.raise = sampler.BuildLUT(hw)
	t.lower = sampler.BuildLUT(lw)
	return t, nil
}

// Mutate 純函數變異：複製候選的轉輪帶，依偏差方向換掉若干停點，
// 回傳量測欄位歸零的新候選。原候選完全不動。
//
// 方向：
//   - RTP 低於目標：把低檔符號的停點換成高檔抽出的符號。
//   - RTP 高於目標：把高檔符號的停點換成低檔抽出的符號。
//
// 每次替換都守三條不變量：帶長不變、該帶上任何符號不會被換到一個不剩、分散停點不碰。
func Mutate(tier *tiers, cand Candidate, target float64, c *core.Core) Candidate {
	diff := cand.RTP - target
	swaps := 1 + int(math.Abs(diff)*25)
	if swaps > maxSwapsPerReel {
		swaps = maxSwapsPerReel
	}

	next := Candidate{Strips: make([][]int16, len(cand.Strips))}
	for col, strip := range cand.Strips {
		cp := make([]int16, len(strip))
		copy(cp, strip)
		next.Strips[col] = cp
	}

	var (
		pickWeight map[int16]int
		replace    sampler.LUT
		pool       []int16
	)
	if diff < 0 {
		pickWeight = tier.lowWeight
		replace = tier.raise
		pool = tier.highIDs
	} else {
		pickWeight = tier.highWeight
		replace = tier.lower
		pool = tier.lowIDs
	}

	for _, strip := range next.Strips {
		counts := map[int16]int{}
		for _, id := range strip {
			counts[id]++
		}

		// 可替換位置的權重：持有目標檔符號的停點才有機會被換
		weights := make([]int, len(strip))
		for i, id := range strip {
			weights[i] = pickWeight[id] // 其他符號（含分散）權重 0
		}

		for _, pos := range sampler.WeightedSample(c, weights, swaps) {
			old := strip[pos]
			if counts[old] <= 1 {
				continue // 帶上最後一顆，不能拔
			}
			repl := pool[replace.Pick(c)]
			if repl == old {
				continue
			}
			strip[pos] = repl
			counts[old]--
			counts[repl]++
		}
	}
	return next
}
