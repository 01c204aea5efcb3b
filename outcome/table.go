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

// Package outcome 定義模擬彙整出的加權結果表。
//
// 一張表是一個遊戲模式（基礎或免費段）的完整離散分佈：
// 每列是一個 (payX, freeSpins) 等價類，機率 = 出現次數/總次數。
// 表凍結後唯讀，抽樣走 alias table（以原始計數建，不經浮點）。
package outcome

import (
	"fmt"
	"math"
	"sort"

	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/sampler"
)

// probTol 機率總和允許的誤差。
const probTol = 1e-6

// 表的模式標記。
const (
	ModeBase = "base"
	ModeFree = "free"
)

// Row 結果表的一列：一個去重後的結果等價類。
type Row struct {
	SimulationNumber int     `json:"simulation_number"` // 機率降冪排序後 0..N-1
	Count            uint64  `json:"count"`
	PayX             int     `json:"pay_x"` // 1/lines 單位，精確整數
	FreeSpins        int     `json:"free_spins"`
	Probability      float64 `json:"probability"`
	Multiplier       float64 `json:"payout_multiplier"` // PayX / lines
}

// Table 一個模式的加權結果表。
type Table struct {
	Mode   string `json:"mode"`
	Trials uint64 `json:"trials"` // 分母：基礎是 spin 數，免費是觸發的段數
	Lines  int    `json:"lines"`
	Rows   []Row  `json:"rows"`

	alias *sampler.AliasTable
}

// NewTable 由等價類計數凍結一張表。
// counts 的 key 順序不拘；列依機率降冪（同機率依 PayX 升冪）排序後編號。
func NewTable(mode string, lines int, trials uint64, counts map[Key]uint64) (*Table, error) {
	if lines <= 0 {
		return nil, errs.NewFatal("outcome: lines must be > 0")
	}
	if trials == 0 {
		return nil, errs.NewWarn("outcome: no trials recorded")
	}

	rows := make([]Row, 0, len(counts))
	var total uint64
	for k, n := range counts {
		if n == 0 {
			continue
		}
		total += n
		rows = append(rows, Row{
			Count:       n,
			PayX:        k.PayX,
			FreeSpins:   k.FreeSpins,
			Probability: float64(n) / float64(trials),
			Multiplier:  float64(k.PayX) / float64(lines),
		})
	}
	if total != trials {
		return nil, errs.NewFatal(fmt.Sprintf("outcome: counts sum %d != trials %d", total, trials))
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Probability != rows[j].Probability {
			return rows[i].Probability > rows[j].Probability
		}
		return rows[i].PayX < rows[j].PayX
	})
	for i := range rows {
		rows[i].SimulationNumber = i
	}

	t := &Table{Mode: mode, Trials: trials, Lines: lines, Rows: rows}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Key 結果等價類的鍵：贏分加上特色簽名。
type Key struct {
	PayX      int
	FreeSpins int
}

// Validate 檢查機率總和。偏差超過容許值代表彙整流程有 bug。
func (t *Table) Validate() error {
	sum := 0.0
	for i := range t.Rows {
		sum += t.Rows[i].Probability
	}
	if math.Abs(sum-1.0) > probTol {
		return errs.NewFatal(fmt.Sprintf("outcome: %s table probability sum %.12f deviates from 1", t.Mode, sum))
	}
	return nil
}

// RTP 表的期望贏倍 Σ p*x。
func (t *Table) RTP() float64 {
	rtp := 0.0
	for i := range t.Rows {
		rtp += t.Rows[i].Probability * t.Rows[i].Multiplier
	}
	return rtp
}

// HitRate 任一非零贏分的機率。
func (t *Table) HitRate() float64 {
	hit := 0.0
	for i := range t.Rows {
		if t.Rows[i].PayX > 0 {
			hit += t.Rows[i].Probability
		}
	}
	return hit
}

// TriggerRate 觸發免費遊戲的機率。
func (t *Table) TriggerRate() float64 {
	tr := 0.0
	for i := range t.Rows {
		if t.Rows[i].FreeSpins > 0 {
			tr += t.Rows[i].Probability
		}
	}
	return tr
}

// Get 以 simulation_number 取列。
func (t *Table) Get(simNo int) (Row, bool) {
	if simNo < 0 || simNo >= len(t.Rows) {
		return Row{}, false
	}
	return t.Rows[simNo], true
}

// Draw 依表機率抽一列。alias table 以原始計數建，首次呼叫建表。
func (t *Table) Draw(c *core.Core) (Row, error) {
	if len(t.Rows) == 0 {
		return Row{}, errs.NewWarn("outcome: empty table")
	}
	if t.alias == nil {
		weights := make([]int, len(t.Rows))
		for i := range t.Rows {
			weights[i] = int(t.Rows[i].Count)
		}
		t.alias = sampler.BuildAliasTable(weights)
	}
	return t.Rows[t.alias.Pick(c)], nil
}
