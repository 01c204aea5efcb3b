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

// LineSetting 定義中獎線。
//
// 每條線是「每一欄取哪一列」的 row index 序列，長度必須等於欄數。
// 內部攤平成 flat []int16（盤面索引）讓算分走連續記憶體。
type LineSetting struct {
	Lines [][]int `yaml:"lines" json:"lines"`

	// derived
	flat    []int16
	columns int
}

func (l *LineSetting) Init(columns, rows int) error {
	if len(l.Lines) == 0 {
		return errs.NewFatal("no paylines defined")
	}

	l.columns = columns
	l.flat = make([]int16, 0, len(l.Lines)*columns)
	for li, line := range l.Lines {
		if len(line) != columns {
			return errs.NewFatal(fmt.Sprintf("payline %d has %d entries, want %d", li, len(line), columns))
		}
		for col, row := range line {
			if row < 0 || row >= rows {
				return errs.NewFatal(fmt.Sprintf("payline %d column %d: row %d out of range [0,%d)", li, col, row, rows))
			}
			l.flat = append(l.flat, int16(row*columns+col))
		}
	}
	return nil
}

// Count 線數。總押注 = Count 個 line-bet；總贏倍 = 線贏分合計 / Count。
func (l *LineSetting) Count() int { return len(l.Lines) }

// Flat 回傳攤平後的線表（盤面索引，唯讀）。
func (l *LineSetting) Flat() []int16 { return l.flat }

// Line 回傳第 i 條線的盤面索引切片（唯讀）。
func (l *LineSetting) Line(i int) []int16 {
	return l.flat[i*l.columns : (i+1)*l.columns]
}
