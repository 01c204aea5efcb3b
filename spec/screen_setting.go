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

// ScreenSetting 描述盤面尺寸。
// 盤面以 row-major 的 []int16 表示，idx = row*Columns + col。
type ScreenSetting struct {
	Columns int `yaml:"columns" json:"columns"`
	Rows    int `yaml:"rows" json:"rows"`
}

const (
	maxColumns = 8
	maxRows    = 8
)

func (s *ScreenSetting) Init() error {
	if s.Columns < 3 || s.Columns > maxColumns {
		return errs.NewFatal(fmt.Sprintf("columns %d out of range [3,%d]", s.Columns, maxColumns))
	}
	if s.Rows < 1 || s.Rows > maxRows {
		return errs.NewFatal(fmt.Sprintf("rows %d out of range [1,%d]", s.Rows, maxRows))
	}
	return nil
}

// Size 盤面格數。
func (s *ScreenSetting) Size() int { return s.Columns * s.Rows }

// Idx 盤面索引。
func (s *ScreenSetting) Idx(row, col int) int { return row*s.Columns + col }
