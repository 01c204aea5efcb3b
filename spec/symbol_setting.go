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

// SymbolKind 符號分類。
type SymbolKind uint8

const (
	KindPay     SymbolKind = iota // 一般賠付符號
	KindWild                      // 百搭：可替代任何賠付符號，並有自己的賠付列
	KindScatter                   // 分散：不走線、全盤計數、觸發免費遊戲
)

// SymbolSetting 定義符號集與線賠付表。
//
// 符號 ID 即 Names 的索引（int16），盤面與轉輪帶內部都以 ID 流通，
// 名稱只出現在設定檔與輸出層。
//
// PayTable 每列為「連 MinRun 個起」的賠付（line-bet 單位），
// 例如 columns=5、MinRun=3 時列長為 3，對應 3/4/5 連線。
type SymbolSetting struct {
	Names    []string         `yaml:"names" json:"names"`
	Wild     string           `yaml:"wild" json:"wild"`
	Scatter  string           `yaml:"scatter" json:"scatter"`
	MinRun   int              `yaml:"min_run" json:"min_run"` // 預設 3
	PayTable map[string][]int `yaml:"paytable" json:"paytable"`

	// derived
	index     map[string]int16
	kinds     []SymbolKind
	pays      [][]int // [symbolID][count] 0..Columns，未達 MinRun 為 0
	wildID    int16
	scatterID int16
	columns   int
}

func (s *SymbolSetting) Init(columns int) error {
	if len(s.Names) == 0 {
		return errs.NewFatal("no symbols defined")
	}
	if len(s.Names) > 1<<14 {
		return errs.NewFatal("too many symbols for int16 ids")
	}
	if s.MinRun == 0 {
		s.MinRun = 3
	}
	if s.MinRun < 2 || s.MinRun > columns {
		return errs.NewFatal(fmt.Sprintf("min_run %d out of range [2,%d]", s.MinRun, columns))
	}

	s.columns = columns
	s.index = make(map[string]int16, len(s.Names))
	for i, name := range s.Names {
		if name == "" {
			return errs.NewFatal(fmt.Sprintf("symbol %d has empty name", i))
		}
		if _, dup := s.index[name]; dup {
			return errs.NewFatal(fmt.Sprintf("duplicate symbol name %q", name))
		}
		s.index[name] = int16(i)
	}

	wild, ok := s.index[s.Wild]
	if !ok {
		return errs.NewFatal(fmt.Sprintf("wild symbol %q not in names", s.Wild))
	}
	scatter, ok := s.index[s.Scatter]
	if !ok {
		return errs.NewFatal(fmt.Sprintf("scatter symbol %q not in names", s.Scatter))
	}
	if wild == scatter {
		return errs.NewFatal("wild and scatter must be distinct symbols")
	}
	s.wildID = wild
	s.scatterID = scatter

	s.kinds = make([]SymbolKind, len(s.Names))
	for i := range s.kinds {
		s.kinds[i] = KindPay
	}
	s.kinds[wild] = KindWild
	s.kinds[scatter] = KindScatter

	return s.initPays()
}

func (s *SymbolSetting) initPays() error {
	rowLen := s.columns - s.MinRun + 1

	for name := range s.PayTable {
		if _, ok := s.index[name]; !ok {
			return errs.NewFatal(fmt.Sprintf("paytable references unknown symbol %q", name))
		}
	}
	if _, has := s.PayTable[s.Scatter]; has {
		return errs.NewFatal("scatter must not have a line paytable row (scatter pays live in bonus)")
	}

	s.pays = make([][]int, len(s.Names))
	for i, name := range s.Names {
		s.pays[i] = make([]int, s.columns+1)
		if int16(i) == s.scatterID {
			continue
		}
		row, ok := s.PayTable[name]
		if !ok {
			return errs.NewFatal(fmt.Sprintf("symbol %q has no paytable row", name))
		}
		if len(row) != rowLen {
			return errs.NewFatal(fmt.Sprintf("symbol %q paytable row has %d entries, want %d (runs %d..%d)",
				name, len(row), rowLen, s.MinRun, s.columns))
		}
		prev := 0
		for j, pay := range row {
			if pay < 0 {
				return errs.NewFatal(fmt.Sprintf("symbol %q pay for run %d is negative", name, s.MinRun+j))
			}
			if pay < prev {
				return errs.NewFatal(fmt.Sprintf("symbol %q pays must be non-decreasing in run length", name))
			}
			prev = pay
			s.pays[i][s.MinRun+j] = pay
		}
	}
	return nil
}

// Count 符號數量。
func (s *SymbolSetting) Count() int { return len(s.Names) }

// ID 由名稱查符號 ID。
func (s *SymbolSetting) ID(name string) (int16, bool) {
	id, ok := s.index[name]
	return id, ok
}

// Name 由 ID 查名稱，未知 ID 回空字串。
func (s *SymbolSetting) Name(id int16) string {
	if id < 0 || int(id) >= len(s.Names) {
		return ""
	}
	return s.Names[id]
}

// Pay 回傳符號連 count 個的線賠付（line-bet 單位），未達 MinRun 為 0。
func (s *SymbolSetting) Pay(id int16, count int) int {
	if id < 0 || int(id) >= len(s.pays) || count < 0 || count > s.columns {
		return 0
	}
	return s.pays[id][count]
}

// Kind 回傳符號分類。
func (s *SymbolSetting) Kind(id int16) SymbolKind {
	if id < 0 || int(id) >= len(s.kinds) {
		return KindPay
	}
	return s.kinds[id]
}

func (s *SymbolSetting) WildID() int16    { return s.wildID }
func (s *SymbolSetting) ScatterID() int16 { return s.scatterID }

func (s *SymbolSetting) IsWild(id int16) bool    { return id == s.wildID }
func (s *SymbolSetting) IsScatter(id int16) bool { return id == s.scatterID }
