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

// ReelSetting 定義每一輪的轉輪帶（物理帶）。
//
// 每次 spin 對每輪均勻抽一個停點，從停點起往下取 Rows 個符號
// （帶尾回繞到帶頭），因此每個停點的出現機率恆為 1/帶長。
// 帶的組成（而非權重）決定了符號出現率，調機改的就是這個組成。
type ReelSetting struct {
	Strips [][]string `yaml:"strips" json:"strips"`

	// derived
	ids [][]int16
}

func (r *ReelSetting) Init(columns, rows int, sym *SymbolSetting) error {
	if len(r.Strips) != columns {
		return errs.NewFatal(fmt.Sprintf("have %d strips, want one per column (%d)", len(r.Strips), columns))
	}

	r.ids = make([][]int16, columns)
	for col, strip := range r.Strips {
		if len(strip) < rows {
			return errs.NewFatal(fmt.Sprintf("strip %d has %d stops, need at least rows (%d)", col, len(strip), rows))
		}
		r.ids[col] = make([]int16, len(strip))
		for i, name := range strip {
			id, ok := sym.ID(name)
			if !ok {
				return errs.NewFatal(fmt.Sprintf("strip %d stop %d: unknown symbol %q", col, i, name))
			}
			r.ids[col][i] = id
		}
	}
	return nil
}

// StripIDs 回傳符號 ID 形式的全部轉輪帶。呼叫端視為唯讀；
// 要改帶（調機）請先 CopyStrips。
func (r *ReelSetting) StripIDs() [][]int16 { return r.ids }

// Strip 回傳第 col 輪的帶（唯讀）。
func (r *ReelSetting) Strip(col int) []int16 { return r.ids[col] }

// CopyStrips 深拷貝全部轉輪帶，供調機變異在副本上操作。
func (r *ReelSetting) CopyStrips() [][]int16 {
	cp := make([][]int16, len(r.ids))
	for i, strip := range r.ids {
		cp[i] = append([]int16(nil), strip...)
	}
	return cp
}
