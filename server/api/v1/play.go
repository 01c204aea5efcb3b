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

package v1

import (
	"crypto/rand"
	"encoding/json"
	"math"
	"math/big"
	"net/http"

	"github.com/zintix-labs/reellab/dto"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/outcome"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/server/httperr"
)

// Play 從最近一次 /v1/sim 留存的結果表取一列，附上代表事件。
//
// 未指定 simulation_number 時走 alias table 加權抽樣，不重跑 spin；
// 同一張表抽一億次的成本與抽一次相同。指定時跳過抽樣直接回該列。
// 先跑 /v1/sim 才有表可查。
func (sh *SimHandler) Play(w http.ResponseWriter, q *http.Request) {
	req, err := dto.DecodePlayRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	gid, err := sh.resolve(req.GameName, req.GameId)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	var c *core.Core
	if req.SimulationNumber == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		c = sh.lab.CoreFactory().New(rnd.Int64())
	}

	// Draw 首次呼叫會 lazy 建 alias table，鎖住留存區一併保護。
	sh.mu.Lock()
	b, ok := sh.last[gid]
	if !ok {
		sh.mu.Unlock()
		httperr.Errs(w, errs.NewWarn("no aggregation yet, run /v1/sim first"))
		return
	}
	tbl, replays := b.Base, b.BaseReplays
	if req.Mode == outcome.ModeFree {
		if b.Free == nil {
			sh.mu.Unlock()
			httperr.Errs(w, errs.NewWarn("free table not available: no trigger recorded"))
			return
		}
		tbl, replays = b.Free, b.FreeReplays
	}
	var row outcome.Row
	if n := req.SimulationNumber; n != nil {
		row, ok = tbl.Get(*n)
		sh.mu.Unlock()
		if !ok {
			httperr.Errs(w, errs.NewWarn("simulation_number out of range"))
			return
		}
	} else {
		row, err = tbl.Draw(c)
		sh.mu.Unlock()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
	}

	resp := dto.PlayResult{
		GameName: b.Setting.GameName,
		GameID:   gid,
		Mode:     req.Mode,
		Row:      row,
	}
	if n := row.SimulationNumber; n >= 0 && n < len(replays) {
		resp.Replay = replays[n]
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
