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
	"fmt"
	"math"
	"math/big"
	"net/http"
	"sync"

	"github.com/zintix-labs/reellab"
	"github.com/zintix-labs/reellab/dto"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/server/httperr"
	"github.com/zintix-labs/reellab/spec"
	"github.com/zintix-labs/reellab/stats"
)

const (
	maxTrials      = 10_000_000
	defaultWorkers = 4
)

// SimHandler 承載 /v1/sim、/v1/play、/v1/stat。
//
// sim 跑完的 Bundle 會以 gid 為 key 留存一份；
// play 從留存的結果表抽樣，stat 回報最近一次聚合的統計。
type SimHandler struct {
	lab *reellab.Reellab

	mu   sync.Mutex
	last map[spec.GID]*reellab.Bundle
}

func NewSimHandler(lab *reellab.Reellab) *SimHandler {
	return &SimHandler{
		lab:  lab,
		last: make(map[spec.GID]*reellab.Bundle),
	}
}

// resolve 以 gid 優先、game name 備援，解析出已註冊的遊戲。
func (sh *SimHandler) resolve(name string, gid spec.GID) (spec.GID, error) {
	if gid != 0 {
		if _, ok := sh.lab.EntryById(gid); !ok {
			return 0, errs.NewWarn("gid not found")
		}
		return gid, nil
	}
	if name != "" {
		ent, ok := sh.lab.EntryByName(name)
		if !ok {
			return 0, errs.NewWarn("game not found")
		}
		return ent.GID, nil
	}
	return 0, errs.NewWarn("game id or name required")
}

// 內部結構 不影響外部 也不被外部使用
type simResponse struct {
	Stats    *stats.StatReport `json:"stats"`
	Base     dto.TableSummary  `json:"base"`
	Free     *dto.TableSummary `json:"free,omitempty"`
	Seed     int64             `json:"seed"`
	UsedTime int64             `json:"used_ms"`
}

func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	req, err := dto.DecodeSimRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	gid, err := sh.resolve(req.GameName, req.GameId)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 業務檢驗
	if req.Trials > maxTrials {
		httperr.Errs(w, errs.NewWarn("trials must be between 1 to 10,000,000"))
		return
	}
	if req.Workers == 0 {
		req.Workers = defaultWorkers
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}

	sim, err := sh.lab.NewSimulatorWithSeed(gid, *req.Seed)
	if err != nil {
		// 這裡的錯誤是來自reellab 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %d", gid)))
		return
	}
	b, err := sim.AggregateMP(req.Trials, req.Workers, false)
	if err != nil {
		// 這裡的錯誤來自simulator 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}

	sh.mu.Lock()
	sh.last[gid] = b
	sh.mu.Unlock()

	resp := simResponse{
		Stats:    b.Report,
		Base:     dto.NewTableSummary(b.Base),
		Seed:     b.Seed,
		UsedTime: b.Used.Milliseconds(),
	}
	if b.Free != nil {
		f := dto.NewTableSummary(b.Free)
		resp.Free = &f
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SimByCfg 傳入 JSON設定格式 以及希望模擬的局數
//
// 設定不需要事先註冊進 catalog；結果不留存，單純回報。
func (sh *SimHandler) SimByCfg(w http.ResponseWriter, r *http.Request) {
	type simByCfgRequest struct {
		GameSetting json.RawMessage `json:"cfg"`
		Trials      int             `json:"trials"`
		Workers     int             `json:"workers,omitempty"`
		Seed        *int64          `json:"seed,omitempty"`
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. decode request
	req := new(simByCfgRequest)
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20) // 5MB
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.Wrap(err, "json decode failed"))
		return
	}

	// 2. vaild trials
	if req.Trials < 1 || req.Trials > maxTrials {
		httperr.Errs(w, errs.NewWarn("trials must be between 1 to 10,000,000"))
		return
	}
	if req.Workers < 0 {
		httperr.Errs(w, errs.NewWarn("workers must be non-negative integer"))
		return
	}
	if req.Workers == 0 {
		req.Workers = defaultWorkers
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}

	sim, err := sh.lab.NewSimulatorByJSON(req.GameSetting, *req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	b, err := sim.AggregateMP(req.Trials, req.Workers, false)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	resp := simResponse{
		Stats:    b.Report,
		Base:     dto.NewTableSummary(b.Base),
		Seed:     b.Seed,
		UsedTime: b.Used.Milliseconds(),
	}
	if b.Free != nil {
		f := dto.NewTableSummary(b.Free)
		resp.Free = &f
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
