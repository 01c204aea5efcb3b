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
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/server/httperr"
	"github.com/zintix-labs/reellab/spec"
)

// Stat 回報指定遊戲最近一次 /v1/sim 的完整統計。
func (sh *SimHandler) Stat(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var gid spec.GID
	if s := q.URL.Query().Get("gid"); s != "" {
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			httperr.Errs(w, errs.NewWarn("gid must be non-negative integer"))
			return
		}
		gid = spec.GID(u)
	}
	gid, err := sh.resolve(q.URL.Query().Get("game"), gid)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	sh.mu.Lock()
	b, ok := sh.last[gid]
	sh.mu.Unlock()
	if !ok {
		httperr.Errs(w, errs.NewWarn("no aggregation yet, run /v1/sim first"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b.Report)
}
