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

	"github.com/zintix-labs/reellab"
)

type HealthHandler struct {
	lab *reellab.Reellab
}

func NewHealthHandler(lab *reellab.Reellab) *HealthHandler {
	return &HealthHandler{lab: lab}
}

// Healthz 存活與就緒檢查：回報目錄內已註冊的遊戲數。
func (h *HealthHandler) Healthz(w http.ResponseWriter, q *http.Request) {
	type healthResponse struct {
		Status string `json:"status"`
		Games  int    `json:"games"`
	}
	resp := healthResponse{
		Status: "ok",
		Games:  len(h.lab.IDs()),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
