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

package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/reellab/corefmt"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/spec"
)

// maxBodyBytes POST body 上限，避免過大 body 影響服務。
const maxBodyBytes = 1 << 20

type SpinRequest struct {
	UID      string   `json:"uid"`  // 唯一識別碼
	GameName string   `json:"game"` // 要玩的遊戲
	GameId   spec.GID `json:"gid"`  // 遊戲機台編號
	// StartState 缺省 / null：新局。
	// start_b64u 有值：回放或續玩（帶上一局回應的 after_b64u 延續 RNG 流水）。
	StartState *StartState `json:"start_state,omitempty"`
}

type StartState struct {
	StartCoreSnapB64U string `json:"start_b64u"`
}

// Snap 解回核心快照 bytes；空字串回 nil。
func (s *StartState) Snap() ([]byte, error) {
	if s == nil || s.StartCoreSnapB64U == "" {
		return nil, nil
	}
	return corefmt.DecodeBase64URL(s.StartCoreSnapB64U)
}

// DecodeSpinRequest 把 HTTP 請求解碼成 SpinRequest。
//
// 支援：
//   - GET：query string（uid/game/gid）。巢狀狀態請用 POST。
//   - POST：JSON body（支援 start_state），DisallowUnknownFields 嚴格拒絕未知欄位。
//
// 這裡只負責解碼與基本型別轉換；遊戲合法性（GID 是否存在等）由上層決定。
func DecodeSpinRequest(r *http.Request) (*SpinRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(SpinRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.GameName = q.Get("game")
		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid gid: %v", err))
			}
			req.GameId = spec.GID(u)
		}
		return req, nil

	case http.MethodPost:
		if err := decodeJSONBody(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed: " + r.Method)
	}
}

// SimRequest /v1/sim 的請求。
type SimRequest struct {
	GameName string   `json:"game"`
	GameId   spec.GID `json:"gid"`
	Trials   int      `json:"trials"`
	Seed     *int64   `json:"seed,omitempty"` // 缺省時隨機
	Workers  int      `json:"workers,omitempty"`
}

func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed: " + r.Method)
	}
	req := new(SimRequest)
	if err := decodeJSONBody(r, req); err != nil {
		return nil, err
	}
	if req.Trials <= 0 {
		return nil, errs.NewWarn("trials must be > 0")
	}
	if req.Workers < 0 {
		return nil, errs.NewWarn("workers must be >= 0")
	}
	return req, nil
}

// PlayRequest /v1/play 的請求：從凍結的結果表加權抽一個 simulation_number，
// 或指定 simulation_number 直接查該列。
type PlayRequest struct {
	GameName         string   `json:"game"`
	GameId           spec.GID `json:"gid"`
	Mode             string   `json:"mode,omitempty"`              // base（預設）或 free
	SimulationNumber *int     `json:"simulation_number,omitempty"` // 給定就不抽樣，直接取這一列
}

func DecodePlayRequest(r *http.Request) (*PlayRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed: " + r.Method)
	}
	req := new(PlayRequest)
	if err := decodeJSONBody(r, req); err != nil {
		return nil, err
	}
	if req.Mode == "" {
		req.Mode = "base"
	}
	if req.Mode != "base" && req.Mode != "free" {
		return nil, errs.NewWarn("mode must be base or free")
	}
	if req.SimulationNumber != nil && *req.SimulationNumber < 0 {
		return nil, errs.NewWarn("simulation_number must be >= 0")
	}
	return req, nil
}

func decodeJSONBody(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.NewWarn(fmt.Sprintf("invalid json body: %v", err))
	}
	if dec.More() {
		return errs.NewWarn("invalid json body: trailing data")
	}
	return nil
}
