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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/reellab"
	"github.com/zintix-labs/reellab/dto"
	"github.com/zintix-labs/reellab/games"
	"github.com/zintix-labs/reellab/outcome"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/server/logger"
	"github.com/zintix-labs/reellab/server/svrcfg"
	"github.com/zintix-labs/reellab/stats"
)

func newCfg(t *testing.T) *svrcfg.SvrCfg {
	t.Helper()
	reg, err := games.Registry()
	if err != nil {
		t.Fatal(err)
	}
	lab, err := reellab.NewAuto(
		core.NewDefault(),
		reellab.Configs(games.ConfigFS()),
		reellab.Logics(reg),
	)
	if err != nil {
		t.Fatal(err)
	}
	return &svrcfg.SvrCfg{
		Log:         logger.NewDefaultLogger(logger.ModeSilence),
		SlotBufSize: 1,
		Lab:         lab,
	}
}

func TestSpinHandler(t *testing.T) {
	sh, err := NewSpinHandler(newCfg(t))
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	sh.Spin(w, httptest.NewRequest("GET", "/api/v1/spin?uid=u1&gid=1001", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("spin code = %d body=%q", w.Code, w.Body.String())
	}
	var res dto.SpinResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.GameID != 1001 || res.GameName != "jewel_rush" {
		t.Fatalf("spin result game wrong: %+v", res)
	}
	if res.State.StartCoreSnapB64U == "" || res.State.AfterCoreSnapB64U == "" {
		t.Fatal("spin state must carry snapshots")
	}

	// 未知 gid
	w = httptest.NewRecorder()
	sh.Spin(w, httptest.NewRequest("GET", "/api/v1/spin?uid=u1&gid=77", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown gid code = %d", w.Code)
	}

	// 不支援的方法
	w = httptest.NewRecorder()
	sh.Spin(w, httptest.NewRequest("DELETE", "/api/v1/spin", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("delete code = %d", w.Code)
	}
}

type simResponseView struct {
	Stats *stats.StatReport `json:"stats"`
	Base  dto.TableSummary  `json:"base"`
	Free  *dto.TableSummary `json:"free"`
	Seed  int64             `json:"seed"`
	Used  int64             `json:"used_ms"`
}

func TestSimPlayStatFlow(t *testing.T) {
	cfg := newCfg(t)
	sh := NewSimHandler(cfg.Lab)

	// 尚未聚合：play 與 stat 都要 400
	w := httptest.NewRecorder()
	sh.Play(w, httptest.NewRequest("POST", "/api/v1/play", strings.NewReader(`{"gid":1001}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("play before sim code = %d", w.Code)
	}
	w = httptest.NewRecorder()
	sh.Stat(w, httptest.NewRequest("GET", "/api/v1/stat?gid=1001", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("stat before sim code = %d", w.Code)
	}

	// 聚合
	w = httptest.NewRecorder()
	sh.Sim(w, httptest.NewRequest("POST", "/api/v1/sim",
		strings.NewReader(`{"gid":1001,"trials":20000,"seed":9,"workers":2}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("sim code = %d body=%q", w.Code, w.Body.String())
	}
	var sim simResponseView
	if err := json.Unmarshal(w.Body.Bytes(), &sim); err != nil {
		t.Fatal(err)
	}
	if sim.Seed != 9 {
		t.Fatalf("seed = %d, want 9", sim.Seed)
	}
	if sim.Base.Trials != 20000 || sim.Base.Outcomes < 1 {
		t.Fatalf("base summary wrong: %+v", sim.Base)
	}
	if sim.Stats == nil || sim.Stats.Summary.Rounds != 20000 {
		t.Fatalf("stats summary wrong: %+v", sim.Stats)
	}

	// play base
	w = httptest.NewRecorder()
	sh.Play(w, httptest.NewRequest("POST", "/api/v1/play", strings.NewReader(`{"gid":1001,"mode":"base"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("play code = %d body=%q", w.Code, w.Body.String())
	}
	var pr dto.PlayResult
	if err := json.Unmarshal(w.Body.Bytes(), &pr); err != nil {
		t.Fatal(err)
	}
	if pr.Mode != outcome.ModeBase || pr.Row.SimulationNumber < 0 {
		t.Fatalf("play result wrong: %+v", pr)
	}
	if pr.Replay.SimulationNumber != pr.Row.SimulationNumber {
		t.Fatalf("replay %d does not match row %d", pr.Replay.SimulationNumber, pr.Row.SimulationNumber)
	}

	// play 指定 simulation_number：不抽樣，直接取該列與事件
	w = httptest.NewRecorder()
	sh.Play(w, httptest.NewRequest("POST", "/api/v1/play", strings.NewReader(`{"gid":1001,"simulation_number":0}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("play by number code = %d body=%q", w.Code, w.Body.String())
	}
	pr = dto.PlayResult{}
	if err := json.Unmarshal(w.Body.Bytes(), &pr); err != nil {
		t.Fatal(err)
	}
	if pr.Row.SimulationNumber != 0 || pr.Replay.SimulationNumber != 0 {
		t.Fatalf("play by number result wrong: %+v", pr)
	}

	w = httptest.NewRecorder()
	sh.Play(w, httptest.NewRequest("POST", "/api/v1/play", strings.NewReader(`{"gid":1001,"simulation_number":99999999}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("play beyond table code = %d", w.Code)
	}

	// play free：有觸發才有表
	w = httptest.NewRecorder()
	sh.Play(w, httptest.NewRequest("POST", "/api/v1/play", strings.NewReader(`{"gid":1001,"mode":"free"}`)))
	if sim.Free != nil {
		if w.Code != http.StatusOK {
			t.Fatalf("play free code = %d body=%q", w.Code, w.Body.String())
		}
	} else if w.Code != http.StatusBadRequest {
		t.Fatalf("play free without table code = %d", w.Code)
	}

	// stat 以 name 查
	w = httptest.NewRecorder()
	sh.Stat(w, httptest.NewRequest("GET", "/api/v1/stat?game=jewel_rush", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("stat code = %d body=%q", w.Code, w.Body.String())
	}
	var rep stats.StatReport
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Summary == nil || rep.Summary.Rounds != 20000 {
		t.Fatalf("stat report wrong: %+v", rep.Summary)
	}
}

func TestSimValidationOverHTTP(t *testing.T) {
	cfg := newCfg(t)
	sh := NewSimHandler(cfg.Lab)

	cases := []string{
		`{"trials":1000}`,                  // 沒指定遊戲
		`{"gid":77,"trials":1000}`,         // gid 不存在
		`{"gid":1001,"trials":0}`,          // trials 非法
		`{"gid":1001,"trials":20000000}`,   // trials 超限
		`{"gid":1001,"trials":10,"bad":1}`, // 未知欄位
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		sh.Sim(w, httptest.NewRequest("POST", "/api/v1/sim", strings.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: code = %d, want 400", body, w.Code)
		}
	}

	// GET 不支援
	w := httptest.NewRecorder()
	sh.Sim(w, httptest.NewRequest("GET", "/api/v1/sim?gid=1001&trials=10", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("get sim code = %d, want 400", w.Code)
	}
}

func TestSimByCfg(t *testing.T) {
	cfg := newCfg(t)
	sh := NewSimHandler(cfg.Lab)

	gs, err := cfg.Lab.GameSettingById(1002)
	if err != nil {
		t.Fatal(err)
	}
	var raw bytes.Buffer
	if err := outcome.ExportGameConfig(&raw, gs); err != nil {
		t.Fatal(err)
	}
	body, err := json.Marshal(map[string]any{
		"cfg":    json.RawMessage(raw.Bytes()),
		"trials": 5000,
		"seed":   3,
	})
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	sh.SimByCfg(w, httptest.NewRequest("POST", "/api/v1/simbycfg", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("simbycfg code = %d body=%q", w.Code, w.Body.String())
	}
	var sim simResponseView
	if err := json.Unmarshal(w.Body.Bytes(), &sim); err != nil {
		t.Fatal(err)
	}
	if sim.Base.Trials != 5000 || sim.Seed != 3 {
		t.Fatalf("simbycfg summary wrong: %+v", sim)
	}
}

func TestHealthz(t *testing.T) {
	cfg := newCfg(t)
	h := NewHealthHandler(cfg.Lab)

	w := httptest.NewRecorder()
	h.Healthz(w, httptest.NewRequest("GET", "/api/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz code = %d", w.Code)
	}
	var resp struct {
		Status string `json:"status"`
		Games  int    `json:"games"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Games != 2 {
		t.Fatalf("healthz resp wrong: %+v", resp)
	}
}
