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
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/sdk/calc"
	"github.com/zintix-labs/reellab/spec"
)

func testSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs := &spec.GameSetting{
		GameName: "dto_test",
		GameID:   9,
		LogicKey: "lines20",
		Screen:   spec.ScreenSetting{Columns: 5, Rows: 3},
		Symbols: spec.SymbolSetting{
			Names:   []string{"W", "S", "H1", "L1"},
			Wild:    "W",
			Scatter: "S",
			PayTable: map[string][]int{
				"W":  {50, 200, 1000},
				"H1": {30, 100, 500},
				"L1": {10, 30, 100},
			},
		},
		Reels: spec.ReelSetting{Strips: [][]string{
			{"W", "S", "H1", "L1", "L1", "H1"},
			{"H1", "L1", "W", "S", "L1", "H1"},
			{"L1", "H1", "S", "W", "L1", "L1"},
			{"S", "L1", "H1", "L1", "W", "H1"},
			{"L1", "W", "L1", "H1", "S", "L1"},
		}},
		Lines: spec.LineSetting{Lines: [][]int{
			{1, 1, 1, 1, 1},
			{0, 0, 0, 0, 0},
		}},
		Bonus: spec.BonusSetting{
			ScatterPays:  map[int]int{3: 5, 4: 20, 5: 100},
			FreeSpins:    map[int]int{3: 2, 4: 3, 5: 4},
			FreeSpinMult: 3,
		},
		Tune: spec.TuneSetting{TargetRTP: 0.96},
	}
	if err := gs.Init(); err != nil {
		t.Fatalf("init setting: %v", err)
	}
	return gs
}

// sampleSpinResult 基礎輪中一條 H1x3 線（pay 30），無免費。
func sampleSpinResult(gs *spec.GameSetting) *buf.SpinResult {
	sr := buf.NewSpinResult(gs)
	stops := make([]int16, gs.Screen.Columns)
	screen := make([]int16, gs.Screen.Size())
	for i := range screen {
		screen[i] = 2 // H1
	}
	sr.Base.BeginRound(stops, screen)
	sr.Base.AddWins([]calc.LineWin{{Line: 0, Symbol: 2, Count: 3, Pay: 30}})
	sr.Base.FinishRound(30, 0, 0, 0)
	return sr
}

func TestNewSpinResultDTO(t *testing.T) {
	gs := testSetting(t)
	sr := sampleSpinResult(gs)

	state := NewSpinState([]byte{1, 2, 3}, []byte{4, 5, 6})
	d, err := NewSpinResultDTO(sr, gs, state)
	if err != nil {
		t.Fatalf("NewSpinResultDTO: %v", err)
	}
	if d.GameName != "dto_test" || d.GameID != 9 {
		t.Fatalf("identity: %+v", d)
	}
	if d.Lines != gs.Lines.Count() {
		t.Fatalf("lines = %d", d.Lines)
	}
	if d.Base.PayX != 30 || len(d.Base.Rounds) != 1 {
		t.Fatalf("base mode: %+v", d.Base)
	}
	if d.TotalX != 15 {
		t.Fatalf("total_x = %v", d.TotalX)
	}
	if d.Free != nil {
		t.Fatalf("free 段沒觸發時應為 nil")
	}
	rd := d.Base.Rounds[0]
	if len(rd.Wins) != 1 || rd.Wins[0].Symbol != "H1" || rd.Wins[0].Pay != 30 {
		t.Fatalf("wins: %+v", rd.Wins)
	}
	if len(rd.Screen) != gs.Screen.Size() || rd.Screen[0] != "H1" {
		t.Fatalf("screen: %v", rd.Screen)
	}
	if len(rd.Stops) != gs.Screen.Columns {
		t.Fatalf("stops: %v", rd.Stops)
	}
	if d.State.StartCoreSnapB64U == "" || d.State.AfterCoreSnapB64U == "" {
		t.Fatalf("state: %+v", d.State)
	}

	if _, err := NewSpinResultDTO(nil, gs, state); err == nil {
		t.Fatal("nil result 應該失敗")
	}
	if _, err := NewSpinResultDTO(sr, nil, state); err == nil {
		t.Fatal("nil setting 應該失敗")
	}
}

func TestSpinResultDeepCopy(t *testing.T) {
	gs := testSetting(t)
	sr := sampleSpinResult(gs)
	d, err := NewSpinResultDTO(sr, gs, SpinState{})
	if err != nil {
		t.Fatalf("dto: %v", err)
	}

	// 緩衝重用後 DTO 不應跟著變。
	sr.Reset()
	stops := []int16{5, 5, 5, 5, 5}
	screen := make([]int16, gs.Screen.Size())
	for i := range screen {
		screen[i] = 3 // L1
	}
	sr.Base.BeginRound(stops, screen)
	sr.Base.FinishRound(0, 0, 0, 0)

	if d.Base.Rounds[0].Screen[0] != "H1" || d.Base.Rounds[0].Stops[0] != 0 {
		t.Fatalf("DTO 被重用汙染: %+v", d.Base.Rounds[0])
	}
}

func TestDecodeSpinRequestGET(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/spin?uid=u1&game=dto_test&gid=9", nil)
	req, err := DecodeSpinRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.UID != "u1" || req.GameName != "dto_test" || req.GameId != 9 {
		t.Fatalf("req: %+v", req)
	}

	r = httptest.NewRequest("GET", "/v1/spin?gid=zzz", nil)
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatal("壞 gid 應該失敗")
	}
}

func TestDecodeSpinRequestPOST(t *testing.T) {
	body := `{"uid":"u2","game":"dto_test","gid":9,"start_state":{"start_b64u":"AQID"}}`
	r := httptest.NewRequest("POST", "/v1/spin", strings.NewReader(body))
	req, err := DecodeSpinRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.StartState == nil {
		t.Fatal("start_state 應該有值")
	}
	snap, err := req.StartState.Snap()
	if err != nil {
		t.Fatalf("snap: %v", err)
	}
	if len(snap) != 3 || snap[0] != 1 {
		t.Fatalf("snap bytes: %v", snap)
	}

	var none *StartState
	if b, err := none.Snap(); err != nil || b != nil {
		t.Fatalf("nil state: %v %v", b, err)
	}

	r = httptest.NewRequest("POST", "/v1/spin", strings.NewReader(`{"nope":1}`))
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatal("未知欄位應該失敗")
	}

	r = httptest.NewRequest("DELETE", "/v1/spin", nil)
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatal("不支援的 method 應該失敗")
	}
}

func TestDecodeSimAndPlayRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/sim", strings.NewReader(`{"game":"g","trials":1000,"workers":4}`))
	sreq, err := DecodeSimRequest(r)
	if err != nil {
		t.Fatalf("sim decode: %v", err)
	}
	if sreq.Trials != 1000 || sreq.Workers != 4 || sreq.Seed != nil {
		t.Fatalf("sim req: %+v", sreq)
	}

	r = httptest.NewRequest("POST", "/v1/sim", strings.NewReader(`{"game":"g","trials":0}`))
	if _, err := DecodeSimRequest(r); err == nil {
		t.Fatal("trials=0 應該失敗")
	}

	r = httptest.NewRequest("POST", "/v1/play", strings.NewReader(`{"game":"g"}`))
	preq, err := DecodePlayRequest(r)
	if err != nil {
		t.Fatalf("play decode: %v", err)
	}
	if preq.Mode != "base" {
		t.Fatalf("預設 mode 應為 base: %q", preq.Mode)
	}

	r = httptest.NewRequest("POST", "/v1/play", strings.NewReader(`{"game":"g","mode":"bonus"}`))
	if _, err := DecodePlayRequest(r); err == nil {
		t.Fatal("未知 mode 應該失敗")
	}

	r = httptest.NewRequest("POST", "/v1/play", strings.NewReader(`{"game":"g","simulation_number":3}`))
	preq, err = DecodePlayRequest(r)
	if err != nil {
		t.Fatalf("play decode: %v", err)
	}
	if preq.SimulationNumber == nil || *preq.SimulationNumber != 3 {
		t.Fatalf("simulation_number: %+v", preq.SimulationNumber)
	}

	r = httptest.NewRequest("POST", "/v1/play", strings.NewReader(`{"game":"g","simulation_number":-1}`))
	if _, err := DecodePlayRequest(r); err == nil {
		t.Fatal("負的 simulation_number 應該失敗")
	}
}

func TestSpinResultJSONShape(t *testing.T) {
	gs := testSetting(t)
	sr := sampleSpinResult(gs)
	d, err := NewSpinResultDTO(sr, gs, SpinState{})
	if err != nil {
		t.Fatalf("dto: %v", err)
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, key := range []string{`"game"`, `"gameid"`, `"total_x"`, `"base"`} {
		if !strings.Contains(s, key) {
			t.Fatalf("json 缺欄位 %s: %s", key, s)
		}
	}
	if strings.Contains(s, `"free"`) {
		t.Fatalf("free 未觸發不該輸出: %s", s)
	}
}
