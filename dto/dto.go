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

// Package dto 定義對外（HTTP）的請求與回應結構。
//
// 內部結果緩衝會被下一次 Spin 覆寫，所以轉 DTO 時一律深拷貝；
// 符號一併還原成名稱，外部不需要知道內部 ID 編碼。
package dto

import (
	"github.com/zintix-labs/reellab/corefmt"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/outcome"
	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/spec"
)

type SpinResult struct {
	GameName  string    `json:"game"`
	GameID    spec.GID  `json:"gameid"`
	Lines     int       `json:"lines"`
	TotalX    float64   `json:"total_x"` // 總贏倍（押注的倍數）
	FreeSpins int       `json:"free_spins"`
	Base      ModeDTO   `json:"base"`
	Free      *ModeDTO  `json:"free,omitempty"` // 未觸發時省略
	State     SpinState `json:"spin_state"`
}

// ModeDTO 一個遊戲模式（基礎或免費段）的完整結果。
type ModeDTO struct {
	Mult       int        `json:"mult"`
	LinePay    int        `json:"line_pay"`
	ScatterPay int        `json:"scatter_pay"`
	PayX       int        `json:"pay_x"` // 1/lines 單位，已乘模式倍數
	Rounds     []RoundDTO `json:"rounds"`
}

type RoundDTO struct {
	Stops        []int        `json:"stops"`
	Screen       []string     `json:"screen"` // row-major 符號名稱
	Wins         []LineWinDTO `json:"wins,omitempty"`
	LinePay      int          `json:"line_pay"`
	ScatterCount int          `json:"scatter_count"`
	ScatterPay   int          `json:"scatter_pay"`
	FreeSpins    int          `json:"free_spins,omitempty"`
}

type LineWinDTO struct {
	Line   int    `json:"line"`
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
	Pay    int    `json:"pay"`
}

type SpinState struct {
	StartCoreSnapB64U string `json:"start_b64u"` // 必回
	AfterCoreSnapB64U string `json:"after_b64u"` // 必回
}

// NewSpinResultDTO 把內部結果深拷貝成對外結構。
func NewSpinResultDTO(sr *buf.SpinResult, gs *spec.GameSetting, state SpinState) (SpinResult, error) {
	if sr == nil {
		return SpinResult{}, errs.NewWarn("spin result is nil")
	}
	if gs == nil {
		return SpinResult{}, errs.NewWarn("game setting is nil")
	}

	dto := SpinResult{
		GameName:  sr.GameName,
		GameID:    sr.GameID,
		Lines:     sr.Lines,
		TotalX:    sr.TotalX(),
		FreeSpins: sr.FreeSpinsAwarded(),
		Base:      newModeDTO(sr.Base, sr.Lines, gs),
		State:     state,
	}
	if len(sr.Free.Rounds) > 0 {
		free := newModeDTO(sr.Free, sr.Lines, gs)
		dto.Free = &free
	}
	return dto, nil
}

func newModeDTO(m *buf.ModeResult, lines int, gs *spec.GameSetting) ModeDTO {
	dto := ModeDTO{
		Mult:       m.Mult,
		LinePay:    m.LinePay,
		ScatterPay: m.ScatterPay,
		PayX:       m.PayX(lines),
		Rounds:     make([]RoundDTO, 0, len(m.Rounds)),
	}
	for i := range m.Rounds {
		round := &m.Rounds[i]
		stops := m.RoundStops(i)
		screen := m.RoundScreen(i)
		wins := m.RoundWins(i)

		rd := RoundDTO{
			Stops:        make([]int, len(stops)),
			Screen:       make([]string, len(screen)),
			LinePay:      round.LinePay,
			ScatterCount: round.ScatterCount,
			ScatterPay:   round.ScatterPay,
			FreeSpins:    round.FreeSpins,
		}
		for j, s := range stops {
			rd.Stops[j] = int(s)
		}
		for j, id := range screen {
			rd.Screen[j] = gs.Symbols.Name(id)
		}
		if len(wins) > 0 {
			rd.Wins = make([]LineWinDTO, len(wins))
			for j := range wins {
				rd.Wins[j] = LineWinDTO{
					Line:   wins[j].Line,
					Symbol: gs.Symbols.Name(wins[j].Symbol),
					Count:  wins[j].Count,
					Pay:    wins[j].Pay,
				}
			}
		}
		dto.Rounds = append(dto.Rounds, rd)
	}
	return dto
}

// NewSpinState 把核心快照編成可回傳的文字形式。
func NewSpinState(start, after []byte) SpinState {
	return SpinState{
		StartCoreSnapB64U: corefmt.EncodeBase64URL(start),
		AfterCoreSnapB64U: corefmt.EncodeBase64URL(after),
	}
}

// PlayResult /v1/play 的回應：抽中的結果列加上代表事件。
type PlayResult struct {
	GameName string         `json:"game"`
	GameID   spec.GID       `json:"gameid"`
	Mode     string         `json:"mode"`
	Row      outcome.Row    `json:"row"`
	Replay   outcome.Replay `json:"replay"`
}

// TableSummary /v1/sim 回應裡一張結果表的摘要。
type TableSummary struct {
	Mode        string  `json:"mode"`
	Trials      uint64  `json:"trials"`
	Outcomes    int     `json:"outcomes"`
	RTP         float64 `json:"rtp"`
	HitRate     float64 `json:"hit_rate"`
	TriggerRate float64 `json:"trigger_rate"`
}

// NewTableSummary 由結果表做摘要。
func NewTableSummary(t *outcome.Table) TableSummary {
	return TableSummary{
		Mode:        t.Mode,
		Trials:      t.Trials,
		Outcomes:    len(t.Rows),
		RTP:         t.RTP(),
		HitRate:     t.HitRate(),
		TriggerRate: t.TriggerRate(),
	}
}
