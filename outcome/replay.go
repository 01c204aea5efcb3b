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

package outcome

import (
	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/spec"
)

// WinLog 單條線的中獎事件（符號還原成名稱）。
type WinLog struct {
	Line   int    `json:"line"`
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
	Pay    int    `json:"pay"`
}

// RoundLog 一次盤面的事件。Screen 是 row-major 的符號名稱。
type RoundLog struct {
	Mode         string   `json:"mode"`
	Stops        []int    `json:"stops"`
	Screen       []string `json:"screen"`
	Wins         []WinLog `json:"wins,omitempty"`
	LinePay      int      `json:"line_pay"`
	ScatterCount int      `json:"scatter_count"`
	ScatterPay   int      `json:"scatter_pay"`
	FreeSpins    int      `json:"free_spins,omitempty"`
}

// Replay 一個結果等價類的代表事件紀錄：
// 去重時第一個落進該類的 spin 的完整過程。
type Replay struct {
	SimulationNumber int        `json:"simulation_number"`
	PayX             int        `json:"pay_x"`
	FreeSpins        int        `json:"free_spins"`
	Multiplier       float64    `json:"payout_multiplier"`
	Rounds           []RoundLog `json:"rounds"`
}

// CaptureReplay 把一次 spin 的結果緩衝深拷貝成事件紀錄。
// 結果緩衝下一次 Spin 會被覆寫，所以這裡一定要整份複製出來。
func CaptureReplay(sr *buf.SpinResult, gs *spec.GameSetting) Replay {
	r := Replay{
		PayX:       sr.BasePayX() + sr.FreePayX(),
		FreeSpins:  sr.FreeSpinsAwarded(),
		Multiplier: sr.TotalX(),
	}
	r.Rounds = appendModeLogs(r.Rounds, ModeBase, sr.Base, gs)
	r.Rounds = appendModeLogs(r.Rounds, ModeFree, sr.Free, gs)
	return r
}

func appendModeLogs(dst []RoundLog, mode string, m *buf.ModeResult, gs *spec.GameSetting) []RoundLog {
	for i := range m.Rounds {
		round := &m.Rounds[i]

		stops := m.RoundStops(i)
		screen := m.RoundScreen(i)
		wins := m.RoundWins(i)

		log := RoundLog{
			Mode:         mode,
			Stops:        make([]int, len(stops)),
			Screen:       make([]string, len(screen)),
			Wins:         make([]WinLog, 0, len(wins)),
			LinePay:      round.LinePay,
			ScatterCount: round.ScatterCount,
			ScatterPay:   round.ScatterPay,
			FreeSpins:    round.FreeSpins,
		}
		for j, s := range stops {
			log.Stops[j] = int(s)
		}
		for j, id := range screen {
			log.Screen[j] = gs.Symbols.Name(id)
		}
		for j := range wins {
			log.Wins = append(log.Wins, WinLog{
				Line:   wins[j].Line,
				Symbol: gs.Symbols.Name(wins[j].Symbol),
				Count:  wins[j].Count,
				Pay:    wins[j].Pay,
			})
		}
		dst = append(dst, log)
	}
	return dst
}
