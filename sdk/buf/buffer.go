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

// Package buf 定義 spin 熱路徑的結果緩衝。
//
// 模擬一輪動輒數百萬次 spin，結果結構全部重用：
// 每次 spin 前 Reset，flat buffer 只前進不重配。
// 需要把結果帶出熱路徑（結果表代表盤、DTO 輸出）時走 Snapshot 深拷貝。
package buf

import (
	"github.com/zintix-labs/reellab/sdk/calc"
	"github.com/zintix-labs/reellab/spec"
)

// Round 是一次盤面（基礎遊戲一輪，或免費遊戲的其中一轉）的結果。
// Stops/Screen/Wins 以索引範圍指向 ModeResult 的 flat buffer，
// 避免 slice header 被後續 append 的重配作廢。
type Round struct {
	StopsAt      int // ModeResult.Stops 裡的起點，長度 = columns
	ScreenAt     int // ModeResult.Screens 裡的起點，長度 = screenSize
	WinsFrom     int // ModeResult.Wins 的 [WinsFrom, WinsTo)
	WinsTo       int
	LinePay      int // 本輪線贏分合計（line-bet 單位，未乘模式倍數）
	ScatterCount int
	ScatterPay   int // 本輪分散贏分（總押注倍數，未乘模式倍數）
	FreeSpins    int // 本輪觸發的免費次數（免費遊戲內恆為 0）
}

// ModeResult 累積一個遊戲模式（基礎或免費段）的所有輪。
type ModeResult struct {
	Mult       int // 模式倍數：基礎 1、免費段為設定的 free_spin_multiplier
	LinePay    int // 各輪 LinePay 合計（未乘 Mult）
	ScatterPay int // 各輪 ScatterPay 合計（未乘 Mult）
	Rounds     []Round

	// flat buffers
	Stops   []int16
	Screens []int16
	Wins    []calc.LineWin

	columns    int
	screenSize int
}

// NewModeResult 預配一個模式的緩衝。capRounds 只是初始容量。
func NewModeResult(columns, screenSize, capRounds int) *ModeResult {
	return &ModeResult{
		Mult:       1,
		Rounds:     make([]Round, 0, capRounds),
		Stops:      make([]int16, 0, capRounds*columns),
		Screens:    make([]int16, 0, capRounds*screenSize),
		Wins:       make([]calc.LineWin, 0, capRounds*2),
		columns:    columns,
		screenSize: screenSize,
	}
}

// Reset 清空所有輪，保留底層容量。
func (m *ModeResult) Reset() {
	m.Mult = 1
	m.LinePay = 0
	m.ScatterPay = 0
	m.Rounds = m.Rounds[:0]
	m.Stops = m.Stops[:0]
	m.Screens = m.Screens[:0]
	m.Wins = m.Wins[:0]
}

// BeginRound 快照停點與盤面，開啟新的一輪。之後以 AddWin/FinishRound 補完。
func (m *ModeResult) BeginRound(stops, screen []int16) {
	m.Rounds = append(m.Rounds, Round{
		StopsAt:  len(m.Stops),
		ScreenAt: len(m.Screens),
		WinsFrom: len(m.Wins),
		WinsTo:   len(m.Wins),
	})
	m.Stops = append(m.Stops, stops...)
	m.Screens = append(m.Screens, screen...)
}

// AddWins 把本輪的線中獎明細收進 flat buffer。
func (m *ModeResult) AddWins(wins []calc.LineWin) {
	m.Wins = append(m.Wins, wins...)
	m.Rounds[len(m.Rounds)-1].WinsTo = len(m.Wins)
}

// FinishRound 記錄本輪合計。
func (m *ModeResult) FinishRound(linePay, scatterCount, scatterPay, freeSpins int) {
	r := &m.Rounds[len(m.Rounds)-1]
	r.LinePay = linePay
	r.ScatterCount = scatterCount
	r.ScatterPay = scatterPay
	r.FreeSpins = freeSpins
	m.LinePay += linePay
	m.ScatterPay += scatterPay
}

// RoundStops 取第 i 輪的停點視圖（唯讀，下次 Reset 前有效）。
func (m *ModeResult) RoundStops(i int) []int16 {
	at := m.Rounds[i].StopsAt
	return m.Stops[at : at+m.columns]
}

// RoundScreen 取第 i 輪的盤面視圖（唯讀，下次 Reset 前有效）。
func (m *ModeResult) RoundScreen(i int) []int16 {
	at := m.Rounds[i].ScreenAt
	return m.Screens[at : at+m.screenSize]
}

// RoundWins 取第 i 輪的中獎明細視圖（唯讀，下次 Reset 前有效）。
func (m *ModeResult) RoundWins(i int) []calc.LineWin {
	r := m.Rounds[i]
	return m.Wins[r.WinsFrom:r.WinsTo]
}

// PayX 模式贏分，單位為 line-bet 的 1/lines：
// (線贏分 + 分散倍數*線數) * 模式倍數。總贏倍 = PayX / lines。
func (m *ModeResult) PayX(lines int) int {
	return (m.LinePay + m.ScatterPay*lines) * m.Mult
}

// SpinResult 一次完整 spin：基礎一輪，可能外加一段免費遊戲。
type SpinResult struct {
	GameName string
	GameID   spec.GID
	Logic    spec.LogicKey
	Lines    int // 線數（總押注 = Lines 個 line-bet）

	Base *ModeResult
	Free *ModeResult // 未觸發時 len(Free.Rounds) == 0
}

// NewSpinResult 配置一份可重用的結果緩衝。
func NewSpinResult(gs *spec.GameSetting) *SpinResult {
	cols := gs.Screen.Columns
	size := gs.Screen.Size()
	return &SpinResult{
		GameName: gs.GameName,
		GameID:   gs.GameID,
		Logic:    gs.LogicKey,
		Lines:    gs.Lines.Count(),
		Base:     NewModeResult(cols, size, 1),
		Free:     NewModeResult(cols, size, 8),
	}
}

// Reset 供下一次 spin 重用。
func (r *SpinResult) Reset() {
	r.Base.Reset()
	r.Free.Reset()
}

// FreeSpinsAwarded 基礎輪觸發的免費次數（未觸發為 0）。
func (r *SpinResult) FreeSpinsAwarded() int {
	n := 0
	for i := range r.Base.Rounds {
		n += r.Base.Rounds[i].FreeSpins
	}
	return n
}

// BasePayX 基礎輪贏分（1/lines 單位）。
func (r *SpinResult) BasePayX() int { return r.Base.PayX(r.Lines) }

// FreePayX 免費段贏分（1/lines 單位，已含免費倍數）。
func (r *SpinResult) FreePayX() int { return r.Free.PayX(r.Lines) }

// TotalX 整次 spin 的總贏倍（押注的倍數）。
func (r *SpinResult) TotalX() float64 {
	return float64(r.BasePayX()+r.FreePayX()) / float64(r.Lines)
}
