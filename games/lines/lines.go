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

// Package lines 實作 lines20 遊戲邏輯：
// 線型左起連線 + 全盤分散計數，3+ 分散觸發一段固定倍數的免費遊戲。
package lines

import (
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/sdk/slot"
	"github.com/zintix-labs/reellab/spec"
)

// LogicKey 是本邏輯在 registry 的 key。
const LogicKey spec.LogicKey = "lines20"

// Logic 無狀態；每局狀態都在 Game 的緩衝裡。
type Logic struct{}

func New() Logic { return Logic{} }

func (Logic) Key() spec.LogicKey { return LogicKey }

// GetResult 跑一次完整 spin：
//
//  1. 基礎輪：抽盤面、算線、算分散；分散達標時決定免費次數。
//  2. 免費段：觸發的次數一次跑完，段內線贏與分散贏照常計算
//     （段倍數由 ModeResult.Mult 統一上乘），段內分散不再觸發。
func (Logic) GetResult(g *slot.Game) (*buf.SpinResult, error) {
	gs := g.Setting()
	res := g.Result()
	c := g.Core()

	// 基礎輪
	screen, stops := g.Spinner().Spin(c)
	res.Base.BeginRound(stops, screen)

	wins := g.WinScratch()
	wins, linePay := g.Calc().EvalLines(screen, wins)
	res.Base.AddWins(wins)
	g.KeepWinScratch(wins)

	scatters := g.Calc().CountScatters(screen)
	scatterPay := gs.Bonus.ScatterPay(scatters)
	freeSpins := gs.Bonus.Spins(scatters)
	res.Base.FinishRound(linePay, scatters, scatterPay, freeSpins)

	if freeSpins == 0 {
		return res, nil
	}

	// 免費段
	res.Free.Mult = gs.Bonus.FreeSpinMult
	for spin := 0; spin < freeSpins; spin++ {
		screen, stops = g.Spinner().Spin(c)
		res.Free.BeginRound(stops, screen)

		wins = g.WinScratch()
		wins, linePay = g.Calc().EvalLines(screen, wins)
		res.Free.AddWins(wins)
		g.KeepWinScratch(wins)

		fs := g.Calc().CountScatters(screen)
		res.Free.FinishRound(linePay, fs, gs.Bonus.ScatterPay(fs), 0)
	}

	if len(res.Free.Rounds) != freeSpins {
		return nil, errs.NewFatal("free session round count out of sync")
	}
	return res, nil
}

// Registry 回傳只含本邏輯的 registry，方便外部組裝。
func Registry() (*slot.LogicRegistry, error) {
	reg := slot.NewLogicRegistry()
	if err := reg.Register(New()); err != nil {
		return nil, err
	}
	return reg, nil
}
