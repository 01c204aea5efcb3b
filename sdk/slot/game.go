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

// Package slot 把模型資料、隨機核心與遊戲邏輯組裝成可運轉的遊戲工作台。
package slot

import (
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/sdk/calc"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/gen"
	"github.com/zintix-labs/reellab/spec"
)

// Game 是一款遊戲的工作台：設定、隨機核心、spinner、算分器與結果緩衝。
// 非並行安全；一台機台一個 Game。
type Game struct {
	gs      *spec.GameSetting
	core    *core.Core
	logic   GameLogic
	spinner *gen.ReelSpinner
	calc    *calc.ScreenCalculator
	result  *buf.SpinResult

	winBuf []calc.LineWin
}

// NewGame 由已驗證的設定組工作台，邏輯依 LogicKey 從 registry 取。
func NewGame(gs *spec.GameSetting, reg *LogicRegistry, c *core.Core) (*Game, error) {
	if gs == nil {
		return nil, errs.NewFatal("game: nil setting")
	}
	if c == nil {
		return nil, errs.NewFatal("game: nil core")
	}
	logic, ok := reg.Get(gs.LogicKey)
	if !ok {
		return nil, errs.NewFatal("game: no logic registered for key " + string(gs.LogicKey))
	}

	spinner, err := gen.NewReelSpinner(gs)
	if err != nil {
		return nil, err
	}
	sc, err := calc.NewScreenCalculator(gs)
	if err != nil {
		return nil, err
	}

	return &Game{
		gs:      gs,
		core:    c,
		logic:   logic,
		spinner: spinner,
		calc:    sc,
		result:  buf.NewSpinResult(gs),
		winBuf:  make([]calc.LineWin, 0, gs.Lines.Count()),
	}, nil
}

// Spin 跑一次完整 spin。回傳的結果是內部緩衝，下一次 Spin 會被覆寫。
func (g *Game) Spin() (*buf.SpinResult, error) {
	g.result.Reset()
	return g.logic.GetResult(g)
}

func (g *Game) Setting() *spec.GameSetting   { return g.gs }
func (g *Game) Core() *core.Core             { return g.core }
func (g *Game) Spinner() *gen.ReelSpinner    { return g.spinner }
func (g *Game) Calc() *calc.ScreenCalculator { return g.calc }
func (g *Game) Result() *buf.SpinResult      { return g.result }

// WinScratch 回傳長度歸零的明細緩衝，供邏輯在單輪內重用。
func (g *Game) WinScratch() []calc.LineWin { return g.winBuf[:0] }

// KeepWinScratch 把成長後的緩衝留給下一輪，避免重配。
func (g *Game) KeepWinScratch(w []calc.LineWin) { g.winBuf = w }
