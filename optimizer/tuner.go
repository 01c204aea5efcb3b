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

// Package optimizer 以爬山法調整轉輪帶組成，逼近目標 RTP。
//
// 每輪以最佳候選為錨：距目標超出容忍範圍就依偏差方向變異最佳候選的
// 轉輪帶再量（Rounds 次快速模擬），量得更近就換錨；進入容忍範圍則以
// 新種子重量測一次，兩次都在範圍內才判定收斂。變異是純函數，候選之間
// 不共享帶子，歷程完整保留，跑完 MaxIters 沒收斂也不是錯誤
//（回傳 Converged=false 與最佳候選）。
//
// 給定 seed 之後整條調機過程可重現：量測種子與變異抽樣都來自同一條種子流。
package optimizer

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/slot"
	"github.com/zintix-labs/reellab/spec"
)

// Tuner 調機參數。零值無效，請用 New 從遊戲設定帶出預設。
type Tuner struct {
	Target    float64 // 目標 RTP
	Tolerance float64 // |rtp-target| 在此範圍內視為收斂
	MaxIters  int     // 最多變異幾輪
	Rounds    int     // 每輪量測的模擬次數
	Workers   int     // 量測併發數（<=1 單線）
}

// Candidate 一份候選轉輪帶與它的量測結果。
type Candidate struct {
	Strips     [][]int16 // 符號 ID 形式的轉輪帶（獨立持有，不與其他候選共享）
	RTP        float64
	Volatility float64 // 單 spin 贏倍樣本的標準差
	HitRate    float64
}

// Result 一次調機的總結。
type Result struct {
	Best       Candidate
	History    []Candidate // 依評估順序，含初始候選
	Iterations int         // 實際變異輪數
	Converged  bool
}

// New 由遊戲設定的 tune 區段帶出 Tuner。
func New(gs *spec.GameSetting) *Tuner {
	return &Tuner{
		Target:    gs.Tune.TargetRTP,
		Tolerance: gs.Tune.Tolerance,
		MaxIters:  gs.Tune.MaxIters,
		Rounds:    gs.Tune.Rounds,
		Workers:   1,
	}
}

// Run 從 gs 的現行轉輪帶出發調機。
//
// 收斂與否都不是錯誤：quality 由呼叫端看 Result.Converged 與 Best 決定。
// error 只在參數不合法或候選設定建不起來時出現。
func (t *Tuner) Run(gs *spec.GameSetting, reg *slot.LogicRegistry, cf core.CoreFactory, seed int64) (*Result, error) {
	if gs == nil {
		return nil, errs.NewFatal("game setting required")
	}
	if t.Target <= 0 || t.Target >= 2 {
		return nil, errs.NewWarn("target rtp out of range (0,2)")
	}
	if t.Tolerance <= 0 {
		return nil, errs.NewWarn("tolerance must > 0")
	}
	if t.MaxIters < 1 || t.Rounds < 1 {
		return nil, errs.NewWarn("max iters and rounds must > 0")
	}
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}

	seeds := newSeedStream(seed)
	mutCore := cf.New(seeds.next())

	tier, err := buildTiers(gs)
	if err != nil {
		return nil, err
	}

	cand := Candidate{Strips: gs.Reels.CopyStrips()}
	if err := t.measure(gs, reg, cf, seeds, &cand); err != nil {
		return nil, err
	}

	res := &Result{
		Best:    cand,
		History: []Candidate{cand},
	}

	for i := 0; i < t.MaxIters; i++ {
		done, err := t.confirm(gs, reg, cf, seeds, res)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		res.Iterations++

		// 變異永遠從最佳候選出發
		cand = Mutate(tier, res.Best, t.Target, mutCore)
		if err := t.measure(gs, reg, cf, seeds, &cand); err != nil {
			return nil, err
		}
		res.History = append(res.History, cand)

		if math.Abs(cand.RTP-t.Target) < math.Abs(res.Best.RTP-t.Target) {
			res.Best = cand
		}
	}
	if !res.Converged {
		if _, err := t.confirm(gs, reg, cf, seeds, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// confirm 最佳候選進入容忍範圍時以新種子重量測一次，兩次都在範圍內
// 才判定收斂。重量測的結果取代最佳候選的量測欄位，單次量測的運氣
// 不會重複放行。
func (t *Tuner) confirm(gs *spec.GameSetting, reg *slot.LogicRegistry, cf core.CoreFactory, seeds *seedStream, res *Result) (bool, error) {
	if math.Abs(res.Best.RTP-t.Target) > t.Tolerance {
		return false, nil
	}
	re := res.Best
	if err := t.measure(gs, reg, cf, seeds, &re); err != nil {
		return false, err
	}
	res.Best = re
	if math.Abs(re.RTP-t.Target) <= t.Tolerance {
		res.Converged = true
		return true, nil
	}
	return false, nil
}

// measure 量測候選：以候選帶複製一份設定，跑 Rounds 次並以 gonum 統計
// 單 spin 贏倍樣本填回 RTP / Volatility / HitRate。
func (t *Tuner) measure(gs *spec.GameSetting, reg *slot.LogicRegistry, cf core.CoreFactory, seeds *seedStream, cand *Candidate) error {
	clone, err := gs.CloneWithStrips(cand.Strips)
	if err != nil {
		return err
	}

	workers := max(1, t.Workers)
	if workers > t.Rounds {
		workers = t.Rounds
	}

	// 種子在主 goroutine 依 worker 順序先抽好，保持可重現
	games := make([]*slot.Game, workers)
	for i := range games {
		g, err := slot.NewGame(clone, reg, cf.New(seeds.next()))
		if err != nil {
			return err
		}
		games[i] = g
	}

	share := t.Rounds / workers
	rem := t.Rounds % workers
	samples := make([][]float64, workers)

	wg := new(sync.WaitGroup)
	wg.Add(workers)
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		n := share
		if i < rem {
			n++
		}
		go func(i, n int) {
			defer wg.Done()
			g := games[i]
			xs := make([]float64, 0, n)
			for r := 0; r < n; r++ {
				sr, err := g.Spin()
				if err != nil {
					errCh <- err
					return
				}
				xs = append(xs, sr.TotalX())
			}
			samples[i] = xs
		}(i, n)
	}
	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
	}

	// 照 worker 順序攤平，樣本順序固定
	all := make([]float64, 0, t.Rounds)
	hits := 0
	for _, xs := range samples {
		for _, x := range xs {
			if x > 0 {
				hits++
			}
		}
		all = append(all, xs...)
	}

	cand.RTP = stat.Mean(all, nil)
	cand.Volatility = stat.StdDev(all, nil)
	cand.HitRate = float64(hits) / float64(len(all))
	return nil
}

const mask63 = uint64(1<<63) - 1

// seedStream 與模擬器同款的確定性種子流（單 goroutine 用，不需原子操作）。
type seedStream struct {
	state uint64
}

func newSeedStream(seed int64) *seedStream {
	return &seedStream{state: uint64(seed) & mask63}
}

func (s *seedStream) next() int64 {
	s.state = (s.state*6364136223846793005 + 1442695040888963407) & mask63
	x := s.state
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return int64(x & mask63)
}
