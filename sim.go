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

package reellab

import (
	"crypto/rand"
	"io"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/outcome"
	"github.com/zintix-labs/reellab/recorder"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/slot"
	"github.com/zintix-labs/reellab/spec"
	"github.com/zintix-labs/reellab/stats"
)

const capPrepare int = 100

// Simulator 用於模擬遊戲行為，可建立多台機台並平行紀錄統計與結果表。
type Simulator struct {
	GameName  string              // 遊戲名稱
	GameId    spec.GID            // 遊戲 ID
	gs        *spec.GameSetting   // 方便重用建立 recorder
	logic     *slot.LogicRegistry // 邏輯註冊表
	cf        core.CoreFactory    // 亂數生成器
	initSeed  int64               // 初始下的種子
	seedmaker *seedMaker          // 種子生成器
	mBuf      []*Machine          // 併發執行機台實例
}

// Bundle 一次完整模擬的所有產物：統計報表、基礎/免費結果表與代表事件。
//
// Free 可能為 nil：整輪模擬沒觸發過免費遊戲時沒有免費表可凍結。
type Bundle struct {
	Setting     *spec.GameSetting
	Report      *stats.StatReport
	Base        *outcome.Table
	BaseReplays []outcome.Replay
	Free        *outcome.Table
	FreeReplays []outcome.Replay
	Used        time.Duration
	Seed        int64
}

func newSimulator(gs *spec.GameSetting, reg *slot.LogicRegistry, cf core.CoreFactory) (*Simulator, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, reg, cf, seed.Int64())
}

func newSimulatorWithSeed(gs *spec.GameSetting, reg *slot.LogicRegistry, cf core.CoreFactory, seed int64) (*Simulator, error) {
	s := &Simulator{
		GameName:  gs.GameName,
		GameId:    gs.GameID,
		gs:        gs,
		logic:     reg,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		mBuf:      make([]*Machine, 1, capPrepare),
	}
	m, err := newMachineWithSeed(gs, reg, cf, s.initSeed)
	if err != nil {
		return nil, err
	}
	s.mBuf[0] = m
	return s, nil
}

func (s *Simulator) Seed() int64 { return s.initSeed }

// Sim 單線模擬器：以一台機台連續跑指定 trials 並回傳統計結果與用時。
// 只做統計不凍結結果表，調帶（optimizer）量測走這條最省。
func (s *Simulator) Sim(trials int, showpb bool) (*stats.StatReport, time.Duration, error) {
	if trials < 1 {
		return nil, 0, errs.NewWarn("trials must > 0")
	}
	r, err := recorder.NewSpinRecorder(s.GameName, s.GameId, s.gs.Lines.Count())
	if err != nil {
		return nil, 0, err
	}
	m := s.mBuf[0]

	bar := pb.StartNew(trials)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < trials; i++ {
		sr, err := m.SpinInternal()
		if err != nil {
			return nil, 0, err
		}
		r.Record(sr)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

// Aggregate 單線完整彙整：跑指定 trials，統計之外同時把每個相異結果
// 去重成基礎/免費結果表（含代表事件）。
func (s *Simulator) Aggregate(trials int, showpb bool) (*Bundle, error) {
	if trials < 1 {
		return nil, errs.NewWarn("trials must > 0")
	}
	rec, err := recorder.NewSimRecorder(s.gs)
	if err != nil {
		return nil, err
	}
	m := s.mBuf[0]

	bar := pb.StartNew(trials)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < trials; i++ {
		sr, err := m.SpinInternal()
		if err != nil {
			return nil, err
		}
		rec.Record(sr, s.gs)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()

	return s.bundle(rec, used)
}

// AggregateMP 平行完整彙整：workers 台機台分攤 trials（餘數由前幾台多揹一轉），
// 跑完無損合併所有 recorder 再凍結。
//
// 同一個 (seed, workers) 組合結果完全可重現：每台機台的 seed 來自
// seedmaker 的確定性子流，合併順序也固定。
func (s *Simulator) AggregateMP(trials int, workers int, showpb bool) (*Bundle, error) {
	if trials < 1 {
		return nil, errs.NewWarn("trials must > 0")
	}
	if workers <= 0 {
		return nil, errs.NewWarn("workers must > 0")
	}
	if workers > trials {
		workers = trials
	}
	for len(s.mBuf) < workers {
		m, err := newMachineWithSeed(s.gs, s.logic, s.cf, s.seedmaker.next())
		if err != nil {
			return nil, err
		}
		s.mBuf = append(s.mBuf, m)
	}

	// recorder 一律在主 goroutine 先建好（桶 LUT 的 lazy 初始化不耐併發）
	recs := make([]*recorder.SimRecorder, workers)
	for i := range recs {
		r, err := recorder.NewSimRecorder(s.gs)
		if err != nil {
			return nil, err
		}
		recs[i] = r
	}

	// 餘數攤給前面幾台，每台至多差一轉
	share := trials / workers
	rem := trials % workers

	wg := new(sync.WaitGroup)
	wg.Add(workers)
	bar := pb.StartNew(trials)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		n := share
		if i < rem {
			n++
		}
		go func(i, n int) {
			defer wg.Done()
			m := s.mBuf[i]
			rec := recs[i]
			for r := 0; r < n; r++ {
				sr, err := m.SpinInternal()
				if err != nil {
					errCh <- err
					return
				}
				rec.Record(sr, s.gs)
				bar.Increment()
			}
		}(i, n)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	if err := recs[0].Merge(recs[1:]...); err != nil {
		return nil, err
	}
	return s.bundle(recs[0], used)
}

// bundle 凍結 recorder 成可輸出的最終產物。
func (s *Simulator) bundle(rec *recorder.SimRecorder, used time.Duration) (*Bundle, error) {
	report := rec.Spin.Done()
	report.Done()

	base, baseReplays, err := rec.Base.Done()
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Setting:     s.gs,
		Report:      report,
		Base:        base,
		BaseReplays: baseReplays,
		Used:        used,
		Seed:        s.initSeed,
	}

	// 免費表分母是觸發段數；一次都沒觸發就沒有表可凍結
	if rec.Free.Trials > 0 {
		free, freeReplays, err := rec.Free.Done()
		if err != nil {
			return nil, err
		}
		b.Free = free
		b.FreeReplays = freeReplays
	}
	return b, nil
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 MachinePool 補機）。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
