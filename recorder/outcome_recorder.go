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

package recorder

import (
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/outcome"
	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/spec"
)

// classRecord 一個結果等價類：出現次數與第一次出現的代表事件。
type classRecord struct {
	count uint64
	rep   outcome.Replay
}

// OutcomeRecorder 依 (payX, freeSpins) 去重，累積每類出現次數。
// 每類第一次出現時深拷貝一份完整事件紀錄當代表盤。非並行安全；
// 分 worker 各自紀錄，Merge 後 Done。
type OutcomeRecorder struct {
	Mode    string
	Lines   int
	Trials  uint64
	classes map[outcome.Key]*classRecord
}

func NewOutcomeRecorder(mode string, lines int) (*OutcomeRecorder, error) {
	if mode != outcome.ModeBase && mode != outcome.ModeFree {
		return nil, errs.NewFatal("outcome recorder: unknown mode " + mode)
	}
	if lines <= 0 {
		return nil, errs.NewFatal("outcome recorder: lines must be > 0")
	}
	return &OutcomeRecorder{
		Mode:    mode,
		Lines:   lines,
		classes: make(map[outcome.Key]*classRecord, 1024),
	}, nil
}

// Record 收一筆結果。capture 只在該類第一次出現時被呼叫，
// 避免每 spin 都付深拷貝成本。
func (o *OutcomeRecorder) Record(key outcome.Key, capture func() outcome.Replay) {
	o.Trials++
	if cr, ok := o.classes[key]; ok {
		cr.count++
		return
	}
	o.classes[key] = &classRecord{count: 1, rep: capture()}
}

// Merge 把其他 recorder 併進來：次數相加，代表盤先到先贏。
// 呼叫順序固定時合併結果可重現。
func (o *OutcomeRecorder) Merge(others ...*OutcomeRecorder) error {
	for _, v := range others {
		if v == nil {
			continue
		}
		if v.Mode != o.Mode {
			return errs.NewFatal("outcome recorder merge: different mode")
		}
		if v.Lines != o.Lines {
			return errs.NewFatal("outcome recorder merge: different lines")
		}
		o.Trials += v.Trials
		for key, cr := range v.classes {
			if mine, ok := o.classes[key]; ok {
				mine.count += cr.count
				continue
			}
			o.classes[key] = &classRecord{count: cr.count, rep: cr.rep}
		}
	}
	return nil
}

// Done 凍結成結果表，並回傳依 simulation_number 排序的代表事件。
func (o *OutcomeRecorder) Done() (*outcome.Table, []outcome.Replay, error) {
	counts := make(map[outcome.Key]uint64, len(o.classes))
	for key, cr := range o.classes {
		counts[key] = cr.count
	}
	tbl, err := outcome.NewTable(o.Mode, o.Lines, o.Trials, counts)
	if err != nil {
		return nil, nil, err
	}

	// 排序後才知道每類的 simulation_number，回填代表盤。
	replays := make([]outcome.Replay, len(tbl.Rows))
	for i := range tbl.Rows {
		row := &tbl.Rows[i]
		cr, ok := o.classes[outcome.Key{PayX: row.PayX, FreeSpins: row.FreeSpins}]
		if !ok {
			return nil, nil, errs.NewFatal("outcome recorder: row without class record")
		}
		cr.rep.SimulationNumber = row.SimulationNumber
		replays[i] = cr.rep
	}
	return tbl, replays, nil
}

// SimRecorder 一次完整彙整的所有 recorder：
// 統計報表 + 基礎結果表 + 免費結果表。
type SimRecorder struct {
	Spin *SpinRecorder
	Base *OutcomeRecorder
	Free *OutcomeRecorder
}

func NewSimRecorder(gs *spec.GameSetting) (*SimRecorder, error) {
	lines := gs.Lines.Count()
	sr, err := NewSpinRecorder(gs.GameName, gs.GameID, lines)
	if err != nil {
		return nil, err
	}
	base, err := NewOutcomeRecorder(outcome.ModeBase, lines)
	if err != nil {
		return nil, err
	}
	free, err := NewOutcomeRecorder(outcome.ModeFree, lines)
	if err != nil {
		return nil, err
	}
	return &SimRecorder{Spin: sr, Base: base, Free: free}, nil
}

// Record 把一次 spin 收進所有 recorder。
//
// 基礎表的鍵是 (基礎輪 payX, 觸發的免費次數)；觸發時免費段
// 另外以 (免費段 payX, 免費次數) 收進免費表，分母是段數。
func (r *SimRecorder) Record(sr *buf.SpinResult, gs *spec.GameSetting) {
	r.Spin.Record(sr)

	fs := sr.FreeSpinsAwarded()
	lines := float64(sr.Lines)

	// 代表盤的 PayX/倍數對齊所屬表的列，完整過程仍錄基礎+免費。
	r.Base.Record(outcome.Key{PayX: sr.BasePayX(), FreeSpins: fs}, func() outcome.Replay {
		rep := outcome.CaptureReplay(sr, gs)
		rep.PayX = sr.BasePayX()
		rep.Multiplier = float64(rep.PayX) / lines
		return rep
	})
	if fs > 0 {
		r.Free.Record(outcome.Key{PayX: sr.FreePayX(), FreeSpins: fs}, func() outcome.Replay {
			rep := outcome.CaptureReplay(sr, gs)
			rep.PayX = sr.FreePayX()
			rep.Multiplier = float64(rep.PayX) / lines
			return rep
		})
	}
}

// Merge 合併其他 SimRecorder（worker 收尾用）。
func (r *SimRecorder) Merge(others ...*SimRecorder) error {
	spins := make([]*SpinRecorder, 0, len(others)+1)
	spins = append(spins, r.Spin)
	for _, v := range others {
		if v == nil {
			continue
		}
		spins = append(spins, v.Spin)
		if err := r.Base.Merge(v.Base); err != nil {
			return err
		}
		if err := r.Free.Merge(v.Free); err != nil {
			return err
		}
	}
	merged, err := MergeSpinRecorder(spins)
	if err != nil {
		return err
	}
	r.Spin = merged
	return nil
}
