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

// Package recorder 紀錄模擬結果。
//
// SpinRecorder 累積統計量（RTP、分佈、觸發率），
// OutcomeRecorder 做結果去重並保留代表事件；兩者都支援分 worker
// 紀錄後合併，合併順序固定時結果可重現。
package recorder

import (
	"fmt"

	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/spec"
	"github.com/zintix-labs/reellab/stats"
)

// SpinRecorder 遊戲紀錄員
//
// 負責紀錄遊戲結果，並透過 Done 輸出統計報表。
type SpinRecorder struct {
	GameName string
	GameId   spec.GID
	Lines    int
	Basic    *BasicRecord
	Dist     *DistRecord
}

// BasicRecord 基本遊戲資料紀錄（payX，1/lines 單位）
type BasicRecord struct {
	TotalBet      int
	TotalWin      int
	BaseWin       int
	FreeWin       int
	TotalWinSqSum int // 平方和
	BaseWinSqSum  int // 平方和
	FreeWinSqSum  int // 平方和
	Trigger       int
	MaxWin        int
	Rounds        int
}

// DistRecord 贏倍區間落點統計
type DistRecord struct {
	Bucket          *stats.WinBucket
	TotalWinCollect []int
	BaseWinCollect  []int
	FreeWinCollect  []int
}

func NewSpinRecorder(name string, id spec.GID, lines int) (*SpinRecorder, error) {
	s := new(SpinRecorder)

	if lines <= 0 {
		return s, errs.NewFatal(fmt.Sprintf("lines err %d", lines))
	}

	s.GameName = name
	s.GameId = id
	s.Lines = lines
	s.Basic = new(BasicRecord)
	s.Dist = newDistRecord(lines)

	return s, nil
}

func MergeSpinRecorder(r []*SpinRecorder) (*SpinRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge spin record err : empty input")
	}
	r0 := r[0]
	s, err := NewSpinRecorder(r0.GameName, r0.GameId, r0.Lines)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.GameName != r0.GameName {
			return s, errs.NewFatal("merge spin record err : different game name")
		}
		if v.Lines != r0.Lines {
			return s, errs.NewFatal("merge spin record err : different lines")
		}
		s.Basic.TotalBet += v.Basic.TotalBet
		s.Basic.TotalWin += v.Basic.TotalWin
		s.Basic.BaseWin += v.Basic.BaseWin
		s.Basic.FreeWin += v.Basic.FreeWin
		s.Basic.TotalWinSqSum += v.Basic.TotalWinSqSum
		s.Basic.BaseWinSqSum += v.Basic.BaseWinSqSum
		s.Basic.FreeWinSqSum += v.Basic.FreeWinSqSum
		s.Basic.Rounds += v.Basic.Rounds
		s.Basic.Trigger += v.Basic.Trigger
		if v.Basic.MaxWin > s.Basic.MaxWin {
			s.Basic.MaxWin = v.Basic.MaxWin
		}

		// 整合Dist
		for i := range v.Dist.TotalWinCollect {
			s.Dist.TotalWinCollect[i] += v.Dist.TotalWinCollect[i]
			s.Dist.BaseWinCollect[i] += v.Dist.BaseWinCollect[i]
			s.Dist.FreeWinCollect[i] += v.Dist.FreeWinCollect[i]
		}
	}
	return s, nil
}

// Record 以單次 SpinResult 更新統計
func (s *SpinRecorder) Record(sr *buf.SpinResult) {
	s.recordBasic(sr)
	s.recordDist(sr)
}

func (s *SpinRecorder) Done() *stats.StatReport {
	lf := float64(s.Lines)
	ll := lf * lf

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    s.GameName,
			GameId:      s.GameId,
			Lines:       s.Lines,
			TotalBet:    s.Basic.TotalBet,
			TotalWin:    s.Basic.TotalWin,
			BaseWin:     s.Basic.BaseWin,
			FreeWin:     s.Basic.FreeWin,
			RTP:         s.rtp(),
			Trigger:     s.Basic.Trigger,
			TriggerRate: float64(s.Basic.Trigger) / float64(max(s.Basic.Rounds, 1)),
			NoWinRounds: s.Dist.TotalWinCollect[0],
			HitRate:     1.0 - (float64(s.Dist.TotalWinCollect[0]) / float64(max(s.Basic.Rounds, 1))),
			MaxX:        float64(s.Basic.MaxWin) / lf,
			Rounds:      s.Basic.Rounds,
		},
		Mult: &stats.MultReport{
			TotalWinMult:      float64(s.Basic.TotalWin) / lf,
			BaseWinMult:       float64(s.Basic.BaseWin) / lf,
			FreeWinMult:       float64(s.Basic.FreeWin) / lf,
			TotalWinMultSqSum: float64(s.Basic.TotalWinSqSum) / ll,
			BaseWinMultSqSum:  float64(s.Basic.BaseWinSqSum) / ll,
			FreeWinMultSqSum:  float64(s.Basic.FreeWinSqSum) / ll,
		},
		Dist: &stats.DistReport{
			WinBucket:       stats.Buckets.WinBucketStr(),
			TotalWinCollect: s.Dist.TotalWinCollect,
			BaseWinCollect:  s.Dist.BaseWinCollect,
			FreeWinCollect:  s.Dist.FreeWinCollect,
			TotalWinDist:    nil,
			BaseWinDist:     nil,
			FreeWinDist:     nil,
		},
	}

	length := len(report.Dist.WinBucket)

	totalWinF := make([]float64, length)
	baseWinF := make([]float64, length)
	freeWinF := make([]float64, length)
	rf := float64(max(report.Summary.Rounds, 1))
	for i := range length {
		totalWinF[i] = float64(report.Dist.TotalWinCollect[i]) / rf
		baseWinF[i] = float64(report.Dist.BaseWinCollect[i]) / rf
		freeWinF[i] = float64(report.Dist.FreeWinCollect[i]) / rf
	}

	report.Dist.TotalWinDist = totalWinF
	report.Dist.BaseWinDist = baseWinF
	report.Dist.FreeWinDist = freeWinF

	return report
}

func (s *SpinRecorder) rtp() float64 {
	if s.Basic.Rounds == 0 || s.Basic.TotalBet == 0 {
		return 0
	}
	return float64(s.Basic.TotalWin) / float64(s.Basic.TotalBet)
}

func (s *SpinRecorder) recordBasic(res *buf.SpinResult) {
	bw := res.BasePayX()
	fw := res.FreePayX()
	w := bw + fw

	s.Basic.TotalBet += res.Lines
	s.Basic.TotalWin += w
	s.Basic.BaseWin += bw
	s.Basic.FreeWin += fw
	s.Basic.TotalWinSqSum += w * w
	s.Basic.BaseWinSqSum += bw * bw
	s.Basic.FreeWinSqSum += fw * fw

	if w > s.Basic.MaxWin {
		s.Basic.MaxWin = w
	}
	if res.FreeSpinsAwarded() > 0 {
		s.Basic.Trigger++
	}
	s.Basic.Rounds++
}

func (s *SpinRecorder) recordDist(res *buf.SpinResult) {
	d := s.Dist
	b := d.Bucket
	bw := res.BasePayX()
	fw := res.FreePayX()

	d.TotalWinCollect[b.Index(bw+fw)]++
	d.BaseWinCollect[b.Index(bw)]++
	d.FreeWinCollect[b.Index(fw)]++
}

func newDistRecord(lines int) *DistRecord {
	d := new(DistRecord)
	d.Bucket = stats.Buckets.GetBucketByLines(lines)
	d.TotalWinCollect = make([]int, len(stats.Buckets.WinBucketStr()))
	d.BaseWinCollect = make([]int, len(stats.Buckets.WinBucketStr()))
	d.FreeWinCollect = make([]int, len(stats.Buckets.WinBucketStr()))
	return d
}
