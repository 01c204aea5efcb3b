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

package spec

import (
	"fmt"

	"github.com/zintix-labs/reellab/errs"
)

// TuneSetting 定義調機目標與預算。
type TuneSetting struct {
	TargetRTP float64 `yaml:"target_rtp" json:"target_rtp"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`           // 預設 0.005
	MaxIters  int     `yaml:"max_iterations" json:"max_iterations"` // 預設 50
	Rounds    int     `yaml:"rounds" json:"rounds"`                 // 每輪評估的模擬次數，預設 200000
}

const (
	defaultTolerance = 0.005
	defaultMaxIters  = 50
	defaultRounds    = 200000
)

func (t *TuneSetting) Init() error {
	if t.Tolerance == 0 {
		t.Tolerance = defaultTolerance
	}
	if t.MaxIters == 0 {
		t.MaxIters = defaultMaxIters
	}
	if t.Rounds == 0 {
		t.Rounds = defaultRounds
	}

	if t.TargetRTP <= 0 || t.TargetRTP >= 2 {
		return errs.NewFatal(fmt.Sprintf("target_rtp %v out of range (0,2)", t.TargetRTP))
	}
	if t.Tolerance <= 0 || t.Tolerance >= t.TargetRTP {
		return errs.NewFatal(fmt.Sprintf("tolerance %v must be in (0, target_rtp)", t.Tolerance))
	}
	if t.MaxIters < 1 {
		return errs.NewFatal(fmt.Sprintf("max_iterations %d must be >= 1", t.MaxIters))
	}
	if t.Rounds < 1000 {
		return errs.NewFatal(fmt.Sprintf("rounds %d too small for a stable estimate (min 1000)", t.Rounds))
	}
	return nil
}
