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

package slot

import (
	"sort"

	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/spec"
)

// GameLogic 定義一款遊戲邏輯。
// 實作必須是無狀態的（可被多台機台共用）；所有每局狀態都放在 Game 的緩衝裡。
type GameLogic interface {
	Key() spec.LogicKey
	GetResult(g *Game) (*buf.SpinResult, error)
}

// LogicRegistry 以 LogicKey 對應遊戲邏輯。建好後唯讀。
type LogicRegistry struct {
	m map[spec.LogicKey]GameLogic
}

func NewLogicRegistry() *LogicRegistry {
	return &LogicRegistry{m: make(map[spec.LogicKey]GameLogic)}
}

// Register 註冊一款邏輯，重複 key 視為組裝錯誤。
func (r *LogicRegistry) Register(l GameLogic) error {
	if l == nil {
		return errs.NewFatal("registry: nil logic")
	}
	key := l.Key()
	if key == "" {
		return errs.NewFatal("registry: empty logic key")
	}
	if _, dup := r.m[key]; dup {
		return errs.NewFatal("registry: duplicate logic key " + string(key))
	}
	r.m[key] = l
	return nil
}

func (r *LogicRegistry) Get(key spec.LogicKey) (GameLogic, bool) {
	l, ok := r.m[key]
	return l, ok
}

// Merge 把另一個 registry 的邏輯併進來，key 衝突回錯誤。
func (r *LogicRegistry) Merge(other *LogicRegistry) error {
	if other == nil {
		return nil
	}
	for _, l := range other.m {
		if err := r.Register(l); err != nil {
			return err
		}
	}
	return nil
}

// Keys 回傳排序後的 key，供觀測/列舉。
func (r *LogicRegistry) Keys() []spec.LogicKey {
	keys := make([]spec.LogicKey, 0, len(r.m))
	for k := range r.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
