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
	"context"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/reellab/dto"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/spec"
)

type SlotRuntime struct {
	// build-time 來源（只讀引用）
	lab *Reellab // 方便取 catalog/registry/corefactory 與共用一些 helper

	// data-plane：關鍵主池（每個遊戲一個 pool）
	pools  map[spec.GID]*MachinePool
	byName map[string]spec.GID // 以名稱路由（請求只帶 game 時）
	ids    []spec.GID          // 固定順序，用於觀測/列舉（來自 cat.IDs()）

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	// runtime 行為設定（一期先簡單，之後可擴展）
	poolSize int // 每個遊戲的池大小（BuildRuntime(n) 的 n）
}

// Resolve 把請求路由成遊戲 ID：gid 優先，沒帶 gid 時以名稱查。
func (rt *SlotRuntime) Resolve(req *dto.SpinRequest) (spec.GID, error) {
	if req == nil {
		return 0, errs.NewWarn("nil spin request")
	}
	if req.GameId != 0 {
		return req.GameId, nil
	}
	if id, ok := rt.byName[req.GameName]; ok {
		return id, nil
	}
	return 0, errs.NewWarn("game not found")
}

func (rt *SlotRuntime) Spin(ctx context.Context, req *dto.SpinRequest) (dto.SpinResult, error) {
	select {
	case <-ctx.Done():
		// 如果通知取消
		return dto.SpinResult{}, errs.NewWarn("spin canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		// done is the source of truth; keep a fast boolean for cheap reads/telemetry.
		rt.closed.Store(true)
		return dto.SpinResult{}, errs.NewFatal("slot runtime closed: " + rt.ClosedReason())
	default:
	}

	id, err := rt.Resolve(req)
	if err != nil {
		return dto.SpinResult{}, err
	}
	mp, ok := rt.pools[id]
	if !ok {
		return dto.SpinResult{}, errs.NewWarn("game id not found")
	}

	// pool 自己會處理 done / close / rebuild / metrics
	return mp.Spin(ctx, req)
}

// Lab 回傳建構來源，供上層（HTTP handlers）取得 Simulator / Summary。
func (rt *SlotRuntime) Lab() *Reellab { return rt.lab }

// IDs 回傳所有服務中的遊戲 ID（固定順序）。
func (rt *SlotRuntime) IDs() []spec.GID {
	ids := make([]spec.GID, len(rt.ids))
	copy(ids, rt.ids)
	return ids
}

// Metrics 收集每個遊戲池的觀測快照。
func (rt *SlotRuntime) Metrics() []MachinePoolMetrics {
	ms := make([]MachinePoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		ms = append(ms, rt.pools[id].Metrics())
	}
	return ms
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *SlotRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and records the reason (written once).
func (rt *SlotRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, mp := range rt.pools {
			mp.Close()
		}
	})
}

// Closed reports whether the runtime has been closed.
func (rt *SlotRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *SlotRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
