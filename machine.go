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
	"math"
	"math/big"
	"sync"

	"github.com/zintix-labs/reellab/dto"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/buf"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/slot"
	"github.com/zintix-labs/reellab/spec"
)

// Machine 封裝一台「可對外提供 Spin」的遊戲機台。
//
// 你可以把 Machine 視為 Game 的「外殼（shell）」：
//   - 對外：提供 Spin 入口（HTTP/模擬器通常只操作 Machine）。
//   - 對內：持有 RNG（Core）與真正執行遊戲邏輯的核心（sdk/slot.Game）。
//
// 並發語意：
//   - Machine 內含可重用的結果 buffer（熱路徑），同一台 Machine 不應被多 goroutine 同時 Spin；
//     對外路徑以 mu 保護，併發服務由 MachinePool 以多台機台分流。
//
// Buffer 語意（非常重要，影響 DX 與正確性）：
//   - SpinResult 會被重用（避免 GC），每次 Spin 會覆寫內容。
//   - 你若需要在 Spin 後保留結果，請在離開臨界區前轉成 DTO（或自行 copy 你需要的欄位）。
//
// initseed 用於記錄出生時的 seed（追溯/重現的基礎資訊）；完整審計仍以 Core 的 Snapshot/Restore 為準。
type Machine struct {
	gameName string     // 遊戲名稱（來自 GameSetting.GameName，主要用於觀測/日誌）
	gameId   spec.GID   // 遊戲 ID（Catalog 內唯一；用於路由與查表）
	core     *core.Core // RNG 核心（PRNG + Snapshot/Restore 合約；熱路徑會頻繁取樣）
	gh       *slot.Game // 遊戲執行核心（Slot 邏輯入口；由 LogicRegistry + GameSetting 組裝）
	mu       sync.Mutex // 防併發鎖：保護可重用 buffers 與核心狀態一致性
	initseed int64      // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
}

// newMachine 以「隨機 seed」建立 Machine。
//
// 這裡使用 crypto/rand 產生 seed 是為了：
//   - 在對外服務情境避免可預測 RNG
//   - 同時保留可追溯性（seed 會被記錄在 Machine.initseed）
//
// seed 只保證了新建的 Machine 起點，如果需要在任意局後將機台「重設」到任意 Core 節點，
// 請利用 Snapshot / Restore 來操作。
func newMachine(gs *spec.GameSetting, reg *slot.LogicRegistry, cf core.CoreFactory) (*Machine, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return newMachineWithSeed(gs, reg, cf, seed.Int64())
}

// newMachineWithSeed 以指定 seed 建立 Machine。
//
// 這是最常用的「可重現」入口：同一份 GameSetting + 同一個 seed，應能得到一致的隨機序列（取決於 Core 實作）。
//
// 建立流程（概念）：
//  1. cf.New(seed) 建出 RNG 核心
//  2. slot.NewGame(gs, reg, core) 依設定 + registry 建出 Slot 遊戲執行核心
func newMachineWithSeed(gs *spec.GameSetting, reg *slot.LogicRegistry, cf core.CoreFactory, seed int64) (*Machine, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	c := cf.New(seed)
	gh, err := slot.NewGame(gs, reg, c)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		gameName: gs.GameName,
		gameId:   gs.GameID,
		core:     c,
		gh:       gh,
		initseed: seed,
	}
	return m, nil
}

func (m *Machine) GameName() string           { return m.gameName }
func (m *Machine) GameId() spec.GID           { return m.gameId }
func (m *Machine) Setting() *spec.GameSetting { return m.gh.Setting() }

// Spin 為主要公開入口：驗證請求、執行遊戲並回傳可序列化的結果。
//
// 快照協定（可審計 / 可重放）：
//  1. 進場先 Snapshot 當前核心（start）。
//  2. 若請求帶 start_b64u：Restore 到指定節點再轉（重放模式）。
//  3. 轉完再 Snapshot 一次（after），兩份快照跟著結果一起回。
//  4. 重放模式結束後把核心 Restore 回進場狀態，機台自身的流水不受重放影響。
func (m *Machine) Spin(r *dto.SpinRequest) (dto.SpinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 校驗請求合法性
	if err := m.valid(r); err != nil {
		return dto.SpinResult{}, err
	}

	// 2. 進場快照
	startsnap, err := m.SnapshotCore()
	if err != nil {
		return dto.SpinResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}
	rem := startsnap

	// 3. 重放模式：restore 到請求指定的節點
	reqsnap, err := r.StartState.Snap()
	if err != nil {
		return dto.SpinResult{}, err
	}
	if len(reqsnap) != 0 {
		if err := m.RestoreCore(reqsnap); err != nil {
			return dto.SpinResult{}, errs.NewWarn("restore core err " + err.Error())
		}
		startsnap = reqsnap
	}

	// 4. 執行遊戲
	sr, err := m.gh.Spin()
	if err != nil {
		if e := m.RestoreCore(rem); e != nil {
			return dto.SpinResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.SpinResult{}, err
	}

	// 5. 離場快照
	aftersnap, err := m.SnapshotCore()
	if err != nil {
		if e := m.RestoreCore(rem); e != nil {
			return dto.SpinResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.SpinResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}

	// 6. 重放模式結束，把核心接回原本的流水
	if len(reqsnap) != 0 {
		if err := m.RestoreCore(rem); err != nil {
			return dto.SpinResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	// 7. dto（深拷貝，脫離可重用 buffer）
	return dto.NewSpinResultDTO(sr, m.gh.Setting(), dto.NewSpinState(startsnap, aftersnap))
}

// SpinInternal 直接取得內部 SpinResult；模擬器與測試用。
//
// 請勿在正式環境使用：跳過請求校驗與快照協定，
// 回傳的 buffer 會在下一次 Spin 被覆寫。
func (m *Machine) SpinInternal() (*buf.SpinResult, error) {
	return m.gh.Spin()
}

func (m *Machine) valid(req *dto.SpinRequest) error {
	if req == nil {
		return errs.NewWarn("nil spin request")
	}
	if req.GameId == 0 && req.GameName == "" {
		return errs.NewWarn("game id or name required")
	}
	if req.GameId != 0 && m.gameId != req.GameId {
		return errs.NewWarn("game id is not matched")
	}
	if req.GameName != "" && m.gameName != req.GameName {
		return errs.NewWarn("game name is not matched")
	}
	return nil
}

// SnapshotCore 取得 Core 狀態暫存，當前僅提供取得 Core 狀態。
//
// 之後要實作斷線重連時提供 checkpoint 加入必要恢復資訊時實作
// SnapShot() <- 保留語意
func (m *Machine) SnapshotCore() ([]byte, error) {
	return m.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態暫存，當前僅提供恢復 Core 狀態。
//
// 之後要實作斷線重連時提供 checkpoint 加入必要恢復資訊時實作
// Restore() <- 保留語意
func (m *Machine) RestoreCore(src []byte) error {
	return m.core.Restore(src)
}
