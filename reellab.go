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

// Package reellab 提供 Reellab 引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Reellab 把三個必需的地基組裝在一起，並提供建立 Machine / Simulator 的入口：
//  1. Catalog：遊戲目錄（Single Source of Truth / SSOT），定義有哪些遊戲、各自對應的設定檔名稱（ConfigName）。
//  2. LogicRegistry：邏輯註冊表，提供「如何依據設定（LogicKey）建出遊戲邏輯」的 builders。
//  3. CoreFactory：亂數核心工廠（PRNG factory），保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Reellab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Machine 是對外提供 Spin 的最小單位；Simulator 則負責大量模擬與凍結結果表。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Reellab 建立 SlotRuntime，runtime 對外提供 Spin。
//   - 模擬器（cmd/run）：由 Reellab 建立 Simulator 進行大量模擬並輸出結果表。
//
// 注意：此套引擎目前以 Slot 領域為中心（Spin -> Result），不是泛用遊戲框架。
package reellab

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"math"
	"math/big"

	"github.com/zintix-labs/reellab/catalog"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/sdk/slot"
	"github.com/zintix-labs/reellab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//
// Reellab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Logics 用來把一或多個邏輯註冊表（LogicRegistry）打包成 New() 需要的參數。
//
// 一個 LogicRegistry 代表「一個邏輯模組」提供的 builders 集合。
// New() 會把多個 registries 合併成單一 registry；若出現重複 LogicKey，直接以 error 失敗。
func Logics(regs ...*slot.LogicRegistry) []*slot.LogicRegistry {
	return regs
}

// Reellab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 catalog、合併 registries、檢查重複與缺漏。
//   - 執行階段（runtime）：依據遊戲 ID 產生 Machine / Simulator，並在其上執行。
//
// 重要設計原則：
//   - Catalog 的 ID 唯一性只保證在「同一個 Reellab instance」內。
//   - 你要跑哪一批遊戲、哪一套設定檔、哪一批邏輯，必須由 New() 的參數明確決定。
//   - runtime 一旦開始（例如已建立 Machine 並對外服務），不可再變更 Catalog/Registry。
type Reellab struct {
	cat *catalog.Catalog
	reg *slot.LogicRegistry
	cf  core.CoreFactory
	sum []catalog.Summary
}

// New 建立一個 Reellab instance。
//
// 這是「組裝階段（registration/build）」的入口：
//   - 會建立 Catalog（同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//   - 會合併多個 LogicRegistry 成為單一 registry（重複 LogicKey 直接視為錯誤）。
//   - 會保存 CoreFactory，確保由這個 Reellab 建出來的 Machine 在 RNG 行為上具有一致性。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 GameSetting。
//   - logics 至少一個：沒有邏輯 builders，就算解析出設定也無法建出可執行的遊戲邏輯。
func New(cf core.CoreFactory, cfgs []fs.FS, logics []*slot.LogicRegistry) (*Reellab, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	if len(logics) == 0 {
		return nil, errs.NewFatal("logic registry required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	reg := slot.NewLogicRegistry()
	for _, r := range logics {
		if err := reg.Merge(r); err != nil {
			return nil, err
		}
	}
	lab := &Reellab{
		cat: cata,
		reg: reg,
		cf:  cf,
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Reellab instance：
// 掃描所有設定來源自動登記，驗證每款遊戲的 LogicKey 都有對應 builder，然後 Freeze。
func NewAuto(cf core.CoreFactory, cfgs []fs.FS, logics []*slot.LogicRegistry) (*Reellab, error) {
	lab, err := New(cf, cfgs, logics)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (p *Reellab) Register(ents ...catalog.Entry) error {
	return p.cat.Register(ents...)
}

// RegisterAll 掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔
// （.yaml/.yml/.json）解析成 *spec.GameSetting 並批次登記。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error（不會忽略、也不會繼續掃完）。
//  2. 穩定性：依檔名排序後再處理，確保行為 determinism（方便重現與除錯）。
//  3. 登記完之後會逐款驗證 LogicKey：設定宣告的邏輯必須已在 registry 註冊。
func (p *Reellab) RegisterAll() error {
	if err := p.cat.DiscoverAll(); err != nil {
		return err
	}
	for _, id := range p.cat.IDs() {
		gs, err := p.cat.GameSettingById(id)
		if err != nil {
			return err
		}
		if gs.LogicKey == "" {
			return errs.NewFatal(fmt.Sprintf("logic key required: game_id=%d", id))
		}
		if _, ok := p.reg.Get(gs.LogicKey); !ok {
			return errs.NewFatal(fmt.Sprintf("logic not registered: logic_key=%s (game_id=%d)", gs.LogicKey, id))
		}
	}
	if len(p.cat.IDs()) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return nil
}

func (p *Reellab) Freeze() {
	p.cat.Freeze()
}

func (p *Reellab) EntryById(id spec.GID) (catalog.Entry, bool) {
	return p.cat.GetByID(id)
}

func (p *Reellab) EntryByName(name string) (catalog.Entry, bool) {
	return p.cat.GetByName(name)
}

func (p *Reellab) IDs() []spec.GID {
	return p.cat.IDs()
}

func (p *Reellab) All() []catalog.Entry {
	return p.cat.All()
}

func (p *Reellab) CoreFactory() core.CoreFactory { return p.cf }

func (p *Reellab) GameSettingById(id spec.GID) (*spec.GameSetting, error) {
	return p.cat.GameSettingById(id)
}

// Summary 列舉所有已登記遊戲的摘要（凍結後才可用，結果會快取）。
func (p *Reellab) Summary() ([]catalog.Summary, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if p.sum != nil {
		return p.sum, nil
	}
	ids := p.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		gs, err := p.cat.GameSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse game setting failed")
		}
		s := catalog.Summary{
			GID:       id,
			Name:      gs.GameName,
			Logic:     gs.LogicKey,
			TargetRTP: gs.Tune.TargetRTP,
		}
		cs = append(cs, s)
	}
	p.sum = cs
	return p.sum, nil
}

// NewMachine 依據 Catalog 內的遊戲 ID 建立一台 Machine。
//
// 行為：
//  1. 由 Catalog 取得對應的 GameSetting（通常來自 fs.FS 內的 YAML/JSON）。
//  2. 以 CoreFactory 產生 RNG 核心（seed 由 crypto/rand 產生）。
//  3. 透過 LogicRegistry 依據 GameSetting 內的 LogicKey 建出可執行的遊戲邏輯。
//
// 注意：seed 會被記錄在 Machine 內（initseed），用於追溯/重現；真正的可審計能力以 Core 的 Snapshot/Restore 合約為準。
func (p *Reellab) NewMachine(id spec.GID) (*Machine, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newMachine(gs, p.reg, p.cf)
}

// NewMachineWithSeed 與 NewMachine 相同，但由呼叫端指定初始 seed。
//
// 使用情境：
//   - 可重現的測試：同一份設定 + 同一個 seed，應產生一致的隨機序列（取決於 Core 實作）。
//
// 注意：seed 只是「出生入口」。若要在任意時間點完整重現，請使用 Core 的 Snapshot/Restore（以 []byte 交換狀態）。
func (p *Reellab) NewMachineWithSeed(id spec.GID, seed int64) (*Machine, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, p.reg, p.cf, seed)
}

func (p *Reellab) NewMachineByJSON(raw []byte, seed int64) (*Machine, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newMachineWithSeed(cfg, p.reg, p.cf, seed)
}

func (p *Reellab) NewMachineByYAML(raw []byte, seed int64) (*Machine, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newMachineWithSeed(cfg, p.reg, p.cf, seed)
}

// validCfg 外帶設定（raw YAML/JSON）必須對得上目錄裡已登記的遊戲。
func (p *Reellab) validCfg(cfg *spec.GameSetting) error {
	ent, ok := p.cat.GetByID(cfg.GameID)
	if !ok {
		return errs.NewWarn("gid not exist")
	}
	ent2, ok := p.cat.GetByName(cfg.GameName)
	if !ok {
		return errs.NewWarn("game name not exist")
	}
	if ent.GID != ent2.GID {
		return errs.NewWarn("game id is not matched game name")
	}
	if _, ok := p.reg.Get(cfg.LogicKey); !ok {
		return errs.NewWarn("game logic not exist")
	}
	return nil
}

func (p *Reellab) NewSimulator(id spec.GID) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(gs, p.reg, p.cf)
}

func (p *Reellab) NewSimulatorWithSeed(id spec.GID, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, p.reg, p.cf, seed)
}

func (p *Reellab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, p.reg, p.cf, seed)
}

func (p *Reellab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, p.reg, p.cf, seed)
}

// NewSimulatorFromSetting 直接以一份已 Init 的設定建模擬器（不經 catalog）。
// optimizer 調帶時會以 CloneWithStrips 產生大量候選設定，走這個入口。
func NewSimulatorFromSetting(gs *spec.GameSetting, reg *slot.LogicRegistry, cf core.CoreFactory, seed int64) (*Simulator, error) {
	if gs == nil {
		return nil, errs.NewFatal("game setting required")
	}
	return newSimulatorWithSeed(gs, reg, cf, seed)
}

// BuildRuntime 建立對外服務用的 runtime：每款遊戲一個機台池。
func (p *Reellab) BuildRuntime(poolSize int) (*SlotRuntime, error) {
	// 1. 進入 runtime 前，catalog 必須 Freeze
	p.Freeze()

	ids := p.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no games registered")
	}

	rt := &SlotRuntime{
		lab:      p,
		pools:    make(map[spec.GID]*MachinePool, len(ids)),
		byName:   make(map[string]spec.GID, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	// 2. 先全建好（fail-fast + cleanup）
	for _, id := range ids {
		gs, err := p.cat.GameSettingById(id)
		if err != nil {
			return nil, err
		}

		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return nil, errs.Wrap(err, "new crypto seed error in go std lib")
		}
		mp, err := newMachinePool(rt.poolSize, gs, p.reg, p.cf, seed.Int64())
		if err != nil {
			return nil, err
		}
		rt.pools[id] = mp
		rt.byName[gs.GameName] = id
	}
	return rt, nil
}
