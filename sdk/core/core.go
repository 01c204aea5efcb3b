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

// Package core 提供機台的隨機數核心。
//
// 所有會消耗隨機數的元件（轉輪抽停點、調機變異、別名表抽樣）都透過 Core 取數，
// 不直接碰全域 RNG。Core 必須以明確的 seed 建立，確保同一個 seed 在任何機器上
// 都能重放出完全相同的序列。
package core

import (
	"fmt"

	"github.com/zintix-labs/reellab/errs"
)

// PRNG 是可注入的隨機數來源。
//   - Uint64/Float64/UintN/IntN 為取數介面。
//   - Snapshot/Restore 用於回放：把 PRNG 內部狀態導出成 bytes，之後可無損還原。
type PRNG interface {
	Uint64() uint64
	Float64() float64
	UintN(n uint64) uint64
	IntN(n int) int
	Snapshot() ([]byte, error)
	Restore(state []byte) error
}

// PRNGFactory 依 seed 生產 PRNG。機台池、模擬器與調機器各自持有 factory，
// 由 seedMaker 派發互不重疊的子流 seed。
type PRNGFactory interface {
	New(seed int64) PRNG
}

// CoreFactory 依 seed 生產 Core（PRNG 的便利包裝）。
type CoreFactory interface {
	New(seed int64) *Core
}

// =========================================================
// Core
// =========================================================

// Core 包裝一個 PRNG 並提供常用的取數便利方法。非並行安全：
// 每台機台 / 每個 worker 持有自己的 Core。
type Core struct {
	prng PRNG
}

func NewCore(p PRNG) (*Core, error) {
	if p == nil {
		return nil, errs.NewFatal("core: nil prng")
	}
	return &Core{prng: p}, nil
}

func (c *Core) Uint64() uint64   { return c.prng.Uint64() }
func (c *Core) Float64() float64 { return c.prng.Float64() }

// UintN 回傳 [0, n) 的均勻整數。n 為 0 時 panic（契約錯誤，不應發生於正常流程）。
func (c *Core) UintN(n uint64) uint64 { return c.prng.UintN(n) }

// IntN 回傳 [0, n) 的均勻整數。
func (c *Core) IntN(n int) int { return c.prng.IntN(n) }

// Pick 均勻挑選 [0, n) 中的一個索引。
func (c *Core) Pick(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("core: pick from empty range n=%d", n))
	}
	return c.prng.IntN(n)
}

// ShuffleInts 就地洗牌（Fisher-Yates）。
func (c *Core) ShuffleInts(a []int) {
	for i := len(a) - 1; i > 0; i-- {
		j := c.prng.IntN(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// Snapshot 導出底層 PRNG 狀態。
func (c *Core) Snapshot() ([]byte, error) { return c.prng.Snapshot() }

// Restore 還原底層 PRNG 狀態。
func (c *Core) Restore(state []byte) error { return c.prng.Restore(state) }

// =========================================================
// Default factory
// =========================================================

// DefaultPRNG 是生產用 PRNG factory：PCG64（math/rand/v2 的 PCG 實作，
// seed 經 splitmix64 展開成 128-bit 狀態）。
type DefaultPRNG struct{}

func (DefaultPRNG) New(seed int64) PRNG { return newPCG64(seed) }

// DefaultCore 是生產用 CoreFactory。
type DefaultCore struct {
	prngf PRNGFactory
}

// NewDefault 回傳以 PCG64 為底的 CoreFactory。
func NewDefault() CoreFactory {
	return &DefaultCore{prngf: DefaultPRNG{}}
}

// NewFactory 允許注入自訂 PRNGFactory（測試時可換成可控序列）。
func NewFactory(pf PRNGFactory) (CoreFactory, error) {
	if pf == nil {
		return nil, errs.NewFatal("core: nil prng factory")
	}
	return &DefaultCore{prngf: pf}, nil
}

func (f *DefaultCore) New(seed int64) *Core {
	return &Core{prng: f.prngf.New(seed)}
}
