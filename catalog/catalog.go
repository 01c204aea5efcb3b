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

// Package catalog 管理遊戲設定檔的註冊表。
//
// 設定來源是一個或多個 flat 的 fs.FS（內嵌或磁碟目錄），
// 檔名在所有來源間必須唯一。Entry 以 GID 與遊戲名稱雙向索引；
// 服務啟動前 Freeze，之後註冊表唯讀。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate game id")
	ErrDupName = errs.NewFatal("duplicate game name")
)

// Entry 一款遊戲在註冊表的登記資料。
type Entry struct {
	GID        spec.GID
	Name       string
	ConfigName string // 設定檔檔名（basename）
}

// Summary 對外列舉用的摘要。
type Summary struct {
	GID       spec.GID      `json:"gid"`
	Name      string        `json:"name"`
	Logic     spec.LogicKey `json:"logic"`
	TargetRTP float64       `json:"target_rtp"`
}

type Catalog struct {
	byID   map[spec.GID]Entry
	byName map[string]Entry
	ids    []spec.GID // 穩定排序
	config *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	m, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:   map[spec.GID]Entry{},
		byName: map[string]Entry{},
		config: m,
	}, nil
}

// Register 登記一批遊戲。Freeze 後不可再登記。
func (c *Catalog) Register(entries ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	for _, e := range entries {
		e.Name = strings.ToLower(strings.TrimSpace(e.Name))
		if e.Name == "" {
			return errs.NewFatal("game name required")
		}
		if err := validFileName(e.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.index[e.ConfigName]; !ok {
			return errs.NewFatal(fmt.Sprintf("config file not found: %s", e.ConfigName))
		}
		if _, ok := c.byID[e.GID]; ok {
			return ErrDupID
		}
		if _, ok := c.byName[e.Name]; ok {
			return ErrDupName
		}
		for _, prev := range c.byID {
			if prev.ConfigName == e.ConfigName {
				return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", e.ConfigName))
			}
		}
		c.byID[e.GID] = e
		c.byName[e.Name] = e
		c.ids = append(c.ids, e.GID)
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return nil
}

// DiscoverAll 掃描所有設定來源，逐檔解析並自動登記。
// 任何一份設定解析或驗證失敗都會中止（設定錯誤是 Fatal）。
func (c *Catalog) DiscoverAll() error {
	if c.frozen {
		return errs.NewWarn("can not discover when catalog already frozen")
	}
	names := make([]string, 0, len(c.config.index))
	for name := range c.config.index {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, file := range names {
		gs, err := c.parse(file)
		if err != nil {
			return errs.Wrap(err, fmt.Sprintf("discover config %q", file))
		}
		if err := c.Register(Entry{GID: gs.GameID, Name: gs.GameName, ConfigName: file}); err != nil {
			return errs.Wrap(err, fmt.Sprintf("discover config %q", file))
		}
	}
	return nil
}

func (c *Catalog) GetByID(id spec.GID) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	e, ok := c.byName[name]
	return e, ok
}

// IDs 回傳排序後的全部 GID。
func (c *Catalog) IDs() []spec.GID {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]spec.GID(nil), c.ids...)
}

// All 依 GID 順序回傳全部 Entry。
func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		if e, ok := c.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) Freeze()        { c.frozen = true }
func (c *Catalog) IsFrozen() bool { return c.frozen }

// GameSettingById 讀檔、解析並驗證後回傳設定。
func (c *Catalog) GameSettingById(id spec.GID) (*spec.GameSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.NewWarn("id does not exist in catalog")
	}
	return c.parse(e.ConfigName)
}

// GameSettingByName 讀檔、解析並驗證後回傳設定。
func (c *Catalog) GameSettingByName(name string) (*spec.GameSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.NewWarn("name does not exist in catalog")
	}
	return c.parse(e.ConfigName)
}

func (c *Catalog) parse(file string) (*spec.GameSetting, error) {
	src, ok := c.config.GetFS(file)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, file)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return spec.GetGameSettingByYAML(raw)
	case ".json":
		return spec.GetGameSettingByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", file))
	}
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename)", file))
	}
	lower := strings.ToLower(file)
	if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file))
	}
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}
