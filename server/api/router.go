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

package api

import (
	"log/slog"

	v1 "github.com/zintix-labs/reellab/server/api/v1"
	"github.com/zintix-labs/reellab/server/netsvr"
	"github.com/zintix-labs/reellab/server/netsvr/middleware"
	"github.com/zintix-labs/reellab/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	return registerAPI(svr, sCfg)     // 2. 註冊 /api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.Compression)
}

// 註冊 /api：healthz 與 v1。
func registerAPI(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	spin, err := v1.NewSpinHandler(sCfg)
	if err != nil {
		return err
	}
	sim := v1.NewSimHandler(sCfg.Lab)
	health := v1.NewHealthHandler(sCfg.Lab)

	svr.Group("/api", func(api netsvr.NetRouter) {
		api.Get("/healthz", health.Healthz)
		api.Group("/v1", func(vOne netsvr.NetRouter) {
			vOne.Get("/spin", spin.Spin)
			vOne.Post("/spin", spin.Spin)

			vOne.Post("/sim", sim.Sim)
			vOne.Post("/simbycfg", sim.SimByCfg)
			vOne.Post("/play", sim.Play)

			vOne.Get("/stat", sim.Stat)
		})
	})
	return nil
}
