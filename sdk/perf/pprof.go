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

// Package perf 把 profiling 包在一層 mode 開關後面，CLI 只要傳字串。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

const pprofDir = "build/profiling"

// RunPProf 依 mode 決定包著 exe 跑哪種 profiling。
//
// mode 空字串或不認得就直接執行。cpu 檔可作性能分析，
// 也可以拿來做構建時給 pgo 的優化 blueprint：
//
//	go run ./cmd/run -p cpu
func RunPProf(exe func(), mode string) {
	switch mode {
	case "cpu":
		profileCPU(exe)
	case "heap":
		profileHeap(exe)
	case "allocs":
		profileAllocs(exe)
	default:
		exe()
	}
}

func create(name string) *os.File {
	_ = os.MkdirAll(pprofDir, 0o755)
	f, err := os.Create(filepath.Join(pprofDir, name))
	if err != nil {
		panic("create " + name + " : " + err.Error())
	}
	return f
}

func profileCPU(exe func()) {
	f := create("cpu.pprof")
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		panic("start cpu profile : " + err.Error())
	}
	defer pprof.StopCPUProfile()

	exe()
}

// profileHeap 在 exe() 跑完後拍一次 in-use memory 快照。
// 寫檔前先 GC 一輪，快照才貼近 live objects 的實際狀態。
func profileHeap(exe func()) {
	exe()
	runtime.GC()

	f := create("heap.pprof")
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		panic("write heap profile : " + err.Error())
	}
}

// profileAllocs 在 exe() 跑完後寫出累積配置 profile，
// 搭配 -alloc_space / -alloc_objects 看整體分配熱點。
func profileAllocs(exe func()) {
	exe()

	f := create("allocs.pprof")
	defer f.Close()
	if prof := pprof.Lookup("allocs"); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			panic("write allocs profile : " + err.Error())
		}
	}
}
