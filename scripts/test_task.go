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

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func cleanTestCache() {
	cmd := exec.Command("go", "clean", "-testcache")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		PrintRed(fmt.Sprintf("go clean -testcache failed: %v", err))
		os.Exit(1)
	}
}

// runGrep 跑 cmd 並逐行過濾輸出，stderr 併進同一條管線，
// 編譯錯誤才不會被濾掉後無聲消失。
func runGrep(cmd *exec.Cmd, keep func(line string)) error {
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		PrintRed(fmt.Sprintf("stdout pipe: %v", err))
		os.Exit(1)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		PrintRed(fmt.Sprintf("start %s: %v", cmd.Path, err))
		os.Exit(1)
	}
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		keep(scanner.Text())
	}
	return cmd.Wait()
}

// runTest 摘要模式：只留每個套件的 ok / FAIL 行與嚴重錯誤。
func runTest() {
	PrintGreen("running tests")
	cleanTestCache()

	cmd := exec.Command("go", "test", "./...", "-cover", "-count=1")
	err := runGrep(cmd, func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		case strings.Contains(line, "build failed") || strings.Contains(line, "setup failed"):
			PrintRed(line)
		}
	})
	if err != nil {
		PrintRed("\nTests Finished with Errors\n")
		os.Exit(1)
	}
}

// runTestAll 全量輸出加 coverage，不過濾。
func runTestAll() {
	PrintGreen("running tests (all with coverage)")
	cleanTestCache()

	cmd := exec.Command("go", "test", "./...", "-cover")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		PrintRed("\nTests (with coverage) finished with errors\n")
		os.Exit(1)
	}
}

// runTestDetail verbose 模式：顯示所有測試 log，濾掉 [no test files]。
func runTestDetail() {
	PrintGreen("running tests (detail)")
	cleanTestCache()

	cmd := exec.Command("go", "test", "./...", "-v", "-count=1")
	err := runGrep(cmd, func(line string) {
		switch {
		case strings.Contains(line, "[no test files]"):
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		default:
			fmt.Println(line)
		}
	})
	if err != nil {
		PrintRed("\nTests (detail) finished with errors\n")
		os.Exit(1)
	}
}
