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

package outcome

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/reellab/errs"
	"github.com/zintix-labs/reellab/spec"
)

// csvHeader 結果表的檔案介面，下游依欄位名讀取。
const csvHeader = "simulation_number,probability,payout_multiplier\n"

// ExportCSV 輸出結果表：每列 simulation_number、機率（%.10f）、贏倍（%.2f）。
func ExportCSV(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(csvHeader); err != nil {
		return errs.Wrap(err, "export csv header")
	}
	for i := range t.Rows {
		r := &t.Rows[i]
		line := strconv.Itoa(r.SimulationNumber) + "," +
			strconv.FormatFloat(r.Probability, 'f', 10, 64) + "," +
			strconv.FormatFloat(r.Multiplier, 'f', 2, 64) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return errs.Wrap(err, "export csv row")
		}
	}
	if err := bw.Flush(); err != nil {
		return errs.Wrap(err, "export csv flush")
	}
	return nil
}

// ExportCSVGZ 同 ExportCSV，走 gzip。
func ExportCSVGZ(w io.Writer, t *Table) error {
	gz := gzip.NewWriter(w)
	if err := ExportCSV(gz, t); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return errs.Wrap(err, "export csv gzip close")
	}
	return nil
}

// EventLog 事件檔：simulation_number -> 代表事件紀錄。
type EventLog map[string]Replay

// BuildEventLog 把代表紀錄依 simulation_number 收進事件檔。
func BuildEventLog(replays []Replay) EventLog {
	m := make(EventLog, len(replays))
	for _, r := range replays {
		m[strconv.Itoa(r.SimulationNumber)] = r
	}
	return m
}

// ExportEvents 輸出事件檔（JSON）。
func ExportEvents(w io.Writer, events EventLog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return errs.Wrap(err, "export events")
	}
	return nil
}

// ExportEventsZst 同 ExportEvents，走 zstd。
func ExportEventsZst(w io.Writer, events EventLog) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errs.Wrap(err, "export events zstd writer")
	}
	if err := ExportEvents(zw, events); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "export events zstd close")
	}
	return nil
}

// ExportGameConfig 輸出解析後遊戲模型的 JSON 快照。
func ExportGameConfig(w io.Writer, gs *spec.GameSetting) error {
	if gs == nil {
		return errs.NewFatal("export game config: nil setting")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(gs); err != nil {
		return errs.Wrap(err, fmt.Sprintf("export game config %q", gs.GameName))
	}
	return nil
}
