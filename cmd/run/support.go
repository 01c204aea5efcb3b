package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zintix-labs/reellab"
	"github.com/zintix-labs/reellab/games"
	"github.com/zintix-labs/reellab/outcome"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	id        spec.GID
	worker    int
	trials    int
	seed      int64
	out       string
	pprofmode string
}

type gidFlag struct{ p *spec.GID }

func (f gidFlag) String() string { return fmt.Sprint(uint(*f.p)) }
func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.GID(uint(u))
	return nil
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.Var(gidFlag{&cfg.id}, "game", "target game id")
	flag.IntVar(&cfg.worker, "worker", 4, "number of workers")
	flag.IntVar(&cfg.trials, "trials", 10000000, "base spins to simulate")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.out, "out", "build", "output directory for outcome artifacts")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 跑完整聚合並輸出結果表工件
func executeSimulator() {
	cfg.valid() // 基本檢查

	reg, err := games.Registry()
	if err != nil {
		log.Fatal(err)
	}
	lab, err := reellab.NewAuto(
		core.NewDefault(),
		reellab.Configs(games.ConfigFS()),
		reellab.Logics(reg),
	)
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSimulatorWithSeed(cfg.id, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	ent, _ := lab.EntryById(cfg.id)
	cfg.name = ent.Name
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	p.Printf("%s[WORKERS:%d] [GAME:%s] [TRIALS:%d] [SEED:%d]%s\n", green, cfg.worker, cfg.name, cfg.trials, cfg.seed, reset)

	b, err := s.AggregateMP(cfg.trials, cfg.worker, true)
	if err != nil {
		log.Fatal(err)
	}
	b.Report.StdOut(b.Used)

	if err := writeArtifacts(b, filepath.Join(cfg.out, cfg.name)); err != nil {
		log.Fatal(err)
	}
	p.Printf("artifacts written to %s\n", filepath.Join(cfg.out, cfg.name))
}

// writeArtifacts 輸出四個工件：兩張結果表、代表事件檔、遊戲設定快照。
//
// free 表在整次聚合都沒觸發時不輸出。
func writeArtifacts(b *reellab.Bundle, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	write := func(name string, fn func(f *os.File) error) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	if err := write("base_game.csv.gz", func(f *os.File) error {
		return outcome.ExportCSVGZ(f, b.Base)
	}); err != nil {
		return err
	}
	if b.Free != nil {
		if err := write("free_spins.csv.gz", func(f *os.File) error {
			return outcome.ExportCSVGZ(f, b.Free)
		}); err != nil {
			return err
		}
	}
	if err := write("events.json.zst", func(f *os.File) error {
		return outcome.ExportEventsZst(f, outcome.BuildEventLog(b.BaseReplays))
	}); err != nil {
		return err
	}
	return write("game_config.json", func(f *os.File) error {
		return outcome.ExportGameConfig(f, b.Setting)
	})
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 轉數檢查
	if cfg.trials < 1 {
		log.Fatal("value err : trials must > 0")
	}
	if cfg.trials > 100000000 {
		p.Printf("too much trials: %d resized to 100M\n", cfg.trials)
		cfg.trials = 100000000
	}

	if cfg.out == "" {
		cfg.out = "build"
	}
}
