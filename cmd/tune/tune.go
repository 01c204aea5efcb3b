package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"math"
	"math/big"
	"os"
	"strconv"

	"github.com/zintix-labs/reellab"
	"github.com/zintix-labs/reellab/games"
	"github.com/zintix-labs/reellab/optimizer"
	"github.com/zintix-labs/reellab/outcome"
	"github.com/zintix-labs/reellab/sdk/core"
	"github.com/zintix-labs/reellab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// makefile runner
func main() {
	bindVar()
	executeTuner()
}

var cfg *config = new(config)

type config struct {
	id     spec.GID
	worker int
	seed   int64
	out    string
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
	flag.Var(gidFlag{&cfg.id}, "game", "target game id")
	flag.IntVar(&cfg.worker, "worker", 4, "measurement workers per iteration")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.out, "out", "", "write tuned game config JSON to this path")

	flag.Parse()

	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 跑調機並回報每輪軌跡
func executeTuner() {
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
	gs, err := lab.GameSettingById(cfg.id)
	if err != nil {
		log.Fatal(err)
	}

	tuner := optimizer.New(gs)
	tuner.Workers = cfg.worker

	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	p.Printf("%s[GAME:%s] [TARGET:%.4f ±%.4f] [ROUNDS:%d x%d iters] [SEED:%d]%s\n",
		green, gs.GameName, tuner.Target, tuner.Tolerance, tuner.Rounds, tuner.MaxIters, cfg.seed, reset)

	res, err := tuner.Run(gs, reg, lab.CoreFactory(), cfg.seed)
	if err != nil {
		log.Fatal(err)
	}

	for i, c := range res.History {
		p.Printf("  #%02d rtp=%.6f vol=%.4f hit=%.4f\n", i, c.RTP, c.Volatility, c.HitRate)
	}
	p.Printf("best rtp=%.6f vol=%.4f hit=%.4f converged=%t iters=%d\n",
		res.Best.RTP, res.Best.Volatility, res.Best.HitRate, res.Converged, res.Iterations)

	if cfg.out != "" {
		tuned, err := gs.CloneWithStrips(res.Best.Strips)
		if err != nil {
			log.Fatal(err)
		}
		f, err := os.Create(cfg.out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := outcome.ExportGameConfig(f, tuned); err != nil {
			log.Fatal(err)
		}
		p.Printf("tuned config written to %s\n", cfg.out)
	}
}
