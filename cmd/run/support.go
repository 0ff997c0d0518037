package main

import (
	"crypto/rand"
	"flag"
	"log"
	"math"
	"math/big"
	"os"

	"github.com/zintix-labs/revlab/demo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	preset    string
	worker    int
	rounds    int
	mode      string
	out       string
	seed      int64
	pprofmode string
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.preset, "preset", "unit", "target preset name")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.rounds, "rounds", 10000000, "rounds per worker")
	flag.StringVar(&cfg.mode, "mode", "sim", "run mode: sim|verify|record")
	flag.StringVar(&cfg.out, "out", "run.zst", "output file for record mode")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
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

// 這裡解析並分支要執行的模擬器
func executeSimulator() {
	cfg.valid() // 基本檢查

	lab, err := demo.NewLab()
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSimulatorWithSeed(cfg.preset, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	switch cfg.mode {
	case "verify":
		p.Printf("%s[VERIFY] [WORKERS:%d] [PRESET:%s] [ROUNDS:%d]%s\n", green, cfg.worker, cfg.preset, cfg.worker*cfg.rounds, reset)
		st, used, err := s.VerifyMP(cfg.rounds, cfg.worker, true)
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
	case "record":
		p.Printf("%s[RECORD] [PRESET:%s] [ROUNDS:%d] [OUT:%s]%s\n", green, cfg.preset, cfg.rounds, cfg.out, reset)
		f, err := os.Create(cfg.out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		st, used, err := s.Record(f, cfg.rounds, true)
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
	default:
		if cfg.worker == 1 { // 單線程
			p.Printf("%s[PRESET:%s] [ROUNDS:%d]%s\n", green, cfg.preset, cfg.rounds, reset)
			st, used, err := s.Sim(cfg.rounds, true)
			if err != nil {
				log.Fatal(err)
			}
			st.StdOut(used)
		} else {
			p.Printf("%s[WORKERS:%d] [PRESET:%s] [ROUNDS:%d]%s\n", green, cfg.worker, cfg.preset, cfg.worker*cfg.rounds, reset)
			st, used, err := s.SimMP(cfg.rounds, cfg.worker, true) // 併發
			if err != nil {
				log.Fatal(err)
			}
			st.StdOut(used)
		}
	}
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 輪數檢查
	if cfg.rounds < 1 {
		log.Fatal("value err : rounds must > 0")
	}

	switch cfg.mode {
	case "sim", "verify":
	case "record":
		// Record 走單一寫入器，多 worker 無意義
		if cfg.worker != 1 {
			p.Printf("record mode is single-threaded: worker %d resized to 1\n", cfg.worker)
			cfg.worker = 1
		}
		if cfg.out == "" {
			log.Fatal("value err : record mode needs -out")
		}
	default:
		log.Fatal("value err : mode must be sim|verify|record")
	}
}
