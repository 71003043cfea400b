// searchbench runs a fixed think() budget against a mock network client and
// reports playouts/sec, mirroring the teacher's own cmd/searchbench purpose
// against this module's payload.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"gosai/board"
	"gosai/config"
	"gosai/network"
	"gosai/search"
)

func main() {
	sizeFlag := flag.Int("size", 9, "board size")
	komiFlag := flag.Float64("komi", 7.5, "komi")
	playoutsFlag := flag.Int64("playouts", 1600, "playout budget per think() call")
	threadsFlag := flag.Int("threads", 4, "worker count")
	repeatFlag := flag.Int("repeat", 1, "number of think() calls to run")
	seedFlag := flag.Uint64("seed", 1, "deterministic-client seed")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	flag.Parse()

	if *playoutsFlag <= 0 {
		log.Fatalf("playouts must be positive, got %d", *playoutsFlag)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
		}()
	}

	cfg := config.Default()
	cfg.MaxPlayouts = *playoutsFlag
	cfg.NumThreads = *threadsFlag
	cfg.Quiet = true

	client := &network.DeterministicRandomClient{Seed: *seedFlag}

	fmt.Printf("searchbench: size=%d komi=%.1f playouts=%d threads=%d repeat=%d\n",
		*sizeFlag, *komiFlag, *playoutsFlag, *threadsFlag, *repeatFlag)

	startAll := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		s := search.New(cfg, client, nil)
		pos := board.NewPosition(*sizeFlag, *komiFlag, 0)

		iterStart := time.Now()
		move, ts, err := s.Think(context.Background(), pos, board.Black, search.NoFlags)
		iterElapsed := time.Since(iterStart)
		s.Close()
		if err != nil {
			log.Fatalf("iteration %d: think: %v", i+1, err)
		}

		pps := float64(ts.Playouts) / iterElapsed.Seconds()
		fmt.Printf("iteration %d: move=%v playouts=%d visits=%d time=%v pps=%.0f\n",
			i+1, move, ts.Playouts, ts.RootVisits, iterElapsed, pps)
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total time: %v\n", totalElapsed)
}
