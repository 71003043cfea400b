// selfplay drives a full game against a mock network client, printing each
// chosen move, mirroring the teacher's cmd/uci driver shape (flag parsing,
// instantiate engine, loop) without implementing a protocol text format —
// that text layer is out of this core's scope.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"gosai/board"
	"gosai/config"
	"gosai/network"
	"gosai/search"
	"gosai/stats"
)

func main() {
	sizeFlag := flag.Int("size", 9, "board size")
	komiFlag := flag.Float64("komi", 7.5, "komi")
	playoutsFlag := flag.Int64("playouts", 400, "playout budget per move")
	threadsFlag := flag.Int("threads", 4, "worker count")
	maxMovesFlag := flag.Int("maxmoves", 0, "cap on moves in the game, 0 = size*size*3")
	seedFlag := flag.Uint64("seed", 1, "deterministic-client seed")
	statsAddr := flag.String("statsaddr", "", "if set, serve the stats websocket/status endpoints on this address")
	flag.Parse()

	maxMoves := *maxMovesFlag
	if maxMoves <= 0 {
		maxMoves = *sizeFlag * *sizeFlag * 3
	}

	var hub *stats.Hub
	if *statsAddr != "" {
		hub = stats.NewHub()
		done := make(chan struct{})
		go hub.Run(done)
		go func() {
			log.Printf("stats server listening on %s", *statsAddr)
			if err := http.ListenAndServe(*statsAddr, stats.NewServer(hub)); err != nil {
				log.Printf("stats server: %v", err)
			}
		}()
	}

	cfg := config.Default()
	cfg.MaxPlayouts = *playoutsFlag
	cfg.NumThreads = *threadsFlag

	client := &network.DeterministicRandomClient{Seed: *seedFlag}
	s := search.New(cfg, client, hub)
	defer s.Close()

	pos := board.NewPosition(*sizeFlag, *komiFlag, 0)
	ctx := context.Background()

	for move := 0; move < maxMoves; move++ {
		color := pos.ToMove()
		chosen, ts, err := s.Think(ctx, pos, color, search.NoFlags)
		if err != nil {
			log.Fatalf("move %d: think: %v", move, err)
		}
		fmt.Printf("%d %s %v  (playouts=%d visits=%d winrate=%.3f)\n",
			move, color, chosen, ts.Playouts, ts.RootVisits, ts.WinRate)

		if chosen.IsResign() {
			fmt.Printf("%s resigns\n", color)
			return
		}
		if !pos.PlayMove(chosen) {
			log.Fatalf("move %d: chosen move %v rejected by PlayMove", move, chosen)
		}
		if pos.Passes() >= 2 {
			break
		}
	}

	score := pos.FinalScore()
	fmt.Printf("final score (black-relative): %.1f\n", score)
}
