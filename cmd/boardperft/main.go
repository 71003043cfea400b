// boardperft plays random legal move sequences and checks board invariants
// after every move, the Go-board analogue of the teacher's chess perft
// driver (there is no move-count oracle to check against here, so this
// checks structural invariants instead of node counts at a fixed depth).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"gosai/board"

	"golang.org/x/exp/rand"
)

func main() {
	sizeFlag := flag.Int("size", 9, "board size")
	komiFlag := flag.Float64("komi", 7.5, "komi")
	gamesFlag := flag.Int("games", 100, "number of random games to play")
	maxMovesFlag := flag.Int("maxmoves", 0, "cap on moves per game, 0 = size*size*2")
	seedFlag := flag.Uint64("seed", 1, "random source seed")
	passProb := flag.Float64("passprob", 0.02, "probability of passing instead of playing a legal move, when legal moves exist")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	flag.Parse()

	if *gamesFlag <= 0 {
		log.Fatalf("games must be positive, got %d", *gamesFlag)
	}
	maxMoves := *maxMovesFlag
	if maxMoves <= 0 {
		maxMoves = *sizeFlag * *sizeFlag * 2
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

	rnd := rand.New(rand.NewSource(*seedFlag))

	var totalPositions uint64
	start := time.Now()
	for g := 0; g < *gamesFlag; g++ {
		pos := board.NewPosition(*sizeFlag, *komiFlag, 0)
		for m := 0; m < maxMoves && pos.Passes() < 2; m++ {
			move := pickMove(pos, rnd, *passProb)
			if !pos.PlayMove(move) {
				log.Fatalf("game %d move %d: PlayMove(%v) rejected its own choice", g, m, move)
			}
			if err := pos.Board.CheckInvariants(); err != nil {
				log.Fatalf("game %d move %d: %v\n%s", g, m, err, pos.Board.String())
			}
			totalPositions++
		}
	}
	elapsed := time.Since(start)
	pps := float64(totalPositions) / elapsed.Seconds()
	fmt.Printf("games=%d positions=%d time=%v pos/sec=%.0f\n", *gamesFlag, totalPositions, elapsed, pps)
}

// pickMove returns Pass with probability passProb, or else a uniformly
// random legal on-board move, falling back to Pass when none exist.
func pickMove(pos *board.Position, rnd *rand.Rand, passProb float64) board.Vertex {
	legal := pos.LegalMoves()
	if len(legal) == 0 || rnd.Float64() < passProb {
		return board.Pass
	}
	return legal[rnd.Intn(len(legal))]
}
