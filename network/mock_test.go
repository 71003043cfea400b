package network

import (
	"context"
	"math"
	"testing"

	"gosai/board"
)

func TestUniformClientProducesFlatPolicy(t *testing.T) {
	pos := board.NewPosition(9, 7.5, 0)
	ev, err := UniformClient{}.Evaluate(context.Background(), pos, Random)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ev.Policy) != pos.Board.NumVertices() {
		t.Fatalf("policy length = %d, want %d", len(ev.Policy), pos.Board.NumVertices())
	}
	for i, p := range ev.Policy {
		if p != ev.Policy[0] {
			t.Fatalf("policy[%d] = %v, expected uniform %v", i, p, ev.Policy[0])
		}
	}
}

func TestConcentratedClientFavorsVertex(t *testing.T) {
	pos := board.NewPosition(9, 7.5, 0)
	fav := pos.Board.Vertex(4, 4)
	favIdx := pos.Board.Index(fav)
	c := ConcentratedClient{Favorite: fav, Value: 0.6, Sharpness: 0.8}
	ev, err := c.Evaluate(context.Background(), pos, Random)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range ev.Policy {
		if i == favIdx {
			continue
		}
		if p >= ev.Policy[favIdx] {
			t.Fatalf("expected favorite vertex to dominate policy mass")
		}
	}
}

func TestDeterministicRandomClientIsReproducible(t *testing.T) {
	pos := board.NewPosition(9, 7.5, 0)
	a := &DeterministicRandomClient{Seed: 99}
	b := &DeterministicRandomClient{Seed: 99}

	evA, _ := a.Evaluate(context.Background(), pos, Random)
	evB, _ := b.Evaluate(context.Background(), pos, Random)

	if evA.Value != evB.Value || evA.Alpha != evB.Alpha || evA.Beta != evB.Beta {
		t.Fatalf("same seed produced different evals: %+v vs %+v", evA, evB)
	}
	var sum float64
	for _, p := range evA.Policy {
		sum += float64(p)
	}
	sum += float64(evA.PolicyPass)
	if math.Abs(sum-1) > 1e-4 {
		t.Fatalf("policy does not sum to 1 after normalization: %v", sum)
	}
}
