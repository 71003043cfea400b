package board

import "golang.org/x/exp/rand"

// Zobrist hashing: a random key per (vertex, colour) plus a side-to-move
// key, XORed in/out incrementally as stones are placed and removed. The
// hash depends only on (stones, side-to-move, ko), matching spec.md §3.2.
const maxZobristVertices = 21 * 21 // largest letterboxed grid we size for (19+2)^2

var (
	zobristVertex [maxZobristVertices][3]uint64 // indexed by vertex, then Color-1 (Black=0, White=1); slot 2 unused
	zobristSide   uint64
	zobristKo     [maxZobristVertices]uint64
)

func init() {
	// Fixed seed for reproducibility across runs and tests, mirroring the
	// teacher's goosemg/zobrist.go fixed-seed idiom.
	rnd := rand.New(rand.NewSource(0x5A1B01))
	for v := 0; v < maxZobristVertices; v++ {
		zobristVertex[v][0] = rnd.Uint64()
		zobristVertex[v][1] = rnd.Uint64()
		zobristKo[v] = rnd.Uint64()
	}
	zobristSide = rnd.Uint64()
}

func zobristKeyFor(v Vertex, c Color) uint64 {
	idx := int(v)
	if idx < 0 || idx >= maxZobristVertices {
		return 0
	}
	switch c {
	case Black:
		return zobristVertex[idx][0]
	case White:
		return zobristVertex[idx][1]
	default:
		return 0
	}
}

// Hash returns the Zobrist hash of the current board content and ko point.
// Stone placements/removals are XORed into b.hash incrementally as they
// happen (see capture.go); only the ko key is combined on read, since ko
// changes every move and is a single XOR either way.
func (b *Board) Hash() uint64 {
	key := b.hash
	if b.ko != NoVertex && int(b.ko) < maxZobristVertices {
		key ^= zobristKo[b.ko]
	}
	return key
}

// SideToMoveKey exposes the side-to-move Zobrist key so Position can XOR
// it into the combined hash without this package needing to know about
// side-to-move at all (Board stays purely about stones/strings).
func SideToMoveKey() uint64 { return zobristSide }
