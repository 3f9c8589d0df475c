package chess

// moveRule reports whether p's movement pattern reaches to on b. The
// same-owner occupancy check has already been applied.
type moveRule func(b *Board, p Piece, to Square) bool

var moveRules = [...]moveRule{
	NoKind: nil,
	Pawn:   pawnMove,
	Knight: knightMove,
	Bishop: bishopMove,
	Rook:   rookMove,
	Queen:  queenMove,
	King:   kingMove,
}

// pawnStep is what a pawn may do for a given owner-relative offset.
type pawnStep int

const (
	pawnCaptureOnly pawnStep = iota + 1
	pawnMoveOnly
	pawnDoubleMoveOnly
)

type offset struct{ file, rank int }

// pawnSteps is keyed by (file delta, forward rank delta) relative to the owner.
var pawnSteps = map[offset]pawnStep{
	{-1, 1}: pawnCaptureOnly,
	{1, 1}:  pawnCaptureOnly,
	{0, 1}:  pawnMoveOnly,
	{0, 2}:  pawnDoubleMoveOnly,
}

var (
	rookRays   = [...]offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays = [...]offset{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
)

// IsPseudoLegalMove reports whether p's movement pattern allows reaching to,
// ignoring whether the move leaves the mover's king in check. Squares held by
// the mover's own pieces are never reachable.
func (b *Board) IsPseudoLegalMove(p Piece, to Square) bool {
	if !to.Valid() || p.Kind <= NoKind || int(p.Kind) >= len(moveRules) {
		return false
	}
	if b.hasOwnPiece(p.Owner, to) {
		return false
	}
	return moveRules[p.Kind](b, p, to)
}

// hasOwnPiece takes the owner explicitly: during simulation the mover is not
// necessarily the active player.
func (b *Board) hasOwnPiece(owner Player, sq Square) bool {
	q, ok := b.PieceAt(sq)
	return ok && q.Owner == owner
}

func (b *Board) hasEnemyPiece(owner Player, sq Square) bool {
	q, ok := b.PieceAt(sq)
	return ok && q.Owner != owner
}

func (b *Board) isEmpty(sq Square) bool {
	_, ok := b.PieceAt(sq)
	return !ok
}

func pawnMove(b *Board, p Piece, to Square) bool {
	fwd := p.Owner.forward()
	step, ok := pawnSteps[offset{
		file: (to.File - p.Square.File) * fwd,
		rank: (to.Rank - p.Square.Rank) * fwd,
	}]
	if !ok {
		return false
	}
	switch step {
	case pawnCaptureOnly:
		return b.hasEnemyPiece(p.Owner, to)
	case pawnMoveOnly:
		return b.isEmpty(to)
	case pawnDoubleMoveOnly:
		// Only the target is inspected; the square in between is not.
		return p.Square.Rank == p.Owner.pawnRank() && b.isEmpty(to)
	}
	return false
}

func knightMove(_ *Board, p Piece, to Square) bool {
	df, dr := abs(to.File-p.Square.File), abs(to.Rank-p.Square.Rank)
	return (df == 1 && dr == 2) || (df == 2 && dr == 1)
}

func kingMove(_ *Board, p Piece, to Square) bool {
	if to == p.Square {
		return false
	}
	return abs(to.File-p.Square.File) <= 1 && abs(to.Rank-p.Square.Rank) <= 1
}

func rookMove(b *Board, p Piece, to Square) bool {
	return b.slides(p.Square, to, rookRays[:])
}

func bishopMove(b *Board, p Piece, to Square) bool {
	return b.slides(p.Square, to, bishopRays[:])
}

func queenMove(b *Board, p Piece, to Square) bool {
	return bishopMove(b, p, to) || rookMove(b, p, to)
}

func (b *Board) slides(from, to Square, rays []offset) bool {
	for _, ray := range rays {
		if b.rayReaches(from, to, ray) {
			return true
		}
	}
	return false
}

// rayReaches walks at most BoardSize steps along ray and stops at the first
// occupied square unless that square is the target.
func (b *Board) rayReaches(from, to Square, ray offset) bool {
	cur := from
	for range BoardSize {
		cur = cur.offset(ray.file, ray.rank)
		if cur == to {
			return true
		}
		if !b.isEmpty(cur) {
			return false
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
