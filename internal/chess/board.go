package chess

import "slices"

// startingOfficers is the back-rank layout from file a to file h.
var startingOfficers = [BoardSize]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Board holds every piece on the board, the side to move and the half-move counter.
// At most one piece occupies a square while the board is at rest.
type Board struct {
	active Player
	turn   int
	pieces []Piece
}

// NewBoard returns an empty board with Player1 to move.
func NewBoard() *Board {
	return &Board{active: Player1}
}

// InitNewGame resets b to the standard starting layout.
func (b *Board) InitNewGame() {
	b.active = Player1
	b.turn = 0
	b.pieces = b.pieces[:0]
	for f := 0; f < BoardSize; f++ {
		b.AddPiece(Pawn, Player1, Sq(f, Player1.pawnRank()))
		b.AddPiece(Pawn, Player2, Sq(f, Player2.pawnRank()))
		b.AddPiece(startingOfficers[f], Player1, Sq(f, Player1.backRank()))
		b.AddPiece(startingOfficers[f], Player2, Sq(f, Player2.backRank()))
	}
}

// AddPiece places a new piece and returns it. No occupancy check is made.
func (b *Board) AddPiece(kind Kind, owner Player, sq Square) Piece {
	p := Piece{Kind: kind, Owner: owner, Square: sq}
	b.pieces = append(b.pieces, p)
	return p
}

func (b *Board) RemoveAllPieces() {
	b.pieces = b.pieces[:0]
}

// Pieces returns a copy of the pieces in board order.
func (b *Board) Pieces() []Piece {
	return slices.Clone(b.pieces)
}

func (b *Board) ActivePlayer() Player { return b.active }

func (b *Board) SetActivePlayer(p Player) { b.active = p }

// Turn is the number of half-moves made so far.
func (b *Board) Turn() int { return b.turn }

func (b *Board) TogglePlayer() {
	if b.active == Player1 {
		b.active = Player2
		return
	}
	b.active = Player1
}

// PieceAt returns the piece on sq. Off-board squares are always empty.
func (b *Board) PieceAt(sq Square) (Piece, bool) {
	if i := b.indexAt(sq); i >= 0 {
		return b.pieces[i], true
	}
	return Piece{}, false
}

// PieceAtNotation looks a piece up by square notation such as "e2".
func (b *Board) PieceAtNotation(s string) (Piece, bool) {
	sq, ok := ParseSquare(s)
	if !ok {
		return Piece{}, false
	}
	return b.PieceAt(sq)
}

func (b *Board) indexAt(sq Square) int {
	if !sq.Valid() {
		return -1
	}
	for i := range b.pieces {
		if b.pieces[i].Square == sq {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of b. Pieces are values, so mutating the
// copy never reaches the original.
func (b *Board) Clone() *Board {
	return &Board{
		active: b.active,
		turn:   b.turn,
		pieces: slices.Clone(b.pieces),
	}
}

// MovePieceTo relocates p to sq, removes any piece standing there and
// increments the turn counter. The bool reports a capture, not that a move
// happened: a quiet move and a stale p both return (Piece{}, false), and a
// stale p leaves the board untouched. Legality is not checked; gate calls
// with IsLegalMove, which also rejects stale pieces.
func (b *Board) MovePieceTo(p Piece, sq Square) (Piece, bool) {
	i := b.indexAt(p.Square)
	if i < 0 || b.pieces[i] != p {
		return Piece{}, false
	}
	b.turn++
	b.pieces[i].Relocate(sq)

	for j := range b.pieces {
		if j == i || b.pieces[j].Square != sq {
			continue
		}
		captured := b.pieces[j]
		b.pieces = slices.Delete(b.pieces, j, j+1)
		return captured, true
	}
	return Piece{}, false
}
