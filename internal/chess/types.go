package chess

import (
	"fmt"
	"iter"
)

// BoardSize is the number of files and ranks on the board.
const BoardSize = 8

var (
	// FileLabels are the column captions from left to right.
	FileLabels = [BoardSize]string{"A", "B", "C", "D", "E", "F", "G", "H"}
	// RankLabels are the row captions from top to bottom; rank index 0 is "8".
	RankLabels = [BoardSize]string{"8", "7", "6", "5", "4", "3", "2", "1"}
)

// Player identifies a side. NoPlayer is the "nobody" result of InCheck and Checkmate.
type Player int

const (
	NoPlayer Player = iota
	Player1
	Player2
)

func (p Player) String() string {
	switch p {
	case Player1:
		return "White"
	case Player2:
		return "Black"
	default:
		return "none"
	}
}

// Opponent returns the other side. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return NoPlayer
	}
}

// forward is the rank index delta of a pawn step. Player1 starts at the bottom.
func (p Player) forward() int {
	if p == Player2 {
		return 1
	}
	return -1
}

// pawnRank is the rank index pawns start on.
func (p Player) pawnRank() int {
	if p == Player2 {
		return 1
	}
	return 6
}

// backRank is the rank index the officers start on.
func (p Player) backRank() int {
	if p == Player2 {
		return 0
	}
	return 7
}

// Kind is the type of a piece.
type Kind int

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"none", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k Kind) String() string {
	if k < NoKind || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

var (
	whiteGlyphs = [...]string{"", "♙", "♘", "♗", "♖", "♕", "♔"}
	blackGlyphs = [...]string{"", "♟", "♞", "♝", "♜", "♛", "♚"}
	kindLetters = [...]byte{0, 'P', 'N', 'B', 'R', 'Q', 'K'}
)

// Square addresses one field. Rank index 0 is the top row (rank "8").
type Square struct {
	File int
	Rank int
}

// Sq is shorthand for Square{File: file, Rank: rank}.
func Sq(file, rank int) Square { return Square{File: file, Rank: rank} }

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool {
	return s.File >= 0 && s.File < BoardSize && s.Rank >= 0 && s.Rank < BoardSize
}

func (s Square) offset(df, dr int) Square {
	return Square{File: s.File + df, Rank: s.Rank + dr}
}

// Squares yields every square, file by file, top to bottom within a file.
func Squares() iter.Seq[Square] {
	return func(yield func(Square) bool) {
		for f := 0; f < BoardSize; f++ {
			for r := 0; r < BoardSize; r++ {
				if !yield(Square{File: f, Rank: r}) {
					return
				}
			}
		}
	}
}

// Piece is one chessman. Kind and Owner are fixed for the life of the piece.
type Piece struct {
	Kind   Kind
	Owner  Player
	Square Square
}

// Relocate sets the position unconditionally; callers validate the square.
func (p *Piece) Relocate(sq Square) {
	p.Square = sq
}

// LegalTargets lazily yields every square the piece may legally move to on b.
// The sequence is recomputed on each iteration.
func (p Piece) LegalTargets(b *Board) iter.Seq[Square] {
	return func(yield func(Square) bool) {
		for sq := range Squares() {
			if b.IsLegalMove(p, sq) && !yield(sq) {
				return
			}
		}
	}
}

// Glyph returns the Unicode chess symbol of the piece.
func (p Piece) Glyph() string {
	if p.Kind <= NoKind || int(p.Kind) >= len(whiteGlyphs) {
		return ""
	}
	if p.Owner == Player1 {
		return whiteGlyphs[p.Kind]
	}
	return blackGlyphs[p.Kind]
}

// Letter returns the FEN letter, upper case for Player1.
func (p Piece) Letter() byte {
	if p.Kind <= NoKind || int(p.Kind) >= len(kindLetters) {
		return 0
	}
	l := kindLetters[p.Kind]
	if p.Owner == Player2 {
		l += 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	return p.Glyph()
}
