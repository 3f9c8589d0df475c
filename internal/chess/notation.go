package chess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidFEN = errors.New("invalid FEN")

// ParseSquare converts notation such as "e2" to a square under the
// rank-8-at-top convention ("e2" is file 4, rank index 6).
func ParseSquare(s string) (Square, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Square{}, false
	}
	sq := Square{File: int(s[0] - 'a'), Rank: int('8' - int(s[1]))}
	if s[0] < 'a' || s[1] > '8' || !sq.Valid() {
		return Square{}, false
	}
	return sq, true
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File), byte('8' - s.Rank)})
}

// MoveNotation formats a move in long algebraic form, e.g. "Ng1-f3" or "Pe4xd5".
func MoveNotation(p Piece, from, to Square, capture bool) string {
	sep := "-"
	if capture {
		sep = "x"
	}
	letter := "?"
	if int(p.Kind) > 0 && int(p.Kind) < len(kindLetters) {
		letter = string(kindLetters[p.Kind])
	}
	return letter + from.String() + sep + to.String()
}

// FEN describes b in Forsyth-Edwards notation. Castling and en passant do
// not exist here, so those fields are always "-".
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := 0; r < BoardSize; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for f := 0; f < BoardSize; f++ {
			p, ok := b.PieceAt(Sq(f, r))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
	}
	side := "w"
	if b.active == Player2 {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s - - 0 %d", side, b.turn/2+1)
	return sb.String()
}

var letterKinds = map[byte]Kind{
	'p': Pawn, 'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen, 'k': King,
}

// ParseFEN builds a board from the placement, active colour and fullmove
// fields of a FEN record. Castling, en passant and halfmove fields are
// accepted and ignored.
func ParseFEN(s string) (*Board, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != BoardSize {
		return nil, fmt.Errorf("%w: want %d ranks, got %d", ErrInvalidFEN, BoardSize, len(rows))
	}

	b := NewBoard()
	for r, row := range rows {
		f := 0
		prevDigit := false
		for i := 0; i < len(row); i++ {
			c := row[i]
			if c >= '1' && c <= '8' {
				if prevDigit {
					return nil, fmt.Errorf("%w: rank %s has adjacent digits", ErrInvalidFEN, RankLabels[r])
				}
				prevDigit = true
				f += int(c - '0')
				continue
			}
			prevDigit = false
			owner := Player1
			lower := c
			if c >= 'a' && c <= 'z' {
				owner = Player2
			} else {
				lower = c + ('a' - 'A')
			}
			kind, ok := letterKinds[lower]
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, c)
			}
			if f >= BoardSize {
				return nil, fmt.Errorf("%w: rank %s overflows", ErrInvalidFEN, RankLabels[r])
			}
			b.AddPiece(kind, owner, Sq(f, r))
			f++
		}
		if f != BoardSize {
			return nil, fmt.Errorf("%w: rank %s has %d files", ErrInvalidFEN, RankLabels[r], f)
		}
	}

	if len(fields) > 1 {
		switch fields[1] {
		case "w":
			b.active = Player1
		case "b":
			b.active = Player2
		default:
			return nil, fmt.Errorf("%w: active colour %q", ErrInvalidFEN, fields[1])
		}
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: fullmove %q", ErrInvalidFEN, fields[5])
		}
		b.turn = (n - 1) * 2
		if b.active == Player2 {
			b.turn++
		}
	}
	return b, nil
}
