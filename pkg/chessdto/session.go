package chessdto

import "time"

type CapturedPieces struct {
	White []string // taken by White
	Black []string // taken by Black
}

type SessionState struct {
	SessionUUID  string
	Title        string
	ActivePlayer string
	Turn         int
	FEN          string
	Moves        []string
	LastMove     string
	Board        [8][8]string // glyphs by [rank][file], rank 0 is the eighth rank
	BoardImage   []byte
	InCheck      string // player whose king is attacked
	Status       string // active | checkmate | stalemate | abandoned
	Outcome      string
	Captured     CapturedPieces
	StartedAt    time.Time
	UpdatedAt    time.Time
}
