package domain

import "time"

// ChessGame is a finished game as kept by the archive.
type ChessGame struct {
	ID           int64
	SessionUUID  string
	Title        string
	Result       string // white_won | black_won | draw | abandoned
	ResultMethod string // checkmate | stalemate | quit
	Moves        []string
	FinalFEN     string
	TurnCount    int
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}
