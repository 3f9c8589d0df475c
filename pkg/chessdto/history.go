package chessdto

import "time"

type ChessGame struct {
	ID           int64
	SessionUUID  string
	Title        string
	Result       string
	ResultMethod string
	Moves        []string
	FinalFEN     string
	TurnCount    int
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}
