package chessdto

// SelectResult describes a selected piece and where it may go.
type SelectResult struct {
	State    *SessionState
	Square   string
	Piece    string // glyph
	Targets  []string
	Captures []string // subset of Targets holding an enemy piece
}

// MoveSummary describes a single played move and the position after it.
type MoveSummary struct {
	State    *SessionState
	Notation string
	From     string
	To       string
	Mover    string
	Captured string // glyph, empty when nothing was taken
	Check    bool
	Finished bool
	GameID   int64
}
