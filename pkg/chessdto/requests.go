package chessdto

type StartSessionRequest struct {
	// FEN overrides the configured starting position when set.
	FEN   string
	Title string
}

type SelectRequest struct {
	SessionID string
	Square    string
}

type PlayRequest struct {
	SessionID string
	From      string
	To        string
}

type HistoryRequest struct {
	Limit int
}

type HistoryResponse struct {
	Games []*ChessGame
}
