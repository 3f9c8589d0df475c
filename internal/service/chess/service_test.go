package chess

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	rules "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T, cfg Config, renderer BoardRenderer) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	svc, err := NewService(NewMemoryRepository(), renderer, cfg, zap.New(core))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	svc.title = func() string { return "brave-otter" }
	return svc, logs
}

func startGame(t *testing.T, svc *Service, fen string) *chessdto.SessionState {
	t.Helper()
	state, err := svc.Start(context.Background(), chessdto.StartSessionRequest{FEN: fen})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return state
}

func playMoves(t *testing.T, svc *Service, id string, moves ...string) *chessdto.MoveSummary {
	t.Helper()
	var last *chessdto.MoveSummary
	for _, mv := range moves {
		summary, err := svc.Play(context.Background(), chessdto.PlayRequest{SessionID: id, From: mv[:2], To: mv[2:]})
		if err != nil {
			t.Fatalf("Play %s: %v", mv, err)
		}
		last = summary
	}
	return last
}

func TestStartSession(t *testing.T) {
	svc, logs := newTestService(t, Config{}, nil)
	state := startGame(t, svc, "")

	if state.Title != "brave-otter" || state.Status != StatusActive || state.ActivePlayer != "White" {
		t.Fatalf("unexpected state: %+v", state)
	}
	if state.FEN != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1" {
		t.Fatalf("FEN = %q", state.FEN)
	}
	if state.Board[6][4] != "♙" || state.Board[0][4] != "♚" || state.Board[4][4] != "" {
		t.Fatalf("board glyphs wrong: %q %q %q", state.Board[6][4], state.Board[0][4], state.Board[4][4])
	}
	if state.BoardImage != nil {
		t.Fatalf("no renderer configured but got an image")
	}
	if logs.FilterMessage("chess_session_start").Len() != 1 {
		t.Fatalf("session start not logged")
	}

	named, err := svc.Start(context.Background(), chessdto.StartSessionRequest{Title: "  friday  "})
	if err != nil || named.Title != "friday" {
		t.Fatalf("named start = %+v, %v", named, err)
	}
	if named.SessionUUID == state.SessionUUID {
		t.Fatalf("session ids collide")
	}
}

func TestStartRejectsBadFEN(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	_, err := svc.Start(context.Background(), chessdto.StartSessionRequest{FEN: "not a board"})
	if !errors.Is(err, rules.ErrInvalidFEN) {
		t.Fatalf("err = %v; want ErrInvalidFEN", err)
	}
	if _, err := NewService(NewMemoryRepository(), nil, Config{StartFEN: "8/8 w"}, nil); !errors.Is(err, rules.ErrInvalidFEN) {
		t.Fatalf("NewService err = %v; want ErrInvalidFEN", err)
	}
	if _, err := NewService(nil, nil, Config{}, nil); err == nil {
		t.Fatalf("expected error without repository")
	}
}

func TestSelect(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	id := startGame(t, svc, "").SessionUUID
	ctx := context.Background()

	res, err := svc.Select(ctx, chessdto.SelectRequest{SessionID: id, Square: "E2"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Square != "e2" || res.Piece != "♙" {
		t.Fatalf("selected %q %q", res.Square, res.Piece)
	}
	if diff := cmp.Diff([]string{"e4", "e3"}, res.Targets); diff != "" {
		t.Fatalf("targets (-want +got):\n%s", diff)
	}
	if len(res.Captures) != 0 {
		t.Fatalf("captures = %v", res.Captures)
	}

	tests := []struct {
		square string
		want   error
	}{
		{"z9", ErrInvalidSquare},
		{"", ErrInvalidSquare},
		{"e4", ErrNotSelectable}, // empty
		{"e7", ErrNotSelectable}, // opponent
		{"a1", ErrNotSelectable}, // boxed in
	}
	for _, tt := range tests {
		if _, err := svc.Select(ctx, chessdto.SelectRequest{SessionID: id, Square: tt.square}); !errors.Is(err, tt.want) {
			t.Errorf("Select(%q) err = %v; want %v", tt.square, err, tt.want)
		}
	}

	if _, err := svc.Select(ctx, chessdto.SelectRequest{SessionID: "missing", Square: "e2"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v; want ErrSessionNotFound", err)
	}
}

func TestSelectListsCaptures(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	id := startGame(t, svc, "").SessionUUID
	playMoves(t, svc, id, "e2e4", "d7d5")

	res, err := svc.Select(context.Background(), chessdto.SelectRequest{SessionID: id, Square: "e4"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if diff := cmp.Diff([]string{"d5", "e5"}, res.Targets); diff != "" {
		t.Fatalf("targets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d5"}, res.Captures); diff != "" {
		t.Fatalf("captures (-want +got):\n%s", diff)
	}
}

func TestPlayRejections(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	id := startGame(t, svc, "").SessionUUID
	ctx := context.Background()

	tests := []struct {
		from, to string
		want     error
	}{
		{"e2", "e5", ErrIllegalMove},
		{"e2", "x1", ErrInvalidSquare},
		{"e7", "e5", ErrNotSelectable},
		{"g1", "g3", ErrIllegalMove},
	}
	for _, tt := range tests {
		_, err := svc.Play(ctx, chessdto.PlayRequest{SessionID: id, From: tt.from, To: tt.to})
		if !errors.Is(err, tt.want) {
			t.Errorf("Play(%s-%s) err = %v; want %v", tt.from, tt.to, err, tt.want)
		}
	}

	state, err := svc.Status(ctx, id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Turn != 0 || len(state.Moves) != 0 || state.ActivePlayer != "White" {
		t.Fatalf("rejected moves changed the game: %+v", state)
	}
}

func TestPlayScholarsMate(t *testing.T) {
	svc, logs := newTestService(t, Config{}, nil)
	id := startGame(t, svc, "").SessionUUID
	ctx := context.Background()

	first := playMoves(t, svc, id, "e2e4")
	if first.Notation != "Pe2-e4" || first.Mover != "White" || first.Finished || first.State.ActivePlayer != "Black" {
		t.Fatalf("first move summary: %+v", first)
	}

	last := playMoves(t, svc, id, "e7e5", "d1h5", "b8c6", "f1c4", "g8f6", "h5f7")
	if last.Notation != "Qh5xf7" || last.Captured != "♟" || !last.Check || !last.Finished {
		t.Fatalf("mating move summary: %+v", last)
	}
	if last.State.Status != StatusCheckmate || last.State.Outcome != ResultWhiteWon || last.State.InCheck != "Black" {
		t.Fatalf("final state: status=%s outcome=%s check=%s", last.State.Status, last.State.Outcome, last.State.InCheck)
	}
	if last.GameID != 1 {
		t.Fatalf("game id = %d", last.GameID)
	}
	if diff := cmp.Diff([]string{"♟"}, last.State.Captured.White); diff != "" {
		t.Fatalf("captured (-want +got):\n%s", diff)
	}

	if _, err := svc.Play(ctx, chessdto.PlayRequest{SessionID: id, From: "e8", To: "f7"}); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("err = %v; want ErrGameFinished", err)
	}
	if _, err := svc.Select(ctx, chessdto.SelectRequest{SessionID: id, Square: "e8"}); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("err = %v; want ErrGameFinished", err)
	}

	hist, err := svc.History(ctx, chessdto.HistoryRequest{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist.Games) != 1 {
		t.Fatalf("history has %d games", len(hist.Games))
	}
	g := hist.Games[0]
	if g.Result != ResultWhiteWon || g.ResultMethod != StatusCheckmate || len(g.Moves) != 7 || g.TurnCount != 7 || g.Title != "brave-otter" {
		t.Fatalf("archived game: %+v", g)
	}

	byID, err := svc.Game(ctx, g.ID)
	if err != nil || byID.SessionUUID != id {
		t.Fatalf("Game(%d) = %+v, %v", g.ID, byID, err)
	}
	if _, err := svc.Game(ctx, 99); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("err = %v; want ErrGameNotFound", err)
	}

	end := logs.FilterMessage("chess_game_end").All()
	if len(end) != 1 || end[0].ContextMap()["result"] != ResultWhiteWon {
		t.Fatalf("game end log: %+v", end)
	}
	if logs.FilterMessage("chess_move").Len() != 7 {
		t.Fatalf("expected 7 move logs, got %d", logs.FilterMessage("chess_move").Len())
	}
}

func TestPlayIntoStalemate(t *testing.T) {
	svc, _ := newTestService(t, Config{StartFEN: "k7/8/1K6/8/8/8/8/2Q5 w"}, nil)
	id := startGame(t, svc, "").SessionUUID

	summary := playMoves(t, svc, id, "c1c7")
	if !summary.Finished || summary.Check {
		t.Fatalf("summary: %+v", summary)
	}
	if summary.State.Status != StatusStalemate || summary.State.Outcome != ResultDraw {
		t.Fatalf("status=%s outcome=%s", summary.State.Status, summary.State.Outcome)
	}
}

func TestPlayRejectionLeavesBoardUntouched(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()
	before := startGame(t, svc, "")
	id := before.SessionUUID

	for _, req := range []chessdto.PlayRequest{
		{SessionID: id, From: "e2", To: "e5"},
		{SessionID: id, From: "g1", To: "g3"},
		{SessionID: id, From: "e7", To: "e5"},
		{SessionID: id, From: "e2", To: "z9"},
	} {
		if _, err := svc.Play(ctx, req); err == nil {
			t.Fatalf("Play %s-%s accepted", req.From, req.To)
		}
		after, err := svc.Status(ctx, id)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if after.Turn != before.Turn || after.FEN != before.FEN || after.ActivePlayer != "White" || len(after.Moves) != 0 {
			t.Fatalf("rejected %s-%s changed the game: turn=%d fen=%s moves=%v", req.From, req.To, after.Turn, after.FEN, after.Moves)
		}
	}

	summary := playMoves(t, svc, id, "e2e4")
	if summary.Notation != "Pe2-e4" || summary.Captured != "" || summary.State.ActivePlayer != "Black" || summary.State.Turn != 1 {
		t.Fatalf("quiet move: %+v", summary)
	}
	if diff := cmp.Diff([]string{"Pe2-e4"}, summary.State.Moves); diff != "" {
		t.Fatalf("moves (-want +got):\n%s", diff)
	}
}

func TestStartFinishedPositionIsArchived(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()

	// Black to move, mated by the queen on b7 protected by the king.
	state := startGame(t, svc, "k7/1Q6/1K6/8/8/8/8/8 b")
	if state.Status != StatusCheckmate || state.Outcome != ResultWhiteWon {
		t.Fatalf("status=%s outcome=%s", state.Status, state.Outcome)
	}
	game, err := svc.Game(ctx, 1)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if game.SessionUUID != state.SessionUUID || game.Result != ResultWhiteWon || len(game.Moves) != 0 {
		t.Fatalf("archived game: %+v", game)
	}
	if _, err := svc.Play(ctx, chessdto.PlayRequest{SessionID: state.SessionUUID, From: "a8", To: "b8"}); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("Play err = %v; want ErrGameFinished", err)
	}
	if _, err := svc.End(ctx, state.SessionUUID); err != nil {
		t.Fatalf("End: %v", err)
	}
	resp, err := svc.History(ctx, chessdto.HistoryRequest{})
	if err != nil || len(resp.Games) != 1 {
		t.Fatalf("history = %+v, %v", resp, err)
	}
}

func TestPlayReportsCheck(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	id := startGame(t, svc, "4k3/8/8/8/8/8/8/R3K3 w").SessionUUID

	summary := playMoves(t, svc, id, "a1a8")
	if !summary.Check || summary.Finished || summary.State.InCheck != "Black" {
		t.Fatalf("summary: %+v", summary)
	}

	res, err := svc.Select(context.Background(), chessdto.SelectRequest{SessionID: id, Square: "e8"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if diff := cmp.Diff([]string{"d7", "e7", "f7"}, res.Targets); diff != "" {
		t.Fatalf("king escapes (-want +got):\n%s", diff)
	}
}

func TestEndSession(t *testing.T) {
	svc, _ := newTestService(t, Config{}, nil)
	ctx := context.Background()

	idle := startGame(t, svc, "").SessionUUID
	if _, err := svc.End(ctx, idle); err != nil {
		t.Fatalf("End: %v", err)
	}

	id := startGame(t, svc, "").SessionUUID
	playMoves(t, svc, id, "g1f3")
	state, err := svc.End(ctx, id)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if state.Status != StatusAbandoned {
		t.Fatalf("status = %s", state.Status)
	}
	if _, err := svc.Status(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v; want ErrSessionNotFound", err)
	}

	hist, err := svc.History(ctx, chessdto.HistoryRequest{Limit: 5})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist.Games) != 1 || hist.Games[0].Result != ResultAbandoned || hist.Games[0].ResultMethod != "quit" {
		t.Fatalf("history: %+v", hist.Games)
	}
}

func TestBoardImageAttached(t *testing.T) {
	renderer, err := NewSVGBoardRenderer(WithSquareSize(32))
	if err != nil {
		t.Fatalf("NewSVGBoardRenderer: %v", err)
	}
	svc, _ := newTestService(t, Config{}, renderer)
	state := startGame(t, svc, "")
	if !bytes.HasPrefix(state.BoardImage, []byte("\x89PNG")) {
		t.Fatalf("board image is not a PNG")
	}

	res, err := svc.Select(context.Background(), chessdto.SelectRequest{SessionID: state.SessionUUID, Square: "b1"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(res.State.BoardImage) == 0 || bytes.Equal(res.State.BoardImage, state.BoardImage) {
		t.Fatalf("selection should produce a different image")
	}
}
