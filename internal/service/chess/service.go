package chess

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	rules "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/pkg/chessdto"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("chess session not found")
	ErrInvalidSquare   = errors.New("invalid square")
	ErrNotSelectable   = errors.New("no movable piece on square")
	ErrIllegalMove     = errors.New("illegal chess move")
	ErrGameFinished    = errors.New("chess game already finished")
	ErrGameNotFound    = errors.New("chess game not found")
)

const (
	StatusActive    = "active"
	StatusCheckmate = "checkmate"
	StatusStalemate = "stalemate"
	StatusAbandoned = "abandoned"

	ResultWhiteWon  = "white_won"
	ResultBlackWon  = "black_won"
	ResultDraw      = "draw"
	ResultAbandoned = "abandoned"

	maxHistoryLimit = 100
)

type Config struct {
	// StartFEN replaces the standard layout for new sessions.
	StartFEN     string
	HistoryLimit int
}

type Service struct {
	renderer BoardRenderer
	repo     Repository
	cfg      Config
	logger   *zap.Logger

	now   func() time.Time
	title func() string

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id        string
	title     string
	board     *rules.Board
	moves     []string
	captured  chessdto.CapturedPieces
	last      *MoveHighlight
	status    string
	outcome   string
	startedAt time.Time
	updatedAt time.Time
	gameID    int64
}

func (s *session) finished() bool { return s.status != StatusActive }

// NewService wires a session service. A nil renderer disables board images.
func NewService(repo Repository, renderer BoardRenderer, cfg Config, logger *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("chess repository is required")
	}
	cfg.StartFEN = strings.TrimSpace(cfg.StartFEN)
	if cfg.StartFEN != "" {
		if _, err := rules.ParseFEN(cfg.StartFEN); err != nil {
			return nil, fmt.Errorf("start position: %w", err)
		}
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		renderer: renderer,
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		title:    func() string { return petname.Generate(2, "-") },
		sessions: make(map[string]*session),
	}, nil
}

func (s *Service) Start(ctx context.Context, req chessdto.StartSessionRequest) (*chessdto.SessionState, error) {
	fen := strings.TrimSpace(req.FEN)
	if fen == "" {
		fen = s.cfg.StartFEN
	}

	var board *rules.Board
	if fen != "" {
		b, err := rules.ParseFEN(fen)
		if err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
		board = b
	} else {
		board = rules.NewBoard()
		board.InitNewGame()
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = s.title()
	}

	now := s.now()
	sess := &session{
		id:        uuid.NewString(),
		title:     title,
		board:     board,
		status:    StatusActive,
		startedAt: now,
		updatedAt: now,
	}
	evaluate(sess)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess

	s.logger.Info("chess_session_start",
		zap.String("session_id", sess.id),
		zap.String("title", sess.title),
		zap.String("fen", board.FEN()),
	)
	// A position that is already mate or stalemate is a finished game.
	if sess.finished() {
		if _, err := s.archive(ctx, sess); err != nil {
			delete(s.sessions, sess.id)
			return nil, err
		}
	}
	return s.stateFor(ctx, sess, nil, nil), nil
}

func (s *Service) Status(ctx context.Context, sessionID string) (*chessdto.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.stateFor(ctx, sess, nil, nil), nil
}

// Select validates that the square holds a piece of the active player with a
// legal move and lists where it may go.
func (s *Service) Select(ctx context.Context, req chessdto.SelectRequest) (*chessdto.SelectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.finished() {
		return nil, ErrGameFinished
	}
	p, err := selectablePiece(sess.board, req.Square)
	if err != nil {
		return nil, err
	}

	targets := slices.Collect(p.LegalTargets(sess.board))
	res := &chessdto.SelectResult{
		Square: p.Square.String(),
		Piece:  p.Glyph(),
	}
	for _, sq := range targets {
		res.Targets = append(res.Targets, sq.String())
		if _, occupied := sess.board.PieceAt(sq); occupied {
			res.Captures = append(res.Captures, sq.String())
		}
	}
	res.State = s.stateFor(ctx, sess, &p.Square, targets)
	return res, nil
}

// Play moves the piece on From to To, hands the turn over and settles the
// game when the opponent is mated or stalemated.
func (s *Service) Play(ctx context.Context, req chessdto.PlayRequest) (*chessdto.MoveSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.finished() {
		return nil, ErrGameFinished
	}
	board := sess.board

	p, err := selectablePiece(board, req.From)
	if err != nil {
		return nil, err
	}
	to, ok := rules.ParseSquare(req.To)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSquare, req.To)
	}
	if !board.IsLegalMove(p, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalMove, p.Glyph(), to)
	}

	from := p.Square
	captured, hasCapture := board.MovePieceTo(p, to)
	board.TogglePlayer()

	notation := rules.MoveNotation(p, from, to, hasCapture)
	sess.moves = append(sess.moves, notation)
	if hasCapture {
		if p.Owner == rules.Player1 {
			sess.captured.White = append(sess.captured.White, captured.Glyph())
		} else {
			sess.captured.Black = append(sess.captured.Black, captured.Glyph())
		}
	}
	sess.last = &MoveHighlight{From: from, To: to}
	sess.updatedAt = s.now()
	evaluate(sess)

	checked := board.InCheck()
	s.logger.Debug("chess_move",
		zap.String("session_id", sess.id),
		zap.String("player", p.Owner.String()),
		zap.String("move", notation),
		zap.Bool("capture", hasCapture),
		zap.String("check", checked.String()),
	)

	summary := &chessdto.MoveSummary{
		Notation: notation,
		From:     from.String(),
		To:       to.String(),
		Mover:    p.Owner.String(),
		Check:    checked != rules.NoPlayer,
		Finished: sess.finished(),
	}
	if hasCapture {
		summary.Captured = captured.Glyph()
	}

	if sess.finished() {
		gameID, err := s.archive(ctx, sess)
		if err != nil {
			return nil, err
		}
		summary.GameID = gameID
	}
	summary.State = s.stateFor(ctx, sess, nil, nil)
	return summary, nil
}

// End closes a session. Unfinished games with at least one move are archived
// as abandoned.
func (s *Service) End(ctx context.Context, sessionID string) (*chessdto.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.finished() {
		sess.status = StatusAbandoned
		sess.outcome = ResultAbandoned
		sess.updatedAt = s.now()
		if len(sess.moves) > 0 {
			if _, err := s.archive(ctx, sess); err != nil {
				return nil, err
			}
		}
	}
	delete(s.sessions, sess.id)
	return s.stateFor(ctx, sess, nil, nil), nil
}

func (s *Service) History(ctx context.Context, req chessdto.HistoryRequest) (*chessdto.HistoryResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	games, err := s.repo.GetRecentGames(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	resp := &chessdto.HistoryResponse{Games: make([]*chessdto.ChessGame, 0, len(games))}
	for _, g := range games {
		resp.Games = append(resp.Games, toGameDTO(g))
	}
	return resp, nil
}

func (s *Service) Game(ctx context.Context, id int64) (*chessdto.ChessGame, error) {
	g, err := s.repo.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load game %d: %w", id, err)
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	return toGameDTO(g), nil
}

func (s *Service) lookup(sessionID string) (*session, error) {
	sess, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func selectablePiece(board *rules.Board, notation string) (rules.Piece, error) {
	sq, ok := rules.ParseSquare(notation)
	if !ok {
		return rules.Piece{}, fmt.Errorf("%w: %q", ErrInvalidSquare, notation)
	}
	p, ok := board.PieceAt(sq)
	if !ok || !board.IsSelectable(p) {
		return rules.Piece{}, fmt.Errorf("%w: %s", ErrNotSelectable, sq)
	}
	return p, nil
}

// evaluate settles the status once the side to move is mated or stalemated.
func evaluate(sess *session) {
	b := sess.board
	if mated := b.Checkmate(); mated != rules.NoPlayer {
		sess.status = StatusCheckmate
		sess.outcome = ResultWhiteWon
		if mated == rules.Player1 {
			sess.outcome = ResultBlackWon
		}
		return
	}
	if b.Stalemate() {
		sess.status = StatusStalemate
		sess.outcome = ResultDraw
	}
}

func (s *Service) archive(ctx context.Context, sess *session) (int64, error) {
	if sess.gameID != 0 {
		return sess.gameID, nil
	}
	method := sess.status
	if sess.status == StatusAbandoned {
		method = "quit"
	}
	record := &domain.ChessGame{
		SessionUUID:  sess.id,
		Title:        sess.title,
		Result:       sess.outcome,
		ResultMethod: method,
		Moves:        slices.Clone(sess.moves),
		FinalFEN:     sess.board.FEN(),
		TurnCount:    sess.board.Turn(),
		StartedAt:    sess.startedAt,
		EndedAt:      sess.updatedAt,
		Duration:     sess.updatedAt.Sub(sess.startedAt),
	}

	id, err := s.repo.InsertGame(ctx, record)
	if errors.Is(err, ErrDuplicateGame) {
		existing, fetchErr := s.repo.GetGameBySession(ctx, sess.id)
		if fetchErr != nil || existing == nil {
			return 0, err
		}
		id, err = existing.ID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("archive game: %w", err)
	}
	sess.gameID = id

	s.logger.Info("chess_game_end",
		zap.String("session_id", sess.id),
		zap.Int64("game_id", id),
		zap.String("result", record.Result),
		zap.String("method", record.ResultMethod),
		zap.Int("moves", len(record.Moves)),
		zap.Duration("duration", record.Duration),
	)
	return id, nil
}

func (s *Service) stateFor(ctx context.Context, sess *session, selected *rules.Square, targets []rules.Square) *chessdto.SessionState {
	b := sess.board
	state := &chessdto.SessionState{
		SessionUUID:  sess.id,
		Title:        sess.title,
		ActivePlayer: b.ActivePlayer().String(),
		Turn:         b.Turn(),
		FEN:          b.FEN(),
		Moves:        slices.Clone(sess.moves),
		Status:       sess.status,
		Outcome:      sess.outcome,
		Captured: chessdto.CapturedPieces{
			White: slices.Clone(sess.captured.White),
			Black: slices.Clone(sess.captured.Black),
		},
		StartedAt: sess.startedAt,
		UpdatedAt: sess.updatedAt,
	}
	if n := len(sess.moves); n > 0 {
		state.LastMove = sess.moves[n-1]
	}
	if checked := b.InCheck(); checked != rules.NoPlayer {
		state.InCheck = checked.String()
	}
	for _, p := range b.Pieces() {
		state.Board[p.Square.Rank][p.Square.File] = p.Glyph()
	}
	s.attachBoardImage(ctx, state, sess, selected, targets)
	return state
}

func (s *Service) attachBoardImage(ctx context.Context, state *chessdto.SessionState, sess *session, selected *rules.Square, targets []rules.Square) {
	if s.renderer == nil {
		return
	}
	hudTurn := fmt.Sprintf("%s to move - %d", state.ActivePlayer, sess.board.Turn()/2+1)
	switch {
	case sess.status == StatusCheckmate:
		hudTurn = "Checkmate"
	case sess.status == StatusStalemate:
		hudTurn = "Stalemate"
	case state.InCheck != "":
		hudTurn += " (check)"
	}
	opts := RenderOptions{
		Highlight: sess.last,
		Selected:  selected,
		Targets:   targets,
		HUDHeader: sess.title,
		HUDTurn:   hudTurn,
	}
	data, err := s.renderer.RenderPNG(ctx, sess.board, opts)
	if err != nil {
		s.logger.Warn("failed to render chess board image", zap.Error(err), zap.String("session_id", sess.id))
		return
	}
	state.BoardImage = data
}

func toGameDTO(g *domain.ChessGame) *chessdto.ChessGame {
	return &chessdto.ChessGame{
		ID:           g.ID,
		SessionUUID:  g.SessionUUID,
		Title:        g.Title,
		Result:       g.Result,
		ResultMethod: g.ResultMethod,
		Moves:        slices.Clone(g.Moves),
		FinalFEN:     g.FinalFEN,
		TurnCount:    g.TurnCount,
		StartedAt:    g.StartedAt,
		EndedAt:      g.EndedAt,
		Duration:     g.Duration,
	}
}
