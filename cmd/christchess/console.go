package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	svcchess "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
	"go.uber.org/zap"
)

// console drives one game over a line-oriented terminal.
type console struct {
	service   *svcchess.Service
	formatter *chesspresenter.Formatter
	presenter *chesspresenter.Presenter
	out       io.Writer
	logger    *zap.Logger

	lines     <-chan string
	sessionID string
}

// errQuit ends the loop without an error.
var errQuit = errors.New("quit")

func (c *console) run(ctx context.Context, in io.Reader) error {
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.lines = readLines(ctx, in)

	state, err := c.service.Start(ctx, chessdto.StartSessionRequest{})
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	c.sessionID = state.SessionUUID
	c.show(join(c.formatter.Start(state), c.formatter.Board(state, nil), c.formatter.Help()), state)
	if state.Status != svcchess.StatusActive {
		c.say(c.formatter.Status(state))
	}

	for state.Status == svcchess.StatusActive {
		next, err := c.turn(ctx, state)
		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			return c.end(ctx)
		case errors.Is(err, context.Canceled):
			_ = c.end(context.WithoutCancel(ctx))
			return err
		case err != nil:
			return err
		}
		state = next
	}
	return c.end(ctx)
}

// turn reads commands until the active player has made a move.
func (c *console) turn(ctx context.Context, state *chessdto.SessionState) (*chessdto.SessionState, error) {
	for {
		line, err := c.prompt(ctx, c.formatter.SelectPrompt(state.ActivePlayer))
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil, errQuit
		case "help":
			c.say(c.formatter.Help())
			continue
		case "board":
			current, err := c.service.Status(ctx, c.sessionID)
			if err != nil {
				return nil, err
			}
			c.show(join(c.formatter.Status(current), c.formatter.Board(current, nil)), current)
			continue
		case "history":
			resp, err := c.service.History(ctx, chessdto.HistoryRequest{})
			if err != nil {
				return nil, err
			}
			c.say(c.formatter.History(resp.Games))
			continue
		}

		sel, err := c.service.Select(ctx, chessdto.SelectRequest{SessionID: c.sessionID, Square: line})
		if err != nil {
			if c.retry(err, line, "") {
				continue
			}
			return nil, err
		}
		next, err := c.target(ctx, sel)
		if err != nil {
			return nil, err
		}
		if next != nil {
			return next, nil
		}
	}
}

// target asks where the selected piece goes. A nil state means the
// selection was cancelled.
func (c *console) target(ctx context.Context, sel *chessdto.SelectResult) (*chessdto.SessionState, error) {
	msg := join(c.formatter.Targets(sel), c.formatter.Board(sel.State, sel), c.formatter.CancelHint())
	if err := c.presenter.Selection(msg, sel); err != nil {
		c.logger.Warn("chess_present_failed", zap.Error(err))
	}
	for {
		line, err := c.prompt(ctx, c.formatter.TargetPrompt(sel.Piece))
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "c":
			return nil, nil
		case "quit", "exit":
			return nil, errQuit
		case "help":
			c.say(c.formatter.Help())
			continue
		case "board":
			c.say(join(c.formatter.Targets(sel), c.formatter.Board(sel.State, sel)))
			continue
		case "history":
			resp, err := c.service.History(ctx, chessdto.HistoryRequest{})
			if err != nil {
				return nil, err
			}
			c.say(c.formatter.History(resp.Games))
			continue
		}

		summary, err := c.service.Play(ctx, chessdto.PlayRequest{SessionID: c.sessionID, From: sel.Square, To: line})
		if err != nil {
			if c.retry(err, line, sel.Piece) {
				continue
			}
			return nil, err
		}
		c.show(join(c.formatter.Move(summary), c.formatter.Board(summary.State, nil)), summary.State)
		return summary.State, nil
	}
}

// retry prints the error and reports whether the player should be asked again.
func (c *console) retry(err error, input, glyph string) bool {
	de := chesspresenter.ToDomainError(err)
	if !de.Retryable {
		return false
	}
	c.say(c.formatter.Error(de, input, glyph))
	return true
}

func (c *console) end(ctx context.Context) error {
	state, err := c.service.End(ctx, c.sessionID)
	if err != nil {
		return fmt.Errorf("end game: %w", err)
	}
	c.logger.Debug("chess_console_end", zap.String("session_id", state.SessionUUID), zap.String("status", state.Status))
	return nil
}

func (c *console) prompt(ctx context.Context, text string) (string, error) {
	fmt.Fprint(c.out, text+" ")
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func (c *console) say(message string) {
	if err := c.presenter.Message(message); err != nil {
		c.logger.Warn("chess_present_failed", zap.Error(err))
	}
}

func (c *console) show(message string, state *chessdto.SessionState) {
	if err := c.presenter.Board(message, state); err != nil {
		c.logger.Warn("chess_present_failed", zap.Error(err))
	}
}

func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func join(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
