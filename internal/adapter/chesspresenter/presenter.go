package chesspresenter

import (
	"fmt"
	"strings"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

// Presenter delivers formatted messages and board images without coupling to the game loop.
type Presenter struct {
	sendMessage func(message string) error
	sendImage   func(name string, png []byte) error
}

// NewPresenter takes the text sink and an optional image sink.
func NewPresenter(sendMessage func(message string) error, sendImage func(name string, png []byte) error) *Presenter {
	return &Presenter{
		sendMessage: sendMessage,
		sendImage:   sendImage,
	}
}

func (p *Presenter) Message(message string) error {
	if p == nil || p.sendMessage == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(message)
}

// Board sends message and then the board image of state, if any.
func (p *Presenter) Board(message string, state *chessdto.SessionState) error {
	if p == nil {
		return nil
	}
	if err := p.Message(message); err != nil {
		return err
	}
	if state != nil && len(state.BoardImage) > 0 && p.sendImage != nil {
		if err := p.sendImage(ImageName(state), state.BoardImage); err != nil {
			return fmt.Errorf("send board image: %w", err)
		}
	}
	return nil
}

// Selection sends message and the board image highlighting the selected piece.
func (p *Presenter) Selection(message string, res *chessdto.SelectResult) error {
	if p == nil || res == nil {
		return nil
	}
	if err := p.Message(message); err != nil {
		return err
	}
	if res.State != nil && len(res.State.BoardImage) > 0 && p.sendImage != nil {
		name := strings.TrimSuffix(ImageName(res.State), ".png") + "-" + res.Square + ".png"
		if err := p.sendImage(name, res.State.BoardImage); err != nil {
			return fmt.Errorf("send board image: %w", err)
		}
	}
	return nil
}

// ImageName is a stable file name per session and ply.
func ImageName(state *chessdto.SessionState) string {
	title := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, state.Title)
	if title == "" {
		title = "game"
	}
	return fmt.Sprintf("%s-%03d.png", title, state.Turn)
}
