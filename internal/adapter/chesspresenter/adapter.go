package chesspresenter

import (
	"errors"

	rules "github.com/park285/cheese-chess/internal/chess"
	svc "github.com/park285/cheese-chess/internal/service/chess"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

const (
	CodeInvalidSquare   = "invalid_square"
	CodeNotSelectable   = "not_selectable"
	CodeIllegalMove     = "illegal_move"
	CodeFinished        = "finished"
	CodeSessionNotFound = "session_not_found"
	CodeInvalidPosition = "invalid_position"
	CodeInternal        = "internal"
)

var errorCodes = []struct {
	target    error
	code      string
	retryable bool
}{
	{svc.ErrInvalidSquare, CodeInvalidSquare, true},
	{svc.ErrNotSelectable, CodeNotSelectable, true},
	{svc.ErrIllegalMove, CodeIllegalMove, true},
	{svc.ErrGameFinished, CodeFinished, false},
	{svc.ErrSessionNotFound, CodeSessionNotFound, false},
	{svc.ErrGameNotFound, CodeSessionNotFound, false},
	{rules.ErrInvalidFEN, CodeInvalidPosition, false},
}

// ToDomainError classifies a service error. Retryable errors mean the player
// should simply be asked again.
func ToDomainError(err error) *chessdto.DomainError {
	if err == nil {
		return nil
	}
	var de chessdto.DomainError
	if errors.As(err, &de) {
		return &de
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			return &chessdto.DomainError{Code: ec.code, Message: err.Error(), Retryable: ec.retryable, Err: err}
		}
	}
	return &chessdto.DomainError{Code: CodeInternal, Message: err.Error(), Err: err}
}
