package chess

import (
	"context"
	"errors"

	"github.com/park285/cheese-chess/internal/domain"
)

var ErrDuplicateGame = errors.New("chess game already exists")

// Repository archives finished games.
type Repository interface {
	InsertGame(ctx context.Context, game *domain.ChessGame) (int64, error)
	GetRecentGames(ctx context.Context, limit int) ([]*domain.ChessGame, error)
	GetGame(ctx context.Context, id int64) (*domain.ChessGame, error)
	GetGameBySession(ctx context.Context, sessionUUID string) (*domain.ChessGame, error)
}
