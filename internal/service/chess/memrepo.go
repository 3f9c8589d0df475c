package chess

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/park285/cheese-chess/internal/domain"
)

// memrepo keeps finished games for the life of the process.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	gamesByID      map[int64]*domain.ChessGame
	gamesBySession map[string]*domain.ChessGame
}

func NewMemoryRepository() Repository {
	return &memrepo{
		gamesByID:      make(map[int64]*domain.ChessGame),
		gamesBySession: make(map[string]*domain.ChessGame),
	}
}

func (m *memrepo) InsertGame(ctx context.Context, game *domain.ChessGame) (int64, error) {
	if game == nil {
		return 0, ErrDuplicateGame
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key := strings.TrimSpace(game.SessionUUID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.gamesBySession[key]; exists {
		return 0, ErrDuplicateGame
	}

	m.nextID++
	stored := cloneGame(game)
	stored.ID = m.nextID

	m.gamesByID[stored.ID] = stored
	m.gamesBySession[key] = stored
	return stored.ID, nil
}

// GetRecentGames returns games newest first; limit <= 0 means all.
func (m *memrepo) GetRecentGames(ctx context.Context, limit int) ([]*domain.ChessGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	items := make([]*domain.ChessGame, 0, len(m.gamesByID))
	for _, g := range m.gamesByID {
		items = append(items, cloneGame(g))
	}
	m.mu.RUnlock()

	slices.SortFunc(items, func(a, b *domain.ChessGame) int {
		if c := b.EndedAt.Compare(a.EndedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// GetGame returns nil, nil when id is unknown.
func (m *memrepo) GetGame(ctx context.Context, id int64) (*domain.ChessGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.gamesByID[id]; ok {
		return cloneGame(g), nil
	}
	return nil, nil
}

func (m *memrepo) GetGameBySession(ctx context.Context, sessionUUID string) (*domain.ChessGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.gamesBySession[strings.TrimSpace(sessionUUID)]; ok {
		return cloneGame(g), nil
	}
	return nil, nil
}

func cloneGame(g *domain.ChessGame) *domain.ChessGame {
	c := *g
	c.Moves = slices.Clone(g.Moves)
	return &c
}
