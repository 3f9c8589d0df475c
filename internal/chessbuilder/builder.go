package chessbuilder

import (
	"fmt"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/msgcat"
	svcchess "github.com/park285/cheese-chess/internal/service/chess"
	"go.uber.org/zap"
)

type Deps struct {
	Service   *svcchess.Service
	Repo      svcchess.Repository
	Catalog   *msgcat.Catalog
	Formatter *chesspresenter.Formatter
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	renderer, err := svcchess.NewSVGBoardRenderer(
		svcchess.WithSquareSize(cfg.SquareSize),
		svcchess.WithPieceAssetDir(cfg.PieceAssetDir),
	)
	if err != nil {
		return nil, fmt.Errorf("init board renderer: %w", err)
	}

	// Finished games live for the lifetime of the process.
	repo := svcchess.NewMemoryRepository()

	svcCfg := svcchess.Config{
		StartFEN:     cfg.StartFEN,
		HistoryLimit: cfg.HistoryLimit,
	}
	service, err := svcchess.NewService(repo, renderer, svcCfg, logger)
	if err != nil {
		return nil, err
	}

	return &Deps{
		Service:   service,
		Repo:      repo,
		Catalog:   catalog,
		Formatter: chesspresenter.NewFormatter(catalog, cfg.ColorOutput),
	}, nil
}
