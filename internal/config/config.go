package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	BoardImageDir string `yaml:"board_image_dir"`
	PieceAssetDir string `yaml:"piece_asset_dir"`
	MessageDir    string `yaml:"message_dir"`

	ColorOutput  bool   `yaml:"color_output"`
	HistoryLimit int    `yaml:"history_limit"`
	StartFEN     string `yaml:"start_fen"`
	SquareSize   int    `yaml:"square_size"`
}

func defaults() *AppConfig {
	return &AppConfig{
		ColorOutput:  true,
		HistoryLimit: 10,
		SquareSize:   60,
	}
}

// Load reads CHESS_CONFIG (if set) and then lets environment variables win.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CHESS_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_BOARD_IMAGE_DIR")); v != "" {
		cfg.BoardImageDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_PIECE_ASSET_DIR")); v != "" {
		cfg.PieceAssetDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_MESSAGE_DIR")); v != "" {
		cfg.MessageDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_COLOR")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ColorOutput = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_START_FEN")); v != "" {
		cfg.StartFEN = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SQUARE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SquareSize = n
		}
	}

	cfg.normalize()
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) normalize() {
	def := defaults()
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.SquareSize <= 0 {
		c.SquareSize = def.SquareSize
	}
	c.BoardImageDir = strings.TrimSpace(c.BoardImageDir)
	c.PieceAssetDir = strings.TrimSpace(c.PieceAssetDir)
	c.MessageDir = strings.TrimSpace(c.MessageDir)
	c.StartFEN = strings.TrimSpace(c.StartFEN)
}
