package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CHESS_CONFIG", "CHESS_BOARD_IMAGE_DIR", "CHESS_PIECE_ASSET_DIR", "CHESS_MESSAGE_DIR",
		"CHESS_COLOR", "CHESS_HISTORY_LIMIT", "CHESS_START_FEN", "CHESS_SQUARE_SIZE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(defaults(), cfg); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "chess.yaml")
	body := []byte("board_image_dir: out\nhistory_limit: 3\ncolor_output: false\nstart_fen: \"4k3/8/8/8/8/8/8/4K3 w\"\nsquare_size: -4\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CHESS_CONFIG", path)
	t.Setenv("CHESS_HISTORY_LIMIT", "7")
	t.Setenv("CHESS_SQUARE_SIZE", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &AppConfig{
		BoardImageDir: "out",
		ColorOutput:   false,
		HistoryLimit:  7,
		StartFEN:      "4k3/8/8/8/8/8/8/4K3 w",
		SquareSize:    60,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHESS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
