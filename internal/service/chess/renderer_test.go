package chess

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	rules "github.com/park285/cheese-chess/internal/chess"
)

const testSquare = 40

func renderBoard(t *testing.T, r BoardRenderer, b *rules.Board, opts RenderOptions) image.Image {
	t.Helper()
	data, err := r.RenderPNG(context.Background(), b, opts)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

// squareOrigin returns the top-left pixel of sq for a renderer built with testSquare.
func squareOrigin(sq rules.Square) image.Point {
	topMargin := 26 + 20 + 8 + 12 + 12
	return image.Pt(testSquare/2+sq.File*testSquare, topMargin+sq.Rank*testSquare)
}

func rgbAt(img image.Image, p image.Point) (r, g, b uint32) {
	r, g, b, _ = img.At(p.X, p.Y).RGBA()
	return r >> 8, g >> 8, b >> 8
}

func TestRenderDimensions(t *testing.T) {
	r, err := NewSVGBoardRenderer(WithSquareSize(testSquare))
	if err != nil {
		t.Fatalf("NewSVGBoardRenderer: %v", err)
	}
	b := rules.NewBoard()
	b.InitNewGame()
	img := renderBoard(t, r, b, RenderOptions{HUDHeader: "test", HUDTurn: "White to move - 1"})

	wantW := testSquare*rules.BoardSize + testSquare
	if img.Bounds().Dx() != wantW {
		t.Fatalf("width = %d; want %d", img.Bounds().Dx(), wantW)
	}
}

func TestRenderTargets(t *testing.T) {
	r, err := NewSVGBoardRenderer(WithSquareSize(testSquare))
	if err != nil {
		t.Fatalf("NewSVGBoardRenderer: %v", err)
	}
	b, err := rules.ParseFEN("4k3/8/8/3p4/4P3/8/8/4K3 w")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	from, _ := rules.ParseSquare("e4")
	empty, _ := rules.ParseSquare("e5")
	capture, _ := rules.ParseSquare("d5")
	img := renderBoard(t, r, b, RenderOptions{Selected: &from, Targets: []rules.Square{empty, capture}})

	center := squareOrigin(empty).Add(image.Pt(testSquare/2, testSquare/2))
	if red, green, _ := rgbAt(img, center); green <= red {
		t.Fatalf("empty target not green: r=%d g=%d", red, green)
	}
	corner := squareOrigin(capture).Add(image.Pt(2, 2))
	if red, green, _ := rgbAt(img, corner); red <= green {
		t.Fatalf("capture target not red: r=%d g=%d", red, green)
	}
}

func TestRenderHonorsContext(t *testing.T) {
	r, err := NewSVGBoardRenderer()
	if err != nil {
		t.Fatalf("NewSVGBoardRenderer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, rules.NewBoard(), RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v; want context.Canceled", err)
	}
	if _, err := r.RenderPNG(context.Background(), nil, RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil board")
	}
}

func TestPieceAssetOverride(t *testing.T) {
	dir := t.TempDir()
	// A solid blue square stands in for the white pawn.
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect x="0" y="0" width="10" height="10" style="fill: #0000ff"/></svg>`
	if err := os.WriteFile(filepath.Join(dir, "wP.svg"), []byte(svg), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := NewSVGBoardRenderer(WithSquareSize(testSquare), WithPieceAssetDir(dir))
	if err != nil {
		t.Fatalf("NewSVGBoardRenderer: %v", err)
	}
	b := rules.NewBoard()
	b.InitNewGame()
	img := renderBoard(t, r, b, RenderOptions{})

	pawn, _ := rules.ParseSquare("a2")
	if red, green, blue := rgbAt(img, squareOrigin(pawn).Add(image.Pt(5, 5))); blue < 200 || red > 50 || green > 50 {
		t.Fatalf("override pawn not drawn: %d,%d,%d", red, green, blue)
	}

	if _, err := NewSVGBoardRenderer(WithPieceAssetDir(filepath.Join(dir, "missing"))); err == nil {
		t.Fatalf("expected error for missing asset dir")
	}
}

func TestPieceAssetName(t *testing.T) {
	tests := map[string]rules.Piece{
		"wN.svg": {Kind: rules.Knight, Owner: rules.Player1},
		"bP.svg": {Kind: rules.Pawn, Owner: rules.Player2},
		"bK.svg": {Kind: rules.King, Owner: rules.Player2},
	}
	for want, p := range tests {
		if got := pieceAssetName(p); got != want {
			t.Errorf("pieceAssetName(%v) = %q; want %q", p, got, want)
		}
	}
}

func TestSanitizeSVG(t *testing.T) {
	got := string(sanitizeSVG([]byte(`style="fill: #fff; stroke: 000000"`)))
	if got != `style="fill:#fff; stroke:#000000"` {
		t.Fatalf("sanitizeSVG = %q", got)
	}
}
