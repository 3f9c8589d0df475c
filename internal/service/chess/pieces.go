package chess

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	rules "github.com/park285/cheese-chess/internal/chess"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type pieceCacheKey struct {
	kind  rules.Kind
	owner rules.Player
	size  int
}

// pieceSet rasterises piece SVGs, preferring files from an override directory.
type pieceSet struct {
	src fs.FS

	mu    sync.RWMutex
	cache map[pieceCacheKey]image.Image
}

func newPieceSet(overrideDir string) (*pieceSet, error) {
	set := &pieceSet{cache: make(map[pieceCacheKey]image.Image)}
	embedded, err := fs.Sub(pieceFiles, "assets/pieces")
	if err != nil {
		return nil, err
	}
	set.src = embedded

	if dir := strings.TrimSpace(overrideDir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("piece asset dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("piece asset dir %s is not a directory", dir)
		}
		set.src = overlayFS{top: os.DirFS(dir), base: embedded}
	}
	return set, nil
}

func (s *pieceSet) image(p rules.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{kind: p.Kind, owner: p.Owner, size: size}

	s.mu.RLock()
	if img, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return img, nil
	}
	s.mu.RUnlock()

	name := pieceAssetName(p)
	data, err := fs.ReadFile(s.src, name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG(data)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}
	if icon.ViewBox.W <= 0 {
		icon.ViewBox.W = float64(size)
	}
	if icon.ViewBox.H <= 0 {
		icon.ViewBox.H = float64(size)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	s.mu.Lock()
	s.cache[key] = img
	s.mu.Unlock()

	return img, nil
}

// pieceAssetName maps a piece to e.g. "wN.svg" or "bP.svg".
func pieceAssetName(p rules.Piece) string {
	prefix := "w"
	if p.Owner == rules.Player2 {
		prefix = "b"
	}
	return fmt.Sprintf("%s%c.svg", prefix, rules.Piece{Kind: p.Kind, Owner: rules.Player1}.Letter())
}

// overlayFS serves files from top and falls back to base.
type overlayFS struct {
	top  fs.FS
	base fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if f, err := o.top.Open(path.Clean(name)); err == nil {
		return f, nil
	}
	return o.base.Open(name)
}
