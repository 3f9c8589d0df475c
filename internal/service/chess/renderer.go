package chess

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strings"

	rules "github.com/park285/cheese-chess/internal/chess"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const defaultSquareSize = 60

type MoveHighlight struct {
	From rules.Square
	To   rules.Square
}

type RenderOptions struct {
	// Highlight marks the last move played.
	Highlight *MoveHighlight
	// Selected is the square of the piece the player picked.
	Selected *rules.Square
	// Targets are the legal destinations of the selected piece.
	Targets   []rules.Square
	HUDHeader string
	HUDTurn   string
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board *rules.Board, opts RenderOptions) ([]byte, error)
}

type RendererOption func(*svgBoardRenderer)

// WithSquareSize sets the edge length of one square in pixels.
func WithSquareSize(n int) RendererOption {
	return func(r *svgBoardRenderer) {
		if n >= 16 {
			r.squareSize = n
		}
	}
}

// WithPieceAssetDir replaces embedded piece SVGs with files of the same name in dir.
func WithPieceAssetDir(dir string) RendererOption {
	return func(r *svgBoardRenderer) { r.assetDir = dir }
}

type svgBoardRenderer struct {
	squareSize int
	assetDir   string
	pieces     *pieceSet
}

func NewSVGBoardRenderer(options ...RendererOption) (BoardRenderer, error) {
	r := &svgBoardRenderer{squareSize: defaultSquareSize}
	for _, opt := range options {
		opt(r)
	}
	pieces, err := newPieceSet(r.assetDir)
	if err != nil {
		return nil, err
	}
	r.pieces = pieces
	return r, nil
}

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *rules.Board, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}

	squareSize := r.squareSize
	boardSize := squareSize * rules.BoardSize
	sideMargin := squareSize / 2
	bottomMargin := squareSize / 2
	const (
		titleHeight          = 26
		secondaryPanelHeight = 20
		gapBetweenPanels     = 8
		gapToBoard           = 12
		panelRadius          = 8
		shadowOffsetY        = 4
	)
	topMargin := titleHeight + secondaryPanelHeight + gapBetweenPanels + gapToBoard + 12

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	boardOrigin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(boardOrigin.X, boardOrigin.Y, boardOrigin.X+boardSize, boardOrigin.Y+boardSize)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	layout := hudLayout{
		radius:               panelRadius,
		titleHeight:          titleHeight,
		secondaryPanelHeight: secondaryPanelHeight,
		gapBetweenPanels:     gapBetweenPanels,
		gapToBoard:           gapToBoard,
		shadowOffsetY:        shadowOffsetY,
	}
	drawHUD(img, opts, boardRect, layout)
	drawBoardShadow(img, boardRect)
	drawSquares(img, squareSize, boardOrigin)
	drawHighlight(img, board, opts.Highlight, squareSize, boardOrigin)
	if opts.Selected != nil {
		drawSquareOverlay(img, *opts.Selected, squareSize, boardOrigin, selectedHighlightColor)
	}
	if king, ok := checkedKing(board); ok {
		drawSquareOverlay(img, king, squareSize, boardOrigin, checkHighlightColor)
	}
	if err := r.drawPieces(img, board, squareSize, boardOrigin); err != nil {
		return nil, err
	}
	drawTargets(img, board, opts.Targets, squareSize, boardOrigin)
	drawCoordinates(img, squareSize, boardOrigin, sideMargin)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	backgroundColor        = color.RGBA{R: 22, G: 24, B: 34, A: 255}
	lightSquare            = color.RGBA{233, 207, 163, 255}
	darkSquare             = color.RGBA{187, 136, 96, 255}
	selectedHighlightColor = color.NRGBA{R: 255, G: 228, B: 120, A: 150}
	lastMoveHighlightFill  = color.NRGBA{R: 148, G: 207, B: 255, A: 110}
	lastMoveHighlightArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	moveTargetColor        = color.NRGBA{R: 40, G: 170, B: 60, A: 170}
	captureTargetColor     = color.NRGBA{R: 210, G: 40, B: 40, A: 130}
	checkHighlightColor    = color.NRGBA{R: 230, G: 60, B: 60, A: 150}
	hudPanelColor          = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor      = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor         = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary         = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor       = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	boardShadowColor       = color.NRGBA{0, 0, 0, 60}
	coordinateTextColor    = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

func drawBoardShadow(img *image.RGBA, boardRect image.Rectangle) {
	shadowRect := image.Rect(boardRect.Min.X+3, boardRect.Min.Y+6, boardRect.Max.X+6, boardRect.Max.Y+8)
	imagedraw.Draw(img, shadowRect, image.NewUniform(boardShadowColor), image.Point{}, imagedraw.Over)
}

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for sq := range rules.Squares() {
		imagedraw.Draw(dst, squareRect(sq, squareSize, origin), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
	}
}

func (r *svgBoardRenderer) drawPieces(dst imagedraw.Image, board *rules.Board, squareSize int, origin image.Point) error {
	for _, p := range board.Pieces() {
		img, err := r.pieces.image(p, squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, squareRect(p.Square, squareSize, origin), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

// drawTargets puts a dot on empty destinations and tints captures.
func drawTargets(img *image.RGBA, board *rules.Board, targets []rules.Square, squareSize int, origin image.Point) {
	for _, sq := range targets {
		rect := squareRect(sq, squareSize, origin)
		if _, occupied := board.PieceAt(sq); occupied {
			imagedraw.Draw(img, rect, image.NewUniform(captureTargetColor), image.Point{}, imagedraw.Over)
			continue
		}
		center := image.Pt(rect.Min.X+squareSize/2, rect.Min.Y+squareSize/2)
		drawDisc(img, center, squareSize/6, moveTargetColor)
	}
}

func drawHighlight(img *image.RGBA, board *rules.Board, highlight *MoveHighlight, squareSize int, origin image.Point) {
	if highlight == nil {
		return
	}
	// A piece now standing on To belongs to the side that just moved.
	if p, ok := board.PieceAt(highlight.To); ok && p.Owner == rules.Player2 {
		drawArrow(img, highlight.From, highlight.To, squareSize, origin, lastMoveHighlightArrow)
		return
	}
	drawSquareOverlay(img, highlight.From, squareSize, origin, lastMoveHighlightFill)
	drawSquareOverlay(img, highlight.To, squareSize, origin, lastMoveHighlightFill)
}

func checkedKing(board *rules.Board) (rules.Square, bool) {
	checked := board.InCheck()
	if checked == rules.NoPlayer {
		return rules.Square{}, false
	}
	for _, p := range board.Pieces() {
		if p.Kind == rules.King && p.Owner == checked {
			return p.Square, true
		}
	}
	return rules.Square{}, false
}

type hudLayout struct {
	radius               int
	titleHeight          int
	secondaryPanelHeight int
	gapBetweenPanels     int
	gapToBoard           int
	shadowOffsetY        int
}

func drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle, l hudLayout) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "White vs Black"
	}
	turnText := strings.TrimSpace(opts.HUDTurn)
	if turnText == "" {
		turnText = "Turn"
	}

	turnBottom := boardRect.Min.Y - l.gapToBoard
	turnTop := turnBottom - l.secondaryPanelHeight
	titleBottom := turnTop - l.gapBetweenPanels
	titleTop := titleBottom - l.titleHeight

	const padX = 14
	titleWidth := min(max(drawer.MeasureString(title).Round()+padX*2, boardRect.Dx()/2), boardRect.Dx())
	turnWidth := min(max(drawer.MeasureString(turnText).Round()+padX*2, boardRect.Dx()/4), boardRect.Dx())

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	turnLeft := boardRect.Max.X - turnWidth
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	drawRoundedPanel(img, titleRect.Add(image.Pt(0, l.shadowOffsetY)), l.radius, hudShadowColor)
	drawRoundedPanel(img, turnRect.Add(image.Pt(0, l.shadowOffsetY)), l.radius, hudShadowColor)

	title = truncateWithEllipsis(face, title, titleRect.Dx()-padX*2)
	turnText = truncateWithEllipsis(face, turnText, turnRect.Dx()-padX*2)

	drawRoundedPanel(img, titleRect, l.radius, hudPanelColor)
	drawRoundedPanel(img, turnRect, l.radius, hudTurnPanelColor)

	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func drawSquareOverlay(img *image.RGBA, sq rules.Square, squareSize int, origin image.Point, clr color.Color) {
	if !sq.Valid() {
		return
	}
	imagedraw.Draw(img, squareRect(sq, squareSize, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawArrow(img *image.RGBA, from, to rules.Square, squareSize int, origin image.Point, clr color.Color) {
	if from == to {
		return
	}
	startRect := squareRect(from, squareSize, origin)
	endRect := squareRect(to, squareSize, origin)
	start := image.Pt(startRect.Min.X+squareSize/2, startRect.Min.Y+squareSize/2)
	end := image.Pt(endRect.Min.X+squareSize/2, endRect.Min.Y+squareSize/2)

	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	dirX := dx / length
	dirY := dy / length
	perpX := -dirY
	perpY := dirX

	baseLength := length - float64(squareSize)*0.45
	if baseLength < float64(squareSize)*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := float64(squareSize) * 0.12
	headWidth := float64(squareSize) * 0.4

	baseX := float64(start.X) + dirX*baseLength
	baseY := float64(start.Y) + dirY*baseLength

	fillQuad(img,
		pointF{X: float64(start.X) - perpX*halfWidth, Y: float64(start.Y) - perpY*halfWidth},
		pointF{X: float64(start.X) + perpX*halfWidth, Y: float64(start.Y) + perpY*halfWidth},
		pointF{X: baseX + perpX*halfWidth, Y: baseY + perpY*halfWidth},
		pointF{X: baseX - perpX*halfWidth, Y: baseY - perpY*halfWidth},
		clr,
	)
	fillTriangleF(img,
		pointF{X: float64(end.X), Y: float64(end.Y)},
		pointF{X: baseX - perpX*headWidth/2, Y: baseY - perpY*headWidth/2},
		pointF{X: baseX + perpX*headWidth/2, Y: baseY + perpY*headWidth/2},
		clr,
	)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}

	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}

	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}

	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = max(0, min(radius, rect.Dx()/2, rect.Dy()/2))
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}

	// Non-overlapping pieces keep translucent colours even.
	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)

	corners := []struct {
		center image.Point
		dx, dy int
	}{
		{image.Pt(rect.Min.X+radius, rect.Min.Y+radius), -1, -1},
		{image.Pt(rect.Max.X-radius-1, rect.Min.Y+radius), 1, -1},
		{image.Pt(rect.Min.X+radius, rect.Max.Y-radius-1), -1, 1},
		{image.Pt(rect.Max.X-radius-1, rect.Max.Y-radius-1), 1, 1},
	}
	for _, c := range corners {
		drawQuarterDisc(img, c.center, radius, c.dx, c.dy, clr)
	}
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if drawer == nil || text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X+(rect.Dx()-width)/2, rect.Min.X)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point, margin int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + rules.BoardSize*squareSize

	for i := range rules.BoardSize {
		rankCenter := origin.Y + i*squareSize + squareSize/2
		drawCenteredText(drawer, rules.RankLabels[i], origin.X-margin/2, rankCenter+ascent/2)

		fileCenter := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, rules.FileLabels[i], fileCenter, boardEndY+ascent+2)
	}
}

func drawDisc(img *image.RGBA, center image.Point, radius int, clr color.Color) {
	if radius <= 0 {
		blendPixel(img, center.X, center.Y, clr)
		return
	}
	rSquared := radius * radius
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= rSquared {
				blendPixel(img, center.X+x, center.Y+y, clr)
			}
		}
	}
}

// drawQuarterDisc fills the quadrant of a disc selected by the signs of dx, dy.
func drawQuarterDisc(img *image.RGBA, center image.Point, radius, dx, dy int, clr color.Color) {
	rSquared := radius * radius
	for y := 1; y <= radius; y++ {
		for x := 1; x <= radius; x++ {
			if x*x+y*y <= rSquared {
				blendPixel(img, center.X+x*dx, center.Y+y*dy, clr)
			}
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}

	sr, sg, sb, sa := clr.RGBA()
	srcA := float64(sa) / 65535.0
	if srcA <= 0 {
		return
	}
	// RGBA() is premultiplied.
	srcR := float64(sr) / 65535.0
	srcG := float64(sg) / 65535.0
	srcB := float64(sb) / 65535.0

	dst := img.RGBAAt(x, y)
	dstR := float64(dst.R) / 255.0
	dstG := float64(dst.G) / 255.0
	dstB := float64(dst.B) / 255.0
	dstA := float64(dst.A) / 255.0

	inv := 1 - srcA
	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8((srcR + dstR*inv) * 255.0),
		G: floatToUint8((srcG + dstG*inv) * 255.0),
		B: floatToUint8((srcB + dstB*inv) * 255.0),
		A: floatToUint8((srcA + dstA*inv) * 255.0),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// squareRect maps a square to pixels; rank index 0 is the top row.
func squareRect(sq rules.Square, squareSize int, origin image.Point) image.Rectangle {
	x := origin.X + sq.File*squareSize
	y := origin.Y + sq.Rank*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareColor(sq rules.Square) color.Color {
	if (sq.File+sq.Rank)%2 == 0 {
		return lightSquare
	}
	return darkSquare
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

type pointF struct {
	X float64
	Y float64
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangleF(img, p0, p1, p2, clr)
	fillTriangleF(img, p0, p2, p3, clr)
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(min(a.X, b.X, c.X)))
	maxX := int(math.Ceil(max(a.X, b.X, c.X)))
	minY := int(math.Floor(min(a.Y, b.Y, c.Y)))
	maxY := int(math.Ceil(max(a.Y, b.Y, c.Y)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func pointInTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	gamma := 1 - alpha - beta
	return alpha >= 0 && beta >= 0 && gamma >= 0
}
