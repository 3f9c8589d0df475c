package chesspresenter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	rules "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// Formatter renders chess DTOs into console text using the message catalog.
type Formatter struct {
	catalog *msgcat.Catalog
	colored bool

	lightSquare   *color.Color
	darkSquare    *color.Color
	selected      *color.Color
	moveTarget    *color.Color
	captureTarget *color.Color
	label         *color.Color
}

func NewFormatter(catalog *msgcat.Catalog, colored bool) *Formatter {
	f := &Formatter{
		catalog:       catalog,
		colored:       colored,
		lightSquare:   color.New(color.BgHiWhite, color.FgBlack),
		darkSquare:    color.New(color.BgYellow, color.FgBlack),
		selected:      color.New(color.BgHiYellow, color.FgBlack, color.Bold),
		moveTarget:    color.New(color.BgGreen, color.FgBlack),
		captureTarget: color.New(color.BgRed, color.FgBlack),
		label:         color.New(color.FgHiBlack),
	}
	// The caller decides, not the terminal probe inside fatih/color.
	for _, c := range []*color.Color{f.lightSquare, f.darkSquare, f.selected, f.moveTarget, f.captureTarget, f.label} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// render falls back to fallback when the catalog is missing or the template fails.
func (f *Formatter) render(key string, data map[string]any, fallback string) string {
	if f == nil || f.catalog == nil {
		return fallback
	}
	out, err := f.catalog.Render(key, data)
	if err != nil {
		return fallback
	}
	return strings.TrimRight(out, "\n")
}

func (f *Formatter) SelectPrompt(player string) string {
	return f.render("prompt.select", map[string]any{"Player": player}, player+", select a piece:")
}

func (f *Formatter) TargetPrompt(glyph string) string {
	return f.render("prompt.target", map[string]any{"Glyph": glyph}, "Move "+glyph+" to:")
}

func (f *Formatter) CancelHint() string {
	return f.render("prompt.cancel_hint", nil, "(enter c to cancel the selection)")
}

func (f *Formatter) Help() string {
	return f.render("help", nil, "Commands: <square>, c, board, history, quit")
}

func (f *Formatter) Start(state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	data := map[string]any{"Title": state.Title, "Player": state.ActivePlayer}
	return f.render("game.start", data, fmt.Sprintf("New game %q started.", state.Title))
}

// Status describes a running game, or how it ended.
func (f *Formatter) Status(state *chessdto.SessionState) string {
	if state == nil {
		return ""
	}
	if line := f.outcome(state); line != "" {
		return line
	}
	data := map[string]any{"Title": state.Title, "Turn": state.Turn/2 + 1, "Player": state.ActivePlayer}
	line := f.render("game.resumed", data, fmt.Sprintf("%s to move.", state.ActivePlayer))
	if state.InCheck != "" {
		line += "\n" + f.render("game.check", map[string]any{"Player": state.InCheck}, state.InCheck+" is in check.")
	}
	return line
}

func (f *Formatter) Targets(res *chessdto.SelectResult) string {
	if res == nil {
		return ""
	}
	joined := strings.Join(res.Targets, " ")
	return f.render("move.targets", map[string]any{"Targets": joined}, "Legal targets: "+joined)
}

// Move reports the move, a capture, and check or the end of the game.
func (f *Formatter) Move(summary *chessdto.MoveSummary) string {
	if summary == nil {
		return ""
	}
	lines := []string{f.render("move.played", map[string]any{"Notation": summary.Notation}, summary.Notation)}
	if summary.Captured != "" {
		data := map[string]any{"Player": summary.Mover, "Captured": summary.Captured, "Square": summary.To}
		lines = append(lines, f.render("move.capture", data, fmt.Sprintf("%s captured %s on %s.", summary.Mover, summary.Captured, summary.To)))
	}
	state := summary.State
	if state == nil {
		return strings.Join(lines, "\n")
	}
	if line := f.outcome(state); line != "" {
		lines = append(lines, line)
	} else if summary.Check && state.InCheck != "" {
		lines = append(lines, f.render("game.check", map[string]any{"Player": state.InCheck}, state.InCheck+" is in check."))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) outcome(state *chessdto.SessionState) string {
	data := map[string]any{"Player": state.ActivePlayer}
	switch state.Status {
	case "checkmate":
		return f.render("game.checkmate", data, "Player "+state.ActivePlayer+" is checkmate.")
	case "stalemate":
		return f.render("game.stalemate", data, "Stalemate.")
	default:
		return ""
	}
}

// Error renders a failed select or play. input is what the player typed and
// glyph the selected piece, if any.
func (f *Formatter) Error(de *chessdto.DomainError, input, glyph string) string {
	if de == nil {
		return ""
	}
	data := map[string]any{
		"Input":   input,
		"Square":  strings.ToLower(strings.TrimSpace(input)),
		"Glyph":   glyph,
		"Message": de.Message,
	}
	return f.render("error."+de.Code, data, de.Error())
}

func (f *Formatter) History(games []*chessdto.ChessGame) string {
	if len(games) == 0 {
		return f.render("history.empty", nil, "No finished games yet.")
	}
	var sb strings.Builder
	sb.WriteString(f.render("history.header", nil, "Recent games"))
	for _, g := range games {
		data := map[string]any{
			"ID":     g.ID,
			"Title":  g.Title,
			"Result": formatResult(g.Result),
			"Moves":  len(g.Moves),
			"Ended":  formatShortTime(g.EndedAt),
		}
		sb.WriteString("\n• ")
		sb.WriteString(f.render("history.line", data, fmt.Sprintf("#%d %s", g.ID, g.Title)))
	}
	return sb.String()
}

func (f *Formatter) BoardSaved(path string) string {
	return f.render("board.saved", map[string]any{"Path": path}, "Board image saved to "+path)
}

// Board draws the position as text, rank 8 on top. A selection adds the
// selected square and its targets.
func (f *Formatter) Board(state *chessdto.SessionState, sel *chessdto.SelectResult) string {
	if state == nil {
		return ""
	}
	var selected string
	var targets, captures []string
	if sel != nil {
		selected, targets, captures = sel.Square, sel.Targets, sel.Captures
	}

	var sb strings.Builder
	for r := range rules.BoardSize {
		sb.WriteString(f.label.Sprint(rules.RankLabels[r]))
		sb.WriteByte(' ')
		for c := range rules.BoardSize {
			name := rules.Sq(c, r).String()
			glyph := state.Board[r][c]
			sb.WriteString(f.cell(glyph, name == selected, slices.Contains(captures, name), slices.Contains(targets, name), (r+c)%2 == 0))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	for _, l := range rules.FileLabels {
		sb.WriteString(f.label.Sprint(" " + strings.ToLower(l) + " "))
	}
	return sb.String()
}

func (f *Formatter) cell(glyph string, selected, capture, target, light bool) string {
	if !f.colored {
		switch {
		case selected:
			return "(" + glyph + ")"
		case capture:
			return "[" + glyph + "]"
		case target:
			return " * "
		case glyph == "":
			return " . "
		default:
			return " " + glyph + " "
		}
	}
	if glyph == "" {
		glyph = " "
	}
	text := " " + glyph + " "
	switch {
	case selected:
		return f.selected.Sprint(text)
	case capture:
		return f.captureTarget.Sprint(text)
	case target:
		return f.moveTarget.Sprint(" • ")
	case light:
		return f.lightSquare.Sprint(text)
	default:
		return f.darkSquare.Sprint(text)
	}
}

func formatResult(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "white_won":
		return "White won"
	case "black_won":
		return "Black won"
	case "draw":
		return "draw"
	case "abandoned":
		return "abandoned"
	default:
		return "unfinished"
	}
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
