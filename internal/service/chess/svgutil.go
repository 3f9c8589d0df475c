package chess

import "strings"

// svgStyleFixer normalises style spellings oksvg rejects, mostly hex colours
// without '#' or with a space after the colon.
var svgStyleFixer = strings.NewReplacer(
	"fill:000000", "fill:#000000",
	"fill: 000000", "fill:#000000",
	"stroke: 000000", "stroke:#000000",
	"fill:ffffff", "fill:#ffffff",
	"fill: ffffff", "fill:#ffffff",
	"fill: #", "fill:#",
	"stroke: #", "stroke:#",
	"stop-color: #", "stop-color:#",
)

func sanitizeSVG(svg []byte) []byte {
	return []byte(svgStyleFixer.Replace(string(svg)))
}
