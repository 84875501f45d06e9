package pdf

import (
	"strings"
)

// glyph is a single positioned character as reported by a text backend.
// X and Y are the baseline origin in page space.
type glyph struct {
	S        string
	Font     string
	FontSize float64
	X        float64
	Y        float64
	W        float64
}

// mergeGlyphs groups consecutive glyphs into text runs.
//
// Glyphs stay in emission order. A glyph joins the current run when it uses
// the same font and size, sits on the same baseline and starts where the
// previous glyph ended (within the configured tolerances).
func mergeGlyphs(glyphs []glyph, config textRunConfig) []TextRun {
	var runs []TextRun
	var current []glyph

	flush := func() {
		if len(current) > 0 {
			runs = append(runs, createRun(current))
			current = nil
		}
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}

		if len(current) > 0 && !continuesRun(current[len(current)-1], g, config) {
			flush()
		}
		current = append(current, g)
	}
	flush()

	return runs
}

// continuesRun reports whether next extends the run ending with last
func continuesRun(last, next glyph, config textRunConfig) bool {
	if last.Font != next.Font || abs(last.FontSize-next.FontSize) > FloatTolerance {
		return false
	}
	if abs(next.Y-last.Y) > config.YTolerance {
		return false
	}

	gap := next.X - (last.X + last.W)
	return gap <= config.XTolerance && gap >= -config.XTolerance
}

// createRun creates a TextRun from a group of glyphs
func createRun(glyphs []glyph) TextRun {
	var text strings.Builder
	first := glyphs[0]
	right := first.X + first.W

	for _, g := range glyphs {
		text.WriteString(g.S)
		if end := g.X + g.W; end > right {
			right = end
		}
	}

	return TextRun{
		Text:      text.String(),
		Transform: Translation(first.X, first.Y),
		Font:      first.Font,
		FontSize:  first.FontSize,
		Width:     right - first.X,
	}
}

// FloatTolerance is used for floating point comparisons
const FloatTolerance = 0.1
