package transfer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

// windowMatch is the best sliding-window candidate found on a page set.
type windowMatch struct {
	PageIndex int
	Quads     []docmodel.Quad
	Distance  int
}

// allowedDistance is the edit budget for a phrase: a configurable fraction
// of its length plus a small base allowance.
func allowedDistance(phrase string, ratio float64, baseAllowance int) int {
	return int(float64(utf8.RuneCountInString(phrase))*ratio) + baseAllowance
}

// bestWindow scans the given pages for the n-word window whose text is
// closest to phrase under character-level edit distance. Pages are visited
// in the caller's order and ties keep the first window found, so the result
// is deterministic. Returns nil if no window comes in under the budget.
func bestWindow(doc docmodel.Document, phrase string, ratio float64, baseAllowance int, pageIndices []int) (*windowMatch, error) {
	n := len(strings.Fields(phrase))
	if n == 0 {
		return nil, nil
	}

	best := windowMatch{PageIndex: -1, Distance: -1}

	for _, idx := range pageIndices {
		page, err := doc.Page(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", idx+1, err)
		}
		words, err := page.Words()
		if err != nil {
			return nil, fmt.Errorf("failed to extract words from page %d: %w", idx+1, err)
		}
		if len(words) < n {
			continue
		}

		for i := 0; i+n <= len(words); i++ {
			window := words[i : i+n]
			var sb strings.Builder
			for j, w := range window {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(w.Text)
			}

			d := levenshtein.ComputeDistance(phrase, sb.String())
			// Strict < keeps the earliest window on ties.
			if best.Distance < 0 || d < best.Distance {
				quads := make([]docmodel.Quad, n)
				for j, w := range window {
					quads[j] = w.Quad
				}
				best = windowMatch{PageIndex: idx, Quads: quads, Distance: d}
			}
		}
	}

	if best.Distance < 0 || best.Distance > allowedDistance(phrase, ratio, baseAllowance) {
		return nil, nil
	}
	return &best, nil
}
