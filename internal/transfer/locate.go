package transfer

import (
	"fmt"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

// MatchKind classifies how a phrase was located in the target document.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchFuzzy
)

// String returns the lowercase name used in log and report output.
func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Match is the result of locating a phrase: the target page, the quads
// covering the matched words, and how the match was found. Distance is only
// meaningful for fuzzy matches.
type Match struct {
	PageIndex int
	Quads     []docmodel.Quad
	Kind      MatchKind
	Distance  int
}

// Locator finds the occurrence of a phrase in a document using a tiered
// search: exact within a local page window, exact over the whole document,
// then fuzzy local, then fuzzy global. Exact matches are unambiguous and
// cheap, so they always win; fuzzy search runs local-first to avoid
// anchoring to a coincidentally similar passage elsewhere.
type Locator struct {
	// Window is the half-width of the local search window in pages.
	Window int

	// Ratio and BaseAllowance control the fuzzy edit-distance budget.
	Ratio         float64
	BaseAllowance int
}

// tier is one step of the search sequence. Each returns nil to fall
// through to the next step.
type tier struct {
	name string
	run  func(phrase string) (*Match, error)
}

// localPages returns the page indices of the local window around anchor,
// clamped to the document, in ascending order.
func (l *Locator) localPages(doc docmodel.Document, anchor int) []int {
	start := anchor - l.Window
	if start < 0 {
		start = 0
	}
	end := anchor + l.Window
	if end > doc.PageCount()-1 {
		end = doc.PageCount() - 1
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

func allPages(doc docmodel.Document) []int {
	pages := make([]int, doc.PageCount())
	for i := range pages {
		pages[i] = i
	}
	return pages
}

// searchExactPages returns the first page in the given order containing
// phrase literally, with the quads of every occurrence on that page.
func searchExactPages(doc docmodel.Document, phrase string, pageIndices []int) (*Match, error) {
	for _, idx := range pageIndices {
		page, err := doc.Page(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", idx+1, err)
		}
		quads, err := page.SearchExact(phrase)
		if err != nil {
			return nil, fmt.Errorf("search failed on page %d: %w", idx+1, err)
		}
		if len(quads) > 0 {
			return &Match{PageIndex: idx, Quads: quads, Kind: MatchExact}, nil
		}
	}
	return nil, nil
}

// tiers builds the fixed search sequence for one lookup. The order is part
// of the contract; tests exercise individual steps against stub documents.
func (l *Locator) tiers(doc docmodel.Document, anchor int) []tier {
	local := l.localPages(doc, anchor)
	all := allPages(doc)

	return []tier{
		{name: "local-exact", run: func(phrase string) (*Match, error) {
			return searchExactPages(doc, phrase, local)
		}},
		{name: "global-exact", run: func(phrase string) (*Match, error) {
			return searchExactPages(doc, phrase, all)
		}},
		{name: "local-fuzzy", run: func(phrase string) (*Match, error) {
			return l.fuzzyPages(doc, phrase, local)
		}},
		{name: "global-fuzzy", run: func(phrase string) (*Match, error) {
			return l.fuzzyPages(doc, phrase, all)
		}},
	}
}

func (l *Locator) fuzzyPages(doc docmodel.Document, phrase string, pageIndices []int) (*Match, error) {
	w, err := bestWindow(doc, phrase, l.Ratio, l.BaseAllowance, pageIndices)
	if err != nil || w == nil {
		return nil, err
	}
	return &Match{PageIndex: w.PageIndex, Quads: w.Quads, Kind: MatchFuzzy, Distance: w.Distance}, nil
}

// Locate runs the tiered search for phrase, anchored at the annotation's
// original 0-based page index. The returned match has Kind MatchNone when
// every tier came up empty.
func (l *Locator) Locate(doc docmodel.Document, phrase string, anchor int) (Match, error) {
	if phrase == "" {
		return Match{Kind: MatchNone}, nil
	}

	for _, t := range l.tiers(doc, anchor) {
		m, err := t.run(phrase)
		if err != nil {
			return Match{Kind: MatchNone}, fmt.Errorf("%s search: %w", t.name, err)
		}
		if m != nil {
			return *m, nil
		}
	}
	return Match{Kind: MatchNone}, nil
}
