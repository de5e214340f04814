package transfer

import (
	"fmt"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

// Policy gates located matches by page distance and builds the content of
// the replacement annotation. Fuzzy matches get their own, possibly
// stricter, distance limit: fuzzy text identity is less certain than exact
// identity and should not be trusted as far.
type Policy struct {
	MaxDistance      int
	MaxFuzzyDistance int
}

// Decision is the outcome for one markup annotation. When Accepted is
// false, Reason explains the rejection for the failure report.
type Decision struct {
	Accepted bool
	Reason   string

	PageIndex int
	Quads     []docmodel.Quad
	Info      docmodel.Info
}

func reject(reason string) Decision {
	return Decision{Reason: reason}
}

// Decide applies the distance gates to a match and, on acceptance,
// constructs the new annotation's region, content, title and color.
// srcText is the normalized text of the source annotation; src supplies
// the note content, title and stroke color being carried over.
func (p Policy) Decide(m Match, anchor int, srcText string, src docmodel.Annotation) Decision {
	if m.Kind == MatchNone {
		return reject("text not found")
	}

	dist := m.PageIndex - anchor
	if dist < 0 {
		dist = -dist
	}

	if dist > p.MaxDistance {
		return reject(fmt.Sprintf("too far away (distance exceeds %d pages)", p.MaxDistance))
	}
	if m.Kind == MatchFuzzy && dist > p.MaxFuzzyDistance {
		return reject(fmt.Sprintf("too far away for a safe fuzzy match (distance exceeds %d pages)", p.MaxFuzzyDistance))
	}

	info := docmodel.Info{
		Content: src.Content,
		Title:   src.Title,
	}

	switch m.Kind {
	case MatchExact:
		// Only exact matches keep the source stroke color; fuzzy anchors
		// stay on the viewer default so they stand out for review.
		info.Color = src.Color
		if info.Title == "" {
			info.Title = "Note"
		}
	case MatchFuzzy:
		// Disclose the fuzzy match so the reader can verify the anchor.
		disclosure := fmt.Sprintf("[FUZZY MATCH] Page distance: %d. Original text:\n'%s'", dist, srcText)
		if src.Content != "" {
			info.Content = disclosure + "\n\n" + src.Content
		} else {
			info.Content = disclosure
		}
		if info.Title == "" {
			info.Title = "Note (Fuzzy)"
		}
	}

	return Decision{
		Accepted:  true,
		PageIndex: m.PageIndex,
		Quads:     m.Quads,
		Info:      info,
	}
}
