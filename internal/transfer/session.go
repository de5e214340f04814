package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/reanchor/internal/docmodel"
	"github.com/jackzampolin/reanchor/internal/report"
)

// Session drives one transfer run: pass 1 relocates text markups from the
// source document into the target, pass 2 re-attaches replies to the
// annotations created in pass 1. The map from source annotation ID to new
// annotation is only read after pass 1 has fully completed, so a reply can
// never be orphaned by ordering.
type Session struct {
	locator Locator
	policy  Policy
	logger  *slog.Logger
	printer *report.Printer

	// transferMap holds non-owning handles to annotations created in the
	// target document, keyed by source annotation ID. Append-only.
	transferMap map[string]*docmodel.Created

	counts   report.Counts
	failures []report.Failure
}

// SessionConfig configures a new transfer session.
type SessionConfig struct {
	// LocalWindow is the half-width in pages of the local search window.
	LocalWindow int

	// MaxPageDistance is the acceptance limit for exact matches.
	// MaxFuzzyPageDistance is the (at most as large) limit for fuzzy ones.
	MaxPageDistance      int
	MaxFuzzyPageDistance int

	// FuzzyRatio and BaseAllowance control the edit-distance budget.
	FuzzyRatio    float64
	BaseAllowance int

	Logger  *slog.Logger
	Printer *report.Printer
}

// NewSession creates a session from the given configuration.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		locator: Locator{
			Window:        cfg.LocalWindow,
			Ratio:         cfg.FuzzyRatio,
			BaseAllowance: cfg.BaseAllowance,
		},
		policy: Policy{
			MaxDistance:      cfg.MaxPageDistance,
			MaxFuzzyDistance: cfg.MaxFuzzyPageDistance,
		},
		logger:      logger.With("component", "transfer"),
		printer:     cfg.Printer,
		transferMap: make(map[string]*docmodel.Created),
	}
}

// Run transfers annotations from src to dst. Only document-level failures
// (page access on either side) and context cancellation abort the run;
// every per-annotation problem is counted and reported, and processing
// continues with the next annotation. dst is mutated by appending
// annotations; saving is left to the caller.
func (s *Session) Run(ctx context.Context, src, dst docmodel.Document) (report.Counts, []report.Failure, error) {
	s.printer.Section("Pass 1: Transferring Text Markups (Highlights, Underlines, etc.)")
	if err := s.transferMarkups(ctx, src, dst); err != nil {
		return s.counts, s.failures, err
	}

	s.printer.Section("Pass 2: Transferring Replies (Sticky Notes)")
	if err := s.linkReplies(ctx, src, dst); err != nil {
		return s.counts, s.failures, err
	}

	return s.counts, s.failures, nil
}

func (s *Session) fail(srcPage0 int, reason, text string) {
	s.counts.Failed++
	record := text
	if record == "" {
		record = reason
	}
	s.failures = append(s.failures, report.Failure{Page: srcPage0 + 1, Text: record})
	s.printer.Fail(srcPage0+1, reason, text)
}

// transferMarkups is pass 1: every highlight, underline and squiggly in
// src is re-anchored in dst.
func (s *Session) transferMarkups(ctx context.Context, src, dst docmodel.Document) error {
	for pageIdx := 0; pageIdx < src.PageCount(); pageIdx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := src.Page(pageIdx)
		if err != nil {
			return fmt.Errorf("failed to load source page %d: %w", pageIdx+1, err)
		}
		annots, err := page.Annotations()
		if err != nil {
			return fmt.Errorf("failed to read annotations on page %d: %w", pageIdx+1, err)
		}

		var words []docmodel.Word
		for _, ann := range annots {
			switch {
			case ann.Kind.IsMarkup():
				if words == nil {
					words, err = page.Words()
					if err != nil {
						return fmt.Errorf("failed to extract words from page %d: %w", pageIdx+1, err)
					}
				}
				if err := s.transferOne(dst, pageIdx, words, ann); err != nil {
					return err
				}
			case ann.Kind == docmodel.KindNote:
				// Replies are handled in pass 2, after the transfer map
				// is complete.
			default:
				s.counts.Unsupported++
			}
		}
	}
	return nil
}

// anchoredText returns the normalized text the annotation covers: the
// source page's words whose center falls inside the annotation rectangle.
func anchoredText(words []docmodel.Word, r docmodel.Rect) string {
	var parts []string
	for _, w := range words {
		c := w.Quad.Center()
		if c.X >= r.LLx && c.X <= r.URx && c.Y >= r.LLy && c.Y <= r.URy {
			parts = append(parts, w.Text)
		}
	}
	return Normalize(strings.Join(parts, " "))
}

func (s *Session) transferOne(dst docmodel.Document, srcPage int, words []docmodel.Word, ann docmodel.Annotation) error {
	text := anchoredText(words, ann.Rect)
	if text == "" {
		s.fail(srcPage, "Skipping empty annotation", "")
		return nil
	}

	match, err := s.locator.Locate(dst, text, srcPage)
	if err != nil {
		return fmt.Errorf("locating %q: %w", report.Snippet(text, 40), err)
	}

	decision := s.policy.Decide(match, srcPage, text, ann)
	if !decision.Accepted {
		s.fail(srcPage, decision.Reason, text)
		return nil
	}

	dstPage, err := dst.Page(decision.PageIndex)
	if err != nil {
		return fmt.Errorf("failed to load target page %d: %w", decision.PageIndex+1, err)
	}
	created, err := dstPage.AddMarkup(ann.Kind, decision.Quads, decision.Info)
	if err != nil {
		return fmt.Errorf("failed to create %s on page %d: %w", ann.Kind, decision.PageIndex+1, err)
	}
	s.transferMap[ann.ID] = created

	switch match.Kind {
	case MatchExact:
		s.counts.Exact++
		s.printer.ExactOK(srcPage+1, decision.PageIndex+1, text)
	case MatchFuzzy:
		s.counts.Fuzzy++
		s.printer.FuzzyOK(srcPage+1, decision.PageIndex+1, text)
		s.logger.Debug("fuzzy transfer",
			"src_page", srcPage+1,
			"dst_page", decision.PageIndex+1,
			"distance", match.Distance,
		)
	}
	return nil
}
