package transfer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

func TestAllowedDistance(t *testing.T) {
	// 41 characters * 0.3 = 12.3 -> 12, plus the base allowance.
	phrase := "Configuration options are described below"
	if got := allowedDistance(phrase, 0.3, 5); got != 17 {
		t.Errorf("allowedDistance = %d, want 17", got)
	}
}

func TestBestWindow(t *testing.T) {
	t.Run("finds identical text at distance zero", func(t *testing.T) {
		doc := newFakeDoc(
			"something else entirely on this page",
			"the quick brown fox jumps over the lazy dog",
		)
		m, err := bestWindow(doc, "quick brown fox", 0.3, 5, []int{0, 1})
		if err != nil {
			t.Fatal(err)
		}
		if m == nil {
			t.Fatal("expected a match")
		}
		if m.PageIndex != 1 || m.Distance != 0 {
			t.Errorf("got page %d distance %d, want page 1 distance 0", m.PageIndex, m.Distance)
		}
		if len(m.Quads) != 3 {
			t.Errorf("got %d quads, want one per word", len(m.Quads))
		}
	})

	t.Run("returns word quads of the window", func(t *testing.T) {
		doc := newFakeDoc("alpha beta gamma delta")
		m, err := bestWindow(doc, "beta gamma", 0.3, 5, []int{0})
		if err != nil {
			t.Fatal(err)
		}
		page, _ := doc.Page(0)
		words, _ := page.Words()
		want := []docmodel.Quad{words[1].Quad, words[2].Quad}
		if diff := cmp.Diff(want, m.Quads); diff != "" {
			t.Errorf("quads mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects text beyond the budget", func(t *testing.T) {
		doc := newFakeDoc("completely unrelated words here")
		m, err := bestWindow(doc, "quick brown fox", 0.3, 2, []int{0})
		if err != nil {
			t.Fatal(err)
		}
		if m != nil {
			t.Errorf("expected no match, got distance %d", m.Distance)
		}
	})

	t.Run("empty phrase matches nothing", func(t *testing.T) {
		doc := newFakeDoc("some words")
		m, err := bestWindow(doc, "", 0.3, 5, []int{0})
		if err != nil {
			t.Fatal(err)
		}
		if m != nil {
			t.Error("expected no match for empty phrase")
		}
	})

	t.Run("skips pages with fewer words than the phrase", func(t *testing.T) {
		doc := newFakeDoc("two words", "one two three four five")
		m, err := bestWindow(doc, "one two three", 0.5, 5, []int{0, 1})
		if err != nil {
			t.Fatal(err)
		}
		if m == nil || m.PageIndex != 1 {
			t.Fatalf("expected match on page 1, got %+v", m)
		}
	})

	t.Run("ties keep the first page found", func(t *testing.T) {
		// The same text on two candidate pages: the earlier one wins.
		doc := newFakeDoc(
			"the quick brown fox",
			"the quick brown fox",
		)
		m, err := bestWindow(doc, "quick brown fox", 0.3, 5, []int{0, 1})
		if err != nil {
			t.Fatal(err)
		}
		if m == nil || m.PageIndex != 0 {
			t.Fatalf("expected first page to win the tie, got %+v", m)
		}

		// Caller-supplied order decides what "first" means.
		m, err = bestWindow(doc, "quick brown fox", 0.3, 5, []int{1, 0})
		if err != nil {
			t.Fatal(err)
		}
		if m == nil || m.PageIndex != 1 {
			t.Fatalf("expected the first candidate in order to win, got %+v", m)
		}
	})

	t.Run("budget is monotonic", func(t *testing.T) {
		doc := newFakeDoc("Configuration options are now described below")
		phrase := "Configuration options are described below"

		base, err := bestWindow(doc, phrase, 0.3, 5, []int{0})
		if err != nil {
			t.Fatal(err)
		}
		if base == nil {
			t.Fatal("expected the insertion to fit the default budget")
		}

		// Raising either parameter never turns an accepted match into a
		// rejection for the same candidates.
		for _, p := range []struct {
			ratio     float64
			allowance int
		}{{0.4, 5}, {0.3, 10}, {0.9, 50}} {
			m, err := bestWindow(doc, phrase, p.ratio, p.allowance, []int{0})
			if err != nil {
				t.Fatal(err)
			}
			if m == nil {
				t.Errorf("ratio=%v allowance=%d: match lost after raising the budget", p.ratio, p.allowance)
			}
		}
	})
}
