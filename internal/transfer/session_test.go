package transfer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jackzampolin/reanchor/internal/docmodel"
	"github.com/jackzampolin/reanchor/internal/report"
)

func testSession() (*Session, *bytes.Buffer) {
	var buf bytes.Buffer
	s := NewSession(SessionConfig{
		LocalWindow:          5,
		MaxPageDistance:      5,
		MaxFuzzyPageDistance: 5,
		FuzzyRatio:           0.3,
		BaseAllowance:        5,
		Printer:              report.NewPrinter(&buf, false),
	})
	return s, &buf
}

func fillerPages(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = "filler words on this page only"
	}
	return texts
}

func TestSessionExactTransfer(t *testing.T) {
	// Old page 10 (index 9) highlights "The quick brown fox"; the new
	// revision has the same text on page 12 (index 11), within the local
	// window and the distance limit.
	srcTexts := fillerPages(15)
	srcTexts[9] = "The quick brown fox jumps over"
	src := newFakeDoc(srcTexts...)
	src.annotate(9, docmodel.KindHighlight, 0, 3, docmodel.Annotation{
		Content: "nice sentence",
		Title:   "Reader",
	})

	dstTexts := fillerPages(15)
	dstTexts[11] = "intro The quick brown fox jumps over"
	dst := newFakeDoc(dstTexts...)

	s, _ := testSession()
	counts, failures, err := s.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatal(err)
	}

	if counts.Exact != 1 || counts.Fuzzy != 0 || counts.Failed != 0 {
		t.Fatalf("counts = %+v", counts)
	}
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}

	page := dst.pages[11]
	if len(page.markups) != 1 {
		t.Fatalf("expected one markup on page 12, got %d", len(page.markups))
	}
	got := page.markups[0]
	if got.Kind != docmodel.KindHighlight {
		t.Errorf("kind = %s", got.Kind)
	}
	// Exact transfers keep the note verbatim.
	if got.Info.Content != "nice sentence" || got.Info.Title != "Reader" {
		t.Errorf("info = %+v", got.Info)
	}
}

func TestSessionFuzzyTransfer(t *testing.T) {
	src := newFakeDoc("Configuration options are described below")
	src.annotate(0, docmodel.KindUnderline, 0, 4, docmodel.Annotation{Title: "Reader"})

	dst := newFakeDoc("Configuration options are now described below")

	s, out := testSession()
	counts, _, err := s.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatal(err)
	}

	if counts.Fuzzy != 1 || counts.Exact != 0 || counts.Failed != 0 {
		t.Fatalf("counts = %+v", counts)
	}

	got := dst.pages[0].markups[0]
	if !strings.HasPrefix(got.Info.Content, "[FUZZY MATCH] Page distance: 0.") {
		t.Errorf("missing fuzzy disclosure: %q", got.Info.Content)
	}
	if !strings.Contains(out.String(), "[OK-FUZZY]") {
		t.Errorf("report missing fuzzy line:\n%s", out.String())
	}
}

func TestSessionRejectsDistantMatch(t *testing.T) {
	// The phrase only exists 50 pages away: the global exact tier finds
	// it, the policy rejects it, and the annotation counts as failed.
	srcTexts := fillerPages(100)
	srcTexts[0] = "the needle phrase sits here"
	src := newFakeDoc(srcTexts...)
	src.annotate(0, docmodel.KindHighlight, 1, 2, docmodel.Annotation{})

	dstTexts := fillerPages(100)
	dstTexts[50] = "around the needle phrase sits"
	dst := newFakeDoc(dstTexts...)

	s, out := testSession()
	counts, failures, err := s.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatal(err)
	}

	if counts.Failed != 1 || counts.Exact != 0 || counts.Fuzzy != 0 {
		t.Fatalf("counts = %+v", counts)
	}
	if len(failures) != 1 || failures[0].Page != 1 {
		t.Fatalf("failures = %+v", failures)
	}
	if !strings.Contains(out.String(), "too far away") {
		t.Errorf("report missing distance rejection:\n%s", out.String())
	}
}

func TestSessionEmptyAnnotationText(t *testing.T) {
	src := newFakeDoc("alpha beta gamma")
	// Rect far away from any word: no anchored text.
	src.pages[0].annots = append(src.pages[0].annots, docmodel.Annotation{
		Kind: docmodel.KindHighlight,
		ID:   "ann-empty",
		Rect: docmodel.Rect{LLx: 5000, LLy: 5000, URx: 5010, URy: 5010},
	})

	dst := newFakeDoc("alpha beta gamma")

	s, _ := testSession()
	counts, failures, err := s.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Failed != 1 {
		t.Fatalf("counts = %+v", counts)
	}
	if len(failures) != 1 || failures[0].Page != 1 {
		t.Fatalf("failures = %+v", failures)
	}
}

func TestSessionUnsupportedKinds(t *testing.T) {
	src := newFakeDoc("alpha beta gamma")
	src.pages[0].annots = append(src.pages[0].annots, docmodel.Annotation{
		Kind: docmodel.KindOther,
		ID:   "ann-ink",
	})

	dst := newFakeDoc("alpha beta gamma")

	s, _ := testSession()
	counts, _, err := s.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Unsupported != 1 || counts.Failed != 0 {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestSessionCancellation(t *testing.T) {
	src := newFakeDoc("The quick brown fox jumps")
	src.annotate(0, docmodel.KindHighlight, 0, 3, docmodel.Annotation{})
	dst := newFakeDoc("The quick brown fox jumps")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := testSession()
	_, _, err := s.Run(ctx, src, dst)
	if err == nil {
		t.Fatal("expected the cancelled context to abort the run")
	}
	if len(dst.pages[0].markups) != 0 {
		t.Error("no annotations should be created after cancellation")
	}
}

func TestSessionReplies(t *testing.T) {
	newSrc := func() *fakeDoc {
		src := newFakeDoc("The quick brown fox jumps", "second page words here")
		src.annotate(0, docmodel.KindHighlight, 0, 3, docmodel.Annotation{
			ID:    "parent-1",
			Title: "Reader",
		})
		return src
	}

	t.Run("reply lands next to the parent's new region", func(t *testing.T) {
		src := newSrc()
		// Reply on a different page than its parent.
		src.pages[1].annots = append(src.pages[1].annots, docmodel.Annotation{
			Kind:      docmodel.KindNote,
			ID:        "reply-1",
			InReplyTo: "parent-1",
			Content:   "agreed!",
			Title:     "Colleague",
		})

		dst := newFakeDoc("intro The quick brown fox jumps", "second page words here")

		s, _ := testSession()
		counts, _, err := s.Run(context.Background(), src, dst)
		if err != nil {
			t.Fatal(err)
		}
		if counts.Exact != 1 || counts.Replies != 1 || counts.Unsupported != 0 {
			t.Fatalf("counts = %+v", counts)
		}

		page := dst.pages[0]
		if len(page.notes) != 1 {
			t.Fatalf("expected the reply on the parent's page, got %d notes", len(page.notes))
		}
		note := page.notes[0]
		parentRect := docmodel.BoundRect(page.markups[0].Quads)
		wantX := parentRect.URx + 5
		wantY := parentRect.URy - 2
		if note.At.X != wantX || note.At.Y != wantY {
			t.Errorf("note at (%v, %v), want (%v, %v)", note.At.X, note.At.Y, wantX, wantY)
		}
		if note.Info.Content != "agreed!" || note.Info.Title != "Colleague" {
			t.Errorf("note info = %+v", note.Info)
		}
	})

	t.Run("reply to an untransferred parent is unsupported", func(t *testing.T) {
		src := newSrc()
		src.pages[1].annots = append(src.pages[1].annots, docmodel.Annotation{
			Kind:      docmodel.KindNote,
			ID:        "reply-2",
			InReplyTo: "some-other-annotation",
			Content:   "orphan",
		})

		dst := newFakeDoc("intro The quick brown fox jumps", "second page words here")

		s, _ := testSession()
		counts, _, err := s.Run(context.Background(), src, dst)
		if err != nil {
			t.Fatal(err)
		}
		if counts.Replies != 0 || counts.Unsupported != 1 {
			t.Fatalf("counts = %+v", counts)
		}
	})

	t.Run("free-standing note is unsupported", func(t *testing.T) {
		src := newSrc()
		src.pages[0].annots = append(src.pages[0].annots, docmodel.Annotation{
			Kind:    docmodel.KindNote,
			ID:      "standalone",
			Content: "just a note",
		})

		dst := newFakeDoc("intro The quick brown fox jumps", "second page words here")

		s, _ := testSession()
		counts, _, err := s.Run(context.Background(), src, dst)
		if err != nil {
			t.Fatal(err)
		}
		if counts.Replies != 0 || counts.Unsupported != 1 {
			t.Fatalf("counts = %+v", counts)
		}
	})

	t.Run("parent resolution is independent of reply order", func(t *testing.T) {
		// Replies appear on a page before their parent's page in the
		// source: pass 2 still resolves them because the transfer map
		// is complete before any reply is processed.
		src := newFakeDoc("reply page with no markups", "The quick brown fox jumps")
		src.annotate(1, docmodel.KindHighlight, 0, 3, docmodel.Annotation{ID: "parent-late"})
		src.pages[0].annots = append(src.pages[0].annots, docmodel.Annotation{
			Kind:      docmodel.KindNote,
			ID:        "reply-early",
			InReplyTo: "parent-late",
			Content:   "first in document order",
		})

		dst := newFakeDoc("reply page with no markups", "The quick brown fox jumps")

		s, _ := testSession()
		counts, _, err := s.Run(context.Background(), src, dst)
		if err != nil {
			t.Fatal(err)
		}
		if counts.Replies != 1 || counts.Unsupported != 0 {
			t.Fatalf("counts = %+v", counts)
		}
	})
}
