package transfer

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

// fakeDoc is an in-memory document for exercising the search tiers and the
// session without PDF fixtures. Words are laid out left to right on a
// fixed line per page.
type fakeDoc struct {
	pages []*fakePage
}

type fakePage struct {
	index  int
	words  []docmodel.Word
	annots []docmodel.Annotation

	markups []markupCall
	notes   []noteCall
}

type markupCall struct {
	Kind  docmodel.Kind
	Quads []docmodel.Quad
	Info  docmodel.Info
}

type noteCall struct {
	At        docmodel.Point
	InReplyTo string
	Info      docmodel.Info
}

const (
	wordWidth  = 50.0
	wordPitch  = 60.0
	lineBottom = 700.0
	lineTop    = 712.0
)

// wordsFor lays the whitespace-separated tokens of text out on the page
// line.
func wordsFor(text string) []docmodel.Word {
	fields := strings.Fields(text)
	words := make([]docmodel.Word, len(fields))
	for i, f := range fields {
		x0 := float64(i) * wordPitch
		x1 := x0 + wordWidth
		words[i] = docmodel.Word{
			Text: f,
			Quad: docmodel.Quad{
				{X: x0, Y: lineBottom},
				{X: x1, Y: lineBottom},
				{X: x1, Y: lineTop},
				{X: x0, Y: lineTop},
			},
		}
	}
	return words
}

// newFakeDoc builds a document with one page per text.
func newFakeDoc(pageTexts ...string) *fakeDoc {
	d := &fakeDoc{}
	for i, text := range pageTexts {
		d.pages = append(d.pages, &fakePage{index: i, words: wordsFor(text)})
	}
	return d
}

// annotate adds a source markup annotation covering words [from, to] on
// the given page.
func (d *fakeDoc) annotate(page int, kind docmodel.Kind, from, to int, ann docmodel.Annotation) *fakeDoc {
	p := d.pages[page]
	var quads []docmodel.Quad
	for i := from; i <= to; i++ {
		quads = append(quads, p.words[i].Quad)
	}
	ann.Kind = kind
	ann.Quads = quads
	ann.Rect = docmodel.BoundRect(quads)
	if ann.ID == "" {
		ann.ID = fmt.Sprintf("ann-%d-%d", page, len(p.annots))
	}
	p.annots = append(p.annots, ann)
	return d
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) Page(index int) (docmodel.Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	return d.pages[index], nil
}

func (d *fakeDoc) Outline() (docmodel.Outline, bool)  { return nil, false }
func (d *fakeDoc) SetOutline(o docmodel.Outline) error { return nil }
func (d *fakeDoc) Save(path string) error              { return nil }
func (d *fakeDoc) Close() error                        { return nil }

func (p *fakePage) Index() int { return p.index }

func (p *fakePage) Words() ([]docmodel.Word, error) { return p.words, nil }

func (p *fakePage) SearchExact(phrase string) ([]docmodel.Quad, error) {
	var sb strings.Builder
	starts := make([]int, len(p.words))
	for i, w := range p.words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		starts[i] = sb.Len()
		sb.WriteString(w.Text)
	}
	joined := sb.String()

	var quads []docmodel.Quad
	for from := 0; ; {
		rel := strings.Index(joined[from:], phrase)
		if rel < 0 {
			break
		}
		start := from + rel
		end := start + len(phrase)
		for i, w := range p.words {
			if starts[i]+len(w.Text) > start && starts[i] < end {
				quads = append(quads, w.Quad)
			}
		}
		from = end
	}
	return quads, nil
}

func (p *fakePage) Annotations() ([]docmodel.Annotation, error) { return p.annots, nil }

func (p *fakePage) AddMarkup(kind docmodel.Kind, quads []docmodel.Quad, info docmodel.Info) (*docmodel.Created, error) {
	p.markups = append(p.markups, markupCall{Kind: kind, Quads: quads, Info: info})
	return &docmodel.Created{
		ID:        fmt.Sprintf("new-%d-%d", p.index, len(p.markups)),
		PageIndex: p.index,
		Rect:      docmodel.BoundRect(quads),
	}, nil
}

func (p *fakePage) AddNote(at docmodel.Point, inReplyTo string, info docmodel.Info) (*docmodel.Created, error) {
	p.notes = append(p.notes, noteCall{At: at, InReplyTo: inReplyTo, Info: info})
	return &docmodel.Created{
		ID:        fmt.Sprintf("note-%d-%d", p.index, len(p.notes)),
		PageIndex: p.index,
		Rect:      docmodel.Rect{LLx: at.X, LLy: at.Y - 18, URx: at.X + 18, URy: at.Y},
	}, nil
}
