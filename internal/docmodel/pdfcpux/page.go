package pdfcpux

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

// Page is one page of a pdfcpu-backed document.
type Page struct {
	doc   *Document
	index int
	dict  types.Dict
	attrs *model.InheritedPageAttrs

	words     []docmodel.Word
	haveWords bool
}

var _ docmodel.Page = (*Page)(nil)

// Index returns the 0-based page index.
func (p *Page) Index() int {
	return p.index
}

// Words extracts the page's word tokens. The result is cached; the tiered
// search may visit the same page several times.
func (p *Page) Words() ([]docmodel.Word, error) {
	if p.haveWords {
		return p.words, nil
	}

	content, err := p.contentBytes()
	if err != nil {
		return nil, err
	}
	fonts := p.fontWidths()

	p.words = scanWords(content, fonts)
	p.haveWords = true
	return p.words, nil
}

// contentBytes returns the page's decoded content stream(s), concatenated.
func (p *Page) contentBytes() ([]byte, error) {
	obj, found := p.dict.Find("Contents")
	if !found {
		return nil, nil
	}

	var out []byte
	appendStream := func(o types.Object) error {
		sd, _, err := p.doc.ctx.DereferenceStreamDict(o)
		if err != nil {
			return err
		}
		if sd == nil {
			return nil
		}
		if err := sd.Decode(); err != nil {
			return err
		}
		out = append(out, sd.Content...)
		out = append(out, '\n')
		return nil
	}

	o, err := p.doc.ctx.Dereference(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page contents: %w", err)
	}
	switch v := o.(type) {
	case types.Array:
		for _, entry := range v {
			if err := appendStream(entry); err != nil {
				return nil, fmt.Errorf("failed to decode content stream: %w", err)
			}
		}
	default:
		if err := appendStream(obj); err != nil {
			return nil, fmt.Errorf("failed to decode content stream: %w", err)
		}
	}
	return out, nil
}

// SearchExact finds every literal occurrence of phrase in the page's word
// sequence and returns the quads of the covering words.
func (p *Page) SearchExact(phrase string) ([]docmodel.Quad, error) {
	if phrase == "" {
		return nil, nil
	}
	words, err := p.Words()
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, nil
	}

	// Join the words with single spaces, remembering which word each
	// character position belongs to.
	var sb strings.Builder
	wordAt := make([]int, 0, len(words)*8)
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
			wordAt = append(wordAt, i)
		}
		sb.WriteString(w.Text)
		for range []byte(w.Text) {
			wordAt = append(wordAt, i)
		}
	}
	joined := sb.String()

	var quads []docmodel.Quad
	for from := 0; ; {
		rel := strings.Index(joined[from:], phrase)
		if rel < 0 {
			break
		}
		start := from + rel
		end := start + len(phrase) - 1
		first, last := wordAt[start], wordAt[end]
		for i := first; i <= last; i++ {
			quads = append(quads, words[i].Quad)
		}
		from = end + 1
	}
	return quads, nil
}

// Annotations reads the page's annotations. IDs are the PDF object numbers
// of the annotation dictionaries, matching the references used in IRT
// entries.
func (p *Page) Annotations() ([]docmodel.Annotation, error) {
	obj, found := p.dict.Find("Annots")
	if !found {
		return nil, nil
	}
	arr, err := p.doc.ctx.DereferenceArray(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Annots on page %d: %w", p.index+1, err)
	}

	var annots []docmodel.Annotation
	for _, entry := range arr {
		var id string
		if ir, ok := entry.(types.IndirectRef); ok {
			id = fmt.Sprintf("%d", ir.ObjectNumber.Value())
		}
		d, err := p.doc.ctx.DereferenceDict(entry)
		if err != nil || d == nil {
			continue
		}

		ann := docmodel.Annotation{
			Kind:    kindForSubtype(nameValue(d["Subtype"])),
			ID:      id,
			Content: p.doc.textString(d["Contents"]),
			Title:   p.doc.textString(d["T"]),
		}

		if rect, err := p.doc.floatArray(d["Rect"]); err == nil && len(rect) == 4 {
			ann.Rect = rectFromCorners(rect)
		}
		if qp, err := p.doc.floatArray(d["QuadPoints"]); err == nil {
			ann.Quads = quadsFromPoints(qp)
		}
		if c, err := p.doc.floatArray(d["C"]); err == nil && len(c) == 3 {
			ann.Color = &docmodel.RGB{R: c[0], G: c[1], B: c[2]}
		}
		if ir, ok := d["IRT"].(types.IndirectRef); ok {
			ann.InReplyTo = fmt.Sprintf("%d", ir.ObjectNumber.Value())
		}

		annots = append(annots, ann)
	}
	return annots, nil
}

// AddMarkup appends a text markup annotation covering quads. This is the
// single dispatch point over the markup kinds: only the Subtype differs.
func (p *Page) AddMarkup(kind docmodel.Kind, quads []docmodel.Quad, info docmodel.Info) (*docmodel.Created, error) {
	if !kind.IsMarkup() {
		return nil, fmt.Errorf("kind %s is not a text markup", kind)
	}
	if len(quads) == 0 {
		return nil, fmt.Errorf("markup annotation needs at least one quad")
	}

	bounds := docmodel.BoundRect(quads)

	d := types.Dict{
		"Type":       types.Name("Annot"),
		"Subtype":    types.Name(kind.String()),
		"Rect":       types.NewNumberArray(bounds.LLx, bounds.LLy, bounds.URx, bounds.URy),
		"QuadPoints": quadPointsArray(quads),
		"F":          types.Integer(4), // print
	}
	if info.Content != "" {
		d["Contents"] = textStringObject(info.Content)
	}
	if info.Title != "" {
		d["T"] = textStringObject(info.Title)
	}
	if info.Color != nil {
		d["C"] = types.NewNumberArray(info.Color.R, info.Color.G, info.Color.B)
	} else if kind == docmodel.KindHighlight {
		// Viewers render an invisible highlight without a color entry.
		d["C"] = types.NewNumberArray(1, 1, 0)
	}

	return p.appendAnnotation(d, bounds)
}

// AddNote appends a sticky-note annotation at the given point. When
// inReplyTo names an annotation created in this session, the note carries
// an IRT reference to it.
func (p *Page) AddNote(at docmodel.Point, inReplyTo string, info docmodel.Info) (*docmodel.Created, error) {
	// Conventional icon size for text annotations.
	bounds := docmodel.Rect{LLx: at.X, LLy: at.Y - 18, URx: at.X + 18, URy: at.Y}

	d := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Text"),
		"Rect":    types.NewNumberArray(bounds.LLx, bounds.LLy, bounds.URx, bounds.URy),
		"Name":    types.Name("Comment"),
		"F":       types.Integer(4),
	}
	if info.Content != "" {
		d["Contents"] = textStringObject(info.Content)
	}
	if info.Title != "" {
		d["T"] = textStringObject(info.Title)
	}
	if inReplyTo != "" {
		if parentRef, ok := p.doc.created[inReplyTo]; ok {
			d["IRT"] = *parentRef
			d["RT"] = types.Name("R")
		}
	}

	return p.appendAnnotation(d, bounds)
}

// appendAnnotation registers the annotation dict as a new indirect object
// and appends it to the page's Annots array.
func (p *Page) appendAnnotation(d types.Dict, bounds docmodel.Rect) (*docmodel.Created, error) {
	ir, err := p.doc.ctx.IndRefForNewObject(d)
	if err != nil {
		return nil, fmt.Errorf("failed to register annotation object: %w", err)
	}

	var annots types.Array
	if obj, found := p.dict.Find("Annots"); found {
		annots, err = p.doc.ctx.DereferenceArray(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve Annots on page %d: %w", p.index+1, err)
		}
	}
	annots = append(annots, *ir)
	p.dict["Annots"] = annots

	id := uuid.New().String()
	p.doc.created[id] = ir

	return &docmodel.Created{ID: id, PageIndex: p.index, Rect: bounds}, nil
}

func kindForSubtype(subtype string) docmodel.Kind {
	switch subtype {
	case "Highlight":
		return docmodel.KindHighlight
	case "Underline":
		return docmodel.KindUnderline
	case "Squiggly":
		return docmodel.KindSquiggly
	case "Text":
		return docmodel.KindNote
	default:
		return docmodel.KindOther
	}
}
