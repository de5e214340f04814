// Package docmodel defines the document-model interface the transfer core
// works against: paged documents exposing word tokens with positions,
// existing annotations, and annotation creation calls. Backends live in
// subpackages; tests use in-memory fakes.
package docmodel

// Point is a position in page user space.
type Point struct {
	X, Y float64
}

// Quad is a quadrilateral covering a word or group of words, given as the
// four corners in counter-clockwise order starting at the lower left.
type Quad [4]Point

// Center returns the centroid of the quad.
func (q Quad) Center() Point {
	var c Point
	for _, p := range q {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= 4
	c.Y /= 4
	return c
}

// Rect is an axis-aligned bounding box in page user space.
type Rect struct {
	LLx, LLy, URx, URy float64
}

// TopRight returns the upper-right corner of the rectangle.
func (r Rect) TopRight() Point {
	return Point{X: r.URx, Y: r.URy}
}

// QuadForRect returns the quad covering r.
func QuadForRect(r Rect) Quad {
	return Quad{
		{X: r.LLx, Y: r.LLy},
		{X: r.URx, Y: r.LLy},
		{X: r.URx, Y: r.URy},
		{X: r.LLx, Y: r.URy},
	}
}

// BoundRect returns the bounding box of a set of quads.
func BoundRect(quads []Quad) Rect {
	var r Rect
	for i, q := range quads {
		for j, p := range q {
			if i == 0 && j == 0 {
				r = Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
				continue
			}
			if p.X < r.LLx {
				r.LLx = p.X
			}
			if p.X > r.URx {
				r.URx = p.X
			}
			if p.Y < r.LLy {
				r.LLy = p.Y
			}
			if p.Y > r.URy {
				r.URy = p.Y
			}
		}
	}
	return r
}

// RGB is a stroke color with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// Kind identifies the annotation variants the transfer understands.
type Kind int

const (
	// KindOther covers annotation types the transfer does not handle.
	KindOther Kind = iota
	KindHighlight
	KindUnderline
	KindSquiggly
	// KindNote is a sticky note; when it carries an in-reply-to reference
	// it is treated as a reply to another annotation.
	KindNote
)

// String returns the PDF subtype name for the kind.
func (k Kind) String() string {
	switch k {
	case KindHighlight:
		return "Highlight"
	case KindUnderline:
		return "Underline"
	case KindSquiggly:
		return "Squiggly"
	case KindNote:
		return "Text"
	default:
		return "Other"
	}
}

// IsMarkup reports whether the kind is a text markup (highlight, underline,
// squiggly).
func (k Kind) IsMarkup() bool {
	return k == KindHighlight || k == KindUnderline || k == KindSquiggly
}

// Word is a single extracted word token with its covering quad.
type Word struct {
	Quad Quad
	Text string
}

// Annotation is a read-only view of an annotation in a source document.
type Annotation struct {
	Kind      Kind
	Rect      Rect
	Quads     []Quad
	Content   string
	Title     string
	Color     *RGB   // stroke color, nil if absent
	ID        string // stable within the document (PDF object number)
	InReplyTo string // ID of the parent annotation, empty if none
}

// Info carries the content written onto a newly created annotation.
type Info struct {
	Content string
	Title   string
	Color   *RGB
}

// Created is a handle to a newly created annotation in the target document.
type Created struct {
	ID        string
	PageIndex int
	Rect      Rect
}

// Page is one page of a document, identified by its 0-based index.
type Page interface {
	Index() int

	// Words returns the page's word tokens in reading order.
	Words() ([]Word, error)

	// SearchExact returns the quads of every literal occurrence of phrase
	// on the page, or an empty slice if the phrase is absent.
	SearchExact(phrase string) ([]Quad, error)

	// Annotations returns the page's annotations (source side).
	Annotations() ([]Annotation, error)

	// AddMarkup creates a highlight, underline or squiggly annotation
	// covering quads. kind must satisfy IsMarkup.
	AddMarkup(kind Kind, quads []Quad, info Info) (*Created, error)

	// AddNote creates a sticky-note annotation at the given point,
	// replying to the annotation named by inReplyTo when non-empty.
	AddNote(at Point, inReplyTo string, info Info) (*Created, error)
}

// Outline is an opaque table-of-contents handle. It is only ever passed
// back to the document it came from or to a copy of it.
type Outline interface{}

// Document is an open document. The source side is read-only; the target
// side is mutated only by appending new annotations.
type Document interface {
	PageCount() int
	Page(index int) (Page, error)

	// Outline returns the document outline, or false if there is none.
	Outline() (Outline, bool)
	SetOutline(o Outline) error

	// Save writes the document to path. Nothing is written on error.
	Save(path string) error
	Close() error
}
