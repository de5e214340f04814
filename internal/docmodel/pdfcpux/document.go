// Package pdfcpux implements the docmodel interfaces on top of pdfcpu.
//
// Pages, annotations and outlines are read from and written to the pdfcpu
// cross-reference table directly. Word positions come from a small content
// stream scanner (see textlayer.go) that understands the text operators of
// simple fonts; composite-font text degrades to approximate geometry, which
// is sufficient for locating and covering matched words.
package pdfcpux

import (
	"fmt"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

// Document is a PDF document opened through pdfcpu.
type Document struct {
	ctx  *model.Context
	file *os.File

	// created maps handle IDs of annotations added in this session to
	// their indirect references, so replies can point at their parents.
	created map[string]*types.IndirectRef

	pages map[int]*Page
}

var _ docmodel.Document = (*Document)(nil)

// Open reads and validates the PDF at path. Validation is relaxed: the
// tool has to cope with whatever the annotating application produced.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to validate PDF %s: %w", path, err)
	}

	return &Document{
		ctx:     ctx,
		file:    f,
		created: make(map[string]*types.IndirectRef),
		pages:   make(map[int]*Page),
	}, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Page returns the page at the given 0-based index. Pages are cached so
// repeated tier searches do not re-extract words.
func (d *Document) Page(index int) (docmodel.Page, error) {
	if index < 0 || index >= d.ctx.PageCount {
		return nil, fmt.Errorf("page index %d out of range (0..%d)", index, d.ctx.PageCount-1)
	}
	if p, ok := d.pages[index]; ok {
		return p, nil
	}

	// pdfcpu page numbers are 1-based.
	pageDict, _, attrs, err := d.ctx.PageDict(index+1, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load page %d: %w", index+1, err)
	}

	p := &Page{doc: d, index: index, dict: pageDict, attrs: attrs}
	d.pages[index] = p
	return p, nil
}

// Outline returns the catalog's outline dictionary, if any.
func (d *Document) Outline() (docmodel.Outline, bool) {
	rootDict, err := d.ctx.Catalog()
	if err != nil {
		return nil, false
	}
	o, found := rootDict.Find("Outlines")
	if !found {
		return nil, false
	}
	return o, true
}

// SetOutline installs o (as returned by Outline) in the catalog.
func (d *Document) SetOutline(o docmodel.Outline) error {
	obj, ok := o.(types.Object)
	if !ok {
		return fmt.Errorf("unsupported outline value %T", o)
	}
	rootDict, err := d.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("failed to access catalog: %w", err)
	}
	rootDict["Outlines"] = obj
	return nil
}

// Save optimizes the context and writes it to path. The write is atomic at
// the file level: on error no output file is left behind. Transient write
// failures are retried a few times before giving up.
func (d *Document) Save(path string) error {
	if err := api.OptimizeContext(d.ctx); err != nil {
		return fmt.Errorf("failed to optimize document: %w", err)
	}

	err := retry.Do(
		func() error {
			return api.WriteContextFile(d.ctx, path)
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.file.Close()
}
