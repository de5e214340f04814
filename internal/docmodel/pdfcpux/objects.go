package pdfcpux

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

func nameValue(obj types.Object) string {
	if n, ok := obj.(types.Name); ok {
		return n.Value()
	}
	return ""
}

// textString resolves a PDF text string object to UTF-8, handling both
// literal and hex strings and the UTF-16BE byte-order mark.
func (d *Document) textString(obj types.Object) string {
	if obj == nil {
		return ""
	}
	o, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}

	var raw string
	switch v := o.(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		if err != nil {
			return ""
		}
		raw = s
	case types.HexLiteral:
		s, err := types.HexLiteralToString(v)
		if err != nil {
			return ""
		}
		raw = s
	default:
		return ""
	}

	return decodeTextBytes([]byte(raw))
}

func decodeTextBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		u16 := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			u16 = append(u16, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u16))
	}
	if utf8.Valid(b) {
		return string(b)
	}
	// PDFDocEncoding is close enough to Latin-1 for our purposes.
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

// textStringObject encodes s for use as a PDF text string. Hex literals
// avoid delimiter escaping; non-ASCII content goes out as UTF-16BE.
func textStringObject(s string) types.Object {
	ascii := true
	for _, r := range s {
		if r > 0x7E {
			ascii = false
			break
		}
	}
	if ascii {
		return types.NewHexLiteral([]byte(s))
	}

	u16 := utf16.Encode([]rune(s))
	b := make([]byte, 2, 2+len(u16)*2)
	b[0], b[1] = 0xFE, 0xFF
	for _, u := range u16 {
		b = append(b, byte(u>>8), byte(u))
	}
	return types.NewHexLiteral(b)
}

// floatArray resolves an array of numbers.
func (d *Document) floatArray(obj types.Object) ([]float64, error) {
	arr, err := d.ctx.DereferenceArray(obj)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(arr))
	for _, entry := range arr {
		o, err := d.ctx.Dereference(entry)
		if err != nil {
			return nil, err
		}
		switch v := o.(type) {
		case types.Integer:
			out = append(out, float64(v.Value()))
		case types.Float:
			out = append(out, v.Value())
		}
	}
	return out, nil
}

func rectFromCorners(r []float64) docmodel.Rect {
	llx, urx := r[0], r[2]
	if llx > urx {
		llx, urx = urx, llx
	}
	lly, ury := r[1], r[3]
	if lly > ury {
		lly, ury = ury, lly
	}
	return docmodel.Rect{LLx: llx, LLy: lly, URx: urx, URy: ury}
}

// quadsFromPoints converts a QuadPoints array (UL UR LL LR per quad, the
// order Acrobat writes) into docmodel quads (counter-clockwise from LL).
func quadsFromPoints(qp []float64) []docmodel.Quad {
	var quads []docmodel.Quad
	for i := 0; i+8 <= len(qp); i += 8 {
		ul := docmodel.Point{X: qp[i], Y: qp[i+1]}
		ur := docmodel.Point{X: qp[i+2], Y: qp[i+3]}
		ll := docmodel.Point{X: qp[i+4], Y: qp[i+5]}
		lr := docmodel.Point{X: qp[i+6], Y: qp[i+7]}
		quads = append(quads, docmodel.Quad{ll, lr, ur, ul})
	}
	return quads
}

// quadPointsArray flattens docmodel quads into a QuadPoints array in the
// UL UR LL LR order viewers expect.
func quadPointsArray(quads []docmodel.Quad) types.Array {
	arr := make(types.Array, 0, len(quads)*8)
	for _, q := range quads {
		ll, lr, ur, ul := q[0], q[1], q[2], q[3]
		for _, p := range []docmodel.Point{ul, ur, ll, lr} {
			arr = append(arr, types.Float(p.X), types.Float(p.Y))
		}
	}
	return arr
}

// fontWidths collects per-font glyph width tables from the page resources.
// Fonts without a Widths array fall back to a fixed average width.
func (p *Page) fontWidths() map[string]*fontInfo {
	fonts := make(map[string]*fontInfo)

	if p.attrs == nil || p.attrs.Resources == nil {
		return fonts
	}
	fontDict, err := p.doc.ctx.DereferenceDict(p.attrs.Resources["Font"])
	if err != nil || fontDict == nil {
		return fonts
	}

	for name, entry := range fontDict {
		fd, err := p.doc.ctx.DereferenceDict(entry)
		if err != nil || fd == nil {
			continue
		}
		fi := &fontInfo{firstChar: -1}
		if o, err := p.doc.ctx.Dereference(fd["FirstChar"]); err == nil {
			if i, ok := o.(types.Integer); ok {
				fi.firstChar = i.Value()
			}
		}
		if ws, err := p.doc.floatArray(fd["Widths"]); err == nil {
			fi.widths = ws
		}
		fonts[name] = fi
	}
	return fonts
}
