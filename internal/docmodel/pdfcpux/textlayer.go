package pdfcpux

import (
	"math"

	"github.com/jackzampolin/reanchor/internal/docmodel"
)

// fontInfo carries the glyph width table of a simple font, in glyph space
// (thousandths of text space).
type fontInfo struct {
	firstChar int
	widths    []float64
}

// width returns the advance of a character code in glyph space.
func (f *fontInfo) width(c byte) float64 {
	if f != nil && f.firstChar >= 0 {
		i := int(c) - f.firstChar
		if i >= 0 && i < len(f.widths) && f.widths[i] > 0 {
			return f.widths[i]
		}
	}
	return 500
}

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

func mul(a, b matrix) matrix {
	return matrix{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

func translation(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// textScanner interprets the text operators of a content stream and
// assembles words with covering quads. Only the text matrix is tracked;
// the graphics state CTM and form XObjects are ignored, so positions are
// approximate for transformed content. That is acceptable here: quads only
// need to cover the matched words, and the matching itself is text-based.
type textScanner struct {
	fonts map[string]*fontInfo

	tm, tlm  matrix
	inText   bool
	font     *fontInfo
	fontSize float64
	charSp   float64
	wordSp   float64
	hscale   float64
	leading  float64

	words []docmodel.Word

	cur struct {
		active bool
		text   []byte
		x0, y0 float64
		x1     float64
		size   float64
	}
}

// scanWords extracts word tokens from a decoded content stream.
func scanWords(content []byte, fonts map[string]*fontInfo) []docmodel.Word {
	s := &textScanner{fonts: fonts, tm: identity, tlm: identity, hscale: 100}
	lex := newContentLexer(content)

	var stack []operand
	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		if tok.kind != tkOperator {
			stack = append(stack, tok.operand)
			continue
		}
		s.apply(tok.op, stack, lex)
		stack = stack[:0]
	}

	s.flush()
	return s.words
}

func popNums(stack []operand, n int) ([]float64, bool) {
	if len(stack) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		op := stack[len(stack)-n+i]
		if op.kind != opNumber {
			return nil, false
		}
		out[i] = op.num
	}
	return out, true
}

func (s *textScanner) apply(op string, stack []operand, lex *contentLexer) {
	switch op {
	case "BT":
		s.flush()
		s.tm, s.tlm = identity, identity
		s.inText = true
	case "ET":
		s.flush()
		s.inText = false
	case "Tf":
		if len(stack) >= 2 && stack[len(stack)-2].kind == opName && stack[len(stack)-1].kind == opNumber {
			s.font = s.fonts[stack[len(stack)-2].name]
			s.fontSize = stack[len(stack)-1].num
		}
	case "Td":
		if v, ok := popNums(stack, 2); ok {
			s.flush()
			s.tlm = mul(translation(v[0], v[1]), s.tlm)
			s.tm = s.tlm
		}
	case "TD":
		if v, ok := popNums(stack, 2); ok {
			s.leading = -v[1]
			s.flush()
			s.tlm = mul(translation(v[0], v[1]), s.tlm)
			s.tm = s.tlm
		}
	case "Tm":
		if v, ok := popNums(stack, 6); ok {
			s.flush()
			s.tlm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			s.tm = s.tlm
		}
	case "T*":
		s.nextLine()
	case "TL":
		if v, ok := popNums(stack, 1); ok {
			s.leading = v[0]
		}
	case "Tc":
		if v, ok := popNums(stack, 1); ok {
			s.charSp = v[0]
		}
	case "Tw":
		if v, ok := popNums(stack, 1); ok {
			s.wordSp = v[0]
		}
	case "Tz":
		if v, ok := popNums(stack, 1); ok {
			s.hscale = v[0]
		}
	case "Tj":
		if len(stack) >= 1 && stack[len(stack)-1].kind == opString {
			s.show(stack[len(stack)-1].str)
		}
	case "'":
		if len(stack) >= 1 && stack[len(stack)-1].kind == opString {
			s.nextLine()
			s.show(stack[len(stack)-1].str)
		}
	case "\"":
		if len(stack) >= 3 &&
			stack[len(stack)-3].kind == opNumber &&
			stack[len(stack)-2].kind == opNumber &&
			stack[len(stack)-1].kind == opString {
			s.wordSp = stack[len(stack)-3].num
			s.charSp = stack[len(stack)-2].num
			s.nextLine()
			s.show(stack[len(stack)-1].str)
		}
	case "TJ":
		if len(stack) >= 1 && stack[len(stack)-1].kind == opArray {
			for _, el := range stack[len(stack)-1].arr {
				switch el.kind {
				case opString:
					s.show(el.str)
				case opNumber:
					adv := -el.num / 1000 * s.fontSize * s.hscale / 100
					// Large offsets are inter-word gaps in justified text.
					if adv > 0.3*s.fontSize {
						s.flush()
					}
					s.tm = mul(translation(adv, 0), s.tm)
				}
			}
		}
	case "BI":
		lex.skipInlineImage()
	}
}

func (s *textScanner) nextLine() {
	s.flush()
	s.tlm = mul(translation(0, -s.leading), s.tlm)
	s.tm = s.tlm
}

// show advances the pen over a string, assembling words split at space
// glyphs. Character codes are decoded as Latin-1, which covers the simple
// fonts this scanner understands.
func (s *textScanner) show(str []byte) {
	if !s.inText {
		return
	}
	for _, c := range str {
		w := s.font.width(c)/1000*s.fontSize + s.charSp
		if c == ' ' {
			w += s.wordSp
		}
		adv := w * s.hscale / 100

		if c == ' ' {
			s.flush()
		} else {
			if !s.cur.active {
				s.cur.active = true
				s.cur.text = s.cur.text[:0]
				s.cur.x0, s.cur.y0 = s.tm[4], s.tm[5]
				s.cur.size = s.fontSize * math.Hypot(s.tm[2], s.tm[3])
			}
			if c < 0x80 {
				s.cur.text = append(s.cur.text, c)
			} else {
				s.cur.text = append(s.cur.text, []byte(string(rune(c)))...)
			}
		}

		s.tm = mul(translation(adv, 0), s.tm)
		if s.cur.active {
			s.cur.x1 = s.tm[4]
		}
	}
}

// flush closes the current word, deriving its quad from the pen travel and
// an 0.8/0.2 ascender/descender split of the font size.
func (s *textScanner) flush() {
	if !s.cur.active {
		return
	}
	size := s.cur.size
	if size == 0 {
		size = 1
	}
	y0 := s.cur.y0 - 0.2*size
	y1 := s.cur.y0 + 0.8*size
	s.words = append(s.words, docmodel.Word{
		Text: string(s.cur.text),
		Quad: docmodel.Quad{
			{X: s.cur.x0, Y: y0},
			{X: s.cur.x1, Y: y0},
			{X: s.cur.x1, Y: y1},
			{X: s.cur.x0, Y: y1},
		},
	})
	s.cur.active = false
}
