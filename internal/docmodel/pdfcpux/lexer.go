package pdfcpux

import (
	"bytes"
	"strconv"
)

// operand kinds produced by the content lexer.
type opKind int

const (
	opNumber opKind = iota
	opString
	opName
	opArray
	opOther
)

type operand struct {
	kind opKind
	num  float64
	str  []byte
	name string
	arr  []operand
}

type tokenKind int

const (
	tkOperand tokenKind = iota
	tkOperator
)

type token struct {
	kind tokenKind
	operand
	op string
}

// contentLexer tokenizes a decoded content stream. It understands the
// object syntax needed for text extraction: numbers, strings, names,
// arrays and dictionaries; everything else comes back as an operator or an
// opaque operand.
type contentLexer struct {
	data []byte
	pos  int
}

func newContentLexer(data []byte) *contentLexer {
	return &contentLexer{data: data}
}

func isWhite(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *contentLexer) skipWhite() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhite(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

// next returns the next token, or ok == false at end of stream.
func (l *contentLexer) next() (token, bool) {
	l.skipWhite()
	if l.pos >= len(l.data) {
		return token{}, false
	}

	c := l.data[l.pos]
	switch {
	case c == '(':
		return token{kind: tkOperand, operand: operand{kind: opString, str: l.literalString()}}, true
	case c == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			l.skipDict()
			return token{kind: tkOperand, operand: operand{kind: opOther}}, true
		}
		return token{kind: tkOperand, operand: operand{kind: opString, str: l.hexString()}}, true
	case c == '[':
		l.pos++
		return token{kind: tkOperand, operand: operand{kind: opArray, arr: l.array()}}, true
	case c == ']':
		l.pos++
		return token{kind: tkOperand, operand: operand{kind: opOther}}, true
	case c == '/':
		return token{kind: tkOperand, operand: operand{kind: opName, name: l.nameToken()}}, true
	case c == '{' || c == '}':
		l.pos++
		return token{kind: tkOperand, operand: operand{kind: opOther}}, true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return token{kind: tkOperand, operand: operand{kind: opNumber, num: l.number()}}, true
	default:
		return token{kind: tkOperator, op: l.operatorToken()}, true
	}
}

func (l *contentLexer) literalString() []byte {
	// Caller saw '('.
	l.pos++
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch c {
		case '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\n':
				// line continuation
			case '\r':
				if l.pos+1 < len(l.data) && l.data[l.pos+1] == '\n' {
					l.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && l.pos+1 < len(l.data); k++ {
						d := l.data[l.pos+1]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
			l.pos++
		case '(':
			depth++
			out = append(out, c)
			l.pos++
		case ')':
			depth--
			if depth == 0 {
				l.pos++
				return out
			}
			out = append(out, c)
			l.pos++
		default:
			out = append(out, c)
			l.pos++
		}
	}
	return out
}

func (l *contentLexer) hexString() []byte {
	// Caller saw '<'.
	l.pos++
	var out []byte
	var hi int = -1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'a' && c <= 'f':
			v = int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = int(c-'A') + 10
		default:
			continue
		}
		if hi < 0 {
			hi = v
		} else {
			out = append(out, byte(hi<<4|v))
			hi = -1
		}
	}
	if hi >= 0 {
		out = append(out, byte(hi<<4))
	}
	return out
}

// skipDict discards a dictionary. Content-stream dictionaries (marked
// content properties, inline image params) carry nothing we extract.
func (l *contentLexer) skipDict() {
	depth := 1
	for l.pos < len(l.data) && depth > 0 {
		c := l.data[l.pos]
		switch c {
		case '(':
			l.literalString()
			continue
		case '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				depth++
				l.pos += 2
				continue
			}
			l.hexString()
			continue
		case '>':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
				depth--
				l.pos += 2
				continue
			}
		}
		l.pos++
	}
}

func (l *contentLexer) array() []operand {
	var out []operand
	for {
		l.skipWhite()
		if l.pos >= len(l.data) || l.data[l.pos] == ']' {
			if l.pos < len(l.data) {
				l.pos++
			}
			return out
		}
		tok, ok := l.next()
		if !ok {
			return out
		}
		if tok.kind == tkOperand {
			if tok.operand.kind == opOther && len(tok.arr) == 0 {
				continue
			}
			out = append(out, tok.operand)
		}
	}
}

func (l *contentLexer) nameToken() string {
	// Caller saw '/'.
	l.pos++
	start := l.pos
	for l.pos < len(l.data) && !isWhite(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *contentLexer) number() float64 {
	start := l.pos
	l.pos++
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '+' || c == '-' {
			l.pos++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
	if err != nil {
		return 0
	}
	return f
}

func (l *contentLexer) operatorToken() string {
	start := l.pos
	l.pos++
	for l.pos < len(l.data) && !isWhite(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// skipInlineImage discards everything up to and including the EI operator
// terminating an inline image.
func (l *contentLexer) skipInlineImage() {
	for {
		i := bytes.Index(l.data[l.pos:], []byte("EI"))
		if i < 0 {
			l.pos = len(l.data)
			return
		}
		end := l.pos + i + 2
		before := byte('\n')
		if l.pos+i > 0 {
			before = l.data[l.pos+i-1]
		}
		if isWhite(before) && (end >= len(l.data) || isWhite(l.data[end]) || isDelim(l.data[end])) {
			l.pos = end
			return
		}
		l.pos += i + 2
	}
}
