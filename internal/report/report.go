// Package report renders per-annotation progress lines and the final
// transfer summary. Styling is injected at construction so there is no
// process-wide formatting state.
package report

import (
	"fmt"
	"io"
)

// Styles holds the escape sequences wrapped around report lines. The zero
// value prints plain text.
type Styles struct {
	Fail  string
	Fuzzy string
	Reset string
}

// ANSIStyles is the default colored style set: failures in red, fuzzy
// transfers in blue.
var ANSIStyles = Styles{
	Fail:  "\033[91m",
	Fuzzy: "\033[94m",
	Reset: "\033[0m",
}

// Failure records one annotation that could not be transferred.
// Page is the 1-based source page number, for human consumption.
type Failure struct {
	Page int
	Text string
}

// Counts aggregates the outcome of a transfer run.
type Counts struct {
	Exact       int
	Fuzzy       int
	Replies     int
	Failed      int
	Unsupported int
}

// Printer writes the transfer report to a single output stream.
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter returns a Printer writing to out. With color enabled, failures
// and fuzzy transfers are highlighted using ANSIStyles.
func NewPrinter(out io.Writer, color bool) *Printer {
	p := &Printer{out: out}
	if color {
		p.styles = ANSIStyles
	}
	return p
}

// Snippet shortens text for single-line display.
func Snippet(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "..."
}

func (p *Printer) Section(title string) {
	fmt.Fprintf(p.out, "\n--- %s ---\n", title)
}

// ExactOK reports a successful exact transfer. Pages are 1-based.
func (p *Printer) ExactOK(srcPage, dstPage int, text string) {
	fmt.Fprintf(p.out, "  [OK-EXACT] Page %d -> %d: Transferred '%s'\n",
		srcPage, dstPage, Snippet(text, 40))
}

// FuzzyOK reports a successful fuzzy transfer.
func (p *Printer) FuzzyOK(srcPage, dstPage int, text string) {
	fmt.Fprintf(p.out, "%s  [OK-FUZZY] Page %d -> %d: Transferred (Fuzzy) '%s'%s\n",
		p.styles.Fuzzy, srcPage, dstPage, Snippet(text, 40), p.styles.Reset)
}

// ReplyOK reports a reply re-attached on the given 1-based target page.
func (p *Printer) ReplyOK(dstPage int, content string) {
	fmt.Fprintf(p.out, "  [OK] Page %d: Transferred reply: '%s'\n",
		dstPage, Snippet(content, 40))
}

// Fail reports a failed transfer with its reason.
func (p *Printer) Fail(srcPage int, reason, text string) {
	msg := reason
	if text != "" {
		msg = fmt.Sprintf("%s. '%s'", reason, Snippet(text, 40))
	}
	fmt.Fprintf(p.out, "%s  [FAIL] Page %d: %s%s\n", p.styles.Fail, srcPage, msg, p.styles.Reset)
}

// Summary prints the final counts and the listing of failed annotations.
func (p *Printer) Summary(c Counts, failures []Failure, outputPath string) {
	p.Section("Transfer Complete")
	fmt.Fprintf(p.out, "Successfully transferred (Exact): %d\n", c.Exact)
	fmt.Fprintf(p.out, "Successfully transferred (Fuzzy): %d\n", c.Fuzzy)
	fmt.Fprintf(p.out, "Transferred replies: %d\n", c.Replies)
	fmt.Fprintf(p.out, "Failed (Text not found/Too far): %d\n", c.Failed)
	fmt.Fprintf(p.out, "Skipped (unsupported type): %d\n", c.Unsupported)
	fmt.Fprintf(p.out, "\nFinal annotated file saved to: %s\n", outputPath)

	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(p.out, "%s\n--- Failed Annotations Summary (%d total) ---%s\n",
		p.styles.Fail, len(failures), p.styles.Reset)
	for _, f := range failures {
		fmt.Fprintf(p.out, "%sOriginal Page %d: '%s'%s\n",
			p.styles.Fail, f.Page, Snippet(f.Text, 80), p.styles.Reset)
	}
}
