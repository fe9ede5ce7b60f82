package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// SummaryOptions controls how the human summary is printed.
type SummaryOptions struct {
	// Prefix starts every line, e.g. "==1234== ".
	Prefix string
	// Color bolds the row labels.
	Color bool
}

type summaryPrinter struct {
	w    io.Writer
	opts SummaryOptions
	bold *color.Color
	err  error
}

func (p *summaryPrinter) line(label, format string, args ...any) {
	if p.err != nil {
		return
	}
	if p.opts.Color {
		label = p.bold.Sprint(label)
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s"+format+"\n", append([]any{p.opts.Prefix, label}, args...)...)
}

func (p *summaryPrinter) blank() {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s\n", p.opts.Prefix)
}

// ulongWidth is the printed width of n with comma grouping.
func ulongWidth(n uint64) int {
	w := 0
	for n > 0 {
		n /= 10
		w++
	}
	if w == 0 {
		return 0
	}
	return w + (w-1)/3
}

// comma right-justifies n with thousands separators in width.
func comma(n uint64, width int) string {
	return fmt.Sprintf("%*s", width, humanize.Comma(int64(n)))
}

// percentify renders n/ex as a percentage right-justified in width. ex is
// the precision: 100 gives two decimals, 10 gives one.
func percentify(n, ex uint64, width int) string {
	digits := 0
	for e := ex; e > 1; e /= 10 {
		digits++
	}
	s := fmt.Sprintf("%d.%0*d%%", n/ex, digits, n%ex)
	return fmt.Sprintf("%*s", width, s)
}

func atLeastOne(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	return n
}

// PrintSummary writes the human readable summary of t.
func PrintSummary(w io.Writer, t Totals, opts SummaryOptions) error {
	p := &summaryPrinter{w: w, opts: opts, bold: color.New(color.Bold)}
	if opts.Color {
		p.bold.EnableColor()
	}

	l1 := ulongWidth(t.Ir.A)
	l2 := ulongWidth(t.Dr.A)
	l3 := ulongWidth(t.Dw.A)

	p.line("I   refs:     ", " %s", comma(t.Ir.A, l1))
	p.line("I1  misses:   ", " %s", comma(t.Ir.M1, l1))
	p.line("L2i misses:   ", " %s", comma(t.Ir.M2, l1))

	prec := uint64(100)
	irA := atLeastOne(t.Ir.A)
	p.line("I1  miss rate:", " %s", percentify(t.Ir.M1*100*prec/irA, prec, l1+1))
	p.line("L2i miss rate:", " %s", percentify(t.Ir.M2*100*prec/irA, prec, l1+1))
	p.blank()

	dA := t.Dr.A + t.Dw.A
	dM1 := t.Dr.M1 + t.Dw.M1
	dM2 := t.Dr.M2 + t.Dw.M2

	triple := func(label string, all, rd, wr uint64) {
		p.line(label, " %s  (%s rd + %s wr)", comma(all, l1), comma(rd, l2), comma(wr, l3))
	}
	triple("D   refs:     ", dA, t.Dr.A, t.Dw.A)
	triple("D1  misses:   ", dM1, t.Dr.M1, t.Dw.M1)
	triple("L2d misses:   ", dM2, t.Dr.M2, t.Dw.M2)

	prec = 10
	dA = atLeastOne(dA)
	drA := atLeastOne(t.Dr.A)
	dwA := atLeastOne(t.Dw.A)
	rates := func(label string, all, rd, wr, allEx, rdEx, wrEx uint64) {
		p.line(label, " %s (%s   + %s  )",
			percentify(all*100*prec/allEx, prec, l1+1),
			percentify(rd*100*prec/rdEx, prec, l2+1),
			percentify(wr*100*prec/wrEx, prec, l3+1))
	}
	rates("D1  miss rate:", dM1, t.Dr.M1, t.Dw.M1, dA, drA, dwA)
	rates("L2d miss rate:", dM2, t.Dr.M2, t.Dw.M2, dA, drA, dwA)
	p.blank()

	// every L1 miss is an L2 reference
	l2Refs := t.Dr.M1 + t.Dw.M1 + t.Ir.M1
	l2RefsR := t.Dr.M1 + t.Ir.M1
	l2Misses := t.Dr.M2 + t.Dw.M2 + t.Ir.M2
	l2MissesR := t.Dr.M2 + t.Ir.M2
	triple("L2 refs:      ", l2Refs, l2RefsR, t.Dw.M1)
	triple("L2 misses:    ", l2Misses, l2MissesR, t.Dw.M2)
	rates("L2 miss rate: ", l2Misses, l2MissesR, t.Dw.M2, irA+dA, irA+drA, dwA)

	return p.err
}
