// Package report writes, reads and summarizes profile output files.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/janisozaur/valgrind/internal/attrib"
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
)

// Events is the column header of every line record.
const Events = "Ir I1mr I2mr Dr D1mr D2mr Dw D1mw D2mw"

// Header is everything before the first fl= line.
type Header struct {
	I1Desc string
	D1Desc string
	L2Desc string
	Cmd    []string
}

// Totals are the nine counters summed over all lines.
type Totals struct {
	Ir attrib.CC
	Dr attrib.CC
	Dw attrib.CC
}

// Add accumulates one leaf.
func (t *Totals) Add(l *attrib.Leaf) {
	t.Ir.Add(l.Ir)
	t.Dr.Add(l.Dr)
	t.Dw.Add(l.Dw)
}

// Counts returns the counters in event column order.
func (t Totals) Counts() [9]uint64 {
	return [9]uint64{
		t.Ir.A, t.Ir.M1, t.Ir.M2,
		t.Dr.A, t.Dr.M1, t.Dr.M2,
		t.Dw.A, t.Dw.M1, t.Dw.M2,
	}
}

// TotalsFromCounts is the inverse of Totals.Counts.
func TotalsFromCounts(c [9]uint64) Totals {
	return Totals{
		Ir: attrib.CC{A: c[0], M1: c[1], M2: c[2]},
		Dr: attrib.CC{A: c[3], M1: c[4], M2: c[5]},
		Dw: attrib.CC{A: c[6], M1: c[7], M2: c[8]},
	}
}

type tableWriter struct {
	w      *bufio.Writer
	totals Totals
}

func (tw *tableWriter) VisitFile(name string) error {
	_, err := fmt.Fprintf(tw.w, "fl=%s\n", name)
	return err
}

func (tw *tableWriter) VisitFunc(name string) error {
	_, err := fmt.Fprintf(tw.w, "fn=%s\n", name)
	return err
}

func (tw *tableWriter) VisitLine(l *attrib.Leaf) error {
	tw.totals.Add(l)
	_, err := fmt.Fprintf(tw.w, "%d %d %d %d %d %d %d %d %d %d\n",
		l.Line,
		l.Ir.A, l.Ir.M1, l.Ir.M2,
		l.Dr.A, l.Dr.M1, l.Dr.M2,
		l.Dw.A, l.Dw.M1, l.Dw.M2)
	return err
}

// totalsOnly accumulates without writing.
type totalsOnly struct {
	totals Totals
}

func (t *totalsOnly) VisitFile(string) error { return nil }
func (t *totalsOnly) VisitFunc(string) error { return nil }
func (t *totalsOnly) VisitLine(l *attrib.Leaf) error {
	t.totals.Add(l)
	return nil
}

// Sum returns the totals of the trie without writing anything.
func Sum(trie *attrib.Trie) Totals {
	var t totalsOnly
	trie.Walk(&t)
	return t.totals
}

// Write emits the report for trie to w and returns the totals computed
// during the traversal. The summary: line is always last.
func Write(w io.Writer, hdr Header, trie *attrib.Trie) (Totals, error) {
	tw := &tableWriter{w: bufio.NewWriter(w)}

	fmt.Fprintf(tw.w, "desc: I1 cache:         %s\n", hdr.I1Desc)
	fmt.Fprintf(tw.w, "desc: D1 cache:         %s\n", hdr.D1Desc)
	fmt.Fprintf(tw.w, "desc: L2 cache:         %s\n", hdr.L2Desc)
	tw.w.WriteString("cmd:")
	for _, arg := range hdr.Cmd {
		tw.w.WriteString(" ")
		tw.w.WriteString(arg)
	}
	fmt.Fprintf(tw.w, "\nevents: %s\n", Events)

	if err := trie.Walk(tw); err != nil {
		// finish the totals so the summary is still right
		return Sum(trie), common.NewResourceError(cg.ErrReportWrite, err, "failed to write report")
	}

	c := tw.totals.Counts()
	fmt.Fprintf(tw.w, "summary: %d %d %d %d %d %d %d %d %d\n",
		c[0], c[1], c[2], c[3], c[4], c[5], c[6], c[7], c[8])

	if err := tw.w.Flush(); err != nil {
		return tw.totals, common.NewResourceError(cg.ErrReportWrite, err, "failed to write report")
	}
	return tw.totals, nil
}

// WriteFile creates (or truncates) path and writes the report to it. The
// totals are returned even when the file cannot be written.
func WriteFile(path string, hdr Header, trie *attrib.Trie) (Totals, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return Sum(trie), common.NewResourceError(cg.ErrReportOpen, err,
			fmt.Sprintf("can't open cache simulation output file `%s'", path))
	}

	totals, err := Write(f, hdr, trie)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = common.NewResourceError(cg.ErrReportWrite, cerr, path)
	}
	return totals, err
}
