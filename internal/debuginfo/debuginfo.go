// Package debuginfo maps guest instruction addresses to source locations.
package debuginfo

import (
	"sort"

	"github.com/janisozaur/valgrind/internal/cg"
)

// Location is the answer of a debug-info lookup. File and Line are only
// meaningful when FoundFileLine is set, Function only when FoundFunction is.
type Location struct {
	File          string
	Function      string
	Line          uint32
	FoundFileLine bool
	FoundFunction bool
}

// Provider resolves an instruction address. It never fails; a miss is
// reported through the Found flags.
type Provider interface {
	Resolve(addr cg.Addr) Location
}

type lineRange struct {
	lo, hi cg.Addr
	file   string
	line   uint32
}

type funcRange struct {
	lo, hi cg.Addr
	name   string
}

// Table is an in-memory Provider built from address ranges. Line and
// function ranges are kept separately since debug formats describe them
// independently.
type Table struct {
	lines  []lineRange
	funcs  []funcRange
	sorted bool

	// reach[i] is the largest hi among ranges 0..i, so a backward walk
	// can stop once nothing earlier covers the address.
	lineReach []cg.Addr
	funcReach []cg.Addr
}

func NewTable() *Table {
	return &Table{}
}

// AddLine maps [lo, hi) to file:line.
func (t *Table) AddLine(lo, hi cg.Addr, file string, line uint32) {
	if hi <= lo {
		return
	}
	t.lines = append(t.lines, lineRange{lo: lo, hi: hi, file: file, line: line})
	t.sorted = false
}

// AddFunc maps [lo, hi) to a function name.
func (t *Table) AddFunc(lo, hi cg.Addr, name string) {
	if hi <= lo {
		return
	}
	t.funcs = append(t.funcs, funcRange{lo: lo, hi: hi, name: name})
	t.sorted = false
}

// Len returns the number of line and function ranges held.
func (t *Table) Len() (lines, funcs int) {
	return len(t.lines), len(t.funcs)
}

func (t *Table) sort() {
	// stable: the last range added for a start address wins on lookup
	sort.SliceStable(t.lines, func(i, j int) bool { return t.lines[i].lo < t.lines[j].lo })
	sort.SliceStable(t.funcs, func(i, j int) bool { return t.funcs[i].lo < t.funcs[j].lo })

	t.lineReach = t.lineReach[:0]
	for i, r := range t.lines {
		t.lineReach = append(t.lineReach, maxAddr(r.hi, t.lineReach, i))
	}
	t.funcReach = t.funcReach[:0]
	for i, r := range t.funcs {
		t.funcReach = append(t.funcReach, maxAddr(r.hi, t.funcReach, i))
	}
	t.sorted = true
}

func maxAddr(hi cg.Addr, reach []cg.Addr, i int) cg.Addr {
	if i > 0 && reach[i-1] > hi {
		return reach[i-1]
	}
	return hi
}

func (t *Table) Resolve(addr cg.Addr) Location {
	if !t.sorted {
		t.sort()
	}

	var loc Location

	// ranges may overlap; the one starting closest below addr wins
	for i := sort.Search(len(t.lines), func(i int) bool { return t.lines[i].lo > addr }) - 1; i >= 0 && addr < t.lineReach[i]; i-- {
		if addr < t.lines[i].hi {
			loc.File = t.lines[i].file
			loc.Line = t.lines[i].line
			loc.FoundFileLine = true
			break
		}
	}

	// functions may nest (inlining), walk back to the innermost that covers addr
	for j := sort.Search(len(t.funcs), func(j int) bool { return t.funcs[j].lo > addr }) - 1; j >= 0 && addr < t.funcReach[j]; j-- {
		if addr < t.funcs[j].hi {
			loc.Function = t.funcs[j].name
			loc.FoundFunction = true
			break
		}
	}
	return loc
}
