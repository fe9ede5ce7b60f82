// Package account implements the per-instruction accounting entry points
// called by instrumented code.
package account

import (
	"github.com/janisozaur/valgrind/internal/attrib"
	"github.com/janisozaur/valgrind/internal/blocks"
	"github.com/janisozaur/valgrind/internal/cg"
)

// Simulator decides hit or miss for one access. L2 is only consulted when
// L1 misses.
type Simulator interface {
	SimulateAccess(kind cg.CacheKind, addr cg.Addr, size int) (l1Miss, l2Miss bool)
}

// Accountant charges simulated accesses to the leaf cached in each
// instruction record. It does no lookups and no allocation.
type Accountant struct {
	sim  Simulator
	trie *attrib.Trie
}

func New(sim Simulator, trie *attrib.Trie) *Accountant {
	return &Accountant{sim: sim, trie: trie}
}

func tally(cc *attrib.CC, l1Miss, l2Miss bool) {
	cc.A++
	if l1Miss {
		cc.M1++
		if l2Miss {
			cc.M2++
		}
	}
}

func dataSize(in *blocks.Instr) int {
	if in.DataSize > cg.MinLineSize {
		return cg.MinLineSize
	}
	return in.DataSize
}

func (a *Accountant) fetch(in *blocks.Instr, leaf *attrib.Leaf) {
	m1, m2 := a.sim.SimulateAccess(cg.I1, in.Addr, in.InstrSize)
	tally(&leaf.Ir, m1, m2)
}

// Fetch charges an instruction fetch only.
func (a *Accountant) Fetch(in *blocks.Instr) {
	a.fetch(in, a.trie.Leaf(in.Leaf))
}

// FetchRead charges a fetch and a data read at addr.
func (a *Accountant) FetchRead(in *blocks.Instr, addr cg.Addr) {
	leaf := a.trie.Leaf(in.Leaf)
	a.fetch(in, leaf)
	m1, m2 := a.sim.SimulateAccess(cg.D1, addr, dataSize(in))
	tally(&leaf.Dr, m1, m2)
}

// FetchWrite charges a fetch and a data write at addr.
func (a *Accountant) FetchWrite(in *blocks.Instr, addr cg.Addr) {
	leaf := a.trie.Leaf(in.Leaf)
	a.fetch(in, leaf)
	m1, m2 := a.sim.SimulateAccess(cg.D1, addr, dataSize(in))
	tally(&leaf.Dw, m1, m2)
}

// FetchReadWrite charges a fetch, a read at readAddr and a write at
// writeAddr. Hosts use FetchRead instead when the two addresses coincide.
func (a *Accountant) FetchReadWrite(in *blocks.Instr, readAddr, writeAddr cg.Addr) {
	leaf := a.trie.Leaf(in.Leaf)
	a.fetch(in, leaf)
	size := dataSize(in)
	m1, m2 := a.sim.SimulateAccess(cg.D1, readAddr, size)
	tally(&leaf.Dr, m1, m2)
	m1, m2 = a.sim.SimulateAccess(cg.D1, writeAddr, size)
	tally(&leaf.Dw, m1, m2)
}
