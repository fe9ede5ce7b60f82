// Package blocks keeps per-instruction metadata for every block the host
// currently has translated.
package blocks

import (
	"github.com/janisozaur/valgrind/internal/attrib"
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
)

// Instr is the metadata of one instruction in a translated block.
type Instr struct {
	Addr      cg.Addr
	InstrSize int
	DataSize  int
	// Leaf is set once, when the block is first translated, and is kept
	// across retranslations even if the debug info would now say otherwise.
	Leaf attrib.LeafRef
}

// Block is the record of one translated block, keyed by its entry address.
type Block struct {
	Addr   cg.Addr
	Instrs []Instr
}

// Handle is returned by Translated. Fresh is false on a retranslation of a
// block that is still resident.
type Handle struct {
	b     *Block
	Fresh bool
}

// Block returns the record behind the handle.
func (h Handle) Block() *Block {
	return h.b
}

// Stats counts table activity for diagnostics.
type Stats struct {
	DistinctInstrs uint64 // instruction records populated on first translation
	Translations   uint64 // blocks created
	Retranslations uint64 // translations that found a resident block
	Discards       uint64
}

// Table maps block entry addresses to their records.
type Table struct {
	trie   *attrib.Trie
	blocks map[cg.Addr]*Block
	stats  Stats
}

func NewTable(trie *attrib.Trie) *Table {
	return &Table{
		trie:   trie,
		blocks: make(map[cg.Addr]*Block),
	}
}

// Translated is called when the host translates the block at addr. A new
// record is created unless one is resident, in which case its instruction
// count must match.
func (t *Table) Translated(addr cg.Addr, instrCount int) (Handle, error) {
	if instrCount < 0 || instrCount > cg.MaxBlockInstrs {
		return Handle{}, common.NewConsistencyError(cg.ErrBlockSizeDiff,
			"block %#x translated with instruction count %d", uint64(addr), instrCount)
	}
	if b, ok := t.blocks[addr]; ok {
		if len(b.Instrs) != instrCount {
			return Handle{}, common.NewConsistencyError(cg.ErrBlockSizeDiff,
				"block %#x retranslated with %d instructions, was %d", uint64(addr), instrCount, len(b.Instrs))
		}
		t.stats.Retranslations++
		return Handle{b: b}, nil
	}

	b := &Block{
		Addr:   addr,
		Instrs: make([]Instr, instrCount),
	}
	t.blocks[addr] = b
	t.stats.Translations++
	return Handle{b: b, Fresh: true}, nil
}

// RecordInstruction fills slot of a fresh block and resolves its leaf, or
// checks slot of a retranslated block against what was first recorded.
func (t *Table) RecordInstruction(h Handle, slot int, addr cg.Addr, instrSize, dataSize int) error {
	b := h.b
	if b == nil {
		return common.NewConsistencyError(cg.ErrUnknownBlock, "instruction %#x recorded without a block", uint64(addr))
	}
	if t.blocks[b.Addr] != b {
		return common.NewConsistencyError(cg.ErrUnknownBlock,
			"instruction %#x recorded into discarded block %#x", uint64(addr), uint64(b.Addr))
	}
	if slot < 0 || slot >= len(b.Instrs) {
		return common.NewConsistencyError(cg.ErrBadSlot,
			"slot %d outside block %#x of %d instructions", slot, uint64(b.Addr), len(b.Instrs))
	}
	if !cg.IsValidDataSize(dataSize) {
		return common.NewConsistencyError(cg.ErrBadDataSize,
			"instruction %#x has data size %d", uint64(addr), dataSize)
	}

	in := &b.Instrs[slot]
	if !h.Fresh {
		if in.Addr != addr || in.InstrSize != instrSize || in.DataSize != dataSize {
			return common.NewConsistencyError(cg.ErrInstrMismatch,
				"block %#x slot %d: retranslated as (%#x, %d, %d), recorded as (%#x, %d, %d)",
				uint64(b.Addr), slot, uint64(addr), instrSize, dataSize, uint64(in.Addr), in.InstrSize, in.DataSize)
		}
		return nil
	}

	in.Addr = addr
	in.InstrSize = instrSize
	in.DataSize = dataSize
	in.Leaf = t.trie.ResolveLeaf(addr)
	t.stats.DistinctInstrs++
	return nil
}

// Discarded drops the record for addr. The host must discard exactly once
// per resident block.
func (t *Table) Discarded(addr cg.Addr) error {
	if _, ok := t.blocks[addr]; !ok {
		return common.NewConsistencyError(cg.ErrUnknownBlock, "discard of unknown block %#x", uint64(addr))
	}
	delete(t.blocks, addr)
	t.stats.Discards++
	return nil
}

// Lookup returns the resident record for addr.
func (t *Table) Lookup(addr cg.Addr) (*Block, bool) {
	b, ok := t.blocks[addr]
	return b, ok
}

// Instr returns the record of slot in the resident block at addr.
func (t *Table) Instr(addr cg.Addr, slot int) (*Instr, error) {
	b, ok := t.blocks[addr]
	if !ok {
		return nil, common.NewConsistencyError(cg.ErrUnknownBlock, "no resident block at %#x", uint64(addr))
	}
	if slot < 0 || slot >= len(b.Instrs) {
		return nil, common.NewConsistencyError(cg.ErrBadSlot,
			"slot %d outside block %#x of %d instructions", slot, uint64(addr), len(b.Instrs))
	}
	return &b.Instrs[slot], nil
}

// Resident returns the number of blocks currently in the table.
func (t *Table) Resident() int {
	return len(t.blocks)
}

func (t *Table) Stats() Stats {
	return t.stats
}
