// Package profiler ties the attribution and accounting components into the
// single context a host drives.
package profiler

import (
	"io"

	"github.com/janisozaur/valgrind/internal/account"
	"github.com/janisozaur/valgrind/internal/attrib"
	"github.com/janisozaur/valgrind/internal/blocks"
	"github.com/janisozaur/valgrind/internal/cacheconfig"
	"github.com/janisozaur/valgrind/internal/cachesim"
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
	"github.com/janisozaur/valgrind/internal/debuginfo"
	"github.com/janisozaur/valgrind/internal/report"
)

// Config describes a profiling context. Caches must already be validated.
type Config struct {
	Caches   cacheconfig.Caches
	Provider debuginfo.Provider
	// Simulator replaces the built-in cache hierarchy when set.
	Simulator account.Simulator
	Logger    common.Logger
}

// Context owns every piece of profiler state for one run. It is not safe
// for concurrent use; the host serializes all calls.
type Context struct {
	logger   common.Logger
	caches   *cachesim.Hierarchy
	resolver *attrib.Resolver
	trie     *attrib.Trie
	blocks   *blocks.Table
	acct     *account.Accountant
	finished bool
}

func New(cfg Config) (*Context, error) {
	if err := cacheconfig.CheckAll(cfg.Caches); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = common.NewNoOpLogger()
	}
	provider := cfg.Provider
	if provider == nil {
		provider = debuginfo.NewTable()
	}

	c := &Context{
		logger: logger,
		caches: cachesim.NewHierarchy(cfg.Caches),
	}
	c.resolver = attrib.NewResolver(provider)
	c.trie = attrib.NewTrie(c.resolver)
	c.blocks = blocks.NewTable(c.trie)

	var sim account.Simulator = c.caches
	if cfg.Simulator != nil {
		sim = cfg.Simulator
	}
	c.acct = account.New(sim, c.trie)
	return c, nil
}

func (c *Context) checkLive() error {
	if c.finished {
		return common.NewConsistencyError(cg.ErrAfterShutdown, "event after the report was written")
	}
	return nil
}

// BlockTranslated handles the host's block-translated notification.
func (c *Context) BlockTranslated(addr cg.Addr, instrCount int) (blocks.Handle, error) {
	if err := c.checkLive(); err != nil {
		return blocks.Handle{}, err
	}
	h, err := c.blocks.Translated(addr, instrCount)
	if err != nil {
		return h, err
	}
	if !h.Fresh {
		c.logger.Logf(common.SeverityDebug, "block %#x retranslated", uint64(addr))
	}
	return h, nil
}

// RecordInstruction describes slot of a block returned by BlockTranslated.
func (c *Context) RecordInstruction(h blocks.Handle, slot int, addr cg.Addr, instrSize, dataSize int) error {
	if err := c.checkLive(); err != nil {
		return err
	}
	return c.blocks.RecordInstruction(h, slot, addr, instrSize, dataSize)
}

// BlockDiscarded handles the host's block-discarded notification.
func (c *Context) BlockDiscarded(addr cg.Addr, size uint64) error {
	if err := c.checkLive(); err != nil {
		return err
	}
	if err := c.blocks.Discarded(addr); err != nil {
		return err
	}
	c.logger.Logf(common.SeverityDebug, "block %#x (%d bytes) discarded", uint64(addr), size)
	return nil
}

// Instr returns the record a host passes to the accounting entry points.
// Hosts resolve it once per instrumentation site, not per event.
func (c *Context) Instr(block cg.Addr, slot int) (*blocks.Instr, error) {
	in, err := c.blocks.Instr(block, slot)
	if err != nil {
		return nil, err
	}
	if !in.Leaf.Valid() {
		return nil, common.NewConsistencyError(cg.ErrBadSlot,
			"slot %d of block %#x was never recorded", slot, uint64(block))
	}
	return in, nil
}

// Fetch is the fetch-only entry point.
func (c *Context) Fetch(in *blocks.Instr) { c.acct.Fetch(in) }

// FetchRead is the fetch plus data read entry point.
func (c *Context) FetchRead(in *blocks.Instr, addr cg.Addr) { c.acct.FetchRead(in, addr) }

// FetchWrite is the fetch plus data write entry point.
func (c *Context) FetchWrite(in *blocks.Instr, addr cg.Addr) { c.acct.FetchWrite(in, addr) }

// FetchReadWrite is the fetch, read and write entry point for distinct
// read and write addresses.
func (c *Context) FetchReadWrite(in *blocks.Instr, readAddr, writeAddr cg.Addr) {
	c.acct.FetchReadWrite(in, readAddr, writeAddr)
}

// Trie exposes the attribution trie for inspection.
func (c *Context) Trie() *attrib.Trie {
	return c.trie
}

// Header returns the report header for a run of cmd.
func (c *Context) Header(cmd []string) report.Header {
	return report.Header{
		I1Desc: c.caches.Desc(cg.I1),
		D1Desc: c.caches.Desc(cg.D1),
		L2Desc: c.caches.Desc(cg.L2),
		Cmd:    cmd,
	}
}

// Stats returns the diagnostic counters.
func (c *Context) Stats() report.Stats {
	facets := c.resolver.Counts()
	bs := c.blocks.Stats()
	return report.Stats{
		DistinctFiles:  c.trie.Files(),
		DistinctFns:    c.trie.Functions(),
		DistinctLines:  c.trie.Lines(),
		DistinctInstrs: bs.DistinctInstrs,
		FullDebug:      facets[attrib.FacetFull],
		FileLineDebug:  facets[attrib.FacetFileLineOnly],
		FnDebug:        facets[attrib.FacetFunctionOnly],
		NoDebug:        facets[attrib.FacetNone],
		Retranslations: bs.Retranslations,
	}
}

// Finish writes the report to w and freezes the context. The totals are
// valid even when writing fails.
func (c *Context) Finish(w io.Writer, cmd []string) (report.Totals, error) {
	c.finished = true
	return report.Write(w, c.Header(cmd), c.trie)
}

// FinishFile is Finish into a newly created file at path.
func (c *Context) FinishFile(path string, cmd []string) (report.Totals, error) {
	c.finished = true
	return report.WriteFile(path, c.Header(cmd), c.trie)
}
