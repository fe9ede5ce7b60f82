// Package cachesim is a set-associative I1/D1/L2 cache simulator built on
// the akita cache directory with LRU replacement.
package cachesim

import (
	"fmt"

	"github.com/janisozaur/valgrind/internal/cacheconfig"
	"github.com/janisozaur/valgrind/internal/cg"
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Cache tracks tags only; no data is stored.
type Cache struct {
	kind      cg.CacheKind
	geom      cacheconfig.Triple
	lineMask  uint64
	directory *akitacache.DirectoryImpl
	desc      string
}

// New creates an empty cache. geom must already have passed
// cacheconfig.Check.
func New(kind cg.CacheKind, geom cacheconfig.Triple) *Cache {
	numSets := geom.Size / (geom.Assoc * geom.LineSize)
	return &Cache{
		kind:     kind,
		geom:     geom,
		lineMask: ^uint64(geom.LineSize - 1),
		directory: akitacache.NewDirectory(
			numSets,
			geom.Assoc,
			geom.LineSize,
			akitacache.NewLRUVictimFinder(),
		),
		desc: describe(geom),
	}
}

func describe(g cacheconfig.Triple) string {
	switch {
	case g.Assoc == 1:
		return fmt.Sprintf("%d B, %d B, direct-mapped", g.Size, g.LineSize)
	case g.Assoc == g.Size/g.LineSize:
		return fmt.Sprintf("%d B, %d B, fully associative", g.Size, g.LineSize)
	default:
		return fmt.Sprintf("%d B, %d B, %d-way associative", g.Size, g.LineSize, g.Assoc)
	}
}

// Desc is the label written to the report's desc: lines.
func (c *Cache) Desc() string {
	return c.desc
}

func (c *Cache) Kind() cg.CacheKind {
	return c.kind
}

func (c *Cache) Geometry() cacheconfig.Triple {
	return c.geom
}

// touch references one line and reports a miss. On a miss the line is
// filled over the set's LRU victim.
func (c *Cache) touch(tag uint64) bool {
	if block := c.directory.Lookup(0, tag); block != nil {
		c.directory.Visit(block)
		return false
	}
	victim := c.directory.FindVictim(tag)
	victim.Tag = tag
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)
	return true
}

// Ref simulates an access of size bytes at addr and reports a miss. An
// access spanning two lines touches both and misses if either does.
func (c *Cache) Ref(addr cg.Addr, size int) bool {
	if size < 1 {
		size = 1
	}
	first := uint64(addr) & c.lineMask
	last := (uint64(addr) + uint64(size) - 1) & c.lineMask

	miss := c.touch(first)
	if last != first {
		if c.touch(last) {
			miss = true
		}
	}
	return miss
}

// Hierarchy is two first-level caches backed by a unified L2.
type Hierarchy struct {
	I1 *Cache
	D1 *Cache
	L2 *Cache
}

func NewHierarchy(cfg cacheconfig.Caches) *Hierarchy {
	return &Hierarchy{
		I1: New(cg.I1, cfg.I1),
		D1: New(cg.D1, cfg.D1),
		L2: New(cg.L2, cfg.L2),
	}
}

// SimulateAccess references addr in I1 or D1, going to L2 only on an L1 miss.
func (h *Hierarchy) SimulateAccess(kind cg.CacheKind, addr cg.Addr, size int) (l1Miss, l2Miss bool) {
	l1 := h.D1
	if kind == cg.I1 {
		l1 = h.I1
	}
	if !l1.Ref(addr, size) {
		return false, false
	}
	return true, h.L2.Ref(addr, size)
}

// Desc returns the label of one cache.
func (h *Hierarchy) Desc(kind cg.CacheKind) string {
	switch kind {
	case cg.I1:
		return h.I1.Desc()
	case cg.D1:
		return h.D1.Desc()
	default:
		return h.L2.Desc()
	}
}
