package debuginfo

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/janisozaur/valgrind/internal/cg"
)

// DefaultCacheSize is the number of addresses Cached remembers.
const DefaultCacheSize = 4096

// Cached memoizes a slower Provider (DWARF walks, symbol servers).
// Blocks translated again after a discard resolve the same addresses.
type Cached struct {
	p     Provider
	cache *lru.Cache[cg.Addr, Location]
}

func NewCached(p Provider, size int) (*Cached, error) {
	lcache, err := lru.New[cg.Addr, Location](size)
	if err != nil {
		return nil, err
	}
	return &Cached{
		p:     p,
		cache: lcache,
	}, nil
}

func (c *Cached) Resolve(addr cg.Addr) Location {
	if loc, ok := c.cache.Get(addr); ok {
		return loc
	}
	loc := c.p.Resolve(addr)
	c.cache.Add(addr, loc)
	return loc
}
