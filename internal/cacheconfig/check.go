package cacheconfig

import (
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
)

func isPowerOfTwo(x int) bool {
	return x > 0 && x&(x-1) == 0
}

// Check validates one cache triple. The first failing rule is reported,
// naming the cache and the offending parameter.
func Check(name string, t Triple) error {
	if !isPowerOfTwo(t.Size) {
		return common.NewConfigError(cg.ErrCacheNotPow2,
			"%s size of %dB not a power of two", name, t.Size)
	}
	if !isPowerOfTwo(t.Assoc) {
		return common.NewConfigError(cg.ErrCacheNotPow2,
			"%s associativity of %d not a power of two", name, t.Assoc)
	}
	if !isPowerOfTwo(t.LineSize) {
		return common.NewConfigError(cg.ErrCacheNotPow2,
			"%s line size of %dB not a power of two", name, t.LineSize)
	}

	// smaller lines would let one instruction straddle three lines
	if t.LineSize < cg.MinLineSize {
		return common.NewConfigError(cg.ErrLineTooSmall,
			"%s line size of %dB too small", name, t.LineSize)
	}
	if t.Size <= t.LineSize {
		return common.NewConfigError(cg.ErrCacheTooSmall,
			"%s cache size of %dB <= line size of %dB", name, t.Size, t.LineSize)
	}
	if t.Assoc > t.Size/t.LineSize {
		return common.NewConfigError(cg.ErrAssocTooLarge,
			"%s associativity > (size / line size)", name)
	}
	return nil
}

// CheckAll validates the three caches in I1, D1, L2 order.
func CheckAll(c Caches) error {
	for _, kind := range []cg.CacheKind{cg.I1, cg.D1, cg.L2} {
		if err := Check(kind.String(), c.Get(kind)); err != nil {
			return err
		}
	}
	return nil
}
