// Package cacheconfig resolves and validates the I1/D1/L2 cache geometry.
package cacheconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
)

// Triple is the geometry of one cache. -1 in a field means unset.
type Triple struct {
	Size     int `yaml:"size"`
	Assoc    int `yaml:"assoc"`
	LineSize int `yaml:"line_size"`
}

// Unset is a triple the user did not specify.
var Unset = Triple{Size: -1, Assoc: -1, LineSize: -1}

// Defined reports whether any field of t was set.
func (t Triple) Defined() bool {
	return t.Size != -1 || t.Assoc != -1 || t.LineSize != -1
}

func (t Triple) String() string {
	return fmt.Sprintf("%dB, %d-way, %dB lines", t.Size, t.Assoc, t.LineSize)
}

// Caches is the configuration of the whole hierarchy.
type Caches struct {
	I1 Triple `yaml:"I1"`
	D1 Triple `yaml:"D1"`
	L2 Triple `yaml:"L2"`
}

// UnsetCaches has no cache specified.
var UnsetCaches = Caches{I1: Unset, D1: Unset, L2: Unset}

// Get returns the triple for kind.
func (c Caches) Get(kind cg.CacheKind) Triple {
	switch kind {
	case cg.I1:
		return c.I1
	case cg.D1:
		return c.D1
	default:
		return c.L2
	}
}

// ParseTriple parses "<size>,<assoc>,<line_size>": three runs of decimal
// digits separated by single commas, nothing else.
func ParseTriple(opt string) (Triple, error) {
	fields := strings.Split(opt, ",")
	if len(fields) != 3 {
		return Unset, badOption(opt)
	}

	var vals [3]int
	for i, f := range fields {
		if f == "" {
			return Unset, badOption(opt)
		}
		for j := 0; j < len(f); j++ {
			if f[j] < '0' || f[j] > '9' {
				return Unset, badOption(opt)
			}
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return Unset, badOption(opt)
		}
		vals[i] = v
	}
	return Triple{Size: vals[0], Assoc: vals[1], LineSize: vals[2]}, nil
}

func badOption(opt string) error {
	return common.NewConfigError(cg.ErrBadCacheOpt, "bad cache option %q", opt)
}
