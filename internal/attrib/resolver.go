// Package attrib attributes instruction addresses to per-source-line counters.
package attrib

import (
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/debuginfo"
)

// Facet records which debug-info components were available for an address.
type Facet int

const (
	FacetFull Facet = iota
	FacetFileLineOnly
	FacetFunctionOnly
	FacetNone
	numFacets
)

func (f Facet) String() string {
	switch f {
	case FacetFull:
		return "file/line/fn"
	case FacetFileLineOnly:
		return "file/line"
	case FacetFunctionOnly:
		return "fn"
	case FacetNone:
		return "no debug info"
	default:
		return "unknown"
	}
}

// Resolved is a normalized source location. Missing names are cg.UnknownName
// and a missing line is 0.
type Resolved struct {
	File     string
	Function string
	Line     uint32
	Facet    Facet
}

// FacetCounts is the number of resolutions per facet.
type FacetCounts [numFacets]uint64

// Total returns the number of resolutions.
func (fc FacetCounts) Total() uint64 {
	var n uint64
	for _, c := range fc {
		n += c
	}
	return n
}

// Resolver wraps a debug-info Provider, substituting sentinels for missing
// components and counting facets.
type Resolver struct {
	p      debuginfo.Provider
	counts FacetCounts
}

func NewResolver(p debuginfo.Provider) *Resolver {
	return &Resolver{p: p}
}

// Resolve never fails.
func (r *Resolver) Resolve(addr cg.Addr) Resolved {
	loc := r.p.Resolve(addr)

	res := Resolved{
		File:     cg.UnknownName,
		Function: cg.UnknownName,
	}
	if loc.FoundFileLine {
		res.File = loc.File
		res.Line = loc.Line
	}
	if loc.FoundFunction {
		res.Function = loc.Function
	}

	switch {
	case loc.FoundFileLine && loc.FoundFunction:
		res.Facet = FacetFull
	case loc.FoundFileLine:
		res.Facet = FacetFileLineOnly
	case loc.FoundFunction:
		res.Facet = FacetFunctionOnly
	default:
		res.Facet = FacetNone
	}
	r.counts[res.Facet]++
	return res
}

// Counts returns the facet distribution so far.
func (r *Resolver) Counts() FacetCounts {
	return r.counts
}
