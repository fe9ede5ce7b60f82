package cacheconfig

import (
	"github.com/klauspost/cpuid/v2"
)

// Defaults are used when detection is unavailable or yields a geometry
// that does not validate.
var Defaults = Caches{
	I1: Triple{Size: 65536, Assoc: 2, LineSize: 64},
	D1: Triple{Size: 65536, Assoc: 2, LineSize: 64},
	L2: Triple{Size: 262144, Assoc: 8, LineSize: 64},
}

// Detector supplies the host's cache geometry. When skip is set every
// cache was given by the user and detection may return Defaults.
type Detector interface {
	Detect(skip bool) Caches
}

// StaticDetector always answers with the same configuration.
type StaticDetector Caches

func (s StaticDetector) Detect(bool) Caches {
	return Caches(s)
}

// CPUIDDetector reads cache sizes and line size from cpuid. cpuid does not
// report associativity, so the Assoc fields come from Assoc.
type CPUIDDetector struct {
	Assoc Caches
}

// NewCPUIDDetector uses the associativity of Defaults.
func NewCPUIDDetector() *CPUIDDetector {
	return &CPUIDDetector{Assoc: Defaults}
}

func (d *CPUIDDetector) Detect(skip bool) Caches {
	if skip {
		return Defaults
	}

	line := cpuid.CPU.CacheLine
	if line <= 0 {
		return Defaults
	}

	pick := func(size int, assoc int, def Triple) Triple {
		if size <= 0 {
			return def
		}
		return orDefault(Triple{Size: size, Assoc: assoc, LineSize: line}, def)
	}

	return Caches{
		I1: pick(cpuid.CPU.Cache.L1I, d.Assoc.I1.Assoc, Defaults.I1),
		D1: pick(cpuid.CPU.Cache.L1D, d.Assoc.D1.Assoc, Defaults.D1),
		L2: pick(cpuid.CPU.Cache.L2, d.Assoc.L2.Assoc, Defaults.L2),
	}
}

// orDefault replaces a cpuid geometry the simulator cannot model, such as
// a 48K 12-way L1, with def.
func orDefault(t, def Triple) Triple {
	if Check("", t) != nil {
		return def
	}
	return t
}
