package cg

// Addresses

// Addr is a guest (instrumented program) address.
type Addr uint64

// Source attribution

const (
	// UnknownName replaces a file or function name the debug info could not supply.
	UnknownName = "???"

	// Bucket counts of the three attribution levels.
	NFileBuckets = 251
	NFnBuckets   = 53
	NLineBuckets = 37
)

// Cache geometry

// MinLineSize is the smallest accepted cache line. With 16 bytes no single
// instruction or data access can straddle more than two lines.
const MinLineSize = 16

// MaxBlockInstrs bounds the instruction count of one translated block.
const MaxBlockInstrs = 1 << 16

// CacheKind names one of the three simulated caches.
type CacheKind uint8

const (
	I1 CacheKind = iota
	D1
	L2
)

func (k CacheKind) String() string {
	switch k {
	case I1:
		return "I1"
	case D1:
		return "D1"
	case L2:
		return "L2"
	default:
		return "??"
	}
}

// IsValidDataSize reports whether size is a data access width the
// accounting path accepts. Zero means the instruction does not touch data.
func IsValidDataSize(size int) bool {
	switch size {
	case 0, 1, 2, 4, 8, 10, MinLineSize:
		return true
	}
	return false
}

// General Return and Error Codes

// Err represents a profiler error code.
type Err uint32

const (
	OK               Err = 0
	ErrFail          Err = 1
	ErrBadCacheOpt   Err = 2
	ErrCacheNotPow2  Err = 3
	ErrLineTooSmall  Err = 4
	ErrCacheTooSmall Err = 5
	ErrAssocTooLarge Err = 6
	ErrBlockSizeDiff Err = 7
	ErrInstrMismatch Err = 8
	ErrUnknownBlock  Err = 9
	ErrBadSlot       Err = 10
	ErrBadDataSize   Err = 11
	ErrReportOpen    Err = 12
	ErrReportWrite   Err = 13
	ErrReportParse   Err = 14
	ErrTraceParse    Err = 15
	ErrDebugInfo     Err = 16
	ErrAfterShutdown Err = 17
	ErrLast          Err = 18
)

// ErrSeverity used to indicate the severity of an error or logger verbosity
type ErrSeverity uint32

const (
	ErrSevNone  ErrSeverity = 0
	ErrSevError ErrSeverity = 1
	ErrSevWarn  ErrSeverity = 2
	ErrSevInfo  ErrSeverity = 3
)
