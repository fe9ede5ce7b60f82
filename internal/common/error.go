package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/janisozaur/valgrind/internal/cg"
)

// Kind separates the failure classes the profiler distinguishes.
type Kind int

const (
	// KindConfig is a bad user option or cache geometry. Fatal before startup.
	KindConfig Kind = iota + 1
	// KindConsistency is a violated host contract. Fatal, never repaired.
	KindConsistency
	// KindResource is an I/O failure at shutdown. Reported as a warning.
	KindResource
	// KindInput is malformed external input (event traces, saved reports).
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindConsistency:
		return "consistency"
	case KindResource:
		return "resource"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// Error represents the profiler error object.
type Error struct {
	Code    cg.Err
	Sev     cg.ErrSeverity
	Kind    Kind
	Message string
	cause   error
}

func NewError(kind Kind, code cg.Err) *Error {
	return &Error{
		Code: code,
		Sev:  sevForKind(kind),
		Kind: kind,
	}
}

func NewErrorMsg(kind Kind, code cg.Err, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sevForKind(kind),
		Kind:    kind,
		Message: msg,
	}
}

// NewConfigError builds a fatal configuration error.
func NewConfigError(code cg.Err, format string, args ...any) *Error {
	return NewErrorMsg(KindConfig, code, fmt.Sprintf(format, args...))
}

// NewConsistencyError builds a host contract violation.
func NewConsistencyError(code cg.Err, format string, args ...any) *Error {
	return NewErrorMsg(KindConsistency, code, fmt.Sprintf(format, args...))
}

// NewResourceError wraps an I/O failure.
func NewResourceError(code cg.Err, cause error, msg string) *Error {
	e := NewErrorMsg(KindResource, code, msg)
	e.cause = cause
	return e
}

// NewInputError builds a malformed-input error.
func NewInputError(code cg.Err, format string, args ...any) *Error {
	return NewErrorMsg(KindInput, code, fmt.Sprintf(format, args...))
}

func sevForKind(kind Kind) cg.ErrSeverity {
	if kind == KindResource {
		return cg.ErrSevWarn
	}
	return cg.ErrSevError
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch e.Sev {
	case cg.ErrSevError:
		sb.WriteString("ERROR:")
	case cg.ErrSevWarn:
		sb.WriteString("WARN :")
	case cg.ErrSevInfo:
		sb.WriteString("INFO :")
	default:
		return "INTERNAL ERROR: Invalid Error Object"
	}

	sb.WriteString(fmt.Sprintf("0x%04x ", uint32(e.Code)))

	if desc, ok := errorCodeDesc[e.Code]; ok {
		sb.WriteString(fmt.Sprintf("(%s) [%s]; ", desc.name, desc.msg))
	} else {
		sb.WriteString("(unknown); ")
	}

	sb.WriteString(e.Message)
	if e.cause != nil {
		if e.Message != "" {
			sb.WriteString(": ")
		}
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error with the same code, so callers can test
// against sentinel values built with NewError.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsConfig(err error) bool      { return KindOf(err) == KindConfig }
func IsConsistency(err error) bool { return KindOf(err) == KindConsistency }
func IsResource(err error) bool    { return KindOf(err) == KindResource }

type errDesc struct {
	name string
	msg  string
}

var errorCodeDesc = map[cg.Err]errDesc{
	cg.OK:               {"CG_OK", "No Error."},
	cg.ErrFail:          {"CG_ERR_FAIL", "General failure."},
	cg.ErrBadCacheOpt:   {"CG_ERR_BAD_CACHE_OPT", "Malformed cache option, expected <size>,<assoc>,<line_size>."},
	cg.ErrCacheNotPow2:  {"CG_ERR_CACHE_NOT_POW2", "Cache parameter is not a power of two."},
	cg.ErrLineTooSmall:  {"CG_ERR_LINE_TOO_SMALL", "Cache line size below the minimum."},
	cg.ErrCacheTooSmall: {"CG_ERR_CACHE_TOO_SMALL", "Cache size not larger than line size."},
	cg.ErrAssocTooLarge: {"CG_ERR_ASSOC_TOO_LARGE", "Associativity exceeds size / line size."},
	cg.ErrBlockSizeDiff: {"CG_ERR_BLOCK_SIZE_DIFF", "Retranslated block has a different instruction count."},
	cg.ErrInstrMismatch: {"CG_ERR_INSTR_MISMATCH", "Retranslated instruction differs from its first recording."},
	cg.ErrUnknownBlock:  {"CG_ERR_UNKNOWN_BLOCK", "No block record for address."},
	cg.ErrBadSlot:       {"CG_ERR_BAD_SLOT", "Instruction slot outside the block."},
	cg.ErrBadDataSize:   {"CG_ERR_BAD_DATA_SIZE", "Unsupported data access size."},
	cg.ErrReportOpen:    {"CG_ERR_REPORT_OPEN", "Cannot open profile output file."},
	cg.ErrReportWrite:   {"CG_ERR_REPORT_WRITE", "Cannot write profile output file."},
	cg.ErrReportParse:   {"CG_ERR_REPORT_PARSE", "Profile output file parse error."},
	cg.ErrTraceParse:    {"CG_ERR_TRACE_PARSE", "Event trace parse error."},
	cg.ErrDebugInfo:     {"CG_ERR_DEBUG_INFO", "Cannot load debug information."},
	cg.ErrAfterShutdown: {"CG_ERR_AFTER_SHUTDOWN", "Profiler used after the report was written."},
	cg.ErrLast:          {"CG_ERR_LAST", "No error - error code end marker"},
}
