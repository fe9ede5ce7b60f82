package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/janisozaur/valgrind/internal/cg"
	pkgerrors "github.com/pkg/errors"
)

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "Invalid SevNone",
			err:      &Error{Code: cg.OK},
			expected: "INTERNAL ERROR: Invalid Error Object",
		},
		{
			name:     "Config basic",
			err:      NewError(KindConfig, cg.ErrFail),
			expected: "ERROR:0x0001 (CG_ERR_FAIL) [General failure.]; ",
		},
		{
			name:     "Config with msg",
			err:      NewConfigError(cg.ErrCacheNotPow2, "I1 associativity of %d not a power of two", 3),
			expected: "ERROR:0x0003 (CG_ERR_CACHE_NOT_POW2) [Cache parameter is not a power of two.]; I1 associativity of 3 not a power of two",
		},
		{
			name:     "Resource is a warning",
			err:      NewResourceError(cg.ErrReportOpen, errors.New("permission denied"), "cachegrind.out.1"),
			expected: "WARN :0x000c (CG_ERR_REPORT_OPEN) [Cannot open profile output file.]; cachegrind.out.1: permission denied",
		},
		{
			name:     "Unknown error code",
			err:      NewError(KindConsistency, 9999),
			expected: "ERROR:0x270f (unknown); ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.err.Error()
			if got != tc.expected {
				t.Errorf("Expected string: %q, got: %q", tc.expected, got)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	cfg := NewConfigError(cg.ErrBadCacheOpt, "bad")
	cons := NewConsistencyError(cg.ErrBlockSizeDiff, "bad")
	res := NewResourceError(cg.ErrReportWrite, errors.New("disk full"), "out")

	if !IsConfig(cfg) || IsConsistency(cfg) {
		t.Errorf("config error misclassified: %v", KindOf(cfg))
	}
	if !IsConsistency(cons) || IsConfig(cons) {
		t.Errorf("consistency error misclassified: %v", KindOf(cons))
	}
	if !IsResource(res) {
		t.Errorf("resource error misclassified: %v", KindOf(res))
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("plain error should have no kind")
	}

	// kinds survive wrapping
	wrapped := pkgerrors.Wrap(cons, "trace line 7")
	if !IsConsistency(wrapped) {
		t.Error("pkg/errors wrap lost the kind")
	}
	wrapped2 := fmt.Errorf("replay: %w", cfg)
	if !IsConfig(wrapped2) {
		t.Error("fmt wrap lost the kind")
	}
}

func TestErrorIsByCode(t *testing.T) {
	err := NewConsistencyError(cg.ErrUnknownBlock, "no block at 0x1000")
	if !errors.Is(err, NewError(KindConsistency, cg.ErrUnknownBlock)) {
		t.Error("errors.Is should match on code")
	}
	if errors.Is(err, NewError(KindConsistency, cg.ErrBadSlot)) {
		t.Error("errors.Is matched a different code")
	}

	cause := errors.New("no space left on device")
	res := NewResourceError(cg.ErrReportWrite, cause, "out")
	if !errors.Is(res, cause) {
		t.Error("resource error should unwrap to its cause")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindConfig, "configuration"},
		{KindConsistency, "consistency"},
		{KindResource, "resource"},
		{KindInput, "input"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
