package debuginfo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/janisozaur/valgrind/internal/cg"
)

func TestTableResolve(t *testing.T) {
	tbl := NewTable()
	tbl.AddLine(0x1000, 0x1004, "a.c", 10)
	tbl.AddLine(0x1004, 0x1010, "a.c", 11)
	tbl.AddLine(0x2000, 0x2008, "b.c", 3)
	tbl.AddFunc(0x1000, 0x1010, "f")
	tbl.AddFunc(0x3000, 0x3100, "stripped")

	tests := []struct {
		name string
		addr cg.Addr
		want Location
	}{
		{
			name: "full",
			addr: 0x1000,
			want: Location{File: "a.c", Function: "f", Line: 10, FoundFileLine: true, FoundFunction: true},
		},
		{
			name: "second line",
			addr: 0x100f,
			want: Location{File: "a.c", Function: "f", Line: 11, FoundFileLine: true, FoundFunction: true},
		},
		{
			name: "file line only",
			addr: 0x2004,
			want: Location{File: "b.c", Line: 3, FoundFileLine: true},
		},
		{
			name: "function only",
			addr: 0x3050,
			want: Location{Function: "stripped", FoundFunction: true},
		},
		{
			name: "nothing",
			addr: 0x1010,
			want: Location{},
		},
		{
			name: "below all ranges",
			addr: 0x10,
			want: Location{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tbl.Resolve(tt.addr)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve(%#x) mismatch (-want +got):\n%s", tt.addr, diff)
			}
		})
	}
}

func TestTableNestedFunctions(t *testing.T) {
	tbl := NewTable()
	tbl.AddFunc(0x1000, 0x1100, "outer")
	tbl.AddFunc(0x1040, 0x1060, "inlined")

	if got := tbl.Resolve(0x1050).Function; got != "inlined" {
		t.Errorf("inner range: got %q, want inlined", got)
	}
	if got := tbl.Resolve(0x1080).Function; got != "outer" {
		t.Errorf("after inner range: got %q, want outer", got)
	}
}

func TestTableOverlappingLines(t *testing.T) {
	tbl := NewTable()
	tbl.AddLine(0, 100, "a.c", 1)
	tbl.AddLine(10, 20, "a.c", 2)
	tbl.AddLine(200, 210, "b.c", 3)

	tests := []struct {
		addr  cg.Addr
		line  uint32
		found bool
	}{
		{5, 1, true},
		{15, 2, true},
		{50, 1, true},
		{100, 0, false},
		{205, 3, true},
		{300, 0, false},
	}
	for _, tt := range tests {
		loc := tbl.Resolve(tt.addr)
		if loc.FoundFileLine != tt.found || loc.Line != tt.line {
			t.Errorf("Resolve(%d) = line %d found %v, want line %d found %v",
				tt.addr, loc.Line, loc.FoundFileLine, tt.line, tt.found)
		}
	}

	// ranges added after a lookup are seen by the next one
	tbl.AddLine(60, 70, "a.c", 4)
	if got := tbl.Resolve(65).Line; got != 4 {
		t.Errorf("Resolve(65) after AddLine = line %d, want 4", got)
	}
}

func TestTableIgnoresEmptyRanges(t *testing.T) {
	tbl := NewTable()
	tbl.AddLine(0x10, 0x10, "a.c", 1)
	tbl.AddFunc(0x20, 0x10, "f")
	lines, funcs := tbl.Len()
	if lines != 0 || funcs != 0 {
		t.Errorf("Len() = %d, %d; want 0, 0", lines, funcs)
	}
}

type countingProvider struct {
	calls int
	loc   Location
}

func (c *countingProvider) Resolve(addr cg.Addr) Location {
	c.calls++
	return c.loc
}

func TestCached(t *testing.T) {
	inner := &countingProvider{loc: Location{File: "a.c", Line: 1, FoundFileLine: true}}
	c, err := NewCached(inner, 2)
	if err != nil {
		t.Fatalf("NewCached() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if got := c.Resolve(0x1000); got != inner.loc {
			t.Fatalf("Resolve() = %+v", got)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner provider called %d times, want 1", inner.calls)
	}

	// size 2: a third address evicts the least recently used
	c.Resolve(0x2000)
	c.Resolve(0x3000)
	c.Resolve(0x1000)
	if inner.calls != 4 {
		t.Errorf("after eviction inner provider called %d times, want 4", inner.calls)
	}
}

func TestNewCachedBadSize(t *testing.T) {
	if _, err := NewCached(NewTable(), 0); err == nil {
		t.Error("NewCached(size 0) should fail")
	}
}

func TestLoadELFMissingFile(t *testing.T) {
	if _, err := LoadELF("testdata/does-not-exist"); err == nil {
		t.Error("LoadELF on a missing file should fail")
	}
}

func TestLoadMachOMissingFile(t *testing.T) {
	if _, err := LoadMachO("testdata/does-not-exist"); err == nil {
		t.Error("LoadMachO on a missing file should fail")
	}
}
