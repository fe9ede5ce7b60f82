package profiler

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/janisozaur/valgrind/internal/attrib"
	"github.com/janisozaur/valgrind/internal/cacheconfig"
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
	"github.com/janisozaur/valgrind/internal/debuginfo"
	"github.com/janisozaur/valgrind/internal/report"
)

func newContext(t *testing.T) *Context {
	t.Helper()
	dbg := debuginfo.NewTable()
	dbg.AddLine(0x1000, 0x1004, "a.c", 10)
	dbg.AddFunc(0x1000, 0x1100, "f")
	ctx, err := New(Config{Caches: cacheconfig.Defaults, Provider: dbg})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ctx
}

func TestSingleFetchEndToEnd(t *testing.T) {
	ctx := newContext(t)

	h, err := ctx.BlockTranslated(0x1000, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.RecordInstruction(h, 0, 0x1000, 4, 0); err != nil {
		t.Fatal(err)
	}
	in, err := ctx.Instr(0x1000, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx.Fetch(in)

	leaf := ctx.Trie().Leaf(ctx.Trie().LeafFor("a.c", "f", 10))
	want := attrib.Leaf{Line: 10, Ir: attrib.CC{A: 1, M1: 1, M2: 1}}
	if leaf.Ir != want.Ir || leaf.Dr != want.Dr || leaf.Dw != want.Dw {
		t.Errorf("leaf = %+v", *leaf)
	}

	var buf bytes.Buffer
	totals, err := ctx.Finish(&buf, []string{"./a.out"})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "fl=a.c\n") != 1 || strings.Count(out, "fn=f\n") != 1 {
		t.Errorf("expected one fl=a.c and one fn=f:\n%s", out)
	}
	if !strings.Contains(out, "\n10 1 1 1 0 0 0 0 0 0\n") {
		t.Errorf("missing line record:\n%s", out)
	}
	if !strings.HasPrefix(out, "desc: I1 cache:         65536 B, 64 B, 2-way associative\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if totals.Ir.A != 1 {
		t.Errorf("totals = %+v", totals)
	}
}

func TestEventsAfterFinishFail(t *testing.T) {
	ctx := newContext(t)
	if _, err := ctx.Finish(&bytes.Buffer{}, nil); err != nil {
		t.Fatal(err)
	}
	_, err := ctx.BlockTranslated(0x1000, 1)
	if !errors.Is(err, common.NewError(common.KindConsistency, cg.ErrAfterShutdown)) {
		t.Errorf("BlockTranslated after Finish = %v", err)
	}
	if err := ctx.BlockDiscarded(0x1000, 4); !common.IsConsistency(err) {
		t.Errorf("BlockDiscarded after Finish = %v", err)
	}
}

func TestInstrNeverRecorded(t *testing.T) {
	ctx := newContext(t)
	if _, err := ctx.BlockTranslated(0x1000, 2); err != nil {
		t.Fatal(err)
	}
	_, err := ctx.Instr(0x1000, 1)
	if !errors.Is(err, common.NewError(common.KindConsistency, cg.ErrBadSlot)) {
		t.Errorf("Instr() on an unrecorded slot = %v", err)
	}
}

func TestConsistencyErrorsSurface(t *testing.T) {
	ctx := newContext(t)
	if _, err := ctx.BlockTranslated(0x1000, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.BlockTranslated(0x1000, 2); !common.IsConsistency(err) {
		t.Errorf("size mismatch = %v", err)
	}
	if err := ctx.BlockDiscarded(0x2000, 4); !common.IsConsistency(err) {
		t.Errorf("unknown discard = %v", err)
	}
}

func TestNewRejectsBadCaches(t *testing.T) {
	caches := cacheconfig.Defaults
	caches.D1 = cacheconfig.Triple{Size: 4096, Assoc: 3, LineSize: 32}
	if _, err := New(Config{Caches: caches}); !common.IsConfig(err) {
		t.Errorf("New() error = %v, want configuration error", err)
	}
}

type missAll struct{}

func (missAll) SimulateAccess(cg.CacheKind, cg.Addr, int) (bool, bool) { return true, true }

func TestStatsAndCustomSimulator(t *testing.T) {
	dbg := debuginfo.NewTable()
	dbg.AddLine(0x1000, 0x1004, "a.c", 1)
	dbg.AddFunc(0x1000, 0x1004, "f")
	dbg.AddLine(0x1004, 0x1008, "a.c", 2)
	dbg.AddFunc(0x100c, 0x1010, "g")
	ctx, err := New(Config{Caches: cacheconfig.Defaults, Provider: dbg, Simulator: missAll{}})
	if err != nil {
		t.Fatal(err)
	}

	h, _ := ctx.BlockTranslated(0x1000, 4)
	for i := 0; i < 4; i++ {
		if err := ctx.RecordInstruction(h, i, cg.Addr(0x1000+4*i), 4, 4); err != nil {
			t.Fatal(err)
		}
	}
	// retranslation is validated, not re-resolved
	h, _ = ctx.BlockTranslated(0x1000, 4)
	for i := 0; i < 4; i++ {
		if err := ctx.RecordInstruction(h, i, cg.Addr(0x1000+4*i), 4, 4); err != nil {
			t.Fatal(err)
		}
	}

	in, _ := ctx.Instr(0x1000, 0)
	ctx.FetchReadWrite(in, 0x8000, 0x9000)

	got := ctx.Stats()
	want := report.Stats{
		DistinctFiles:  2,
		DistinctFns:    4,
		DistinctLines:  4,
		DistinctInstrs: 4,
		FullDebug:      1,
		FileLineDebug:  1,
		FnDebug:        1,
		NoDebug:        1,
		Retranslations: 1,
	}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	leaf := ctx.Trie().Leaf(in.Leaf)
	if leaf.Dr.M2 != 1 || leaf.Dw.M2 != 1 || leaf.Ir.M2 != 1 {
		t.Errorf("custom simulator not used: %+v", *leaf)
	}
}
