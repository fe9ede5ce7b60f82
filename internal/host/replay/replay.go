// Package replay is an instrumentation host that drives the profiler from a
// recorded text trace of block and access events.
//
// One event per line, '#' starts a comment, numbers are decimal or 0x hex:
//
//	T <block> <instr_count>                     block translated
//	I <slot> <addr> <instr_size> <data_size>    instruction of the last T block
//	D <block> <size>                            block discarded
//	X <block> <slot>                            fetch
//	R <block> <slot> <addr>                     fetch + read
//	W <block> <slot> <addr>                     fetch + write
//	M <block> <slot> <read_addr> <write_addr>   fetch + read + write
//	S <lo> <hi> <file> <fn> <line>              debug info for [lo, hi)
//
// In S rows "-" is an unknown file or function and line 0 is no line info.
package replay

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/janisozaur/valgrind/internal/blocks"
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
	"github.com/janisozaur/valgrind/internal/debuginfo"
	"github.com/pkg/errors"
)

// Tool is the profiler as seen by the host.
type Tool interface {
	BlockTranslated(addr cg.Addr, instrCount int) (blocks.Handle, error)
	RecordInstruction(h blocks.Handle, slot int, addr cg.Addr, instrSize, dataSize int) error
	BlockDiscarded(addr cg.Addr, size uint64) error
	Instr(block cg.Addr, slot int) (*blocks.Instr, error)
	Fetch(in *blocks.Instr)
	FetchRead(in *blocks.Instr, addr cg.Addr)
	FetchWrite(in *blocks.Instr, addr cg.Addr)
	FetchReadWrite(in *blocks.Instr, readAddr, writeAddr cg.Addr)
}

// Stats counts replayed events by type.
type Stats struct {
	Lines        int
	Translations int
	Instructions int
	Discards     int
	Accesses     int
	Symbols      int
}

// Replayer feeds trace events to a Tool. S rows go to Symbols, which may
// or may not be the Tool's debug-info provider.
type Replayer struct {
	tool    Tool
	symbols *debuginfo.Table
	last    blocks.Handle
	haveT   bool
	stats   Stats
}

func New(tool Tool, symbols *debuginfo.Table) *Replayer {
	if symbols == nil {
		symbols = debuginfo.NewTable()
	}
	return &Replayer{tool: tool, symbols: symbols}
}

func (r *Replayer) Stats() Stats {
	return r.stats
}

// Replay processes every event in rd. It stops at the first error, which
// carries the trace line number.
func (r *Replayer) Replay(rd io.Reader) error {
	scanner := bufio.NewScanner(rd)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		r.stats.Lines++
		if err := r.event(fields); err != nil {
			return errors.Wrapf(err, "trace line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "failed to read trace")
	}
	return nil
}

var arity = map[string]int{
	"T": 2, "I": 4, "D": 2, "X": 2, "R": 3, "W": 3, "M": 4, "S": 5,
}

func (r *Replayer) event(fields []string) error {
	op := fields[0]
	want, ok := arity[op]
	if !ok {
		return common.NewInputError(cg.ErrTraceParse, "unknown event %q", op)
	}
	if len(fields)-1 != want {
		return common.NewInputError(cg.ErrTraceParse, "event %s takes %d arguments, got %d", op, want, len(fields)-1)
	}
	args := fields[1:]

	if op == "S" {
		return r.symbol(args)
	}

	nums := make([]uint64, len(args))
	for i, a := range args {
		v, err := parseNum(a, 64)
		if err != nil {
			return err
		}
		nums[i] = v
	}

	switch op {
	case "T":
		if nums[1] > cg.MaxBlockInstrs {
			return common.NewInputError(cg.ErrTraceParse, "block of %d instructions", nums[1])
		}
		n := int(nums[1])
		h, err := r.tool.BlockTranslated(cg.Addr(nums[0]), n)
		if err != nil {
			return err
		}
		r.last, r.haveT = h, true
		r.stats.Translations++
		return nil
	case "I":
		if !r.haveT {
			return common.NewInputError(cg.ErrTraceParse, "instruction before any block")
		}
		slot, err := count(nums[0], "slot")
		if err != nil {
			return err
		}
		isize, err := count(nums[2], "instruction size")
		if err != nil {
			return err
		}
		dsize, err := count(nums[3], "data size")
		if err != nil {
			return err
		}
		r.stats.Instructions++
		return r.tool.RecordInstruction(r.last, slot, cg.Addr(nums[1]), isize, dsize)
	case "D":
		r.stats.Discards++
		return r.tool.BlockDiscarded(cg.Addr(nums[0]), nums[1])
	}

	slot, err := count(nums[1], "slot")
	if err != nil {
		return err
	}
	in, err := r.tool.Instr(cg.Addr(nums[0]), slot)
	if err != nil {
		return err
	}
	r.stats.Accesses++
	switch op {
	case "X":
		r.tool.Fetch(in)
	case "R":
		r.tool.FetchRead(in, cg.Addr(nums[2]))
	case "W":
		r.tool.FetchWrite(in, cg.Addr(nums[2]))
	case "M":
		// one access when both sides hit the same address
		if nums[2] == nums[3] {
			r.tool.FetchRead(in, cg.Addr(nums[2]))
		} else {
			r.tool.FetchReadWrite(in, cg.Addr(nums[2]), cg.Addr(nums[3]))
		}
	}
	return nil
}

func (r *Replayer) symbol(args []string) error {
	lo, err := parseNum(args[0], 64)
	if err != nil {
		return err
	}
	hi, err := parseNum(args[1], 64)
	if err != nil {
		return err
	}
	line, err := parseNum(args[4], 32)
	if err != nil {
		return err
	}
	if hi <= lo {
		return common.NewInputError(cg.ErrTraceParse, "empty symbol range [%#x, %#x)", lo, hi)
	}

	file, fn := args[2], args[3]
	if file != "-" {
		r.symbols.AddLine(cg.Addr(lo), cg.Addr(hi), file, uint32(line))
	}
	if fn != "-" {
		r.symbols.AddFunc(cg.Addr(lo), cg.Addr(hi), fn)
	}
	r.stats.Symbols++
	return nil
}

// maxCount bounds slots and sizes read from a trace.
const maxCount = math.MaxInt32

func count(v uint64, what string) (int, error) {
	if v > maxCount {
		return 0, common.NewInputError(cg.ErrTraceParse, "%s %d out of range", what, v)
	}
	return int(v), nil
}

// parseNum reads an unsigned number of at most bits bits.
func parseNum(s string, bits int) (uint64, error) {
	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, bits)
	} else {
		v, err = strconv.ParseUint(s, 10, bits)
	}
	if err != nil {
		return 0, common.NewInputError(cg.ErrTraceParse, "bad number %q", s)
	}
	return v, nil
}
