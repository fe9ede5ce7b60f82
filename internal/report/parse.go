package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/janisozaur/valgrind/internal/common"
	"github.com/pkg/errors"
)

func eventNames() []string {
	return strings.Fields(Events)
}

// Record is one line record with the file and function it was listed under.
type Record struct {
	File   string
	Fn     string
	Line   uint32
	Counts [9]uint64
}

// File is a parsed report.
type File struct {
	Header  Header
	Events  []string
	Records []Record
	Summary [9]uint64
}

// Sum adds up every record.
func (f *File) Sum() [9]uint64 {
	var s [9]uint64
	for _, r := range f.Records {
		for i, c := range r.Counts {
			s[i] += c
		}
	}
	return s
}

// Totals returns the summary line as Totals.
func (f *File) Totals() Totals {
	return TotalsFromCounts(f.Summary)
}

func parseErr(lineNo int, format string, args ...any) error {
	return errors.Wrapf(common.NewInputError(cg.ErrReportParse, format, args...), "line %d", lineNo)
}

func parseCounts(fields []string, lineNo int) ([9]uint64, error) {
	var c [9]uint64
	if len(fields) != 9 {
		return c, parseErr(lineNo, "expected 9 counters, got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return c, parseErr(lineNo, "bad counter %q", f)
		}
		c[i] = v
	}
	return c, nil
}

// Parse reads a report written by Write.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var (
		curFile    string
		curFn      string
		seenEvents bool
		seenSum    bool
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if seenSum {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, parseErr(lineNo, "content after summary line")
		}

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "desc: "):
			desc := strings.TrimPrefix(line, "desc: ")
			name, label, ok := strings.Cut(desc, " cache:")
			if !ok {
				return nil, parseErr(lineNo, "bad desc line")
			}
			label = strings.TrimLeft(label, " ")
			switch name {
			case "I1":
				f.Header.I1Desc = label
			case "D1":
				f.Header.D1Desc = label
			case "L2":
				f.Header.L2Desc = label
			default:
				return nil, parseErr(lineNo, "unknown cache %q", name)
			}
		case strings.HasPrefix(line, "cmd:"):
			f.Header.Cmd = strings.Fields(strings.TrimPrefix(line, "cmd:"))
		case strings.HasPrefix(line, "events:"):
			f.Events = strings.Fields(strings.TrimPrefix(line, "events:"))
			if len(f.Events) != 9 {
				return nil, parseErr(lineNo, "expected 9 events, got %d", len(f.Events))
			}
			seenEvents = true
		case strings.HasPrefix(line, "fl="):
			curFile = strings.TrimPrefix(line, "fl=")
			curFn = ""
		case strings.HasPrefix(line, "fn="):
			if curFile == "" {
				return nil, parseErr(lineNo, "fn= before fl=")
			}
			curFn = strings.TrimPrefix(line, "fn=")
		case strings.HasPrefix(line, "summary:"):
			c, err := parseCounts(strings.Fields(strings.TrimPrefix(line, "summary:")), lineNo)
			if err != nil {
				return nil, err
			}
			f.Summary = c
			seenSum = true
		default:
			if !seenEvents {
				return nil, parseErr(lineNo, "line record before events line")
			}
			if curFn == "" {
				return nil, parseErr(lineNo, "line record outside a function")
			}
			fields := strings.Fields(line)
			if len(fields) != 10 {
				return nil, parseErr(lineNo, "expected line number and 9 counters")
			}
			n, err := strconv.ParseUint(fields[0], 10, 32)
			if err != nil {
				return nil, parseErr(lineNo, "bad line number %q", fields[0])
			}
			c, err := parseCounts(fields[1:], lineNo)
			if err != nil {
				return nil, err
			}
			f.Records = append(f.Records, Record{File: curFile, Fn: curFn, Line: uint32(n), Counts: c})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read report")
	}
	if !seenSum {
		return nil, parseErr(lineNo, "missing summary line")
	}
	return f, nil
}
