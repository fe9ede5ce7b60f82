// Package driver runs one profiling session: cache configuration, event
// replay, report file, summary and statistics.
package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/janisozaur/valgrind/internal/cacheconfig"
	"github.com/janisozaur/valgrind/internal/common"
	"github.com/janisozaur/valgrind/internal/debuginfo"
	"github.com/janisozaur/valgrind/internal/host/replay"
	"github.com/janisozaur/valgrind/internal/profiler"
	"github.com/janisozaur/valgrind/internal/report"
	"github.com/pkg/errors"
)

// Config mirrors the command line of the run subcommand.
type Config struct {
	// TracePath is the event trace to replay, "-" for stdin.
	TracePath string
	// Cmd is recorded in the report's cmd: line.
	Cmd []string
	// OutFile is the report path. Empty means cachegrind.out.<pid>.
	OutFile string
	// Caches holds user triples. Unset entries are detected; the zero
	// value means none was given.
	Caches   cacheconfig.Caches
	Detector cacheconfig.Detector
	// DebugInfo is an ELF or Mach-O binary with DWARF. When empty the
	// trace's S rows are the only debug info.
	DebugInfo string
	Verbose   bool
	Quiet     bool
	Color     bool
	// StatsYAML, when set, receives a YAML dump of totals and statistics.
	StatsYAML string
	Pid       int

	OutputWriter io.Writer
	Logger       common.Logger
}

// Result is what a finished session produced.
type Result struct {
	OutFile string
	Totals  report.Totals
	Stats   report.Stats
	Replay  replay.Stats
}

// DefaultOutFile is the report name used when none is given.
func DefaultOutFile(pid int) string {
	return fmt.Sprintf("cachegrind.out.%d", pid)
}

func loadDebugInfo(path string) (*debuginfo.Table, error) {
	t, elfErr := debuginfo.LoadELF(path)
	if elfErr == nil {
		return t, nil
	}
	t, err := debuginfo.LoadMachO(path)
	if err != nil {
		return nil, errors.Wrapf(elfErr, "%s is neither ELF (%v) nor Mach-O", path, err)
	}
	return t, nil
}

func openTrace(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open trace %s", path)
	}
	return f, nil
}

// Run executes one session. A report that cannot be written is logged as
// a warning and the summary is still printed.
func Run(cfg Config) (*Result, error) {
	w := cfg.OutputWriter
	if w == nil {
		w = os.Stderr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = common.NewNoOpLogger()
	}
	detector := cfg.Detector
	if detector == nil {
		detector = cacheconfig.NewCPUIDDetector()
	}
	pid := cfg.Pid
	if pid == 0 {
		pid = os.Getpid()
	}
	outFile := cfg.OutFile
	if outFile == "" {
		outFile = DefaultOutFile(pid)
	}

	user := cfg.Caches
	if user == (cacheconfig.Caches{}) {
		user = cacheconfig.UnsetCaches
	}
	caches, err := cacheconfig.Configure(user, detector, logger)
	if err != nil {
		return nil, err
	}

	symbols := debuginfo.NewTable()
	var provider debuginfo.Provider = symbols
	if cfg.DebugInfo != "" {
		t, err := loadDebugInfo(cfg.DebugInfo)
		if err != nil {
			return nil, err
		}
		lines, funcs := t.Len()
		logger.Logf(common.SeverityInfo, "loaded %d line ranges and %d functions from %s", lines, funcs, cfg.DebugInfo)
		cached, err := debuginfo.NewCached(t, debuginfo.DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		provider = cached
	}

	ctx, err := profiler.New(profiler.Config{
		Caches:   caches,
		Provider: provider,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	trace, err := openTrace(cfg.TracePath)
	if err != nil {
		return nil, err
	}
	defer trace.Close()

	rp := replay.New(ctx, symbols)
	if err := rp.Replay(trace); err != nil {
		return nil, err
	}
	res := &Result{OutFile: outFile, Replay: rp.Stats()}
	if cfg.DebugInfo != "" && res.Replay.Symbols > 0 {
		logger.Logf(common.SeverityWarning, "ignoring %d S rows, debug info comes from %s", res.Replay.Symbols, cfg.DebugInfo)
	}

	res.Totals, err = ctx.FinishFile(outFile, cfg.Cmd)
	if err != nil {
		if !common.IsResource(err) {
			return nil, err
		}
		logger.Error(err)
	}
	res.Stats = ctx.Stats()

	opts := report.SummaryOptions{Prefix: fmt.Sprintf("==%d== ", pid), Color: cfg.Color}
	if !cfg.Quiet {
		if err := report.PrintSummary(w, res.Totals, opts); err != nil {
			return nil, errors.Wrap(err, "failed to print summary")
		}
	}
	if cfg.Verbose {
		if err := report.PrintStats(w, res.Stats, opts); err != nil {
			return nil, errors.Wrap(err, "failed to print statistics")
		}
	}
	if cfg.StatsYAML != "" {
		if err := writeStatsYAML(cfg.StatsYAML, ctx.Header(cfg.Cmd), res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func writeStatsYAML(path string, hdr report.Header, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()
	return report.WriteStatsYAML(f, report.NewStatsDump(hdr, res.Totals, res.Stats))
}
