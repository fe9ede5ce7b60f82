package report

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Stats are the diagnostic counters printed at verbose level.
type Stats struct {
	DistinctFiles  int    `yaml:"distinct_files"`
	DistinctFns    int    `yaml:"distinct_fns"`
	DistinctLines  int    `yaml:"distinct_lines"`
	DistinctInstrs uint64 `yaml:"distinct_instrs"`
	FullDebug      uint64 `yaml:"full_debug"`
	FileLineDebug  uint64 `yaml:"file_line_debug"`
	FnDebug        uint64 `yaml:"fn_debug"`
	NoDebug        uint64 `yaml:"no_debug"`
	Retranslations uint64 `yaml:"retranslations"`
}

// Lookups is the number of location resolutions, one per distinct instruction.
func (s Stats) Lookups() uint64 {
	return s.FullDebug + s.FileLineDebug + s.FnDebug + s.NoDebug
}

func pct(n, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	return n * 100 / total
}

// PrintStats writes the verbose statistics block.
func PrintStats(w io.Writer, s Stats, opts SummaryOptions) error {
	lookups := s.Lookups()
	lines := []string{
		"",
		fmt.Sprintf("Distinct files:   %d", s.DistinctFiles),
		fmt.Sprintf("Distinct fns:     %d", s.DistinctFns),
		fmt.Sprintf("Distinct lines:   %d", s.DistinctLines),
		fmt.Sprintf("Distinct instrs:  %d", s.DistinctInstrs),
		fmt.Sprintf("BB lookups:       %d", lookups),
		fmt.Sprintf("With full      debug info:%3d%% (%d)", pct(s.FullDebug, lookups), s.FullDebug),
		fmt.Sprintf("With file/line debug info:%3d%% (%d)", pct(s.FileLineDebug, lookups), s.FileLineDebug),
		fmt.Sprintf("With fn name   debug info:%3d%% (%d)", pct(s.FnDebug, lookups), s.FnDebug),
		fmt.Sprintf("With no        debug info:%3d%% (%d)", pct(s.NoDebug, lookups), s.NoDebug),
		fmt.Sprintf("BBs Retranslated: %d", s.Retranslations),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s%s\n", opts.Prefix, l); err != nil {
			return err
		}
	}
	return nil
}

// StatsDump is the YAML document written by WriteStatsYAML.
type StatsDump struct {
	Command []string `yaml:"command,omitempty"`
	Caches  struct {
		I1 string `yaml:"I1"`
		D1 string `yaml:"D1"`
		L2 string `yaml:"L2"`
	} `yaml:"caches"`
	Totals map[string]uint64 `yaml:"totals"`
	Stats  Stats             `yaml:"stats"`
}

// NewStatsDump collects the header, totals and statistics of one run.
func NewStatsDump(hdr Header, t Totals, s Stats) *StatsDump {
	d := &StatsDump{
		Command: hdr.Cmd,
		Totals:  make(map[string]uint64),
		Stats:   s,
	}
	d.Caches.I1 = hdr.I1Desc
	d.Caches.D1 = hdr.D1Desc
	d.Caches.L2 = hdr.L2Desc

	names := eventNames()
	for i, c := range t.Counts() {
		d.Totals[names[i]] = c
	}
	return d
}

// WriteStatsYAML writes d as YAML.
func WriteStatsYAML(w io.Writer, d *StatsDump) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(err, "failed to encode stats")
	}
	return enc.Close()
}
