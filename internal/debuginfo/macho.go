package debuginfo

import (
	"io"

	dwf "github.com/blacktop/go-dwarf"
	"github.com/blacktop/go-macho"
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/pkg/errors"
)

// LoadMachO builds a Table from the DWARF sections of a Mach-O file.
func LoadMachO(path string) (*Table, error) {
	m, err := macho.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open MachO %s", path)
	}
	defer m.Close()

	df, err := m.DWARF()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read DWARF from %s", path)
	}

	t := NewTable()
	r := df.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, "failed to read DWARF entry")
		}
		if entry == nil {
			break
		}

		switch entry.Tag {
		case dwf.TagCompileUnit:
			lr, err := df.LineReader(entry)
			if err != nil {
				return nil, errors.Wrap(err, "failed to read line table")
			}
			if lr == nil {
				continue
			}
			if err := addMachOLines(t, lr); err != nil {
				return nil, err
			}
		case dwf.TagSubprogram:
			name, _ := entry.Val(dwf.AttrName).(string)
			if name == "" {
				continue
			}
			ranges, err := df.Ranges(entry)
			if err != nil {
				continue
			}
			for _, rg := range ranges {
				t.AddFunc(cg.Addr(rg[0]), cg.Addr(rg[1]), name)
			}
		}
	}
	return t, nil
}

func addMachOLines(t *Table, lr *dwf.LineReader) error {
	var le, prev dwf.LineEntry
	have := false
	for {
		if err := lr.Next(&le); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "failed to read line entry")
		}
		if have && prev.File != nil {
			t.AddLine(cg.Addr(prev.Address), cg.Addr(le.Address), prev.File.Name, uint32(prev.Line))
		}
		if le.EndSequence {
			have = false
			continue
		}
		prev = le
		have = true
	}
}
