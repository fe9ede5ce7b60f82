package debuginfo

import (
	"debug/dwarf"
	"debug/elf"
	"io"

	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/pkg/errors"
)

// LoadELF builds a Table from the DWARF line and subprogram info of an ELF file.
func LoadELF(path string) (*Table, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ELF %s", path)
	}
	defer f.Close()

	d, err := f.DWARF()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read DWARF from %s", path)
	}

	t := NewTable()
	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read DWARF entry")
		}
		if entry == nil {
			break
		}

		switch entry.Tag {
		case dwarf.TagCompileUnit:
			lr, err := d.LineReader(entry)
			if err != nil {
				return nil, errors.Wrap(err, "failed to read line table")
			}
			if lr == nil {
				continue
			}
			if err := addELFLines(t, lr); err != nil {
				return nil, err
			}
		case dwarf.TagSubprogram:
			name, _ := entry.Val(dwarf.AttrName).(string)
			if name == "" {
				continue
			}
			ranges, err := d.Ranges(entry)
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

func addELFLines(t *Table, lr *dwarf.LineReader) error {
	var le, prev dwarf.LineEntry
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
