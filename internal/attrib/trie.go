package attrib

import (
	"github.com/janisozaur/valgrind/internal/cg"
)

// CC is a counter triple for one access kind.
type CC struct {
	A  uint64 // accesses
	M1 uint64 // level 1 misses
	M2 uint64 // level 2 misses
}

// Add accumulates o into c.
func (c *CC) Add(o CC) {
	c.A += o.A
	c.M1 += o.M1
	c.M2 += o.M2
}

// Leaf holds the counters of one source line.
type Leaf struct {
	Line uint32
	Ir   CC // instruction fetch
	Dr   CC // data read
	Dw   CC // data write

	next uint32
}

// LeafRef addresses a Leaf in the trie's arena. The zero value refers to no leaf.
// A ref stays valid for the life of the Trie.
type LeafRef uint32

// Valid reports whether r refers to a leaf.
func (r LeafRef) Valid() bool { return r != 0 }

type fnNode struct {
	name  string
	next  uint32
	lines [cg.NLineBuckets]uint32
}

type fileNode struct {
	name string
	next uint32
	fns  [cg.NFnBuckets]uint32
}

// Trie is the file -> function -> line counter structure. Nodes live in
// per-level arenas and are linked by 1-based indices; nothing is ever removed.
type Trie struct {
	resolver *Resolver
	buckets  [cg.NFileBuckets]uint32
	files    []fileNode
	fns      []fnNode
	leaves   []Leaf
}

func NewTrie(r *Resolver) *Trie {
	return &Trie{resolver: r}
}

// Resolver returns the location resolver feeding the trie.
func (t *Trie) Resolver() *Resolver {
	return t.resolver
}

func hashString(s string, size uint64) uint64 {
	var h uint64
	for i := 0; i < len(s); i++ {
		h = (h*256 + uint64(s[i])) % size
	}
	return h
}

// ResolveLeaf resolves addr to a source location and returns its leaf,
// creating the file, function and line nodes on first sight.
func (t *Trie) ResolveLeaf(addr cg.Addr) LeafRef {
	loc := t.resolver.Resolve(addr)
	return t.LeafFor(loc.File, loc.Function, loc.Line)
}

// LeafFor finds or inserts the leaf for (file, fn, line).
func (t *Trie) LeafFor(file, fn string, line uint32) LeafRef {
	fileIdx := t.findOrAddFile(file)
	fnIdx := t.findOrAddFn(fileIdx, fn)
	return t.findOrAddLine(fnIdx, line)
}

func (t *Trie) findOrAddFile(name string) uint32 {
	b := hashString(name, cg.NFileBuckets)
	for i := t.buckets[b]; i != 0; i = t.files[i-1].next {
		if t.files[i-1].name == name {
			return i
		}
	}
	t.files = append(t.files, fileNode{name: name, next: t.buckets[b]})
	idx := uint32(len(t.files))
	t.buckets[b] = idx
	return idx
}

func (t *Trie) findOrAddFn(fileIdx uint32, name string) uint32 {
	b := hashString(name, cg.NFnBuckets)
	for i := t.files[fileIdx-1].fns[b]; i != 0; i = t.fns[i-1].next {
		if t.fns[i-1].name == name {
			return i
		}
	}
	t.fns = append(t.fns, fnNode{name: name, next: t.files[fileIdx-1].fns[b]})
	idx := uint32(len(t.fns))
	t.files[fileIdx-1].fns[b] = idx
	return idx
}

func (t *Trie) findOrAddLine(fnIdx uint32, line uint32) LeafRef {
	b := line % cg.NLineBuckets
	for i := t.fns[fnIdx-1].lines[b]; i != 0; i = t.leaves[i-1].next {
		if t.leaves[i-1].Line == line {
			return LeafRef(i)
		}
	}
	t.leaves = append(t.leaves, Leaf{Line: line, next: t.fns[fnIdx-1].lines[b]})
	idx := uint32(len(t.leaves))
	t.fns[fnIdx-1].lines[b] = idx
	return LeafRef(idx)
}

// Leaf returns the leaf for ref. The pointer is only good until the next
// insertion; hold the LeafRef, not the pointer.
func (t *Trie) Leaf(ref LeafRef) *Leaf {
	return &t.leaves[ref-1]
}

// Files returns the number of distinct files seen.
func (t *Trie) Files() int { return len(t.files) }

// Functions returns the number of distinct (file, function) pairs seen.
func (t *Trie) Functions() int { return len(t.fns) }

// Lines returns the number of distinct (file, function, line) leaves.
func (t *Trie) Lines() int { return len(t.leaves) }

// Visitor receives the trie contents in traversal order.
type Visitor interface {
	VisitFile(name string) error
	VisitFunc(name string) error
	VisitLine(l *Leaf) error
}

// Walk visits file buckets in order, then each file's function buckets,
// then each function's line buckets, following every chain in storage
// order (most recently created first). The order is stable for identical
// input.
func (t *Trie) Walk(v Visitor) error {
	for _, head := range t.buckets {
		for fi := head; fi != 0; fi = t.files[fi-1].next {
			file := &t.files[fi-1]
			if err := v.VisitFile(file.name); err != nil {
				return err
			}
			for _, fnHead := range file.fns {
				for ni := fnHead; ni != 0; ni = t.fns[ni-1].next {
					fn := &t.fns[ni-1]
					if err := v.VisitFunc(fn.name); err != nil {
						return err
					}
					for _, lineHead := range fn.lines {
						for li := lineHead; li != 0; li = t.leaves[li-1].next {
							if err := v.VisitLine(&t.leaves[li-1]); err != nil {
								return err
							}
						}
					}
				}
			}
		}
	}
	return nil
}
