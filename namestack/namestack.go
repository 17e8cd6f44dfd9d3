// Package namestack implements the chained lexical scope the parser uses to
// resolve identifiers to stack-slot indices ahead of time, so the evaluator
// never does string lookups at run time (spec.md §3, §4.2). A NameStack's
// frames only live during parsing; once every identifier is resolved to a
// slot, the tree can be discarded entirely (spec.md §9).
package namestack

import (
	"fmt"

	"github.com/jcorbin/nandlang/nandast"
)

// Binding records where a name lives on the evaluator's stack. Width is 1
// for a scalar bit, >1 for a fixed-size bit array.
type Binding struct {
	BaseSlot nandast.Slot
	Width    uint
}

// Frame is one lexical scope: a function body or an if/while/for block
// nested within one. Frames form a tree matching source nesting.
type Frame struct {
	parent     *Frame
	names      map[string]Binding
	localCount uint
}

// NewRoot opens a function's root frame.
func NewRoot() *Frame { return &Frame{} }

// Child opens a new frame parented to f, for an if/else/while/for body.
func (f *Frame) Child() *Frame { return &Frame{parent: f} }

// Size is the sum of local counts along the chain from f to the root --
// the next free slot index in this frame.
func (f *Frame) Size() uint {
	n := uint(0)
	for fr := f; fr != nil; fr = fr.parent {
		n += fr.localCount
	}
	return n
}

// Insert binds name to a fresh slot of the given width in this frame (not
// any ancestor -- NameStack deliberately does not shadow across frames, see
// spec.md §9). Returns an error if the name is already bound in this frame,
// or if width is 0.
func (f *Frame) Insert(name string, width uint) (Binding, error) {
	if width == 0 {
		return Binding{}, fmt.Errorf("zero-width declaration of %q", name)
	}
	if name == "_" {
		return Binding{BaseSlot: nandast.IgnoreSlot, Width: width}, nil
	}
	if f.names == nil {
		f.names = make(map[string]Binding)
	}
	if _, redeclared := f.names[name]; redeclared {
		return Binding{}, fmt.Errorf("redefinition of %q in the same scope", name)
	}
	b := Binding{BaseSlot: f.Size(), Width: width}
	f.names[name] = b
	f.localCount += width
	return b, nil
}

// Lookup walks parent-ward for name, returning its Binding.
func (f *Frame) Lookup(name string) (Binding, error) {
	if name == "_" {
		return Binding{BaseSlot: nandast.IgnoreSlot, Width: 1}, nil
	}
	for fr := f; fr != nil; fr = fr.parent {
		if b, ok := fr.names[name]; ok {
			return b, nil
		}
	}
	return Binding{}, fmt.Errorf("undefined variable %q", name)
}

// LookupIndexed resolves name[i] to the single-bit binding for that element.
// Every level of the parent chain is bounds-checked against its own width;
// the source this was distilled from had a branch that skipped this check
// when recursing into the parent, which is exactly the kind of bug spec.md
// §9's Open Questions calls out to fix rather than preserve.
func (f *Frame) LookupIndexed(name string, i uint) (Binding, error) {
	b, err := f.Lookup(name)
	if err != nil {
		return Binding{}, err
	}
	if i >= b.Width {
		return Binding{}, fmt.Errorf("index %d out of range for %q (width %d)", i, name, b.Width)
	}
	return Binding{BaseSlot: b.BaseSlot + i, Width: 1}, nil
}
