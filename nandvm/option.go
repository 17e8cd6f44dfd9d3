package nandvm

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/google/uuid"

	"github.com/jcorbin/nandlang/internal/flushio"
	"github.com/jcorbin/nandlang/internal/logio"
)

// Option configures a VM at construction time, following the same
// functional-options shape the teacher uses for its own VM (api.go,
// options.go): a narrow interface plus a slice-flattening combinator, so
// that New's variadic opts and a caller's own pre-built Option compose the
// same way.
type Option interface{ apply(vm *VM) }

// Options flattens opts into a single Option, the way the teacher's
// VMOptions does.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(*VM) {}

type options []Option

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

var defaultOptions = Options(
	withInput(bytes.NewReader(nil)),
	withOutput(ioutil.Discard),
	withHeapPageSize(defaultHeapPageSize),
)

const defaultHeapPageSize = 4096

// WithInput sets the reader getc/iogood read from. nil means "already at
// EOF", matching the teacher's default of an empty reader.
func WithInput(r io.Reader) Option { return withInput(r) }

// WithOutput sets the writer putb/putc/puti8/endl write to.
func WithOutput(w io.Writer) Option { return withOutput(w) }

// WithMemLimit caps the heap's address space, surfacing mem.LimitError
// through deref/assign once exceeded; malloc itself does not check it.
func WithMemLimit(limit uint) Option { return withMemLimit(limit) }

// WithHeapPageSize overrides the heap arena's page size; mostly useful for
// tests that want to force page-boundary crossings.
func WithHeapPageSize(n uint) Option { return withHeapPageSize(n) }

// WithLogger stores a logio.Logger on the VM; the evaluator does not write
// to it.
func WithLogger(l *logio.Logger) Option { return withLogger{l} }

// WithID fixes the VM's ID rather than generating a random one; used by
// tests that want deterministic Dump output.
func WithID(id uuid.UUID) Option { return withID{id} }

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type memLimitOption uint
type heapPageSizeOption uint
type withLogger struct{ l *logio.Logger }
type withID struct{ id uuid.UUID }

func withInput(r io.Reader) inputOption {
	if r == nil {
		r = bytes.NewReader(nil)
	}
	return inputOption{r}
}
func withOutput(w io.Writer) outputOption       { return outputOption{w} }
func withMemLimit(limit uint) memLimitOption    { return memLimitOption(limit) }
func withHeapPageSize(n uint) heapPageSizeOption { return heapPageSizeOption(n) }

func (i inputOption) apply(vm *VM) { vm.in = i.Reader }

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

func (lim memLimitOption) apply(vm *VM) { vm.memLimit = uint(lim) }

func (n heapPageSizeOption) apply(vm *VM) { vm.heapPageSize = uint(n) }

func (wl withLogger) apply(vm *VM) { vm.logger = wl.l }

func (wi withID) apply(vm *VM) { vm.id, vm.hasID = wi.id, true }
