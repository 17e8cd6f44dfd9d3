package nandvm

import (
	"fmt"
	"io"
	"sort"

	"github.com/jcorbin/nandlang/nandast"
)

// Dump writes a human-readable snapshot of the evaluator's internals to w:
// the function table, then the current stack and var_base. It is grounded on the teacher's vmDumper (dumper.go) but much
// simpler, since Nandlang has no FIRST/THIRD dictionary or low-memory
// special addresses to special-case -- just a function table and a bit
// stack.
func (vm *VM) Dump(w io.Writer) error {
	names := make([]string, 0, len(vm.prog.Funcs))
	for name := range vm.prog.Funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := fmt.Fprintf(w, "nandvm %s: %d function(s)\n", vm.id, len(names)); err != nil {
		return err
	}
	for _, name := range names {
		fn := vm.prog.Funcs[name]
		kind := "internal"
		if fn.Kind == nandast.FuncExternal {
			kind = "external"
		}
		if _, err := fmt.Fprintf(w, "  %s(%d -> %d) %s\n", name, fn.Inputs, fn.Outputs, kind); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "var_base=%d stack(%d)=", vm.varBase, len(vm.stack)); err != nil {
		return err
	}
	for _, bit := range vm.stack {
		b := byte('0')
		if bit {
			b = '1'
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
