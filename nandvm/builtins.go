package nandvm

import (
	"fmt"

	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/token"
)

// pointerBits is the width malloc/free/deref/assign traffic in (spec.md §4.6
// table, §9: "ptr" literal index width).
const pointerBits = token.PointerBits

// AddBuiltins registers the host-provided intrinsics a Nandlang program
// links against (spec.md §4.6's builtin table) into prog, as FuncExternal
// entries. It must run before nandcheck.Check and nandopt.Optimize, which
// both need the builtins' Inputs/Outputs/Level to validate and fold calls
// against them.
//
// Builtins are plain functions over nandast.Frame, not methods on VM: the
// Frame passed at call time is always a *VM, recovered with a type
// assertion, which is what lets them live here rather than needing a VM to
// already exist at registration time.
func AddBuiltins(prog *nandast.Program) {
	for name, fn := range builtins {
		prog.Funcs[name] = fn
	}
}

var builtins = map[string]*nandast.Function{
	"putb": {Kind: nandast.FuncExternal, Inputs: 1, Outputs: 0, Level: nandast.Global, Invoker: invokePutb},
	"endl": {Kind: nandast.FuncExternal, Inputs: 0, Outputs: 0, Level: nandast.Global, Invoker: invokeEndl},
	"puti8": {Kind: nandast.FuncExternal, Inputs: 8, Outputs: 0, Level: nandast.Global, Invoker: invokePuti8},
	"putc":  {Kind: nandast.FuncExternal, Inputs: 8, Outputs: 0, Level: nandast.Global, Invoker: invokePutc},
	"getc":  {Kind: nandast.FuncExternal, Inputs: 0, Outputs: 8, Level: nandast.Global, Invoker: invokeGetc},
	"iogood": {Kind: nandast.FuncExternal, Inputs: 0, Outputs: 1, Level: nandast.Global, Invoker: invokeIogood},

	"malloc": {Kind: nandast.FuncExternal, Inputs: pointerBits, Outputs: pointerBits, Level: nandast.Local, Invoker: invokeMalloc},
	"free":   {Kind: nandast.FuncExternal, Inputs: pointerBits, Outputs: 0, Level: nandast.Local, Invoker: invokeFree},
	"deref":  {Kind: nandast.FuncExternal, Inputs: pointerBits, Outputs: 1, Level: nandast.Local, Invoker: invokeDeref},
	"assign": {Kind: nandast.FuncExternal, Inputs: pointerBits + 1, Outputs: 0, Level: nandast.Local, Invoker: invokeAssign},
}

// popBits decodes n stack bits as an unsigned integer that was pushed
// MSB-first: the first bit popped (the top of the stack) is the least
// significant. It is the inverse of pushBits.
func popBits(f nandast.Frame, n uint) uint64 {
	var v uint64
	for i := uint(0); i < n; i++ {
		if f.Pop() {
			v |= 1 << i
		}
	}
	return v
}

// pushBits encodes v as n bits and pushes them most significant bit first,
// so the least significant bit ends up topmost -- the same order a call's
// argument bits (e.g. a character literal's eight bits) are pushed in
// (spec.md §4.6).
func pushBits(f nandast.Frame, v uint64, n uint) {
	for k := n; k > 0; k-- {
		f.Push((v>>(k-1))&1 == 1)
	}
}

func invokePutb(f nandast.Frame) error {
	vm := f.(*VM)
	bit := vm.Pop()
	b := byte('0')
	if bit {
		b = '1'
	}
	_, err := vm.out.Write([]byte{b})
	return err
}

func invokeEndl(f nandast.Frame) error {
	vm := f.(*VM)
	if _, err := vm.out.Write([]byte{'\n'}); err != nil {
		return err
	}
	return vm.out.Flush()
}

func invokePuti8(f nandast.Frame) error {
	vm := f.(*VM)
	v := popBits(vm, 8)
	_, err := fmt.Fprintf(vm.out, "%d", v)
	return err
}

func invokePutc(f nandast.Frame) error {
	vm := f.(*VM)
	v := popBits(vm, 8)
	_, err := vm.out.Write([]byte{byte(v)})
	return err
}

func invokeGetc(f nandast.Frame) error {
	vm := f.(*VM)
	var buf [1]byte
	n, err := vm.in.Read(buf[:])
	if n == 0 || err != nil {
		vm.ioGood = false
		pushBits(vm, 0, 8)
		return nil
	}
	pushBits(vm, uint64(buf[0]), 8)
	return nil
}

func invokeIogood(f nandast.Frame) error {
	vm := f.(*VM)
	vm.Push(vm.ioGood)
	return nil
}

func invokeMalloc(f nandast.Frame) error {
	vm := f.(*VM)
	n := popBits(vm, pointerBits)
	// n counts bytes; the arena is bit-addressed, so reserve 8 addresses each
	handle := vm.heap.alloc(n * 8)
	pushBits(vm, handle, pointerBits)
	return nil
}

func invokeFree(f nandast.Frame) error {
	vm := f.(*VM)
	popBits(vm, pointerBits) // spec.md §4.6: free does not reuse storage; see heap.go
	return nil
}

func invokeDeref(f nandast.Frame) error {
	vm := f.(*VM)
	handle := popBits(vm, pointerBits)
	bit, err := vm.heap.load(handle)
	if err != nil {
		return err
	}
	vm.Push(bit)
	return nil
}

func invokeAssign(f nandast.Frame) error {
	vm := f.(*VM)
	bit := vm.Pop()
	handle := popBits(vm, pointerBits)
	return vm.heap.store(handle, bit)
}
