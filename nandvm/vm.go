// Package nandvm implements the Nandlang evaluator: a bit stack, the
// function calling convention, and the host-provided intrinsics a program
// links against (spec.md §4.6, §6). It is the only package that imports
// nandast's Frame/Invoker contract, since it is the one thing that actually
// owns a stack to hand out.
package nandvm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/jcorbin/nandlang/internal/flushio"
	"github.com/jcorbin/nandlang/internal/logio"
	"github.com/jcorbin/nandlang/internal/panicerr"
	"github.com/jcorbin/nandlang/nandast"
	"github.com/jcorbin/nandlang/token"
)

// VM is the evaluator's State (spec.md §4.6): it owns the bit stack, the
// current frame's var_base, and the heap arena that malloc/free/deref/assign
// operate on.
type VM struct {
	id  uuid.UUID
	hasID bool

	prog    *nandast.Program
	stack   []bool
	varBase uint

	heap         *heap
	heapPageSize uint
	memLimit     uint

	in     io.Reader
	ioGood bool

	out     flushio.WriteFlusher
	closers []io.Closer

	logger *logio.Logger
}

// New builds a VM ready to run prog, which must already have had
// AddBuiltins and nandcheck.Check applied.
func New(prog *nandast.Program, opts ...Option) *VM {
	vm := &VM{prog: prog}
	defaultOptions.apply(vm)
	Options(opts...).apply(vm)
	if !vm.hasID {
		vm.id = uuid.New()
	}
	vm.heap = newHeap(vm.heapPageSize)
	vm.heap.mem.Limit = vm.memLimit
	vm.ioGood = true
	return vm
}

// ID identifies this VM instance, e.g. in Dump output, distinguishing one
// VM's snapshot from another's.
func (vm *VM) ID() uuid.UUID { return vm.id }

// Run evaluates main to completion. Panics from the evaluator (stack
// underflow, an internal invariant violation) are recovered the same way
// the teacher's VM.Run recovers goroutine panics, and surfaced as a plain
// error rather than crashing the host process.
func (vm *VM) Run(ctx context.Context) error {
	main := vm.prog.Lookup("main")
	if main == nil {
		return errors.New("nandvm: no main function")
	}
	err := panicerr.Recover("nandvm.VM", func() error {
		return vm.callFunction(ctx, main)
	})
	if flerr := vm.out.Flush(); err == nil {
		err = flerr
	}
	return err
}

// Close closes the writer given to WithOutput if it is an io.Closer (such as
// an *os.File, os.Stdout included), returning the first error.
func (vm *VM) Close() error {
	var err error
	for _, cl := range vm.closers {
		if cerr := cl.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Push implements nandast.Frame for External Invoker funcs.
func (vm *VM) Push(bit bool) { vm.stack = append(vm.stack, bit) }

// Pop implements nandast.Frame for External Invoker funcs. An empty stack is
// an evaluator bug (the validator guarantees arity, so this should never
// happen on a Checked program); it panics rather than returning a sentinel,
// matching how the teacher treats invariant violations as unrecoverable
// within a single Run.
func (vm *VM) Pop() bool {
	n := len(vm.stack)
	if n == 0 {
		panic(errors.New("nandvm: stack underflow"))
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v
}

type stackError struct {
	debug token.DebugInfo
	err   error
}

func (se stackError) Error() string { return fmt.Sprintf("%v: %v", se.debug, se.err) }
func (se stackError) Unwrap() error { return se.err }

// callFunction implements the calling convention of spec.md §4.6: inputs
// are already pushed by the caller; Internal functions get a rebased
// var_base and their declared outputs copied down on return, External
// functions just run against the shared stack top.
func (vm *VM) callFunction(ctx context.Context, fn *nandast.Function) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fn.Kind == nandast.FuncExternal {
		return fn.Invoker(vm)
	}

	I, O := fn.Inputs, fn.Outputs
	prevSize := uint(len(vm.stack))
	prevBase := vm.varBase
	vm.varBase = prevSize - I
	for i := uint(0); i < O; i++ {
		vm.Push(false)
	}
	if err := vm.execBlock(ctx, fn.Body); err != nil {
		return err
	}
	copy(vm.stack[vm.varBase:vm.varBase+O], vm.stack[vm.varBase+I:vm.varBase+I+O])
	vm.varBase = prevBase
	vm.stack = vm.stack[:prevSize-I+O]
	return nil
}

func (vm *VM) execBlock(ctx context.Context, stmts []nandast.Stmt) error {
	for i := range stmts {
		if err := vm.execStmt(ctx, &stmts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) execStmt(ctx context.Context, s *nandast.Stmt) error {
	switch s.Kind {
	case nandast.StmtVarDecl:
		nonIgnored := 0
		for _, t := range s.Targets {
			if t != nandast.IgnoreSlot {
				nonIgnored++
			}
		}
		for i := 0; i < nonIgnored; i++ {
			vm.Push(false)
		}
		if err := vm.evalExprList(ctx, s.Exprs); err != nil {
			return err
		}
		return vm.popIntoTargets(s.Debug, s.Targets)

	case nandast.StmtAssign:
		if err := vm.evalExprList(ctx, s.Exprs); err != nil {
			return err
		}
		return vm.popIntoTargets(s.Debug, s.Targets)

	case nandast.StmtIf:
		prev := uint(len(vm.stack))
		if err := vm.evalExpr(ctx, s.Cond); err != nil {
			return err
		}
		cond := vm.Pop()
		var err error
		if cond {
			err = vm.execBlock(ctx, s.Then)
		} else {
			err = vm.execBlock(ctx, s.Else)
		}
		vm.stack = vm.stack[:prev]
		return err

	case nandast.StmtWhile:
		prev := uint(len(vm.stack))
		for {
			if err := vm.evalExpr(ctx, s.Cond); err != nil {
				return err
			}
			if !vm.Pop() {
				break
			}
			if err := vm.execBlock(ctx, s.Then); err != nil {
				return err
			}
			vm.stack = vm.stack[:prev]
		}
		vm.stack = vm.stack[:prev]
		return nil

	case nandast.StmtExpr:
		return vm.evalExpr(ctx, s.Expr)

	default:
		return stackError{s.Debug, fmt.Errorf("unhandled statement kind %v", s.Kind)}
	}
}

func (vm *VM) evalExprList(ctx context.Context, exprs []nandast.Expr) error {
	for i := range exprs {
		if err := vm.evalExpr(ctx, &exprs[i]); err != nil {
			return err
		}
	}
	return nil
}

// popIntoTargets pops one value per target, walking targets back to front so
// that, combined with each expression's own push order, the first target
// ends up with the first produced bit (spec.md §4.6). Ignored targets pop
// and discard.
func (vm *VM) popIntoTargets(debug token.DebugInfo, targets []nandast.Slot) error {
	for i := len(targets) - 1; i >= 0; i-- {
		v := vm.Pop()
		if targets[i] != nandast.IgnoreSlot {
			vm.stack[vm.varBase+targets[i]] = v
		}
	}
	return nil
}

func (vm *VM) evalExpr(ctx context.Context, e *nandast.Expr) error {
	switch e.Kind {
	case nandast.ExprLiteral:
		vm.Push(e.Value)
		return nil

	case nandast.ExprLiteralArray:
		// Values[0] is the LSB; pushing in reverse storage order pushes the
		// MSB first and leaves Values[0] topmost, the same MSB-first order
		// every other multi-bit value is pushed in (nandast.Expr doc comment,
		// spec.md §4.6).
		for i := len(e.Values) - 1; i >= 0; i-- {
			vm.Push(e.Values[i])
		}
		return nil

	case nandast.ExprVariable:
		vm.Push(vm.stack[vm.varBase+e.Slot])
		return nil

	case nandast.ExprArray:
		for i := uint(0); i < e.Width; i++ {
			vm.Push(vm.stack[vm.varBase+e.Slot+i])
		}
		return nil

	case nandast.ExprNand:
		if err := vm.evalExpr(ctx, e.Left); err != nil {
			return err
		}
		if err := vm.evalExpr(ctx, e.Right); err != nil {
			return err
		}
		right := vm.Pop()
		left := vm.Pop()
		vm.Push(!(left && right))
		return nil

	case nandast.ExprCall:
		for i := range e.Args {
			if err := vm.evalExpr(ctx, &e.Args[i]); err != nil {
				return err
			}
		}
		fn := vm.prog.Lookup(e.Name)
		if fn == nil {
			return stackError{e.Debug, fmt.Errorf("call to unknown function %q", e.Name)}
		}
		return vm.callFunction(ctx, fn)

	default:
		return stackError{e.Debug, fmt.Errorf("unhandled expression kind %v", e.Kind)}
	}
}
