package nandvm

// @generated from spec.md by scripts/gen_builtins.go

//go:generate go run ../scripts/gen_builtins.go

// BuiltinDoc describes one host-provided intrinsic for display (REPL :help).
type BuiltinDoc struct {
	Name, Inputs, Outputs, Level, Behavior string
}

var builtinDocs = []BuiltinDoc{
	{Name: "putb", Inputs: "1", Outputs: "0", Level: "GLOBAL", Behavior: "Emit '0' or '1' to stdout."},
	{Name: "endl", Inputs: "0", Outputs: "0", Level: "GLOBAL", Behavior: "Emit newline + flush."},
	{Name: "puti8", Inputs: "8", Outputs: "0", Level: "GLOBAL", Behavior: "Treat 8 stack bits as one byte MSB-first; print its decimal value."},
	{Name: "putc", Inputs: "8", Outputs: "0", Level: "GLOBAL", Behavior: "Treat 8 stack bits as a byte; print the character."},
	{Name: "getc", Inputs: "0", Outputs: "8", Level: "GLOBAL", Behavior: "Read one byte from stdin; push 8 bits MSB-first. On EOF push zeros."},
	{Name: "iogood", Inputs: "0", Outputs: "1", Level: "GLOBAL", Behavior: "Push 1 if stdin still readable, else 0."},
	{Name: "malloc", Inputs: "P", Outputs: "P", Level: "LOCAL", Behavior: "P = pointer bit-width; allocate N bytes keyed by the input bits interpreted as an integer, return a stable integer handle."},
	{Name: "free", Inputs: "P", Outputs: "0", Level: "LOCAL", Behavior: "Release the handle."},
	{Name: "deref", Inputs: "P", Outputs: "1", Level: "LOCAL", Behavior: "Read one bit at the handle's current position."},
	{Name: "assign", Inputs: "P+1", Outputs: "0", Level: "LOCAL", Behavior: "Write one bit to the handle."},
}

// BuiltinDocs returns the generated builtin description table.
func BuiltinDocs() []BuiltinDoc { return builtinDocs }
