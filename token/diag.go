package token

import "fmt"

// Diagnostic is the one unified diagnostic shape used across every pipeline
// stage: a DebugInfo plus the underlying error. It is threaded by value, the
// same way the teacher threads its haltError/panicError wrappers.
type Diagnostic struct {
	Debug DebugInfo
	Err   error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%v: %v", d.Debug, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// At wraps err with debug, unless err is already a Diagnostic (in which case
// it is returned unchanged -- the innermost site wins).
func At(debug DebugInfo, err error) error {
	if err == nil {
		return nil
	}
	if d, ok := err.(Diagnostic); ok {
		return d
	}
	return Diagnostic{Debug: debug, Err: err}
}
