//go:build !amd64

package hashx

import "errors"

// ErrCompileUnavailable is returned when compiled execution is
// requested on an architecture with no JIT backend wired in.
var ErrCompileUnavailable = errors.New("hashx: compiled execution unavailable")

// archSupportsCompiled reports that this build has no native emitter.
const archSupportsCompiled = false

// CompiledProgram is the non-amd64 stub; Compile always fails, so no
// instance of this type is ever produced.
type CompiledProgram struct{}

// Compile always fails outside amd64. Interpreted execution (Execute)
// is unaffected and remains the portable fallback.
func Compile(prog *Program) (*CompiledProgram, error) {
	return nil, ErrCompileUnavailable
}

// Run never runs; CompiledProgram is never constructed on this build.
func (c *CompiledProgram) Run(regs *[8]uint64) {}

// Close is a no-op; CompiledProgram is never constructed on this build.
func (c *CompiledProgram) Close() error { return nil }
