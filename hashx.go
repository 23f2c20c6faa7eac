// Package hashx implements the HashX family of per-seed, randomly
// generated hash functions: from a seed, it builds a small straight-line
// program over eight 64-bit registers tuned to saturate an
// out-of-order CPU, then evaluates that program, either by
// interpreting it or by running native x86-64 code compiled from it,
// to produce a fixed-size digest. HashX targets proof-of-work style
// workloads, where a fresh program per seed keeps ASIC speedups over a
// general-purpose CPU small.
//
// Example usage:
//
//	ctx, err := hashx.NewContext(hashx.Config{DigestSize: 32})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	if err := ctx.Build([]byte("example seed")); err != nil {
//	    log.Fatal(err)
//	}
//	digest, err := ctx.HashCounter(0)
package hashx

import (
	"errors"
	"fmt"
)

// MaxDigestSize is the largest digest HashX can produce; the
// finalization step only ever has 32 bytes of mixed register state to
// hand out.
const MaxDigestSize = 32

// DefaultDigestSize is the digest length used when Config.DigestSize
// is left at its zero value.
const DefaultDigestSize = 32

// Type selects how a Context evaluates its program: walking it with
// the portable interpreter, or running native code emitted from it.
// This is the Go-idiomatic form of the C API's HASHX_INTERPRETED and
// HASHX_COMPILED allocation flags.
type Type int

const (
	// Interpreted evaluates programs with the portable switch-based
	// interpreter. Always available.
	Interpreted Type = iota
	// Compiled emits and runs native x86-64 machine code. Available
	// only when Supported reports true; Config.Validate rejects it
	// otherwise.
	Compiled
)

func (t Type) String() string {
	switch t {
	case Interpreted:
		return "Interpreted"
	case Compiled:
		return "Compiled"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Config specifies the build-time parameters of a HashX instance. The
// first three fields correspond exactly to the C reference's compile-time
// macros HASHX_SIZE, HASHX_BLOCK_MODE and HASHX_SALT. This port makes
// them runtime fields rather than Go build tags because, unlike the
// macros they replace, none of them changes the shape of the generated
// code; they only parameterize finalization and input expansion, so
// there's no benefit to paying for them at compile time.
type Config struct {
	// DigestSize is the output length in bytes, 1..32. Zero defaults
	// to DefaultDigestSize.
	DigestSize int
	// BlockMode selects variable-length block input expansion
	// (HashBlock) instead of the default 64-bit counter mode
	// (HashCounter). The two are mutually exclusive per Context.
	BlockMode bool
	// Salt is folded into the input-expansion key derived from the
	// seed (HASHX_SALT). It is optional; nil means no salt.
	Salt []byte
	// Type selects the evaluation backend.
	Type Type
}

// Validate checks the configuration and fills in defaults. It reports
// ErrUnsupported if Type is Compiled on a platform with no native
// emitter wired in.
func (c *Config) Validate() error {
	if c.DigestSize == 0 {
		c.DigestSize = DefaultDigestSize
	}
	if c.DigestSize < 1 || c.DigestSize > MaxDigestSize {
		return fmt.Errorf("hashx: digest size %d outside [1,%d]", c.DigestSize, MaxDigestSize)
	}
	if c.Type == Compiled && !Supported() {
		return ErrUnsupported
	}
	return nil
}

// ErrUnsupported is returned when Compiled evaluation is requested on
// a platform with no native code emitter.
var ErrUnsupported = errors.New("hashx: compiled execution not supported on this platform")

// ErrClosed is returned by Hasher methods called after Close.
var ErrClosed = errors.New("hashx: use of closed hasher")

// ErrNotBuilt is returned by Context methods that require a
// successful prior Build.
var ErrNotBuilt = errors.New("hashx: context has no program; call Build first")

// Supported reports whether Compiled is available on the running
// platform, i.e. whether GOARCH has a native emitter wired in (today,
// amd64 only). Interpreted is always available regardless of this
// result.
func Supported() bool {
	return archSupportsCompiled
}
