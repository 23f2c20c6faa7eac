package hashx

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/opd-ai/go-hashx/internal"
)

// ErrSeedRejected is returned by Build when the pseudorandom program
// generated from a seed fails the acceptance test. Seed rejection is
// an expected, infrequent outcome of the generation algorithm, not a
// bug; a caller hashing attacker-controlled seeds must handle it.
var ErrSeedRejected = errors.New("hashx: seed rejected, program did not meet acceptance criteria")

// finalizationRoundsPerHalf mirrors the reference implementation's
// comment: one SIPROUND per half of the register file is enough to
// pass SMHasher and is deliberately not increased further.
const finalizationRoundsPerHalf = 1

// Context holds a built HashX instance: a seed-derived program plus
// the input-expansion key or salt that feeds it. A Context is not
// safe for concurrent use; callers needing concurrency should use
// Hasher, or give each goroutine its own Context.
type Context struct {
	cfg Config

	program  *Program
	compiled *CompiledProgram

	counterKey internal.SipKey // used when cfg.BlockMode is false
	blockSalt  [32]byte        // used when cfg.BlockMode is true
}

// NewContext allocates a Context for the given Config. Call Build to
// derive a program from a seed before hashing.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("hashx: invalid config: %w", err)
	}
	return &Context{cfg: cfg}, nil
}

// Build derives a fresh program and input-expansion key from seed,
// replacing any program this Context previously held. It returns
// ErrSeedRejected if the generated program does not meet the
// acceptance thresholds; the Context is left unusable for hashing in
// that case and rejection must be handled by the caller.
func (c *Context) Build(seed []byte) error {
	digest := internal.Blake2b512(seed)

	// The first 128 bits key the generator, the next 128 bits key the
	// input expansion; the remaining 256 bits are unused key material
	// and are wiped rather than read.
	genKey := internal.SipKeyFromBytes(digest[0:16])
	var expKey [16]byte
	copy(expKey[:], digest[16:32])
	for i := 32; i < len(digest); i++ {
		digest[i] = 0
	}

	program, ok := GenerateProgram(genKey)

	if c.compiled != nil {
		c.compiled.Close()
		c.compiled = nil
	}

	if !ok {
		c.program = nil
		return ErrSeedRejected
	}
	c.program = program

	foldSalt(expKey[:], c.cfg.Salt)
	if c.cfg.BlockMode {
		var salt [32]byte
		copy(salt[:], expKey[:])
		c.blockSalt = salt
	} else {
		c.counterKey = internal.SipKeyFromBytes(expKey[:])
	}

	if c.cfg.Type == Compiled {
		compiled, err := Compile(program)
		if err != nil {
			c.program = nil
			return fmt.Errorf("hashx: compile: %w", err)
		}
		c.compiled = compiled
	}

	return nil
}

// foldSalt XORs salt cyclically into dst in place. A nil or empty
// salt leaves dst unchanged, matching HASHX_SALT's optional nature.
func foldSalt(dst, salt []byte) {
	for i := range salt {
		dst[i%len(dst)] ^= salt[i]
	}
}

// Ready reports whether Build has produced a usable program.
func (c *Context) Ready() bool {
	return c.program != nil
}

// HashCounter computes the digest of an 8-byte little-endian counter
// input, for non-block-mode contexts. Counter mode is the typical
// proof-of-work usage: a fixed seed, and a nonce counter swept across
// the search space.
func (c *Context) HashCounter(counter uint64) ([]byte, error) {
	if c.cfg.BlockMode {
		return nil, errors.New("hashx: HashCounter called on a block-mode context")
	}
	if !c.Ready() {
		return nil, ErrNotBuilt
	}

	var regs [8]uint64
	internal.Siphash24CtrState512(c.counterKey, counter, &regs)
	c.run(&regs)
	return finalize(&regs, c.cfg.DigestSize), nil
}

// HashBlock computes the digest of an arbitrary-length input, for
// block-mode contexts.
func (c *Context) HashBlock(input []byte) ([]byte, error) {
	if !c.cfg.BlockMode {
		return nil, errors.New("hashx: HashBlock called on a non-block-mode context")
	}
	if !c.Ready() {
		return nil, ErrNotBuilt
	}

	var regs [8]uint64
	internal.Blake2bCompress4R(c.blockSalt, input, &regs)
	c.run(&regs)
	return finalize(&regs, c.cfg.DigestSize), nil
}

func (c *Context) run(regs *[8]uint64) {
	if c.compiled != nil {
		c.compiled.Run(regs)
		return
	}
	Execute(c.program, regs)
}

// finalize applies the two-SIPROUND output mixing and truncates to
// digestSize, matching the reference's fixed temp_hash-then-memcpy
// pattern.
func finalize(r *[8]uint64, digestSize int) []byte {
	for i := 0; i < finalizationRoundsPerHalf; i++ {
		internal.SipRound(&r[0], &r[1], &r[2], &r[3])
		internal.SipRound(&r[4], &r[5], &r[6], &r[7])
	}

	var full [32]byte
	binary.LittleEndian.PutUint64(full[0:8], r[0]^r[4])
	binary.LittleEndian.PutUint64(full[8:16], r[1]^r[5])
	binary.LittleEndian.PutUint64(full[16:24], r[2]^r[6])
	binary.LittleEndian.PutUint64(full[24:32], r[3]^r[7])

	out := make([]byte, digestSize)
	copy(out, full[:digestSize])
	return out
}

// Close releases any executable memory held by a compiled program.
func (c *Context) Close() error {
	if c.compiled != nil {
		err := c.compiled.Close()
		c.compiled = nil
		return err
	}
	return nil
}
