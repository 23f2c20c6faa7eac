package hashx

import (
	"bytes"
	"sync"
)

// Hasher is a convenience wrapper around a single seed: it pools
// built *Context values with sync.Pool and serializes seed rotation
// with a mutex. Unlike a bare Context, Hasher is safe for concurrent
// use by multiple goroutines: each caller checks out its own pooled
// Context for the duration of one hash.
type Hasher struct {
	mu     sync.RWMutex
	cfg    Config
	seed   []byte
	closed bool
	pool   sync.Pool
}

// pooledContext pairs a Context with the seed it was last Build-ed
// against, so a checkout can skip rebuilding when the seed hasn't
// changed since the Context was last used.
type pooledContext struct {
	ctx  *Context
	seed []byte
}

// NewHasher validates cfg and builds one Context against seed
// eagerly, so seed rejection surfaces at
// construction time rather than silently on the first hash call.
func NewHasher(cfg Config, seed []byte) (*Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h := &Hasher{cfg: cfg, seed: append([]byte(nil), seed...)}

	pc, err := h.checkout()
	if err != nil {
		return nil, err
	}
	h.checkin(pc)
	return h, nil
}

func (h *Hasher) checkout() (*pooledContext, error) {
	h.mu.RLock()
	seed := h.seed
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	pc, _ := h.pool.Get().(*pooledContext)
	if pc == nil {
		ctx, err := NewContext(h.cfg)
		if err != nil {
			return nil, err
		}
		pc = &pooledContext{ctx: ctx}
	}

	if !bytes.Equal(pc.seed, seed) {
		if err := pc.ctx.Build(seed); err != nil {
			return nil, err
		}
		pc.seed = append(pc.seed[:0], seed...)
	}
	return pc, nil
}

func (h *Hasher) checkin(pc *pooledContext) {
	h.pool.Put(pc)
}

// HashCounter computes a digest for counter, checking out a pooled
// Context built against the Hasher's current seed.
func (h *Hasher) HashCounter(counter uint64) ([]byte, error) {
	pc, err := h.checkout()
	if err != nil {
		return nil, err
	}
	defer h.checkin(pc)
	return pc.ctx.HashCounter(counter)
}

// HashBlock computes a digest for input, checking out a pooled
// Context built against the Hasher's current seed.
func (h *Hasher) HashBlock(input []byte) ([]byte, error) {
	pc, err := h.checkout()
	if err != nil {
		return nil, err
	}
	defer h.checkin(pc)
	return pc.ctx.HashBlock(input)
}

// Reseed validates the new seed against a scratch Context before
// committing it, so a rejected seed leaves the Hasher serving the
// previous one rather than failing every subsequent hash call.
func (h *Hasher) Reseed(seed []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	scratch, err := NewContext(h.cfg)
	if err != nil {
		return err
	}
	if err := scratch.Build(seed); err != nil {
		return err
	}
	scratch.Close()

	h.seed = append([]byte(nil), seed...)
	return nil
}

// Close marks the Hasher unusable. Pooled Contexts already checked
// back into the pool are left for the garbage collector rather than
// explicitly closed, since sync.Pool gives no enumeration hook; a
// Compiled-mode Context's executable page is only freed once that
// Context becomes unreachable. Callers relying on prompt release of
// executable memory should use a single long-lived Context instead of
// Hasher.
func (h *Hasher) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}
