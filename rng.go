package hashx

import "github.com/opd-ai/go-hashx/internal"

// siphashRNG is the deterministic pseudorandom stream the generator
// draws from: a fixed-size internal buffer refilled by hashing an
// advancing counter, exposing independently-sized draws.
//
// Each refill consumes one full SipHash-2-4 output (64 bits) over an
// 8-byte little-endian counter, even though next_u8 only needs 8 bits
// of it; the leftover bits are cached rather than discarded, so u32 and
// u8 draws do not share the same counter step.
type siphashRNG struct {
	key     internal.SipKey
	counter uint64

	buffer32 uint64
	count32  int

	buffer8 uint64
	count8  int
}

// newSiphashRNG creates a generator-key-seeded RNG stream.
func newSiphashRNG(key internal.SipKey) *siphashRNG {
	return &siphashRNG{key: key}
}

// draw advances the counter and returns one fresh 64-bit SipHash output.
func (g *siphashRNG) draw() uint64 {
	v := internal.SipHash24Counter(g.key, g.counter)
	g.counter++
	return v
}

// u32 returns the next pseudorandom 32-bit value.
func (g *siphashRNG) u32() uint32 {
	if g.count32 == 0 {
		g.buffer32 = g.draw()
		g.count32 = 2
	}
	result := uint32(g.buffer32)
	g.buffer32 >>= 32
	g.count32--
	return result
}

// u8 returns the next pseudorandom byte.
func (g *siphashRNG) u8() uint8 {
	if g.count8 == 0 {
		g.buffer8 = g.draw()
		g.count8 = 8
	}
	result := uint8(g.buffer8)
	g.buffer8 >>= 8
	g.count8--
	return result
}
