package internal

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Blake2b512 computes a 512-bit Blake2b hash (64 bytes), delegating to
// golang.org/x/crypto/blake2b rather than the reduced-round compressor
// below: HashX's build step needs the full, standard BLAKE2b-512, not
// the reduced variant. The build step hashes the seed this way and
// splits the output into the generator key K0 and the counter-mode
// key (or block-mode salt) K1.
func Blake2b512(data []byte) [64]byte {
	return blake2b.Sum512(data)
}

// blake2bIV is the standard BLAKE2b initialization vector.
var blake2bIV = [8]uint64{
	0x6a09e667f3bcc908, 0xbb67ae8584caa73b, 0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
	0x510e527fade682d1, 0x9b05688c2b3e6c1f, 0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
}

// blake2bSigma is the message schedule permutation table. The full
// BLAKE2b runs 12 rounds, cycling through these 10 distinct rows twice
// more at the end (rows 10-11 repeat rows 0-1). HashX's block-mode
// expansion runs only the first 4 rows.
var blake2bSigma = [10][16]byte{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
}

func rotr64(x uint64, n uint) uint64 {
	return (x >> n) | (x << (64 - n))
}

// blake2bCompress runs the BLAKE2b compression function for `rounds`
// rounds (the full algorithm uses 12; HashX's block-mode expansion uses
// a reduced 4-round variant) over one 128-byte message block.
func blake2bCompress(h *[8]uint64, m *[16]uint64, t uint64, final bool, rounds int) {
	v := [16]uint64{
		h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7],
		blake2bIV[0], blake2bIV[1], blake2bIV[2], blake2bIV[3],
		blake2bIV[4], blake2bIV[5], blake2bIV[6], blake2bIV[7],
	}
	v[12] ^= t
	// v[13] would hold the high 64 bits of the byte counter; HashX
	// inputs never approach 2^64 bytes so it stays zero.
	if final {
		v[14] = ^v[14]
	}

	g := func(a, b, c, d int, x, y uint64) {
		v[a] = v[a] + v[b] + x
		v[d] = rotr64(v[d]^v[a], 32)
		v[c] = v[c] + v[d]
		v[b] = rotr64(v[b]^v[c], 24)
		v[a] = v[a] + v[b] + y
		v[d] = rotr64(v[d]^v[a], 16)
		v[c] = v[c] + v[d]
		v[b] = rotr64(v[b]^v[c], 63)
	}

	for r := 0; r < rounds; r++ {
		s := &blake2bSigma[r%10]
		g(0, 4, 8, 12, m[s[0]], m[s[1]])
		g(1, 5, 9, 13, m[s[2]], m[s[3]])
		g(2, 6, 10, 14, m[s[4]], m[s[5]])
		g(3, 7, 11, 15, m[s[6]], m[s[7]])
		g(0, 5, 10, 15, m[s[8]], m[s[9]])
		g(1, 6, 11, 12, m[s[10]], m[s[11]])
		g(2, 7, 8, 13, m[s[12]], m[s[13]])
		g(3, 4, 9, 14, m[s[14]], m[s[15]])
	}

	for i := 0; i < 8; i++ {
		h[i] ^= v[i] ^ v[i+8]
	}
}

// Blake2bCompress4R implements HashX's block-mode input expansion:
// R <- Blake2b_4r(salt, input), a keyed BLAKE2b run with only 4 rounds
// of mixing (instead of the standard 12) per compression, returning the
// raw 8x64-bit internal state rather than a serialized digest. The
// state doubles directly as the register file, since BLAKE2b's digest
// is nothing more than the little-endian encoding of h[0..7].
func Blake2bCompress4R(salt [32]byte, input []byte, out *[8]uint64) {
	const rounds = 4

	h := blake2bIV
	// Parameter block: digest_length=64, key_length=32, fanout=1,
	// depth=1 (the BLAKE2b defaults), XORed into h[0] as keyed
	// BLAKE2b requires.
	h[0] ^= 0x01010000 ^ (uint64(32) << 8) ^ uint64(64)

	var keyBlock [16]uint64
	for i := 0; i < 4; i++ {
		keyBlock[i] = binary.LittleEndian.Uint64(salt[i*8 : i*8+8])
	}

	if len(input) == 0 {
		blake2bCompress(&h, &keyBlock, 128, true, rounds)
	} else {
		t := uint64(128)
		blake2bCompress(&h, &keyBlock, t, false, rounds)

		for len(input) > 128 {
			var m [16]uint64
			for i := 0; i < 16; i++ {
				m[i] = binary.LittleEndian.Uint64(input[i*8 : i*8+8])
			}
			t += 128
			blake2bCompress(&h, &m, t, false, rounds)
			input = input[128:]
		}

		var last [128]byte
		copy(last[:], input)
		var m [16]uint64
		for i := 0; i < 16; i++ {
			m[i] = binary.LittleEndian.Uint64(last[i*8 : i*8+8])
		}
		t += uint64(len(input))
		blake2bCompress(&h, &m, t, true, rounds)
	}

	*out = h
}
