package hashx

// KnownAnswerVector is one entry of the reference implementation's
// known-answer test suite (tevador/hashx src/tests.c), carried here as
// committed reference data. See testvectors_test.go for how these are
// exercised.
type KnownAnswerVector struct {
	Name      string
	Seed      string
	BlockMode bool
	Counter   uint64 // used when !BlockMode
	Input     []byte // used when BlockMode
	DigestHex string // lowercase hex, HASHX_SIZE=32 bytes
}

// longInputVector is the 76-byte literal tests.c uses for its
// block-mode vector.
var longInputVector = []byte{
	0x0b, 0x0b, 0x98, 0xbe, 0xa7, 0xe8, 0x05, 0xe0, 0x01, 0x0a, 0x21, 0x26,
	0xd2, 0x87, 0xa2, 0xa0, 0xcc, 0x83, 0x3d, 0x31, 0x2c, 0xb7, 0x86, 0x38,
	0x5a, 0x7c, 0x2f, 0x9d, 0xe6, 0x9d, 0x25, 0x53, 0x7f, 0x58, 0x4a, 0x9b,
	0xc9, 0x97, 0x7b, 0x00, 0x00, 0x00, 0x00, 0x66, 0x6f, 0xd8, 0x75, 0x3b,
	0xf6, 0x1a, 0x86, 0x31, 0xf1, 0x29, 0x84, 0xe3, 0xfd, 0x44, 0xf4, 0x01,
	0x4e, 0xca, 0x62, 0x92, 0x76, 0x81, 0x7b, 0x56, 0xf3, 0x2e, 0x9b, 0x68,
	0xbd, 0x82, 0xf4, 0x16,
}

// knownAnswerVectors pins one revision's counter-mode and block-mode
// digests; known-answer digests differ across reference revisions, so
// mixing revisions would be meaningless. Seed strings include the
// trailing NUL the C reference's sizeof(seed) captures.
var knownAnswerVectors = []KnownAnswerVector{
	{
		Name:      "ctr/seed1/counter=123456",
		Seed:      "This is a test\x00",
		Counter:   123456,
		DigestHex: "aa0a9294e37de61561a6f67c6eb5cf7de7ffc83928d140b72cc27a00f398f889",
	},
	{
		Name:      "ctr/seed1/counter=0",
		Seed:      "This is a test\x00",
		Counter:   0,
		DigestHex: "ebb08958003246d82bcdb3bde7b067e087e19b20583139b95a5e2e19673f741e",
	},
	{
		Name:      "ctr/seed2/counter=123456",
		Seed:      "Lorem ipsum dolor sit amet\x00",
		Counter:   123456,
		DigestHex: "408fe2f609bf743d7401b469f4c4da72b12deef846069f75edafe7dcc1aae9ef",
	},
	{
		Name:      "ctr/seed2/counter=987654321123456789",
		Seed:      "Lorem ipsum dolor sit amet\x00",
		Counter:   987654321123456789,
		DigestHex: "e6a38a783dba1153a94babe97ee84c04348148e5440ac23859b80f37cf208e8f",
	},
	{
		Name:      "block/seed2/long_input",
		Seed:      "Lorem ipsum dolor sit amet\x00",
		BlockMode: true,
		Input:     longInputVector,
		DigestHex: "bcf8c222c9530e6bed3af1472b90258033a24bb4b31aa71db037b1b5d8cb11c4",
	},
}
