package hashx

// executionPort models one of the three Ivy-Bridge-class integer
// issue ports the generator schedules against. Ports are represented as
// a bitmask so a template's uop can be "either P0 or P1" etc.
type executionPort uint8

const (
	portNone executionPort = 0
	portP0   executionPort = 1 << 0
	portP1   executionPort = 1 << 1
	portP5   executionPort = 1 << 2
	portP01  executionPort = portP0 | portP1
	portP05  executionPort = portP0 | portP5
	portP015 executionPort = portP0 | portP1 | portP5
)

// instrTemplate is one of the ten pseudorandom-generation templates.
// Two-micro-op templates (the wide multiplies) are distinguished by
// uop2 != portNone.
type instrTemplate struct {
	opcode        Opcode
	latency       int
	uop1          executionPort
	uop2          executionPort
	immediateMask uint32
	group         Opcode
	immCanBeZero  bool
	distinctDst   bool
	opParSrc      bool
	hasSrc        bool
}

var (
	tplUmulhR = instrTemplate{
		opcode: OpUmulhR, latency: 4, uop1: portP1, uop2: portP5,
		immediateMask: 0, group: OpUmulhR,
		immCanBeZero: false, distinctDst: false, opParSrc: false, hasSrc: true,
	}
	tplSmulhR = instrTemplate{
		opcode: OpSmulhR, latency: 4, uop1: portP1, uop2: portP5,
		immediateMask: 0, group: OpSmulhR,
		immCanBeZero: false, distinctDst: false, opParSrc: false, hasSrc: true,
	}
	tplMulR = instrTemplate{
		opcode: OpMulR, latency: 3, uop1: portP1, uop2: portNone,
		immediateMask: 0, group: OpMulR,
		immCanBeZero: false, distinctDst: true, opParSrc: true, hasSrc: true,
	}
	tplSubR = instrTemplate{
		opcode: OpSubR, latency: 1, uop1: portP015, uop2: portNone,
		immediateMask: 0, group: OpAddRS,
		immCanBeZero: false, distinctDst: true, opParSrc: true, hasSrc: true,
	}
	tplXorR = instrTemplate{
		opcode: OpXorR, latency: 1, uop1: portP015, uop2: portNone,
		immediateMask: 0, group: OpXorR,
		immCanBeZero: false, distinctDst: true, opParSrc: true, hasSrc: true,
	}
	tplAddRS = instrTemplate{
		opcode: OpAddRS, latency: 1, uop1: portP01, uop2: portNone,
		immediateMask: 3, group: OpAddRS,
		immCanBeZero: true, distinctDst: true, opParSrc: true, hasSrc: true,
	}
	tplRorC = instrTemplate{
		opcode: OpRorC, latency: 1, uop1: portP05, uop2: portNone,
		immediateMask: 63, group: OpRorC,
		immCanBeZero: false, distinctDst: true, opParSrc: false, hasSrc: false,
	}
	tplAddC = instrTemplate{
		opcode: OpAddC, latency: 1, uop1: portP015, uop2: portNone,
		immediateMask: 0xFFFFFFFF, group: OpAddC,
		immCanBeZero: false, distinctDst: true, opParSrc: false, hasSrc: false,
	}
	tplXorC = instrTemplate{
		opcode: OpXorC, latency: 1, uop1: portP015, uop2: portNone,
		immediateMask: 0xFFFFFFFF, group: OpXorC,
		immCanBeZero: false, distinctDst: true, opParSrc: false, hasSrc: false,
	}
	tplNeg = instrTemplate{
		// Two's complement negation is equivalent to xor r,-1; add r,1,
		// hence it shares the ADD_C group for adjacency rejection.
		opcode: OpNeg, latency: 1, uop1: portP015, uop2: portNone,
		immediateMask: 0, group: OpAddC,
		immCanBeZero: false, distinctDst: true, opParSrc: false, hasSrc: false,
	}
)

// templateLookup is the 8-entry table the generator indexes with a u8
// RNG draw modulo 8 (or modulo 4, restricted to the src-less entries,
// on a stall retry). Order matters: it is part of the deterministic
// seed -> program mapping.
var templateLookup = [8]*instrTemplate{
	&tplRorC,
	&tplNeg,
	&tplXorC,
	&tplAddC,
	&tplRorC,
	&tplSubR,
	&tplXorR,
	&tplAddRS,
}
