package hashx

import "math"

// Opcode identifies a HashX instruction. The order is significant: the
// isMul/isWideMul predicates below are range checks against it, not a
// member-of-set test.
type Opcode uint8

const (
	// OpUmulhR: dst <- high64(dst * src), unsigned.
	OpUmulhR Opcode = iota
	// OpSmulhR: dst <- high64(dst * src), signed.
	OpSmulhR
	// OpMulR: dst <- low64(dst * src).
	OpMulR
	// OpSubR: dst <- dst - src.
	OpSubR
	// OpXorR: dst <- dst ^ src.
	OpXorR
	// OpAddRS: dst <- dst + (src << imm32), imm32 in {0,1,2,3}.
	OpAddRS
	// OpRorC: dst <- rotate-right(dst, imm32), imm32 in {1..63}.
	OpRorC
	// OpAddC: dst <- dst + sign_extend32(imm32).
	OpAddC
	// OpXorC: dst <- dst ^ sign_extend32(imm32).
	OpXorC
	// OpNeg: dst <- -dst.
	OpNeg
)

// isMul reports whether opcode is one of the three multiply variants.
func (o Opcode) isMul() bool {
	return o <= OpMulR
}

// isWideMul reports whether opcode is a 64x64->128 high-half multiply.
func (o Opcode) isWideMul() bool {
	return o < OpMulR
}

func (o Opcode) String() string {
	switch o {
	case OpUmulhR:
		return "UMULH_R"
	case OpSmulhR:
		return "SMULH_R"
	case OpMulR:
		return "MUL_R"
	case OpSubR:
		return "SUB_R"
	case OpXorR:
		return "XOR_R"
	case OpAddRS:
		return "ADD_RS"
	case OpRorC:
		return "ROR_C"
	case OpAddC:
		return "ADD_C"
	case OpXorC:
		return "XOR_C"
	case OpNeg:
		return "NEG"
	default:
		return "UNKNOWN"
	}
}

// noSource marks an instruction with no source register.
const noSource int8 = -1

// noParam marks an instruction with no diversity-tracking parameter.
const noParam uint32 = math.MaxUint32

// Instruction is a single straight-line HashX program step.
type Instruction struct {
	Opcode Opcode
	Dst    int8   // 0..7
	Src    int8   // 0..7, or noSource
	Imm32  uint32 // meaning depends on Opcode
	OpPar  uint32 // diversity-tracking tag; noParam if unused
}

// ProgramSize is the fixed instruction count of an accepted program.
const ProgramSize = 512

// RequiredMulCount is the exact multiply-instruction count an accepted
// program must contain.
const RequiredMulCount = 170

// RequiredLatency is the exact (zero-based) simulated critical-path
// latency an accepted program must reach.
const RequiredLatency = 172

// Program is a fixed-length, branch-free sequence of register
// instructions produced by the Generator from a seed-derived key.
type Program struct {
	Instructions [ProgramSize]Instruction
	size         int // instructions actually filled; == ProgramSize in every accepted program
}

// Stats carries diagnostics about an accepted program that aren't
// needed to run it, but are useful for evaluating the generator (see
// the reference implementation's optional HASHX_PROGRAM_STATS build).
type Stats struct {
	MulCount     int // total multiply instructions
	WideMulCount int // UMULH_R/SMULH_R instructions
	CPULatency   int // simulated superscalar critical path (cycles)
	ASICLatency  int // idealized 1-cycle-per-op, infinite-port critical path
	IPC          float64
}
