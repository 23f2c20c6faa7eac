package hashx

import "math/bits"

// signedMulHi64 returns the high 64 bits of the signed 128-bit product
// of a and b, derived from the unsigned product via the standard
// two's-complement correction (bits.Mul64 only gives the unsigned
// result).
func signedMulHi64(a, b int64) int64 {
	hi, _ := bits.Mul64(uint64(a), uint64(b))
	if a < 0 {
		hi -= uint64(b)
	}
	if b < 0 {
		hi -= uint64(a)
	}
	return int64(hi)
}

// signExtend32 sign-extends a 32-bit immediate to 64 bits, as used by
// ADD_C and XOR_C.
func signExtend32(imm32 uint32) uint64 {
	return uint64(int64(int32(imm32)))
}

// Execute runs prog against registers in place using a plain
// switch-based interpreter. It never allocates and never branches on
// program data beyond the fixed opcode dispatch, matching the
// straight-line-program execution model HashX's ASIC resistance
// depends on: the interpreted and JIT-compiled paths must produce
// identical output for every accepted program.
func Execute(prog *Program, regs *[8]uint64) {
	for i := 0; i < prog.size; i++ {
		instr := &prog.Instructions[i]
		dst := &regs[instr.Dst]

		switch instr.Opcode {
		case OpUmulhR:
			hi, _ := bits.Mul64(*dst, regs[instr.Src])
			*dst = hi
		case OpSmulhR:
			*dst = uint64(signedMulHi64(int64(*dst), int64(regs[instr.Src])))
		case OpMulR:
			*dst *= regs[instr.Src]
		case OpSubR:
			*dst -= regs[instr.Src]
		case OpXorR:
			*dst ^= regs[instr.Src]
		case OpAddRS:
			*dst += regs[instr.Src] << instr.Imm32
		case OpRorC:
			*dst = bits.RotateLeft64(*dst, -int(instr.Imm32))
		case OpAddC:
			*dst += signExtend32(instr.Imm32)
		case OpXorC:
			*dst ^= signExtend32(instr.Imm32)
		case OpNeg:
			*dst = -*dst
		}
	}
}
