package hashx

import (
	"math"
	"math/bits"
	"testing"
)

func runOne(t *testing.T, instr Instruction, regs [8]uint64) [8]uint64 {
	t.Helper()
	prog := &Program{}
	prog.Instructions[0] = instr
	prog.size = 1
	Execute(prog, &regs)
	return regs
}

func TestExecuteUmulhR(t *testing.T) {
	var regs [8]uint64
	regs[0] = math.MaxUint64
	regs[1] = 2
	out := runOne(t, Instruction{Opcode: OpUmulhR, Dst: 0, Src: 1}, regs)
	wantHi, _ := bits.Mul64(math.MaxUint64, 2)
	if out[0] != wantHi {
		t.Errorf("UMULH_R = %#x, want %#x", out[0], wantHi)
	}
}

func TestExecuteSmulhR(t *testing.T) {
	var regs [8]uint64
	var negFive, negSeven int64 = -5, -7
	regs[0] = uint64(negFive)
	regs[1] = uint64(negSeven)
	out := runOne(t, Instruction{Opcode: OpSmulhR, Dst: 0, Src: 1}, regs)
	// -5 * -7 = 35, fits in low 64 bits, so the signed high half is 0.
	if out[0] != 0 {
		t.Errorf("SMULH_R(-5,-7) high = %#x, want 0", out[0])
	}

	var negOne, one int64 = -1, 1
	regs[0] = uint64(negOne)
	regs[1] = uint64(one)
	out = runOne(t, Instruction{Opcode: OpSmulhR, Dst: 0, Src: 1}, regs)
	// -1 * 1 = -1; the signed high 64 bits of -1 in 128-bit two's
	// complement is all ones.
	if out[0] != math.MaxUint64 {
		t.Errorf("SMULH_R(-1,1) high = %#x, want 0x%x", out[0], uint64(math.MaxUint64))
	}
}

func TestExecuteMulR(t *testing.T) {
	var regs [8]uint64
	regs[0] = 6
	regs[1] = 7
	out := runOne(t, Instruction{Opcode: OpMulR, Dst: 0, Src: 1}, regs)
	if out[0] != 42 {
		t.Errorf("MUL_R = %d, want 42", out[0])
	}
}

func TestExecuteSubR(t *testing.T) {
	var regs [8]uint64
	regs[0] = 10
	regs[1] = 3
	out := runOne(t, Instruction{Opcode: OpSubR, Dst: 0, Src: 1}, regs)
	if out[0] != 7 {
		t.Errorf("SUB_R = %d, want 7", out[0])
	}
}

func TestExecuteXorR(t *testing.T) {
	var regs [8]uint64
	regs[0] = 0b1010
	regs[1] = 0b0110
	out := runOne(t, Instruction{Opcode: OpXorR, Dst: 0, Src: 1}, regs)
	if out[0] != 0b1100 {
		t.Errorf("XOR_R = %b, want %b", out[0], 0b1100)
	}
}

func TestExecuteAddRS(t *testing.T) {
	var regs [8]uint64
	regs[0] = 1
	regs[1] = 3
	out := runOne(t, Instruction{Opcode: OpAddRS, Dst: 0, Src: 1, Imm32: 2}, regs)
	if out[0] != 1+(3<<2) {
		t.Errorf("ADD_RS = %d, want %d", out[0], 1+(3<<2))
	}
}

func TestExecuteRorC(t *testing.T) {
	var regs [8]uint64
	regs[0] = 1
	out := runOne(t, Instruction{Opcode: OpRorC, Dst: 0, Src: noSource, Imm32: 1}, regs)
	if out[0] != (1 << 63) {
		t.Errorf("ROR_C(1,1) = %#x, want %#x", out[0], uint64(1)<<63)
	}
}

func TestExecuteAddC(t *testing.T) {
	var regs [8]uint64
	regs[0] = 100
	out := runOne(t, Instruction{Opcode: OpAddC, Dst: 0, Src: noSource, Imm32: 0xFFFFFFFF}, regs)
	// imm32 0xFFFFFFFF sign-extends to -1.
	if out[0] != 99 {
		t.Errorf("ADD_C(100, -1) = %d, want 99", out[0])
	}
}

func TestExecuteXorC(t *testing.T) {
	var regs [8]uint64
	regs[0] = 0
	out := runOne(t, Instruction{Opcode: OpXorC, Dst: 0, Src: noSource, Imm32: 0xFFFFFFFF}, regs)
	// Sign-extended -1 is all ones in 64 bits.
	if out[0] != math.MaxUint64 {
		t.Errorf("XOR_C(0, -1) = %#x, want all ones", out[0])
	}
}

func TestExecuteNeg(t *testing.T) {
	var regs [8]uint64
	regs[0] = 5
	out := runOne(t, Instruction{Opcode: OpNeg, Dst: 0, Src: noSource}, regs)
	var five int64 = 5
	want := uint64(-five)
	if out[0] != want {
		t.Errorf("NEG(5) = %d, want %d", out[0], want)
	}
}

// TestExecuteSequenceIsDeterministic checks a straight-line program
// of several instructions gives the same result across repeated
// runs from the same starting registers, the property HashX's
// compiled/interpreted parity and repeated HashCounter calls both
// depend on.
func TestExecuteSequenceIsDeterministic(t *testing.T) {
	prog := &Program{}
	prog.Instructions[0] = Instruction{Opcode: OpAddC, Dst: 0, Src: noSource, Imm32: 7}
	prog.Instructions[1] = Instruction{Opcode: OpXorR, Dst: 1, Src: 0}
	prog.Instructions[2] = Instruction{Opcode: OpRorC, Dst: 1, Src: noSource, Imm32: 4}
	prog.size = 3

	start := [8]uint64{1, 2, 3, 4, 5, 6, 7, 8}
	a := start
	b := start
	Execute(prog, &a)
	Execute(prog, &b)
	if a != b {
		t.Fatalf("two runs from identical state diverged: %+v != %+v", a, b)
	}
}
