//go:build amd64

package hashx

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/opd-ai/go-hashx/internal"
)

// callCompiled invokes the machine code starting at code, passing regs
// as its single argument in the platform calling convention the
// prologues below expect. Implemented in compiled_call_amd64.s.
func callCompiled(code uintptr, regs *[8]uint64)

// maxInstrBytes bounds the largest machine-code encoding any single
// HashX instruction can produce (UMULH_R/SMULH_R: 9 bytes).
const maxInstrBytes = 9

// archSupportsCompiled reports whether the native emitter can run on
// this host, keyed off golang.org/x/sys/cpu feature detection.
// GOARCH=amd64 already guarantees SSE2 by the ABI, so in practice
// this is always true here.
var archSupportsCompiled = cpu.X86.HasSSE2

// x86PrologueSysV and x86PrologueWin64 save the callee-saved registers
// the generated code clobbers and load the eight working registers
// from the caller's array. The two variants differ only in how the
// incoming pointer argument and the extra callee-saved registers are
// preserved, per the System V and Windows x64 calling conventions.
var x86PrologueSysV = []byte{
	0x48, 0x89, 0xF9, // mov rcx, rdi
	0x4C, 0x89, 0xE6, // mov rsi, r12
	0x4C, 0x89, 0xEF, // mov rdi, r13
	0x41, 0x56, // push r14
	0x41, 0x57, // push r15
	0x4C, 0x8B, 0x01, // mov r8, qword ptr [rcx+0]
	0x4C, 0x8B, 0x49, 0x08, // mov r9, qword ptr [rcx+8]
	0x4C, 0x8B, 0x51, 0x10, // mov r10, qword ptr [rcx+16]
	0x4C, 0x8B, 0x59, 0x18, // mov r11, qword ptr [rcx+24]
	0x4C, 0x8B, 0x61, 0x20, // mov r12, qword ptr [rcx+32]
	0x4C, 0x8B, 0x69, 0x28, // mov r13, qword ptr [rcx+40]
	0x4C, 0x8B, 0x71, 0x30, // mov r14, qword ptr [rcx+48]
	0x4C, 0x8B, 0x79, 0x38, // mov r15, qword ptr [rcx+56]
}

var x86PrologueWin64 = []byte{
	0x4C, 0x89, 0x64, 0x24, 0x08, // mov qword ptr [rsp+8], r12
	0x4C, 0x89, 0x6C, 0x24, 0x10, // mov qword ptr [rsp+16], r13
	0x4C, 0x89, 0x74, 0x24, 0x18, // mov qword ptr [rsp+24], r14
	0x4C, 0x89, 0x7C, 0x24, 0x20, // mov qword ptr [rsp+32], r15
	0x4C, 0x8B, 0x01, // mov r8, qword ptr [rcx+0]
	0x4C, 0x8B, 0x49, 0x08, // mov r9, qword ptr [rcx+8]
	0x4C, 0x8B, 0x51, 0x10, // mov r10, qword ptr [rcx+16]
	0x4C, 0x8B, 0x59, 0x18, // mov r11, qword ptr [rcx+24]
	0x4C, 0x8B, 0x61, 0x20, // mov r12, qword ptr [rcx+32]
	0x4C, 0x8B, 0x69, 0x28, // mov r13, qword ptr [rcx+40]
	0x4C, 0x8B, 0x71, 0x30, // mov r14, qword ptr [rcx+48]
	0x4C, 0x8B, 0x79, 0x38, // mov r15, qword ptr [rcx+56]
}

var x86EpilogueSysV = []byte{
	0x4C, 0x89, 0x01, // mov qword ptr [rcx+0], r8
	0x4C, 0x89, 0x49, 0x08, // mov qword ptr [rcx+8], r9
	0x4C, 0x89, 0x51, 0x10, // mov qword ptr [rcx+16], r10
	0x4C, 0x89, 0x59, 0x18, // mov qword ptr [rcx+24], r11
	0x4C, 0x89, 0x61, 0x20, // mov qword ptr [rcx+32], r12
	0x4C, 0x89, 0x69, 0x28, // mov qword ptr [rcx+40], r13
	0x4C, 0x89, 0x71, 0x30, // mov qword ptr [rcx+48], r14
	0x4C, 0x89, 0x79, 0x38, // mov qword ptr [rcx+56], r15
	0x41, 0x5F, // pop r15
	0x41, 0x5E, // pop r14
	0x49, 0x89, 0xFD, // mov r13, rdi
	0x49, 0x89, 0xF4, // mov r12, rsi
	0xC3, // ret
}

var x86EpilogueWin64 = []byte{
	0x4C, 0x89, 0x01, // mov qword ptr [rcx+0], r8
	0x4C, 0x89, 0x49, 0x08, // mov qword ptr [rcx+8], r9
	0x4C, 0x89, 0x51, 0x10, // mov qword ptr [rcx+16], r10
	0x4C, 0x89, 0x59, 0x18, // mov qword ptr [rcx+24], r11
	0x4C, 0x89, 0x61, 0x20, // mov qword ptr [rcx+32], r12
	0x4C, 0x89, 0x69, 0x28, // mov qword ptr [rcx+40], r13
	0x4C, 0x89, 0x71, 0x30, // mov qword ptr [rcx+48], r14
	0x4C, 0x89, 0x79, 0x38, // mov qword ptr [rcx+56], r15
	0x4C, 0x8B, 0x64, 0x24, 0x08, // mov r12, qword ptr [rsp+8]
	0x4C, 0x8B, 0x6C, 0x24, 0x10, // mov r13, qword ptr [rsp+16]
	0x4C, 0x8B, 0x74, 0x24, 0x18, // mov r14, qword ptr [rsp+24]
	0x4C, 0x8B, 0x7C, 0x24, 0x20, // mov r15, qword ptr [rsp+32]
	0xC3, // ret
}

// ErrCompileUnavailable is returned when executable memory could not
// be obtained for a compiled program.
var ErrCompileUnavailable = errors.New("hashx: compiled execution unavailable")

// CompiledProgram is a Program lowered to native x86-64 machine code,
// backed by an executable memory page.
type CompiledProgram struct {
	page *internal.ExecPage
}

func abiPrologueEpilogue() (prologue, epilogue []byte) {
	if runtime.GOOS == "windows" {
		return x86PrologueWin64, x86EpilogueWin64
	}
	return x86PrologueSysV, x86EpilogueSysV
}

// emitU16/emitU32/emitU64 append a little-endian encoded value,
// mirroring the reference emitter's EMIT_U16/EMIT_U32/EMIT_U64 macros.
func emitU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}

func emitU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func emitU64(buf []byte, v uint64) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// genSIB builds a ModRM/SIB-style byte used by ADD_RS's lea encoding:
// scale in bits 6-7, index in bits 3-5, base in bits 0-2.
func genSIB(scale, index, base uint8) uint8 {
	return (scale << 6) | (index << 3) | base
}

// emitInstruction appends the machine code for one instruction,
// transcribed byte-for-byte from the reference x86-64 emitter. Each
// case packs a fixed opcode skeleton with the register/immediate
// fields bit-shifted into position; there is no general-purpose
// assembler involved.
func emitInstruction(buf []byte, instr *Instruction) []byte {
	dst := uint64(instr.Dst)
	src := uint64(instr.Src)

	switch instr.Opcode {
	case OpUmulhR:
		buf = emitU64(buf, 0x8b4ce0f749c08b49|(src<<40)|(dst<<16))
		buf = append(buf, byte(0xc2+8*dst))
	case OpSmulhR:
		buf = emitU64(buf, 0x8b4ce8f749c08b49|(src<<40)|(dst<<16))
		buf = append(buf, byte(0xc2+8*dst))
	case OpMulR:
		buf = emitU32(buf, uint32(0xc0af0f4d|(dst<<27)|(src<<24)))
	case OpSubR:
		buf = emitU16(buf, 0x2b4d)
		buf = append(buf, byte(0xc0|(dst<<3)|src))
	case OpNeg:
		buf = emitU16(buf, 0xf749)
		buf = append(buf, byte(0xd8|dst))
	case OpXorR:
		buf = emitU16(buf, 0x334d)
		buf = append(buf, byte(0xc0|(dst<<3)|src))
	case OpAddRS:
		sib := genSIB(uint8(instr.Imm32), uint8(instr.Src), uint8(instr.Dst))
		buf = emitU32(buf, 0x00048d4f|uint32(dst<<19)|uint32(sib)<<24)
	case OpRorC:
		buf = emitU32(buf, 0x00c8c149|uint32(dst<<16)|(instr.Imm32<<24))
	case OpAddC:
		buf = emitU16(buf, 0x8149)
		buf = append(buf, byte(0xc0|dst))
		buf = emitU32(buf, instr.Imm32)
	case OpXorC:
		buf = emitU16(buf, 0x8149)
		buf = append(buf, byte(0xf0|dst))
		buf = emitU32(buf, instr.Imm32)
	}
	return buf
}

// Compile lowers prog to native machine code in a freshly allocated
// executable page.
func Compile(prog *Program) (*CompiledProgram, error) {
	prologue, epilogue := abiPrologueEpilogue()
	maxSize := len(prologue) + prog.size*maxInstrBytes + len(epilogue)

	page, err := internal.AllocExecPage(maxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompileUnavailable, err)
	}

	buf := page.Bytes()[:0]
	buf = append(buf, prologue...)
	for i := 0; i < prog.size; i++ {
		buf = emitInstruction(buf, &prog.Instructions[i])
	}
	buf = append(buf, epilogue...)

	if err := page.MakeExecutable(); err != nil {
		page.Free()
		return nil, fmt.Errorf("%w: %v", ErrCompileUnavailable, err)
	}

	cp := &CompiledProgram{page: page}
	runtime.SetFinalizer(cp, (*CompiledProgram).Close)
	return cp, nil
}

// Run executes the compiled program against regs in place.
func (c *CompiledProgram) Run(regs *[8]uint64) {
	callCompiled(uintptr(unsafe.Pointer(&c.page.Bytes()[0])), regs)
	runtime.KeepAlive(c)
}

// Close releases the compiled program's executable memory.
func (c *CompiledProgram) Close() error {
	return c.page.Free()
}
