package hashx

import "github.com/opd-ai/go-hashx/internal"

// Simulated scheduler constants. The target cycle and the acceptance
// requirements are empirical targets for an Ivy-Bridge-class 3-port
// superscalar core; they are not free parameters.
const (
	targetCycle               = 170
	portMapSize               = targetCycle + 4
	maxRetries                = 1
	registerNeedsDisplacement = 5 // r5 cannot be ADD_RS's destination
)

// noGroup is a group/opcode sentinel outside the valid 0..9 opcode
// range, standing in for the reference implementation's "-1" marker on
// a register that has never been written or on "no previous
// instruction".
const noGroup Opcode = 0xFF

// registerInfo tracks, for one of the 8 registers, everything the
// generator needs to decide whether it's a legal operand candidate.
type registerInfo struct {
	latency   int    // cycle at which the register's value becomes available
	lastOp    Opcode // group of the last instruction that wrote it
	lastOpPar uint32 // op_par of that instruction
}

// portGrid records, per simulated cycle, which of the three
// integer ports (P0, P1, P5 at indices 0, 1, 2) are already occupied.
type portGrid [portMapSize][3]bool

func scheduleUop(uop executionPort, ports *portGrid, fromCycle int, commit bool) int {
	for cycle := fromCycle; cycle < portMapSize; cycle++ {
		// Priority P5 -> P0 -> P1: avoids overloading P1, the only port
		// that can run multiplies.
		if uop&portP5 != 0 && !ports[cycle][2] {
			if commit {
				ports[cycle][2] = true
			}
			return cycle
		}
		if uop&portP0 != 0 && !ports[cycle][0] {
			if commit {
				ports[cycle][0] = true
			}
			return cycle
		}
		if uop&portP1 != 0 && !ports[cycle][1] {
			if commit {
				ports[cycle][1] = true
			}
			return cycle
		}
	}
	return -1
}

// scheduleInstr finds the earliest cycle at which every micro-op of
// tpl can be placed. Two-micro-op instructions require both micro-ops
// to land in the same cycle.
//
// The commit path preserves a quirk of the reference implementation:
// for a two-micro-op instruction, only the first micro-op's port
// reservation is actually committed; the second is re-located but
// never marked occupied. Reproducing this exactly is required for
// programs (and therefore digests) to match the reference
// implementation this was ported from.
func scheduleInstr(tpl *instrTemplate, ports *portGrid, fromCycle int, commit bool) int {
	if tpl.uop2 == portNone {
		return scheduleUop(tpl.uop1, ports, fromCycle, commit)
	}
	for cycle := fromCycle; cycle < portMapSize; cycle++ {
		cycle1 := scheduleUop(tpl.uop1, ports, cycle, false)
		cycle2 := scheduleUop(tpl.uop2, ports, cycle, false)
		if cycle1 >= 0 && cycle1 == cycle2 {
			if commit {
				scheduleUop(tpl.uop1, ports, cycle, true)
				scheduleUop(tpl.uop2, ports, cycle, false)
			}
			return cycle1
		}
	}
	return -1
}

// selectTemplate picks the next instruction's template. Multiplies are
// forced whenever the running multiply count is behind the current
// cycle, to spread them evenly through the program; otherwise a
// template is drawn from the 8-entry lookup table, retried if it would
// collide with the previous instruction's group, and restricted to the
// src-less first four entries after a stall.
func selectTemplate(rng *siphashRNG, cycle, mulCount int, lastGroup Opcode, attempt int) *instrTemplate {
	if mulCount < cycle+1 {
		if mulCount%4 == 0 {
			if rng.u8()%2 != 0 {
				return &tplSmulhR
			}
			return &tplUmulhR
		}
		return &tplMulR
	}

	limit := 8
	if attempt > 0 {
		limit = 4
	}
	for {
		tpl := templateLookup[int(rng.u8())%limit]
		if tpl.group != lastGroup {
			return tpl
		}
	}
}

// instrFromTemplate fills in the parts of instr that come directly
// from drawing template-shaped randomness, before source/destination
// registers are chosen.
func instrFromTemplate(tpl *instrTemplate, rng *siphashRNG, instr *Instruction) {
	if tpl.immediateMask != 0 {
		for {
			instr.Imm32 = rng.u32() & tpl.immediateMask
			if instr.Imm32 != 0 || tpl.immCanBeZero {
				break
			}
		}
	}
	if !tpl.opParSrc {
		if tpl.distinctDst {
			instr.OpPar = noParam
		} else {
			instr.OpPar = rng.u32()
		}
	}
	if !tpl.hasSrc {
		instr.Src = noSource
	}
}

func selectRegister(candidates []int8, rng *siphashRNG) (int8, bool) {
	switch len(candidates) {
	case 0:
		return 0, false
	case 1:
		return candidates[0], true
	default:
		return candidates[rng.u32()%uint32(len(candidates))], true
	}
}

// selectSource picks a source register ready by the given schedule
// cycle. A special case hands r5 to ADD_RS whenever it is one of
// exactly two live candidates, since r5 can never be its destination.
func selectSource(tpl *instrTemplate, instr *Instruction, regs *[8]registerInfo, rng *siphashRNG, cycle int) bool {
	var avail [8]int8
	n := 0
	for i := 0; i < 8; i++ {
		if regs[i].latency <= cycle {
			avail[n] = int8(i)
			n++
		}
	}

	if n == 2 && tpl.opcode == OpAddRS {
		if avail[0] == registerNeedsDisplacement || avail[1] == registerNeedsDisplacement {
			instr.Src = registerNeedsDisplacement
			instr.OpPar = registerNeedsDisplacement
			return true
		}
	}

	src, ok := selectRegister(avail[:n], rng)
	if !ok {
		return false
	}
	instr.Src = src
	if tpl.opParSrc {
		instr.OpPar = uint32(src)
	}
	return true
}

// selectDestination picks a destination register ready by the given
// schedule cycle, excluding registers that would make the instruction
// trivially reversible or collapsible with its neighbors: chained
// multiplies accumulate trailing zeros, and repeating the last
// operation group with the same parameter produces sequences like
// "add r,c1; add r,c2" that an optimizer could merge.
func selectDestination(tpl *instrTemplate, instr *Instruction, regs *[8]registerInfo, chainMul bool, rng *siphashRNG, cycle int) bool {
	var avail [8]int8
	n := 0
	for i := 0; i < 8; i++ {
		ri := &regs[i]
		ok := ri.latency <= cycle
		ok = ok && (!tpl.distinctDst || int8(i) != instr.Src)
		ok = ok && (chainMul || tpl.group != OpMulR || ri.lastOp != OpMulR)
		ok = ok && (ri.lastOp != tpl.group || ri.lastOpPar != instr.OpPar)
		ok = ok && (tpl.opcode != OpAddRS || i != registerNeedsDisplacement)
		if ok {
			avail[n] = int8(i)
			n++
		}
	}

	dst, ok := selectRegister(avail[:n], rng)
	if !ok {
		return false
	}
	instr.Dst = dst
	return true
}

// GenerateProgram runs the pseudorandom instruction generator under
// key, the 128-bit SipHash key derived from a seed. It
// reports whether the resulting program meets the acceptance
// thresholds (instruction count, multiply count, critical-path
// latency); seed rejection is rare but must be surfaced to the caller,
// never silently retried.
func GenerateProgram(key internal.SipKey) (*Program, bool) {
	prog, _, _, ok := generateProgram(key)
	return prog, ok
}

// GenerateProgramWithStats behaves like GenerateProgram but also
// returns diagnostic statistics about the generated program, matching
// the reference's optional HASHX_PROGRAM_STATS build. Computing stats
// costs an extra O(program size) pass, so callers that don't need them
// should use GenerateProgram.
func GenerateProgramWithStats(key internal.SipKey) (*Program, Stats, bool) {
	prog, mulCount, latency, ok := generateProgram(key)
	return prog, computeStats(prog, mulCount, latency), ok
}

func generateProgram(key internal.SipKey) (*Program, int, int, bool) {
	rng := newSiphashRNG(key)

	var regs [8]registerInfo
	for i := range regs {
		regs[i] = registerInfo{latency: 0, lastOp: noGroup, lastOpPar: noParam}
	}

	var ports portGrid
	cycle := 0
	mulCount := 0
	latency := 0
	subCycle := 0
	attempt := 0
	lastGroup := noGroup

	prog := &Program{}

	for prog.size < ProgramSize {
		tpl := selectTemplate(rng, cycle, mulCount, lastGroup, attempt)
		lastGroup = tpl.group

		instr := Instruction{Opcode: tpl.opcode}
		instrFromTemplate(tpl, rng, &instr)

		scheduleCycle := scheduleInstr(tpl, &ports, cycle, false)
		if scheduleCycle < 0 {
			break
		}

		chainMul := attempt > 0

		stall := false
		if tpl.hasSrc {
			if !selectSource(tpl, &instr, &regs, rng, scheduleCycle) {
				stall = true
			}
		}
		if !stall {
			if !selectDestination(tpl, &instr, &regs, chainMul, rng, scheduleCycle) {
				stall = true
			}
		}
		if stall {
			if attempt < maxRetries {
				attempt++
				continue
			}
			subCycle += 3
			cycle = subCycle / 3
			attempt = 0
			continue
		}
		attempt = 0

		scheduleCycle = scheduleInstr(tpl, &ports, cycle, true)
		if scheduleCycle < 0 {
			break
		}
		if scheduleCycle >= targetCycle {
			break
		}

		ri := &regs[instr.Dst]
		retireCycle := scheduleCycle + tpl.latency
		ri.latency = retireCycle
		ri.lastOp = tpl.group
		ri.lastOpPar = instr.OpPar
		if retireCycle > latency {
			latency = retireCycle
		}

		prog.Instructions[prog.size] = instr
		prog.size++

		if tpl.opcode.isMul() {
			mulCount++
		}

		subCycle++
		cycle = subCycle / 3
	}

	accepted := prog.size == ProgramSize && mulCount == RequiredMulCount && latency == RequiredLatency

	return prog, mulCount, latency, accepted
}

// computeStats derives the idealized ASIC critical path (unlimited
// ports, 1-cycle latency per op) alongside the CPU-modeled figures
// already known from generation, matching the reference
// implementation's optional diagnostics.
func computeStats(prog *Program, mulCount, cpuLatency int) Stats {
	var asicLatencies [8]int
	wideMulCount := 0

	for i := 0; i < prog.size; i++ {
		instr := &prog.Instructions[i]
		lastDst := asicLatencies[instr.Dst] + 1
		latSrc := 0
		if instr.Src >= 0 && instr.Dst != instr.Src {
			latSrc = asicLatencies[instr.Src] + 1
		}
		if latSrc > lastDst {
			asicLatencies[instr.Dst] = latSrc
		} else {
			asicLatencies[instr.Dst] = lastDst
		}
		if instr.Opcode.isWideMul() {
			wideMulCount++
		}
	}

	asicLatency := 0
	for _, l := range asicLatencies {
		if l > asicLatency {
			asicLatency = l
		}
	}

	ipc := 0.0
	if cpuLatency > 0 {
		ipc = float64(prog.size) / float64(cpuLatency)
	}

	return Stats{
		MulCount:     mulCount,
		WideMulCount: wideMulCount,
		CPULatency:   cpuLatency,
		ASICLatency:  asicLatency,
		IPC:          ipc,
	}
}
