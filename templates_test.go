package hashx

import "testing"

// TestTemplateLookupOrder pins the 8-entry lookup table order, which
// is part of the deterministic seed -> program mapping: any
// reordering would silently change every generated program.
func TestTemplateLookupOrder(t *testing.T) {
	wantOpcodes := [8]Opcode{
		OpRorC, OpNeg, OpXorC, OpAddC, OpRorC, OpSubR, OpXorR, OpAddRS,
	}
	for i, want := range wantOpcodes {
		if got := templateLookup[i].opcode; got != want {
			t.Errorf("templateLookup[%d].opcode = %v, want %v", i, got, want)
		}
	}
}

// TestStallRetryEntriesAreSrcLess checks that the first four lookup
// entries (used when a stall forces limit=4) are exactly the
// templates with no source register, since ADD_RS/SUB_R/XOR_R all
// read from registers that might be the cause of the stall.
func TestStallRetryEntriesAreSrcLess(t *testing.T) {
	for i := 0; i < 4; i++ {
		if templateLookup[i].hasSrc {
			t.Errorf("templateLookup[%d] (%v) has a source register; stall retries require src-less templates", i, templateLookup[i].opcode)
		}
	}
}

func TestAddRSTemplateShape(t *testing.T) {
	if !tplAddRS.distinctDst {
		t.Fatal("ADD_RS must be marked distinctDst")
	}
	// The dst != 5 rule is enforced in selectDestination, not in the
	// template itself; this test just pins the template shape the
	// rule depends on reading (opcode == OpAddRS).
	if tplAddRS.opcode != OpAddRS {
		t.Fatalf("tplAddRS.opcode = %v, want OpAddRS", tplAddRS.opcode)
	}
}

func TestRorCImmediateMaskExcludesZero(t *testing.T) {
	if tplRorC.immediateMask != 63 {
		t.Fatalf("ROR_C immediate mask = %d, want 63", tplRorC.immediateMask)
	}
	if tplRorC.immCanBeZero {
		t.Fatal("ROR_C must never draw imm32 == 0; a zero rotate is a no-op")
	}
}

func TestWideMulTemplatesUseTwoUops(t *testing.T) {
	for _, tpl := range []*instrTemplate{&tplUmulhR, &tplSmulhR} {
		if tpl.uop2 == portNone {
			t.Errorf("%v is a wide multiply and must occupy two micro-ops", tpl.opcode)
		}
	}
	if tplMulR.uop2 != portNone {
		t.Error("MUL_R is a single micro-op instruction")
	}
}

func TestPortAssignmentPriorityOrder(t *testing.T) {
	// scheduleUop must try P5 before P0 before P1, keeping the
	// multiplier port free.
	var ports portGrid
	ports[0][0] = true // P0 occupied
	cycle := scheduleUop(portP015, &ports, 0, true)
	if cycle != 0 {
		t.Fatalf("expected cycle 0 to still be schedulable via P5, got %d", cycle)
	}
	if !ports[0][2] || ports[0][1] {
		t.Fatalf("expected P5 to be taken before P1, got ports %v", ports[0])
	}
}
