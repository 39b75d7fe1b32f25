package core

import "testing"

func TestDecodeAluFamily(t *testing.T) {
	cases := []struct {
		ir   uint16
		kind InstrKind
		alu  AluFunc
	}{
		{0b0000000100, KindAluLogic, AluAdd},
		{0b0000001100, KindAluLogic, AluSub},
		{0b0000000000, KindAluLogic, AluPass},
		{0b0000000001, KindAluLogic, AluAnd},
		{0b0000000010, KindAluLogic, AluOr},
		{0b0000000011, KindAluLogic, AluXor},
	}
	for _, c := range cases {
		got := Decode(c.ir)
		if got.Kind != c.kind || got.Alu != c.alu {
			t.Errorf("Decode(%#b) = %+v, want kind=%v alu=%v", c.ir, got, c.kind, c.alu)
		}
	}
}

func TestDecodeStRamSlot(t *testing.T) {
	// 000001 0000 = st0
	ir := uint16(0b0000010000)
	got := Decode(ir)
	if got.Kind != KindStRamSlot || got.Slot != 0 {
		t.Fatalf("Decode(st0) = %+v", got)
	}
}

func TestDecodeStmLocal(t *testing.T) {
	// 000011 0101 = stm 5
	ir := uint16(0b0000110101)
	got := Decode(ir)
	if got.Kind != KindStRamLocal || got.Imm != 5 {
		t.Fatalf("Decode(stm 5) = %+v", got)
	}
}

func TestDecodeStmLocalNegativeOffset(t *testing.T) {
	// 000011 1111 = stm -1 (4-bit sign extend)
	ir := uint16(0b0000111111)
	got := Decode(ir)
	if got.Kind != KindStRamLocal || got.Imm != -1 {
		t.Fatalf("Decode(stm -1) = %+v", got)
	}
}

func TestDecodeMmu(t *testing.T) {
	ir := uint16(0b0000100000 | (0x01 << 0)) // 000010 0001 = stmwa
	got := Decode(ir)
	if got.Kind != KindMmu || got.Mmu != MmuWA {
		t.Fatalf("Decode(stmwa) = %+v", got)
	}
}

func TestDecodeLdImm(t *testing.T) {
	// 00110 00111 = ldi 7
	ir := uint16(0b0011000111)
	got := Decode(ir)
	if got.Kind != KindLdImm || got.Imm != 7 {
		t.Fatalf("Decode(ldi 7) = %+v", got)
	}
}

func TestDecodeJbrWaitNop(t *testing.T) {
	base := uint16(0b0100000000)
	if got := Decode(base | 0b00); got.Kind != KindNop {
		t.Errorf("Decode(nop) = %+v", got)
	}
	if got := Decode(base | 0b01); got.Kind != KindWait || !got.Wait {
		t.Errorf("Decode(wait) = %+v", got)
	}
	if got := Decode(base | 0b10); got.Kind != KindJbr || !got.Jbr {
		t.Errorf("Decode(jbr) = %+v", got)
	}
}

func TestDecodeBzBnz(t *testing.T) {
	// 0110 000101 = bz +5
	bz := Decode(uint16(0b0110000101))
	if bz.Kind != KindBz || bz.Imm != 5 {
		t.Fatalf("Decode(bz +5) = %+v", bz)
	}
	// 0111 111011 = bnz -5 (6-bit sign extend)
	bnz := Decode(uint16(0b0111111011))
	if bnz.Kind != KindBnz || bnz.Imm != -5 {
		t.Fatalf("Decode(bnz -5) = %+v", bnz)
	}
}

func TestDecodeJmp(t *testing.T) {
	// 1 000000101 = jmp +5
	got := Decode(uint16(0b1000000101))
	if got.Kind != KindJmp || got.Imm != 5 {
		t.Fatalf("Decode(jmp +5) = %+v", got)
	}
}

// TestDecodeUndefinedPatternsAreNop checks the gap patterns inside each
// prefix family and the wholly unassigned prefixes all decode to nop.
func TestDecodeUndefinedPatternsAreNop(t *testing.T) {
	undefined := []uint16{
		0b0000011010, // 000001 family gap between stsp and ushr
		0b0000011111, // 000001 family past shr
		0b0011100011, // 001110 family gap between ldbcstart and ld0
		0b0011111001, // 001111 family past dup
		0b0100000011, // 0100 0000 11: unassigned fourth code
		0b0001000000, // 000100 .... : unassigned prefix
		0b0101000000, // 0101 ...... : unassigned prefix
	}
	for _, ir := range undefined {
		if got := Decode(ir); got.Kind != KindNop {
			t.Errorf("Decode(%#010b) = %v, want nop", ir, got.Kind)
		}
	}
}

func TestDecodeLdOpdWidths(t *testing.T) {
	// 001111 0100 = ld_opd_8u
	got := Decode(uint16(0b0011110100))
	if got.Kind != KindLdOpd || got.OpdW != 8 || got.OpdSign {
		t.Fatalf("Decode(ld_opd_8u) = %+v", got)
	}
	// 001111 0111 = ld_opd_16s
	got = Decode(uint16(0b0011110111))
	if got.Kind != KindLdOpd || got.OpdW != 16 || !got.OpdSign {
		t.Fatalf("Decode(ld_opd_16s) = %+v", got)
	}
}
