package core

import "testing"

// TestAluAddRetiresThroughPipeline runs ldi 5; ldi 3; add and checks A=8.
func TestAluAddRetiresThroughPipeline(t *testing.T) {
	rom := NewMicrocodeROM()
	rom.Set(0, ROMWord{Instr: encodeLdi(5)})
	rom.Set(1, ROMWord{Instr: encodeLdi(3)})
	rom.Set(2, ROMWord{Instr: encodeAluAdd()})

	jt := NewJumpTable()
	mem := NewFlatMemory(4096)
	io := NewSimpleIOPort()
	c := NewCore(rom, jt, mem, io)

	// One extra Step beyond the three instructions: the reset cycle is a
	// bubble (IR=nop) that primes the first real fetch (mf.go's primed
	// flag), so ldi 5 does not retire into A until the second Step.
	for i := 0; i < 4; i++ {
		c.Step()
	}

	if c.SX.a != 8 {
		t.Fatalf("A = %d, want 8 (B=%d, SP=%d)", c.SX.a, c.SX.b, c.SX.sp)
	}
}

// TestBranchNotTakenFallsThrough checks that bz +5 at PC=10 with zf=0 is
// not taken, so PC at the next non-stalled cycle is 11.
func TestBranchNotTakenFallsThrough(t *testing.T) {
	rom := NewMicrocodeROM()
	instr := Instr{Kind: KindBz, Imm: 5}
	flags := Flags{Zf: false}

	if BranchTaken(instr, flags) {
		t.Fatalf("bz should not be taken when zf=0")
	}

	mf := &MF{pc: 10, ir: instr, primed: true, ROM: rom}
	mf.Step(MFInputs{Br: false, Jmp: false, Bsy: false})
	if mf.pc != 11 {
		t.Fatalf("PC = %d, want 11", mf.pc)
	}
}

// TestBranchTakenBackward checks that bnz -4 at PC=10 with zf=0 is
// taken, landing PC at 6.
func TestBranchTakenBackward(t *testing.T) {
	rom := NewMicrocodeROM()
	instr := Instr{Kind: KindBnz, Imm: -4}
	flags := Flags{Zf: false}

	if !BranchTaken(instr, flags) {
		t.Fatalf("bnz should be taken when zf=0")
	}
	target := BranchTarget(10, instr)
	if target != 6 {
		t.Fatalf("BranchTarget = %d, want 6", target)
	}

	mf := &MF{pc: 10, ir: instr, primed: true, ROM: rom}
	mf.Step(MFInputs{Br: true, BrTarget: target, Bsy: false})
	if mf.pc != 6 {
		t.Fatalf("PC = %d, want 6", mf.pc)
	}
}

// TestMemoryFastPathRoundTrip round-trips a write through stmwa/stmwd/
// stmra/wait/ldmrd on the fast path.
func TestMemoryFastPathRoundTrip(t *testing.T) {
	mem := NewFlatMemory(1 << 16)
	io := NewSimpleIOPort()
	mc := NewMC(mem, io)

	// stmwa: latch the write address.
	mc.Step(MemIn{AddrWr: true}, 0x1234, 0)
	// stmwd: dispatch the write (uses addrReg, data=aout).
	mc.Step(MemIn{Wr: true}, 0xDEADBEEF, 0)
	// WRITE_WAIT state commits the write this cycle.
	mc.Step(MemIn{}, 0xDEADBEEF, 0)
	// stmra: dispatch a read at the same address, driven from aout.
	mc.Step(MemIn{Rd: true}, 0x1234, 0)
	// READ_WAIT state commits the read this cycle.
	mc.Step(MemIn{}, 0, 0)
	// ldmrd observes the committed rdDataReg.
	out := mc.Step(MemIn{}, 0, 0)

	if out.RdData != 0xDEADBEEF {
		t.Fatalf("RdData = %#x, want 0xDEADBEEF", out.RdData)
	}
}

// TestMemoryFastPathReadUsesDispatchAddress checks that rd reads from the
// address driven combinationally on aout at dispatch, not from addrReg
// (which only stmwa/AddrWr ever touches) — a write to one address must
// not leak into a read dispatched at a different one without an
// intervening AddrWr.
func TestMemoryFastPathReadUsesDispatchAddress(t *testing.T) {
	mem := NewFlatMemory(1 << 16)
	mem.WriteWord(0x10, 0x11111111)
	mem.WriteWord(0x20, 0x22222222)
	io := NewSimpleIOPort()
	mc := NewMC(mem, io)

	// Latch addrReg at 0x10 via stmwa, but dispatch the read at 0x20.
	mc.Step(MemIn{AddrWr: true}, 0x10, 0)
	mc.Step(MemIn{Rd: true}, 0x20, 0)
	mc.Step(MemIn{}, 0, 0) // READ_WAIT commits
	out := mc.Step(MemIn{}, 0, 0)

	if out.RdData != 0x22222222 {
		t.Fatalf("RdData = %#x, want 0x22222222 (read must follow aout, not stale addrReg)", out.RdData)
	}
}

// TestBytecodeCacheFillByteSwapsWords checks that bcRd fills the JBC
// with byte-swapped words from external memory.
func TestBytecodeCacheFillByteSwapsWords(t *testing.T) {
	mem := NewFlatMemory(1 << 16)
	for i := uint32(0); i < 16; i++ {
		word := 0xAA000000 | (i * 0x010101)
		mem.WriteWord(100+i, word)
	}
	io := NewSimpleIOPort()
	mc := NewMC(mem, io)
	bcf := NewBCF(NewJumpTable())

	aout := uint32(100<<10) | 16

	// Dispatch bcRd.
	out := mc.Step(MemIn{BcRd: true}, aout, 0)
	applyJBCWrite(bcf, out)

	// Run the fill state machine until busy drops.
	for out.Busy {
		out = mc.Step(MemIn{}, 0, 0)
		applyJBCWrite(bcf, out)
	}

	for i := uint32(0); i < 16; i++ {
		word := 0xAA000000 | (i * 0x010101)
		want := byteSwap(word)
		got := bcf.jbc[i]
		if got != want {
			t.Fatalf("jbc[%d] = %#x, want %#x", i, got, want)
		}
		b0 := bcf.readByte(i * 4)
		b1 := bcf.readByte(i*4 + 1)
		b2 := bcf.readByte(i*4 + 2)
		b3 := bcf.readByte(i*4 + 3)
		wantBytes := [4]byte{byte(want), byte(want >> 8), byte(want >> 16), byte(want >> 24)}
		if b0 != wantBytes[0] || b1 != wantBytes[1] || b2 != wantBytes[2] || b3 != wantBytes[3] {
			t.Fatalf("jbc bytes at word %d = %02x %02x %02x %02x, want %02x %02x %02x %02x",
				i, b0, b1, b2, b3, wantBytes[0], wantBytes[1], wantBytes[2], wantBytes[3])
		}
	}
}

func applyJBCWrite(bcf *BCF, out MCOutputs) {
	if out.JBCWrEn {
		bcf.jbc[out.JBCWrAddr%JBCWords] = out.JBCWrData
	}
}

// TestGetFieldDereferencesHandle checks that getfield dereferences a
// handle (memory[50]=100) and reads the field at dataPtr+fieldIndex.
func TestGetFieldDereferencesHandle(t *testing.T) {
	mem := NewFlatMemory(1 << 16)
	mem.WriteWord(50, 100)
	mem.WriteWord(103, 0xCAFEBABE)
	io := NewSimpleIOPort()
	mc := NewMC(mem, io)

	out := mc.Step(MemIn{GetField: true, Bcopd: 3}, 50, 0) // dispatch
	if !out.Busy {
		t.Fatalf("expected busy after getfield dispatch")
	}
	out = mc.Step(MemIn{}, 0, 0) // deref handle
	out = mc.Step(MemIn{}, 0, 0) // read field
	if out.Busy {
		t.Fatalf("expected busy to drop after field read")
	}
	out = mc.Step(MemIn{}, 0, 0) // observe rdDataReg
	if out.RdData != 0xCAFEBABE {
		t.Fatalf("RdData = %#x, want 0xCAFEBABE", out.RdData)
	}
}

// TestBranchFamilyTpMatchesBytecode runs every branchFamily bytecode
// through DefaultJumpTable's routing and BCF.Step's Jbr/tp logic, and
// checks two things per bytecode: it resolves through addrBranchShared
// (confirming DefaultJumpTable's routing), and its low-3-bit tp tag
// picks the taken condition that bytecode means, using JPC_br (not the
// live, already-advanced jpc) as the branch-target base.
func TestBranchFamilyTpMatchesBytecode(t *testing.T) {
	// takenFlags sets exactly the flag that should make tp's condition true.
	takenFlags := map[byte]Flags{
		IF_ICMPEQ: {Eq: true},  // tp0: eq
		IF_ICMPLT: {Lt: true},  // tp1: lt
		IFNULL:    {Eq: true},  // tp2: eq
		IFNONNULL: {Eq: false}, // tp3: !eq
		IFEQ:      {Zf: true},  // tp4: zf
		IFNE:      {Zf: false}, // tp5: !zf
		IFLT:      {Nf: true},  // tp6: nf
		GOTO:      {},          // tp7: always
		IF_ICMPNE: {Eq: false}, // tp3: !eq
		IF_ACMPEQ: {Zf: true},  // tp4: zf
		IF_ACMPNE: {Zf: false}, // tp5: !zf
	}
	// notTakenFlags is the complement, except for goto which is always taken.
	notTakenFlags := map[byte]Flags{
		IF_ICMPEQ: {Eq: false},
		IF_ICMPLT: {Lt: false},
		IFNULL:    {Eq: false},
		IFNONNULL: {Eq: true},
		IFEQ:      {Zf: false},
		IFNE:      {Zf: true},
		IFLT:      {Nf: false},
		IF_ICMPNE: {Eq: true},
		IF_ACMPEQ: {Zf: false},
		IF_ACMPNE: {Zf: true},
	}

	jt := DefaultJumpTable()
	const offset = int32(5)

	run := func(b byte, flags Flags) (jpaddr uint16, nextJPC uint32) {
		bcf := NewBCF(jt)
		bcf.LoadCache([]byte{b, 0x00, byte(offset), 0x00})

		out := bcf.Step(BCFInputs{Jfetch: true})
		jpaddr = out.Jpaddr
		bcf.Step(BCFInputs{Jopdfetch: true})
		bcf.Step(BCFInputs{Jopdfetch: true})
		bcf.Step(BCFInputs{Jbr: true, Flags: flags})
		return jpaddr, bcf.jpc
	}

	for _, b := range branchFamily {
		jpaddr, _ := run(b, Flags{})
		if jpaddr != addrBranchShared {
			t.Fatalf("%s (%#x): jpaddr = %#x, want addrBranchShared", BytecodeName(b), b, jpaddr)
		}

		if flags, ok := takenFlags[b]; ok {
			_, nextJPC := run(b, flags)
			if nextJPC != uint32(offset) {
				t.Fatalf("%s (%#x): taken branch JPC = %d, want %d (tp=%d)", BytecodeName(b), b, nextJPC, offset, b&0x7)
			}
		}

		if b == GOTO {
			continue // goto's tp7 is always taken, there is no not-taken case
		}
		if flags, ok := notTakenFlags[b]; ok {
			_, nextJPC := run(b, flags)
			if nextJPC == uint32(offset) {
				t.Fatalf("%s (%#x): not-taken branch JPC = %d, should not equal target %d (tp=%d)", BytecodeName(b), b, nextJPC, offset, b&0x7)
			}
		}
	}
}

// TestResetInvariants checks the post-reset state: PC=0, IR=nop, JPC=0,
// A=B=0, SP=128, flags {zf=1, nf=0, eq=1, lt=0, spOv=0}.
func TestResetInvariants(t *testing.T) {
	c := NewCore(NewMicrocodeROM(), NewJumpTable(), NewFlatMemory(4096), NewSimpleIOPort())
	c.Step()
	c.Reset()

	if c.MF.pc != 0 || c.MF.ir.Kind != KindNop {
		t.Fatalf("PC=%d IR=%v, want PC=0 IR=nop", c.MF.pc, c.MF.ir.Kind)
	}
	if c.BCF.jpc != 0 {
		t.Fatalf("JPC=%d, want 0", c.BCF.jpc)
	}
	if c.SX.a != 0 || c.SX.b != 0 || c.SX.sp != 128 {
		t.Fatalf("A=%d B=%d SP=%d, want 0/0/128", c.SX.a, c.SX.b, c.SX.sp)
	}
	if c.SX.spOv {
		t.Fatalf("spOv set after reset")
	}
	f := ComputeFlags(c.SX.a, c.SX.b)
	if !f.Zf || !f.Eq || f.Nf || f.Lt {
		t.Fatalf("flags after reset = %+v, want zf/eq set, nf/lt clear", f)
	}
}

// TestMemoryRoundTripThroughMicrocode runs the full stmwa/stmwd/stmra/
// wait/ldmrd sequence as an actual microcode program through the whole
// pipeline, checking both the memory round trip and the pop discipline
// of the store-class MMU commands (the final A is only the read-back
// value if every stm* consumed its operand).
func TestMemoryRoundTripThroughMicrocode(t *testing.T) {
	rom := NewMicrocodeROM()
	rom.Set(0, ROMWord{Instr: encodeLdi(12)})         // push write address
	rom.Set(1, ROMWord{Instr: encodeMmu(MmuWA)})      // stmwa: latch it, pop
	rom.Set(2, ROMWord{Instr: encodeLdi(7)})          // push write data
	rom.Set(3, ROMWord{Instr: encodeMmu(MmuWD)})      // stmwd: dispatch write, pop
	rom.Set(4, ROMWord{Instr: encodeNop()})           // WRITE_WAIT commits
	rom.Set(5, ROMWord{Instr: encodeLdi(12)})         // push read address
	rom.Set(6, ROMWord{Instr: encodeMmu(MmuRA)})      // stmra: dispatch read, pop
	rom.Set(7, ROMWord{Instr: encodeWait()})          // READ_WAIT is not busy, no stall
	rom.Set(8, ROMWord{Instr: encodeLdExternal(0x0)}) // ldmrd

	mem := NewFlatMemory(4096)
	c := NewCore(rom, NewJumpTable(), mem, NewSimpleIOPort())

	for i := 0; i < 10; i++ {
		c.Step()
	}

	if got := mem.ReadWord(12); got != 7 {
		t.Fatalf("mem[12] = %d, want 7", got)
	}
	if c.SX.a != 7 {
		t.Fatalf("A = %d, want 7 (B=%d, SP=%d)", c.SX.a, c.SX.b, c.SX.sp)
	}
	// Three pushes consumed by three MMU pops, plus ldmrd's push of the
	// read-back value still outstanding.
	if c.SX.sp != 129 {
		t.Fatalf("SP = %d, want 129", c.SX.sp)
	}
}

// TestInterruptAcceptedAtFetchBoundary checks that irq is taken only on
// a jfetch cycle, pulses ack_irq exactly then, redirects jpaddr to the
// interrupt entry and zeroes the JPC; and that ena gates it off.
func TestInterruptAcceptedAtFetchBoundary(t *testing.T) {
	bcf := NewBCF(NewJumpTable())

	out := bcf.Step(BCFInputs{Irq: true, Ena: true})
	if out.AckIrq {
		t.Fatalf("irq accepted outside a fetch cycle")
	}

	out = bcf.Step(BCFInputs{Jfetch: true, Irq: true, Ena: false})
	if out.AckIrq {
		t.Fatalf("irq accepted with ena=0")
	}

	out = bcf.Step(BCFInputs{Jfetch: true, Irq: true, Ena: true})
	if !out.AckIrq || out.Jpaddr != AddrSysInt {
		t.Fatalf("ack=%v jpaddr=%#x, want ack at AddrSysInt", out.AckIrq, out.Jpaddr)
	}
	if bcf.jpc != 0 {
		t.Fatalf("JPC = %d after accepted irq, want 0", bcf.jpc)
	}

	out = bcf.Step(BCFInputs{Jfetch: true, Exc: true, Ena: false})
	if out.AckExc {
		t.Fatalf("exc accepted with ena=0")
	}

	out = bcf.Step(BCFInputs{Jfetch: true, Exc: true, Ena: true})
	if !out.AckExc || out.Jpaddr != AddrSysExc {
		t.Fatalf("ack=%v jpaddr=%#x, want ack at AddrSysExc", out.AckExc, out.Jpaddr)
	}
}

// TestAluPassReplacesTosWithNos checks the pass-through logic op: like
// and/or/xor it pops, and its result is B — the TOS is replaced by NOS,
// not left unchanged.
func TestAluPassReplacesTosWithNos(t *testing.T) {
	s := NewSX()
	s.Step(SXInputs{Curr: Instr{Kind: KindLdImm, Imm: 5}})
	s.Step(SXInputs{Curr: Instr{Kind: KindLdImm, Imm: 3}})
	s.Step(SXInputs{Curr: Decode(0b0000000000)}) // pass
	if s.a != 5 {
		t.Fatalf("A = %d after pass, want 5 (the old NOS)", s.a)
	}
	if s.sp != 129 {
		t.Fatalf("SP = %d after pass, want 129 (pass pops)", s.sp)
	}
}

// TestStackPointerWrapSetsOverflow checks that SP wraps modulo the RAM
// size in both directions and latches spOv on the wrap.
func TestStackPointerWrapSetsOverflow(t *testing.T) {
	s := NewSX()
	s.sp = StackWords - 1
	s.Step(SXInputs{Curr: Instr{Kind: KindLdImm, Imm: 1}})
	if !s.spOv || s.sp != 0 {
		t.Fatalf("push wrap: spOv=%v SP=%d, want spOv with SP=0", s.spOv, s.sp)
	}

	s = NewSX()
	s.sp = 0
	s.Step(SXInputs{Curr: Instr{Kind: KindAluLogic, Alu: AluAdd}})
	if !s.spOv || s.sp != StackWords-1 {
		t.Fatalf("pop wrap: spOv=%v SP=%d, want spOv with SP=%d", s.spOv, s.sp, StackWords-1)
	}
}

// encode* helpers mirror Decode's bit layout for building small test ROM
// images without pulling the assembler package (which itself imports
// core) into an import cycle.
func encodeLdi(v int8) uint16 {
	return 0b00110_00000 | uint16(v)&0x1F
}

func encodeAluAdd() uint16 {
	return 0b0000000100
}

func encodeMmu(op MmuOp) uint16 {
	return 0x02<<4 | uint16(op)
}

func encodeNop() uint16 {
	return 0b0100000000
}

func encodeWait() uint16 {
	return 0b0100000001
}

func encodeLdExternal(slot uint16) uint16 {
	return 0x0E<<4 | slot&0x3
}
