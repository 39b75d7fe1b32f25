// sx.go - Stack/Execute stage
package core

// StackWords sizes the 256-word operand stack RAM.
const StackWords = 256

// SX is the Stack/Execute stage. A and B cache the top two operand-stack
// words; everything below spills into the 256-word stack RAM, addressed
// either by SP/SP-1 (the generic push/pop discipline every instruction
// participates in) or by VP+offset/AR (the named local-variable-slot
// family st0..st3/ld0..ld3/stm/ldm/stmi/ldmi).
type SX struct {
	a, b     uint32
	sp       uint32
	vp       uint32
	ar       uint32
	jpcLocal uint32

	stack [StackWords]uint32

	spOv bool // stack pointer overflow/underflow latch
}

// NewSX returns an SX reset to its post-reset state (SP=128).
func NewSX() *SX {
	s := &SX{}
	s.Reset()
	return s
}

// A, B, SP and VP expose the current register values for diagnostics
// (the monitor package, cmd/jopcore's summary printout); nothing inside
// core reads through these, they exist only for external observers.
func (s *SX) A() uint32  { return s.a }
func (s *SX) B() uint32  { return s.b }
func (s *SX) SP() uint32 { return s.sp }
func (s *SX) VP() uint32 { return s.vp }

func (s *SX) Reset() {
	const spInit = 128
	s.a, s.b = 0, 0
	s.sp = spInit
	s.vp = 0
	s.ar = 0
	s.jpcLocal = 0
	s.spOv = false
}

// SXInputs are SX's per-cycle inputs.
type SXInputs struct {
	Curr Instr
	Opd  uint16
	Jpc  uint32 // BCF's current JPC; ldjpc pushes it

	// ExtDin supplies the external data source for KindLdExternal
	// (ldmrd/ldmul/ldbcstart): MC's rdDataReg, the (unmodelled)
	// multiplier result, or MC's bcStart flag, selected by Instr.Slot.
	ExtDin uint32
}

// SXOutputs are SX's per-cycle outputs.
type SXOutputs struct {
	A, B  uint32
	Flags Flags
	Aout  uint32 // TOS (A) as seen by MC
	Bout  uint32
	SpOv  bool
}

func (s *SX) slotAddr(i Instr) (addr uint32, ok bool) {
	switch i.Kind {
	case KindStRamSlot, KindLdRamSlot:
		return s.vp + uint32(i.Slot), true
	case KindStRamVP, KindLdRamVP:
		return s.vp, true
	case KindStRamIndirect, KindLdRamIndirect:
		return s.ar, true
	case KindStRamLocal, KindLdRamLocal:
		return uint32(int32(s.vp) + i.Imm), true
	}
	return 0, false
}

func aluEval(fn AluFunc, a, b uint32) uint32 {
	switch fn {
	case AluAdd:
		return a + b
	case AluSub:
		return b - a
	case AluAnd:
		return a & b
	case AluOr:
		return a | b
	case AluXor:
		return a ^ b
	default: // AluPass: pass-through B, the TOS is replaced by NOS
		return b
	}
}

func shiftEval(fn ShiftFunc, value, amount uint32) uint32 {
	amount &= 0x1F
	switch fn {
	case ShiftShl:
		return value << amount
	case ShiftShr:
		return uint32(int32(value) >> amount)
	default: // ShiftUshr
		return value >> amount
	}
}

func ldOpd(i Instr, raw uint16) uint32 {
	switch i.OpdW {
	case 8:
		if i.OpdSign {
			return uint32(int32(int8(uint8(raw))))
		}
		return uint32(uint8(raw))
	default: // 16
		if i.OpdSign {
			return uint32(int32(int16(raw)))
		}
		return uint32(raw)
	}
}

// Step advances SX by exactly one cycle. Every instruction either leaves
// the operand-stack depth unchanged, pushes exactly one word (a "load"),
// or pops exactly one word (an ALU/logic/shift op, a named-slot store, a
// special-register store, or an MMU command) — the classic two-register (A=TOS, B=NOS)
// stack cache backed by RAM at SP/SP-1.
func (s *SX) Step(in SXInputs) SXOutputs {
	curr := in.Curr
	addr, hasSlot := s.slotAddr(curr)

	var pushVal uint32
	push := false
	var popVal uint32
	pop := false
	replaceAWithOldB := false
	spWritten := false

	switch curr.Kind {
	case KindLdRamSlot, KindLdRamVP, KindLdRamIndirect, KindLdRamLocal:
		pushVal = s.stack[addr%StackWords]
		push = true
	case KindLdImm:
		pushVal = uint32(curr.Imm)
		push = true
	case KindLdSpecial:
		switch curr.Special {
		case SpecialSP:
			pushVal = s.sp
		case SpecialVP:
			pushVal = s.vp
		case SpecialJPC:
			// ldjpc reads the live Java PC from BCF, not the stjpc
			// capture: a method call saves where the bytecode stream
			// currently stands.
			pushVal = in.Jpc
		}
		push = true
	case KindLdOpd:
		pushVal = ldOpd(curr, in.Opd)
		push = true
	case KindLdExternal:
		pushVal = in.ExtDin
		push = true
	case KindDup:
		pushVal = s.a
		push = true

	case KindAluLogic:
		popVal = aluEval(curr.Alu, s.a, s.b)
		pop = true
	case KindShift:
		popVal = shiftEval(curr.Shift, s.b, s.a)
		pop = true

	case KindStRamSlot, KindStRamVP, KindStRamIndirect, KindStRamLocal:
		if hasSlot {
			s.stack[addr%StackWords] = s.a
		}
		pop = true
		replaceAWithOldB = true

	case KindStSpecial:
		switch curr.Special {
		case SpecialVP:
			s.vp = s.a
		case SpecialJPC:
			s.jpcLocal = s.a
		case SpecialAR:
			s.ar = s.a
		case SpecialSP:
			// The explicit SP write wins over this pop's decrement.
			s.sp = s.a % StackWords
			spWritten = true
		}
		pop = true
		replaceAWithOldB = true

	case KindMmu:
		// The MMU commands are store-class: each consumes the TOS it
		// hands to MC (address, index, handle or value). MC samples
		// aout before this pop commits, so the value is gone from the
		// stack by the time the transaction runs.
		pop = true
		replaceAWithOldB = true
	}

	switch {
	case push:
		s.stack[s.sp%StackWords] = s.b
		s.b = s.a
		s.a = pushVal
		if s.sp == StackWords-1 {
			s.spOv = true
		}
		s.sp = (s.sp + 1) % StackWords
	case pop:
		refill := s.stack[(s.sp+StackWords-1)%StackWords]
		if replaceAWithOldB {
			s.a = s.b
		} else {
			s.a = popVal
		}
		s.b = refill
		if !spWritten {
			if s.sp == 0 {
				s.spOv = true
			}
			s.sp = (s.sp + StackWords - 1) % StackWords
		}
	}

	return SXOutputs{
		A:     s.a,
		B:     s.b,
		Flags: ComputeFlags(s.a, s.b),
		Aout:  s.a,
		Bout:  s.b,
		SpOv:  s.spOv,
	}
}
