// mf.go - Microcode Fetch stage
package core

// pcMask sizes the microcode program counter to ROMSize.
const pcMask = ROMSize - 1

// MF is the Microcode Fetch stage: holds the microcode PC and the
// currently latched instruction register, and selects the next PC from
// a fixed priority order of sources.
type MF struct {
	pc uint32
	ir Instr

	// primed is false only for the reset bubble cycle: IR holds a
	// synthetic nop rather than a word actually read from ROM, so the
	// PC-mux must target pc itself (address 0, the reset entry point)
	// on the first real transition instead of advancing past it the
	// way it would past any already-fetched instruction.
	primed bool

	ROM *MicrocodeROM
}

// NewMF returns an MF reset to its post-reset state.
func NewMF(rom *MicrocodeROM) *MF {
	m := &MF{ROM: rom}
	m.Reset()
	return m
}

func (m *MF) Reset() {
	m.pc = 0
	m.ir = Instr{Kind: KindNop}
	m.primed = false
}

// MFInputs are MF's per-cycle inputs.
type MFInputs struct {
	Jpaddr    uint16 // from BCF, valid when Nxt is set
	Nxt       bool   // this cycle's IR has jfetch set
	Br        bool   // microcode branch taken (bz/bnz, from MD's branch evaluation)
	BrTarget  uint32
	Jmp       bool
	JmpTarget uint32
	Bsy       bool // MC busy: hold PC and IR
}

// MFOutputs are MF's per-cycle outputs.
type MFOutputs struct {
	IR Instr
	PC uint32
}

// Step advances MF by exactly one cycle. The PC-mux priority is
// dispatch > branch > jump > hold-on-busy > increment: a bytecode
// dispatch or a taken microcode branch outranks the busy hold, which
// only freezes a fall-through.
func (m *MF) Step(in MFInputs) MFOutputs {
	out := MFOutputs{IR: m.ir, PC: m.pc}

	var nextPC uint32
	switch {
	case !m.primed:
		nextPC = m.pc & pcMask
	case in.Nxt:
		nextPC = uint32(in.Jpaddr) & pcMask
	case in.Br:
		nextPC = in.BrTarget & pcMask
	case in.Jmp:
		nextPC = in.JmpTarget & pcMask
	case in.Bsy:
		return out
	default:
		nextPC = (m.pc + 1) & pcMask
	}

	m.primed = true
	m.pc = nextPC
	m.ir = m.ROM.Fetch(uint16(nextPC))

	return out
}
