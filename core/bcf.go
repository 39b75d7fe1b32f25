// bcf.go - Bytecode Fetch stage
package core

// JBCWords/JBCBytes size the 2 KiB byte-addressable bytecode cache,
// stored internally as 512 32-bit words.
const (
	JBCWords = 512
	JBCBytes = JBCWords * 4

	jpcBits = 12 // 11 cache address bits + 1 overflow guard bit
	jpcMask = (1 << jpcBits) - 1
)

// BCF is the Bytecode Fetch stage: Java PC management, the bytecode
// cache, the 16-bit operand accumulator, the jump-table lookup and the
// eight-condition (tp) branch evaluation shared by the eleven
// branchFamily bytecodes. ifge/ifgt/ifle and their if_icmp forms are not
// evaluated here.
type BCF struct {
	jpc   uint32 // 12-bit (11 address bits + 1 overflow guard bit)
	opdHi byte
	opdLo byte
	jbc   [JBCWords]uint32

	// jpcBr/opByteBr are latched on the Jfetch cycle: the JPC snapshot at
	// the moment of Java-instruction fetch (JPC_br) and the opcode byte
	// itself. By the time a shared-handler jbr fires, two jopdfetch
	// cycles have already advanced jpc/curByte past the opcode to the
	// operand bytes, so the branch-type tag and the branch target base
	// must come from these latches, not from the live jpc/curByte.
	jpcBr    uint32
	opByteBr byte

	JT *JumpTable
}

// JPC exposes the current Java PC for diagnostics (the monitor package);
// nothing inside core reads through it.
func (b *BCF) JPC() uint32 { return b.jpc }

// NewBCF returns a BCF reset to its post-reset state.
func NewBCF(jt *JumpTable) *BCF {
	b := &BCF{JT: jt}
	b.Reset()
	return b
}

// Reset restores JPC and the operand accumulator; the cache contents
// survive reset.
func (b *BCF) Reset() {
	b.jpc = 0
	b.opdHi = 0
	b.opdLo = 0
	b.jpcBr = 0
	b.opByteBr = 0
}

// BCFInputs are BCF's per-cycle inputs.
type BCFInputs struct {
	Jfetch, Jopdfetch bool
	Jbr               bool
	Flags             Flags
	JpcWr             bool
	Din               uint32
	Irq, Exc, Ena     bool

	// JBC write port, driven by MC during a method-cache fill.
	JBCWrAddr uint16
	JBCWrData uint32
	JBCWrEn   bool
}

// BCFOutputs are BCF's per-cycle outputs.
type BCFOutputs struct {
	Jpaddr uint16
	Opd    uint16
	JpcOut uint32
	AckIrq bool
	AckExc bool
}

func (b *BCF) readByte(jpc uint32) byte {
	word := b.jbc[(jpc>>2)%JBCWords]
	shift := (jpc & 3) * 8
	return byte(word >> shift)
}

// LoadCache preloads the bytecode cache, including a trailing partial
// word.
func (b *BCF) LoadCache(bytes []byte) {
	if len(bytes) > JBCBytes {
		bytes = bytes[:JBCBytes]
	}
	for i, by := range bytes {
		word := i / 4
		shift := uint(i%4) * 8
		b.jbc[word] = b.jbc[word]&^(0xFF<<shift) | uint32(by)<<shift
	}
}

// Step advances BCF by exactly one cycle.
func (b *BCF) Step(in BCFInputs) BCFOutputs {
	if in.JBCWrEn {
		b.jbc[in.JBCWrAddr%JBCWords] = in.JBCWrData
	}

	// The byte the cache is presenting this cycle: it was addressed by
	// jpc at the previous edge, so this read lags one cycle behind a
	// JPC change.
	curByte := b.readByte(b.jpc)

	// Jfetch's cycle is the opcode-fetch cycle: curByte is the opcode
	// itself and b.jpc is JPC_br, the JPC at the moment of
	// Java-instruction fetch. Latch both here —
	// by the time Jbr fires (after the operand's two jopdfetch cycles),
	// the live jpc/curByte have already moved on to the operand bytes.
	if in.Jfetch {
		b.jpcBr = b.jpc
		b.opByteBr = curByte
	}

	branchTaken := false
	if in.Jbr {
		switch b.opByteBr & 0x7 {
		case 0:
			branchTaken = in.Flags.Eq
		case 1:
			branchTaken = in.Flags.Lt
		case 2:
			branchTaken = in.Flags.Eq
		case 3:
			branchTaken = !in.Flags.Eq
		case 4:
			branchTaken = in.Flags.Zf
		case 5:
			branchTaken = !in.Flags.Zf
		case 6:
			branchTaken = in.Flags.Nf
		case 7:
			branchTaken = true
		}
	}

	opd := int32(int16(uint16(b.opdHi)<<8 | uint16(b.opdLo)))
	jpaddr := b.JT.Lookup(curByte)
	ackIrq, ackExc := false, false
	nextJPC := b.jpc

	switch {
	case in.JpcWr:
		nextJPC = in.Din & jpcMask
	case branchTaken:
		nextJPC = uint32(int32(b.jpcBr)+opd) & jpcMask
	// An interrupt or exception is accepted only on a jfetch cycle:
	// jpaddr is sampled by MF exactly then, so the pending bytecode's
	// dispatch is replaced by the handler entry and the ack fires once
	// per accepted event rather than on every cycle the level input
	// stays high.
	case in.Irq && in.Ena && in.Jfetch:
		nextJPC = 0
		jpaddr = AddrSysInt
		ackIrq = true
	case in.Exc && in.Ena && in.Jfetch:
		nextJPC = 0
		jpaddr = AddrSysExc
		ackExc = true
	case in.Jfetch || in.Jopdfetch:
		nextJPC = (b.jpc + 1) & jpcMask
	}

	out := BCFOutputs{
		Jpaddr: jpaddr,
		Opd:    uint16(b.opdHi)<<8 | uint16(b.opdLo),
		JpcOut: b.jpc,
		AckIrq: ackIrq,
		AckExc: ackExc,
	}

	nextOpdHi := b.opdHi
	if in.Jopdfetch {
		nextOpdHi = b.opdLo
	}
	b.opdHi = nextOpdHi
	b.opdLo = curByte
	b.jpc = nextJPC

	return out
}
