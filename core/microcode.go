// microcode.go - 10-bit microcode instruction decode for the stack/execute pipeline
package core

// InstrKind tags the decoded variant of a 10-bit microcode instruction.
// Decode happens once, when MF fetches the word (MicrocodeROM.Fetch); the
// variant is then carried through the pipeline as the control signal
// bundle.
type InstrKind uint8

const (
	KindNop InstrKind = iota
	KindAluLogic
	KindShift
	KindStRamSlot     // st0..st3
	KindStRamVP       // st   (RAM[VP+dir])
	KindStRamIndirect // stmi
	KindStSpecial     // stvp, stjpc, star, stsp
	KindStRamLocal    // stm a
	KindMmu           // one of the 16 MMU command signals
	KindLdRamLocal    // ldm a
	KindLdImm         // ldi a
	KindLdRamSlot     // ld0..ld3
	KindLdRamVP       // ld
	KindLdRamIndirect // ldmi
	KindLdExternal    // ldmrd, ldmul, ldbcstart
	KindLdSpecial     // ldsp, ldvp, ldjpc
	KindLdOpd         // ld_opd_{8u,8s,16u,16s}
	KindDup
	KindWait
	KindJbr
	KindBz
	KindBnz
	KindJmp
)

// AluFunc selects the arithmetic/logic function for KindAluLogic.
type AluFunc uint8

const (
	AluAdd AluFunc = iota
	AluSub
	AluPass
	AluAnd
	AluOr
	AluXor
)

// ShiftFunc selects the barrel-shift operation for KindShift.
type ShiftFunc uint8

const (
	ShiftUshr ShiftFunc = iota
	ShiftShl
	ShiftShr
)

// SpecialReg names a special register targeted by KindStSpecial/KindLdSpecial.
type SpecialReg uint8

const (
	SpecialVP SpecialReg = iota
	SpecialJPC
	SpecialAR
	SpecialSP
)

// MmuOp enumerates the 16 one-hot memory-control signals of the "00001 0aaaa"
// instruction family.
type MmuOp uint8

const (
	MmuMul MmuOp = iota
	MmuWA        // stmwa - latch write address
	MmuRA        // stmra - issue fast-path read at aout
	MmuWD        // stmwd - issue fast-path write at addrReg
	MmuALD       // stald - array load
	MmuAST       // stast - array store
	MmuGF        // stgf  - getfield
	MmuPF        // stpf  - putfield
	MmuCP        // stcp  - copy
	MmuBCRD      // stbcrd - bytecode cache fill
	MmuIDX       // stidx - capture index register
	MmuPS        // stps  - putstatic
	MmuRAC       // stmrac - getstatic
	MmuRAF       // stmraf - extended fast read
	MmuWDF       // stmwdf - extended fast write
	MmuPFR       // stpfr - putref
)

// Instr is the tagged-union decode of a 10-bit microcode instruction. It
// doubles as the control-signal carrier: the ROM fetch decodes once into
// an Instr, and every downstream stage reads the fields it needs out of the same
// value.
type Instr struct {
	Raw  uint16
	Kind InstrKind

	Slot    int        // st0..st3 / ld0..ld3 slot index (0..3)
	Imm     int32      // sign-extended immediate: ldi, stm/ldm offset, bz/bnz/jmp offset
	Special SpecialReg // KindStSpecial / KindLdSpecial
	Mmu     MmuOp      // KindMmu
	Alu     AluFunc    // KindAluLogic
	Shift   ShiftFunc  // KindShift
	OpdW    int        // KindLdOpd: operand width, 8 or 16
	OpdSign bool       // KindLdOpd: sign-extend if true

	// Scalar flags mirroring combinational control lines that do not
	// merit their own field above. Jfetch/Jopdfetch are not part of the
	// 10-bit opcode space: they are two precomputed ROM metadata bits
	// set per microcode word by the ROM image, and are copied onto Instr
	// by MicrocodeROM.Fetch rather than by Decode.
	Jfetch    bool // this word dispatches to the next bytecode (BCF/MF "nxt")
	Jopdfetch bool // this word advances the operand accumulator
	Jbr       bool // this is the shared bytecode-branch handler instruction
	Wait      bool // stall microcode PC while MC busy
}

// decodeField extracts bits [hi:lo] of a 10-bit instruction.
func decodeField(ir uint16, hi, lo uint) uint16 {
	mask := uint16((1 << (hi - lo + 1)) - 1)
	return (ir >> lo) & mask
}

func signExtend(v uint16, bits uint) int32 {
	shift := 32 - bits
	return int32(v) << shift >> shift
}

// Decode turns a 10-bit instruction register value into its Instr variant.
// Any bit pattern not matched by one of the documented families decodes
// to KindNop: undefined encodings are silently treated as no-ops.
func Decode(ir uint16) Instr {
	ir &= 0x3FF

	switch {
	case decodeField(ir, 9, 4) == 0x00: // 00000 0ooff
		oo := decodeField(ir, 3, 2)
		ff := decodeField(ir, 1, 0)
		instr := Instr{Raw: ir, Kind: KindAluLogic}
		switch oo {
		case 0b01:
			instr.Alu = AluAdd
		case 0b11:
			instr.Alu = AluSub
		default:
			switch ff {
			case 0b00:
				instr.Alu = AluPass
			case 0b01:
				instr.Alu = AluAnd
			case 0b10:
				instr.Alu = AluOr
			case 0b11:
				instr.Alu = AluXor
			}
		}
		return instr

	case decodeField(ir, 9, 4) == 0x01: // 000001 ......
		low4 := decodeField(ir, 3, 0)
		switch {
		case low4 <= 0b0011: // st0..st3
			return Instr{Raw: ir, Kind: KindStRamSlot, Slot: int(low4)}
		case low4 == 0b0100: // st
			return Instr{Raw: ir, Kind: KindStRamVP}
		case low4 == 0b0101: // stmi
			return Instr{Raw: ir, Kind: KindStRamIndirect}
		case low4 == 0b0110: // stvp
			return Instr{Raw: ir, Kind: KindStSpecial, Special: SpecialVP}
		case low4 == 0b0111: // stjpc
			return Instr{Raw: ir, Kind: KindStSpecial, Special: SpecialJPC}
		case low4 == 0b1000: // star
			return Instr{Raw: ir, Kind: KindStSpecial, Special: SpecialAR}
		case low4 == 0b1001: // stsp
			return Instr{Raw: ir, Kind: KindStSpecial, Special: SpecialSP}
		case low4 == 0b1100: // ushr
			return Instr{Raw: ir, Kind: KindShift, Shift: ShiftUshr}
		case low4 == 0b1101: // shl
			return Instr{Raw: ir, Kind: KindShift, Shift: ShiftShl}
		case low4 == 0b1110: // shr
			return Instr{Raw: ir, Kind: KindShift, Shift: ShiftShr}
		}
		return Instr{Raw: ir, Kind: KindNop}

	case decodeField(ir, 9, 4) == 0x02: // 000010 aaaa - mmu commands
		return Instr{Raw: ir, Kind: KindMmu, Mmu: MmuOp(decodeField(ir, 3, 0))}

	case decodeField(ir, 9, 4) == 0x03: // 000011 aaaa - stm a
		return Instr{Raw: ir, Kind: KindStRamLocal, Imm: signExtend(decodeField(ir, 3, 0), 4)}

	case decodeField(ir, 9, 5) == 0x05: // 00101 aaaaa - ldm a
		return Instr{Raw: ir, Kind: KindLdRamLocal, Imm: signExtend(decodeField(ir, 4, 0), 5)}

	case decodeField(ir, 9, 5) == 0x06: // 00110 aaaaa - ldi a
		return Instr{Raw: ir, Kind: KindLdImm, Imm: signExtend(decodeField(ir, 4, 0), 5)}

	case decodeField(ir, 9, 4) == 0x0E: // 001110 ....
		low4 := decodeField(ir, 3, 0)
		switch {
		case low4 >= 0b1000 && low4 <= 0b1011: // ld0..ld3
			return Instr{Raw: ir, Kind: KindLdRamSlot, Slot: int(low4 - 0b1000)}
		case low4 == 0b1100: // ld
			return Instr{Raw: ir, Kind: KindLdRamVP}
		case low4 == 0b1101: // ldmi
			return Instr{Raw: ir, Kind: KindLdRamIndirect}
		case low4 == 0b0000, low4 == 0b0001, low4 == 0b0010: // ldmrd/ldmul/ldbcstart
			return Instr{Raw: ir, Kind: KindLdExternal, Slot: int(low4)}
		}
		return Instr{Raw: ir, Kind: KindNop}

	case decodeField(ir, 9, 4) == 0x0F: // 001111 ....
		low4 := decodeField(ir, 3, 0)
		switch {
		case low4 <= 0b0010: // ldsp, ldvp, ldjpc
			return Instr{Raw: ir, Kind: KindLdSpecial, Special: []SpecialReg{SpecialSP, SpecialVP, SpecialJPC}[low4]}
		case low4 >= 0b0100 && low4 <= 0b0111: // ld_opd_{8u,8s,16u,16s}
			widths := []int{8, 8, 16, 16}
			signs := []bool{false, true, false, true}
			idx := low4 - 0b0100
			return Instr{Raw: ir, Kind: KindLdOpd, OpdW: widths[idx], OpdSign: signs[idx]}
		case low4 == 0b1000: // dup
			return Instr{Raw: ir, Kind: KindDup}
		}
		return Instr{Raw: ir, Kind: KindNop}

	case decodeField(ir, 9, 2) == 0x40: // 0100 0000 ..
		switch decodeField(ir, 1, 0) {
		case 0b00:
			return Instr{Raw: ir, Kind: KindNop}
		case 0b01:
			return Instr{Raw: ir, Kind: KindWait, Wait: true}
		case 0b10:
			return Instr{Raw: ir, Kind: KindJbr, Jbr: true}
		}
		return Instr{Raw: ir, Kind: KindNop}

	case decodeField(ir, 9, 6) == 0x06: // 0110 iiiiii - bz
		return Instr{Raw: ir, Kind: KindBz, Imm: signExtend(decodeField(ir, 5, 0), 6)}

	case decodeField(ir, 9, 6) == 0x07: // 0111 iiiiii - bnz
		return Instr{Raw: ir, Kind: KindBnz, Imm: signExtend(decodeField(ir, 5, 0), 6)}

	case decodeField(ir, 9, 9) == 0x01: // 1 iiiiiiiii - jmp
		return Instr{Raw: ir, Kind: KindJmp, Imm: signExtend(decodeField(ir, 8, 0), 9)}
	}

	return Instr{Raw: ir, Kind: KindNop}
}
