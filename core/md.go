// md.go - Microcode Decode stage
package core

// MD is the Microcode Decode stage. In hardware the 10-bit IR fans out
// into a combinational signal group (jbr, RAM addressing, wr_ena, the
// memIn bundle, br/jmp and their offsets) and a group registered one
// cycle later (the A/B/VP/JPC/AR write enables and mux selects), aligned
// with the synchronous stack-RAM read. This model folds the RAM read
// into the same cycle as its address (sx.go), so both groups act in the
// instruction's own Step and the decode output collapses to the single
// Instr value carried through the pipeline.
type MD struct{}

// NewMD returns the decode stage.
func NewMD() *MD {
	return &MD{}
}

// Reset is part of the per-stage reset convention; MD keeps no state
// between cycles.
func (d *MD) Reset() {}

// Step decodes ir, this cycle's MF output. The bit-level decode itself
// runs in MicrocodeROM.Fetch; MD is the pipeline's named decode point
// and owns the microcode branch arithmetic below.
func (d *MD) Step(ir Instr) Instr {
	return ir
}

// BranchTarget computes the microcode PC MF should jump to for a taken
// bz/bnz, relative to the current microcode PC.
func BranchTarget(pc uint32, instr Instr) uint32 {
	return uint32(int32(pc) + instr.Imm)
}

// JmpTarget computes the absolute microcode PC for a jmp instruction.
func JmpTarget(instr Instr) uint32 {
	return uint32(instr.Imm) & pcMask
}

// BranchTaken evaluates bz/bnz against the current zero flag.
func BranchTaken(instr Instr, flags Flags) bool {
	switch instr.Kind {
	case KindBz:
		return flags.Zf
	case KindBnz:
		return !flags.Zf
	}
	return false
}
