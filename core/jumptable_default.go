// jumptable_default.go - a populated jump table built from the standard
// JVM mnemonics of bytecodes.go, giving JumpTable's bare 256-entry array
// the concrete contents a real loader would ship.
package core

// branchFamily lists every bytecode that resolves through the shared jbr
// handler. DefaultJumpTable routes all of them to the same microcode
// entry point, addrBranchShared; which of the table's eight tp values a
// given bytecode means at runtime is read from the low 3 bits of the
// bytecode itself (BCF.Step) — a property of the loader's opcode
// assignment, not of the jump table. ifge/ifgt/ifle and their if_icmp
// counterparts are excluded: >=/>/<= aren't representable by the eq/lt/
// zf/nf flag set the shared handler's tp switch offers, so bytecodes.go
// leaves them at their standard JVM numbering and they fall through to
// the ordinary per-bytecode handler assignment below instead.
var branchFamily = []byte{
	IFEQ, IFNE, IFLT,
	IF_ICMPEQ, IF_ICMPNE, IF_ICMPLT,
	IF_ACMPEQ, IF_ACMPNE, IFNULL, IFNONNULL, GOTO,
}

// addrBranchShared is the microcode entry point every branch-family
// bytecode above dispatches to; it is not one of the three named
// reserved addresses but is, like them, a fixed well-known
// address a ROM image must place a handler at.
const addrBranchShared uint16 = 0x003

// DefaultJumpTable returns a jump table with every standard JVM bytecode
// named in bytecodes.go routed to a distinct microcode handler address,
// the branch family routed to the shared jbr entry point, and everything
// else defaulted to AddrSysNoIm. Handler addresses are placeholders: a
// real ROM image assigns the actual microcode sequences. cmd/jopasm's
// jumptable subcommand prints or writes this default table; it does not
// edit individual entries.
func DefaultJumpTable() *JumpTable {
	jt := NewJumpTable()

	next := uint16(addrBranchShared + 1)
	assigned := make(map[byte]bool, len(branchFamily))
	for _, b := range branchFamily {
		jt.Set(b, addrBranchShared)
		assigned[b] = true
	}

	for b := 0; b < 256; b++ {
		bc := byte(b)
		if _, named := bytecodeNames[bc]; !named || assigned[bc] {
			continue
		}
		jt.Set(bc, next)
		next++
	}

	return jt
}
