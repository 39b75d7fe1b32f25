// jumptable.go - static bytecode -> microcode address table
package core

// Reserved jump-table entries.
const (
	AddrSysNoIm uint16 = 0x000 // handler for an unimplemented bytecode
	AddrSysInt  uint16 = 0x001 // interrupt entry
	AddrSysExc  uint16 = 0x002 // exception entry
)

// JumpTable maps a bytecode (0..255) to its microcode entry point.
// Unmapped bytecodes default to AddrSysNoIm.
type JumpTable [256]uint16

// NewJumpTable returns a table with every entry routed to AddrSysNoIm.
func NewJumpTable() *JumpTable {
	jt := &JumpTable{}
	for i := range jt {
		jt[i] = AddrSysNoIm
	}
	return jt
}

// Set installs the microcode entry point for a bytecode.
func (jt *JumpTable) Set(bytecode byte, addr uint16) {
	jt[bytecode] = addr
}

// Lookup returns the microcode entry point for a bytecode.
func (jt *JumpTable) Lookup(bytecode byte) uint16 {
	return jt[bytecode]
}
