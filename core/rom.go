// rom.go - microcode ROM image
package core

// ROMSize is the number of addressable microcode words (2^W_pc, W_pc=11).
const ROMSize = 1 << 11

// ROMWord is a 12-bit ROM cell: the 10-bit instruction plus the two
// precomputed dispatch-metadata bits jfetch/jopdfetch.
type ROMWord struct {
	Instr     uint16
	Jfetch    bool
	Jopdfetch bool
}

// MicrocodeROM is the immutable-after-load mapping pc -> instruction.
// Address 0 is the reset entry point.
type MicrocodeROM struct {
	words [ROMSize]ROMWord
}

// NewMicrocodeROM returns a ROM initialised entirely to zero words with no
// dispatch bits. Instruction word 0 decodes as the ALU pass op, not nop;
// the post-reset IR=nop comes from MF.Reset, not from the ROM contents.
func NewMicrocodeROM() *MicrocodeROM {
	return &MicrocodeROM{}
}

// Load installs a full program, in address order starting at 0.
func (r *MicrocodeROM) Load(words []ROMWord) {
	n := copy(r.words[:], words)
	for i := n; i < len(r.words); i++ {
		r.words[i] = ROMWord{}
	}
}

// Set writes a single ROM cell, used by tests.
func (r *MicrocodeROM) Set(addr uint16, w ROMWord) {
	r.words[addr&(ROMSize-1)] = w
}

// Fetch returns the decoded instruction at addr with its dispatch metadata
// bits applied.
func (r *MicrocodeROM) Fetch(addr uint16) Instr {
	w := r.words[addr&(ROMSize-1)]
	instr := Decode(w.Instr)
	instr.Jfetch = w.Jfetch
	instr.Jopdfetch = w.Jopdfetch
	return instr
}
