// assembler.go - two-pass assembler for the 10-bit microcode instruction
// set of core/microcode.go, producing the flat ROM image core/rom.go
// loads.
//
// A first pass scans labels and records their address; a second pass
// emits words and resolves label references (here, bz/bnz/jmp targets)
// against the table the first pass built.
package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peteryates1/jop-spinalhdl-sub008/core"
)

// Word is one assembled ROM cell before packing: the 10-bit instruction
// plus the two ROM metadata bits.
type Word struct {
	Instr     uint16
	Jfetch    bool
	Jopdfetch bool
}

type line struct {
	label    string
	mnemonic string
	flags    []string
	args     []string
	lineno   int
}

// Assemble turns a microcode listing into an ordered slice of Words, one
// per instruction line, with bz/bnz/jmp operands resolved against labels
// defined anywhere in the listing.
func Assemble(src string) ([]Word, error) {
	lines, labels, err := scan(src)
	if err != nil {
		return nil, err
	}

	words := make([]Word, 0, len(lines))
	for addr, ln := range lines {
		w, err := emit(ln, uint32(addr), labels)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ln.lineno, err)
		}
		words = append(words, w)
	}
	return words, nil
}

// scan is the assembler's first pass: it strips comments/blank lines,
// resolves "label:" lines to the address of the next instruction, and
// returns the remaining instruction lines in address order.
func scan(src string) ([]line, map[string]uint32, error) {
	labels := make(map[string]uint32)
	var lines []line
	addr := uint32(0)

	for i, raw := range strings.Split(src, "\n") {
		text := raw
		if idx := strings.Index(text, ";"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasSuffix(text, ":") {
			name := strings.TrimSuffix(text, ":")
			if _, dup := labels[name]; dup {
				return nil, nil, fmt.Errorf("line %d: label %q redefined", i+1, name)
			}
			labels[name] = addr
			continue
		}

		fields := strings.Fields(text)
		mnemAndFlags := strings.Split(fields[0], "+")
		lines = append(lines, line{
			mnemonic: mnemAndFlags[0],
			flags:    mnemAndFlags[1:],
			args:     fields[1:],
			lineno:   i + 1,
		})
		addr++
	}
	return lines, labels, nil
}

func applyFlags(w *Word, flags []string) error {
	for _, f := range flags {
		switch f {
		case "jf":
			w.Jfetch = true
		case "jo":
			w.Jopdfetch = true
		default:
			return fmt.Errorf("unknown flag %q (want jf or jo)", f)
		}
	}
	return nil
}

func parseImm(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid immediate %q: %w", s, err)
	}
	return int32(n), nil
}

// emit encodes one instruction line into its 10-bit word plus metadata
// bits, matching core/microcode.go's Decode bit layout exactly in reverse.
func emit(ln line, addr uint32, labels map[string]uint32) (Word, error) {
	var w Word
	if err := applyFlags(&w, ln.flags); err != nil {
		return w, err
	}

	needArgs := func(n int) error {
		if len(ln.args) != n {
			return fmt.Errorf("%s: want %d operand(s), got %d", ln.mnemonic, n, len(ln.args))
		}
		return nil
	}
	target := func(label string) (uint32, error) {
		a, ok := labels[label]
		if !ok {
			return 0, fmt.Errorf("undefined label %q", label)
		}
		return a, nil
	}

	switch ln.mnemonic {
	case "add":
		w.Instr = 0b0000000100
	case "sub":
		w.Instr = 0b0000001100
	case "pass":
		w.Instr = 0b0000000000
	case "and":
		w.Instr = 0b0000000001
	case "or":
		w.Instr = 0b0000000010
	case "xor":
		w.Instr = 0b0000000011

	case "st0", "st1", "st2", "st3":
		w.Instr = (0x01 << 4) | uint16(ln.mnemonic[2]-'0')
	case "st":
		w.Instr = (0x01 << 4) | 0b0100
	case "stmi":
		w.Instr = (0x01 << 4) | 0b0101
	case "stvp":
		w.Instr = (0x01 << 4) | 0b0110
	case "stjpc":
		w.Instr = (0x01 << 4) | 0b0111
	case "star":
		w.Instr = (0x01 << 4) | 0b1000
	case "stsp":
		w.Instr = (0x01 << 4) | 0b1001
	case "ushr":
		w.Instr = (0x01 << 4) | 0b1100
	case "shl":
		w.Instr = (0x01 << 4) | 0b1101
	case "shr":
		w.Instr = (0x01 << 4) | 0b1110

	case "stmwa":
		w.Instr = mmu(core.MmuWA)
	case "stmra":
		w.Instr = mmu(core.MmuRA)
	case "stmwd":
		w.Instr = mmu(core.MmuWD)
	case "stald":
		w.Instr = mmu(core.MmuALD)
	case "stast":
		w.Instr = mmu(core.MmuAST)
	case "stgf":
		w.Instr = mmu(core.MmuGF)
	case "stpf":
		w.Instr = mmu(core.MmuPF)
	case "stcp":
		w.Instr = mmu(core.MmuCP)
	case "stbcrd":
		w.Instr = mmu(core.MmuBCRD)
	case "stidx":
		w.Instr = mmu(core.MmuIDX)
	case "stps":
		w.Instr = mmu(core.MmuPS)
	case "stmrac":
		w.Instr = mmu(core.MmuRAC)
	case "stmraf":
		w.Instr = mmu(core.MmuRAF)
	case "stmwdf":
		w.Instr = mmu(core.MmuWDF)
	case "stpfr":
		w.Instr = mmu(core.MmuPFR)
	case "mul":
		w.Instr = mmu(core.MmuMul)

	case "stm":
		if err := needArgs(1); err != nil {
			return w, err
		}
		imm, err := parseImm(ln.args[0])
		if err != nil {
			return w, err
		}
		w.Instr = (0x03 << 4) | (uint16(imm) & 0xF)

	case "ldm":
		if err := needArgs(1); err != nil {
			return w, err
		}
		imm, err := parseImm(ln.args[0])
		if err != nil {
			return w, err
		}
		w.Instr = (0x05 << 5) | (uint16(imm) & 0x1F)

	case "ldi":
		if err := needArgs(1); err != nil {
			return w, err
		}
		imm, err := parseImm(ln.args[0])
		if err != nil {
			return w, err
		}
		w.Instr = (0x06 << 5) | (uint16(imm) & 0x1F)

	case "ld0", "ld1", "ld2", "ld3":
		w.Instr = (0x0E << 4) | (0b1000 + uint16(ln.mnemonic[2]-'0'))
	case "ld":
		w.Instr = (0x0E << 4) | 0b1100
	case "ldmi":
		w.Instr = (0x0E << 4) | 0b1101
	case "ldmrd":
		w.Instr = (0x0E << 4) | 0b0000
	case "ldmul":
		w.Instr = (0x0E << 4) | 0b0001
	case "ldbcstart":
		w.Instr = (0x0E << 4) | 0b0010

	case "ldsp":
		w.Instr = (0x0F << 4) | 0b0000
	case "ldvp":
		w.Instr = (0x0F << 4) | 0b0001
	case "ldjpc":
		w.Instr = (0x0F << 4) | 0b0010
	case "ld_opd_8u":
		w.Instr = (0x0F << 4) | 0b0100
	case "ld_opd_8s":
		w.Instr = (0x0F << 4) | 0b0101
	case "ld_opd_16u":
		w.Instr = (0x0F << 4) | 0b0110
	case "ld_opd_16s":
		w.Instr = (0x0F << 4) | 0b0111
	case "dup":
		w.Instr = (0x0F << 4) | 0b1000

	case "nop":
		w.Instr = 0b0100000000
	case "wait":
		w.Instr = 0b0100000001
	case "jbr":
		w.Instr = 0b0100000010

	case "bz", "bnz":
		if err := needArgs(1); err != nil {
			return w, err
		}
		tgt, err := target(ln.args[0])
		if err != nil {
			return w, err
		}
		offset := int32(tgt) - int32(addr)
		if offset < -32 || offset > 31 {
			return w, fmt.Errorf("%s %s: offset %d out of 6-bit range", ln.mnemonic, ln.args[0], offset)
		}
		prefix := uint16(0x06)
		if ln.mnemonic == "bnz" {
			prefix = 0x07
		}
		w.Instr = (prefix << 6) | (uint16(offset) & 0x3F)

	case "jmp":
		if err := needArgs(1); err != nil {
			return w, err
		}
		tgt, err := target(ln.args[0])
		if err != nil {
			return w, err
		}
		w.Instr = (1 << 9) | (uint16(tgt) & 0x1FF)

	default:
		return w, fmt.Errorf("unknown mnemonic %q", ln.mnemonic)
	}

	return w, nil
}

func mmu(op core.MmuOp) uint16 {
	return (0x02 << 4) | uint16(op)
}
