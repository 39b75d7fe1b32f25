// main.go - core runner: loads a microcode ROM image, a jump table and an
// optional bytecode-cache preload image, then runs a Core for N cycles.
//
// Config is a bare os.Args[1]-style argument list, no flag library —
// cmd/jopasm, which has more than a program path to configure, uses
// cobra/pflag instead.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	jopcore "github.com/peteryates1/jop-spinalhdl-sub008"
	"github.com/peteryates1/jop-spinalhdl-sub008/core"
	"github.com/peteryates1/jop-spinalhdl-sub008/monitor"
)

const usage = "usage: jopcore <rom-file> <jumptable-file> [bytecode-preload-file] [cycles] [-monitor]"

func main() {
	if len(os.Args) < 3 {
		jopcore.Fatalf(usage)
	}

	romPath := os.Args[1]
	jtPath := os.Args[2]

	var preloadPath string
	cycles := uint64(100000)
	runMonitor := false

	rest := os.Args[3:]
	var positional []string
	for _, arg := range rest {
		if arg == "-monitor" {
			runMonitor = true
			continue
		}
		positional = append(positional, arg)
	}
	if len(positional) > 0 {
		if n, ok := parseCycles(positional[0]); ok {
			cycles = n
		} else {
			preloadPath = positional[0]
		}
	}
	if len(positional) > 1 {
		if n, ok := parseCycles(positional[1]); ok {
			cycles = n
		}
	}

	rom, err := loadROM(romPath)
	if err != nil {
		jopcore.Fatalf("jopcore: %v", err)
	}
	jt, err := loadJumpTable(jtPath)
	if err != nil {
		jopcore.Fatalf("jopcore: %v", err)
	}

	mem := core.NewFlatMemory(16 << 20)
	io := core.NewSimpleIOPort()
	c := core.NewCore(rom, jt, mem, io)

	if preloadPath != "" {
		bytes, err := os.ReadFile(preloadPath)
		if err != nil {
			jopcore.Fatalf("jopcore: reading bytecode preload: %v", err)
		}
		c.BCF.LoadCache(bytes)
	}

	if runMonitor {
		if err := monitor.New(c).Run(); err != nil {
			jopcore.Fatalf("jopcore: %v", err)
		}
		return
	}

	c.Run(cycles)
	jopcore.Diagf("jopcore: ran %d cycles, A=%#x B=%#x", c.Cycles(), c.SX.A(), c.SX.B())
}

func parseCycles(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil
}

// loadROM reads a flat binary image of 16-bit little-endian words: the
// 10-bit instruction plus jfetch/jopdfetch packed into bits 10 and 11.
func loadROM(path string) (*core.MicrocodeROM, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM image %s: %w", path, err)
	}
	rom := core.NewMicrocodeROM()
	words := make([]core.ROMWord, len(bytes)/2)
	for i := range words {
		raw := binary.LittleEndian.Uint16(bytes[i*2 : i*2+2])
		words[i] = core.ROMWord{
			Instr:     raw & 0x3FF,
			Jfetch:    raw&(1<<10) != 0,
			Jopdfetch: raw&(1<<11) != 0,
		}
	}
	rom.Load(words)
	return rom, nil
}

// loadJumpTable reads a flat 256-entry, 16-bit little-endian jump-table
// image; a missing file falls back to core.DefaultJumpTable(), and a short
// file sets only the entries it holds, leaving the rest at AddrSysNoIm.
func loadJumpTable(path string) (*core.JumpTable, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.DefaultJumpTable(), nil
		}
		return nil, fmt.Errorf("reading jump table %s: %w", path, err)
	}
	jt := core.NewJumpTable()
	for b := 0; b < 256 && (b+1)*2 <= len(bytes); b++ {
		jt.Set(byte(b), binary.LittleEndian.Uint16(bytes[b*2:b*2+2]))
	}
	return jt, nil
}
