// main.go - jopasm: a cobra-based microcode assembler and jump-table
// tool, grounded on oisee-z80-optimizer/cmd/z80opt's subcommand layout.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/peteryates1/jop-spinalhdl-sub008/assembler"
	"github.com/peteryates1/jop-spinalhdl-sub008/core"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jopasm",
		Short: "Microcode assembler and jump-table tool for the stack/execute pipeline",
	}

	var buildOut string
	buildCmd := &cobra.Command{
		Use:   "build [source.uasm]",
		Short: "Assemble a microcode listing into a flat ROM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			words, err := assembler.Assemble(string(src))
			if err != nil {
				return fmt.Errorf("assembling %s: %w", args[0], err)
			}

			out := buildOut
			if out == "" {
				out = args[0] + ".rom"
			}
			if err := writeROM(out, words); err != nil {
				return err
			}
			fmt.Printf("wrote %d words to %s\n", len(words), out)
			return nil
		},
	}
	buildCmd.Flags().StringVarP(&buildOut, "output", "o", "", "Output ROM image path (default: <input>.rom)")

	var jtOut string
	var jtShow bool
	jumpTableCmd := &cobra.Command{
		Use:   "jumptable",
		Short: "Print or write the default jump table",
		RunE: func(cmd *cobra.Command, args []string) error {
			jt := core.DefaultJumpTable()
			if jtShow {
				printJumpTable(jt)
			}
			if jtOut != "" {
				if err := writeJumpTable(jtOut, jt); err != nil {
					return err
				}
				fmt.Printf("wrote jump table to %s\n", jtOut)
			}
			return nil
		},
	}
	jumpTableCmd.Flags().StringVarP(&jtOut, "output", "o", "", "Output jump-table image path")
	jumpTableCmd.Flags().BoolVarP(&jtShow, "print", "p", true, "Print the table to stdout")

	rootCmd.AddCommand(buildCmd, jumpTableCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// writeROM packs each Word into a little-endian 16-bit cell: the 10-bit
// instruction in bits 0-9, jfetch in bit 10, jopdfetch in bit 11 — the
// same layout cmd/jopcore's loadROM expects.
func writeROM(path string, words []assembler.Word) error {
	buf := make([]byte, len(words)*2)
	for i, w := range words {
		raw := w.Instr & 0x3FF
		if w.Jfetch {
			raw |= 1 << 10
		}
		if w.Jopdfetch {
			raw |= 1 << 11
		}
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], raw)
	}
	return os.WriteFile(path, buf, 0o644)
}

func writeJumpTable(path string, jt *core.JumpTable) error {
	buf := make([]byte, 256*2)
	for b := 0; b < 256; b++ {
		binary.LittleEndian.PutUint16(buf[b*2:b*2+2], jt.Lookup(byte(b)))
	}
	return os.WriteFile(path, buf, 0o644)
}

func printJumpTable(jt *core.JumpTable) {
	type row struct {
		bc   byte
		name string
	}
	var rows []row
	for b := 0; b < 256; b++ {
		if name := core.BytecodeName(byte(b)); name != "" {
			rows = append(rows, row{byte(b), name})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].bc < rows[j].bc })
	for _, r := range rows {
		fmt.Printf("%-3d %-20s -> %#04x\n", r.bc, r.name, jt.Lookup(r.bc))
	}
}
