// terminal.go - raw-mode interactive cycle-stepping inspector.
//
// Uses term.MakeRaw/term.Restore and one-byte-at-a-time raw stdin reads
// to step a Core one cycle at a time and print its pipeline/register
// state, reduced to the single purpose this core needs.
package monitor

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/peteryates1/jop-spinalhdl-sub008/core"
)

// Terminal drives a Core interactively from a raw-mode stdin: space steps
// one cycle, 'r' runs 1000 cycles, 'q' quits.
type Terminal struct {
	c    *core.Core
	in   *os.File
	out  io.Writer
	fd   int
	old  *term.State
	quit bool
}

// New returns a Terminal wired to stdin/stdout, not yet in raw mode.
func New(c *core.Core) *Terminal {
	return &Terminal{c: c, in: os.Stdin, out: os.Stdout, fd: int(os.Stdin.Fd())}
}

// Run puts the terminal in raw mode, prints the initial state, and reads
// keys until 'q' or EOF. It always restores the terminal before returning.
func (t *Terminal) Run() error {
	old, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("monitor: failed to set raw mode: %w", err)
	}
	t.old = old
	defer term.Restore(t.fd, t.old)

	t.printState()
	buf := make([]byte, 1)
	for !t.quit {
		n, err := t.in.Read(buf)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("monitor: stdin read: %w", err)
		}
		if n == 0 {
			continue
		}
		t.handleKey(buf[0])
	}
	return nil
}

func (t *Terminal) handleKey(b byte) {
	switch b {
	case ' ':
		t.c.Step()
		t.printState()
	case 'r':
		for i := 0; i < 1000; i++ {
			t.c.Step()
		}
		t.printState()
	case 'q', 0x03: // 'q' or Ctrl-C
		t.quit = true
	}
}

// printState renders one state line per keypress that steps the core:
// cycle count, A/B/SP/VP and the Java PC. Raw mode disables the terminal's own line discipline, so
// every line ends with an explicit \r\n.
func (t *Terminal) printState() {
	fmt.Fprintf(t.out, "cycle=%-8d A=%08x B=%08x SP=%-3d VP=%-3d JPC=%04x\r\n",
		t.c.Cycles(), t.c.SX.A(), t.c.SX.B(), t.c.SX.SP(), t.c.SX.VP(), t.c.BCF.JPC())
}
