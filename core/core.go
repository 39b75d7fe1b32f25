// core.go - top-level orchestrator wiring BCF/MF/MD/SX/MC into one
// cycle-accurate core.
package core

// Core owns one instance of every pipeline stage plus the external
// memory and I/O ports, and advances them all by exactly one logical
// clock edge per Step call. Each stage is a pure step(state, inputs) ->
// (next_state, outputs) function; Core.Step fixes a call order where
// every value read in a cycle was committed at the previous edge, so
// there is no real cyclic dependency despite the signal diagram's
// feedback arrows.
//
// The one exception is MC's JBC write port, which BCF must apply. This
// implementation feeds BCF the write-port signals MC produced on the
// *previous* cycle rather than threading them through combinationally
// within the same Step call; a cache fill runs for many cycles, so the
// one-cycle delay this introduces before the first written word becomes
// visible does not change any externally observable ordering guarantee.
type Core struct {
	BCF *BCF
	MF  *MF
	MD  *MD
	SX  *SX
	MC  *MC

	ROM *MicrocodeROM
	JT  *JumpTable

	Irq bool
	Exc bool
	Ena bool

	// AckIrq/AckExc mirror BCF's single-cycle acknowledge pulses from
	// the most recent Step, for the external interrupt controller.
	AckIrq bool
	AckExc bool

	pendingJBC MCOutputs
	cycles     uint64
}

// NewCore wires a fresh core around the given ROM, jump table and
// external ports.
func NewCore(rom *MicrocodeROM, jt *JumpTable, mem MemoryPort, io IOPort) *Core {
	return &Core{
		BCF: NewBCF(jt),
		MF:  NewMF(rom),
		MD:  NewMD(),
		SX:  NewSX(),
		MC:  NewMC(mem, io),
		ROM: rom,
		JT:  jt,
		Ena: true,
	}
}

// Reset restores every stage to its post-reset state, in a fixed order: datapath first, then the fetch/decode stages
// that depend on nothing else, then the pipeline's own cycle counter.
func (c *Core) Reset() {
	c.SX.Reset()
	c.MC.Reset()
	c.MD.Reset()
	c.MF.Reset()
	c.BCF.Reset()
	c.pendingJBC = MCOutputs{}
	c.AckIrq = false
	c.AckExc = false
	c.cycles = 0
}

// Cycles reports how many Step calls have completed.
func (c *Core) Cycles() uint64 {
	return c.cycles
}

// Run advances the core by n cycles.
func (c *Core) Run(n uint64) {
	for i := uint64(0); i < n; i++ {
		c.Step()
	}
}

// memInFor maps a decoded Instr's KindMmu command onto the MC's memIn
// signal bundle. rdc/cinval/atmstart/atmend have no MmuOp encoding in this
// core's 16-command family and so never assert; they are retained on
// MemIn to complete the signal bundle. Of the four, only rdc appears in
// MC's dispatch switch.
func memInFor(curr Instr, opd uint16) MemIn {
	in := MemIn{Bcopd: opd}
	if curr.Kind != KindMmu {
		return in
	}
	switch curr.Mmu {
	case MmuWA:
		in.AddrWr = true
	case MmuRA:
		in.Rd = true
	case MmuWD:
		in.Wr = true
	case MmuALD:
		in.Iaload = true
	case MmuAST:
		in.Iastore = true
	case MmuGF:
		in.GetField = true
	case MmuPF:
		in.PutField = true
	case MmuCP:
		in.Copy = true
	case MmuBCRD:
		in.BcRd = true
	case MmuIDX:
		in.Stidx = true
	case MmuPS:
		in.PutStatic = true
	case MmuRAC:
		in.GetStatic = true
	case MmuRAF:
		in.Rdf = true
	case MmuWDF:
		in.Wrf = true
	case MmuPFR:
		in.PutRef = true
	}
	return in
}

// externalDin selects the external-read data source for KindLdExternal,
// keyed by the Slot field Decode copies from the instruction's low
// nibble: 0=ldmrd reads MC's RdData, 1=ldmul reads the (unmodelled)
// multiplier result, 2=ldbcstart reads MC's BcStart flag widened to a
// 32-bit word.
func externalDin(curr Instr, mcOut MCOutputs) uint32 {
	if curr.Kind != KindLdExternal {
		return 0
	}
	switch curr.Slot {
	case 0:
		return mcOut.RdData
	case 2:
		if mcOut.BcStart {
			return 1
		}
		return 0
	default: // 1: ldmul — no multiplier is modelled
		return 0
	}
}

// Step advances the whole core by one logical clock edge, in the order
// established above: MD's combinational decode first (it needs only
// the already-latched IR from MF), then BCF (needs MD's jfetch/
// jopdfetch/jbr), then MC (needs BCF's Opd as bcopd and SX's current
// A/B), then SX (needs MD's signal groups and BCF's Opd/Jpc), and
// finally MF (needs BCF's jpaddr and MD's branch/jump decision).
func (c *Core) Step() {
	mf := c.MF
	curr := c.MD.Step(mf.ir)
	flags := ComputeFlags(c.SX.a, c.SX.b)

	bcfOut := c.BCF.Step(BCFInputs{
		Jfetch:    curr.Jfetch,
		Jopdfetch: curr.Jopdfetch,
		Jbr:       curr.Jbr,
		Flags:     flags,
		JpcWr:     curr.Kind == KindStSpecial && curr.Special == SpecialJPC,
		Din:       c.SX.a,
		Irq:       c.Irq,
		Exc:       c.Exc,
		Ena:       c.Ena,
		JBCWrAddr: c.pendingJBC.JBCWrAddr,
		JBCWrData: c.pendingJBC.JBCWrData,
		JBCWrEn:   c.pendingJBC.JBCWrEn,
	})
	c.AckIrq = bcfOut.AckIrq
	c.AckExc = bcfOut.AckExc

	mcIn := memInFor(curr, bcfOut.Opd)
	mcOut := c.MC.Step(mcIn, c.SX.a, c.SX.b)
	c.pendingJBC = mcOut

	c.SX.Step(SXInputs{
		Curr:   curr,
		Opd:    bcfOut.Opd,
		Jpc:    bcfOut.JpcOut,
		ExtDin: externalDin(curr, mcOut),
	})

	br := BranchTaken(curr, flags)
	var brTarget uint32
	if br {
		brTarget = BranchTarget(mf.pc, curr)
	}
	jmp := curr.Kind == KindJmp
	var jmpTarget uint32
	if jmp {
		jmpTarget = JmpTarget(curr)
	}

	// Only a jfetch flag redirects MF to jpaddr: an operand fetch
	// advances BCF's accumulator while the microcode PC keeps running
	// straight through the handler.
	mf.Step(MFInputs{
		Jpaddr:    bcfOut.Jpaddr,
		Nxt:       curr.Jfetch,
		Br:        br,
		BrTarget:  brTarget,
		Jmp:       jmp,
		JmpTarget: jmpTarget,
		Bsy:       curr.Wait && mcOut.Busy,
	})

	c.cycles++
}
