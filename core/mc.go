// mc.go - Memory Controller: fast combinational path plus the
// handle-dereference/static-field/method-cache-fill state machine.
package core

import "encoding/binary"

// mcState names the MC's internal states. IDLE/ReadWait/WriteWait never
// assert busy (fast path); every other state is part of the slow path
// and holds busy=1 until it returns to IDLE.
type mcState uint8

const (
	mcIdle mcState = iota
	mcReadWait
	mcWriteWait
	mcBcRd
	mcGetStatic
	mcPutStatic
	mcGetFieldHandle
	mcGetFieldData
	mcPutFieldHandle
	mcPutFieldData
	mcIaloadHandle
	mcIaloadData
	mcIastoreHandle
	mcIastoreData
)

// Handle is the two-word object/array indirection record: a pointer to
// the object's data plus, for arrays, the element count. Array elements
// start at DataPtr+0 — the length lives in the handle, not at the first
// data word.
type Handle struct {
	DataPtr uint32
	Length  uint32
}

// MemIn bundles the boolean action signals MD drives into MC.
type MemIn struct {
	Rd, Rdc, Rdf         bool
	Wr, Wrf              bool
	AddrWr               bool
	BcRd                 bool
	Stidx                bool
	Iaload, Iastore      bool
	GetField, PutField   bool
	PutRef               bool
	GetStatic, PutStatic bool
	Copy                 bool
	Cinval               bool
	AtmStart, AtmEnd     bool
	Bcopd                uint16
}

// MC is the Memory Controller.
type MC struct {
	state mcState

	addrReg   uint32 // latched by addrWr/stmwa; also stmwd's/iaload's/iastore's write/array-ref base
	rdAddrReg uint32 // latched from aout on rd|rdc|rdf dispatch; the fast-path read address
	wrAddrReg uint32 // snapshot of addrReg taken at wr|wrf dispatch
	rdDataReg uint32
	wasStidx  bool
	indexReg  uint32
	valueReg  uint32

	handleDataPtr  uint32
	handleIndex    uint32
	handleIsWrite  bool
	handleWriteVal uint32

	bcFillAddr  uint32
	bcFillLen   uint32
	bcFillCount uint32
	bcStartReg  bool

	Mem MemoryPort
	IO  IOPort
}

// NewMC returns an MC idle and with no outstanding transaction.
func NewMC(mem MemoryPort, io IOPort) *MC {
	return &MC{Mem: mem, IO: io}
}

func (m *MC) Reset() {
	*m = MC{Mem: m.Mem, IO: m.IO}
}

// isIOAddress classifies an address as I/O-space via its top bit.
func isIOAddress(addr uint32) bool {
	return addr&0x8000_0000 != 0
}

func (m *MC) readWord(addr uint32) uint32 {
	if isIOAddress(addr) {
		return m.IO.Read(uint8(addr))
	}
	return m.Mem.Request(MemCommand{Op: MemRead, Address: addr << 2, Mask: 0xF}).Data
}

func (m *MC) writeWord(addr, data uint32) {
	if isIOAddress(addr) {
		m.IO.Write(uint8(addr), data)
		return
	}
	m.Mem.Request(MemCommand{Op: MemWrite, Address: addr << 2, Data: data, Mask: 0xF})
}

// MCOutputs are MC's per-cycle outputs.
type MCOutputs struct {
	RdData  uint32
	BcStart bool
	Busy    bool

	JBCWrAddr uint16
	JBCWrData uint32
	JBCWrEn   bool
}

// byteSwap reverses a word's byte order: read it as big-endian, re-encode
// it as little-endian, matching the mismatch between the JVM's big-endian
// class file bytecode stream and this core's little-endian memory port.
func byteSwap(w uint32) uint32 {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], w)
	return binary.LittleEndian.Uint32(buf[:])
}

func (m *MC) fieldAddr(bcopd uint16) uint32 {
	if m.wasStidx {
		return m.indexReg
	}
	return uint32(bcopd)
}

// Step advances MC by exactly one cycle. aout/bout are SX's current A/B
// outputs.
func (m *MC) Step(in MemIn, aout, bout uint32) MCOutputs {
	if in.AddrWr {
		m.addrReg = aout
	}
	if in.Stidx {
		m.indexReg = aout
		m.wasStidx = true
	}

	out := MCOutputs{RdData: m.rdDataReg, BcStart: m.bcStartReg}

	switch m.state {
	case mcIdle:
		m.dispatch(in, aout, bout)
	case mcReadWait:
		m.rdDataReg = m.readWord(m.rdAddrReg)
		m.state = mcIdle
	case mcWriteWait:
		m.writeWord(m.wrAddrReg, m.valueReg)
		m.state = mcIdle
	case mcBcRd:
		i := m.bcFillCount
		word := m.readWord(m.bcFillAddr + i)
		out.JBCWrAddr = uint16(i)
		out.JBCWrData = byteSwap(word)
		out.JBCWrEn = true
		m.bcFillCount++
		if m.bcFillCount >= m.bcFillLen {
			m.bcStartReg = false
			m.state = mcIdle
		}
	case mcGetStatic:
		m.rdDataReg = m.readWord(m.handleIndex)
		m.wasStidx = false
		m.state = mcIdle
	case mcPutStatic:
		m.writeWord(m.handleIndex, m.valueReg)
		m.wasStidx = false
		m.state = mcIdle
	case mcGetFieldHandle:
		h := m.readWord(m.handleDataPtr)
		m.handleDataPtr = h
		m.state = mcGetFieldData
	case mcGetFieldData:
		addr := m.handleDataPtr + m.handleIndex
		m.rdDataReg = m.readWord(addr)
		m.wasStidx = false
		m.state = mcIdle
	case mcPutFieldHandle:
		h := m.readWord(m.handleDataPtr)
		m.handleDataPtr = h
		m.state = mcPutFieldData
	case mcPutFieldData:
		addr := m.handleDataPtr + m.handleIndex
		m.writeWord(addr, m.handleWriteVal)
		m.wasStidx = false
		m.state = mcIdle
	case mcIaloadHandle:
		h := m.readWord(m.handleDataPtr)
		m.handleDataPtr = h
		m.state = mcIaloadData
	case mcIaloadData:
		addr := m.handleDataPtr + m.handleIndex
		m.rdDataReg = m.readWord(addr)
		m.wasStidx = false
		m.state = mcIdle
	case mcIastoreHandle:
		h := m.readWord(m.handleDataPtr)
		m.handleDataPtr = h
		m.state = mcIastoreData
	case mcIastoreData:
		addr := m.handleDataPtr + m.handleIndex
		m.writeWord(addr, m.handleWriteVal)
		m.wasStidx = false
		m.state = mcIdle
	}

	out.Busy = m.state != mcIdle && m.state != mcReadWait && m.state != mcWriteWait
	return out
}

// dispatch applies a fixed IDLE-state priority order:
// memRead* > wr|wrf > putstatic > getstatic > bcRd > iaload > getfield
// > putfield > iastore. putref/copy/cinval/atmstart/atmend are accepted
// as legal signals but have no modelled effect, and rdc dispatches
// identically to rd: putref is surfaced for an external collector and
// has no storage action of its own.
func (m *MC) dispatch(in MemIn, aout, bout uint32) {
	switch {
	case in.Rd, in.Rdc, in.Rdf:
		m.rdAddrReg = aout
		m.state = mcReadWait
	case in.Wr, in.Wrf:
		// Address and data are both pinned at dispatch: the microcode
		// pipeline keeps running through WRITE_WAIT, so aout may change
		// and a concurrent addrWr re-latching addrReg must only affect
		// the next operation.
		m.wrAddrReg = m.addrReg
		m.valueReg = aout
		m.state = mcWriteWait
	case in.PutStatic:
		m.valueReg = aout
		m.handleIndex = m.fieldAddr(in.Bcopd)
		m.state = mcPutStatic
	case in.GetStatic:
		m.handleIndex = m.fieldAddr(in.Bcopd)
		m.state = mcGetStatic
	case in.BcRd:
		startWord := aout >> 10
		lenWords := aout & 0x3FF
		m.bcFillAddr = startWord
		m.bcFillLen = lenWords
		m.bcFillCount = 0
		m.bcStartReg = true
		m.state = mcBcRd
	case in.Iaload:
		// arrayref was latched earlier via addrWr (stmwa); TOS is the index.
		m.handleDataPtr = m.addrReg
		m.handleIndex = aout
		m.state = mcIaloadHandle
	case in.GetField:
		m.handleDataPtr = aout
		m.handleIndex = m.fieldAddr(in.Bcopd)
		m.state = mcGetFieldHandle
	case in.PutField:
		m.handleDataPtr = bout
		m.handleIndex = m.fieldAddr(in.Bcopd)
		m.handleWriteVal = aout
		m.state = mcPutFieldHandle
	case in.Iastore:
		// arrayref via addrReg (stmwa), NOS is the index, TOS is the value.
		m.handleDataPtr = m.addrReg
		m.handleIndex = bout
		m.handleWriteVal = aout
		m.state = mcIastoreHandle
	}
}
