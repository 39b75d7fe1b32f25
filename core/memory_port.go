// memory_port.go - blocking word-addressable external memory port
package core

import (
	"encoding/binary"
	"sync"
)

// MemOp selects the direction of a MemCommand.
type MemOp uint8

const (
	MemRead MemOp = iota
	MemWrite
)

// MemCommand is the core->memory command shape.
type MemCommand struct {
	Op      MemOp
	Address uint32 // byte address, word-aligned (address = word address << 2)
	Data    uint32 // write data; ignored for MemRead
	Mask    uint8  // byte-enables; 0xF for a full-word access
}

// MemResponse is the memory->core response shape. Every command yields
// exactly one response.
type MemResponse struct {
	Data uint32
	Last bool
}

// MemoryPort is the external, blocking, word-addressable memory
// collaborator. A real implementation may take arbitrarily many cycles to
// respond; this software model represents that as an ordinary blocking
// call generalised to a command/response pair.
type MemoryPort interface {
	Request(cmd MemCommand) MemResponse
}

// FlatMemory is a simple word-addressable backing store implementing
// MemoryPort: a contiguous byte slice guarded by a mutex, little-endian
// word packing.
type FlatMemory struct {
	mu  sync.RWMutex
	mem []byte
}

// NewFlatMemory allocates a backing store of the given size in bytes.
func NewFlatMemory(size uint32) *FlatMemory {
	return &FlatMemory{mem: make([]byte, size)}
}

func (m *FlatMemory) Request(cmd MemCommand) MemResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	addr := cmd.Address
	switch cmd.Op {
	case MemWrite:
		binary.LittleEndian.PutUint32(m.mem[addr:addr+4], cmd.Data)
		return MemResponse{Last: true}
	default:
		return MemResponse{Data: binary.LittleEndian.Uint32(m.mem[addr : addr+4]), Last: true}
	}
}

// ReadWord is a test/tool convenience reading by word index rather than
// byte address.
func (m *FlatMemory) ReadWord(wordAddr uint32) uint32 {
	return m.Request(MemCommand{Op: MemRead, Address: wordAddr << 2}).Data
}

// WriteWord is a test/tool convenience writing by word index.
func (m *FlatMemory) WriteWord(wordAddr uint32, data uint32) {
	m.Request(MemCommand{Op: MemWrite, Address: wordAddr << 2, Data: data, Mask: 0xF})
}

// Reset clears the backing store to zero.
func (m *FlatMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.mem {
		m.mem[i] = 0
	}
}
