package emu

// Bus is the memory interface the core issues its data and instruction
// accesses through. Accesses complete synchronously. Implementations must
// not call back into the core.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

const pageBits = 12
const pageSize = 1 << pageBits

// Memory is a sparse, little-endian 4 GiB address space. Pages are
// allocated on first write; unwritten memory reads as zero. Addresses are
// used as given; alignment is not enforced.
type Memory struct {
	pages map[uint32]*[pageSize]byte
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32]*[pageSize]byte)}
}

func (m *Memory) page(addr uint32, alloc bool) *[pageSize]byte {
	idx := addr >> pageBits
	p := m.pages[idx]
	if p == nil && alloc {
		p = new([pageSize]byte)
		m.pages[idx] = p
	}
	return p
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) uint8 {
	p := m.page(addr, false)
	if p == nil {
		return 0
	}
	return p[addr&(pageSize-1)]
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	m.page(addr, true)[addr&(pageSize-1)] = value
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint32, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) uint32 {
	return uint32(m.Read16(addr)) | uint32(m.Read16(addr+2))<<16
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, value uint32) {
	m.Write16(addr, uint16(value))
	m.Write16(addr+2, uint16(value>>16))
}

// LoadProgram copies data into memory starting at addr.
func (m *Memory) LoadProgram(addr uint32, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint32(i), b)
	}
}
