package cache

import (
	"github.com/sarchlab/arm7sim/emu"
)

// BusBacking wraps an emu.Bus as a BackingStore.
type BusBacking struct {
	bus emu.Bus
}

// NewBusBacking creates a new BusBacking adapter.
func NewBusBacking(bus emu.Bus) *BusBacking {
	return &BusBacking{bus: bus}
}

// Read fetches data from the backing bus.
func (b *BusBacking) Read(addr uint32, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = b.bus.Read8(addr + uint32(i))
	}
	return data
}

// Write stores data to the backing bus.
func (b *BusBacking) Write(addr uint32, data []byte) {
	for i, bt := range data {
		b.bus.Write8(addr+uint32(i), bt)
	}
}
