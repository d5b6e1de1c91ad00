package cache

import (
	"github.com/sarchlab/arm7sim/emu"
)

// CachedBus is an emu.Bus that serves every access through a Cache and
// accumulates the latency of those accesses. Accesses that straddle a
// block boundary are split.
type CachedBus struct {
	cache *Cache
	stall uint64
}

var _ emu.Bus = (*CachedBus)(nil)

// NewCachedBus creates a cache of the given configuration in front of
// next.
func NewCachedBus(config Config, next emu.Bus) *CachedBus {
	return &CachedBus{cache: New(config, NewBusBacking(next))}
}

// Cache returns the underlying cache.
func (b *CachedBus) Cache() *Cache {
	return b.cache
}

// TakeLatency returns the latency accumulated since the last call and
// resets it.
func (b *CachedBus) TakeLatency() uint64 {
	stall := b.stall
	b.stall = 0
	return stall
}

// chunk returns how many of the remaining bytes fit in addr's block.
func (b *CachedBus) chunk(addr uint32, remaining int) int {
	blockSize := b.cache.config.BlockSize
	room := blockSize - int(addr&uint32(blockSize-1))
	return min(room, remaining)
}

func (b *CachedBus) read(addr uint32, size int) uint32 {
	var value uint32
	for done := 0; done < size; {
		a := addr + uint32(done)
		n := b.chunk(a, size-done)
		r := b.cache.Read(a, n)
		b.stall += r.Latency
		value |= r.Data << (8 * done)
		done += n
	}
	return value
}

func (b *CachedBus) write(addr uint32, size int, value uint32) {
	for done := 0; done < size; {
		a := addr + uint32(done)
		n := b.chunk(a, size-done)
		r := b.cache.Write(a, n, value>>(8*done))
		b.stall += r.Latency
		done += n
	}
}

// Read8 reads a byte.
func (b *CachedBus) Read8(addr uint32) uint8 {
	return uint8(b.read(addr, 1))
}

// Read16 reads a halfword.
func (b *CachedBus) Read16(addr uint32) uint16 {
	return uint16(b.read(addr, 2))
}

// Read32 reads a word.
func (b *CachedBus) Read32(addr uint32) uint32 {
	return b.read(addr, 4)
}

// Write8 writes a byte.
func (b *CachedBus) Write8(addr uint32, value uint8) {
	b.write(addr, 1, uint32(value))
}

// Write16 writes a halfword.
func (b *CachedBus) Write16(addr uint32, value uint16) {
	b.write(addr, 2, uint32(value))
}

// Write32 writes a word.
func (b *CachedBus) Write32(addr uint32, value uint32) {
	b.write(addr, 4, value)
}

// Flush writes dirty lines back to the next level.
func (b *CachedBus) Flush() {
	b.cache.Flush()
}
