package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the ARM7TDMI bus cycle weights and the optional
// cache geometry used by the timing model.
type TimingConfig struct {
	// SCycle is the cost of a sequential memory cycle. Default: 1.
	SCycle uint64 `json:"s_cycle"`

	// NCycle is the cost of a non-sequential memory cycle. Default: 2
	// (one wait state on address changes).
	NCycle uint64 `json:"n_cycle"`

	// ICycle is the cost of an internal cycle. Default: 1.
	ICycle uint64 `json:"i_cycle"`

	// CacheEnabled places a unified cache between the core and memory.
	CacheEnabled bool `json:"cache_enabled"`

	// CacheSize is the cache capacity in bytes. Default: 4096.
	CacheSize uint64 `json:"cache_size"`

	// CacheBlockSize is the line size in bytes. Default: 16.
	CacheBlockSize uint64 `json:"cache_block_size"`

	// CacheWays is the associativity. Default: 4.
	CacheWays uint64 `json:"cache_ways"`

	// CacheHitLatency is the stall added to an access that hits.
	// Default: 0.
	CacheHitLatency uint64 `json:"cache_hit_latency"`

	// MemoryLatency is the stall added to an access that misses the
	// cache. Default: 8.
	MemoryLatency uint64 `json:"memory_latency"`
}

// DefaultTimingConfig returns a TimingConfig for an ARM7TDMI with one wait
// state on non-sequential accesses and the cache disabled.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		SCycle:          1,
		NCycle:          2,
		ICycle:          1,
		CacheEnabled:    false,
		CacheSize:       4096,
		CacheBlockSize:  16,
		CacheWays:       4,
		CacheHitLatency: 0,
		MemoryLatency:   8,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from
// the file keep their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that the cycle weights are positive and that the cache
// geometry is consistent.
func (c *TimingConfig) Validate() error {
	if c.SCycle == 0 {
		return fmt.Errorf("s_cycle must be > 0")
	}
	if c.NCycle == 0 {
		return fmt.Errorf("n_cycle must be > 0")
	}
	if c.ICycle == 0 {
		return fmt.Errorf("i_cycle must be > 0")
	}

	if !c.CacheEnabled {
		return nil
	}

	if c.CacheBlockSize < 4 || c.CacheBlockSize&(c.CacheBlockSize-1) != 0 {
		return fmt.Errorf("cache_block_size must be a power of two >= 4")
	}
	if c.CacheWays == 0 {
		return fmt.Errorf("cache_ways must be > 0")
	}
	setBytes := c.CacheBlockSize * c.CacheWays
	if c.CacheSize == 0 || c.CacheSize%setBytes != 0 {
		return fmt.Errorf("cache_size must be a multiple of cache_block_size * cache_ways")
	}

	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
