package store

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Resource profiles.
const (
	ProfileDefault = "Default"
	ProfileLowMem  = "Low-Mem"
)

// Config holds the configuration for the Badger store.
type Config struct {
	// DataDir is the directory the store lives in.
	DataDir string

	// InMemory keeps everything in memory (useful for testing).
	InMemory bool

	// BlockCacheSize is the size of the block cache in bytes.
	BlockCacheSize int64

	// IndexCacheSize is the size of the index cache in bytes.
	IndexCacheSize int64

	// Compression enables ZSTD compression of tables. Archived edits are
	// s2-compressed regardless.
	Compression bool

	// SyncWrites fsyncs every write. Registry writes are small and rare so
	// it defaults to on.
	SyncWrites bool

	// Profile is ProfileDefault or ProfileLowMem.
	Profile string

	ReadOnly        bool
	BypassLockGuard bool
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.DataDir == "" && !c.InMemory {
		return fmt.Errorf("DataDir must be specified when InMemory is false")
	}
	if c.BlockCacheSize <= 0 {
		return fmt.Errorf("BlockCacheSize must be positive, got %d", c.BlockCacheSize)
	}
	if c.IndexCacheSize <= 0 {
		return fmt.Errorf("IndexCacheSize must be positive, got %d", c.IndexCacheSize)
	}
	switch c.Profile {
	case "", ProfileDefault, ProfileLowMem:
	default:
		return fmt.Errorf("unknown profile %q", c.Profile)
	}
	return nil
}

// DefaultConfig returns a configuration sized for a registry of a few
// hundred thousand entities and their edit archive.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		DataDir:        dataDir,
		BlockCacheSize: 64 << 20,
		IndexCacheSize: 16 << 20,
		Compression:    true,
		SyncWrites:     true,
		Profile:        ProfileDefault,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() *Config {
	cfg := DefaultConfig("")
	cfg.InMemory = true
	return cfg
}

func buildBadgerOptions(cfg *Config) badger.Options {
	if cfg.InMemory {
		opts := badger.DefaultOptions("")
		opts.InMemory = true
		opts.Logger = nil
		return opts
	}

	opts := badger.DefaultOptions(filepath.Join(cfg.DataDir, "badger"))
	opts.Logger = nil
	opts.BypassLockGuard = cfg.BypassLockGuard
	opts.ReadOnly = cfg.ReadOnly
	opts.SyncWrites = cfg.SyncWrites

	if cfg.Compression {
		opts.Compression = options.ZSTD
	} else {
		opts.Compression = options.None
	}

	switch cfg.Profile {
	case ProfileLowMem:
		opts.ValueLogFileSize = 32 << 20
		opts.NumCompactors = 2
		opts.MemTableSize = 16 << 20
	default:
		opts.ValueLogFileSize = 256 << 20
		opts.NumCompactors = 2
	}

	opts.BlockCacheSize = cfg.BlockCacheSize
	opts.IndexCacheSize = cfg.IndexCacheSize
	return opts
}
