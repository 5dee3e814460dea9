package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// StorageBackend selects the unit-of-work store implementation
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageFile   StorageBackend = "file"
	StorageBolt   StorageBackend = "bolt"
)

// OutputFormat selects how command results are rendered
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Storage settings
	Storage StorageBackend

	// Identity settings
	Caller   common.Address // identity the CLI acts as (--as)
	Deployer common.Address // identity allowed to create redeemers

	// Clock override in unix seconds, 0 means wall clock (--at)
	Now int64

	// Safe Transaction Service settings
	Safe SafeConfig

	// Audit log, relative to DataDir when not absolute; empty disables the file sink
	AuditFile string

	// Execution settings
	Debug          bool
	NonInteractive bool
	Output         OutputFormat
	Timeout        time.Duration

	// Config source tracking
	ConfigSource string // path of lockgov.toml or "" when none was found
}

// SafeConfig configures the Safe Transaction Service client
type SafeConfig struct {
	ChainID    uint64
	ServiceURL string
}

// FileConfig is the on-disk lockgov.toml layout
type FileConfig struct {
	Storage  StorageFileConfig  `toml:"storage"`
	Safe     SafeFileConfig     `toml:"safe"`
	Redeemer RedeemerFileConfig `toml:"redeemer"`
	Audit    AuditFileConfig    `toml:"audit"`
}

type StorageFileConfig struct {
	Backend string `toml:"backend"`
	DataDir string `toml:"data_dir"`
}

type SafeFileConfig struct {
	ChainID    uint64 `toml:"chain_id"`
	ServiceURL string `toml:"service_url"`
}

type RedeemerFileConfig struct {
	Deployer string `toml:"deployer"`
}

type AuditFileConfig struct {
	File string `toml:"file"`
}
