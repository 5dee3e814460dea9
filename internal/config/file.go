package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
)

// loadFileConfig loads .env files and parses lockgov.toml. A missing
// lockgov.toml yields a nil config.
func loadFileConfig(projectRoot string) (*config.FileConfig, string, error) {
	// Load .env files first for variable expansion
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}

	path := filepath.Join(projectRoot, ProjectFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, "", nil
	}

	var cfg config.FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}

	cfg.Storage.Backend = os.ExpandEnv(cfg.Storage.Backend)
	cfg.Storage.DataDir = os.ExpandEnv(cfg.Storage.DataDir)
	cfg.Safe.ServiceURL = os.ExpandEnv(cfg.Safe.ServiceURL)
	cfg.Redeemer.Deployer = os.ExpandEnv(cfg.Redeemer.Deployer)
	cfg.Audit.File = os.ExpandEnv(cfg.Audit.File)

	return &cfg, path, nil
}
