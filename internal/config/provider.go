package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
)

// ProjectFile is the configuration file marking a project root
const ProjectFile = "lockgov.toml"

// ErrNoProjectFile is returned by FindProjectRoot when no lockgov.toml
// exists in the working directory or any parent.
var ErrNoProjectFile = errors.New("lockgov.toml not found")

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		if projectRoot, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        resolvePath(projectRoot, v.GetString("data_dir")),
		AuditFile:      v.GetString("audit_file"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Timeout:        v.GetDuration("timeout"),
		ConfigSource:   v.GetString("config_source"),
		Safe: config.SafeConfig{
			ChainID:    v.GetUint64("safe_chain_id"),
			ServiceURL: v.GetString("safe_service_url"),
		},
	}

	switch backend := config.StorageBackend(strings.ToLower(v.GetString("storage"))); backend {
	case config.StorageMemory, config.StorageFile, config.StorageBolt:
		cfg.Storage = backend
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want memory, file or bolt)", backend)
	}

	switch output := config.OutputFormat(strings.ToLower(v.GetString("output"))); output {
	case config.OutputTable, config.OutputJSON, config.OutputYAML:
		cfg.Output = output
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
	}

	var err error
	if cfg.Caller, err = optionalAddress(v.GetString("as")); err != nil {
		return nil, fmt.Errorf("invalid --as identity: %w", err)
	}
	if cfg.Deployer, err = optionalAddress(v.GetString("deployer")); err != nil {
		return nil, fmt.Errorf("invalid redeemer deployer: %w", err)
	}
	if cfg.Now, err = ParseTimestamp(v.GetString("at")); err != nil {
		return nil, fmt.Errorf("invalid --at time: %w", err)
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find lockgov.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProjectFile
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance. Values resolve in
// order: flags, LOCKGOV_* environment, lockgov.toml, defaults.
func SetupViper(projectRoot string, cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix("LOCKGOV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("project_root", projectRoot)
	v.SetDefault("storage", string(config.StorageFile))
	v.SetDefault("data_dir", ".lockgov")
	v.SetDefault("audit_file", "audit.jsonl")
	v.SetDefault("output", string(config.OutputTable))
	v.SetDefault("timeout", "30s")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)

	if projectRoot != "" {
		fileCfg, source, err := loadFileConfig(projectRoot)
		if err != nil {
			return nil, err
		}
		if fileCfg != nil {
			applyFileConfig(v, fileCfg)
			v.SetDefault("config_source", source)
		}
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	return v, nil
}

// applyFileConfig sets the non-empty values of lockgov.toml as defaults.
func applyFileConfig(v *viper.Viper, fc *config.FileConfig) {
	set := func(key, value string) {
		if value != "" {
			v.SetDefault(key, value)
		}
	}
	set("storage", fc.Storage.Backend)
	set("data_dir", fc.Storage.DataDir)
	set("safe_service_url", fc.Safe.ServiceURL)
	set("deployer", fc.Redeemer.Deployer)
	set("audit_file", fc.Audit.File)
	if fc.Safe.ChainID != 0 {
		v.SetDefault("safe_chain_id", fc.Safe.ChainID)
	}
}

// ParseTimestamp accepts unix seconds or an RFC 3339 time. Empty input
// returns 0.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("%q is neither unix seconds nor RFC 3339", s)
	}
	return t.Unix(), nil
}

func optionalAddress(s string) (common.Address, error) {
	if s = strings.TrimSpace(s); s == "" {
		return common.Address{}, nil
	}
	return domain.ParseAddress(s)
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
