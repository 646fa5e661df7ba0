package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Paths identifies where the configuration file lives, mirroring the
// teacher's ConfigPaths convention.
type Paths struct {
	Main string
}

// DefaultPaths returns the conventional location for the controller's
// config file.
func DefaultPaths() Paths {
	return Paths{Main: "rocket.toml"}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc.address", "[::]:50051")
	v.SetDefault("rpc.max_recv_msg_size", 4*1024*1024)
	v.SetDefault("rpc.max_send_msg_size", 4*1024*1024)
	v.SetDefault("rpc.workers", 10)

	v.SetDefault("interceptor.command", "./rocket_interceptor/rocket-interceptor")

	v.SetDefault("iteration.type", "time_based")
	v.SetDefault("iteration.max_iterations", 10)
	v.SetDefault("iteration.timeout_seconds", 30.0)
	v.SetDefault("iteration.max_ledger_seq", -1)

	v.SetDefault("strategy.auto_partition", false)
	v.SetDefault("strategy.auto_parse_identical", false)
	v.SetDefault("strategy.auto_parse_subsets", false)
	v.SetDefault("strategy.keep_action_log", true)

	v.SetDefault("logging.directory", "default")
	v.SetDefault("logging.execution_logger", false)
	v.SetDefault("logging.archive_on_iteration", false)
}

// Load reads configuration layered defaults → file (optional) → environment
// (ROCKET_ prefix), unmarshals it, and validates the result.
func Load(paths Paths) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if paths.Main != "" {
		if _, err := os.Stat(paths.Main); err == nil {
			v.SetConfigFile(paths.Main)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: failed to read %s: %w", paths.Main, err)
			}
		}
	}

	v.SetEnvPrefix("ROCKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg.configPath = paths.Main

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadDefault loads configuration from the conventional path.
func LoadDefault() (*Config, error) {
	return Load(DefaultPaths())
}
