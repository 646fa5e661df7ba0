// Package config loads the controller's settings: RPC bind address,
// interceptor binary location, iteration parameters, strategy options, and
// the validator node list, layered defaults → file → environment the way
// the teacher's own loader does.
package config

import "fmt"

// RPCConfig configures the packet dispatch server.
type RPCConfig struct {
	Address        string `mapstructure:"address"`
	MaxRecvMsgSize int    `mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize int    `mapstructure:"max_send_msg_size"`
	Workers        int64  `mapstructure:"workers"`
}

// InterceptorConfig locates the external interceptor binary.
type InterceptorConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// IterationConfig configures the iteration controller.
type IterationConfig struct {
	// Type selects "time_based", "ledger_based", or "none".
	Type           string  `mapstructure:"type"`
	MaxIterations  int     `mapstructure:"max_iterations"`
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`
	MaxLedgerSeq   int     `mapstructure:"max_ledger_seq"`
}

// StrategyConfig configures the boolean options every strategy composes
// with.
type StrategyConfig struct {
	AutoPartition      bool `mapstructure:"auto_partition"`
	AutoParseIdentical bool `mapstructure:"auto_parse_identical"`
	AutoParseSubsets   bool `mapstructure:"auto_parse_subsets"`
	KeepActionLog      bool `mapstructure:"keep_action_log"`
}

// SocketAddressConfig is a (host, port) pair as it appears in a validators
// file.
type SocketAddressConfig struct {
	Host string `mapstructure:"host"`
	Port uint32 `mapstructure:"port"`
}

// ValidatorConfig describes one validator node to install into the network
// manager.
type ValidatorConfig struct {
	Peer            SocketAddressConfig `mapstructure:"peer"`
	WebsocketPublic SocketAddressConfig `mapstructure:"websocket_public"`
	WebsocketAdmin  SocketAddressConfig `mapstructure:"websocket_admin"`
	RPC             SocketAddressConfig `mapstructure:"rpc"`
	PublicKey       string              `mapstructure:"public_key"`
}

// LoggingConfig configures where and whether optional logs are written.
type LoggingConfig struct {
	Directory          string `mapstructure:"directory"`
	ExecutionLogger    bool   `mapstructure:"execution_logger"`
	ArchiveOnIteration bool   `mapstructure:"archive_on_iteration"`
}

// Config is the fully resolved, validated configuration for one run.
type Config struct {
	RPC         RPCConfig         `mapstructure:"rpc"`
	Interceptor InterceptorConfig `mapstructure:"interceptor"`
	Iteration   IterationConfig   `mapstructure:"iteration"`
	Strategy    StrategyConfig    `mapstructure:"strategy"`
	Validators  []ValidatorConfig `mapstructure:"validators"`
	Logging     LoggingConfig     `mapstructure:"logging"`

	configPath string
}

// GetConfigPath returns the file path this config was loaded from, or "" if
// it was loaded purely from defaults/environment.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Validate checks that the resolved configuration is internally consistent.
func (c *Config) Validate() error {
	if c.RPC.Address == "" {
		return fmt.Errorf("config: rpc.address is required")
	}
	if c.RPC.Workers < 10 {
		return fmt.Errorf("config: rpc.workers must be at least 10")
	}
	if c.Interceptor.Command == "" {
		return fmt.Errorf("config: interceptor.command is required")
	}

	switch c.Iteration.Type {
	case "time_based", "ledger_based", "none":
	default:
		return fmt.Errorf("config: iteration.type must be one of time_based, ledger_based, none, got %q", c.Iteration.Type)
	}
	if c.Iteration.Type == "ledger_based" && c.Iteration.MaxLedgerSeq < 1 {
		return fmt.Errorf("config: iteration.max_ledger_seq must be >= 1 for ledger_based iterations")
	}
	if c.Iteration.Type != "none" && c.Iteration.MaxIterations < 1 {
		return fmt.Errorf("config: iteration.max_iterations must be >= 1")
	}
	if c.Iteration.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: iteration.timeout_seconds must be positive")
	}

	seen := make(map[uint32]bool, len(c.Validators))
	for _, v := range c.Validators {
		if seen[v.Peer.Port] {
			return fmt.Errorf("config: duplicate validator peer port %d", v.Peer.Port)
		}
		seen[v.Peer.Port] = true
	}

	return nil
}
