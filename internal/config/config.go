// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the validator's configuration from an optional
// YAML file overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the top-level configuration for the validator daemon.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Debug       DebugConfig       `yaml:"debug"`
	Substrate   SubstrateConfig   `yaml:"substrate"`
	Ema         EmaConfig         `yaml:"ema"`
	Chains      ChainsConfig      `yaml:"chains"`
	Policy      PolicyConfig      `yaml:"policy"`
	Performance PerformanceConfig `yaml:"performance"`
	Storage     StorageConfig     `yaml:"storage"`
	Wallet      WalletConfig      `yaml:"wallet"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

// DebugConfig controls the optional pprof/debug HTTP listener.
type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port"    envconfig:"DEBUG_PORT"`
}

// SubstrateConfig configures the Bittensor substrate connection.
type SubstrateConfig struct {
	WsURL             string `yaml:"wsUrl"             envconfig:"SUBTENSOR_WS_URL"`
	BittensorEndpoint string `yaml:"bittensorEndpoint" envconfig:"BITTENSOR_WS_ENDPOINT"`
	Netuid            uint16 `yaml:"netuid"            envconfig:"NETUID"`
	HotkeysCacheTTLMs uint64 `yaml:"hotkeysCacheTtlMs" envconfig:"HOTKEYS_CACHE_TTL_MS"`
}

// EmaConfig controls EMA smoothing across runs.
type EmaConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"USE_EMA"`
	Alpha   float64 `yaml:"alpha"   envconfig:"EMA_ALPHA"`
	Epsilon float64 `yaml:"epsilon" envconfig:"EMA_EPSILON"`
}

// ChainsConfig lists enabled chains and their per-chain connection info.
type ChainsConfig struct {
	Enabled []string                  `yaml:"enabled" envconfig:"ENABLED_CHAINS"`
	Solana  SolanaChainConfig         `yaml:"solana"`
	EVM     map[string]EVMChainConfig `yaml:"evm"`
}

// SolanaChainConfig configures the Solana CLMM-staking adapter.
type SolanaChainConfig struct {
	RPCURL           string `yaml:"rpcUrl"           envconfig:"SOLANA_RPC_URL"`
	StakingProgramID string `yaml:"stakingProgramId" envconfig:"SOLANA_STAKING_PROGRAM_ID"`
}

// EVMChainConfig configures one EVM-compatible chain's staking+DEX
// contract addresses.
type EVMChainConfig struct {
	RPCURL                  string `yaml:"rpcUrl"`
	StakingContractAddress  string `yaml:"stakingContractAddress"`
	FactoryAddress          string `yaml:"factoryAddress"`
	PositionManagerAddress  string `yaml:"positionManagerAddress"`
	MulticallAddress        string `yaml:"multicallAddress"`
}

// PolicyConfig controls the allocation, scoring and scaling policy.
type PolicyConfig struct {
	ReservedShareSubnet0   float64 `yaml:"reservedShareSubnet0"   envconfig:"RESERVED_SHARE_SUBNET_0"`
	ReservedShareSubnet106 float64 `yaml:"reservedShareSubnet106" envconfig:"RESERVED_SHARE_SUBNET_106"`
	BurnPercentage         float64 `yaml:"burnPercentage"         envconfig:"BURN_PERCENTAGE"`
	Allocator              string  `yaml:"allocator"              envconfig:"ALLOCATOR_POLICY"`
	IntervalMinutes        float64 `yaml:"intervalMinutes"        envconfig:"VALIDATOR_INTERVAL_MINUTES"`
	RandomizeInterval      bool    `yaml:"randomizeInterval"      envconfig:"VALIDATOR_RANDOMIZE_INTERVAL"`
}

// PerformanceConfig holds retry/batching/timeout knobs for chain and
// substrate I/O. Only MaxConcurrentBatches is read (by the chain
// adapters); the retry, timeout, batch-size and delay fields are loaded
// but not applied, and all I/O uses chainadapter.DefaultRetryPolicy with
// no per-call timeout.
type PerformanceConfig struct {
	MaxRetries           int `yaml:"maxRetries"           envconfig:"MAX_RETRIES"`
	RetryBaseDelayMs     int `yaml:"retryBaseDelayMs"     envconfig:"RETRY_BASE_DELAY_MS"`
	InitialRetryDelayMs  int `yaml:"initialRetryDelayMs"  envconfig:"INITIAL_RETRY_DELAY_MS"`
	MaxRetryDelayMs      int `yaml:"maxRetryDelayMs"      envconfig:"MAX_RETRY_DELAY_MS"`
	RPCTimeoutMs         int `yaml:"rpcTimeoutMs"         envconfig:"RPC_TIMEOUT_MS"`
	PositionBatchSize    int `yaml:"positionBatchSize"    envconfig:"POSITION_BATCH_SIZE"`
	MaxConcurrentBatches int `yaml:"maxConcurrentBatches" envconfig:"MAX_CONCURRENT_BATCHES"`
	BatchDelayMs         int `yaml:"batchDelayMs"         envconfig:"BATCH_DELAY_MS"`
	HotkeyBatchSize      int `yaml:"hotkeyBatchSize"      envconfig:"HOTKEY_BATCH_SIZE"`
}

// StorageConfig controls where on-disk state (EMA snapshot, submission
// log) is written.
type StorageConfig struct {
	Directory string `yaml:"dir" envconfig:"STORAGE_DIR"`
}

// WalletConfig holds the validator's signing secret. The mnemonic is
// never logged.
type WalletConfig struct {
	Mnemonic string `yaml:"mnemonic" envconfig:"VALIDATOR_HOTKEY_MNEMONIC"`
}

var globalConfig = &Config{
	Logging: LoggingConfig{Level: "info"},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Substrate: SubstrateConfig{
		HotkeysCacheTTLMs: 60_000,
	},
	Ema: EmaConfig{
		Enabled: true,
		Alpha:   0.3,
		Epsilon: 1e-6,
	},
	Chains: ChainsConfig{
		Enabled: []string{"solana"},
	},
	Policy: PolicyConfig{
		Allocator:       "reserved-share",
		IntervalMinutes: 20,
	},
	Performance: PerformanceConfig{
		MaxRetries:           3,
		RetryBaseDelayMs:     500,
		InitialRetryDelayMs:  500,
		MaxRetryDelayMs:      30_000,
		RPCTimeoutMs:         30_000,
		PositionBatchSize:    25,
		MaxConcurrentBatches: 4,
		BatchDelayMs:         0,
		HotkeyBatchSize:      25,
	},
	Storage: StorageConfig{
		Directory: "./.validator106",
	},
}

// Load reads configFile (if non-empty) as YAML into the global config,
// then overlays it with environment variables, and validates the
// result.
func Load(configFile string) (*Config, error) {
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// "dummy" keeps envconfig from matching env vars we did not
	// explicitly tag above.
	if err := envconfig.Process("dummy", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func (cfg *Config) validate() error {
	if cfg.Substrate.WsURL == "" && cfg.Substrate.BittensorEndpoint == "" {
		return fmt.Errorf("one of SUBTENSOR_WS_URL or BITTENSOR_WS_ENDPOINT must be set")
	}
	if len(cfg.Chains.Enabled) == 0 {
		return fmt.Errorf("at least one enabled chain is required")
	}
	for _, c := range cfg.Chains.Enabled {
		switch strings.ToLower(c) {
		case "solana", "ethereum", "base":
		default:
			return fmt.Errorf("unknown enabled chain: %s", c)
		}
	}
	if cfg.Policy.BurnPercentage < 0 || cfg.Policy.BurnPercentage > 100 {
		return fmt.Errorf("burn percentage must be in [0,100], got %v", cfg.Policy.BurnPercentage)
	}
	return nil
}

// GetConfig returns the global config instance.
func GetConfig() *Config {
	return globalConfig
}
