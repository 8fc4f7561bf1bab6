// Copyright 2026 Silent Risk Labs
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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "veilpass.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// RunMode represents the operational mode of the veilpass node
type RunMode string

const (
	RunModeServe RunMode = "serve" // Real proof verification (default)
	RunModeDev   RunMode = "dev"   // Development mode (mock verifier)
)

// Valid returns true if the RunMode is a known valid mode
func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

// IsDevMode returns true if the mode enables development behaviors
// (mock proof verification)
func (m RunMode) IsDevMode() bool {
	return m == RunModeDev
}

type Config struct {
	DatabasePath     string  `yaml:"databasePath"                                          split_words:"true"`
	BindAddr         string  `yaml:"bindAddr"                                              split_words:"true"`
	ApiListenAddress string  `yaml:"apiListenAddress"  envconfig:"VEILPASS_API_LISTEN"`
	Owner            string  `yaml:"owner"`
	VaultAddress     string  `yaml:"vaultAddress"                                          split_words:"true"`
	VerifyingKeyPath string  `yaml:"verifyingKeyPath"  envconfig:"VEILPASS_VERIFYING_KEY"`
	ShutdownTimeout  string  `yaml:"shutdownTimeout"                                       split_words:"true"`
	RunMode          RunMode `yaml:"runMode"           envconfig:"VEILPASS_RUN_MODE"`
	MetricsPort      uint    `yaml:"metricsPort"                                           split_words:"true"`
	// Contract parameters applied at startup (zero values keep the
	// stored values)
	MinUpdateInterval      string `yaml:"minUpdateInterval"      envconfig:"VEILPASS_MIN_UPDATE_INTERVAL"`
	MaxDailyDecryptions    uint32 `yaml:"maxDailyDecryptions"    envconfig:"VEILPASS_MAX_DAILY_DECRYPTIONS"`
	ScoreValidityPeriod    string `yaml:"scoreValidityPeriod"    envconfig:"VEILPASS_SCORE_VALIDITY_PERIOD"`
	PassportValidityPeriod string `yaml:"passportValidityPeriod" envconfig:"VEILPASS_PASSPORT_VALIDITY_PERIOD"`
}

var globalConfig = &Config{
	DatabasePath:     ".veilpass",
	BindAddr:         "0.0.0.0",
	ApiListenAddress: "localhost:8080",
	MetricsPort:      12798,
	RunMode:          RunModeServe,
	ShutdownTimeout:  DefaultShutdownTimeout,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.veilpass/veilpass.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".veilpass", "veilpass.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/veilpass/veilpass.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/veilpass/veilpass.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Overlay config values onto existing defaults
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("veilpass", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Validate and default RunMode
	if !globalConfig.RunMode.Valid() {
		return nil, fmt.Errorf(
			"invalid runMode: %q (must be 'serve' or 'dev')",
			globalConfig.RunMode,
		)
	}
	if globalConfig.RunMode == "" {
		globalConfig.RunMode = RunModeServe
	}

	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
