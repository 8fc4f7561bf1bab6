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

package veilpass

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/silentrisk/veilpass/risk"
	"github.com/silentrisk/veilpass/verifier"
)

// runMode constants for operational mode configuration
const (
	runModeServe = "serve"
	runModeDev   = "dev"
)

type Config struct {
	promRegistry        prometheus.Registerer
	logger              *slog.Logger
	verifier            verifier.Verifier
	dataDir             string
	verifyingKeyPath    string
	apiListenAddress    string
	runMode             string
	owner               risk.Address
	vaultAddress        risk.Address
	curve               ecc.ID
	minUpdateInterval   time.Duration
	maxDailyDecryptions uint32
	scoreValidityPeriod time.Duration
	passportValidity    time.Duration
	shutdownTimeout     time.Duration
}

// isDevMode returns true if running in development mode
func (c *Config) isDevMode() bool {
	return c.runMode == runModeDev
}

func (n *Node) configValidate() error {
	if n.config.owner.IsZero() {
		return errors.New("no owner address configured")
	}
	if n.config.vaultAddress.IsZero() {
		return errors.New("no vault address configured")
	}
	if n.config.verifier == nil &&
		n.config.verifyingKeyPath == "" &&
		!n.config.isDevMode() {
		return errors.New(
			"no verifier configured: provide a verifying key or run in dev mode",
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new veilpass config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		curve:   ecc.BN254,
		runMode: runModeServe,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithPrometheusRegistry specifies a prometheus registerer for metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithOwner specifies the contract owner identity
func WithOwner(owner risk.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.owner = owner
	}
}

// WithVaultAddress specifies the vault's own identity, used by the
// passport registry to authenticate mint calls
func WithVaultAddress(addr risk.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.vaultAddress = addr
	}
}

// WithVerifier specifies the proof verifier to use. This overrides any
// configured verifying key
func WithVerifier(v verifier.Verifier) ConfigOptionFunc {
	return func(c *Config) {
		c.verifier = v
	}
}

// WithVerifyingKeyPath specifies the path to a groth16 verifying key
func WithVerifyingKeyPath(path string) ConfigOptionFunc {
	return func(c *Config) {
		c.verifyingKeyPath = path
	}
}

// WithCurve specifies the elliptic curve of the proof system. The default is BN254
func WithCurve(curve ecc.ID) ConfigOptionFunc {
	return func(c *Config) {
		c.curve = curve
	}
}

// WithApiListenAddress specifies the REST API listen address (empty = disabled)
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithRunMode specifies the operational run mode. Dev mode substitutes a
// deterministic mock verifier when no real one is configured
func WithRunMode(runMode string) ConfigOptionFunc {
	return func(c *Config) {
		c.runMode = runMode
	}
}

// WithMinUpdateInterval specifies the per-updater submission interval to
// apply at startup (0 = keep the stored value)
func WithMinUpdateInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.minUpdateInterval = interval
	}
}

// WithMaxDailyDecryptions specifies the daily threshold verification
// budget to apply at startup (0 = keep the stored value)
func WithMaxDailyDecryptions(maxDaily uint32) ConfigOptionFunc {
	return func(c *Config) {
		c.maxDailyDecryptions = maxDaily
	}
}

// WithScoreValidityPeriod specifies the default score validity window to
// apply at startup (0 = keep the stored value)
func WithScoreValidityPeriod(period time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.scoreValidityPeriod = period
	}
}

// WithPassportValidityPeriod specifies the passport expiry window to
// apply at startup (0 = keep the stored value)
func WithPassportValidityPeriod(period time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.passportValidity = period
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. This defaults to 30s
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
