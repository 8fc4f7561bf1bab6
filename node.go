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

// Package veilpass assembles the risk score vault, the passport registry,
// and their supporting stores into a runnable node.
package veilpass

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/silentrisk/veilpass/api"
	"github.com/silentrisk/veilpass/database"
	"github.com/silentrisk/veilpass/event"
	"github.com/silentrisk/veilpass/passport"
	"github.com/silentrisk/veilpass/vault"
	"github.com/silentrisk/veilpass/verifier"
)

type Node struct {
	config       Config
	eventBus     *event.EventBus
	db           *database.Database
	verifier     verifier.Verifier
	vault        *vault.Vault
	registry     *passport.Registry
	api          *api.Api
	done         chan struct{}
	shutdownOnce sync.Once
}

func New(config Config) (*Node, error) {
	n := &Node{
		config: config,
		done:   make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid node config: %w", err)
	}
	return n, nil
}

// Run assembles the node components and blocks until Stop is called or
// the provided context is cancelled
func (n *Node) Run(ctx context.Context) error {
	// Event bus
	n.eventBus = event.NewEventBus(n.config.promRegistry)
	// Storage
	db, err := database.New(n.config.logger, n.config.dataDir)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Proof verifier
	if err := n.setupVerifier(); err != nil {
		return err
	}
	// Vault
	riskVault, err := vault.New(
		vault.VaultConfig{
			Logger:       n.config.logger,
			Database:     n.db,
			EventBus:     n.eventBus,
			Verifier:     n.verifier,
			PromRegistry: n.config.promRegistry,
			Owner:        n.config.owner,
			Address:      n.config.vaultAddress,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}
	n.vault = riskVault
	// Passport registry
	registry, err := passport.New(
		passport.RegistryConfig{
			Logger:       n.config.logger,
			Database:     n.db,
			EventBus:     n.eventBus,
			PromRegistry: n.config.promRegistry,
			Owner:        n.config.owner,
			VaultAddress: n.config.vaultAddress,
			Vault:        riskVault,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create passport registry: %w", err)
	}
	n.registry = registry
	if err := riskVault.SetPassportRegistry(n.config.owner, registry); err != nil {
		return fmt.Errorf("failed to wire passport registry: %w", err)
	}
	if err := n.applyStartupParams(); err != nil {
		return err
	}
	// REST API
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.Config{
				ListenAddress: n.config.apiListenAddress,
			},
			riskVault,
			registry,
			n.config.logger,
		)
		if err := n.api.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API: %w", err)
		}
	}
	n.config.logger.Info(
		"node started",
		"component", "node",
		"owner", n.config.owner.String(),
	)
	// Wait for shutdown
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return n.shutdown()
}

// Stop shuts down the node and its components
func (n *Node) Stop() error {
	n.shutdownOnce.Do(func() {
		close(n.done)
	})
	return nil
}

func (n *Node) shutdown() error {
	timeout := n.config.shutdownTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	var errs []error
	if n.api != nil {
		if err := n.api.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop API: %w", err))
		}
	}
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// setupVerifier resolves the proof verifier from the config. An explicit
// verifier wins, then a configured verifying key, then the dev-mode mock.
func (n *Node) setupVerifier() error {
	if n.config.verifier != nil {
		n.verifier = n.config.verifier
		return nil
	}
	if n.config.verifyingKeyPath != "" {
		vk, err := verifier.LoadVerifyingKey(
			n.config.verifyingKeyPath,
			n.config.curve,
		)
		if err != nil {
			return fmt.Errorf("failed to load verifying key: %w", err)
		}
		n.verifier = verifier.NewGroth16Verifier(
			verifier.Groth16VerifierConfig{
				Logger:     n.config.logger,
				Curve:      n.config.curve,
				Vk:         vk,
				Assignment: verifier.BindingAssignment,
			},
		)
		return nil
	}
	// Dev mode only, enforced by configValidate
	n.config.logger.Warn(
		"using mock proof verifier, proofs are NOT checked",
		"component", "node",
	)
	n.verifier = verifier.NewMockVerifier()
	return nil
}

// applyStartupParams applies configured contract parameters via the
// owner's admin operations. Zero values leave the stored params alone.
// Parameter setters reject calls while paused, so a node restarting
// into a paused datastore keeps its stored params until unpaused.
func (n *Node) applyStartupParams() error {
	if n.vault.Paused() {
		n.config.logger.Warn(
			"contract is paused, skipping configured parameter changes",
			"component", "node",
		)
		return nil
	}
	owner := n.config.owner
	if n.config.minUpdateInterval > 0 {
		if err := n.vault.SetMinUpdateInterval(owner, n.config.minUpdateInterval); err != nil {
			return fmt.Errorf("failed to set min update interval: %w", err)
		}
	}
	if n.config.maxDailyDecryptions > 0 {
		if err := n.vault.SetMaxDailyDecryptions(owner, n.config.maxDailyDecryptions); err != nil {
			return fmt.Errorf("failed to set max daily decryptions: %w", err)
		}
	}
	if n.config.scoreValidityPeriod > 0 {
		if err := n.vault.SetDefaultValidityPeriod(owner, n.config.scoreValidityPeriod); err != nil {
			return fmt.Errorf("failed to set score validity period: %w", err)
		}
	}
	if n.config.passportValidity > 0 {
		if err := n.registry.SetValidityPeriod(owner, n.config.passportValidity); err != nil {
			return fmt.Errorf("failed to set passport validity period: %w", err)
		}
	}
	return nil
}

// Vault returns the risk score vault
func (n *Node) Vault() *vault.Vault {
	return n.vault
}

// Registry returns the passport registry
func (n *Node) Registry() *passport.Registry {
	return n.registry
}

// EventBus returns the node's event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// Database returns the node's database
func (n *Node) Database() *database.Database {
	return n.db
}
