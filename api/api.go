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

// Package api is the read-only REST surface for relying parties: passport
// validity, commitment metadata, and deployment stats. It never exposes a
// mutating vault entry point, and it stays available while the vault is
// paused.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/silentrisk/veilpass/risk"
	"github.com/silentrisk/veilpass/vault"
)

// VaultReader is the vault query surface the API consumes
type VaultReader interface {
	GetRiskBand(commitment risk.Hash) risk.Band
	HasValidScore(commitment risk.Hash) (bool, bool)
	BatchCheckValidScores(
		commitments []risk.Hash,
	) ([]risk.Hash, []bool, []risk.Band)
	GetCommitmentMetadata(commitment risk.Hash) (vault.CommitmentMetadata, bool)
	IsNullifierUsed(nullifier risk.Hash) bool
	TotalScoredAddresses() uint64
	Paused() bool
}

// RegistryReader is the passport query surface the API consumes
type RegistryReader interface {
	IsPassportValid(tokenID uint64) (bool, time.Time)
	GetPassportCommitment(tokenID uint64) (risk.Hash, error)
	GetPassportHolder(tokenID uint64) (risk.Address, error)
	GetPassportRiskBand(tokenID uint64) (risk.Band, error)
	TotalMinted() uint64
}

type Config struct {
	ListenAddress string
}

// Api is the REST API server
type Api struct {
	config     Config
	logger     *slog.Logger
	vault      VaultReader
	registry   RegistryReader
	httpServer *http.Server
	mu         sync.Mutex
}

func New(
	cfg Config,
	vaultReader VaultReader,
	registryReader RegistryReader,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	return &Api{
		config:   cfg,
		logger:   logger,
		vault:    vaultReader,
		registry: registryReader,
	}
}

// Start starts the HTTP server in a background goroutine
func (a *Api) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}

	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Bind the listening socket first so port conflicts are detected
	// immediately, then serve in a background goroutine.
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("API server error", "error", err)
		}
	}()

	a.logger.Info("API listener started on " + a.config.ListenAddress)

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		srv := a.httpServer
		a.httpServer = nil
		a.mu.Unlock()
		if srv != nil {
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error(
					"failed to shutdown API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()

	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}

// Handler returns the route mux. Exposed separately so tests can drive
// the API without a listening socket.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /api/v1/passports/{id}", a.handlePassport)
	mux.HandleFunc("GET /api/v1/commitments/{hash}", a.handleCommitment)
	mux.HandleFunc(
		"GET /api/v1/commitments/{hash}/valid",
		a.handleCommitmentValid,
	)
	mux.HandleFunc("POST /api/v1/commitments/batch", a.handleBatch)
	mux.HandleFunc("GET /api/v1/nullifiers/{hash}", a.handleNullifier)
	mux.HandleFunc("GET /api/v1/stats", a.handleStats)
	return mux
}
