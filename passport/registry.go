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

// Package passport implements the passport registry: transferable,
// time-boxed tokens attesting that their bound commitment holds a valid
// risk attestation. Minting is reserved to the vault; the registry and
// the vault hold each other's identity as configuration and re-validate
// referenced state on every privileged call rather than trusting the
// caller's claim.
package passport

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/silentrisk/veilpass/database"
	"github.com/silentrisk/veilpass/event"
	"github.com/silentrisk/veilpass/risk"
)

const (
	DefaultValidityPeriod = 30 * 24 * time.Hour
	MaxValidityPeriod     = 365 * 24 * time.Hour

	paramValidityPeriod = "passport_validity_period"
)

// ScoreVault is the registry's view of the commitment ledger
type ScoreVault interface {
	CommitmentRecorded(txn *database.Txn, commitment risk.Hash) (bool, error)
	VerifyRiskThreshold(
		caller risk.Address,
		commitment risk.Hash,
		threshold uint32,
		proof []byte,
	) (bool, error)
	GetRiskBand(commitment risk.Hash) risk.Band
	Paused() bool
}

type RegistryConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Owner        risk.Address
	// VaultAddress is the only identity allowed to mint
	VaultAddress risk.Address
	Vault        ScoreVault
	// Now overrides the clock for deterministic replay and tests
	Now func() time.Time
}

type registryMetrics struct {
	minted  prometheus.Counter
	revoked prometheus.Counter
}

type Registry struct {
	mutex     sync.Mutex
	logger    *slog.Logger
	db        *database.Database
	eventBus  *event.EventBus
	owner     risk.Address
	vaultAddr risk.Address
	vault     ScoreVault
	metrics   *registryMetrics
	now       func() time.Time
}

func New(cfg RegistryConfig) (*Registry, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("no database provided")
	}
	if cfg.Vault == nil {
		return nil, fmt.Errorf("no vault provided")
	}
	if cfg.VaultAddress.IsZero() {
		return nil, ErrZeroAddress
	}
	r := &Registry{
		logger:    cfg.Logger,
		db:        cfg.Database,
		eventBus:  cfg.EventBus,
		owner:     cfg.Owner,
		vaultAddr: cfg.VaultAddress,
		vault:     cfg.Vault,
		now:       time.Now,
	}
	if cfg.Now != nil {
		r.now = cfg.Now
	}
	if r.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.PromRegistry != nil {
		promautoFactory := promauto.With(cfg.PromRegistry)
		r.metrics = &registryMetrics{
			minted: promautoFactory.NewCounter(
				prometheus.CounterOpts{
					Name: "veilpass_passports_minted_total",
					Help: "number of passports minted",
				},
			),
			revoked: promautoFactory.NewCounter(
				prometheus.CounterOpts{
					Name: "veilpass_passports_revoked_total",
					Help: "number of passports revoked",
				},
			),
		}
	}
	return r, nil
}

// MintFromVault mints a passport inside the vault's transaction. Only the
// configured vault identity may call it, and the referenced commitment is
// re-validated through the vault rather than taken on trust. The returned
// callback publishes the mint event; the vault invokes it after its
// transaction commits so subscribers never see a rolled-back mint.
func (r *Registry) MintFromVault(
	txn *database.Txn,
	caller risk.Address,
	commitment risk.Hash,
	recipient risk.Address,
) (uint64, func(), error) {
	if caller != r.vaultAddr {
		return 0, nil, ErrOnlyVault
	}
	if recipient.IsZero() {
		return 0, nil, ErrZeroAddress
	}
	recorded, err := r.vault.CommitmentRecorded(txn, commitment)
	if err != nil {
		return 0, nil, err
	}
	if !recorded {
		return 0, nil, ErrCommitmentNotInVault
	}
	existing, err := r.db.GetPassportByCommitment(commitment.Bytes(), txn)
	if err != nil {
		return 0, nil, err
	}
	if existing != nil {
		return 0, nil, ErrPassportExists
	}
	tokenID, err := r.db.NextTokenId(txn)
	if err != nil {
		return 0, nil, err
	}
	validity, err := r.validityPeriod(txn)
	if err != nil {
		return 0, nil, err
	}
	now := r.now()
	expiry := now.Add(validity)
	if err := r.db.AddPassport(
		&database.Passport{
			TokenId:    tokenID,
			Commitment: commitment.Bytes(),
			Owner:      recipient.Bytes(),
			MintedAt:   now.Unix(),
			Expiry:     expiry.Unix(),
		},
		txn,
	); err != nil {
		return 0, nil, err
	}
	complete := func() {
		r.logger.Info(
			"passport minted",
			"component", "passport",
			"token_id", tokenID,
			"recipient", recipient.String(),
		)
		if r.metrics != nil {
			r.metrics.minted.Inc()
		}
		if r.eventBus != nil {
			r.eventBus.Publish(
				PassportMintedEventType,
				event.NewEvent(
					PassportMintedEventType,
					PassportMintedEvent{
						TokenID:    tokenID,
						Recipient:  recipient,
						Commitment: commitment,
						Expiry:     expiry,
					},
				),
			)
		}
	}
	return tokenID, complete, nil
}

// IsPassportValid reports a passport's validity and expiry. Total
// function: unknown token ids return (false, zero time). Validity is
// derived, never stored: not revoked and not past expiry.
func (r *Registry) IsPassportValid(tokenID uint64) (bool, time.Time) {
	p, err := r.db.GetPassport(tokenID, nil)
	if err != nil || p == nil {
		return false, time.Time{}
	}
	expiry := time.Unix(p.Expiry, 0)
	if p.Revoked {
		return false, expiry
	}
	return r.now().Before(expiry), expiry
}

// VerifyRiskThreshold resolves a token's commitment and delegates to the
// vault. The passport's own expiry is checked here as well, since token
// validity can diverge from score validity.
func (r *Registry) VerifyRiskThreshold(
	caller risk.Address,
	tokenID uint64,
	threshold uint32,
	proof []byte,
) (bool, error) {
	p, err := r.db.GetPassport(tokenID, nil)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, ErrPassportNotFound
	}
	if p.Revoked {
		return false, ErrPassportRevoked
	}
	if !r.now().Before(time.Unix(p.Expiry, 0)) {
		return false, ErrPassportExpired
	}
	commitment, err := risk.NewHash(p.Commitment)
	if err != nil {
		return false, err
	}
	return r.vault.VerifyRiskThreshold(caller, commitment, threshold, proof)
}

// RevokePassport soft-revokes a token. The token is not burned: ownership
// history stays auditable.
func (r *Registry) RevokePassport(
	caller risk.Address,
	tokenID uint64,
	reason string,
) error {
	if r.vault.Paused() {
		return ErrContractPaused
	}
	if caller != r.owner {
		return ErrNotOwner
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	txn := r.db.Transaction(true)
	defer txn.Release()
	p, err := r.db.GetPassport(tokenID, txn)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPassportNotFound
	}
	if p.Revoked {
		return ErrPassportRevoked
	}
	p.Revoked = true
	p.RevokeReason = reason
	if err := r.db.UpdatePassport(p, txn); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	holder, _ := risk.NewAddress(p.Owner)
	r.logger.Info(
		"passport revoked",
		"component", "passport",
		"token_id", tokenID,
		"reason", reason,
	)
	if r.metrics != nil {
		r.metrics.revoked.Inc()
	}
	if r.eventBus != nil {
		r.eventBus.Publish(
			PassportRevokedEventType,
			event.NewEvent(
				PassportRevokedEventType,
				PassportRevokedEvent{
					TokenID: tokenID,
					Owner:   holder,
					Reason:  reason,
				},
			),
		)
	}
	return nil
}

// Transfer moves token ownership. The bound commitment and expiry travel
// with the token, not the original recipient.
func (r *Registry) Transfer(
	caller risk.Address,
	tokenID uint64,
	to risk.Address,
) error {
	if r.vault.Paused() {
		return ErrContractPaused
	}
	if to.IsZero() {
		return ErrZeroAddress
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	txn := r.db.Transaction(true)
	defer txn.Release()
	p, err := r.db.GetPassport(tokenID, txn)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPassportNotFound
	}
	holder, err := risk.NewAddress(p.Owner)
	if err != nil {
		return err
	}
	if caller != holder {
		return ErrNotOwner
	}
	p.Owner = to.Bytes()
	if err := r.db.UpdatePassport(p, txn); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	if r.eventBus != nil {
		r.eventBus.Publish(
			PassportTransferredEventType,
			event.NewEvent(
				PassportTransferredEventType,
				PassportTransferredEvent{
					TokenID: tokenID,
					From:    holder,
					To:      to,
				},
			),
		)
	}
	return nil
}

// SetValidityPeriod sets the expiry window applied at mint time. Rejects
// zero and anything over a year.
func (r *Registry) SetValidityPeriod(
	caller risk.Address,
	period time.Duration,
) error {
	if r.vault.Paused() {
		return ErrContractPaused
	}
	if caller != r.owner {
		return ErrNotOwner
	}
	if period <= 0 || period > MaxValidityPeriod {
		return ErrInvalidPeriod
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	txn := r.db.Transaction(true)
	defer txn.Release()
	if err := r.db.SetParamInt64(
		paramValidityPeriod,
		int64(period/time.Second),
		txn,
	); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	if r.eventBus != nil {
		r.eventBus.Publish(
			ValidityPeriodUpdatedEventType,
			event.NewEvent(
				ValidityPeriodUpdatedEventType,
				ValidityPeriodUpdatedEvent{Period: period},
			),
		)
	}
	return nil
}

func (r *Registry) validityPeriod(txn *database.Txn) (time.Duration, error) {
	period, err := r.db.GetParamInt64(
		paramValidityPeriod,
		int64(DefaultValidityPeriod/time.Second),
		txn,
	)
	if err != nil {
		return 0, err
	}
	return time.Duration(period) * time.Second, nil
}

// GetPassportCommitment returns the commitment bound to a token
func (r *Registry) GetPassportCommitment(tokenID uint64) (risk.Hash, error) {
	p, err := r.db.GetPassport(tokenID, nil)
	if err != nil {
		return risk.Hash{}, err
	}
	if p == nil {
		return risk.Hash{}, ErrPassportNotFound
	}
	return risk.NewHash(p.Commitment)
}

// GetPassportHolder returns the current owner of a token
func (r *Registry) GetPassportHolder(tokenID uint64) (risk.Address, error) {
	p, err := r.db.GetPassport(tokenID, nil)
	if err != nil {
		return risk.Address{}, err
	}
	if p == nil {
		return risk.Address{}, ErrPassportNotFound
	}
	return risk.NewAddress(p.Owner)
}

// GetPassportRiskBand returns the band recorded for a token's commitment
func (r *Registry) GetPassportRiskBand(tokenID uint64) (risk.Band, error) {
	commitment, err := r.GetPassportCommitment(tokenID)
	if err != nil {
		return risk.BandUnknown, err
	}
	return r.vault.GetRiskBand(commitment), nil
}

// NextTokenID returns the id the next mint will be assigned
func (r *Registry) NextTokenID() uint64 {
	tokenID, err := r.db.NextTokenId(nil)
	if err != nil {
		return 0
	}
	return tokenID
}

// TotalMinted returns the number of passports ever minted
func (r *Registry) TotalMinted() uint64 {
	count, err := r.db.PassportCount(nil)
	if err != nil || count < 0 {
		return 0
	}
	return uint64(count)
}
