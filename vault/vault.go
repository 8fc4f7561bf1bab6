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

// Package vault implements the commitment ledger: the submission state
// machine, the nullifier anti-replay set, access control, rate limiting,
// the emergency stop, and the threshold verification surface. Every
// mutating entry point runs under one lock and one storage transaction,
// so a rejected call has no observable effect.
package vault

import (
	"errors"
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
	"github.com/silentrisk/veilpass/verifier"
)

const (
	DefaultMinUpdateInterval   = time.Hour
	DefaultMaxDailyDecryptions = 10
	DefaultValidityPeriod      = 30 * 24 * time.Hour

	// MaxMinUpdateInterval bounds how far the owner can throttle updaters
	MaxMinUpdateInterval = 24 * time.Hour

	MinValidityPeriod = 24 * time.Hour
	MaxValidityPeriod = 365 * 24 * time.Hour
)

// Parameter table keys. Values are owner-mutated only.
const (
	paramPaused              = "paused"
	paramMinUpdateInterval   = "min_update_interval"
	paramMaxDailyDecryptions = "max_daily_decryptions"
	paramDefaultValidity     = "default_validity_period"
	paramTotalScored         = "total_scored"
)

// PassportMinter is the vault's view of the passport registry. The mint
// joins the vault's storage transaction; the returned completion callback
// publishes the mint event and must only be invoked after the outer
// transaction commits.
type PassportMinter interface {
	MintFromVault(
		txn *database.Txn,
		caller risk.Address,
		commitment risk.Hash,
		recipient risk.Address,
	) (uint64, func(), error)
}

// SubmissionRequest carries one attestation from the off-process analyzer
// pipeline. EncryptedScore and the proofs are opaque to the vault.
type SubmissionRequest struct {
	Commitment     risk.Hash
	EncryptedScore []byte
	ScoreProof     []byte
	Band           risk.Band
	BlockHeight    uint64
	Nullifier      risk.Hash
	AddressProof   []byte
	Recipient      risk.Address
	// ScoreCommitment pins the proven score so later threshold queries
	// check the score this submission attested.
	ScoreCommitment risk.Hash
}

type SubmissionResult struct {
	Band    risk.Band
	TokenID uint64
}

// CommitmentMetadata is the queryable view of a recorded commitment
type CommitmentMetadata struct {
	SubmittedAt     time.Time
	BlockHeight     uint64
	Band            risk.Band
	Analyzer        risk.Address
	ScoreCommitment risk.Hash
}

type VaultConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	Verifier     verifier.Verifier
	PromRegistry prometheus.Registerer
	// Owner is the admin identity; it is always an authorized updater
	Owner risk.Address
	// Address is the vault's own identity, presented to the passport
	// registry on mint calls.
	Address risk.Address
	// Now overrides the clock for deterministic replay and tests
	Now func() time.Time
}

type vaultMetrics struct {
	submissions   *prometheus.CounterVec
	verifications *prometheus.CounterVec
}

type Vault struct {
	mutex    sync.Mutex
	logger   *slog.Logger
	db       *database.Database
	eventBus *event.EventBus
	verifier verifier.Verifier
	owner    risk.Address
	addr     risk.Address
	registry PassportMinter
	metrics  *vaultMetrics
	now      func() time.Time
}

func New(cfg VaultConfig) (*Vault, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("no database provided")
	}
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("no verifier provided")
	}
	if cfg.Owner.IsZero() {
		return nil, ErrZeroAddress
	}
	v := &Vault{
		logger:   cfg.Logger,
		db:       cfg.Database,
		eventBus: cfg.EventBus,
		verifier: cfg.Verifier,
		owner:    cfg.Owner,
		addr:     cfg.Address,
		now:      time.Now,
	}
	if cfg.Now != nil {
		v.now = cfg.Now
	}
	if v.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		v.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.PromRegistry != nil {
		promautoFactory := promauto.With(cfg.PromRegistry)
		v.metrics = &vaultMetrics{
			submissions: promautoFactory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "veilpass_vault_submissions_total",
					Help: "number of risk analysis submissions by outcome",
				},
				[]string{"outcome"},
			),
			verifications: promautoFactory.NewCounterVec(
				prometheus.CounterOpts{
					Name: "veilpass_vault_verifications_total",
					Help: "number of threshold verifications by outcome",
				},
				[]string{"outcome"},
			),
		}
	}
	return v, nil
}

// Address returns the vault's service identity
func (v *Vault) Address() risk.Address {
	return v.addr
}

// Owner returns the admin identity
func (v *Vault) Owner() risk.Address {
	return v.owner
}

// SubmitRiskAnalysis records one attestation: commitment, consumed
// nullifier, updater rate-limit advance, blob payloads, and the passport
// mint all land in a single transaction. Check order matches the ledger
// semantics: a failed check aborts before any write, and a failure after
// writes rolls everything back.
func (v *Vault) SubmitRiskAnalysis(
	caller risk.Address,
	req SubmissionRequest,
) (SubmissionResult, error) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	var ret SubmissionResult
	now := v.now()
	txn := v.db.Transaction(true)
	defer txn.Release()
	if paused, err := v.paused(txn); err != nil {
		return ret, err
	} else if paused {
		return ret, v.rejectSubmission(ErrContractPaused)
	}
	updater, err := v.db.GetUpdater(caller.Bytes(), txn)
	if err != nil {
		return ret, err
	}
	if caller != v.owner && (updater == nil || !updater.Authorized) {
		return ret, v.rejectSubmission(ErrNotAuthorized)
	}
	if v.registry == nil {
		return ret, v.rejectSubmission(ErrRegistryNotSet)
	}
	if req.Recipient.IsZero() {
		return ret, v.rejectSubmission(ErrZeroAddress)
	}
	if req.BlockHeight == 0 {
		return ret, v.rejectSubmission(ErrInvalidBlockHeight)
	}
	if !req.Band.Valid() {
		return ret, v.rejectSubmission(ErrScoreTooLarge)
	}
	minInterval, err := v.db.GetParamInt64(
		paramMinUpdateInterval,
		int64(DefaultMinUpdateInterval/time.Second),
		txn,
	)
	if err != nil {
		return ret, err
	}
	if updater != nil && updater.LastSubmission > 0 {
		nextAllowed := time.Unix(updater.LastSubmission+minInterval, 0)
		if now.Before(nextAllowed) {
			return ret, v.rejectSubmission(
				RateLimitedError{NextAllowed: nextAllowed},
			)
		}
	}
	if used, err := v.db.NullifierUsed(req.Nullifier.Bytes(), txn); err != nil {
		return ret, err
	} else if used {
		return ret, v.rejectSubmission(ErrNullifierAlreadyUsed)
	}
	// Trust boundary to the external proof subsystem. The band and score
	// commitment travel as public inputs, so an updater cannot claim a
	// band the proof does not attest nor swap the score behind a later
	// threshold query.
	publicInputs := verifier.SubmissionInputs(
		req.Commitment.Bytes(),
		req.Nullifier.Bytes(),
		req.BlockHeight,
		uint8(req.Band),
		req.ScoreCommitment.Bytes(),
	)
	for _, proof := range [][]byte{req.ScoreProof, req.AddressProof} {
		if len(proof) == 0 {
			return ret, v.rejectSubmission(ErrInvalidProof)
		}
		ok, err := v.verifier.Verify(proof, publicInputs)
		if err != nil {
			return ret, fmt.Errorf("proof verification: %w", err)
		}
		if !ok {
			return ret, v.rejectSubmission(ErrInvalidProof)
		}
	}
	if exists, err := v.db.CommitmentExists(req.Commitment.Bytes(), txn); err != nil {
		return ret, err
	} else if exists {
		return ret, v.rejectSubmission(ErrCommitmentExists)
	}
	// All checks passed: perform every write inside the transaction
	if err := v.db.SetCommitment(
		&database.Commitment{
			Hash:            req.Commitment.Bytes(),
			SubmittedAt:     now.Unix(),
			BlockHeight:     req.BlockHeight,
			Band:            uint8(req.Band),
			Analyzer:        caller.Bytes(),
			ScoreCommitment: req.ScoreCommitment.Bytes(),
		},
		txn,
	); err != nil {
		return ret, err
	}
	if err := v.db.AddNullifier(
		req.Nullifier.Bytes(),
		now.Unix(),
		txn,
	); err != nil {
		return ret, err
	}
	if updater == nil {
		// Owner submissions create updater state on first use
		updater = &database.Updater{
			Address:    caller.Bytes(),
			Authorized: caller == v.owner,
		}
	}
	updater.LastSubmission = now.Unix()
	if err := v.db.SetUpdater(updater, txn); err != nil {
		return ret, err
	}
	total, err := v.db.GetParamInt64(paramTotalScored, 0, txn)
	if err != nil {
		return ret, err
	}
	if err := v.db.SetParamInt64(paramTotalScored, total+1, txn); err != nil {
		return ret, err
	}
	if err := v.db.SetBlob(
		database.ScoreBlobKey(req.Commitment.Bytes()),
		req.EncryptedScore,
		txn,
	); err != nil {
		return ret, err
	}
	if err := v.db.SetBlob(
		database.ProofBlobKey(req.Commitment.Bytes()),
		req.ScoreProof,
		txn,
	); err != nil {
		return ret, err
	}
	tokenID, completeMint, err := v.registry.MintFromVault(
		txn,
		v.addr,
		req.Commitment,
		req.Recipient,
	)
	if err != nil {
		return ret, v.rejectSubmission(err)
	}
	if err := txn.Commit(); err != nil {
		return ret, err
	}
	v.logger.Info(
		"risk analysis recorded",
		"component", "vault",
		"commitment", req.Commitment.String(),
		"band", req.Band.String(),
		"token_id", tokenID,
	)
	if v.metrics != nil {
		v.metrics.submissions.WithLabelValues("accepted").Inc()
	}
	if v.eventBus != nil {
		v.eventBus.Publish(
			RiskAnalysisSubmittedEventType,
			event.NewEvent(
				RiskAnalysisSubmittedEventType,
				RiskAnalysisSubmittedEvent{
					Commitment:  req.Commitment,
					Band:        req.Band,
					Analyzer:    caller,
					BlockHeight: req.BlockHeight,
					TokenID:     tokenID,
				},
			),
		)
	}
	completeMint()
	ret = SubmissionResult{Band: req.Band, TokenID: tokenID}
	return ret, nil
}

func (v *Vault) rejectSubmission(err error) error {
	if v.metrics != nil {
		v.metrics.submissions.WithLabelValues("rejected").Inc()
	}
	return err
}

// VerifyRiskThreshold answers "is the encrypted score bound to this
// commitment below threshold" without decrypting it. The boolean outcome
// is the only information released. Each call consumes one unit of the
// caller's daily decryption budget.
func (v *Vault) VerifyRiskThreshold(
	caller risk.Address,
	commitment risk.Hash,
	threshold uint32,
	proof []byte,
) (bool, error) {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	now := v.now()
	txn := v.db.Transaction(true)
	defer txn.Release()
	if paused, err := v.paused(txn); err != nil {
		return false, err
	} else if paused {
		return false, ErrContractPaused
	}
	record, err := v.db.GetCommitment(commitment.Bytes(), txn)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, ErrCommitmentNotFound
	}
	validity, err := v.validityPeriod(commitment, txn)
	if err != nil {
		return false, err
	}
	if !now.Before(time.Unix(record.SubmittedAt, 0).Add(validity)) {
		return false, ErrRiskScoreExpired
	}
	if err := v.consumeDecryption(caller, now, txn); err != nil {
		return false, err
	}
	below, err := v.verifier.Verify(
		proof,
		verifier.ThresholdInputs(
			commitment.Bytes(),
			record.ScoreCommitment,
			threshold,
		),
	)
	if err != nil {
		return false, fmt.Errorf("threshold verification: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return false, err
	}
	if v.metrics != nil {
		outcome := "below"
		if !below {
			outcome = "not_below"
		}
		v.metrics.verifications.WithLabelValues(outcome).Inc()
	}
	if v.eventBus != nil {
		v.eventBus.Publish(
			DAOVerificationEventType,
			event.NewEvent(
				DAOVerificationEventType,
				DAOVerificationEvent{
					Commitment: commitment,
					Threshold:  threshold,
					Below:      below,
				},
			),
		)
	}
	return below, nil
}

// validityPeriod resolves the applicable validity window for a
// commitment: the per-commitment override when set, the owner-configured
// default otherwise.
func (v *Vault) validityPeriod(
	commitment risk.Hash,
	txn *database.Txn,
) (time.Duration, error) {
	period, ok, err := v.db.GetCustomValidity(commitment.Bytes(), txn)
	if err != nil {
		return 0, err
	}
	if ok {
		return time.Duration(period) * time.Second, nil
	}
	defaultPeriod, err := v.db.GetParamInt64(
		paramDefaultValidity,
		int64(DefaultValidityPeriod/time.Second),
		txn,
	)
	if err != nil {
		return 0, err
	}
	return time.Duration(defaultPeriod) * time.Second, nil
}

func (v *Vault) paused(txn *database.Txn) (bool, error) {
	paused, err := v.db.GetParamInt64(paramPaused, 0, txn)
	if err != nil {
		return false, err
	}
	return paused != 0, nil
}

// CommitmentRecorded reports whether a commitment exists, within the
// caller's transaction. The passport registry uses this to re-validate
// mint requests instead of trusting the caller's claim.
func (v *Vault) CommitmentRecorded(
	txn *database.Txn,
	commitment risk.Hash,
) (bool, error) {
	return v.db.CommitmentExists(commitment.Bytes(), txn)
}

// GetRiskBand returns the band recorded for a commitment. Total function:
// absent commitments map to BandUnknown rather than an error.
func (v *Vault) GetRiskBand(commitment risk.Hash) risk.Band {
	record, err := v.db.GetCommitment(commitment.Bytes(), nil)
	if err != nil || record == nil {
		return risk.BandUnknown
	}
	return risk.Band(record.Band)
}

// HasValidScore returns two independent booleans so callers can
// distinguish "never scored" from "scored but expired".
func (v *Vault) HasValidScore(commitment risk.Hash) (bool, bool) {
	record, err := v.db.GetCommitment(commitment.Bytes(), nil)
	if err != nil || record == nil {
		return false, false
	}
	validity, err := v.validityPeriod(commitment, nil)
	if err != nil {
		return true, false
	}
	valid := v.now().Before(time.Unix(record.SubmittedAt, 0).Add(validity))
	return true, valid
}

// BatchCheckValidScores checks a list of commitments in one call,
// preserving input order. Individual misses are reported in-line, never
// as failures.
func (v *Vault) BatchCheckValidScores(
	commitments []risk.Hash,
) ([]risk.Hash, []bool, []risk.Band) {
	valid := make([]bool, len(commitments))
	bands := make([]risk.Band, len(commitments))
	for i, commitment := range commitments {
		_, isValid := v.HasValidScore(commitment)
		valid[i] = isValid
		bands[i] = v.GetRiskBand(commitment)
	}
	return commitments, valid, bands
}

// GetCommitmentMetadata returns the recorded attestation metadata for a
// commitment and whether it exists.
func (v *Vault) GetCommitmentMetadata(
	commitment risk.Hash,
) (CommitmentMetadata, bool) {
	record, err := v.db.GetCommitment(commitment.Bytes(), nil)
	if err != nil || record == nil {
		return CommitmentMetadata{}, false
	}
	analyzer, _ := risk.NewAddress(record.Analyzer)
	scoreCommitment, _ := risk.NewHash(record.ScoreCommitment)
	return CommitmentMetadata{
		SubmittedAt:     time.Unix(record.SubmittedAt, 0),
		BlockHeight:     record.BlockHeight,
		Band:            risk.Band(record.Band),
		Analyzer:        analyzer,
		ScoreCommitment: scoreCommitment,
	}, true
}

// GetEncryptedScore returns the opaque encrypted score payload for a
// recorded commitment.
func (v *Vault) GetEncryptedScore(commitment risk.Hash) ([]byte, error) {
	ret, err := v.db.GetBlob(database.ScoreBlobKey(commitment.Bytes()), nil)
	if err != nil {
		if errors.Is(err, database.ErrBlobKeyNotFound) {
			return nil, ErrCommitmentNotFound
		}
		return nil, err
	}
	return ret, nil
}

// GetSubmissionProof returns the stored proof material for a recorded
// commitment.
func (v *Vault) GetSubmissionProof(commitment risk.Hash) ([]byte, error) {
	ret, err := v.db.GetBlob(database.ProofBlobKey(commitment.Bytes()), nil)
	if err != nil {
		if errors.Is(err, database.ErrBlobKeyNotFound) {
			return nil, ErrCommitmentNotFound
		}
		return nil, err
	}
	return ret, nil
}

// IsNullifierUsed reports whether a nullifier has been consumed
func (v *Vault) IsNullifierUsed(nullifier risk.Hash) bool {
	used, err := v.db.NullifierUsed(nullifier.Bytes(), nil)
	if err != nil {
		return false
	}
	return used
}

// TotalScoredAddresses returns the number of distinct commitments ever
// recorded.
func (v *Vault) TotalScoredAddresses() uint64 {
	total, err := v.db.GetParamInt64(paramTotalScored, 0, nil)
	if err != nil || total < 0 {
		return 0
	}
	return uint64(total)
}

// IsAuthorizedUpdater reports whether an address may submit. The owner is
// always authorized.
func (v *Vault) IsAuthorizedUpdater(addr risk.Address) bool {
	if addr == v.owner {
		return true
	}
	updater, err := v.db.GetUpdater(addr.Bytes(), nil)
	if err != nil || updater == nil {
		return false
	}
	return updater.Authorized
}

// Paused reports whether the emergency stop is engaged
func (v *Vault) Paused() bool {
	paused, err := v.paused(nil)
	if err != nil {
		return false
	}
	return paused
}
