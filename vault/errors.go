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

package vault

import (
	"errors"
	"fmt"
	"time"
)

// Every error below is a rejection outcome: the entry point that returned
// it had no observable effect. Callers branch on these deterministically,
// so each failure mode gets its own sentinel.
var (
	// ErrNotOwner is returned when a non-owner calls an owner-gated
	// admin entry point.
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrNotAuthorized is returned when the caller is neither the owner
	// nor an authorized updater.
	ErrNotAuthorized = errors.New("caller is not an authorized updater")

	// ErrContractPaused is returned by mutating entry points while the
	// emergency stop is engaged. Reads stay available.
	ErrContractPaused = errors.New("contract is paused")

	// ErrRegistryNotSet is returned when a submission arrives before the
	// passport registry has been configured.
	ErrRegistryNotSet = errors.New("passport registry not set")

	// ErrNilRegistry is returned when configuring a nil passport registry
	ErrNilRegistry = errors.New("nil passport registry")

	// ErrZeroAddress is returned for a zero recipient or updater address
	ErrZeroAddress = errors.New("zero address")

	// ErrInvalidBlockHeight is returned for a submission anchored at
	// block height zero.
	ErrInvalidBlockHeight = errors.New("invalid block height")

	// ErrNullifierAlreadyUsed is returned when a submission reuses a
	// consumed nullifier, regardless of commitment.
	ErrNullifierAlreadyUsed = errors.New("nullifier already used")

	// ErrCommitmentExists is returned when a submission references a
	// commitment that was already recorded. Commitments are one-shot.
	ErrCommitmentExists = errors.New("commitment already recorded")

	// ErrInvalidProof is returned when the external verifier rejects the
	// submission or threshold proof.
	ErrInvalidProof = errors.New("invalid proof")

	// ErrCommitmentNotFound is returned by mutating paths that reference
	// an unrecorded commitment. Reads prefer a typed exists=false.
	ErrCommitmentNotFound = errors.New("commitment does not exist")

	// ErrRiskScoreExpired is returned when a threshold query references a
	// commitment past its validity period.
	ErrRiskScoreExpired = errors.New("risk score expired")

	// ErrScoreTooLarge is returned for a claimed band outside the
	// classification table.
	ErrScoreTooLarge = errors.New("score exceeds maximum")

	// ErrIntervalTooLong is returned when the owner sets a minimum update
	// interval above the 24h bound.
	ErrIntervalTooLong = errors.New("interval too long")

	// ErrInvalidPeriod is returned for a validity period outside the
	// 1-365 day range.
	ErrInvalidPeriod = errors.New("invalid validity period")

	// ErrDecryptionLimit is returned when a caller exhausts its daily
	// threshold verification budget.
	ErrDecryptionLimit = errors.New("daily decryption limit reached")
)

// RateLimitedError is returned when an updater submits before its minimum
// update interval has elapsed. NextAllowed is the earliest time the same
// updater may submit again.
type RateLimitedError struct {
	NextAllowed time.Time
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf(
		"rate limited until %s",
		e.NextAllowed.Format(time.RFC3339),
	)
}
