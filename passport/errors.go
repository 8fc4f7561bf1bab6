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

package passport

import "errors"

var (
	// ErrOnlyVault is returned when a mint request does not come from the
	// configured vault identity.
	ErrOnlyVault = errors.New("caller is not the vault")

	// ErrCommitmentNotInVault is returned when a mint references a
	// commitment the vault has no record of.
	ErrCommitmentNotInVault = errors.New("commitment not in vault")

	// ErrPassportExists is returned when a mint references a commitment
	// that already has a passport.
	ErrPassportExists = errors.New("passport already exists for commitment")

	// ErrPassportNotFound is returned by mutating paths that reference an
	// unknown token id.
	ErrPassportNotFound = errors.New("passport does not exist")

	// ErrPassportExpired is returned by threshold queries on a passport
	// past its expiry.
	ErrPassportExpired = errors.New("passport expired")

	// ErrPassportRevoked is returned when operating on a revoked passport
	ErrPassportRevoked = errors.New("passport revoked")

	// ErrNotOwner is returned for owner-gated admin calls and for
	// transfers not initiated by the token holder.
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrInvalidPeriod is returned for a validity period of zero or more
	// than a year.
	ErrInvalidPeriod = errors.New("invalid validity period")

	// ErrZeroAddress is returned for a zero recipient or transferee
	ErrZeroAddress = errors.New("zero address")

	// ErrContractPaused is returned by mutating entry points while the
	// vault's emergency stop is engaged.
	ErrContractPaused = errors.New("contract is paused")
)
