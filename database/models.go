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

package database

// migrateModels is the list of models to migrate at startup
var migrateModels = []any{
	&Commitment{},
	&Nullifier{},
	&Passport{},
	&Updater{},
	&Param{},
	&CustomValidity{},
}

// Commitment is an attestation record keyed by its opaque commitment hash.
// Rows are append-only: a commitment, once recorded, is never updated or
// deleted.
type Commitment struct {
	ID              uint   `gorm:"primarykey"`
	Hash            []byte `gorm:"uniqueIndex;size:32"`
	SubmittedAt     int64
	BlockHeight     uint64
	Band            uint8
	Analyzer        []byte `gorm:"size:20"`
	ScoreCommitment []byte `gorm:"size:32"`
}

func (Commitment) TableName() string {
	return "commitment"
}

// Nullifier is a consumed one-time-use hash. Kept as its own table,
// independent of the commitment table, so the anti-replay set can be
// queried and tested on its own.
type Nullifier struct {
	ID         uint   `gorm:"primarykey"`
	Hash       []byte `gorm:"uniqueIndex;size:32"`
	ConsumedAt int64
}

func (Nullifier) TableName() string {
	return "nullifier"
}

// Passport is a minted attestation token. Exactly one row may reference a
// given commitment. Rows are never deleted; revocation is a soft flag so
// ownership history stays auditable.
type Passport struct {
	ID           uint   `gorm:"primarykey"`
	TokenId      uint64 `gorm:"uniqueIndex"`
	Commitment   []byte `gorm:"uniqueIndex;size:32"`
	Owner        []byte `gorm:"index;size:20"`
	MintedAt     int64
	Expiry       int64
	Revoked      bool
	RevokeReason string
}

func (Passport) TableName() string {
	return "passport"
}

// Updater tracks per-address submission state. Rows are created when an
// address is first authorized and never deleted, only deauthorized.
type Updater struct {
	ID               uint   `gorm:"primarykey"`
	Address          []byte `gorm:"uniqueIndex;size:20"`
	Authorized       bool
	LastSubmission   int64
	DecryptionsToday uint32
	DayBucket        int64
}

func (Updater) TableName() string {
	return "updater"
}

// Param is an owner-mutated configuration entry
type Param struct {
	ID    uint   `gorm:"primarykey"`
	Key   string `gorm:"uniqueIndex"`
	Value string
}

func (Param) TableName() string {
	return "param"
}

// CustomValidity overrides the default score validity period for a single
// commitment.
type CustomValidity struct {
	ID         uint   `gorm:"primarykey"`
	Commitment []byte `gorm:"uniqueIndex;size:32"`
	Period     int64
}

func (CustomValidity) TableName() string {
	return "custom_validity"
}
