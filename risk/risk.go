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

// Package risk defines the leaf domain types shared by the vault and the
// passport registry: commitment/nullifier hashes, subject addresses, and
// the coarse risk band classification disclosed in place of raw scores.
package risk

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ScoreMax is the upper bound of the raw risk score range. Scores are
// produced off-process by the analysis pipeline and never stored here in
// plaintext; the bound exists so that proofs over scores have a fixed
// public range.
const ScoreMax = 10000

// Band is the coarse risk classification derived from a raw score. Only
// the band ever leaves the ledger; the cut points are a deployment
// constant so the privacy guarantee is structural rather than advisory.
type Band uint8

const (
	BandUnknown  Band = 0
	BandLow      Band = 1
	BandMedium   Band = 2
	BandHigh     Band = 3
	BandCritical Band = 4
)

// Deployment-constant cut points over the [0, ScoreMax] score range. A
// score s classifies into the first band whose cut point exceeds s. The
// proof circuits constrain the attested band against these same values.
//
//	[0, 2500)     -> Low
//	[2500, 5000)  -> Medium
//	[5000, 7500)  -> High
//	[7500, 10000] -> Critical
const (
	BandCutMedium   = 2500
	BandCutHigh     = 5000
	BandCutCritical = 7500
)

// Classify maps a raw score to its risk band. Classification is strictly
// monotone in the score value.
func Classify(score uint32) Band {
	switch {
	case score < BandCutMedium:
		return BandLow
	case score < BandCutHigh:
		return BandMedium
	case score < BandCutCritical:
		return BandHigh
	default:
		return BandCritical
	}
}

// Valid returns true for bands that can be stored against a commitment.
// BandUnknown is a read-side value for absent commitments, never stored.
func (b Band) Valid() bool {
	return b >= BandLow && b <= BandCritical
}

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	case BandHigh:
		return "high"
	case BandCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// HashSize is the size of commitment and nullifier hashes in bytes
const HashSize = 32

// Hash is an opaque 32-byte value: either a commitment binding a wallet
// identity to a secret, or a one-time-use nullifier. The ledger never
// learns the preimage of either.
type Hash [HashSize]byte

// NewHash builds a Hash from a byte slice, which must be exactly HashSize
// bytes long.
func NewHash(data []byte) (Hash, error) {
	var h Hash
	if len(data) != HashSize {
		return h, fmt.Errorf(
			"invalid hash length: expected %d bytes, got %d",
			HashSize,
			len(data),
		)
	}
	copy(h[:], data)
	return h, nil
}

// HashFromHex parses a hex-encoded hash, with or without a 0x prefix.
func HashFromHex(s string) (Hash, error) {
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash hex: %w", err)
	}
	return NewHash(data)
}

// Bytes returns the hash as a byte slice
func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero returns true for the all-zero hash
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// AddressSize is the size of subject and updater addresses in bytes
const AddressSize = 20

// Address identifies an updater, a passport holder, or the contract owner
type Address [AddressSize]byte

// NewAddress builds an Address from a byte slice, which must be exactly
// AddressSize bytes long.
func NewAddress(data []byte) (Address, error) {
	var a Address
	if len(data) != AddressSize {
		return a, fmt.Errorf(
			"invalid address length: expected %d bytes, got %d",
			AddressSize,
			len(data),
		)
	}
	copy(a[:], data)
	return a, nil
}

// AddressFromHex parses a hex-encoded address, with or without a 0x prefix.
func AddressFromHex(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address hex: %w", err)
	}
	return NewAddress(data)
}

// Bytes returns the address as a byte slice
func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero returns true for the null address
func (a Address) IsZero() bool {
	return a == Address{}
}
