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

package risk

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Commitment derives the commitment hash binding a wallet address to a
// client-held secret. The derivation is keccak256(address || secret) so
// that commitments produced by off-process analyzers match what the
// ledger indexes by.
func Commitment(wallet Address, secret []byte) Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(wallet[:])
	h.Write(secret)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Nullifier derives the one-time-use nullifier for a submission as
// keccak256(address || secret || blockHeight). Including the block height
// lets the same identity submit again later without linking the two
// submissions.
func Nullifier(wallet Address, secret []byte, blockHeight uint64) Hash {
	var height [8]byte
	binary.BigEndian.PutUint64(height[:], blockHeight)
	h := sha3.NewLegacyKeccak256()
	h.Write(wallet[:])
	h.Write(secret)
	h.Write(height[:])
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}
