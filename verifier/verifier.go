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

// Package verifier is the trust boundary to the external proving and FHE
// subsystem. The vault consumes it through a single capability: a proof
// and its public inputs go in, a boolean comes out. The groth16 backend
// checks real proofs; the mock backend gives tests and dev mode a
// deterministic substitute with no cryptographic dependencies.
package verifier

import (
	"math/big"
)

// Verifier checks an opaque proof against its public inputs. It is used
// both to accept a submission (binding the encrypted score to the
// commitment and the claimed wallet ownership) and to answer threshold
// queries without decrypting the stored score.
//
// A false result with a nil error means the proof was well-formed but did
// not verify; an error means the proof could not be checked at all.
type Verifier interface {
	Verify(proof []byte, publicInputs []*big.Int) (bool, error)
}

// SubmissionInputs assembles the public inputs for a submission binding
// proof: commitment, nullifier, block height, the claimed risk band, and
// the score commitment pinning the score for later threshold queries.
func SubmissionInputs(
	commitment []byte,
	nullifier []byte,
	blockHeight uint64,
	band uint8,
	scoreCommitment []byte,
) []*big.Int {
	return []*big.Int{
		new(big.Int).SetBytes(commitment),
		new(big.Int).SetBytes(nullifier),
		new(big.Int).SetUint64(blockHeight),
		new(big.Int).SetUint64(uint64(band)),
		new(big.Int).SetBytes(scoreCommitment),
	}
}

// ThresholdInputs assembles the public inputs for a threshold comparison
// proof: commitment, the score commitment recorded at submission time,
// and the threshold.
func ThresholdInputs(
	commitment []byte,
	scoreCommitment []byte,
	threshold uint32,
) []*big.Int {
	return []*big.Int{
		new(big.Int).SetBytes(commitment),
		new(big.Int).SetBytes(scoreCommitment),
		new(big.Int).SetUint64(uint64(threshold)),
	}
}
