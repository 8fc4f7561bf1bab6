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

package verifier

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
)

// AssignmentFunc builds a public-only witness assignment from raw public
// inputs. It fixes the circuit shape a Groth16Verifier instance checks
// against.
type AssignmentFunc func(publicInputs []*big.Int) (frontend.Circuit, error)

type Groth16VerifierConfig struct {
	Logger     *slog.Logger
	Curve      ecc.ID
	Vk         groth16.VerifyingKey
	Assignment AssignmentFunc
}

// Groth16Verifier checks groth16 proofs against a fixed verifying key.
// The verifying key is produced by the external circuit setup and loaded
// at deployment time; it is never regenerated here, since a fresh setup
// would yield a different key.
type Groth16Verifier struct {
	logger     *slog.Logger
	curve      ecc.ID
	vk         groth16.VerifyingKey
	assignment AssignmentFunc
}

func NewGroth16Verifier(cfg Groth16VerifierConfig) *Groth16Verifier {
	v := &Groth16Verifier{
		logger:     cfg.Logger,
		curve:      cfg.Curve,
		vk:         cfg.Vk,
		assignment: cfg.Assignment,
	}
	if v.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		v.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return v
}

// Verify checks a serialized groth16 proof against the public inputs.
// Malformed proofs and witness construction failures are errors; a
// well-formed proof that fails verification returns (false, nil).
func (v *Groth16Verifier) Verify(
	proofBytes []byte,
	publicInputs []*big.Int,
) (bool, error) {
	proof := groth16.NewProof(v.curve)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false, fmt.Errorf("invalid proof encoding: %w", err)
	}
	assignment, err := v.assignment(publicInputs)
	if err != nil {
		return false, err
	}
	publicWitness, err := frontend.NewWitness(
		assignment,
		v.curve.ScalarField(),
		frontend.PublicOnly(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to build public witness: %w", err)
	}
	if err := groth16.Verify(proof, v.vk, publicWitness); err != nil {
		v.logger.Debug(
			"proof verification failed",
			"component", "verifier",
			"error", err,
		)
		return false, nil
	}
	return true, nil
}

// LoadVerifyingKey reads a serialized groth16 verifying key from a file
func LoadVerifyingKey(path string, curve ecc.ID) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open verifying key: %w", err)
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(curve)
	if _, err := vk.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("failed to read verifying key: %w", err)
	}
	return vk, nil
}
