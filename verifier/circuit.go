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
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	mimc "github.com/consensys/gnark/std/hash/mimc"

	"github.com/silentrisk/veilpass/risk"
)

// BindingCircuit proves that a submission is well-formed without revealing
// the wallet, the secret, or the raw score:
//
//	commitment      = MiMC(wallet, secret)
//	nullifier       = MiMC(secret, blockHeight)
//	scoreCommitment = MiMC(secret, score)
//	score in [0, ScoreMax]
//	band matches the deployment cut points for score
//
// The band constraint is what makes the stored band trustworthy: a prover
// cannot attest a band its score does not classify into. The score
// commitment carries the bound score forward so threshold proofs check
// the same score this submission attested.
//
// Public input ordering matters: gnark processes public inputs in the
// declared order, which must match SubmissionInputs.
type BindingCircuit struct {
	Commitment      frontend.Variable `gnark:",public"`
	Nullifier       frontend.Variable `gnark:",public"`
	BlockHeight     frontend.Variable `gnark:",public"`
	Band            frontend.Variable `gnark:",public"`
	ScoreCommitment frontend.Variable `gnark:",public"`

	Wallet frontend.Variable
	Secret frontend.Variable
	Score  frontend.Variable
}

func (c *BindingCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	hasher.Write(c.Wallet, c.Secret)
	api.AssertIsEqual(hasher.Sum(), c.Commitment)

	hasher.Reset()
	hasher.Write(c.Secret, c.BlockHeight)
	api.AssertIsEqual(hasher.Sum(), c.Nullifier)

	hasher.Reset()
	hasher.Write(c.Secret, c.Score)
	api.AssertIsEqual(hasher.Sum(), c.ScoreCommitment)

	api.AssertIsLessOrEqual(c.Score, risk.ScoreMax)

	// Band must be exactly one of the four tiers
	isLow := api.IsZero(api.Sub(c.Band, int(risk.BandLow)))
	isMedium := api.IsZero(api.Sub(c.Band, int(risk.BandMedium)))
	isHigh := api.IsZero(api.Sub(c.Band, int(risk.BandHigh)))
	isCritical := api.IsZero(api.Sub(c.Band, int(risk.BandCritical)))
	api.AssertIsEqual(
		api.Add(isLow, isMedium, api.Add(isHigh, isCritical)),
		1,
	)
	// Score must fall inside the attested band's cut-point range
	lower := api.Add(
		api.Mul(isMedium, risk.BandCutMedium),
		api.Mul(isHigh, risk.BandCutHigh),
		api.Mul(isCritical, risk.BandCutCritical),
	)
	upper := api.Add(
		api.Mul(isLow, risk.BandCutMedium-1),
		api.Mul(isMedium, risk.BandCutHigh-1),
		api.Add(
			api.Mul(isHigh, risk.BandCutCritical-1),
			api.Mul(isCritical, risk.ScoreMax),
		),
	)
	api.AssertIsLessOrEqual(lower, c.Score)
	api.AssertIsLessOrEqual(c.Score, upper)
	return nil
}

// ThresholdCircuit proves that the score bound to a commitment lies
// strictly below a public threshold, revealing only the boolean outcome.
// The score commitment recorded at submission time pins the score; a
// prover cannot substitute a different score for the comparison.
type ThresholdCircuit struct {
	Commitment      frontend.Variable `gnark:",public"`
	ScoreCommitment frontend.Variable `gnark:",public"`
	Threshold       frontend.Variable `gnark:",public"`

	Wallet frontend.Variable
	Secret frontend.Variable
	Score  frontend.Variable
}

func (c *ThresholdCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	hasher.Write(c.Wallet, c.Secret)
	api.AssertIsEqual(hasher.Sum(), c.Commitment)

	hasher.Reset()
	hasher.Write(c.Secret, c.Score)
	api.AssertIsEqual(hasher.Sum(), c.ScoreCommitment)

	// score < threshold
	api.AssertIsLessOrEqual(api.Add(c.Score, 1), c.Threshold)
	return nil
}

// BindingAssignment builds the public-only witness assignment for a
// submission binding proof.
func BindingAssignment(publicInputs []*big.Int) (frontend.Circuit, error) {
	if len(publicInputs) != 5 {
		return nil, fmt.Errorf(
			"binding proof expects 5 public inputs, got %d",
			len(publicInputs),
		)
	}
	return &BindingCircuit{
		Commitment:      publicInputs[0],
		Nullifier:       publicInputs[1],
		BlockHeight:     publicInputs[2],
		Band:            publicInputs[3],
		ScoreCommitment: publicInputs[4],
	}, nil
}

// ThresholdAssignment builds the public-only witness assignment for a
// threshold comparison proof.
func ThresholdAssignment(publicInputs []*big.Int) (frontend.Circuit, error) {
	if len(publicInputs) != 3 {
		return nil, fmt.Errorf(
			"threshold proof expects 3 public inputs, got %d",
			len(publicInputs),
		)
	}
	return &ThresholdCircuit{
		Commitment:      publicInputs[0],
		ScoreCommitment: publicInputs[1],
		Threshold:       publicInputs[2],
	}, nil
}
