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

package veilpass

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentrisk/veilpass/risk"
	"github.com/silentrisk/veilpass/vault"
)

func vaultSubmission(
	commitment risk.Hash,
	nullifier risk.Hash,
	recipient risk.Address,
) vault.SubmissionRequest {
	var scoreCommitment risk.Hash
	scoreCommitment[0] = 0x04
	return vault.SubmissionRequest{
		Commitment:      commitment,
		EncryptedScore:  []byte("encrypted score"),
		ScoreProof:      []byte("score proof"),
		Band:            risk.BandLow,
		BlockHeight:     100,
		Nullifier:       nullifier,
		ScoreCommitment: scoreCommitment,
		AddressProof:    []byte("address proof"),
		Recipient:       recipient,
	}
}

func TestNodeRunStop(t *testing.T) {
	n, err := New(NewConfig(
		WithOwner(testOwner()),
		WithVaultAddress(testVaultAddr()),
		WithRunMode(runModeDev),
		WithMinUpdateInterval(2*time.Hour),
		WithMaxDailyDecryptions(3),
	))
	require.NoError(t, err)
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(context.Background())
	}()
	// Wait for the components to come up
	require.Eventually(
		t,
		func() bool { return n.Vault() != nil && n.Registry() != nil },
		5*time.Second,
		10*time.Millisecond,
	)
	// Startup params applied through the owner's admin operations
	assert.False(t, n.Vault().Paused())
	assert.Equal(t, uint64(0), n.Vault().TotalScoredAddresses())
	assert.Equal(t, uint64(0), n.Registry().TotalMinted())
	require.NoError(t, n.Stop())
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for node shutdown")
	}
}

func TestNodeRunContextCancel(t *testing.T) {
	n, err := New(NewConfig(
		WithOwner(testOwner()),
		WithVaultAddress(testVaultAddr()),
		WithRunMode(runModeDev),
	))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(ctx)
	}()
	require.Eventually(
		t,
		func() bool { return n.Vault() != nil },
		5*time.Second,
		10*time.Millisecond,
	)
	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for node shutdown")
	}
}

func TestNodeSubmitViaDevVerifier(t *testing.T) {
	n, err := New(NewConfig(
		WithOwner(testOwner()),
		WithVaultAddress(testVaultAddr()),
		WithRunMode(runModeDev),
	))
	require.NoError(t, err)
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(context.Background())
	}()
	require.Eventually(
		t,
		func() bool { return n.Vault() != nil },
		5*time.Second,
		10*time.Millisecond,
	)
	var commitment, nullifier risk.Hash
	commitment[0] = 0x01
	nullifier[0] = 0x02
	var recipient risk.Address
	recipient[0] = 0x03
	result, err := n.Vault().SubmitRiskAnalysis(
		testOwner(),
		vaultSubmission(commitment, nullifier, recipient),
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.TokenID)
	valid, expiry := n.Registry().IsPassportValid(result.TokenID)
	assert.True(t, valid)
	assert.False(t, expiry.IsZero())
	require.NoError(t, n.Stop())
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for node shutdown")
	}
}
