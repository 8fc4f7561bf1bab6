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

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentrisk/veilpass/database"
	"github.com/silentrisk/veilpass/risk"
)

var (
	testOwner     = testAddress(0x01)
	testRecipient = testAddress(0x03)
	testVaultAddr = testAddress(0xaa)
)

func testAddress(b byte) risk.Address {
	var ret risk.Address
	for i := range ret {
		ret[i] = b
	}
	return ret
}

func testHash(b byte) risk.Hash {
	var ret risk.Hash
	for i := range ret {
		ret[i] = b
	}
	return ret
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stubVault is a canned ScoreVault. The registry re-validates referenced
// state through this interface instead of trusting the caller.
type stubVault struct {
	recorded     map[risk.Hash]bool
	paused       bool
	verifyResult bool
	verifyErr    error
	band         risk.Band
}

func newStubVault() *stubVault {
	return &stubVault{
		recorded:     make(map[risk.Hash]bool),
		verifyResult: true,
		band:         risk.BandLow,
	}
}

func (s *stubVault) CommitmentRecorded(
	txn *database.Txn,
	commitment risk.Hash,
) (bool, error) {
	return s.recorded[commitment], nil
}

func (s *stubVault) VerifyRiskThreshold(
	caller risk.Address,
	commitment risk.Hash,
	threshold uint32,
	proof []byte,
) (bool, error) {
	return s.verifyResult, s.verifyErr
}

func (s *stubVault) GetRiskBand(commitment risk.Hash) risk.Band {
	if !s.recorded[commitment] {
		return risk.BandUnknown
	}
	return s.band
}

func (s *stubVault) Paused() bool {
	return s.paused
}

type testEnv struct {
	registry *Registry
	db       *database.Database
	vault    *stubVault
	clock    *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	db, err := database.New(logger, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	clock := newTestClock()
	vault := newStubVault()
	registry, err := New(RegistryConfig{
		Logger:       logger,
		Database:     db,
		Owner:        testOwner,
		VaultAddress: testVaultAddr,
		Vault:        vault,
		Now:          clock.Now,
	})
	require.NoError(t, err)
	return &testEnv{
		registry: registry,
		db:       db,
		vault:    vault,
		clock:    clock,
	}
}

// mint drives a complete mint the way the vault does: inside a
// transaction, with the completion callback fired after commit.
func (env *testEnv) mint(
	t *testing.T,
	caller risk.Address,
	commitment risk.Hash,
	recipient risk.Address,
) (uint64, error) {
	t.Helper()
	txn := env.db.Transaction(true)
	defer txn.Release()
	tokenID, complete, err := env.registry.MintFromVault(
		txn,
		caller,
		commitment,
		recipient,
	)
	if err != nil {
		return 0, err
	}
	if err := txn.Commit(); err != nil {
		return 0, err
	}
	complete()
	return tokenID, nil
}

func TestMintFromVault(t *testing.T) {
	env := newTestEnv(t)
	c1 := testHash(0x11)
	env.vault.recorded[c1] = true

	tokenID, err := env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tokenID)

	valid, expiry := env.registry.IsPassportValid(0)
	assert.True(t, valid)
	assert.Equal(
		t,
		env.clock.Now().Add(DefaultValidityPeriod).Unix(),
		expiry.Unix(),
	)
	commitment, err := env.registry.GetPassportCommitment(0)
	require.NoError(t, err)
	assert.Equal(t, c1, commitment)
	holder, err := env.registry.GetPassportHolder(0)
	require.NoError(t, err)
	assert.Equal(t, testRecipient, holder)
	band, err := env.registry.GetPassportRiskBand(0)
	require.NoError(t, err)
	assert.Equal(t, risk.BandLow, band)
	assert.Equal(t, uint64(1), env.registry.TotalMinted())
	assert.Equal(t, uint64(1), env.registry.NextTokenID())
}

func TestMintSequentialIds(t *testing.T) {
	env := newTestEnv(t)
	for i := range 3 {
		c := testHash(byte(0x11 + i))
		env.vault.recorded[c] = true
		tokenID, err := env.mint(t, testVaultAddr, c, testRecipient)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), tokenID)
	}
}

func TestMintRejections(t *testing.T) {
	env := newTestEnv(t)
	c1 := testHash(0x11)
	env.vault.recorded[c1] = true

	_, err := env.mint(t, testAddress(0x55), c1, testRecipient)
	assert.ErrorIs(t, err, ErrOnlyVault)

	_, err = env.mint(t, testVaultAddr, c1, risk.Address{})
	assert.ErrorIs(t, err, ErrZeroAddress)

	_, err = env.mint(t, testVaultAddr, testHash(0x77), testRecipient)
	assert.ErrorIs(t, err, ErrCommitmentNotInVault)

	_, err = env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)
	_, err = env.mint(t, testVaultAddr, c1, testRecipient)
	assert.ErrorIs(t, err, ErrPassportExists)
}

func TestIsPassportValid(t *testing.T) {
	env := newTestEnv(t)
	c1 := testHash(0x11)
	env.vault.recorded[c1] = true
	_, err := env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)

	valid, _ := env.registry.IsPassportValid(0)
	assert.True(t, valid)

	// Unknown token ids are a non-error false
	valid, expiry := env.registry.IsPassportValid(42)
	assert.False(t, valid)
	assert.True(t, expiry.IsZero())

	env.clock.Advance(DefaultValidityPeriod + time.Second)
	valid, _ = env.registry.IsPassportValid(0)
	assert.False(t, valid)
}

func TestRevokePassport(t *testing.T) {
	env := newTestEnv(t)
	c1 := testHash(0x11)
	env.vault.recorded[c1] = true
	_, err := env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)

	assert.ErrorIs(
		t,
		env.registry.RevokePassport(testAddress(0x55), 0, "nope"),
		ErrNotOwner,
	)
	assert.ErrorIs(
		t,
		env.registry.RevokePassport(testOwner, 42, "missing"),
		ErrPassportNotFound,
	)

	require.NoError(
		t,
		env.registry.RevokePassport(testOwner, 0, "policy violation"),
	)
	// Revocation invalidates immediately even though expiry has not
	// elapsed
	valid, _ := env.registry.IsPassportValid(0)
	assert.False(t, valid)

	assert.ErrorIs(
		t,
		env.registry.RevokePassport(testOwner, 0, "again"),
		ErrPassportRevoked,
	)
}

func TestTransfer(t *testing.T) {
	env := newTestEnv(t)
	c1 := testHash(0x11)
	env.vault.recorded[c1] = true
	_, err := env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)
	_, expiryBefore := env.registry.IsPassportValid(0)

	newHolder := testAddress(0x04)
	assert.ErrorIs(
		t,
		env.registry.Transfer(testAddress(0x55), 0, newHolder),
		ErrNotOwner,
	)
	assert.ErrorIs(
		t,
		env.registry.Transfer(testRecipient, 0, risk.Address{}),
		ErrZeroAddress,
	)
	assert.ErrorIs(
		t,
		env.registry.Transfer(testRecipient, 42, newHolder),
		ErrPassportNotFound,
	)

	require.NoError(t, env.registry.Transfer(testRecipient, 0, newHolder))
	holder, err := env.registry.GetPassportHolder(0)
	require.NoError(t, err)
	assert.Equal(t, newHolder, holder)

	// Attestation travels with the token: commitment and expiry are
	// unchanged
	commitment, err := env.registry.GetPassportCommitment(0)
	require.NoError(t, err)
	assert.Equal(t, c1, commitment)
	_, expiryAfter := env.registry.IsPassportValid(0)
	assert.Equal(t, expiryBefore, expiryAfter)

	// The previous holder no longer controls the token
	assert.ErrorIs(
		t,
		env.registry.Transfer(testRecipient, 0, testAddress(0x05)),
		ErrNotOwner,
	)
}

func TestVerifyRiskThreshold(t *testing.T) {
	env := newTestEnv(t)
	c1 := testHash(0x11)
	dao := testAddress(0x70)
	env.vault.recorded[c1] = true
	_, err := env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)

	below, err := env.registry.VerifyRiskThreshold(dao, 0, 5000, []byte("p"))
	require.NoError(t, err)
	assert.True(t, below)

	_, err = env.registry.VerifyRiskThreshold(dao, 42, 5000, []byte("p"))
	assert.ErrorIs(t, err, ErrPassportNotFound)

	env.clock.Advance(DefaultValidityPeriod + time.Second)
	_, err = env.registry.VerifyRiskThreshold(dao, 0, 5000, []byte("p"))
	assert.ErrorIs(t, err, ErrPassportExpired)
}

func TestVerifyRiskThresholdRevoked(t *testing.T) {
	env := newTestEnv(t)
	c1 := testHash(0x11)
	env.vault.recorded[c1] = true
	_, err := env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)
	require.NoError(t, env.registry.RevokePassport(testOwner, 0, "fraud"))

	_, err = env.registry.VerifyRiskThreshold(
		testAddress(0x70),
		0,
		5000,
		[]byte("p"),
	)
	assert.ErrorIs(t, err, ErrPassportRevoked)
}

func TestSetValidityPeriod(t *testing.T) {
	env := newTestEnv(t)
	assert.ErrorIs(
		t,
		env.registry.SetValidityPeriod(testAddress(0x55), 24*time.Hour),
		ErrNotOwner,
	)
	assert.ErrorIs(
		t,
		env.registry.SetValidityPeriod(testOwner, 0),
		ErrInvalidPeriod,
	)
	assert.ErrorIs(
		t,
		env.registry.SetValidityPeriod(testOwner, 366*24*time.Hour),
		ErrInvalidPeriod,
	)

	require.NoError(
		t,
		env.registry.SetValidityPeriod(testOwner, 7*24*time.Hour),
	)
	c1 := testHash(0x11)
	env.vault.recorded[c1] = true
	_, err := env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)
	_, expiry := env.registry.IsPassportValid(0)
	assert.Equal(
		t,
		env.clock.Now().Add(7*24*time.Hour).Unix(),
		expiry.Unix(),
	)
}

func TestPausedBlocksMutations(t *testing.T) {
	env := newTestEnv(t)
	c1 := testHash(0x11)
	env.vault.recorded[c1] = true
	_, err := env.mint(t, testVaultAddr, c1, testRecipient)
	require.NoError(t, err)

	env.vault.paused = true
	assert.ErrorIs(
		t,
		env.registry.RevokePassport(testOwner, 0, "reason"),
		ErrContractPaused,
	)
	assert.ErrorIs(
		t,
		env.registry.Transfer(testRecipient, 0, testAddress(0x04)),
		ErrContractPaused,
	)
	assert.ErrorIs(
		t,
		env.registry.SetValidityPeriod(testOwner, 24*time.Hour),
		ErrContractPaused,
	)

	// Queries stay available while paused
	valid, _ := env.registry.IsPassportValid(0)
	assert.True(t, valid)
}
