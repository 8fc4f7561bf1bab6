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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(nil, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testHash(fill byte) []byte {
	data := make([]byte, 32)
	for i := range data {
		data[i] = fill
	}
	return data
}

func testAddr(fill byte) []byte {
	data := make([]byte, 20)
	for i := range data {
		data[i] = fill
	}
	return data
}

func TestCommitmentRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	hash := testHash(0x01)
	err := db.SetCommitment(&Commitment{
		Hash:        hash,
		SubmittedAt: 1234,
		BlockHeight: 42,
		Band:        2,
		Analyzer:    testAddr(0xaa),
	}, nil)
	require.NoError(t, err)
	ret, err := db.GetCommitment(hash, nil)
	require.NoError(t, err)
	require.NotNil(t, ret)
	assert.Equal(t, int64(1234), ret.SubmittedAt)
	assert.Equal(t, uint64(42), ret.BlockHeight)
	assert.Equal(t, uint8(2), ret.Band)
	assert.Equal(t, testAddr(0xaa), ret.Analyzer)
}

func TestCommitmentAbsent(t *testing.T) {
	db := newTestDatabase(t)
	ret, err := db.GetCommitment(testHash(0x99), nil)
	require.NoError(t, err)
	assert.Nil(t, ret)
	exists, err := db.CommitmentExists(testHash(0x99), nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCommitmentUniqueIndex(t *testing.T) {
	db := newTestDatabase(t)
	hash := testHash(0x02)
	require.NoError(
		t,
		db.SetCommitment(&Commitment{Hash: hash, SubmittedAt: 1}, nil),
	)
	err := db.SetCommitment(&Commitment{Hash: hash, SubmittedAt: 2}, nil)
	assert.Error(t, err)
}

func TestNullifierConsumeOnce(t *testing.T) {
	db := newTestDatabase(t)
	hash := testHash(0x03)
	used, err := db.NullifierUsed(hash, nil)
	require.NoError(t, err)
	assert.False(t, used)
	require.NoError(t, db.AddNullifier(hash, 1000, nil))
	used, err = db.NullifierUsed(hash, nil)
	require.NoError(t, err)
	assert.True(t, used)
	// Second consumption rejected by unique index
	assert.Error(t, db.AddNullifier(hash, 2000, nil))
}

func TestNullifierIndependentOfCommitment(t *testing.T) {
	db := newTestDatabase(t)
	hash := testHash(0x04)
	// Consuming a nullifier leaves the commitment table untouched
	require.NoError(t, db.AddNullifier(hash, 1000, nil))
	exists, err := db.CommitmentExists(hash, nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPassportRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	commitment := testHash(0x05)
	nextId, err := db.NextTokenId(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nextId)
	err = db.AddPassport(&Passport{
		TokenId:    nextId,
		Commitment: commitment,
		Owner:      testAddr(0xbb),
		MintedAt:   1000,
		Expiry:     2000,
	}, nil)
	require.NoError(t, err)
	ret, err := db.GetPassport(0, nil)
	require.NoError(t, err)
	require.NotNil(t, ret)
	assert.Equal(t, commitment, ret.Commitment)
	byCommitment, err := db.GetPassportByCommitment(commitment, nil)
	require.NoError(t, err)
	require.NotNil(t, byCommitment)
	assert.Equal(t, uint64(0), byCommitment.TokenId)
	nextId, err = db.NextTokenId(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nextId)
}

func TestPassportOnePerCommitment(t *testing.T) {
	db := newTestDatabase(t)
	commitment := testHash(0x06)
	require.NoError(t, db.AddPassport(&Passport{
		TokenId:    0,
		Commitment: commitment,
		Owner:      testAddr(0x01),
	}, nil))
	err := db.AddPassport(&Passport{
		TokenId:    1,
		Commitment: commitment,
		Owner:      testAddr(0x02),
	}, nil)
	assert.Error(t, err)
}

func TestPassportUpdate(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.AddPassport(&Passport{
		TokenId:    0,
		Commitment: testHash(0x07),
		Owner:      testAddr(0x01),
	}, nil))
	p, err := db.GetPassport(0, nil)
	require.NoError(t, err)
	p.Revoked = true
	p.RevokeReason = "policy violation"
	require.NoError(t, db.UpdatePassport(p, nil))
	p, err = db.GetPassport(0, nil)
	require.NoError(t, err)
	assert.True(t, p.Revoked)
	assert.Equal(t, "policy violation", p.RevokeReason)
}

func TestUpdaterRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	addr := testAddr(0xcc)
	ret, err := db.GetUpdater(addr, nil)
	require.NoError(t, err)
	assert.Nil(t, ret)
	require.NoError(t, db.SetUpdater(&Updater{
		Address:    addr,
		Authorized: true,
	}, nil))
	ret, err = db.GetUpdater(addr, nil)
	require.NoError(t, err)
	require.NotNil(t, ret)
	assert.True(t, ret.Authorized)
	// Deauthorize in place
	ret.Authorized = false
	ret.LastSubmission = 5555
	require.NoError(t, db.SetUpdater(ret, nil))
	ret, err = db.GetUpdater(addr, nil)
	require.NoError(t, err)
	assert.False(t, ret.Authorized)
	assert.Equal(t, int64(5555), ret.LastSubmission)
}

func TestParamRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	_, ok, err := db.GetParam("paused", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, db.SetParam("paused", "1", nil))
	value, ok, err := db.GetParam("paused", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)
	// Replace existing
	require.NoError(t, db.SetParam("paused", "0", nil))
	value, _, err = db.GetParam("paused", nil)
	require.NoError(t, err)
	assert.Equal(t, "0", value)
}

func TestParamInt64Default(t *testing.T) {
	db := newTestDatabase(t)
	value, err := db.GetParamInt64("min_update_interval", 3600, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), value)
	require.NoError(t, db.SetParamInt64("min_update_interval", 60, nil))
	value, err = db.GetParamInt64("min_update_interval", 3600, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(60), value)
}

func TestCustomValidity(t *testing.T) {
	db := newTestDatabase(t)
	hash := testHash(0x08)
	_, ok, err := db.GetCustomValidity(hash, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, db.SetCustomValidity(hash, 86400, nil))
	period, ok, err := db.GetCustomValidity(hash, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(86400), period)
}

func TestBlobRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	commitment := testHash(0x09)
	key := ScoreBlobKey(commitment)
	payload := []byte("opaque ciphertext")
	txn := db.Transaction(true)
	require.NoError(t, db.SetBlob(key, payload, txn))
	require.NoError(t, txn.Commit())
	ret, err := db.GetBlob(key, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, ret)
}

func TestBlobKeyNotFound(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.GetBlob(ScoreBlobKey(testHash(0x0a)), nil)
	assert.ErrorIs(t, err, ErrBlobKeyNotFound)
}

func TestTxnRollbackDiscardsWrites(t *testing.T) {
	db := newTestDatabase(t)
	hash := testHash(0x0b)
	txn := db.Transaction(true)
	require.NoError(t, db.SetCommitment(&Commitment{Hash: hash}, txn))
	require.NoError(t, db.AddNullifier(hash, 1, txn))
	require.NoError(
		t,
		db.SetBlob(ScoreBlobKey(hash), []byte("data"), txn),
	)
	require.NoError(t, txn.Rollback())
	exists, err := db.CommitmentExists(hash, nil)
	require.NoError(t, err)
	assert.False(t, exists)
	used, err := db.NullifierUsed(hash, nil)
	require.NoError(t, err)
	assert.False(t, used)
	_, err = db.GetBlob(ScoreBlobKey(hash), nil)
	assert.ErrorIs(t, err, ErrBlobKeyNotFound)
}

func TestTxnDo(t *testing.T) {
	db := newTestDatabase(t)
	hash := testHash(0x0c)
	err := db.Transaction(true).Do(func(txn *Txn) error {
		return db.SetCommitment(&Commitment{Hash: hash}, txn)
	})
	require.NoError(t, err)
	exists, err := db.CommitmentExists(hash, nil)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInMemoryDatabase(t *testing.T) {
	db, err := New(nil, "")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(
		t,
		db.SetCommitment(&Commitment{Hash: testHash(0x0d)}, nil),
	)
	exists, err := db.CommitmentExists(testHash(0x0d), nil)
	require.NoError(t, err)
	assert.True(t, exists)
}
