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
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// ScoreBlobKey returns the blob store key for a commitment's encrypted
// score payload.
func ScoreBlobKey(commitment []byte) []byte {
	return fmt.Appendf(nil, "score/%x", commitment)
}

// ProofBlobKey returns the blob store key for a commitment's submission
// proof material.
func ProofBlobKey(commitment []byte) []byte {
	return fmt.Appendf(nil, "proof/%x", commitment)
}

// SetBlob stores an opaque payload under the given key
func (d *Database) SetBlob(key []byte, value []byte, txn *Txn) error {
	if txn == nil || txn.Blob() == nil {
		return ErrNilTxn
	}
	return txn.Blob().Set(key, value)
}

// GetBlob retrieves an opaque payload by key. Returns ErrBlobKeyNotFound
// when the key does not exist.
func (d *Database) GetBlob(key []byte, txn *Txn) ([]byte, error) {
	if txn == nil {
		txn = NewTxn(d, false)
		defer txn.Release()
	}
	if txn.Blob() == nil {
		return nil, ErrNilTxn
	}
	item, err := txn.Blob().Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBlobKeyNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}
