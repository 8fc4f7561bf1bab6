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

	"gorm.io/gorm"
)

// AddNullifier consumes a nullifier hash. The unique index rejects any
// attempt to consume the same nullifier twice.
func (d *Database) AddNullifier(
	hash []byte,
	consumedAt int64,
	txn *Txn,
) error {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return ErrNilTxn
	}
	return tmpMetadata.Create(
		&Nullifier{Hash: hash, ConsumedAt: consumedAt},
	).Error
}

// NullifierUsed reports whether a nullifier hash has been consumed
func (d *Database) NullifierUsed(hash []byte, txn *Txn) (bool, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return false, ErrNilTxn
	}
	var ret Nullifier
	result := tmpMetadata.Where("hash = ?", hash).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, result.Error
	}
	return true, nil
}
