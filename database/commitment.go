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

// metadataHandle resolves the metadata handle for an optional transaction
func (d *Database) metadataHandle(txn *Txn) *gorm.DB {
	if txn != nil {
		return txn.Metadata()
	}
	return d.metadata
}

// SetCommitment records a new commitment. The unique index on the hash
// column backstops the one-shot invariant enforced by the vault.
func (d *Database) SetCommitment(c *Commitment, txn *Txn) error {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return ErrNilTxn
	}
	if result := tmpMetadata.Create(c); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetCommitment returns the commitment record for a hash, or nil when the
// commitment is not recorded.
func (d *Database) GetCommitment(
	hash []byte,
	txn *Txn,
) (*Commitment, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return nil, ErrNilTxn
	}
	var ret Commitment
	result := tmpMetadata.Where("hash = ?", hash).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// CommitmentExists reports whether a commitment hash has been recorded
func (d *Database) CommitmentExists(hash []byte, txn *Txn) (bool, error) {
	c, err := d.GetCommitment(hash, txn)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

// CommitmentCount returns the number of recorded commitments
func (d *Database) CommitmentCount(txn *Txn) (int64, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return 0, ErrNilTxn
	}
	var count int64
	result := tmpMetadata.Model(&Commitment{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// SetCustomValidity sets or replaces the validity period override for a
// commitment.
func (d *Database) SetCustomValidity(
	hash []byte,
	period int64,
	txn *Txn,
) error {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return ErrNilTxn
	}
	var existing CustomValidity
	result := tmpMetadata.Where("commitment = ?", hash).First(&existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		return tmpMetadata.Create(
			&CustomValidity{Commitment: hash, Period: period},
		).Error
	}
	existing.Period = period
	return tmpMetadata.Save(&existing).Error
}

// GetCustomValidity returns the validity override for a commitment, if any
func (d *Database) GetCustomValidity(
	hash []byte,
	txn *Txn,
) (int64, bool, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return 0, false, ErrNilTxn
	}
	var ret CustomValidity
	result := tmpMetadata.Where("commitment = ?", hash).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, result.Error
	}
	return ret.Period, true, nil
}
