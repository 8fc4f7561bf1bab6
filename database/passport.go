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

// AddPassport records a newly minted passport
func (d *Database) AddPassport(p *Passport, txn *Txn) error {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return ErrNilTxn
	}
	return tmpMetadata.Create(p).Error
}

// GetPassport returns the passport with the given token id, or nil when no
// such token exists.
func (d *Database) GetPassport(
	tokenId uint64,
	txn *Txn,
) (*Passport, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return nil, ErrNilTxn
	}
	var ret Passport
	result := tmpMetadata.Where("token_id = ?", tokenId).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetPassportByCommitment returns the passport bound to a commitment, or
// nil when the commitment has no passport. At most one passport may ever
// reference a commitment.
func (d *Database) GetPassportByCommitment(
	commitment []byte,
	txn *Txn,
) (*Passport, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return nil, ErrNilTxn
	}
	var ret Passport
	result := tmpMetadata.Where("commitment = ?", commitment).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// UpdatePassport persists changes to an existing passport row (revocation,
// ownership transfer). The bound commitment and expiry are never modified
// by callers.
func (d *Database) UpdatePassport(p *Passport, txn *Txn) error {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return ErrNilTxn
	}
	return tmpMetadata.Save(p).Error
}

// NextTokenId returns the next sequential token id. Ids start at zero.
func (d *Database) NextTokenId(txn *Txn) (uint64, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return 0, ErrNilTxn
	}
	var ret Passport
	result := tmpMetadata.Order("token_id DESC").First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return ret.TokenId + 1, nil
}

// PassportCount returns the number of minted passports
func (d *Database) PassportCount(txn *Txn) (int64, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return 0, ErrNilTxn
	}
	var count int64
	result := tmpMetadata.Model(&Passport{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
