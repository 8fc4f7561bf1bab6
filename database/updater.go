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

// GetUpdater returns the per-address updater state, or nil when the
// address has never been seen.
func (d *Database) GetUpdater(
	address []byte,
	txn *Txn,
) (*Updater, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return nil, ErrNilTxn
	}
	var ret Updater
	result := tmpMetadata.Where("address = ?", address).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// SetUpdater creates or updates per-address updater state
func (d *Database) SetUpdater(u *Updater, txn *Txn) error {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return ErrNilTxn
	}
	if u.ID == 0 {
		return tmpMetadata.Create(u).Error
	}
	return tmpMetadata.Save(u).Error
}
