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
	"strconv"

	"gorm.io/gorm"
)

// GetParam returns the value of a configuration parameter and whether it
// is set.
func (d *Database) GetParam(key string, txn *Txn) (string, bool, error) {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return "", false, ErrNilTxn
	}
	var ret Param
	result := tmpMetadata.Where("key = ?", key).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, result.Error
	}
	return ret.Value, true, nil
}

// SetParam sets or replaces a configuration parameter
func (d *Database) SetParam(key string, value string, txn *Txn) error {
	tmpMetadata := d.metadataHandle(txn)
	if tmpMetadata == nil {
		return ErrNilTxn
	}
	var existing Param
	result := tmpMetadata.Where("key = ?", key).First(&existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		return tmpMetadata.Create(&Param{Key: key, Value: value}).Error
	}
	existing.Value = value
	return tmpMetadata.Save(&existing).Error
}

// GetParamInt64 returns an integer configuration parameter, falling back
// to the provided default when unset.
func (d *Database) GetParamInt64(
	key string,
	defaultValue int64,
	txn *Txn,
) (int64, error) {
	value, ok, err := d.GetParam(key, txn)
	if err != nil {
		return 0, err
	}
	if !ok {
		return defaultValue, nil
	}
	ret, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return ret, nil
}

// SetParamInt64 sets an integer configuration parameter
func (d *Database) SetParamInt64(key string, value int64, txn *Txn) error {
	return d.SetParam(key, strconv.FormatInt(value, 10), txn)
}
