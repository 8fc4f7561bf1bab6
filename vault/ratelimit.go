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

package vault

import (
	"time"

	"github.com/silentrisk/veilpass/database"
	"github.com/silentrisk/veilpass/risk"
)

// dayBucket maps a time to its calendar day counter. The daily decryption
// budget resets implicitly when the bucket rolls over.
func dayBucket(t time.Time) int64 {
	return t.Unix() / 86400
}

// consumeDecryption charges one threshold verification against the
// caller's daily budget, within the caller's transaction. The charge is
// rolled back along with the rest of a failed call.
func (v *Vault) consumeDecryption(
	caller risk.Address,
	now time.Time,
	txn *database.Txn,
) error {
	maxDaily, err := v.db.GetParamInt64(
		paramMaxDailyDecryptions,
		DefaultMaxDailyDecryptions,
		txn,
	)
	if err != nil {
		return err
	}
	updater, err := v.db.GetUpdater(caller.Bytes(), txn)
	if err != nil {
		return err
	}
	if updater == nil {
		// Relying parties that only ever verify still get tracked state
		updater = &database.Updater{
			Address: caller.Bytes(),
		}
	}
	bucket := dayBucket(now)
	if updater.DayBucket != bucket {
		updater.DayBucket = bucket
		updater.DecryptionsToday = 0
	}
	if int64(updater.DecryptionsToday) >= maxDaily {
		return ErrDecryptionLimit
	}
	updater.DecryptionsToday++
	return v.db.SetUpdater(updater, txn)
}
