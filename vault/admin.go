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
	"github.com/silentrisk/veilpass/event"
	"github.com/silentrisk/veilpass/risk"
)

// Admin surface. Every entry point here is owner-gated and runs in its
// own transaction. Parameter setters additionally honor the emergency
// stop; Pause, Unpause, SetAuthorizedUpdater, and SetPassportRegistry
// remain callable while paused so the stop itself stays operable.

// SetAuthorizedUpdater grants or revokes an address's right to submit.
// Toggling is idempotent; updater state is created on first authorization
// and never deleted, only deauthorized.
func (v *Vault) SetAuthorizedUpdater(
	caller risk.Address,
	addr risk.Address,
	authorized bool,
) error {
	if caller != v.owner {
		return ErrNotOwner
	}
	if addr.IsZero() {
		return ErrZeroAddress
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()
	txn := v.db.Transaction(true)
	defer txn.Release()
	updater, err := v.db.GetUpdater(addr.Bytes(), txn)
	if err != nil {
		return err
	}
	if updater == nil {
		updater = &database.Updater{Address: addr.Bytes()}
	}
	updater.Authorized = authorized
	if err := v.db.SetUpdater(updater, txn); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	v.logger.Info(
		"updater authorization changed",
		"component", "vault",
		"updater", addr.String(),
		"authorized", authorized,
	)
	if v.eventBus != nil {
		v.eventBus.Publish(
			UpdaterAuthorizedEventType,
			event.NewEvent(
				UpdaterAuthorizedEventType,
				UpdaterAuthorizedEvent{
					Updater:    addr,
					Authorized: authorized,
				},
			),
		)
	}
	return nil
}

// SetPassportRegistry configures the registry that mints passports for
// accepted submissions. Submissions fail until this is set.
func (v *Vault) SetPassportRegistry(
	caller risk.Address,
	registry PassportMinter,
) error {
	if caller != v.owner {
		return ErrNotOwner
	}
	if registry == nil {
		return ErrNilRegistry
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.registry = registry
	return nil
}

// SetMinUpdateInterval bounds how often the same updater may submit.
// Intervals above 24h are rejected.
func (v *Vault) SetMinUpdateInterval(
	caller risk.Address,
	interval time.Duration,
) error {
	if v.Paused() {
		return ErrContractPaused
	}
	if caller != v.owner {
		return ErrNotOwner
	}
	if interval > MaxMinUpdateInterval {
		return ErrIntervalTooLong
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.setParam(paramMinUpdateInterval, int64(interval/time.Second))
}

// SetMaxDailyDecryptions sets the per-caller daily budget for threshold
// verification calls.
func (v *Vault) SetMaxDailyDecryptions(
	caller risk.Address,
	maxDaily uint32,
) error {
	if v.Paused() {
		return ErrContractPaused
	}
	if caller != v.owner {
		return ErrNotOwner
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.setParam(paramMaxDailyDecryptions, int64(maxDaily))
}

// SetDefaultValidityPeriod sets the validity window applied to
// commitments without a custom override.
func (v *Vault) SetDefaultValidityPeriod(
	caller risk.Address,
	period time.Duration,
) error {
	if v.Paused() {
		return ErrContractPaused
	}
	if caller != v.owner {
		return ErrNotOwner
	}
	if period < MinValidityPeriod || period > MaxValidityPeriod {
		return ErrInvalidPeriod
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.setParam(paramDefaultValidity, int64(period/time.Second))
}

// SetCustomValidityPeriod overrides the validity window for a single
// commitment.
func (v *Vault) SetCustomValidityPeriod(
	caller risk.Address,
	commitment risk.Hash,
	period time.Duration,
) error {
	if v.Paused() {
		return ErrContractPaused
	}
	if caller != v.owner {
		return ErrNotOwner
	}
	if period < MinValidityPeriod || period > MaxValidityPeriod {
		return ErrInvalidPeriod
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()
	txn := v.db.Transaction(true)
	defer txn.Release()
	if err := v.db.SetCustomValidity(
		commitment.Bytes(),
		int64(period/time.Second),
		txn,
	); err != nil {
		return err
	}
	return txn.Commit()
}

// Pause engages the emergency stop. Mutating entry points fail while
// paused; reads stay available so relying parties can still verify
// existing passports during an incident.
func (v *Vault) Pause(caller risk.Address) error {
	return v.setPaused(caller, true)
}

// Unpause releases the emergency stop
func (v *Vault) Unpause(caller risk.Address) error {
	return v.setPaused(caller, false)
}

func (v *Vault) setPaused(caller risk.Address, paused bool) error {
	if caller != v.owner {
		return ErrNotOwner
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()
	value := int64(0)
	if paused {
		value = 1
	}
	if err := v.setParam(paramPaused, value); err != nil {
		return err
	}
	v.logger.Info(
		"pause state changed",
		"component", "vault",
		"paused", paused,
	)
	if v.eventBus != nil {
		v.eventBus.Publish(
			PausedEventType,
			event.NewEvent(PausedEventType, PausedEvent{Paused: paused}),
		)
	}
	return nil
}

// setParam writes one parameter in its own transaction. Caller must hold
// the vault lock.
func (v *Vault) setParam(key string, value int64) error {
	txn := v.db.Transaction(true)
	defer txn.Release()
	if err := v.db.SetParamInt64(key, value, txn); err != nil {
		return err
	}
	return txn.Commit()
}
