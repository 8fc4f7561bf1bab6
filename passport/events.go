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
	"time"

	"github.com/silentrisk/veilpass/event"
	"github.com/silentrisk/veilpass/risk"
)

const (
	PassportMintedEventType        event.EventType = "passport.minted"
	PassportRevokedEventType       event.EventType = "passport.revoked"
	PassportTransferredEventType   event.EventType = "passport.transferred"
	ValidityPeriodUpdatedEventType event.EventType = "passport.validity-period-updated"
)

type PassportMintedEvent struct {
	TokenID    uint64
	Recipient  risk.Address
	Commitment risk.Hash
	Expiry     time.Time
}

type PassportRevokedEvent struct {
	TokenID uint64
	Owner   risk.Address
	Reason  string
}

type PassportTransferredEvent struct {
	TokenID uint64
	From    risk.Address
	To      risk.Address
}

type ValidityPeriodUpdatedEvent struct {
	Period time.Duration
}
