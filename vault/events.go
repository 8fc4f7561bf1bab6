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
	"github.com/silentrisk/veilpass/event"
	"github.com/silentrisk/veilpass/risk"
)

const (
	RiskAnalysisSubmittedEventType event.EventType = "vault.risk-analysis-submitted"
	DAOVerificationEventType       event.EventType = "vault.dao-verification"
	UpdaterAuthorizedEventType     event.EventType = "vault.updater-authorized"
	PausedEventType                event.EventType = "vault.paused"
)

// RiskAnalysisSubmittedEvent is published after an accepted submission has
// committed. Events are only ever published post-commit, so a subscriber
// never observes a submission that was later rolled back.
type RiskAnalysisSubmittedEvent struct {
	Commitment  risk.Hash
	Band        risk.Band
	Analyzer    risk.Address
	BlockHeight uint64
	TokenID     uint64
}

// DAOVerificationEvent records a threshold query outcome. Below is the
// only information about the score that leaves the vault.
type DAOVerificationEvent struct {
	Commitment risk.Hash
	Threshold  uint32
	Below      bool
}

type UpdaterAuthorizedEvent struct {
	Updater    risk.Address
	Authorized bool
}

type PausedEvent struct {
	Paused bool
}
