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

package api

// ErrorResponse is the error body for all endpoints
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
	Paused    bool `json:"paused"`
}

type PassportResponse struct {
	TokenID    uint64 `json:"token_id"`
	Holder     string `json:"holder"`
	Commitment string `json:"commitment"`
	Band       string `json:"band"`
	Valid      bool   `json:"valid"`
	Expiry     int64  `json:"expiry"`
}

type CommitmentResponse struct {
	Commitment  string `json:"commitment"`
	Band        string `json:"band"`
	BlockHeight uint64 `json:"block_height"`
	SubmittedAt int64  `json:"submitted_at"`
	Analyzer    string `json:"analyzer"`
}

type CommitmentValidResponse struct {
	Commitment string `json:"commitment"`
	Exists     bool   `json:"exists"`
	Valid      bool   `json:"valid"`
}

type BatchRequest struct {
	Commitments []string `json:"commitments"`
}

type BatchEntry struct {
	Commitment string `json:"commitment"`
	Valid      bool   `json:"valid"`
	Band       string `json:"band"`
}

type BatchResponse struct {
	Results []BatchEntry `json:"results"`
}

type NullifierResponse struct {
	Nullifier string `json:"nullifier"`
	Used      bool   `json:"used"`
}

type StatsResponse struct {
	TotalScored     uint64 `json:"total_scored"`
	PassportsMinted uint64 `json:"passports_minted"`
	Paused          bool   `json:"paused"`
}
