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

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/silentrisk/veilpass/passport"
	"github.com/silentrisk/veilpass/risk"
)

const apiVersion = "0.1.0"

// batchLimit bounds how many commitments one batch request may check
const batchLimit = 100

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

func (a *Api) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Service: "veilpass",
		Version: apiVersion,
	})
}

func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
		Paused:    a.vault.Paused(),
	})
}

func (a *Api) handlePassport(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid token id",
		)
		return
	}
	commitment, err := a.registry.GetPassportCommitment(tokenID)
	if err != nil {
		if errors.Is(err, passport.ErrPassportNotFound) {
			writeError(
				w,
				http.StatusNotFound,
				"Not Found",
				"passport does not exist",
			)
			return
		}
		a.logger.Error("failed to get passport", "error", err)
		writeError(
			w,
			http.StatusInternalServerError,
			"Internal Server Error",
			"failed to retrieve passport",
		)
		return
	}
	holder, err := a.registry.GetPassportHolder(tokenID)
	if err != nil {
		a.logger.Error("failed to get passport holder", "error", err)
		writeError(
			w,
			http.StatusInternalServerError,
			"Internal Server Error",
			"failed to retrieve passport",
		)
		return
	}
	band, err := a.registry.GetPassportRiskBand(tokenID)
	if err != nil {
		a.logger.Error("failed to get passport band", "error", err)
		writeError(
			w,
			http.StatusInternalServerError,
			"Internal Server Error",
			"failed to retrieve passport",
		)
		return
	}
	valid, expiry := a.registry.IsPassportValid(tokenID)
	writeJSON(w, http.StatusOK, PassportResponse{
		TokenID:    tokenID,
		Holder:     holder.String(),
		Commitment: commitment.String(),
		Band:       band.String(),
		Valid:      valid,
		Expiry:     expiry.Unix(),
	})
}

func (a *Api) handleCommitment(w http.ResponseWriter, r *http.Request) {
	commitment, err := risk.HashFromHex(r.PathValue("hash"))
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid commitment hash",
		)
		return
	}
	meta, exists := a.vault.GetCommitmentMetadata(commitment)
	if !exists {
		writeError(
			w,
			http.StatusNotFound,
			"Not Found",
			"commitment does not exist",
		)
		return
	}
	writeJSON(w, http.StatusOK, CommitmentResponse{
		Commitment:  commitment.String(),
		Band:        meta.Band.String(),
		BlockHeight: meta.BlockHeight,
		SubmittedAt: meta.SubmittedAt.Unix(),
		Analyzer:    meta.Analyzer.String(),
	})
}

func (a *Api) handleCommitmentValid(w http.ResponseWriter, r *http.Request) {
	commitment, err := risk.HashFromHex(r.PathValue("hash"))
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid commitment hash",
		)
		return
	}
	exists, valid := a.vault.HasValidScore(commitment)
	writeJSON(w, http.StatusOK, CommitmentValidResponse{
		Commitment: commitment.String(),
		Exists:     exists,
		Valid:      valid,
	})
}

func (a *Api) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return
	}
	if len(req.Commitments) > batchLimit {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"too many commitments",
		)
		return
	}
	commitments := make([]risk.Hash, 0, len(req.Commitments))
	for _, hexHash := range req.Commitments {
		commitment, err := risk.HashFromHex(hexHash)
		if err != nil {
			writeError(
				w,
				http.StatusBadRequest,
				"Bad Request",
				"invalid commitment hash: "+hexHash,
			)
			return
		}
		commitments = append(commitments, commitment)
	}
	checked, valid, bands := a.vault.BatchCheckValidScores(commitments)
	results := make([]BatchEntry, len(checked))
	for i := range checked {
		results[i] = BatchEntry{
			Commitment: checked[i].String(),
			Valid:      valid[i],
			Band:       bands[i].String(),
		}
	}
	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

func (a *Api) handleNullifier(w http.ResponseWriter, r *http.Request) {
	nullifier, err := risk.HashFromHex(r.PathValue("hash"))
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid nullifier hash",
		)
		return
	}
	writeJSON(w, http.StatusOK, NullifierResponse{
		Nullifier: nullifier.String(),
		Used:      a.vault.IsNullifierUsed(nullifier),
	})
}

func (a *Api) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		TotalScored:     a.vault.TotalScoredAddresses(),
		PassportsMinted: a.registry.TotalMinted(),
		Paused:          a.vault.Paused(),
	})
}
