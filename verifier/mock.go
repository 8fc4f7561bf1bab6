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

package verifier

import (
	"bytes"
	"math/big"
	"sync"
)

// invalidPrefix marks proofs the mock verifier rejects
var invalidPrefix = []byte("invalid")

// MockVerifier is a deterministic Verifier for tests and dev mode. Proofs
// are accepted unless they carry the "invalid" prefix, failAll is set, or
// the proof bytes were registered as failing.
type MockVerifier struct {
	mu         sync.Mutex
	failAll    bool
	failProofs map[string]bool
}

func NewMockVerifier() *MockVerifier {
	return &MockVerifier{
		failProofs: make(map[string]bool),
	}
}

func (v *MockVerifier) Verify(
	proof []byte,
	publicInputs []*big.Int,
) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failAll {
		return false, nil
	}
	if bytes.HasPrefix(proof, invalidPrefix) {
		return false, nil
	}
	if v.failProofs[string(proof)] {
		return false, nil
	}
	return true, nil
}

// SetFailAll makes every subsequent Verify call fail
func (v *MockVerifier) SetFailAll(fail bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failAll = fail
}

// SetFailProof registers a specific proof payload as failing
func (v *MockVerifier) SetFailProof(proof []byte, fail bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failProofs[string(proof)] = fail
}
