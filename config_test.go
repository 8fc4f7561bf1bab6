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

package veilpass

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentrisk/veilpass/risk"
	"github.com/silentrisk/veilpass/verifier"
)

func testOwner() risk.Address {
	var a risk.Address
	for i := range a {
		a[i] = 0xab
	}
	return a
}

func testVaultAddr() risk.Address {
	var a risk.Address
	for i := range a {
		a[i] = 0xcd
	}
	return a
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, runModeServe, cfg.runMode)
	assert.False(t, cfg.isDevMode())
	assert.Empty(t, cfg.dataDir)
	assert.Empty(t, cfg.apiListenAddress)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithDatabasePath("/tmp/veilpass"),
		WithOwner(testOwner()),
		WithVaultAddress(testVaultAddr()),
		WithApiListenAddress("localhost:8080"),
		WithRunMode(runModeDev),
		WithMinUpdateInterval(2*time.Hour),
		WithMaxDailyDecryptions(5),
		WithShutdownTimeout(10*time.Second),
	)
	assert.Equal(t, "/tmp/veilpass", cfg.dataDir)
	assert.Equal(t, testOwner(), cfg.owner)
	assert.Equal(t, testVaultAddr(), cfg.vaultAddress)
	assert.Equal(t, "localhost:8080", cfg.apiListenAddress)
	assert.True(t, cfg.isDevMode())
	assert.Equal(t, 2*time.Hour, cfg.minUpdateInterval)
	assert.Equal(t, uint32(5), cfg.maxDailyDecryptions)
	assert.Equal(t, 10*time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	// Missing owner
	_, err := New(NewConfig(
		WithVaultAddress(testVaultAddr()),
		WithRunMode(runModeDev),
	))
	assert.ErrorContains(t, err, "no owner address")

	// Missing vault address
	_, err = New(NewConfig(
		WithOwner(testOwner()),
		WithRunMode(runModeDev),
	))
	assert.ErrorContains(t, err, "no vault address")

	// No verifier outside dev mode
	_, err = New(NewConfig(
		WithOwner(testOwner()),
		WithVaultAddress(testVaultAddr()),
	))
	assert.ErrorContains(t, err, "no verifier configured")

	// Dev mode is enough
	n, err := New(NewConfig(
		WithOwner(testOwner()),
		WithVaultAddress(testVaultAddr()),
		WithRunMode(runModeDev),
	))
	require.NoError(t, err)
	assert.NotNil(t, n)

	// Explicit verifier is enough
	n, err = New(NewConfig(
		WithOwner(testOwner()),
		WithVaultAddress(testVaultAddr()),
		WithVerifier(verifier.NewMockVerifier()),
	))
	require.NoError(t, err)
	assert.NotNil(t, n)
}
