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

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func resetGlobalConfig() {
	globalConfig = &Config{
		DatabasePath:     ".veilpass",
		BindAddr:         "0.0.0.0",
		ApiListenAddress: "localhost:8080",
		MetricsPort:      12798,
		RunMode:          RunModeServe,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
databasePath: "/var/lib/veilpass"
bindAddr: "127.0.0.1"
apiListenAddress: "localhost:9000"
owner: "aabbccddeeff00112233445566778899aabbccdd"
vaultAddress: "1122334455667788990011223344556677889900"
verifyingKeyPath: "/etc/veilpass/binding.vk"
shutdownTimeout: "10s"
metricsPort: 8088
minUpdateInterval: "2h"
maxDailyDecryptions: 5
scoreValidityPeriod: "720h"
passportValidityPeriod: "720h"
`

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-veilpass.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	defer os.Remove(tmpFile)

	expected := &Config{
		DatabasePath:           "/var/lib/veilpass",
		BindAddr:               "127.0.0.1",
		ApiListenAddress:       "localhost:9000",
		Owner:                  "aabbccddeeff00112233445566778899aabbccdd",
		VaultAddress:           "1122334455667788990011223344556677889900",
		VerifyingKeyPath:       "/etc/veilpass/binding.vk",
		ShutdownTimeout:        "10s",
		RunMode:                RunModeServe,
		MetricsPort:            8088,
		MinUpdateInterval:      "2h",
		MaxDailyDecryptions:    5,
		ScoreValidityPeriod:    "720h",
		PassportValidityPeriod: "720h",
	}

	actual, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !reflect.DeepEqual(actual, expected) {
		t.Errorf(
			"Loaded config does not match expected.\nActual: %+v\nExpected: %+v",
			actual,
			expected,
		)
	}
}

func TestLoad_WithoutConfigFile_UsesDefaults(t *testing.T) {
	resetGlobalConfig()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	expected := &Config{
		DatabasePath:     ".veilpass",
		BindAddr:         "0.0.0.0",
		ApiListenAddress: "localhost:8080",
		MetricsPort:      12798,
		RunMode:          RunModeServe,
		ShutdownTimeout:  DefaultShutdownTimeout,
	}

	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf(
			"config mismatch without file:\nExpected: %+v\nGot:      %+v",
			expected,
			cfg,
		)
	}
}

func TestLoad_WithDevModeConfig(t *testing.T) {
	resetGlobalConfig()

	yamlContent := `
runMode: "dev"
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-veilpass.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !cfg.RunMode.IsDevMode() {
		t.Errorf("expected dev mode, got runMode=%q", cfg.RunMode)
	}
}

func TestLoad_InvalidRunMode(t *testing.T) {
	resetGlobalConfig()

	yamlContent := `
runMode: "bogus"
`
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test-veilpass.yaml")

	err := os.WriteFile(tmpFile, []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(tmpFile); err == nil {
		t.Error("expected error for invalid runMode")
	}
}

func TestRunModeValid(t *testing.T) {
	tests := []struct {
		mode  RunMode
		valid bool
	}{
		{RunModeServe, true},
		{RunModeDev, true},
		{"", true},
		{"invalid", false},
	}
	for _, tt := range tests {
		if got := tt.mode.Valid(); got != tt.valid {
			t.Errorf("mode=%q valid=%v, want %v", tt.mode, got, tt.valid)
		}
	}
}
