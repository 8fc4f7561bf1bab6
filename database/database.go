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

// Package database provides persistent storage for the attestation ledger.
// Structured metadata (commitments, nullifiers, passports, updaters,
// parameters) lives in a SQLite database accessed through gorm; opaque
// payloads (encrypted scores, proof material) live in a badger blob store.
// The two stores are kept as independent tables/keyspaces so that
// nullifier consumption and commitment existence can be reasoned about
// separately.
package database

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrBlobKeyNotFound is returned by blob operations when a key is missing
var ErrBlobKeyNotFound = errors.New("blob key not found")

// ErrNilTxn is returned when a nil transaction is provided where a valid transaction is required
var ErrNilTxn = errors.New("nil transaction")

type Database struct {
	logger   *slog.Logger
	metadata *gorm.DB
	blob     *badger.DB
	dataDir  string
}

// New creates a new database instance with optional persistence using the
// provided data directory. An empty data directory selects in-memory
// storage for both stores, useful for testing.
func New(
	logger *slog.Logger,
	dataDir string,
) (*Database, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataDb, err := openMetadata(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}
	blobDb, err := openBlob(dataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	db := &Database{
		logger:   logger,
		metadata: metadataDb,
		blob:     blobDb,
		dataDir:  dataDir,
	}
	if err := db.init(); err != nil {
		return nil, err
	}
	return db, nil
}

func openMetadata(dataDir string) (*gorm.DB, error) {
	if dataDir == "" {
		// cache=shared allows multiple connections to share the same in-memory database
		return gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
	}
	// Make sure that we can read data dir, and create if it doesn't exist
	if _, err := os.Stat(dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	metadataDbPath := filepath.Join(dataDir, "metadata.sqlite")
	// WAL journal mode and no sync on write, same tuning as a single-writer ledger wants
	metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)"
	return gorm.Open(
		sqlite.Open(
			fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts),
		),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
}

func openBlob(dataDir string, logger *slog.Logger) (*badger.DB, error) {
	var badgerOpts badger.Options
	if dataDir == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		blobDir := filepath.Join(dataDir, "blob")
		if err := os.MkdirAll(blobDir, fs.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create blob dir: %w", err)
		}
		badgerOpts = badger.DefaultOptions(blobDir)
	}
	badgerOpts = badgerOpts.WithLogger(newBadgerLogger(logger))
	return badger.Open(badgerOpts)
}

func (d *Database) init() error {
	for _, model := range migrateModels {
		d.logger.Debug(
			fmt.Sprintf("creating table: %#v", model),
			"component", "database",
		)
		if err := d.metadata.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %#v: %w", model, err)
		}
	}
	return nil
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() *gorm.DB {
	return d.metadata
}

// Blob returns the underlying blob store instance
func (d *Database) Blob() *badger.DB {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		if sqlDb, dbErr := d.metadata.DB(); dbErr == nil {
			err = errors.Join(err, sqlDb.Close())
		}
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

// badgerLogger adapts badger log output onto our slog logger
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{logger: logger.With("component", "blob")}
}

func (b *badgerLogger) Errorf(msg string, args ...any) {
	b.logger.Error(fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Warningf(msg string, args ...any) {
	b.logger.Warn(fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Infof(msg string, args ...any) {
	b.logger.Debug(fmt.Sprintf(msg, args...))
}

func (b *badgerLogger) Debugf(msg string, args ...any) {
	b.logger.Debug(fmt.Sprintf(msg, args...))
}
