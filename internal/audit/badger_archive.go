// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package audit

import (
	"fmt"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/indievault/sentinel/internal/logging"
)

// BadgerArchive mirrors audit entries into a Badger database so a
// forensic trail survives process restarts. Keys are ordered by
// timestamp, so range scans replay events chronologically. Retention is
// enforced by Badger's per-entry TTL.
type BadgerArchive struct {
	db        *badger.DB
	retention time.Duration
}

// NewBadgerArchive opens (or creates) the archive at path.
// A zero retention keeps entries indefinitely.
func NewBadgerArchive(path string, retention time.Duration) (*BadgerArchive, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logger is too chatty; faults surface via Save errors

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open audit archive: %w", err)
	}

	return &BadgerArchive{db: db, retention: retention}, nil
}

// Save writes one entry. Called best-effort from Log.Record.
func (a *BadgerArchive) Save(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	key := archiveKey(entry)
	err = a.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, data)
		if a.retention > 0 {
			e = e.WithTTL(a.retention)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("archive audit entry: %w", err)
	}

	return nil
}

// ReplaySince streams archived entries recorded at or after since to fn,
// oldest first. fn returning false stops the replay.
func (a *BadgerArchive) ReplaySince(since time.Time, fn func(Entry) bool) error {
	prefix := []byte("audit:")
	start := []byte("audit:" + strconv.FormatInt(since.UnixNano(), 10))

	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				logging.Err(err).Msg("Skipping undecodable archived audit entry")
				continue
			}
			if !fn(entry) {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replay audit archive: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying database.
func (a *BadgerArchive) Close() error {
	return a.db.Close()
}

// archiveKey orders entries by timestamp with the ID as a tiebreaker.
// Nanosecond timestamps are fixed-width for this century, so the
// lexicographic and chronological orders agree.
func archiveKey(entry Entry) []byte {
	return []byte("audit:" + strconv.FormatInt(entry.Timestamp.UnixNano(), 10) + ":" + entry.ID)
}
