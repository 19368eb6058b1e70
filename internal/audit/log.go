// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package audit

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/indievault/sentinel/internal/logging"
	"github.com/indievault/sentinel/internal/metrics"
)

// DefaultMaxEntries bounds the in-memory log when no cap is configured.
const DefaultMaxEntries = 10000

// Archive receives a best-effort copy of every recorded entry.
// Implementations must tolerate concurrent calls. A failing archive never
// fails a Record.
type Archive interface {
	Save(entry Entry) error
	Close() error
}

// Config holds audit log configuration.
type Config struct {
	// MaxEntries caps the in-memory log; the oldest entries are evicted
	// in one batch on overflow. Zero means DefaultMaxEntries.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`

	// Archive, when non-nil, mirrors entries to durable storage.
	Archive Archive `json:"-" koanf:"-"`
}

// Log is the append-only, capacity-bounded audit event store.
// One mutex guards the entry list; Record, Query, and the purge sweep all
// take it, so readers always see a consistent snapshot.
type Log struct {
	mu         sync.RWMutex
	entries    []Entry
	maxEntries int
	archive    Archive

	now func() time.Time
}

// NewLog creates an audit log.
func NewLog(cfg Config) *Log {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Log{
		entries:    make([]Entry, 0, maxEntries),
		maxEntries: maxEntries,
		archive:    cfg.Archive,
		now:        time.Now,
	}
}

// Record appends an entry for the event and returns it. It always
// succeeds: archive faults are swallowed with a side-channel log line so
// that audit logging can never break the feature it observes.
func (l *Log) Record(eventType EventType, ctx Context) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		Type:      eventType,
		Severity:  SeverityOf(eventType),
		SubjectID: ctx.SubjectID,
		SessionID: ctx.SessionID,
		IP:        ctx.IP,
		UserAgent: ctx.UserAgent,
		Endpoint:  ctx.Endpoint,
		Details:   ctx.Details,
		Success:   ctx.Success,
	}
	if entry.IP == "" {
		entry.IP = "unknown"
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if overflow := len(l.entries) - l.maxEntries; overflow > 0 {
		l.entries = l.entries[overflow:]
		metrics.AuditEventsEvicted.Add(float64(overflow))
	}
	size := len(l.entries)
	l.mu.Unlock()

	metrics.AuditEventsRecorded.WithLabelValues(string(entry.Severity)).Inc()
	metrics.AuditLogSize.Set(float64(size))

	if l.archive != nil {
		if err := l.archive.Save(entry); err != nil {
			logging.Err(err).Str("entry_id", entry.ID).Msg("Audit archive write failed")
		}
	}

	return entry
}

// Query returns entries matching the filter, newest first.
func (l *Log) Query(filter Filter) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	results := make([]Entry, 0, min(len(l.entries), queryCapacityHint(filter)))
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := &l.entries[i]
		if !matches(entry, &filter) {
			continue
		}
		results = append(results, *entry)
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}

	return results
}

// SuspiciousActivityCount counts suspicious-typed entries from ip at or
// after since.
func (l *Log) SuspiciousActivityCount(ip string, since time.Time) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for i := range l.entries {
		entry := &l.entries[i]
		if IsSuspicious(entry.Type) && entry.IP == ip && !entry.Timestamp.Before(since) {
			count++
		}
	}

	return count
}

// suspiciousIPThreshold is the minimum suspicious-event count before an
// IP appears in Summary.SuspiciousIPs.
const suspiciousIPThreshold = 3

// summaryTopN bounds the suspicious-IP and recent-critical lists.
const summaryTopN = 10

// Summary aggregates the trailing window for the reporting surface.
func (l *Log) Summary(hours int) Summary {
	if hours <= 0 {
		hours = 24
	}
	since := l.now().Add(-time.Duration(hours) * time.Hour)

	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := Summary{
		WindowHours: hours,
		ByType:      make(map[EventType]int),
		BySeverity:  make(map[Severity]int),
	}
	ipCounts := make(map[string]int)

	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := &l.entries[i]
		if entry.Timestamp.Before(since) {
			continue
		}

		summary.TotalEvents++
		summary.ByType[entry.Type]++
		summary.BySeverity[entry.Severity]++

		if IsSuspicious(entry.Type) {
			ipCounts[entry.IP]++
		}
		if entry.Severity == SeverityCritical && len(summary.RecentCritical) < summaryTopN {
			summary.RecentCritical = append(summary.RecentCritical, *entry)
		}
	}

	for ip, count := range ipCounts {
		if count >= suspiciousIPThreshold {
			summary.SuspiciousIPs = append(summary.SuspiciousIPs, IPCount{IP: ip, Count: count})
		}
	}
	sort.Slice(summary.SuspiciousIPs, func(i, j int) bool {
		a, b := summary.SuspiciousIPs[i], summary.SuspiciousIPs[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.IP < b.IP
	})
	if len(summary.SuspiciousIPs) > summaryTopN {
		summary.SuspiciousIPs = summary.SuspiciousIPs[:summaryTopN]
	}

	return summary
}

// PurgeOlderThan removes entries older than cutoff and returns how many
// were dropped. This is the explicit retention sweep; per-entry deletion
// does not exist.
func (l *Log) PurgeOlderThan(cutoff time.Time) int {
	start := time.Now()

	l.mu.Lock()
	kept := l.entries[:0]
	for i := range l.entries {
		if !l.entries[i].Timestamp.Before(cutoff) {
			kept = append(kept, l.entries[i])
		}
	}
	removed := len(l.entries) - len(kept)
	l.entries = kept
	size := len(l.entries)
	l.mu.Unlock()

	metrics.AuditLogSize.Set(float64(size))
	metrics.RecordSweep("audit", removed, time.Since(start))

	return removed
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Close releases the archive, if any.
func (l *Log) Close() error {
	if l.archive != nil {
		return l.archive.Close()
	}
	return nil
}

func matches(entry *Entry, filter *Filter) bool {
	if filter.SubjectID != "" && entry.SubjectID != filter.SubjectID {
		return false
	}
	if filter.Type != "" && entry.Type != filter.Type {
		return false
	}
	if filter.Severity != "" && entry.Severity != filter.Severity {
		return false
	}
	if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
		return false
	}
	return true
}

func queryCapacityHint(filter Filter) int {
	if filter.Limit > 0 {
		return filter.Limit
	}
	return 64
}
