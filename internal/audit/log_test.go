// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package audit

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog(t *testing.T, maxEntries int) (*Log, *time.Time) {
	t.Helper()

	log := NewLog(Config{MaxEntries: maxEntries})
	clock := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return clock }
	return log, &clock
}

func TestRecordAssignsIdentityAndSeverity(t *testing.T) {
	log, _ := testLog(t, 100)

	entry := log.Record(EventAbuseDetected, Context{
		SubjectID: "user-1",
		IP:        "203.0.113.9",
		Endpoint:  "/api/v1/content/check",
	})

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, EventAbuseDetected, entry.Type)
	assert.Equal(t, SeverityCritical, entry.Severity)
	assert.Equal(t, "203.0.113.9", entry.IP)
	assert.Equal(t, 1, log.Len())
}

func TestRecordDefaultsMissingIP(t *testing.T) {
	log, _ := testLog(t, 100)

	entry := log.Record(EventLoginSuccess, Context{SubjectID: "user-1"})

	assert.Equal(t, "unknown", entry.IP)
}

func TestEvictionKeepsNewestEntries(t *testing.T) {
	log, clock := testLog(t, 50)

	for i := 0; i < 50+7; i++ {
		*clock = clock.Add(time.Second)
		log.Record(EventLoginSuccess, Context{
			IP:      "198.51.100.1",
			Details: map[string]any{"seq": i},
		})
	}

	require.Equal(t, 50, log.Len())

	// The 7 oldest entries are gone; the survivors are seq 7..56.
	entries := log.Query(Filter{})
	require.Len(t, entries, 50)
	assert.Equal(t, 56, entries[0].Details["seq"])
	assert.Equal(t, 7, entries[len(entries)-1].Details["seq"])
}

func TestSeverityOfIsTotalAndPure(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      Severity
	}{
		{EventLoginSuccess, SeverityInfo},
		{EventLoginFailure, SeverityWarning},
		{EventLoginRateLimited, SeverityWarning},
		{EventContentCooldown, SeverityInfo},
		{EventSpamBlocked, SeverityError},
		{EventAbuseDetected, SeverityCritical},
		{EventType("made.up"), SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityOf(tt.eventType))
			// Same input, same output.
			assert.Equal(t, SeverityOf(tt.eventType), SeverityOf(tt.eventType))
		})
	}
}

func TestQueryNewestFirstWithFilters(t *testing.T) {
	log, clock := testLog(t, 100)

	log.Record(EventLoginFailure, Context{SubjectID: "alice", IP: "10.0.0.1"})
	*clock = clock.Add(time.Minute)
	log.Record(EventLoginSuccess, Context{SubjectID: "alice", IP: "10.0.0.1"})
	*clock = clock.Add(time.Minute)
	log.Record(EventLoginFailure, Context{SubjectID: "bob", IP: "10.0.0.2"})
	*clock = clock.Add(time.Minute)
	log.Record(EventSpamBlocked, Context{SubjectID: "bob", IP: "10.0.0.2"})

	all := log.Query(Filter{})
	require.Len(t, all, 4)
	assert.Equal(t, EventSpamBlocked, all[0].Type)
	assert.Equal(t, EventLoginFailure, all[3].Type)

	alice := log.Query(Filter{SubjectID: "alice"})
	require.Len(t, alice, 2)
	assert.Equal(t, EventLoginSuccess, alice[0].Type)

	failures := log.Query(Filter{Type: EventLoginFailure})
	require.Len(t, failures, 2)
	assert.Equal(t, "bob", failures[0].SubjectID)

	warnings := log.Query(Filter{Severity: SeverityWarning})
	assert.Len(t, warnings, 2)

	recent := log.Query(Filter{Since: clock.Add(-90 * time.Second)})
	assert.Len(t, recent, 2)

	limited := log.Query(Filter{Limit: 1})
	require.Len(t, limited, 1)
	assert.Equal(t, EventSpamBlocked, limited[0].Type)
}

func TestQueryReturnsSnapshot(t *testing.T) {
	log, _ := testLog(t, 100)
	log.Record(EventLoginSuccess, Context{IP: "10.0.0.1"})

	snapshot := log.Query(Filter{})
	require.Len(t, snapshot, 1)

	log.Record(EventLoginFailure, Context{IP: "10.0.0.1"})
	assert.Len(t, snapshot, 1)
}

func TestSuspiciousActivityCount(t *testing.T) {
	log, clock := testLog(t, 100)
	start := *clock

	log.Record(EventLoginFailure, Context{IP: "10.0.0.1"})
	log.Record(EventLoginFailure, Context{IP: "10.0.0.1"})
	log.Record(EventLoginSuccess, Context{IP: "10.0.0.1"}) // not suspicious
	log.Record(EventLoginFailure, Context{IP: "10.0.0.2"}) // other IP
	*clock = clock.Add(time.Hour)
	log.Record(EventSpamBlocked, Context{IP: "10.0.0.1"})

	assert.Equal(t, 3, log.SuspiciousActivityCount("10.0.0.1", start))
	assert.Equal(t, 1, log.SuspiciousActivityCount("10.0.0.1", start.Add(30*time.Minute)))
	assert.Equal(t, 0, log.SuspiciousActivityCount("192.0.2.1", start))
}

func TestSummaryAggregation(t *testing.T) {
	log, clock := testLog(t, 1000)

	// Outside the 24h window; must not be counted.
	log.Record(EventAbuseDetected, Context{IP: "10.0.0.9"})
	*clock = clock.Add(30 * time.Hour)

	for i := 0; i < 4; i++ {
		log.Record(EventLoginFailure, Context{IP: "10.0.0.1"})
	}
	log.Record(EventLoginFailure, Context{IP: "10.0.0.2"})
	log.Record(EventLoginFailure, Context{IP: "10.0.0.2"})
	log.Record(EventLoginSuccess, Context{IP: "10.0.0.1"})
	log.Record(EventAbuseDetected, Context{IP: "10.0.0.3", SubjectID: "mallory"})

	summary := log.Summary(24)

	assert.Equal(t, 24, summary.WindowHours)
	assert.Equal(t, 8, summary.TotalEvents)
	assert.Equal(t, 6, summary.ByType[EventLoginFailure])
	assert.Equal(t, 1, summary.ByType[EventAbuseDetected])
	assert.Equal(t, 6, summary.BySeverity[SeverityWarning])
	assert.Equal(t, 1, summary.BySeverity[SeverityCritical])

	// Only 10.0.0.1 crosses the threshold of 3 suspicious events.
	require.Len(t, summary.SuspiciousIPs, 1)
	assert.Equal(t, IPCount{IP: "10.0.0.1", Count: 4}, summary.SuspiciousIPs[0])

	require.Len(t, summary.RecentCritical, 1)
	assert.Equal(t, "mallory", summary.RecentCritical[0].SubjectID)
}

func TestSummarySuspiciousIPOrderingAndCap(t *testing.T) {
	log, _ := testLog(t, 5000)

	for i := 0; i < 12; i++ {
		ip := fmt.Sprintf("10.0.0.%d", i)
		for j := 0; j <= i+3; j++ {
			log.Record(EventLoginFailure, Context{IP: ip})
		}
	}

	summary := log.Summary(1)

	require.Len(t, summary.SuspiciousIPs, 10)
	assert.Equal(t, "10.0.0.11", summary.SuspiciousIPs[0].IP)
	for i := 1; i < len(summary.SuspiciousIPs); i++ {
		assert.GreaterOrEqual(t,
			summary.SuspiciousIPs[i-1].Count, summary.SuspiciousIPs[i].Count)
	}
}

func TestSummaryDefaultsWindow(t *testing.T) {
	log, _ := testLog(t, 100)
	log.Record(EventLoginSuccess, Context{IP: "10.0.0.1"})

	assert.Equal(t, 24, log.Summary(0).WindowHours)
	assert.Equal(t, 24, log.Summary(-5).WindowHours)
}

func TestPurgeOlderThan(t *testing.T) {
	log, clock := testLog(t, 100)
	start := *clock

	log.Record(EventLoginSuccess, Context{IP: "10.0.0.1"})
	*clock = clock.Add(time.Hour)
	log.Record(EventLoginSuccess, Context{IP: "10.0.0.1"})
	*clock = clock.Add(time.Hour)
	log.Record(EventLoginFailure, Context{IP: "10.0.0.1"})

	removed := log.PurgeOlderThan(start.Add(90 * time.Minute))

	assert.Equal(t, 2, removed)
	require.Equal(t, 1, log.Len())
	assert.Equal(t, EventLoginFailure, log.Query(Filter{})[0].Type)

	assert.Equal(t, 0, log.PurgeOlderThan(start))
}

type faultyArchive struct {
	mu    sync.Mutex
	calls int
}

func (a *faultyArchive) Save(Entry) error {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return errors.New("disk on fire")
}

func (a *faultyArchive) Close() error { return nil }

func TestRecordSurvivesArchiveFailure(t *testing.T) {
	archive := &faultyArchive{}
	log := NewLog(Config{MaxEntries: 10, Archive: archive})

	entry := log.Record(EventLoginFailure, Context{IP: "10.0.0.1"})

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 1, log.Len())
	assert.Equal(t, 1, archive.calls)
}

func TestConcurrentRecordStaysBounded(t *testing.T) {
	log, _ := testLog(t, 100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Record(EventContentPosted, Context{IP: "10.0.0.1"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, log.Len())
}

func TestCEFExport(t *testing.T) {
	log, _ := testLog(t, 10)
	log.Record(EventAbuseDetected, Context{
		SubjectID: "user|1",
		IP:        "203.0.113.9",
		Endpoint:  "/api/v1/content/check",
		UserAgent: "curl/8.0",
	})

	out, err := NewCEFExporter().Export(log.Query(Filter{}))
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "CEF:0|IndieVault|Sentinel|1.0|abuse.detected|abuse.detected|10|"))
	assert.Contains(t, line, "src=203.0.113.9")
	assert.Contains(t, line, "suid=user\\|1")
	assert.Contains(t, line, "outcome=failure")
}

func TestJSONExport(t *testing.T) {
	log, _ := testLog(t, 10)
	log.Record(EventLoginSuccess, Context{IP: "10.0.0.1", Success: true})

	out, err := (&JSONExporter{}).Export(log.Query(Filter{}))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type": "login.success"`)
}
