// Copyright (c) 2026 Noveris. All rights reserved.

package view_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveris/noveris/internal/platform/metrics"
	"github.com/noveris/noveris/internal/stats/view"
)

// # Test Fakes

// fakeStore is an in-memory dedup store with an injectable clock.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]time.Time
	failing bool
	now     func() time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *fakeStore) key(chapterID string, identity view.Identity) string {
	if identity.IsAnonymous() {
		return fmt.Sprintf("%s|anon|%s|%s", chapterID, identity.ClientToken, identity.IPAddress)
	}
	return fmt.Sprintf("%s|user|%s", chapterID, identity.UserID)
}

func (s *fakeStore) CheckAndRecord(_ context.Context, chapterID string, identity view.Identity, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return false, errors.New("store unavailable")
	}

	k := s.key(chapterID, identity)
	now := s.now()

	if seen, ok := s.records[k]; ok && now.Sub(seen) < window {
		return false, nil
	}

	s.records[k] = now
	return true, nil
}

func (s *fakeStore) PurgeExpired(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	var purged int64
	for k, seen := range s.records {
		if seen.Before(cutoff) {
			delete(s.records, k)
			purged++
		}
	}
	return purged, nil
}

// fakeChapters records view increments per chapter.
type fakeChapters struct {
	mu      sync.Mutex
	counts  map[string]int64
	novelID string
	failing bool
}

func (c *fakeChapters) IncrementViewCount(_ context.Context, chapterID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failing {
		return "", errors.New("increment failed")
	}
	c.counts[chapterID]++
	return c.novelID, nil
}

// fakeAggregates records readers refresh calls per novel.
type fakeAggregates struct {
	mu    sync.Mutex
	calls map[string]int
}

func (a *fakeAggregates) UpdateReaders(_ context.Context, novelID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[novelID]++
	return nil
}

// fakeNovels records activity stamps per novel.
type fakeNovels struct {
	mu    sync.Mutex
	calls map[string]int
}

func (n *fakeNovels) TouchLastActive(_ context.Context, novelID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[novelID]++
	return nil
}

// # Harness

type harness struct {
	service    *view.Service
	store      *fakeStore
	chapters   *fakeChapters
	aggregates *fakeAggregates
	novels     *fakeNovels
}

func newHarness(window time.Duration) *harness {
	store := newFakeStore()
	chapters := &fakeChapters{counts: make(map[string]int64), novelID: "novel-1"}
	aggregates := &fakeAggregates{calls: make(map[string]int)}
	novels := &fakeNovels{calls: make(map[string]int)}
	collector := metrics.NewCollector(prometheus.NewRegistry())
	logger := slog.New(slog.DiscardHandler)

	return &harness{
		service:    view.NewService(store, chapters, aggregates, novels, collector, window, logger),
		store:      store,
		chapters:   chapters,
		aggregates: aggregates,
		novels:     novels,
	}
}

// # Tests

/*
TestService_RecordView_CountsOncePerWindow verifies that repeat views from
the same identity inside the window produce exactly one count.
*/
func TestService_RecordView_CountsOncePerWindow(t *testing.T) {
	h := newHarness(time.Hour)
	identity := view.Resolve("user-1", "", "")

	for i := 0; i < 5; i++ {
		h.service.RecordView(context.Background(), "chapter-1", identity)
	}

	assert.Equal(t, int64(1), h.chapters.counts["chapter-1"])
	assert.Equal(t, 1, h.aggregates.calls["novel-1"])
	assert.Equal(t, 1, h.novels.calls["novel-1"])
}

/*
TestService_RecordView_RecountsAfterWindowExpiry verifies that a view from
the same identity counts again once the dedup window has elapsed.
*/
func TestService_RecordView_RecountsAfterWindowExpiry(t *testing.T) {
	h := newHarness(time.Hour)
	identity := view.Resolve("user-1", "", "")

	base := time.Now()
	h.store.now = func() time.Time { return base }

	h.service.RecordView(context.Background(), "chapter-1", identity)
	require.Equal(t, int64(1), h.chapters.counts["chapter-1"])

	// Still inside the window
	h.store.now = func() time.Time { return base.Add(59 * time.Minute) }
	h.service.RecordView(context.Background(), "chapter-1", identity)
	assert.Equal(t, int64(1), h.chapters.counts["chapter-1"])

	// Window elapsed
	h.store.now = func() time.Time { return base.Add(61 * time.Minute) }
	h.service.RecordView(context.Background(), "chapter-1", identity)
	assert.Equal(t, int64(2), h.chapters.counts["chapter-1"])
}

/*
TestService_RecordView_DistinctIdentityScopes verifies that different reader
identities each count independently for the same chapter.
*/
func TestService_RecordView_DistinctIdentityScopes(t *testing.T) {
	h := newHarness(time.Hour)

	identities := []view.Identity{
		view.Resolve("user-1", "", ""),                 // signed-in account
		view.Resolve("", "token-a", "203.0.113.7"),     // anonymous device
		view.Resolve("", "token-b", "203.0.113.7"),     // second device, same IP
		view.Resolve("", "", "203.0.113.7"),            // tokenless fallback
		view.Resolve("", "", "198.51.100.9"),           // different bare IP
		view.Resolve("user-1", "token-a", "203.0.113.7"), // account wins over token
	}

	for _, identity := range identities {
		h.service.RecordView(context.Background(), "chapter-1", identity)
	}

	// The last identity collapses into user-1's scope, so 5 distinct readers.
	assert.Equal(t, int64(5), h.chapters.counts["chapter-1"])
}

/*
TestService_CheckAndRecord_FailsClosed verifies that a dedup store failure
never produces a count.
*/
func TestService_CheckAndRecord_FailsClosed(t *testing.T) {
	h := newHarness(time.Hour)
	h.store.failing = true
	identity := view.Resolve("user-1", "", "")

	counted := h.service.CheckAndRecord(context.Background(), "chapter-1", identity)
	assert.False(t, counted)

	h.service.RecordView(context.Background(), "chapter-1", identity)
	assert.Zero(t, h.chapters.counts["chapter-1"])
	assert.Zero(t, h.aggregates.calls["novel-1"])
}

/*
TestService_RecordView_IncrementFailureSkipsDownstream verifies that a failed
counter increment stops the pipeline before the readers refresh.
*/
func TestService_RecordView_IncrementFailureSkipsDownstream(t *testing.T) {
	h := newHarness(time.Hour)
	h.chapters.failing = true
	identity := view.Resolve("user-1", "", "")

	h.service.RecordView(context.Background(), "chapter-1", identity)

	assert.Zero(t, h.aggregates.calls["novel-1"])
	assert.Zero(t, h.novels.calls["novel-1"])
}

/*
TestService_RecordView_ConcurrentSameIdentity verifies the single-count
guarantee holds under concurrent requests for one reader.
*/
func TestService_RecordView_ConcurrentSameIdentity(t *testing.T) {
	h := newHarness(time.Hour)
	identity := view.Resolve("", "token-a", "203.0.113.7")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.service.RecordView(context.Background(), "chapter-1", identity)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), h.chapters.counts["chapter-1"])
}

/*
TestResolve verifies the identity scope precedence.
*/
func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		token  string
		ip     string
		kind   view.IdentityKind
	}{
		{"signed_in", "user-1", "", "", view.KindUser},
		{"signed_in_with_token", "user-1", "token-a", "1.2.3.4", view.KindUser},
		{"anonymous_device", "", "token-a", "1.2.3.4", view.KindClient},
		{"ip_fallback", "", "", "1.2.3.4", view.KindIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := view.Resolve(tt.userID, tt.token, tt.ip)
			assert.Equal(t, tt.kind, identity.Kind())

			if tt.kind == view.KindUser {
				// Device hints never leak into the account scope.
				assert.Empty(t, identity.ClientToken)
				assert.Empty(t, identity.IPAddress)
			}
		})
	}
}

/*
TestPurgeWorker_PurgeRemovesOnlyExpired verifies retention boundaries on the
physical purge.
*/
func TestPurgeWorker_PurgeRemovesOnlyExpired(t *testing.T) {
	store := newFakeStore()
	base := time.Now()

	store.now = func() time.Time { return base.Add(-30 * time.Hour) }
	_, err := store.CheckAndRecord(context.Background(), "chapter-old", view.Resolve("user-1", "", ""), time.Hour)
	require.NoError(t, err)

	store.now = func() time.Time { return base }
	_, err = store.CheckAndRecord(context.Background(), "chapter-new", view.Resolve("user-1", "", ""), time.Hour)
	require.NoError(t, err)

	purged, err := store.PurgeExpired(context.Background(), 25*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
