// Copyright (c) 2026 Noveris. All rights reserved.

package reconcile_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/stats/aggregate"
	"github.com/noveris/noveris/internal/stats/reconcile"
)

// # Test Fakes

// fakeCatalogue holds stored (possibly drifted) totals and the truth each
// novel should land on after a refresh.
type fakeCatalogue struct {
	ids        []string
	stored     map[string]aggregate.Totals
	truth      map[string]aggregate.Totals
	refreshErr map[string]error
}

func newFakeCatalogue() *fakeCatalogue {
	return &fakeCatalogue{
		stored:     make(map[string]aggregate.Totals),
		truth:      make(map[string]aggregate.Totals),
		refreshErr: make(map[string]error),
	}
}

func (c *fakeCatalogue) LiveNovelIDs(_ context.Context) ([]string, error) {
	return c.ids, nil
}

func (c *fakeCatalogue) StoredTotals(_ context.Context, novelID string) (aggregate.Totals, error) {
	totals, ok := c.stored[novelID]
	if !ok {
		return aggregate.Totals{}, apperr.NotFound("novel")
	}
	return totals, nil
}

func (c *fakeCatalogue) Refresh(_ context.Context, novelID string) (aggregate.Totals, error) {
	if err := c.refreshErr[novelID]; err != nil {
		return aggregate.Totals{}, err
	}
	c.stored[novelID] = c.truth[novelID]
	return c.truth[novelID], nil
}

func (c *fakeCatalogue) add(id string, stored, truth aggregate.Totals) {
	c.ids = append(c.ids, id)
	c.stored[id] = stored
	c.truth[id] = truth
}

func newService(c *fakeCatalogue) *reconcile.Service {
	return reconcile.NewService(c, c, slog.New(slog.DiscardHandler))
}

// # Tests

/*
TestService_ReconcileOne_RepairsDrift verifies a drifted novel is repaired
and the drift is visible in the result.
*/
func TestService_ReconcileOne_RepairsDrift(t *testing.T) {
	c := newFakeCatalogue()
	stale := aggregate.Totals{WordCount: 500, TotalChapters: 1, Readers: 2}
	correct := aggregate.Totals{WordCount: 500, TotalChapters: 1, Readers: 9}
	c.add("novel-1", stale, correct)

	result, err := newService(c).ReconcileOne(context.Background(), "novel-1")
	require.NoError(t, err)

	assert.Equal(t, stale, result.Before)
	assert.Equal(t, correct, result.After)
	assert.True(t, result.Changed)
	assert.Equal(t, correct, c.stored["novel-1"])
}

/*
TestService_ReconcileOne_CleanNovelUnchanged verifies a clean novel reports
no change.
*/
func TestService_ReconcileOne_CleanNovelUnchanged(t *testing.T) {
	c := newFakeCatalogue()
	totals := aggregate.Totals{WordCount: 500, TotalChapters: 1, Readers: 9}
	c.add("novel-1", totals, totals)

	result, err := newService(c).ReconcileOne(context.Background(), "novel-1")
	require.NoError(t, err)
	assert.False(t, result.Changed)
}

/*
TestService_ReconcileOne_UnknownNovel verifies the not-found path.
*/
func TestService_ReconcileOne_UnknownNovel(t *testing.T) {
	c := newFakeCatalogue()

	_, err := newService(c).ReconcileOne(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperr.IsAppError(err))
}

/*
TestService_ReconcileAll_SweepsWholeCatalogue verifies Scenario-style drift
repair: a sweep over a mixed catalogue repairs the drifted novels and
reports full counts.
*/
func TestService_ReconcileAll_SweepsWholeCatalogue(t *testing.T) {
	c := newFakeCatalogue()
	clean := aggregate.Totals{WordCount: 100, TotalChapters: 1, Readers: 5}

	for i := 0; i < 8; i++ {
		c.add(novelN(i), clean, clean)
	}
	// Two drifted novels with stale readers
	c.add("drifted-1", aggregate.Totals{WordCount: 100, TotalChapters: 1, Readers: 1}, clean)
	c.add("drifted-2", aggregate.Totals{WordCount: 100, TotalChapters: 1, Readers: 2}, clean)

	summary, err := newService(c).ReconcileAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, reconcile.Summary{Total: 10, Updated: 10, Failed: 0}, summary)
	assert.Equal(t, clean, c.stored["drifted-1"])
	assert.Equal(t, clean, c.stored["drifted-2"])
}

/*
TestService_ReconcileAll_ContinuesPastFailures verifies one broken novel
never aborts the sweep.
*/
func TestService_ReconcileAll_ContinuesPastFailures(t *testing.T) {
	c := newFakeCatalogue()
	clean := aggregate.Totals{WordCount: 100, TotalChapters: 1, Readers: 5}

	c.add("novel-a", clean, clean)
	c.add("novel-b", clean, clean)
	c.add("novel-c", clean, clean)
	c.refreshErr["novel-b"] = errors.New("storage down")

	summary, err := newService(c).ReconcileAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, reconcile.Summary{Total: 3, Updated: 2, Failed: 1}, summary)
}

func novelN(i int) string {
	return string(rune('a'+i)) + "-novel"
}
