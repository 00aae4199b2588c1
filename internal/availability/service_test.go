package availability_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/availability"
	"github.com/nekogravitycat/court-reservation/internal/catalog/catalogtest"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

type memoryCache struct {
	mu          sync.Mutex
	grids       map[string]*availability.Grid
	versions    map[string]int64
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{grids: map[string]*availability.Grid{}, versions: map[string]int64{}}
}

func (c *memoryCache) Version(_ context.Context, date string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[date], nil
}

func (c *memoryCache) Get(_ context.Context, date string) (*availability.Grid, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.grids[date]
	return g, ok, nil
}

func (c *memoryCache) Set(_ context.Context, date string, version int64, g *availability.Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[date] == version {
		c.grids[date] = g
	}
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, dates ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dates {
		delete(c.grids, d)
		c.versions[d]++
		c.invalidated = append(c.invalidated, d)
	}
	return nil
}

func TestGrid(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{}
	ledger.add(between(at(0, 10, 0), at(0, 11, 30)), map[resource.Key]int{indoorKey: 1})
	ledger.add(between(at(0, 21, 0), at(0, 23, 0)), map[resource.Key]int{indoorKey: 1})
	svc := availability.NewService(catalogtest.Service(), ledger, utc, nil, zap.NewNop())

	grid, err := svc.Grid(ctx, "2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-07", grid.Date)
	assert.Equal(t, "UTC", grid.TimeZone)
	require.Len(t, grid.Courts, 2, "inactive courts are left out")

	var indoor availability.CourtSlots
	for _, c := range grid.Courts {
		require.Len(t, c.Slots, availability.LastSlotHour-availability.FirstSlotHour)
		if c.Court.ID == catalogtest.IndoorCourtID {
			indoor = c
		} else {
			for _, s := range c.Slots {
				assert.True(t, s.Available)
			}
		}
	}
	require.NotNil(t, indoor.Court)

	first := indoor.Slots[0]
	assert.True(t, first.Start.Equal(at(0, 8, 0)))
	assert.True(t, first.End.Equal(at(0, 9, 0)))
	assert.Equal(t, "08:00 - 09:00", first.Label)

	busy := map[int]bool{10: true, 11: true, 21: true}
	for i, s := range indoor.Slots {
		hour := availability.FirstSlotHour + i
		assert.Equal(t, !busy[hour], s.Available, "slot %d", hour)
	}
}

func TestGridUsesConfiguredZone(t *testing.T) {
	ctx := context.Background()
	taipei, err := interval.LoadZone("Asia/Taipei")
	require.NoError(t, err)
	svc := availability.NewService(catalogtest.Service(), &fakeLedger{}, taipei, nil, zap.NewNop())

	grid, err := svc.Grid(ctx, "2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Taipei", grid.TimeZone)
	// 08:00 in Taipei is midnight UTC.
	assert.True(t, grid.Courts[0].Slots[0].Start.Equal(at(0, 0, 0)))
}

func TestGridInvalidDate(t *testing.T) {
	svc := availability.NewService(catalogtest.Service(), &fakeLedger{}, utc, nil, zap.NewNop())
	for _, d := range []string{"", "2026-13-01", "07/03/2026"} {
		_, err := svc.Grid(context.Background(), d)
		assert.ErrorIs(t, err, availability.ErrInvalidDate, d)
		assert.ErrorIs(t, err, apperror.ErrValidation, d)
	}
}

func TestGridCache(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{}
	cache := newMemoryCache()
	svc := availability.NewService(catalogtest.Service(), ledger, utc, cache, zap.NewNop())

	_, err := svc.Grid(ctx, "2026-03-07")
	require.NoError(t, err)
	calls := ledger.calls

	_, err = svc.Grid(ctx, "2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, calls, ledger.calls, "second read is served from the cache")

	svc.Invalidate(ctx, between(at(0, 23, 0), at(1, 1, 0)))
	assert.Equal(t, []string{"2026-03-07", "2026-03-08"}, cache.invalidated)

	_, err = svc.Grid(ctx, "2026-03-07")
	require.NoError(t, err)
	assert.Greater(t, ledger.calls, calls)
}

func TestGridBuiltBeforeInvalidationIsNotCached(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{}
	cache := newMemoryCache()
	svc := availability.NewService(catalogtest.Service(), ledger, utc, cache, zap.NewNop())

	// A booking commits and invalidates the date while the grid is being built.
	var once sync.Once
	ledger.onFind = func() {
		once.Do(func() { svc.Invalidate(ctx, between(at(0, 10, 0), at(0, 11, 0))) })
	}
	_, err := svc.Grid(ctx, "2026-03-07")
	require.NoError(t, err)

	_, ok, err := cache.Get(ctx, "2026-03-07")
	require.NoError(t, err)
	assert.False(t, ok, "a grid read before the invalidation must not be cached")

	ledger.onFind = nil
	_, err = svc.Grid(ctx, "2026-03-07")
	require.NoError(t, err)
	_, ok, err = cache.Get(ctx, "2026-03-07")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServiceExposesChecker(t *testing.T) {
	ledger := &fakeLedger{}
	ledger.add(between(at(0, 10, 0), at(0, 11, 0)), map[resource.Key]int{indoorKey: 1})
	svc := availability.NewService(catalogtest.Service(), ledger, utc, nil, zap.NewNop())

	ok, err := svc.CourtAvailable(context.Background(), catalogtest.IndoorCourtID, between(at(0, 10, 0), at(0, 11, 0)))
	require.NoError(t, err)
	assert.False(t, ok)
}
