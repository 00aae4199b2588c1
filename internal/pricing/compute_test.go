package pricing_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/catalog/catalogtest"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/pricing"
)

var utc = interval.NewZone(time.UTC)

func indoor() *catalog.Court {
	return &catalog.Court{ID: catalogtest.IndoorCourtID, Type: catalog.CourtIndoor, BasePrice: 30, IsActive: true}
}

func span(start time.Time, d time.Duration) interval.Interval {
	return interval.Interval{Start: start, End: start.Add(d)}
}

// 2026-03-07 is a Saturday, 2026-03-09 a Monday.
var (
	saturday7pm = time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	monday10am  = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
)

func TestComputeSequentialRules(t *testing.T) {
	b := pricing.Compute(pricing.Input{
		Court:    indoor(),
		Interval: span(saturday7pm, time.Hour),
	}, catalogtest.Rules(), utc)

	assert.Equal(t, 30.0, b.BasePrice)
	assert.Equal(t, 15.0, b.PeakHourFee, "1.5x of 30")
	assert.Equal(t, 10.0, b.WeekendFee)
	assert.Equal(t, 10.0, b.CourtTypeFee)
	assert.Zero(t, b.EquipmentFee)
	assert.Zero(t, b.CoachFee)
	assert.Equal(t, 65.0, b.Total)
}

func TestComputeMultiplierSeesEarlierRules(t *testing.T) {
	rules := catalogtest.Rules()
	// Move the peak multiplier after both fixed surcharges.
	rules[0].Priority = 10
	catalog.SortRules(rules)

	b := pricing.Compute(pricing.Input{
		Court:    indoor(),
		Interval: span(saturday7pm, time.Hour),
	}, rules, utc)

	// 30 -> 40 -> 50 -> 75
	assert.Equal(t, 25.0, b.PeakHourFee)
	assert.Equal(t, 75.0, b.Total)
}

func TestComputeEquipmentFee(t *testing.T) {
	snap := catalogtest.Snapshot()
	table := map[catalog.EquipmentName]*catalog.EquipmentType{}
	for _, e := range snap.Equipment {
		table[e.Name] = e
	}
	req := catalog.EquipmentRequest{catalog.Racket: 2, catalog.Shoes: 1}

	for _, iv := range []interval.Interval{span(saturday7pm, time.Hour), span(monday10am, 3*time.Hour)} {
		b := pricing.Compute(pricing.Input{
			Court:     indoor(),
			Request:   req,
			Interval:  iv,
			Equipment: table,
		}, nil, utc)
		assert.Equal(t, 8.0, b.EquipmentFee, "2*3 + 1*2 regardless of interval")
	}
}

func TestComputeUnpricedEquipmentIsFree(t *testing.T) {
	b := pricing.Compute(pricing.Input{
		Court:     indoor(),
		Request:   catalog.EquipmentRequest{catalog.Racket: 2},
		Interval:  span(monday10am, time.Hour),
		Equipment: map[catalog.EquipmentName]*catalog.EquipmentType{},
	}, nil, utc)
	assert.Zero(t, b.EquipmentFee)
}

func TestComputeCoachFeeFractionalHours(t *testing.T) {
	coach := &catalog.Coach{ID: catalogtest.CoachID, PricePerHour: 40, IsActive: true}
	b := pricing.Compute(pricing.Input{
		Court:    indoor(),
		Coach:    coach,
		Interval: span(monday10am, 90*time.Minute),
	}, nil, utc)

	assert.Equal(t, 60.0, b.CoachFee)
	assert.Equal(t, 90.0, b.Total)
}

func TestComputeBucketsAccumulate(t *testing.T) {
	rules := []*catalog.PricingRule{
		{ID: "a", Condition: catalog.WeekendCondition{}, Modifier: catalog.Modifier{Type: catalog.ModifierFixed, Value: 5}, Priority: 1, IsActive: true},
		{ID: "b", Condition: catalog.WeekendCondition{}, Modifier: catalog.Modifier{Type: catalog.ModifierMultiplier, Value: 2}, Priority: 2, IsActive: true},
		{ID: "c", Condition: catalog.WeekendCondition{}, Modifier: catalog.Modifier{Type: catalog.ModifierFixed, Value: 100}, Priority: 3, IsActive: false},
	}
	b := pricing.Compute(pricing.Input{
		Court:    indoor(),
		Interval: span(saturday7pm, time.Hour),
	}, rules, utc)

	// 30 -> 35 -> 70; the inactive rule is skipped.
	assert.Equal(t, 40.0, b.WeekendFee)
	assert.Equal(t, 70.0, b.Total)
}

func TestComputeUsesConfiguredZone(t *testing.T) {
	taipei, err := interval.LoadZone("Asia/Taipei")
	require.NoError(t, err)

	// Friday 11:00 UTC is Friday 19:00 in Taipei: peak but not weekend.
	start := time.Date(2026, 3, 6, 11, 0, 0, 0, time.UTC)
	b := pricing.Compute(pricing.Input{
		Court:    indoor(),
		Interval: span(start, time.Hour),
	}, catalogtest.Rules(), taipei)

	assert.Equal(t, 15.0, b.PeakHourFee)
	assert.Zero(t, b.WeekendFee)

	b = pricing.Compute(pricing.Input{
		Court:    indoor(),
		Interval: span(start, time.Hour),
	}, catalogtest.Rules(), utc)
	assert.Zero(t, b.PeakHourFee)
}

func TestComputeTotalIsSumOfFees(t *testing.T) {
	rules := []*catalog.PricingRule{
		{ID: "w", Condition: catalog.WeekendCondition{}, Modifier: catalog.Modifier{Type: catalog.ModifierMultiplier, Value: 1.1}, Priority: 1, IsActive: true},
		{ID: "p", Condition: catalog.PeakHourCondition{StartHour: 0, EndHour: 24}, Modifier: catalog.Modifier{Type: catalog.ModifierMultiplier, Value: 1.3}, Priority: 2, IsActive: true},
		{ID: "i", Condition: catalog.CourtTypeCondition{CourtType: catalog.CourtIndoor}, Modifier: catalog.Modifier{Type: catalog.ModifierFixed, Value: 0.7}, Priority: 3, IsActive: true},
	}
	court := indoor()
	court.BasePrice = 17.3
	b := pricing.Compute(pricing.Input{
		Court:    court,
		Coach:    &catalog.Coach{PricePerHour: 33.3},
		Interval: span(saturday7pm, 70*time.Minute),
	}, rules, utc)

	assert.Equal(t, b.Sum(), b.Total)
}

func TestComputeDeterministic(t *testing.T) {
	snap := catalogtest.Snapshot()
	table := map[catalog.EquipmentName]*catalog.EquipmentType{}
	for _, e := range snap.Equipment {
		table[e.Name] = e
	}
	in := pricing.Input{
		Court:     indoor(),
		Coach:     snap.Coaches[0],
		Request:   catalog.EquipmentRequest{catalog.Shoes: 1, catalog.Racket: 3},
		Interval:  span(saturday7pm, 50*time.Minute),
		Equipment: table,
	}
	first := pricing.Compute(in, catalogtest.Rules(), utc)
	for range 50 {
		again := pricing.Compute(in, catalogtest.Rules(), utc)
		assert.Equal(t, math.Float64bits(first.Total), math.Float64bits(again.Total))
		assert.Equal(t, first, again)
	}
}

func TestServiceComputePrice(t *testing.T) {
	ctx := context.Background()
	cat := catalogtest.Service()
	svc := pricing.NewService(cat, utc)

	court, err := cat.ActiveCourt(ctx, catalogtest.IndoorCourtID)
	require.NoError(t, err)
	coach, err := cat.ActiveCoach(ctx, catalogtest.CoachID)
	require.NoError(t, err)

	b, err := svc.ComputePrice(ctx, court, coach, catalog.EquipmentRequest{catalog.Racket: 2, catalog.Shoes: 1}, span(saturday7pm, time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 65.0-30.0, b.PeakHourFee+b.WeekendFee+b.CourtTypeFee)
	assert.Equal(t, 8.0, b.EquipmentFee)
	assert.Equal(t, 40.0, b.CoachFee)
	assert.Equal(t, 113.0, b.Total)
}
