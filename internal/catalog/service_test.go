package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/catalog/catalogtest"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

func TestActiveCoach(t *testing.T) {
	ctx := context.Background()
	svc := catalogtest.Service()

	c, err := svc.ActiveCoach(ctx, catalogtest.CoachID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, c.PricePerHour)

	_, err = svc.ActiveCoach(ctx, catalogtest.RetiredCoachID)
	assert.ErrorIs(t, err, catalog.ErrCoachInactive)
	assert.ErrorIs(t, err, apperror.ErrInactive)

	_, err = svc.ActiveCoach(ctx, catalogtest.UnknownCourtID)
	assert.ErrorIs(t, err, catalog.ErrCoachNotFound)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestEquipmentTable(t *testing.T) {
	ctx := context.Background()
	snap := catalogtest.Snapshot()
	snap.Equipment[1].IsActive = false
	svc := catalog.NewService(catalog.NewMemoryRepository(snap))

	table, err := svc.EquipmentTable(ctx, catalog.EquipmentRequest{catalog.Racket: 2, catalog.Shoes: 1})
	require.NoError(t, err)
	assert.Contains(t, table, catalog.Racket)
	assert.NotContains(t, table, catalog.Shoes, "disabled equipment is not priced")

	_, err = svc.Equipment(ctx, "ball")
	assert.ErrorIs(t, err, catalog.ErrUnknownEquipment)
}

func TestListPricingRulesOrdered(t *testing.T) {
	ctx := context.Background()
	snap := catalogtest.Snapshot()
	// Reverse storage order and disable one rule.
	rules := snap.PricingRules
	rules[0], rules[2] = rules[2], rules[0]
	rules[1].IsActive = false
	svc := catalog.NewService(catalog.NewMemoryRepository(snap))

	got, err := svc.ListPricingRules(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rule-peak", got[0].ID)
	assert.Equal(t, "rule-indoor", got[1].ID)
}
