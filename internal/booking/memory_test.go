package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-reservation/internal/booking"
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/catalog/catalogtest"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

func courtClaim(id string) resource.Claim {
	return resource.Claim{Key: resource.CourtKey(id), Units: 1, Capacity: 1}
}

func insert(t *testing.T, repo booking.Repository, b *booking.Booking, claims ...resource.Claim) *booking.Booking {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), b, claims))
	return b
}

func TestMemoryInsertAssignsIdentity(t *testing.T) {
	repo := booking.NewMemoryRepository()
	b := insert(t, repo, &booking.Booking{
		UserID:   alice,
		CourtID:  catalogtest.IndoorCourtID,
		Interval: between(at(0, 10, 0), at(0, 11, 0)),
	}, courtClaim(catalogtest.IndoorCourtID))

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, 1, b.Revision)
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestMemoryInsertRechecksClaims(t *testing.T) {
	ctx := context.Background()
	repo := booking.NewMemoryRepository()
	insert(t, repo, &booking.Booking{
		UserID:   alice,
		CourtID:  catalogtest.IndoorCourtID,
		Interval: between(at(0, 10, 0), at(0, 11, 0)),
	}, courtClaim(catalogtest.IndoorCourtID))

	err := repo.Insert(ctx, &booking.Booking{
		UserID:   bob,
		CourtID:  catalogtest.IndoorCourtID,
		Interval: between(at(0, 10, 59), at(0, 12, 0)),
	}, []resource.Claim{courtClaim(catalogtest.IndoorCourtID)})
	assert.ErrorIs(t, err, booking.ErrCommitConflict)

	_, total, err := repo.List(ctx, booking.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestMemoryFindOverlapping(t *testing.T) {
	ctx := context.Background()
	repo := booking.NewMemoryRepository()
	withRackets := insert(t, repo, &booking.Booking{
		UserID:     alice,
		CourtID:    catalogtest.IndoorCourtID,
		Interval:   between(at(0, 10, 0), at(0, 11, 0)),
		Allocation: booking.Allocation{Equipment: catalog.EquipmentRequest{catalog.Racket: 2}},
	})
	insert(t, repo, &booking.Booking{
		UserID:   bob,
		CourtID:  catalogtest.OutdoorCourtID,
		Interval: between(at(0, 10, 0), at(0, 11, 0)),
	})

	rackets := resource.EquipmentKey(string(catalog.Racket))
	found, err := repo.FindOverlapping(ctx, rackets, between(at(0, 9, 0), at(0, 10, 30)))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, withRackets.ID, found[0].ID)
	assert.Equal(t, 2, resource.Used(rackets, found))

	// Adjacent intervals do not overlap.
	found, err = repo.FindOverlapping(ctx, rackets, between(at(0, 11, 0), at(0, 12, 0)))
	require.NoError(t, err)
	assert.Empty(t, found)

	// Returned bookings are copies.
	found, err = repo.FindOverlapping(ctx, rackets, between(at(0, 10, 0), at(0, 11, 0)))
	require.NoError(t, err)
	found[0].Allocation.Equipment[catalog.Racket] = 99
	again, err := repo.GetByID(ctx, withRackets.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Allocation.Equipment[catalog.Racket])

	// Cancelled bookings hold nothing.
	_, err = repo.SetStatus(ctx, withRackets.ID, booking.StatusCancelled, 1)
	require.NoError(t, err)
	found, err = repo.FindOverlapping(ctx, rackets, between(at(0, 10, 0), at(0, 11, 0)))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMemorySetStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		status   booking.Status
		revision int
		prepare  func(repo booking.Repository, id string)
		wantErr  error
	}{
		{name: "cancel", status: booking.StatusCancelled, revision: 1},
		{name: "stale revision", status: booking.StatusCancelled, revision: 7, wantErr: booking.ErrStaleRevision},
		{name: "already confirmed", status: booking.StatusConfirmed, revision: 1, wantErr: booking.ErrInvalidTransition},
		{name: "unknown status", status: "pending", revision: 1, wantErr: booking.ErrInvalidStatus},
		{
			name:     "already cancelled",
			status:   booking.StatusCancelled,
			revision: 2,
			prepare: func(repo booking.Repository, id string) {
				_, err := repo.SetStatus(ctx, id, booking.StatusCancelled, 1)
				require.NoError(t, err)
			},
			wantErr: booking.ErrAlreadyCancelled,
		},
		{
			name:     "reconfirm",
			status:   booking.StatusConfirmed,
			revision: 2,
			prepare: func(repo booking.Repository, id string) {
				_, err := repo.SetStatus(ctx, id, booking.StatusCancelled, 1)
				require.NoError(t, err)
			},
			wantErr: booking.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := booking.NewMemoryRepository()
			b := insert(t, repo, &booking.Booking{
				UserID:   alice,
				CourtID:  catalogtest.IndoorCourtID,
				Interval: between(at(0, 10, 0), at(0, 11, 0)),
			})
			if tt.prepare != nil {
				tt.prepare(repo, b.ID)
			}
			before, err := repo.GetByID(ctx, b.ID)
			require.NoError(t, err)

			got, err := repo.SetStatus(ctx, b.ID, tt.status, tt.revision)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				after, err := repo.GetByID(ctx, b.ID)
				require.NoError(t, err)
				assert.Equal(t, before, after)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.revision+1, got.Revision)
		})
	}

	_, err := booking.NewMemoryRepository().SetStatus(ctx, "missing", booking.StatusCancelled, 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
