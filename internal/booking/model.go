package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/pricing"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

var (
	ErrNotFound          = apperror.NotFound("booking not found")
	ErrInvalidTimeRange  = apperror.Validation("start time must be before end time")
	ErrInvalidUserID     = apperror.Validation("user id is required")
	ErrInvalidStatus     = apperror.Validation("invalid booking status")
	ErrAlreadyCancelled  = apperror.New(http.StatusConflict, apperror.KindInvalidTransition, "booking is already cancelled")
	ErrInvalidTransition = apperror.New(http.StatusConflict, apperror.KindInvalidTransition, "booking status cannot change this way")
	ErrStaleRevision     = apperror.New(http.StatusConflict, apperror.KindPersistence, "booking was modified concurrently")
	ErrCommitConflict    = apperror.New(http.StatusConflict, apperror.KindPersistence, "requested resources were taken by a concurrent booking")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, apperror.KindForbidden, "permission denied")
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// Allocation is what a booking holds besides its court.
type Allocation struct {
	CoachID   string // empty when no coach is booked
	Equipment catalog.EquipmentRequest
}

// Booking is a reservation record. Only Status, Revision and UpdatedAt change
// after creation.
type Booking struct {
	ID         string
	UserID     string
	CourtID    string
	Interval   interval.Interval
	Allocation Allocation
	Status     Status
	Price      pricing.Breakdown
	Revision   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UnitsOf reports the units of key held by the booking. Cancelled bookings
// hold nothing.
func (b *Booking) UnitsOf(key resource.Key) int {
	if b.Status != StatusConfirmed {
		return 0
	}
	switch key.Kind {
	case resource.KindCourt:
		if key.ID == b.CourtID {
			return 1
		}
	case resource.KindCoach:
		if b.Allocation.CoachID != "" && key.ID == b.Allocation.CoachID {
			return 1
		}
	case resource.KindEquipment:
		return b.Allocation.Equipment[catalog.EquipmentName(key.ID)]
	}
	return 0
}

func (b *Booking) Span() interval.Interval {
	return b.Interval
}

// Clone returns a deep copy.
func (b *Booking) Clone() *Booking {
	cp := *b
	cp.Allocation.Equipment = b.Allocation.Equipment.Clone()
	return &cp
}

type Filter struct {
	UserID string
	Status Status
	// StartsWithin keeps bookings starting inside it.
	StartsWithin *interval.Interval
	Page         int
	PageSize     int
}
