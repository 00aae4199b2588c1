package availability

import (
	"context"
	"net/http"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

// Daily slot grid bounds, in local hours.
const (
	FirstSlotHour = 8
	LastSlotHour  = 22
)

const (
	ReasonCourt     = "court is not available for this time slot"
	ReasonCoach     = "coach is not available for this time slot"
	ReasonEquipment = "requested equipment is not available in sufficient quantity"
)

var ErrInvalidDate = apperror.Validation("invalid date, expected YYYY-MM-DD")

// Ledger is the read side of the booking store the checker consults.
type Ledger interface {
	// FindOverlapping returns the confirmed allocations of key whose interval
	// overlaps iv.
	FindOverlapping(ctx context.Context, key resource.Key, iv interval.Interval) ([]resource.Allocation, error)
}

// Conflict names the first resource that could not be granted.
type Conflict struct {
	Resource resource.Key
	Reason   string
}

func (c *Conflict) Error() string {
	return c.Reason
}

// Detail identifies the conflicting resource in error responses.
func (c *Conflict) Detail() string {
	return c.Resource.String()
}

func conflictError(key resource.Key, reason string) error {
	return apperror.Wrap(&Conflict{Resource: key, Reason: reason}, http.StatusConflict, apperror.KindAvailability, reason)
}

type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Label     string    `json:"label"`
	Available bool      `json:"available"`
}

type CourtSlots struct {
	Court *catalog.Court `json:"court"`
	Slots []Slot         `json:"slots"`
}

// Grid is the hourly availability of every active court on one local date.
type Grid struct {
	Date     string       `json:"date"`
	TimeZone string       `json:"timeZone"`
	Courts   []CourtSlots `json:"courts"`
}
