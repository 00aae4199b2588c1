package availability

import (
	"context"
	"errors"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

// Checker decides whether resources are free over an interval. It only reads
// the catalog and the ledger.
type Checker interface {
	CourtAvailable(ctx context.Context, courtID string, iv interval.Interval) (bool, error)
	// CoachAvailable is true for an empty coachID.
	CoachAvailable(ctx context.Context, coachID string, iv interval.Interval) (bool, error)
	EquipmentAvailable(ctx context.Context, req catalog.EquipmentRequest, iv interval.Interval) (bool, error)
	// CheckAll checks the court, then the coach, then the equipment and
	// returns an availability conflict for the first one that fails.
	CheckAll(ctx context.Context, courtID, coachID string, req catalog.EquipmentRequest, iv interval.Interval) error
}

type checker struct {
	catalog catalog.Service
	ledger  Ledger
	zone    *interval.Zone
}

func NewChecker(cat catalog.Service, ledger Ledger, zone *interval.Zone) Checker {
	return &checker{catalog: cat, ledger: ledger, zone: zone}
}

func (c *checker) CourtAvailable(ctx context.Context, courtID string, iv interval.Interval) (bool, error) {
	return c.claimFits(ctx, resource.Claim{Key: resource.CourtKey(courtID), Units: 1, Capacity: 1}, iv)
}

func (c *checker) CoachAvailable(ctx context.Context, coachID string, iv interval.Interval) (bool, error) {
	if coachID == "" {
		return true, nil
	}
	coach, err := c.catalog.ActiveCoach(ctx, coachID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrInactive) {
			return false, nil
		}
		return false, err
	}
	return c.fits(ctx, coach, 1, iv)
}

func (c *checker) EquipmentAvailable(ctx context.Context, req catalog.EquipmentRequest, iv interval.Interval) (bool, error) {
	short, err := c.firstShortEquipment(ctx, req, iv)
	if err != nil {
		return false, err
	}
	return short == "", nil
}

func (c *checker) CheckAll(ctx context.Context, courtID, coachID string, req catalog.EquipmentRequest, iv interval.Interval) error {
	ok, err := c.CourtAvailable(ctx, courtID, iv)
	if err != nil {
		return err
	}
	if !ok {
		return conflictError(resource.CourtKey(courtID), ReasonCourt)
	}

	ok, err = c.CoachAvailable(ctx, coachID, iv)
	if err != nil {
		return err
	}
	if !ok {
		return conflictError(resource.CoachKey(coachID), ReasonCoach)
	}

	short, err := c.firstShortEquipment(ctx, req, iv)
	if err != nil {
		return err
	}
	if short != "" {
		return conflictError(resource.EquipmentKey(string(short)), ReasonEquipment)
	}
	return nil
}

// firstShortEquipment returns the first requested equipment, in canonical
// order, that is disabled, unknown to the catalog or out of stock.
func (c *checker) firstShortEquipment(ctx context.Context, req catalog.EquipmentRequest, iv interval.Interval) (catalog.EquipmentName, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	for _, name := range req.Requested() {
		e, err := c.catalog.Equipment(ctx, name)
		if err != nil {
			if errors.Is(err, catalog.ErrEquipmentNotFound) {
				return name, nil
			}
			return "", err
		}
		if !e.IsActive {
			return name, nil
		}
		ok, err := c.fits(ctx, e, req[name], iv)
		if err != nil {
			return "", err
		}
		if !ok {
			return name, nil
		}
	}
	return "", nil
}

func (c *checker) fits(ctx context.Context, a resource.Allocatable, units int, iv interval.Interval) (bool, error) {
	if !a.Admits(iv, c.zone) {
		return false, nil
	}
	return c.claimFits(ctx, resource.NewClaim(a, units), iv)
}

// claimFits sums the units of every confirmed allocation overlapping iv,
// whether or not those allocations overlap each other.
func (c *checker) claimFits(ctx context.Context, claim resource.Claim, iv interval.Interval) (bool, error) {
	held, err := c.ledger.FindOverlapping(ctx, claim.Key, iv)
	if err != nil {
		return false, err
	}
	return claim.Fits(resource.Used(claim.Key, held)), nil
}
