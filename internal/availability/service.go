package availability

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

// gridWorkers bounds the number of courts whose slots are computed at once.
const gridWorkers = 8

type Service interface {
	Checker
	// Grid returns the hourly slots of every active court on a local date.
	Grid(ctx context.Context, date string) (*Grid, error)
	// Invalidate drops cached grids for the local dates touched by iv.
	Invalidate(ctx context.Context, iv interval.Interval)
}

type service struct {
	Checker
	catalog catalog.Service
	ledger  Ledger
	zone    *interval.Zone
	cache   GridCache
	log     *zap.Logger
}

func NewService(cat catalog.Service, ledger Ledger, zone *interval.Zone, cache GridCache, log *zap.Logger) Service {
	if cache == nil {
		cache = NopCache()
	}
	return &service{
		Checker: NewChecker(cat, ledger, zone),
		catalog: cat,
		ledger:  ledger,
		zone:    zone,
		cache:   cache,
		log:     log.With(zap.String("service", "availability")),
	}
}

func (s *service) Grid(ctx context.Context, date string) (*Grid, error) {
	day, err := s.zone.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	// Normalize so that cache keys do not depend on input formatting.
	date = day.Format(interval.DateLayout)

	cached, ok, err := s.cache.Get(ctx, date)
	if err != nil {
		s.log.Warn("grid cache read failed", zap.String("date", date), zap.Error(err))
	} else if ok {
		return cached, nil
	}
	// The version is read before the ledger so that a commit landing during
	// the build keeps this grid out of the cache.
	version, err := s.cache.Version(ctx, date)
	cacheable := err == nil
	if err != nil {
		s.log.Warn("grid cache version read failed", zap.String("date", date), zap.Error(err))
	}

	courts, err := s.catalog.ListCourts(ctx)
	if err != nil {
		return nil, err
	}

	grid := &Grid{
		Date:     date,
		TimeZone: s.zone.String(),
		Courts:   make([]CourtSlots, len(courts)),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(gridWorkers)
	for i, court := range courts {
		g.Go(func() error {
			slots, err := s.courtSlots(gctx, court, day)
			if err != nil {
				return err
			}
			grid.Courts[i] = CourtSlots{Court: court, Slots: slots}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, date, version, grid); err != nil {
			s.log.Warn("grid cache write failed", zap.String("date", date), zap.Error(err))
		}
	}
	return grid, nil
}

func (s *service) courtSlots(ctx context.Context, court *catalog.Court, day time.Time) ([]Slot, error) {
	window := interval.Interval{Start: s.zone.At(day, FirstSlotHour), End: s.zone.At(day, LastSlotHour)}
	held, err := s.ledger.FindOverlapping(ctx, court.ResourceKey(), window)
	if err != nil {
		return nil, err
	}

	claim := resource.NewClaim(court, 1)
	slots := make([]Slot, 0, LastSlotHour-FirstSlotHour)
	for h := FirstSlotHour; h < LastSlotHour; h++ {
		slot := interval.Interval{Start: s.zone.At(day, h), End: s.zone.At(day, h+1)}
		var overlapping []resource.Allocation
		for _, a := range held {
			if a.Span().Overlaps(slot) {
				overlapping = append(overlapping, a)
			}
		}
		slots = append(slots, Slot{
			Start:     slot.Start,
			End:       slot.End,
			Label:     catalog.FormatClock(h*60) + " - " + catalog.FormatClock((h+1)*60),
			Available: claim.Fits(resource.Used(claim.Key, overlapping)),
		})
	}
	return slots, nil
}

func (s *service) Invalidate(ctx context.Context, iv interval.Interval) {
	dates := s.zone.Dates(iv)
	if err := s.cache.Invalidate(ctx, dates...); err != nil {
		s.log.Warn("grid cache invalidation failed", zap.Strings("dates", dates), zap.Error(err))
	}
}
