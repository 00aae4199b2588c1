package booking

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/availability"
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/pricing"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

// Request describes the resources wanted over an interval.
type Request struct {
	CourtID   string
	CoachID   string // optional
	Equipment catalog.EquipmentRequest
	Interval  interval.Interval
}

// Actor is the caller of an operation on an existing booking.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (a Actor) canAccess(b *Booking) bool {
	return a.IsAdmin || (a.UserID != "" && a.UserID == b.UserID)
}

type Service interface {
	// Quote prices a request without checking availability or writing
	// anything.
	Quote(ctx context.Context, req Request) (pricing.Breakdown, error)
	// Book checks availability, prices the request and commits a confirmed
	// booking for userID.
	Book(ctx context.Context, userID string, req Request) (*Booking, error)
	// Cancel moves a confirmed booking to cancelled. The price snapshot is
	// kept.
	Cancel(ctx context.Context, id string, actor Actor) (*Booking, error)
	Get(ctx context.Context, id string, actor Actor) (*Booking, error)
	// List returns bookings of every user. date, when set, keeps bookings
	// starting on that local date.
	List(ctx context.Context, status Status, date string, page, pageSize int) ([]*Booking, int, error)
	ListMine(ctx context.Context, userID string, page, pageSize int) ([]*Booking, int, error)
}

type service struct {
	repo         Repository
	catalog      catalog.Service
	availability availability.Service
	pricing      pricing.Service
	zone         *interval.Zone
	log          *zap.Logger
}

func NewService(repo Repository, cat catalog.Service, avail availability.Service, price pricing.Service, zone *interval.Zone, log *zap.Logger) Service {
	return &service{
		repo:         repo,
		catalog:      cat,
		availability: avail,
		pricing:      price,
		zone:         zone,
		log:          log.With(zap.String("service", "booking")),
	}
}

// resolve validates req and loads the court and optional coach it names.
func (s *service) resolve(ctx context.Context, req Request) (*catalog.Court, *catalog.Coach, error) {
	if !req.Interval.Start.Before(req.Interval.End) {
		return nil, nil, ErrInvalidTimeRange
	}
	if err := req.Equipment.Validate(); err != nil {
		return nil, nil, err
	}

	court, err := s.catalog.ActiveCourt(ctx, req.CourtID)
	if err != nil {
		return nil, nil, err
	}
	if req.CoachID == "" {
		return court, nil, nil
	}
	coach, err := s.catalog.ActiveCoach(ctx, req.CoachID)
	if err != nil {
		return nil, nil, err
	}
	return court, coach, nil
}

func (s *service) Quote(ctx context.Context, req Request) (pricing.Breakdown, error) {
	court, coach, err := s.resolve(ctx, req)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return s.pricing.ComputePrice(ctx, court, coach, req.Equipment, req.Interval)
}

func (s *service) Book(ctx context.Context, userID string, req Request) (*Booking, error) {
	// 1. Validate Request
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	court, coach, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	// 2. Check Availability
	if err := s.availability.CheckAll(ctx, court.ID, req.CoachID, req.Equipment, req.Interval); err != nil {
		return nil, err
	}

	// 3. Price
	price, err := s.pricing.ComputePrice(ctx, court, coach, req.Equipment, req.Interval)
	if err != nil {
		return nil, err
	}

	// 4. Commit. The ledger re-checks every claim atomically.
	b := &Booking{
		UserID:   userID,
		CourtID:  court.ID,
		Interval: req.Interval,
		Allocation: Allocation{
			CoachID:   req.CoachID,
			Equipment: req.Equipment.Clone(),
		},
		Status: StatusConfirmed,
		Price:  price,
	}
	claims, err := s.claims(ctx, court, coach, b.Allocation.Equipment)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, b, claims); err != nil {
		s.log.Info("booking commit rejected",
			zap.String("court_id", court.ID),
			zap.Time("start", req.Interval.Start),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("booking confirmed",
		zap.String("booking_id", b.ID),
		zap.String("user_id", userID),
		zap.String("court_id", court.ID),
		zap.Float64("total", b.Price.Total),
	)
	s.availability.Invalidate(ctx, b.Interval)
	return b, nil
}

// claims lists what b must hold, in court, coach, equipment order so that a
// commit conflict reports the same resource the checker would.
func (s *service) claims(ctx context.Context, court *catalog.Court, coach *catalog.Coach, req catalog.EquipmentRequest) ([]resource.Claim, error) {
	claims := []resource.Claim{resource.NewClaim(court, 1)}
	if coach != nil {
		claims = append(claims, resource.NewClaim(coach, 1))
	}
	for _, name := range req.Requested() {
		eq, err := s.catalog.Equipment(ctx, name)
		if err != nil {
			return nil, err
		}
		claims = append(claims, resource.NewClaim(eq, req[name]))
	}
	return claims, nil
}

func (s *service) Cancel(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(b) {
		return nil, ErrPermissionDenied
	}
	if b.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	cancelled, err := s.repo.SetStatus(ctx, id, StatusCancelled, b.Revision)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking cancelled",
		zap.String("booking_id", id),
		zap.String("by", actor.UserID),
	)
	s.availability.Invalidate(ctx, cancelled.Interval)
	return cancelled, nil
}

func (s *service) Get(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(b) {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, status Status, date string, page, pageSize int) ([]*Booking, int, error) {
	filter := Filter{Status: status, Page: page, PageSize: pageSize}
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if date != "" {
		day, err := s.zone.ParseDate(date)
		if err != nil {
			return nil, 0, availability.ErrInvalidDate
		}
		iv := s.zone.Day(day)
		filter.StartsWithin = &iv
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListMine(ctx context.Context, userID string, page, pageSize int) ([]*Booking, int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, ErrInvalidUserID
	}
	return s.repo.List(ctx, Filter{UserID: userID, Page: page, PageSize: pageSize})
}
