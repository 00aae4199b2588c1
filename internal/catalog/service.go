package catalog

import (
	"context"
	"errors"
	"strings"
)

type Service interface {
	// ActiveCourt returns the court or ErrCourtNotFound / ErrCourtInactive.
	ActiveCourt(ctx context.Context, id string) (*Court, error)
	// ActiveCoach returns the coach or ErrCoachNotFound / ErrCoachInactive.
	ActiveCoach(ctx context.Context, id string) (*Coach, error)
	// Equipment returns the equipment type regardless of its active flag.
	Equipment(ctx context.Context, name EquipmentName) (*EquipmentType, error)
	// EquipmentTable loads the active equipment types named in req. Names
	// that are missing or disabled are left out.
	EquipmentTable(ctx context.Context, req EquipmentRequest) (map[EquipmentName]*EquipmentType, error)

	ListCourts(ctx context.Context) ([]*Court, error)
	ListCoaches(ctx context.Context) ([]*Coach, error)
	ListEquipment(ctx context.Context) ([]*EquipmentType, error)
	ListPricingRules(ctx context.Context) ([]*PricingRule, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ActiveCourt(ctx context.Context, id string) (*Court, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidCourtID
	}
	c, err := s.repo.GetCourt(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrCourtInactive
	}
	return c, nil
}

func (s *service) ActiveCoach(ctx context.Context, id string) (*Coach, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidCoachID
	}
	c, err := s.repo.GetCoach(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrCoachInactive
	}
	return c, nil
}

func (s *service) Equipment(ctx context.Context, name EquipmentName) (*EquipmentType, error) {
	if !name.Valid() {
		return nil, ErrUnknownEquipment
	}
	return s.repo.GetEquipment(ctx, name)
}

func (s *service) EquipmentTable(ctx context.Context, req EquipmentRequest) (map[EquipmentName]*EquipmentType, error) {
	table := make(map[EquipmentName]*EquipmentType)
	for _, name := range req.Requested() {
		e, err := s.Equipment(ctx, name)
		if err != nil {
			if errors.Is(err, ErrEquipmentNotFound) {
				continue
			}
			return nil, err
		}
		if e.IsActive {
			table[name] = e
		}
	}
	return table, nil
}

func (s *service) ListCourts(ctx context.Context) ([]*Court, error) {
	return s.repo.ListActiveCourts(ctx)
}

func (s *service) ListCoaches(ctx context.Context) ([]*Coach, error) {
	return s.repo.ListActiveCoaches(ctx)
}

func (s *service) ListEquipment(ctx context.Context) ([]*EquipmentType, error) {
	return s.repo.ListActiveEquipment(ctx)
}

func (s *service) ListPricingRules(ctx context.Context) ([]*PricingRule, error) {
	return s.repo.ListActivePricingRules(ctx)
}
