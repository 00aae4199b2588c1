package pricing

import (
	"context"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
)

type Service interface {
	// ComputePrice loads the active rules and equipment rates and prices the
	// request. coach may be nil.
	ComputePrice(ctx context.Context, court *catalog.Court, coach *catalog.Coach, req catalog.EquipmentRequest, iv interval.Interval) (Breakdown, error)
}

type service struct {
	catalog catalog.Service
	zone    *interval.Zone
}

func NewService(cat catalog.Service, zone *interval.Zone) Service {
	return &service{catalog: cat, zone: zone}
}

func (s *service) ComputePrice(ctx context.Context, court *catalog.Court, coach *catalog.Coach, req catalog.EquipmentRequest, iv interval.Interval) (Breakdown, error) {
	rules, err := s.catalog.ListPricingRules(ctx)
	if err != nil {
		return Breakdown{}, err
	}
	table, err := s.catalog.EquipmentTable(ctx, req)
	if err != nil {
		return Breakdown{}, err
	}

	return Compute(Input{
		Court:     court,
		Coach:     coach,
		Request:   req,
		Interval:  iv,
		Equipment: table,
	}, rules, s.zone), nil
}
