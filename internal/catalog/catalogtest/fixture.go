// Package catalogtest provides a small, fully populated catalog for tests.
package catalogtest

import (
	"time"

	"github.com/nekogravitycat/court-reservation/internal/catalog"
)

const (
	IndoorCourtID   = "6f1c2f86-0c39-4a53-9a71-1d0f3f7c1a01"
	OutdoorCourtID  = "6f1c2f86-0c39-4a53-9a71-1d0f3f7c1a02"
	ClosedCourtID   = "6f1c2f86-0c39-4a53-9a71-1d0f3f7c1a03"
	CoachID         = "a4b7e0d2-5d0e-4a8e-8f5e-2b8c1c9d0b01"
	RetiredCoachID  = "a4b7e0d2-5d0e-4a8e-8f5e-2b8c1c9d0b02"
	UnknownCourtID  = "00000000-0000-4000-8000-000000000000"
	RacketStock     = 4
	ShoesStock      = 2
	RacketUnitPrice = 3
	ShoesUnitPrice  = 2
)

// Snapshot returns a catalog with:
//   - an indoor court (base 30), an outdoor court (base 20) and an inactive court;
//   - a coach at 40/h available Saturday 08:00-20:00 and weekdays 16:00-22:00,
//     plus an inactive coach;
//   - rackets (stock 4, 3 each) and shoes (stock 2, 2 each);
//   - the rules peak_hour [18,21) x1.5 (p1), weekend +10 (p2), indoor +10 (p3).
func Snapshot() catalog.Snapshot {
	weekdays := []catalog.WeeklyWindow{}
	for d := time.Monday; d <= time.Friday; d++ {
		weekdays = append(weekdays, catalog.WeeklyWindow{Day: d, StartMinute: 16 * 60, EndMinute: 22 * 60})
	}

	return catalog.Snapshot{
		Courts: []*catalog.Court{
			{ID: IndoorCourtID, Name: "Court 1", Type: catalog.CourtIndoor, BasePrice: 30, IsActive: true},
			{ID: OutdoorCourtID, Name: "Court 2", Type: catalog.CourtOutdoor, BasePrice: 20, IsActive: true},
			{ID: ClosedCourtID, Name: "Court 3", Type: catalog.CourtOutdoor, BasePrice: 20, IsActive: false},
		},
		Coaches: []*catalog.Coach{
			{
				ID:           CoachID,
				Name:         "Alex",
				PricePerHour: 40,
				IsActive:     true,
				Windows: append([]catalog.WeeklyWindow{
					{Day: time.Saturday, StartMinute: 8 * 60, EndMinute: 20 * 60},
				}, weekdays...),
			},
			{ID: RetiredCoachID, Name: "Sam", PricePerHour: 35, IsActive: false},
		},
		Equipment: []*catalog.EquipmentType{
			{Name: catalog.Racket, TotalStock: RacketStock, PricePerUnit: RacketUnitPrice, IsActive: true},
			{Name: catalog.Shoes, TotalStock: ShoesStock, PricePerUnit: ShoesUnitPrice, IsActive: true},
		},
		PricingRules: Rules(),
	}
}

// Rules returns the three active pricing rules of the fixture.
func Rules() []*catalog.PricingRule {
	return []*catalog.PricingRule{
		{
			ID:        "rule-peak",
			Name:      "Evening peak",
			Condition: catalog.PeakHourCondition{StartHour: 18, EndHour: 21},
			Modifier:  catalog.Modifier{Type: catalog.ModifierMultiplier, Value: 1.5},
			Priority:  1,
			IsActive:  true,
		},
		{
			ID:        "rule-weekend",
			Name:      "Weekend surcharge",
			Condition: catalog.WeekendCondition{},
			Modifier:  catalog.Modifier{Type: catalog.ModifierFixed, Value: 10},
			Priority:  2,
			IsActive:  true,
		},
		{
			ID:        "rule-indoor",
			Name:      "Indoor surcharge",
			Condition: catalog.CourtTypeCondition{CourtType: catalog.CourtIndoor},
			Modifier:  catalog.Modifier{Type: catalog.ModifierFixed, Value: 10},
			Priority:  3,
			IsActive:  true,
		},
	}
}

// Service returns a catalog service backed by Snapshot.
func Service() catalog.Service {
	return catalog.NewService(catalog.NewMemoryRepository(Snapshot()))
}
