package pricing

import (
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
)

// Breakdown itemizes a booking price. Total is always the sum of the other
// fields.
type Breakdown struct {
	BasePrice    float64
	PeakHourFee  float64
	WeekendFee   float64
	CourtTypeFee float64
	EquipmentFee float64
	CoachFee     float64
	Total        float64
}

// Sum adds the fee fields in their declared order.
func (b Breakdown) Sum() float64 {
	return b.BasePrice + b.PeakHourFee + b.WeekendFee + b.CourtTypeFee + b.EquipmentFee + b.CoachFee
}

// Input is everything a price depends on besides the rule set.
type Input struct {
	Court    *catalog.Court
	Coach    *catalog.Coach // nil when no coach is booked
	Request  catalog.EquipmentRequest
	Interval interval.Interval
	// Equipment holds the priced equipment types. Requested names missing
	// from it contribute nothing.
	Equipment map[catalog.EquipmentName]*catalog.EquipmentType
}
