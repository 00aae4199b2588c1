package pricing

import (
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
)

// state is the accumulator threaded through the rule fold.
type state struct {
	running   float64
	breakdown Breakdown
}

// step applies one rule to s. Multipliers act on the already adjusted
// running price.
func step(s state, rule *catalog.PricingRule, rc catalog.RuleContext) state {
	if !rule.IsActive || rule.Condition == nil || !rule.Condition.Matches(rc) {
		return s
	}
	delta := rule.Modifier.Delta(s.running)
	s.running += delta
	switch rule.Kind() {
	case catalog.RulePeakHour:
		s.breakdown.PeakHourFee += delta
	case catalog.RuleWeekend:
		s.breakdown.WeekendFee += delta
	case catalog.RuleCourtType:
		s.breakdown.CourtTypeFee += delta
	}
	return s
}

// Compute prices in against rules. It has no side effects and does not
// reorder or mutate rules; callers pass them sorted with catalog.SortRules.
func Compute(in Input, rules []*catalog.PricingRule, zone *interval.Zone) Breakdown {
	rc := catalog.RuleContext{
		HourOfDay: zone.HourOfDay(in.Interval.Start),
		Weekday:   zone.Weekday(in.Interval.Start),
		CourtType: in.Court.Type,
	}

	s := state{running: in.Court.BasePrice}
	s.breakdown.BasePrice = in.Court.BasePrice
	for _, rule := range rules {
		s = step(s, rule, rc)
	}

	b := s.breakdown
	b.EquipmentFee = equipmentFee(in.Request, in.Equipment)
	if in.Coach != nil {
		b.CoachFee = in.Coach.PricePerHour * in.Interval.Hours()
	}
	b.Total = b.Sum()
	return b
}

func equipmentFee(req catalog.EquipmentRequest, table map[catalog.EquipmentName]*catalog.EquipmentType) float64 {
	fee := 0.0
	for _, name := range req.Requested() {
		if e, ok := table[name]; ok {
			fee += float64(req[name]) * e.PricePerUnit
		}
	}
	return fee
}
