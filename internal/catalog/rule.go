package catalog

import (
	"fmt"
	"sort"
	"time"
)

type RuleKind string

const (
	RulePeakHour  RuleKind = "peak_hour"
	RuleWeekend   RuleKind = "weekend"
	RuleCourtType RuleKind = "court_type"
)

type ModifierType string

const (
	ModifierMultiplier ModifierType = "multiplier"
	ModifierFixed      ModifierType = "fixed"
)

// Modifier adjusts a running price.
type Modifier struct {
	Type  ModifierType
	Value float64
}

// Delta is the amount the modifier adds to running.
func (m Modifier) Delta(running float64) float64 {
	switch m.Type {
	case ModifierMultiplier:
		return running * (m.Value - 1)
	case ModifierFixed:
		return m.Value
	default:
		return 0
	}
}

// RuleContext carries the facts a pricing rule condition is evaluated on.
type RuleContext struct {
	HourOfDay int
	Weekday   time.Weekday
	CourtType CourtType
}

// Condition is the typed predicate of a pricing rule. The set of
// implementations is closed to this package.
type Condition interface {
	Kind() RuleKind
	Matches(ctx RuleContext) bool
	condition()
}

// PeakHourCondition matches when the booking starts in [StartHour, EndHour).
type PeakHourCondition struct {
	StartHour int
	EndHour   int
}

func (PeakHourCondition) Kind() RuleKind { return RulePeakHour }
func (PeakHourCondition) condition()     {}

func (c PeakHourCondition) Matches(ctx RuleContext) bool {
	return ctx.HourOfDay >= c.StartHour && ctx.HourOfDay < c.EndHour
}

// WeekendCondition matches bookings starting on Saturday or Sunday.
type WeekendCondition struct{}

func (WeekendCondition) Kind() RuleKind { return RuleWeekend }
func (WeekendCondition) condition()     {}

func (WeekendCondition) Matches(ctx RuleContext) bool {
	return ctx.Weekday == time.Saturday || ctx.Weekday == time.Sunday
}

// CourtTypeCondition matches courts of one type.
type CourtTypeCondition struct {
	CourtType CourtType
}

func (CourtTypeCondition) Kind() RuleKind { return RuleCourtType }
func (CourtTypeCondition) condition()     {}

func (c CourtTypeCondition) Matches(ctx RuleContext) bool {
	return ctx.CourtType == c.CourtType
}

// PricingRule adjusts the court price when its condition holds. Rules are
// applied in ascending Priority.
type PricingRule struct {
	ID        string
	Name      string
	Condition Condition
	Modifier  Modifier
	Priority  int
	IsActive  bool
}

func (r *PricingRule) Kind() RuleKind {
	return r.Condition.Kind()
}

// Validate checks the rule's payload is well formed.
func (r *PricingRule) Validate() error {
	if r.Condition == nil {
		return fmt.Errorf("pricing rule %q: missing condition", r.ID)
	}
	switch c := r.Condition.(type) {
	case PeakHourCondition:
		if c.StartHour < 0 || c.EndHour > 24 || c.StartHour >= c.EndHour {
			return fmt.Errorf("pricing rule %q: invalid peak hours [%d, %d)", r.ID, c.StartHour, c.EndHour)
		}
	case CourtTypeCondition:
		if !c.CourtType.Valid() {
			return fmt.Errorf("pricing rule %q: invalid court type %q", r.ID, c.CourtType)
		}
	}
	if r.Modifier.Type != ModifierMultiplier && r.Modifier.Type != ModifierFixed {
		return fmt.Errorf("pricing rule %q: invalid modifier type %q", r.ID, r.Modifier.Type)
	}
	if r.Modifier.Value < 0 {
		return fmt.Errorf("pricing rule %q: modifier value cannot be negative", r.ID)
	}
	return nil
}

// SortRules orders rules by ascending priority. Ties are broken by ID so the
// order never depends on storage.
func SortRules(rules []*PricingRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
}
