package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type fileCatalog struct {
	Courts       []fileCourt     `yaml:"courts"`
	Coaches      []fileCoach     `yaml:"coaches"`
	Equipment    []fileEquipment `yaml:"equipment"`
	PricingRules []fileRule      `yaml:"pricing_rules"`
}

type fileCourt struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"`
	BasePrice float64 `yaml:"base_price"`
	Active    *bool   `yaml:"active"`
}

type fileWindow struct {
	Day   string `yaml:"day"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type fileCoach struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	PricePerHour float64      `yaml:"price_per_hour"`
	Availability []fileWindow `yaml:"availability"`
	Active       *bool        `yaml:"active"`
}

type fileEquipment struct {
	Name         string  `yaml:"name"`
	TotalStock   int     `yaml:"total_stock"`
	PricePerUnit float64 `yaml:"price_per_unit"`
	Active       *bool   `yaml:"active"`
}

type fileRule struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Type          string    `yaml:"type"`
	Conditions    yaml.Node `yaml:"conditions"`
	ModifierType  string    `yaml:"modifier_type"`
	ModifierValue float64   `yaml:"modifier_value"`
	Priority      int       `yaml:"priority"`
	Active        *bool     `yaml:"active"`
}

type peakHourPayload struct {
	StartHour *int `yaml:"start_hour"`
	EndHour   *int `yaml:"end_hour"`
}

type courtTypePayload struct {
	CourtType string `yaml:"court_type"`
}

// LoadFile reads a YAML catalog snapshot from path.
func LoadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses and validates a YAML catalog snapshot.
func Decode(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read catalog: %w", err)
	}

	var fc fileCatalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return Snapshot{}, fmt.Errorf("decode catalog: %w", err)
	}

	var s Snapshot
	for _, c := range fc.Courts {
		court := &Court{
			ID:        c.ID,
			Name:      c.Name,
			Type:      CourtType(c.Type),
			BasePrice: c.BasePrice,
			IsActive:  active(c.Active),
		}
		if court.ID == "" || !court.Type.Valid() || court.BasePrice < 0 {
			return Snapshot{}, fmt.Errorf("court %q: id, valid type and non-negative base_price are required", c.ID)
		}
		s.Courts = append(s.Courts, court)
	}

	for _, c := range fc.Coaches {
		coach := &Coach{
			ID:           c.ID,
			Name:         c.Name,
			PricePerHour: c.PricePerHour,
			IsActive:     active(c.Active),
		}
		if coach.ID == "" || coach.PricePerHour < 0 {
			return Snapshot{}, fmt.Errorf("coach %q: id and non-negative price_per_hour are required", c.ID)
		}
		for _, w := range c.Availability {
			window, err := parseWindow(w)
			if err != nil {
				return Snapshot{}, fmt.Errorf("coach %q: %w", c.ID, err)
			}
			coach.Windows = append(coach.Windows, window)
		}
		SortWindows(coach.Windows)
		s.Coaches = append(s.Coaches, coach)
	}

	for _, e := range fc.Equipment {
		item := &EquipmentType{
			Name:         EquipmentName(e.Name),
			TotalStock:   e.TotalStock,
			PricePerUnit: e.PricePerUnit,
			IsActive:     active(e.Active),
		}
		if !item.Name.Valid() || item.TotalStock < 0 || item.PricePerUnit < 0 {
			return Snapshot{}, fmt.Errorf("equipment %q: known name, non-negative stock and price are required", e.Name)
		}
		s.Equipment = append(s.Equipment, item)
	}

	for _, fr := range fc.PricingRules {
		rule, err := parseRule(fr)
		if err != nil {
			return Snapshot{}, err
		}
		s.PricingRules = append(s.PricingRules, rule)
	}
	SortRules(s.PricingRules)

	return s, nil
}

func parseWindow(w fileWindow) (WeeklyWindow, error) {
	day, err := ParseWeekday(w.Day)
	if err != nil {
		return WeeklyWindow{}, err
	}
	start, err := ParseClock(w.Start)
	if err != nil {
		return WeeklyWindow{}, err
	}
	end, err := ParseClock(w.End)
	if err != nil {
		return WeeklyWindow{}, err
	}
	if start >= end {
		return WeeklyWindow{}, fmt.Errorf("window %s %s-%s: start must be before end", w.Day, w.Start, w.End)
	}
	return WeeklyWindow{Day: day, StartMinute: start, EndMinute: end}, nil
}

func parseRule(fr fileRule) (*PricingRule, error) {
	rule := &PricingRule{
		ID:       fr.ID,
		Name:     fr.Name,
		Modifier: Modifier{Type: ModifierType(fr.ModifierType), Value: fr.ModifierValue},
		Priority: fr.Priority,
		IsActive: active(fr.Active),
	}

	switch RuleKind(fr.Type) {
	case RulePeakHour:
		var p peakHourPayload
		if err := decodeConditions(fr, &p); err != nil {
			return nil, err
		}
		if p.StartHour == nil || p.EndHour == nil {
			return nil, fmt.Errorf("pricing rule %q: start_hour and end_hour are required", fr.ID)
		}
		rule.Condition = PeakHourCondition{StartHour: *p.StartHour, EndHour: *p.EndHour}
	case RuleWeekend:
		rule.Condition = WeekendCondition{}
	case RuleCourtType:
		var p courtTypePayload
		if err := decodeConditions(fr, &p); err != nil {
			return nil, err
		}
		rule.Condition = CourtTypeCondition{CourtType: CourtType(p.CourtType)}
	default:
		return nil, fmt.Errorf("pricing rule %q: unknown type %q", fr.ID, fr.Type)
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

func decodeConditions(fr fileRule, dst any) error {
	if fr.Conditions.IsZero() {
		return fmt.Errorf("pricing rule %q: conditions are required", fr.ID)
	}
	if err := fr.Conditions.Decode(dst); err != nil {
		return fmt.Errorf("pricing rule %q: invalid conditions: %w", fr.ID, err)
	}
	return nil
}

func active(v *bool) bool {
	return v == nil || *v
}
