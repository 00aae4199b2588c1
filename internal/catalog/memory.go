package catalog

import (
	"context"
	"sort"
)

// Snapshot is a complete, in-memory copy of the catalog.
type Snapshot struct {
	Courts       []*Court
	Coaches      []*Coach
	Equipment    []*EquipmentType
	PricingRules []*PricingRule
}

// memoryRepository is never mutated after construction.
type memoryRepository struct {
	courts    map[string]*Court
	coaches   map[string]*Coach
	equipment map[EquipmentName]*EquipmentType
	rules     []*PricingRule
}

// NewMemoryRepository serves the catalog from a snapshot. Records are copied
// so later changes to the snapshot do not leak in.
func NewMemoryRepository(s Snapshot) Repository {
	courts := make(map[string]*Court, len(s.Courts))
	for _, c := range s.Courts {
		cp := *c
		courts[c.ID] = &cp
	}
	coaches := make(map[string]*Coach, len(s.Coaches))
	for _, c := range s.Coaches {
		cp := *c
		cp.Windows = append([]WeeklyWindow(nil), c.Windows...)
		coaches[c.ID] = &cp
	}
	equipment := make(map[EquipmentName]*EquipmentType, len(s.Equipment))
	for _, e := range s.Equipment {
		cp := *e
		equipment[e.Name] = &cp
	}
	rules := make([]*PricingRule, 0, len(s.PricingRules))
	for _, rule := range s.PricingRules {
		cp := *rule
		rules = append(rules, &cp)
	}
	SortRules(rules)

	return &memoryRepository{courts: courts, coaches: coaches, equipment: equipment, rules: rules}
}

func (r *memoryRepository) GetCourt(_ context.Context, id string) (*Court, error) {
	c, ok := r.courts[id]
	if !ok {
		return nil, ErrCourtNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memoryRepository) GetCoach(_ context.Context, id string) (*Coach, error) {
	c, ok := r.coaches[id]
	if !ok {
		return nil, ErrCoachNotFound
	}
	cp := *c
	cp.Windows = append([]WeeklyWindow(nil), c.Windows...)
	return &cp, nil
}

func (r *memoryRepository) GetEquipment(_ context.Context, name EquipmentName) (*EquipmentType, error) {
	e, ok := r.equipment[name]
	if !ok {
		return nil, ErrEquipmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memoryRepository) ListActiveCourts(_ context.Context) ([]*Court, error) {
	var out []*Court
	for _, c := range r.courts {
		if c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) ListActiveCoaches(_ context.Context) ([]*Coach, error) {
	var out []*Coach
	for _, c := range r.coaches {
		if c.IsActive {
			cp := *c
			cp.Windows = append([]WeeklyWindow(nil), c.Windows...)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) ListActiveEquipment(_ context.Context) ([]*EquipmentType, error) {
	var out []*EquipmentType
	for _, name := range EquipmentNames {
		if e, ok := r.equipment[name]; ok && e.IsActive {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryRepository) ListActivePricingRules(_ context.Context) ([]*PricingRule, error) {
	var out []*PricingRule
	for _, rule := range r.rules {
		if rule.IsActive {
			cp := *rule
			out = append(out, &cp)
		}
	}
	return out, nil
}
