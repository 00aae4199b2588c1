package http

import (
	"github.com/nekogravitycat/court-reservation/internal/catalog"
)

type CourtResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	BasePrice float64 `json:"base_price"`
}

func NewCourtResponse(c *catalog.Court) CourtResponse {
	return CourtResponse{ID: c.ID, Name: c.Name, Type: string(c.Type), BasePrice: c.BasePrice}
}

type WindowResponse struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type CoachResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	PricePerHour float64          `json:"price_per_hour"`
	Availability []WindowResponse `json:"availability"`
}

func NewCoachResponse(c *catalog.Coach) CoachResponse {
	windows := make([]WindowResponse, len(c.Windows))
	for i, w := range c.Windows {
		windows[i] = WindowResponse{
			Day:   w.Day.String(),
			Start: catalog.FormatClock(w.StartMinute),
			End:   catalog.FormatClock(w.EndMinute),
		}
	}
	return CoachResponse{ID: c.ID, Name: c.Name, PricePerHour: c.PricePerHour, Availability: windows}
}

type EquipmentResponse struct {
	Name         string  `json:"name"`
	TotalStock   int     `json:"total_stock"`
	PricePerUnit float64 `json:"price_per_unit"`
}

func NewEquipmentResponse(e *catalog.EquipmentType) EquipmentResponse {
	return EquipmentResponse{Name: string(e.Name), TotalStock: e.TotalStock, PricePerUnit: e.PricePerUnit}
}

type PricingRuleResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Conditions    map[string]any `json:"conditions"`
	ModifierType  string         `json:"modifier_type"`
	ModifierValue float64        `json:"modifier_value"`
	Priority      int            `json:"priority"`
}

func NewPricingRuleResponse(r *catalog.PricingRule) PricingRuleResponse {
	conditions := map[string]any{}
	switch c := r.Condition.(type) {
	case catalog.PeakHourCondition:
		conditions["start_hour"] = c.StartHour
		conditions["end_hour"] = c.EndHour
	case catalog.CourtTypeCondition:
		conditions["court_type"] = string(c.CourtType)
	}
	return PricingRuleResponse{
		ID:            r.ID,
		Name:          r.Name,
		Type:          string(r.Kind()),
		Conditions:    conditions,
		ModifierType:  string(r.Modifier.Type),
		ModifierValue: r.Modifier.Value,
		Priority:      r.Priority,
	}
}
