package http

import (
	"time"

	"github.com/nekogravitycat/court-reservation/internal/availability"
)

type GridRequest struct {
	Date string `form:"date" binding:"required"`
}

type CourtTag struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	BasePrice float64 `json:"base_price"`
}

type SlotResponse struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Hour      string    `json:"hour"`
	Available bool      `json:"available"`
}

type CourtAvailabilityResponse struct {
	Court CourtTag       `json:"court"`
	Slots []SlotResponse `json:"slots"`
}

type GridResponse struct {
	Date     string                      `json:"date"`
	TimeZone string                      `json:"time_zone"`
	Courts   []CourtAvailabilityResponse `json:"courts"`
}

func NewGridResponse(g *availability.Grid) GridResponse {
	courts := make([]CourtAvailabilityResponse, len(g.Courts))
	for i, c := range g.Courts {
		slots := make([]SlotResponse, len(c.Slots))
		for j, s := range c.Slots {
			slots[j] = SlotResponse{
				StartTime: s.Start,
				EndTime:   s.End,
				Hour:      s.Label,
				Available: s.Available,
			}
		}
		courts[i] = CourtAvailabilityResponse{
			Court: CourtTag{
				ID:        c.Court.ID,
				Name:      c.Court.Name,
				Type:      string(c.Court.Type),
				BasePrice: c.Court.BasePrice,
			},
			Slots: slots,
		}
	}
	return GridResponse{Date: g.Date, TimeZone: g.TimeZone, Courts: courts}
}
