package http

import (
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/court-reservation/internal/booking"
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/pkg/request"
	"github.com/nekogravitycat/court-reservation/internal/pricing"
)

// ValidateEquipment backs the "equipment" binding tag: every key must be a
// known equipment name and every quantity non-negative.
func ValidateEquipment(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	iter := field.MapRange()
	for iter.Next() {
		if !catalog.EquipmentName(iter.Key().String()).Valid() {
			return false
		}
		if iter.Value().Int() < 0 {
			return false
		}
	}
	return true
}

// ReservationBody is shared by quotes and bookings.
type ReservationBody struct {
	CourtID   string                   `json:"court_id" binding:"required,uuid"`
	CoachID   string                   `json:"coach_id" binding:"omitempty,uuid"`
	Equipment catalog.EquipmentRequest `json:"equipment" binding:"omitempty,equipment"`
	StartTime time.Time                `json:"start_time" binding:"required"`
	EndTime   time.Time                `json:"end_time" binding:"required"`
}

// ToRequest performs the checks binding tags cannot express.
func (b *ReservationBody) ToRequest() (booking.Request, error) {
	iv, err := interval.New(b.StartTime, b.EndTime)
	if err != nil {
		return booking.Request{}, booking.ErrInvalidTimeRange
	}
	return booking.Request{
		CourtID:   b.CourtID,
		CoachID:   b.CoachID,
		Equipment: b.Equipment,
		Interval:  iv,
	}, nil
}

type PriceResponse struct {
	BasePrice    float64 `json:"base_price"`
	PeakHourFee  float64 `json:"peak_hour_fee"`
	WeekendFee   float64 `json:"weekend_fee"`
	CourtTypeFee float64 `json:"court_type_fee"`
	EquipmentFee float64 `json:"equipment_fee"`
	CoachFee     float64 `json:"coach_fee"`
	Total        float64 `json:"total"`
}

func NewPriceResponse(p pricing.Breakdown) PriceResponse {
	return PriceResponse{
		BasePrice:    p.BasePrice,
		PeakHourFee:  p.PeakHourFee,
		WeekendFee:   p.WeekendFee,
		CourtTypeFee: p.CourtTypeFee,
		EquipmentFee: p.EquipmentFee,
		CoachFee:     p.CoachFee,
		Total:        p.Total,
	}
}

type BookingResponse struct {
	ID               string                        `json:"id"`
	UserID           string                        `json:"user_id"`
	CourtID          string                        `json:"court_id"`
	CoachID          *string                       `json:"coach_id"`
	Equipment        map[catalog.EquipmentName]int `json:"equipment"`
	StartTime        time.Time                     `json:"start_time"`
	EndTime          time.Time                     `json:"end_time"`
	Status           string                        `json:"status"`
	PricingBreakdown PriceResponse                 `json:"pricing_breakdown"`
	Revision         int                           `json:"revision"`
	CreatedAt        time.Time                     `json:"created_at"`
	UpdatedAt        time.Time                     `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	var coachID *string
	if b.Allocation.CoachID != "" {
		id := b.Allocation.CoachID
		coachID = &id
	}
	equipment := make(map[catalog.EquipmentName]int, len(catalog.EquipmentNames))
	for _, name := range catalog.EquipmentNames {
		equipment[name] = b.Allocation.Equipment[name]
	}
	return BookingResponse{
		ID:               b.ID,
		UserID:           b.UserID,
		CourtID:          b.CourtID,
		CoachID:          coachID,
		Equipment:        equipment,
		StartTime:        b.Interval.Start,
		EndTime:          b.Interval.End,
		Status:           string(b.Status),
		PricingBreakdown: NewPriceResponse(b.Price),
		Revision:         b.Revision,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// ListBookingsRequest defines query parameters for the admin listing.
type ListBookingsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=confirmed cancelled"`
	Date   string `form:"date"`
}
