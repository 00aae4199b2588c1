package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

var (
	ErrInvalidCourtID    = apperror.Validation("invalid court id")
	ErrInvalidCoachID    = apperror.Validation("invalid coach id")
	ErrCourtNotFound     = apperror.NotFound("court not found")
	ErrCourtInactive     = apperror.Inactive("court is inactive")
	ErrCoachNotFound     = apperror.NotFound("coach not found")
	ErrCoachInactive     = apperror.Inactive("coach is inactive")
	ErrEquipmentNotFound = apperror.NotFound("equipment type not found")
	ErrUnknownEquipment  = apperror.Validation("unknown equipment type")
	ErrNegativeQuantity  = apperror.Validation("equipment quantity cannot be negative")
)

type CourtType string

const (
	CourtIndoor  CourtType = "indoor"
	CourtOutdoor CourtType = "outdoor"
)

func (t CourtType) Valid() bool {
	return t == CourtIndoor || t == CourtOutdoor
}

// Court is a bookable playing surface.
type Court struct {
	ID        string
	Name      string
	Type      CourtType
	BasePrice float64
	IsActive  bool
}

func (c *Court) ResourceKey() resource.Key { return resource.CourtKey(c.ID) }
func (c *Court) Capacity() int             { return 1 }

// Admits always holds: courts are bookable around the clock.
func (c *Court) Admits(interval.Interval, *interval.Zone) bool { return true }

// WeeklyWindow is a recurring slot of coach availability on one weekday,
// expressed in minutes from local midnight.
type WeeklyWindow struct {
	Day         time.Weekday
	StartMinute int
	EndMinute   int
}

// Contains reports whether [start, end) on day lies inside the window.
func (w WeeklyWindow) Contains(day time.Weekday, start, end int) bool {
	return day == w.Day && start >= w.StartMinute && end <= w.EndMinute
}

// Coach is a bookable instructor with weekly availability windows.
type Coach struct {
	ID           string
	Name         string
	PricePerHour float64
	Windows      []WeeklyWindow
	IsActive     bool
}

func (c *Coach) ResourceKey() resource.Key { return resource.CoachKey(c.ID) }
func (c *Coach) Capacity() int             { return 1 }

// Admits reports whether iv is contained in one of the coach's weekly
// windows. Containment is judged on the start's local weekday; an interval
// running past local midnight only fits a window ending at 24:00.
func (c *Coach) Admits(iv interval.Interval, zone *interval.Zone) bool {
	day := zone.Weekday(iv.Start)
	start, end := zone.LocalMinutes(iv)
	for _, w := range c.Windows {
		if w.Contains(day, start, end) {
			return true
		}
	}
	return false
}

type EquipmentName string

const (
	Racket EquipmentName = "racket"
	Shoes  EquipmentName = "shoes"
)

// EquipmentNames is the closed set of rentable equipment, in canonical order.
var EquipmentNames = []EquipmentName{Racket, Shoes}

func (n EquipmentName) Valid() bool {
	for _, v := range EquipmentNames {
		if n == v {
			return true
		}
	}
	return false
}

// EquipmentType is a pool of identical rentable items.
type EquipmentType struct {
	Name         EquipmentName
	TotalStock   int
	PricePerUnit float64
	IsActive     bool
}

func (e *EquipmentType) ResourceKey() resource.Key { return resource.EquipmentKey(string(e.Name)) }
func (e *EquipmentType) Capacity() int             { return e.TotalStock }

func (e *EquipmentType) Admits(interval.Interval, *interval.Zone) bool { return true }

// EquipmentRequest maps equipment to requested quantity.
type EquipmentRequest map[EquipmentName]int

// Validate rejects names outside the closed set and negative quantities.
func (r EquipmentRequest) Validate() error {
	for name, qty := range r {
		if !name.Valid() {
			return ErrUnknownEquipment
		}
		if qty < 0 {
			return ErrNegativeQuantity
		}
	}
	return nil
}

// Requested lists the names with a positive quantity in canonical order.
func (r EquipmentRequest) Requested() []EquipmentName {
	var names []EquipmentName
	for _, n := range EquipmentNames {
		if r[n] > 0 {
			names = append(names, n)
		}
	}
	return names
}

// Clone drops zero quantities.
func (r EquipmentRequest) Clone() EquipmentRequest {
	out := make(EquipmentRequest, len(r))
	for _, n := range r.Requested() {
		out[n] = r[n]
	}
	return out
}

// ParseClock parses "HH:MM" (24h) into minutes from midnight. "24:00" is
// accepted as the end of day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseWeekday accepts English weekday names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// SortWindows orders windows by weekday then start.
func SortWindows(ws []WeeklyWindow) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Day != ws[j].Day {
			return ws[i].Day < ws[j].Day
		}
		return ws[i].StartMinute < ws[j].StartMinute
	})
}
