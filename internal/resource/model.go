package resource

import (
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
)

// Kind names a class of bookable resource.
type Kind string

const (
	KindCourt     Kind = "court"
	KindCoach     Kind = "coach"
	KindEquipment Kind = "equipment"
)

// Key identifies one resource across kinds (e.g. court:<uuid>, equipment:racket).
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.ID
}

func CourtKey(id string) Key     { return Key{Kind: KindCourt, ID: id} }
func CoachKey(id string) Key     { return Key{Kind: KindCoach, ID: id} }
func EquipmentKey(id string) Key { return Key{Kind: KindEquipment, ID: id} }

// Allocatable is a bookable resource with a fixed number of units available
// at any instant. Courts and coaches have one unit, equipment types have
// their total stock.
type Allocatable interface {
	ResourceKey() Key
	Capacity() int
	// Admits reports whether iv lies inside the resource's bookable hours.
	Admits(iv interval.Interval, zone *interval.Zone) bool
}

// Holder is anything that keeps units of resources allocated, typically a
// confirmed booking.
type Holder interface {
	UnitsOf(key Key) int
}

// Allocation is a Holder pinned to the interval it holds its units over.
type Allocation interface {
	Holder
	Span() interval.Interval
}
