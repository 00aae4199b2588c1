package resource

import (
	"sort"
)

// Claim asks for Units of the resource identified by Key, which has
// Capacity units in total.
type Claim struct {
	Key      Key
	Units    int
	Capacity int
}

// NewClaim builds a claim for units of a.
func NewClaim(a Allocatable, units int) Claim {
	return Claim{
		Key:      a.ResourceKey(),
		Units:    units,
		Capacity: a.Capacity(),
	}
}

// Remaining is the capacity left once used units are taken out.
func (c Claim) Remaining(used int) int {
	return c.Capacity - used
}

// Fits reports whether the claim can be granted next to used units.
func (c Claim) Fits(used int) bool {
	return c.Units <= c.Remaining(used)
}

// Used sums the units of key held by holders. Callers pass only holders whose
// interval overlaps the one being claimed.
func Used[H Holder](key Key, holders []H) int {
	total := 0
	for _, h := range holders {
		total += h.UnitsOf(key)
	}
	return total
}

// UsageFunc reports the units of key already allocated over the claimed interval.
type UsageFunc func(key Key) (int, error)

// FirstUnfit evaluates claims in order and returns the first one that does
// not fit, or nil when all of them do.
func FirstUnfit(claims []Claim, usage UsageFunc) (*Claim, error) {
	for i := range claims {
		used, err := usage(claims[i].Key)
		if err != nil {
			return nil, err
		}
		if !claims[i].Fits(used) {
			return &claims[i], nil
		}
	}
	return nil, nil
}

// LockOrder returns the claims sorted by key. Acquiring per-resource locks in
// this order keeps concurrent commits from deadlocking each other.
func LockOrder(claims []Claim) []Claim {
	sorted := make([]Claim, len(claims))
	copy(sorted, claims)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key.String() < sorted[j].Key.String()
	})
	return sorted
}
