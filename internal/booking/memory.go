package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

type memoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	now      func() time.Time
}

// NewMemoryRepository returns a process-local ledger. Inserts are serialized
// so the commit-time recheck sees every earlier commit.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		bookings: make(map[string]*Booking),
		now:      time.Now,
	}
}

func (r *memoryRepository) overlapping(key resource.Key, iv interval.Interval) []*Booking {
	var out []*Booking
	for _, b := range r.bookings {
		if b.Interval.Overlaps(iv) && b.UnitsOf(key) > 0 {
			out = append(out, b)
		}
	}
	return out
}

func (r *memoryRepository) FindOverlapping(_ context.Context, key resource.Key, iv interval.Interval) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := r.overlapping(key, iv)
	out := make([]*Booking, len(found))
	for i, b := range found {
		out[i] = b.Clone()
	}
	sortByStart(out)
	return out, nil
}

func (r *memoryRepository) Insert(_ context.Context, b *Booking, claims []resource.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	unfit, err := resource.FirstUnfit(claims, func(key resource.Key) (int, error) {
		return resource.Used(key, r.overlapping(key, b.Interval)), nil
	})
	if err != nil {
		return err
	}
	if unfit != nil {
		return commitConflict(*unfit)
	}

	now := r.now()
	b.ID = uuid.NewString()
	b.Status = StatusConfirmed
	b.Revision = 1
	b.CreatedAt = now
	b.UpdatedAt = now
	r.bookings[b.ID] = b.Clone()
	return nil
}

func (r *memoryRepository) SetStatus(_ context.Context, id string, status Status, expectedRevision int) (*Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := transition(current, status, expectedRevision); err != nil {
		return nil, err
	}

	current.Status = status
	current.Revision++
	current.UpdatedAt = r.now()
	return current.Clone(), nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

func (r *memoryRepository) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.RLock()
	var matched []*Booking
	for _, b := range r.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if iv := filter.StartsWithin; iv != nil && (b.Interval.Start.Before(iv.Start) || !b.Interval.Start.Before(iv.End)) {
			continue
		}
		matched = append(matched, b.Clone())
	}
	r.mu.RUnlock()

	// Newest first, like the database listing.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Interval.Start.Equal(matched[j].Interval.Start) {
			return matched[i].Interval.Start.After(matched[j].Interval.Start)
		}
		return matched[i].ID < matched[j].ID
	})

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []*Booking{}, total, nil
	}
	end := min(start+filter.PageSize, total)
	return matched[start:end], total, nil
}

func sortByStart(bookings []*Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].Interval.Start.Equal(bookings[j].Interval.Start) {
			return bookings[i].Interval.Start.Before(bookings[j].Interval.Start)
		}
		return bookings[i].ID < bookings[j].ID
	})
}
