package booking

import (
	"context"

	"github.com/nekogravitycat/court-reservation/internal/availability"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

type ledgerView struct {
	repo Repository
}

// LedgerView exposes the confirmed bookings of repo to the availability
// checker.
func LedgerView(repo Repository) availability.Ledger {
	return ledgerView{repo: repo}
}

func (v ledgerView) FindOverlapping(ctx context.Context, key resource.Key, iv interval.Interval) ([]resource.Allocation, error) {
	bookings, err := v.repo.FindOverlapping(ctx, key, iv)
	if err != nil {
		return nil, err
	}
	out := make([]resource.Allocation, len(bookings))
	for i, b := range bookings {
		out[i] = b
	}
	return out, nil
}
