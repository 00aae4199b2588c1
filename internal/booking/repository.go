package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/court-reservation/internal/availability"
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/resource"
)

// Repository is the booking ledger.
type Repository interface {
	// FindOverlapping returns the confirmed bookings holding key over any
	// instant of iv.
	FindOverlapping(ctx context.Context, key resource.Key, iv interval.Interval) ([]*Booking, error)
	// Insert stores a confirmed booking after re-checking every claim against
	// the committed ledger in the same atomic step. A claim that no longer
	// fits fails with a persistence conflict and nothing is written.
	Insert(ctx context.Context, b *Booking, claims []resource.Claim) error
	// SetStatus moves a booking to status if its revision still equals
	// expectedRevision, and bumps the revision.
	SetStatus(ctx context.Context, id string, status Status, expectedRevision int) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
}

// commitConflict reports the claim that lost a commit race.
func commitConflict(c resource.Claim) error {
	return apperror.Wrap(
		&availability.Conflict{Resource: c.Key, Reason: ErrCommitConflict.Message},
		http.StatusConflict, apperror.KindPersistence, ErrCommitConflict.Message,
	)
}

// transition classifies a status change that was not applied.
func transition(current *Booking, status Status, expectedRevision int) error {
	switch {
	case current.Status == status && status == StatusCancelled:
		return ErrAlreadyCancelled
	case current.Status == status:
		return ErrInvalidTransition
	case current.Status == StatusCancelled:
		return ErrInvalidTransition
	case current.Revision != expectedRevision:
		return ErrStaleRevision
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.user_id", "b.court_id", "b.coach_id", "b.start_time", "b.end_time", "b.status",
	"b.base_price", "b.peak_hour_fee", "b.weekend_fee", "b.court_type_fee", "b.equipment_fee", "b.coach_fee", "b.total",
	"b.revision", "b.created_at", "b.updated_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var (
		b       Booking
		coachID *string
	)
	dest := []any{
		&b.ID, &b.UserID, &b.CourtID, &coachID, &b.Interval.Start, &b.Interval.End, &b.Status,
		&b.Price.BasePrice, &b.Price.PeakHourFee, &b.Price.WeekendFee, &b.Price.CourtTypeFee,
		&b.Price.EquipmentFee, &b.Price.CoachFee, &b.Price.Total,
		&b.Revision, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if coachID != nil {
		b.Allocation.CoachID = *coachID
	}
	b.Allocation.Equipment = catalog.EquipmentRequest{}
	return &b, nil
}

// overlapping restricts a query on bookings b to confirmed rows overlapping iv.
func overlapping(q squirrel.SelectBuilder, iv interval.Interval) squirrel.SelectBuilder {
	return q.
		Where(squirrel.Eq{"b.status": StatusConfirmed}).
		Where(squirrel.Lt{"b.start_time": iv.End}).
		Where(squirrel.Gt{"b.end_time": iv.Start})
}

// heldBy restricts a query on bookings b to rows holding key.
func heldBy(q squirrel.SelectBuilder, key resource.Key) (squirrel.SelectBuilder, error) {
	switch key.Kind {
	case resource.KindCourt:
		return q.Where(squirrel.Eq{"b.court_id": key.ID}), nil
	case resource.KindCoach:
		return q.Where(squirrel.Eq{"b.coach_id": key.ID}), nil
	case resource.KindEquipment:
		return q.Join("public.booking_equipment be ON be.booking_id = b.id").
			Where(squirrel.Eq{"be.equipment": key.ID}), nil
	}
	return q, fmt.Errorf("unknown resource kind %q", key.Kind)
}

func (r *pgxRepository) FindOverlapping(ctx context.Context, key resource.Key, iv interval.Interval) ([]*Booking, error) {
	q, err := heldBy(overlapping(psql.Select(bookingColumns...).From("public.bookings b"), iv), key)
	if err != nil {
		return nil, err
	}
	query, args, err := q.OrderBy("b.start_time ASC", "b.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find overlapping query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find overlapping bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find overlapping bookings failed: %w", err)
	}

	if err := loadEquipment(ctx, r.pool, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// loadEquipment fills in the equipment allocations of bookings.
func loadEquipment(ctx context.Context, q querier, bookings []*Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	byID := make(map[string]*Booking, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	query, args, err := psql.Select("booking_id", "equipment", "quantity").
		From("public.booking_equipment").
		Where(squirrel.Eq{"booking_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build list booking equipment query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list booking equipment failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookingID string
			name      catalog.EquipmentName
			qty       int
		)
		if err := rows.Scan(&bookingID, &name, &qty); err != nil {
			return fmt.Errorf("scan booking equipment failed: %w", err)
		}
		if b, ok := byID[bookingID]; ok {
			b.Allocation.Equipment[name] = qty
		}
	}
	return rows.Err()
}

// usedUnits sums the units of key held by confirmed bookings overlapping iv.
func usedUnits(ctx context.Context, q querier, key resource.Key, iv interval.Interval) (int, error) {
	units := "count(*)"
	if key.Kind == resource.KindEquipment {
		units = "COALESCE(SUM(be.quantity), 0)"
	}
	sel, err := heldBy(overlapping(psql.Select(units).From("public.bookings b"), iv), key)
	if err != nil {
		return 0, err
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build used units query failed: %w", err)
	}

	var used int64
	if err := q.QueryRow(ctx, query, args...).Scan(&used); err != nil {
		return 0, fmt.Errorf("count used units of %s failed: %w", key, err)
	}
	return int(used), nil
}

func (r *pgxRepository) Insert(ctx context.Context, b *Booking, claims []resource.Claim) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert booking failed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Serialize commits per resource. Locks are taken in a global order and
	// released when the transaction ends.
	for _, c := range resource.LockOrder(claims) {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", c.Key.String()); err != nil {
			return classify(fmt.Errorf("lock %s failed: %w", c.Key, err))
		}
	}

	unfit, err := resource.FirstUnfit(claims, func(key resource.Key) (int, error) {
		return usedUnits(ctx, tx, key, b.Interval)
	})
	if err != nil {
		return classify(err)
	}
	if unfit != nil {
		return commitConflict(*unfit)
	}

	var coachID *string
	if b.Allocation.CoachID != "" {
		coachID = &b.Allocation.CoachID
	}
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"user_id", "court_id", "coach_id", "start_time", "end_time", "status",
			"base_price", "peak_hour_fee", "weekend_fee", "court_type_fee", "equipment_fee", "coach_fee", "total",
			"revision",
		).
		Values(
			b.UserID, b.CourtID, coachID, b.Interval.Start, b.Interval.End, StatusConfirmed,
			b.Price.BasePrice, b.Price.PeakHourFee, b.Price.WeekendFee, b.Price.CourtTypeFee,
			b.Price.EquipmentFee, b.Price.CoachFee, b.Price.Total,
			1,
		).
		Suffix("RETURNING id, revision, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Revision, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return classify(fmt.Errorf("insert booking failed: %w", err))
	}

	if names := b.Allocation.Equipment.Requested(); len(names) > 0 {
		ins := psql.Insert("public.booking_equipment").Columns("booking_id", "equipment", "quantity")
		for _, name := range names {
			ins = ins.Values(b.ID, string(name), b.Allocation.Equipment[name])
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert booking equipment query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return classify(fmt.Errorf("insert booking equipment failed: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit booking failed: %w", err))
	}
	b.Status = StatusConfirmed
	return nil
}

// classify maps database errors that mean "a concurrent commit won" to
// ErrCommitConflict.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation,
			pgerrcode.SerializationFailure,
			pgerrcode.DeadlockDetected,
			pgerrcode.LockNotAvailable:
			return apperror.Wrap(err, http.StatusConflict, apperror.KindPersistence, ErrCommitConflict.Message)
		}
	}
	return err
}

func (r *pgxRepository) SetStatus(ctx context.Context, id string, status Status, expectedRevision int) (*Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	query, args, err := psql.Update("public.bookings b").
		Set("status", status).
		Set("revision", squirrel.Expr("b.revision + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"b.id": id}).
		Where(squirrel.Eq{"b.revision": expectedRevision}).
		Where(squirrel.Eq{"b.status": StatusConfirmed}).
		Where(squirrel.NotEq{"b.status": status}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update booking status query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		if err := loadEquipment(ctx, r.pool, []*Booking{b}); err != nil {
			return nil, err
		}
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking status failed: %w", err)
	}

	// Nothing matched: find out why.
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(current, status, expectedRevision); err != nil {
		return nil, err
	}
	return nil, ErrStaleRevision
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	if err := loadEquipment(ctx, r.pool, []*Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := psql.Select(append(bookingColumns, "count(*) OVER() as total_count")...).
		From("public.bookings b")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if iv := filter.StartsWithin; iv != nil {
		query = query.
			Where(squirrel.GtOrEq{"b.start_time": iv.Start}).
			Where(squirrel.Lt{"b.start_time": iv.End})
	}

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.
		OrderBy("b.start_time DESC", "b.id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var (
		bookings []*Booking
		total    int
	)
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	if err := loadEquipment(ctx, r.pool, bookings); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}
