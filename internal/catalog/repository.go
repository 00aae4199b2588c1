package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the read side of the catalog. Getters return records in any
// state; List methods return active records only.
type Repository interface {
	GetCourt(ctx context.Context, id string) (*Court, error)
	GetCoach(ctx context.Context, id string) (*Coach, error)
	GetEquipment(ctx context.Context, name EquipmentName) (*EquipmentType, error)

	ListActiveCourts(ctx context.Context) ([]*Court, error)
	ListActiveCoaches(ctx context.Context) ([]*Coach, error)
	ListActiveEquipment(ctx context.Context) ([]*EquipmentType, error)
	// ListActivePricingRules returns rules ordered by ascending priority.
	ListActivePricingRules(ctx context.Context) ([]*PricingRule, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) GetCourt(ctx context.Context, id string) (*Court, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCourtNotFound
	}
	query, args, err := psql.Select("id", "name", "type", "base_price", "is_active").
		From("public.courts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get court query failed: %w", err)
	}

	var c Court
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.Name, &c.Type, &c.BasePrice, &c.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("get court failed: %w", err)
	}
	return &c, nil
}

func (r *pgxRepository) ListActiveCourts(ctx context.Context) ([]*Court, error) {
	query, args, err := psql.Select("id", "name", "type", "base_price", "is_active").
		From("public.courts").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list courts query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courts failed: %w", err)
	}
	defer rows.Close()

	var courts []*Court
	for rows.Next() {
		var c Court
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.BasePrice, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan court failed: %w", err)
		}
		courts = append(courts, &c)
	}
	return courts, rows.Err()
}

func (r *pgxRepository) GetCoach(ctx context.Context, id string) (*Coach, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCoachNotFound
	}
	query, args, err := psql.Select("id", "name", "price_per_hour", "is_active").
		From("public.coaches").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get coach query failed: %w", err)
	}

	var c Coach
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.Name, &c.PricePerHour, &c.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, fmt.Errorf("get coach failed: %w", err)
	}

	if err := r.loadWindows(ctx, []*Coach{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgxRepository) ListActiveCoaches(ctx context.Context) ([]*Coach, error) {
	query, args, err := psql.Select("id", "name", "price_per_hour", "is_active").
		From("public.coaches").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list coaches query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coaches failed: %w", err)
	}
	defer rows.Close()

	var coaches []*Coach
	for rows.Next() {
		var c Coach
		if err := rows.Scan(&c.ID, &c.Name, &c.PricePerHour, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan coach failed: %w", err)
		}
		coaches = append(coaches, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list coaches failed: %w", err)
	}

	if err := r.loadWindows(ctx, coaches); err != nil {
		return nil, err
	}
	return coaches, nil
}

// loadWindows fills in the weekly availability of the given coaches.
func (r *pgxRepository) loadWindows(ctx context.Context, coaches []*Coach) error {
	if len(coaches) == 0 {
		return nil
	}
	byID := make(map[string]*Coach, len(coaches))
	ids := make([]string, 0, len(coaches))
	for _, c := range coaches {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	query, args, err := psql.Select("coach_id", "day_of_week", "start_minute", "end_minute").
		From("public.coach_availability").
		Where(squirrel.Eq{"coach_id": ids}).
		OrderBy("coach_id", "day_of_week", "start_minute").
		ToSql()
	if err != nil {
		return fmt.Errorf("build list coach availability query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list coach availability failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			coachID string
			day     int16
			w       WeeklyWindow
		)
		if err := rows.Scan(&coachID, &day, &w.StartMinute, &w.EndMinute); err != nil {
			return fmt.Errorf("scan coach availability failed: %w", err)
		}
		w.Day = time.Weekday(day)
		if c, ok := byID[coachID]; ok {
			c.Windows = append(c.Windows, w)
		}
	}
	return rows.Err()
}

func (r *pgxRepository) GetEquipment(ctx context.Context, name EquipmentName) (*EquipmentType, error) {
	query, args, err := psql.Select("name", "total_stock", "price_per_unit", "is_active").
		From("public.equipment_types").
		Where(squirrel.Eq{"name": string(name)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get equipment query failed: %w", err)
	}

	var e EquipmentType
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&e.Name, &e.TotalStock, &e.PricePerUnit, &e.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("get equipment failed: %w", err)
	}
	return &e, nil
}

func (r *pgxRepository) ListActiveEquipment(ctx context.Context) ([]*EquipmentType, error) {
	query, args, err := psql.Select("name", "total_stock", "price_per_unit", "is_active").
		From("public.equipment_types").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list equipment query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list equipment failed: %w", err)
	}
	defer rows.Close()

	var items []*EquipmentType
	for rows.Next() {
		var e EquipmentType
		if err := rows.Scan(&e.Name, &e.TotalStock, &e.PricePerUnit, &e.IsActive); err != nil {
			return nil, fmt.Errorf("scan equipment failed: %w", err)
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

func (r *pgxRepository) ListActivePricingRules(ctx context.Context) ([]*PricingRule, error) {
	query, args, err := psql.Select(
		"id", "name", "kind", "peak_start_hour", "peak_end_hour", "court_type",
		"modifier_type", "modifier_value", "priority", "is_active",
	).
		From("public.pricing_rules").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("priority ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list pricing rules query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pricing rules failed: %w", err)
	}
	defer rows.Close()

	var rules []*PricingRule
	for rows.Next() {
		var (
			rule       PricingRule
			kind       RuleKind
			start, end *int32
			courtType  *string
		)
		if err := rows.Scan(
			&rule.ID, &rule.Name, &kind, &start, &end, &courtType,
			&rule.Modifier.Type, &rule.Modifier.Value, &rule.Priority, &rule.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan pricing rule failed: %w", err)
		}

		cond, err := conditionFromColumns(kind, start, end, courtType)
		if err != nil {
			return nil, fmt.Errorf("pricing rule %s: %w", rule.ID, err)
		}
		rule.Condition = cond
		rules = append(rules, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pricing rules failed: %w", err)
	}

	// Database collation can differ from Go string order on ties.
	SortRules(rules)
	return rules, nil
}

// conditionFromColumns rebuilds the typed condition stored in the kind's
// dedicated nullable columns.
func conditionFromColumns(kind RuleKind, start, end *int32, courtType *string) (Condition, error) {
	switch kind {
	case RulePeakHour:
		if start == nil || end == nil {
			return nil, errors.New("peak_hour rule without hours")
		}
		return PeakHourCondition{StartHour: int(*start), EndHour: int(*end)}, nil
	case RuleWeekend:
		return WeekendCondition{}, nil
	case RuleCourtType:
		if courtType == nil {
			return nil, errors.New("court_type rule without court type")
		}
		return CourtTypeCondition{CourtType: CourtType(*courtType)}, nil
	default:
		return nil, fmt.Errorf("unknown rule kind %q", kind)
	}
}
