package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/google/uuid"
)

const (
	usageColumns = `id, user_id, feature, period_month, count, created_at, deleted_at`
)

type usageRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewUsageRepository(db *sql.DB) domain.UsageRepository {
	return &usageRepository{db: db, now: time.Now}
}

func (r *usageRepository) FindOrCreate(ctx context.Context, userID uuid.UUID, feature domain.FeatureType, periodMonth time.Time) (*domain.Usage, error) {
	usage, err := r.findByPeriod(ctx, userID, feature, periodMonth)
	if err == nil {
		return usage, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	query := `
		INSERT INTO usage (id, user_id, feature, period_month, count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		ON CONFLICT (user_id, feature, period_month) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query,
		uuid.New(),
		userID,
		feature,
		periodMonth,
		r.now(),
	)
	if err != nil {
		return nil, err
	}

	return r.findByPeriod(ctx, userID, feature, periodMonth)
}

// IncrementWithinLimit bumps the counter unless it already reached limit.
// A limit of zero means unlimited.
func (r *usageRepository) IncrementWithinLimit(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	query := `
		UPDATE usage
		SET count = count + 1
		WHERE id = $1 AND deleted_at IS NULL AND ($2 = 0 OR count < $2)
	`
	result, err := r.db.ExecContext(ctx, query, id, limit)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Decrement gives back one unit of usage; the counter never goes below zero.
func (r *usageRepository) Decrement(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE usage
		SET count = GREATEST(count - 1, 0)
		WHERE id = $1 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *usageRepository) GetCurrentMonthUsage(ctx context.Context, userID uuid.UUID, feature domain.FeatureType) (*domain.Usage, error) {
	return r.findByPeriod(ctx, userID, feature, domain.PeriodStart(r.now()))
}

func (r *usageRepository) findByPeriod(ctx context.Context, userID uuid.UUID, feature domain.FeatureType, periodMonth time.Time) (*domain.Usage, error) {
	query := `
		SELECT ` + usageColumns + `
		FROM usage
		WHERE user_id = $1 AND feature = $2 AND period_month = $3 AND deleted_at IS NULL
	`
	var usage domain.Usage
	var feat string
	err := r.db.QueryRowContext(ctx, query, userID, feature, periodMonth).Scan(
		&usage.ID,
		&usage.UserID,
		&feat,
		&usage.PeriodMonth,
		&usage.Count,
		&usage.CreatedAt,
		&usage.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	usage.Feature = domain.FeatureType(feat)
	return &usage, nil
}
