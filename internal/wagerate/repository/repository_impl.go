package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	wageratedomain "github.com/sitekhata/sitekhata/internal/wagerate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() wageratedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rate *wageratedomain.WageRate) error {
	return db.WithContext(ctx).Create(rate).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*wageratedomain.WageRate, error) {
	var rate wageratedomain.WageRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, daily_rate, effective_date, configured_by, created_at, is_deleted
		 FROM wage_rates
		 WHERE project_id = ? AND id = ? AND is_deleted = ?`,
		projectID,
		id,
		false,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repo) FindByEffectiveDate(ctx context.Context, db *gorm.DB, projectID snowflake.ID, effectiveDate time.Time) (*wageratedomain.WageRate, error) {
	var rate wageratedomain.WageRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, daily_rate, effective_date, configured_by, created_at, is_deleted
		 FROM wage_rates
		 WHERE project_id = ? AND effective_date = ? AND is_deleted = ?`,
		projectID,
		effectiveDate,
		false,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

// Resolve is a single indexed range query; wage history grows for the whole
// life of a project, so this must never become an in-memory scan.
func (r *repo) Resolve(ctx context.Context, db *gorm.DB, projectID snowflake.ID, targetDate time.Time) (*wageratedomain.WageRate, error) {
	var rate wageratedomain.WageRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, daily_rate, effective_date, configured_by, created_at, is_deleted
		 FROM wage_rates
		 WHERE project_id = ? AND effective_date <= ? AND is_deleted = ?
		 ORDER BY effective_date DESC, created_at DESC
		 LIMIT 1`,
		projectID,
		targetDate,
		false,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}

func (r *repo) History(ctx context.Context, db *gorm.DB, projectID snowflake.ID, limit, offset int) ([]wageratedomain.WageRate, error) {
	var items []wageratedomain.WageRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, daily_rate, effective_date, configured_by, created_at, is_deleted
		 FROM wage_rates
		 WHERE project_id = ? AND is_deleted = ?
		 ORDER BY effective_date DESC
		 LIMIT ? OFFSET ?`,
		projectID,
		false,
		limit,
		offset,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountHistory(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM wage_rates WHERE project_id = ? AND is_deleted = ?`,
		projectID,
		false,
	).Scan(&count).Error
	return count, err
}

func (r *repo) CountCalculationsUsing(ctx context.Context, db *gorm.DB, rateID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM wage_calculations WHERE wage_rate_id = ? AND is_deleted = ?`,
		rateID,
		false,
	).Scan(&count).Error
	return count, err
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE wage_rates SET is_deleted = ? WHERE id = ?`,
		true,
		id,
	).Error
}
