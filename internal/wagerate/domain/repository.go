package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rate *WageRate) error
	FindByID(ctx context.Context, db *gorm.DB, projectID, id snowflake.ID) (*WageRate, error)
	FindByEffectiveDate(ctx context.Context, db *gorm.DB, projectID snowflake.ID, effectiveDate time.Time) (*WageRate, error)
	// Resolve returns the latest non-deleted rate with effective_date <= targetDate,
	// ties broken by most recent created_at. Nil when the history does not reach back
	// that far.
	Resolve(ctx context.Context, db *gorm.DB, projectID snowflake.ID, targetDate time.Time) (*WageRate, error)
	History(ctx context.Context, db *gorm.DB, projectID snowflake.ID, limit, offset int) ([]WageRate, error)
	CountHistory(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error)
	CountCalculationsUsing(ctx context.Context, db *gorm.DB, rateID snowflake.ID) (int64, error)
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
