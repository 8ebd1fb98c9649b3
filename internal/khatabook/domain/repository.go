package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows entry listings; zero IDs mean no filter.
type ListFilter struct {
	PersonID  snowflake.ID
	ProjectID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, e *Entry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Entry, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, limit, offset int) ([]Entry, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	Update(ctx context.Context, db *gorm.DB, e *Entry) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// Balance re-sums every non-deleted entry of the person: credits minus
	// debits.
	Balance(ctx context.Context, db *gorm.DB, personID snowflake.ID) (float64, error)
}
