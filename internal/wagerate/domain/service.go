package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

type Service interface {
	Configure(ctx context.Context, projectID string, req ConfigureRequest) (*Response, error)
	Current(ctx context.Context, projectID string) (*Response, error)
	History(ctx context.Context, projectID string, page pagination.Pagination) ([]Response, *pagination.PageInfo, error)
	Remove(ctx context.Context, projectID, rateID string) error
}

type ConfigureRequest struct {
	DailyRate     float64    `json:"daily_rate"`
	EffectiveDate *time.Time `json:"effective_date"`
}

type Response struct {
	ID            snowflake.ID `json:"id"`
	ProjectID     snowflake.ID `json:"project_id"`
	DailyRate     float64      `json:"daily_rate"`
	EffectiveDate string       `json:"effective_date"`
	ConfiguredBy  snowflake.ID `json:"configured_by"`
	CreatedAt     time.Time    `json:"created_at"`
}

var (
	ErrInvalidRate            = errors.New("invalid_rate")
	ErrFutureEffectiveDate    = errors.New("future_effective_date")
	ErrDuplicateEffectiveDate = errors.New("duplicate_effective_date")
	// ErrNoRateConfigured means the wage history does not cover the requested
	// date. Callers must surface it, never substitute a zero rate.
	ErrNoRateConfigured = errors.New("no_rate_configured")
	ErrRateInUse        = errors.New("rate_in_use")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
)
