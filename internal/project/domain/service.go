package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, page pagination.Pagination) ([]Response, *pagination.PageInfo, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Remove(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	Metadata    map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type Response struct {
	ID          snowflake.ID   `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedBy   snowflake.ID   `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrInvalidID        = errors.New("invalid_id")
	ErrDuplicateCode    = errors.New("duplicate_code")
	ErrNotFound         = errors.New("not_found")
)
