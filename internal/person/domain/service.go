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
	Get(ctx context.Context, personID string) (*Response, error)
	List(ctx context.Context, page pagination.Pagination) ([]Response, *pagination.PageInfo, error)
	Update(ctx context.Context, personID string, req UpdateRequest) (*Response, error)
	Remove(ctx context.Context, personID string) error
}

type CreateRequest struct {
	Name          string `json:"name"`
	PhoneNumber   string `json:"phone_number"`
	Role          string `json:"role,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSCCode      string `json:"ifsc_code,omitempty"`
	UPINumber     string `json:"upi_number,omitempty"`
}

type UpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	PhoneNumber   *string `json:"phone_number,omitempty"`
	Role          *string `json:"role,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`
	IFSCCode      *string `json:"ifsc_code,omitempty"`
	UPINumber     *string `json:"upi_number,omitempty"`
}

type Response struct {
	ID            snowflake.ID `json:"id"`
	Name          string       `json:"name"`
	PhoneNumber   string       `json:"phone_number"`
	Role          string       `json:"role,omitempty"`
	AccountNumber string       `json:"account_number,omitempty"`
	IFSCCode      string       `json:"ifsc_code,omitempty"`
	UPINumber     string       `json:"upi_number,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPhone = errors.New("invalid_phone_number")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
