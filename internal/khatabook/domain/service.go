package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

type Service interface {
	CreateEntry(ctx context.Context, req CreateEntryRequest) (*Response, error)
	UpdateEntry(ctx context.Context, entryID string, req UpdateEntryRequest) (*Response, error)
	RemoveEntry(ctx context.Context, entryID string) error
	List(ctx context.Context, req ListRequest) ([]Response, *pagination.PageInfo, error)
	// Balance returns the person's net position, credits minus debits,
	// recomputed from the entry rows on every call.
	Balance(ctx context.Context, personID string) (*BalanceResponse, error)
}

type CreateEntryRequest struct {
	PersonID    string         `json:"person_id"`
	ProjectID   string         `json:"project_id,omitempty"`
	Amount      float64        `json:"amount"`
	EntryType   EntryType      `json:"entry_type"`
	PaymentMode PaymentMode    `json:"payment_mode,omitempty"`
	Remarks     string         `json:"remarks,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	EntryDate   *time.Time     `json:"entry_date,omitempty"`
}

type UpdateEntryRequest struct {
	Amount      *float64     `json:"amount,omitempty"`
	EntryType   *EntryType   `json:"entry_type,omitempty"`
	PaymentMode *PaymentMode `json:"payment_mode,omitempty"`
	Remarks     *string      `json:"remarks,omitempty"`
	EntryDate   *time.Time   `json:"entry_date,omitempty"`
}

type ListRequest struct {
	PersonID  string                `form:"person_id"`
	ProjectID string                `form:"project_id"`
	Page      pagination.Pagination `form:",inline"`
}

type Response struct {
	ID          snowflake.ID   `json:"id"`
	PersonID    snowflake.ID   `json:"person_id"`
	ProjectID   snowflake.ID   `json:"project_id,omitempty"`
	Amount      float64        `json:"amount"`
	EntryType   EntryType      `json:"entry_type"`
	PaymentMode PaymentMode    `json:"payment_mode,omitempty"`
	Remarks     string         `json:"remarks,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	EntryDate   string         `json:"entry_date"`
	CreatedBy   snowflake.ID   `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type BalanceResponse struct {
	PersonID snowflake.ID `json:"person_id"`
	Balance  float64      `json:"balance"`
	AsOf     time.Time    `json:"as_of"`
}

var (
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidEntryType   = errors.New("invalid_entry_type")
	ErrInvalidPaymentMode = errors.New("invalid_payment_mode")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
)
