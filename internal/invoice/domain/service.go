package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, projectID string, req CreateRequest) (*Response, error)
	Get(ctx context.Context, invoiceID string) (*Response, error)
	List(ctx context.Context, projectID string, page pagination.Pagination) ([]Response, *pagination.PageInfo, error)

	// AddPayment, UpdatePayment and RemovePayment each mutate the payment set
	// and recompute the invoice's derived status inside the same transaction.
	AddPayment(ctx context.Context, invoiceID string, req PaymentRequest) (*Response, error)
	UpdatePayment(ctx context.Context, invoiceID, paymentID string, req PaymentRequest) (*Response, error)
	RemovePayment(ctx context.Context, invoiceID, paymentID string) (*Response, error)

	Aging(ctx context.Context, projectID string) (*AgingResponse, error)
	RenderPDF(ctx context.Context, invoiceID string) ([]byte, error)
}

type CreateRequest struct {
	ClientName  string     `json:"client_name"`
	InvoiceItem string     `json:"invoice_item"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date"`
}

type PaymentRequest struct {
	Amount          float64       `json:"amount"`
	PaymentDate     *time.Time    `json:"payment_date,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty"`
	ReferenceNumber string        `json:"reference_number,omitempty"`
	Description     string        `json:"description,omitempty"`
}

type Response struct {
	ID              snowflake.ID      `json:"id"`
	ProjectID       snowflake.ID      `json:"project_id"`
	InvoiceNumber   string            `json:"invoice_number"`
	ClientName      string            `json:"client_name"`
	InvoiceItem     string            `json:"invoice_item"`
	Amount          float64           `json:"amount"`
	Description     string            `json:"description,omitempty"`
	DueDate         string            `json:"due_date"`
	PaymentStatus   PaymentStatus     `json:"payment_status"`
	TotalPaidAmount float64           `json:"total_paid_amount"`
	Outstanding     float64           `json:"outstanding_amount"`
	Lateness        Lateness          `json:"lateness"`
	Payments        []PaymentResponse `json:"payments,omitempty"`
	CreatedBy       snowflake.ID      `json:"created_by"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type PaymentResponse struct {
	ID              snowflake.ID  `json:"id"`
	InvoiceID       snowflake.ID  `json:"invoice_id"`
	Amount          float64       `json:"amount"`
	PaymentDate     string        `json:"payment_date"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty"`
	ReferenceNumber string        `json:"reference_number,omitempty"`
	Description     string        `json:"description,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

type AgingResponse struct {
	ProjectID snowflake.ID     `json:"project_id"`
	AsOf      string           `json:"as_of"`
	Buckets   []AgingBucketRow `json:"buckets"`
}

type AgingBucketRow struct {
	Label       string  `json:"label"`
	Count       int64   `json:"count"`
	Outstanding float64 `json:"outstanding_amount"`
}

var (
	ErrInvalidClientName    = errors.New("invalid_client_name")
	ErrInvalidInvoiceItem   = errors.New("invalid_invoice_item")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidDueDate       = errors.New("invalid_due_date")
	ErrInvalidPaymentAmount = errors.New("invalid_payment_amount")
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("not_found")
	ErrPaymentNotFound      = errors.New("payment_not_found")
)
