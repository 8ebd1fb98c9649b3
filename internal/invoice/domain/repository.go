package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertInvoice(ctx context.Context, db *gorm.DB, inv *Invoice) error
	FindInvoiceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	ListInvoices(ctx context.Context, db *gorm.DB, projectID snowflake.ID, limit, offset int) ([]Invoice, error)
	CountInvoices(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error)
	// NextSequence returns the next per-day invoice sequence for numbering.
	NextSequence(ctx context.Context, db *gorm.DB, projectID snowflake.ID, issuedOn time.Time) (int64, error)

	InsertPayment(ctx context.Context, db *gorm.DB, p *InvoicePayment) error
	FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*InvoicePayment, error)
	// ListPayments returns non-deleted payments ordered by payment date then
	// insertion order, the order settlement classification walks them in.
	ListPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoicePayment, error)
	UpdatePayment(ctx context.Context, db *gorm.DB, p *InvoicePayment) error
	SoftDeletePayment(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// SumPayments re-sums every non-deleted payment of the invoice.
	SumPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (float64, error)
	// UpdateDerived writes the recomputed status and paid total back to the
	// invoice row. Called only inside the mutating transaction.
	UpdateDerived(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID, status PaymentStatus, totalPaid float64, updatedAt time.Time) error

	// ListOutstanding returns open invoices due strictly before the date,
	// for aging reports and the overdue sweep.
	ListOutstanding(ctx context.Context, db *gorm.DB, projectID snowflake.ID, before time.Time) ([]Invoice, error)
	CountOverdue(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}
