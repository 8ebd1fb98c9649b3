package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

const invoiceColumns = `id, project_id, invoice_number, client_name, invoice_item, amount, description,
	due_date, payment_status, total_paid_amount, created_by, created_at, updated_at, is_deleted`

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, inv *invoicedomain.Invoice) error {
	return db.WithContext(ctx).Create(inv).Error
}

func (r *repo) FindInvoiceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+`
		 FROM invoices
		 WHERE id = ? AND is_deleted = ?`,
		id,
		false,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB, projectID snowflake.ID, limit, offset int) ([]invoicedomain.Invoice, error) {
	var items []invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+`
		 FROM invoices
		 WHERE project_id = ? AND is_deleted = ?
		 ORDER BY due_date ASC, created_at ASC
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

func (r *repo) CountInvoices(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM invoices WHERE project_id = ? AND is_deleted = ?`,
		projectID,
		false,
	).Scan(&count).Error
	return count, err
}

// NextSequence counts every invoice the project issued on the day, deleted
// included, so numbers are never reused.
func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, projectID snowflake.ID, issuedOn time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM invoices
		 WHERE project_id = ? AND created_at >= ? AND created_at < ?`,
		projectID,
		issuedOn,
		issuedOn.AddDate(0, 0, 1),
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

const paymentColumns = `id, invoice_id, amount, payment_date, payment_method, reference_number,
	description, created_by, created_at, updated_at, is_deleted`

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, p *invoicedomain.InvoicePayment) error {
	return db.WithContext(ctx).Create(p).Error
}

func (r *repo) FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.InvoicePayment, error) {
	var p invoicedomain.InvoicePayment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+`
		 FROM invoice_payments
		 WHERE id = ? AND is_deleted = ?`,
		id,
		false,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]invoicedomain.InvoicePayment, error) {
	var items []invoicedomain.InvoicePayment
	err := db.WithContext(ctx).Raw(
		`SELECT `+paymentColumns+`
		 FROM invoice_payments
		 WHERE invoice_id = ? AND is_deleted = ?
		 ORDER BY payment_date ASC, created_at ASC`,
		invoiceID,
		false,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, p *invoicedomain.InvoicePayment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoice_payments
		 SET amount = ?, payment_date = ?, payment_method = ?, reference_number = ?, description = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = ?`,
		p.Amount,
		p.PaymentDate,
		p.PaymentMethod,
		p.ReferenceNumber,
		p.Description,
		p.UpdatedAt,
		p.ID,
		false,
	).Error
}

func (r *repo) SoftDeletePayment(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoice_payments SET is_deleted = ? WHERE id = ?`,
		true,
		id,
	).Error
}

func (r *repo) SumPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (float64, error) {
	var total float64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0)
		 FROM invoice_payments
		 WHERE invoice_id = ? AND is_deleted = ?`,
		invoiceID,
		false,
	).Scan(&total).Error
	return total, err
}

func (r *repo) UpdateDerived(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID, status invoicedomain.PaymentStatus, totalPaid float64, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET payment_status = ?, total_paid_amount = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = ?`,
		status,
		totalPaid,
		updatedAt,
		invoiceID,
		false,
	).Error
}

func (r *repo) ListOutstanding(ctx context.Context, db *gorm.DB, projectID snowflake.ID, before time.Time) ([]invoicedomain.Invoice, error) {
	var items []invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+`
		 FROM invoices
		 WHERE project_id = ?
		   AND due_date < ?
		   AND payment_status <> ?
		   AND is_deleted = ?
		 ORDER BY due_date ASC`,
		projectID,
		before,
		invoicedomain.PaymentStatusFullyPaid,
		false,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountOverdue(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM invoices
		 WHERE due_date < ? AND payment_status <> ? AND is_deleted = ?`,
		before,
		invoicedomain.PaymentStatusFullyPaid,
		false,
	).Scan(&count).Error
	return count, err
}
