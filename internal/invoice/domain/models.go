package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PaymentStatus string

const (
	PaymentStatusNotPaid       PaymentStatus = "not_paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusFullyPaid     PaymentStatus = "fully_paid"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodBank   PaymentMethod = "bank_transfer"
	PaymentMethodCheque PaymentMethod = "cheque"
	PaymentMethodUPI    PaymentMethod = "upi"
)

// Invoice is a client obligation tracked against partial payments.
// PaymentStatus and TotalPaidAmount are derived columns: they are recomputed
// from the full payment set inside every payment mutation and never adjusted
// incrementally.
type Invoice struct {
	ID              snowflake.ID  `json:"id" gorm:"primaryKey"`
	ProjectID       snowflake.ID  `json:"project_id" gorm:"not null;index"`
	InvoiceNumber   string        `json:"invoice_number" gorm:"type:text;not null;index"`
	ClientName      string        `json:"client_name" gorm:"type:text;not null"`
	InvoiceItem     string        `json:"invoice_item" gorm:"type:text;not null"`
	Amount          float64       `json:"amount" gorm:"type:numeric;not null"`
	Description     string        `json:"description,omitempty" gorm:"type:text"`
	DueDate         time.Time     `json:"due_date" gorm:"not null;index"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:text;not null;default:not_paid"`
	TotalPaidAmount float64       `json:"total_paid_amount" gorm:"type:numeric;not null;default:0"`
	CreatedBy       snowflake.ID  `json:"created_by" gorm:"not null"`
	CreatedAt       time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	IsDeleted       bool          `json:"-" gorm:"not null;default:false"`
}

func (Invoice) TableName() string { return "invoices" }

func (i *Invoice) Outstanding() float64 {
	out := i.Amount - i.TotalPaidAmount
	if out < 0 {
		return 0
	}
	return out
}

type InvoicePayment struct {
	ID              snowflake.ID  `json:"id" gorm:"primaryKey"`
	InvoiceID       snowflake.ID  `json:"invoice_id" gorm:"not null;index"`
	Amount          float64       `json:"amount" gorm:"type:numeric;not null"`
	PaymentDate     time.Time     `json:"payment_date" gorm:"not null"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty" gorm:"type:text"`
	ReferenceNumber string        `json:"reference_number,omitempty" gorm:"type:text"`
	Description     string        `json:"description,omitempty" gorm:"type:text"`
	CreatedBy       snowflake.ID  `json:"created_by" gorm:"not null"`
	CreatedAt       time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	IsDeleted       bool          `json:"-" gorm:"not null;default:false"`
}

func (InvoicePayment) TableName() string { return "invoice_payments" }

// DerivePaymentStatus maps a recomputed paid total onto the status enum.
// Overpayment is accepted and reported as fully paid, not rejected.
func DerivePaymentStatus(totalPaid, principal float64) PaymentStatus {
	switch {
	case totalPaid <= 0:
		return PaymentStatusNotPaid
	case totalPaid < principal:
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusFullyPaid
	}
}
