package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type EntryType string

const (
	EntryTypeCredit EntryType = "credit"
	EntryTypeDebit  EntryType = "debit"
)

type PaymentMode string

const (
	PaymentModeCash PaymentMode = "cash"
	PaymentModeBank PaymentMode = "bank"
	PaymentModeUPI  PaymentMode = "upi"
)

// Entry is a single khatabook line: money credited to or debited from a
// person, optionally tied to a project. A person's balance is always re-summed
// from the entry rows, never carried forward on the entry itself.
type Entry struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	PersonID    snowflake.ID      `json:"person_id" gorm:"not null;index"`
	ProjectID   snowflake.ID      `json:"project_id,omitempty" gorm:"index"`
	Amount      float64           `json:"amount" gorm:"type:numeric;not null"`
	EntryType   EntryType         `json:"entry_type" gorm:"type:text;not null"`
	PaymentMode PaymentMode       `json:"payment_mode,omitempty" gorm:"type:text"`
	Remarks     string            `json:"remarks,omitempty" gorm:"type:text"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:json"`
	EntryDate   time.Time         `json:"entry_date" gorm:"not null;index"`
	CreatedBy   snowflake.ID      `json:"created_by" gorm:"not null"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	IsDeleted   bool              `json:"-" gorm:"not null;default:false"`
}

func (Entry) TableName() string { return "khatabook_entries" }
