package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Person is a payee tracked in the khatabook: a labourer, supplier or any
// other party money moves to or from.
type Person struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	Name          string       `json:"name" gorm:"type:text;not null"`
	PhoneNumber   string       `json:"phone_number" gorm:"type:text;not null;index"`
	Role          string       `json:"role,omitempty" gorm:"type:text"`
	AccountNumber string       `json:"account_number,omitempty" gorm:"type:text"`
	IFSCCode      string       `json:"ifsc_code,omitempty" gorm:"type:text"`
	UPINumber     string       `json:"upi_number,omitempty" gorm:"type:text"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	IsDeleted     bool         `json:"-" gorm:"not null;default:false"`
}

func (Person) TableName() string { return "persons" }
