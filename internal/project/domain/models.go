package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Project is the subject aggregate that wage rates, attendance,
// invoices and khatabook entries hang off.
type Project struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	Code        string            `json:"code" gorm:"type:text;not null;index"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description string            `json:"description,omitempty" gorm:"type:text"`
	Location    string            `json:"location,omitempty" gorm:"type:text"`
	StartDate   *time.Time        `json:"start_date,omitempty"`
	EndDate     *time.Time        `json:"end_date,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedBy   snowflake.ID      `json:"created_by" gorm:"not null"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	IsDeleted   bool              `json:"-" gorm:"not null;default:false;index"`
}

func (Project) TableName() string { return "projects" }
