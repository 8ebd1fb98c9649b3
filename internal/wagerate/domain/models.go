package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// WageRate is one dated entry in a project's wage history. Rows are
// insert-only; corrections soft-delete the bad row and add a replacement,
// so calculations pinned to old rows stay reproducible.
type WageRate struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	ProjectID     snowflake.ID `json:"project_id" gorm:"not null;index:idx_wage_rates_project_effective,priority:1"`
	DailyRate     float64      `json:"daily_rate" gorm:"type:numeric;not null"`
	EffectiveDate time.Time    `json:"effective_date" gorm:"not null;index:idx_wage_rates_project_effective,priority:2"`
	ConfiguredBy  snowflake.ID `json:"configured_by" gorm:"not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	IsDeleted     bool         `json:"-" gorm:"not null;default:false"`
}

func (WageRate) TableName() string { return "wage_rates" }
