package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Attendance is a day's labour headcount for a project.
type Attendance struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	ProjectID      snowflake.ID `json:"project_id" gorm:"not null;index:idx_attendance_project_date,priority:1"`
	AttendanceDate time.Time    `json:"attendance_date" gorm:"not null;index:idx_attendance_project_date,priority:2"`
	LabourCount    int          `json:"labour_count" gorm:"not null"`
	MarkedBy       snowflake.ID `json:"marked_by" gorm:"not null"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	IsDeleted      bool         `json:"-" gorm:"not null;default:false"`
}

func (Attendance) TableName() string { return "project_attendance" }

// WageCalculation pins the rate that was in force when the attendance was
// recorded. It is written once; later rate changes never touch it.
type WageCalculation struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	AttendanceID snowflake.ID `json:"attendance_id" gorm:"not null;index"`
	WageRateID   snowflake.ID `json:"wage_rate_id" gorm:"not null;index"`
	LabourCount  int          `json:"labour_count" gorm:"not null"`
	DailyRate    float64      `json:"daily_rate" gorm:"type:numeric;not null"`
	TotalAmount  float64      `json:"total_amount" gorm:"type:numeric;not null"`
	CalculatedAt time.Time    `json:"calculated_at" gorm:"not null"`
	IsDeleted    bool         `json:"-" gorm:"not null;default:false"`
}

func (WageCalculation) TableName() string { return "wage_calculations" }
