package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertAttendance(ctx context.Context, db *gorm.DB, att *Attendance) error
	FindAttendanceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Attendance, error)
	FindAttendanceByDate(ctx context.Context, db *gorm.DB, projectID snowflake.ID, date time.Time) (*Attendance, error)
	ListAttendance(ctx context.Context, db *gorm.DB, projectID snowflake.ID, limit, offset int) ([]Attendance, error)
	CountAttendance(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error)
	InsertCalculation(ctx context.Context, db *gorm.DB, calc *WageCalculation) error
	FindCalculationByAttendance(ctx context.Context, db *gorm.DB, attendanceID snowflake.ID) (*WageCalculation, error)
	SummaryRows(ctx context.Context, db *gorm.DB, projectID snowflake.ID, from, to time.Time) ([]SummaryRow, error)
}

// SummaryRow is one per-rate slice of a project's wage spend.
type SummaryRow struct {
	DailyRate   float64 `json:"daily_rate"`
	Days        int64   `json:"days"`
	Labour      int64   `json:"labour"`
	TotalAmount float64 `json:"total_amount"`
}
