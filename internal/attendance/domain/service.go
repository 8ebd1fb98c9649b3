package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sitekhata/sitekhata/pkg/db/pagination"
)

type Service interface {
	// Mark records today's attendance and pins a wage calculation in the same
	// transaction. Attendance may only be recorded for the current day.
	Mark(ctx context.Context, projectID string, req MarkRequest) (*Response, error)
	// CalculateAndPin attaches a calculation to an attendance row that is
	// missing one. Recalculation of an already pinned row is refused.
	CalculateAndPin(ctx context.Context, attendanceID string) (*CalculationResponse, error)
	List(ctx context.Context, projectID string, page pagination.Pagination) ([]Response, *pagination.PageInfo, error)
	Summary(ctx context.Context, projectID string, from, to time.Time) (*SummaryResponse, error)
}

type MarkRequest struct {
	LabourCount int `json:"labour_count"`
}

type Response struct {
	ID             snowflake.ID         `json:"id"`
	ProjectID      snowflake.ID         `json:"project_id"`
	AttendanceDate string               `json:"attendance_date"`
	LabourCount    int                  `json:"labour_count"`
	MarkedBy       snowflake.ID         `json:"marked_by"`
	CreatedAt      time.Time            `json:"created_at"`
	Calculation    *CalculationResponse `json:"calculation,omitempty"`
}

type CalculationResponse struct {
	ID           snowflake.ID `json:"id"`
	AttendanceID snowflake.ID `json:"attendance_id"`
	WageRateID   snowflake.ID `json:"wage_rate_id"`
	LabourCount  int          `json:"labour_count"`
	DailyRate    float64      `json:"daily_rate"`
	TotalAmount  float64      `json:"total_amount"`
	CalculatedAt time.Time    `json:"calculated_at"`
}

type SummaryResponse struct {
	ProjectID   snowflake.ID `json:"project_id"`
	From        string       `json:"from"`
	To          string       `json:"to"`
	TotalDays   int64        `json:"total_days"`
	TotalLabour int64        `json:"total_labour"`
	TotalWages  float64      `json:"total_wages"`
	ByRate      []SummaryRow `json:"by_rate"`
}

var (
	ErrInvalidLabourCount = errors.New("invalid_labour_count")
	ErrAlreadyMarked      = errors.New("attendance_already_marked")
	ErrCalculationExists  = errors.New("calculation_exists")
	ErrInvalidDateRange   = errors.New("invalid_date_range")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
)
