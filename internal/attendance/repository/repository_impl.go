package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	attendancedomain "github.com/sitekhata/sitekhata/internal/attendance/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() attendancedomain.Repository {
	return &repo{}
}

func (r *repo) InsertAttendance(ctx context.Context, db *gorm.DB, att *attendancedomain.Attendance) error {
	return db.WithContext(ctx).Create(att).Error
}

func (r *repo) FindAttendanceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*attendancedomain.Attendance, error) {
	var att attendancedomain.Attendance
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, attendance_date, labour_count, marked_by, created_at, is_deleted
		 FROM project_attendance
		 WHERE id = ? AND is_deleted = ?`,
		id,
		false,
	).Scan(&att).Error
	if err != nil {
		return nil, err
	}
	if att.ID == 0 {
		return nil, nil
	}
	return &att, nil
}

func (r *repo) FindAttendanceByDate(ctx context.Context, db *gorm.DB, projectID snowflake.ID, date time.Time) (*attendancedomain.Attendance, error) {
	var att attendancedomain.Attendance
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, attendance_date, labour_count, marked_by, created_at, is_deleted
		 FROM project_attendance
		 WHERE project_id = ? AND attendance_date = ? AND is_deleted = ?`,
		projectID,
		date,
		false,
	).Scan(&att).Error
	if err != nil {
		return nil, err
	}
	if att.ID == 0 {
		return nil, nil
	}
	return &att, nil
}

func (r *repo) ListAttendance(ctx context.Context, db *gorm.DB, projectID snowflake.ID, limit, offset int) ([]attendancedomain.Attendance, error) {
	var items []attendancedomain.Attendance
	err := db.WithContext(ctx).Raw(
		`SELECT id, project_id, attendance_date, labour_count, marked_by, created_at, is_deleted
		 FROM project_attendance
		 WHERE project_id = ? AND is_deleted = ?
		 ORDER BY attendance_date DESC
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

func (r *repo) CountAttendance(ctx context.Context, db *gorm.DB, projectID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM project_attendance WHERE project_id = ? AND is_deleted = ?`,
		projectID,
		false,
	).Scan(&count).Error
	return count, err
}

func (r *repo) InsertCalculation(ctx context.Context, db *gorm.DB, calc *attendancedomain.WageCalculation) error {
	return db.WithContext(ctx).Create(calc).Error
}

func (r *repo) FindCalculationByAttendance(ctx context.Context, db *gorm.DB, attendanceID snowflake.ID) (*attendancedomain.WageCalculation, error) {
	var calc attendancedomain.WageCalculation
	err := db.WithContext(ctx).Raw(
		`SELECT id, attendance_id, wage_rate_id, labour_count, daily_rate, total_amount, calculated_at, is_deleted
		 FROM wage_calculations
		 WHERE attendance_id = ? AND is_deleted = ?`,
		attendanceID,
		false,
	).Scan(&calc).Error
	if err != nil {
		return nil, err
	}
	if calc.ID == 0 {
		return nil, nil
	}
	return &calc, nil
}

func (r *repo) SummaryRows(ctx context.Context, db *gorm.DB, projectID snowflake.ID, from, to time.Time) ([]attendancedomain.SummaryRow, error) {
	var rows []attendancedomain.SummaryRow
	err := db.WithContext(ctx).Raw(
		`SELECT wc.daily_rate AS daily_rate,
		        COUNT(*) AS days,
		        COALESCE(SUM(wc.labour_count), 0) AS labour,
		        COALESCE(SUM(wc.total_amount), 0) AS total_amount
		 FROM wage_calculations wc
		 JOIN project_attendance pa ON pa.id = wc.attendance_id
		 WHERE pa.project_id = ?
		   AND pa.attendance_date >= ? AND pa.attendance_date <= ?
		   AND pa.is_deleted = ? AND wc.is_deleted = ?
		 GROUP BY wc.daily_rate
		 ORDER BY wc.daily_rate ASC`,
		projectID,
		from,
		to,
		false,
		false,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
