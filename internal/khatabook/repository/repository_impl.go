package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	khatabookdomain "github.com/sitekhata/sitekhata/internal/khatabook/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() khatabookdomain.Repository {
	return &repo{}
}

const entryColumns = `id, person_id, project_id, amount, entry_type, payment_mode, remarks, metadata,
	entry_date, created_by, created_at, updated_at, is_deleted`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, e *khatabookdomain.Entry) error {
	return db.WithContext(ctx).Create(e).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*khatabookdomain.Entry, error) {
	var e khatabookdomain.Entry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+`
		 FROM khatabook_entries
		 WHERE id = ? AND is_deleted = ?`,
		id,
		false,
	).Scan(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, nil
	}
	return &e, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter khatabookdomain.ListFilter, limit, offset int) ([]khatabookdomain.Entry, error) {
	query := `SELECT ` + entryColumns + `
		 FROM khatabook_entries
		 WHERE is_deleted = ?`
	args := []any{false}

	if filter.PersonID != 0 {
		query += ` AND person_id = ?`
		args = append(args, filter.PersonID)
	}
	if filter.ProjectID != 0 {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}

	query += ` ORDER BY entry_date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var items []khatabookdomain.Entry
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter khatabookdomain.ListFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM khatabook_entries WHERE is_deleted = ?`
	args := []any{false}

	if filter.PersonID != 0 {
		query += ` AND person_id = ?`
		args = append(args, filter.PersonID)
	}
	if filter.ProjectID != 0 {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}

	var count int64
	err := db.WithContext(ctx).Raw(query, args...).Scan(&count).Error
	return count, err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, e *khatabookdomain.Entry) error {
	return db.WithContext(ctx).Exec(
		`UPDATE khatabook_entries
		 SET amount = ?, entry_type = ?, payment_mode = ?, remarks = ?, entry_date = ?, updated_at = ?
		 WHERE id = ? AND is_deleted = ?`,
		e.Amount,
		e.EntryType,
		e.PaymentMode,
		e.Remarks,
		e.EntryDate,
		e.UpdatedAt,
		e.ID,
		false,
	).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE khatabook_entries SET is_deleted = ? WHERE id = ?`,
		true,
		id,
	).Error
}

func (r *repo) Balance(ctx context.Context, db *gorm.DB, personID snowflake.ID) (float64, error) {
	var balance float64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(CASE WHEN entry_type = ? THEN amount ELSE -amount END), 0)
		 FROM khatabook_entries
		 WHERE person_id = ? AND is_deleted = ?`,
		khatabookdomain.EntryTypeCredit,
		personID,
		false,
	).Scan(&balance).Error
	return balance, err
}
