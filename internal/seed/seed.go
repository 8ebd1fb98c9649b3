package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	projectdomain "github.com/sitekhata/sitekhata/internal/project/domain"
	"gorm.io/gorm"
)

const (
	defaultProjectCode = "head-office"
	defaultProjectName = "Head Office"
)

// EnsureDefaultProject seeds a project for local bootstrap so the API is
// exercisable immediately after first start. No-op when any project exists.
func EnsureDefaultProject(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&projectdomain.Project{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		return tx.Create(&projectdomain.Project{
			ID:          node.Generate(),
			Code:        defaultProjectCode,
			Name:        defaultProjectName,
			Description: "Default project created on first start.",
			CreatedAt:   now,
			UpdatedAt:   now,
		}).Error
	})
}
