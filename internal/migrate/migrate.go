package migrate

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migration is one schema step. Up runs inside its own transaction together
// with the bookkeeping row, so a step is either fully applied or not at all.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

type schemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"type:text;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

// Run applies every pending step in version order.
func Run(ctx context.Context, db *gorm.DB) error {
	return apply(ctx, db, Steps())
}

func validate(steps []Migration) error {
	for i, s := range steps {
		if s.Up == nil || s.Name == "" {
			return fmt.Errorf("migration %d is incomplete", s.Version)
		}
		if i > 0 && s.Version <= steps[i-1].Version {
			return fmt.Errorf("migration %d (%s) is out of order", s.Version, s.Name)
		}
	}
	return nil
}

func apply(ctx context.Context, db *gorm.DB, steps []Migration) error {
	log := config.WithContext(ctx)

	if err := validate(steps); err != nil {
		return err
	}
	if err := db.WithContext(ctx).AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var applied []int
	if err := db.WithContext(ctx).Model(&schemaMigration{}).Pluck("version", &applied).Error; err != nil {
		return fmt.Errorf("read applied migrations: %w", err)
	}

	for _, step := range steps {
		if slices.Contains(applied, step.Version) {
			continue
		}
		entry := log.WithFields(logrus.Fields{
			"version": step.Version,
			"name":    step.Name,
		})

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := step.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{
				Version:   step.Version,
				Name:      step.Name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			entry.WithError(err).Error("Migration failed")
			return fmt.Errorf("migration %d (%s): %w", step.Version, step.Name, err)
		}
		entry.Info("Migration applied")
	}
	return nil
}
