package db

import (
	"fmt"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// =========================
		// Research sources
		// =========================
		&types.Source{},

		// =========================
		// Taxonomy
		// =========================
		&types.Domain{},
		&types.DomainSource{},

		// =========================
		// AI agents + generation runs
		// =========================
		&types.AIAgentConfig{},
		&types.GenerationRun{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
