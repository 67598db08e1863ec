package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/strandcoach/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	err := db.AutoMigrate(
		// Card store
		&types.Card{},
		&types.ReviewEvent{},

		// Session ledger
		&types.SessionRecord{},

		// Prerequisite graph
		&types.ConceptNode{},
		&types.PrerequisiteEdge{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
