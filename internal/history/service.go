package history

import (
	"fmt"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/models"

	"gorm.io/gorm"
)

type RecordOptions struct {
	AssetID      uint
	Action       models.AssetEventAction
	AssigneeKind models.AssigneeKind
	AssigneeID   uint
	AssigneeName string
	Notes        string
}

// Record appends one checkout/checkin event. Callers pass the transaction the
// state change runs in, so the log entry commits or rolls back with it.
func Record(tx *gorm.DB, opts RecordOptions) error {
	event := models.AssetEvent{
		AssetID:      opts.AssetID,
		Action:       opts.Action,
		AssigneeKind: opts.AssigneeKind,
		AssigneeID:   opts.AssigneeID,
		AssigneeName: opts.AssigneeName,
		Notes:        opts.Notes,
	}

	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("asset event could not be recorded: %w", err)
	}
	return nil
}

// ForAsset returns the event log for one asset, newest first.
func ForAsset(assetID uint) ([]models.AssetEvent, error) {
	var events []models.AssetEvent
	err := database.DB.
		Where("asset_id = ?", assetID).
		Order("created_at desc, id desc").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("asset history could not be loaded: %w", err)
	}
	return events, nil
}
