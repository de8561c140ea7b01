package migrations

import (
	"fmt"

	"signalrelay/src/model"

	"gorm.io/gorm"
)

// normalizeEventSides rewrites the raw webhook action values ("buy"/"sell")
// that early builds stored on signal events into the exchange-facing side.
func normalizeEventSides(db *gorm.DB) error {
	if err := db.Model(&model.SignalEvent{}).
		Where("side = ?", "buy").
		Update("side", model.SideBuy).Error; err != nil {
		return fmt.Errorf("normalize buy sides: %w", err)
	}

	if err := db.Model(&model.SignalEvent{}).
		Where("side = ?", "sell").
		Update("side", model.SideSell).Error; err != nil {
		return fmt.Errorf("normalize sell sides: %w", err)
	}

	return nil
}
