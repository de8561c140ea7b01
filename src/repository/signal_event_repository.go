package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signalrelay/src/database"
	"signalrelay/src/model"
)

// SignalEventRepository handles read/write operations for the signal event log.
type SignalEventRepository struct {
	db *gorm.DB
}

// NewSignalEventRepository creates a new repository instance using the main read/write database.
func NewSignalEventRepository() *SignalEventRepository {
	logger.WithField("component", "SignalEventRepository").
		Info("Creating new SignalEventRepository with DB")

	return &SignalEventRepository{
		db: database.DB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *SignalEventRepository) WithDB(db *gorm.DB) *SignalEventRepository {
	return &SignalEventRepository{db: db}
}

// Append inserts a new event at the end of the log. Events are never
// updated afterwards.
func (r *SignalEventRepository) Append(
	ctx context.Context,
	event *model.SignalEvent,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":        "SignalEventRepository",
		"op":          "Append",
		"strategy_id": event.StrategyID,
		"status":      event.Status,
	}).Debug("Appending signal event")

	err := r.db.WithContext(ctx).Create(event).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "SignalEventRepository",
			"op":          "Append",
			"strategy_id": event.StrategyID,
		}).WithError(err).Error("Failed to append signal event")

		return err
	}

	return nil
}

// ExistsByOrderID reports whether any event was already recorded for the
// given order id. The webhook processor uses it for replay detection.
func (r *SignalEventRepository) ExistsByOrderID(
	ctx context.Context,
	orderID string,
) (bool, error) {

	logger.WithFields(map[string]interface{}{
		"repo":     "SignalEventRepository",
		"op":       "ExistsByOrderID",
		"order_id": orderID,
	}).Debug("Checking for previously seen order id")

	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.SignalEvent{}).
		Where("order_id = ?", orderID).
		Count(&count).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "SignalEventRepository",
			"op":       "ExistsByOrderID",
			"order_id": orderID,
		}).WithError(err).Error("Failed to check for order id")

		return false, err
	}

	return count > 0, nil
}

// Recent returns the latest events ordered from newest to oldest,
// optionally filtered by strategy.
func (r *SignalEventRepository) Recent(
	ctx context.Context,
	limit int,
	strategyID string,
) ([]model.SignalEvent, error) {

	if limit <= 0 {
		limit = 50
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "SignalEventRepository",
		"op":          "Recent",
		"limit":       limit,
		"strategy_id": strategyID,
	}).Debug("Fetching recent signal events")

	query := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit)

	if strategyID != "" {
		query = query.Where("strategy_id = ?", strategyID)
	}

	var events []model.SignalEvent

	err := query.Find(&events).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "SignalEventRepository",
			"op":    "Recent",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch recent signal events")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "SignalEventRepository",
		"op":          "Recent",
		"limit":       limit,
		"rows_return": len(events),
	}).Debug("Recent signal events fetched")

	return events, nil
}
