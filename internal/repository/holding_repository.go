package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/MalyshkoA/chat-bot-mipt/internal/model"
)

// HoldingRepository handles CRUD for holdings.
type HoldingRepository struct {
	db *gorm.DB
}

func NewHoldingRepository(db *gorm.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// Add inserts one holding row. The owner must already exist: holdings
// reference users(telegram_id) and the store rejects orphan rows.
func (r *HoldingRepository) Add(ctx context.Context, holding *model.Holding) error {
	if err := r.db.WithContext(ctx).Create(holding).Error; err != nil {
		return fmt.Errorf("add holding: %w", err)
	}
	return nil
}

// ListByOwner returns every holding recorded for the owner, in no
// particular order. An owner with no rows gets an empty slice.
func (r *HoldingRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Holding, error) {
	holdings := make([]model.Holding, 0)
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}
