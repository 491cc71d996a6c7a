package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/MalyshkoA/chat-bot-mipt/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Find returns the user row for the given Telegram id, or nil when no
// such user exists. Absence is a normal outcome, not an error.
func (r *UserRepository) Find(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// Create inserts a new user row and returns the inserted id. The insert
// is not an upsert: creating a user that already exists surfaces the
// store's uniqueness error to the caller.
func (r *UserRepository) Create(ctx context.Context, telegramID int64) (int64, error) {
	user := model.User{TelegramID: telegramID}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return user.TelegramID, nil
}

// Delete removes the user row; the store cascades removal of their
// holdings. Intended for administrative cleanup.
func (r *UserRepository) Delete(ctx context.Context, telegramID int64) error {
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Delete(&model.User{}).Error; err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
