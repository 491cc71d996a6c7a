package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MalyshkoA/chat-bot-mipt/internal/model"
	"github.com/MalyshkoA/chat-bot-mipt/internal/repository"
)

// purchaseDateLayout matches the microsecond timestamp text already
// present in existing databases.
const purchaseDateLayout = "2006-01-02 15:04:05.000000"

// PortfolioService wraps user and holding persistence behind the bot
// commands.
type PortfolioService struct {
	userRepo    *repository.UserRepository
	holdingRepo *repository.HoldingRepository
}

func NewPortfolioService(userRepo *repository.UserRepository, holdingRepo *repository.HoldingRepository) *PortfolioService {
	return &PortfolioService{userRepo: userRepo, holdingRepo: holdingRepo}
}

// RegisterUser makes sure a row exists for the Telegram id and reports
// whether it was just created. The user insert itself is not
// idempotent, so look before creating.
func (s *PortfolioService) RegisterUser(ctx context.Context, telegramID int64) (bool, error) {
	user, err := s.userRepo.Find(ctx, telegramID)
	if err != nil {
		return false, err
	}
	if user != nil {
		return false, nil
	}
	if _, err := s.userRepo.Create(ctx, telegramID); err != nil {
		return false, err
	}
	return true, nil
}

// AddHolding validates and records a purchase for the user, stamping it
// with the given time.
func (s *PortfolioService) AddHolding(ctx context.Context, telegramID int64, ticker string, quantity int64, unitPrice float64, now time.Time) (*model.Holding, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if unitPrice <= 0 {
		return nil, fmt.Errorf("unit price must be positive")
	}

	holding := model.Holding{
		OwnerID:      telegramID,
		Ticker:       ticker,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		PurchaseDate: now.Format(purchaseDateLayout),
	}
	if err := s.holdingRepo.Add(ctx, &holding); err != nil {
		return nil, err
	}
	return &holding, nil
}

// Holdings returns every recorded purchase for the user.
func (s *PortfolioService) Holdings(ctx context.Context, telegramID int64) ([]model.Holding, error) {
	return s.holdingRepo.ListByOwner(ctx, telegramID)
}
