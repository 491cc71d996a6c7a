package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MalyshkoA/chat-bot-mipt/internal/market"
	"github.com/MalyshkoA/chat-bot-mipt/internal/model"
	"github.com/MalyshkoA/chat-bot-mipt/internal/repository"
)

// DigestService builds human-readable portfolio summaries for daily
// notifications.
type DigestService struct {
	holdingRepo *repository.HoldingRepository
	resolver    *market.Resolver
	log         zerolog.Logger
}

func NewDigestService(holdingRepo *repository.HoldingRepository, resolver *market.Resolver, log zerolog.Logger) *DigestService {
	return &DigestService{
		holdingRepo: holdingRepo,
		resolver:    resolver,
		log:         log.With().Str("component", "digest").Logger(),
	}
}

// PortfolioSummary renders the user's holdings with current quotes.
// Users without holdings get an empty string so the sender can skip
// them. A failed quote lookup degrades to placeholder text; it does not
// abort the summary.
func (s *DigestService) PortfolioSummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	holdings, err := s.holdingRepo.ListByOwner(ctx, user.TelegramID)
	if err != nil {
		return "", err
	}
	if len(holdings) == 0 {
		return "", nil
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].Ticker < holdings[j].Ticker
	})

	quotes := make(map[string]string)

	var builder strings.Builder
	builder.WriteString("📊 <b>Портфель</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	for _, holding := range holdings {
		current, ok := quotes[holding.Ticker]
		if !ok {
			current = s.currentQuote(ctx, holding.Ticker)
			quotes[holding.Ticker] = current
		}
		builder.WriteString(fmt.Sprintf(
			"• <b>%s</b> — %d шт. по %s, сейчас %s\n",
			holding.Ticker, holding.Quantity, formatPrice(holding.UnitPrice), current,
		))
	}

	return strings.TrimSpace(builder.String()), nil
}

func (s *DigestService) currentQuote(ctx context.Context, ticker string) string {
	quote, err := s.resolver.Resolve(ctx, ticker)
	switch {
	case err == nil:
		return quote.String()
	case errors.Is(err, market.ErrNoQuote):
		return "нет данных"
	default:
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("quote lookup failed")
		return "источник недоступен"
	}
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
