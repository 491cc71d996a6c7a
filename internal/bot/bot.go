package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/MalyshkoA/chat-bot-mipt/internal/market"
	"github.com/MalyshkoA/chat-bot-mipt/internal/repository"
	"github.com/MalyshkoA/chat-bot-mipt/internal/service"
)

const (
	menuLabelAdd   = "➕ Купить"
	menuLabelList  = "📋 Мои акции"
	menuLabelPrice = "💹 Цена"
	menuLabelHelp  = "ℹ️ Помощь"
)

const helpText = `Я помогаю вести учёт акций и узнавать их цены.

<b>Команды</b>
/add ТИКЕР КОЛИЧЕСТВО ЦЕНА — записать покупку, например /add SBER 10 250.5
/list — показать записанные акции
/price ТИКЕР — текущая цена: Мосбиржа для российских бумаг, мировой рынок для остальных
/help — эта справка`

// Bot aggregates the Telegram API with the portfolio services.
type Bot struct {
	api          *tgbotapi.BotAPI
	userRepo     *repository.UserRepository
	portfolioSvc *service.PortfolioService
	digestSvc    *service.DigestService
	resolver     *market.Resolver
	log          zerolog.Logger
}

func New(token string, userRepo *repository.UserRepository, portfolioSvc *service.PortfolioService, digestSvc *service.DigestService, resolver *market.Resolver, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	return &Bot{
		api:          api,
		userRepo:     userRepo,
		portfolioSvc: portfolioSvc,
		digestSvc:    digestSvc,
		resolver:     resolver,
		log:          log.With().Str("component", "bot").Logger(),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Error().Err(err).Int64("chat", update.Message.Chat.ID).Msg("handle message")
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
		return b.sendText(msg.Chat.ID, "Я понимаю только команды. Набери /help, чтобы посмотреть список.")
	}

	b.log.Info().Int64("from", msg.From.ID).Str("command", msg.Command()).Msg("command")
	return b.handleCommand(ctx, msg)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelList:
		return true, b.handleList(ctx, msg)
	case menuLabelAdd:
		return true, b.sendText(msg.Chat.ID, "Чтобы записать покупку, набери /add ТИКЕР КОЛИЧЕСТВО ЦЕНА, например /add SBER 10 250.5")
	case menuLabelPrice:
		return true, b.sendText(msg.Chat.ID, "Чтобы узнать цену, набери /price ТИКЕР, например /price GAZP")
	case menuLabelHelp:
		return true, b.sendText(msg.Chat.ID, helpText)
	}
	return false, nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "add":
		return b.handleAdd(ctx, msg)
	case "list":
		return b.handleList(ctx, msg)
	case "price":
		return b.handlePrice(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Не знаю такую команду. Набери /help для списка команд.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	created, err := b.portfolioSvc.RegisterUser(ctx, msg.From.ID)
	if err != nil {
		return fmt.Errorf("register user %d: %w", msg.From.ID, err)
	}

	greeting := "С возвращением! Портфель на месте."
	if created {
		greeting = "Привет! Я запомнил тебя и готов вести твой портфель."
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, greeting+"\n\n"+helpText)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = menuKeyboard()
	if _, err := b.api.Send(reply); err != nil {
		return fmt.Errorf("send greeting: %w", err)
	}
	return nil
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 3 {
		return b.sendText(msg.Chat.ID, "Нужно три значения: /add ТИКЕР КОЛИЧЕСТВО ЦЕНА, например /add SBER 10 250.5")
	}

	quantity, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || quantity <= 0 {
		return b.sendText(msg.Chat.ID, "Количество должно быть целым положительным числом.")
	}
	unitPrice, err := strconv.ParseFloat(strings.ReplaceAll(args[2], ",", "."), 64)
	if err != nil || unitPrice <= 0 {
		return b.sendText(msg.Chat.ID, "Цена должна быть положительным числом, например 250.5")
	}

	// A holding row needs its owner row; /add must work even before /start.
	if _, err := b.portfolioSvc.RegisterUser(ctx, msg.From.ID); err != nil {
		return fmt.Errorf("register user %d: %w", msg.From.ID, err)
	}

	holding, err := b.portfolioSvc.AddHolding(ctx, msg.From.ID, args[0], quantity, unitPrice, time.Now())
	if err != nil {
		b.log.Error().Err(err).Int64("from", msg.From.ID).Msg("add holding")
		return b.sendText(msg.Chat.ID, "Не получилось записать покупку, попробуй ещё раз.")
	}

	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"Записал: <b>%s</b> — %d шт. по %s.",
		html.EscapeString(holding.Ticker), holding.Quantity, formatPrice(holding.UnitPrice),
	))
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message) error {
	holdings, err := b.portfolioSvc.Holdings(ctx, msg.From.ID)
	if err != nil {
		return fmt.Errorf("list holdings for %d: %w", msg.From.ID, err)
	}
	if len(holdings) == 0 {
		return b.sendText(msg.Chat.ID, "Пока ни одной записи. Добавь первую через /add ТИКЕР КОЛИЧЕСТВО ЦЕНА.")
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Твои акции</b>\n")
	for _, holding := range holdings {
		builder.WriteString(fmt.Sprintf(
			"• <b>%s</b> — %d шт. по %s (куплено %s)\n",
			html.EscapeString(holding.Ticker), holding.Quantity, formatPrice(holding.UnitPrice), holding.PurchaseDate,
		))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handlePrice(ctx context.Context, msg *tgbotapi.Message) error {
	ticker := strings.ToUpper(strings.TrimSpace(msg.CommandArguments()))
	if ticker == "" {
		return b.sendText(msg.Chat.ID, "Укажи тикер: /price ТИКЕР, например /price GAZP")
	}

	quote, err := b.resolver.Resolve(ctx, ticker)
	switch {
	case err == nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("<b>%s</b>: %s", html.EscapeString(ticker), quote.String()))
	case errors.Is(err, market.ErrNoQuote):
		return b.sendText(msg.Chat.ID, fmt.Sprintf("По тикеру %s нет данных ни на бирже, ни у мирового провайдера.", html.EscapeString(ticker)))
	default:
		b.log.Error().Err(err).Str("ticker", ticker).Msg("resolve price")
		return b.sendText(msg.Chat.ID, "Источник котировок сейчас недоступен, попробуй позже.")
	}
}

// SendDailyDigests sends a portfolio summary to every known user.
func (b *Bot) SendDailyDigests(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.digestSvc.PortfolioSummary(ctx, user, now)
		if err != nil {
			b.log.Error().Err(err).Int64("user", user.TelegramID).Msg("build digest")
			continue
		}
		if text == "" {
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			b.log.Error().Err(err).Int64("user", user.TelegramID).Msg("send digest")
		}
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelAdd),
			tgbotapi.NewKeyboardButton(menuLabelList),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelPrice),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
