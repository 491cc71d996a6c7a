package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MalyshkoA/chat-bot-mipt/internal/bot"
	"github.com/MalyshkoA/chat-bot-mipt/internal/config"
	"github.com/MalyshkoA/chat-bot-mipt/internal/market"
	"github.com/MalyshkoA/chat-bot-mipt/internal/repository"
	"github.com/MalyshkoA/chat-bot-mipt/internal/service"
	"github.com/MalyshkoA/chat-bot-mipt/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{})
		fallback.Fatal().Err(err).Msg("config")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
	log.Info().Msg("starting stock bot")

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	moexClient := market.NewMoexClient(cfg.MoexBaseURL, log)
	yahooClient := market.NewYahooClient(cfg.YahooBaseURL, log)
	resolver := market.NewResolver(moexClient, yahooClient, log)

	portfolioSvc := service.NewPortfolioService(userRepo, holdingRepo)
	digestSvc := service.NewDigestService(holdingRepo, resolver, log)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, portfolioSvc, digestSvc, resolver, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bot")
	}

	if cfg.DigestTime != "" {
		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleDaily(cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := telegramBot.SendDailyDigests(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("digest")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("schedule digest")
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Info().Str("time", cfg.DigestTime).Msg("daily digest scheduled")
	}

	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot stopped with error")
	}
	log.Info().Msg("shutdown complete")
}
