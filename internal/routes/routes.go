// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"sabzi/internal/config"
	"sabzi/internal/handlers"
	"sabzi/internal/middleware"
	"sabzi/internal/repositories"
	"sabzi/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	walletRepo := repositories.NewWalletRepository(db)

	walletService := wallet.NewService(
		walletRepo,
		repositories.CacheService,
		wallet.Config{
			MaxTransactionAmount: config.GetInt64Env("WALLET_MAX_TX_AMOUNT", wallet.DefaultMaxTransactionAmount),
			MinTransactionAmount: config.GetInt64Env("WALLET_MIN_TX_AMOUNT", wallet.DefaultMinTransactionAmount),
			DefaultMaxDeposit:    config.GetInt64Env("WALLET_MAX_DAILY_DEPOSIT", wallet.DefaultMaxDailyDeposit),
			DefaultMaxWithdrawal: config.GetInt64Env("WALLET_MAX_DAILY_WITHDRAWAL", wallet.DefaultMaxDailyWithdrawal),
			MaxDailyOperations:   config.GetIntEnv("WALLET_MAX_DAILY_OPS", wallet.DefaultMaxDailyOperations),
		},
		&wallet.NoopMetricsCollector{},
	)

	walletHandler := handlers.NewWalletHandler(
		walletService,
		config.GetInt64Env("WALLET_MIN_TX_AMOUNT", wallet.DefaultMinTransactionAmount),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		if repositories.CacheService != nil {
			if err := repositories.CacheService.HealthCheck(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", middleware.Auth)

	wallets := api.Group("/wallets")
	wallets.Post("/", walletHandler.CreateWallet)
	wallets.Get("/", walletHandler.ListWallets)
	wallets.Get("/:id", walletHandler.GetWallet)
	wallets.Get("/:id/transactions", walletHandler.TransactionHistory)
	wallets.Post("/:id/deposit", walletHandler.Deposit)
	wallets.Post("/:id/withdraw", walletHandler.Withdraw)
	wallets.Post("/:id/lock", walletHandler.Lock)
	wallets.Post("/:id/unlock", walletHandler.Unlock)
}
