package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/dailyprofit-api/internal/application/auth"
	"github.com/jhoicas/dailyprofit-api/internal/application/business"
	"github.com/jhoicas/dailyprofit-api/internal/application/collab"
	appsync "github.com/jhoicas/dailyprofit-api/internal/application/sync"
	"github.com/jhoicas/dailyprofit-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/dailyprofit-api/internal/interfaces/http"
	"github.com/jhoicas/dailyprofit-api/pkg/config"
	"github.com/jhoicas/dailyprofit-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	bizRepo := postgres.NewBusinessRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	inviteRepo := postgres.NewInvitationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.ClaimsVerifier{}, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	syncUC := appsync.NewReconcileUseCase(txRunner, log)
	businessUC := business.NewBusinessUseCase(bizRepo, productRepo, saleRepo, expenseRepo, log)
	collabUC := collab.NewCollabUseCase(
		bizRepo, inviteRepo, txRunner,
		time.Duration(cfg.Invite.ExpiryMinutes)*time.Minute, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		SyncUC:     syncUC,
		BusinessUC: businessUC,
		CollabUC:   collabUC,
		UserRepo:   userRepo,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
