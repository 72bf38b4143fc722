package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/aetherdesk-ai/aetherdesk-backend/api/routes"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/analytics"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/auth"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/bookings"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/catalog"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/contact"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/files"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/invitations"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/memberships"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/orders"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/tickets"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/users"
	"github.com/aetherdesk-ai/aetherdesk-backend/internal/workspace"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/auth/session"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/config"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/db"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/logger"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/migrate"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/outbox"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/redis"
	"github.com/aetherdesk-ai/aetherdesk-backend/pkg/storage/gcs"
	stripepkg "github.com/aetherdesk-ai/aetherdesk-backend/pkg/stripe"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	membersRepo := memberships.NewRepository(gormDB)
	workspaceRepo := workspace.NewRepository(gormDB)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	var billing stripepkg.BillingAPI
	if cfg.Stripe.APIKey != "" {
		stripeClient, err := stripepkg.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to initialize stripe", err)
			os.Exit(1)
		}
		billing = stripepkg.NewBillingAPI(stripeClient)
	} else {
		logg.Warn(context.Background(), "stripe api key not set, billing lookups disabled")
	}

	workspaceService, err := workspace.NewService(workspaceRepo, membersRepo, usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create workspace service", err)
		os.Exit(1)
	}

	invitationsService, err := invitations.NewService(invitations.ServiceParams{
		DB:          dbClient,
		Members:     membersRepo,
		Users:       usersRepo,
		Workspaces:  workspaceService,
		Outbox:      outboxService,
		Billing:     billing,
		InviteCfg:   cfg.Invites,
		PasswordCfg: cfg.Password,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create invitations service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          usersRepo,
		SessionManager: sessionManager,
		Workspaces:     workspaceService,
		Invites:        invitationsService,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:          dbClient,
		Users:       usersRepo,
		Workspaces:  workspaceRepo,
		Outbox:      outboxService,
		PasswordCfg: cfg.Password,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	accountService, err := auth.NewAccountService(auth.AccountServiceParams{
		DB:          dbClient,
		Users:       usersRepo,
		Outbox:      outboxService,
		PasswordCfg: cfg.Password,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create account service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		DB:     dbClient,
		Repo:   catalog.NewRepository(gormDB),
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	bookingsService, err := bookings.NewService(bookings.ServiceParams{
		DB:     dbClient,
		Repo:   bookings.NewRepository(gormDB),
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		DB:     dbClient,
		Repo:   orders.NewRepository(gormDB),
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	ticketsService, err := tickets.NewService(tickets.ServiceParams{
		DB:     dbClient,
		Repo:   tickets.NewRepository(gormDB),
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tickets service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Repo:   analytics.NewRepository(gormDB),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	var filesService files.Service
	if cfg.Storage.BucketName != "" {
		storageClient, err := gcs.NewClient(context.Background(), cfg.Storage, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to initialize gcs", err)
			os.Exit(1)
		}
		filesService, err = files.NewService(storageClient, workspaceService, cfg.Storage.MaxUploadBytes, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create files service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcs bucket not set, file endpoints disabled")
	}

	contactService, err := contact.NewService(contact.ServiceParams{
		DB:     dbClient,
		Repo:   contact.NewRepository(gormDB),
		Outbox: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Params{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		SessionChecker: sessionManager,
		Users:          usersRepo,
		Auth:           authService,
		Register:       registerService,
		Account:        accountService,
		Workspace:      workspaceService,
		Invitations:    invitationsService,
		Catalog:        catalogService,
		Bookings:       bookingsService,
		Orders:         ordersService,
		Tickets:        ticketsService,
		Analytics:      analyticsService,
		Contact:        contactService,
		Billing:        billing,
		Files:          filesService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}
