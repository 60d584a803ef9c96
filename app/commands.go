package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"example.com/mystic-prints/app/internal/config"
	"example.com/mystic-prints/app/internal/infra/automation"
	"example.com/mystic-prints/app/internal/infra/events"
	"example.com/mystic-prints/app/internal/infra/mail"
	"example.com/mystic-prints/app/internal/infra/notify"
	"example.com/mystic-prints/app/internal/infra/persistence/sqlstore"
	"example.com/mystic-prints/app/internal/infra/printful"
	"example.com/mystic-prints/app/internal/infra/security"
	"example.com/mystic-prints/app/internal/infra/session"
	httpapi "example.com/mystic-prints/app/internal/interface/http"
	"example.com/mystic-prints/app/internal/logging"
	artsourceuc "example.com/mystic-prints/app/internal/usecase/artsource"
	authuc "example.com/mystic-prints/app/internal/usecase/auth"
	cartuc "example.com/mystic-prints/app/internal/usecase/cart"
	checkoutuc "example.com/mystic-prints/app/internal/usecase/checkout"
	orderuc "example.com/mystic-prints/app/internal/usecase/order"
	productuc "example.com/mystic-prints/app/internal/usecase/product"
	profileuc "example.com/mystic-prints/app/internal/usecase/profile"
	workflowuc "example.com/mystic-prints/app/internal/usecase/workflow"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "mystic-prints",
		Short:        "Mystic Prints storefront backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")

	root.AddCommand(newServeCmd(&configPath), newMigrateCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(sqlstore.Up), string(sqlstore.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
			if err != nil {
				return err
			}
			if err := sqlstore.Migrate(dialect, cfg.Database.DSN, sqlstore.Direction(args[0])); err != nil {
				return err
			}
			cmd.Printf("migrations %s applied (%s)\n", args[0], dialect)
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	dialect, err := sqlstore.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := sqlstore.Migrate(dialect, cfg.Database.DSN, sqlstore.Up); err != nil {
			return err
		}
		logger.Info("database migrated", zap.String("driver", string(dialect)))
	}

	db, err := sqlstore.Open(ctx, dialect, cfg.Database.DSN, sqlstore.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	slots := session.NewRedisCartStore(rdb, cfg.Cart.SlotTTL)
	if err := slots.Ping(ctx); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}

	hasher, err := security.NewBcryptService(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	profiles := sqlstore.NewProfileRepository(db)
	products := sqlstore.NewProductRepository(db)
	orders := sqlstore.NewOrderRepository(db)

	provider := printful.NewClient(printful.Config{
		BaseURL:         cfg.Fulfillment.BaseURL,
		APIKey:          cfg.Fulfillment.APIKey,
		Timeout:         cfg.Fulfillment.Timeout,
		BreakerFailures: cfg.Fulfillment.BreakerFailures,
		BreakerCooldown: cfg.Fulfillment.BreakerCooldown,
	}, logger)

	hub := notify.NewHub(cfg.Cart.NoticeLimit)
	diagnostics := cartuc.NewDiagnostics(cfg.Cart.DiagnosticsBuffer, cfg.Cart.DiagnosticsKeep)

	var listeners []checkoutuc.OrderListener
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer publisher.Close()
		listeners = append(listeners, publisher)
	}
	if cfg.Mail.Addr != "" {
		listeners = append(listeners, mail.NewMailer(mail.Config{
			Addr:     cfg.Mail.Addr,
			From:     cfg.Mail.From,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
		}))
	}

	sessions := cartuc.NewSessions(cartuc.StoreDeps{
		Local:       slots,
		Remote:      orders,
		Notifier:    hub,
		Diagnostics: diagnostics,
		Logger:      logger,
		SyncTimeout: cfg.Cart.SyncTimeout,
	}, cfg.Cart.IdleTTL)
	defer sessions.Close()

	api := httpapi.NewAPI(httpapi.Dependencies{
		AuthService: authuc.NewService(
			profiles,
			hasher,
			security.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		),
		ProfileService: profileuc.NewService(profiles),
		ProductService: productuc.NewService(products, provider),
		OrderService:   orderuc.NewService(orders),
		CheckoutService: checkoutuc.NewService(checkoutuc.Deps{
			Fulfillment: provider,
			Orders:      orders,
			Notifier:    hub,
			Diagnostics: diagnostics,
			Listeners:   listeners,
			Logger:      logger,
		}),
		WorkflowService: workflowuc.NewService(
			sqlstore.NewWorkflowRepository(db),
			automation.NewWebhookClient(cfg.Automation.Timeout, logger),
			logger,
		),
		ArtSourceService: artsourceuc.NewService(sqlstore.NewArtSourceRepository(db)),
		Sessions:         sessions,
		Diagnostics:      diagnostics,
		Notices:          hub,
		Catalog:          provider,
		Logger:           logger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		diagnostics.Run(gctx)
		return nil
	})
	g.Go(func() error {
		sessions.Run(gctx, cfg.Cart.SweepInterval)
		return nil
	})
	g.Go(func() error {
		sweepNotices(gctx, hub, cfg.Cart.SweepInterval, cfg.Cart.IdleTTL)
		return nil
	})
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("driver", string(dialect)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sweepNotices drops notice feeds nobody drained within ttl.
func sweepNotices(ctx context.Context, hub *notify.Hub, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			hub.Sweep(now, ttl)
		}
	}
}
