package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	redisCache "github.com/sheikh-saqib/banking-ledger/internal/cache/redis"
	"github.com/sheikh-saqib/banking-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/banking-ledger/internal/handler"
	"github.com/sheikh-saqib/banking-ledger/internal/ledger"
	"github.com/sheikh-saqib/banking-ledger/internal/middleware"
)

var seedAccounts []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger HTTP API",
	Example: `  STORAGE=memory ledger serve --account acc-1:usr-1:1000 --account acc-2:usr-2:500
  STORAGE=postgres DATABASE_URL=postgres://... ledger serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringArrayVar(&seedAccounts, "account", nil, "Account to create at startup as id:owner:balance (repeatable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	for _, s := range seedAccounts {
		acc, err := parseAccountSeed(s)
		if err != nil {
			return err
		}
		if err := be.addAccount(ctx, acc); err != nil {
			return fmt.Errorf("seed account %s: %w", acc.ID, err)
		}
	}

	opts := []ledger.Option{
		ledger.WithLogger(logger),
		ledger.WithOverdraftProtection(cfg.OverdraftProtection),
	}

	if cfg.RedisAddr != "" {
		rdb, err := redisCache.NewClient(ctx, cfg.RedisAddr, "", 0)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts = append(opts, ledger.WithViewCache(redisCache.NewViewCache(rdb, cfg.RedisTTL, logger)))
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		opts = append(opts, ledger.WithPublisher(publisher))
	}

	svc := ledger.NewLedger(be.ledger, be.accounts, opts...)
	router := newRouter(svc, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger service starting", "port", cfg.Port, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(svc *ledger.Ledger, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1", middleware.OwnerMiddleware())
	handler.NewTransactionHandler(svc, svc).Register(v1)
	return router
}

