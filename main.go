package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/itish2003/searchdoc/config"
	"github.com/itish2003/searchdoc/controller"
	"github.com/itish2003/searchdoc/logger"
	"github.com/itish2003/searchdoc/services"
)

type rootFlags struct {
	logLevel string
	envFile  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "searchdoc",
		Short:         "Search the web, answer with citations, and export the answer as HTML and PDF",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), flags)
			},
		},
		newRenderCmd(),
		newHashPasswordCmd(),
	)
	return root
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(config.Options{EnvFile: flags.envFile})
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runServe(parent context.Context, flags *rootFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, limiters, closeStore, err := newSessionBackend(ctx, cfg.Session, log)
	if err != nil {
		log.Error("failed to set up session store", zap.Error(err))
		return err
	}
	defer closeStore()

	llm, err := services.NewLLMClient(ctx, cfg.LLM, log)
	if err != nil {
		log.Error("failed to set up language models", zap.Error(err))
		return err
	}
	search := services.NewSerpAPIClient(cfg.Search, log)
	analyzer := services.NewAnalyzer(search, llm, nil, log)
	auth := services.NewAuthService(cfg.Credentials.Users, sessions, cfg.Session, log)

	watcher := services.NewCredentialsWatcher(cfg.CredentialsFile, auth, os.Getenv, log)
	if err := watcher.Start(ctx); err != nil {
		log.Warn("credentials hot reload disabled", zap.Error(err))
	}

	router, err := controller.NewRouter(controller.RouterDeps{
		Auth:      auth,
		Analysis:  analyzer,
		RateLimit: cfg.RateLimit,
		Limiters:  limiters,
		Secure:    cfg.Session.Secure,
		Log:       log,
	})
	if err != nil {
		log.Error("failed to build router", zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

// newSessionBackend picks the session store and the matching limiter stores.
func newSessionBackend(ctx context.Context, cfg config.SessionConfig, log *zap.Logger) (services.SessionStore, controller.LimiterStoreFactory, func(), error) {
	if cfg.Store != "redis" {
		return services.NewMemorySessionStore(cfg.TTL), controller.MemoryLimiterStores(), func() {}, nil
	}
	client, err := services.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("using redis for sessions and rate limits")
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}
	return services.NewRedisSessionStore(client, cfg.TTL), controller.RedisLimiterStores(client), closeFn, nil
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for use in credentials.yml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
