package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"storesync/internal/app/server/api"
	"storesync/internal/config"
	"storesync/internal/crypto"
	domainsync "storesync/internal/domain/sync"
	"storesync/internal/infrastructure/index"
	"storesync/internal/infrastructure/storage/postgres"
	"storesync/internal/infrastructure/storage/sqlite"
	"storesync/internal/platform"
	"storesync/internal/ratelimit"
	"storesync/internal/retry"
	"storesync/internal/scheduler"
	"storesync/internal/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Env)

	if err := run(conf, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(conf *config.Config, log *slog.Logger) error {
	secret := conf.Secret
	if secret == "" {
		// Не для продакшена, только чтобы локальный запуск не требовал настройки
		secret = "storesync-dev-secret-change-me"
		log.Warn("SECRET is not set, using insecure development secret")
	}
	cipher, err := crypto.NewTokenCipher(secret)
	if err != nil {
		return err
	}

	var (
		records domainsync.RecordRepository
		stores  domainsync.StoreRepository
		history domainsync.HistoryRepository
		closer  func() error
	)
	switch conf.DB.Driver {
	case "postgres":
		st, err := postgres.New(conf)
		if err != nil {
			return err
		}
		records = postgres.NewRecordRepository(st.Pool(), log)
		stores = postgres.NewStoreRepository(st.Pool(), cipher, log)
		history = postgres.NewHistoryRepository(st.Pool(), log)
		closer = st.Close
	default:
		st, err := sqlite.New(conf.DB.SQLitePath, cipher, log)
		if err != nil {
			return err
		}
		records, stores, history = st, st, st
		closer = st.Close
	}
	defer func() { _ = closer() }()

	fts, err := index.New(conf.DB.IndexPath, log)
	if err != nil {
		return err
	}
	defer func() { _ = fts.Close() }()

	limiter := ratelimit.New(conf.RateLimit.CallsPerMinute, conf.RateLimit.BackoffMultiplier)
	exec := retry.New(retry.DefaultConfig(), log)
	client := platform.NewRetryingClient(platform.New(conf.Platform.BaseURL, log), exec)

	syncService := domainsync.New(records, stores, history, fts, client, limiter,
		domainsync.Thresholds{
			IncrementalWindow: conf.Sync.IncrementalWindow,
			FullAfter:         conf.Sync.FullAfter,
		}, log)

	mux := api.New(api.Deps{
		Syncer:   syncService,
		Stores:   stores,
		History:  history,
		Searcher: fts,
		Executor: exec,
		Limiter:  limiter,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(stores, func(ctx context.Context, store domainsync.Store) error {
		_, err := syncService.PerformSync(ctx, domainsync.Request{
			StoreID: store.ID,
			Credentials: domainsync.Credentials{
				StoreDomain: store.Domain,
				AccessToken: store.AccessToken,
			},
			RespectRateLimit: true,
		})
		return err
	}, conf.Scheduler.Interval, conf.Scheduler.Enabled, log)
	go sched.Run(ctx)

	srv := &http.Server{
		Addr:    conf.Server.RunAddress,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "address", conf.Server.RunAddress)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
