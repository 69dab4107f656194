package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/caarlos0/env/v6"
	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"pricetracker/cmd/tracker/config"
	"pricetracker/internal/detector"
	"pricetracker/internal/handler"
	"pricetracker/internal/ledger"
	"pricetracker/internal/pagequery"
	"pricetracker/internal/platform/rabbitmq"
	"pricetracker/internal/platform/store"
	"pricetracker/internal/tracker"
	"pricetracker/pkg/v1/actions"
)

const (
	// UserAgent is user agent header value used when fetching watched pages.
	UserAgent = "price-tracker/0.0.1"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// missing .env file is fine, env variables may be set directly
	_ = godotenv.Load()

	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't parse env variables")
	}

	amqpConnection, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't open RabbitMQ connection")
	}

	conn, err := rabbitmq.NewRabbitMQ(amqpConnection, cfg.RabbitMQ.Exchange)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't open RabbitMQ channel")
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("backend", cfg.StoreBackend).
			Msg("can't open store")
	}

	led := ledger.New(st)

	han := handler.NewHandler(conn, led, &logger)

	// start consuming and handling action requests
	err = han.Start(ctx, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("can't start consuming")
	}

	if len(cfg.WatchURLs) > 0 {
		watcher, err := newWatcher(cfg, amqpConnection, logger)
		if err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't build watcher")
		}

		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("watcher stopped")
				cancel()
			}
		}()
	}

	logger.Info().Msg("price tracker up and running")

	// handle graceful shutdown and context cancellation
	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-termChan:
		cancel()
	case <-ctx.Done():
	}

	logger.Info().Msg("graceful shutdown start")

	// wait for consumer to finish
	<-conn.Done()

	// close connections
	wg := sync.WaitGroup{}
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := closeStore(); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't close store")
		}
	}()

	go func() {
		defer wg.Done()
		if err := amqpConnection.Close(); err != nil {
			logger.Fatal().
				Err(err).
				Msg("can't close RabbitMQ connection")
		}
	}()

	wg.Wait()

	logger.Info().Msg("graceful shutdown successful")
}

// openStore opens the configured store backend and returns it with its
// closer.
func openStore(ctx context.Context, cfg config.Config) (store.Store, func() error, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemory(), func() error { return nil }, nil
	case "sqlite":
		st, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "postgres":
		pgDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgres(pgDB), pgDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

// newWatcher wires the detector-side pipeline: live pages fetched over HTTP,
// sessions submitting through the actions client over RabbitMQ RPC.
func newWatcher(cfg config.Config, amqpConnection *amqp.Connection, logger zerolog.Logger) (*tracker.Watcher, error) {
	detectorOps := []detector.Option{}
	if cfg.SelectorsFile != "" {
		selectors, err := detector.LoadSelectors(cfg.SelectorsFile)
		if err != nil {
			return nil, err
		}
		detectorOps = append(detectorOps, detector.WithSelectors(selectors))
	}

	rpc, err := rabbitmq.NewRPC(amqpConnection, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Queue)
	if err != nil {
		return nil, err
	}
	client := actions.NewClient(rpc)

	httpClient := resty.New().
		SetTimeout(cfg.HTTPTimeout).
		SetHeader("User-Agent", UserAgent)

	watcher := tracker.NewWatcher(
		cfg.WatchURLs,
		func(url string) pagequery.Page {
			return pagequery.NewLivePage(httpClient, url)
		},
		func() *tracker.Session {
			return tracker.NewSession(
				detector.New(detectorOps...),
				client,
				tracker.NewLogRenderer(logger),
				logger,
			)
		},
		logger,
		tracker.WithVisitInterval(cfg.VisitInterval),
	)

	return watcher, nil
}
