// Command server runs the quote-and-bind HTTP API. main only wires
// dependencies and owns the process lifecycle; business logic lives in the
// internal services packages.
//
// Postgres, Redis, and Kafka are all optional: leave their env vars unset
// and the server runs self-contained on in-memory stores, which is how the
// end-to-end tests and local demos use it.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lanewise/internal/binding"
	bindingmetrics "lanewise/internal/binding/metrics"
	"lanewise/internal/events"
	jwttoken "lanewise/internal/jwt_token"
	"lanewise/internal/lookup"
	lookupmetrics "lanewise/internal/lookup/metrics"
	"lanewise/internal/platform/config"
	"lanewise/internal/platform/httpserver"
	"lanewise/internal/platform/logger"
	"lanewise/internal/platform/postgres"
	platformredis "lanewise/internal/platform/redis"
	"lanewise/internal/policy"
	"lanewise/internal/quote"
	"lanewise/internal/ratelimit"
	"lanewise/internal/rating"
	ratingmetrics "lanewise/internal/rating/metrics"
	httptransport "lanewise/internal/transport/http"
)

const (
	eventBuffer     = 256
	lookupTimeout   = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. A nil DB means "not configured": stores fall back to memory.
	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		log.Info("postgres connected")
	} else {
		log.Warn("postgres not configured, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	// Lifecycle event stream. The stream is advisory: without Kafka the
	// events land in an in-process sink and nothing else changes.
	var sink events.Sink = events.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("kafka connected", slog.String("topic", cfg.KafkaTopic))
	}
	publisher := events.NewPublisher(sink, eventBuffer, log)
	defer publisher.Close()

	// Vehicle data enrichment: cache-first with a 24h TTL.
	var cache lookup.Cache = lookup.NewMemoryCache(cfg.Lookup.CacheTTL)
	if redisClient != nil {
		cache = lookup.NewRedisCache(redisClient.Client, cfg.Lookup.CacheTTL)
	}
	provider := lookup.NewHTTPProvider(cfg.Lookup.ProviderBaseURL, lookupTimeout)
	enricher := lookup.NewService(provider, cache, log, lookupmetrics.New())

	var quoteStore quote.Store = quote.NewInMemoryStore()
	var policyStore policy.Store = policy.NewInMemoryStore()
	if db != nil {
		quoteStore = quote.NewPostgresStore(db)
		policyStore = policy.NewPostgresStore(db)
	}

	calculator := rating.NewCalculator(rating.Convention{
		FlatInPercentageBase: cfg.Rating.FlatInPercentageBase,
	}, log, ratingmetrics.New())

	quotes := quote.NewService(quoteStore, calculator, publisher, log).WithEnricher(enricher)
	policies := policy.NewService(policyStore, publisher, log)
	binder := binding.NewService(
		quotes, quoteStore, policyStore,
		binding.NewStubGateway(), publisher, log, bindingmetrics.New())

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "lanewise", "lanewise-api")

	var limit func(http.Handler) http.Handler
	if cfg.RateLimit.PerAgent > 0 {
		var limitStore ratelimit.Store = ratelimit.NewInMemoryStore()
		if redisClient != nil {
			limitStore = ratelimit.NewRedisStore(redisClient.Client)
		}
		limit = ratelimit.NewMiddleware(limitStore, log).PerAgent(cfg.RateLimit.PerAgent, cfg.RateLimit.Window)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Quotes:    quote.NewHandler(quotes),
		Binding:   binding.NewHandler(binder),
		Policies:  policy.NewHandler(policies),
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		RateLimit: limit,
		Logger:    log,
		Health: func(r *http.Request) error {
			if db != nil {
				if err := db.PingContext(r.Context()); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(r.Context())
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
