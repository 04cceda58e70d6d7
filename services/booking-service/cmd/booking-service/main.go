package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/luxebeauty/salonbook/libs/config"
	"github.com/luxebeauty/salonbook/libs/db"
	"github.com/luxebeauty/salonbook/libs/httpx"
	"github.com/luxebeauty/salonbook/libs/kafkax"
	otelx "github.com/luxebeauty/salonbook/libs/otel"
	"github.com/luxebeauty/salonbook/libs/runtime"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/availability"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/booking"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/catalog"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/events"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/handlers"
	"github.com/luxebeauty/salonbook/services/booking-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	hours := availability.WorkingHours{
		StartHour: config.Int("WORKING_HOURS_START", 9),
		EndHour:   config.Int("WORKING_HOURS_END", 19),
	}
	slotMinutes := config.Int("SLOT_MINUTES", 30)
	if _, err := availability.Grid(time.Now(), hours, slotMinutes, nil); err != nil {
		logger.Error("invalid working hours configuration", "err", err)
		panic(err)
	}

	ledger := booking.NewLedger()
	cat := catalog.New()
	cat.SeedDefaultServices()

	var readyChecks []runtime.ReadyCheck

	var store storage.SnapshotStore
	if dbURL := config.String("DATABASE_URL", ""); dbURL != "" {
		pool, err := db.Open(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()

		pg := storage.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("schema migration failed", "err", err)
			panic(err)
		}
		store = pg
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "postgres", Check: db.ReadyCheck(pool)})
	}

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: storage.RedisReadyCheck(rdb)})
	}
	if store == nil && rdb != nil {
		store = storage.NewRedisStore(rdb, config.String("SNAPSHOT_KEY", ""))
	}

	if store != nil {
		appts, err := store.Load(ctx)
		switch {
		case err != nil:
			logger.Error("ledger snapshot load failed", "err", err)
		case len(appts) > 0:
			if err := ledger.Restore(appts); err != nil {
				logger.Error("ledger restore failed", "err", err)
			} else {
				logger.Info("ledger restored", "appointments", len(appts))
			}
		}
	}

	brokers := config.String("KAFKA_BROKERS", "")
	publisher := events.NewPublisher(brokers, logger)
	go publisher.Run(ctx)
	if publisher.Enabled() {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	var saver *storage.AutoSaver
	if store != nil {
		interval := time.Duration(config.Int("SNAPSHOT_INTERVAL_SECONDS", 30)) * time.Second
		saver = storage.NewAutoSaver(store, ledger, logger, interval)
		go saver.Run(ctx)
	}

	digest := events.NewSlotDigest(ledger, publisher, logger, hours, slotMinutes,
		time.Duration(config.Int("OPEN_SLOT_DIGEST_MINUTES", 15))*time.Minute)
	go digest.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	handler := handlers.NewBookingHandler(ledger, cat, publisher, saver, logger, handlers.Config{
		Hours:       hours,
		SlotMinutes: slotMinutes,
	})
	handler.Register(mux)

	var limiter httpx.Middleware
	if rdb != nil {
		limiter = httpx.NewRedisRateLimiter(rdb, config.Int("RATE_LIMIT", 120), time.Minute, service).
			Middleware(logger, true)
	} else {
		limiter = httpx.NewRateLimiter(config.Int("RATE_LIMIT", 120), time.Minute).Middleware()
	}

	chained := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		limiter,
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
	)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           otelhttp.NewHandler(chained, service),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening",
		"port", port,
		"working_hours_start", hours.StartHour,
		"working_hours_end", hours.EndHour,
		"slot_minutes", slotMinutes,
		"salon", config.String("SALON_NAME", "Luxe Beauty Studio"),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited", "err", err)
		panic(err)
	}
}
