package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coffeeStatApp/config"
	"coffeeStatApp/internal/app/dto"
	"coffeeStatApp/internal/domain/repository"
	"coffeeStatApp/internal/domain/service"
	ws "coffeeStatApp/internal/handlers/websocket"
	redisrepo "coffeeStatApp/internal/infrastructure/cache"
	"coffeeStatApp/internal/infrastructure/metrics"
	"coffeeStatApp/internal/infrastructure/queue"
	chrepo "coffeeStatApp/internal/infrastructure/storage"
	"coffeeStatApp/internal/lib/logger/sl"
)

// Processor runs until its context is cancelled
type Processor interface {
	Run(ctx context.Context) error
}

// AppContext holds all app dependencies
type AppContext struct {
	Config         *config.Config
	Log            *slog.Logger
	Datasets       *service.DatasetService
	Archive        repository.SnapshotArchive // nil when ClickHouse is unavailable
	Broadcaster    *ws.WebSocketBroadcaster
	Metrics        *metrics.PrometheusMetrics
	EventProcessor Processor
	ReqCh          chan *dto.RegenerateRequestDTO

	redis      *redisrepo.RedisRepository
	clickhouse *chrepo.ClickHouseRepository
	producer   *queue.KafkaProducer
}

// NewApp initializes the app context with all dependencies. Redis, ClickHouse and
// Kafka are optional: an unreachable backend is logged and skipped.
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*AppContext, error) {
	app := &AppContext{Config: cfg, Log: log}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info("catalog loaded",
		slog.Int("items", catalog.Len()),
		slog.Int("categories", len(catalog.Categories())),
	)

	// Cache (Redis)
	var cache repository.SnapshotCache
	if cfg.RedisEnabled {
		r := redisrepo.NewRedisRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			time.Duration(cfg.RedisTTL)*time.Second, loc)
		if err := r.Ping(ctx); err != nil {
			log.Warn("redis unavailable, continuing without cache", slog.String("addr", cfg.RedisAddr), sl.Err(err))
			_ = r.Close()
		} else {
			app.redis = r
			cache = r
			log.Info("redis cache initialized", slog.String("addr", cfg.RedisAddr))
		}
	}

	// Archive (ClickHouse)
	if cfg.ClickhouseEnabled {
		ch, err := chrepo.NewClickHouseRepository(chrepo.ClickHouseConfig{
			Addr:     cfg.ClickhouseAddr,
			Database: cfg.ClickhouseDatabase,
			Username: cfg.ClickhouseUsername,
			Password: cfg.ClickhousePassword,
			Timeout:  cfg.ClickhouseTimeout,
			Location: loc,
		})
		if err != nil {
			log.Warn("failed to connect to clickhouse, continuing without archive", sl.Err(err))
		} else {
			app.clickhouse = ch
			app.Archive = ch
			log.Info("clickhouse archive initialized", slog.String("addr", cfg.ClickhouseAddr))
		}
	}

	// Publisher (Kafka)
	var publisher *service.SnapshotPublisherUseCase
	if cfg.KafkaEnabled {
		app.producer = queue.NewKafkaProducer(queue.KafkaConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: cfg.KafkaBatchTimeout,
		})
		publisher = service.NewSnapshotPublisherUseCase(app.producer, log)
		log.Info("kafka producer initialized", slog.String("topic", cfg.KafkaTopic))
	}

	app.Metrics = NewMetrics(log)

	var archive repository.SnapshotArchive
	if app.clickhouse != nil {
		archive = app.clickhouse
	}
	app.Datasets = service.NewDatasetService(log, catalog, cache, archive, publisher, app.Metrics, service.Options{
		WindowDays: cfg.WindowDays,
		TopN:       cfg.TopItems,
		Location:   loc,
	})

	app.Broadcaster = ws.NewWebSocketBroadcaster(log)
	app.ReqCh = make(chan *dto.RegenerateRequestDTO, cfg.EventBufferSize)
	app.EventProcessor = NewEventProcessor(app.ReqCh, app.Datasets, app.Broadcaster, log)

	return app, nil
}

// NewMetrics registers the collectors the dataset service records into
func NewMetrics(log *slog.Logger) *metrics.PrometheusMetrics {
	m := metrics.NewPrometheusMetrics(log)
	m.SetCustomBuckets(service.MetricGenerationDuration, []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5})
	m.RegisterWithLabels(service.MetricDatasetsGenerated, metrics.Counter,
		"Datasets generated, by kind (regenerate or replay)", []string{"kind"})
	m.Register(service.MetricGenerationDuration, metrics.Histogram,
		"Time spent generating one dataset")
	m.RegisterWithLabels(service.MetricSnapshotLookups, metrics.Counter,
		"Snapshot lookups, by the layer that answered", []string{"layer"})
	m.RegisterWithLabels(service.MetricBackendErrors, metrics.Counter,
		"Failed cache, archive and publisher calls, by backend", []string{"backend"})
	return m
}

// Cleanup performs graceful shutdown of all components
func (a *AppContext) Cleanup(ctx context.Context) {
	if a.producer != nil {
		a.Log.Info("closing kafka producer")
		if err := a.producer.Close(); err != nil {
			a.Log.Error("error closing kafka producer", sl.Err(err))
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Error("error closing redis", sl.Err(err))
		}
	}

	if a.clickhouse != nil {
		if err := a.clickhouse.Close(); err != nil {
			a.Log.Error("error closing clickhouse", sl.Err(err))
		}
	}

	if a.Broadcaster != nil {
		a.Broadcaster.Close()
	}

	a.Log.Info("all resources cleaned up")
}
