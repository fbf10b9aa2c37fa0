package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storeguard/internal/health"
	"github.com/vladislavdragonenkov/storeguard/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storeguard/internal/metrics"
	"github.com/vladislavdragonenkov/storeguard/internal/service/outbox"
	"github.com/vladislavdragonenkov/storeguard/internal/service/store"
	"github.com/vladislavdragonenkov/storeguard/internal/storage/redisinv"
	httpserver "github.com/vladislavdragonenkov/storeguard/internal/transport/http"
	"github.com/vladislavdragonenkov/storeguard/internal/validation"
	"github.com/vladislavdragonenkov/storeguard/internal/version"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr     string
	MetricsAddr  string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers string
}

// DefaultConfig возвращает базовые адреса API и HTTP-метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// Run собирает зависимости и держит сервис до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	healthHandler := healthcheck.NewHandler(version.String())
	deps.RegisterHealthChecks(healthHandler)

	products := deps.Products
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		mirror := redisinv.NewMirror(redisClient, logger)
		if err := mirror.Ping(ctx); err != nil {
			logger.WithError(err).Warn("redis is unreachable, continuing without stock mirror")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			products = redisinv.NewMirroredProducts(deps.Products, mirror, logger)
			healthHandler.Register("redis", mirror.Ping)
			logger.WithField("addr", cfg.RedisAddr).Info("redis stock mirror initialized")
		}
	}
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	engine := validation.NewEngine(validation.Readers{
		Products:  products,
		Customers: deps.Customers,
		Carts:     deps.Carts,
	}, metrics.NewValidationMetrics(), logger)

	orderSvc := store.NewOrderService(deps.Orders, products, deps.Timeline, deps.Outbox, engine, nil)
	cartSvc := store.NewCartService(deps.Carts, products, engine, nil)
	productSvc := store.NewProductService(products, deps.Outbox, engine, nil)

	// Kafka producer и outbox worker поднимаются только при заданных брокерах;
	// без них события копятся в outbox до следующего запуска.
	var kafkaProducer *kafka.Producer
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		producer, err := kafka.NewProducer(brokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			logger.WithField("brokers", brokers).Info("kafka producer initialized")

			worker := outbox.NewWorker(deps.Outbox, producer)
			go worker.Run(ctx)
		}
	}
	defer func() {
		if kafkaProducer != nil {
			if err := kafkaProducer.Close(); err != nil {
				logger.WithError(err).Warn("failed to close kafka producer")
			}
		}
	}()

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	handlers := httpserver.NewHandlers(orderSvc, cartSvc, productSvc, engine, nil)
	server := httpserver.NewServer(cfg.HTTPAddr, handlers, nil)
	if err := server.Run(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
