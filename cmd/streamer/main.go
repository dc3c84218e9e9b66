package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/stream"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	methodName := flag.String("method", "tfidf", "scoring method: tfidf or textrank")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
	method, err := pipeline.ParseMethod(*methodName)
	if err != nil {
		slog.Error("invalid method", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	checker := health.NewChecker(5 * time.Second)
	checker.Register("kafka", health.Ping(func(ctx context.Context) error {
		return kafka.Ping(ctx, cfg.Kafka.Brokers)
	}, true))
	if cfg.Metrics.Enabled {
		shutdown := m.StartServer(cfg.Metrics.Port, map[string]http.Handler{"/readyz": checker.Handler()})
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
	}

	p, err := pipeline.FromConfig(cfg, method, language.Default(), m)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
	if cfg.Cache.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			checker.Register("redis", health.Ping(redisClient.Ping, false))
			p.WithCache(cache.New[pipeline.Result](redisClient, nil, cfg.Redis, cfg.Cache, m))
		}
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Keyphrases)
	defer producer.Close()
	results := sink.NewKafka(producer, method, cfg.Sink.BatchSize, cfg.Sink.FlushInterval, m)
	results.Start(ctx)
	out := sink.Multi{results}

	if cfg.Sink.Postgres {
		pg, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		checker.Register("postgres", health.Ping(pg.DB.PingContext, true))
		if err := pg.Migrate(ctx, sink.ResultsSchema); err != nil {
			slog.Error("failed to create results table", "error", err)
			os.Exit(1)
		}
		out = append(out, sink.NewPostgres(pg.DB, method, cfg.Sink, m))
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.Documents, stream.HandleMessage(p, out))
	defer consumer.Close()

	slog.Info("keyphrase streamer ready, consuming from kafka",
		"method", method,
		"topic", cfg.Kafka.Topics.Documents,
		"results_topic", cfg.Kafka.Topics.Keyphrases,
		"group", cfg.Kafka.ConsumerGroup,
		"checks", checker.Names(),
	)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}

	slog.Info("flushing results before shutdown")
	if err := out.Close(); err != nil {
		slog.Error("final flush failed", "error", err)
	}
	slog.Info("keyphrase streamer stopped", "languages", p.Languages())
}
