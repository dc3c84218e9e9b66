package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/source"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	methodName := flag.String("method", "tfidf", "scoring method: tfidf or textrank")
	input := flag.String("input", "", "document file or folder of *.jsonl / *.jsonl.gz files")
	output := flag.String("output", "results.csv", "results file (.csv)")
	modelDir := flag.String("model", "", "folder of docfreq_<lang>.tsv files (overrides corpus.modelDir)")
	n := flag.Int("n", 0, "maximum n-gram size of keyphrases (overrides extraction.maxN)")
	k := flag.Int("k", 0, "maximum number of keyphrases per document (overrides extraction.topK)")
	languages := flag.String("languages", "", "comma separated language codes to process")
	redundancy := flag.Bool("redundancy-removal", false, "drop keyphrases overlapping a better one")
	progress := flag.Bool("progress", true, "show a progress bar")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Corpus.ModelDir = *modelDir
		case "n":
			cfg.Extraction.MaxN = *n
		case "k":
			cfg.Extraction.TopK = *k
		case "languages":
			cfg.Extraction.Languages = strings.Split(*languages, ",")
		case "redundancy-removal":
			cfg.Extraction.RedundancyRemoval = *redundancy
		}
	})

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err := run(cfg, *methodName, *input, *output, *progress); err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(cfg *config.Config, methodName, input, output string, progress bool) error {
	if input == "" {
		return apperrors.New(apperrors.ErrInvalidConfiguration, "-input is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	method, err := pipeline.ParseMethod(methodName)
	if err != nil {
		return apperrors.New(apperrors.ErrInvalidConfiguration, err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
		shutdown := m.StartServer(cfg.Metrics.Port, nil)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
	}

	p, err := pipeline.FromConfig(cfg, method, language.Default(), m)
	if err != nil {
		return err
	}
	if cfg.Cache.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, result caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			p.WithCache(cache.New[pipeline.Result](redisClient, nil, cfg.Redis, cfg.Cache, m))
			slog.Info("result cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	sinks, err := openSinks(ctx, cfg, method, output, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			slog.Error("closing sinks", "error", err)
		}
	}()

	src, err := source.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	stopBar := func() {}
	if progress {
		total, err := source.Count(input)
		if err != nil {
			return err
		}
		uiprogress.Start()
		bar := uiprogress.AddBar(total)
		bar.AppendCompleted()
		bar.PrependElapsed()
		p.Progress = func() { bar.Incr() }
		stopBar = uiprogress.Stop
	}

	slog.Info("extracting keyphrases",
		"method", method,
		"input", input,
		"output", output,
		"max_n", cfg.Extraction.MaxN,
		"top_k", cfg.Extraction.TopK,
		"redundancy_removal", cfg.Extraction.RedundancyRemoval,
	)
	start := time.Now()
	stats, err := p.Run(ctx, src, sinks)
	stopBar()
	if err != nil {
		return err
	}
	slog.Info("extraction finished",
		"documents", stats.Total(),
		"with_keyphrases", stats.Processed,
		"empty", stats.Empty,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"languages", p.Languages(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// openSinks always writes the CSV file and adds the Postgres and Kafka
// mirrors enabled in cfg.
func openSinks(ctx context.Context, cfg *config.Config, method pipeline.Method, output string, m *metrics.Metrics) (sink.Multi, error) {
	csvSink, err := sink.CreateCSV(output, m)
	if err != nil {
		return nil, err
	}
	sinks := sink.Multi{csvSink}

	if cfg.Sink.Postgres {
		pg, err := postgres.New(cfg.Postgres)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		if err := pg.Migrate(ctx, sink.ResultsSchema); err != nil {
			pg.Close()
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, sink.NewPostgres(pg.DB, method, cfg.Sink, m), closer(pg.Close))
		slog.Info("postgres sink enabled", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	}
	if cfg.Sink.Kafka {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Keyphrases)
		ks := sink.NewKafka(producer, method, cfg.Sink.BatchSize, cfg.Sink.FlushInterval, m)
		ks.Start(ctx)
		sinks = append(sinks, ks, closer(producer.Close))
		slog.Info("kafka sink enabled", "topic", cfg.Kafka.Topics.Keyphrases)
	}
	return sinks, nil
}

// closer adapts a resource to the sink list so that it is released after
// the sinks that use it.
type closer func() error

func (closer) Write(context.Context, *pipeline.Result) error { return nil }
func (c closer) Close() error                                { return c() }
