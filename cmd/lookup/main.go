package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/lookup"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	resultsPath := flag.String("results", "results.csv", "results file written by the extractor")
	methodName := flag.String("method", "", "extract from document files with this method (tfidf or textrank); empty disables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	results, err := sink.ReadCSV(*resultsPath)
	if err != nil {
		slog.Warn("no stored results", "error", err)
		results = map[string]*pipeline.Result{}
	}

	var proc lookup.Processor
	if *methodName != "" {
		method, err := pipeline.ParseMethod(*methodName)
		if err != nil {
			slog.Error("invalid method", "error", err)
			os.Exit(2)
		}
		p, err := pipeline.FromConfig(cfg, method, language.Default(), nil)
		if err != nil {
			slog.Error("failed to build pipeline", "error", err)
			os.Exit(apperrors.ExitCode(err))
		}
		proc = p
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := lookup.NewHandler(results, proc, os.Stdout)
	if args := flag.Args(); len(args) > 0 {
		code := 0
		for _, name := range args {
			if err := h.Lookup(ctx, name); err != nil {
				fmt.Fprintln(os.Stderr, err)
				code = 1
			}
		}
		os.Exit(code)
	}
	if err := h.Run(ctx); err != nil {
		slog.Error("lookup failed", "error", err)
		os.Exit(1)
	}
}
