package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gosuri/uiprogress"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/source"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	input := flag.String("input", "", "document file or folder of *.jsonl / *.jsonl.gz files")
	output := flag.String("output", "", "folder to write docfreq_<lang>.tsv files to (overrides corpus.modelDir)")
	n := flag.Int("n", 0, "maximum n-gram size (overrides corpus.maxN)")
	partitions := flag.Int("partitions", 0, "number of concurrent counting partitions (overrides corpus.partitions)")
	languages := flag.String("languages", "", "comma separated language codes to build")
	progress := flag.Bool("progress", true, "show a progress bar")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Corpus.ModelDir = *output
		case "n":
			cfg.Corpus.MaxN = *n
		case "partitions":
			cfg.Corpus.Partitions = *partitions
		case "languages":
			cfg.Extraction.Languages = strings.Split(*languages, ",")
		}
	})

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err := run(cfg, *input, *progress); err != nil {
		slog.Error("corpus build failed", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(cfg *config.Config, input string, progress bool) error {
	if input == "" {
		return apperrors.New(apperrors.ErrInvalidConfiguration, "-input is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := corpus.OptionsFrom(cfg)
	if err != nil {
		return err
	}
	builder, err := corpus.NewBuilder(language.Default(), opts, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
		builder.Progress = func() { bar.Incr() }
		stopBar = uiprogress.Stop
	}

	slog.Info("building document frequencies",
		"input", input,
		"model_dir", opts.ModelDir,
		"max_n", opts.MaxN,
		"normalization", opts.Normalization,
		"partitions", opts.Partitions,
	)
	start := time.Now()
	report, err := builder.Build(ctx, src)
	stopBar()
	if err != nil {
		return err
	}
	langs := make([]string, 0, len(report.Languages))
	for lang := range report.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		st := report.Languages[lang]
		fmt.Printf("%s\t%d documents\t%d terms\t%s\n", lang, st.Documents, st.Terms, st.Path)
	}
	slog.Info("corpus build finished",
		"languages", len(report.Languages),
		"skipped", report.Skipped,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
