// Package corpus builds the per-language document-frequency files the
// TF-IDF scorer loads. Documents are spread over a fixed number of
// partitions counted concurrently, and the partition counts are merged
// before writing.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/docfreq"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/model"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

type Options struct {
	ModelDir        string
	MaxN            int
	Normalization   document.Normalization
	FilterStopwords bool
	Partitions      int
	// Languages restricts the build to these codes. Empty builds every
	// language with a linguistic bundle.
	Languages []string
}

// OptionsFrom reads the corpus options from cfg.
func OptionsFrom(cfg *config.Config) (Options, error) {
	norm, err := document.ParseNormalization(cfg.Corpus.Normalization)
	if err != nil {
		return Options{}, err
	}
	return Options{
		ModelDir:        cfg.Corpus.ModelDir,
		MaxN:            cfg.Corpus.MaxN,
		Normalization:   norm,
		FilterStopwords: cfg.Corpus.Stopwords,
		Partitions:      cfg.Corpus.Partitions,
		Languages:       cfg.Extraction.Languages,
	}, nil
}

// LanguageStats describes one written corpus file.
type LanguageStats struct {
	Documents int
	Terms     int
	Path      string
}

type Report struct {
	Languages map[string]LanguageStats
	Skipped   int
}

// Builder is single use: call Build once.
type Builder struct {
	reg     *language.Registry
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger

	readers     map[string]*document.Reader
	unsupported map[string]struct{}
	allowed     map[string]struct{}

	// Progress, when set, is called once per input record.
	Progress func()
}

func NewBuilder(reg *language.Registry, opts Options, m *metrics.Metrics) (*Builder, error) {
	if opts.MaxN < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "maxN must be >= 1, got %d", opts.MaxN)
	}
	if opts.Partitions < 1 {
		opts.Partitions = 1
	}
	if opts.ModelDir == "" {
		return nil, apperrors.New(apperrors.ErrInvalidConfiguration, "model directory is required")
	}
	b := &Builder{
		reg:         reg,
		opts:        opts,
		metrics:     m,
		logger:      slog.Default().With("component", "corpus-builder"),
		readers:     make(map[string]*document.Reader),
		unsupported: make(map[string]struct{}),
	}
	if len(opts.Languages) > 0 {
		b.allowed = make(map[string]struct{}, len(opts.Languages))
		for _, l := range opts.Languages {
			b.allowed[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
		}
	}
	return b, nil
}

type job struct {
	reader     *document.Reader
	paragraphs []string
}

// partition holds the counts of one worker, per language.
type partition map[string]*docfreq.DocumentFrequency

// Build counts every document of src and writes docfreq_<lang>.tsv for
// each language seen. Terms of a document are counted over all of its
// fields written in its language.
func (b *Builder) Build(ctx context.Context, src pipeline.Source) (*Report, error) {
	report := &Report{Languages: make(map[string]LanguageStats)}
	parts := make([]partition, b.opts.Partitions)
	jobs := make(chan job, b.opts.Partitions*4)

	g, gctx := errgroup.WithContext(ctx)
	for i := range parts {
		parts[i] = make(partition)
		p := parts[i]
		g.Go(func() error {
			for j := range jobs {
				lang := j.reader.Language()
				df, ok := p[lang]
				if !ok {
					var err error
					if df, err = docfreq.New(j.reader, b.opts.MaxN, b.opts.FilterStopwords); err != nil {
						return err
					}
					p[lang] = df
				}
				if err := df.Process(j.paragraphs); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for {
			fields, err := src.Next(gctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if b.Progress != nil {
				b.Progress()
			}
			if err != nil {
				if !apperrors.Skippable(err) {
					return err
				}
				b.logger.Warn("skipping input record", "error", err)
				report.Skipped++
				continue
			}
			r, err := b.reader(fields)
			if err != nil {
				report.Skipped++
				continue
			}
			select {
			case jobs <- job{reader: r, paragraphs: fields.Evidence(r.Language())}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := merge(parts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(b.opts.ModelDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating model directory: %w", err)
	}
	for _, lang := range sortedKeys(merged) {
		df := merged[lang]
		path := model.CorpusPath(b.opts.ModelDir, lang)
		if err := df.WriteTSV(path); err != nil {
			return nil, err
		}
		report.Languages[lang] = LanguageStats{Documents: df.NumDocuments(), Terms: df.Len(), Path: path}
		b.metrics.SetCorpus(lang, df.NumDocuments(), df.Len())
		b.logger.Info("corpus written",
			"language", lang,
			"documents", df.NumDocuments(),
			"terms", df.Len(),
			"path", path,
		)
	}
	return report, nil
}

// reader resolves the reader of a document's language, warning once per
// language that cannot be built.
func (b *Builder) reader(fields document.Fields) (*document.Reader, error) {
	lang := strings.ToLower(fields.Language())
	if lang == "" {
		return nil, apperrors.Newf(apperrors.ErrEmptyDocument, "document %q has neither abstract nor description", fields.Name)
	}
	if b.allowed != nil {
		if _, ok := b.allowed[lang]; !ok {
			return nil, apperrors.Newf(apperrors.ErrUnsupportedLanguage, "language %q is not enabled", lang)
		}
	}
	if r, ok := b.readers[lang]; ok {
		return r, nil
	}
	bundle, err := b.reg.Lookup(lang)
	var r *document.Reader
	if err == nil {
		r, err = document.NewReader(bundle, b.opts.Normalization)
	}
	if err != nil {
		if _, seen := b.unsupported[lang]; !seen {
			b.unsupported[lang] = struct{}{}
			b.logger.Warn("language not supported, skipping its documents", "language", lang, "error", err)
		}
		return nil, err
	}
	b.readers[lang] = r
	return r, nil
}

func merge(parts []partition) (map[string]*docfreq.DocumentFrequency, error) {
	out := make(map[string]*docfreq.DocumentFrequency)
	for _, p := range parts {
		for _, lang := range sortedKeys(p) {
			df := p[lang]
			if acc, ok := out[lang]; ok {
				if err := acc.Merge(df); err != nil {
					return nil, fmt.Errorf("merging %s partitions: %w", lang, err)
				}
				continue
			}
			out[lang] = df
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
