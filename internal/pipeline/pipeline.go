// Package pipeline drives keyphrase extraction over a stream of documents:
// it resolves each document's language, fetches the per-language scorer,
// consults the optional result cache and hands results to a sink. Errors
// that concern one document are logged and counted, never fatal.
package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

// Result is the extraction output of one document.
type Result struct {
	Name       string             `json:"name"`
	Keyphrases []ranker.Keyphrase `json:"keyphrases"`
	Language   string             `json:"lang"`
}

// Texts returns the keyphrase strings in rank order.
func (r *Result) Texts() []string {
	out := make([]string, len(r.Keyphrases))
	for i, kp := range r.Keyphrases {
		out[i] = kp.Text
	}
	return out
}

type Options struct {
	TopK              int
	RedundancyRemoval bool
	// AbstractBudget is the token budget of an abstract synthesized from
	// the description.
	AbstractBudget int
	// Languages restricts processing to these codes. Empty allows all.
	Languages []string
}

// Source yields documents until it returns io.EOF. A skippable error
// drops the current record only.
type Source interface {
	Next(ctx context.Context) (document.Fields, error)
}

type Sink interface {
	Write(ctx context.Context, r *Result) error
}

// Stats counts document outcomes of a Run.
type Stats struct {
	Processed int
	Empty     int
	Skipped   int
	Failed    int
}

func (s Stats) Total() int { return s.Processed + s.Empty + s.Skipped + s.Failed }

type Pipeline struct {
	method  method
	opts    Options
	allowed map[string]struct{}
	cache   *cache.ResultCache[Result]
	metrics *metrics.Metrics

	// Progress, when set, is called once per document handled by Run.
	Progress func()
}

func newPipeline(m method, opts Options, mx *metrics.Metrics) *Pipeline {
	p := &Pipeline{method: m, opts: opts, metrics: mx}
	if len(opts.Languages) > 0 {
		p.allowed = make(map[string]struct{}, len(opts.Languages))
		for _, l := range opts.Languages {
			p.allowed[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
		}
	}
	return p
}

// WithCache makes p memoize results in c.
func (p *Pipeline) WithCache(c *cache.ResultCache[Result]) *Pipeline {
	p.cache = c
	return p
}

func (p *Pipeline) Method() Method { return p.method.name() }

// Languages returns the languages whose model loaded successfully so far.
func (p *Pipeline) Languages() []string { return p.method.loaded() }

// Process extracts the keyphrases of one document. A document without
// usable text in its own language yields a result with no keyphrases.
func (p *Pipeline) Process(ctx context.Context, fields document.Fields) (*Result, error) {
	start := time.Now()
	lang := strings.ToLower(fields.Language())
	res, empty, err := p.process(ctx, fields, lang)
	status := "ok"
	n := 0
	switch {
	case err != nil && apperrors.Skippable(err):
		status = "skipped"
	case err != nil:
		status = "error"
	case empty:
		status = "empty"
	default:
		n = len(res.Keyphrases)
	}
	p.metrics.ObserveDocument(string(p.method.name()), lang, status, time.Since(start), n)
	return res, err
}

func (p *Pipeline) process(ctx context.Context, fields document.Fields, lang string) (*Result, bool, error) {
	if lang == "" {
		return nil, false, apperrors.Newf(apperrors.ErrEmptyDocument, "document %q has neither abstract nor description", fields.Name)
	}
	if p.allowed != nil {
		if _, ok := p.allowed[lang]; !ok {
			return nil, false, apperrors.Newf(apperrors.ErrUnsupportedLanguage, "language %q is not enabled", lang)
		}
	}

	compute := func() (*Result, error) {
		kps, err := p.method.extract(fields, lang)
		if err != nil {
			return nil, err
		}
		if kps == nil {
			kps = []ranker.Keyphrase{}
		}
		return &Result{Name: fields.Name, Keyphrases: kps, Language: lang}, nil
	}

	var (
		res *Result
		err error
	)
	if p.cache == nil {
		res, err = compute()
	} else {
		var key string
		if key, err = cache.Key(p.method.fingerprint(), fields); err != nil {
			return nil, false, err
		}
		res, _, err = p.cache.GetOrCompute(ctx, key, compute)
	}
	if err != nil {
		return nil, false, err
	}
	return res, len(res.Keyphrases) == 0, nil
}

// Run processes every document of src and writes each result to sink.
// Per-document failures are logged and counted. Run stops early on a
// sink failure, a source failure that is not skippable, an invalid
// configuration or a cancelled context.
func (p *Pipeline) Run(ctx context.Context, src Source, sink Sink) (Stats, error) {
	var stats Stats
	log := logger.WithComponent("pipeline").With("method", p.method.name())
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		fields, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !apperrors.Skippable(err) {
				return stats, err
			}
			log.Warn("skipping input record", "error", err)
			stats.Skipped++
			p.tick()
			continue
		}

		dctx := logger.WithDocument(ctx, fields.Name)
		res, err := p.Process(dctx, fields)
		p.tick()
		switch {
		case err == nil:
		case apperrors.Skippable(err):
			logger.FromContext(dctx).Warn("skipping document", "error", err)
			stats.Skipped++
			continue
		case errors.Is(err, apperrors.ErrInvalidConfiguration):
			return stats, err
		default:
			logger.FromContext(dctx).Error("extraction failed", "error", err)
			stats.Failed++
			continue
		}

		if len(res.Keyphrases) == 0 {
			stats.Empty++
		} else {
			stats.Processed++
		}
		if err := sink.Write(ctx, res); err != nil {
			return stats, err
		}
	}
	log.Info("run complete",
		"processed", stats.Processed,
		"empty", stats.Empty,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

func (p *Pipeline) tick() {
	if p.Progress != nil {
		p.Progress()
	}
}
