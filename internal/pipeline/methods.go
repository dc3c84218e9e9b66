package pipeline

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/model"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/textrank"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/tfidf"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

// Method names a scoring algorithm.
type Method string

const (
	TFIDF    Method = "tfidf"
	TextRank Method = "textrank"
)

// ParseMethod accepts "tfidf" and "textrank".
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case TFIDF, TextRank:
		return m, nil
	default:
		return "", fmt.Errorf("unknown method %q (want tfidf or textrank)", s)
	}
}

type method interface {
	name() Method
	// fingerprint identifies the parameters results depend on.
	fingerprint() string
	extract(fields document.Fields, lang string) ([]ranker.Keyphrase, error)
	loaded() []string
}

type tfidfMethod struct {
	models  *model.Cache[*tfidf.Scorer]
	opts    Options
	params  tfidf.Config
	modelID string
}

// NewTFIDF extracts with per-language TF-IDF scorers from models. params
// and modelID only feed the result cache key.
func NewTFIDF(models *model.Cache[*tfidf.Scorer], params tfidf.Config, modelID string, opts Options, m *metrics.Metrics) *Pipeline {
	return newPipeline(&tfidfMethod{models: models, opts: opts, params: params, modelID: modelID}, opts, m)
}

func (t *tfidfMethod) name() Method     { return TFIDF }
func (t *tfidfMethod) loaded() []string { return t.models.Languages() }

func (t *tfidfMethod) fingerprint() string {
	return fmt.Sprintf("tfidf|%+v|%s|k=%d|rr=%t|budget=%d", t.params, t.modelID, t.opts.TopK, t.opts.RedundancyRemoval, t.opts.AbstractBudget)
}

func (t *tfidfMethod) extract(fields document.Fields, lang string) ([]ranker.Keyphrase, error) {
	scorer, err := t.models.Get(lang)
	if err != nil {
		return nil, err
	}
	primary, evidence, err := scorer.Reader().ReadFields(fields, t.opts.AbstractBudget)
	if err != nil {
		return nil, err
	}
	if primary.Empty() {
		return nil, nil
	}
	return scorer.Extract(primary, evidence, t.opts.TopK, t.opts.RedundancyRemoval)
}

type textrankMethod struct {
	models  *model.Cache[*textrank.Scorer]
	opts    Options
	params  textrank.Config
	metrics *metrics.Metrics
}

// NewTextRank extracts with per-language TextRank scorers from models.
func NewTextRank(models *model.Cache[*textrank.Scorer], params textrank.Config, opts Options, m *metrics.Metrics) *Pipeline {
	return newPipeline(&textrankMethod{models: models, opts: opts, params: params, metrics: m}, opts, m)
}

func (t *textrankMethod) name() Method     { return TextRank }
func (t *textrankMethod) loaded() []string { return t.models.Languages() }

func (t *textrankMethod) fingerprint() string {
	return fmt.Sprintf("textrank|%+v|k=%d|rr=%t|budget=%d", t.params, t.opts.TopK, t.opts.RedundancyRemoval, t.opts.AbstractBudget)
}

func (t *textrankMethod) extract(fields document.Fields, lang string) ([]ranker.Keyphrase, error) {
	scorer, err := t.models.Get(lang)
	if err != nil {
		return nil, err
	}
	primary, _, err := scorer.Reader().ReadFields(fields, t.opts.AbstractBudget)
	if err != nil {
		return nil, err
	}
	if primary.Empty() {
		return nil, nil
	}
	kps, r, err := scorer.Extract(primary, t.opts.TopK, t.opts.RedundancyRemoval)
	t.metrics.ObserveIterations(r.Iterations)
	return kps, err
}
