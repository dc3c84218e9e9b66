package pipeline

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/model"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/textrank"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/tfidf"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

// OptionsFrom reads the per-run options from cfg.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		TopK:              cfg.Extraction.TopK,
		RedundancyRemoval: cfg.Extraction.RedundancyRemoval,
		AbstractBudget:    cfg.Extraction.AbstractBudget,
		Languages:         cfg.Extraction.Languages,
	}
}

func TFIDFConfig(cfg *config.Config) (tfidf.Config, error) {
	norm, err := document.ParseNormalization(cfg.Extraction.Normalization)
	if err != nil {
		return tfidf.Config{}, err
	}
	return tfidf.Config{
		MaxN:                cfg.Extraction.MaxN,
		FilterStopwords:     cfg.Extraction.FilterStopwords,
		Normalization:       norm,
		RedundancyThreshold: cfg.Extraction.RedundancyThreshold,
	}, nil
}

func TextRankConfig(cfg *config.Config) (textrank.Config, error) {
	norm, err := document.ParseNormalization(cfg.TextRank.Normalization)
	if err != nil {
		return textrank.Config{}, err
	}
	return textrank.Config{
		Window:              cfg.TextRank.Window,
		POS:                 cfg.TextRank.POS,
		Top:                 cfg.TextRank.Top,
		Damping:             cfg.TextRank.Damping,
		MaxIterations:       cfg.TextRank.MaxIterations,
		Tolerance:           cfg.TextRank.Tolerance,
		MaxN:                cfg.Extraction.MaxN,
		FilterStopwords:     cfg.Extraction.FilterStopwords,
		Normalization:       norm,
		RedundancyThreshold: cfg.Extraction.RedundancyThreshold,
	}, nil
}

// FromConfig builds the pipeline of method with lazily loaded
// per-language models. TF-IDF models come from cfg.Corpus.ModelDir.
func FromConfig(cfg *config.Config, method Method, reg *language.Registry, m *metrics.Metrics) (*Pipeline, error) {
	opts := OptionsFrom(cfg)
	switch method {
	case TFIDF:
		params, err := TFIDFConfig(cfg)
		if err != nil {
			return nil, err
		}
		models := model.NewCache(string(TFIDF), model.TFIDFLoader(reg, cfg.Corpus.ModelDir, params, m), m)
		return NewTFIDF(models, params, cfg.Corpus.ModelDir, opts, m), nil
	case TextRank:
		params, err := TextRankConfig(cfg)
		if err != nil {
			return nil, err
		}
		models := model.NewCache(string(TextRank), model.TextRankLoader(reg, params), m)
		return NewTextRank(models, params, opts, m), nil
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}
