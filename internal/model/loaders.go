package model

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/docfreq"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/textrank"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/tfidf"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

// CorpusPath is where the document-frequency file of lang lives in dir.
func CorpusPath(dir, lang string) string {
	return filepath.Join(dir, fmt.Sprintf("docfreq_%s.tsv", lang))
}

// TFIDFLoader loads docfreq_<lang>.tsv from dir and builds a scorer on
// it. A language without a bundle or without a corpus file is
// unsupported.
func TFIDFLoader(reg *language.Registry, dir string, cfg tfidf.Config, m *metrics.Metrics) Loader[*tfidf.Scorer] {
	return func(lang string) (*tfidf.Scorer, error) {
		bundle, err := reg.Lookup(lang)
		if err != nil {
			return nil, err
		}
		path := CorpusPath(dir, lang)
		corpus, err := docfreq.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.Newf(apperrors.ErrUnsupportedLanguage, "no corpus file %s", path)
		}
		if err != nil {
			return nil, err
		}
		m.SetCorpus(lang, corpus.NumDocuments, corpus.Len())
		return tfidf.New(cfg, corpus, bundle)
	}
}

// TextRankLoader builds a corpus-free scorer for any registered language.
func TextRankLoader(reg *language.Registry, cfg textrank.Config) Loader[*textrank.Scorer] {
	return func(lang string) (*textrank.Scorer, error) {
		bundle, err := reg.Lookup(lang)
		if err != nil {
			return nil, err
		}
		return textrank.New(cfg, bundle)
	}
}
