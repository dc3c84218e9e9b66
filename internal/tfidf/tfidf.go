// Package tfidf scores candidates by in-document frequency weighted with
// corpus-wide rarity taken from a document-frequency file.
package tfidf

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/candidate"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/docfreq"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

type Config struct {
	MaxN                int
	FilterStopwords     bool
	Normalization       document.Normalization
	RedundancyThreshold float64
}

// Scorer is immutable after New and safe for concurrent use.
type Scorer struct {
	cfg       Config
	corpus    *docfreq.Corpus
	reader    *document.Reader
	extractor *candidate.Extractor
}

// New validates cfg against the corpus it will score with. A corpus file
// carrying a profile must have been normalized the same way and must have
// counted every candidate cfg can produce.
func New(cfg Config, corpus *docfreq.Corpus, bundle *language.Bundle) (*Scorer, error) {
	if corpus == nil || corpus.NumDocuments < 1 {
		return nil, apperrors.New(apperrors.ErrInvalidConfiguration, "document-frequency corpus is empty")
	}
	reader, err := document.NewReader(bundle, cfg.Normalization)
	if err != nil {
		return nil, err
	}
	extractor, err := candidate.NewExtractor(candidate.Config{MaxN: cfg.MaxN, FilterStopwords: cfg.FilterStopwords})
	if err != nil {
		return nil, err
	}
	if corpus.Profile != nil {
		want := docfreq.Profile{
			Language:      bundle.Code,
			Normalization: cfg.Normalization,
			Stemmer:       bundle.StemmerName(),
		}
		if err := corpus.Profile.Compatible(want); err != nil {
			return nil, err
		}
		if err := corpus.Profile.Covers(cfg.MaxN, cfg.FilterStopwords); err != nil {
			return nil, err
		}
	}
	return &Scorer{cfg: cfg, corpus: corpus, reader: reader, extractor: extractor}, nil
}

func (s *Scorer) Language() string { return s.reader.Language() }

func (s *Scorer) Reader() *document.Reader { return s.reader }

func (s *Scorer) ReadText(paragraphs []string) (*document.Document, error) {
	return s.reader.ReadText(paragraphs)
}

func (s *Scorer) ExtractCandidates(doc *document.Document) *candidate.Set {
	return s.extractor.Extract(doc)
}

// IDF is ln((N+1)/(df+1)) + 1 with df = 0 for terms the corpus never saw.
func (s *Scorer) IDF(term string) float64 {
	n := float64(s.corpus.NumDocuments)
	df := float64(s.corpus.Count(term))
	return math.Log((n+1)/(df+1)) + 1
}

// ScoreCandidates scores every candidate of set. Term frequencies are
// read from evidence, the candidates of all same-language text; a nil
// evidence set uses set itself.
func (s *Scorer) ScoreCandidates(set, evidence *candidate.Set) map[string]float64 {
	if evidence == nil {
		evidence = set
	}
	scores := make(map[string]float64, set.Len())
	for _, c := range set.All() {
		tf := evidence.Frequency(c.Key)
		if tf == 0 {
			tf = c.Count
		}
		scores[c.Key] = float64(tf) * s.IDF(c.Key)
	}
	return scores
}

// ExtractKeyphrases ranks the candidates of set, the primary text, and
// returns at most k of them.
func (s *Scorer) ExtractKeyphrases(set *candidate.Set, scores map[string]float64, k int, redundancyRemoval bool) ([]ranker.Keyphrase, error) {
	if k < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "k must be >= 1, got %d", k)
	}
	ranked := ranker.Rank(set.All(), scores)
	return ranker.Select(ranked, k, ranker.Options{
		RedundancyRemoval: redundancyRemoval,
		Threshold:         s.cfg.RedundancyThreshold,
	}), nil
}

// Extract runs the whole chain on a primary document and the evidence
// document its term frequencies come from.
func (s *Scorer) Extract(primary, evidence *document.Document, k int, redundancyRemoval bool) ([]ranker.Keyphrase, error) {
	set := s.ExtractCandidates(primary)
	var ev *candidate.Set
	if evidence != nil {
		ev = s.ExtractCandidates(evidence)
	}
	return s.ExtractKeyphrases(set, s.ScoreCandidates(set, ev), k, redundancyRemoval)
}
