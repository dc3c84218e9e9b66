// Package textrank ranks the tokens of a single document by their
// centrality in a co-occurrence graph and builds keyphrases from the
// best-ranked tokens. It needs no corpus.
package textrank

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/candidate"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

type Config struct {
	// Window is the number of consecutive tokens, within one sentence,
	// whose node tokens are linked to each other.
	Window int
	// POS is the tag allow-set for graph nodes and candidate tokens. Empty
	// disables tag filtering.
	POS []string
	// Top is the fraction of best-ranked nodes that may bound a keyphrase.
	Top                 float64
	Damping             float64
	MaxIterations       int
	Tolerance           float64
	MaxN                int
	FilterStopwords     bool
	Normalization       document.Normalization
	RedundancyThreshold float64
}

// Scorer is immutable after New and safe for concurrent use.
type Scorer struct {
	cfg       Config
	pos       map[string]struct{}
	reader    *document.Reader
	extractor *candidate.Extractor
}

func New(cfg Config, bundle *language.Bundle) (*Scorer, error) {
	switch {
	case cfg.Window < 2:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "window must be >= 2, got %d", cfg.Window)
	case cfg.Top <= 0 || cfg.Top > 1:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "top fraction must be in (0, 1], got %v", cfg.Top)
	case cfg.Damping <= 0 || cfg.Damping >= 1:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "damping must be in (0, 1), got %v", cfg.Damping)
	case cfg.MaxIterations < 1:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "max iterations must be >= 1, got %d", cfg.MaxIterations)
	case cfg.Tolerance <= 0:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "tolerance must be > 0, got %v", cfg.Tolerance)
	}
	reader, err := document.NewReader(bundle, cfg.Normalization)
	if err != nil {
		return nil, err
	}
	pos := candidate.POSSet(cfg.POS...)
	if len(pos) > 0 && !bundle.Analyzer.Tags() {
		return nil, apperrors.Newf(apperrors.ErrUnsupportedLanguage, "no part-of-speech tagger for %q", bundle.Code)
	}
	extractor, err := candidate.NewExtractor(candidate.Config{
		MaxN:            cfg.MaxN,
		FilterStopwords: cfg.FilterStopwords,
		POS:             pos,
	})
	if err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg, pos: pos, reader: reader, extractor: extractor}, nil
}

func (s *Scorer) Language() string { return s.reader.Language() }

func (s *Scorer) Reader() *document.Reader { return s.reader }

func (s *Scorer) ReadText(paragraphs []string) (*document.Document, error) {
	return s.reader.ReadText(paragraphs)
}

func (s *Scorer) isNode(t document.Token) bool {
	if t.Punct || (s.cfg.FilterStopwords && t.Stop) {
		return false
	}
	if len(s.pos) == 0 {
		return true
	}
	_, ok := s.pos[t.POS]
	return ok
}

// BuildGraph links every pair of distinct node tokens that appear within
// Window tokens of each other in the same sentence. Each co-occurrence
// adds 1 to the edge weight.
func (s *Scorer) BuildGraph(doc *document.Document) *Graph {
	g := newGraph()
	var edgeMaps []map[int]float64
	for _, sent := range doc.Sentences {
		ids := make([]int, len(sent.Tokens))
		for i, t := range sent.Tokens {
			ids[i] = -1
			if s.isNode(t) {
				ids[i] = g.node(t.Norm)
			}
		}
		for len(edgeMaps) < g.Len() {
			edgeMaps = append(edgeMaps, make(map[int]float64))
		}
		for i, si := range ids {
			if si < 0 {
				continue
			}
			end := min(i+s.cfg.Window, len(ids))
			for j := i + 1; j < end; j++ {
				sj := ids[j]
				if sj >= 0 && sj != si {
					edgeMaps[si][sj]++
					edgeMaps[sj][si]++
				}
			}
		}
	}
	g.finish(edgeMaps)
	return g
}

// Rank runs the bounded centrality iteration on g.
func (s *Scorer) Rank(g *Graph) Ranking {
	return rank(g, s.cfg.Damping, s.cfg.MaxIterations, s.cfg.Tolerance)
}

// ScoreCandidates returns the centrality of every node of g.
func (s *Scorer) ScoreCandidates(g *Graph) map[string]float64 {
	return s.Rank(g).Scores
}

// Eligible returns the ceil(Top*N) best-scored nodes, ties broken by term.
func (s *Scorer) Eligible(scores map[string]float64) map[string]struct{} {
	terms := make([]string, 0, len(scores))
	for t := range scores {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if scores[terms[i]] != scores[terms[j]] {
			return scores[terms[i]] > scores[terms[j]]
		}
		return terms[i] < terms[j]
	})
	keep := int(math.Ceil(s.cfg.Top * float64(len(terms))))
	keep = min(keep, len(terms))
	out := make(map[string]struct{}, keep)
	for _, t := range terms[:keep] {
		out[t] = struct{}{}
	}
	return out
}

// ExtractCandidates generates candidates whose boundary tokens are in
// eligible.
func (s *Scorer) ExtractCandidates(doc *document.Document, eligible map[string]struct{}) *candidate.Set {
	return s.extractor.ExtractEligible(doc, eligible)
}

// PhraseScores sums the token scores of each candidate. Tokens without a
// node contribute nothing.
func PhraseScores(set *candidate.Set, scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, set.Len())
	for _, c := range set.All() {
		total := 0.0
		for _, t := range c.Tokens {
			total += scores[t]
		}
		out[c.Key] = total
	}
	return out
}

// ExtractKeyphrases scores candidates from token scores and returns at
// most k of them.
func (s *Scorer) ExtractKeyphrases(set *candidate.Set, scores map[string]float64, k int, redundancyRemoval bool) ([]ranker.Keyphrase, error) {
	if k < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "k must be >= 1, got %d", k)
	}
	ranked := ranker.Rank(set.All(), PhraseScores(set, scores))
	return ranker.Select(ranked, k, ranker.Options{
		RedundancyRemoval: redundancyRemoval,
		Threshold:         s.cfg.RedundancyThreshold,
	}), nil
}

// Extract runs graph construction, ranking and selection on doc. The
// ranking is returned for inspection.
func (s *Scorer) Extract(doc *document.Document, k int, redundancyRemoval bool) ([]ranker.Keyphrase, Ranking, error) {
	r := s.Rank(s.BuildGraph(doc))
	set := s.ExtractCandidates(doc, s.Eligible(r.Scores))
	kps, err := s.ExtractKeyphrases(set, r.Scores, k, redundancyRemoval)
	return kps, r, err
}
