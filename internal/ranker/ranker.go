package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/candidate"
)

type Scored struct {
	Candidate *candidate.Candidate
	Score     float64
}

// Keyphrase is one extracted phrase in its surface form.
type Keyphrase struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type Options struct {
	RedundancyRemoval bool
	// Threshold is the overlap ratio above which a candidate is redundant.
	// Zero rejects any candidate that shares a token with an accepted one.
	Threshold float64
}

// Rank pairs every candidate with its score and sorts by score
// descending, then shorter span, then key. Candidates without a score
// are left out.
func Rank(candidates []*candidate.Candidate, scores map[string]float64) []Scored {
	result := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		s, ok := scores[c.Key]
		if !ok {
			continue
		}
		result = append(result, Scored{Candidate: c, Score: s})
	}
	Sort(result)
	return result
}

func Sort(scored []Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Candidate.Len() != b.Candidate.Len() {
			return a.Candidate.Len() < b.Candidate.Len()
		}
		return a.Candidate.Key < b.Candidate.Key
	})
}

// Select walks ranked candidates in order and keeps at most k of them.
// With redundancy removal a candidate is skipped when its token overlap
// with any kept candidate exceeds the threshold.
func Select(ranked []Scored, k int, opts Options) []Keyphrase {
	if k <= 0 {
		return nil
	}
	if !opts.RedundancyRemoval {
		if len(ranked) > k {
			ranked = ranked[:k]
		}
		out := make([]Keyphrase, len(ranked))
		for i, s := range ranked {
			out[i] = Keyphrase{Text: s.Candidate.Surface, Score: s.Score}
		}
		return out
	}

	out := make([]Keyphrase, 0, min(k, len(ranked)))
	kept := make([]map[string]struct{}, 0, k)
	for _, s := range ranked {
		if len(out) == k {
			break
		}
		tokens := tokenSet(s.Candidate.Tokens)
		redundant := false
		for _, other := range kept {
			if Overlap(tokens, other) > opts.Threshold {
				redundant = true
				break
			}
		}
		if redundant {
			continue
		}
		kept = append(kept, tokens)
		out = append(out, Keyphrase{Text: s.Candidate.Surface, Score: s.Score})
	}
	return out
}

// Overlap is |a ∩ b| / min(|a|, |b|), 0 when either set is empty.
func Overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	shared := 0
	for t := range a {
		if _, ok := b[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a))
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
