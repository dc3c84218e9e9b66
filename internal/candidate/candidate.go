// Package candidate generates keyphrase candidates: contiguous n-grams
// inside one sentence, filtered by stop-word boundaries and an optional
// part-of-speech allow-set, deduplicated by normalized key.
package candidate

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

// Candidate is one unique n-gram of a document. Position fields describe
// the first occurrence, whose surface form represents the candidate.
type Candidate struct {
	Key      string
	Surface  string
	Tokens   []string
	POS      []string
	Sentence int
	Start    int
	End      int // exclusive
	Count    int
}

// Len is the number of tokens n.
func (c *Candidate) Len() int { return len(c.Tokens) }

// Set holds unique candidates in first-seen order.
type Set struct {
	byKey map[string]*Candidate
	order []*Candidate
}

func NewSet() *Set {
	return &Set{byKey: make(map[string]*Candidate)}
}

func (s *Set) Len() int { return len(s.order) }

func (s *Set) Get(key string) (*Candidate, bool) {
	c, ok := s.byKey[key]
	return c, ok
}

func (s *Set) Contains(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// Frequency is the in-document occurrence count of key, 0 when absent.
func (s *Set) Frequency(key string) int {
	if c, ok := s.byKey[key]; ok {
		return c.Count
	}
	return 0
}

// All returns the candidates in first-seen order. The slice is shared.
func (s *Set) All() []*Candidate {
	return s.order
}

func (s *Set) Keys() []string {
	keys := make([]string, len(s.order))
	for i, c := range s.order {
		keys[i] = c.Key
	}
	return keys
}

func (s *Set) add(doc *document.Document, si, start, end int) {
	toks := doc.Sentences[si].Tokens[start:end]
	key := Key(toks)
	if c, ok := s.byKey[key]; ok {
		c.Count++
		return
	}
	c := &Candidate{
		Key:      key,
		Sentence: si,
		Start:    start,
		End:      end,
		Count:    1,
		Tokens:   make([]string, len(toks)),
		POS:      make([]string, len(toks)),
	}
	surface := make([]string, len(toks))
	for i, t := range toks {
		c.Tokens[i] = t.Norm
		c.POS[i] = t.POS
		surface[i] = t.Text
	}
	c.Surface = strings.Join(surface, " ")
	s.byKey[key] = c
	s.order = append(s.order, c)
}

// Key joins the normalized forms of toks with a single space. Normalized
// tokens never contain whitespace, so the key is reversible.
func Key(toks []document.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Norm)
	}
	return b.String()
}

// Config controls candidate generation.
type Config struct {
	MaxN            int
	FilterStopwords bool
	// POS, when non-empty, is the set of tags every token must carry.
	POS map[string]struct{}
}

// Extractor is immutable after construction.
type Extractor struct {
	cfg Config
}

func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.MaxN < 1 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration, "max n-gram size must be >= 1, got %d", cfg.MaxN)
	}
	return &Extractor{cfg: cfg}, nil
}

func (e *Extractor) MaxN() int { return e.cfg.MaxN }

// Extract returns every candidate of doc.
func (e *Extractor) Extract(doc *document.Document) *Set {
	return e.extract(doc, nil)
}

// ExtractEligible is Extract with the extra rule that both boundary
// tokens' normalized forms belong to eligible.
func (e *Extractor) ExtractEligible(doc *document.Document, eligible map[string]struct{}) *Set {
	if eligible == nil {
		eligible = map[string]struct{}{}
	}
	return e.extract(doc, eligible)
}

func (e *Extractor) extract(doc *document.Document, eligible map[string]struct{}) *Set {
	set := NewSet()
	if doc == nil {
		return set
	}
	for si, sent := range doc.Sentences {
		toks := sent.Tokens
		for start := range toks {
			if !e.boundaryOK(toks[start], eligible) {
				continue
			}
			for end := start + 1; end <= len(toks) && end-start <= e.cfg.MaxN; end++ {
				last := toks[end-1]
				// Punctuation and disallowed tags break every longer span
				// starting here too.
				if last.Punct || !e.posOK(last) {
					break
				}
				if !e.boundaryOK(last, eligible) {
					continue
				}
				set.add(doc, si, start, end)
			}
		}
	}
	return set
}

func (e *Extractor) boundaryOK(t document.Token, eligible map[string]struct{}) bool {
	if t.Punct || !e.posOK(t) {
		return false
	}
	if e.cfg.FilterStopwords && t.Stop {
		return false
	}
	if eligible != nil {
		if _, ok := eligible[t.Norm]; !ok {
			return false
		}
	}
	return true
}

func (e *Extractor) posOK(t document.Token) bool {
	if len(e.cfg.POS) == 0 {
		return true
	}
	_, ok := e.cfg.POS[t.POS]
	return ok
}

// POSSet builds an allow-set from tag names. "PNOUN" is accepted as an
// alias of "PROPN".
func POSSet(tags ...string) map[string]struct{} {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToUpper(strings.TrimSpace(tag))
		if tag == "PNOUN" {
			tag = "PROPN"
		}
		if tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}
