// Package language provides the per-language linguistic services the
// extraction engine consumes: sentence segmentation, tokenization, optional
// part-of-speech tagging, stemming and stop-word lists. Services are grouped
// in a Bundle and resolved once through an explicit Registry.
package language

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

// RawToken is a token as emitted by an Analyzer, before normalization.
type RawToken struct {
	Text string
	POS  string
}

// Analyzer splits text into sentences of tokens. Analyzers that cannot tag
// leave POS empty and report Tags() == false.
type Analyzer interface {
	Analyze(text string) ([][]RawToken, error)
	Tags() bool
}

// Stemmer reduces a lowercased word to its stem. Name identifies the
// algorithm and is recorded in corpus files.
type Stemmer interface {
	Name() string
	Stem(word string) string
}

// Bundle groups the services for one language.
type Bundle struct {
	Code      string
	Analyzer  Analyzer
	Stemmer   Stemmer
	Stopwords map[string]struct{}
}

// IsStopword reports whether the lowercased word is a stop-word.
func (b *Bundle) IsStopword(word string) bool {
	_, ok := b.Stopwords[word]
	return ok
}

// StemmerName returns the stemmer identity, or "" when the language has
// no stemmer.
func (b *Bundle) StemmerName() string {
	if b.Stemmer == nil {
		return ""
	}
	return b.Stemmer.Name()
}

// Registry maps language codes to bundles. It is read-only after
// construction.
type Registry struct {
	bundles map[string]*Bundle
}

func NewRegistry(bundles ...*Bundle) *Registry {
	r := &Registry{bundles: make(map[string]*Bundle, len(bundles))}
	for _, b := range bundles {
		r.bundles[strings.ToLower(b.Code)] = b
	}
	return r
}

// Default returns the registry of built-in languages. English is analyzed
// with the prose pipeline (tagging included); the other languages use the
// rule-based analyzer and carry no tagger.
func Default() *Registry {
	return NewRegistry(
		&Bundle{Code: "en", Analyzer: ProseAnalyzer{}, Stemmer: newSnowball("english"), Stopwords: Stopwords("en")},
		&Bundle{Code: "fr", Analyzer: RuleAnalyzer{}, Stemmer: newSnowball("french"), Stopwords: Stopwords("fr")},
		&Bundle{Code: "es", Analyzer: RuleAnalyzer{}, Stemmer: newSnowball("spanish"), Stopwords: Stopwords("es")},
		&Bundle{Code: "ru", Analyzer: RuleAnalyzer{}, Stemmer: newSnowball("russian"), Stopwords: Stopwords("ru")},
		&Bundle{Code: "sv", Analyzer: RuleAnalyzer{}, Stemmer: newSnowball("swedish"), Stopwords: Stopwords("sv")},
		&Bundle{Code: "de", Analyzer: RuleAnalyzer{}, Stopwords: Stopwords("de")},
	)
}

// Lookup returns the bundle for code or ErrUnsupportedLanguage.
func (r *Registry) Lookup(code string) (*Bundle, error) {
	b, ok := r.bundles[strings.ToLower(code)]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrUnsupportedLanguage, "no linguistic services for %q", code)
	}
	return b, nil
}

// Languages returns the registered codes in sorted order.
func (r *Registry) Languages() []string {
	codes := make([]string, 0, len(r.bundles))
	for code := range r.bundles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (r *Registry) String() string {
	return fmt.Sprintf("language.Registry%v", r.Languages())
}
