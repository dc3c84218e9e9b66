// Package document turns raw text fields into the sentence/token structure
// the candidate extractor and scorers work on. Normalization (NFC,
// language-aware lowercasing, optional stemming) is deterministic, so
// identical input always yields identical tokens.
package document

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

// Token is a single word or punctuation mark.
type Token struct {
	Text     string // surface form
	Norm     string // lowercased, stemmed when normalization is stemming
	POS      string // universal tag, empty when the language is untagged
	Position int    // index within the document
	Stop     bool
	Punct    bool
}

type Sentence struct {
	Tokens []Token
}

func (s Sentence) Len() int { return len(s.Tokens) }

type Document struct {
	Language  string
	Sentences []Sentence
}

// NumTokens returns the total token count across sentences.
func (d *Document) NumTokens() int {
	n := 0
	for _, s := range d.Sentences {
		n += len(s.Tokens)
	}
	return n
}

// Empty reports whether the document has no tokens at all.
func (d *Document) Empty() bool {
	return d == nil || d.NumTokens() == 0
}

// Normalization selects how Token.Norm is derived from the surface form.
type Normalization string

const (
	Stemming  Normalization = "stemming"
	Lowercase Normalization = "lowercase"
	None      Normalization = "none"
)

// ParseNormalization validates a configured normalization name.
func ParseNormalization(s string) (Normalization, error) {
	switch n := Normalization(strings.ToLower(strings.TrimSpace(s))); n {
	case Stemming, Lowercase, None:
		return n, nil
	case "":
		return Stemming, nil
	default:
		return "", apperrors.Newf(apperrors.ErrInvalidConfiguration, "unknown normalization %q", s)
	}
}

// Reader converts text for one language. It is immutable and safe for
// concurrent use.
type Reader struct {
	bundle *language.Bundle
	norm   Normalization
	tag    textlang.Tag
}

// NewReader binds a bundle and a normalization. Stemming without a stemmer
// for the language is an unsupported language, not a silent downgrade.
func NewReader(bundle *language.Bundle, normalization Normalization) (*Reader, error) {
	if bundle == nil || bundle.Analyzer == nil {
		return nil, apperrors.New(apperrors.ErrUnsupportedLanguage, "missing linguistic bundle")
	}
	if normalization == Stemming && bundle.Stemmer == nil {
		return nil, apperrors.Newf(apperrors.ErrUnsupportedLanguage, "no stemmer for %q", bundle.Code)
	}
	tag, err := textlang.Parse(bundle.Code)
	if err != nil {
		tag = textlang.Und
	}
	return &Reader{bundle: bundle, norm: normalization, tag: tag}, nil
}

func (r *Reader) Language() string             { return r.bundle.Code }
func (r *Reader) Bundle() *language.Bundle     { return r.bundle }
func (r *Reader) Normalization() Normalization { return r.norm }

// ReadText analyzes each paragraph and concatenates the sentences into one
// Document. Blank paragraphs are skipped; no paragraphs at all yields an
// empty Document.
func (r *Reader) ReadText(paragraphs []string) (*Document, error) {
	doc := &Document{Language: r.bundle.Code}
	lower := cases.Lower(r.tag)
	pos := 0
	for _, p := range paragraphs {
		text := norm.NFC.String(p)
		if strings.TrimSpace(text) == "" {
			continue
		}
		sentences, err := r.bundle.Analyzer.Analyze(text)
		if err != nil {
			return nil, fmt.Errorf("analyzing %s text: %w", r.bundle.Code, err)
		}
		for _, raw := range sentences {
			sent := Sentence{Tokens: make([]Token, 0, len(raw))}
			for _, rt := range raw {
				low := lower.String(rt.Text)
				sent.Tokens = append(sent.Tokens, Token{
					Text:     rt.Text,
					Norm:     r.normalize(low, rt.Text),
					POS:      rt.POS,
					Position: pos,
					Stop:     r.bundle.IsStopword(low),
					Punct:    rt.POS == "PUNCT" || isPunct(rt.Text),
				})
				pos++
			}
			if len(sent.Tokens) > 0 {
				doc.Sentences = append(doc.Sentences, sent)
			}
		}
	}
	return doc, nil
}

func (r *Reader) normalize(lower, surface string) string {
	switch r.norm {
	case Stemming:
		return r.bundle.Stemmer.Stem(lower)
	case Lowercase:
		return lower
	default:
		return surface
	}
}

func isPunct(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

// Synthesize builds a stand-in abstract from the leading sentences of a
// description. Whole sentences are taken while the running token count
// stays within budget; the first sentence that would exceed it ends the
// abstract. A first sentence longer than the budget is cut to budget tokens.
func Synthesize(description *Document, budget int) *Document {
	out := &Document{Language: description.Language}
	total := 0
	for i, s := range description.Sentences {
		if total+s.Len() > budget {
			if i == 0 && budget > 0 {
				out.Sentences = append(out.Sentences, Sentence{Tokens: s.Tokens[:budget]})
			}
			break
		}
		out.Sentences = append(out.Sentences, s)
		total += s.Len()
	}
	return out
}
