package language

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// ProseAnalyzer segments, tokenizes and tags English text with the prose
// averaged-perceptron pipeline. Penn Treebank tags are mapped to the
// universal tag set (NOUN, PROPN, ADJ, ...).
type ProseAnalyzer struct{}

func (ProseAnalyzer) Tags() bool { return true }

func (ProseAnalyzer) Analyze(text string) ([][]RawToken, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("prose analysis: %w", err)
	}

	sents := doc.Sentences()
	texts := make([]string, len(sents))
	for i, st := range sents {
		texts[i] = st.Text
	}
	toks := doc.Tokens()
	raw := make([]RawToken, len(toks))
	for i, tok := range toks {
		pos := universalTag(tok.Tag)
		// The tagger sometimes labels quote marks as nouns or adjectives.
		if isPunctText(tok.Text) {
			pos = "PUNCT"
		}
		raw[i] = RawToken{Text: tok.Text, POS: pos}
	}
	return align(text, texts, raw), nil
}

// align groups tokens into the sentences they fall in. prose reports
// sentences and tokens separately, both as substrings of text, so each is
// located by byte offset scanning forward. A token that cannot be located
// stays in the sentence of the token before it.
func align(text string, sentences []string, tokens []RawToken) [][]RawToken {
	ends := make([]int, len(sentences))
	cursor := 0
	for i, s := range sentences {
		if start := locate(text, cursor, s); start >= 0 {
			cursor = start + len(s)
		}
		ends[i] = cursor
	}

	out := make([][]RawToken, max(len(sentences), 1))
	si := 0
	cursor = 0
	for _, tok := range tokens {
		pos := cursor
		if start := locate(text, cursor, tok.Text); start >= 0 {
			pos = start
			cursor = start + len(tok.Text)
			if isQuote(tok.Text) {
				cursor = start + quoteWidth(text[start:])
			}
		}
		for si < len(ends)-1 && pos >= ends[si] {
			si++
		}
		out[si] = append(out[si], tok)
	}

	sentencesOut := out[:0]
	for _, s := range out {
		if len(s) > 0 {
			sentencesOut = append(sentencesOut, s)
		}
	}
	return sentencesOut
}

// locate finds needle in text at or after from. Quote tokens match any
// straight or curly quote, since tokenizers may rewrite them as `` or ''.
func locate(text string, from int, needle string) int {
	if from > len(text) {
		return -1
	}
	if isQuote(needle) {
		if i := strings.IndexAny(text[from:], "\"'`“”‘’"); i >= 0 {
			return from + i
		}
		return -1
	}
	if i := strings.Index(text[from:], needle); i >= 0 {
		return from + i
	}
	return -1
}

func isQuote(s string) bool {
	switch s {
	case `"`, "``", "''", "'", "`", "“", "”", "‘", "’":
		return true
	}
	return false
}

// quoteWidth is the byte length of the quote mark(s) at the start of s.
func quoteWidth(s string) int {
	if strings.HasPrefix(s, "``") || strings.HasPrefix(s, "''") {
		return 2
	}
	_, n := utf8.DecodeRuneInString(s)
	return n
}

func isPunctText(s string) bool {
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

// universalTag maps a Penn Treebank tag to the universal POS tag set.
func universalTag(penn string) string {
	switch {
	case penn == "NNP" || penn == "NNPS":
		return "PROPN"
	case strings.HasPrefix(penn, "NN"):
		return "NOUN"
	case strings.HasPrefix(penn, "JJ"):
		return "ADJ"
	case strings.HasPrefix(penn, "VB") || penn == "MD":
		return "VERB"
	case strings.HasPrefix(penn, "RB") || penn == "WRB":
		return "ADV"
	case strings.HasPrefix(penn, "PRP") || penn == "WP" || penn == "WP$":
		return "PRON"
	case penn == "DT" || penn == "PDT" || penn == "WDT":
		return "DET"
	case penn == "IN" || penn == "TO" || penn == "RP":
		return "ADP"
	case penn == "CC":
		return "CCONJ"
	case penn == "CD":
		return "NUM"
	case penn == "UH":
		return "INTJ"
	case penn == "SYM" || penn == "$" || penn == "#":
		return "SYM"
	case penn == "" || penn == "FW" || penn == "LS" || penn == "POS" || penn == "EX":
		return "X"
	default:
		// . , : ( ) `` '' and the remaining punctuation tags
		return "PUNCT"
	}
}
