package language

import (
	"unicode"
	"unicode/utf8"
)

// RuleAnalyzer is a script-agnostic segmenter and tokenizer. Words are runs
// of letters, digits and combining marks; a hyphen or apostrophe between
// two word runes and a '.' or ',' between two digits stay inside the word.
// Every other non-space rune is a token of its own. A sentence ends after
// '.', '!', '?' or their full-width forms. It does not tag.
type RuleAnalyzer struct{}

func (RuleAnalyzer) Tags() bool { return false }

func (RuleAnalyzer) Analyze(text string) ([][]RawToken, error) {
	var (
		sentences [][]RawToken
		current   []RawToken
	)
	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, current)
			current = nil
		}
	}

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			end := scanWord(text, i)
			current = append(current, RawToken{Text: text[i:end]})
			i = end
		default:
			current = append(current, RawToken{Text: text[i : i+size], POS: "PUNCT"})
			i += size
			if isTerminator(r) {
				flush()
			}
		}
	}
	flush()
	return sentences, nil
}

func scanWord(text string, start int) int {
	i := start
	prev := rune(0)
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isWordRune(r) {
			prev = r
			i += size
			continue
		}
		if i+size < len(text) {
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if isJoiner(r) && isWordRune(prev) && isWordRune(next) {
				prev = r
				i += size
				continue
			}
			if (r == '.' || r == ',') && unicode.IsDigit(prev) && unicode.IsDigit(next) {
				prev = r
				i += size
				continue
			}
		}
		break
	}
	return i
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool {
	return r == '-' || r == '\'' || r == '’' || r == '‐'
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}
