package language

import (
	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/french"
	"github.com/kljensen/snowball/russian"
	"github.com/kljensen/snowball/spanish"
	"github.com/kljensen/snowball/swedish"
)

type snowballStemmer struct {
	lang string
	stem func(word string, stemStopwords bool) string
}

func newSnowball(lang string) Stemmer {
	var fn func(string, bool) string
	switch lang {
	case "english":
		fn = english.Stem
	case "french":
		fn = french.Stem
	case "spanish":
		fn = spanish.Stem
	case "russian":
		fn = russian.Stem
	case "swedish":
		fn = swedish.Stem
	default:
		return nil
	}
	return snowballStemmer{lang: lang, stem: fn}
}

func (s snowballStemmer) Name() string {
	return "snowball/" + s.lang
}

// Stem stems stop-words too; whether they survive is decided by the
// candidate rules, not the stemmer.
func (s snowballStemmer) Stem(word string) string {
	stem := s.stem(word, true)
	if stem == "" {
		return word
	}
	return stem
}
