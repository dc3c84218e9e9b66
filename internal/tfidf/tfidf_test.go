package tfidf

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/docfreq"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

func bundle() *language.Bundle {
	return &language.Bundle{Code: "en", Analyzer: language.RuleAnalyzer{}, Stopwords: language.StopwordSet("the", "on")}
}

func buildCorpus(t *testing.T, maxN int, docs ...string) *docfreq.Corpus {
	t.Helper()
	r, err := document.NewReader(bundle(), document.Lowercase)
	if err != nil {
		t.Fatal(err)
	}
	df, err := docfreq.New(r, maxN, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range docs {
		if err := df.Process([]string{d}); err != nil {
			t.Fatal(err)
		}
	}
	return df.Corpus()
}

func newScorer(t *testing.T, corpus *docfreq.Corpus, maxN int) *Scorer {
	t.Helper()
	s, err := New(Config{MaxN: maxN, Normalization: document.Lowercase}, corpus, bundle())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func keys(kps []ranker.Keyphrase) []string {
	out := make([]string, len(kps))
	for i, kp := range kps {
		out[i] = kp.Text
	}
	return out
}

func TestEndToEndCatSatMat(t *testing.T) {
	corpus := buildCorpus(t, 1, "cat sat mat", "cat cat dog")
	if corpus.NumDocuments != 2 {
		t.Fatalf("NumDocuments = %d", corpus.NumDocuments)
	}
	wantDF := map[string]int{"cat": 2, "sat": 1, "mat": 1, "dog": 1}
	if !reflect.DeepEqual(corpus.Counts, wantDF) {
		t.Fatalf("DF = %v, want %v", corpus.Counts, wantDF)
	}

	// Through the file format, as the binaries do.
	path := filepath.Join(t.TempDir(), "docfreq_en.tsv")
	r, _ := document.NewReader(bundle(), document.Lowercase)
	df, _ := docfreq.New(r, 1, false)
	df.Process([]string{"cat sat mat"})
	df.Process([]string{"cat cat dog"})
	if err := df.WriteTSV(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := docfreq.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	s := newScorer(t, loaded, 1)
	doc, _ := s.ReadText([]string{"cat sat mat"})
	set := s.ExtractCandidates(doc)
	scores := s.ScoreCandidates(set, nil)
	if !(scores["sat"] > scores["cat"] && scores["mat"] > scores["cat"]) {
		t.Errorf("scores = %v, want sat and mat above cat", scores)
	}
	kps, err := s.ExtractKeyphrases(set, scores, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"mat", "sat", "cat"}; !reflect.DeepEqual(keys(kps), want) {
		t.Errorf("keyphrases = %v, want %v", keys(kps), want)
	}
}

func TestIDF(t *testing.T) {
	s := newScorer(t, buildCorpus(t, 1, "a b", "a c", "a"), 1)
	if got, want := s.IDF("a"), math.Log(4.0/4.0)+1; got != want {
		t.Errorf("IDF(a) = %v, want %v", got, want)
	}
	if got, want := s.IDF("unseen"), math.Log(4.0/1.0)+1; got != want {
		t.Errorf("IDF(unseen) = %v, want %v", got, want)
	}
	// Rarer terms never score lower.
	if !(s.IDF("unseen") > s.IDF("b") && s.IDF("b") > s.IDF("a")) {
		t.Error("IDF is not monotonically decreasing in df")
	}
	if s.IDF("a") <= 0 {
		t.Error("IDF must stay positive")
	}
}

func TestTermFrequencyFromEvidence(t *testing.T) {
	s := newScorer(t, buildCorpus(t, 1, "pump", "valve"), 1)
	abstract, _ := s.ReadText([]string{"pump valve"})
	evidence, _ := s.ReadText([]string{"pump valve", "the pump and the pump"})
	set := s.ExtractCandidates(abstract)
	scores := s.ScoreCandidates(set, s.ExtractCandidates(evidence))
	if got, want := scores["pump"], 3*s.IDF("pump"); got != want {
		t.Errorf("score(pump) = %v, want %v", got, want)
	}
	if _, ok := scores["and"]; ok {
		t.Error("evidence-only terms must not enter the pool")
	}
}

func TestExtractPoolRestrictedToPrimary(t *testing.T) {
	s := newScorer(t, buildCorpus(t, 1, "x"), 1)
	abstract, _ := s.ReadText([]string{"spring"})
	evidence, _ := s.ReadText([]string{"spring", "nozzle nozzle nozzle"})
	kps, err := s.Extract(abstract, evidence, 5, true)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"spring"}; !reflect.DeepEqual(keys(kps), want) {
		t.Errorf("keyphrases = %v, want %v", keys(kps), want)
	}
}

func TestExtractKeyphrasesRejectsZeroK(t *testing.T) {
	s := newScorer(t, buildCorpus(t, 1, "x"), 1)
	doc, _ := s.ReadText([]string{"cat"})
	set := s.ExtractCandidates(doc)
	_, err := s.ExtractKeyphrases(set, s.ScoreCandidates(set, nil), 0, false)
	if !errors.Is(err, apperrors.ErrInvalidConfiguration) {
		t.Errorf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestNewValidation(t *testing.T) {
	corpus := buildCorpus(t, 2, "cat")
	tests := []struct {
		name string
		cfg  Config
		c    *docfreq.Corpus
		want error
	}{
		{"zero n", Config{MaxN: 0, Normalization: document.Lowercase}, corpus, apperrors.ErrInvalidConfiguration},
		{"empty corpus", Config{MaxN: 1, Normalization: document.Lowercase}, &docfreq.Corpus{}, apperrors.ErrInvalidConfiguration},
		{"nil corpus", Config{MaxN: 1, Normalization: document.Lowercase}, nil, apperrors.ErrInvalidConfiguration},
		{"normalization mismatch", Config{MaxN: 1, Normalization: document.None}, corpus, apperrors.ErrInvalidConfiguration},
		{"stemming without stemmer", Config{MaxN: 1, Normalization: document.Stemming}, corpus, apperrors.ErrUnsupportedLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.c, bundle())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	// A profile-less corpus is trusted as is.
	legacy := &docfreq.Corpus{NumDocuments: 1, Counts: map[string]int{"cat": 1}}
	if _, err := New(Config{MaxN: 3, Normalization: document.None}, legacy, bundle()); err != nil {
		t.Errorf("profile-less corpus rejected: %v", err)
	}
}

func TestNewRejectsUncoveredCandidates(t *testing.T) {
	r, err := document.NewReader(bundle(), document.Lowercase)
	if err != nil {
		t.Fatal(err)
	}
	df, err := docfreq.New(r, 2, true)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{"the pump moves", "the valve holds", "the pump stops"} {
		if err := df.Process([]string{d}); err != nil {
			t.Fatal(err)
		}
	}
	corpus := df.Corpus()
	if corpus.Count("the") != 0 {
		t.Fatalf("df(the) = %d, stop-words should not be counted", corpus.Count("the"))
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"stop-word filter off", Config{MaxN: 2, FilterStopwords: false, Normalization: document.Lowercase}},
		{"n larger than corpus", Config{MaxN: 3, FilterStopwords: true, Normalization: document.Lowercase}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, corpus, bundle()); !errors.Is(err, apperrors.ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}

	s, err := New(Config{MaxN: 2, FilterStopwords: true, Normalization: document.Lowercase}, corpus, bundle())
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := s.ReadText([]string{"the pump moves the pump"})
	kps, err := s.Extract(doc, doc, 10, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, kp := range kps {
		if kp.Text == "the" || kp.Text == "the pump" {
			t.Errorf("stop-word bounded keyphrase %q extracted: %v", kp.Text, keys(kps))
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	s := newScorer(t, buildCorpus(t, 3, "a hand pump", "a spray nozzle", "the valve spring"), 3)
	text := []string{"The hand pump drives the spray nozzle. The valve spring returns the hand pump."}
	doc, _ := s.ReadText(text)
	first, _ := s.Extract(doc, doc, 10, true)
	for i := 0; i < 20; i++ {
		doc, _ := s.ReadText(text)
		again, _ := s.Extract(doc, doc, 10, true)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}
}
