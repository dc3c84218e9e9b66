package model

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/textrank"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/tfidf"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/metrics"
)

func TestCacheLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	c := NewCache("test", func(lang string) (string, error) {
		calls.Add(1)
		return "model-" + lang, nil
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := c.Get("en")
			if err != nil || m != "model-en" {
				t.Errorf("Get = %q, %v", m, err)
			}
		}()
	}
	wg.Wait()
	if calls.Load() != 1 {
		t.Errorf("loader called %d times, want 1", calls.Load())
	}
}

func TestCacheRemembersFailure(t *testing.T) {
	var calls atomic.Int32
	fail := true
	c := NewCache("test", func(lang string) (int, error) {
		calls.Add(1)
		if fail {
			return 0, apperrors.New(apperrors.ErrMalformedCorpusFile, "bad file")
		}
		return 7, nil
	}, nil)

	for i := 0; i < 3; i++ {
		if _, err := c.Get("fr"); !errors.Is(err, apperrors.ErrMalformedCorpusFile) {
			t.Fatalf("err = %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("failing loader called %d times, want 1", calls.Load())
	}
	if _, ok := c.Failed()["fr"]; !ok {
		t.Error("fr should be listed as failed")
	}

	fail = false
	c.Evict("fr")
	if v, err := c.Get("fr"); err != nil || v != 7 {
		t.Errorf("after evict: %v, %v", v, err)
	}
	if got := c.Languages(); !reflect.DeepEqual(got, []string{"fr"}) {
		t.Errorf("Languages = %v", got)
	}
}

func TestCacheMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := NewCache("tfidf", func(lang string) (int, error) {
		if lang == "xx" {
			return 0, errors.New("nope")
		}
		return 1, nil
	}, m)
	c.Get("en")
	c.Get("en")
	c.Get("xx")
	if got := testutil.ToFloat64(m.LoadedModels.WithLabelValues("tfidf")); got != 1 {
		t.Errorf("loaded models = %v, want 1", got)
	}
	c.Evict("en")
	c.Evict("xx")
	if got := testutil.ToFloat64(m.LoadedModels.WithLabelValues("tfidf")); got != 0 {
		t.Errorf("loaded models after evict = %v, want 0", got)
	}
}

func testRegistry() *language.Registry {
	return language.NewRegistry(&language.Bundle{Code: "fr", Analyzer: language.RuleAnalyzer{}})
}

func TestTFIDFLoader(t *testing.T) {
	dir := t.TempDir()
	cfg := tfidf.Config{MaxN: 1, Normalization: document.Lowercase}
	load := TFIDFLoader(testRegistry(), dir, cfg, nil)

	if _, err := load("fr"); !errors.Is(err, apperrors.ErrUnsupportedLanguage) {
		t.Errorf("missing file: err = %v, want ErrUnsupportedLanguage", err)
	}
	if _, err := load("xx"); !errors.Is(err, apperrors.ErrUnsupportedLanguage) {
		t.Errorf("unknown language: err = %v, want ErrUnsupportedLanguage", err)
	}

	os.WriteFile(CorpusPath(dir, "fr"), []byte("--NB_DOC--\t2\npompe\t1\t5\n"), 0644)
	if _, err := load("fr"); !errors.Is(err, apperrors.ErrMalformedCorpusFile) {
		t.Errorf("malformed file: err = %v", err)
	}

	os.WriteFile(CorpusPath(dir, "fr"), []byte("--NB_DOC--\t2\npompe\t1\t1\n"), 0644)
	s, err := load("fr")
	if err != nil {
		t.Fatal(err)
	}
	if s.Language() != "fr" || s.IDF("pompe") >= s.IDF("valve") {
		t.Errorf("unexpected scorer state")
	}
}

func TestCorpusPath(t *testing.T) {
	if got := CorpusPath("models", "en"); got != filepath.Join("models", "docfreq_en.tsv") {
		t.Errorf("CorpusPath = %q", got)
	}
}

func TestTextRankLoader(t *testing.T) {
	cfg := textrank.Config{Window: 3, Top: 0.33, Damping: 0.85, MaxIterations: 50, Tolerance: 1e-4, MaxN: 3, Normalization: document.Lowercase}
	load := TextRankLoader(testRegistry(), cfg)
	if _, err := load("fr"); err != nil {
		t.Errorf("fr: %v", err)
	}
	cfg.POS = []string{"NOUN"}
	load = TextRankLoader(testRegistry(), cfg)
	if _, err := load("fr"); !errors.Is(err, apperrors.ErrUnsupportedLanguage) {
		t.Errorf("untagged language with POS filter: err = %v", err)
	}
}
