package textrank

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/language"
	apperrors "github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/pkg/errors"
)

// taggedAnalyzer tags words written as word/TAG and splits sentences on
// "|".
type taggedAnalyzer struct{}

func (taggedAnalyzer) Tags() bool { return true }

func (taggedAnalyzer) Analyze(text string) ([][]language.RawToken, error) {
	var out [][]language.RawToken
	for _, sent := range strings.Split(text, "|") {
		var toks []language.RawToken
		for _, f := range strings.Fields(sent) {
			word, tag, _ := strings.Cut(f, "/")
			toks = append(toks, language.RawToken{Text: word, POS: tag})
		}
		if len(toks) > 0 {
			out = append(out, toks)
		}
	}
	return out, nil
}

func defaultConfig() Config {
	return Config{
		Window:        3,
		Top:           1,
		Damping:       0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
		MaxN:          3,
		Normalization: document.Lowercase,
	}
}

func untagged() *language.Bundle {
	return &language.Bundle{Code: "fr", Analyzer: language.RuleAnalyzer{}, Stopwords: language.StopwordSet("le", "la", "de")}
}

func tagged() *language.Bundle {
	return &language.Bundle{Code: "en", Analyzer: taggedAnalyzer{}, Stopwords: language.StopwordSet("the")}
}

func newScorer(t *testing.T, cfg Config, b *language.Bundle) *Scorer {
	t.Helper()
	s, err := New(cfg, b)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func read(t *testing.T, s *Scorer, text string) *document.Document {
	t.Helper()
	doc, err := s.ReadText([]string{text})
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestBuildGraphWindow(t *testing.T) {
	s := newScorer(t, defaultConfig(), untagged())
	g := s.BuildGraph(read(t, s, "a b c d"))
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(g.Nodes(), want) {
		t.Fatalf("Nodes = %v, want %v", g.Nodes(), want)
	}
	tests := []struct {
		u, v string
		want float64
	}{
		{"a", "b", 1}, {"a", "c", 1}, {"a", "d", 0},
		{"b", "c", 1}, {"b", "d", 1}, {"c", "d", 1},
	}
	for _, tt := range tests {
		if got := g.Weight(tt.u, tt.v); got != tt.want {
			t.Errorf("Weight(%s, %s) = %v, want %v", tt.u, tt.v, got, tt.want)
		}
	}
}

func TestBuildGraphSymmetricNoSelfLoops(t *testing.T) {
	s := newScorer(t, defaultConfig(), untagged())
	g := s.BuildGraph(read(t, s, "pompe pompe valve ressort pompe valve. ressort buse pompe."))
	for _, u := range g.Nodes() {
		if g.Weight(u, u) != 0 {
			t.Errorf("self-loop on %q", u)
		}
		for _, v := range g.Nodes() {
			if g.Weight(u, v) != g.Weight(v, u) {
				t.Errorf("Weight(%s,%s) = %v but Weight(%s,%s) = %v", u, v, g.Weight(u, v), v, u, g.Weight(v, u))
			}
		}
	}
	// Repeated co-occurrence accumulates.
	if got := g.Weight("pompe", "valve"); got < 2 {
		t.Errorf("Weight(pompe, valve) = %v, want accumulated weight", got)
	}
}

func TestBuildGraphSentenceBoundary(t *testing.T) {
	s := newScorer(t, defaultConfig(), untagged())
	g := s.BuildGraph(read(t, s, "pompe. valve."))
	if g.Weight("pompe", "valve") != 0 {
		t.Error("window crossed a sentence boundary")
	}
	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2", g.Len())
	}
}

func TestBuildGraphSkipsStopwordsAndPunctuation(t *testing.T) {
	cfg := defaultConfig()
	cfg.FilterStopwords = true
	s := newScorer(t, cfg, untagged())
	g := s.BuildGraph(read(t, s, "la pompe, de la valve"))
	if want := []string{"pompe", "valve"}; !reflect.DeepEqual(g.Nodes(), want) {
		t.Errorf("Nodes = %v, want %v", g.Nodes(), want)
	}
	// The window counts every token, so pompe and valve are 4 apart.
	if g.Weight("pompe", "valve") != 0 {
		t.Error("nodes outside the window were linked")
	}
}

func TestBuildGraphPOSFilter(t *testing.T) {
	cfg := defaultConfig()
	cfg.POS = []string{"NOUN", "ADJ"}
	s := newScorer(t, cfg, tagged())
	g := s.BuildGraph(read(t, s, "the/DET liquid/ADJ sprayer/NOUN pumps/VERB water/NOUN"))
	if want := []string{"liquid", "sprayer", "water"}; !reflect.DeepEqual(g.Nodes(), want) {
		t.Errorf("Nodes = %v, want %v", g.Nodes(), want)
	}
	if g.Weight("sprayer", "water") != 1 || g.Weight("liquid", "water") != 0 {
		t.Errorf("unexpected weights: sprayer-water %v, liquid-water %v", g.Weight("sprayer", "water"), g.Weight("liquid", "water"))
	}
	if got := g.Neighbors("sprayer"); !reflect.DeepEqual(got, []string{"liquid", "water"}) {
		t.Errorf("Neighbors(sprayer) = %v", got)
	}
}

func TestRankConverges(t *testing.T) {
	s := newScorer(t, defaultConfig(), untagged())
	r := s.Rank(s.BuildGraph(read(t, s, "a b c a b d e a")))
	if !r.Converged {
		t.Fatalf("did not converge in %d iterations", r.Iterations)
	}
	sum := 0.0
	for _, v := range r.Scores {
		sum += v
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Errorf("scores sum to %v, want about 1", sum)
	}
	if !(r.Scores["a"] > r.Scores["e"]) {
		t.Errorf("hub a should outrank leaf e: %v", r.Scores)
	}
}

func TestRankIterationCap(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxIterations = 2
	cfg.Tolerance = 1e-15
	s := newScorer(t, cfg, untagged())
	r := s.Rank(s.BuildGraph(read(t, s, "a b c a b d e a f g")))
	if r.Iterations != 2 || r.Converged {
		t.Errorf("Iterations = %d, Converged = %v; want capped at 2", r.Iterations, r.Converged)
	}
}

func TestRankEmptyGraph(t *testing.T) {
	s := newScorer(t, defaultConfig(), untagged())
	r := s.Rank(s.BuildGraph(&document.Document{}))
	if len(r.Scores) != 0 || !r.Converged {
		t.Errorf("empty graph ranking = %+v", r)
	}
}

func TestEligibleTopFraction(t *testing.T) {
	cfg := defaultConfig()
	cfg.Top = 0.33
	s := newScorer(t, cfg, untagged())
	scores := map[string]float64{"a": 0.4, "b": 0.3, "c": 0.3, "d": 0.2, "e": 0.1, "f": 0.05, "g": 0.01}
	got := s.Eligible(scores)
	// ceil(0.33 * 7) = 3; b and c tie and are both kept.
	want := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Eligible = %v, want %v", got, want)
	}

	cfg.Top = 0.2
	s = newScorer(t, cfg, untagged())
	got = s.Eligible(map[string]float64{"x": 1, "b": 0.5, "a": 0.5})
	// ceil(0.6) = 1.
	if _, ok := got["x"]; !ok || len(got) != 1 {
		t.Errorf("Eligible = %v, want only x", got)
	}
}

func TestExtractKeyphrasesSumsTokenScores(t *testing.T) {
	s := newScorer(t, defaultConfig(), untagged())
	doc := read(t, s, "pompe valve")
	scores := map[string]float64{"pompe": 0.25, "valve": 0.5}
	set := s.ExtractCandidates(doc, map[string]struct{}{"pompe": {}, "valve": {}})
	kps, err := s.ExtractKeyphrases(set, scores, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(kps) != 3 || kps[0].Text != "pompe valve" || kps[0].Score != 0.75 {
		t.Errorf("keyphrases = %+v", kps)
	}
	if _, err := s.ExtractKeyphrases(set, scores, 0, false); !errors.Is(err, apperrors.ErrInvalidConfiguration) {
		t.Errorf("k = 0: err = %v", err)
	}
}

func TestExtractEndToEnd(t *testing.T) {
	cfg := defaultConfig()
	cfg.Top = 0.5
	cfg.FilterStopwords = true
	s := newScorer(t, cfg, untagged())
	text := "Pompe buse. Pompe liquide. La pompe de ressort. Buse liquide."
	kps, r, err := s.Extract(read(t, s, text), 3, true)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Converged {
		t.Error("ranking did not converge")
	}
	// pompe is the hub and buse wins the tie with liquide for the second
	// eligible slot; both single words overlap the accepted phrase.
	if len(kps) != 1 || strings.ToLower(kps[0].Text) != "pompe buse" {
		t.Errorf("keyphrases = %+v, want [Pompe buse]", kps)
	}

	again, _, _ := s.Extract(read(t, s, text), 3, true)
	if !reflect.DeepEqual(kps, again) {
		t.Errorf("non-deterministic output: %+v vs %+v", kps, again)
	}
}

func TestNewValidation(t *testing.T) {
	mutate := func(f func(*Config)) Config {
		c := defaultConfig()
		f(&c)
		return c
	}
	tests := []struct {
		name string
		cfg  Config
		b    *language.Bundle
		want error
	}{
		{"window", mutate(func(c *Config) { c.Window = 1 }), untagged(), apperrors.ErrInvalidConfiguration},
		{"top zero", mutate(func(c *Config) { c.Top = 0 }), untagged(), apperrors.ErrInvalidConfiguration},
		{"top above one", mutate(func(c *Config) { c.Top = 1.5 }), untagged(), apperrors.ErrInvalidConfiguration},
		{"damping", mutate(func(c *Config) { c.Damping = 1 }), untagged(), apperrors.ErrInvalidConfiguration},
		{"iterations", mutate(func(c *Config) { c.MaxIterations = 0 }), untagged(), apperrors.ErrInvalidConfiguration},
		{"tolerance", mutate(func(c *Config) { c.Tolerance = 0 }), untagged(), apperrors.ErrInvalidConfiguration},
		{"max n", mutate(func(c *Config) { c.MaxN = 0 }), untagged(), apperrors.ErrInvalidConfiguration},
		{"pos without tagger", mutate(func(c *Config) { c.POS = []string{"NOUN"} }), untagged(), apperrors.ErrUnsupportedLanguage},
		{"stemming without stemmer", mutate(func(c *Config) { c.Normalization = document.Stemming }), untagged(), apperrors.ErrUnsupportedLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, tt.b); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func BenchmarkExtract(b *testing.B) {
	cfg := defaultConfig()
	cfg.Top = 0.33
	s, err := New(cfg, untagged())
	if err != nil {
		b.Fatal(err)
	}
	text := strings.Repeat("La pompe comprend une chambre, un piston et un ressort de rappel. ", 30)
	doc, _ := s.ReadText([]string{text})
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Extract(doc, 30, true)
	}
}
