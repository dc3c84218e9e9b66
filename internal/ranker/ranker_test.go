package ranker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Keyphrase-Extraction-Engine/internal/candidate"
)

func cand(key string) *candidate.Candidate {
	toks := strings.Split(key, " ")
	return &candidate.Candidate{Key: key, Surface: key, Tokens: toks, Count: 1}
}

func texts(kps []Keyphrase) []string {
	out := make([]string, len(kps))
	for i, kp := range kps {
		out[i] = kp.Text
	}
	return out
}

func TestRankOrdering(t *testing.T) {
	cands := []*candidate.Candidate{cand("pump chamber"), cand("valve"), cand("pump"), cand("spring"), cand("nozzle")}
	scores := map[string]float64{
		"pump chamber": 2.0,
		"pump":         2.0,
		"valve":        1.0,
		"spring":       1.0,
		// nozzle unscored
	}
	got := Rank(cands, scores)
	var keys []string
	for _, s := range got {
		keys = append(keys, s.Candidate.Key)
	}
	want := []string{"pump", "pump chamber", "spring", "valve"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Rank order = %v, want %v", keys, want)
	}
}

func TestSelectWithoutRedundancyRemoval(t *testing.T) {
	ranked := Rank(
		[]*candidate.Candidate{cand("pump"), cand("pump chamber"), cand("valve")},
		map[string]float64{"pump": 3, "pump chamber": 2, "valve": 1},
	)
	got := Select(ranked, 2, Options{})
	if want := []string{"pump", "pump chamber"}; !reflect.DeepEqual(texts(got), want) {
		t.Errorf("Select = %v, want %v", texts(got), want)
	}
	if len(Select(ranked, 10, Options{})) != 3 {
		t.Error("k larger than pool should return the whole pool")
	}
	if Select(ranked, 0, Options{}) != nil {
		t.Error("k = 0 should return nothing")
	}
}

func TestSelectRedundancyRemoval(t *testing.T) {
	ranked := Rank(
		[]*candidate.Candidate{cand("pump"), cand("pump chamber"), cand("valve"), cand("valve spring seat"), cand("nozzle")},
		map[string]float64{"pump": 5, "pump chamber": 4, "valve": 3, "valve spring seat": 2, "nozzle": 1},
	)
	tests := []struct {
		threshold float64
		want      []string
	}{
		{0, []string{"pump", "valve", "nozzle"}},
		// 1/1 overlap for "pump chamber" vs "pump" still exceeds 0.5.
		{0.5, []string{"pump", "valve", "nozzle"}},
		{1, []string{"pump", "pump chamber", "valve", "valve spring seat", "nozzle"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.threshold), func(t *testing.T) {
			got := Select(ranked, 10, Options{RedundancyRemoval: true, Threshold: tt.threshold})
			if !reflect.DeepEqual(texts(got), tt.want) {
				t.Errorf("Select = %v, want %v", texts(got), tt.want)
			}
		})
	}
}

func TestSelectNeverKeepsOverlappingPhrases(t *testing.T) {
	keys := []string{"a b", "b c", "c d", "d e", "e f", "a", "f", "g"}
	cands := make([]*candidate.Candidate, len(keys))
	scores := map[string]float64{}
	for i, k := range keys {
		cands[i] = cand(k)
		scores[k] = float64(len(keys) - i)
	}
	got := Select(Rank(cands, scores), 5, Options{RedundancyRemoval: true})
	seen := map[string]bool{}
	for _, kp := range got {
		for _, tok := range strings.Split(kp.Text, " ") {
			if seen[tok] {
				t.Fatalf("token %q appears in two selected phrases: %v", tok, texts(got))
			}
			seen[tok] = true
		}
	}
	if len(got) > 5 {
		t.Errorf("selected %d phrases, want at most 5", len(got))
	}
}

func TestOverlap(t *testing.T) {
	set := func(ws ...string) map[string]struct{} { return tokenSet(ws) }
	tests := []struct {
		a, b map[string]struct{}
		want float64
	}{
		{set("a", "b"), set("b", "c"), 0.5},
		{set("a"), set("a", "b", "c"), 1},
		{set("a"), set("b"), 0},
		{set(), set("a"), 0},
	}
	for _, tt := range tests {
		if got := Overlap(tt.a, tt.b); got != tt.want {
			t.Errorf("Overlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func BenchmarkSelect(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	for _, n := range sizes {
		b.Run(fmt.Sprintf("candidates_%d", n), func(b *testing.B) {
			cands := make([]*candidate.Candidate, n)
			scores := make(map[string]float64, n)
			for i := 0; i < n; i++ {
				key := fmt.Sprintf("term%d term%d", i, i%97)
				cands[i] = cand(key)
				scores[key] = float64(i % 13)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Select(Rank(cands, scores), 30, Options{RedundancyRemoval: true})
			}
		})
	}
}
