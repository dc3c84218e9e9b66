package textrank

import (
	"math"
	"slices"
	"sort"
)

// edge is a neighbor index + weight pair used for deterministic iteration.
type edge struct {
	to     int
	weight float64
}

// Graph is an undirected weighted co-occurrence graph. Nodes keep the
// order in which their tokens were first seen.
type Graph struct {
	nodes []string
	index map[string]int
	edges [][]edge
}

func newGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

func (g *Graph) node(term string) int {
	if i, ok := g.index[term]; ok {
		return i
	}
	i := len(g.nodes)
	g.index[term] = i
	g.nodes = append(g.nodes, term)
	return i
}

// Nodes returns the node terms. The slice is shared.
func (g *Graph) Nodes() []string { return g.nodes }

func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) Has(term string) bool {
	_, ok := g.index[term]
	return ok
}

// Weight returns the co-occurrence count of u and v, 0 when they are not
// connected.
func (g *Graph) Weight(u, v string) float64 {
	i, ok := g.index[u]
	if !ok {
		return 0
	}
	j, ok := g.index[v]
	if !ok {
		return 0
	}
	es := g.edges[i]
	k := sort.Search(len(es), func(k int) bool { return es[k].to >= j })
	if k < len(es) && es[k].to == j {
		return es[k].weight
	}
	return 0
}

// Neighbors lists the terms adjacent to u in node order.
func (g *Graph) Neighbors(u string) []string {
	i, ok := g.index[u]
	if !ok {
		return nil
	}
	out := make([]string, len(g.edges[i]))
	for k, e := range g.edges[i] {
		out[k] = g.nodes[e.to]
	}
	return out
}

// finish converts the accumulation maps into sorted adjacency slices.
func (g *Graph) finish(edgeMaps []map[int]float64) {
	g.edges = make([][]edge, len(g.nodes))
	for i := range g.nodes {
		var m map[int]float64
		if i < len(edgeMaps) {
			m = edgeMaps[i]
		}
		g.edges[i] = make([]edge, 0, len(m))
		for to, w := range m {
			g.edges[i] = append(g.edges[i], edge{to: to, weight: w})
		}
		slices.SortFunc(g.edges[i], func(a, b edge) int {
			return a.to - b.to
		})
	}
}

// Ranking is the outcome of the centrality iteration.
type Ranking struct {
	Scores     map[string]float64
	Iterations int
	Converged  bool
}

// rank iterates score_i = (1-d)/N + d * sum_j w(j,i)/out(j) * score_j
// until the largest change drops below tol or maxIter rounds ran.
func rank(g *Graph, d float64, maxIter int, tol float64) Ranking {
	n := g.Len()
	if n == 0 {
		return Ranking{Scores: map[string]float64{}, Converged: true}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	outWeight := make([]float64, n)
	for i, neighbors := range g.edges {
		for _, e := range neighbors {
			outWeight[i] += e.weight
		}
	}

	nf := float64(n)
	r := Ranking{}
	next := make([]float64, n)
	for r.Iterations < maxIter {
		r.Iterations++
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			sum := 0.0
			for _, e := range g.edges[i] {
				if outWeight[e.to] > 0 {
					sum += (e.weight / outWeight[e.to]) * scores[e.to]
				}
			}
			next[i] = (1-d)/nf + d*sum
			if delta := math.Abs(next[i] - scores[i]); delta > maxDelta {
				maxDelta = delta
			}
		}
		scores, next = next, scores
		if maxDelta < tol {
			r.Converged = true
			break
		}
	}

	r.Scores = make(map[string]float64, n)
	for i, term := range g.nodes {
		r.Scores[term] = scores[i]
	}
	return r
}
