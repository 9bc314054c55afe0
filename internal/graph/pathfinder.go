package graph

import (
	"container/heap"
	"fmt"
	"math"
)

// PathFinder searches one consolidated graph under one criterion.
type PathFinder interface {
	FindRoute(source, destination string) (*Itinerary, error)
}

type finder struct {
	g *RouteGraph
	c Criterion
}

// NewPathFinder binds g to c. The pairing is checked on every search.
func NewPathFinder(g *RouteGraph, c Criterion) PathFinder { return &finder{g: g, c: c} }

func (f *finder) FindRoute(source, destination string) (*Itinerary, error) {
	return FindOptimalRoute(f.g, source, destination, f.c)
}

// CheapestRoute searches g by price.
func CheapestRoute(g *RouteGraph, source, destination string) (*Itinerary, error) {
	return FindOptimalRoute(g, source, destination, Price)
}

// ShortestRoute searches g by duration.
func ShortestRoute(g *RouteGraph, source, destination string) (*Itinerary, error) {
	return FindOptimalRoute(g, source, destination, Duration)
}

// FindOptimalRoute runs Dijkstra from source and returns the minimum-weight
// itinerary to destination under c.
//
// An unreachable destination, an airport absent from the graph, and
// source == destination all yield an empty itinerary with a nil error.
// Errors are reserved for misuse: an unknown criterion or a criterion that
// differs from the one g was consolidated with.
func FindOptimalRoute(g *RouteGraph, source, destination string, c Criterion) (*Itinerary, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCriterion, int(c))
	}
	if g == nil {
		return NewItinerary(), nil
	}
	if g.criterion != 0 && g.criterion != c {
		return nil, fmt.Errorf("%w: graph=%s search=%s", ErrCriterionMismatch, g.criterion, c)
	}
	if source == destination || !g.HasAirport(source) || !g.HasAirport(destination) {
		return NewItinerary(), nil
	}

	s := newSearch(g, c, source)
	s.run(destination)
	return s.reconstruct(source, destination), nil
}

// hop is the predecessor record for a node: where we came from and with which leg.
type hop struct {
	from string
	leg  Leg
}

// search holds the mutable state of one Dijkstra run.
type search struct {
	g       *RouteGraph
	c       Criterion
	dist    map[string]float64
	prev    map[string]hop
	visited map[string]bool
	pq      nodePQ
}

func newSearch(g *RouteGraph, c Criterion, source string) *search {
	n := len(g.airports)
	s := &search{
		g:       g,
		c:       c,
		dist:    make(map[string]float64, n),
		prev:    make(map[string]hop, n),
		visited: make(map[string]bool, n),
		pq:      make(nodePQ, 0, n),
	}
	for a := range g.airports {
		s.dist[a] = math.Inf(1)
	}
	s.dist[source] = 0
	heap.Init(&s.pq)
	heap.Push(&s.pq, &nodeItem{id: source, dist: 0})
	return s
}

// run expands nodes in distance order until the heap drains or the
// destination is finalised.
func (s *search) run(destination string) {
	for s.pq.Len() > 0 {
		item := heap.Pop(&s.pq).(*nodeItem)
		u := item.id
		if s.visited[u] {
			continue // stale entry
		}
		s.visited[u] = true
		if u == destination {
			return
		}
		s.relax(u)
	}
}

func (s *search) relax(u string) {
	for _, l := range s.g.Neighbors(u) {
		v := l.Destination
		if s.visited[v] {
			continue
		}
		cand := s.dist[u] + s.c.Weight(l)
		cur, ok := s.dist[v]
		if !ok {
			cur = math.Inf(1)
		}
		if cand >= cur {
			continue
		}
		s.dist[v] = cand
		s.prev[v] = hop{from: u, leg: l}
		heap.Push(&s.pq, &nodeItem{id: v, dist: cand})
	}
}

// reconstruct walks predecessor records back from destination and appends
// the stored legs in travel order.
func (s *search) reconstruct(source, destination string) *Itinerary {
	it := NewItinerary()
	if _, ok := s.prev[destination]; !ok {
		return it
	}
	var rev []Leg
	for at := destination; at != source; {
		h, ok := s.prev[at]
		if !ok {
			// chain broken; cannot happen for a consistent run
			return NewItinerary()
		}
		rev = append(rev, h.leg)
		at = h.from
	}
	for i := len(rev) - 1; i >= 0; i-- {
		it.Append(rev[i])
	}
	return it
}

type nodeItem struct {
	id   string
	dist float64
}

// nodePQ is a min-heap on dist. Outdated entries stay in the heap and are
// skipped when popped (lazy decrease-key).
type nodePQ []*nodeItem

func (pq nodePQ) Len() int { return len(pq) }

// Less breaks distance ties by airport code so runs are reproducible.
func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist == pq[j].dist {
		return pq[i].id < pq[j].id
	}
	return pq[i].dist < pq[j].dist
}

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x any) { *pq = append(*pq, x.(*nodeItem)) }

func (pq *nodePQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
