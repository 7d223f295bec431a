package semka

import (
	"fmt"
	"slices"
	"strings"
)

// graph is a directed graph of documents. It's used to order documents so
// every document comes after the documents it declared as dependencies.
type graph struct {
	// nodes holds the nodes in the graph, in Path.Compare order.
	nodes []Path

	// edgesTo holds graph edges, with the key being the position of the
	// node in the nodes slice that the edges are pointing to.
	//
	// if document 1 declared document 2, edgesTo will have a key of 2
	// with a value of [1].
	edgesTo map[int]map[int]struct{}

	// edgesFrom holds graph edges, with the key being the position of the
	// node in the nodes slice that the edges are pointing from.
	//
	// if document 1 declared document 2, edgesFrom will have a key of 1
	// with a value of [2].
	//
	// nodes point to their dependencies and dependencies are always
	// walked first; 2 will always appear before 1 when walking the graph.
	edgesFrom map[int]map[int]struct{}
}

func (g *graph) addEdge(from, to int) {
	if g.edgesFrom[from] == nil {
		g.edgesFrom[from] = map[int]struct{}{}
	}
	if g.edgesTo[to] == nil {
		g.edgesTo[to] = map[int]struct{}{}
	}
	g.edgesFrom[from][to] = struct{}{}
	g.edgesTo[to][from] = struct{}{}
}

// buildGraph creates a graph of every document the Tree tracks, with an edge
// from each document to every tracked document it declared.
func (t *Tree) buildGraph() graph {
	result := graph{
		nodes:     t.Paths(),
		edgesTo:   map[int]map[int]struct{}{},
		edgesFrom: map[int]map[int]struct{}{},
	}
	positions := make(map[string]int, len(result.nodes))
	for pos, path := range result.nodes {
		positions[path.key()] = pos
	}
	for pos, path := range result.nodes {
		deps, _ := t.Dependencies(path)
		for _, dep := range deps.Paths() {
			depPos, ok := positions[dep.key()]
			if !ok {
				continue
			}
			result.addEdge(pos, depPos)
		}
	}
	return result
}

// Order returns every tracked document, each one after all the documents it
// declared as dependencies. Documents with no ordering constraint between
// them are returned in Path.Compare order.
//
// If documents include each other, the documents that could be ordered are
// returned along with an error wrapping ErrDependencyCycle.
func (t *Tree) Order() ([]Path, error) {
	return walkGraph(t.buildGraph())
}

func walkGraph(docs graph) ([]Path, error) {
	noParents := make([]int, 0, len(docs.nodes))
	results := make([]Path, 0, len(docs.nodes))
	for pos := range docs.nodes {
		if len(docs.edgesFrom[pos]) < 1 {
			noParents = append(noParents, pos)
		}
	}
	// positions follow the order of nodes, which is sorted already
	slices.Sort(noParents)
	for len(noParents) > 0 {
		pos := noParents[0]
		noParents = noParents[1:]
		results = append(results, docs.nodes[pos])
		var noParentsChanged bool
		for child := range docs.edgesTo[pos] {
			delete(docs.edgesFrom[child], pos)
			if len(docs.edgesFrom[child]) < 1 {
				delete(docs.edgesFrom, child)
				noParents = append(noParents, child)
				noParentsChanged = true
			}
		}
		delete(docs.edgesTo, pos)
		if noParentsChanged {
			slices.Sort(noParents)
		}
	}
	if len(docs.edgesFrom) > 0 {
		var edges []string
		for from, to := range docs.edgesFrom {
			var vals []string
			for val := range to {
				vals = append(vals, docs.nodes[val].String())
			}
			slices.Sort(vals)
			edges = append(edges, fmt.Sprintf("%s->%s", docs.nodes[from], strings.Join(vals, ",")))
		}
		slices.Sort(edges)
		return results, fmt.Errorf("%w: edges=[%s]", ErrDependencyCycle, strings.Join(edges, "; "))
	}
	return results, nil
}
