// Package depgraph builds a directed "depends on" graph from installed
// distributions and renders it as an indented tree. Edges to packages that
// are not installed are kept as dangling edges: a requirement nobody can
// satisfy is exactly the kind of thing worth showing.
package depgraph

import (
	"sort"

	"github.com/fbkclanna/reqcheck/internal/pydist"
	"github.com/fbkclanna/reqcheck/internal/requirement"
)

// Node is one installed package.
type Node struct {
	Key      string
	Version  string
	declared []requirement.Requirement
}

// Edge is a dependency of From on To. Unmet marks a dangling edge whose
// target is not installed.
type Edge struct {
	From  string
	To    string
	Req   requirement.Requirement
	Unmet bool
}

// Graph holds the installed packages and evaluates their declared
// requirements against an environment on demand. Node identities are unique
// by canonical name; self-edges are dropped.
type Graph struct {
	nodes map[string]*Node
	env   requirement.Environment
}

// Build constructs a graph from an installed-distribution snapshot. Building
// from the same snapshot always yields the same graph.
func Build(dists []pydist.Distribution, env requirement.Environment) *Graph {
	g := &Graph{nodes: make(map[string]*Node, len(dists)), env: env}
	for _, d := range dists {
		g.nodes[d.Name] = &Node{
			Key:      d.Name,
			Version:  d.Version,
			declared: d.Requires,
		}
	}
	return g
}

// Node returns the installed package with the given canonical name, or nil.
func (g *Graph) Node(key string) *Node {
	return g.nodes[key]
}

// Len returns the number of installed packages.
func (g *Graph) Len() int { return len(g.nodes) }

// Keys returns all canonical package names, sorted.
func (g *Graph) Keys() []string {
	keys := make([]string, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Children returns the outgoing edges of key, sorted by target name.
// extras widens marker evaluation: an extras-gated requirement (marker on
// the "extra" variable) is included when one of the requested extras
// matches, mirroring how installers resolve extras.
func (g *Graph) Children(key string, extras ...string) []Edge {
	node := g.nodes[key]
	if node == nil {
		return nil
	}
	var edges []Edge
	for _, req := range node.declared {
		if req.Key == key {
			continue // self-edge
		}
		if !g.markerApplies(req.Marker, extras) {
			continue
		}
		_, installed := g.nodes[req.Key]
		edges = append(edges, Edge{From: key, To: req.Key, Req: req, Unmet: !installed})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
	return edges
}

// Parents returns the incoming edges of key, sorted by source name.
// Extras-gated requirements count as edges here: when asking why a package
// is installed, a dependency pulled in through an extra is still an answer.
func (g *Graph) Parents(key string) []Edge {
	var edges []Edge
	for _, from := range g.Keys() {
		node := g.nodes[from]
		if from == key {
			continue
		}
		for _, req := range node.declared {
			if req.Key != key {
				continue
			}
			if !g.markerApplies(req.Marker, nil) && !markerUsesExtra(req.Marker) {
				continue
			}
			edges = append(edges, Edge{From: from, To: key, Req: req})
			break
		}
	}
	return edges
}

// markerApplies evaluates a marker against the graph environment with each
// candidate value of the "extra" variable. A marker that fails to evaluate
// keeps its edge: a bad marker should surface in the tree, not vanish.
func (g *Graph) markerApplies(marker string, extras []string) bool {
	if marker == "" {
		return true
	}
	for _, extra := range append([]string{""}, extras...) {
		env := make(requirement.Environment, len(g.env)+1)
		for k, v := range g.env {
			env[k] = v
		}
		env["extra"] = extra
		ok, err := requirement.EvalMarker(marker, env)
		if err != nil {
			return true
		}
		if ok {
			return true
		}
	}
	return false
}

// markerUsesExtra reports whether a marker is a pure extras gate. Evaluating
// with only the "extra" variable bound succeeds exactly when the marker
// references nothing else.
func markerUsesExtra(marker string) bool {
	_, err := requirement.EvalMarker(marker, requirement.Environment{"extra": ""})
	return err == nil
}
