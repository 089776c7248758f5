package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fbkclanna/reqcheck/internal/requirement"
)

// UnmetError reports requirements whose targets are not installed, found
// while freezing. The entries keep their specifiers so the caller can
// install exactly what is missing.
type UnmetError struct {
	Unmet []string
}

func (e *UnmetError) Error() string {
	return fmt.Sprintf("unmet dependencies: %s", strings.Join(e.Unmet, ", "))
}

// Freeze computes the exact pin set reachable from roots: every installed
// package in the transitive closure, pinned to its installed version.
// Extras on a requirement widen which of its target's dependencies are
// followed. If anything reachable is not installed, Freeze fails with an
// *UnmetError listing all of it.
func Freeze(g *Graph, roots []requirement.Requirement, role requirement.Role) (*requirement.Set, error) {
	type item struct {
		key    string
		extras []string
	}
	seen := make(map[string]bool)
	unmet := make(map[string]bool)
	pinned := make(map[string]string)

	var queue []item
	for _, root := range roots {
		queue = append(queue, item{key: root.Key, extras: root.Extras})
	}

	for len(queue) > 0 {
		it := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		id := it.key + "[" + strings.Join(it.extras, ",") + "]"
		if seen[id] {
			continue
		}
		seen[id] = true

		node := g.Node(it.key)
		if node == nil {
			unmet[it.key] = true
			continue
		}
		pinned[node.Key] = node.Version

		for _, edge := range g.Children(it.key, it.extras...) {
			if edge.Unmet {
				unmet[label(edge.Req)] = true
				continue
			}
			queue = append(queue, item{key: edge.To, extras: edge.Req.Extras})
		}
	}

	if len(unmet) > 0 {
		e := &UnmetError{}
		for u := range unmet {
			e.Unmet = append(e.Unmet, u)
		}
		sort.Strings(e.Unmet)
		return nil, e
	}

	out := &requirement.Set{Role: role}
	keys := make([]string, 0, len(pinned))
	for k := range pinned {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.Reqs = append(out.Reqs, requirement.Requirement{
			Raw:   k + "==" + pinned[k],
			Name:  k,
			Key:   k,
			Specs: []requirement.Spec{{Op: "==", Version: pinned[k]}},
		})
	}
	return out, nil
}
