package depgraph

import (
	"fmt"
	"io"
	"strings"

	"github.com/fbkclanna/reqcheck/internal/requirement"
)

// RenderOptions controls tree output.
type RenderOptions struct {
	// MaxDepth bounds descent; 0 means unlimited. Cycles are broken by the
	// visiting path regardless, so this only trims very deep trees.
	MaxDepth int
	// Unmet decorates the marker appended to dangling edges. nil leaves it
	// plain; commands install a lipgloss style here on a TTY.
	Unmet func(string) string
}

func (o RenderOptions) unmetLabel() string {
	const label = "(UNMET!)"
	if o.Unmet != nil {
		return o.Unmet(label)
	}
	return label
}

type frame struct {
	req   requirement.Requirement
	depth int
	exit  bool
}

// Render writes the dependency tree rooted at each requirement in roots,
// in root order, children sorted by canonical name. A node already on the
// current visiting path is printed once more with a (circular: ...)
// annotation and not descended, so cyclic graphs terminate. The descent
// uses an explicit stack; depth is bounded by MaxDepth, not the call stack.
func Render(w io.Writer, g *Graph, roots []requirement.Requirement, opts RenderOptions) error {
	p := &printer{w: w}
	for _, root := range roots {
		renderRoot(p, g, root, opts)
	}
	return p.err
}

func renderRoot(p *printer, g *Graph, root requirement.Requirement, opts RenderOptions) {
	var path []string
	stack := []frame{{req: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.exit {
			path = path[:len(path)-1]
			continue
		}

		key := f.req.Key
		circular := ""
		if i := indexOf(path, key); i != -1 {
			cycle := append(append([]string(nil), path[i:]...), key)
			circular = fmt.Sprintf(" (circular: %s)", strings.Join(cycle, "->"))
		}
		unmet := ""
		if g.Node(key) == nil {
			unmet = " " + opts.unmetLabel()
		}

		indent := strings.Repeat("  ", f.depth)
		if f.depth > 0 {
			indent += "- "
		}
		p.printf("%s%s%s%s\n", indent, label(f.req), circular, unmet)

		if circular != "" || unmet != "" {
			continue
		}
		if opts.MaxDepth > 0 && f.depth >= opts.MaxDepth {
			continue
		}

		children := g.Children(key, f.req.Extras...)
		if len(children) == 0 {
			continue
		}
		stack = append(stack, frame{req: f.req, depth: f.depth, exit: true})
		path = append(path, key)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{req: children[i].Req, depth: f.depth + 1})
		}
	}
}

// WhyInstalled prints every path from a top-level requirement down to
// target, answering "why is this installed". Roots that are the target
// themselves are reported as top-level. Returns the number of paths found.
func WhyInstalled(w io.Writer, g *Graph, roots []requirement.Requirement, target string) (int, error) {
	key := requirement.Canonicalize(target)
	p := &printer{w: w}
	found := 0
	for _, root := range roots {
		if root.Key == key {
			p.printf("%s is a top-level requirement\n", key)
			found++
			continue
		}
		for _, path := range pathsTo(g, root, key) {
			p.printf("%s\n", strings.Join(path, " -> "))
			found++
		}
	}
	if found == 0 {
		p.printf("nothing in the given requirements depends on %s\n", key)
	}
	return found, p.err
}

// pathsTo collects every cycle-free path from root to target.
func pathsTo(g *Graph, root requirement.Requirement, target string) [][]string {
	var paths [][]string
	var walk func(req requirement.Requirement, path []string)
	walk = func(req requirement.Requirement, path []string) {
		if indexOf(path, req.Key) != -1 {
			return
		}
		path = append(path, req.Key)
		if req.Key == target {
			paths = append(paths, append([]string(nil), path...))
			return
		}
		for _, edge := range g.Children(req.Key, req.Extras...) {
			walk(edge.Req, path)
		}
	}
	walk(root, nil)
	return paths
}

// label renders a requirement for the tree: canonical name, extras and
// specifiers, without the environment marker.
func label(req requirement.Requirement) string {
	var b strings.Builder
	b.WriteString(req.Key)
	if len(req.Extras) > 0 {
		b.WriteString("[" + strings.Join(req.Extras, ",") + "]")
	}
	for i, s := range req.Specs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

func indexOf(path []string, key string) int {
	for i, k := range path {
		if k == key {
			return i
		}
	}
	return -1
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
