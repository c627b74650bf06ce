package fixture

import (
	"fmt"
	"strings"
)

type GraphNode struct {
	Name      string `json:"name"`
	Requested bool   `json:"requested"`
}

// GraphEdge means "From depends on To".
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Graph struct {
	Nodes     []GraphNode `json:"nodes"`
	Edges     []GraphEdge `json:"edges"`
	TopoOrder []string    `json:"topoOrder"`
}

// Plan computes the dependency graph and setup order for requested without
// running any fixture.
func Plan(registry *Registry, requested ...string) (Graph, error) {
	if registry == nil {
		return Graph{}, fmt.Errorf("plan fixtures: registry is nil")
	}
	nodes, edges, err := buildGraph(registry, requested)
	if err != nil {
		return Graph{}, err
	}
	order, err := topoSort(nodes, edges)
	if err != nil {
		return Graph{}, err
	}
	return newGraph(requested, nodes, edges, order), nil
}

func newGraph(requested []string, nodes []string, edges map[string][]string, order []string) Graph {
	direct := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		direct[name] = struct{}{}
	}

	g := Graph{
		Nodes:     make([]GraphNode, 0, len(nodes)),
		Edges:     make([]GraphEdge, 0, len(nodes)),
		TopoOrder: append([]string(nil), order...),
	}
	for _, name := range nodes {
		_, ok := direct[name]
		g.Nodes = append(g.Nodes, GraphNode{Name: name, Requested: ok})
		for _, dep := range edges[name] {
			g.Edges = append(g.Edges, GraphEdge{From: name, To: dep})
		}
	}
	return g
}

// Deps returns the direct dependencies of name recorded in the graph.
func (g Graph) Deps(name string) []string {
	var deps []string
	for _, e := range g.Edges {
		if e.From == name {
			deps = append(deps, e.To)
		}
	}
	return deps
}

// DOT exports Graphviz DOT text.
func (g Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph fixtures {\n")
	b.WriteString("  rankdir=LR;\n")

	aliases := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n.Name] = alias
		attrs := fmt.Sprintf("label=\"%s\"", escapeQuotes(n.Name))
		if n.Requested {
			attrs += ", shape=box"
		}
		b.WriteString(fmt.Sprintf("  %s [%s];\n", alias, attrs))
	}
	for _, e := range g.Edges {
		from, okFrom := aliases[e.From]
		to, okTo := aliases[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s -> %s;\n", from, to))
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid exports Mermaid graph text.
func (g Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	aliases := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n.Name] = alias
		label := escapeQuotes(n.Name)
		if n.Requested {
			b.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", alias, label))
			continue
		}
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", alias, label))
	}
	for _, e := range g.Edges {
		from, okFrom := aliases[e.From]
		to, okTo := aliases[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
	}
	return b.String()
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}
