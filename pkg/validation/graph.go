// Package validation checks process graphs for structural soundness. Every
// validator is a pure function over a snapshot of nodes and edges and reports
// problems through models.ValidationResult instead of failing.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/flowmodel/pkg/models"
)

// MaxRecommendedNodes is the soft ceiling above which graphs draw a warning.
const MaxRecommendedNodes = 100

// graph is the merged dependency view of a snapshot. An arc u -> v means v depends on u.
type graph struct {
	ids        []string
	nodes      map[string]*models.Node
	downstream map[string][]string
	upstream   map[string][]string
	problems   []string
	unresolved []string
}

func newGraph(nodes []*models.Node, edges []models.Edge) *graph {
	g := &graph{
		nodes:      make(map[string]*models.Node, len(nodes)),
		downstream: map[string][]string{},
		upstream:   map[string][]string{},
	}

	for i, node := range nodes {
		if node == nil {
			g.problems = append(g.problems, fmt.Sprintf("node at position %d is nil", i))

			continue
		}

		if strings.TrimSpace(node.ID) == "" {
			g.problems = append(g.problems, fmt.Sprintf("node at position %d has no identifier", i))

			continue
		}

		if _, dup := g.nodes[node.ID]; dup {
			g.problems = append(g.problems, fmt.Sprintf("node identifier %s appears more than once", node.ID))

			continue
		}

		g.nodes[node.ID] = node
		g.ids = append(g.ids, node.ID)
	}

	slices.Sort(g.ids)

	for _, id := range g.ids {
		for _, dep := range g.nodes[id].Dependencies {
			if _, ok := g.nodes[dep]; !ok {
				g.unresolved = append(g.unresolved, fmt.Sprintf("node %s depends on unknown node %s", id, dep))

				continue
			}

			g.link(dep, id)
		}
	}

	for i, edge := range edges {
		label := edge.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}

		_, sourceOK := g.nodes[edge.Source]
		_, targetOK := g.nodes[edge.Target]

		if !sourceOK {
			g.unresolved = append(g.unresolved, fmt.Sprintf("edge %s references unknown source node %q", label, edge.Source))
		}

		if !targetOK {
			g.unresolved = append(g.unresolved, fmt.Sprintf("edge %s references unknown target node %q", label, edge.Target))
		}

		if sourceOK && targetOK {
			g.link(edge.Source, edge.Target)
		}
	}

	return g
}

// link records that to depends on from, ignoring repeats.
func (g *graph) link(from, to string) {
	if slices.Contains(g.downstream[from], to) {
		return
	}

	g.downstream[from] = append(g.downstream[from], to)
	g.upstream[to] = append(g.upstream[to], from)
}

func (g *graph) empty(result *models.ValidationResult) bool {
	for _, problem := range g.problems {
		result.AddError("%s", problem)
	}

	if len(g.ids) == 0 {
		result.AddError("graph contains no nodes")

		return true
	}

	return false
}

// ValidateConnections checks that every dependency and edge resolves to a node
// in the snapshot and warns about nodes with no connections at all.
func ValidateConnections(nodes []*models.Node, edges []models.Edge) models.ValidationResult {
	result := models.NewValidationResult()

	g := newGraph(nodes, edges)
	if g.empty(&result) {
		return result
	}

	for _, msg := range g.unresolved {
		result.AddError("%s", msg)
	}

	if len(g.ids) < 2 {
		return result
	}

	for _, id := range g.ids {
		if len(g.downstream[id]) == 0 && len(g.upstream[id]) == 0 {
			result.AddWarning("node %s (%s) is isolated: it has no incoming or outgoing connections", id, g.nodes[id].Name)
		}
	}

	return result
}

// ValidateExecutionFlow requires input and output boundaries and warns about
// outputs that cannot be traced back to any input.
func ValidateExecutionFlow(nodes []*models.Node, edges []models.Edge) models.ValidationResult {
	result := models.NewValidationResult()

	g := newGraph(nodes, edges)
	if g.empty(&result) {
		return result
	}

	var inputs, outputs []string

	for _, id := range g.ids {
		switch {
		case g.nodes[id].IsInput():
			inputs = append(inputs, id)
		case g.nodes[id].IsOutput():
			outputs = append(outputs, id)
		}
	}

	if len(inputs) == 0 {
		result.AddError("graph must contain at least one input node")
	}

	if len(outputs) == 0 {
		result.AddError("graph must contain at least one output node")
	}

	if len(inputs) == 0 {
		return result
	}

	for _, output := range outputs {
		if !g.reachesInput(output) {
			result.AddWarning("output node %s (%s) is not reachable from any input node", output, g.nodes[output].Name)
		}
	}

	return result
}

// reachesInput walks dependencies backward from start until an input node is found.
func (g *graph) reachesInput(start string) bool {
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dep := range g.upstream[current] {
			if visited[dep] {
				continue
			}

			if g.nodes[dep].IsInput() {
				return true
			}

			visited[dep] = true
			queue = append(queue, dep)
		}
	}

	return false
}

// ValidateCircularDependencies reports every cycle in the dependency relation,
// including self-references, as an ordered path such as "a → b → a".
func ValidateCircularDependencies(nodes []*models.Node, edges []models.Edge) models.ValidationResult {
	result := models.NewValidationResult()

	g := newGraph(nodes, edges)
	if g.empty(&result) {
		return result
	}

	for _, cycle := range g.cycles() {
		result.AddError("circular dependency detected: %s", strings.Join(cycle, " → "))
	}

	return result
}

type frame struct {
	id   string
	next int
}

// cycles runs an iterative depth-first search from every unvisited node. Each
// back edge to a node on the current path closes a cycle. Cycles found more than
// once through different entry points are reported once.
func (g *graph) cycles() [][]string {
	var found [][]string

	seen := map[string]bool{}
	visited := map[string]bool{}

	for _, root := range g.ids {
		if visited[root] {
			continue
		}

		var path []string

		onPath := map[string]int{}
		stack := []*frame{{id: root}}
		visited[root] = true
		onPath[root] = 0
		path = append(path, root)

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			children := g.downstream[top.id]

			if top.next >= len(children) {
				stack = stack[:len(stack)-1]
				delete(onPath, top.id)
				path = path[:len(path)-1]

				continue
			}

			child := children[top.next]
			top.next++

			if idx, ok := onPath[child]; ok {
				cycle := append(slices.Clone(path[idx:]), child)

				key := canonicalKey(cycle)
				if !seen[key] {
					seen[key] = true
					found = append(found, cycle)
				}

				continue
			}

			if visited[child] {
				continue
			}

			visited[child] = true
			onPath[child] = len(path)
			path = append(path, child)
			stack = append(stack, &frame{id: child})
		}
	}

	return found
}

// canonicalKey identifies a closed path independent of its starting node.
func canonicalKey(cycle []string) string {
	ring := cycle[:len(cycle)-1]

	start := 0
	for i, id := range ring {
		if id < ring[start] {
			start = i
		}
	}

	rotated := append(slices.Clone(ring[start:]), ring[:start]...)

	return strings.Join(rotated, "\x00")
}

// ValidateRequiredNodes checks the minimum size of a graph and flags suspicious composition.
func ValidateRequiredNodes(nodes []*models.Node, edges []models.Edge) models.ValidationResult {
	result := models.NewValidationResult()

	g := newGraph(nodes, edges)
	if g.empty(&result) {
		return result
	}

	if len(g.ids) < 2 {
		result.AddError("graph must contain at least 2 nodes, found %d", len(g.ids))
	}

	boundaryOnly := true
	names := map[string][]string{}

	for _, id := range g.ids {
		node := g.nodes[id]
		if node.Kind != models.NodeKindIO {
			boundaryOnly = false
		}

		names[node.Name] = append(names[node.Name], id)
	}

	if boundaryOnly {
		result.AddWarning("graph contains only input/output nodes and no processing node")
	}

	if len(g.ids) > MaxRecommendedNodes {
		result.AddWarning("graph has %d nodes, more than the recommended %d", len(g.ids), MaxRecommendedNodes)
	}

	duplicated := make([]string, 0, len(names))
	for name, ids := range names {
		if len(ids) > 1 {
			duplicated = append(duplicated, name)
		}
	}

	slices.Sort(duplicated)

	for _, name := range duplicated {
		result.AddWarning("node name %q is used by %d nodes: %s", name, len(names[name]), strings.Join(names[name], ", "))
	}

	return result
}
