package workflow

import (
	"errors"
	"fmt"
)

var (
	errCyclicGraph  = errors.New("stage graph contains a cycle")
	errUnknownStage = errors.New("edge references unknown stage")
)

// edge connects two stages. A gated edge contributes its source to the
// barrier in front of its target; an ungated edge is plain sequencing.
type edge struct {
	from  StageName
	to    StageName
	gated bool
}

// pipelineEdges is the fixed loan-pipeline DAG: three independent analysis
// stages converge through a barrier into eligibility, then the tail runs
// sequentially. The graph never changes at runtime.
var pipelineEdges = []edge{
	{from: StageDocumentValidation, to: StageEligibility, gated: true},
	{from: StageCreditScoring, to: StageEligibility, gated: true},
	{from: StagePropertyValuation, to: StageEligibility, gated: true},
	{from: StageEligibility, to: StageRecommendation},
	{from: StageRecommendation, to: StageFinalize},
}

type graph struct {
	stages map[StageName]StageFunc
	edges  []edge

	// roots have no inbound edges and launch concurrently.
	roots []StageName
	// gateWaitFor are the sources of gated edges; gateRelease is their
	// common target.
	gateWaitFor []StageName
	gateRelease StageName
	// tail is the topological order of the post-gate sequential stages.
	tail []StageName
}

func newPipelineGraph(stages map[StageName]StageFunc) (*graph, error) {
	return newGraph(stages, pipelineEdges)
}

// newGraph validates the static stage table at startup: every edge endpoint
// must have a registered stage function, all gated edges must converge on a
// single target, and the graph must be acyclic.
func newGraph(stages map[StageName]StageFunc, edges []edge) (*graph, error) {
	g := &graph{stages: stages, edges: edges}

	inDegree := make(map[StageName]int, len(stages))
	for name, fn := range stages {
		if fn == nil {
			return nil, fmt.Errorf("stage %s has no function", name)
		}
		inDegree[name] = 0
	}

	for _, e := range g.edges {
		if _, ok := stages[e.from]; !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownStage, e.from)
		}
		if _, ok := stages[e.to]; !ok {
			return nil, fmt.Errorf("%w: %s", errUnknownStage, e.to)
		}
		inDegree[e.to]++
		if e.gated {
			g.gateWaitFor = append(g.gateWaitFor, e.from)
			if g.gateRelease != "" && g.gateRelease != e.to {
				return nil, fmt.Errorf("gated edges disagree on target: %s vs %s", g.gateRelease, e.to)
			}
			g.gateRelease = e.to
		}
	}
	if g.gateRelease == "" {
		return nil, errors.New("graph defines no barrier gate")
	}

	order, err := topologicalOrder(stages, g.edges, inDegree)
	if err != nil {
		return nil, err
	}

	for _, name := range order {
		if inDegree[name] == 0 {
			g.roots = append(g.roots, name)
		}
	}
	for _, name := range order {
		if inDegree[name] > 0 {
			g.tail = append(g.tail, name)
		}
	}

	return g, nil
}

// topologicalOrder is Kahn's algorithm; it doubles as the cycle check.
func topologicalOrder(stages map[StageName]StageFunc, edges []edge, inDegree map[StageName]int) ([]StageName, error) {
	remaining := make(map[StageName]int, len(inDegree))
	for k, v := range inDegree {
		remaining[k] = v
	}

	dependents := make(map[StageName][]StageName, len(stages))
	for _, e := range edges {
		dependents[e.from] = append(dependents[e.from], e.to)
	}

	canonical := make(map[StageName]bool, len(stageOrder()))
	queue := make([]StageName, 0, len(stages))
	for _, name := range stageOrder() {
		canonical[name] = true
		if _, ok := stages[name]; ok && remaining[name] == 0 {
			queue = append(queue, name)
		}
	}
	for name := range stages {
		if !canonical[name] && remaining[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]StageName, 0, len(stages))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, dep := range dependents[name] {
			remaining[dep]--
			if remaining[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(stages) {
		return nil, errCyclicGraph
	}
	return order, nil
}

// stageOrder keeps map iteration out of anything order-sensitive.
func stageOrder() []StageName {
	return []StageName{
		StageDocumentValidation,
		StageCreditScoring,
		StagePropertyValuation,
		StageEligibility,
		StageRecommendation,
		StageFinalize,
	}
}
