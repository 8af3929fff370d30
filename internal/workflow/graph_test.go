package workflow

import (
	"context"
	"errors"
	"testing"
)

func noopStage(stage StageName) StageFunc {
	return func(context.Context, *WorkflowState) StageResult {
		return successResult(stage, nil)
	}
}

func fullStageSet() map[StageName]StageFunc {
	stages := make(map[StageName]StageFunc)
	for _, name := range stageOrder() {
		stages[name] = noopStage(name)
	}
	return stages
}

func TestPipelineGraphShape(t *testing.T) {
	g, err := newPipelineGraph(fullStageSet())
	if err != nil {
		t.Fatalf("newPipelineGraph: %v", err)
	}

	wantRoots := map[StageName]bool{
		StageDocumentValidation: true,
		StageCreditScoring:      true,
		StagePropertyValuation:  true,
	}
	if len(g.roots) != len(wantRoots) {
		t.Fatalf("roots mismatch: got %v", g.roots)
	}
	for _, root := range g.roots {
		if !wantRoots[root] {
			t.Fatalf("unexpected root %s", root)
		}
	}

	if g.gateRelease != StageEligibility {
		t.Fatalf("gate release mismatch: got %s", g.gateRelease)
	}
	if len(g.gateWaitFor) != 3 {
		t.Fatalf("gate should wait for three stages, got %v", g.gateWaitFor)
	}

	wantTail := []StageName{StageEligibility, StageRecommendation, StageFinalize}
	if len(g.tail) != len(wantTail) {
		t.Fatalf("tail mismatch: got %v", g.tail)
	}
	for i, name := range wantTail {
		if g.tail[i] != name {
			t.Fatalf("tail[%d] = %s, want %s", i, g.tail[i], name)
		}
	}
}

func TestNewGraphRejectsNilStageFunc(t *testing.T) {
	stages := fullStageSet()
	stages[StageCreditScoring] = nil
	if _, err := newPipelineGraph(stages); err == nil {
		t.Fatalf("expected error for nil stage function")
	}
}

func TestNewGraphRejectsUnknownEdgeStage(t *testing.T) {
	stages := fullStageSet()
	delete(stages, StageRecommendation)
	_, err := newPipelineGraph(stages)
	if !errors.Is(err, errUnknownStage) {
		t.Fatalf("expected unknown stage error, got %v", err)
	}
}

func TestNewGraphRejectsCycle(t *testing.T) {
	a, b, c := StageName("a"), StageName("b"), StageName("c")
	stages := map[StageName]StageFunc{
		a: noopStage(a),
		b: noopStage(b),
		c: noopStage(c),
	}
	edges := []edge{
		{from: a, to: b, gated: true},
		{from: b, to: c},
		{from: c, to: a},
	}
	// The gate target participates in the cycle, so Kahn never drains.
	_, err := newGraph(stages, edges)
	if !errors.Is(err, errCyclicGraph) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestNewGraphRejectsDivergingGateTargets(t *testing.T) {
	a, b, c, d := StageName("a"), StageName("b"), StageName("c"), StageName("d")
	stages := map[StageName]StageFunc{
		a: noopStage(a),
		b: noopStage(b),
		c: noopStage(c),
		d: noopStage(d),
	}
	edges := []edge{
		{from: a, to: c, gated: true},
		{from: b, to: d, gated: true},
	}
	if _, err := newGraph(stages, edges); err == nil {
		t.Fatalf("expected error when gated edges target different stages")
	}
}
