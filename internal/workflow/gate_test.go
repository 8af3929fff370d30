package workflow

import (
	"context"
	"testing"
	"time"
)

func TestBarrierGateFiresOnceAllStagesSignal(t *testing.T) {
	gate := newBarrierGate(StageDocumentValidation, StageCreditScoring, StagePropertyValuation)

	if gate.signal(StageDocumentValidation) {
		t.Fatalf("first signal must not fire the gate")
	}
	if gate.signal(StageCreditScoring) {
		t.Fatalf("second signal must not fire the gate")
	}
	if gate.hasFired() {
		t.Fatalf("gate fired before all stages signalled")
	}
	if !gate.signal(StagePropertyValuation) {
		t.Fatalf("final signal should fire the gate")
	}
	if !gate.hasFired() {
		t.Fatalf("gate should fire after the final signal")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := gate.wait(ctx); err != nil {
		t.Fatalf("wait after fire: %v", err)
	}
}

func TestBarrierGateDuplicateSignalsAreNoOps(t *testing.T) {
	gate := newBarrierGate(StageDocumentValidation, StageCreditScoring)

	if gate.signal(StageDocumentValidation) {
		t.Fatalf("first signal must not fire a two-stage gate")
	}
	for i := 0; i < 5; i++ {
		if gate.signal(StageDocumentValidation) {
			t.Fatalf("duplicate signal %d should be a no-op", i)
		}
	}
	if gate.hasFired() {
		t.Fatalf("gate fired from duplicate signals")
	}

	if !gate.signal(StageCreditScoring) {
		t.Fatalf("remaining signal should fire the gate")
	}
	if !gate.hasFired() {
		t.Fatalf("gate should have fired")
	}
	if gate.signal(StageCreditScoring) {
		t.Fatalf("post-fire signal should be a no-op")
	}
}

func TestBarrierGateUnknownStageIgnored(t *testing.T) {
	gate := newBarrierGate(StageDocumentValidation)
	if gate.signal(StageEligibility) {
		t.Fatalf("signal for stage outside the gate should not count")
	}
	if gate.hasFired() {
		t.Fatalf("gate must not fire from unknown stages")
	}
}

func TestBarrierGateWaitHonoursContext(t *testing.T) {
	gate := newBarrierGate(StageDocumentValidation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gate.wait(ctx); err == nil {
		t.Fatalf("wait should fail when context is cancelled before release")
	}
}

func TestBarrierGateConcurrentSignals(t *testing.T) {
	stages := []StageName{StageDocumentValidation, StageCreditScoring, StagePropertyValuation}
	gate := newBarrierGate(stages...)

	for _, stage := range stages {
		go func(s StageName) {
			time.Sleep(5 * time.Millisecond)
			gate.signal(s)
		}(stage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := gate.wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !gate.hasFired() {
		t.Fatalf("gate should have fired")
	}
}
