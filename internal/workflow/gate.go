package workflow

import (
	"context"
	"sync"
)

// barrierGate releases its dependent stage only after every tracked
// predecessor has produced a result. Completion counts regardless of success:
// a failed upstream stage still unblocks the gate. The gate fires exactly
// once; duplicate or unknown signals are no-ops.
type barrierGate struct {
	mu        sync.Mutex
	pending   map[StageName]bool
	remaining int
	fired     bool
	released  chan struct{}
}

func newBarrierGate(stages ...StageName) *barrierGate {
	pending := make(map[StageName]bool, len(stages))
	for _, s := range stages {
		pending[s] = true
	}
	return &barrierGate{
		pending:   pending,
		remaining: len(pending),
		released:  make(chan struct{}),
	}
}

// signal records the completion of one tracked stage and reports whether this
// call fired the gate. Signaling a stage twice, an untracked stage, or an
// already-fired gate does nothing.
func (g *barrierGate) signal(stage StageName) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.fired || !g.pending[stage] {
		return false
	}
	g.pending[stage] = false
	g.remaining--
	if g.remaining > 0 {
		return false
	}
	g.fired = true
	close(g.released)
	return true
}

func (g *barrierGate) wait(ctx context.Context) error {
	select {
	case <-g.released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *barrierGate) hasFired() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fired
}
