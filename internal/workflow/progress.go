package workflow

import "sync"

// Progress is a stage→completed snapshot for UI polling. Completion means the
// stage produced a result, success or failure alike. Progress must never gate
// stage execution; that is the barrier gate's job exclusively.
type Progress map[StageName]bool

type progressTracker struct {
	mu   sync.RWMutex
	done map[StageName]bool
}

func newProgressTracker(stages []StageName) *progressTracker {
	done := make(map[StageName]bool, len(stages))
	for _, s := range stages {
		done[s] = false
	}
	return &progressTracker{done: done}
}

func (t *progressTracker) markDone(stage StageName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done[stage] = true
}

// snapshot copies the current completion map. Within one run snapshots are
// monotonic: a completed stage never reverts to incomplete.
func (t *progressTracker) snapshot() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(Progress, len(t.done))
	for k, v := range t.done {
		out[k] = v
	}
	return out
}
