package monitor

import (
	"sync"
	"time"
)

// Stage names a timed step
type Stage string

const (
	StageScan       Stage = "scan"
	StageSplit      Stage = "split"
	StageEmbed      Stage = "embed"
	StageEmbedBatch Stage = "embed_batch"
	StageBuild      Stage = "build"
	StageSave       Stage = "save"
	StageEmbedQuery Stage = "embed_query"
	StageSearch     Stage = "search"
)

// StageStats summarizes one stage's timer
type StageStats struct {
	Stage Stage         `json:"stage"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
}

// Recorder keeps one timer per stage, in first-seen order
type Recorder struct {
	mu     sync.Mutex
	timers map[Stage]*Timer
	order  []Stage
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{timers: make(map[Stage]*Timer)}
}

// Timer returns the timer for stage, creating it on first use
func (r *Recorder) Timer(stage Stage) *Timer {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.timers[stage]
	if !ok {
		t = NewTimer()
		r.timers[stage] = t
		r.order = append(r.order, stage)
	}
	return t
}

// Record adds a measurement for stage
func (r *Recorder) Record(stage Stage, d time.Duration) {
	r.Timer(stage).Record(d)
}

// Track times fn under stage. The duration is recorded even when fn fails.
func (r *Recorder) Track(stage Stage, fn func() error) error {
	t := r.Timer(stage)
	start := time.Now()
	err := fn()
	t.Record(time.Since(start))
	return err
}

// Snapshot returns the stats of every stage seen so far
func (r *Recorder) Snapshot() []StageStats {
	r.mu.Lock()
	order := append([]Stage(nil), r.order...)
	r.mu.Unlock()

	stats := make([]StageStats, 0, len(order))
	for _, stage := range order {
		t := r.Timer(stage)
		stats = append(stats, StageStats{
			Stage: stage,
			Count: t.Count(),
			Total: t.TotalTime(),
			Min:   t.MinTime(),
			Max:   t.MaxTime(),
			Avg:   t.AvgTime(),
		})
	}
	return stats
}
