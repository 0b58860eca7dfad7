package detection

import (
	"sync"
)

// Stage is the workflow stage of a detection session. It only ever moves one
// step at a time, forward through Advance or backward through RollBack.
type Stage int

const (
	// StageInitial means no API provider has been chosen yet.
	StageInitial Stage = iota
	// StageApiProvided means a provider client has been validated and stored.
	StageApiProvided
	// StageCodeImported means code files are imported and queued for analysis.
	StageCodeImported
	// StageDetectionDone means the detection pass over all files finished.
	StageDetectionDone
)

func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "initial"
	case StageApiProvided:
		return "api-provided"
	case StageCodeImported:
		return "code-imported"
	case StageDetectionDone:
		return "detection-done"
	default:
		return "unknown"
	}
}

// StageCell is the single shared holder of the workflow stage. All stage
// transitions funnel through Advance and RollBack so invariants are checked
// in one place.
type StageCell struct {
	mu    sync.Mutex
	stage Stage
}

func NewStageCell() *StageCell {
	return &StageCell{stage: StageInitial}
}

// Current returns the stage at this moment.
func (c *StageCell) Current() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Advance moves the stage one step forward. Returns false if already at the
// final stage.
func (c *StageCell) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage >= StageDetectionDone {
		return false
	}
	c.stage++
	return true
}

// RollBack moves the stage one step backward. Returns false if already at the
// initial stage.
func (c *StageCell) RollBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage <= StageInitial {
		return false
	}
	c.stage--
	return true
}
