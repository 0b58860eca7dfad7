package detection

import (
	"sync"
)

// StatusKind enumerates the per-file detection states.
type StatusKind int

const (
	// StatusPending means the file is queued and not yet dispatched.
	StatusPending StatusKind = iota
	// StatusFlying means the classification call for the file is in flight.
	StatusFlying
	// StatusSuccess means the call returned a likelihood and rationale.
	StatusSuccess
	// StatusFailure means content fetch or the call itself failed.
	StatusFailure
)

func (k StatusKind) String() string {
	switch k {
	case StatusPending:
		return "pending"
	case StatusFlying:
		return "flying"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// StatusCell is the per-file detection status state machine:
//
//	Pending -> Flying -> Success(likelihood, reasoning) | Failure(message)
//
// A Failure may be reset back to Pending by a retry. Only the scheduler
// writes the Flying and terminal transitions; import code only ever creates
// fresh Pending cells.
type StatusCell struct {
	mu         sync.RWMutex
	kind       StatusKind
	likelihood uint8
	reasoning  string
	message    string
}

func NewStatusCell() *StatusCell {
	return &StatusCell{kind: StatusPending}
}

// Snapshot returns the current state as one consistent read.
func (c *StatusCell) Snapshot() (kind StatusKind, likelihood uint8, reasoning string, message string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kind, c.likelihood, c.reasoning, c.message
}

// Kind returns the current state kind.
func (c *StatusCell) Kind() StatusKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kind
}

// markFlying transitions Pending to Flying.
func (c *StatusCell) markFlying() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = StatusFlying
}

// succeed records a successful classification outcome. Likelihood values
// above 100 are clamped down to 100.
func (c *StatusCell) succeed(likelihood uint8, reasoning string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if likelihood > 100 {
		likelihood = 100
	}
	c.kind = StatusSuccess
	c.likelihood = likelihood
	c.reasoning = reasoning
	c.message = ""
}

// fail records a failed classification outcome.
func (c *StatusCell) fail(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = StatusFailure
	c.likelihood = 0
	c.reasoning = ""
	c.message = message
}

// resetForRetry moves a Failure back to Pending. Returns false if the cell
// is not currently in Failure.
func (c *StatusCell) resetForRetry() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kind != StatusFailure {
		return false
	}
	c.kind = StatusPending
	c.likelihood = 0
	c.reasoning = ""
	c.message = ""
	return true
}
