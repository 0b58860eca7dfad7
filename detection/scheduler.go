package detection

import (
	"context"
	"sync"
	"time"

	"github.com/josehu07/codetective/code_group"
	"github.com/josehu07/codetective/providers/contracts"
)

// ClientSlot holds the single shared provider client. The scheduler takes
// the client out of the slot before any suspension point and puts it back
// afterwards, so the client is never borrowed across a suspend. Other
// components only read it for rendering or replace it wholesale on a new
// provider selection.
type ClientSlot struct {
	mu     sync.Mutex
	client contracts.IDetectionProvider
}

func NewClientSlot() *ClientSlot {
	return &ClientSlot{}
}

// Set replaces the stored client wholesale.
func (s *ClientSlot) Set(client contracts.IDetectionProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

// Take removes the client from the slot, giving the caller exclusive
// ownership. Returns false if the slot is empty.
func (s *ClientSlot) Take() (contracts.IDetectionProvider, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	client := s.client
	s.client = nil
	return client, client != nil
}

// Replace puts a previously taken client back into the slot.
func (s *ClientSlot) Replace(client contracts.IDetectionProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

// Current reads the stored client without taking it.
func (s *ClientSlot) Current() contracts.IDetectionProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Task pairs an imported file with its status cell. The same task value sits
// in the append-only results ledger and, while work is outstanding, in the
// FIFO queue.
type Task struct {
	Path   string
	File   *code_group.CodeFile
	Status *StatusCell
}

// Scheduler is the single-flight polling loop feeding imported files through
// the provider classification call. It is the sole consumer of the task queue
// and the only writer of Flying and terminal status transitions.
type Scheduler struct {
	mu       sync.Mutex
	queue    []*Task
	ledger   []*Task
	finished int
	complete bool

	group        *code_group.CodeGroup
	slot         *ClientSlot
	stage        *StageCell
	pollInterval time.Duration
}

// NewScheduler creates a scheduler draining into the given client slot. The
// polling interval is the session-wide pacing against the provider, not a
// per-request knob.
func NewScheduler(group *code_group.CodeGroup, slot *ClientSlot, stage *StageCell, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		group:        group,
		slot:         slot,
		stage:        stage,
		pollInterval: pollInterval,
	}
}

// Register adds a file to the results ledger and queues it for analysis with
// a fresh Pending status. Each file is registered exactly once per session.
func (s *Scheduler) Register(path string, file *code_group.CodeFile) *Task {
	task := &Task{Path: path, File: file, Status: NewStatusCell()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = append(s.ledger, task)
	s.queue = append(s.queue, task)
	return task
}

// Tasks returns a snapshot of the results ledger in registration order.
func (s *Scheduler) Tasks() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]*Task, len(s.ledger))
	copy(tasks, s.ledger)
	return tasks
}

// FinishedCount returns how many files have reached a terminal status in the
// current wave.
func (s *Scheduler) FinishedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// TotalCount returns the number of registered files.
func (s *Scheduler) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger)
}

// DetectionComplete reports whether every registered file has reached a
// terminal status.
func (s *Scheduler) DetectionComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Retry re-queues every file currently in Failure, resetting it to Pending,
// and clears the completion flag. Returns the number of files re-queued;
// zero means there was nothing to retry and state is unchanged.
func (s *Scheduler) Retry() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	requeued := 0
	for _, task := range s.ledger {
		if task.Status.resetForRetry() {
			s.queue = append(s.queue, task)
			requeued++
		}
	}
	if requeued > 0 {
		s.finished -= requeued
		s.complete = false
	}
	return requeued
}

// Reset clears the queue, the ledger, and all completion state, for when the
// user steps back in the workflow. A call already in flight runs to
// completion against its detached task and is discarded.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	s.ledger = nil
	s.finished = 0
	s.complete = false
}

// pop atomically removes and returns the head of the queue.
func (s *Scheduler) pop() (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	task := s.queue[0]
	s.queue = s.queue[1:]
	return task, true
}

// Run is the scheduler loop. It has no termination condition of its own and
// runs until the context is cancelled. Each iteration sleeps the polling
// interval, pops at most one task, and processes it with the shared client
// taken out of its slot for the duration of the calls.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		task, ok := s.pop()
		if !ok {
			continue
		}
		s.processTask(ctx, task)
	}
}

// processTask runs one file through content fetch and the classification
// call, recording the terminal status.
func (s *Scheduler) processTask(ctx context.Context, task *Task) {
	task.Status.markFlying()

	client, ok := s.slot.Take()
	if !ok {
		task.Status.fail("no provider client available")
		s.recordFinished(task)
		return
	}

	content, err := s.group.FetchContent(ctx, task.File)
	if err != nil {
		// content fetch failed, skip the classification call
		task.Status.fail(err.Error())
	} else {
		result, err := client.DetectAICode(ctx, content)
		if err != nil {
			task.Status.fail(err.Error())
		} else {
			task.Status.succeed(result.Likelihood, result.Reasoning)
		}
	}

	// restore the client only if the workflow has not been rolled back past
	// the point where a client is required
	if s.stage.Current() >= StageApiProvided {
		s.slot.Replace(client)
	}

	s.recordFinished(task)
}

// recordFinished bumps the finished count if the workflow is still in the
// file-processing phase, flipping the completion flag once every registered
// file has a terminal status.
func (s *Scheduler) recordFinished(task *Task) {
	if s.stage.Current() < StageCodeImported {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// the task may have been detached by a reset while its call was in flight
	tracked := false
	for _, t := range s.ledger {
		if t == task {
			tracked = true
			break
		}
	}
	if !tracked {
		return
	}

	s.finished++
	if s.finished >= len(s.ledger) {
		s.complete = true
	}
}
