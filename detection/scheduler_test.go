package detection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josehu07/codetective/code_group"
	"github.com/josehu07/codetective/providers/models"
)

// stubProvider is a classification client with scripted outcomes.
type stubProvider struct {
	likelihood uint8
	reasoning  string
	err        error
	calls      int
}

func (p *stubProvider) Name() string                             { return "stub" }
func (p *stubProvider) ValidateApiKey(ctx context.Context) error { return nil }
func (p *stubProvider) DetectAICode(ctx context.Context, code string) (*models.DetectResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &models.DetectResult{Likelihood: p.likelihood, Reasoning: p.reasoning}, nil
}

// newTestSession wires a scheduler over local files with the stage already at
// the file-processing phase.
func newTestSession(t *testing.T, provider *stubProvider, numFiles int) (*Scheduler, *StageCell, *ClientSlot) {
	t.Helper()

	group := code_group.NewCodeGroup()
	stage := NewStageCell()
	require.True(t, stage.Advance()) // provider selected
	require.True(t, stage.Advance()) // code imported

	slot := NewClientSlot()
	slot.Set(provider)

	scheduler := NewScheduler(group, slot, stage, time.Millisecond)
	for i := 0; i < numFiles; i++ {
		scheduler.Register(
			fmt.Sprintf("file_%d.go", i),
			code_group.NewLocalFile(".go", "package main\n"))
	}
	return scheduler, stage, slot
}

// Test three queued files and an always-succeeding stub end up all Success
// with the completion flag set
func TestScheduler_Liveness(t *testing.T) {
	provider := &stubProvider{likelihood: 42, reasoning: "rationale"}
	scheduler, _, _ := newTestSession(t, provider, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Run(ctx)

	require.Eventually(t, scheduler.DetectionComplete, 2*time.Second, 5*time.Millisecond)

	tasks := scheduler.Tasks()
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		kind, likelihood, reasoning, _ := task.Status.Snapshot()
		assert.Equal(t, StatusSuccess, kind)
		assert.Equal(t, uint8(42), likelihood)
		assert.Equal(t, "rationale", reasoning)
	}
	assert.Equal(t, 3, scheduler.FinishedCount())
	assert.Equal(t, 3, provider.calls)
}

// Test likelihood values above 100 are clamped down to 100
func TestScheduler_ScoreClamping(t *testing.T) {
	provider := &stubProvider{likelihood: 137}
	scheduler, _, _ := newTestSession(t, provider, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Run(ctx)

	require.Eventually(t, scheduler.DetectionComplete, 2*time.Second, 5*time.Millisecond)

	_, likelihood, _, _ := scheduler.Tasks()[0].Status.Snapshot()
	assert.Equal(t, uint8(100), likelihood)
}

// Test failed calls are recorded as Failure without stalling the loop
func TestScheduler_CallFailureRecorded(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("Status error: boom")}
	scheduler, _, _ := newTestSession(t, provider, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Run(ctx)

	require.Eventually(t, scheduler.DetectionComplete, 2*time.Second, 5*time.Millisecond)

	for _, task := range scheduler.Tasks() {
		kind, _, _, message := task.Status.Snapshot()
		assert.Equal(t, StatusFailure, kind)
		assert.Contains(t, message, "boom")
	}
}

// Test retry re-queues exactly the failed files and clears the completion
// flag; a second retry with zero failures is a distinct no-op
func TestScheduler_RetrySemantics(t *testing.T) {
	provider := &stubProvider{likelihood: 10}
	scheduler, _, _ := newTestSession(t, provider, 3)

	tasks := scheduler.Tasks()

	// simulate a finished wave: two failures, one success
	for _, task := range tasks {
		task.Status.markFlying()
	}
	tasks[0].Status.fail("network down")
	tasks[1].Status.fail("network down")
	tasks[2].Status.succeed(10, "ok")
	scheduler.mu.Lock()
	scheduler.finished = 3
	scheduler.complete = true
	scheduler.queue = nil
	scheduler.mu.Unlock()

	requeued := scheduler.Retry()
	assert.Equal(t, 2, requeued)
	assert.False(t, scheduler.DetectionComplete())
	assert.Equal(t, 1, scheduler.FinishedCount())
	assert.Equal(t, StatusPending, tasks[0].Status.Kind())
	assert.Equal(t, StatusPending, tasks[1].Status.Kind())
	assert.Equal(t, StatusSuccess, tasks[2].Status.Kind())

	// nothing in Failure now, retry is a no-op
	scheduler.mu.Lock()
	scheduler.queue = nil
	scheduler.mu.Unlock()
	tasks[0].Status.succeed(10, "ok")
	tasks[1].Status.succeed(10, "ok")
	scheduler.mu.Lock()
	scheduler.finished = 3
	scheduler.complete = true
	scheduler.mu.Unlock()

	assert.Equal(t, 0, scheduler.Retry())
	assert.True(t, scheduler.DetectionComplete())
	assert.Equal(t, 3, scheduler.FinishedCount())
}

// Test the client handle is restored after a call while the stage still
// requires one, and dropped once the workflow rolled back past that point
func TestScheduler_ClientSlotDiscipline(t *testing.T) {
	provider := &stubProvider{likelihood: 5}
	scheduler, stage, slot := newTestSession(t, provider, 2)

	task, ok := scheduler.pop()
	require.True(t, ok)
	scheduler.processTask(context.Background(), task)
	assert.NotNil(t, slot.Current(), "client restored while stage needs one")

	// roll all the way back to before provider selection
	require.True(t, stage.RollBack())
	require.True(t, stage.RollBack())

	task, ok = scheduler.pop()
	require.True(t, ok)
	scheduler.processTask(context.Background(), task)
	assert.Nil(t, slot.Current(), "client dropped after rollback")
}

// Test a task detached by a reset does not count toward a later wave
func TestScheduler_ResetDetachesInFlightTask(t *testing.T) {
	provider := &stubProvider{likelihood: 5}
	scheduler, _, _ := newTestSession(t, provider, 1)

	task, ok := scheduler.pop()
	require.True(t, ok)

	scheduler.Reset()
	scheduler.processTask(context.Background(), task)

	assert.Equal(t, 0, scheduler.FinishedCount())
	assert.False(t, scheduler.DetectionComplete())
	assert.Empty(t, scheduler.Tasks())
}

// Test the stage cell only moves one step at a time and bottoms out
func TestStageCell_Transitions(t *testing.T) {
	stage := NewStageCell()
	assert.Equal(t, StageInitial, stage.Current())
	assert.False(t, stage.RollBack())

	assert.True(t, stage.Advance())
	assert.True(t, stage.Advance())
	assert.True(t, stage.Advance())
	assert.Equal(t, StageDetectionDone, stage.Current())
	assert.False(t, stage.Advance())

	assert.True(t, stage.RollBack())
	assert.Equal(t, StageCodeImported, stage.Current())
}

// Test a status cell refuses retry-reset unless it is in Failure
func TestStatusCell_ResetForRetry(t *testing.T) {
	cell := NewStatusCell()
	assert.False(t, cell.resetForRetry())

	cell.markFlying()
	assert.False(t, cell.resetForRetry())

	cell.fail("oops")
	assert.True(t, cell.resetForRetry())
	assert.Equal(t, StatusPending, cell.Kind())
}
