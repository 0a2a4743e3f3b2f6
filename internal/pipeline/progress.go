package pipeline

import (
	"fmt"
	"io"
	"sync"

	"github.com/lacquerai/abgroup/internal/style"
	pkgEvents "github.com/lacquerai/abgroup/pkg/events"
)

// StageProgressState is the display state of one stage.
type StageProgressState struct {
	stageIndex int
	totalStage int
	status     string // "running", "completed", "failed"
	spinner    style.Spinner
}

// title renders the "(index/total) text" line of a stage.
func (s *StageProgressState) title(text string) string {
	counter := style.MutedStyle.Render(fmt.Sprintf("(%d/%d)", s.stageIndex, s.totalStage))
	return fmt.Sprintf(" %s %s", text, counter)
}

// CLIProgressTracker shows a spinner per stage and replaces it with a
// success or failure line once the stage finishes.
type CLIProgressTracker struct {
	stages     map[string]*StageProgressState
	mu         sync.RWMutex
	writer     io.Writer
	newSpinner func(io.Writer) style.Spinner
	done       bool
}

// NewProgressTracker creates a progress tracker writing to writer.
func NewProgressTracker(writer io.Writer) *CLIProgressTracker {
	return &CLIProgressTracker{
		stages:     make(map[string]*StageProgressState),
		writer:     writer,
		newSpinner: style.NewSpinner,
	}
}

// StartListening processes events until progressChan is closed.
func (pt *CLIProgressTracker) StartListening(progressChan <-chan pkgEvents.ExecutionEvent) {
	pt.mu.Lock()
	pt.done = false
	pt.mu.Unlock()

	for event := range progressChan {
		switch event.Type {
		case pkgEvents.EventStageStarted:
			pt.startStage(event.Stage, event.StageIndex, event.StageTotal, event.Text)
		case pkgEvents.EventStageCompleted:
			pt.completeStage(event.Stage, event.Text)
		case pkgEvents.EventStageFailed:
			pt.failStage(event.Stage, event.Text)
		}
	}
}

// StopListening stops any spinner still running.
func (pt *CLIProgressTracker) StopListening() {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for _, state := range pt.stages {
		if state.status == "running" {
			state.spinner.Stop()
		}
	}

	pt.done = true
}

// HasCompleted checks if the progress tracker has completed.
func (pt *CLIProgressTracker) HasCompleted() bool {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	return pt.done
}

func (pt *CLIProgressTracker) startStage(stage string, index, total int, text string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	state := &StageProgressState{
		stageIndex: index,
		totalStage: total,
		status:     "running",
		spinner:    pt.newSpinner(pt.writer),
	}
	pt.stages[stage] = state

	state.spinner.SetSuffix(state.title(text))
	state.spinner.Start()
}

func (pt *CLIProgressTracker) completeStage(stage string, text string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if state, exists := pt.stages[stage]; exists {
		state.status = "completed"
		state.spinner.SetFinalMSG(style.SuccessIcon() + state.title(text) + "\n")
		state.spinner.Stop()
	}
}

func (pt *CLIProgressTracker) failStage(stage string, text string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if state, exists := pt.stages[stage]; exists {
		state.status = "failed"
		state.spinner.SetFinalMSG(style.ErrorIcon() + state.title(text) + "\n")
		state.spinner.Stop()
	}
}
