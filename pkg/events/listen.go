// Package events provides types for tracking the progress of a tally run.
// A run emits one event when it starts, one per stage transition and one
// when it finishes, so callers can render progress or collect timings.
package events

import (
	"time"
)

// ExecutionEventType represents the type of event that occurred during a run.
type ExecutionEventType string

const (
	// EventPipelineStarted is emitted before the first stage runs.
	EventPipelineStarted ExecutionEventType = "pipeline_started"

	// EventPipelineCompleted is emitted after the last stage succeeds.
	EventPipelineCompleted ExecutionEventType = "pipeline_completed"

	// EventPipelineFailed is emitted when a stage fails and the run stops.
	EventPipelineFailed ExecutionEventType = "pipeline_failed"

	// EventStageStarted is emitted when a stage begins.
	EventStageStarted ExecutionEventType = "stage_started"

	// EventStageCompleted is emitted when a stage succeeds.
	EventStageCompleted ExecutionEventType = "stage_completed"

	// EventStageFailed is emitted when a stage returns an error.
	EventStageFailed ExecutionEventType = "stage_failed"
)

// ExecutionEvent represents a single event that occurred during a run.
type ExecutionEvent struct {
	// Type specifies the kind of event.
	Type ExecutionEventType `json:"type"`
	// Timestamp indicates when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// RunID identifies the run.
	RunID string `json:"run_id"`
	// Stage is the name of the stage the event belongs to (stage events only).
	Stage string `json:"stage,omitempty"`
	// StageIndex is the 1-based position of the stage in the pipeline.
	StageIndex int `json:"stage_index,omitempty"`
	// StageTotal is the number of stages in the pipeline.
	StageTotal int `json:"stage_total,omitempty"`
	// Text is the human readable description of the stage.
	Text string `json:"text,omitempty"`
	// Duration is how long the stage or run took (completion and failure events).
	Duration time.Duration `json:"duration,omitempty"`
	// Error contains the error message for failure events.
	Error string `json:"error,omitempty"`
	// Metadata holds stage specific counts such as rows or groups.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Listener receives the events of a run.
type Listener interface {
	// StartListening consumes events until progressChan is closed.
	StartListening(progressChan <-chan ExecutionEvent)

	// StopListening signals that the run has finished.
	StopListening()
}

// NoopListener drains nothing and renders nothing.
type NoopListener struct{}

// StartListening implements the Listener interface.
func (n *NoopListener) StartListening(progressChan <-chan ExecutionEvent) {}

// StopListening implements the Listener interface.
func (n *NoopListener) StopListening() {}
