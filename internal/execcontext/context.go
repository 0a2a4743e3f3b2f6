package execcontext

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RunContext carries the cancellation context and the output streams of a
// single command invocation.
type RunContext struct {
	Context context.Context
	StdOut  io.Writer
	StdErr  io.Writer
}

// Write sends p to the standard output stream.
func (rc RunContext) Write(p []byte) (n int, err error) {
	return rc.StdOut.Write(p)
}

// StageStatus represents the execution status of a pipeline stage
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
)

// StageResult records the outcome of one stage.
type StageResult struct {
	Stage     string        `json:"stage" yaml:"stage"`
	Status    StageStatus   `json:"status" yaml:"status"`
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// ExecutionContext holds the state of one pipeline run.
type ExecutionContext struct {
	RunID      string
	StartTime  time.Time
	InputFile  string
	OutputFile string

	Context RunContext
	Logger  zerolog.Logger

	mu      sync.RWMutex
	stages  []string
	results map[string]*StageResult
}

// NewExecutionContext creates the context for a run over the given stages.
func NewExecutionContext(ctx RunContext, inputFile, outputFile string, stages []string) *ExecutionContext {
	runID := GenerateRunID()

	logger := zerolog.Ctx(ctx.Context).With().
		Str("run_id", runID).
		Str("input", inputFile).
		Logger()

	ec := &ExecutionContext{
		RunID:      runID,
		StartTime:  time.Now(),
		InputFile:  inputFile,
		OutputFile: outputFile,
		Context:    ctx,
		Logger:     logger,
		stages:     stages,
		results:    make(map[string]*StageResult, len(stages)),
	}

	for _, stage := range stages {
		ec.results[stage] = &StageResult{
			Stage:  stage,
			Status: StageStatusPending,
		}
	}

	return ec
}

// SetStageResult updates the result for a stage
func (ec *ExecutionContext) SetStageResult(result *StageResult) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.results[result.Stage] = result

	ec.Logger.Debug().
		Str("stage", result.Stage).
		Str("status", string(result.Status)).
		Dur("duration", result.Duration).
		Msg("Stage result updated")
}

// StageResults returns a copy of every stage result in pipeline order.
func (ec *ExecutionContext) StageResults() []StageResult {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	out := make([]StageResult, 0, len(ec.stages))
	for _, stage := range ec.stages {
		if result, ok := ec.results[stage]; ok {
			out = append(out, *result)
		}
	}

	return out
}

// IsCancelled returns true if the run has been cancelled
func (ec *ExecutionContext) IsCancelled() bool {
	select {
	case <-ec.Context.Context.Done():
		return true
	default:
		return false
	}
}

// GenerateRunID returns an identifier of the form run_<unix seconds>_<8 hex chars>.
func GenerateRunID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("run_%d", time.Now().UnixNano())
	}

	return fmt.Sprintf("run_%d_%s", time.Now().Unix(), hex.EncodeToString(b))
}
