// Package pipeline runs the load, group, select and write stages in order
// and reports their progress as events.
package pipeline

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lacquerai/abgroup/internal/execcontext"
	"github.com/lacquerai/abgroup/internal/report"
	pkgEvents "github.com/lacquerai/abgroup/pkg/events"
)

// Options configures a single run.
type Options struct {
	InputFile  string
	OutputFile string
	DryRun     bool
}

// ExecutionResult contains the outcome of a run.
type ExecutionResult struct {
	RunID      string                    `json:"run_id" yaml:"run_id"`
	InputFile  string                    `json:"input_file" yaml:"input_file"`
	OutputFile string                    `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	DryRun     bool                      `json:"dry_run" yaml:"dry_run"`
	Status     string                    `json:"status" yaml:"status"`
	StartTime  time.Time                 `json:"start_time" yaml:"start_time"`
	EndTime    time.Time                 `json:"end_time" yaml:"end_time"`
	Duration   time.Duration             `json:"duration" yaml:"duration"`
	Rows       int                       `json:"rows" yaml:"rows"`
	Groups     int                       `json:"groups" yaml:"groups"`
	Records    []report.OutputRecord     `json:"records" yaml:"records"`
	Stages     []execcontext.StageResult `json:"stages" yaml:"stages"`
	Error      string                    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Runner executes the pipeline stages while sending progress events to a listener.
type Runner struct {
	progressListener pkgEvents.Listener
	metrics          *Metrics
	stages           func(dryRun bool) []Stage
}

// RunnerOption is a function that can be used to configure a Runner.
type RunnerOption func(*Runner)

// WithMetrics records run and stage metrics into m.
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithStages replaces the stage list. In general this is only used for testing.
func WithStages(stages func(dryRun bool) []Stage) RunnerOption {
	return func(r *Runner) {
		r.stages = stages
	}
}

// NewRunner creates a runner reporting to progressListener. A nil listener
// disables progress reporting.
func NewRunner(progressListener pkgEvents.Listener, options ...RunnerOption) *Runner {
	r := &Runner{
		progressListener: progressListener,
		stages:           DefaultStages,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Run executes every stage in order and stops at the first failure. The
// returned result is populated on failure too; the error is the stage's own
// error, unwrapped, so callers can classify it.
func (r *Runner) Run(ctx execcontext.RunContext, opts Options) (*ExecutionResult, error) {
	stages := r.stages(opts.DryRun)

	names := make([]string, len(stages))
	for i, stage := range stages {
		names[i] = stage.Name
	}

	execCtx := execcontext.NewExecutionContext(ctx, opts.InputFile, opts.OutputFile, names)

	result := &ExecutionResult{
		RunID:     execCtx.RunID,
		InputFile: opts.InputFile,
		DryRun:    opts.DryRun,
		Status:    "running",
		StartTime: execCtx.StartTime,
	}
	if !opts.DryRun {
		result.OutputFile = opts.OutputFile
	}

	state := &State{}
	err := r.executeWithProgress(execCtx, stages, state)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.Stages = execCtx.StageResults()
	result.Rows = len(state.Rows)
	if state.Groups != nil {
		result.Groups = state.Groups.Len()
	}
	result.Records = state.Records
	if result.Records == nil {
		result.Records = []report.OutputRecord{}
	}

	if err != nil {
		result.Status = "failed"
		result.Error = err.Error()
		r.metrics.observeRun(result)

		log.Error().
			Err(err).
			Str("run_id", execCtx.RunID).
			Dur("duration", result.Duration).
			Msg("Run failed")

		return result, err
	}

	result.Status = "completed"
	r.metrics.observeRun(result)

	log.Info().
		Str("run_id", execCtx.RunID).
		Int("rows", result.Rows).
		Int("groups", result.Groups).
		Dur("duration", result.Duration).
		Msg("Run completed successfully")

	return result, nil
}

// executeWithProgress runs the stages while a listener consumes their events.
// It returns once the listener has drained every event.
func (r *Runner) executeWithProgress(execCtx *execcontext.ExecutionContext, stages []Stage, state *State) error {
	progressChan := make(chan pkgEvents.ExecutionEvent, 4*len(stages)+4)

	var wg sync.WaitGroup
	if r.progressListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.progressListener.StartListening(progressChan)
		}()
	}

	err := r.execute(execCtx, stages, state, progressChan)
	close(progressChan)
	wg.Wait()

	if r.progressListener != nil {
		r.progressListener.StopListening()
	}

	return err
}

func (r *Runner) execute(execCtx *execcontext.ExecutionContext, stages []Stage, state *State, progressChan chan<- pkgEvents.ExecutionEvent) error {
	progressChan <- pkgEvents.ExecutionEvent{
		Type:       pkgEvents.EventPipelineStarted,
		Timestamp:  time.Now(),
		RunID:      execCtx.RunID,
		StageTotal: len(stages),
	}

	for i, stage := range stages {
		if execCtx.IsCancelled() {
			err := execCtx.Context.Context.Err()
			r.failRun(execCtx, progressChan, err)
			return err
		}

		if err := r.runStage(execCtx, stage, i+1, len(stages), state, progressChan); err != nil {
			for _, rest := range stages[i+1:] {
				execCtx.SetStageResult(&execcontext.StageResult{
					Stage:  rest.Name,
					Status: execcontext.StageStatusSkipped,
				})
			}

			r.failRun(execCtx, progressChan, err)
			return err
		}
	}

	progressChan <- pkgEvents.ExecutionEvent{
		Type:      pkgEvents.EventPipelineCompleted,
		Timestamp: time.Now(),
		RunID:     execCtx.RunID,
		Duration:  time.Since(execCtx.StartTime),
	}

	return nil
}

func (r *Runner) runStage(execCtx *execcontext.ExecutionContext, stage Stage, index, total int, state *State, progressChan chan<- pkgEvents.ExecutionEvent) error {
	start := time.Now()
	execCtx.SetStageResult(&execcontext.StageResult{
		Stage:     stage.Name,
		Status:    execcontext.StageStatusRunning,
		StartTime: start,
	})

	progressChan <- pkgEvents.ExecutionEvent{
		Type:       pkgEvents.EventStageStarted,
		Timestamp:  start,
		RunID:      execCtx.RunID,
		Stage:      stage.Name,
		StageIndex: index,
		StageTotal: total,
		Text:       stage.Text,
	}

	execCtx.Logger.Debug().Str("stage", stage.Name).Msg(stage.Text)

	text, metadata, err := stage.Run(execCtx, state)
	end := time.Now()
	duration := end.Sub(start)

	stageResult := &execcontext.StageResult{
		Stage:     stage.Name,
		Status:    execcontext.StageStatusCompleted,
		StartTime: start,
		EndTime:   end,
		Duration:  duration,
	}

	event := pkgEvents.ExecutionEvent{
		Type:       pkgEvents.EventStageCompleted,
		Timestamp:  end,
		RunID:      execCtx.RunID,
		Stage:      stage.Name,
		StageIndex: index,
		StageTotal: total,
		Text:       text,
		Duration:   duration,
		Metadata:   metadata,
	}

	if err != nil {
		stageResult.Status = execcontext.StageStatusFailed
		stageResult.Error = err.Error()
		event.Type = pkgEvents.EventStageFailed
		event.Text = stage.Text
		event.Error = err.Error()
	}

	execCtx.SetStageResult(stageResult)
	r.metrics.observeStage(stage.Name, duration, metadata)
	progressChan <- event

	return err
}

func (r *Runner) failRun(execCtx *execcontext.ExecutionContext, progressChan chan<- pkgEvents.ExecutionEvent, err error) {
	progressChan <- pkgEvents.ExecutionEvent{
		Type:      pkgEvents.EventPipelineFailed,
		Timestamp: time.Now(),
		RunID:     execCtx.RunID,
		Duration:  time.Since(execCtx.StartTime),
		Error:     err.Error(),
	}
}
