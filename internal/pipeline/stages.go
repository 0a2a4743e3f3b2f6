package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/lacquerai/abgroup/internal/execcontext"
	"github.com/lacquerai/abgroup/internal/loader"
	"github.com/lacquerai/abgroup/internal/report"
	"github.com/lacquerai/abgroup/internal/tally"
)

// Stage names, in execution order.
const (
	StageLoad   = "load"
	StageGroup  = "group"
	StageSelect = "select"
	StageWrite  = "write"
)

// State is the data handed from one stage to the next.
type State struct {
	Rows    []loader.Row
	Groups  *tally.Groups
	Tally   *tally.Tally
	Records []report.OutputRecord
}

// StageFunc runs one stage. It returns a short description of what it did
// and counts to attach to the completion event.
type StageFunc func(execCtx *execcontext.ExecutionContext, state *State) (string, map[string]interface{}, error)

// Stage is a named step of the pipeline.
type Stage struct {
	Name string
	// Text is shown while the stage runs.
	Text string
	Run  StageFunc
}

// DefaultStages returns the load, group, select and write stages. The
// write stage is left out for dry runs.
func DefaultStages(dryRun bool) []Stage {
	stages := []Stage{
		{Name: StageLoad, Text: "Reading input file", Run: loadStage},
		{Name: StageGroup, Text: "Grouping data by column A", Run: groupStage},
		{Name: StageSelect, Text: "Picking the most frequent column B per group", Run: selectStage},
	}

	if !dryRun {
		stages = append(stages, Stage{Name: StageWrite, Text: "Writing output file", Run: writeStage})
	}

	return stages
}

func loadStage(execCtx *execcontext.ExecutionContext, state *State) (string, map[string]interface{}, error) {
	rows, err := loader.Load(execCtx.InputFile)
	if err != nil {
		return "", nil, err
	}

	state.Rows = rows
	return fmt.Sprintf("Read %d rows from %s", len(rows), filepath.Base(execCtx.InputFile)),
		map[string]interface{}{"rows": len(rows)}, nil
}

func groupStage(_ *execcontext.ExecutionContext, state *State) (string, map[string]interface{}, error) {
	state.Groups = tally.Group(state.Rows)

	return fmt.Sprintf("Grouped rows into %d groups", state.Groups.Len()),
		map[string]interface{}{"groups": state.Groups.Len()}, nil
}

func selectStage(_ *execcontext.ExecutionContext, state *State) (string, map[string]interface{}, error) {
	state.Tally = tally.Select(state.Groups)
	state.Records = report.Records(state.Tally)

	return fmt.Sprintf("Picked the most frequent value for %d groups", len(state.Records)),
		map[string]interface{}{"records": len(state.Records)}, nil
}

func writeStage(execCtx *execcontext.ExecutionContext, state *State) (string, map[string]interface{}, error) {
	if err := report.WriteFile(execCtx.OutputFile, state.Records); err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("Wrote %d records to %s", len(state.Records), filepath.Base(execCtx.OutputFile)),
		map[string]interface{}{"records": len(state.Records)}, nil
}
