package submission

import (
	"context"
	"errors"
	"log/slog"
	"time"

	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
	"git.home.luguber.info/inful/texsubmit/internal/metrics"
)

// StageName identifies a pipeline stage in logs and metrics.
type StageName string

const (
	StageCopyTree            StageName = "copy_tree"
	StageRemoveAuxiliary     StageName = "remove_auxiliary"
	StageLoadLibrary         StageName = "load_library"
	StageStagePackages       StageName = "stage_packages"
	StageStageBibliographies StageName = "stage_bibliographies"
	StageCompile             StageName = "compile"
	StageScan                StageName = "scan"
	StageArchive             StageName = "archive"
)

// Stage is one step of a run operating on the shared run state.
type Stage func(ctx context.Context, rs *runState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// runStages executes stages in order, recording timing and stopping on the
// first error.
func runStages(ctx context.Context, rs *runState, recorder metrics.Recorder, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return err
		}

		slog.Debug("Stage started", logfields.Stage(string(st.Name)))
		t0 := time.Now()
		err := st.Fn(ctx, rs)
		dur := time.Since(t0)
		recorder.ObserveStageDuration(string(st.Name), dur)

		result := stageResult(err)
		recorder.IncStageResult(string(st.Name), result)
		slog.Debug("Stage finished",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Microseconds())/1000),
			slog.String("result", string(result)))
		if err != nil {
			return err
		}
	}
	return nil
}

func stageResult(err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	case serrors.IsCategory(err, serrors.CategoryAborted):
		return metrics.ResultWarning
	default:
		return metrics.ResultFatal
	}
}

// outcomeFor maps the final run error to a run outcome label.
func outcomeFor(err error, warned bool) metrics.RunOutcome {
	switch {
	case err == nil && warned:
		return metrics.OutcomeWarning
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	case serrors.IsCategory(err, serrors.CategoryAborted):
		return metrics.OutcomeAborted
	default:
		return metrics.OutcomeFailed
	}
}
