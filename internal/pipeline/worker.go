package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docsite/internal/apidocs"
	"github.com/dgallion1/docsite/internal/titlecheck"
)

// APIGenerator produces the API reference pages.
type APIGenerator interface {
	Generate(ctx context.Context) (*apidocs.Result, error)
}

// TitleChecker validates navigation titles.
type TitleChecker interface {
	Check(ctx context.Context) (*titlecheck.Report, error)
}

// Worker processes hook jobs one at a time.
type Worker struct {
	generator APIGenerator
	checker   TitleChecker
	log       *slog.Logger
}

func NewWorker(gen APIGenerator, checker TitleChecker, log *slog.Logger) *Worker {
	return &Worker{generator: gen, checker: checker, log: log}
}

// Process runs a job to a terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind)

	switch job.Kind {
	case KindGenerateAPI:
		w.generate(ctx, job, log)
	case KindCheckTitles:
		w.checkTitles(ctx, job, log)
	default:
		job.AddError(fmt.Sprintf("unknown job kind %q", job.Kind))
		job.SetStatus(StatusFailed, "dispatch")
	}
}

func (w *Worker) generate(ctx context.Context, job *Job, log *slog.Logger) {
	job.SetStatus(StatusRunning, "generating")
	res, err := w.generator.Generate(ctx)
	switch {
	case errors.Is(err, apidocs.ErrAcquire):
		// Not a build failure: the site keeps the pages it already has.
		log.Error("failed to clone repository", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusSkipped, "acquire")
	case err != nil:
		log.Error("api generation failed", "error", err)
		job.AddError(err.Error())
		if res != nil {
			job.SetResult(res)
		}
		job.SetStatus(StatusFailed, "generating")
	default:
		log.Info("api generation complete", "modules", res.Modules, "files", len(res.Files))
		job.SetResult(res)
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) checkTitles(ctx context.Context, job *Job, log *slog.Logger) {
	job.SetStatus(StatusRunning, "checking")
	report, err := w.checker.Check(ctx)
	if err != nil {
		log.Error("title check aborted", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "checking")
		return
	}

	job.SetResult(report)
	if verr := report.Err(); verr != nil {
		log.Warn("title check found violations", "error", verr)
		job.AddError(verr.Error())
		job.SetStatus(StatusFailed, "violations")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}
