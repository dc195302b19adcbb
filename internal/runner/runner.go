package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/worker"
)

// UnitRunner executes one (edit, judge model) unit. Satisfied by
// judge.Judge.
type UnitRunner interface {
	RunVerdict(ctx context.Context, judgeModel string, edit *model.Edit, cancel *worker.CancelFlag) (*model.VerdictRecord, error)
}

// Options configure one fan-out run
type Options struct {
	Models      []string
	UnitTimeout time.Duration
	VerdictDir  string
	Checkpoint  string
}

// Stats summarize a finished run
type Stats struct {
	Completed int
	Skipped   int
	Timeouts  int
	Errors    int
}

// Runner drives the edit × model fan-out sequentially
type Runner struct {
	units UnitRunner
	out   io.Writer
}

// NewRunner wires a runner over a unit executor. Progress goes to out,
// or stdout when nil.
func NewRunner(units UnitRunner, out io.Writer) *Runner {
	if out == nil {
		out = os.Stdout
	}
	return &Runner{units: units, out: out}
}

type unitJob struct {
	units      UnitRunner
	judgeModel string
	edit       *model.Edit
}

type unitResult struct {
	record *model.VerdictRecord
	err    error
}

func (r *unitResult) GetError() error { return r.err }

func (u *unitJob) Execute(ctx context.Context, cancel *worker.CancelFlag) worker.Result {
	record, err := u.units.RunVerdict(ctx, u.judgeModel, u.edit, cancel)
	return &unitResult{record: record, err: err}
}

// Run processes every edit against every configured model, skipping
// units the checkpoint already holds. Each unit gets its own wall
// clock budget; a unit that exceeds it is recorded as a timeout and
// its worker is abandoned to wind down on its own. Unit failures are
// counted and the run continues; checkpoint or verdict write failures
// stop it.
func (r *Runner) Run(ctx context.Context, edits []*model.Edit, opts Options) (*Stats, error) {
	cp, err := LoadCheckpoint(opts.Checkpoint)
	if err != nil {
		return nil, err
	}

	type unit struct {
		edit       *model.Edit
		judgeModel string
	}
	var units []unit
	for _, e := range edits {
		for _, m := range opts.Models {
			units = append(units, unit{edit: e, judgeModel: m})
		}
	}

	stats := &Stats{}
	for i, u := range units {
		if cp.Done(u.edit.RCID, u.judgeModel) {
			stats.Skipped++
			continue
		}

		fmt.Fprintf(r.out, "[%d/%d] %s %s... ", i+1, len(units), u.edit.Title, ModelSlug(u.judgeModel))

		job := &unitJob{units: r.units, judgeModel: u.judgeModel, edit: u.edit}
		res, timedOut := worker.RunWithTimeout(ctx, job, opts.UnitTimeout)

		var record *model.VerdictRecord
		switch {
		case timedOut:
			record = timeoutRecord(u.judgeModel, u.edit)
			fmt.Fprintln(r.out, "TIMEOUT")
			stats.Timeouts++

		case res.GetError() != nil:
			fmt.Fprintf(r.out, "ERROR: %v\n", res.GetError())
			stats.Errors++

		default:
			record = res.(*unitResult).record
			if record.Verdict != nil {
				fmt.Fprintln(r.out, *record.Verdict)
			} else {
				fmt.Fprintln(r.out, "no verdict")
			}
			stats.Completed++
		}

		if record != nil {
			if _, err := SaveVerdict(opts.VerdictDir, record); err != nil {
				return stats, err
			}
		}

		// Errored units are checkpointed too: a unit that failed once
		// should not burn budget again on resume.
		if err := cp.Record(u.edit.RCID, u.judgeModel); err != nil {
			return stats, err
		}
	}

	fmt.Fprintf(r.out, "\nDone. completed=%d, skipped=%d, timeout=%d, errors=%d\n",
		stats.Completed, stats.Skipped, stats.Timeouts, stats.Errors)
	return stats, nil
}

// timeoutRecord is persisted for a unit whose worker was abandoned
func timeoutRecord(judgeModel string, edit *model.Edit) *model.VerdictRecord {
	return &model.VerdictRecord{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Model:     judgeModel,
		RCID:      edit.RCID,
		RevID:     edit.RevID,
		Title:     edit.Title,
		Timeout:   true,
		Sources:   []model.Source{},
	}
}
