package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bookclubapp/bookclub-server/internal/config"
	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/ingest"
)

// Result carries everything one pipeline run produced, from the cleaned
// source records up to the merged reports.
type Result struct {
	Run       domain.PipelineRun
	Roster    *domain.Roster
	Records   []domain.RatingRecord
	Meetings  []domain.Meeting
	Books     []domain.PivotedBook
	Reports   []domain.BookReport
	Unmatched []domain.Meeting
}

// Runner executes the full pipeline: read the member roster, clean the
// Goodreads exports, pivot, join against the meeting log, merge manual
// ratings, and write the output files.
type Runner struct {
	cfg    config.DataConfig
	logger *slog.Logger
}

func NewRunner(cfg config.DataConfig, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Run executes one full pass over the source files. The context is checked
// between stages so a shutting-down server does not start writing outputs.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now().UTC()
	r.logger.Info("pipeline run starting", "goodreads_dir", r.cfg.GoodreadsDir, "bookclub", r.cfg.BookclubPath)

	roster, err := ingest.LoadRoster(r.cfg.MembersPath)
	if err != nil {
		return nil, err
	}

	records, err := ingest.ReadExportDir(r.cfg.GoodreadsDir, roster, r.logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meetings, err := ingest.ReadMeetingLog(r.cfg.BookclubPath, r.logger)
	if err != nil {
		return nil, err
	}

	manual, err := ingest.ReadManualRatings(r.cfg.ManualRatingsPath, roster, r.logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	books := Pivot(records, roster)
	reports, unmatched := Join(meetings, books)
	MergeManual(reports, manual, roster)

	result := &Result{
		Roster:    roster,
		Records:   records,
		Meetings:  meetings,
		Books:     books,
		Reports:   reports,
		Unmatched: unmatched,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := WriteOutputs(r.cfg.OutputDir, result); err != nil {
		return nil, err
	}

	result.Run = domain.PipelineRun{
		ID:          uuid.NewString(),
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		SourceRows:  len(records),
		Processed:   len(reports),
		Unmatched:   len(unmatched),
		MemberCount: len(roster.Members),
	}

	r.logger.Info("pipeline run finished",
		"run_id", result.Run.ID,
		"source_rows", result.Run.SourceRows,
		"processed", result.Run.Processed,
		"unmatched", result.Run.Unmatched,
		"duration", result.Run.FinishedAt.Sub(result.Run.StartedAt))

	return result, nil
}
