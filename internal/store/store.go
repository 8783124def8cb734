// Package store defines the persistence interface for the book club server.
// The store holds the latest pipeline snapshot: the merged book reports,
// their per-member ratings, the unmatched meetings, and the run history.
package store

import (
	"context"

	"github.com/bookclubapp/bookclub-server/internal/domain"
)

// Snapshot is the full product of one pipeline run, stored wholesale. Each
// run replaces the previous snapshot; only the run history accumulates.
type Snapshot struct {
	Run       domain.PipelineRun
	Members   []domain.Member
	Reports   []domain.BookReport
	Unmatched []domain.Meeting
}

// Store defines the interface for all persistence operations.
type Store interface {
	Close() error

	// Snapshot replacement. ReplaceSnapshot swaps the previous run's data
	// for the new run's in one transaction; readers never see a half-written
	// snapshot.
	ReplaceSnapshot(ctx context.Context, snap *Snapshot) error

	// Reports
	ListReports(ctx context.Context) ([]domain.BookReport, error)
	GetReport(ctx context.Context, id string) (*domain.BookReport, error)
	ListUnmatched(ctx context.Context) ([]domain.Meeting, error)

	// Members
	ListMembers(ctx context.Context) ([]domain.Member, error)

	// Run history
	LatestRun(ctx context.Context) (*domain.PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error)
}
