package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/stats"
	"github.com/bookclubapp/bookclub-server/internal/store"
)

// ReportService serves the merged book reports and the dashboard aggregates
// computed over them.
type ReportService struct {
	store  store.Store
	logger *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(st store.Store, logger *slog.Logger) *ReportService {
	return &ReportService{store: st, logger: logger}
}

// loadReports fetches the snapshot's reports and roster in one place.
func (s *ReportService) loadReports(ctx context.Context) ([]domain.BookReport, *domain.Roster, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list members: %w", err)
	}
	if len(members) == 0 {
		return nil, nil, store.ErrNoSnapshot
	}

	reports, err := s.store.ListReports(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, &domain.Roster{Members: members}, nil
}

// Overview returns the headline dashboard figures.
func (s *ReportService) Overview(ctx context.Context) (*stats.Overview, error) {
	reports, roster, err := s.loadReports(ctx)
	if err != nil {
		return nil, err
	}
	o := stats.ComputeOverview(reports, roster)
	return &o, nil
}

// Books returns the merged reports, either in meeting order or ranked by
// club average.
func (s *ReportService) Books(ctx context.Context, ranked bool) ([]domain.BookReport, error) {
	reports, _, err := s.loadReports(ctx)
	if err != nil {
		return nil, err
	}
	if ranked {
		return stats.Rankings(reports), nil
	}
	return reports, nil
}

// Book returns one report by ID.
func (s *ReportService) Book(ctx context.Context, id string) (*domain.BookReport, error) {
	return s.store.GetReport(ctx, id)
}

// Members returns the per-member comparison table.
func (s *ReportService) Members(ctx context.Context) ([]stats.MemberStats, error) {
	reports, roster, err := s.loadReports(ctx)
	if err != nil {
		return nil, err
	}
	return stats.MemberComparison(reports, roster), nil
}

// Alignment returns the pairwise member correlation matrix.
func (s *ReportService) Alignment(ctx context.Context) ([]stats.Alignment, error) {
	reports, roster, err := s.loadReports(ctx)
	if err != nil {
		return nil, err
	}
	return stats.MemberAlignment(reports, roster), nil
}

// Timeline returns the ratings-over-time chart data.
func (s *ReportService) Timeline(ctx context.Context) ([]stats.TimelinePoint, error) {
	reports, _, err := s.loadReports(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Timeline(reports), nil
}

// Decades returns the publication-decade breakdown.
func (s *ReportService) Decades(ctx context.Context) ([]stats.DecadeBucket, error) {
	reports, _, err := s.loadReports(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Decades(reports), nil
}

// Polarizing returns the books the members disagreed about most.
func (s *ReportService) Polarizing(ctx context.Context, limit int) ([]stats.PolarizingBook, error) {
	reports, _, err := s.loadReports(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Polarizing(reports, limit), nil
}

// Discrepancies returns the books where the club and Goodreads disagree most.
func (s *ReportService) Discrepancies(ctx context.Context, limit int) ([]stats.Discrepancy, error) {
	reports, _, err := s.loadReports(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Discrepancies(reports, limit), nil
}

// Unmatched returns the meetings with no Goodreads match.
func (s *ReportService) Unmatched(ctx context.Context) ([]domain.Meeting, error) {
	return s.store.ListUnmatched(ctx)
}

// LatestRun returns the most recent pipeline run.
func (s *ReportService) LatestRun(ctx context.Context) (*domain.PipelineRun, error) {
	return s.store.LatestRun(ctx)
}

// Runs returns the run history, newest first.
func (s *ReportService) Runs(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	return s.store.ListRuns(ctx, limit)
}
