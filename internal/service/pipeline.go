// Package service contains the application services that sit between the
// HTTP API and the pipeline, store, and search index.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/pipeline"
	"github.com/bookclubapp/bookclub-server/internal/search"
	"github.com/bookclubapp/bookclub-server/internal/store"
)

// PipelineService runs the processing pipeline and publishes its result to
// the store and the search index.
type PipelineService struct {
	runner *pipeline.Runner
	store  store.Store
	index  *search.Index
	logger *slog.Logger

	mu sync.Mutex // One refresh at a time; concurrent calls queue up.
}

// NewPipelineService creates a new pipeline service.
func NewPipelineService(runner *pipeline.Runner, st store.Store, index *search.Index, logger *slog.Logger) *PipelineService {
	return &PipelineService{
		runner: runner,
		store:  st,
		index:  index,
		logger: logger,
	}
}

// Refresh executes one full pipeline run: read the sources, write the output
// files, replace the stored snapshot, and reindex for search. Returns the
// run record on success.
func (s *PipelineService) Refresh(ctx context.Context) (*domain.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.runner.Run(ctx)
	if err != nil {
		return nil, err
	}

	snap := &store.Snapshot{
		Run:       result.Run,
		Members:   result.Roster.Members,
		Reports:   result.Reports,
		Unmatched: result.Unmatched,
	}
	if err := s.store.ReplaceSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	if err := s.reindex(result.Reports); err != nil {
		// The snapshot is already stored; a stale index is recoverable on
		// the next refresh, so log and keep going.
		s.logger.Error("reindex after refresh failed", "error", err, "run_id", result.Run.ID)
	}

	return &result.Run, nil
}

func (s *PipelineService) reindex(reports []domain.BookReport) error {
	if s.index == nil {
		return nil
	}
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	docs := make([]*search.Document, 0, len(reports))
	for i := range reports {
		docs = append(docs, search.FromReport(&reports[i]))
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	s.logger.Debug("search index refreshed", "documents", len(docs))
	return nil
}
