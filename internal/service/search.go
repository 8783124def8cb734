package service

import (
	"context"
	"log/slog"

	"github.com/bookclubapp/bookclub-server/internal/errors"
	"github.com/bookclubapp/bookclub-server/internal/search"
)

// SearchService validates and executes search queries against the index.
type SearchService struct {
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{index: index, logger: logger}
}

const maxSearchLimit = 100

// DocumentCount reports how many books are currently indexed.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// Search runs a query with bounds-checked pagination.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > maxSearchLimit {
		params.Limit = maxSearchLimit
	}
	if params.Offset < 0 {
		return nil, errors.Validation("offset must not be negative")
	}
	if params.MinClubAvg < 0 || params.MaxClubAvg > 5 {
		return nil, errors.Validation("club rating filters must stay within the 1-5 scale")
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search failed")
	}

	s.logger.Debug("search executed", "query", params.Query, "hits", result.Total)
	return result, nil
}
