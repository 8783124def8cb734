package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookclubapp/bookclub-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search over the discussed books with picker, year, and rating filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the book reports.
type SearchInput struct {
	Query      string  `query:"q" validate:"omitempty,max=200" doc:"Search query. Omit to list everything."`
	PickedBy   string  `query:"picked_by" validate:"omitempty,max=100" doc:"Filter by the member who picked the book"`
	MinYear    int     `query:"min_year" validate:"omitempty,gte=0" doc:"Minimum original publication year"`
	MaxYear    int     `query:"max_year" validate:"omitempty,gte=0" doc:"Maximum original publication year"`
	MinClubAvg float64 `query:"min_rating" validate:"omitempty,gte=0,lte=5" doc:"Minimum club average rating"`
	MaxClubAvg float64 `query:"max_rating" validate:"omitempty,gte=0,lte=5" doc:"Maximum club average rating"`
	Limit      int     `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset     int     `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset (default 0)"`
	SortBy     string  `query:"sort" validate:"omitempty,oneof=relevance title date rating" doc:"Sort order: relevance, title, date, or rating"`
	SortOrder  string  `query:"order" validate:"omitempty,oneof=asc desc" doc:"Sort direction (default desc)"`
	Facets     bool    `query:"facets" doc:"Include picker facet counts"`
}

// SearchHitResult contains a single search result.
type SearchHitResult struct {
	ID           string            `json:"id" doc:"Book ID"`
	Score        float64           `json:"score" doc:"Search relevance score"`
	Title        string            `json:"title" doc:"Book title"`
	Author       string            `json:"author,omitempty" doc:"Book author"`
	PickedBy     string            `json:"picked_by,omitempty" doc:"Member who picked the book"`
	Location     string            `json:"location,omitempty" doc:"Meeting location"`
	Year         int               `json:"year,omitempty" doc:"Original publication year"`
	ClubAvg      float64           `json:"average_club_rating,omitempty" doc:"Club average rating"`
	GoodreadsAvg float64           `json:"average_goodreads_rating,omitempty" doc:"Goodreads average rating"`
	Highlights   map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchResponse contains search results in API responses.
type SearchResponse struct {
	Query  string              `json:"query" doc:"Original search query"`
	Total  uint64              `json:"total" doc:"Total matches"`
	TookMs int64               `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult   `json:"hits" doc:"Search results"`
	Facets []search.FacetCount `json:"facets,omitempty" doc:"Picker facet counts"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.PickedBy = input.PickedBy
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.MinClubAvg = input.MinClubAvg
	params.MaxClubAvg = input.MaxClubAvg
	params.Offset = input.Offset
	params.IncludeFacets = input.Facets
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}

	result, err := s.searchService.Search(ctx, params)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	resp := SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResult, 0, len(result.Hits)),
		Facets: result.Facets,
	}
	for i := range result.Hits {
		hit := &result.Hits[i]
		resp.Hits = append(resp.Hits, SearchHitResult{
			ID:           hit.ID,
			Score:        hit.Score,
			Title:        hit.Title,
			Author:       hit.Author,
			PickedBy:     hit.PickedBy,
			Location:     hit.Location,
			Year:         hit.Year,
			ClubAvg:      hit.ClubAvg,
			GoodreadsAvg: hit.GoodreadsAvg,
			Highlights:   hit.Highlights,
		})
	}

	return &SearchOutput{Body: resp}, nil
}
