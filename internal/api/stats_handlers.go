package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookclubapp/bookclub-server/internal/stats"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTimeline",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/timeline",
		Summary:     "Ratings timeline",
		Description: "Club and Goodreads averages per meeting, in meeting order",
		Tags:        []string{"Stats"},
	}, s.handleGetTimeline)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDecades",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/decades",
		Summary:     "Publication decades",
		Description: "Books bucketed by original publication decade",
		Tags:        []string{"Stats"},
	}, s.handleGetDecades)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPolarizing",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/polarizing",
		Summary:     "Most polarizing books",
		Description: "Books ranked by the spread of their member ratings",
		Tags:        []string{"Stats"},
	}, s.handleGetPolarizing)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDiscrepancies",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/discrepancies",
		Summary:     "Club vs Goodreads discrepancies",
		Description: "Books ranked by the gap between the club average and the Goodreads average",
		Tags:        []string{"Stats"},
	}, s.handleGetDiscrepancies)
}

// === DTOs ===

// TimelineOutput wraps the ratings timeline for Huma.
type TimelineOutput struct {
	Body []stats.TimelinePoint
}

// DecadesOutput wraps the decade breakdown for Huma.
type DecadesOutput struct {
	Body []stats.DecadeBucket
}

// TopListInput limits a ranked list.
type TopListInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"1000" doc:"Max entries to return (0 for all)"`
}

// PolarizingOutput wraps the polarizing books list for Huma.
type PolarizingOutput struct {
	Body []stats.PolarizingBook
}

// DiscrepanciesOutput wraps the discrepancy list for Huma.
type DiscrepanciesOutput struct {
	Body []stats.Discrepancy
}

// === Handlers ===

func (s *Server) handleGetTimeline(ctx context.Context, _ *struct{}) (*TimelineOutput, error) {
	points, err := s.reportService.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	return &TimelineOutput{Body: points}, nil
}

func (s *Server) handleGetDecades(ctx context.Context, _ *struct{}) (*DecadesOutput, error) {
	buckets, err := s.reportService.Decades(ctx)
	if err != nil {
		return nil, err
	}
	return &DecadesOutput{Body: buckets}, nil
}

func (s *Server) handleGetPolarizing(ctx context.Context, input *TopListInput) (*PolarizingOutput, error) {
	books, err := s.reportService.Polarizing(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &PolarizingOutput{Body: books}, nil
}

func (s *Server) handleGetDiscrepancies(ctx context.Context, input *TopListInput) (*DiscrepanciesOutput, error) {
	discrepancies, err := s.reportService.Discrepancies(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &DiscrepanciesOutput{Body: discrepancies}, nil
}
