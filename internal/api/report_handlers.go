package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/stats"
)

func (s *Server) registerReportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getOverview",
		Method:      http.MethodGet,
		Path:        "/api/v1/overview",
		Summary:     "Dashboard overview",
		Description: "Headline figures: book counts, club and Goodreads averages, meeting span",
		Tags:        []string{"Reports"},
	}, s.handleGetOverview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "All discussed books with member ratings, in meeting order or ranked by club average",
		Tags:        []string{"Reports"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "One discussed book by ID",
		Tags:        []string{"Reports"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUnmatched",
		Method:      http.MethodGet,
		Path:        "/api/v1/unmatched",
		Summary:     "List unmatched meetings",
		Description: "Meeting log entries with no matching Goodreads ratings",
		Tags:        []string{"Reports"},
	}, s.handleListUnmatched)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/members",
		Summary:     "Member comparison",
		Description: "Per-member rating statistics in roster order",
		Tags:        []string{"Members"},
	}, s.handleListMembers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAlignment",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/alignment",
		Summary:     "Member alignment",
		Description: "Pairwise rating correlation between members",
		Tags:        []string{"Members"},
	}, s.handleGetAlignment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRuns",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs",
		Summary:     "List pipeline runs",
		Description: "Pipeline run history, newest first",
		Tags:        []string{"Pipeline"},
	}, s.handleListRuns)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLatestRun",
		Method:      http.MethodGet,
		Path:        "/api/v1/runs/latest",
		Summary:     "Latest pipeline run",
		Description: "The most recent pipeline run",
		Tags:        []string{"Pipeline"},
	}, s.handleGetLatestRun)
}

// === DTOs ===

// OverviewOutput wraps the dashboard overview for Huma.
type OverviewOutput struct {
	Body stats.Overview
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Ranked bool `query:"ranked" doc:"Sort by club average instead of meeting order"`
}

// BooksResponse contains the book list in API responses.
type BooksResponse struct {
	Count int                 `json:"count" doc:"Number of books"`
	Books []domain.BookReport `json:"books" doc:"Discussed books with member ratings"`
}

// BooksOutput wraps the book list for Huma.
type BooksOutput struct {
	Body BooksResponse
}

// GetBookInput identifies one book.
type GetBookInput struct {
	ID string `path:"id" maxLength:"64" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body domain.BookReport
}

// UnmatchedResponse contains the unmatched meetings in API responses.
type UnmatchedResponse struct {
	Count    int              `json:"count" doc:"Number of unmatched meetings"`
	Meetings []domain.Meeting `json:"meetings" doc:"Meeting log entries without Goodreads ratings"`
}

// UnmatchedOutput wraps the unmatched list for Huma.
type UnmatchedOutput struct {
	Body UnmatchedResponse
}

// MembersOutput wraps the member comparison for Huma.
type MembersOutput struct {
	Body []stats.MemberStats
}

// AlignmentOutput wraps the member alignment matrix for Huma.
type AlignmentOutput struct {
	Body []stats.Alignment
}

// ListRunsInput contains parameters for listing pipeline runs.
type ListRunsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"1000" doc:"Max runs to return (0 for all)"`
}

// RunsOutput wraps the run history for Huma.
type RunsOutput struct {
	Body []domain.PipelineRun
}

// RunOutput wraps a single pipeline run for Huma.
type RunOutput struct {
	Body domain.PipelineRun
}

// === Handlers ===

func (s *Server) handleGetOverview(ctx context.Context, _ *struct{}) (*OverviewOutput, error) {
	overview, err := s.reportService.Overview(ctx)
	if err != nil {
		return nil, err
	}
	return &OverviewOutput{Body: *overview}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BooksOutput, error) {
	books, err := s.reportService.Books(ctx, input.Ranked)
	if err != nil {
		return nil, err
	}
	return &BooksOutput{Body: BooksResponse{Count: len(books), Books: books}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.reportService.Book(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleListUnmatched(ctx context.Context, _ *struct{}) (*UnmatchedOutput, error) {
	meetings, err := s.reportService.Unmatched(ctx)
	if err != nil {
		return nil, err
	}
	return &UnmatchedOutput{Body: UnmatchedResponse{Count: len(meetings), Meetings: meetings}}, nil
}

func (s *Server) handleListMembers(ctx context.Context, _ *struct{}) (*MembersOutput, error) {
	members, err := s.reportService.Members(ctx)
	if err != nil {
		return nil, err
	}
	return &MembersOutput{Body: members}, nil
}

func (s *Server) handleGetAlignment(ctx context.Context, _ *struct{}) (*AlignmentOutput, error) {
	alignment, err := s.reportService.Alignment(ctx)
	if err != nil {
		return nil, err
	}
	return &AlignmentOutput{Body: alignment}, nil
}

func (s *Server) handleListRuns(ctx context.Context, input *ListRunsInput) (*RunsOutput, error) {
	runs, err := s.reportService.Runs(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &RunsOutput{Body: runs}, nil
}

func (s *Server) handleGetLatestRun(ctx context.Context, _ *struct{}) (*RunOutput, error) {
	run, err := s.reportService.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	return &RunOutput{Body: *run}, nil
}
