package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string // User's search query

	// Filters
	PickedBy   string  // Filter by exact picker name
	MinYear    int     // Minimum publication year
	MaxYear    int     // Maximum publication year
	MinClubAvg float64 // Minimum club average rating
	MaxClubAvg float64 // Maximum club average rating

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "date", "rating"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool // Include picker facet counts
	Highlight     bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Facets []FacetCount `json:"facets,omitempty"`
}

// Hit represents a single search result.
type Hit struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Title        string            `json:"title"`
	Author       string            `json:"author,omitempty"`
	PickedBy     string            `json:"picked_by,omitempty"`
	Location     string            `json:"location,omitempty"`
	Year         int               `json:"year,omitempty"`
	ClubAvg      float64           `json:"club_avg,omitempty"`
	GoodreadsAvg float64           `json:"goodreads_avg,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("picked_by", bleve.NewFacetRequest("picked_by", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("author")
	}

	searchRequest.Fields = []string{
		"id", "title", "author", "picked_by", "location",
		"year", "club_avg", "goodreads_avg",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			h.Author = a
		}
		if p, ok := hit.Fields["picked_by"].(string); ok {
			h.PickedBy = p
		}
		if l, ok := hit.Fields["location"].(string); ok {
			h.Location = l
		}
		if y, ok := hit.Fields["year"].(float64); ok {
			h.Year = int(y)
		}
		if v, ok := hit.Fields["club_avg"].(float64); ok {
			h.ClubAvg = v
		}
		if v, ok := hit.Fields["goodreads_avg"].(float64); ok {
			h.GoodreadsAvg = v
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		if facet, ok := searchResult.Facets["picked_by"]; ok {
			for _, term := range facet.Terms.Terms() {
				result.Facets = append(result.Facets, FacetCount{
					Value: term.Term,
					Count: term.Count,
				})
			}
		}
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	// Main text query: title match boosted over author, with fuzzy and
	// prefix fallbacks on the title for typo tolerance and autocomplete.
	if params.Query != "" {
		textQueries := []query.Query{}

		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		authorMatch := bleve.NewMatchQuery(params.Query)
		authorMatch.SetField("author")
		authorMatch.SetBoost(1.5)
		textQueries = append(textQueries, authorMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Picker filter (exact match)
	if params.PickedBy != "" {
		tq := bleve.NewTermQuery(params.PickedBy)
		tq.SetField("picked_by")
		queries = append(queries, tq)
	}

	// Year range filter
	if params.MinYear > 0 || params.MaxYear > 0 {
		min := float64(params.MinYear)
		max := float64(params.MaxYear)
		if params.MaxYear == 0 {
			max = 3000 // Far future
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("year")
		queries = append(queries, rangeQuery)
	}

	// Club rating range filter
	if params.MinClubAvg > 0 || params.MaxClubAvg > 0 {
		min := params.MinClubAvg
		max := params.MaxClubAvg
		if params.MaxClubAvg == 0 {
			max = 5
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("club_avg")
		queries = append(queries, rangeQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-title"})
		} else {
			req.SortBy([]string{"title"})
		}
	case "date":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"meeting_date"})
		} else {
			req.SortBy([]string{"-meeting_date"})
		}
	case "rating":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"club_avg"})
		} else {
			req.SortBy([]string{"-club_avg"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}
