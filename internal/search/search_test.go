package search

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubapp/bookclub-server/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(Options{
		DataPath: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func testReports() []domain.BookReport {
	return []domain.BookReport{
		{
			ID:           "book-1",
			Seq:          1,
			Date:         time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
			Title:        "Dune",
			Author:       "Frank Herbert",
			PickedBy:     "Thirsa",
			Location:     "Cafe",
			PubYear:      ptr(1965),
			GoodreadsAvg: ptr(4.25),
			Ratings:      map[string]float64{"Thirsa": 5, "Peter": 3},
			ClubAvg:      ptr(4.0),
		},
		{
			ID:       "book-2",
			Seq:      2,
			Date:     time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
			Title:    "Hyperion",
			Author:   "Dan Simmons",
			PickedBy: "Peter",
			PubYear:  ptr(1989),
			Ratings:  map[string]float64{"Thirsa": 2},
			ClubAvg:  ptr(2.0),
		},
	}
}

func indexReports(t *testing.T, idx *Index, reports []domain.BookReport) {
	t.Helper()
	docs := make([]*Document, 0, len(reports))
	for i := range reports {
		docs = append(docs, FromReport(&reports[i]))
	}
	require.NoError(t, idx.IndexDocuments(docs))
}

func TestFromReport(t *testing.T) {
	reports := testReports()
	doc := FromReport(&reports[0])

	assert.Equal(t, "book-1", doc.ID)
	assert.Equal(t, "Dune", doc.Title)
	assert.Equal(t, "Thirsa", doc.PickedBy)
	assert.Equal(t, 1965, doc.Year)
	assert.Equal(t, 4.0, doc.ClubAvg)
	assert.Equal(t, 2, doc.VoterCount)

	// Nil pointers stay zero and are left out of the indexed map.
	doc2 := FromReport(&reports[1])
	assert.Equal(t, 0.0, doc2.GoodreadsAvg)
	_, ok := doc2.ToMap()["goodreads_avg"]
	assert.False(t, ok)
}

func TestSearchByTitle(t *testing.T) {
	idx := newTestIndex(t)
	indexReports(t, idx, testReports())

	params := DefaultParams()
	params.Query = "dune"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-1", result.Hits[0].ID)
	assert.Equal(t, "Dune", result.Hits[0].Title)
	assert.Equal(t, "Frank Herbert", result.Hits[0].Author)
	assert.Equal(t, 4.0, result.Hits[0].ClubAvg)
}

func TestSearchByAuthor(t *testing.T) {
	idx := newTestIndex(t)
	indexReports(t, idx, testReports())

	params := DefaultParams()
	params.Query = "simmons"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestSearchFuzzy(t *testing.T) {
	idx := newTestIndex(t)
	indexReports(t, idx, testReports())

	params := DefaultParams()
	params.Query = "hyperio" // Missing final letter

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestSearchPickedByFilter(t *testing.T) {
	idx := newTestIndex(t)
	indexReports(t, idx, testReports())

	params := DefaultParams()
	params.PickedBy = "Peter"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestSearchYearRange(t *testing.T) {
	idx := newTestIndex(t)
	indexReports(t, idx, testReports())

	params := DefaultParams()
	params.MinYear = 1980

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestSearchSortByRating(t *testing.T) {
	idx := newTestIndex(t)
	indexReports(t, idx, testReports())

	params := DefaultParams()
	params.SortBy = "rating"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "book-1", result.Hits[0].ID)
	assert.Equal(t, "book-2", result.Hits[1].ID)
}

func TestSearchFacets(t *testing.T) {
	idx := newTestIndex(t)
	indexReports(t, idx, testReports())

	result, err := idx.Search(context.Background(), DefaultParams())
	require.NoError(t, err)
	require.Len(t, result.Facets, 2)
	for _, f := range result.Facets {
		assert.Equal(t, 1, f.Count)
	}
}

func TestRebuild(t *testing.T) {
	idx := newTestIndex(t)
	indexReports(t, idx, testReports())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	require.NoError(t, idx.Rebuild())

	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// The rebuilt index accepts new documents.
	indexReports(t, idx, testReports()[:1])
	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
