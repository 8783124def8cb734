package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubapp/bookclub-server/internal/config"
	"github.com/bookclubapp/bookclub-server/internal/pipeline"
	"github.com/bookclubapp/bookclub-server/internal/search"
	"github.com/bookclubapp/bookclub-server/internal/store"
	"github.com/bookclubapp/bookclub-server/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSourceData(t *testing.T) config.DataConfig {
	t.Helper()
	base := t.TempDir()
	goodreads := filepath.Join(base, "goodreads", "clean")
	bookclub := filepath.Join(base, "bookclub")
	require.NoError(t, os.MkdirAll(goodreads, 0o755))
	require.NoError(t, os.MkdirAll(bookclub, 0o755))

	write := func(path, content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	write(filepath.Join(base, "members.yaml"), `members:
  - name: Thirsa
    export_file: thirsa.csv
    active: true
  - name: Peter
    export_file: peter.csv
    active: true
`)
	write(filepath.Join(goodreads, "thirsa.csv"),
		"Title,Author,My Rating,Original Publication Year\nDune,Frank Herbert,5,1965\n")
	write(filepath.Join(goodreads, "peter.csv"),
		"Title,Author,My Rating\nDune,Frank Herbert,3\nOrphan Book,Nobody,2\n")
	write(filepath.Join(bookclub, "bookclub.csv"),
		"Nummer,Datum,Boek,Auteur,Wie heeft gekozen?,Locatie\n1,01/15/2020,Dune,Frank Herbert,Thirsa,Cafe\n2,03/01/2020,Book Without Ratings,Unknown,Peter,Online\n")

	return config.DataConfig{
		BasePath:          base,
		GoodreadsDir:      goodreads,
		BookclubPath:      filepath.Join(bookclub, "bookclub.csv"),
		ManualRatingsPath: filepath.Join(bookclub, "manual_ratings.csv"),
		MembersPath:       filepath.Join(base, "members.yaml"),
		OutputDir:         filepath.Join(base, "processed"),
	}
}

func newTestServices(t *testing.T) (*PipelineService, *ReportService, *SearchService) {
	t.Helper()
	logger := testLogger()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	idx, err := search.NewIndex(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	runner := pipeline.NewRunner(writeSourceData(t), logger)

	return NewPipelineService(runner, st, idx, logger),
		NewReportService(st, logger),
		NewSearchService(idx, logger)
}

func TestPipelineService_Refresh(t *testing.T) {
	pipelineSvc, reportSvc, searchSvc := newTestServices(t)
	ctx := context.Background()

	run, err := pipelineSvc.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Processed)
	assert.Equal(t, 1, run.Unmatched)

	// The snapshot is queryable through the report service.
	overview, err := reportSvc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.TotalBooks)
	assert.Equal(t, 2, overview.MemberCount)
	require.NotNil(t, overview.ClubAverage)
	assert.Equal(t, 4.0, *overview.ClubAverage)

	books, err := reportSvc.Books(ctx, false)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)

	// Unmatched is the meeting with no Goodreads ratings, not the export row
	// no meeting claimed.
	unmatched, err := reportSvc.Unmatched(ctx)
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "Book Without Ratings", unmatched[0].Title)
	assert.Equal(t, "Peter", unmatched[0].PickedBy)

	// The run landed in the history.
	latest, err := reportSvc.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)

	// And the search index was refreshed.
	params := search.DefaultParams()
	params.Query = "dune"
	result, err := searchSvc.Search(ctx, params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "Dune", result.Hits[0].Title)
}

func TestPipelineService_RefreshReplacesPreviousRun(t *testing.T) {
	pipelineSvc, reportSvc, _ := newTestServices(t)
	ctx := context.Background()

	first, err := pipelineSvc.Refresh(ctx)
	require.NoError(t, err)
	second, err := pipelineSvc.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// Book data is not duplicated across refreshes.
	books, err := reportSvc.Books(ctx, false)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	runs, err := reportSvc.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestReportService_EmptyStore(t *testing.T) {
	logger := testLogger()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewReportService(st, logger)

	_, err = svc.Overview(context.Background())
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}

func TestSearchService_Validation(t *testing.T) {
	_, _, searchSvc := newTestServices(t)
	ctx := context.Background()

	params := search.DefaultParams()
	params.Offset = -1
	_, err := searchSvc.Search(ctx, params)
	assert.Error(t, err)

	params = search.DefaultParams()
	params.MaxClubAvg = 9
	_, err = searchSvc.Search(ctx, params)
	assert.Error(t, err)

	// Limits above the cap are clamped, not rejected.
	params = search.DefaultParams()
	params.Limit = 10000
	_, err = searchSvc.Search(ctx, params)
	assert.NoError(t, err)
}
