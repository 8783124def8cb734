package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubapp/bookclub-server/internal/config"
	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/ingest"
	"github.com/bookclubapp/bookclub-server/internal/normalize"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRoster() *domain.Roster {
	return &domain.Roster{Members: []domain.Member{
		{Name: "Thirsa", ExportFile: "thirsa.csv", Active: true},
		{Name: "Laurynas", ExportFile: "laurynas.csv", Active: true},
		{Name: "Peter", ExportFile: "peter.csv", Active: true},
	}}
}

func ptr[T any](v T) *T { return &v }

func record(title, member string, rating float64) domain.RatingRecord {
	return domain.RatingRecord{Title: title, Author: "Author", Member: member, Rating: ptr(rating)}
}

func TestPivot_OneRowPerTitle(t *testing.T) {
	records := []domain.RatingRecord{
		record("Dune", "Thirsa", 5),
		record("dune ", "Peter", 4),
		record("Hyperion", "Laurynas", 3),
	}

	books := Pivot(records, testRoster())
	require.Len(t, books, 2)

	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, map[string]float64{"Thirsa": 5, "Peter": 4}, books[0].Ratings)
	require.NotNil(t, books[0].ClubAvg)
	assert.Equal(t, 4.5, *books[0].ClubAvg)

	assert.Equal(t, "Hyperion", books[1].Title)
	require.NotNil(t, books[1].ClubAvg)
	assert.Equal(t, 3.0, *books[1].ClubAvg)
}

func TestPivot_OrderIndependent(t *testing.T) {
	forward := []domain.RatingRecord{
		record("Dune", "Thirsa", 5),
		record("Dune", "Peter", 4),
		record("Solaris", "Laurynas", 2),
	}
	reversed := []domain.RatingRecord{forward[2], forward[1], forward[0]}

	assert.Equal(t, Pivot(forward, testRoster()), Pivot(reversed, testRoster()))
}

func TestPivot_IgnoresUnknownMembers(t *testing.T) {
	records := []domain.RatingRecord{
		record("Dune", "Thirsa", 5),
		record("Dune", "Stranger", 1),
	}

	books := Pivot(records, testRoster())
	require.Len(t, books, 1)
	assert.Equal(t, map[string]float64{"Thirsa": 5}, books[0].Ratings)
}

func TestPivot_DuplicateMemberRowsAveraged(t *testing.T) {
	// Two editions of the same book in one export.
	records := []domain.RatingRecord{
		record("Dune", "Thirsa", 5),
		record("Dune", "Thirsa", 3),
	}

	books := Pivot(records, testRoster())
	require.Len(t, books, 1)
	assert.Equal(t, 4.0, books[0].Ratings["Thirsa"])
}

func TestPivot_UnratedBookHasNilAverage(t *testing.T) {
	records := []domain.RatingRecord{
		{Title: "Dune", Author: "Frank Herbert", Member: "Thirsa", GoodreadsAvg: ptr(4.25)},
	}

	books := Pivot(records, testRoster())
	require.Len(t, books, 1)
	assert.Empty(t, books[0].Ratings)
	assert.Nil(t, books[0].ClubAvg)
	require.NotNil(t, books[0].GoodreadsAvg)
	assert.Equal(t, 4.25, *books[0].GoodreadsAvg)
}

func meeting(seq int, date, title string) domain.Meeting {
	d, _ := time.Parse("2006-01-02", date)
	return domain.Meeting{ID: "meet-" + title, Seq: seq, Date: d, Title: title, Author: "Author", PickedBy: "Thirsa"}
}

func TestJoin_MatchedAndUnmatchedAreDisjoint(t *testing.T) {
	meetings := []domain.Meeting{
		meeting(1, "2020-01-15", "Dune"),
		meeting(2, "2020-03-01", "Unlisted Book"),
	}
	books := []domain.PivotedBook{
		{Title: "Dune", Author: "Frank Herbert", Ratings: map[string]float64{"Thirsa": 5}, ClubAvg: ptr(5.0)},
		{Title: "Hyperion", Author: "Dan Simmons", Ratings: map[string]float64{"Peter": 4}, ClubAvg: ptr(4.0)},
	}

	reports, unmatched := Join(meetings, books)

	// Every meeting survives the join, matched or not.
	require.Len(t, reports, 2)
	assert.Equal(t, "Dune", reports[0].Title)
	assert.Equal(t, map[string]float64{"Thirsa": 5}, reports[0].Ratings)
	assert.Equal(t, "Unlisted Book", reports[1].Title)
	assert.Empty(t, reports[1].Ratings)
	assert.Nil(t, reports[1].ClubAvg)

	// Unmatched is the anti join over meetings: exactly the meeting rows that
	// found no ratings, never the leftover pivot rows.
	require.Len(t, unmatched, 1)
	assert.Equal(t, "Unlisted Book", unmatched[0].Title)
	assert.Equal(t, "Thirsa", unmatched[0].PickedBy)

	matched := map[string]bool{}
	for _, r := range reports {
		if len(r.Ratings) > 0 {
			matched[normalize.TitleKey(r.Title)] = true
		}
	}
	for _, m := range unmatched {
		assert.False(t, matched[normalize.TitleKey(m.Title)])
	}
}

func TestJoin_MeetingWithoutRatingsLandsInUnmatched(t *testing.T) {
	meetings := []domain.Meeting{meeting(1, "2020-06-01", "Unmatched Meeting Book")}
	books := []domain.PivotedBook{
		{Title: "Orphan Goodreads Book", Ratings: map[string]float64{"Peter": 4}, ClubAvg: ptr(4.0)},
	}

	reports, unmatched := Join(meetings, books)

	require.Len(t, reports, 1)
	assert.Empty(t, reports[0].Ratings)

	require.Len(t, unmatched, 1)
	assert.Equal(t, "Unmatched Meeting Book", unmatched[0].Title)
	assert.Equal(t, 1, unmatched[0].Seq)
}

func TestJoin_MatchIsCaseAndAccentInsensitive(t *testing.T) {
	meetings := []domain.Meeting{meeting(1, "2020-01-15", "LES MISÉRABLES")}
	books := []domain.PivotedBook{
		{Title: "Les Miserables", Ratings: map[string]float64{"Peter": 4}, ClubAvg: ptr(4.0)},
	}

	reports, unmatched := Join(meetings, books)
	require.Len(t, reports, 1)
	assert.Equal(t, map[string]float64{"Peter": 4}, reports[0].Ratings)
	assert.Empty(t, unmatched)
}

func TestJoin_SortsByDate(t *testing.T) {
	meetings := []domain.Meeting{
		meeting(3, "2021-05-01", "Third"),
		meeting(1, "2020-01-15", "First"),
		meeting(2, "2020-03-01", "Second"),
	}

	reports, _ := Join(meetings, nil)
	require.Len(t, reports, 3)
	assert.Equal(t, "First", reports[0].Title)
	assert.Equal(t, "Second", reports[1].Title)
	assert.Equal(t, "Third", reports[2].Title)
}

func TestMergeManual(t *testing.T) {
	reports := []domain.BookReport{{
		Title:   "Dune",
		Ratings: map[string]float64{"Thirsa": 5},
		ClubAvg: ptr(5.0),
	}}
	manual := ingest.ManualRatings{
		normalize.TitleKey("Dune"): {"Peter": 3, "Thirsa": 4},
	}

	MergeManual(reports, manual, testRoster())

	// Manual cells win over export cells, and the average follows.
	assert.Equal(t, map[string]float64{"Thirsa": 4, "Peter": 3}, reports[0].Ratings)
	require.NotNil(t, reports[0].ClubAvg)
	assert.Equal(t, 3.5, *reports[0].ClubAvg)
}

func writeTestData(t *testing.T) config.DataConfig {
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
		"Title,Author,My Rating,Average Rating,Original Publication Year\nDune,Frank Herbert,5,4.25,1965\nHyperion,Dan Simmons,4,4.23,1989\n")
	write(filepath.Join(goodreads, "peter.csv"),
		"Title,Author,My Rating\nDune,Frank Herbert,3\nOrphan Book,Nobody,2\n")
	write(filepath.Join(bookclub, "bookclub.csv"),
		"Nummer,Datum,Boek,Auteur,Wie heeft gekozen?,Locatie\n1,01/15/2020,Dune,Frank Herbert,Thirsa,Cafe\n2,03/01/2020,Hyperion,Dan Simmons,Peter,Online\n3,05/01/2020,Book Without Ratings,Unknown,Thirsa,Cafe\n")
	write(filepath.Join(bookclub, "manual_ratings.csv"),
		"Title,Peter\nHyperion,5\n")

	return config.DataConfig{
		BasePath:          base,
		GoodreadsDir:      goodreads,
		BookclubPath:      filepath.Join(bookclub, "bookclub.csv"),
		ManualRatingsPath: filepath.Join(bookclub, "manual_ratings.csv"),
		MembersPath:       filepath.Join(base, "members.yaml"),
		OutputDir:         filepath.Join(base, "processed"),
	}
}

func TestRunner_Run(t *testing.T) {
	cfg := writeTestData(t)
	runner := NewRunner(cfg, testLogger())

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Run.SourceRows)
	assert.Equal(t, 3, result.Run.Processed)
	assert.Equal(t, 1, result.Run.Unmatched)
	assert.Equal(t, 2, result.Run.MemberCount)
	assert.NotEmpty(t, result.Run.ID)

	require.Len(t, result.Reports, 3)

	dune := result.Reports[0]
	assert.Equal(t, "Dune", dune.Title)
	assert.Equal(t, map[string]float64{"Thirsa": 5, "Peter": 3}, dune.Ratings)
	require.NotNil(t, dune.ClubAvg)
	assert.Equal(t, 4.0, *dune.ClubAvg)
	require.NotNil(t, dune.PubYear)
	assert.Equal(t, 1965, *dune.PubYear)

	// The manual sheet fills in Peter's Hyperion rating.
	hyperion := result.Reports[1]
	assert.Equal(t, map[string]float64{"Thirsa": 4, "Peter": 5}, hyperion.Ratings)
	require.NotNil(t, hyperion.ClubAvg)
	assert.Equal(t, 4.5, *hyperion.ClubAvg)

	// A meeting with no export rows still shows up, just without ratings.
	assert.Equal(t, "Book Without Ratings", result.Reports[2].Title)
	assert.Empty(t, result.Reports[2].Ratings)

	// Peter's "Orphan Book" export row is not unmatched output; only the
	// meeting without ratings is.
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "Book Without Ratings", result.Unmatched[0].Title)
	assert.Equal(t, 3, result.Unmatched[0].Seq)

	for _, name := range []string{ProcessedFile, UnmatchedFile, CombinedFile} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}

	// The unmatched CSV carries meeting-log columns.
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, UnmatchedFile))
	require.NoError(t, err)
	assert.Equal(t,
		"number,date,title,author,picked_by,location\n3,2020-05-01,Book Without Ratings,Unknown,Thirsa,Cafe\n",
		string(data))
}

func TestRunner_RunIsIdempotent(t *testing.T) {
	cfg := writeTestData(t)
	runner := NewRunner(cfg, testLogger())

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	first := readOutputs(t, cfg.OutputDir)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	second := readOutputs(t, cfg.OutputDir)
	assert.Equal(t, first, second)
}

func TestRunner_RunCancelled(t *testing.T) {
	cfg := writeTestData(t)
	runner := NewRunner(cfg, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func readOutputs(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, name := range []string{ProcessedFile, UnmatchedFile, CombinedFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		out[name] = string(data)
	}
	return out
}
