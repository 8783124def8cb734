package ingest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubapp/bookclub-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   rune
	}{
		{"comma", `Title,Author,My Rating`, ','},
		{"semicolon", `Title;Author;My Rating`, ';'},
		{"tab", "Title\tAuthor\tMy Rating", '\t'},
		{"quoted commas ignored", `"Title, or not";Author;Rating`, ';'},
		{"no delimiter falls back to comma", `Title`, ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffDelimiter(tt.header))
		})
	}
}

func TestParseExport(t *testing.T) {
	csvData := `Title,Author,My Rating,Average Rating,Original Publication Year,Number of Pages,Date Read,Exclusive Shelf
Dune,Frank Herbert,5,4.25,1965,412,2023/06/15,read
  Hyperion  ,Dan Simmons,0,4.23,1989,482,,read
Blindsight,Peter Watts,not a number,4.01,2006,384,,to-read
`
	records, err := parseExport([]byte(csvData), "Thirsa", "thirsa.csv", testLogger())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Dune", records[0].Title)
	assert.Equal(t, "Frank Herbert", records[0].Author)
	assert.Equal(t, "Thirsa", records[0].Member)
	require.NotNil(t, records[0].Rating)
	assert.Equal(t, 5.0, *records[0].Rating)
	require.NotNil(t, records[0].GoodreadsAvg)
	assert.Equal(t, 4.25, *records[0].GoodreadsAvg)
	require.NotNil(t, records[0].PubYear)
	assert.Equal(t, 1965, *records[0].PubYear)
	require.NotNil(t, records[0].ReadDate)
	assert.Equal(t, 2023, records[0].ReadDate.Year())

	// Whitespace is trimmed; a 0 rating means unrated.
	assert.Equal(t, "Hyperion", records[1].Title)
	assert.Nil(t, records[1].Rating)

	// Non-numeric ratings degrade to nil instead of failing the file.
	assert.Nil(t, records[2].Rating)
}

func TestParseExport_SemicolonDelimited(t *testing.T) {
	csvData := "Title;Author;My Rating\nSolaris;Stanislaw Lem;4\n"

	records, err := parseExport([]byte(csvData), "Peter", "peter.csv", testLogger())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Solaris", records[0].Title)
	require.NotNil(t, records[0].Rating)
	assert.Equal(t, 4.0, *records[0].Rating)
}

func TestParseExport_DecimalComma(t *testing.T) {
	csvData := "Title;Author;My Rating;Average Rating\nRoadside Picnic;Strugatsky;4;\"4,12\"\n"

	records, err := parseExport([]byte(csvData), "Robert", "robert.csv", testLogger())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].GoodreadsAvg)
	assert.InDelta(t, 4.12, *records[0].GoodreadsAvg, 1e-9)
}

func TestParseExport_ShortAndLongRows(t *testing.T) {
	csvData := "Title,Author,My Rating\nShort Row,Author Only\nLong Row,Author,3,extra,columns,here\n"

	records, err := parseExport([]byte(csvData), "Koen", "koen.csv", testLogger())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[0].Rating)
	require.NotNil(t, records[1].Rating)
	assert.Equal(t, 3.0, *records[1].Rating)
}

func TestParseExport_MissingTitleColumn(t *testing.T) {
	csvData := "Author,My Rating\nSomebody,4\n"

	_, err := parseExport([]byte(csvData), "Koen", "koen.csv", testLogger())
	assert.Error(t, err)
}

func TestReadExportDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "thirsa.csv", "Title,Author,My Rating\nDune,Frank Herbert,5\n")
	writeFile(t, dir, "peter.csv", "Title,Author,My Rating\nDune,Frank Herbert,4\n")
	writeFile(t, dir, "stranger.csv", "Title,Author,My Rating\nDune,Frank Herbert,1\n")
	writeFile(t, dir, "notes.txt", "not a csv")

	roster := &domain.Roster{Members: []domain.Member{
		{Name: "Thirsa", ExportFile: "thirsa.csv", Active: true},
		{Name: "Peter", ExportFile: "peter.csv", Active: true},
		{Name: "Ghost", ExportFile: "ghost.csv", Active: true},
	}}

	records, err := ReadExportDir(dir, roster, testLogger())
	require.NoError(t, err)

	// stranger.csv is unclaimed, ghost.csv is missing: two rows remain.
	require.Len(t, records, 2)
	members := []string{records[0].Member, records[1].Member}
	assert.ElementsMatch(t, []string{"Thirsa", "Peter"}, members)
}

func TestReadExportDir_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "Title,Author,My Rating\nZima Blue,Reynolds,4\nAurora,Robinson,3\n")
	writeFile(t, dir, "a.csv", "Title,Author,My Rating\nAurora,Robinson,5\n")

	roster := &domain.Roster{Members: []domain.Member{
		{Name: "A", ExportFile: "a.csv", Active: true},
		{Name: "B", ExportFile: "b.csv", Active: true},
	}}

	first, err := ReadExportDir(dir, roster, testLogger())
	require.NoError(t, err)
	second, err := ReadExportDir(dir, roster, testLogger())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Sorted by title key, then member.
	assert.Equal(t, "Aurora", first[0].Title)
	assert.Equal(t, "A", first[0].Member)
	assert.Equal(t, "Aurora", first[1].Title)
	assert.Equal(t, "B", first[1].Member)
	assert.Equal(t, "Zima Blue", first[2].Title)
}

func TestReadExportDir_Empty(t *testing.T) {
	dir := t.TempDir()
	roster := &domain.Roster{Members: []domain.Member{
		{Name: "Thirsa", ExportFile: "thirsa.csv", Active: true},
	}}

	_, err := ReadExportDir(dir, roster, testLogger())
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
