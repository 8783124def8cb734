package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/normalize"
)

func testRoster() *domain.Roster {
	return &domain.Roster{Members: []domain.Member{
		{Name: "Thirsa", ExportFile: "thirsa.csv", Active: true},
		{Name: "Laurynas", Active: true},
		{Name: "Peter", ExportFile: "peter.csv", Active: true},
	}}
}

func TestReadManualRatings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual_ratings.csv")
	content := `Title,Laurynas,Peter,Unknown Person
Dune,4.5,,1
Hyperion,3,4,
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	ratings, err := ReadManualRatings(path, testRoster(), testLogger())
	require.NoError(t, err)

	v, ok := ratings.RatingFor(normalize.TitleKey("Dune"), "Laurynas")
	assert.True(t, ok)
	assert.Equal(t, 4.5, v)

	// Empty cells are absent, not zero.
	_, ok = ratings.RatingFor(normalize.TitleKey("Dune"), "Peter")
	assert.False(t, ok)

	// Columns that match no roster member are dropped.
	_, ok = ratings.RatingFor(normalize.TitleKey("Dune"), "Unknown Person")
	assert.False(t, ok)

	v, ok = ratings.RatingFor(normalize.TitleKey("hyperion"), "Peter")
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
}

func TestReadManualRatings_MissingFileIsEmpty(t *testing.T) {
	ratings, err := ReadManualRatings(filepath.Join(t.TempDir(), "absent.csv"), testRoster(), testLogger())
	require.NoError(t, err)
	assert.Empty(t, ratings)
}

func TestReadManualRatings_NoTitleColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual_ratings.csv")
	require.NoError(t, os.WriteFile(path, []byte("Laurynas,Peter\n4,5\n"), 0o600))

	_, err := ReadManualRatings(path, testRoster(), testLogger())
	assert.Error(t, err)
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.yaml")
	content := `members:
  - name: Thirsa
    export_file: thirsa.csv
    active: true
  - name: Laurynas
    active: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	roster, err := LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, roster.Members, 2)
	assert.Equal(t, "Thirsa", roster.Members[0].Name)
	assert.Equal(t, "thirsa.csv", roster.Members[0].ExportFile)
	assert.True(t, roster.Members[1].Active)
	assert.Empty(t, roster.Members[1].ExportFile)
}

func TestLoadRoster_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty roster", "members: []\n"},
		{"missing name", "members:\n  - export_file: x.csv\n"},
		{"duplicate name", "members:\n  - name: A\n  - name: A\n"},
		{"duplicate export", "members:\n  - name: A\n    export_file: x.csv\n  - name: B\n    export_file: x.csv\n"},
		{"not yaml", "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "members.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := LoadRoster(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRoster_MissingFile(t *testing.T) {
	_, err := LoadRoster(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
