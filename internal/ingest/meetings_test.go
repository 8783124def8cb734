package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMeetingLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookclub.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadMeetingLog_DutchHeaders(t *testing.T) {
	path := writeMeetingLog(t, `Nummer,Datum,Boek,Auteur,Wie heeft gekozen?,Locatie
1,01/15/2020,Dune,Frank Herbert,Thirsa,Cafe De Zaak
2,03/01/2020,  Hyperion ,Dan Simmons,Peter,Bij Peter thuis
`)

	meetings, err := ReadMeetingLog(path, testLogger())
	require.NoError(t, err)
	require.Len(t, meetings, 2)

	first := meetings[0]
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Dune", first.Title)
	assert.Equal(t, "Frank Herbert", first.Author)
	assert.Equal(t, "Thirsa", first.PickedBy)
	assert.Equal(t, "Cafe De Zaak", first.Location)
	assert.NotEmpty(t, first.ID)

	// Whitespace in titles is cleaned.
	assert.Equal(t, "Hyperion", meetings[1].Title)
}

func TestReadMeetingLog_EnglishHeaders(t *testing.T) {
	path := writeMeetingLog(t, `Number,Date,Title,Author,Picked by,Location
1,2021-06-12,Solaris,Stanislaw Lem,Robert,Online
`)

	meetings, err := ReadMeetingLog(path, testLogger())
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, time.Date(2021, 6, 12, 0, 0, 0, 0, time.UTC), meetings[0].Date)
	assert.Equal(t, "Robert", meetings[0].PickedBy)
}

func TestReadMeetingLog_BadDate(t *testing.T) {
	path := writeMeetingLog(t, `Nummer,Datum,Boek,Auteur,Wie heeft gekozen?,Locatie
1,someday,Dune,Frank Herbert,Thirsa,Cafe
`)

	_, err := ReadMeetingLog(path, testLogger())
	assert.Error(t, err)
}

func TestReadMeetingLog_SkipsBlankTitles(t *testing.T) {
	path := writeMeetingLog(t, `Nummer,Datum,Boek,Auteur,Wie heeft gekozen?,Locatie
1,01/15/2020,Dune,Frank Herbert,Thirsa,Cafe
2,02/15/2020,,,,
`)

	meetings, err := ReadMeetingLog(path, testLogger())
	require.NoError(t, err)
	assert.Len(t, meetings, 1)
}

func TestReadMeetingLog_Empty(t *testing.T) {
	path := writeMeetingLog(t, "Nummer,Datum,Boek,Auteur,Wie heeft gekozen?,Locatie\n")

	_, err := ReadMeetingLog(path, testLogger())
	assert.Error(t, err)
}

func TestReadMeetingLog_MissingFile(t *testing.T) {
	_, err := ReadMeetingLog(filepath.Join(t.TempDir(), "nope.csv"), testLogger())
	assert.Error(t, err)
}
