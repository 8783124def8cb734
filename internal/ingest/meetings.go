package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/errors"
	"github.com/bookclubapp/bookclub-server/internal/id"
)

// The meeting log started life as a Dutch spreadsheet; both header sets are
// accepted so the sheet can be renamed without breaking the pipeline.
var meetingAliases = map[string][]string{
	"seq":      {"nummer", "number", "index"},
	"date":     {"datum", "date"},
	"title":    {"boek", "title", "book"},
	"author":   {"auteur", "author"},
	"picked":   {"wie heeft gekozen?", "picked by", "suggested by", "blame"},
	"location": {"locatie", "location"},
}

// date layouts seen in the meeting log. The sheet uses US-style m/d/Y.
var meetingDateLayouts = []string{"1/2/2006", "01/02/2006", "2006-01-02"}

// ReadMeetingLog reads the manually maintained meeting log CSV. Every row
// becomes one Meeting; rows without a parsable date are rejected rather than
// guessed at, since the log is the source of truth for the club timeline.
func ReadMeetingLog(path string, logger *slog.Logger) ([]domain.Meeting, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- meeting log path comes from config
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeBadSource, "read meeting log %s", path)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(firstLine(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	sourceFile := filepath.Base(path)

	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeBadSource, "read header of %s", sourceFile)
	}

	idx, err := buildMeetingHeaderIndex(header)
	if err != nil {
		return nil, err
	}

	var meetings []domain.Meeting
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeBadSource, "parse %s line %d", sourceFile, line)
		}

		title := idx.field(row, "title")
		if title == "" {
			continue
		}

		dateStr := idx.field(row, "date")
		date, ok := parseMeetingDate(dateStr)
		if !ok {
			return nil, errors.BadSourcef("%s line %d: unparsable meeting date %q", sourceFile, line, dateStr)
		}

		seq := len(meetings) + 1
		if s := idx.field(row, "seq"); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				seq = n
			}
		}

		meetings = append(meetings, domain.Meeting{
			ID:       id.MustGenerate("meet"),
			Seq:      seq,
			Date:     date,
			Title:    title,
			Author:   idx.field(row, "author"),
			PickedBy: idx.field(row, "picked"),
			Location: idx.field(row, "location"),
		})
	}

	if len(meetings) == 0 {
		return nil, errors.BadSourcef("meeting log %s contains no meetings", sourceFile)
	}

	logger.Debug("parsed meeting log", "file", sourceFile, "meetings", len(meetings))
	return meetings, nil
}

func buildMeetingHeaderIndex(header []string) (headerIndex, error) {
	idx, err := buildHeaderIndex(header, meetingAliases)
	if err != nil {
		return nil, err
	}
	if _, ok := idx["date"]; !ok {
		return nil, errors.BadSource("no date column found in meeting log header")
	}
	return idx, nil
}

func parseMeetingDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range meetingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
