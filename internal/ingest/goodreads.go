// Package ingest normalizes raw source files (Goodreads exports, the meeting
// log, manual ratings, the member registry) into canonical domain records.
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/errors"
	"github.com/bookclubapp/bookclub-server/internal/normalize"
)

// Canonical Goodreads export fields. Header matching is case-insensitive and
// tolerant of the column drift between export vintages.
var goodreadsAliases = map[string][]string{
	"title":   {"title", "boek"},
	"author":  {"author", "auteur"},
	"rating":  {"my rating", "rating"},
	"gr_avg":  {"average rating", "average goodreads rating"},
	"year":    {"original publication year", "year published"},
	"pages":   {"number of pages", "pages"},
	"read_at": {"date read"},
}

// date layouts seen in Goodreads exports.
var readDateLayouts = []string{"2006/01/02", "2006-01-02", "01/02/2006"}

// headerIndex maps canonical field names to column positions for one file.
type headerIndex map[string]int

// buildHeaderIndex resolves the canonical fields against a raw header row.
// Only title and author are mandatory; everything else degrades to nil
// fields on the record.
func buildHeaderIndex(header []string, aliases map[string][]string) (headerIndex, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(normalize.CleanText(h))] = i
	}

	idx := make(headerIndex, len(aliases))
	for field, names := range aliases {
		for _, name := range names {
			if col, ok := byName[name]; ok {
				idx[field] = col
				break
			}
		}
	}

	if _, ok := idx["title"]; !ok {
		return nil, errors.BadSource("no title column found in header")
	}
	if _, ok := idx["author"]; !ok {
		return nil, errors.BadSource("no author column found in header")
	}
	return idx, nil
}

// field returns the cleaned cell for a canonical field, or "" when the
// column is absent or the row is short.
func (idx headerIndex) field(row []string, name string) string {
	col, ok := idx[name]
	if !ok || col >= len(row) {
		return ""
	}
	return normalize.CleanText(row[col])
}

// ReadExport reads one member's Goodreads export and returns canonical
// rating records. The raw file may use any delimiter, quoting style, and
// column count; rows that cannot be attributed to a title are dropped.
//
// Ratings of 0 become nil: Goodreads encodes "shelved but never rated" as a
// zero, and counting those as actual scores would drag every average down.
func ReadExport(path, member string, logger *slog.Logger) ([]domain.RatingRecord, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- export paths come from the member registry
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeBadSource, "read export %s", path)
	}
	return parseExport(data, member, filepath.Base(path), logger)
}

func parseExport(data []byte, member, sourceFile string, logger *slog.Logger) ([]domain.RatingRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(firstLine(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1 // exports disagree on column counts

	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeBadSource, "read header of %s", sourceFile)
	}

	idx, err := buildHeaderIndex(header, goodreadsAliases)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeBadSource, "parse header of %s", sourceFile)
	}

	var records []domain.RatingRecord
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
			// Blank padding rows at the end of exports are common.
			continue
		}

		rec := domain.RatingRecord{
			Title:      title,
			Author:     idx.field(row, "author"),
			Member:     member,
			SourceFile: sourceFile,
		}

		rec.Rating = parseRating(idx.field(row, "rating"))
		rec.GoodreadsAvg = parseFloat(idx.field(row, "gr_avg"))
		rec.PubYear = parseInt(idx.field(row, "year"))
		rec.Pages = parseInt(idx.field(row, "pages"))
		rec.ReadDate = parseReadDate(idx.field(row, "read_at"))

		records = append(records, rec)
	}

	logger.Debug("parsed export", "file", sourceFile, "member", member, "rows", len(records))
	return records, nil
}

// ReadExportDir reads every registered export under dir and combines the
// results. Files in dir that no member claims are logged and skipped;
// registered files that are missing from dir are reported the same way. The
// combined slice is sorted for deterministic downstream output regardless of
// directory iteration order.
func ReadExportDir(dir string, roster *domain.Roster, logger *slog.Logger) ([]domain.RatingRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeBadSource, "read export directory %s", dir)
	}

	mapping := roster.ReviewerMapping()
	present := make(map[string]bool, len(entries))

	var combined []domain.RatingRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		present[entry.Name()] = true

		member, ok := mapping[entry.Name()]
		if !ok {
			logger.Warn("export file not claimed by any member, skipping", "file", entry.Name())
			continue
		}

		records, err := ReadExport(filepath.Join(dir, entry.Name()), member, logger)
		if err != nil {
			return nil, err
		}
		combined = append(combined, records...)
	}

	for file, member := range mapping {
		if !present[file] {
			logger.Warn("registered export file missing", "file", file, "member", member)
		}
	}

	if len(combined) == 0 {
		return nil, errors.BadSourcef("no readable member exports found in %s", dir)
	}

	sortRecords(combined)
	return combined, nil
}

// sortRecords orders rating records by (title key, member, source file).
// Concatenation of exports is order-independent, so re-runs produce the same
// combined table no matter how the OS lists the directory.
func sortRecords(records []domain.RatingRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ki, kj := normalize.TitleKey(records[i].Title), normalize.TitleKey(records[j].Title)
		if ki != kj {
			return ki < kj
		}
		if records[i].Member != records[j].Member {
			return records[i].Member < records[j].Member
		}
		return records[i].SourceFile < records[j].SourceFile
	})
}

// parseRating parses a member rating, treating 0, negatives, and non-numeric
// values as "no rating".
func parseRating(s string) *float64 {
	v := parseFloat(s)
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	// Some locales export decimal commas.
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Exports sometimes render integers as floats ("2020.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n := int(f)
		return &n
	}
	return &v
}

func parseReadDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range readDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
