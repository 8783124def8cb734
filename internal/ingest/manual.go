package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/errors"
	"github.com/bookclubapp/bookclub-server/internal/normalize"
)

// ManualRatings holds ratings collected outside Goodreads, keyed by
// normalized title key, then member name. Values follow the same 1-5 scale
// as export ratings.
type ManualRatings map[string]map[string]float64

// RatingFor returns the manual rating for a (title key, member) cell.
func (m ManualRatings) RatingFor(titleKey, member string) (float64, bool) {
	row, ok := m[titleKey]
	if !ok {
		return 0, false
	}
	v, ok := row[member]
	return v, ok
}

// ReadManualRatings reads the manual ratings sheet: a title column followed
// by one column per member. Member columns are matched against the roster;
// unknown columns are logged and ignored. A missing file is not an error —
// most clubs start without one.
func ReadManualRatings(path string, roster *domain.Roster, logger *slog.Logger) (ManualRatings, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- manual ratings path comes from config
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no manual ratings file", "path", path)
			return ManualRatings{}, nil
		}
		return nil, errors.Wrapf(err, errors.CodeBadSource, "read manual ratings %s", path)
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

	titleCol := -1
	memberCols := make(map[int]string)
	for i, h := range header {
		name := normalize.CleanText(h)
		switch {
		case strings.EqualFold(name, "title") || strings.EqualFold(name, "boek"):
			titleCol = i
		case roster.HasMember(name):
			memberCols[i] = name
		case name != "":
			logger.Warn("manual ratings column does not match any member, ignoring", "column", name)
		}
	}
	if titleCol < 0 {
		return nil, errors.BadSourcef("no title column found in %s", sourceFile)
	}

	ratings := ManualRatings{}
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

		if titleCol >= len(row) {
			continue
		}
		key := normalize.TitleKey(row[titleCol])
		if key == "" {
			continue
		}

		for col, member := range memberCols {
			if col >= len(row) {
				continue
			}
			v := parseRating(normalize.CleanText(row[col]))
			if v == nil {
				continue
			}
			if ratings[key] == nil {
				ratings[key] = make(map[string]float64)
			}
			ratings[key][member] = *v
		}
	}

	logger.Debug("parsed manual ratings", "file", sourceFile, "titles", len(ratings))
	return ratings, nil
}
