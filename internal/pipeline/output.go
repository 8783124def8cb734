package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bookclubapp/bookclub-server/internal/domain"
	"github.com/bookclubapp/bookclub-server/internal/errors"
	"github.com/bookclubapp/bookclub-server/internal/normalize"
)

// Output file names inside the configured output directory.
const (
	ProcessedFile = "processed_data.csv"
	UnmatchedFile = "goodreads_unmatched.csv"
	CombinedFile  = "goodreads_combined.csv"
)

const dateLayout = "2006-01-02"

// WriteOutputs writes the three pipeline products into dir, creating it if
// needed. Rows and member columns are emitted in a fixed order so that
// re-running the pipeline on unchanged inputs rewrites identical files.
func WriteOutputs(dir string, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "create output directory %s", dir)
	}

	members := result.Roster.Names()

	if err := writeProcessed(filepath.Join(dir, ProcessedFile), result.Reports, members); err != nil {
		return err
	}
	if err := writeUnmatched(filepath.Join(dir, UnmatchedFile), result.Unmatched); err != nil {
		return err
	}
	return writeCombined(filepath.Join(dir, CombinedFile), result.Records)
}

func writeProcessed(path string, reports []domain.BookReport, members []string) error {
	header := []string{"number", "date", "title", "author", "picked_by", "location",
		"original_publication_year", "average_goodreads_rating", "number_of_pages"}
	for _, m := range members {
		header = append(header, normalize.MemberColumn(m))
	}
	header = append(header, "average_club_rating")

	rows := make([][]string, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		row := []string{
			strconv.Itoa(r.Seq),
			r.Date.Format(dateLayout),
			r.Title,
			r.Author,
			r.PickedBy,
			r.Location,
			formatInt(r.PubYear),
			formatFloat(r.GoodreadsAvg),
			formatFloat(r.Pages),
		}
		for _, m := range members {
			if v, ok := r.Ratings[m]; ok {
				row = append(row, formatFloat(&v))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, formatFloat(r.ClubAvg))
		rows = append(rows, row)
	}

	return writeCSV(path, header, rows)
}

func writeUnmatched(path string, meetings []domain.Meeting) error {
	header := []string{"number", "date", "title", "author", "picked_by", "location"}

	rows := make([][]string, 0, len(meetings))
	for _, m := range meetings {
		rows = append(rows, []string{
			strconv.Itoa(m.Seq),
			m.Date.Format(dateLayout),
			m.Title,
			m.Author,
			m.PickedBy,
			m.Location,
		})
	}

	return writeCSV(path, header, rows)
}

func writeCombined(path string, records []domain.RatingRecord) error {
	header := []string{"title", "author", "member", "rating",
		"average_goodreads_rating", "original_publication_year",
		"number_of_pages", "date_read", "source_file"}

	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		readDate := ""
		if r.ReadDate != nil {
			readDate = r.ReadDate.Format(dateLayout)
		}
		pages := ""
		if r.Pages != nil {
			pages = strconv.Itoa(*r.Pages)
		}
		rows = append(rows, []string{
			r.Title,
			r.Author,
			r.Member,
			formatFloat(r.Rating),
			formatFloat(r.GoodreadsAvg),
			formatInt(r.PubYear),
			pages,
			readDate,
			r.SourceFile,
		})
	}

	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path) //#nosec G304 -- output path comes from config
	if err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "write %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "write %s", path)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "flush %s", path)
	}
	return f.Close()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
