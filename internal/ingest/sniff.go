package ingest

// candidate delimiters, in preference order on a tie.
var delimiters = []rune{',', ';', '\t', '|'}

// sniffDelimiter inspects the header line of a CSV file and picks the
// delimiter with the most occurrences outside quoted sections. Exports come
// from different spreadsheet locales, so semicolons and tabs show up in
// practice. Falls back to comma when nothing matches.
func sniffDelimiter(header string) rune {
	counts := make(map[rune]int, len(delimiters))

	inQuotes := false
	for _, r := range header {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		for _, d := range delimiters {
			if r == d {
				counts[d]++
			}
		}
	}

	best := ','
	bestCount := 0
	for _, d := range delimiters {
		if counts[d] > bestCount {
			best = d
			bestCount = counts[d]
		}
	}
	return best
}

// firstLine returns the first line of data without the trailing newline or
// carriage return.
func firstLine(data []byte) string {
	for i, b := range data {
		if b == '\n' {
			if i > 0 && data[i-1] == '\r' {
				return string(data[:i-1])
			}
			return string(data[:i])
		}
	}
	return string(data)
}
