package ingest

import "strings"

// Row is one data line of a flat document, keyed by header label. Headers are
// arbitrary; every declared header is present in every row, empty when the
// line had fewer values.
type Row map[string]string

// ParseFlat parses the legacy flat layout: line 0 is the header, every later
// non-blank line is zipped against it positionally.
func ParseFlat(text string) ([]Row, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil, ErrEmptyDocument
	}

	headers := SplitLine(lines[0])

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := SplitLine(line)
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(values) {
				row[header] = values[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
