package ingest

import "strings"

// SplitLine splits one line of delimited text into fields. A double quote
// toggles the in-quotes state and is never emitted; commas split only outside
// quotes. Each field is whitespace-trimmed, then at most one leading and one
// trailing quote are stripped. The final accumulator is always emitted, so an
// empty line yields a single empty field. An unterminated quote swallows the
// rest of the line without error.
//
// Doubled quotes are NOT an escape sequence. This matches the documents the
// school actually produces; a standards-strict reader would reject them.
func SplitLine(line string) []string {
	var fields []string
	var current strings.Builder
	insideQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			insideQuotes = !insideQuotes
		case r == ',' && !insideQuotes:
			fields = append(fields, finishField(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	fields = append(fields, finishField(current.String()))
	return fields
}

func finishField(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}
