// Package ingest parses the two delimited-text upload layouts used for bulk
// roster and grade uploads: the legacy flat layout (single header row,
// arbitrary columns) and the sectioned layout (marker lines separating a
// fixed-schema student block and grade block). It has no store dependencies;
// the merge engine in the service layer consumes its output.
package ingest

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument indicates the document had no data rows after the header.
var ErrEmptyDocument = errors.New("CSVファイルが空です")

// FormatError indicates a sectioned parse produced no student records. The
// upload path uses it to route ambiguous documents to the flat parser.
type FormatError struct {
	Section string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%sセクションが見つかるか、データが空です", e.Section)
}

// ValidationError reports the first flat-path row that violated a field
// constraint. Field is the offending header label; the message is surfaced
// verbatim to the uploader.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
