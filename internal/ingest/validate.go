package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

// Flat-path roster header labels.
const (
	HeaderName             = "氏名"
	HeaderHighSchool       = "高校"
	HeaderGender           = "性別"
	HeaderGrade            = "学年"
	HeaderTargetUniversity = "志望大学"
	HeaderClassID          = "講座ID"
)

// RequiredRosterFields lists the flat-path required headers in the order they
// are checked.
var RequiredRosterFields = []string{
	HeaderName,
	HeaderHighSchool,
	HeaderGender,
	HeaderGrade,
	HeaderTargetUniversity,
	HeaderClassID,
}

var gradePattern = regexp.MustCompile(`^[1-3]$`)

// ValidateRoster checks flat-path rows against the required roster fields.
// It fails on the first violation, scanning rows in order and fields in
// declared order; any failure rejects the whole batch.
func ValidateRoster(rows []Row) error {
	for _, row := range rows {
		for _, field := range RequiredRosterFields {
			if strings.TrimSpace(row[field]) == "" {
				return &ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%sが入力されていない行があります", field),
				}
			}
		}

		if !gradePattern.MatchString(row[HeaderGrade]) {
			return &ValidationError{
				Field:   HeaderGrade,
				Message: "学年は1, 2, 3のいずれかを入力してください",
			}
		}

		if g := row[HeaderGender]; g != "男" && g != "女" {
			return &ValidationError{
				Field:   HeaderGender,
				Message: "性別は「男」または「女」を入力してください",
			}
		}
	}

	return nil
}
