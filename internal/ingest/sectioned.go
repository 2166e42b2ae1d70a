package ingest

import (
	"strconv"
	"strings"
)

// Section marker lines. Both the long form and the bare form are accepted.
const (
	StudentSectionMarker     = "【生徒データ】セクション"
	StudentSectionBareMarker = "【生徒データ】"
	GradeSectionMarker       = "【チェックテスト成績】セクション"
	GradeSectionBareMarker   = "【チェックテスト成績】"
)

// Minimum field counts for a data row to be dispatched to a builder. Shorter
// rows are skipped without error.
const (
	studentMinFields = 11
	gradeMinFields   = 10
)

// StudentRow is one parsed line of the student section, 11 positional
// columns, all kept as text.
type StudentRow struct {
	StudentCode      string
	Classroom        string
	Name             string
	NameKana         string
	Gender           string
	HighSchool       string
	CourseSubject    string
	SchoolClass      string
	Club             string
	TargetUniversity string
	TargetDept       string
}

// GradeRow is one parsed line of the grade section, 10 positional columns.
// Numeric columns fall back to 0 when they fail to parse.
type GradeRow struct {
	Name           string
	LessonNumber   int
	LessonContent  string
	Date           string
	Comprehension  int
	UnseenProblems int
	Grammar        int
	Vocabulary     int
	Listening      int
	Total          int
}

// SectionedDocument is the result of parsing a sectioned upload.
// SkippedRows counts comma-containing data lines that were dropped for
// having fewer fields than their section's minimum.
type SectionedDocument struct {
	Students    []StudentRow
	Grades      []GradeRow
	SkippedRows int
}

// ParseSectioned parses the sectioned layout. Marker lines switch the active
// section and are consumed; blank lines are skipped; within a section the
// first comma-containing line is the header and every later comma-containing
// line with enough fields is built. A document yielding zero students fails
// with a *FormatError, which is also how flat documents fed to this parser
// are detected.
func ParseSectioned(text string) (*SectionedDocument, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	doc := &SectionedDocument{}
	section := ""
	studentHeaderSeen := false
	gradeHeaderSeen := false

	for _, rawLine := range lines {
		line := strings.TrimSpace(rawLine)

		switch line {
		case StudentSectionMarker, StudentSectionBareMarker:
			section = "students"
			continue
		case GradeSectionMarker, GradeSectionBareMarker:
			section = "grades"
			continue
		case "":
			continue
		}

		if !strings.Contains(line, ",") {
			continue
		}

		switch section {
		case "students":
			if !studentHeaderSeen {
				studentHeaderSeen = true
				continue
			}
			values := SplitLine(line)
			if len(values) < studentMinFields {
				doc.SkippedRows++
				continue
			}
			doc.Students = append(doc.Students, buildStudentRow(values))
		case "grades":
			if !gradeHeaderSeen {
				gradeHeaderSeen = true
				continue
			}
			values := SplitLine(line)
			if len(values) < gradeMinFields {
				doc.SkippedRows++
				continue
			}
			doc.Grades = append(doc.Grades, buildGradeRow(values))
		}
	}

	if len(doc.Students) == 0 {
		return nil, &FormatError{Section: StudentSectionBareMarker}
	}

	return doc, nil
}

func buildStudentRow(values []string) StudentRow {
	return StudentRow{
		StudentCode:      values[0],
		Classroom:        values[1],
		Name:             values[2],
		NameKana:         values[3],
		Gender:           values[4],
		HighSchool:       values[5],
		CourseSubject:    values[6],
		SchoolClass:      values[7],
		Club:             values[8],
		TargetUniversity: values[9],
		TargetDept:       values[10],
	}
}

func buildGradeRow(values []string) GradeRow {
	return GradeRow{
		Name:           values[0],
		LessonNumber:   intOrZero(values[1]),
		LessonContent:  values[2],
		Date:           values[3],
		Comprehension:  intOrZero(values[4]),
		UnseenProblems: intOrZero(values[5]),
		Grammar:        intOrZero(values[6]),
		Vocabulary:     intOrZero(values[7]),
		Listening:      intOrZero(values[8]),
		Total:          intOrZero(values[9]),
	}
}

// intOrZero is the documented coercion policy: malformed numerics become 0,
// never a parse error.
func intOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
