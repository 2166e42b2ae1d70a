package ingest

import (
	"strconv"
	"strings"
)

// Template returns the canonical sample document handed to teachers as the
// upload template. The sample rows double as format documentation.
func Template() string {
	var b strings.Builder

	b.WriteString(StudentSectionMarker + "\n")
	b.WriteString("生徒コード,教室,氏名,シメイ,性,高校,学科,学校クラス,部活,志望大学,志望学部\n")
	b.WriteString("s001,難関大クラス,田中太郎,たなかたろう,男,県立第一高校,理系,3-A,英語部,東京大学,工学部\n")
	b.WriteString("s002,難関大クラス,鈴木花子,すずきはなこ,女,県立女子高校,文系,3-B,演劇部,京都大学,文学部\n")
	b.WriteString("\n")
	b.WriteString(GradeSectionMarker + "\n")
	b.WriteString("氏名,授業回,授業内容,日付,授業内容の理解,初見問題,文法語法,単語,リスニング,合計\n")
	b.WriteString("田中太郎,1,文法基礎：時制,2026-02-02,18,16,19,17,15,85\n")
	b.WriteString("田中太郎,2,長文読解：社会評論,2026-02-09,19,18,16,19,17,89\n")
	b.WriteString("鈴木花子,1,文法基礎：時制,2026-02-02,20,19,20,19,18,96\n")

	return b.String()
}

var studentExportHeader = []string{
	"生徒コード", "教室", "氏名", "シメイ", "性", "高校", "学科", "学校クラス", "部活", "志望大学", "志望学部",
}

var gradeExportHeader = []string{
	"氏名", "授業回", "授業内容", "日付", "授業内容の理解", "初見問題", "文法語法", "単語", "リスニング", "合計",
}

// WriteSectioned serializes a document back into the sectioned layout, the
// inverse of ParseSectioned. Every field is quoted unconditionally and rows
// are joined with a bare newline.
func WriteSectioned(doc SectionedDocument) string {
	var rows []string

	rows = append(rows, StudentSectionMarker)
	rows = append(rows, quoteRow(studentExportHeader))
	for _, s := range doc.Students {
		rows = append(rows, quoteRow([]string{
			s.StudentCode, s.Classroom, s.Name, s.NameKana, s.Gender,
			s.HighSchool, s.CourseSubject, s.SchoolClass, s.Club,
			s.TargetUniversity, s.TargetDept,
		}))
	}

	rows = append(rows, "")
	rows = append(rows, GradeSectionMarker)
	rows = append(rows, quoteRow(gradeExportHeader))
	for _, g := range doc.Grades {
		rows = append(rows, quoteRow([]string{
			g.Name,
			strconv.Itoa(g.LessonNumber),
			g.LessonContent,
			g.Date,
			strconv.Itoa(g.Comprehension),
			strconv.Itoa(g.UnseenProblems),
			strconv.Itoa(g.Grammar),
			strconv.Itoa(g.Vocabulary),
			strconv.Itoa(g.Listening),
			strconv.Itoa(g.Total),
		}))
	}

	return strings.Join(rows, "\n")
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
	}
	return strings.Join(quoted, ",")
}
