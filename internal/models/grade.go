package models

// ScoreSet holds the per-category breakdown used by the sectioned upload
// format. Total is the whole-test score, not a computed sum.
type ScoreSet struct {
	Comprehension  int `json:"comprehension"`
	UnseenProblems int `json:"unseenProblems"`
	Grammar        int `json:"grammar"`
	Vocabulary     int `json:"vocabulary"`
	Listening      int `json:"listening"`
	Total          int `json:"total"`
}

// Grade is one check-test result. Two score shapes coexist in the persisted
// store: legacy records carry Score/MaxScore, newer records carry
// Scores/MaxScores. A record never carries both. Consumers must not branch on
// the shape themselves; TotalPair and Percent are the single place where the
// duality is resolved.
type Grade struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentId"`
	ClassID       string    `json:"classId"`
	Date          string    `json:"date"`
	LessonNumber  int       `json:"lessonNumber"`
	LessonContent string    `json:"lessonContent"`
	Score         *int      `json:"score,omitempty"`
	MaxScore      *int      `json:"maxScore,omitempty"`
	Scores        *ScoreSet `json:"scores,omitempty"`
	MaxScores     *ScoreSet `json:"maxScores,omitempty"`
}

// TotalPair resolves the dual score shape into a (score, max) pair.
func (g Grade) TotalPair() (score, max int) {
	if g.Scores != nil {
		max = 0
		if g.MaxScores != nil {
			max = g.MaxScores.Total
		}
		return g.Scores.Total, max
	}
	if g.Score != nil {
		score = *g.Score
	}
	if g.MaxScore != nil {
		max = *g.MaxScore
	}
	return score, max
}

// Percent returns the rounded percentage for this grade, or 0 when the
// maximum is unknown.
func (g Grade) Percent() int {
	score, max := g.TotalPair()
	if max == 0 {
		return 0
	}
	return int(float64(score)/float64(max)*100 + 0.5)
}
