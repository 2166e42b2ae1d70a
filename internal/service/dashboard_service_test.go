package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aoisorajuku/seiseki-api/internal/models"
	"github.com/aoisorajuku/seiseki-api/internal/repository"
)

func intPtr(v int) *int { return &v }

func writeStaticDoc(t *testing.T, dir, file string, doc interface{}) {
	t.Helper()
	payload, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), payload, 0o644))
}

func newDashboardEnv(t *testing.T) (DashboardService, repository.RecordRepository, *redis.Client) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	dir := t.TempDir()
	writeStaticDoc(t, dir, "classes.json", map[string]interface{}{
		"classes": []models.Class{
			{ID: "class001", Name: "難関大クラス", Day: "月", Time: "18:00", Capacity: 4},
			{ID: "class002", Name: "標準クラス", Day: "火", Time: "19:00", Capacity: 10},
		},
	})
	writeStaticDoc(t, dir, "attendance.json", map[string]interface{}{
		"attendance": []models.Attendance{
			{StudentID: "s1", Date: "2026-01-05", Status: "出席"},
			{StudentID: "s1", Date: "2026-01-12", Status: "欠席"},
			{StudentID: "s1", Date: "2026-01-19", Status: "出席"},
			{StudentID: "s1", Date: "2026-01-26", Status: "出席"},
			{StudentID: "s2", Date: "2026-01-05", Status: "出席"},
		},
	})

	docs := repository.NewStaticDocuments(dir, zerolog.Nop())
	records := repository.NewRecordRepository(client, docs, zerolog.Nop())
	svc := NewDashboardService(records, client, time.Minute, zerolog.Nop())
	return svc, records, client
}

func seedDashboardRecords(t *testing.T, records repository.RecordRepository) {
	t.Helper()

	students := []models.Student{
		{ID: "s1", Name: "田中太郎", ClassID: "class001", JoinDate: "2025-04-01"},
		{ID: "s2", Name: "鈴木花子", ClassID: "class001", JoinDate: "2025-04-01"},
		{ID: "s3", Name: "佐藤次郎", ClassID: "class002", JoinDate: "2025-04-01"},
	}
	// s1 carries both score shapes: one legacy record and one sectioned one.
	grades := []models.Grade{
		{ID: "g1", StudentID: "s1", ClassID: "class001", Date: "2026-01-12", LessonNumber: 2,
			Scores:    &models.ScoreSet{Total: 85},
			MaxScores: &models.ScoreSet{Comprehension: 20, UnseenProblems: 20, Grammar: 20, Vocabulary: 20, Listening: 20, Total: 100}},
		{ID: "g2", StudentID: "s1", ClassID: "class001", Date: "2026-01-05", LessonNumber: 1,
			Score: intPtr(40), MaxScore: intPtr(50)},
		{ID: "g3", StudentID: "s2", ClassID: "class001", Date: "2026-01-05", LessonNumber: 1,
			Score: intPtr(45), MaxScore: intPtr(50)},
	}

	require.NoError(t, records.SaveRecords(context.Background(), students, grades))
}

func TestStudentDashboardResolvesDualScoreShapes(t *testing.T) {
	svc, records, _ := newDashboardEnv(t)
	seedDashboardRecords(t, records)

	response, err := svc.StudentDashboard(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "田中太郎", response.StudentName)
	require.Equal(t, "難関大クラス", response.ClassName)

	require.Len(t, response.Grades, 2)
	// Chronological order regardless of storage order.
	require.Equal(t, "2026-01-05", response.Grades[0].Date)
	require.Equal(t, 40, response.Grades[0].Score)
	require.Equal(t, 50, response.Grades[0].MaxScore)
	require.Equal(t, 80, response.Grades[0].Percent)
	require.Equal(t, "2026-01-12", response.Grades[1].Date)
	require.Equal(t, 85, response.Grades[1].Score)
	require.Equal(t, 100, response.Grades[1].MaxScore)

	// (80 + 85) / 2 = 82.5, rounded half up.
	require.Equal(t, 83, response.StudentAverage)
	// class001 grades: 80, 85, 90.
	require.Equal(t, 85, response.ClassAverage)
}

func TestStudentDashboardAttendanceRate(t *testing.T) {
	svc, records, _ := newDashboardEnv(t)
	seedDashboardRecords(t, records)

	response, err := svc.StudentDashboard(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, response.Attendance, 4)
	require.Equal(t, 75, response.AttendanceRate)
}

func TestStudentDashboardUnknownStudent(t *testing.T) {
	svc, records, _ := newDashboardEnv(t)
	seedDashboardRecords(t, records)

	_, err := svc.StudentDashboard(context.Background(), "s99")
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentDashboardCaches(t *testing.T) {
	svc, records, client := newDashboardEnv(t)
	seedDashboardRecords(t, records)
	ctx := context.Background()

	first, err := svc.StudentDashboard(ctx, "s1")
	require.NoError(t, err)

	exists, err := client.Exists(ctx, "dashboard:student:s1").Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), exists)

	// Change the store; the cached view is served until it expires.
	require.NoError(t, records.SaveRecords(ctx, []models.Student{{ID: "s1", Name: "改名した"}}, nil))

	second, err := svc.StudentDashboard(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, first.StudentName, second.StudentName)
}

func TestClassSummaries(t *testing.T) {
	svc, records, _ := newDashboardEnv(t)
	seedDashboardRecords(t, records)

	summaries, err := svc.ClassSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	require.Equal(t, "class001", summaries[0].ClassID)
	require.Equal(t, 2, summaries[0].Enrolled)
	require.Equal(t, 50, summaries[0].OccupancyRate)
	require.Equal(t, 85, summaries[0].Average)

	require.Equal(t, "class002", summaries[1].ClassID)
	require.Equal(t, 1, summaries[1].Enrolled)
	require.Equal(t, 10, summaries[1].OccupancyRate)
	require.Zero(t, summaries[1].Average)
}
