package service

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aoisorajuku/seiseki-api/internal/models"
	"github.com/aoisorajuku/seiseki-api/internal/repository"
)

func TestStudentListResolvesClassNames(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	dir := t.TempDir()
	writeStaticDoc(t, dir, "classes.json", map[string]interface{}{
		"classes": []models.Class{{ID: "class001", Name: "難関大クラス"}},
	})
	docs := repository.NewStaticDocuments(dir, zerolog.Nop())
	records := repository.NewRecordRepository(client, docs, zerolog.Nop())

	students := []models.Student{
		{ID: "s1", Name: "田中太郎", Grade: "3", ClassID: "class001"},
		{ID: "s2", Name: "鈴木花子", Grade: "2", ClassID: "class999"},
	}
	require.NoError(t, records.SaveRecords(context.Background(), students, nil))

	svc := NewStudentService(records, zerolog.Nop())
	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "難関大クラス", entries[0].ClassName)
	require.Empty(t, entries[1].ClassName)
}
