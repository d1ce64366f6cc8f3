package services

import (
	"context"
	"math"
	"testing"

	"eduledger/backend/models"
	"eduledger/backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*storage.MemoryBackend, *Recorder, *Aggregator) {
	t.Helper()
	store := storage.NewMemoryBackend()
	return store, NewRecorder(store), NewAggregator(store, 8)
}

func registerStudent(t *testing.T, rec *Recorder, username, name string) {
	t.Helper()
	err := rec.RegisterUser(context.Background(), &models.User{
		Username: username,
		Name:     name,
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	store, rec, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, rec.RegisterUser(ctx, &models.User{Username: "alice", Name: "Alice"}))

	user, err := store.Users().Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Nil(t, user.LastLogin)
	assert.Zero(t, user.CompletedLessons)
}

func TestRegisterDuplicateKeepsHistory(t *testing.T) {
	_, rec, agg := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "alice", "Alice")
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "alice", "ex1", 80, 100))

	err := rec.RegisterUser(ctx, &models.User{Username: "alice", Name: "Impostor"})
	var se ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 409, se.Status)

	stats, err := agg.GetUserStatistics(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(1), stats.CompletedExercises)
	assert.Equal(t, float64(80), stats.AverageScore)
}

func TestExerciseAverage(t *testing.T) {
	store, rec, agg := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "alice", "Alice")
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "alice", "ex1", 80, 100))
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "alice", "ex2", 60, 100))

	stats, err := agg.GetUserStatistics(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, float64(70), stats.AverageScore)
	assert.Equal(t, uint(2), stats.CompletedExercises)

	// The aggregate must equal an independent rescan of the stored records.
	records, err := store.Exercises().ByUser(ctx, "alice")
	require.NoError(t, err)
	total := 0
	for _, r := range records {
		total += r.Percentage
	}
	assert.Equal(t, stats.AverageScore, math.Round(float64(total)/float64(len(records))))
}

func TestExercisePercentageRounding(t *testing.T) {
	_, rec, agg := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "alice", "Alice")
	// 2/3 → 66.67% → rounds to 67
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "alice", "ex1", 2, 3))

	stats, err := agg.GetUserStatistics(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, float64(67), stats.AverageScore)
}

func TestRepeatLessonCountsEachTime(t *testing.T) {
	_, rec, agg := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "bob", "Bob")
	require.NoError(t, rec.RecordLessonCompletion(ctx, "bob", "lesson_1", 20))
	require.NoError(t, rec.RecordLessonCompletion(ctx, "bob", "lesson_1", 30))

	stats, err := agg.GetUserStatistics(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint(2), stats.CompletedLessons)
	assert.Equal(t, uint(50), stats.TotalStudyTime)
}

func TestUnknownUserLeavesNoOrphanRecords(t *testing.T) {
	store, rec, _ := newTestLedger(t)
	ctx := context.Background()

	err := rec.RecordLessonCompletion(ctx, "ghost", "lesson_1", 20)
	var se ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Status)

	events, err := store.Events().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	lessons, err := store.Lessons().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, lessons)
}

func TestExerciseInvalidArguments(t *testing.T) {
	_, rec, _ := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "alice", "Alice")

	var se ServiceError
	require.ErrorAs(t, rec.RecordExerciseCompletion(ctx, "alice", "ex1", 50, 0), &se)
	assert.Equal(t, 400, se.Status)

	require.ErrorAs(t, rec.RecordExerciseCompletion(ctx, "alice", "ex1", 120, 100), &se)
	assert.Equal(t, 400, se.Status)
}

func TestLoginStampsUserAndOpensSession(t *testing.T) {
	store, rec, _ := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "alice", "Alice")
	require.NoError(t, rec.RecordLogin(ctx, "alice"))

	user, err := store.Users().Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)

	sessions, err := store.Sessions().ByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Zero(t, sessions[0].Duration)

	events, err := store.Events().ByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventLogin, events[0].Type)
}

func TestLogoutAppendsEventOnly(t *testing.T) {
	store, rec, agg := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "alice", "Alice")
	require.NoError(t, rec.RecordLogout(ctx, "alice"))

	events, err := store.Events().ByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventLogout, events[0].Type)

	stats, err := agg.GetUserStatistics(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, stats.CompletedLessons)
	assert.Zero(t, stats.CompletedExercises)
}

func TestContentViewAppendsEvent(t *testing.T) {
	store, rec, _ := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "alice", "Alice")
	require.NoError(t, rec.RecordContentView(ctx, "alice", "chapter_3"))

	events, err := store.Events().ByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventContentViewed, events[0].Type)
	assert.Contains(t, string(events[0].Details), "chapter_3")
}
