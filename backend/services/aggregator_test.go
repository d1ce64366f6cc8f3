package services

import (
	"context"
	"testing"
	"time"

	"eduledger/backend/models"
	"eduledger/backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStatisticsNotFound(t *testing.T) {
	_, _, agg := newTestLedger(t)

	_, err := agg.GetUserStatistics(context.Background(), "ghost")
	var se ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Status)
}

func TestFleetSuccessRateWeighsByAttempt(t *testing.T) {
	_, rec, agg := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "carol", "Carol")
	registerStudent(t, rec, "dave", "Dave")
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "carol", "ex1", 90, 100))
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "dave", "ex1", 50, 100))
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "dave", "ex2", 50, 100))
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "dave", "ex3", 50, 100))

	stats, err := agg.GetFleetStatistics(ctx)
	require.NoError(t, err)
	// Global mean over the four attempts, not the mean of per-student averages.
	assert.Equal(t, 60, stats.SuccessRate)
	assert.Equal(t, 2, stats.TotalStudents)
}

func TestFleetExcludesNonStudents(t *testing.T) {
	_, rec, agg := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "carol", "Carol")
	require.NoError(t, rec.RegisterUser(ctx, &models.User{Username: "prof", Name: "Prof", Role: models.RoleTeacher}))

	require.NoError(t, rec.RecordExerciseCompletion(ctx, "carol", "ex1", 80, 100))
	require.NoError(t, rec.RecordExerciseCompletion(ctx, "prof", "ex1", 0, 100))
	require.NoError(t, rec.RecordLessonCompletion(ctx, "carol", "lesson_1", 3600))

	stats, err := agg.GetFleetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalStudents)
	assert.Equal(t, 80, stats.SuccessRate, "teacher attempts must not count")
	assert.Equal(t, uint(3600), stats.TotalStudyTime)
	assert.Equal(t, uint(1), stats.TotalStudyHours)
}

func TestFleetAttendanceBoundary(t *testing.T) {
	store, rec, agg := newTestLedger(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return now }

	registerStudent(t, rec, "early", "Early")
	registerStudent(t, rec, "late", "Late")
	registerStudent(t, rec, "never", "Never")

	justInside := now.Add(-7*24*time.Hour + time.Second) // 6d 23:59:59 ago
	justOutside := now.Add(-7*24*time.Hour - time.Second)

	setLastLogin(t, store, "early", justInside)
	setLastLogin(t, store, "late", justOutside)

	stats, err := agg.GetFleetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveStudents)
	assert.Equal(t, 3, stats.TotalStudents)
	assert.Equal(t, 33, stats.AttendanceRate)
}

func TestFleetEmptyLedger(t *testing.T) {
	store := storage.NewMemoryBackend()
	agg := NewAggregator(store, 12)

	stats, err := agg.GetFleetStatistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalStudents)
	assert.Zero(t, stats.SuccessRate)
	assert.Zero(t, stats.AttendanceRate, "attendance is defined as 0 without students")
	assert.Equal(t, 12, stats.TotalCourses)
}

func TestFleetCountsLessonsAcrossUsers(t *testing.T) {
	_, rec, agg := newTestLedger(t)
	ctx := context.Background()

	registerStudent(t, rec, "carol", "Carol")
	registerStudent(t, rec, "dave", "Dave")
	require.NoError(t, rec.RecordLessonCompletion(ctx, "carol", "lesson_1", 10))
	require.NoError(t, rec.RecordLessonCompletion(ctx, "carol", "lesson_1", 10))
	require.NoError(t, rec.RecordLessonCompletion(ctx, "dave", "lesson_2", 10))

	stats, err := agg.GetFleetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalLessons)
}

func setLastLogin(t *testing.T, store storage.Backend, username string, at time.Time) {
	t.Helper()
	ctx := context.Background()
	user, err := store.Users().Get(ctx, username)
	require.NoError(t, err)
	user.LastLogin = &at
	require.NoError(t, store.Users().Upsert(ctx, user))
}
