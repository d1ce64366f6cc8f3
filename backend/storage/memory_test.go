package storage

import (
	"context"
	"errors"
	"testing"

	"eduledger/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUsersCreateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	err := m.Users().Create(ctx, &models.User{Username: "alice", Role: models.RoleStudent})
	require.NoError(t, err)

	err = m.Users().Create(ctx, &models.User{Username: "alice", Name: "Impostor"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	user, err := m.Users().Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, user.Name, "original record must not be overwritten")
}

func TestMemoryUsersGetMissing(t *testing.T) {
	m := NewMemoryBackend()
	_, err := m.Users().Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryEventsPerUserOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	for _, eventType := range []string{models.EventLogin, models.EventLessonCompleted, models.EventLogout} {
		err := m.Events().Append(ctx, &models.Event{Username: "alice", Type: eventType})
		require.NoError(t, err)
	}
	err := m.Events().Append(ctx, &models.Event{Username: "bob", Type: models.EventLogin})
	require.NoError(t, err)

	events, err := m.Events().ByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventLogin, events[0].Type)
	assert.Equal(t, models.EventLessonCompleted, events[1].Type)
	assert.Equal(t, models.EventLogout, events[2].Type)
	assert.True(t, events[0].ID < events[1].ID && events[1].ID < events[2].ID)
}

func TestMemoryTransactRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Users().Create(ctx, &models.User{Username: "alice"}))

	failure := errors.New("boom")
	err := m.Transact(ctx, func(tx Backend) error {
		if err := tx.Events().Append(ctx, &models.Event{Username: "alice", Type: models.EventLogin}); err != nil {
			return err
		}
		user, err := tx.Users().Get(ctx, "alice")
		if err != nil {
			return err
		}
		user.CompletedLessons = 99
		if err := tx.Users().Upsert(ctx, user); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)

	events, err := m.Events().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, events, "appended event must be rolled back")

	user, err := m.Users().Get(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, user.CompletedLessons, "aggregate update must be rolled back")
}

func TestMemoryTransactCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Users().Create(ctx, &models.User{Username: "alice"}))

	err := m.Transact(ctx, func(tx Backend) error {
		if err := tx.Lessons().Append(ctx, &models.LessonCompletion{Username: "alice", LessonID: "lesson_1"}); err != nil {
			return err
		}
		return tx.Events().Append(ctx, &models.Event{Username: "alice", Type: models.EventLessonCompleted})
	})
	require.NoError(t, err)

	lessons, err := m.Lessons().ByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, lessons, 1)

	events, err := m.Events().ByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestMemoryUpsertReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	require.NoError(t, m.Users().Create(ctx, &models.User{Username: "alice", CompletedLessons: 2, TotalStudyTime: 100}))

	replacement := models.User{Username: "alice", CompletedLessons: 3}
	require.NoError(t, m.Users().Upsert(ctx, &replacement))

	user, err := m.Users().Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(3), user.CompletedLessons)
	assert.Zero(t, user.TotalStudyTime)
}
