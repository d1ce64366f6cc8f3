package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"eduledger/backend/models"
	"eduledger/backend/storage"

	"gorm.io/datatypes"
)

// Recorder is the write side of the progress ledger. Every operation
// appends its event and applies the matching aggregate update inside one
// storage transaction, so readers never observe one without the other.
//
// Against a backend without multi-record transactions the aggregate update
// degrades to read-modify-write, and two truly concurrent writers to the
// same user can lose an update (last writer wins). Expected concurrency is
// one human per username, so this is accepted rather than locked around.
type Recorder struct {
	store storage.Backend
	now   func() time.Time
}

func NewRecorder(store storage.Backend) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// RegisterUser creates the aggregate record for a new username. A duplicate
// username is rejected, never merged, so re-registration cannot touch an
// existing user's history.
func (r *Recorder) RegisterUser(ctx context.Context, user *models.User) error {
	if user.Username == "" {
		return ErrInvalidArgument("username is required")
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	user.RegistrationDate = r.now()
	user.LastLogin = nil
	user.TotalStudyTime = 0
	user.CompletedLessons = 0
	user.CompletedExercises = 0
	user.AverageScore = 0

	err := r.store.Users().Create(ctx, user)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return ErrAlreadyExists(user.Username)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// RecordLogin appends a login event and an open session record, and stamps
// the user's last login.
func (r *Recorder) RecordLogin(ctx context.Context, username string) error {
	return r.store.Transact(ctx, func(tx storage.Backend) error {
		user, err := loadUser(ctx, tx, username)
		if err != nil {
			return err
		}
		now := r.now()
		if err := tx.Sessions().Append(ctx, &models.Session{
			Username:  username,
			LoginDate: now,
			Duration:  0,
		}); err != nil {
			return fmt.Errorf("append session: %w", err)
		}
		if err := appendEvent(ctx, tx, username, models.EventLogin, nil, now); err != nil {
			return err
		}
		user.LastLogin = &now
		if err := tx.Users().Upsert(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
}

// RecordLessonCompletion appends a lesson completion and its event, then
// bumps the user's completed-lesson count and study time. Repeat
// completions of the same lesson each count independently.
func (r *Recorder) RecordLessonCompletion(ctx context.Context, username, lessonID string, durationSeconds uint) error {
	if lessonID == "" {
		return ErrInvalidArgument("lessonId is required")
	}
	return r.store.Transact(ctx, func(tx storage.Backend) error {
		user, err := loadUser(ctx, tx, username)
		if err != nil {
			return err
		}
		now := r.now()
		if err := tx.Lessons().Append(ctx, &models.LessonCompletion{
			Username:      username,
			LessonID:      lessonID,
			CompletedDate: now,
			Duration:      durationSeconds,
		}); err != nil {
			return fmt.Errorf("append lesson completion: %w", err)
		}
		details := map[string]interface{}{"lessonId": lessonID, "duration": durationSeconds}
		if err := appendEvent(ctx, tx, username, models.EventLessonCompleted, details, now); err != nil {
			return err
		}
		user.CompletedLessons++
		user.TotalStudyTime += durationSeconds
		if err := tx.Users().Upsert(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
}

// RecordExerciseCompletion appends an exercise completion and its event,
// then recomputes the user's average score over the full exercise history.
// The full rescan keeps the average exactly equal to the mean of the stored
// percentages; per-user exercise counts are small enough that the O(n) scan
// per write does not matter.
func (r *Recorder) RecordExerciseCompletion(ctx context.Context, username, exerciseID string, score, maxScore int) error {
	if exerciseID == "" {
		return ErrInvalidArgument("exerciseId is required")
	}
	if maxScore <= 0 {
		return ErrInvalidArgument("maxScore must be positive")
	}
	if score < 0 || score > maxScore {
		return ErrInvalidArgument("score must be between 0 and maxScore")
	}
	percentage := int(math.Round(float64(score) / float64(maxScore) * 100))

	return r.store.Transact(ctx, func(tx storage.Backend) error {
		user, err := loadUser(ctx, tx, username)
		if err != nil {
			return err
		}
		now := r.now()
		if err := tx.Exercises().Append(ctx, &models.ExerciseCompletion{
			Username:      username,
			ExerciseID:    exerciseID,
			Score:         score,
			MaxScore:      maxScore,
			Percentage:    percentage,
			CompletedDate: now,
		}); err != nil {
			return fmt.Errorf("append exercise completion: %w", err)
		}
		details := map[string]interface{}{"exerciseId": exerciseID, "score": score, "percentage": percentage}
		if err := appendEvent(ctx, tx, username, models.EventExerciseCompleted, details, now); err != nil {
			return err
		}

		all, err := tx.Exercises().ByUser(ctx, username)
		if err != nil {
			return fmt.Errorf("load exercise history: %w", err)
		}
		total := 0
		for _, rec := range all {
			total += rec.Percentage
		}
		user.AverageScore = math.Round(float64(total) / float64(len(all)))
		user.CompletedExercises++
		if err := tx.Users().Upsert(ctx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
}

// RecordLogout appends a logout event. No aggregate fields change.
func (r *Recorder) RecordLogout(ctx context.Context, username string) error {
	return r.store.Transact(ctx, func(tx storage.Backend) error {
		if _, err := loadUser(ctx, tx, username); err != nil {
			return err
		}
		return appendEvent(ctx, tx, username, models.EventLogout, nil, r.now())
	})
}

// RecordContentView appends a content_viewed event. No aggregate fields
// change.
func (r *Recorder) RecordContentView(ctx context.Context, username, contentID string) error {
	if contentID == "" {
		return ErrInvalidArgument("contentId is required")
	}
	return r.store.Transact(ctx, func(tx storage.Backend) error {
		if _, err := loadUser(ctx, tx, username); err != nil {
			return err
		}
		details := map[string]interface{}{"contentId": contentID}
		return appendEvent(ctx, tx, username, models.EventContentViewed, details, r.now())
	})
}

func loadUser(ctx context.Context, tx storage.Backend, username string) (*models.User, error) {
	user, err := tx.Users().Get(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound(username)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func appendEvent(ctx context.Context, tx storage.Backend, username, eventType string, details map[string]interface{}, at time.Time) error {
	var payload []byte
	if details != nil {
		var err error
		payload, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode event details: %w", err)
		}
	}
	if err := tx.Events().Append(ctx, &models.Event{
		Username:  username,
		Type:      eventType,
		Details:   datatypes.JSON(payload),
		Date:      at,
		Timestamp: at.UnixMilli(),
	}); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}
