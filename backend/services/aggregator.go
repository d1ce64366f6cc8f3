package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"eduledger/backend/models"
	"eduledger/backend/storage"
)

// Aggregator is the read side of the ledger. Per-user statistics are served
// from the stored aggregate; the recorder keeps that aggregate
// transactionally in step with the ledger, so the read path never
// recomputes it. Fleet statistics scan the ledger inside one transaction so
// the numbers describe a single snapshot.
type Aggregator struct {
	store        storage.Backend
	totalCourses int
	now          func() time.Time
}

func NewAggregator(store storage.Backend, totalCourses int) *Aggregator {
	return &Aggregator{store: store, totalCourses: totalCourses, now: time.Now}
}

// activeWindow is how far back a login still counts as attendance.
const activeWindow = 7 * 24 * time.Hour

// GetUserStatistics returns the per-user view, or UserNotFound for an
// unregistered username. A missing user is distinct from a registered user
// with no activity yet, which gets zeroed statistics.
func (a *Aggregator) GetUserStatistics(ctx context.Context, username string) (*models.UserStats, error) {
	user, err := a.store.Users().Get(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound(username)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &models.UserStats{
		CompletedLessons:   user.CompletedLessons,
		CompletedExercises: user.CompletedExercises,
		AverageScore:       user.AverageScore,
		TotalStudyTime:     user.TotalStudyTime,
		LastActivity:       user.LastLogin,
	}, nil
}

// GetFleetStatistics scans the ledger and derives the admin dashboard
// numbers. The success rate is the mean percentage over every individual
// student exercise attempt, which weights by attempt volume rather than
// giving each student equal weight.
func (a *Aggregator) GetFleetStatistics(ctx context.Context) (*models.FleetStats, error) {
	stats := &models.FleetStats{TotalCourses: a.totalCourses}

	err := a.store.Transact(ctx, func(tx storage.Backend) error {
		users, err := tx.Users().All(ctx)
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}

		cutoff := a.now().Add(-activeWindow)
		students := make(map[string]bool)
		var studySeconds uint
		for _, user := range users {
			if !user.IsStudent() {
				continue
			}
			students[user.Username] = true
			stats.TotalStudents++
			studySeconds += user.TotalStudyTime
			if user.LastLogin != nil && user.LastLogin.After(cutoff) {
				stats.ActiveStudents++
			}
		}

		exercises, err := tx.Exercises().All(ctx)
		if err != nil {
			return fmt.Errorf("load exercise completions: %w", err)
		}
		totalPercentage, attempts := 0, 0
		for _, rec := range exercises {
			if students[rec.Username] {
				totalPercentage += rec.Percentage
				attempts++
			}
		}
		if attempts > 0 {
			stats.SuccessRate = int(math.Round(float64(totalPercentage) / float64(attempts)))
		}

		lessons, err := tx.Lessons().All(ctx)
		if err != nil {
			return fmt.Errorf("load lesson completions: %w", err)
		}
		stats.TotalLessons = len(lessons)

		if stats.TotalStudents > 0 {
			stats.AttendanceRate = int(math.Round(100 * float64(stats.ActiveStudents) / float64(stats.TotalStudents)))
		}
		stats.TotalStudyTime = studySeconds
		stats.TotalStudyHours = studySeconds / 3600
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
