package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"eduledger/backend/models"

	"golang.org/x/crypto/bcrypt"
)

// Seed fills the ledger with sample accounts and activity for local
// development. Existing accounts are left alone: AlreadyExists from
// registration is ignored here, as bootstrap code may.
func Seed(ctx context.Context, rec *Recorder) error {
	sample := []struct {
		username string
		name     string
		role     string
		password string
	}{
		{"admin", "Administrator", models.RoleAdmin, "admin123"},
		{"student1", "Ahmed Mohammed", models.RoleStudent, "student123"},
		{"student2", "Fatima Ali", models.RoleStudent, "student123"},
		{"student3", "Khaled Mahmoud", models.RoleStudent, "student123"},
		{"student4", "Laila Said", models.RoleStudent, "student123"},
		{"student5", "Youssef Hassan", models.RoleStudent, "student123"},
	}

	var students []string
	for _, s := range sample {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		user := &models.User{
			Username:     s.username,
			Name:         s.name,
			Role:         s.role,
			PasswordHash: string(hash),
		}
		err = rec.RegisterUser(ctx, user)
		var se ServiceError
		if errors.As(err, &se) && se.Status == 409 {
			continue // already seeded
		}
		if err != nil {
			return err
		}
		if s.role == models.RoleStudent {
			students = append(students, s.username)
		}
	}

	for _, username := range students {
		for i := 0; i < rand.Intn(10)+5; i++ {
			if err := rec.RecordLogin(ctx, username); err != nil {
				return err
			}
		}
		for i := 1; i <= rand.Intn(15)+5; i++ {
			duration := uint(rand.Intn(1800) + 600) // 10-40 minutes
			if err := rec.RecordLessonCompletion(ctx, username, fmt.Sprintf("lesson_%d", i), duration); err != nil {
				return err
			}
		}
		for i := 1; i <= rand.Intn(10)+3; i++ {
			score := rand.Intn(40) + 60
			if err := rec.RecordExerciseCompletion(ctx, username, fmt.Sprintf("exercise_%d", i), score, 100); err != nil {
				return err
			}
		}
	}
	return nil
}
