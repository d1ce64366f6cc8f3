package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is one portal account plus its denormalized progress aggregate.
// The aggregate fields are a cached reduction over the user's ledger
// records and are only ever written by the progress recorder.
type User struct {
	gorm.Model         `json:"-"`
	Username           string     `gorm:"uniqueIndex;not null" json:"username"`
	Name               string     `json:"name"`
	PasswordHash       string     `gorm:"not null" json:"-"`
	Role               string     `gorm:"default:student" json:"role"` // student, teacher, admin
	RegistrationDate   time.Time  `json:"registrationDate"`
	LastLogin          *time.Time `json:"lastLogin"`
	TotalStudyTime     uint       `json:"totalStudyTime"` // seconds
	CompletedLessons   uint       `json:"completedLessons"`
	CompletedExercises uint       `json:"completedExercises"`
	AverageScore       float64    `json:"averageScore"` // rounded mean of exercise percentages
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
