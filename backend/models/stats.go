package models

import "time"

// UserStats is the per-user statistics view returned to the portal.
// Values are read from the stored User aggregate, which the recorder
// keeps transactionally consistent with the ledger.
type UserStats struct {
	CompletedLessons   uint       `json:"completedLessons"`
	CompletedExercises uint       `json:"completedExercises"`
	AverageScore       float64    `json:"averageScore"`
	TotalStudyTime     uint       `json:"totalStudyTime"` // seconds
	LastActivity       *time.Time `json:"lastActivity"`
}

// FleetStats is the cross-user view shown on the admin dashboard.
type FleetStats struct {
	TotalStudents   int  `json:"totalStudents"`
	ActiveStudents  int  `json:"activeStudents"` // logged in within the trailing 7 days
	TotalCourses    int  `json:"totalCourses"`
	SuccessRate     int  `json:"successRate"`    // global mean over individual exercise attempts
	AttendanceRate  int  `json:"attendanceRate"` // 100 * active / total, 0 when no students
	TotalLessons    int  `json:"totalLessons"`
	TotalStudyTime  uint `json:"totalStudyTime"`  // summed seconds across students
	TotalStudyHours uint `json:"totalStudyHours"` // TotalStudyTime in whole hours
}
