package storage

import (
	"context"
	"errors"

	"eduledger/backend/models"

	"gorm.io/gorm"
)

// GormBackend persists the ledger in a relational database through GORM.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// AutoMigrate creates or updates the ledger tables.
func (b *GormBackend) AutoMigrate() error {
	return b.db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.LessonCompletion{},
		&models.ExerciseCompletion{},
		&models.Session{},
	)
}

func (b *GormBackend) Users() UserStore         { return gormUsers{b.db} }
func (b *GormBackend) Events() EventStore       { return gormEvents{b.db} }
func (b *GormBackend) Lessons() LessonStore     { return gormLessons{b.db} }
func (b *GormBackend) Exercises() ExerciseStore { return gormExercises{b.db} }
func (b *GormBackend) Sessions() SessionStore   { return gormSessions{b.db} }

func (b *GormBackend) Transact(ctx context.Context, fn func(tx Backend) error) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBackend{db: tx})
	})
}

type gormUsers struct {
	db *gorm.DB
}

func (s gormUsers) Create(ctx context.Context, user *models.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s gormUsers) Get(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s gormUsers) Upsert(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

func (s gormUsers) All(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Find(&users).Error
	return users, err
}

type gormEvents struct {
	db *gorm.DB
}

func (s gormEvents) Append(ctx context.Context, event *models.Event) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s gormEvents) ByUser(ctx context.Context, username string) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("username = ?", username).Order("id ASC").Find(&events).Error
	return events, err
}

func (s gormEvents) All(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).Order("id ASC").Find(&events).Error
	return events, err
}

type gormLessons struct {
	db *gorm.DB
}

func (s gormLessons) Append(ctx context.Context, rec *models.LessonCompletion) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s gormLessons) ByUser(ctx context.Context, username string) ([]models.LessonCompletion, error) {
	var recs []models.LessonCompletion
	err := s.db.WithContext(ctx).
		Where("username = ?", username).Order("id ASC").Find(&recs).Error
	return recs, err
}

func (s gormLessons) All(ctx context.Context) ([]models.LessonCompletion, error) {
	var recs []models.LessonCompletion
	err := s.db.WithContext(ctx).Order("id ASC").Find(&recs).Error
	return recs, err
}

type gormExercises struct {
	db *gorm.DB
}

func (s gormExercises) Append(ctx context.Context, rec *models.ExerciseCompletion) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s gormExercises) ByUser(ctx context.Context, username string) ([]models.ExerciseCompletion, error) {
	var recs []models.ExerciseCompletion
	err := s.db.WithContext(ctx).
		Where("username = ?", username).Order("id ASC").Find(&recs).Error
	return recs, err
}

func (s gormExercises) All(ctx context.Context) ([]models.ExerciseCompletion, error) {
	var recs []models.ExerciseCompletion
	err := s.db.WithContext(ctx).Order("id ASC").Find(&recs).Error
	return recs, err
}

type gormSessions struct {
	db *gorm.DB
}

func (s gormSessions) Append(ctx context.Context, rec *models.Session) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s gormSessions) ByUser(ctx context.Context, username string) ([]models.Session, error) {
	var recs []models.Session
	err := s.db.WithContext(ctx).
		Where("username = ?", username).Order("id ASC").Find(&recs).Error
	return recs, err
}
