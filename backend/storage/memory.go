package storage

import (
	"context"
	"sync"

	"eduledger/backend/models"
)

// MemoryBackend keeps the whole ledger in process memory. It serves
// single-process deployments and tests; the Postgres backend is the
// production store. All access is serialized on one mutex, so a Transact
// body observes and publishes a consistent snapshot. A failed Transact
// restores the pre-transaction state.
type MemoryBackend struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	users     map[string]models.User
	events    []models.Event
	lessons   []models.LessonCompletion
	exercises []models.ExerciseCompletion
	sessions  []models.Session

	nextEventID    uint
	nextLessonID   uint
	nextExerciseID uint
	nextSessionID  uint
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		state: &memoryState{
			users:          make(map[string]models.User),
			nextEventID:    1,
			nextLessonID:   1,
			nextExerciseID: 1,
			nextSessionID:  1,
		},
	}
}

func (s *memoryState) clone() *memoryState {
	users := make(map[string]models.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	return &memoryState{
		users:          users,
		events:         append([]models.Event(nil), s.events...),
		lessons:        append([]models.LessonCompletion(nil), s.lessons...),
		exercises:      append([]models.ExerciseCompletion(nil), s.exercises...),
		sessions:       append([]models.Session(nil), s.sessions...),
		nextEventID:    s.nextEventID,
		nextLessonID:   s.nextLessonID,
		nextExerciseID: s.nextExerciseID,
		nextSessionID:  s.nextSessionID,
	}
}

func (m *MemoryBackend) Users() UserStore         { return memUsers{m, true} }
func (m *MemoryBackend) Events() EventStore       { return memEvents{m, true} }
func (m *MemoryBackend) Lessons() LessonStore     { return memLessons{m, true} }
func (m *MemoryBackend) Exercises() ExerciseStore { return memExercises{m, true} }
func (m *MemoryBackend) Sessions() SessionStore   { return memSessions{m, true} }

func (m *MemoryBackend) Transact(ctx context.Context, fn func(tx Backend) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(txView{m}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

// txView exposes the backend without re-acquiring the mutex held by
// Transact. Nested Transact calls join the outer transaction.
type txView struct {
	m *MemoryBackend
}

func (v txView) Users() UserStore         { return memUsers{v.m, false} }
func (v txView) Events() EventStore       { return memEvents{v.m, false} }
func (v txView) Lessons() LessonStore     { return memLessons{v.m, false} }
func (v txView) Exercises() ExerciseStore { return memExercises{v.m, false} }
func (v txView) Sessions() SessionStore   { return memSessions{v.m, false} }

func (v txView) Transact(ctx context.Context, fn func(tx Backend) error) error {
	return fn(v)
}

func (m *MemoryBackend) lock(needed bool) func() {
	if !needed {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

type memUsers struct {
	m       *MemoryBackend
	locking bool
}

func (s memUsers) Create(ctx context.Context, user *models.User) error {
	defer s.m.lock(s.locking)()
	if _, ok := s.m.state.users[user.Username]; ok {
		return ErrAlreadyExists
	}
	s.m.state.users[user.Username] = *user
	return nil
}

func (s memUsers) Get(ctx context.Context, username string) (*models.User, error) {
	defer s.m.lock(s.locking)()
	user, ok := s.m.state.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s memUsers) Upsert(ctx context.Context, user *models.User) error {
	defer s.m.lock(s.locking)()
	s.m.state.users[user.Username] = *user
	return nil
}

func (s memUsers) All(ctx context.Context) ([]models.User, error) {
	defer s.m.lock(s.locking)()
	users := make([]models.User, 0, len(s.m.state.users))
	for _, user := range s.m.state.users {
		users = append(users, user)
	}
	return users, nil
}

type memEvents struct {
	m       *MemoryBackend
	locking bool
}

func (s memEvents) Append(ctx context.Context, event *models.Event) error {
	defer s.m.lock(s.locking)()
	event.ID = s.m.state.nextEventID
	s.m.state.nextEventID++
	s.m.state.events = append(s.m.state.events, *event)
	return nil
}

func (s memEvents) ByUser(ctx context.Context, username string) ([]models.Event, error) {
	defer s.m.lock(s.locking)()
	var events []models.Event
	for _, event := range s.m.state.events {
		if event.Username == username {
			events = append(events, event)
		}
	}
	return events, nil
}

func (s memEvents) All(ctx context.Context) ([]models.Event, error) {
	defer s.m.lock(s.locking)()
	return append([]models.Event(nil), s.m.state.events...), nil
}

type memLessons struct {
	m       *MemoryBackend
	locking bool
}

func (s memLessons) Append(ctx context.Context, rec *models.LessonCompletion) error {
	defer s.m.lock(s.locking)()
	rec.ID = s.m.state.nextLessonID
	s.m.state.nextLessonID++
	s.m.state.lessons = append(s.m.state.lessons, *rec)
	return nil
}

func (s memLessons) ByUser(ctx context.Context, username string) ([]models.LessonCompletion, error) {
	defer s.m.lock(s.locking)()
	var recs []models.LessonCompletion
	for _, rec := range s.m.state.lessons {
		if rec.Username == username {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (s memLessons) All(ctx context.Context) ([]models.LessonCompletion, error) {
	defer s.m.lock(s.locking)()
	return append([]models.LessonCompletion(nil), s.m.state.lessons...), nil
}

type memExercises struct {
	m       *MemoryBackend
	locking bool
}

func (s memExercises) Append(ctx context.Context, rec *models.ExerciseCompletion) error {
	defer s.m.lock(s.locking)()
	rec.ID = s.m.state.nextExerciseID
	s.m.state.nextExerciseID++
	s.m.state.exercises = append(s.m.state.exercises, *rec)
	return nil
}

func (s memExercises) ByUser(ctx context.Context, username string) ([]models.ExerciseCompletion, error) {
	defer s.m.lock(s.locking)()
	var recs []models.ExerciseCompletion
	for _, rec := range s.m.state.exercises {
		if rec.Username == username {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (s memExercises) All(ctx context.Context) ([]models.ExerciseCompletion, error) {
	defer s.m.lock(s.locking)()
	return append([]models.ExerciseCompletion(nil), s.m.state.exercises...), nil
}

type memSessions struct {
	m       *MemoryBackend
	locking bool
}

func (s memSessions) Append(ctx context.Context, rec *models.Session) error {
	defer s.m.lock(s.locking)()
	rec.ID = s.m.state.nextSessionID
	s.m.state.nextSessionID++
	s.m.state.sessions = append(s.m.state.sessions, *rec)
	return nil
}

func (s memSessions) ByUser(ctx context.Context, username string) ([]models.Session, error) {
	defer s.m.lock(s.locking)()
	var recs []models.Session
	for _, rec := range s.m.state.sessions {
		if rec.Username == username {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
