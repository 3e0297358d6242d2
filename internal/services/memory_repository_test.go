package services

import (
	"context"
	"sync"
	"time"

	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// memoryRepository is an in-memory repositories.TransactionRepository used
// by the service tests. It reproduces the two storage behaviors the engine
// depends on: gorm.ErrRecordNotFound on missing rows and
// gorm.ErrDuplicatedKey on a second attempt for the same (user, set).
type memoryRepository struct {
	mu       sync.Mutex
	nextSet  uint
	nextAtt  uint
	sets     map[uint]*models.QuestionSet
	attempts []*models.AttemptRecord
	ledgers  map[string]*models.ScoreLedger
	users    map[string]*models.User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		nextSet: 1,
		nextAtt: 1,
		sets:    make(map[uint]*models.QuestionSet),
		ledgers: make(map[string]*models.ScoreLedger),
		users:   make(map[string]*models.User),
	}
}

func (m *memoryRepository) Sets() repositories.QuestionSetRepository  { return (*memorySets)(m) }
func (m *memoryRepository) Attempts() repositories.AttemptRepository  { return (*memoryAttempts)(m) }
func (m *memoryRepository) Users() repositories.UserRepository        { return (*memoryUsers)(m) }

func (m *memoryRepository) Begin(ctx context.Context) (repositories.TransactionRepository, error) {
	return m, nil
}
func (m *memoryRepository) Commit(ctx context.Context) error   { return nil }
func (m *memoryRepository) Rollback(ctx context.Context) error { return nil }

// ===== SETS =====

type memorySets memoryRepository

func (m *memorySets) Create(ctx context.Context, set *models.QuestionSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set.ID = m.nextSet
	m.nextSet++
	set.CreatedAt = time.Now()
	for i := range set.Questions {
		set.Questions[i].SetID = set.ID
	}
	m.sets[set.ID] = set
	return nil
}

func (m *memorySets) GetByID(ctx context.Context, id uint) (*models.QuestionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *set
	copied.Questions = nil
	return &copied, nil
}

func (m *memorySets) GetByIDWithQuestions(ctx context.Context, id uint) (*models.QuestionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *set
	return &copied, nil
}

func (m *memorySets) List(ctx context.Context, filters repositories.SetFilters) ([]*models.QuestionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.QuestionSet
	for _, set := range m.sets {
		if filters.DateFrom != nil && set.ScheduledDate.Before(models.DateOf(*filters.DateFrom)) {
			continue
		}
		if filters.DateTo != nil && set.ScheduledDate.After(models.DateOf(*filters.DateTo)) {
			continue
		}
		copied := *set
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memorySets) Update(ctx context.Context, set *models.QuestionSet, replaceQuestions bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sets[set.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.ScheduledDate = set.ScheduledDate
	if replaceQuestions {
		existing.Questions = set.Questions
	}
	return nil
}

func (m *memorySets) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.sets, id)
	return nil
}

// ===== ATTEMPTS =====

type memoryAttempts memoryRepository

func (m *memoryAttempts) Create(ctx context.Context, attempt *models.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.attempts {
		if existing.UserID == attempt.UserID && existing.SetID == attempt.SetID {
			return gorm.ErrDuplicatedKey
		}
	}
	attempt.ID = m.nextAtt
	m.nextAtt++
	attempt.CreatedAt = time.Now()
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *memoryAttempts) HasAttempt(ctx context.Context, userID string, setID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.UserID == userID && a.SetID == setID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryAttempts) GetByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.AttemptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AttemptRecord
	for _, a := range m.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryAttempts) AttemptedSetIDs(ctx context.Context, userID string) (map[uint]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempted := make(map[uint]bool)
	for _, a := range m.attempts {
		if a.UserID == userID {
			attempted[a.SetID] = true
		}
	}
	return attempted, nil
}

func (m *memoryAttempts) LockLedger(ctx context.Context, userID string) (*models.ScoreLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[userID]
	if !ok {
		ledger = &models.ScoreLedger{UserID: userID}
		m.ledgers[userID] = ledger
	}
	copied := *ledger
	return &copied, nil
}

func (m *memoryAttempts) GetLedger(ctx context.Context, userID string) (*models.ScoreLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, ok := m.ledgers[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *ledger
	return &copied, nil
}

func (m *memoryAttempts) UpdateLedger(ctx context.Context, ledger *models.ScoreLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *ledger
	m.ledgers[ledger.UserID] = &copied
	return nil
}

func (m *memoryAttempts) Leaderboard(ctx context.Context) ([]*repositories.LeaderboardRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser := make(map[string]*repositories.LeaderboardRow)
	var order []string
	for _, a := range m.attempts {
		row, ok := byUser[a.UserID]
		if !ok {
			row = &repositories.LeaderboardRow{UserID: a.UserID}
			if user, exists := m.users[a.UserID]; exists {
				row.FullName = user.FullName
				row.Email = user.Email
				row.Mobile = user.Mobile
			}
			byUser[a.UserID] = row
			order = append(order, a.UserID)
		}
		row.TotalScore += a.Score
		row.TotalTime += a.TimeTaken
		row.GamesPlayed++
		if a.CreatedAt.After(row.LastPlayed) {
			row.LastPlayed = a.CreatedAt
		}
	}
	out := make([]*repositories.LeaderboardRow, 0, len(order))
	for _, id := range order {
		out = append(out, byUser[id])
	}
	return out, nil
}

// ===== USERS =====

type memoryUsers memoryRepository

func (m *memoryUsers) Upsert(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUsers) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *memoryUsers) CountCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, user := range m.users {
		if user.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (m *memoryUsers) RegistrationsBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Time
	for _, user := range m.users {
		if !user.CreatedAt.Before(from) && user.CreatedAt.Before(to) {
			out = append(out, user.CreatedAt)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Before(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}
