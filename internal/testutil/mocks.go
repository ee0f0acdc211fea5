package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/javajolt/kava/kava-backend/internal/domain"
)

// MockStore is an in-memory implementation of domain.Store. With Live set
// it behaves like the realtime backend and pushes every change to
// registered subscribers; without it, subscriptions are one-shot like the
// local variant.
type MockStore struct {
	Live bool

	// Failure injection
	IncrementErr error
	UpsertErr    error
	SeedErr      error

	mu            sync.Mutex
	users         []domain.User
	activity      []domain.Activity
	seeded        bool
	usersSubs     []func([]domain.User)
	usersErrSubs  []func(error)
	activitySubs  []func([]domain.Activity)
	IncrementCall int
	UpsertCalls   int
}

// NewMockStore creates a new MockStore
func NewMockStore(live bool) *MockStore {
	return &MockStore{Live: live}
}

// Realtime implements domain.Store
func (m *MockStore) Realtime() bool {
	return m.Live
}

// SubscribeUsers implements domain.Store
func (m *MockStore) SubscribeUsers(ctx context.Context, onData func([]domain.User), onError func(error)) (func(), error) {
	m.mu.Lock()
	users := m.sortedUsers()
	if m.Live {
		m.usersSubs = append(m.usersSubs, onData)
		if onError != nil {
			m.usersErrSubs = append(m.usersErrSubs, onError)
		}
	}
	m.mu.Unlock()

	onData(users)
	return func() {}, nil
}

// SubscribeActivity implements domain.Store
func (m *MockStore) SubscribeActivity(ctx context.Context, onData func([]domain.Activity), onError func(error)) (func(), error) {
	m.mu.Lock()
	activity := m.recentActivity()
	if m.Live {
		m.activitySubs = append(m.activitySubs, onData)
	}
	m.mu.Unlock()

	onData(activity)
	return func() {}, nil
}

// IncrementCoffee implements domain.Store
func (m *MockStore) IncrementCoffee(ctx context.Context, userID string, newCount int, badge domain.Badge) error {
	m.mu.Lock()
	m.IncrementCall++
	if m.IncrementErr != nil {
		m.mu.Unlock()
		return m.IncrementErr
	}

	now := time.Now()
	var userName string
	found := false
	for i := range m.users {
		if m.users[i].ID == userID {
			m.users[i].CoffeeCount = newCount
			m.users[i].Badge = badge
			m.users[i].LastScan = &now
			userName = m.users[i].Name
			found = true
			break
		}
	}
	if !found {
		m.mu.Unlock()
		return domain.ErrUserNotFound
	}

	m.activity = append([]domain.Activity{{
		ID:          fmt.Sprintf("act-%d", len(m.activity)+1),
		UserID:      userID,
		UserName:    userName,
		Action:      domain.ActionAddedCoffee,
		CoffeeCount: newCount,
		Timestamp:   now,
	}}, m.activity...)
	m.mu.Unlock()

	m.push()
	return nil
}

// UpsertUser implements domain.Store
func (m *MockStore) UpsertUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	m.UpsertCalls++
	if m.UpsertErr != nil {
		m.mu.Unlock()
		return nil, m.UpsertErr
	}

	for _, u := range m.users {
		if u.Email == user.Email {
			existing := u
			m.mu.Unlock()
			return &existing, nil
		}
	}

	created := *user
	created.CreatedAt = time.Now()
	m.users = append(m.users, created)
	m.mu.Unlock()

	m.push()
	return &created, nil
}

// SeedDefaults implements domain.Store
func (m *MockStore) SeedDefaults(ctx context.Context, users []domain.User) error {
	m.mu.Lock()
	if m.SeedErr != nil {
		m.mu.Unlock()
		return m.SeedErr
	}
	if len(m.users) == 0 {
		m.users = append(m.users, users...)
		m.seeded = true
	}
	m.mu.Unlock()

	m.push()
	return nil
}

// FailUserSubscription simulates the live user query dying after startup
func (m *MockStore) FailUserSubscription(err error) {
	m.mu.Lock()
	subs := append([]func(error){}, m.usersErrSubs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(err)
	}
}

// AddUser inserts a user directly, bypassing upsert semantics
func (m *MockStore) AddUser(user domain.User) {
	m.mu.Lock()
	m.users = append(m.users, user)
	m.mu.Unlock()
	m.push()
}

// UserByID returns a stored user for assertions
func (m *MockStore) UserByID(id string) (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// ActivityCount returns how many activity records exist
func (m *MockStore) ActivityCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activity)
}

// push fans the current state out to live subscribers
func (m *MockStore) push() {
	if !m.Live {
		return
	}

	m.mu.Lock()
	users := m.sortedUsers()
	activity := m.recentActivity()
	userSubs := append([]func([]domain.User){}, m.usersSubs...)
	activitySubs := append([]func([]domain.Activity){}, m.activitySubs...)
	m.mu.Unlock()

	for _, fn := range userSubs {
		fn(users)
	}
	for _, fn := range activitySubs {
		fn(activity)
	}
}

func (m *MockStore) sortedUsers() []domain.User {
	users := make([]domain.User, len(m.users))
	copy(users, m.users)
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CoffeeCount > users[j].CoffeeCount
	})
	return users
}

func (m *MockStore) recentActivity() []domain.Activity {
	n := len(m.activity)
	if n > domain.RecentActivityLimit {
		n = domain.RecentActivityLimit
	}
	activity := make([]domain.Activity, n)
	copy(activity, m.activity[:n])
	return activity
}

// MockAvatarRepository is an in-memory storage.AvatarRepository
type MockAvatarRepository struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

// NewMockAvatarRepository creates a new MockAvatarRepository
func NewMockAvatarRepository() *MockAvatarRepository {
	return &MockAvatarRepository{Objects: make(map[string][]byte)}
}

// Upload stores the object in memory
func (m *MockAvatarRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.Objects[objectPath] = buf
	m.mu.Unlock()
	return objectPath, nil
}

// Delete removes the object
func (m *MockAvatarRepository) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	delete(m.Objects, objectPath)
	m.mu.Unlock()
	return nil
}

// GenerateURL returns a fake URL for the object
func (m *MockAvatarRepository) GenerateURL(objectPath string) string {
	return "mock://" + objectPath
}

// Get returns a stored object for assertions
func (m *MockAvatarRepository) Get(objectPath string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[objectPath]
	return data, ok
}
