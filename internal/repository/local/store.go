// Package local implements domain.Store on an embedded SQLite database,
// used when the Postgres backend is unavailable. It mirrors the browser
// localStorage model the data originally lived in: two keys holding JSON
// snapshots, mutated by reading the full snapshot, changing it and writing
// it back. Subscriptions are one-shot; callers re-read after mutating.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/javajolt/kava/kava-backend/internal/domain"

	_ "modernc.org/sqlite"
)

const (
	usersKey    = "coffee-tracker-users"
	activityKey = "coffee-tracker-activity"
)

// Store is the local fallback variant of domain.Store
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the snapshot database at path. Use
// ":memory:" for tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	// Snapshot writes are whole-value replacements; a single connection
	// avoids SQLITE_BUSY without WAL tuning.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshots table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Realtime reports that this store has no push mechanism
func (s *Store) Realtime() bool {
	return false
}

// SubscribeUsers invokes onData exactly once with the current ordered user
// list. The returned release func is a no-op.
func (s *Store) SubscribeUsers(ctx context.Context, onData func([]domain.User), onError func(error)) (func(), error) {
	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	onData(users)
	return func() {}, nil
}

// SubscribeActivity invokes onData exactly once with the latest activity
func (s *Store) SubscribeActivity(ctx context.Context, onData func([]domain.Activity), onError func(error)) (func(), error) {
	activity, err := s.readActivity(ctx)
	if err != nil {
		return nil, err
	}
	onData(activity)
	return func() {}, nil
}

// IncrementCoffee applies the increment to the stored snapshot and prepends
// one activity record with a timestamp-derived id
func (s *Store) IncrementCoffee(ctx context.Context, userID string, newCount int, badge domain.Badge) error {
	users, err := s.readUsers(ctx)
	if err != nil {
		return err
	}

	scanTime := s.now()
	var userName string
	found := false
	for i := range users {
		if users[i].ID == userID {
			users[i].CoffeeCount = newCount
			users[i].Badge = badge
			users[i].LastScan = &scanTime
			userName = users[i].Name
			found = true
			break
		}
	}
	if !found {
		return domain.ErrUserNotFound
	}

	sortUsers(users)
	if err := s.writeSnapshot(ctx, usersKey, users); err != nil {
		return err
	}

	activity, err := s.readActivity(ctx)
	if err != nil {
		return err
	}

	record := domain.Activity{
		ID:          strconv.FormatInt(scanTime.UnixMilli(), 10),
		UserID:      userID,
		UserName:    userName,
		Action:      domain.ActionAddedCoffee,
		CoffeeCount: newCount,
		Timestamp:   scanTime,
	}
	activity = append([]domain.Activity{record}, activity...)
	if len(activity) > domain.RecentActivityLimit {
		activity = activity[:domain.RecentActivityLimit]
	}

	return s.writeSnapshot(ctx, activityKey, activity)
}

// UpsertUser adds the user unless one with the same email already exists,
// in which case the existing record is returned unchanged
func (s *Store) UpsertUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Email == user.Email {
			existing := users[i]
			return &existing, nil
		}
	}

	created := *user
	if created.CreatedAt.IsZero() {
		created.CreatedAt = s.now()
	}
	users = append(users, created)
	sortUsers(users)

	if err := s.writeSnapshot(ctx, usersKey, users); err != nil {
		return nil, err
	}
	return &created, nil
}

// SeedDefaults writes the roster when no users snapshot exists yet
func (s *Store) SeedDefaults(ctx context.Context, users []domain.User) error {
	var existing string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, usersKey).Scan(&existing)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	seeded := make([]domain.User, len(users))
	copy(seeded, users)
	for i := range seeded {
		if seeded[i].CreatedAt.IsZero() {
			seeded[i].CreatedAt = s.now()
		}
	}
	return s.writeSnapshot(ctx, usersKey, seeded)
}

func (s *Store) readUsers(ctx context.Context) ([]domain.User, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, usersKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("corrupt users snapshot: %w", err)
	}
	sortUsers(users)
	return users, nil
}

func (s *Store) readActivity(ctx context.Context) ([]domain.Activity, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, activityKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return []domain.Activity{}, nil
	}
	if err != nil {
		return nil, err
	}

	var activity []domain.Activity
	if err := json.Unmarshal([]byte(raw), &activity); err != nil {
		return nil, fmt.Errorf("corrupt activity snapshot: %w", err)
	}
	return activity, nil
}

func (s *Store) writeSnapshot(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, string(data))
	return err
}

// rawSnapshot returns the stored JSON for a key, for persistence tests
func (s *Store) rawSnapshot(ctx context.Context, key string) (string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, key).Scan(&raw)
	return raw, err
}

func sortUsers(users []domain.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CoffeeCount > users[j].CoffeeCount
	})
}
