// Package postgres implements domain.Store on PostgreSQL. Live queries are
// built from LISTEN/NOTIFY: statement-level triggers notify a channel per
// collection, and each subscription holds a dedicated listening connection
// that re-queries and invokes its callback on every notification.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/javajolt/kava/kava-backend/internal/domain"
)

const (
	usersChannel    = "kava_users"
	activityChannel = "kava_activity"
)

// Store is the remote variant of domain.Store
type Store struct {
	pool *pgxpool.Pool
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// New creates a Store and applies the schema (tables plus notify triggers)
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Realtime reports that subscriptions push updates
func (s *Store) Realtime() bool {
	return true
}

// SubscribeUsers registers a live query over the user list ordered by coffee
// count descending. onData receives the initial snapshot before Subscribe
// returns, then again after every change. The listener is established before
// the initial query runs, so a write landing during startup still produces a
// notification the subscription observes. Transport errors after that are
// delivered to onError, never panicked.
func (s *Store) SubscribeUsers(ctx context.Context, onData func([]domain.User), onError func(error)) (func(), error) {
	release, err := s.listen(ctx, usersChannel, func(ctx context.Context) error {
		users, err := s.queryUsers(ctx)
		if err != nil {
			return err
		}
		onData(users)
		return nil
	}, onError)
	if err != nil {
		return nil, err
	}

	users, err := s.queryUsers(ctx)
	if err != nil {
		release()
		return nil, err
	}
	onData(users)

	return release, nil
}

// SubscribeActivity registers a live query over the latest activity records
func (s *Store) SubscribeActivity(ctx context.Context, onData func([]domain.Activity), onError func(error)) (func(), error) {
	release, err := s.listen(ctx, activityChannel, func(ctx context.Context) error {
		activity, err := s.queryActivity(ctx)
		if err != nil {
			return err
		}
		onData(activity)
		return nil
	}, onError)
	if err != nil {
		return nil, err
	}

	activity, err := s.queryActivity(ctx)
	if err != nil {
		release()
		return nil, err
	}
	onData(activity)

	return release, nil
}

// IncrementCoffee performs the atomic server-side increment and then appends
// the activity record carrying the caller-computed count. The two writes are
// intentionally separate statements: a failed append leaves an incremented
// counter with no matching record, which the system accepts.
func (s *Store) IncrementCoffee(ctx context.Context, userID string, newCount int, badge domain.Badge) error {
	var userName string
	err := s.pool.QueryRow(ctx,
		`UPDATE users
		 SET coffee_count = coffee_count + 1, badge = $2, last_scan = now()
		 WHERE id = $1
		 RETURNING name`,
		userID, string(badge)).Scan(&userName)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("incrementing coffee count: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO activity (id, user_id, user_name, action, coffee_count)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), userID, userName, domain.ActionAddedCoffee, newCount)
	if err != nil {
		return fmt.Errorf("appending activity: %w", err)
	}
	return nil
}

// UpsertUser inserts the user unless the email is already taken; the
// existing record wins and is returned unchanged
func (s *Store) UpsertUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, coffee_count, badge, is_external)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO NOTHING`,
		user.ID, user.Name, user.Email, user.CoffeeCount, string(user.Badge), user.External)
	if err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}
	return s.getByEmail(ctx, user.Email)
}

// SeedDefaults writes the roster once, when the users table is empty.
// Inserts upsert by email so two racing cold starts stay idempotent.
func (s *Store) SeedDefaults(ctx context.Context, users []domain.User) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, u := range users {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, coffee_count, badge, is_external)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (email) DO NOTHING`,
			u.ID, u.Name, u.Email, u.CoffeeCount, string(u.Badge), u.External)
		if err != nil {
			return fmt.Errorf("seeding user %s: %w", u.ID, err)
		}
	}
	return nil
}

func (s *Store) queryUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, coffee_count, badge, last_scan, is_external, created_at
		 FROM users
		 ORDER BY coffee_count DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var badge string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CoffeeCount, &badge, &u.LastScan, &u.External, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Badge = domain.Badge(badge)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) queryActivity(ctx context.Context) ([]domain.Activity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, user_name, action, coffee_count, ts
		 FROM activity
		 ORDER BY ts DESC
		 LIMIT $1`, domain.RecentActivityLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.UserName, &a.Action, &a.CoffeeCount, &a.Timestamp); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

func (s *Store) getByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	var badge string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, coffee_count, badge, last_scan, is_external, created_at
		 FROM users
		 WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.CoffeeCount, &badge, &u.LastScan, &u.External, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Badge = domain.Badge(badge)
	return &u, nil
}
