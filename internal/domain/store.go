package domain

import "context"

// Store abstracts the two persistence backends behind one capability set.
// The variant is chosen once at startup and never changes within a session:
// Postgres when the database is reachable, the local SQLite snapshot store
// otherwise.
//
// Subscriptions deliver the full current list, ordered (users by coffee
// count descending, activity by timestamp descending, capped at
// RecentActivityLimit). A realtime store keeps invoking onData on every
// backend change until released; a non-realtime store invokes onData exactly
// once, synchronously, and callers must re-subscribe to observe later
// mutations. onError, when non-nil, receives transport errors that occur
// after a subscription was established.
type Store interface {
	SubscribeUsers(ctx context.Context, onData func([]User), onError func(error)) (release func(), err error)
	SubscribeActivity(ctx context.Context, onData func([]Activity), onError func(error)) (release func(), err error)

	// IncrementCoffee raises the user's counter by exactly one, writes the
	// caller-computed badge, stamps the last-scan time and appends one
	// activity record carrying newCount. The counter update and the
	// activity append are separate writes, not a transaction.
	IncrementCoffee(ctx context.Context, userID string, newCount int, badge Badge) error

	// UpsertUser is idempotent by email: an existing record is returned
	// unchanged, otherwise the given user is created.
	UpsertUser(ctx context.Context, user *User) (*User, error)

	// SeedDefaults writes the roster when the user collection is empty and
	// is a no-op otherwise. Seeding upserts by email so that two racing
	// cold starts cannot produce duplicates.
	SeedDefaults(ctx context.Context, users []User) error

	// Realtime reports whether subscriptions push updates
	Realtime() bool
}
