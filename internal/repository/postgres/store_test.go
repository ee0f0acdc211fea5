package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajolt/kava/kava-backend/internal/domain"
)

// openTestStore connects to the database named by TEST_DATABASE_URL and
// truncates the tables. Tests are skipped when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store, err := New(ctx, pool)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE users, activity`)
	require.NoError(t, err)

	return store
}

func TestSubscribeUsers_ObservesWriteAfterSubscribe(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedDefaults(ctx, domain.Roster()))

	snapshots := make(chan []domain.User, 16)
	release, err := store.SubscribeUsers(ctx, func(users []domain.User) {
		snapshots <- users
	}, nil)
	require.NoError(t, err)
	defer release()

	initial := <-snapshots
	require.Len(t, initial, 6)

	// The listener is live before Subscribe returns, so a write issued
	// immediately afterwards must be delivered
	require.NoError(t, store.IncrementCoffee(ctx, "alex-johnson", 1, domain.BadgeFor(1)))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case users := <-snapshots:
			if len(users) > 0 && users[0].ID == "alex-johnson" && users[0].CoffeeCount == 1 {
				assert.Equal(t, domain.BadgeFor(1), users[0].Badge)
				return
			}
		case <-deadline:
			t.Fatal("Subscription never delivered the post-subscribe write")
		}
	}
}

func TestSubscribeActivity_DeliversAppends(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedDefaults(ctx, domain.Roster()))

	snapshots := make(chan []domain.Activity, 16)
	release, err := store.SubscribeActivity(ctx, func(activity []domain.Activity) {
		snapshots <- activity
	}, nil)
	require.NoError(t, err)
	defer release()

	initial := <-snapshots
	require.Empty(t, initial)

	require.NoError(t, store.IncrementCoffee(ctx, "sam-wilson", 1, domain.BadgeFor(1)))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case activity := <-snapshots:
			if len(activity) == 1 {
				assert.Equal(t, "sam-wilson", activity[0].UserID)
				assert.Equal(t, 1, activity[0].CoffeeCount)
				assert.Equal(t, domain.ActionAddedCoffee, activity[0].Action)
				return
			}
		case <-deadline:
			t.Fatal("Subscription never delivered the activity append")
		}
	}
}
