package service

import (
	"context"
	"sync"

	"github.com/javajolt/kava/kava-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// statsWindowDays is the window the average-per-day stat assumes
const statsWindowDays = 7

// Tracker owns the canonical in-memory snapshot of users and recent
// activity and mediates every mutation. It is the single writer: handlers
// and the websocket publisher only read derived state and issue commands.
//
// Mutating commands absorb backend failures by design — they are logged and
// the call appears to have completed. The only symptom of a failed write is
// stale state.
type Tracker struct {
	store    domain.Store
	fallback domain.Store // rescue read when the live user query dies, may be nil

	mu       sync.RWMutex
	users    []domain.User
	activity []domain.Activity
	loaded   bool

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSubID   int

	releases []func()
}

// NewTracker creates a Tracker over the selected store. fallback, when not
// nil, is read once if the store's user subscription fails after startup so
// consumers are never stuck loading.
func NewTracker(store domain.Store, fallback domain.Store) *Tracker {
	return &Tracker{
		store:       store,
		fallback:    fallback,
		subscribers: make(map[int]func()),
	}
}

// Start seeds the roster and opens the user and activity subscriptions.
// The two subscriptions form one scoped resource pair, released together by
// Close.
func (t *Tracker) Start(ctx context.Context) error {
	if err := t.store.SeedDefaults(ctx, domain.Roster()); err != nil {
		// Seeding is best effort: another instance may have won the race
		log.Warn().Err(err).Msg("Failed to seed default users")
	}

	releaseUsers, err := t.store.SubscribeUsers(ctx, t.setUsers, t.onUsersError)
	if err != nil {
		return err
	}

	releaseActivity, err := t.store.SubscribeActivity(ctx, t.setActivity, nil)
	if err != nil {
		releaseUsers()
		return err
	}

	t.releases = []func(){releaseUsers, releaseActivity}
	return nil
}

// Close releases both store subscriptions
func (t *Tracker) Close() {
	for _, release := range t.releases {
		release()
	}
	t.releases = nil
}

// AddCoffee records one coffee for the user. An unknown user id is a silent
// no-op; a failed write is logged and absorbed.
func (t *Tracker) AddCoffee(ctx context.Context, userID string) {
	user, ok := t.findUser(userID)
	if !ok {
		log.Debug().Str("user_id", userID).Msg("AddCoffee for unknown user ignored")
		return
	}

	newCount := user.CoffeeCount + 1
	badge := domain.BadgeFor(newCount)

	if err := t.store.IncrementCoffee(ctx, userID, newCount, badge); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to add coffee")
		return
	}

	if !t.store.Realtime() {
		t.refresh(ctx)
	}
}

// AddExternalUser resolves an externally-authenticated identity to a user
// record, creating one with a zero count on first sign-in. The same email
// always resolves to the same record; a duplicate sign-in is never an
// error. Returns nil when the identity is unusable or the write failed.
func (t *Tracker) AddExternalUser(ctx context.Context, identity domain.Identity) *domain.User {
	if identity.Email == "" {
		log.Debug().Msg("External identity without email ignored")
		return nil
	}

	if existing, ok := t.findUserByEmail(identity.Email); ok {
		return &existing
	}

	user := &domain.User{
		ID:       domain.UserKey(identity.Email),
		Name:     identity.Name,
		Email:    identity.Email,
		Badge:    domain.BadgeNew,
		External: true,
	}

	created, err := t.store.UpsertUser(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("email", identity.Email).Msg("Failed to add external user")
		return nil
	}

	if !t.store.Realtime() {
		t.refresh(ctx)
	}
	return created
}

// Users returns a copy of the current user list, ordered by coffee count
// descending
func (t *Tracker) Users() []domain.User {
	t.mu.RLock()
	defer t.mu.RUnlock()

	users := make([]domain.User, len(t.users))
	copy(users, t.users)
	return users
}

// Activity returns a copy of the recent activity, newest first
func (t *Tracker) Activity() []domain.Activity {
	t.mu.RLock()
	defer t.mu.RUnlock()

	activity := make([]domain.Activity, len(t.activity))
	copy(activity, t.activity)
	return activity
}

// Loading reports whether the first user snapshot is still outstanding
func (t *Tracker) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.loaded
}

// Stats recomputes the aggregate view from the current snapshot. Nothing
// here is stored.
func (t *Tracker) Stats() domain.Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := domain.Stats{}
	for _, u := range t.users {
		stats.TotalCoffees += u.CoffeeCount
		if u.CoffeeCount > 0 {
			stats.ActiveUsers++
		}
	}

	stats.AvgPerDay = int(decimal.NewFromInt(int64(stats.TotalCoffees)).
		Div(decimal.NewFromInt(statsWindowDays)).
		Round(0).
		IntPart())

	if len(t.users) > 0 {
		top := t.users[0]
		stats.TopDrinker = &top
	}
	if len(t.activity) > 0 {
		recent := t.activity[0]
		stats.MostRecent = &recent
	}
	return stats
}

// Subscribe registers fn to run after every snapshot change. The returned
// release func unregisters it.
func (t *Tracker) Subscribe(fn func()) func() {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = fn

	return func() {
		t.subMu.Lock()
		defer t.subMu.Unlock()
		delete(t.subscribers, id)
	}
}

func (t *Tracker) setUsers(users []domain.User) {
	t.mu.Lock()
	t.users = users
	t.loaded = true
	t.mu.Unlock()
	t.notify()
}

func (t *Tracker) setActivity(activity []domain.Activity) {
	if len(activity) > domain.RecentActivityLimit {
		activity = activity[:domain.RecentActivityLimit]
	}
	t.mu.Lock()
	t.activity = activity
	t.mu.Unlock()
	t.notify()
}

// onUsersError handles a live user query dying after startup: one read from
// the fallback store keeps the snapshot usable. The activity subscription
// has no rescue; it simply stops updating.
func (t *Tracker) onUsersError(err error) {
	log.Error().Err(err).Msg("User subscription failed")
	if t.fallback == nil {
		return
	}

	release, ferr := t.fallback.SubscribeUsers(context.Background(), t.rescueUsers, nil)
	if ferr != nil {
		log.Error().Err(ferr).Msg("Fallback user read failed")
		return
	}
	release()
}

// rescueUsers applies a fallback read without ever blanking the board. The
// fallback store is usually unwritten while the remote store is primary, so
// an empty result keeps the current snapshot, or shows the roster when
// nothing was loaded yet.
func (t *Tracker) rescueUsers(users []domain.User) {
	if len(users) == 0 {
		t.mu.RLock()
		populated := len(t.users) > 0
		t.mu.RUnlock()
		if populated {
			return
		}
		users = domain.Roster()
	}
	t.setUsers(users)
}

// refresh re-reads both snapshots from a non-realtime store, whose
// subscriptions are satisfied once at call time
func (t *Tracker) refresh(ctx context.Context) {
	release, err := t.store.SubscribeUsers(ctx, t.setUsers, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh users")
	} else {
		release()
	}

	release, err = t.store.SubscribeActivity(ctx, t.setActivity, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh activity")
	} else {
		release()
	}
}

func (t *Tracker) findUser(id string) (domain.User, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, u := range t.users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

func (t *Tracker) findUserByEmail(email string) (domain.User, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, u := range t.users {
		if u.Email == email {
			return u, true
		}
	}
	return domain.User{}, false
}

func (t *Tracker) notify() {
	t.subMu.Lock()
	fns := make([]func(), 0, len(t.subscribers))
	for _, fn := range t.subscribers {
		fns = append(fns, fn)
	}
	t.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
