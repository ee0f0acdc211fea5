package domain

import (
	"strings"
	"time"
)

// User represents a member of the office coffee leaderboard
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	CoffeeCount int        `json:"coffeeCount"`
	Badge       Badge      `json:"badge"`
	LastScan    *time.Time `json:"lastScan"`
	External    bool       `json:"isExternalIdentity"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Identity is the payload produced by an external sign-in (name and email
// are the only fields the tracker consumes; the picture feeds the avatar
// service when configured)
type Identity struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	PictureURL string `json:"picture,omitempty"`
}

// UserKey derives the stable user id from an email address: lowercased,
// with '@' and '.' replaced by '-'. Two distinct emails can normalize to
// the same key (e.g. "a.b@c.com" and "a-b@c.com"); that collision is
// accepted, matching the id scheme the data was created under.
func UserKey(email string) string {
	return strings.NewReplacer("@", "-", ".", "-").Replace(strings.ToLower(email))
}

// Roster returns the fixed default users seeded on first run
func Roster() []User {
	names := []struct {
		id, name, email string
	}{
		{"alex-johnson", "Alex Johnson", "alex@company.com"},
		{"sam-wilson", "Sam Wilson", "sam@company.com"},
		{"taylor-smith", "Taylor Smith", "taylor@company.com"},
		{"jordan-lee", "Jordan Lee", "jordan@company.com"},
		{"casey-brown", "Casey Brown", "casey@company.com"},
		{"morgan-taylor", "Morgan Taylor", "morgan@company.com"},
	}

	users := make([]User, 0, len(names))
	for _, n := range names {
		users = append(users, User{
			ID:    n.id,
			Name:  n.name,
			Email: n.email,
			Badge: BadgeNew,
		})
	}
	return users
}
