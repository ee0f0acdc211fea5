package domain

import "time"

// ActionAddedCoffee is the single action label activity records carry
const ActionAddedCoffee = "added a coffee"

// RecentActivityLimit caps how many activity records the tracker keeps
const RecentActivityLimit = 10

// Activity is an append-only record of one coffee scan. UserName and
// CoffeeCount are point-in-time snapshots of the acting user; they do not
// change if the user is later renamed or scans again.
type Activity struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Action      string    `json:"action"`
	CoffeeCount int       `json:"coffeeCount"`
	Timestamp   time.Time `json:"timestamp"`
}
