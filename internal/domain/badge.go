package domain

// Badge is the tier label derived solely from a user's coffee count
type Badge string

// Badge tiers, lowest to highest
const (
	BadgeNew          Badge = "New"
	BadgeBeginner     Badge = "Beginner"
	BadgeCoffeeLover  Badge = "Coffee Lover"
	BadgeExpert       Badge = "Expert"
	BadgeCoffeeMaster Badge = "Coffee Master"
	BadgeLegend       Badge = "Legend"
)

// BadgeFor maps a coffee count to its tier. Pure and total: every
// non-negative count yields exactly one badge.
func BadgeFor(count int) Badge {
	switch {
	case count == 0:
		return BadgeNew
	case count <= 5:
		return BadgeBeginner
	case count <= 15:
		return BadgeCoffeeLover
	case count <= 30:
		return BadgeExpert
	case count <= 50:
		return BadgeCoffeeMaster
	default:
		return BadgeLegend
	}
}
