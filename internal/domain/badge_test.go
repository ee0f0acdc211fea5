package domain

import "testing"

func TestBadgeFor_Boundaries(t *testing.T) {
	tests := []struct {
		count    int
		expected Badge
	}{
		{0, BadgeNew},
		{1, BadgeBeginner},
		{5, BadgeBeginner},
		{6, BadgeCoffeeLover},
		{15, BadgeCoffeeLover},
		{16, BadgeExpert},
		{30, BadgeExpert},
		{31, BadgeCoffeeMaster},
		{50, BadgeCoffeeMaster},
		{51, BadgeLegend},
		{1000, BadgeLegend},
	}

	for _, tt := range tests {
		if got := BadgeFor(tt.count); got != tt.expected {
			t.Errorf("BadgeFor(%d) = %q, expected %q", tt.count, got, tt.expected)
		}
	}
}

func TestBadgeFor_NonDecreasing(t *testing.T) {
	rank := map[Badge]int{
		BadgeNew:          0,
		BadgeBeginner:     1,
		BadgeCoffeeLover:  2,
		BadgeExpert:       3,
		BadgeCoffeeMaster: 4,
		BadgeLegend:       5,
	}

	prev := rank[BadgeFor(0)]
	for c := 1; c <= 100; c++ {
		cur, ok := rank[BadgeFor(c)]
		if !ok {
			t.Fatalf("BadgeFor(%d) returned unknown badge %q", c, BadgeFor(c))
		}
		if cur < prev {
			t.Errorf("tier decreased at count %d: %q", c, BadgeFor(c))
		}
		prev = cur
	}
}

func TestBadgeFor_Deterministic(t *testing.T) {
	for c := 0; c <= 60; c++ {
		if BadgeFor(c) != BadgeFor(c) {
			t.Fatalf("BadgeFor(%d) is not deterministic", c)
		}
	}
}
