package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// ExportService renders the leaderboard snapshot as CSV. It is a pure
// read-only projection of the tracker's state.
type ExportService struct {
	tracker *Tracker
	now     func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(tracker *Tracker) *ExportService {
	return &ExportService{
		tracker: tracker,
		now:     time.Now,
	}
}

// Filename returns the date-stamped download name, e.g.
// coffee-stats-2026-08-31.csv
func (s *ExportService) Filename() string {
	return fmt.Sprintf("coffee-stats-%s.csv", s.now().Format("2006-01-02"))
}

// CSV renders rank, name, count, relative last-scan time and badge for
// every user, in leaderboard order
func (s *ExportService) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Rank", "Name", "Coffees", "Last Scan", "Badge"}); err != nil {
		return nil, err
	}

	now := s.now()
	for i, u := range s.tracker.Users() {
		row := []string{
			fmt.Sprintf("%d", i+1),
			u.Name,
			fmt.Sprintf("%d", u.CoffeeCount),
			RelativeTime(u.LastScan, now),
			string(u.Badge),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// RelativeTime renders a human last-scan label relative to now
func RelativeTime(t *time.Time, now time.Time) string {
	if t == nil {
		return "Never"
	}

	diff := now.Sub(*t)
	mins := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case hours < 24:
		return fmt.Sprintf("%d hr ago", hours)
	case days == 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}
