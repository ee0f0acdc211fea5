package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/javajolt/kava/kava-backend/internal/domain"
	"github.com/javajolt/kava/kava-backend/internal/service"
)

// TrackerHandler handles leaderboard read requests
type TrackerHandler struct {
	tracker *service.Tracker
}

// NewTrackerHandler creates a new TrackerHandler
func NewTrackerHandler(tracker *service.Tracker) *TrackerHandler {
	return &TrackerHandler{
		tracker: tracker,
	}
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	CoffeeCount int        `json:"coffeeCount"`
	Badge       string     `json:"badge"`
	LastScan    *time.Time `json:"lastScan"`
	External    bool       `json:"isExternalIdentity"`
}

// ActivityResponse represents an activity entry in API responses
type ActivityResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	Action      string    `json:"action"`
	CoffeeCount int       `json:"coffeeCount"`
	Timestamp   time.Time `json:"timestamp"`
}

// StatsResponse represents the leaderboard summary in API responses
type StatsResponse struct {
	TotalCoffees int               `json:"totalCoffees"`
	AvgPerDay    int               `json:"avgPerDay"`
	TopDrinker   *UserResponse     `json:"topDrinker"`
	MostRecent   *ActivityResponse `json:"mostRecent"`
	ActiveUsers  int               `json:"activeUsers"`
}

// UsersListResponse wraps the user list with the loading flag
type UsersListResponse struct {
	Users   []UserResponse `json:"users"`
	Loading bool           `json:"loading"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		CoffeeCount: u.CoffeeCount,
		Badge:       string(u.Badge),
		LastScan:    u.LastScan,
		External:    u.External,
	}
}

func toActivityResponse(a domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		UserName:    a.UserName,
		Action:      a.Action,
		CoffeeCount: a.CoffeeCount,
		Timestamp:   a.Timestamp,
	}
}

// GetUsers godoc
// @Summary List users
// @Description Get all users ordered by coffee count
// @Tags tracker
// @Produce json
// @Success 200 {object} UsersListResponse
// @Router /users [get]
func (h *TrackerHandler) GetUsers(c echo.Context) error {
	users := h.tracker.Users()

	resp := UsersListResponse{
		Users:   make([]UserResponse, 0, len(users)),
		Loading: h.tracker.Loading(),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}

	return c.JSON(http.StatusOK, resp)
}

// GetActivity godoc
// @Summary Recent activity
// @Description Get the most recent coffee scans, newest first
// @Tags tracker
// @Produce json
// @Success 200 {array} ActivityResponse
// @Router /activity [get]
func (h *TrackerHandler) GetActivity(c echo.Context) error {
	activity := h.tracker.Activity()

	resp := make([]ActivityResponse, 0, len(activity))
	for _, a := range activity {
		resp = append(resp, toActivityResponse(a))
	}

	return c.JSON(http.StatusOK, resp)
}

// GetStats godoc
// @Summary Leaderboard stats
// @Description Get aggregate coffee statistics for the office
// @Tags tracker
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /stats [get]
func (h *TrackerHandler) GetStats(c echo.Context) error {
	stats := h.tracker.Stats()

	resp := StatsResponse{
		TotalCoffees: stats.TotalCoffees,
		AvgPerDay:    stats.AvgPerDay,
		ActiveUsers:  stats.ActiveUsers,
	}
	if stats.TopDrinker != nil {
		user := toUserResponse(*stats.TopDrinker)
		resp.TopDrinker = &user
	}
	if stats.MostRecent != nil {
		activity := toActivityResponse(*stats.MostRecent)
		resp.MostRecent = &activity
	}

	return c.JSON(http.StatusOK, resp)
}
