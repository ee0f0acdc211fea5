package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/javajolt/kava/kava-backend/internal/service"
)

// CoffeeHandler handles coffee scan requests
type CoffeeHandler struct {
	tracker *service.Tracker
}

// NewCoffeeHandler creates a new CoffeeHandler
func NewCoffeeHandler(tracker *service.Tracker) *CoffeeHandler {
	return &CoffeeHandler{
		tracker: tracker,
	}
}

// AddCoffeeRequest represents a coffee scan submission
type AddCoffeeRequest struct {
	UserID string `json:"userId"`
}

// AddCoffeeResponse acknowledges a coffee scan
type AddCoffeeResponse struct {
	Accepted bool `json:"accepted"`
}

// AddCoffee godoc
// @Summary Record a coffee
// @Description Increment the coffee count for a user. Scans for unknown
// @Description users are accepted and silently discarded.
// @Tags tracker
// @Accept json
// @Produce json
// @Param request body AddCoffeeRequest true "Scan details"
// @Success 202 {object} AddCoffeeResponse
// @Failure 400 {object} ProblemDetails
// @Router /coffees [post]
func (h *CoffeeHandler) AddCoffee(c echo.Context) error {
	var req AddCoffeeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return NewValidationError(c, "User ID is required", []ValidationError{{Field: "userId", Message: "Must not be empty"}})
	}

	log.Debug().Str("user_id", userID).Msg("Coffee scan received")

	// Unknown users and write failures are absorbed, so a scan is
	// always acknowledged once the payload parses.
	h.tracker.AddCoffee(c.Request().Context(), userID)

	return c.JSON(http.StatusAccepted, AddCoffeeResponse{Accepted: true})
}
