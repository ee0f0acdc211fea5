package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/javajolt/kava/kava-backend/internal/domain"
	"github.com/javajolt/kava/kava-backend/internal/middleware"
	"github.com/javajolt/kava/kava-backend/internal/service"
)

// AuthHandler handles Google sign-in requests
type AuthHandler struct {
	tracker  *service.Tracker
	verifier *middleware.GoogleVerifier
	avatars  *service.AvatarService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(tracker *service.Tracker, verifier *middleware.GoogleVerifier, avatars *service.AvatarService) *AuthHandler {
	return &AuthHandler{
		tracker:  tracker,
		verifier: verifier,
		avatars:  avatars,
	}
}

// SignInRequest represents a sign-in submission.
// When Google verification is configured only IDToken is consulted;
// the profile fields are a demo-mode fallback.
type SignInRequest struct {
	IDToken string `json:"idToken"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// SignInResponse represents the signed-in user
type SignInResponse struct {
	User      UserResponse `json:"user"`
	AvatarURL string       `json:"avatarUrl,omitempty"`
}

// SignIn godoc
// @Summary Sign in with Google
// @Description Resolve a Google identity to a leaderboard user, creating it on first sign-in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Sign-in details"
// @Success 200 {object} SignInResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var identity domain.Identity
	if h.verifier.Enabled() {
		if req.IDToken == "" {
			return NewUnauthorizedError(c, "ID token required")
		}
		verified, err := h.verifier.Verify(c.Request().Context(), req.IDToken)
		if err != nil {
			return NewUnauthorizedError(c, "Invalid ID token")
		}
		identity = *verified
	} else {
		identity = domain.Identity{
			Name:       strings.TrimSpace(req.Name),
			Email:      strings.TrimSpace(req.Email),
			PictureURL: req.Picture,
		}
	}

	if identity.Email == "" {
		return NewValidationError(c, "Email is required", []ValidationError{{Field: "email", Message: "Must not be empty"}})
	}

	user := h.tracker.AddExternalUser(c.Request().Context(), identity)
	if user == nil {
		return NewInternalError(c, "Failed to sign in")
	}

	log.Info().Str("user_id", user.ID).Msg("User signed in")

	resp := SignInResponse{User: toUserResponse(*user)}
	if h.avatars.IsEnabled() {
		if identity.PictureURL != "" {
			h.avatars.SyncAsync(user.ID, identity.PictureURL)
			resp.AvatarURL = h.avatars.URL(user.ID)
		} else if err := h.avatars.Remove(c.Request().Context(), user.ID); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("Stale avatar removal failed")
		}
	}

	return c.JSON(http.StatusOK, resp)
}
