package server

import (
	"clipstream/internal/models"
	"clipstream/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register. Expects multipart form data with
// the account fields plus an avatar file and an optional coverImage file.
func (s *Server) Register(c *fiber.Ctx) error {
	avatarPath, err := s.saveTempUpload(c, "avatar")
	if err != nil {
		return serviceError(c, err)
	}
	coverPath, err := s.saveTempUpload(c, "coverImage")
	if err != nil {
		return serviceError(c, err)
	}

	user, err := s.accountService.Register(c.UserContext(), service.RegisterInput{
		Username:       c.FormValue("username"),
		Email:          c.FormValue("email"),
		FullName:       c.FormValue("fullName"),
		Password:       c.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, user.Sanitized(), "User registered successfully")
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, pair, err := s.accountService.Login(c.UserContext(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return serviceError(c, err)
	}

	s.setAuthCookies(c, pair.AccessToken, pair.RefreshToken)

	// Tokens are also returned in the body for clients that cannot use
	// cookies (mobile, CLI).
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"user":          user.Sanitized(),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "User logged in successfully")
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.accountService.Logout(c.UserContext(), currentUserID(c)); err != nil {
		return serviceError(c, err)
	}

	s.clearAuthCookies(c)
	return models.Respond(c, fiber.StatusOK, nil, "User logged out successfully")
}

// Refresh handles POST /api/auth/refresh. The incoming refresh token is
// exchanged for a new pair; presenting an old token after rotation revokes
// nothing but is rejected as replayed.
func (s *Server) Refresh(c *fiber.Ctx) error {
	incoming := refreshTokenFromRequest(c)

	pair, _, err := s.tokenService.Rotate(c.UserContext(), incoming)
	if err != nil {
		return serviceError(c, err)
	}

	s.setAuthCookies(c, pair.AccessToken, pair.RefreshToken)

	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	}, "Access token refreshed")
}
