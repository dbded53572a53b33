package server

import (
	"clipstream/internal/models"
	"clipstream/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser handles GET /api/users/me
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.accountService.GetCurrentUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user.Sanitized(), "Current user fetched successfully")
}

// UpdateProfile handles PATCH /api/users/me
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.accountService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user.Sanitized(), "Account details updated successfully")
}

// ChangePassword handles POST /api/users/me/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.accountService.ChangePassword(c.UserContext(), currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		return serviceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, nil, "Password changed successfully")
}

// UpdateAvatar handles PATCH /api/users/me/avatar
func (s *Server) UpdateAvatar(c *fiber.Ctx) error {
	path, err := s.saveTempUpload(c, "avatar")
	if err != nil {
		return serviceError(c, err)
	}

	user, err := s.accountService.UpdateAvatar(c.UserContext(), currentUserID(c), path)
	if err != nil {
		return serviceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user.Sanitized(), "Avatar updated successfully")
}

// UpdateCoverImage handles PATCH /api/users/me/cover-image
func (s *Server) UpdateCoverImage(c *fiber.Ctx) error {
	path, err := s.saveTempUpload(c, "coverImage")
	if err != nil {
		return serviceError(c, err)
	}

	user, err := s.accountService.UpdateCoverImage(c.UserContext(), currentUserID(c), path)
	if err != nil {
		return serviceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user.Sanitized(), "Cover image updated successfully")
}
