package server

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"clipstream/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20 // 10 MiB per image

// currentUserID reads the user ID placed in locals by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// saveTempUpload writes a multipart file field to a temp file and returns
// its path. Returns ("", nil) when the field is absent. The caller (via the
// service layer) is responsible for deleting the file.
func (s *Server) saveTempUpload(c *fiber.Ctx, field string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	if fileHeader.Size > maxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("%s file exceeds the 10MB limit", field))
	}
	if err := validateImageUpload(fileHeader); err != nil {
		return "", err
	}

	ext := filepath.Ext(fileHeader.Filename)
	dst := filepath.Join(os.TempDir(), fmt.Sprintf("upload-%s%s", uuid.New().String(), ext))
	if err := c.SaveFile(fileHeader, dst); err != nil {
		return "", models.NewInternalError(err)
	}
	return dst, nil
}

// validateImageUpload restricts uploads to common image extensions.
func validateImageUpload(fh *multipart.FileHeader) error {
	switch filepath.Ext(fh.Filename) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return nil
	default:
		return models.NewValidationError("Only image files are allowed (png, jpg, jpeg, gif, webp)")
	}
}

// setAuthCookies attaches the token pair as httpOnly cookies.
func (s *Server) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	secure := s.config.Env == "production" || s.config.Env == "prod"

	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Expires:  time.Now().Add(s.config.AccessTokenExpiry),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Expires:  time.Now().Add(s.config.RefreshTokenExpiry),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// clearAuthCookies expires both auth cookies.
func (s *Server) clearAuthCookies(c *fiber.Ctx) {
	secure := s.config.Env == "production" || s.config.Env == "prod"
	for _, name := range []string{"accessToken", "refreshToken"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   secure,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
	}
}

// refreshTokenFromRequest reads the refresh token from the cookie or, as a
// fallback for non-browser clients, the JSON body.
func refreshTokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies("refreshToken"); token != "" {
		return token
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return ""
	}
	return body.RefreshToken
}

// serviceError writes the standardized envelope using the error's mapped
// HTTP status.
func serviceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusOf(err), err)
}
