package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageUpload(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"avatar.png", false},
		{"avatar.jpg", false},
		{"avatar.jpeg", false},
		{"banner.gif", false},
		{"banner.webp", false},
		{"script.exe", true},
		{"notes.txt", true},
		{"noextension", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			fh := &multipart.FileHeader{Filename: tt.filename}
			err := validateImageUpload(fh)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func multipartWithFile(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("file-content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSaveTempUpload(t *testing.T) {
	s := &Server{config: testServerConfig()}

	app := fiber.New()
	app.Post("/upload", func(c *fiber.Ctx) error {
		path, err := s.saveTempUpload(c, "avatar")
		if err != nil {
			return serviceError(c, err)
		}
		if path != "" {
			defer func() { _ = os.Remove(path) }()
		}
		return c.JSON(fiber.Map{"path": path})
	})

	t.Run("saves an image to a temp file", func(t *testing.T) {
		body, contentType := multipartWithFile(t, "avatar", "avatar.png")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("absent field is not an error", func(t *testing.T) {
		body, contentType := multipartWithFile(t, "other", "avatar.png")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects non-image files", func(t *testing.T) {
		body, contentType := multipartWithFile(t, "avatar", "malware.exe")
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestRefreshTokenFromRequest(t *testing.T) {
	app := fiber.New()
	app.Post("/refresh", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": refreshTokenFromRequest(c)})
	})

	readToken := func(t *testing.T, resp *http.Response) string {
		t.Helper()
		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body.Token
	}

	t.Run("cookie wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"refresh_token":"from-body"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "from-cookie"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "from-cookie", readToken(t, resp))
		_ = resp.Body.Close()
	})

	t.Run("body fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"refresh_token":"from-body"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "from-body", readToken(t, resp))
		_ = resp.Body.Close()
	})

	t.Run("neither yields empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/refresh", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Empty(t, readToken(t, resp))
		_ = resp.Body.Close()
	})
}

func TestAuthCookies(t *testing.T) {
	s := &Server{config: testServerConfig()}

	app := fiber.New()
	app.Post("/set", func(c *fiber.Ctx) error {
		s.setAuthCookies(c, "access-value", "refresh-value")
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/clear", func(c *fiber.Ctx) error {
		s.clearAuthCookies(c)
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("set attaches both httpOnly cookies", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/set", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		cookies := resp.Cookies()
		byName := map[string]*http.Cookie{}
		for _, ck := range cookies {
			byName[ck.Name] = ck
		}

		require.Contains(t, byName, "accessToken")
		require.Contains(t, byName, "refreshToken")
		assert.Equal(t, "access-value", byName["accessToken"].Value)
		assert.Equal(t, "refresh-value", byName["refreshToken"].Value)
		assert.True(t, byName["accessToken"].HttpOnly)
		assert.True(t, byName["refreshToken"].HttpOnly)
		// Not secure outside production
		assert.False(t, byName["accessToken"].Secure)
	})

	t.Run("clear expires both cookies", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/clear", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		for _, ck := range resp.Cookies() {
			assert.Empty(t, ck.Value)
		}
	})
}
