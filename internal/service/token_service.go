// Package service implements the application's business logic.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"clipstream/internal/config"
	"clipstream/internal/middleware"
	"clipstream/internal/models"
	"clipstream/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "clipstream-api"
	tokenAudience = "clipstream-client"
)

// TokenPair bundles the access and refresh token issued together.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues, rotates, and revokes JWT token pairs. The refresh
// token is single-active: issuing a new pair persists the refresh token on
// the user record, invalidating any previously issued one.
type TokenService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewTokenService(userRepo repository.UserRepository, cfg *config.Config) *TokenService {
	return &TokenService{userRepo: userRepo, cfg: cfg}
}

// Issue generates a fresh token pair for the user and persists the refresh
// token. Any previously active refresh token stops being valid.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := time.Now()

	accessClaims := jwt.MapClaims{
		"sub":       strconv.FormatUint(uint64(user.ID), 10),
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
		"iss":       tokenIssuer,
		"aud":       tokenAudience,
		"exp":       now.Add(s.cfg.AccessTokenExpiry).Unix(),
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
		"jti":       generateJTI(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).
		SignedString([]byte(s.cfg.AccessTokenSecret))
	if err != nil {
		return nil, models.NewTokenIssuanceError(err)
	}

	// The refresh token carries only the subject; everything else is
	// re-read from the database at rotation time.
	refreshClaims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(user.ID), 10),
		"iss": tokenIssuer,
		"exp": now.Add(s.cfg.RefreshTokenExpiry).Unix(),
		"iat": now.Unix(),
		"jti": generateJTI(),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(s.cfg.RefreshTokenSecret))
	if err != nil {
		return nil, models.NewTokenIssuanceError(err)
	}

	if err := s.userRepo.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, models.NewTokenIssuanceError(err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate validates an incoming refresh token and exchanges it for a new
// pair. A token that verifies but does not match the stored one is treated
// as replayed and rejected.
func (s *TokenService) Rotate(ctx context.Context, incoming string) (*TokenPair, *models.User, error) {
	if incoming == "" {
		middleware.TokenRotations.WithLabelValues("missing").Inc()
		return nil, nil, models.NewUnauthorizedError("Unauthorized request")
	}

	userID, err := s.parseRefreshToken(incoming)
	if err != nil {
		middleware.TokenRotations.WithLabelValues("invalid").Inc()
		return nil, nil, err
	}

	// Uncached read: we need the stored refresh token, which the cache
	// never holds.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		middleware.TokenRotations.WithLabelValues("invalid").Inc()
		return nil, nil, models.NewInvalidTokenError("Invalid refresh token")
	}

	if user.RefreshToken == nil || *user.RefreshToken != incoming {
		middleware.TokenRotations.WithLabelValues("reused").Inc()
		return nil, nil, models.NewTokenReusedError()
	}

	pair, err := s.Issue(ctx, user)
	if err != nil {
		middleware.TokenRotations.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	middleware.TokenRotations.WithLabelValues("success").Inc()
	return pair, user, nil
}

// Revoke clears the stored refresh token so no refresh can succeed until
// the next login. Revoking an already-revoked session is a no-op.
func (s *TokenService) Revoke(ctx context.Context, userID uint) error {
	return s.userRepo.SetRefreshToken(ctx, userID, nil)
}

// VerifyAccessToken parses and validates an access token, returning its
// claims. Used by the auth middleware.
func (s *TokenService) VerifyAccessToken(tokenString string) (jwt.MapClaims, error) {
	return parseHS256(tokenString, s.cfg.AccessTokenSecret)
}

func (s *TokenService) parseRefreshToken(tokenString string) (uint, error) {
	claims, err := parseHS256(tokenString, s.cfg.RefreshTokenSecret)
	if err != nil {
		return 0, models.NewInvalidTokenError("Invalid refresh token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, models.NewInvalidTokenError("Invalid refresh token")
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, models.NewInvalidTokenError("Invalid refresh token")
	}
	return uint(id), nil
}

// parseHS256 verifies signature, expiry, and signing method.
func parseHS256(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
