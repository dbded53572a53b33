package service

import (
	"context"
	"os"
	"strings"

	"clipstream/internal/media"
	"clipstream/internal/middleware"
	"clipstream/internal/models"
	"clipstream/internal/repository"
	"clipstream/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AccountService handles registration, authentication, and profile
// management for user accounts.
type AccountService struct {
	userRepo repository.UserRepository
	uploader media.Uploader
	tokens   *TokenService
}

func NewAccountService(userRepo repository.UserRepository, uploader media.Uploader, tokens *TokenService) *AccountService {
	return &AccountService{userRepo: userRepo, uploader: uploader, tokens: tokens}
}

type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	// Local paths of the already-saved multipart uploads. The service
	// deletes them after the upload attempt, success or not.
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type UpdateProfileInput struct {
	UserID   uint
	FullName string
	Email    string
}

// Register creates a new account. The avatar is mandatory; the cover image
// is optional. Both local files are removed once the uploads have been
// attempted.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	defer removeLocal(in.AvatarPath)
	defer removeLocal(in.CoverImagePath)

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, models.NewValidationError("All fields are required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User with email or username already exists")
	}

	if in.AvatarPath == "" {
		return nil, models.NewValidationError("Avatar file is required")
	}

	avatarURL, err := s.uploadImage(ctx, "avatar", in.AvatarPath)
	if err != nil {
		return nil, models.NewUploadFailedError("Avatar file is required")
	}

	var coverURL string
	if in.CoverImagePath != "" {
		// A failed cover upload does not block registration; the account
		// simply starts without one.
		coverURL, _ = s.uploadImage(ctx, "cover", in.CoverImagePath)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   string(hashed),
		Avatar:     avatarURL,
		CoverImage: coverURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Re-read to confirm the row landed and pick up DB-assigned fields.
	created, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

// Login authenticates by username or email and issues a fresh token pair.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.User, *TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" && email == "" {
		return nil, nil, models.NewValidationError("Username or email is required")
	}

	user, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		middleware.LoginAttempts.WithLabelValues("not_found").Inc()
		return nil, nil, models.NewNotFoundError("User")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		middleware.LoginAttempts.WithLabelValues("invalid_password").Inc()
		return nil, nil, models.NewUnauthorizedError("Invalid user credentials")
	}

	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		middleware.LoginAttempts.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	middleware.LoginAttempts.WithLabelValues("success").Inc()
	return user, pair, nil
}

// Logout revokes the active refresh token. Safe to call repeatedly.
func (s *AccountService) Logout(ctx context.Context, userID uint) error {
	return s.tokens.Revoke(ctx, userID)
}

// GetCurrentUser returns the authenticated user's record.
func (s *AccountService) GetCurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByIDCached(ctx, userID)
}

// ChangePassword verifies the old password before storing a new hash.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return models.NewUnauthorizedError("Invalid old password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	return s.userRepo.UpdateColumns(ctx, userID, map[string]any{"password": string(hashed)})
}

// UpdateProfile replaces full name and email. Both are required so a
// partial body cannot silently blank a field.
func (s *AccountService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if fullName == "" || email == "" {
		return nil, models.NewValidationError("All fields are required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.userRepo.UpdateColumns(ctx, in.UserID, map[string]any{
		"full_name": fullName,
		"email":     email,
	}); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, in.UserID)
}

// UpdateAvatar uploads a replacement avatar and stores its URL.
func (s *AccountService) UpdateAvatar(ctx context.Context, userID uint, localPath string) (*models.User, error) {
	return s.updateImage(ctx, userID, "avatar", "avatar", localPath)
}

// UpdateCoverImage uploads a replacement cover image and stores its URL.
func (s *AccountService) UpdateCoverImage(ctx context.Context, userID uint, localPath string) (*models.User, error) {
	return s.updateImage(ctx, userID, "cover", "cover_image", localPath)
}

func (s *AccountService) updateImage(ctx context.Context, userID uint, kind, column, localPath string) (*models.User, error) {
	defer removeLocal(localPath)

	if localPath == "" {
		return nil, models.NewValidationError(kind + " file is missing")
	}

	url, err := s.uploadImage(ctx, kind, localPath)
	if err != nil {
		return nil, models.NewUploadFailedError("Error while uploading " + kind)
	}

	if err := s.userRepo.UpdateColumns(ctx, userID, map[string]any{column: url}); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

func (s *AccountService) uploadImage(ctx context.Context, kind, localPath string) (string, error) {
	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		middleware.MediaUploads.WithLabelValues(kind, "error").Inc()
		return "", err
	}
	middleware.MediaUploads.WithLabelValues(kind, "success").Inc()
	return url, nil
}

// removeLocal deletes a temp upload file. Missing files are fine; the path
// may be empty when no file was submitted.
func removeLocal(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
