package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipstream/internal/config"
	"clipstream/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn              func(context.Context, uint) (*models.User, error)
	getByIDCachedFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn        func(context.Context, string) (*models.User, error)
	getByEmailFn           func(context.Context, string) (*models.User, error)
	getByUsernameOrEmailFn func(context.Context, string, string) (*models.User, error)
	createFn               func(context.Context, *models.User) error
	updateFn               func(context.Context, *models.User) error
	updateColumnsFn        func(context.Context, uint, map[string]any) error
	setRefreshTokenFn      func(context.Context, uint, *string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDCached(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDCachedFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	return s.getByUsernameOrEmailFn(ctx, username, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateColumns(ctx context.Context, id uint, values map[string]any) error {
	return s.updateColumnsFn(ctx, id, values)
}
func (s *userRepoStub) SetRefreshToken(ctx context.Context, id uint, token *string) error {
	return s.setRefreshTokenFn(ctx, id, token)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:              func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByIDCachedFn:        func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn:        func(context.Context, string) (*models.User, error) { return nil, nil },
		getByEmailFn:           func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameOrEmailFn: func(context.Context, string, string) (*models.User, error) { return nil, nil },
		createFn:               func(context.Context, *models.User) error { return nil },
		updateFn:               func(context.Context, *models.User) error { return nil },
		updateColumnsFn:        func(context.Context, uint, map[string]any) error { return nil },
		setRefreshTokenFn:      func(context.Context, uint, *string) error { return nil },
	}
}

type subscriptionRepoStub struct {
	createFn            func(context.Context, *models.Subscription) error
	deleteFn            func(context.Context, uint, uint) error
	existsFn            func(context.Context, uint, uint) (bool, error)
	countForChannelFn   func(context.Context, uint) (int64, error)
	countForSubFn       func(context.Context, uint) (int64, error)
	getChannelProfileFn func(context.Context, string, uint) (*models.ChannelProfile, error)
}

func (s *subscriptionRepoStub) Create(ctx context.Context, sub *models.Subscription) error {
	return s.createFn(ctx, sub)
}
func (s *subscriptionRepoStub) Delete(ctx context.Context, subscriberID, channelID uint) error {
	return s.deleteFn(ctx, subscriberID, channelID)
}
func (s *subscriptionRepoStub) Exists(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	return s.existsFn(ctx, subscriberID, channelID)
}
func (s *subscriptionRepoStub) CountForChannel(ctx context.Context, channelID uint) (int64, error) {
	return s.countForChannelFn(ctx, channelID)
}
func (s *subscriptionRepoStub) CountForSubscriber(ctx context.Context, subscriberID uint) (int64, error) {
	return s.countForSubFn(ctx, subscriberID)
}
func (s *subscriptionRepoStub) GetChannelProfile(ctx context.Context, username string, viewerID uint) (*models.ChannelProfile, error) {
	return s.getChannelProfileFn(ctx, username, viewerID)
}

func noopSubscriptionRepo() *subscriptionRepoStub {
	return &subscriptionRepoStub{
		createFn:          func(context.Context, *models.Subscription) error { return nil },
		deleteFn:          func(context.Context, uint, uint) error { return nil },
		existsFn:          func(context.Context, uint, uint) (bool, error) { return false, nil },
		countForChannelFn: func(context.Context, uint) (int64, error) { return 0, nil },
		countForSubFn:     func(context.Context, uint) (int64, error) { return 0, nil },
		getChannelProfileFn: func(context.Context, string, uint) (*models.ChannelProfile, error) {
			return &models.ChannelProfile{}, nil
		},
	}
}

type uploaderStub struct {
	uploadFn func(context.Context, string) (string, error)
}

func (s *uploaderStub) Upload(ctx context.Context, localPath string) (string, error) {
	return s.uploadFn(ctx, localPath)
}

func okUploader() *uploaderStub {
	return &uploaderStub{
		uploadFn: func(_ context.Context, path string) (string, error) {
			return "https://media.test/" + path, nil
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                "test",
		AccessTokenSecret:  "test-access-secret-0123456789abcdef",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenSecret: "test-refresh-secret-0123456789abcdef",
		RefreshTokenExpiry: 240 * time.Hour,
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}
