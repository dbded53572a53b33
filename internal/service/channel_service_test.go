package service

import (
	"context"
	"testing"

	"clipstream/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelService_GetChannelProfile(t *testing.T) {
	t.Parallel()

	t.Run("lowercases the username before lookup", func(t *testing.T) {
		t.Parallel()
		subs := noopSubscriptionRepo()
		subs.getChannelProfileFn = func(_ context.Context, username string, viewerID uint) (*models.ChannelProfile, error) {
			assert.Equal(t, "somechannel", username)
			assert.Equal(t, uint(9), viewerID)
			return &models.ChannelProfile{Username: username, SubscribersCount: 3, IsSubscribed: true}, nil
		}
		svc := NewChannelService(noopUserRepo(), subs)

		profile, err := svc.GetChannelProfile(context.Background(), "  SomeChannel ", 9)
		require.NoError(t, err)
		assert.Equal(t, int64(3), profile.SubscribersCount)
		assert.True(t, profile.IsSubscribed)
	})

	t.Run("blank username fails validation", func(t *testing.T) {
		t.Parallel()
		svc := NewChannelService(noopUserRepo(), noopSubscriptionRepo())
		_, err := svc.GetChannelProfile(context.Background(), "   ", 0)
		assertValidationError(t, err)
	})

	t.Run("unknown channel is not found", func(t *testing.T) {
		t.Parallel()
		subs := noopSubscriptionRepo()
		subs.getChannelProfileFn = func(context.Context, string, uint) (*models.ChannelProfile, error) {
			return nil, models.NewNotFoundError("Channel")
		}
		svc := NewChannelService(noopUserRepo(), subs)
		_, err := svc.GetChannelProfile(context.Background(), "ghost", 0)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestChannelService_ToggleSubscription(t *testing.T) {
	t.Parallel()

	channelUser := func() *models.User {
		return &models.User{ID: 20, Username: "somechannel"}
	}

	t.Run("subscribes when no edge exists", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByUsernameFn = func(context.Context, string) (*models.User, error) { return channelUser(), nil }
		subs := noopSubscriptionRepo()
		var created *models.Subscription
		subs.createFn = func(_ context.Context, sub *models.Subscription) error {
			created = sub
			return nil
		}
		svc := NewChannelService(users, subs)

		subscribed, err := svc.ToggleSubscription(context.Background(), 9, "somechannel")
		require.NoError(t, err)
		assert.True(t, subscribed)
		require.NotNil(t, created)
		assert.Equal(t, uint(9), created.SubscriberID)
		assert.Equal(t, uint(20), created.ChannelID)
	})

	t.Run("unsubscribes when an edge exists", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByUsernameFn = func(context.Context, string) (*models.User, error) { return channelUser(), nil }
		subs := noopSubscriptionRepo()
		subs.existsFn = func(context.Context, uint, uint) (bool, error) { return true, nil }
		var deleted bool
		subs.deleteFn = func(_ context.Context, subscriberID, channelID uint) error {
			assert.Equal(t, uint(9), subscriberID)
			assert.Equal(t, uint(20), channelID)
			deleted = true
			return nil
		}
		svc := NewChannelService(users, subs)

		subscribed, err := svc.ToggleSubscription(context.Background(), 9, "somechannel")
		require.NoError(t, err)
		assert.False(t, subscribed)
		assert.True(t, deleted)
	})

	t.Run("self-subscription fails validation", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByUsernameFn = func(context.Context, string) (*models.User, error) { return channelUser(), nil }
		svc := NewChannelService(users, noopSubscriptionRepo())
		_, err := svc.ToggleSubscription(context.Background(), 20, "somechannel")
		assertValidationError(t, err)
	})

	t.Run("unknown channel is not found", func(t *testing.T) {
		t.Parallel()
		svc := NewChannelService(noopUserRepo(), noopSubscriptionRepo())
		_, err := svc.ToggleSubscription(context.Background(), 9, "ghost")
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("concurrent insert conflict reports subscribed", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByUsernameFn = func(context.Context, string) (*models.User, error) { return channelUser(), nil }
		subs := noopSubscriptionRepo()
		subs.createFn = func(context.Context, *models.Subscription) error {
			return models.NewConflictError("Already subscribed to this channel")
		}
		svc := NewChannelService(users, subs)

		subscribed, err := svc.ToggleSubscription(context.Background(), 9, "somechannel")
		require.NoError(t, err)
		assert.True(t, subscribed)
	})
}
