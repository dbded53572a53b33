package service

import (
	"context"
	"strings"

	"clipstream/internal/cache"
	"clipstream/internal/models"
	"clipstream/internal/repository"
)

// ChannelService serves public channel profiles and subscription toggles.
type ChannelService struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
}

func NewChannelService(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository) *ChannelService {
	return &ChannelService{userRepo: userRepo, subRepo: subRepo}
}

// GetChannelProfile returns the channel view of a user: identity fields
// plus subscriber counts and whether the viewer subscribes. viewerID 0
// means an anonymous viewer.
func (s *ChannelService) GetChannelProfile(ctx context.Context, username string, viewerID uint) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, models.NewValidationError("Username is missing")
	}

	var profile models.ChannelProfile
	key := cache.ChannelProfileKey(username, viewerID)
	err := cache.Aside(ctx, key, &profile, cache.ChannelProfileTTL, func() error {
		loaded, err := s.subRepo.GetChannelProfile(ctx, username, viewerID)
		if err != nil {
			return err
		}
		profile = *loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ToggleSubscription subscribes the user to the channel, or unsubscribes
// if a subscription already exists. Returns the new subscribed state.
func (s *ChannelService) ToggleSubscription(ctx context.Context, subscriberID uint, channelUsername string) (bool, error) {
	channelUsername = strings.ToLower(strings.TrimSpace(channelUsername))
	if channelUsername == "" {
		return false, models.NewValidationError("Username is missing")
	}

	channel, err := s.userRepo.GetByUsername(ctx, channelUsername)
	if err != nil {
		return false, err
	}
	if channel == nil {
		return false, models.NewNotFoundError("Channel")
	}
	if channel.ID == subscriberID {
		return false, models.NewValidationError("Cannot subscribe to your own channel")
	}

	subscribed, err := s.subRepo.Exists(ctx, subscriberID, channel.ID)
	if err != nil {
		return false, err
	}

	if subscribed {
		if err := s.subRepo.Delete(ctx, subscriberID, channel.ID); err != nil {
			return false, err
		}
	} else {
		sub := &models.Subscription{SubscriberID: subscriberID, ChannelID: channel.ID}
		if err := s.subRepo.Create(ctx, sub); err != nil {
			// A concurrent toggle can beat us to the insert; report the
			// resulting state instead of a conflict.
			if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeConflict {
				return true, nil
			}
			return false, err
		}
	}

	// The channel's cached profiles are viewer-scoped, so a precise
	// invalidation is only possible for this viewer.
	cache.Invalidate(ctx, cache.ChannelProfileKey(channelUsername, subscriberID))

	return !subscribed, nil
}
