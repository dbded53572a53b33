package repository

import (
	"context"
	"errors"

	"clipstream/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository defines persistence operations for subscription edges.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID uint) error
	Exists(ctx context.Context, subscriberID, channelID uint) (bool, error)
	CountForChannel(ctx context.Context, channelID uint) (int64, error)
	CountForSubscriber(ctx context.Context, subscriberID uint) (int64, error)
	GetChannelProfile(ctx context.Context, username string, viewerID uint) (*models.ChannelProfile, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Already subscribed to this channel")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, channelID uint) error {
	if err := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&models.Subscription{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriptionRepository) Exists(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *subscriptionRepository) CountForChannel(ctx context.Context, channelID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *subscriptionRepository) CountForSubscriber(ctx context.Context, subscriberID uint) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// GetChannelProfile computes the public channel projection in a single read:
// subscriber count, subscribed-to count, and whether the viewer has a
// subscription edge pointing at this channel. viewerID 0 means anonymous and
// never matches an edge.
func (r *subscriptionRepository) GetChannelProfile(ctx context.Context, username string, viewerID uint) (*models.ChannelProfile, error) {
	var profile models.ChannelProfile

	err := readDB(r.db).WithContext(ctx).Model(&models.User{}).
		Select(`users.full_name,
			users.username,
			users.email,
			users.avatar,
			users.cover_image,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = users.id) AS subscribers_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = users.id) AS channels_subscribed_to_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = users.id AND s.subscriber_id = ?) > 0 AS is_subscribed`,
			viewerID).
		Where("users.username = ?", username).
		Take(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Channel")
		}
		return nil, models.NewInternalError(err)
	}

	return &profile, nil
}
