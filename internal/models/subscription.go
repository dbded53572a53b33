// Package models contains data structures for the application's domain models.
package models

import "time"

// Subscription is a directed edge from a subscriber to a channel.
// Both ends are users; the channel side is just a user viewed as a
// subscribable entity.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscription_edge" json:"subscriber_id"`
	ChannelID    uint      `gorm:"not null;uniqueIndex:idx_subscription_edge;index" json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relationships
	Subscriber *User `gorm:"foreignKey:SubscriberID" json:"subscriber,omitempty"`
	Channel    *User `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
}

// TableName specifies the table name for GORM.
func (Subscription) TableName() string {
	return "subscriptions"
}
