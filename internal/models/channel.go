package models

// ChannelProfile is the public read-side projection of a user viewed as a
// channel. It is computed by a single aggregated query and never persisted.
type ChannelProfile struct {
	FullName                  string `json:"full_name"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"cover_image,omitempty"`
	SubscribersCount          int64  `json:"subscribers_count"`
	ChannelsSubscribedToCount int64  `json:"channels_subscribed_to_count"`
	// IsSubscribed reports whether the requesting viewer has a subscription
	// edge pointing at this channel. Always false for anonymous viewers.
	IsSubscribed bool `json:"is_subscribed"`
}
