package models

import "time"

// Owner is the public-safe projection of a user joined into other documents.
// It never carries email, password hash or refresh token.
type Owner struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// Channel extends Owner with subscription-derived fields.
type Channel struct {
	Owner
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoSummary is the list-shaped video projection used by feeds, playlists,
// watch history and related-video results.
type VideoSummary struct {
	ID           string    `json:"id"`
	ThumbnailURL string    `json:"thumbnail"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Owner        Owner     `json:"owner"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// VideoDetail is the single-video projection with the playable file, the
// channel-shaped owner and like annotations.
type VideoDetail struct {
	ID           string    `json:"id"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Owner        Channel   `json:"owner"`
	LikesCount   int64     `json:"likesCount"`
	IsLiked      bool      `json:"isLiked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CommentView annotates a comment with its owner projection and derived
// counts. RepliesCount is only populated for top-level comments.
type CommentView struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Owner        Owner     `json:"owner"`
	IsPinned     bool      `json:"isPinned"`
	IsEdited     bool      `json:"isEdited"`
	LikesCount   int64     `json:"likesCount"`
	IsLiked      bool      `json:"isLiked"`
	RepliesCount int64     `json:"repliesCount,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TweetView annotates a tweet with its owner projection and like state.
type TweetView struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Owner      Owner     `json:"owner"`
	LikesCount int64     `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// LikedVideo pairs a liked video with the moment it was liked.
type LikedVideo struct {
	LikedAt time.Time    `json:"likedAt"`
	Video   VideoSummary `json:"video"`
}

// PlaylistSummary is the list-shaped playlist projection.
type PlaylistSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	OwnerID      string    `json:"ownerId"`
	VideoIDs     []string  `json:"videos"`
	TotalVideos  int64     `json:"totalVideos"`
	ThumbnailURL string    `json:"thumbnail"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PlaylistDetail resolves every contained video that still exists; entries
// pointing at deleted videos are silently dropped.
type PlaylistDetail struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Videos      []VideoSummary `json:"videos"`
	TotalVideos int64          `json:"totalVideos"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// SubscribedChannel is one entry of a user's subscription list.
type SubscribedChannel struct {
	Channel      Channel   `json:"channel"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// ChannelProfile is the public channel page projection. Email is exposed here
// deliberately, matching the channel-info contract.
type ChannelProfile struct {
	ID                        string    `json:"id"`
	Username                  string    `json:"username"`
	FullName                  string    `json:"fullName"`
	Email                     string    `json:"email"`
	AvatarURL                 string    `json:"avatar"`
	CoverImageURL             string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
	CreatedAt                 time.Time `json:"createdAt"`
}

// ChannelStats aggregates a channel's dashboard numbers.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// DashboardVideo is a channel-owned video with its like count, shown on the
// owner dashboard regardless of publish state.
type DashboardVideo struct {
	VideoSummary
	IsPublished bool  `json:"isPublished"`
	LikesCount  int64 `json:"likesCount"`
}

// WatchHistoryDay groups watched videos under one calendar day.
type WatchHistoryDay struct {
	Date   string         `json:"date"`
	Videos []VideoSummary `json:"videos"`
}

// CurrentUser is the self-view of an account, safe to return to its owner.
type CurrentUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PublicUser converts a full user record into its self-view.
func PublicUser(u User) CurrentUser {
	return CurrentUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
