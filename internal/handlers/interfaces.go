package handlers

import (
	"context"
	"time"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	FindByRefreshToken(ctx context.Context, token string) (models.User, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	UpdateAvatar(ctx context.Context, id, url, key string) (string, error)
	UpdateCoverImage(ctx context.Context, id, url, key string) (string, error)
	ChannelProfile(ctx context.Context, channelID, actorID string) (models.ChannelProfile, error)
	SearchChannels(ctx context.Context, term, actorID string, p pagination.Params) ([]models.Channel, int64, error)
	AddWatchEntry(ctx context.Context, userID, videoID string, watchedAt time.Time) error
	WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.WatchHistoryDay, int64, error)
	ClearWatchHistory(ctx context.Context, userID string) error
}

// TokenService issues and verifies the access/refresh token pair.
type TokenService interface {
	Issue(userID string) (auth.TokenPair, error)
	VerifyRefresh(token string) (string, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// VideoStore captures persistence for videos and their compositions.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Detail(ctx context.Context, videoID, actorID string) (models.VideoDetail, error)
	IncrementViews(ctx context.Context, videoID string) error
	Feed(ctx context.Context, filter repositories.VideoFilter, p pagination.Params) ([]models.VideoSummary, int64, error)
	Related(ctx context.Context, ref models.Video, limit int) ([]models.VideoSummary, error)
	Update(ctx context.Context, video models.Video) error
	TogglePublish(ctx context.Context, videoID string) (bool, error)
	Delete(ctx context.Context, videoID string) error
	PurgeComments(ctx context.Context, videoID string) error
	ChannelStats(ctx context.Context, channelID string, publishedOnly bool) (models.ChannelStats, error)
	DashboardVideos(ctx context.Context, ownerID string, p pagination.Params) ([]models.DashboardVideo, int64, error)
}

// CommentStore captures persistence for comments and the pin mutations.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID, actorID string, p pagination.Params) ([]models.CommentView, int64, error)
	ListReplies(ctx context.Context, parentID, actorID string, p pagination.Params) ([]models.CommentView, int64, error)
	Pin(ctx context.Context, videoID, commentID string) error
	Unpin(ctx context.Context, videoID, commentID string) error
}

// LikeStore captures the like toggle and cleanup operations.
type LikeStore interface {
	Toggle(ctx context.Context, actorID string, kind models.LikeKind, targetID string) (bool, error)
	ListLikedVideos(ctx context.Context, actorID string, p pagination.Params) ([]models.LikedVideo, int64, error)
	DeleteForVideo(ctx context.Context, videoID string) error
	DeleteForTweet(ctx context.Context, tweetID string) error
	MarkTweetDeleted(ctx context.Context, tweetID string, deletedAt time.Time) error
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	UpdateOwned(ctx context.Context, id, ownerID, content string) error
	DeleteOwned(ctx context.Context, id, ownerID string) error
	ListForUser(ctx context.Context, userID, actorID string, p pagination.Params) ([]models.TweetView, int64, error)
}

// PlaylistStore captures persistence for playlists and their membership.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ListForUser(ctx context.Context, userID string, p pagination.Params) ([]models.PlaylistSummary, int64, error)
	Detail(ctx context.Context, playlistID string) (models.PlaylistDetail, error)
}

// SubscriptionStore captures the subscribe toggle and list compositions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribedChannels(ctx context.Context, subscriberID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error)
	ListSubscribers(ctx context.Context, channelID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error)
	SubscribedFeed(ctx context.Context, subscriberID string, p pagination.Params) ([]models.VideoSummary, int64, error)
}

// SearchHistoryStore keeps one capped term list per user.
type SearchHistoryStore interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Record(ctx context.Context, userID, term string) ([]string, error)
	RemoveTerm(ctx context.Context, userID, term string) ([]string, error)
	Clear(ctx context.Context, userID string) error
}

// BlobStore saves and removes media blobs.
type BlobStore interface {
	Upload(ctx context.Context, path, keyPrefix string) (storage.Asset, error)
	Delete(ctx context.Context, key string) error
}

// DurationProber reports the duration of a local media file in seconds.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}
