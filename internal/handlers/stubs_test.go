package handlers

import (
	"context"
	"time"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

type videoStoreStub struct {
	video      models.Video
	findErr    error
	detail     models.VideoDetail
	detailErr  error
	created    models.Video
	createErr  error
	deleteErr  error
	purgeErr   error
	feed       []models.VideoSummary
	feedErr    error
	stats      models.ChannelStats
	statsErr   error
	dashboard  []models.DashboardVideo
	deleted    []string
	purged     []string
	viewBumped []string
}

func (s *videoStoreStub) Create(ctx context.Context, video models.Video) error {
	s.created = video
	return s.createErr
}

func (s *videoStoreStub) FindByID(ctx context.Context, id string) (models.Video, error) {
	if s.findErr != nil {
		return models.Video{}, s.findErr
	}
	return s.video, nil
}

func (s *videoStoreStub) Detail(ctx context.Context, videoID, actorID string) (models.VideoDetail, error) {
	if s.detailErr != nil {
		return models.VideoDetail{}, s.detailErr
	}
	return s.detail, nil
}

func (s *videoStoreStub) IncrementViews(ctx context.Context, videoID string) error {
	s.viewBumped = append(s.viewBumped, videoID)
	return nil
}

func (s *videoStoreStub) Feed(ctx context.Context, filter repositories.VideoFilter, p pagination.Params) ([]models.VideoSummary, int64, error) {
	if s.feedErr != nil {
		return nil, 0, s.feedErr
	}
	return s.feed, int64(len(s.feed)), nil
}

func (s *videoStoreStub) Related(ctx context.Context, ref models.Video, limit int) ([]models.VideoSummary, error) {
	return s.feed, nil
}

func (s *videoStoreStub) Update(ctx context.Context, video models.Video) error {
	s.video = video
	return nil
}

func (s *videoStoreStub) TogglePublish(ctx context.Context, videoID string) (bool, error) {
	s.video.IsPublished = !s.video.IsPublished
	return s.video.IsPublished, nil
}

func (s *videoStoreStub) Delete(ctx context.Context, videoID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, videoID)
	return nil
}

func (s *videoStoreStub) PurgeComments(ctx context.Context, videoID string) error {
	if s.purgeErr != nil {
		return s.purgeErr
	}
	s.purged = append(s.purged, videoID)
	return nil
}

func (s *videoStoreStub) ChannelStats(ctx context.Context, channelID string, publishedOnly bool) (models.ChannelStats, error) {
	if s.statsErr != nil {
		return models.ChannelStats{}, s.statsErr
	}
	return s.stats, nil
}

func (s *videoStoreStub) DashboardVideos(ctx context.Context, ownerID string, p pagination.Params) ([]models.DashboardVideo, int64, error) {
	return s.dashboard, int64(len(s.dashboard)), nil
}

type commentStoreStub struct {
	comment   models.Comment
	findErr   error
	created   models.Comment
	createErr error
	updateErr error
	deleteErr error
	pinErr    error
	unpinErr  error
	pinned    []string
	unpinned  []string
	deleted   []string
}

func (s *commentStoreStub) Create(ctx context.Context, comment models.Comment) error {
	s.created = comment
	return s.createErr
}

func (s *commentStoreStub) FindByID(ctx context.Context, id string) (models.Comment, error) {
	if s.findErr != nil {
		return models.Comment{}, s.findErr
	}
	return s.comment, nil
}

func (s *commentStoreStub) Update(ctx context.Context, id, content string) error {
	return s.updateErr
}

func (s *commentStoreStub) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *commentStoreStub) ListForVideo(ctx context.Context, videoID, actorID string, p pagination.Params) ([]models.CommentView, int64, error) {
	return nil, 0, nil
}

func (s *commentStoreStub) ListReplies(ctx context.Context, parentID, actorID string, p pagination.Params) ([]models.CommentView, int64, error) {
	return nil, 0, nil
}

func (s *commentStoreStub) Pin(ctx context.Context, videoID, commentID string) error {
	if s.pinErr != nil {
		return s.pinErr
	}
	s.pinned = append(s.pinned, commentID)
	return nil
}

func (s *commentStoreStub) Unpin(ctx context.Context, videoID, commentID string) error {
	if s.unpinErr != nil {
		return s.unpinErr
	}
	s.unpinned = append(s.unpinned, commentID)
	return nil
}

type likeStoreStub struct {
	toggleResult   bool
	toggleErr      error
	lastKind       models.LikeKind
	lastTarget     string
	liked          []models.LikedVideo
	deleteVideoErr error
	deleteTweetErr error
	markErr        error
	markedTweets   []string
	deletedTweets  []string
}

func (s *likeStoreStub) Toggle(ctx context.Context, actorID string, kind models.LikeKind, targetID string) (bool, error) {
	s.lastKind = kind
	s.lastTarget = targetID
	return s.toggleResult, s.toggleErr
}

func (s *likeStoreStub) ListLikedVideos(ctx context.Context, actorID string, p pagination.Params) ([]models.LikedVideo, int64, error) {
	return s.liked, int64(len(s.liked)), nil
}

func (s *likeStoreStub) DeleteForVideo(ctx context.Context, videoID string) error {
	return s.deleteVideoErr
}

func (s *likeStoreStub) DeleteForTweet(ctx context.Context, tweetID string) error {
	if s.deleteTweetErr != nil {
		return s.deleteTweetErr
	}
	s.deletedTweets = append(s.deletedTweets, tweetID)
	return nil
}

func (s *likeStoreStub) MarkTweetDeleted(ctx context.Context, tweetID string, deletedAt time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.markedTweets = append(s.markedTweets, tweetID)
	return nil
}

type tweetStoreStub struct {
	created   models.Tweet
	createErr error
	updateErr error
	deleteErr error
	tweets    []models.TweetView
}

func (s *tweetStoreStub) Create(ctx context.Context, tweet models.Tweet) error {
	s.created = tweet
	return s.createErr
}

func (s *tweetStoreStub) UpdateOwned(ctx context.Context, id, ownerID, content string) error {
	return s.updateErr
}

func (s *tweetStoreStub) DeleteOwned(ctx context.Context, id, ownerID string) error {
	return s.deleteErr
}

func (s *tweetStoreStub) ListForUser(ctx context.Context, userID, actorID string, p pagination.Params) ([]models.TweetView, int64, error) {
	return s.tweets, int64(len(s.tweets)), nil
}

type playlistStoreStub struct {
	playlist  models.Playlist
	findErr   error
	createErr error
	addErr    error
	removeErr error
	added     [][2]string
	removed   [][2]string
}

func (s *playlistStoreStub) Create(ctx context.Context, playlist models.Playlist) error {
	s.playlist = playlist
	return s.createErr
}

func (s *playlistStoreStub) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	if s.findErr != nil {
		return models.Playlist{}, s.findErr
	}
	return s.playlist, nil
}

func (s *playlistStoreStub) Update(ctx context.Context, id, name, description string) error {
	return nil
}

func (s *playlistStoreStub) Delete(ctx context.Context, id string) error {
	return nil
}

func (s *playlistStoreStub) AddVideo(ctx context.Context, playlistID, videoID string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, [2]string{playlistID, videoID})
	return nil
}

func (s *playlistStoreStub) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, [2]string{playlistID, videoID})
	return nil
}

func (s *playlistStoreStub) ListForUser(ctx context.Context, userID string, p pagination.Params) ([]models.PlaylistSummary, int64, error) {
	return nil, 0, nil
}

func (s *playlistStoreStub) Detail(ctx context.Context, playlistID string) (models.PlaylistDetail, error) {
	return models.PlaylistDetail{}, s.findErr
}

type subscriptionStoreStub struct {
	toggleResult bool
	toggleErr    error
	lastChannel  string
	channels     []models.SubscribedChannel
	feed         []models.VideoSummary
}

func (s *subscriptionStoreStub) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	s.lastChannel = channelID
	return s.toggleResult, s.toggleErr
}

func (s *subscriptionStoreStub) ListSubscribedChannels(ctx context.Context, subscriberID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error) {
	return s.channels, int64(len(s.channels)), nil
}

func (s *subscriptionStoreStub) ListSubscribers(ctx context.Context, channelID, actorID string, p pagination.Params) ([]models.SubscribedChannel, int64, error) {
	return s.channels, int64(len(s.channels)), nil
}

func (s *subscriptionStoreStub) SubscribedFeed(ctx context.Context, subscriberID string, p pagination.Params) ([]models.VideoSummary, int64, error) {
	return s.feed, int64(len(s.feed)), nil
}

type userStoreStub struct {
	user         models.User
	findErr      error
	created      models.User
	createErr    error
	refreshToken string
	profile      models.ChannelProfile
	profileErr   error
	channels     []models.Channel
	history      []models.WatchHistoryDay
	watched      []string
}

func (s *userStoreStub) Create(ctx context.Context, user models.User) error {
	s.created = user
	return s.createErr
}

func (s *userStoreStub) FindByID(ctx context.Context, id string) (models.User, error) {
	if s.findErr != nil {
		return models.User{}, s.findErr
	}
	return s.user, nil
}

func (s *userStoreStub) FindByLogin(ctx context.Context, login string) (models.User, error) {
	if s.findErr != nil {
		return models.User{}, s.findErr
	}
	return s.user, nil
}

func (s *userStoreStub) FindByRefreshToken(ctx context.Context, token string) (models.User, error) {
	if s.findErr != nil {
		return models.User{}, s.findErr
	}
	return s.user, nil
}

func (s *userStoreStub) UpdateDetails(ctx context.Context, id, fullName, email string) error {
	return nil
}

func (s *userStoreStub) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return nil
}

func (s *userStoreStub) SetRefreshToken(ctx context.Context, id, token string) error {
	s.refreshToken = token
	return nil
}

func (s *userStoreStub) UpdateAvatar(ctx context.Context, id, url, key string) (string, error) {
	return "", nil
}

func (s *userStoreStub) UpdateCoverImage(ctx context.Context, id, url, key string) (string, error) {
	return "", nil
}

func (s *userStoreStub) ChannelProfile(ctx context.Context, channelID, actorID string) (models.ChannelProfile, error) {
	if s.profileErr != nil {
		return models.ChannelProfile{}, s.profileErr
	}
	return s.profile, nil
}

func (s *userStoreStub) SearchChannels(ctx context.Context, term, actorID string, p pagination.Params) ([]models.Channel, int64, error) {
	return s.channels, int64(len(s.channels)), nil
}

func (s *userStoreStub) AddWatchEntry(ctx context.Context, userID, videoID string, watchedAt time.Time) error {
	s.watched = append(s.watched, videoID)
	return nil
}

func (s *userStoreStub) WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.WatchHistoryDay, int64, error) {
	return s.history, int64(len(s.history)), nil
}

func (s *userStoreStub) ClearWatchHistory(ctx context.Context, userID string) error {
	return nil
}

type blobStoreStub struct {
	asset      storage.Asset
	uploadErr  error
	deleteErr  error
	uploaded   []string
	deletedKey []string
}

func (s *blobStoreStub) Upload(ctx context.Context, path, keyPrefix string) (storage.Asset, error) {
	if s.uploadErr != nil {
		return storage.Asset{}, s.uploadErr
	}
	s.uploaded = append(s.uploaded, keyPrefix)
	return s.asset, nil
}

func (s *blobStoreStub) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedKey = append(s.deletedKey, key)
	return nil
}

type searchHistoryStub struct {
	terms     []string
	recordErr error
	removeErr error
	clearErr  error
	recorded  []string
}

func (s *searchHistoryStub) Get(ctx context.Context, userID string) ([]string, error) {
	return s.terms, nil
}

func (s *searchHistoryStub) Record(ctx context.Context, userID, term string) ([]string, error) {
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	s.recorded = append(s.recorded, term)
	return s.terms, nil
}

func (s *searchHistoryStub) RemoveTerm(ctx context.Context, userID, term string) ([]string, error) {
	if s.removeErr != nil {
		return nil, s.removeErr
	}
	return s.terms, nil
}

func (s *searchHistoryStub) Clear(ctx context.Context, userID string) error {
	return s.clearErr
}
