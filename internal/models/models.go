package models

import "time"

// User represents an account within the ClipTube platform. The password hash
// and refresh token never leave the service; responses use the projection
// types in views.go.
type User struct {
	ID            string
	Username      string
	Email         string
	Password      string
	FullName      string
	AvatarURL     string
	AvatarKey     string
	CoverImageURL string
	CoverImageKey string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Video is an uploaded video document. Owner is immutable after creation.
type Video struct {
	ID           string
	OwnerID      string
	VideoURL     string
	VideoKey     string
	ThumbnailURL string
	ThumbnailKey string
	Title        string
	Description  string
	Category     string
	Tags         []string
	Duration     float64
	Views        int64
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Categories is the closed set of video categories.
var Categories = []string{
	"education",
	"entertainment",
	"gaming",
	"music",
	"news",
	"sports",
	"technology",
	"travel",
	"vlog",
	"other",
}

// CategoryTrending is a pseudo-category accepted by the feed: it applies no
// category filter and ranks by view count instead of recency.
const CategoryTrending = "trending"

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// MaxTags caps the number of tags per video; the store enforces it too.
const MaxTags = 5

// Comment is either a top-level comment (ParentID empty) or a reply exactly
// one level deep. Only top-level comments may be pinned.
type Comment struct {
	ID        string
	VideoID   string
	OwnerID   string
	ParentID  string
	Content   string
	IsPinned  bool
	IsEdited  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikeKind tags the single target a Like applies to.
type LikeKind string

const (
	LikeVideo   LikeKind = "video"
	LikeComment LikeKind = "comment"
	LikeTweet   LikeKind = "tweet"
)

// Like records one user liking one target. TweetDeleted is a soft-expiry
// marker set when the tweet was removed but its likes could not be deleted
// immediately; a background reaper purges marked rows.
type Like struct {
	ID           string
	LikedBy      string
	Kind         LikeKind
	TargetID     string
	TweetDeleted *time.Time
	CreatedAt    time.Time
}

// Tweet is a short text post.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Playlist groups an ordered list of videos. Duplicate entries are rejected.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subscription links a subscriber to a channel (both users).
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// SearchHistory holds a user's recent search terms, most-recent-first,
// lowercased, deduplicated and capped.
type SearchHistory struct {
	UserID    string
	Searches  []string
	UpdatedAt time.Time
}

// MaxSearchTerms caps the retained search history length.
const MaxSearchTerms = 15
