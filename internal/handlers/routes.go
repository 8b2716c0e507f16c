package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Tweets        TweetStore
	Playlists     PlaylistStore
	Subscriptions SubscriptionStore
	History       SearchHistoryStore
	Tokens        TokenService
	Verifier      middleware.TokenVerifier
	Blobs         BlobStore
	Prober        DurationProber
	DB            Pinger
	AuthLimiter   middleware.RateLimiter
	UploadDir     string
	NowFunc       func() time.Time
}

// RegisterRoutes wires HTTP handlers into the provided router.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	health := HealthHandler{DB: deps.DB}
	users := UserHandler{Users: deps.Users, Tokens: deps.Tokens, Blobs: deps.Blobs, History: deps.History, UploadDir: deps.UploadDir, NowFunc: deps.NowFunc}
	videos := VideoHandler{Videos: deps.Videos, Likes: deps.Likes, Users: deps.Users, Blobs: deps.Blobs, Prober: deps.Prober, UploadDir: deps.UploadDir, NowFunc: deps.NowFunc}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, NowFunc: deps.NowFunc}
	likes := LikeHandler{Likes: deps.Likes}
	tweets := TweetHandler{Tweets: deps.Tweets, Likes: deps.Likes, NowFunc: deps.NowFunc}
	playlists := PlaylistHandler{Playlists: deps.Playlists, NowFunc: deps.NowFunc}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	dashboard := DashboardHandler{Videos: deps.Videos}
	history := SearchHistoryHandler{History: deps.History}

	requireAuth := middleware.RequireAuth(deps.Verifier)
	optionalAuth := middleware.OptionalAuth(deps.Verifier)

	r.Get("/healthz", health.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if deps.AuthLimiter != nil {
					r.Use(middleware.Limit(deps.AuthLimiter))
				}
				r.Post("/register", users.Register)
				r.Post("/login", users.Login)
			})
			r.Post("/refresh-token", users.RefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/channel/{userId}", users.Channel)
				r.Get("/search", users.Search)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", users.Logout)
				r.Post("/change-password", users.ChangePassword)
				r.Get("/current-user", users.CurrentUser)
				r.Patch("/update-account", users.UpdateAccount)
				r.Patch("/avatar", users.UpdateAvatar)
				r.Patch("/cover-image", users.UpdateCoverImage)
				r.Get("/watch-history", users.WatchHistory)
				r.Delete("/watch-history", users.ClearWatchHistory)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/", videos.Feed)
				r.Get("/tags/{tag}", videos.ByTag)
				r.Get("/{videoId}", videos.Detail)
				r.Get("/related/{videoId}", videos.Related)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", videos.Create)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/toggle/publish/{videoId}", videos.TogglePublish)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/{videoId}", comments.List)
				r.Get("/replies/{commentId}", comments.Replies)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{videoId}", comments.Create)
				r.Post("/{videoId}/{parentId}", comments.Create)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
				r.Patch("/pin/{commentId}/{videoId}", comments.Pin)
				r.Patch("/unpin/{commentId}/{videoId}", comments.Unpin)
			})
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/toggle/v/{videoId}", likes.ToggleVideo)
			r.Post("/toggle/c/{commentId}", likes.ToggleComment)
			r.Post("/toggle/t/{tweetId}", likes.ToggleTweet)
			r.Get("/videos", likes.LikedVideos)
		})

		r.Route("/tweets", func(r chi.Router) {
			r.With(optionalAuth).Get("/user/{userId}", tweets.ListForUser)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", tweets.Create)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})
		})

		r.Route("/playlist", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/{playlistId}", playlists.Get)
				r.Get("/user/{userId}", playlists.ListForUser)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", playlists.Create)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.With(optionalAuth).Get("/u/{subscriberId}", subscriptions.Subscribed)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/c/{channelId}", subscriptions.Toggle)
				r.Get("/", subscriptions.Subscribers)
				r.Get("/videos", subscriptions.Feed)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/videos", dashboard.VideoList)
			r.Get("/stats/{channelId}", dashboard.Stats)
		})

		r.Route("/search-history", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", history.Get)
			r.Post("/", history.Record)
			r.Patch("/", history.RemoveTerm)
			r.Delete("/", history.Clear)
		})
	})
}
