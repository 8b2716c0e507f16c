package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/handlers"
	"github.com/cliptube/backend/internal/media"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
	"github.com/cliptube/backend/internal/workers"
)

// Likes orphaned by a failed tweet cleanup stay around at least this long
// before the reaper removes them.
const likeReaperGrace = time.Hour

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The like repository is returned separately so the reaper can share
// it.
func buildDependencies(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) (handlers.Dependencies, *repositories.PostgresLikeRepository, error) {
	blobs, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	ffprobe := media.NewFFProbeProber(cfg.FFProbePath, cfg.FFProbeTimeout)
	prober := media.NewCachingProber(ffprobe, cfg.DurationCacheTTL)

	tokens := auth.NewManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	likes := repositories.NewPostgresLikeRepository(pool)

	deps := handlers.Dependencies{
		Users:         repositories.NewPostgresUserRepository(pool),
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Likes:         likes,
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		History:       repositories.NewPostgresSearchHistoryRepository(pool),
		Tokens:        tokens,
		Verifier:      tokens,
		Blobs:         blobs,
		Prober:        prober,
		DB:            pool,
		AuthLimiter:   middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
		UploadDir:     cfg.UploadTempDir,
	}

	return deps, likes, nil
}

func startLikeReaper(likes *repositories.PostgresLikeRepository, cfg config.Config, logger *slog.Logger) *workers.LikeReaper {
	return workers.NewLikeReaper(likes, workers.LikeReaperConfig{
		Interval: cfg.LikeReaperInterval,
		Grace:    likeReaperGrace,
	}, logger)
}
