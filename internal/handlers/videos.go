package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// VideoHandler implements the video endpoints: feed, upload, detail with its
// view side effects, mutation and the cascading delete.
type VideoHandler struct {
	Videos    VideoStore
	Likes     LikeStore
	Users     UserStore
	Blobs     BlobStore
	Prober    DurationProber
	UploadDir string
	NowFunc   func() time.Time
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// Feed handles GET /api/v1/videos. Filters: owner, category (including
// trending), tag and free-text query.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := repositories.VideoFilter{
		OwnerID:  q.Get("owner"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Query:    strings.TrimSpace(q.Get("query")),
	}

	if filter.OwnerID != "" && !validID(filter.OwnerID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid owner id")
		return
	}
	if filter.Category != "" && filter.Category != models.CategoryTrending && !models.ValidCategory(filter.Category) {
		respondError(ctx, w, http.StatusBadRequest, "unknown category")
		return
	}

	p, err := pagination.Parse(q, repositories.VideoSortColumns, "createdAt", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	videos, total, err := h.Videos.Feed(ctx, filter, p)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "videos", pagination.NewPage(videos, total, p))
}

// ByTag handles GET /api/v1/videos/tags/{tag}.
func (h VideoHandler) ByTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tag := strings.TrimSpace(chi.URLParam(r, "tag"))
	if tag == "" {
		respondError(ctx, w, http.StatusBadRequest, "tag is required")
		return
	}

	p, err := pagination.Parse(r.URL.Query(), repositories.VideoSortColumns, "createdAt", true)
	if err != nil {
		respondStoreError(ctx, w, err, "")
		return
	}

	videos, total, err := h.Videos.Feed(ctx, repositories.VideoFilter{Tag: tag}, p)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "videos", pagination.NewPage(videos, total, p))
}

// Create handles POST /api/v1/videos. The multipart form carries the video
// and thumbnail files plus title, description, category and comma-separated
// tags. New videos start unpublished.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := middleware.ActorFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	category := r.FormValue("category")
	tags, ok := parseTags(r.FormValue("tags"))

	switch {
	case title == "":
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	case !models.ValidCategory(category):
		respondError(ctx, w, http.StatusBadRequest, "unknown category")
		return
	case !ok:
		respondError(ctx, w, http.StatusBadRequest, "at most 5 tags are allowed")
		return
	}

	videoPath, err := saveUpload(r, "video", h.UploadDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "video file is required")
			return
		}
		logger.Error("spool video upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Probe before uploading; the blob store consumes the local file.
	duration, err := h.Prober.Probe(ctx, videoPath)
	if err != nil {
		logger.Warn("probe video duration", "error", err)
	}

	videoAsset, err := h.Blobs.Upload(ctx, videoPath, "videos")
	if err != nil {
		logger.Error("upload video", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "video upload failed")
		return
	}

	thumbPath, err := saveUpload(r, "thumbnail", h.UploadDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "thumbnail file is required")
			return
		}
		logger.Error("spool thumbnail upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	thumbAsset, err := h.Blobs.Upload(ctx, thumbPath, "thumbnails")
	if err != nil {
		logger.Error("upload thumbnail", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "thumbnail upload failed")
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      actor,
		VideoURL:     videoAsset.URL,
		VideoKey:     videoAsset.Key,
		ThumbnailURL: thumbAsset.URL,
		ThumbnailKey: thumbAsset.Key,
		Title:        title,
		Description:  description,
		Category:     category,
		Tags:         tags,
		Duration:     duration,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, "video uploaded", video.ID)
}

// Detail handles GET /api/v1/videos/{videoId}. A successful lookup counts one
// view and, for authenticated actors, records the video under today's watch
// history bucket.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := middleware.ActorFromContext(ctx)

	videoID := chi.URLParam(r, "videoId")
	if !requireID(ctx, w, videoID, "video id") {
		return
	}

	detail, err := h.Videos.Detail(ctx, videoID, actor)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("increment views", "videoId", videoID, "error", err)
	} else {
		detail.Views++
	}

	if actor != "" {
		if err := h.Users.AddWatchEntry(ctx, actor, videoID, h.now()); err != nil {
			logger.Warn("record watch entry", "videoId", videoID, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, "video detail", detail)
}

// Related handles GET /api/v1/videos/related/{videoId}.
func (h VideoHandler) Related(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := chi.URLParam(r, "videoId")
	if !requireID(ctx, w, videoID, "video id") {
		return
	}

	ref, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(ctx, w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	videos, err := h.Videos.Related(ctx, ref, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}

	respondData(ctx, w, http.StatusOK, "related videos", videos)
}

// Update handles PATCH /api/v1/videos/{videoId}. Only the owner may edit;
// the thumbnail may be replaced, the video file and owner never change.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := middleware.ActorFromContext(ctx)

	video, ok := h.ownedVideo(w, r, actor)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		video.Title = title
	}
	if description := r.FormValue("description"); description != "" {
		video.Description = strings.TrimSpace(description)
	}
	if category := r.FormValue("category"); category != "" {
		if !models.ValidCategory(category) {
			respondError(ctx, w, http.StatusBadRequest, "unknown category")
			return
		}
		video.Category = category
	}
	if raw := r.FormValue("tags"); raw != "" {
		tags, ok := parseTags(raw)
		if !ok {
			respondError(ctx, w, http.StatusBadRequest, "at most 5 tags are allowed")
			return
		}
		video.Tags = tags
	}

	previousThumb := ""
	if path, err := saveUpload(r, "thumbnail", h.UploadDir); err == nil {
		asset, err := h.Blobs.Upload(ctx, path, "thumbnails")
		if err != nil {
			logger.Error("upload thumbnail", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "thumbnail upload failed")
			return
		}
		previousThumb = video.ThumbnailKey
		video.ThumbnailURL, video.ThumbnailKey = asset.URL, asset.Key
	} else if !errors.Is(err, errMissingFile) {
		logger.Error("spool thumbnail upload", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if previousThumb != "" {
		if err := h.Blobs.Delete(ctx, previousThumb); err != nil {
			logger.Warn("release previous thumbnail", "key", previousThumb, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, "video updated", video.ID)
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.ActorFromContext(ctx)

	video, ok := h.ownedVideo(w, r, actor)
	if !ok {
		return
	}

	published, err := h.Videos.TogglePublish(ctx, video.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, "publish state toggled", map[string]bool{"isPublished": published})
}

// Delete handles DELETE /api/v1/videos/{videoId}. The record, its comments,
// its likes and both blobs are removed concurrently; each outcome is judged
// on its own, and nothing-to-clean-up counts as success.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := middleware.ActorFromContext(ctx)

	video, ok := h.ownedVideo(w, r, actor)
	if !ok {
		return
	}

	ctx, span := logging.StartSpan(ctx, "video-delete-cascade")

	var (
		wg   sync.WaitGroup
		errs = make([]error, 5)
	)
	steps := []func() error{
		func() error { return h.Videos.Delete(ctx, video.ID) },
		func() error { return h.Videos.PurgeComments(ctx, video.ID) },
		func() error { return h.Likes.DeleteForVideo(ctx, video.ID) },
		func() error { return h.Blobs.Delete(ctx, video.VideoKey) },
		func() error { return h.Blobs.Delete(ctx, video.ThumbnailKey) },
	}
	wg.Add(len(steps))
	for i, step := range steps {
		go func(i int, step func() error) {
			defer wg.Done()
			errs[i] = step()
		}(i, step)
	}
	wg.Wait()
	span.End()

	if errs[0] != nil {
		respondStoreError(ctx, w, errs[0], "video not found")
		return
	}
	failed := false
	for i, err := range errs[1:] {
		if err != nil {
			failed = true
			logger.Error("video cleanup step failed", "videoId", video.ID, "step", i+1, "error", err)
		}
	}
	if failed {
		respondError(ctx, w, http.StatusInternalServerError, "video deleted with incomplete cleanup")
		return
	}

	respondData(ctx, w, http.StatusOK, "video deleted", nil)
}

// ownedVideo resolves the route video and enforces ownership: a malformed id
// is a BadRequest, a missing video a NotFound and a foreign one Forbidden.
func (h VideoHandler) ownedVideo(w http.ResponseWriter, r *http.Request, actor string) (models.Video, bool) {
	ctx := r.Context()

	videoID := chi.URLParam(r, "videoId")
	if !requireID(ctx, w, videoID, "video id") {
		return models.Video{}, false
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return models.Video{}, false
	}
	if video.OwnerID != actor {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this video")
		return models.Video{}, false
	}

	return video, true
}

// parseTags splits a comma-separated tag list, dropping blanks. It reports
// false when the cap is exceeded.
func parseTags(raw string) ([]string, bool) {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) > models.MaxTags {
		return nil, false
	}
	return tags, true
}
