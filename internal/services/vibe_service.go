package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vibechat-service/internal/media"
	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

// VibeService uploads vibes to the bucket and tracks their views.
type VibeService struct {
	repo   repositories.VibeRepository
	bucket media.Bucket
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewVibeService(repo repositories.VibeRepository, bucket media.Bucket, ttl time.Duration, log zerolog.Logger) *VibeService {
	return &VibeService{repo: repo, bucket: bucket, ttl: ttl, log: log, now: time.Now}
}

// UploadVibe stores the media, then inserts the vibe expiring ttl from now.
func (s *VibeService) UploadVibe(ctx context.Context, userID string, vibeType models.VibeType, data []byte, note string) (models.Vibe, bool) {
	if !vibeType.Valid() || len(data) == 0 {
		return models.Vibe{}, false
	}
	now := s.now()
	key := media.ObjectKey(userID, now, vibeType)
	if err := s.bucket.Upload(ctx, key, data, vibeType.ContentType()); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("key", key).Msg("vibe upload failed")
		return models.Vibe{}, false
	}

	row := models.VibeRow{
		UserID:     userID,
		Type:       string(vibeType),
		MediaURL:   s.bucket.PublicURL(key),
		StorageKey: key,
		ExpiresAt:  now.Add(s.ttl),
	}
	if note != "" {
		row.Note = &note
	}
	created, err := s.repo.CreateVibe(ctx, row)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("key", key).Msg("vibe insert failed")
		if derr := s.bucket.Delete(ctx, key); derr != nil {
			s.log.Warn().Err(derr).Str("key", key).Msg("orphaned vibe object")
		}
		return models.Vibe{}, false
	}
	return models.VibeFromRow(created), true
}

// GetVibes returns unexpired vibes of userIDs, newest first.
func (s *VibeService) GetVibes(ctx context.Context, userIDs []string) []models.Vibe {
	now := s.now()
	rows, err := s.repo.ListActiveVibes(ctx, userIDs, now)
	if err != nil {
		s.log.Warn().Err(err).Int("users", len(userIDs)).Msg("list vibes failed")
		return []models.Vibe{}
	}
	out := make([]models.Vibe, 0, len(rows))
	for _, r := range rows {
		v := models.VibeFromRow(r)
		if v.Expired(now) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// RecordView stores a view by an accepted connection of the owner on an
// unexpired vibe. Owners and strangers are refused.
func (s *VibeService) RecordView(ctx context.Context, vibeID, viewerID string) bool {
	row, err := s.repo.GetVibe(ctx, vibeID)
	if err != nil {
		s.log.Warn().Err(err).Str("vibe_id", vibeID).Msg("get vibe failed")
		return false
	}
	if row.UserID == viewerID || models.VibeFromRow(row).Expired(s.now()) {
		return false
	}
	allowed, err := s.repo.RecordView(ctx, vibeID, viewerID)
	if err != nil {
		s.log.Warn().Err(err).Str("vibe_id", vibeID).Str("viewer_id", viewerID).Msg("record view failed")
		return false
	}
	if !allowed {
		s.log.Debug().Str("vibe_id", vibeID).Str("viewer_id", viewerID).Msg("view refused, viewer not connected to owner")
	}
	return allowed
}

// GetViewers lists viewers of a vibe. Only the owner sees them.
func (s *VibeService) GetViewers(ctx context.Context, vibeID, ownerID string) []models.VibeViewer {
	row, err := s.repo.GetVibe(ctx, vibeID)
	if err != nil || row.UserID != ownerID {
		if err != nil {
			s.log.Warn().Err(err).Str("vibe_id", vibeID).Msg("get vibe failed")
		}
		return []models.VibeViewer{}
	}
	rows, err := s.repo.ListViewers(ctx, vibeID)
	if err != nil {
		s.log.Warn().Err(err).Str("vibe_id", vibeID).Msg("list viewers failed")
		return []models.VibeViewer{}
	}
	out := make([]models.VibeViewer, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.VibeViewerFromRow(r))
	}
	return out
}

// PurgeExpired deletes expired vibes and their bucket objects.
func (s *VibeService) PurgeExpired(ctx context.Context) int {
	keys, err := s.repo.PurgeExpiredVibes(ctx, s.now())
	if err != nil {
		s.log.Warn().Err(err).Msg("purge vibes failed")
		return 0
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.bucket.Delete(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("delete vibe object failed")
		}
	}
	return len(keys)
}
