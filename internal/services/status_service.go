package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

// StatusService wraps 24h status posts.
type StatusService struct {
	repo repositories.StatusRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewStatusService(repo repositories.StatusRepository, log zerolog.Logger) *StatusService {
	return &StatusService{repo: repo, log: log, now: time.Now}
}

func (s *StatusService) UploadStatus(ctx context.Context, userID string, statusType models.StatusType, content, mediaURL string) bool {
	if !statusType.Valid() {
		return false
	}
	row := models.StatusRow{UserID: userID, Type: string(statusType)}
	if content != "" {
		row.Content = &content
	}
	if mediaURL != "" {
		row.MediaURL = &mediaURL
	}
	if err := s.repo.CreateStatus(ctx, row); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("upload status failed")
		return false
	}
	return true
}

// GetRecentStatuses returns unexpired statuses of userIDs, newest first.
func (s *StatusService) GetRecentStatuses(ctx context.Context, userIDs []string) []models.Story {
	now := s.now()
	rows, err := s.repo.ListActiveStatuses(ctx, userIDs, now)
	if err != nil {
		s.log.Warn().Err(err).Int("users", len(userIDs)).Msg("list statuses failed")
		return []models.Story{}
	}
	out := make([]models.Story, 0, len(rows))
	for _, r := range rows {
		story := models.StoryFromRow(r)
		if story.Expired(now) {
			continue
		}
		out = append(out, story)
	}
	return out
}

// PurgeExpired deletes expired statuses and returns how many were removed.
func (s *StatusService) PurgeExpired(ctx context.Context) int {
	n, err := s.repo.PurgeExpiredStatuses(ctx, s.now())
	if err != nil {
		s.log.Warn().Err(err).Msg("purge statuses failed")
		return 0
	}
	return int(n)
}
