package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vibechat-service/internal/cache"
	"vibechat-service/internal/models"
	"vibechat-service/internal/repositories"
)

// SearchLimit caps username search results.
const SearchLimit = 20

// ProfileService wraps profile persistence and the shared profile cache.
type ProfileService struct {
	repo  repositories.ProfileRepository
	cache cache.ProfileCache
	log   zerolog.Logger
	now   func() time.Time
}

func NewProfileService(repo repositories.ProfileRepository, profileCache cache.ProfileCache, log zerolog.Logger) *ProfileService {
	if profileCache == nil {
		profileCache = cache.NoopProfileCache{}
	}
	return &ProfileService{repo: repo, cache: profileCache, log: log, now: time.Now}
}

// GetProfile returns a public profile, reusing the cache when possible.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (models.Profile, bool) {
	if p, ok := s.cache.Get(ctx, userID); ok {
		return p, true
	}
	row, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrProfileNotFound) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("get profile failed")
		}
		return models.Profile{}, false
	}
	p := models.ProfileFromRow(row)
	s.cache.Set(ctx, p)
	return p, true
}

// GetOwnProfile reads the profile straight from the database so the chat PIN is present.
func (s *ProfileService) GetOwnProfile(ctx context.Context, userID string) (models.Profile, bool) {
	row, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("get own profile failed")
		return models.Profile{}, false
	}
	return models.ProfileFromRow(row), true
}

// UpdateProfile upserts the caller's profile. Status defaults to online.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) bool {
	row := update.ToRow(userID, "", s.now())
	if err := s.repo.UpsertProfile(ctx, row); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("update profile failed")
		return false
	}
	s.cache.Invalidate(ctx, userID)
	return true
}

// SearchProfiles matches usernames. A blank query yields nothing.
func (s *ProfileService) SearchProfiles(ctx context.Context, query, callerID string) []models.Profile {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Profile{}
	}
	rows, err := s.repo.SearchProfiles(ctx, query, callerID, SearchLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("search profiles failed")
		return []models.Profile{}
	}
	return profilesFromRows(rows)
}

func profilesFromRows(rows []models.ProfileRow) []models.Profile {
	out := make([]models.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ProfileFromRow(r))
	}
	return out
}
