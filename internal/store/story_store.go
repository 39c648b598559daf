package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
)

type StoryStoreConfig struct {
	UserID   string
	Statuses StatusService
	Vibes    VibeService
	// Audience returns the accepted connections whose posts are visible.
	Audience func() []string
	Log      zerolog.Logger
}

// StoryStore holds the visible statuses and vibes of a user and their
// connections. Expired entries are never returned.
type StoryStore struct {
	userID   string
	statuses StatusService
	vibes    VibeService
	audience func() []string
	log      zerolog.Logger
	now      func() time.Time

	mu        sync.Mutex
	stories   []models.Story
	vibeList  []models.Vibe
	viewedIDs map[string]struct{}
}

func NewStoryStore(cfg StoryStoreConfig) *StoryStore {
	return &StoryStore{
		userID:    cfg.UserID,
		statuses:  cfg.Statuses,
		vibes:     cfg.Vibes,
		audience:  cfg.Audience,
		log:       cfg.Log.With().Str("component", "story_store").Str("user_id", cfg.UserID).Logger(),
		now:       time.Now,
		viewedIDs: map[string]struct{}{},
	}
}

func (s *StoryStore) audienceIDs() []string {
	ids := []string{s.userID}
	if s.audience == nil {
		return ids
	}
	for _, id := range s.audience() {
		if id != s.userID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Refresh reloads statuses and vibes for the user and their connections.
func (s *StoryStore) Refresh(ctx context.Context) {
	ids := s.audienceIDs()
	stories := s.statuses.GetRecentStatuses(ctx, ids)
	vibes := s.vibes.GetVibes(ctx, ids)

	s.mu.Lock()
	for i := range stories {
		_, viewed := s.viewedIDs[stories[i].ID]
		stories[i].Viewed = viewed
	}
	s.stories = stories
	s.vibeList = vibes
	s.mu.Unlock()
}

// AddStory posts a status. Text stories need content, media stories a URL.
func (s *StoryStore) AddStory(ctx context.Context, storyType models.StatusType, content, mediaURL string) error {
	if !storyType.Valid() {
		return ErrInvalidType
	}
	content = strings.TrimSpace(content)
	if storyType == models.StatusText && content == "" {
		return ErrEmptyMessage
	}
	if storyType != models.StatusText && mediaURL == "" {
		return ErrEmptyMessage
	}
	if !s.statuses.UploadStatus(ctx, s.userID, storyType, content, mediaURL) {
		return ErrStoryFailed
	}
	s.Refresh(ctx)
	return nil
}

// ViewStory marks a story as viewed locally.
func (s *StoryStore) ViewStory(storyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stories {
		if s.stories[i].ID == storyID {
			s.stories[i].Viewed = true
			s.viewedIDs[storyID] = struct{}{}
			return true
		}
	}
	return false
}

// PostVibe uploads media and shows the new vibe first.
func (s *StoryStore) PostVibe(ctx context.Context, vibeType models.VibeType, data []byte, note string) (models.Vibe, error) {
	if !vibeType.Valid() {
		return models.Vibe{}, ErrInvalidType
	}
	if len(data) == 0 {
		return models.Vibe{}, ErrEmptyMessage
	}
	v, ok := s.vibes.UploadVibe(ctx, s.userID, vibeType, data, strings.TrimSpace(note))
	if !ok {
		return models.Vibe{}, ErrUploadFailed
	}
	s.mu.Lock()
	s.vibeList = append([]models.Vibe{v}, s.vibeList...)
	s.mu.Unlock()
	return v, nil
}

// RecordView records that the user saw someone else's vibe. Only vibes in the
// user's current, unexpired list can be viewed. Own vibes are not counted.
func (s *StoryStore) RecordView(ctx context.Context, vibeID string) error {
	now := s.now()
	s.mu.Lock()
	var (
		target  models.Vibe
		visible bool
	)
	for _, v := range s.vibeList {
		if v.ID == vibeID && !v.Expired(now) {
			target, visible = v, true
			break
		}
	}
	s.mu.Unlock()
	if !visible {
		return ErrUnknownVibe
	}
	if target.UserID == s.userID {
		return nil
	}
	if !s.vibes.RecordView(ctx, vibeID, s.userID) {
		return ErrRequestFailed
	}
	return nil
}

// Viewers lists who saw one of the user's vibes.
func (s *StoryStore) Viewers(ctx context.Context, vibeID string) []models.VibeViewer {
	return s.vibes.GetViewers(ctx, vibeID, s.userID)
}

func (s *StoryStore) SeenCount(ctx context.Context, vibeID string) int {
	return len(s.Viewers(ctx, vibeID))
}

// Stories returns the unexpired stories.
func (s *StoryStore) Stories() []models.Story {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Story, 0, len(s.stories))
	for _, st := range s.stories {
		if !st.Expired(now) {
			out = append(out, st)
		}
	}
	return out
}

// Vibes returns the unexpired vibes, newest first.
func (s *StoryStore) Vibes() []models.Vibe {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Vibe, 0, len(s.vibeList))
	for _, v := range s.vibeList {
		if !v.Expired(now) {
			out = append(out, v)
		}
	}
	return out
}
