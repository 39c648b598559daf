package models

import "time"

// StatusRow mirrors the statuses table.
type StatusRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"type"`
	Content   *string   `db:"content"`
	MediaURL  *string   `db:"media_url"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Story is a 24h status post.
type Story struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      StatusType `json:"type"`
	Content   string     `json:"content,omitempty"`
	MediaURL  string     `json:"mediaUrl,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Viewed    bool       `json:"viewed"`
}

func StoryFromRow(r StatusRow) Story {
	return Story{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      StatusType(r.Type),
		Content:   deref(r.Content),
		MediaURL:  deref(r.MediaURL),
		Timestamp: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

// VibeRow mirrors the vibes table.
type VibeRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Type       string    `db:"type"`
	Note       *string   `db:"note"`
	MediaURL   string    `db:"media_url"`
	StorageKey string    `db:"storage_key"`
	CreatedAt  time.Time `db:"created_at"`
	ExpiresAt  time.Time `db:"expires_at"`
}

// Vibe is an ephemeral media post visible to the poster and their connections.
type Vibe struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      VibeType  `json:"type"`
	Note      string    `json:"note,omitempty"`
	MediaURL  string    `json:"mediaUrl"`
	Timestamp time.Time `json:"timestamp"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func VibeFromRow(r VibeRow) Vibe {
	return Vibe{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      VibeType(r.Type),
		Note:      deref(r.Note),
		MediaURL:  r.MediaURL,
		Timestamp: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

// Expired reports whether the vibe is no longer visible at now.
func (v Vibe) Expired(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}

// Expired reports whether the story is no longer visible at now.
func (s Story) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// VibeViewerRow is a vibe_views row joined with the viewer's profile.
type VibeViewerRow struct {
	ViewerID  string    `db:"viewer_id"`
	CreatedAt time.Time `db:"created_at"`
	Username  string    `db:"username"`
	AvatarURL *string   `db:"avatar_url"`
	FullName  *string   `db:"full_name"`
}

// VibeViewer is shown to a vibe's owner.
type VibeViewer struct {
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	FullName  string    `json:"fullName,omitempty"`
}

func VibeViewerFromRow(r VibeViewerRow) VibeViewer {
	return VibeViewer{
		UserID:    r.ViewerID,
		Timestamp: r.CreatedAt,
		Username:  r.Username,
		Avatar:    deref(r.AvatarURL),
		FullName:  deref(r.FullName),
	}
}
