package models

import "time"

// ProfileRow mirrors the profiles table.
type ProfileRow struct {
	ID        string     `db:"id"`
	Username  string     `db:"username"`
	Email     *string    `db:"email"`
	FullName  *string    `db:"full_name"`
	AvatarURL *string    `db:"avatar_url"`
	Phone     *string    `db:"phone"`
	Age       *int       `db:"age"`
	Gender    *string    `db:"gender"`
	Bio       *string    `db:"bio"`
	Status    *string    `db:"status"`
	LastSeen  *time.Time `db:"last_seen"`
	ChatPin   *string    `db:"chat_pin"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Profile is the client view of a user. The chat PIN never leaves the server.
type Profile struct {
	ID         string         `json:"id"`
	Username   string         `json:"username"`
	Email      string         `json:"email"`
	FullName   string         `json:"fullName,omitempty"`
	Avatar     string         `json:"avatar,omitempty"`
	Phone      string         `json:"phone,omitempty"`
	Age        int            `json:"age,omitempty"`
	Gender     string         `json:"gender,omitempty"`
	Bio        string         `json:"bio,omitempty"`
	Status     PresenceStatus `json:"status,omitempty"`
	LastSeen   *time.Time     `json:"lastSeen,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	HasChatPin bool           `json:"hasChatPin"`

	chatPin string
}

// ChatPin returns the stored PIN, empty when none was set.
func (p Profile) ChatPin() string {
	return p.chatPin
}

// WithChatPin returns a copy carrying pin.
func (p Profile) WithChatPin(pin string) Profile {
	p.chatPin = pin
	p.HasChatPin = pin != ""
	return p
}

// ProfileFromRow maps a profiles row to the client type.
func ProfileFromRow(r ProfileRow) Profile {
	p := Profile{
		ID:        r.ID,
		Username:  r.Username,
		Email:     deref(r.Email),
		FullName:  deref(r.FullName),
		Avatar:    deref(r.AvatarURL),
		Phone:     deref(r.Phone),
		Gender:    deref(r.Gender),
		Bio:       deref(r.Bio),
		Status:    PresenceStatus(deref(r.Status)),
		LastSeen:  r.LastSeen,
		CreatedAt: r.CreatedAt,
	}
	if r.Age != nil {
		p.Age = *r.Age
	}
	return p.WithChatPin(deref(r.ChatPin))
}

// ProfileUpdate carries a partial profile write. Nil fields are left untouched.
type ProfileUpdate struct {
	Username *string         `json:"username"`
	FullName *string         `json:"fullName"`
	Avatar   *string         `json:"avatar"`
	Phone    *string         `json:"phone"`
	Age      *int            `json:"age"`
	Gender   *string         `json:"gender"`
	Bio      *string         `json:"bio"`
	Status   *PresenceStatus `json:"status"`
	ChatPin  *string         `json:"chatPin"`
}

// ToRow maps an update onto a row for upsert. Status defaults to online.
func (u ProfileUpdate) ToRow(userID, email string, now time.Time) ProfileRow {
	status := string(PresenceOnline)
	if u.Status != nil && *u.Status != "" {
		status = string(*u.Status)
	}
	row := ProfileRow{
		ID:        userID,
		Email:     nullable(email),
		FullName:  u.FullName,
		AvatarURL: u.Avatar,
		Phone:     u.Phone,
		Age:       u.Age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		Status:    &status,
		ChatPin:   u.ChatPin,
		UpdatedAt: now,
	}
	if u.Username != nil {
		row.Username = *u.Username
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
