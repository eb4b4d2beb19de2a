package types

import "time"

// UserSummary is the profile summary of the other participant in a thread.
type UserSummary struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	IsOnline    bool   `json:"is_online"`
	ProfileURL  string `json:"profile_url,omitempty"`
}

// Name returns the display name, falling back to the username.
func (u UserSummary) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// MessagePreview is the last-message snapshot carried by a thread.
type MessagePreview struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Thread is a direct-message conversation between the viewer and one other user.
type Thread struct {
	ID          int64           `json:"id"`
	OtherUser   *UserSummary    `json:"other_user"`
	LastMessage *MessagePreview `json:"last_message"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UnreadCount int             `json:"unread_count"`
}

// ReactionUser is one user who reacted with an emoji.
type ReactionUser struct {
	Username string `json:"username"`
	IsMe     bool   `json:"is_me"`
}

// Reaction is a server-side reaction row on a message.
type Reaction struct {
	Emoji string         `json:"emoji"`
	Count int            `json:"count"`
	Users []ReactionUser `json:"users"`
}

// Message is a direct message inside a thread.
type Message struct {
	ID        int64      `json:"id"`
	ThreadID  int64      `json:"thread_id,omitempty"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	IsMe      bool       `json:"is_me"`
	Avatar    string     `json:"avatar,omitempty"`
	Username  string     `json:"username"`
	Reactions []Reaction `json:"reactions"`
}

// SearchUser is a transient user lookup result.
type SearchUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// LikeState is the aura state of a profile photo.
type LikeState struct {
	Liked bool `json:"is_liked"`
	Count int  `json:"like_count"`
}

// Comment is a profile-photo comment with its ordered replies.
type Comment struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Comment `json:"replies,omitempty"`
}
