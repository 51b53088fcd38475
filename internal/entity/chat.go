package entity

import "time"

const (
	ChatKindPrivate = "private"
	ChatKindGroup   = "group"
)

type Chat struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"not null;index" json:"type"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedBy string    `gorm:"index" json:"createdBy"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`

	// Denormalized pointer for chat-list ordering. Updated best-effort
	// after every insert; a stale value is tolerated.
	LastMessageID *string `json:"-"`

	Members  []ChatMember `gorm:"foreignKey:ChatID;references:ID" json:"-"`
	Messages []Message    `gorm:"foreignKey:ChatID;references:ID" json:"messages"`
}

// ChatMember is the single membership relation. Removed marks a member
// who soft-left the chat: the row is retained so the chat can be
// restored, but the member no longer receives pushes.
type ChatMember struct {
	ChatID   string    `gorm:"primaryKey" json:"chatId"`
	UserID   string    `gorm:"primaryKey;index" json:"userId"`
	Removed  bool      `gorm:"not null;default:false" json:"removed"`
	JoinedAt time.Time `gorm:"not null" json:"joinedAt"`
}
