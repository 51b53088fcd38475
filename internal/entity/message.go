package entity

import "time"

type Message struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ChatID    string    `gorm:"not null;index" json:"chatId"`
	AuthorID  string    `gorm:"not null;index" json:"user"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
