package entity

import "time"

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"not null;index" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`

	Credential Credential `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

// Credential keeps the password hash out of the users table so a plain
// user query never carries it along.
type Credential struct {
	UserID string `gorm:"primaryKey"`
	Hash   string `gorm:"not null"`
}
