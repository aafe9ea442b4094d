package models

import "time"

// User is a Telegram user. The primary key is the Telegram user id itself.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username  *string   `gorm:"size:255" json:"username"`
	FirstName *string   `gorm:"size:255" json:"first_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
