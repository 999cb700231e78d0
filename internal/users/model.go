package users

import (
	"strings"
	"time"
)

// User models a registered account. The password hash never leaves this
// package in API payloads.
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:36;not null"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex:idx_users_email"`
	Username     string    `gorm:"column:username;size:30;not null;uniqueIndex:idx_users_username"`
	PasswordHash string    `gorm:"column:password_hash;size:72;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (User) TableName() string {
	return "users"
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
