package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultImagePath is served for users who never uploaded an image.
const DefaultImagePath = "/static/user_default.png"

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:150;not null" json:"username"`
	UsernameLower string    `gorm:"size:150;not null;uniqueIndex" json:"-"`
	Email         string    `gorm:"size:254" json:"email"`
	Password      string    `gorm:"not null" json:"-"` // bcrypt hash
	Image         string    `gorm:"size:255" json:"-"` // path relative to the media root
	DateJoined    time.Time `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt     time.Time `json:"-"`
}

// BeforeSave keeps the case-folded username used for lookups and uniqueness in sync.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.UsernameLower = strings.ToLower(u.Username)
	return nil
}

// ImageURL returns the public path of the user's image, or the default avatar.
func (u *User) ImageURL(mediaURL string) string {
	if u.Image == "" {
		return DefaultImagePath
	}
	return strings.TrimSuffix(mediaURL, "/") + "/" + strings.TrimPrefix(u.Image, "/")
}

func (u *User) HasImage() bool {
	return u.Image != ""
}

// Token is an opaque API key. Each user owns at most one.
type Token struct {
	Key     string    `gorm:"primaryKey;size:40" json:"token"`
	UserID  uint      `gorm:"not null;uniqueIndex" json:"-"`
	User    User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Created time.Time `gorm:"autoCreateTime" json:"created"`
}
