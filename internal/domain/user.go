package domain

import (
	"strings"
	"time"
)

// User is the owner of every other resource in the system.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`                       // Unique, stored lower-cased
	PasswordHash string    `bson:"passwordHash" json:"-"`                    // Never expose this via JSON
	Weight       *float64  `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Height       *float64  `bson:"height,omitempty" json:"height,omitempty"` // cm
	Age          *int      `bson:"age,omitempty" json:"age,omitempty"`
	PhotoKey     string    `bson:"photoKey,omitempty" json:"-"` // Object key in the photo bucket
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeEmail is applied before every email lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPhoto reports whether a profile photo has been uploaded.
func (u *User) HasPhoto() bool {
	return u.PhotoKey != ""
}
