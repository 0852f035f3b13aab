package entity

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          string    `json:"id" firestore:"id"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	AvatarURL   string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	Role        string    `json:"role" firestore:"role"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Author returns the identity stamped on the user's comments.
func (u *User) Author() Author {
	name := u.DisplayName
	if name == "" {
		name = "Anonymous"
	}
	return Author{ID: u.ID, Name: name, Avatar: u.AvatarURL}
}
