package models

import "time"

// User is the local copy of an SSO profile. ID is the identity provider's user id.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null"`
	Image     string    `json:"image" gorm:"type:varchar(500)"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the part of a user that other users may see.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Image: u.Image}
}

type UserWithPicks struct {
	Profile
	Picks []Pick `json:"picks"`
}
