package models

import "time"

type Side string

const (
	SideAway Side = "away"
	SideHome Side = "home"
)

func (s Side) Valid() bool {
	return s == SideAway || s == SideHome
}

// Pick is one user's predicted winner for one game. Nothing at the schema
// level stops a user from holding several picks for the same game.
type Pick struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"index;not null"`
	GameID    int64     `json:"game_id" gorm:"index;not null"`
	Side      Side      `json:"pick" gorm:"column:pick;type:varchar(10);not null"`
	AwayScore *int      `json:"away_score"`
	HomeScore *int      `json:"home_score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PickInput is a validated pick write for the user who owns it.
type PickInput struct {
	GameID    int64
	Side      Side
	AwayScore *int
	HomeScore *int
}
