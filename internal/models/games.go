package models

import "time"

type GameStatus string

const (
	StatusScheduled  GameStatus = "scheduled"
	StatusInProgress GameStatus = "in_progress"
	StatusFinal      GameStatus = "final"
)

var statusOrder = map[GameStatus]int{
	StatusScheduled:  0,
	StatusInProgress: 1,
	StatusFinal:      2,
}

func (s GameStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanAdvanceTo reports whether next is the same state or a later one.
// Skipping a state (scheduled -> final) is allowed.
func (s GameStatus) CanAdvanceTo(next GameStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return next.Valid()
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to >= from
}

type Game struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"type:varchar(255);not null"`
	Date      time.Time  `json:"date" gorm:"not null"`
	StartTime *time.Time `json:"start_time"`
	AwayTeam  string     `json:"away_team" gorm:"type:varchar(255);not null"`
	HomeTeam  string     `json:"home_team" gorm:"type:varchar(255);not null"`
	Spread    string     `json:"spread" gorm:"type:varchar(255)"`
	Total     string     `json:"total" gorm:"type:varchar(255)"`
	AwayScore *int       `json:"away_score"`
	HomeScore *int       `json:"home_score"`
	Status    GameStatus `json:"status" gorm:"type:varchar(20);default:'scheduled';not null"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (g Game) HasScores() bool {
	return g.AwayScore != nil && g.HomeScore != nil
}

// Winner returns the side with the higher score. Missing scores and ties have no winner.
func (g Game) Winner() (Side, bool) {
	if !g.HasScores() {
		return "", false
	}

	switch {
	case *g.AwayScore > *g.HomeScore:
		return SideAway, true
	case *g.HomeScore > *g.AwayScore:
		return SideHome, true
	}

	return "", false
}

func (g Game) TeamFor(side Side) string {
	switch side {
	case SideAway:
		return g.AwayTeam
	case SideHome:
		return g.HomeTeam
	}
	return ""
}
