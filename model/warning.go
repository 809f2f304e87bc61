package model

import (
	"strings"
	"time"
)

type WarningLevel string

const (
	LevelMinor    WarningLevel = "MINOR"
	LevelModerate WarningLevel = "MODERATE"
	LevelMajor    WarningLevel = "MAJOR"
)

var levelPoints = map[WarningLevel]int{
	LevelMinor:    1,
	LevelModerate: 2,
	LevelMajor:    3,
}

// Points is the canonical point value of a level, 0 for unknown levels.
func (l WarningLevel) Points() int {
	return levelPoints[l]
}

func (l WarningLevel) Valid() bool {
	_, ok := levelPoints[l]
	return ok
}

func ParseWarningLevel(s string) (WarningLevel, bool) {
	l := WarningLevel(strings.ToUpper(strings.TrimSpace(s)))
	return l, l.Valid()
}

func (l WarningLevel) Label() string {
	switch l {
	case LevelMinor:
		return "Minor"
	case LevelModerate:
		return "Moderate"
	case LevelMajor:
		return "Major"
	}
	return string(l)
}

func (l WarningLevel) Emoji() string {
	switch l {
	case LevelMinor:
		return "⚠️"
	case LevelModerate:
		return "⛔"
	case LevelMajor:
		return "🚫"
	}
	return "❔"
}

func (l WarningLevel) Color() int {
	switch l {
	case LevelMinor:
		return 0xffff00
	case LevelModerate:
		return 0xffa500
	default:
		return 0xff0000
	}
}

// Warning is a moderation warning issued to a member of a guild.
// Points is a denormalized copy of Level.Points() taken at creation.
type Warning struct {
	ID          string       `json:"id" bson:"_id"`
	UserID      string       `json:"userId" bson:"userId"`
	GuildID     string       `json:"guildId" bson:"guildId"`
	ModeratorID string       `json:"moderatorId" bson:"moderatorId"`
	Reason      string       `json:"reason" bson:"reason"`
	Level       WarningLevel `json:"level" bson:"level"`
	Points      int          `json:"points" bson:"points"`
	Evidence    string       `json:"evidence,omitempty" bson:"evidence,omitempty"`
	Active      bool         `json:"active" bson:"active"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
}

// CountsAt reports whether the warning contributes to point totals at now.
func (w *Warning) CountsAt(now time.Time) bool {
	if !w.Active {
		return false
	}
	return w.ExpiresAt == nil || w.ExpiresAt.After(now)
}
