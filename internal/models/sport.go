package models

import (
	"fmt"
	"strings"
	"time"
)

// SkillLevel is the self-reported proficiency for a sport.
// Levels are ordered: beginner < intermediate < advanced < expert.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

var skillOrder = map[SkillLevel]int{
	SkillBeginner:     0,
	SkillIntermediate: 1,
	SkillAdvanced:     2,
	SkillExpert:       3,
}

// ParseSkillLevel validates and normalizes a skill level token.
func ParseSkillLevel(s string) (SkillLevel, error) {
	lvl := SkillLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := skillOrder[lvl]; !ok {
		return "", fmt.Errorf("unknown skill level %q", s)
	}
	return lvl, nil
}

// Rank returns the position of the level in the skill ordering.
func (s SkillLevel) Rank() int {
	return skillOrder[s]
}

// Valid reports whether the level is one of the known values.
func (s SkillLevel) Valid() bool {
	_, ok := skillOrder[s]
	return ok
}

// Sport is a catalog entry users can register preferences for.
type Sport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:60;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:60;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Sport) TableName() string {
	return "sports"
}

// SportPreference links a user to a sport with a skill level.
// Unique per (user, sport).
type SportPreference struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;uniqueIndex:idx_user_sport" json:"user_id"`
	SportID         uint       `gorm:"not null;uniqueIndex:idx_user_sport" json:"sport_id"`
	SkillLevel      SkillLevel `gorm:"type:varchar(20);not null" json:"skill_level"`
	YearsExperience *int       `json:"years_experience,omitempty"`
	Public          bool       `gorm:"not null;default:true" json:"public"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relationships
	Sport *Sport `gorm:"foreignKey:SportID" json:"sport,omitempty"`
}

// TableName specifies the table name for GORM
func (SportPreference) TableName() string {
	return "sport_preferences"
}
