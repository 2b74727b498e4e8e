package models

import "time"

// DefaultMaxTravelKm is the travel radius assumed when a user has not set one.
const DefaultMaxTravelKm = 50.0

// User represents an account with its buddy-matching profile.
// Latitude and Longitude are either both set or both nil.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string `gorm:"size:255;not null" json:"-"`
	DisplayName string `gorm:"size:60" json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	AvatarURL   string `gorm:"size:512" json:"avatar_url"`

	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	MaxTravelKm float64  `gorm:"not null;default:50" json:"max_travel_km"`

	PreferredDays  []Weekday   `gorm:"serializer:json" json:"preferred_days"`
	PreferredTimes []TimeOfDay `gorm:"serializer:json" json:"preferred_times"`

	Verified bool `gorm:"not null;default:false" json:"verified"`
	Public   bool `gorm:"not null;default:true" json:"public"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	SportPreferences []SportPreference `gorm:"foreignKey:UserID" json:"sport_preferences,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// HasLocation reports whether the user has a complete coordinate.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// PublicProfile is the view of a user served to other users.
type PublicProfile struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	Verified    bool   `json:"verified"`
}

// Public returns the externally visible view of the user.
func (u *User) PublicView() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		Verified:    u.Verified,
	}
}
