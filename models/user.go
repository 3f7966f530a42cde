// File: /models/user.go
package models

import (
	"time"
)

type User struct {
	ID                   string     `json:"_id" gorm:"primaryKey;size:191"`
	FullName             string     `json:"fullName" gorm:"not null;size:255"`
	Email                string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password             string     `json:"-" gorm:"not null;size:255"`
	Bio                  string     `json:"bio" gorm:"size:1000"`
	ProfilePic           string     `json:"profilePic" gorm:"size:500"`
	NativeLanguage       string     `json:"nativeLanguage" gorm:"size:50"`
	LearningLanguage     string     `json:"learningLanguage" gorm:"size:50"`
	Location             string     `json:"location" gorm:"size:255"`
	IsOnboarded          bool       `json:"isOnboarded" gorm:"default:false;index"`
	ResetPasswordToken   *string    `json:"-" gorm:"size:64;index"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// UserSummary is the public projection of a user embedded in friend lists,
// recommendations and populated friend requests.
type UserSummary struct {
	ID               string `json:"_id" gorm:"primaryKey;size:191"`
	FullName         string `json:"fullName"`
	ProfilePic       string `json:"profilePic"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Bio              string `json:"bio"`
	Location         string `json:"location"`
}

func (UserSummary) TableName() string {
	return "users"
}

// UserSummaryColumns lists the columns selected into a UserSummary.
var UserSummaryColumns = []string{
	"id", "full_name", "profile_pic", "native_language", "learning_language", "bio", "location",
}
