package models

import "time"

// Social login providers a member can sign up with.
const (
	ProviderKakao = "kakao"
	ProviderApple = "apple"
)

// Member is a registered account. Members are created through social signup
// and are referenced by every vote, evaluation, bookmark, report and comment.
type Member struct {
	ID               int       `gorm:"primaryKey" json:"id"`
	Provider         string    `gorm:"not null" json:"provider"`
	ProviderID       string    `gorm:"uniqueIndex;not null" json:"-"`
	Nickname         string    `gorm:"uniqueIndex;not null" json:"nickName"`
	ImageURL         string    `json:"imageUrl"`
	MarketingConsent bool      `json:"marketingInformationConsent"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
