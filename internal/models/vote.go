package models

import "time"

// Vote is an image post that other members evaluate, bookmark, report and
// comment on. The three counters are denormalized aggregates maintained by
// the counter repository and are never written through Save.
type Vote struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	MemberID     int       `gorm:"index;not null" json:"memberId"`
	Member       Member    `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"-"`
	ImageURL     string    `gorm:"not null" json:"imageUrl"`
	LikeCount    int       `gorm:"not null;default:0;check:like_count >= 0" json:"likeCount"`
	DislikeCount int       `gorm:"not null;default:0;check:dislike_count >= 0" json:"dislikeCount"`
	CommentCount int       `gorm:"not null;default:0;check:comment_count >= 0" json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CounterKind names one of the denormalized counters stored on a vote.
type CounterKind string

const (
	CounterLike    CounterKind = "like"
	CounterDislike CounterKind = "dislike"
	CounterComment CounterKind = "comment"
)

// Column returns the votes column backing the counter.
func (k CounterKind) Column() string {
	switch k {
	case CounterLike:
		return "like_count"
	case CounterDislike:
		return "dislike_count"
	case CounterComment:
		return "comment_count"
	default:
		return ""
	}
}

// Counter returns a pointer to the field holding the counter on v, or nil
// for an unknown kind.
func (v *Vote) Counter(k CounterKind) *int {
	switch k {
	case CounterLike:
		return &v.LikeCount
	case CounterDislike:
		return &v.DislikeCount
	case CounterComment:
		return &v.CommentCount
	default:
		return nil
	}
}
