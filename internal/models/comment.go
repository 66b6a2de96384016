package models

import "time"

// CommentType separates top-level comments from replies. Only COMMENT rows
// count towards a vote's comment counter.
type CommentType string

const (
	CommentTypeComment CommentType = "COMMENT"
	CommentTypeReply   CommentType = "REPLY"
)

type Comment struct {
	ID          int         `gorm:"primaryKey" json:"id"`
	VoteID      int         `gorm:"index;not null" json:"voteId"`
	Vote        Vote        `gorm:"foreignKey:VoteID;constraint:OnDelete:CASCADE" json:"-"`
	CommenterID int         `gorm:"index;not null" json:"commenterId"`
	Commenter   Member      `gorm:"foreignKey:CommenterID;constraint:OnDelete:CASCADE" json:"-"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	Type        CommentType `gorm:"type:varchar(16);not null" json:"commentType"`
	ParentID    *int        `json:"parentId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
