package models

import "time"

// VoteBookmark is a member's saved reference to a vote.
type VoteBookmark struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	VoteID       int       `gorm:"not null;uniqueIndex:idx_vote_bookmarks_vote_bookmarker" json:"voteId"`
	Vote         Vote      `gorm:"foreignKey:VoteID;constraint:OnDelete:CASCADE" json:"-"`
	BookmarkerID int       `gorm:"not null;uniqueIndex:idx_vote_bookmarks_vote_bookmarker;index" json:"bookmarkerId"`
	Bookmarker   Member    `gorm:"foreignKey:BookmarkerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (VoteBookmark) TableName() string { return "vote_bookmarks" }

// VoteReport flags a vote for moderation. Reports are append-only.
type VoteReport struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	VoteID     int       `gorm:"not null;uniqueIndex:idx_vote_reports_vote_reporter" json:"voteId"`
	Vote       Vote      `gorm:"foreignKey:VoteID;constraint:OnDelete:CASCADE" json:"-"`
	ReporterID int       `gorm:"not null;uniqueIndex:idx_vote_reports_vote_reporter;index" json:"reporterId"`
	Reporter   Member    `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
