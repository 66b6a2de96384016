package models

import "time"

// VoteView is a vote as seen by a particular member.
type VoteView struct {
	ID                   int            `json:"id"`
	ImageURL             string         `json:"imageUrl"`
	MemberID             int            `json:"memberId"`
	Nickname             string         `json:"nickName"`
	MemberImageURL       string         `json:"memberImageUrl"`
	LikeCount            int            `json:"likeCount"`
	DislikeCount         int            `json:"disLikeCount"`
	CommentCount         int            `json:"commentCount"`
	TotalEvaluationCount int            `json:"totalEvaluationCnt"`
	LikeRatio            int            `json:"likeRatio"`
	Evaluation           EvaluationType `json:"isEvaluated,omitempty"`
	Bookmarked           bool           `json:"isBookmarked"`
	CreatedAt            time.Time      `json:"createdAt"`
}

// NewVoteView builds the view of v. The vote's Member must be loaded.
func NewVoteView(v Vote, evaluation EvaluationType, bookmarked bool) VoteView {
	total := v.LikeCount + v.DislikeCount
	ratio := 0
	if total > 0 {
		ratio = (v.LikeCount*100 + total/2) / total
	}
	return VoteView{
		ID:                   v.ID,
		ImageURL:             v.ImageURL,
		MemberID:             v.MemberID,
		Nickname:             v.Member.Nickname,
		MemberImageURL:       v.Member.ImageURL,
		LikeCount:            v.LikeCount,
		DislikeCount:         v.DislikeCount,
		CommentCount:         v.CommentCount,
		TotalEvaluationCount: total,
		LikeRatio:            ratio,
		Evaluation:           evaluation,
		Bookmarked:           bookmarked,
		CreatedAt:            v.CreatedAt,
	}
}

// CommentView is a comment as seen by a particular member.
type CommentView struct {
	ID             int       `json:"id"`
	VoteID         int       `json:"voteId"`
	MemberID       int       `json:"memberId"`
	Nickname       string    `json:"nickName"`
	MemberImageURL string    `json:"memberImageUrl"`
	Content        string    `json:"content"`
	Mine           bool      `json:"isMine"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
