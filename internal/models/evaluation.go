package models

import "time"

// EvaluationType is a member's judgment on a vote.
type EvaluationType string

const (
	EvaluationLike    EvaluationType = "LIKE"
	EvaluationDislike EvaluationType = "DISLIKE"
)

// Valid reports whether t is one of the known evaluation types.
func (t EvaluationType) Valid() bool {
	return t == EvaluationLike || t == EvaluationDislike
}

// Counter returns the vote counter that tracks evaluations of type t.
func (t EvaluationType) Counter() CounterKind {
	if t == EvaluationDislike {
		return CounterDislike
	}
	return CounterLike
}

// VoteEvaluation tracks one member's evaluation of a vote. There is at most
// one row per (vote, evaluator).
type VoteEvaluation struct {
	ID          int            `gorm:"primaryKey" json:"id"`
	VoteID      int            `gorm:"not null;uniqueIndex:idx_vote_evaluations_vote_evaluator" json:"voteId"`
	Vote        Vote           `gorm:"foreignKey:VoteID;constraint:OnDelete:CASCADE" json:"-"`
	EvaluatorID int            `gorm:"not null;uniqueIndex:idx_vote_evaluations_vote_evaluator;index" json:"evaluatorId"`
	Evaluator   Member         `gorm:"foreignKey:EvaluatorID;constraint:OnDelete:CASCADE" json:"-"`
	Type        EvaluationType `gorm:"type:varchar(16);not null" json:"voteEvaluationType"`
	CreatedAt   time.Time      `json:"createdAt"`
}
