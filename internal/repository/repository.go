package repository

import (
	"context"
	"errors"

	"github.com/salmalteam/salmal/backend/internal/models"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrCounterUnderflow indicates a decrement would drive a vote counter below zero.
	ErrCounterUnderflow = errors.New("repository: counter underflow")
)

// Store is the persistence boundary. Every repository call made with the
// context handed to a WithinTx callback joins that transaction; calls made
// with any other context run on their own.
type Store interface {
	// WithinTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. Nested calls join the outer
	// transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	Members() MemberRepository
	Votes() VoteRepository
	Counters() CounterRepository
	Evaluations() EvaluationRepository
	Bookmarks() BookmarkRepository
	Reports() ReportRepository
	Comments() CommentRepository
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id int) (models.Member, error)
	FindByProviderID(ctx context.Context, providerID string) (models.Member, error)
	// Delete removes the member together with everything the member owns.
	Delete(ctx context.Context, id int) error
}

// VoteScope selects which votes a listing returns relative to a member.
type VoteScope int

const (
	ScopeAll VoteScope = iota
	ScopeOwnedBy
	ScopeEvaluatedBy
	ScopeBookmarkedBy
)

// VoteFilter drives VoteRepository.List. Results are ordered by id
// descending; CursorID, when positive, returns only ids below it.
type VoteFilter struct {
	Scope    VoteScope
	MemberID int
	CursorID int
	Limit    int
}

type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
	// FindByID loads the vote with its owner.
	FindByID(ctx context.Context, id int) (models.Vote, error)
	// LockByID loads the vote and holds a row lock on it until the
	// surrounding transaction ends.
	LockByID(ctx context.Context, id int) (models.Vote, error)
	Exists(ctx context.Context, id int) (bool, error)
	// Delete removes the vote and its evaluations, bookmarks, reports and comments.
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter VoteFilter) ([]models.Vote, error)
}

// CounterRepository applies atomic adjustments to vote counters.
type CounterRepository interface {
	Increase(ctx context.Context, voteID int, kind models.CounterKind, n int) error
	// Decrease fails with ErrCounterUnderflow instead of going negative.
	Decrease(ctx context.Context, voteID int, kind models.CounterKind, n int) error
}

type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.VoteEvaluation) error
	FindByEvaluatorAndVote(ctx context.Context, evaluatorID, voteID int) (models.VoteEvaluation, error)
	ExistsByType(ctx context.Context, evaluatorID, voteID int, t models.EvaluationType) (bool, error)
	DeleteByEvaluatorAndVote(ctx context.Context, evaluatorID, voteID int) error
	FindAllByEvaluator(ctx context.Context, evaluatorID int) ([]models.VoteEvaluation, error)
	// TypesByVotes returns the evaluator's evaluation type for each of the
	// given votes they have evaluated.
	TypesByVotes(ctx context.Context, evaluatorID int, voteIDs []int) (map[int]models.EvaluationType, error)
}

type BookmarkRepository interface {
	Create(ctx context.Context, bookmark *models.VoteBookmark) error
	Exists(ctx context.Context, voteID, bookmarkerID int) (bool, error)
	// Delete is a no-op when no bookmark exists.
	Delete(ctx context.Context, voteID, bookmarkerID int) error
	BookmarkedAmong(ctx context.Context, bookmarkerID int, voteIDs []int) (map[int]bool, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.VoteReport) error
	Exists(ctx context.Context, voteID, reporterID int) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByVote returns the vote's comments with their commenters loaded,
	// oldest first. CursorID, when positive, returns only ids above it and a
	// non-positive limit returns everything.
	ListByVote(ctx context.Context, voteID, cursorID, limit int) ([]models.Comment, error)
	FindAllByCommenter(ctx context.Context, commenterID int, t models.CommentType) ([]models.Comment, error)
}
