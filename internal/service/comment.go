package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository"
)

const maxCommentLength = 1000

// CommentManager is the default CommentService. It expects to run inside the
// caller's transaction.
type CommentManager struct {
	store repository.Store
}

func NewCommentManager(store repository.Store) *CommentManager {
	return &CommentManager{store: store}
}

func (m *CommentManager) Save(ctx context.Context, content string, vote models.Vote, member models.Member) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrEmptyComment
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return models.Comment{}, ErrCommentTooLong
	}
	comment := models.Comment{
		VoteID:      vote.ID,
		CommenterID: member.ID,
		Commenter:   member,
		Content:     content,
		Type:        models.CommentTypeComment,
	}
	if err := m.store.Comments().Create(ctx, &comment); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// SearchList returns one page of the vote's comments, oldest first.
func (m *CommentManager) SearchList(ctx context.Context, voteID int, requester models.Member, page Page) (CommentPage, error) {
	size := page.size()
	comments, err := m.store.Comments().ListByVote(ctx, voteID, page.CursorID, size+1)
	if err != nil {
		return CommentPage{}, err
	}
	var result CommentPage
	if len(comments) > size {
		result.HasNext = true
		comments = comments[:size]
	}
	result.Comments = commentViews(comments, requester.ID)
	return result, nil
}

func (m *CommentManager) SearchAllList(ctx context.Context, voteID int, requester models.Member) ([]models.CommentView, error) {
	comments, err := m.store.Comments().ListByVote(ctx, voteID, 0, 0)
	if err != nil {
		return nil, err
	}
	return commentViews(comments, requester.ID), nil
}

func commentViews(comments []models.Comment, requesterID int) []models.CommentView {
	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = models.CommentView{
			ID:             c.ID,
			VoteID:         c.VoteID,
			MemberID:       c.CommenterID,
			Nickname:       c.Commenter.Nickname,
			MemberImageURL: c.Commenter.ImageURL,
			Content:        c.Content,
			Mine:           c.CommenterID == requesterID,
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
		}
	}
	return views
}
