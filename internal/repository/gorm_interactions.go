package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/salmalteam/salmal/backend/internal/models"
)

type gormEvaluations struct{ s *GormStore }

func (r gormEvaluations) Create(ctx context.Context, evaluation *models.VoteEvaluation) error {
	return create(r.s.conn(ctx), evaluation, "create evaluation")
}

func (r gormEvaluations) FindByEvaluatorAndVote(ctx context.Context, evaluatorID, voteID int) (models.VoteEvaluation, error) {
	var evaluation models.VoteEvaluation
	err := r.s.conn(ctx).
		Where("evaluator_id = ? AND vote_id = ?", evaluatorID, voteID).
		First(&evaluation).Error
	return evaluation, translate(err, "find evaluation")
}

func (r gormEvaluations) ExistsByType(ctx context.Context, evaluatorID, voteID int, t models.EvaluationType) (bool, error) {
	return exists(r.s.conn(ctx), &models.VoteEvaluation{}, "evaluation exists",
		"evaluator_id = ? AND vote_id = ? AND type = ?", evaluatorID, voteID, t)
}

func (r gormEvaluations) DeleteByEvaluatorAndVote(ctx context.Context, evaluatorID, voteID int) error {
	err := r.s.conn(ctx).
		Where("evaluator_id = ? AND vote_id = ?", evaluatorID, voteID).
		Delete(&models.VoteEvaluation{}).Error
	return errors.Wrap(err, "delete evaluation")
}

func (r gormEvaluations) FindAllByEvaluator(ctx context.Context, evaluatorID int) ([]models.VoteEvaluation, error) {
	var evaluations []models.VoteEvaluation
	err := r.s.conn(ctx).
		Where("evaluator_id = ?", evaluatorID).
		Order("vote_id").
		Find(&evaluations).Error
	return evaluations, errors.Wrap(err, "find evaluations by evaluator")
}

func (r gormEvaluations) TypesByVotes(ctx context.Context, evaluatorID int, voteIDs []int) (map[int]models.EvaluationType, error) {
	types := make(map[int]models.EvaluationType, len(voteIDs))
	if len(voteIDs) == 0 {
		return types, nil
	}
	var evaluations []models.VoteEvaluation
	err := r.s.conn(ctx).
		Where("evaluator_id = ? AND vote_id IN ?", evaluatorID, voteIDs).
		Find(&evaluations).Error
	if err != nil {
		return nil, errors.Wrap(err, "evaluation types by votes")
	}
	for _, e := range evaluations {
		types[e.VoteID] = e.Type
	}
	return types, nil
}

type gormBookmarks struct{ s *GormStore }

func (r gormBookmarks) Create(ctx context.Context, bookmark *models.VoteBookmark) error {
	return create(r.s.conn(ctx), bookmark, "create bookmark")
}

func (r gormBookmarks) Exists(ctx context.Context, voteID, bookmarkerID int) (bool, error) {
	return exists(r.s.conn(ctx), &models.VoteBookmark{}, "bookmark exists",
		"vote_id = ? AND bookmarker_id = ?", voteID, bookmarkerID)
}

func (r gormBookmarks) Delete(ctx context.Context, voteID, bookmarkerID int) error {
	err := r.s.conn(ctx).
		Where("vote_id = ? AND bookmarker_id = ?", voteID, bookmarkerID).
		Delete(&models.VoteBookmark{}).Error
	return errors.Wrap(err, "delete bookmark")
}

func (r gormBookmarks) BookmarkedAmong(ctx context.Context, bookmarkerID int, voteIDs []int) (map[int]bool, error) {
	marked := make(map[int]bool, len(voteIDs))
	if len(voteIDs) == 0 {
		return marked, nil
	}
	var ids []int
	err := r.s.conn(ctx).Model(&models.VoteBookmark{}).
		Where("bookmarker_id = ? AND vote_id IN ?", bookmarkerID, voteIDs).
		Pluck("vote_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "bookmarked among")
	}
	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}

type gormReports struct{ s *GormStore }

func (r gormReports) Create(ctx context.Context, report *models.VoteReport) error {
	return create(r.s.conn(ctx), report, "create report")
}

func (r gormReports) Exists(ctx context.Context, voteID, reporterID int) (bool, error) {
	return exists(r.s.conn(ctx), &models.VoteReport{}, "report exists",
		"vote_id = ? AND reporter_id = ?", voteID, reporterID)
}

type gormComments struct{ s *GormStore }

func (r gormComments) Create(ctx context.Context, comment *models.Comment) error {
	return create(r.s.conn(ctx), comment, "create comment")
}

func (r gormComments) ListByVote(ctx context.Context, voteID, cursorID, limit int) ([]models.Comment, error) {
	q := r.s.conn(ctx).Preload("Commenter").Where("vote_id = ?", voteID)
	if cursorID > 0 {
		q = q.Where("id > ?", cursorID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var comments []models.Comment
	if err := q.Order("id ASC").Find(&comments).Error; err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	return comments, nil
}

func (r gormComments) FindAllByCommenter(ctx context.Context, commenterID int, t models.CommentType) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.s.conn(ctx).
		Where("commenter_id = ? AND type = ?", commenterID, t).
		Find(&comments).Error
	return comments, errors.Wrap(err, "find comments by commenter")
}
