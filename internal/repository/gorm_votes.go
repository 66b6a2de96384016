package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salmalteam/salmal/backend/internal/models"
)

type gormMembers struct{ s *GormStore }

func (r gormMembers) Create(ctx context.Context, member *models.Member) error {
	return create(r.s.conn(ctx), member, "create member")
}

func (r gormMembers) FindByID(ctx context.Context, id int) (models.Member, error) {
	var member models.Member
	err := r.s.conn(ctx).First(&member, id).Error
	return member, translate(err, "find member")
}

func (r gormMembers) FindByProviderID(ctx context.Context, providerID string) (models.Member, error) {
	var member models.Member
	err := r.s.conn(ctx).Where("provider_id = ?", providerID).First(&member).Error
	return member, translate(err, "find member by provider id")
}

func (r gormMembers) Delete(ctx context.Context, id int) error {
	res := r.s.conn(ctx).Delete(&models.Member{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete member")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormVotes struct{ s *GormStore }

func (r gormVotes) Create(ctx context.Context, vote *models.Vote) error {
	return create(r.s.conn(ctx), vote, "create vote")
}

func (r gormVotes) FindByID(ctx context.Context, id int) (models.Vote, error) {
	var vote models.Vote
	err := r.s.conn(ctx).Preload("Member").First(&vote, id).Error
	return vote, translate(err, "find vote")
}

func (r gormVotes) LockByID(ctx context.Context, id int) (models.Vote, error) {
	var vote models.Vote
	err := r.s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vote, id).Error
	return vote, translate(err, "lock vote")
}

func (r gormVotes) Exists(ctx context.Context, id int) (bool, error) {
	return exists(r.s.conn(ctx), &models.Vote{}, "vote exists", "id = ?", id)
}

func (r gormVotes) Delete(ctx context.Context, id int) error {
	res := r.s.conn(ctx).Delete(&models.Vote{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete vote")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormVotes) List(ctx context.Context, filter VoteFilter) ([]models.Vote, error) {
	q := r.s.conn(ctx).Model(&models.Vote{}).Select("votes.*").Preload("Member")

	switch filter.Scope {
	case ScopeOwnedBy:
		q = q.Where("votes.member_id = ?", filter.MemberID)
	case ScopeEvaluatedBy:
		q = q.Joins("JOIN vote_evaluations ON vote_evaluations.vote_id = votes.id AND vote_evaluations.evaluator_id = ?", filter.MemberID)
	case ScopeBookmarkedBy:
		q = q.Joins("JOIN vote_bookmarks ON vote_bookmarks.vote_id = votes.id AND vote_bookmarks.bookmarker_id = ?", filter.MemberID)
	}
	if filter.CursorID > 0 {
		q = q.Where("votes.id < ?", filter.CursorID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var votes []models.Vote
	if err := q.Order("votes.id DESC").Find(&votes).Error; err != nil {
		return nil, errors.Wrap(err, "list votes")
	}
	return votes, nil
}

type gormCounters struct{ s *GormStore }

func (r gormCounters) Increase(ctx context.Context, voteID int, kind models.CounterKind, n int) error {
	col := kind.Column()
	if col == "" {
		return errors.Errorf("increase: unknown counter %q", kind)
	}
	res := r.s.conn(ctx).Model(&models.Vote{}).
		Where("id = ?", voteID).
		UpdateColumn(col, gorm.Expr(col+" + ?", n))
	if res.Error != nil {
		return errors.Wrapf(res.Error, "increase %s", col)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormCounters) Decrease(ctx context.Context, voteID int, kind models.CounterKind, n int) error {
	col := kind.Column()
	if col == "" {
		return errors.Errorf("decrease: unknown counter %q", kind)
	}
	db := r.s.conn(ctx)
	res := db.Model(&models.Vote{}).
		Where("id = ? AND "+col+" >= ?", voteID, n).
		UpdateColumn(col, gorm.Expr(col+" - ?", n))
	if res.Error != nil {
		return errors.Wrapf(res.Error, "decrease %s", col)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	found, err := exists(db, &models.Vote{}, "vote exists", "id = ?", voteID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return errors.Wrapf(ErrCounterUnderflow, "vote %d %s", voteID, col)
}
