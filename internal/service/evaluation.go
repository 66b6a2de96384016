package service

import (
	"context"
	"errors"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository"
)

// evaluationManager keeps at most one evaluation per (member, vote) and the
// vote's like and dislike counters in step with it. Callers hold the vote
// row lock and an open transaction.
type evaluationManager struct {
	store repository.Store
}

func (m evaluationManager) evaluate(ctx context.Context, member models.Member, vote models.Vote, t models.EvaluationType) error {
	evaluations := m.store.Evaluations()

	same, err := evaluations.ExistsByType(ctx, member.ID, vote.ID, t)
	if err != nil {
		return err
	}
	if same {
		return ErrDuplicatedEvaluation
	}
	if err := m.removeExisting(ctx, member, vote); err != nil {
		return err
	}

	if err := m.store.Counters().Increase(ctx, vote.ID, t.Counter(), 1); err != nil {
		return voteNotFound(err)
	}
	err = evaluations.Create(ctx, &models.VoteEvaluation{
		VoteID:      vote.ID,
		EvaluatorID: member.ID,
		Type:        t,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrDuplicatedEvaluation
	}
	return err
}

func (m evaluationManager) cancel(ctx context.Context, member models.Member, vote models.Vote) error {
	return m.removeExisting(ctx, member, vote)
}

func (m evaluationManager) removeExisting(ctx context.Context, member models.Member, vote models.Vote) error {
	existing, err := m.store.Evaluations().FindByEvaluatorAndVote(ctx, member.ID, vote.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.store.Counters().Decrease(ctx, vote.ID, existing.Type.Counter(), 1); err != nil {
		return voteNotFound(err)
	}
	return m.store.Evaluations().DeleteByEvaluatorAndVote(ctx, member.ID, vote.ID)
}
