package service

import (
	"context"
	"errors"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository"
)

type bookmarkManager struct {
	store repository.Store
}

func (m bookmarkManager) bookmark(ctx context.Context, member models.Member, vote models.Vote) error {
	bookmarks := m.store.Bookmarks()
	exists, err := bookmarks.Exists(ctx, vote.ID, member.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicatedBookmark
	}
	err = bookmarks.Create(ctx, &models.VoteBookmark{VoteID: vote.ID, BookmarkerID: member.ID})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrDuplicatedBookmark
	}
	return err
}

func (m bookmarkManager) cancel(ctx context.Context, member models.Member, vote models.Vote) error {
	return m.store.Bookmarks().Delete(ctx, vote.ID, member.ID)
}

// reportManager records at most one report per (member, vote). Reports are
// never withdrawn.
type reportManager struct {
	store repository.Store
}

func (m reportManager) report(ctx context.Context, member models.Member, vote models.Vote) error {
	reports := m.store.Reports()
	exists, err := reports.Exists(ctx, vote.ID, member.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicatedReport
	}
	err = reports.Create(ctx, &models.VoteReport{VoteID: vote.ID, ReporterID: member.ID})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrDuplicatedReport
	}
	return err
}
