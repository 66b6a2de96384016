package service

import (
	"context"
	"errors"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository"
	"github.com/salmalteam/salmal/backend/internal/storage"
)

// MemberFinder resolves a requester id to a member.
type MemberFinder interface {
	FindMemberByID(ctx context.Context, id int) (models.Member, error)
}

// ImageUploader stores an image under dir and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file storage.ImageFile, dir string) (string, error)
}

// CommentService persists and lists comments on votes.
type CommentService interface {
	Save(ctx context.Context, content string, vote models.Vote, member models.Member) (models.Comment, error)
	SearchList(ctx context.Context, voteID int, requester models.Member, page Page) (CommentPage, error)
	SearchAllList(ctx context.Context, voteID int, requester models.Member) ([]models.CommentView, error)
}

// SearchType selects the vote listing a member asks for.
type SearchType string

const (
	SearchHome              SearchType = "HOME"
	SearchMemberVotes       SearchType = "MEMBER_VOTES"
	SearchMemberEvaluations SearchType = "MEMBER_EVALUATIONS"
	SearchMemberBookmarks   SearchType = "MEMBER_BOOKMARKS"
)

func (t SearchType) scope() (repository.VoteScope, bool) {
	switch t {
	case SearchHome, "":
		return repository.ScopeAll, true
	case SearchMemberVotes:
		return repository.ScopeOwnedBy, true
	case SearchMemberEvaluations:
		return repository.ScopeEvaluatedBy, true
	case SearchMemberBookmarks:
		return repository.ScopeBookmarkedBy, true
	default:
		return 0, false
	}
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a cursor page request. A zero CursorID starts from the beginning.
type Page struct {
	CursorID int
	Size     int
}

func (p Page) size() int {
	switch {
	case p.Size <= 0:
		return DefaultPageSize
	case p.Size > MaxPageSize:
		return MaxPageSize
	default:
		return p.Size
	}
}

type VotePage struct {
	HasNext bool              `json:"hasNext"`
	Votes   []models.VoteView `json:"votes"`
}

type CommentPage struct {
	HasNext  bool                 `json:"hasNext"`
	Comments []models.CommentView `json:"comments"`
}

// VoteService coordinates votes with their evaluations, bookmarks, reports
// and comments. Every exported method runs in a single transaction.
type VoteService struct {
	store       repository.Store
	members     MemberFinder
	comments    CommentService
	uploader    ImageUploader
	imagePath   string
	evaluations evaluationManager
	bookmarks   bookmarkManager
	reports     reportManager
	log         logrus.FieldLogger
}

func NewVoteService(
	store repository.Store,
	members MemberFinder,
	comments CommentService,
	uploader ImageUploader,
	imagePath string,
	logger logrus.FieldLogger,
) *VoteService {
	return &VoteService{
		store:       store,
		members:     members,
		comments:    comments,
		uploader:    uploader,
		imagePath:   imagePath,
		evaluations: evaluationManager{store: store},
		bookmarks:   bookmarkManager{store: store},
		reports:     reportManager{store: store},
		log:         logger.WithField("component", "vote_service"),
	}
}

// Register uploads the image and creates a vote owned by the requester.
// Upload failures are returned unchanged.
func (s *VoteService) Register(ctx context.Context, requesterID int, image storage.ImageFile) (models.Vote, error) {
	url, err := s.uploader.Upload(ctx, image, s.imagePath)
	if err != nil {
		return models.Vote{}, err
	}

	var vote models.Vote
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote = models.Vote{MemberID: member.ID, Member: member, ImageURL: url}
		return s.store.Votes().Create(ctx, &vote)
	})
	if err != nil {
		return models.Vote{}, err
	}

	s.log.WithFields(logrus.Fields{"vote_id": vote.ID, "member_id": requesterID}).Info("vote registered")
	return vote, nil
}

func (s *VoteService) Delete(ctx context.Context, requesterID, voteID int) error {
	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote, err := s.findVote(ctx, voteID)
		if err != nil {
			return err
		}
		if vote.MemberID != member.ID {
			return ErrForbiddenDelete
		}
		if err := s.store.Votes().Delete(ctx, voteID); err != nil {
			return voteNotFound(err)
		}
		s.log.WithFields(logrus.Fields{"vote_id": voteID, "member_id": requesterID}).Info("vote deleted")
		return nil
	})
}

func (s *VoteService) Evaluate(ctx context.Context, requesterID, voteID int, t models.EvaluationType) error {
	if !t.Valid() {
		return ErrInvalidEvaluationType
	}
	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote, err := s.lockVote(ctx, voteID)
		if err != nil {
			return err
		}
		return s.evaluations.evaluate(ctx, member, vote, t)
	})
}

// CancelEvaluation removes the requester's evaluation of the vote, if any.
func (s *VoteService) CancelEvaluation(ctx context.Context, requesterID, voteID int) error {
	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote, err := s.lockVote(ctx, voteID)
		if err != nil {
			return err
		}
		return s.evaluations.cancel(ctx, member, vote)
	})
}

func (s *VoteService) Bookmark(ctx context.Context, requesterID, voteID int) error {
	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote, err := s.findVote(ctx, voteID)
		if err != nil {
			return err
		}
		return s.bookmarks.bookmark(ctx, member, vote)
	})
}

// CancelBookmark removes the requester's bookmark of the vote, if any.
func (s *VoteService) CancelBookmark(ctx context.Context, requesterID, voteID int) error {
	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote, err := s.findVote(ctx, voteID)
		if err != nil {
			return err
		}
		return s.bookmarks.cancel(ctx, member, vote)
	})
}

func (s *VoteService) Report(ctx context.Context, requesterID, voteID int) error {
	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote, err := s.findVote(ctx, voteID)
		if err != nil {
			return err
		}
		if err := s.reports.report(ctx, member, vote); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{"vote_id": voteID, "member_id": requesterID}).Info("vote reported")
		return nil
	})
}

// Comment adds a top-level comment and bumps the vote's comment counter.
func (s *VoteService) Comment(ctx context.Context, requesterID, voteID int, content string) (models.Comment, error) {
	var comment models.Comment
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote, err := s.findVote(ctx, voteID)
		if err != nil {
			return err
		}
		if err := s.store.Counters().Increase(ctx, vote.ID, models.CounterComment, 1); err != nil {
			return voteNotFound(err)
		}
		comment, err = s.comments.Save(ctx, content, vote, member)
		return err
	})
	return comment, err
}

func (s *VoteService) Search(ctx context.Context, requesterID, voteID int) (models.VoteView, error) {
	var view models.VoteView
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		vote, err := s.findVote(ctx, voteID)
		if err != nil {
			return err
		}
		views, err := s.views(ctx, member.ID, []models.Vote{vote})
		if err != nil {
			return err
		}
		view = views[0]
		return nil
	})
	return view, err
}

// SearchList returns one page of votes, newest first.
func (s *VoteService) SearchList(ctx context.Context, requesterID int, page Page, searchType SearchType) (VotePage, error) {
	scope, ok := searchType.scope()
	if !ok {
		return VotePage{}, ErrInvalidSearchType
	}
	size := page.size()

	var result VotePage
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		votes, err := s.store.Votes().List(ctx, repository.VoteFilter{
			Scope:    scope,
			MemberID: member.ID,
			CursorID: page.CursorID,
			Limit:    size + 1,
		})
		if err != nil {
			return err
		}
		if len(votes) > size {
			result.HasNext = true
			votes = votes[:size]
		}
		result.Votes, err = s.views(ctx, member.ID, votes)
		return err
	})
	return result, err
}

func (s *VoteService) SearchComments(ctx context.Context, voteID, requesterID int, page Page) (CommentPage, error) {
	var result CommentPage
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		if err := s.ensureVote(ctx, voteID); err != nil {
			return err
		}
		result, err = s.comments.SearchList(ctx, voteID, member, page)
		return err
	})
	return result, err
}

func (s *VoteService) SearchAllComments(ctx context.Context, voteID, requesterID int) ([]models.CommentView, error) {
	var result []models.CommentView
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.members.FindMemberByID(ctx, requesterID)
		if err != nil {
			return err
		}
		if err := s.ensureVote(ctx, voteID); err != nil {
			return err
		}
		result, err = s.comments.SearchAllList(ctx, voteID, member)
		return err
	})
	return result, err
}

// DecreaseCommentCountByMemberDelete removes the member's top-level comments
// from the counters of the votes they were written on.
func (s *VoteService) DecreaseCommentCountByMemberDelete(ctx context.Context, memberID int) error {
	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		comments, err := s.store.Comments().FindAllByCommenter(ctx, memberID, models.CommentTypeComment)
		if err != nil {
			return err
		}
		perVote := make(map[int]int)
		for _, c := range comments {
			perVote[c.VoteID]++
		}
		for _, voteID := range sortedKeys(perVote) {
			if err := s.store.Counters().Decrease(ctx, voteID, models.CounterComment, perVote[voteID]); err != nil {
				return pkgerrors.Wrapf(err, "decrease comment count of vote %d", voteID)
			}
		}
		return nil
	})
}

// DecreaseEvaluationCountByMemberDelete removes the member's evaluations from
// the like and dislike counters of the votes they evaluated.
func (s *VoteService) DecreaseEvaluationCountByMemberDelete(ctx context.Context, memberID int) error {
	return s.store.WithinTx(ctx, func(ctx context.Context) error {
		evaluations, err := s.store.Evaluations().FindAllByEvaluator(ctx, memberID)
		if err != nil {
			return err
		}
		sort.Slice(evaluations, func(i, j int) bool { return evaluations[i].VoteID < evaluations[j].VoteID })
		for _, e := range evaluations {
			if err := s.store.Counters().Decrease(ctx, e.VoteID, e.Type.Counter(), 1); err != nil {
				return pkgerrors.Wrapf(err, "decrease %s count of vote %d", e.Type, e.VoteID)
			}
		}
		return nil
	})
}

// HandleMemberDeleted is registered as a MemberService deletion hook.
func (s *VoteService) HandleMemberDeleted(ctx context.Context, memberID int) error {
	if err := s.DecreaseCommentCountByMemberDelete(ctx, memberID); err != nil {
		return err
	}
	return s.DecreaseEvaluationCountByMemberDelete(ctx, memberID)
}

func (s *VoteService) findVote(ctx context.Context, voteID int) (models.Vote, error) {
	vote, err := s.store.Votes().FindByID(ctx, voteID)
	return vote, voteNotFound(err)
}

func (s *VoteService) lockVote(ctx context.Context, voteID int) (models.Vote, error) {
	vote, err := s.store.Votes().LockByID(ctx, voteID)
	return vote, voteNotFound(err)
}

func (s *VoteService) ensureVote(ctx context.Context, voteID int) error {
	ok, err := s.store.Votes().Exists(ctx, voteID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrVoteNotFound
	}
	return nil
}

func (s *VoteService) views(ctx context.Context, memberID int, votes []models.Vote) ([]models.VoteView, error) {
	ids := make([]int, len(votes))
	for i, v := range votes {
		ids[i] = v.ID
	}
	types, err := s.store.Evaluations().TypesByVotes(ctx, memberID, ids)
	if err != nil {
		return nil, err
	}
	marked, err := s.store.Bookmarks().BookmarkedAmong(ctx, memberID, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.VoteView, len(votes))
	for i, v := range votes {
		views[i] = models.NewVoteView(v, types[v.ID], marked[v.ID])
	}
	return views, nil
}

func voteNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrVoteNotFound
	}
	return err
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
