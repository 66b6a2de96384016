package service

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository"
	"github.com/salmalteam/salmal/backend/internal/storage"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	owner := f.member(t, "owner")

	v, err := f.votes.Register(context.Background(), owner.ID, image("cat.png"))
	require.NoError(t, err)

	assert.NotZero(t, v.ID)
	assert.Equal(t, owner.ID, v.MemberID)
	assert.Equal(t, "https://cdn.test/vote/cat.png", v.ImageURL)
	assert.Equal(t, []string{"vote"}, f.uploader.dirs)
	like, dislike, comment := f.counts(t, v.ID)
	assert.Zero(t, like+dislike+comment)
}

func TestRegisterUploadFailurePropagates(t *testing.T) {
	f := newFixture(t)
	owner := f.member(t, "owner")
	uploadErr := errors.Wrap(storage.ErrUpload, "bucket unavailable")
	f.uploader.err = uploadErr

	_, err := f.votes.Register(context.Background(), owner.ID, image("cat.png"))
	assert.Same(t, uploadErr, err)

	votes, err := f.store.Votes().List(context.Background(), repository.VoteFilter{})
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestRegisterUnknownMemberUploadsFirst(t *testing.T) {
	f := newFixture(t)

	_, err := f.votes.Register(context.Background(), 404, image("cat.png"))
	requireKind(t, err, ErrMemberNotFound)
	assert.Equal(t, 1, f.uploader.calls)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	other := f.member(t, "other")
	v := f.vote(t, owner)

	require.NoError(t, f.votes.Evaluate(ctx, other.ID, v.ID, models.EvaluationLike))
	require.NoError(t, f.votes.Bookmark(ctx, other.ID, v.ID))
	require.NoError(t, f.votes.Report(ctx, other.ID, v.ID))
	_, err := f.votes.Comment(ctx, other.ID, v.ID, "nice")
	require.NoError(t, err)

	requireKind(t, f.votes.Delete(ctx, other.ID, v.ID), ErrForbiddenDelete)
	requireKind(t, f.votes.Delete(ctx, owner.ID, v.ID+100), ErrVoteNotFound)

	require.NoError(t, f.votes.Delete(ctx, owner.ID, v.ID))

	_, err = f.votes.Search(ctx, owner.ID, v.ID)
	requireKind(t, err, ErrVoteNotFound)
	evaluations, err := f.store.Evaluations().FindAllByEvaluator(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, evaluations)
	marked, err := f.store.Bookmarks().Exists(ctx, v.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, marked)
	reported, err := f.store.Reports().Exists(ctx, v.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, reported)
}

func TestEvaluateStateMachine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	voter := f.member(t, "voter")
	v := f.vote(t, owner)

	require.NoError(t, f.votes.Evaluate(ctx, voter.ID, v.ID, models.EvaluationLike))
	like, dislike, _ := f.counts(t, v.ID)
	assert.Equal(t, [2]int{1, 0}, [2]int{like, dislike})

	requireKind(t, f.votes.Evaluate(ctx, voter.ID, v.ID, models.EvaluationLike), ErrDuplicatedEvaluation)
	like, dislike, _ = f.counts(t, v.ID)
	assert.Equal(t, [2]int{1, 0}, [2]int{like, dislike})

	require.NoError(t, f.votes.Evaluate(ctx, voter.ID, v.ID, models.EvaluationDislike))
	like, dislike, _ = f.counts(t, v.ID)
	assert.Equal(t, [2]int{0, 1}, [2]int{like, dislike})

	view, err := f.votes.Search(ctx, voter.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationDislike, view.Evaluation)

	require.NoError(t, f.votes.CancelEvaluation(ctx, voter.ID, v.ID))
	like, dislike, _ = f.counts(t, v.ID)
	assert.Equal(t, [2]int{0, 0}, [2]int{like, dislike})

	// Cancelling with nothing to cancel is a no-op.
	require.NoError(t, f.votes.CancelEvaluation(ctx, voter.ID, v.ID))
	like, dislike, _ = f.counts(t, v.ID)
	assert.Equal(t, [2]int{0, 0}, [2]int{like, dislike})

	requireCountsMatchRows(t, f.store, []int{owner.ID, voter.ID})
}

func TestEvaluateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	v := f.vote(t, owner)

	requireKind(t, f.votes.Evaluate(ctx, owner.ID, v.ID, "LOVE"), ErrInvalidEvaluationType)
	requireKind(t, f.votes.Evaluate(ctx, owner.ID, v.ID+1, models.EvaluationLike), ErrVoteNotFound)
	requireKind(t, f.votes.Evaluate(ctx, 999, v.ID, models.EvaluationLike), ErrMemberNotFound)
	requireKind(t, f.votes.CancelEvaluation(ctx, owner.ID, v.ID+1), ErrVoteNotFound)
}

func TestConcurrentEvaluationsKeepCountsConsistent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	v := f.vote(t, owner)

	const n = 12
	ids := make([]int, n)
	for i := range ids {
		ids[i] = f.member(t, "voter"+string(rune('a'+i))).ID
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			first, second := models.EvaluationLike, models.EvaluationDislike
			if i%2 == 1 {
				first, second = second, first
			}
			assert.NoError(t, f.votes.Evaluate(ctx, id, v.ID, first))
			assert.NoError(t, f.votes.Evaluate(ctx, id, v.ID, second))
			if i%3 == 0 {
				assert.NoError(t, f.votes.CancelEvaluation(ctx, id, v.ID))
			}
		}(i, id)
	}
	wg.Wait()

	requireCountsMatchRows(t, f.store, append(ids, owner.ID))
}

func TestBookmark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	v := f.vote(t, owner)

	require.NoError(t, f.votes.Bookmark(ctx, owner.ID, v.ID))
	requireKind(t, f.votes.Bookmark(ctx, owner.ID, v.ID), ErrDuplicatedBookmark)

	view, err := f.votes.Search(ctx, owner.ID, v.ID)
	require.NoError(t, err)
	assert.True(t, view.Bookmarked)

	require.NoError(t, f.votes.CancelBookmark(ctx, owner.ID, v.ID))
	require.NoError(t, f.votes.CancelBookmark(ctx, owner.ID, v.ID))
	require.NoError(t, f.votes.Bookmark(ctx, owner.ID, v.ID))

	requireKind(t, f.votes.Bookmark(ctx, owner.ID, v.ID+1), ErrVoteNotFound)
	requireKind(t, f.votes.CancelBookmark(ctx, owner.ID, v.ID+1), ErrVoteNotFound)
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	reporter := f.member(t, "reporter")
	v := f.vote(t, owner)

	require.NoError(t, f.votes.Report(ctx, reporter.ID, v.ID))
	requireKind(t, f.votes.Report(ctx, reporter.ID, v.ID), ErrDuplicatedReport)
	require.NoError(t, f.votes.Report(ctx, owner.ID, v.ID))
	requireKind(t, f.votes.Report(ctx, reporter.ID, v.ID+1), ErrVoteNotFound)
}

func TestCommentIncrementsCounter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	v := f.vote(t, owner)

	c, err := f.votes.Comment(ctx, owner.ID, v.ID, "  first!  ")
	require.NoError(t, err)
	assert.Equal(t, "first!", c.Content)
	assert.Equal(t, models.CommentTypeComment, c.Type)

	_, _, comments := f.counts(t, v.ID)
	assert.Equal(t, 1, comments)

	_, err = f.votes.Comment(ctx, owner.ID, v.ID+1, "lost")
	requireKind(t, err, ErrVoteNotFound)
}

func TestCommentFailureRollsBackCounter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	v := f.vote(t, owner)

	_, err := f.votes.Comment(ctx, owner.ID, v.ID, "   ")
	requireKind(t, err, ErrEmptyComment)

	_, _, comments := f.counts(t, v.ID)
	assert.Zero(t, comments)
	requireCountsMatchRows(t, f.store, []int{owner.ID})
}

func TestSearchView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	v := f.vote(t, owner)

	for i, t2 := range []models.EvaluationType{models.EvaluationLike, models.EvaluationLike, models.EvaluationDislike} {
		m := f.member(t, "voter"+string(rune('a'+i)))
		require.NoError(t, f.votes.Evaluate(ctx, m.ID, v.ID, t2))
	}

	view, err := f.votes.Search(ctx, owner.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", view.Nickname)
	assert.Equal(t, 2, view.LikeCount)
	assert.Equal(t, 1, view.DislikeCount)
	assert.Equal(t, 3, view.TotalEvaluationCount)
	assert.Equal(t, 67, view.LikeRatio)
	assert.Empty(t, view.Evaluation)
	assert.False(t, view.Bookmarked)
}

func TestSearchListPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")

	var ids []int
	for i := 0; i < 5; i++ {
		ids = append(ids, f.vote(t, owner).ID)
	}

	first, err := f.votes.SearchList(ctx, owner.ID, Page{Size: 2}, SearchHome)
	require.NoError(t, err)
	require.Len(t, first.Votes, 2)
	assert.True(t, first.HasNext)
	assert.Equal(t, ids[4], first.Votes[0].ID)
	assert.Equal(t, ids[3], first.Votes[1].ID)

	second, err := f.votes.SearchList(ctx, owner.ID, Page{CursorID: first.Votes[1].ID, Size: 2}, SearchHome)
	require.NoError(t, err)
	require.Len(t, second.Votes, 2)
	assert.True(t, second.HasNext)

	last, err := f.votes.SearchList(ctx, owner.ID, Page{CursorID: second.Votes[1].ID, Size: 2}, SearchHome)
	require.NoError(t, err)
	require.Len(t, last.Votes, 1)
	assert.False(t, last.HasNext)
	assert.Equal(t, ids[0], last.Votes[0].ID)

	_, err = f.votes.SearchList(ctx, owner.ID, Page{}, "TRENDING")
	requireKind(t, err, ErrInvalidSearchType)
}

func TestSearchListScopes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.member(t, "alice")
	bob := f.member(t, "bob")

	aliceVote := f.vote(t, alice)
	bobVote := f.vote(t, bob)
	otherBobVote := f.vote(t, bob)

	require.NoError(t, f.votes.Evaluate(ctx, alice.ID, bobVote.ID, models.EvaluationLike))
	require.NoError(t, f.votes.Bookmark(ctx, alice.ID, otherBobVote.ID))

	ids := func(p VotePage) []int {
		var out []int
		for _, v := range p.Votes {
			out = append(out, v.ID)
		}
		return out
	}

	tests := []struct {
		searchType SearchType
		want       []int
	}{
		{SearchHome, []int{otherBobVote.ID, bobVote.ID, aliceVote.ID}},
		{SearchMemberVotes, []int{aliceVote.ID}},
		{SearchMemberEvaluations, []int{bobVote.ID}},
		{SearchMemberBookmarks, []int{otherBobVote.ID}},
	}
	for _, tt := range tests {
		t.Run(string(tt.searchType), func(t *testing.T) {
			page, err := f.votes.SearchList(ctx, alice.ID, Page{}, tt.searchType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(page))
		})
	}

	home, err := f.votes.SearchList(ctx, alice.ID, Page{}, SearchHome)
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationLike, home.Votes[1].Evaluation)
	assert.True(t, home.Votes[0].Bookmarked)
}

func TestSearchComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.member(t, "alice")
	bob := f.member(t, "bob")
	v := f.vote(t, alice)

	for _, m := range []models.Member{alice, bob, alice} {
		_, err := f.votes.Comment(ctx, m.ID, v.ID, "hello from "+m.Nickname)
		require.NoError(t, err)
	}

	page, err := f.votes.SearchComments(ctx, v.ID, bob.ID, Page{Size: 2})
	require.NoError(t, err)
	require.Len(t, page.Comments, 2)
	assert.True(t, page.HasNext)
	assert.Equal(t, "alice", page.Comments[0].Nickname)
	assert.False(t, page.Comments[0].Mine)
	assert.True(t, page.Comments[1].Mine)

	rest, err := f.votes.SearchComments(ctx, v.ID, bob.ID, Page{CursorID: page.Comments[1].ID, Size: 2})
	require.NoError(t, err)
	require.Len(t, rest.Comments, 1)
	assert.False(t, rest.HasNext)

	all, err := f.votes.SearchAllComments(ctx, v.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.votes.SearchComments(ctx, v.ID+1, bob.ID, Page{})
	requireKind(t, err, ErrVoteNotFound)
	_, err = f.votes.SearchAllComments(ctx, v.ID+1, bob.ID)
	requireKind(t, err, ErrVoteNotFound)
}

func TestDecreaseCommentCountByMemberDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.member(t, "alice")
	bob := f.member(t, "bob")
	v1 := f.vote(t, alice)
	v2 := f.vote(t, alice)

	for _, voteID := range []int{v1.ID, v1.ID, v2.ID} {
		_, err := f.votes.Comment(ctx, bob.ID, voteID, "hi")
		require.NoError(t, err)
	}
	_, err := f.votes.Comment(ctx, alice.ID, v1.ID, "mine")
	require.NoError(t, err)

	require.NoError(t, f.votes.DecreaseCommentCountByMemberDelete(ctx, bob.ID))

	_, _, c1 := f.counts(t, v1.ID)
	_, _, c2 := f.counts(t, v2.ID)
	assert.Equal(t, 1, c1)
	assert.Equal(t, 0, c2)
}

func TestDecreaseEvaluationCountByMemberDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.member(t, "alice")
	bob := f.member(t, "bob")
	v1 := f.vote(t, alice)
	v2 := f.vote(t, alice)

	require.NoError(t, f.votes.Evaluate(ctx, bob.ID, v1.ID, models.EvaluationLike))
	require.NoError(t, f.votes.Evaluate(ctx, bob.ID, v2.ID, models.EvaluationDislike))
	require.NoError(t, f.votes.Evaluate(ctx, alice.ID, v2.ID, models.EvaluationDislike))

	require.NoError(t, f.votes.DecreaseEvaluationCountByMemberDelete(ctx, bob.ID))

	like, dislike, _ := f.counts(t, v1.ID)
	assert.Equal(t, [2]int{0, 0}, [2]int{like, dislike})
	like, dislike, _ = f.counts(t, v2.ID)
	assert.Equal(t, [2]int{0, 1}, [2]int{like, dislike})
}

// A full walk through the life of one vote.
func TestVoteLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.member(t, "owner")
	a := f.member(t, "alpha")
	b := f.member(t, "bravo")
	v := f.vote(t, owner)

	require.NoError(t, f.votes.Evaluate(ctx, a.ID, v.ID, models.EvaluationLike))
	require.NoError(t, f.votes.Evaluate(ctx, b.ID, v.ID, models.EvaluationDislike))
	require.NoError(t, f.votes.Evaluate(ctx, b.ID, v.ID, models.EvaluationLike))
	_, err := f.votes.Comment(ctx, a.ID, v.ID, "great")
	require.NoError(t, err)
	_, err = f.votes.Comment(ctx, b.ID, v.ID, "agreed")
	require.NoError(t, err)
	require.NoError(t, f.votes.Bookmark(ctx, a.ID, v.ID))
	require.NoError(t, f.votes.Report(ctx, b.ID, v.ID))

	like, dislike, comments := f.counts(t, v.ID)
	assert.Equal(t, [3]int{2, 0, 2}, [3]int{like, dislike, comments})

	require.NoError(t, f.members.Delete(ctx, b.ID))

	like, dislike, comments = f.counts(t, v.ID)
	assert.Equal(t, [3]int{1, 0, 1}, [3]int{like, dislike, comments})
	requireCountsMatchRows(t, f.store, []int{owner.ID, a.ID})

	require.NoError(t, f.votes.Delete(ctx, owner.ID, v.ID))
	_, err = f.votes.Search(ctx, a.ID, v.ID)
	requireKind(t, err, ErrVoteNotFound)
}
