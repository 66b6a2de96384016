package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository"
	"github.com/salmalteam/salmal/backend/internal/repository/memory"
	"github.com/salmalteam/salmal/backend/internal/storage"
)

type fakeUploader struct {
	err   error
	calls int
	dirs  []string
}

func (u *fakeUploader) Upload(_ context.Context, file storage.ImageFile, dir string) (string, error) {
	u.calls++
	u.dirs = append(u.dirs, dir)
	if u.err != nil {
		return "", u.err
	}
	return "https://cdn.test/" + dir + "/" + file.Filename, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	deleted []int
	err     error
}

func (p *recordingPublisher) PublishMemberDeleted(_ context.Context, memberID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, memberID)
	return p.err
}

type fixture struct {
	store     *memory.Store
	members   *MemberService
	votes     *VoteService
	uploader  *fakeUploader
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	uploader := &fakeUploader{}
	publisher := &recordingPublisher{}
	members := NewMemberService(store, publisher, logger)
	votes := NewVoteService(store, members, NewCommentManager(store), uploader, "vote", logger)
	members.OnDelete(votes.HandleMemberDeleted)

	return &fixture{store: store, members: members, votes: votes, uploader: uploader, publisher: publisher}
}

func (f *fixture) member(t *testing.T, nickname string) models.Member {
	t.Helper()
	m, err := f.members.SignUp(context.Background(), SignUpInput{
		Provider:   models.ProviderKakao,
		ProviderID: "kakao-" + nickname,
		Nickname:   nickname,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) vote(t *testing.T, owner models.Member) models.Vote {
	t.Helper()
	v, err := f.votes.Register(context.Background(), owner.ID, image("pic.png"))
	require.NoError(t, err)
	return v
}

func (f *fixture) counts(t *testing.T, voteID int) (like, dislike, comment int) {
	t.Helper()
	v, err := f.store.Votes().FindByID(context.Background(), voteID)
	require.NoError(t, err)
	return v.LikeCount, v.DislikeCount, v.CommentCount
}

func image(name string) storage.ImageFile {
	return storage.ImageFile{Filename: name, ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}

// requireCountsMatchRows checks every vote's counters against its rows.
func requireCountsMatchRows(t *testing.T, store repository.Store, memberIDs []int) {
	t.Helper()
	ctx := context.Background()
	votes, err := store.Votes().List(ctx, repository.VoteFilter{})
	require.NoError(t, err)

	for _, v := range votes {
		var likes, dislikes int
		for _, id := range memberIDs {
			types, err := store.Evaluations().TypesByVotes(ctx, id, []int{v.ID})
			require.NoError(t, err)
			switch types[v.ID] {
			case models.EvaluationLike:
				likes++
			case models.EvaluationDislike:
				dislikes++
			}
		}
		comments, err := store.Comments().ListByVote(ctx, v.ID, 0, 0)
		require.NoError(t, err)
		top := 0
		for _, c := range comments {
			if c.Type == models.CommentTypeComment {
				top++
			}
		}
		require.Equal(t, likes, v.LikeCount, "vote %d like count", v.ID)
		require.Equal(t, dislikes, v.DislikeCount, "vote %d dislike count", v.ID)
		require.Equal(t, top, v.CommentCount, "vote %d comment count", v.ID)
	}
}

func requireKind(t *testing.T, err error, want *Error) {
	t.Helper()
	require.Error(t, err)
	var got *Error
	require.True(t, errors.As(err, &got), "want %s, got %v", want.Code, err)
	require.Equal(t, want.Code, got.Code)
}
