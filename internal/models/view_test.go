package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVoteViewLikeRatio(t *testing.T) {
	tests := []struct {
		name          string
		like, dislike int
		ratio         int
	}{
		{name: "no evaluations", ratio: 0},
		{name: "all likes", like: 4, ratio: 100},
		{name: "all dislikes", dislike: 3, ratio: 0},
		{name: "rounds half up", like: 1, dislike: 1, ratio: 50},
		{name: "two thirds", like: 2, dislike: 1, ratio: 67},
		{name: "one third", like: 1, dislike: 2, ratio: 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Vote{ID: 1, LikeCount: tt.like, DislikeCount: tt.dislike, Member: Member{Nickname: "owner"}}
			view := NewVoteView(v, EvaluationLike, true)
			assert.Equal(t, tt.ratio, view.LikeRatio)
			assert.Equal(t, tt.like+tt.dislike, view.TotalEvaluationCount)
			assert.Equal(t, "owner", view.Nickname)
			assert.True(t, view.Bookmarked)
		})
	}
}

func TestCounterKinds(t *testing.T) {
	v := Vote{}
	*v.Counter(CounterLike) = 1
	*v.Counter(CounterDislike) = 2
	*v.Counter(CounterComment) = 3
	assert.Equal(t, [3]int{1, 2, 3}, [3]int{v.LikeCount, v.DislikeCount, v.CommentCount})
	assert.Nil(t, v.Counter("views"))
	assert.Equal(t, "", CounterKind("views").Column())

	assert.Equal(t, CounterDislike, EvaluationDislike.Counter())
	assert.Equal(t, CounterLike, EvaluationLike.Counter())
	assert.False(t, EvaluationType("MEH").Valid())
}
