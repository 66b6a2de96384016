package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository/memory"
	"github.com/salmalteam/salmal/backend/internal/service"
)

func newTestService(t *testing.T) (*Service, *MemoryTokenStore) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	members := service.NewMemberService(memory.NewStore(), nil, logger)
	tokens := NewMemoryTokenStore()
	issuer := NewTokenIssuer("test-secret", time.Hour, 24*time.Hour)
	return NewService(members, issuer, tokens, logger), tokens
}

func signUp(t *testing.T, svc *Service, providerID, nickname string) Tokens {
	t.Helper()
	tokens, err := svc.SignUp(context.Background(), service.SignUpInput{
		Provider:   models.ProviderKakao,
		ProviderID: providerID,
		Nickname:   nickname,
	})
	require.NoError(t, err)
	return tokens
}

func TestSignUpThenLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := signUp(t, svc, "kakao-1", "salmal")
	assert.NotEmpty(t, created.AccessToken)
	assert.NotEmpty(t, created.RefreshToken)

	tokens, err := svc.Login(ctx, "kakao-1")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestLoginUnknownProviderID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSignUpDuplicateProviderID(t *testing.T) {
	svc, _ := newTestService(t)
	signUp(t, svc, "kakao-1", "salmal")

	_, err := svc.SignUp(context.Background(), service.SignUpInput{
		Provider:   models.ProviderKakao,
		ProviderID: "kakao-1",
		Nickname:   "another",
	})
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestReissueAndLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	tokens := signUp(t, svc, "kakao-1", "salmal")

	reissued, err := svc.Reissue(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, reissued.AccessToken)
	assert.Empty(t, reissued.RefreshToken)

	claims, err := svc.issuer.Parse(tokens.AccessToken, AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.MemberID, tokens.RefreshToken))

	_, err = svc.Reissue(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestLogoutRejectsAnotherMembersToken(t *testing.T) {
	svc, _ := newTestService(t)
	tokens := signUp(t, svc, "kakao-1", "salmal")

	err := svc.Logout(context.Background(), 9999, tokens.RefreshToken)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestReissueRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)
	tokens := signUp(t, svc, "kakao-1", "salmal")

	_, err := svc.Reissue(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	store := NewMemoryTokenStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "jti", 3, time.Minute))
	owner, err := store.Owner(ctx, "jti")
	require.NoError(t, err)
	assert.Equal(t, 3, owner)

	store.now = func() time.Time { return now.Add(time.Minute) }
	_, err = store.Owner(ctx, "jti")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
