package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/service"
)

// MemberDirectory looks up and registers members by their social login.
type MemberDirectory interface {
	FindByProviderID(ctx context.Context, providerID string) (models.Member, error)
	SignUp(ctx context.Context, in service.SignUpInput) (models.Member, error)
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type Service struct {
	members MemberDirectory
	issuer  *TokenIssuer
	tokens  TokenStore
	log     logrus.FieldLogger
}

func NewService(members MemberDirectory, issuer *TokenIssuer, tokens TokenStore, logger logrus.FieldLogger) *Service {
	return &Service{
		members: members,
		issuer:  issuer,
		tokens:  tokens,
		log:     logger.WithField("component", "auth_service"),
	}
}

// Login issues a token pair for an already registered member.
func (s *Service) Login(ctx context.Context, providerID string) (Tokens, error) {
	member, err := s.members.FindByProviderID(ctx, providerID)
	if err != nil {
		return Tokens{}, err
	}
	return s.issuePair(ctx, member.ID)
}

func (s *Service) SignUp(ctx context.Context, in service.SignUpInput) (Tokens, error) {
	member, err := s.members.SignUp(ctx, in)
	if err != nil {
		return Tokens{}, err
	}
	return s.issuePair(ctx, member.ID)
}

// Logout revokes the refresh token held by memberID.
func (s *Service) Logout(ctx context.Context, memberID int, refreshToken string) error {
	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if claims.MemberID != memberID {
		return service.ErrInvalidToken
	}
	if err := s.tokens.Revoke(ctx, claims.ID); err != nil {
		return err
	}
	s.log.WithField("member_id", memberID).Info("member logged out")
	return nil
}

// Reissue exchanges a live refresh token for a new access token.
func (s *Service) Reissue(ctx context.Context, refreshToken string) (Tokens, error) {
	claims, err := s.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return Tokens{}, err
	}
	access, err := s.issuer.IssueAccess(claims.MemberID)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access}, nil
}

func (s *Service) verifyRefresh(ctx context.Context, refreshToken string) (*Claims, error) {
	claims, err := s.issuer.Parse(refreshToken, RefreshToken)
	if err != nil {
		return nil, service.ErrInvalidToken
	}
	owner, err := s.tokens.Owner(ctx, claims.ID)
	if errors.Is(err, ErrInvalidToken) || (err == nil && owner != claims.MemberID) {
		return nil, service.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) issuePair(ctx context.Context, memberID int) (Tokens, error) {
	access, err := s.issuer.IssueAccess(memberID)
	if err != nil {
		return Tokens{}, err
	}
	refresh, id, err := s.issuer.IssueRefresh(memberID)
	if err != nil {
		return Tokens{}, err
	}
	if err := s.tokens.Save(ctx, id, memberID, s.issuer.RefreshTTL()); err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}
