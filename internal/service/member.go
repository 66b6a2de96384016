package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/salmalteam/salmal/backend/internal/models"
	"github.com/salmalteam/salmal/backend/internal/repository"
)

// MemberDeletedHook runs inside the member deletion transaction, before the
// member's rows are removed.
type MemberDeletedHook func(ctx context.Context, memberID int) error

// EventPublisher announces committed member lifecycle changes to other services.
type EventPublisher interface {
	PublishMemberDeleted(ctx context.Context, memberID int) error
}

// SignUpInput is what a new member provides on social signup.
type SignUpInput struct {
	Provider         string
	ProviderID       string
	Nickname         string
	MarketingConsent bool
}

type MemberService struct {
	store     repository.Store
	publisher EventPublisher
	hooks     []MemberDeletedHook
	log       logrus.FieldLogger
}

func NewMemberService(store repository.Store, publisher EventPublisher, logger logrus.FieldLogger) *MemberService {
	return &MemberService{
		store:     store,
		publisher: publisher,
		log:       logger.WithField("component", "member_service"),
	}
}

// OnDelete registers a hook run for every member deletion.
func (s *MemberService) OnDelete(hook MemberDeletedHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *MemberService) FindMemberByID(ctx context.Context, id int) (models.Member, error) {
	member, err := s.store.Members().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Member{}, ErrMemberNotFound
	}
	return member, err
}

func (s *MemberService) FindByProviderID(ctx context.Context, providerID string) (models.Member, error) {
	member, err := s.store.Members().FindByProviderID(ctx, providerID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Member{}, ErrMemberNotFound
	}
	return member, err
}

func (s *MemberService) SignUp(ctx context.Context, in SignUpInput) (models.Member, error) {
	if in.Provider != models.ProviderKakao && in.Provider != models.ProviderApple {
		return models.Member{}, ErrInvalidProvider
	}
	nickname := strings.TrimSpace(in.Nickname)
	if n := utf8.RuneCountInString(nickname); n < 2 || n > 20 {
		return models.Member{}, ErrInvalidNickname
	}
	if strings.TrimSpace(in.ProviderID) == "" {
		return models.Member{}, &Error{Kind: ErrInvalid, Code: "INVALID_PROVIDER_ID", Message: "provider id is required"}
	}

	member := models.Member{
		Provider:         in.Provider,
		ProviderID:       in.ProviderID,
		Nickname:         nickname,
		MarketingConsent: in.MarketingConsent,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		return s.store.Members().Create(ctx, &member)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return models.Member{}, ErrDuplicatedMember
	}
	if err != nil {
		return models.Member{}, pkgerrors.Wrap(err, "sign up")
	}

	s.log.WithFields(logrus.Fields{"member_id": member.ID, "provider": member.Provider}).Info("member signed up")
	return member, nil
}

// Delete removes the member and everything the member owns. Registered hooks
// adjust dependent aggregates in the same transaction; the deletion event is
// published only after commit.
func (s *MemberService) Delete(ctx context.Context, id int) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.FindMemberByID(ctx, id); err != nil {
			return err
		}
		for _, hook := range s.hooks {
			if err := hook(ctx, id); err != nil {
				return err
			}
		}
		return s.store.Members().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.WithField("member_id", id).Info("member deleted")
	if s.publisher != nil {
		if err := s.publisher.PublishMemberDeleted(ctx, id); err != nil {
			// The deletion is committed; the event is best effort.
			s.log.WithError(err).WithField("member_id", id).Warn("publish member deleted event")
		}
	}
	return nil
}
