package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/pkg/model"
)

func NewService(expirationSeconds int, repository Repository) *Service {
	return &Service{
		expiration: time.Duration(expirationSeconds) * time.Second,
		repository: repository,
	}
}

type Repository interface {
	create(ctx context.Context, session *model.Session) error
	findByToken(ctx context.Context, token string) (*model.Session, error)
	findAll(ctx context.Context) ([]*model.Session, error)
	deleteByToken(ctx context.Context, token string) error
	deleteByUser(ctx context.Context, userID uint) (int64, error)
	deleteExpired(ctx context.Context, now time.Time) (int64, error)
	recordAccount(ctx context.Context, account *model.Account) error
	findAllAccounts(ctx context.Context) ([]*model.Account, error)
}

type Service struct {
	expiration time.Duration
	repository Repository
}

// Create issues a new session for user. The token is opaque; all state lives
// server side.
func (s Service) Create(ctx context.Context, user *model.User) (*model.Session, error) {
	session := &model.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.expiration),
	}

	err := s.repository.create(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// FindUserByToken resolves a session token to its user. Expired sessions are
// deleted on sight and treated as absent.
func (s Service) FindUserByToken(ctx context.Context, token string) (*model.User, error) {
	session, err := s.repository.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired() {
		_ = s.repository.deleteByToken(ctx, token)
		return nil, errdef.NewUnauthorized("session expired")
	}

	if session.User == nil {
		return nil, errdef.NewUnauthorized("session does not resolve to a known user")
	}

	return session.User, nil
}

func (s Service) FindAll(ctx context.Context) ([]*model.Session, error) {
	return s.repository.findAll(ctx)
}

func (s Service) DeleteByToken(ctx context.Context, token string) error {
	return s.repository.deleteByToken(ctx, token)
}

// RevokeAllForUser deletes every session belonging to userID and returns the
// number of sessions revoked.
func (s Service) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	return s.repository.deleteByUser(ctx, userID)
}

// PurgeExpired deletes sessions past their expiry. Called by the background
// sweep.
func (s Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repository.deleteExpired(ctx, time.Now())
}

// RecordAccount stores the external identity used to sign in, once per
// provider/account/user combination.
func (s Service) RecordAccount(ctx context.Context, userID uint, provider, providerAccountID string) error {
	return s.repository.recordAccount(ctx, &model.Account{
		Provider:          provider,
		ProviderAccountID: providerAccountID,
		UserID:            userID,
	})
}

func (s Service) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.repository.findAllAccounts(ctx)
}
