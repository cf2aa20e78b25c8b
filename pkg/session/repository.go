package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/pkg/model"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(&session).Error
}

func (r repository) findByToken(ctx context.Context, token string) (*model.Session, error) {
	var session *model.Session
	err := r.db.
		WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("session not found")
	}
	return session, err
}

func (r repository) findAll(ctx context.Context) ([]*model.Session, error) {
	var sessions []*model.Session
	err := r.db.
		WithContext(ctx).
		Order("expires_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find all sessions: %v", err)
	}
	return sessions, nil
}

func (r repository) deleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{}).Error
}

func (r repository) deleteByUser(ctx context.Context, userID uint) (int64, error) {
	db := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Session{})
	return db.RowsAffected, db.Error
}

func (r repository) deleteExpired(ctx context.Context, now time.Time) (int64, error) {
	db := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.Session{})
	return db.RowsAffected, db.Error
}

func (r repository) recordAccount(ctx context.Context, account *model.Account) error {
	var existing *model.Account
	return r.db.
		WithContext(ctx).
		Where(model.Account{Provider: account.Provider, ProviderAccountID: account.ProviderAccountID, UserID: account.UserID}).
		FirstOrCreate(&existing).Error
}

func (r repository) findAllAccounts(ctx context.Context) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.
		WithContext(ctx).
		Order("created_at desc").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find all accounts: %v", err)
	}
	return accounts, nil
}
