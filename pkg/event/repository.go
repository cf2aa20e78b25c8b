package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
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

// create inserts the event and derives its slug from the title and the
// assigned id, so two events with the same title stay addressable.
func (r repository) create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Create(&event).Error
		if err != nil {
			return err
		}

		event.Slug = slug.Make(fmt.Sprintf("%s-%d", event.Title, event.ID))
		return tx.
			Model(&model.Event{}).
			Where("id = ?", event.ID).
			Update("slug", event.Slug).Error
	})
}

func (r repository) save(ctx context.Context, event *model.Event) error {
	event.Slug = slug.Make(fmt.Sprintf("%s-%d", event.Title, event.ID))

	err := r.db.WithContext(ctx).Save(&event).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("event %q already exists", event.Slug)
	}

	return err
}

func (r repository) findById(ctx context.Context, id uint) (*model.Event, error) {
	var event *model.Event
	err := r.db.
		WithContext(ctx).
		Preload("CreatedBy").
		First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find event with id %d", id)
	}
	return event, err
}

func (r repository) findBySlug(ctx context.Context, s string) (*model.Event, error) {
	var event *model.Event
	err := r.db.
		WithContext(ctx).
		Preload("CreatedBy").
		Where("slug = ?", s).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find event with slug %q", s)
	}
	return event, err
}

func (r repository) findAll(ctx context.Context) ([]*model.Event, error) {
	var events []*model.Event
	err := r.db.
		WithContext(ctx).
		Order("date desc, created_at desc").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find all events: %v", err)
	}
	return events, nil
}

func (r repository) findPublished(ctx context.Context) ([]*model.Event, error) {
	var events []*model.Event
	err := r.db.
		WithContext(ctx).
		Where("is_draft = ?", false).
		Order("date desc").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find published events: %v", err)
	}
	return events, nil
}

func (r repository) delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Event{}, id).Error
}
