package image

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

func (r repository) create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(&image).Error
}

func (r repository) findById(ctx context.Context, id uint) (*model.Image, error) {
	var image *model.Image
	err := r.db.
		WithContext(ctx).
		First(&image, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find image with id %d", id)
	}
	return image, err
}

func (r repository) findByTag(ctx context.Context, tag string) ([]*model.Image, error) {
	var images []*model.Image
	err := r.db.
		WithContext(ctx).
		Where("associated_resource_tag = ?", tag).
		Order("created_at desc").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find images tagged %q: %v", tag, err)
	}
	return images, nil
}

// findOlderThan returns images with the given tag created before cutoff.
func (r repository) findOlderThan(ctx context.Context, tag string, cutoff time.Time) ([]*model.Image, error) {
	var images []*model.Image
	err := r.db.
		WithContext(ctx).
		Where("associated_resource_tag = ? and created_at < ?", tag, cutoff).
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stale images tagged %q: %v", tag, err)
	}
	return images, nil
}

func (r repository) updateTag(ctx context.Context, ids []uint, tag string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.
		WithContext(ctx).
		Model(&model.Image{}).
		Where("id in ?", ids).
		Update("associated_resource_tag", tag).Error
}

func (r repository) delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Image{}, id).Error
}

func (r repository) deleteByTag(ctx context.Context, tag string) (int64, error) {
	result := r.db.
		WithContext(ctx).
		Where("associated_resource_tag = ?", tag).
		Delete(&model.Image{})
	return result.RowsAffected, result.Error
}
