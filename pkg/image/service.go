package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/pkg/model"
	"golang.org/x/sync/errgroup"
)

// dataURLPattern matches the inline images produced by the portal editor.
var dataURLPattern = regexp.MustCompile(`^data:image/([a-zA-Z]*);base64,(.*)$`)

func NewService(logger *slog.Logger, s3Bucket string, s3Client S3Client, repository Repository) *Service {
	return &Service{
		logger:     logger,
		s3Bucket:   s3Bucket,
		s3Client:   s3Client,
		repository: repository,
	}
}

type S3Client interface {
	Upload(ctx context.Context, bucket string, key string, body []byte) error
	Download(ctx context.Context, bucket string, key string, dst io.Writer, cb func(contentLength int64)) error
	Delete(ctx context.Context, bucket string, key string) error
}

type Repository interface {
	create(ctx context.Context, image *model.Image) error
	findById(ctx context.Context, id uint) (*model.Image, error)
	findByTag(ctx context.Context, tag string) ([]*model.Image, error)
	findOlderThan(ctx context.Context, tag string, cutoff time.Time) ([]*model.Image, error)
	updateTag(ctx context.Context, ids []uint, tag string) error
	delete(ctx context.Context, id uint) error
	deleteByTag(ctx context.Context, tag string) (int64, error)
}

type Service struct {
	logger     *slog.Logger
	s3Bucket   string
	s3Client   S3Client
	repository Repository
}

// Upload decodes a base64 data URL, stores the payload as a blob and records
// the image with the given association tag.
func (s Service) Upload(ctx context.Context, dataURL string, tag string) (*model.Image, error) {
	subtype, payload, err := decodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), uuid.NewString(), subtype)
	err = s.s3Client.Upload(ctx, s.s3Bucket, key, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image blob: %v", err)
	}

	image := &model.Image{
		Type:                  subtype,
		StorageKey:            key,
		Size:                  int64(len(payload)),
		AssociatedResourceTag: tag,
	}
	err = s.repository.create(ctx, image)
	if err != nil {
		return nil, err
	}

	return image, nil
}

func decodeDataURL(dataURL string) (string, []byte, error) {
	matches := dataURLPattern.FindStringSubmatch(dataURL)
	if matches == nil {
		return "", nil, errdef.NewBadRequest("image isn't a valid data url")
	}

	payload, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return "", nil, errdef.NewBadRequest("image payload isn't valid base64: %v", err)
	}

	if len(payload) == 0 {
		return "", nil, errdef.NewBadRequest("image payload is empty")
	}

	return matches[1], payload, nil
}

func (s Service) FindById(ctx context.Context, id uint) (*model.Image, error) {
	return s.repository.findById(ctx, id)
}

func (s Service) FindByTag(ctx context.Context, tag string) ([]*model.Image, error) {
	return s.repository.findByTag(ctx, tag)
}

// Retag reassigns images to a new association tag. Used to promote
// provisionally uploaded images once their event exists.
func (s Service) Retag(ctx context.Context, ids []uint, tag string) error {
	return s.repository.updateTag(ctx, ids, tag)
}

// Download streams the image blob to dst. cb is invoked with the image record
// and the blob size before any of the body is written, so callers can emit
// headers first.
func (s Service) Download(ctx context.Context, id uint, dst io.Writer, cb func(image *model.Image, contentLength int64)) error {
	image, err := s.repository.findById(ctx, id)
	if err != nil {
		return err
	}

	err = s.s3Client.Download(ctx, s.s3Bucket, image.StorageKey, dst, func(contentLength int64) {
		cb(image, contentLength)
	})
	if err != nil {
		return fmt.Errorf("failed to download image blob %q: %v", image.StorageKey, err)
	}

	return nil
}

// Delete removes a single image. The image must belong to the given tag;
// deleting through another event's id is rejected. A failed blob delete is
// logged but doesn't block removing the record.
func (s Service) Delete(ctx context.Context, tag string, id uint) error {
	image, err := s.repository.findById(ctx, id)
	if err != nil {
		return err
	}

	if image.AssociatedResourceTag != tag {
		return errdef.NewForbidden("image %d isn't associated with %q", id, tag)
	}

	err = s.s3Client.Delete(ctx, s.s3Bucket, image.StorageKey)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to delete image blob", "key", image.StorageKey, "error", err)
	}

	return s.repository.delete(ctx, image.ID)
}

// DeleteByTag removes every image associated with tag and returns the number
// of records deleted. Blob deletes run concurrently; individual failures are
// logged and the records are removed regardless, so a half-deleted event
// never blocks.
func (s Service) DeleteByTag(ctx context.Context, tag string) (int64, error) {
	images, err := s.repository.findByTag(ctx, tag)
	if err != nil {
		return 0, err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for _, image := range images {
		group.Go(func() error {
			err := s.s3Client.Delete(groupCtx, s.s3Bucket, image.StorageKey)
			if err != nil {
				s.logger.WarnContext(ctx, "Failed to delete image blob", "key", image.StorageKey, "error", err)
			}
			return nil
		})
	}
	_ = group.Wait()

	return s.repository.deleteByTag(ctx, tag)
}

// PurgeStale deletes images carrying tag that are older than cutoff. Used by
// the background sweep to clean up provisional uploads whose event never
// materialized.
func (s Service) PurgeStale(ctx context.Context, tag string, cutoff time.Time) (int64, error) {
	images, err := s.repository.findOlderThan(ctx, tag, cutoff)
	if err != nil {
		return 0, err
	}

	var purged int64
	for _, image := range images {
		err := s.s3Client.Delete(ctx, s.s3Bucket, image.StorageKey)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to delete image blob", "key", image.StorageKey, "error", err)
		}
		err = s.repository.delete(ctx, image.ID)
		if err != nil {
			return purged, err
		}
		purged++
	}

	return purged, nil
}
