package event

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/pkg/model"
)

func NewService(imageService imageService, repository Repository) *Service {
	return &Service{
		imageService: imageService,
		repository:   repository,
	}
}

type imageService interface {
	Upload(ctx context.Context, dataURL string, tag string) (*model.Image, error)
	Retag(ctx context.Context, ids []uint, tag string) error
	Delete(ctx context.Context, tag string, id uint) error
	DeleteByTag(ctx context.Context, tag string) (int64, error)
	FindByTag(ctx context.Context, tag string) ([]*model.Image, error)
}

type Repository interface {
	create(ctx context.Context, event *model.Event) error
	save(ctx context.Context, event *model.Event) error
	findById(ctx context.Context, id uint) (*model.Event, error)
	findBySlug(ctx context.Context, s string) (*model.Event, error)
	findAll(ctx context.Context) ([]*model.Event, error)
	findPublished(ctx context.Context) ([]*model.Event, error)
	delete(ctx context.Context, id uint) error
}

type Service struct {
	imageService imageService
	repository   Repository
}

// Fields carries the caller-editable event attributes.
type Fields struct {
	Title    string
	Date     time.Time
	Location string
	Body     string
}

func (f Fields) validate() error {
	if f.Title == "" {
		return errdef.NewBadRequest("event title is required")
	}
	if f.Date.IsZero() {
		return errdef.NewBadRequest("event date is required")
	}
	return nil
}

// CreateDraft persists a new event in draft state with an empty body. Images
// and content are attached through later calls.
func (s Service) CreateDraft(ctx context.Context, fields Fields, actor *model.User) (*model.Event, error) {
	err := fields.validate()
	if err != nil {
		return nil, err
	}

	event := &model.Event{
		Title:        fields.Title,
		Date:         fields.Date,
		Location:     fields.Location,
		ImageAliases: map[string]string{},
		IsDraft:      true,
		CreatedByID:  actor.ID,
	}
	err = s.repository.create(ctx, event)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Upsert creates or updates an event in published state. Inline images are
// uploaded first, then the event is written with the resulting alias to URL
// mapping, then freshly uploaded images are re-tagged to the event. Updating
// requires the actor to be the event's creator.
func (s Service) Upsert(ctx context.Context, id uint, fields Fields, imageAliases map[string]string, actor *model.User) (*model.Event, int, error) {
	err := fields.validate()
	if err != nil {
		return nil, 0, err
	}

	tag := model.ProvisionalImageTag
	if id != 0 {
		tag = model.EventTag(id)
	}

	aliasURLs, imageIDs, err := s.uploadAliases(ctx, imageAliases, tag)
	if err != nil {
		return nil, 0, err
	}

	if id == 0 {
		event := &model.Event{
			Title:        fields.Title,
			Date:         fields.Date,
			Location:     fields.Location,
			Body:         fields.Body,
			ImageAliases: aliasURLs,
			IsDraft:      false,
			CreatedByID:  actor.ID,
		}
		err = s.repository.create(ctx, event)
		if err != nil {
			return nil, 0, err
		}

		err = s.imageService.Retag(ctx, imageIDs, model.EventTag(event.ID))
		if err != nil {
			return nil, 0, err
		}

		return event, len(imageIDs), nil
	}

	event, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	if event.CreatedByID != actor.ID {
		return nil, 0, errdef.NewForbidden("event %d wasn't created by user %d", id, actor.ID)
	}

	event.Title = fields.Title
	event.Date = fields.Date
	event.Location = fields.Location
	event.Body = fields.Body
	event.IsDraft = false
	if event.ImageAliases == nil {
		event.ImageAliases = map[string]string{}
	}
	for alias, url := range aliasURLs {
		event.ImageAliases[alias] = url
	}

	err = s.repository.save(ctx, event)
	if err != nil {
		return nil, 0, err
	}

	return event, len(imageIDs), nil
}

func (s Service) uploadAliases(ctx context.Context, imageAliases map[string]string, tag string) (map[string]string, []uint, error) {
	aliases := make([]string, 0, len(imageAliases))
	for alias := range imageAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	aliasURLs := make(map[string]string, len(aliases))
	imageIDs := make([]uint, 0, len(aliases))
	for _, alias := range aliases {
		image, err := s.imageService.Upload(ctx, imageAliases[alias], tag)
		if err != nil {
			return nil, nil, err
		}
		aliasURLs[alias] = imageURL(image.ID)
		imageIDs = append(imageIDs, image.ID)
	}

	return aliasURLs, imageIDs, nil
}

func imageURL(id uint) string {
	return fmt.Sprintf("/images/%d", id)
}

// Update publishes changes to an existing event. Unlike Upsert this path
// doesn't touch images and doesn't check ownership; it is gated to
// administrators by the router.
func (s Service) Update(ctx context.Context, id uint, fields Fields) (*model.Event, error) {
	err := fields.validate()
	if err != nil {
		return nil, err
	}

	event, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = fields.Title
	event.Date = fields.Date
	event.Location = fields.Location
	event.Body = fields.Body
	event.IsDraft = false

	err = s.repository.save(ctx, event)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Delete removes an event and every image associated with it. Images go
// first, so a crash mid-operation leaves a discoverable event rather than
// unowned images. Returns the number of image records deleted.
func (s Service) Delete(ctx context.Context, id uint) (int64, error) {
	event, err := s.repository.findById(ctx, id)
	if err != nil {
		return 0, err
	}

	count, err := s.imageService.DeleteByTag(ctx, model.EventTag(event.ID))
	if err != nil {
		return 0, err
	}

	err = s.repository.delete(ctx, event.ID)
	if err != nil {
		return count, err
	}

	return count, nil
}

// UploadImage attaches a single inline image to an existing event.
func (s Service) UploadImage(ctx context.Context, id uint, dataURL string) (*model.Image, error) {
	event, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.imageService.Upload(ctx, dataURL, model.EventTag(event.ID))
}

// DeleteImage removes a single image from an event. The image must actually
// belong to the event.
func (s Service) DeleteImage(ctx context.Context, eventID uint, imageID uint) error {
	return s.imageService.Delete(ctx, model.EventTag(eventID), imageID)
}

// FindPublished returns published events with rendered bodies, newest first.
func (s Service) FindPublished(ctx context.Context) ([]*model.Event, error) {
	events, err := s.repository.findPublished(ctx)
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		event.Body = render(event.Body, event.ImageAliases)
	}

	return events, nil
}

// FindByIdentifier resolves a published event by numeric id or slug and
// renders its body. Drafts are treated as absent on this path.
func (s Service) FindByIdentifier(ctx context.Context, identifier string) (*model.Event, error) {
	event, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if event.IsDraft {
		return nil, errdef.NewNotFound("failed to find event %q", identifier)
	}

	event.Body = render(event.Body, event.ImageAliases)

	return event, nil
}

func (s Service) findByIdentifier(ctx context.Context, identifier string) (*model.Event, error) {
	id, err := strconv.ParseUint(identifier, 10, 32)
	if err != nil {
		return s.repository.findBySlug(ctx, identifier)
	}

	return s.repository.findById(ctx, uint(id))
}

// FindAll returns every event including drafts, unrendered, for the admin
// edit list.
func (s Service) FindAll(ctx context.Context) ([]*model.Event, error) {
	return s.repository.findAll(ctx)
}

// FindWithImages returns an event and its attached images for the admin edit
// view. The body stays raw so aliases remain editable.
func (s Service) FindWithImages(ctx context.Context, id uint) (*model.Event, []*model.Image, error) {
	event, err := s.repository.findById(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	images, err := s.imageService.FindByTag(ctx, model.EventTag(event.ID))
	if err != nil {
		return nil, nil, err
	}

	return event, images, nil
}
