package event

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/internal/handler"
	"github.com/troop127/portal/pkg/model"
)

func NewHandler(eventService eventService) Handler {
	return Handler{
		eventService: eventService,
	}
}

type Handler struct {
	eventService eventService
}

type eventService interface {
	CreateDraft(ctx context.Context, fields Fields, actor *model.User) (*model.Event, error)
	Upsert(ctx context.Context, id uint, fields Fields, imageAliases map[string]string, actor *model.User) (*model.Event, int, error)
	Update(ctx context.Context, id uint, fields Fields) (*model.Event, error)
	Delete(ctx context.Context, id uint) (int64, error)
	UploadImage(ctx context.Context, id uint, dataURL string) (*model.Image, error)
	DeleteImage(ctx context.Context, eventID uint, imageID uint) error
	FindPublished(ctx context.Context) ([]*model.Event, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.Event, error)
	FindAll(ctx context.Context) ([]*model.Event, error)
	FindWithImages(ctx context.Context, id uint) (*model.Event, []*model.Image, error)
}

type CreateEventRequest struct {
	EventTitle string `json:"eventTitle" binding:"required"`
	EventDate  string `json:"eventDate" binding:"required"`
	Location   string `json:"location"`
}

// CreateEvent creates a new draft event.
func (h Handler) CreateEvent(c *gin.Context) {
	var request CreateEventRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	date, err := parseDate(request.EventDate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	fields := Fields{
		Title:    request.EventTitle,
		Date:     date,
		Location: request.Location,
	}
	event, err := h.eventService.CreateDraft(c.Request.Context(), fields, user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "eventId": event.ID})
}

type UploadEventRequest struct {
	EventTitle   string            `json:"eventTitle" binding:"required"`
	EventDate    string            `json:"eventDate" binding:"required"`
	Location     string            `json:"location"`
	Description  string            `json:"description"`
	ImageAliases map[string]string `json:"imageAliases"`
}

// UploadEvent creates or updates a published event together with its inline
// images. Without an id query parameter a new event is created; with one the
// existing event is updated, which only its creator may do.
func (h Handler) UploadEvent(c *gin.Context) {
	var request UploadEventRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	date, err := parseDate(request.EventDate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var id uint
	if rawID := c.Query("id"); rawID != "" {
		parsed, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil {
			_ = c.Error(errdef.NewBadRequest("error parsing id: %v", err))
			return
		}
		id = uint(parsed)
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	fields := Fields{
		Title:    request.EventTitle,
		Date:     date,
		Location: request.Location,
		Body:     request.Description,
	}
	event, uploadedImages, err := h.eventService.Upsert(c.Request.Context(), id, fields, request.ImageAliases, user)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "eventId": event.ID, "uploadedImages": uploadedImages})
}

type UpdateEventRequest struct {
	EventTitle  string `json:"eventTitle" binding:"required"`
	EventDate   string `json:"eventDate" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// UpdateEvent publishes changes to an event's fields.
func (h Handler) UpdateEvent(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request UpdateEventRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	date, err := parseDate(request.EventDate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	fields := Fields{
		Title:    request.EventTitle,
		Date:     date,
		Location: request.Location,
		Body:     request.Description,
	}
	event, err := h.eventService.Update(c.Request.Context(), id, fields)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "eventId": event.ID})
}

// DeleteEvent removes an event and all of its images.
func (h Handler) DeleteEvent(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	deletedImages, err := h.eventService.Delete(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deletedImages": deletedImages})
}

type UploadImageRequest struct {
	DataURL  string `json:"dataUrl" binding:"required"`
	Filename string `json:"filename"`
}

// UploadImage attaches a single image to an event.
func (h Handler) UploadImage(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request UploadImageRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	image, err := h.eventService.UploadImage(c.Request.Context(), id, request.DataURL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "imageId": image.ID})
}

type DeleteImageRequest struct {
	ImageID uint `json:"imageId" binding:"required"`
}

// DeleteImage removes a single image from an event.
func (h Handler) DeleteImage(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request DeleteImageRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	err := h.eventService.DeleteImage(c.Request.Context(), id, request.ImageID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "imageId": request.ImageID})
}

// ListPublished returns published events with rendered bodies for the public
// site.
func (h Handler) ListPublished(c *gin.Context) {
	events, err := h.eventService.FindPublished(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// FindPublished returns a single published, rendered event by id or slug.
func (h Handler) FindPublished(c *gin.Context) {
	identifier := c.Param("id")
	if identifier == "" {
		_ = c.Error(errdef.NewBadRequest("missing event identifier"))
		return
	}

	event, err := h.eventService.FindByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListAll returns every event including drafts for the admin edit list.
func (h Handler) ListAll(c *gin.Context) {
	events, err := h.eventService.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// FindWithImages returns an event and its images for the admin edit view.
func (h Handler) FindWithImages(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	event, images, err := h.eventService.FindWithImages(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event, "images": images})
}

// parseDate accepts RFC 3339 timestamps and plain calendar dates.
func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return date, nil
	}

	date, err = time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errdef.NewBadRequest("error parsing event date %q", value)
	}

	return date, nil
}
