package model

import (
	"fmt"
	"time"
)

// Event domain object defining a publishable trip/event. An event starts out
// as a draft with an empty body and becomes visible on the public site once
// published.
type Event struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Slug      string    `gorm:"index;unique" json:"slug"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location,omitempty"`
	// Body is markdown. Image link targets may hold alias tokens such as
	// %image-1% which are resolved against ImageAliases when rendering.
	Body         string            `json:"body"`
	ImageAliases map[string]string `gorm:"serializer:json;type:jsonb" json:"imageAliases"`
	IsDraft      bool              `gorm:"default:true" json:"isDraft"`
	CreatedByID  uint              `json:"-"`
	CreatedBy    *User             `json:"createdBy,omitempty"`
}

// ProvisionalImageTag marks images uploaded before their owning event exists.
// They are re-tagged with EventTag once the event is created, or reclaimed by
// the orphan sweep if that never happens.
const ProvisionalImageTag = "event"

// EventTag returns the association tag binding an image to the event with the
// given id. The format is a fixed contract; ownership checks compare against
// the exact literal.
func EventTag(id uint) string {
	return fmt.Sprintf("event:%d", id)
}
