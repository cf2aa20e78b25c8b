package model

import "time"

// Image domain object describing an uploaded binary asset. The bytes live in
// the object store under StorageKey; the document only carries bookkeeping.
type Image struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"uploadedAt"`
	// Type is the media subtype ("png", "jpeg"), derived from the data URL.
	Type                  string `json:"type"`
	StorageKey            string `json:"filename"`
	Size                  int64  `json:"size"`
	AssociatedResourceTag string `gorm:"index" json:"-"`
}
