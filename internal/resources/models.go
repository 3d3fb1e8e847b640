package resources

import (
	"io"
	"time"
)

// Item is a downloadable file or external link inside a category.
type Item struct {
	ID          string    `json:"id" bson:"id"`
	Title       string    `json:"title" bson:"title" validate:"required"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	FileName    string    `json:"fileName,omitempty" bson:"fileName,omitempty"`
	ObjectKey   string    `json:"-" bson:"objectKey,omitempty"`
	ContentType string    `json:"contentType,omitempty" bson:"contentType,omitempty"`
	Size        int64     `json:"size,omitempty" bson:"size,omitempty"`
	URL         string    `json:"url,omitempty" bson:"url,omitempty" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Category groups resource items under an admin-curated name.
type Category struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name" validate:"required,max=120"`
	NameKey     string    `json:"-" bson:"nameKey"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Icon        string    `json:"icon,omitempty" bson:"icon,omitempty"`
	Order       int       `json:"order" bson:"order"`
	Items       []Item    `json:"items" bson:"items"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CategoryInput is the body for creating or updating a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

// ItemInput describes a new item. File is nil for link-only items.
type ItemInput struct {
	Title       string
	Description string
	URL         string
	File        *Upload
}

// Upload is a file received from a multipart form.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}
