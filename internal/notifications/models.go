package notifications

import "time"

const (
	TypeNewsletter   = "newsletter"
	TypeNotification = "notification"

	StatusSent    = "sent"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Template is a reusable email body written in markdown.
type Template struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name" validate:"required"`
	Subject   string    `json:"subject" bson:"subject" validate:"required"`
	Body      string    `json:"body" bson:"body" validate:"required"`
	Type      string    `json:"type" bson:"type" validate:"omitempty,oneof=newsletter notification"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Subscriber struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name,omitempty" bson:"name,omitempty"`
	Active       bool      `json:"active" bson:"active"`
	SubscribedAt time.Time `json:"subscribedAt" bson:"subscribedAt"`
}

// Notification records one send of a template.
type Notification struct {
	ID         string    `json:"id" bson:"_id"`
	TemplateID string    `json:"templateId" bson:"templateId"`
	Subject    string    `json:"subject" bson:"subject"`
	Recipients int       `json:"recipients" bson:"recipients"`
	Sent       int       `json:"sent" bson:"sent"`
	Failed     int       `json:"failed" bson:"failed"`
	Status     string    `json:"status" bson:"status"`
	SentBy     string    `json:"sentBy,omitempty" bson:"sentBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Recipient is one addressee of a send.
type Recipient struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty"`
}
