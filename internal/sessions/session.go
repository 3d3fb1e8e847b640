package sessions

import "time"

// Session is a refresh session. The refresh token carries its ID.
type Session struct {
	ID        string    `bson:"_id" json:"id"`
	AdminID   string    `bson:"adminId" json:"adminId"`
	UserAgent string    `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
