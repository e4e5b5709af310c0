// internal/domain/models/signin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SignInRecord captures a single successful sign-in.
// CreatedAt is indexed for recent-activity views.
type SignInRecord struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Email     string             `bson:"email" json:"email"`
	IP        string             `bson:"ip" json:"ip"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
