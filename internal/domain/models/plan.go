// internal/domain/models/plan.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is a subscription plan a user is entitled to. Plans reference the
// service-catalog entries they cover; a dependent's entitlement is read
// from whichever account actually holds the plan.
type Plan struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	ServiceIDs []primitive.ObjectID `bson:"service_ids,omitempty" json:"service_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PlanService is a service-catalog entry (collaborator record: no hierarchy
// of its own).
type PlanService struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AreaOfCover string             `bson:"area_of_cover,omitempty" json:"area_of_cover,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
