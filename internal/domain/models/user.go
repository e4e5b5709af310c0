// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status values for User.Status.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Role ordinals. Higher values carry more privilege; RoleAdmin is the
// highest defined role and gates destructive operations such as delete.
const (
	RoleMember  = 0
	RoleManager = 1
	RoleAdmin   = 2
)

// Genders is the fixed set of accepted gender values.
var Genders = []string{"masculino", "feminino", "outro"}

// User is the sole entity of the directory core. All relationship fields
// are ObjectID references back into the users collection; they are resolved
// one lookup per hop, never embedded.
//
// PasswordHash, ResetToken, and ResetTokenExpires are bson-only: they have
// no json representation and are never included in any serialized view.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username,omitempty" json:"username,omitempty"`
	IDNumber     string             `bson:"id_number" json:"id_number"`
	MembershipID string             `bson:"membership_id" json:"membership_id"`
	Contact1     string             `bson:"contact1,omitempty" json:"contact1,omitempty"`
	Contact2     string             `bson:"contact2,omitempty" json:"contact2,omitempty"`

	FirstName  string    `bson:"first_name" json:"first_name"`
	LastName   string    `bson:"last_name" json:"last_name"`
	Email      string    `bson:"email" json:"email"`
	Gender     string    `bson:"gender" json:"gender"`
	DOB        time.Time `bson:"dob,omitempty" json:"dob,omitempty"`
	IDType     string    `bson:"id_type" json:"id_type"`
	Address    string    `bson:"address,omitempty" json:"address,omitempty"`
	Activities string    `bson:"activities,omitempty" json:"activities,omitempty"`

	Status string `bson:"status" json:"status"` // Active | Inactive
	Role   int    `bson:"role" json:"role"`

	PasswordHash      string     `bson:"password_hash,omitempty" json:"-"`
	ResetToken        string     `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExpires *time.Time `bson:"reset_token_expires,omitempty" json:"-"`

	ManagerID      *primitive.ObjectID  `bson:"manager_id,omitempty" json:"manager_id,omitempty"`
	LineManagerID  *primitive.ObjectID  `bson:"line_manager_id,omitempty" json:"line_manager_id,omitempty"`
	AccountOwnerID *primitive.ObjectID  `bson:"account_owner_id,omitempty" json:"account_owner_id,omitempty"`
	MemberIDs      []primitive.ObjectID `bson:"member_ids,omitempty" json:"member_ids,omitempty"`
	CreatedByID    *primitive.ObjectID  `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`

	PlanIDs []primitive.ObjectID `bson:"plan_ids,omitempty" json:"plan_ids,omitempty"`

	Avatar        string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	MultipleFiles string `bson:"multiple_files,omitempty" json:"multiple_files,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsActive reports whether the user may sign in or be surfaced by
// membership lookups.
func (u *User) IsActive() bool { return u.Status == StatusActive }

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}
