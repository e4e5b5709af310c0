// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/memberhub/internal/app/system/credentials"
	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateKey is returned when a unique field (email, id_number,
	// contact1, contact2, membership_id) collides with an existing record.
	ErrDuplicateKey = errors.New("a user with one of these unique fields already exists")
	// ErrNotFound is returned on id or unique-field lookup misses.
	ErrNotFound = errors.New("user not found")
	// ErrValidation is returned when a required or malformed field is
	// rejected before any store mutation.
	ErrValidation = errors.New("missing or malformed required field")
)

// Store is the durable record of User entities.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new user after normalizing and validating fields.
// The password hash must already be set by the caller; plaintext passwords
// never reach the store. contact1 is required at creation time only.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.Email = normalize.Email(u.Email)
	u.Contact1 = normalize.Contact(u.Contact1)
	u.Contact2 = normalize.Contact(u.Contact2)
	u.Address = htmlsanitize.Strip(u.Address)
	u.Activities = htmlsanitize.Strip(u.Activities)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if u.MembershipID == "" {
		u.MembershipID = uuid.NewString()
	}

	switch {
	case u.FirstName == "" || u.LastName == "":
		return models.User{}, fmt.Errorf("%w: name", ErrValidation)
	case !normalize.ValidEmail(u.Email):
		return models.User{}, fmt.Errorf("%w: email", ErrValidation)
	case !models.ValidGender(u.Gender):
		return models.User{}, fmt.Errorf("%w: gender", ErrValidation)
	case u.IDType == "" || u.IDNumber == "":
		return models.User{}, fmt.Errorf("%w: identity document", ErrValidation)
	case u.Contact1 == "":
		return models.User{}, fmt.Errorf("%w: contact1", ErrValidation)
	case u.Status != models.StatusActive && u.Status != models.StatusInactive:
		return models.User{}, fmt.Errorf("%w: status", ErrValidation)
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateKey
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.getOne(ctx, bson.M{"_id": id})
}

// GetByUsername looks up a user by sign-in name.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, bson.M{"username": username})
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetByIDNumber looks up a user by business identifier.
func (s *Store) GetByIDNumber(ctx context.Context, idNumber string) (*models.User, error) {
	return s.getOne(ctx, bson.M{"id_number": idNumber})
}

// GetByMembershipID looks up a user by membership id.
func (s *Store) GetByMembershipID(ctx context.Context, membershipID string) (*models.User, error) {
	return s.getOne(ctx, bson.M{"membership_id": membershipID})
}

// GetByResetToken looks up the user holding a still-valid reset token.
// Expired tokens miss the filter and report ErrNotFound like absent ones.
func (s *Store) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return s.getOne(ctx, bson.M{
		"reset_token":         token,
		"reset_token_expires": bson.M{"$gt": time.Now()},
	})
}

func (s *Store) getOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update holds the fields a profile update may change. Nil pointers are
// absent from the update payload: they are not written and their
// uniqueness is not re-validated.
type Update struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Gender     *string
	DOB        *time.Time
	IDType     *string
	IDNumber   *string
	Address    *string
	Activities *string
	Contact1   *string
	Contact2   *string
	Username   *string
	Role       *int

	ManagerID      *primitive.ObjectID
	LineManagerID  *primitive.ObjectID
	AccountOwnerID *primitive.ObjectID
	MemberIDs      []primitive.ObjectID
	PlanIDs        []primitive.ObjectID

	Avatar        *string
	MultipleFiles *string
}

// set builds the $set document from the present fields only.
func (upd Update) set() bson.M {
	set := bson.M{"updated_at": time.Now()}
	if upd.FirstName != nil {
		set["first_name"] = normalize.Name(*upd.FirstName)
	}
	if upd.LastName != nil {
		set["last_name"] = normalize.Name(*upd.LastName)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.DOB != nil {
		set["dob"] = *upd.DOB
	}
	if upd.IDType != nil {
		set["id_type"] = *upd.IDType
	}
	if upd.IDNumber != nil {
		set["id_number"] = *upd.IDNumber
	}
	if upd.Address != nil {
		set["address"] = htmlsanitize.Strip(*upd.Address)
	}
	if upd.Activities != nil {
		set["activities"] = htmlsanitize.Strip(*upd.Activities)
	}
	if upd.Contact1 != nil {
		set["contact1"] = normalize.Contact(*upd.Contact1)
	}
	if upd.Contact2 != nil {
		set["contact2"] = normalize.Contact(*upd.Contact2)
	}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.ManagerID != nil {
		set["manager_id"] = *upd.ManagerID
	}
	if upd.LineManagerID != nil {
		set["line_manager_id"] = *upd.LineManagerID
	}
	if upd.AccountOwnerID != nil {
		set["account_owner_id"] = *upd.AccountOwnerID
	}
	if upd.MemberIDs != nil {
		set["member_ids"] = upd.MemberIDs
	}
	if upd.PlanIDs != nil {
		set["plan_ids"] = upd.PlanIDs
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	if upd.MultipleFiles != nil {
		set["multiple_files"] = *upd.MultipleFiles
	}
	return set
}

// UpdateByID applies the present fields of upd as a single $set. Fields
// with changed values hit the unique indexes, so collisions surface as
// ErrDuplicateKey without a separate pre-query.
func (s *Store) UpdateByID(ctx context.Context, id primitive.ObjectID, upd Update) (*models.User, error) {
	if upd.Email != nil && !normalize.ValidEmail(*upd.Email) {
		return nil, fmt.Errorf("%w: email", ErrValidation)
	}
	if upd.Gender != nil && !models.ValidGender(*upd.Gender) {
		return nil, fmt.Errorf("%w: gender", ErrValidation)
	}

	after := options.After
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": upd.set()},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return &u, nil
}

// SetStatus toggles a user active/inactive and records the acting user.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string, byID primitive.ObjectID) error {
	status = normalize.Status(status)
	if status != models.StatusActive && status != models.StatusInactive {
		return fmt.Errorf("%w: status", ErrValidation)
	}
	set := bson.M{"status": status, "updated_at": time.Now()}
	if byID != primitive.NilObjectID {
		set["created_by_id"] = byID
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-removes a user. No cascade is performed: references held in
// other records' member_ids/manager_id/account_owner_id fields are left in
// place, and the resolver treats them as empty branches (tolerate-and-empty
// policy).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken records a reset token with its expiry on the user record,
// overwriting any prior outstanding token. Both fields are written in one
// update so readers never observe them torn apart.
func (s *Store) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"reset_token":         token,
			"reset_token_expires": expires,
			"updated_at":          time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RedeemResetToken replaces the password hash and clears both token fields
// in a single conditional update keyed on the presented token and its
// expiry. A concurrent redeem or an expired token matches zero documents.
func (s *Store) RedeemResetToken(ctx context.Context, token, newHash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"reset_token":         token,
			"reset_token_expires": bson.M{"$gt": time.Now()},
		},
		bson.M{
			"$set":   bson.M{"password_hash": newHash, "updated_at": time.Now()},
			"$unset": bson.M{"reset_token": "", "reset_token_expires": ""},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return credentials.ErrInvalidOrExpiredToken
	}
	return nil
}

// SetPasswordHash replaces a user's stored password hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of users matching filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Find returns the users matching filter with the given options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
