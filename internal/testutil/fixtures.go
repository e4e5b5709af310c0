package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db  *mongo.Database
	t   *testing.T
	seq int
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// next returns a per-fixture sequence number used to keep unique fields
// distinct across created users.
func (f *Fixtures) next() int {
	f.seq++
	return f.seq
}

// CreateUser inserts an active user with distinct unique fields. Mutators
// run before the insert so tests can wire relationships in place.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName string, mutate ...func(*models.User)) models.User {
	f.t.Helper()

	n := f.next()
	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        fmt.Sprintf("%s.%s.%d@example.com", firstName, lastName, n),
		Gender:       "outro",
		IDType:       "BI",
		IDNumber:     fmt.Sprintf("ID-%06d", n),
		MembershipID: fmt.Sprintf("MS-%06d", n),
		Contact1:     fmt.Sprintf("82%07d", n),
		Address:      "Av. 25 de Setembro",
		Status:       models.StatusActive,
		Role:         models.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, m := range mutate {
		m(&user)
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateService inserts a plan-service catalog entry.
func (f *Fixtures) CreateService(ctx context.Context, name string, price float64, area string) models.PlanService {
	f.t.Helper()

	now := time.Now().UTC()
	svc := models.PlanService{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Price:       price,
		Description: name + " coverage",
		AreaOfCover: area,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("plan_services").InsertOne(ctx, svc); err != nil {
		f.t.Fatalf("failed to create test service: %v", err)
	}
	return svc
}

// CreatePlan inserts a plan covering the given services.
func (f *Fixtures) CreatePlan(ctx context.Context, name string, serviceIDs ...primitive.ObjectID) models.Plan {
	f.t.Helper()

	now := time.Now().UTC()
	plan := models.Plan{
		ID:         primitive.NewObjectID(),
		Name:       name,
		ServiceIDs: serviceIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("plans").InsertOne(ctx, plan); err != nil {
		f.t.Fatalf("failed to create test plan: %v", err)
	}
	return plan
}
