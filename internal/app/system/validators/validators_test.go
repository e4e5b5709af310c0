package validators_test

import (
	"testing"

	"github.com/dalemusser/memberhub/internal/app/system/validators"
	"github.com/dalemusser/memberhub/internal/testutil"

	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent).
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "plans", "plan_services", "signin_records"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestUsersValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("users").InsertOne(ctx, bson.M{
		"first_name": "Ana",
	})
	if err == nil {
		t.Error("expected validation error when inserting user without required fields")
	}
}

func TestUsersValidator_ValidUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("users").InsertOne(ctx, bson.M{
		"first_name": "Ana",
		"last_name":  "Macamo",
		"email":      "ana@example.com",
		"status":     "Active",
		"role":       0,
		"gender":     "outro",
	})
	if err != nil {
		t.Errorf("insert valid user failed: %v", err)
	}
}

func TestUsersValidator_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("users").InsertOne(ctx, bson.M{
		"first_name": "Ana",
		"last_name":  "Macamo",
		"email":      "ana@example.com",
		"status":     "Suspended",
		"role":       0,
	})
	if err == nil {
		t.Error("expected validation error for invalid status")
	}
}

func TestUsersValidator_RoleOutOfRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("users").InsertOne(ctx, bson.M{
		"first_name": "Ana",
		"last_name":  "Macamo",
		"email":      "ana@example.com",
		"status":     "Active",
		"role":       9,
	})
	if err == nil {
		t.Error("expected validation error for out-of-range role")
	}
}

func TestPlansValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := db.Collection("plans").InsertOne(ctx, bson.M{"name": "Basic"}); err != nil {
		t.Errorf("insert valid plan failed: %v", err)
	}
	if _, err := db.Collection("plans").InsertOne(ctx, bson.M{"name": "   "}); err == nil {
		t.Error("expected validation error for blank plan name")
	}
}

func TestPlanServicesValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := db.Collection("plan_services").InsertOne(ctx, bson.M{"name": "Dental", "price": 120.0}); err != nil {
		t.Errorf("insert valid service failed: %v", err)
	}
	if _, err := db.Collection("plan_services").InsertOne(ctx, bson.M{"name": "Dental", "price": -5.0}); err == nil {
		t.Error("expected validation error for negative price")
	}
}
