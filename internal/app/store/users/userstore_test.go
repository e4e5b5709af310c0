package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/credentials"
	"github.com/dalemusser/memberhub/internal/app/system/indexes"
	"github.com/dalemusser/memberhub/internal/app/system/paging"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func validUser(n string) models.User {
	return models.User{
		FirstName: "Maria",
		LastName:  "Silva",
		Email:     n + "@example.com",
		Gender:    "feminino",
		IDType:    "BI",
		IDNumber:  "IDN-" + n,
		Contact1:  "84" + n,
		Address:   "Av. Julius Nyerere",
	}
}

func setupStore(t *testing.T) (*userstore.Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return userstore.New(db), db
}

func TestStore_Create(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, validUser("1000001"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Status != models.StatusActive {
		t.Errorf("expected default status Active, got %q", created.Status)
	}
	if created.MembershipID == "" {
		t.Error("expected membership id to be generated")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_RequiresContact1(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := validUser("1000002")
	u.Contact1 = ""
	if _, err := store.Create(ctx, u); !errors.Is(err, userstore.ErrValidation) {
		t.Errorf("expected ErrValidation without contact1, got %v", err)
	}
}

func TestStore_Create_RejectsBadEmailAndGender(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := validUser("1000003")
	u.Email = "not-an-address"
	if _, err := store.Create(ctx, u); !errors.Is(err, userstore.ErrValidation) {
		t.Errorf("expected ErrValidation for email, got %v", err)
	}

	u = validUser("1000004")
	u.Gender = "unknown"
	if _, err := store.Create(ctx, u); !errors.Is(err, userstore.ErrValidation) {
		t.Errorf("expected ErrValidation for gender, got %v", err)
	}
}

func TestStore_Create_DuplicateUniqueFields(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := validUser("2000001")
	first.Contact2 = "842000099"
	if _, err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*models.User)
	}{
		{"email", func(u *models.User) { u.Email = first.Email }},
		{"id_number", func(u *models.User) { u.IDNumber = first.IDNumber }},
		{"contact1", func(u *models.User) { u.Contact1 = first.Contact1 }},
		{"contact2", func(u *models.User) { u.Contact2 = first.Contact2 }},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser("300000" + string(rune('1'+i)))
			tt.mutate(&u)
			if _, err := store.Create(ctx, u); !errors.Is(err, userstore.ErrDuplicateKey) {
				t.Errorf("expected ErrDuplicateKey on %s collision, got %v", tt.name, err)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestStore_UniqueFieldLookups(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := validUser("4000001")
	u.Username = "maria.s"
	created, err := store.Create(ctx, u)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if got, err := store.GetByUsername(ctx, "maria.s"); err != nil || got.ID != created.ID {
		t.Errorf("GetByUsername: got %v, err %v", got, err)
	}
	if got, err := store.GetByEmail(ctx, "4000001@EXAMPLE.COM"); err != nil || got.ID != created.ID {
		t.Errorf("GetByEmail should be case-insensitive: got %v, err %v", got, err)
	}
	if got, err := store.GetByIDNumber(ctx, created.IDNumber); err != nil || got.ID != created.ID {
		t.Errorf("GetByIDNumber: got %v, err %v", got, err)
	}
	if got, err := store.GetByMembershipID(ctx, created.MembershipID); err != nil || got.ID != created.ID {
		t.Errorf("GetByMembershipID: got %v, err %v", got, err)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
	if _, err := store.GetByUsername(ctx, "nobody"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown username, got %v", err)
	}
}

func TestStore_UpdateByID_OnlyPresentFields(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, validUser("5000001"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// An update that omits contact1 must not fail or clear it.
	updated, err := store.UpdateByID(ctx, created.ID, userstore.Update{
		FirstName: strPtr("Ana"),
	})
	if err != nil {
		t.Fatalf("UpdateByID failed: %v", err)
	}
	if updated.FirstName != "Ana" {
		t.Errorf("FirstName = %q, want Ana", updated.FirstName)
	}
	if updated.Contact1 != created.Contact1 {
		t.Errorf("Contact1 changed: %q -> %q", created.Contact1, updated.Contact1)
	}

	if _, err := store.UpdateByID(ctx, primitive.NewObjectID(), userstore.Update{FirstName: strPtr("X")}); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetStatusAndDelete(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, validUser("6000001"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetStatus(ctx, created.ID, "inactive", primitive.NilObjectID); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusInactive {
		t.Errorf("status = %q, want Inactive", got.Status)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, created.ID); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestStore_ResetTokenRoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, validUser("7000001"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	token := credentials.NewResetToken()
	if err := store.SetResetToken(ctx, created.ID, token, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetResetToken failed: %v", err)
	}

	if err := store.RedeemResetToken(ctx, token, "new-hash"); err != nil {
		t.Fatalf("RedeemResetToken failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PasswordHash != "new-hash" {
		t.Errorf("password hash not replaced")
	}
	if got.ResetToken != "" || got.ResetTokenExpires != nil {
		t.Error("token fields not cleared after redemption")
	}

	// Single use: the same token cannot be redeemed twice.
	if err := store.RedeemResetToken(ctx, token, "other-hash"); !errors.Is(err, credentials.ErrInvalidOrExpiredToken) {
		t.Errorf("second redeem: expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestStore_ResetTokenExpired(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, validUser("7000002"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	token := credentials.NewResetToken()
	if err := store.SetResetToken(ctx, created.ID, token, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("SetResetToken failed: %v", err)
	}

	if err := store.RedeemResetToken(ctx, token, "new-hash"); !errors.Is(err, credentials.ErrInvalidOrExpiredToken) {
		t.Errorf("expected ErrInvalidOrExpiredToken for expired token, got %v", err)
	}
}

func TestStore_ResetTokenOverwrite(t *testing.T) {
	store, _ := setupStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, validUser("7000003"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	old := credentials.NewResetToken()
	if err := store.SetResetToken(ctx, created.ID, old, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetResetToken failed: %v", err)
	}
	replacement := credentials.NewResetToken()
	if err := store.SetResetToken(ctx, created.ID, replacement, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetResetToken failed: %v", err)
	}

	// At most one active token per user: the overwritten one is dead.
	if err := store.RedeemResetToken(ctx, old, "h"); !errors.Is(err, credentials.ErrInvalidOrExpiredToken) {
		t.Errorf("expected overwritten token to be unusable, got %v", err)
	}
	if err := store.RedeemResetToken(ctx, replacement, "h"); err != nil {
		t.Errorf("replacement token should redeem, got %v", err)
	}
}

func TestStore_SearchPagination(t *testing.T) {
	store, db := setupStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 5; i++ {
		fixtures.CreateUser(ctx, "Paged", "Member")
	}

	res, err := store.Search(ctx, userstore.SearchParams{Term: "paged", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(res.Items) != 2 {
		t.Errorf("page 1: got %d items, want 2", len(res.Items))
	}
	if res.Total != 5 {
		t.Errorf("total = %d, want 5", res.Total)
	}
	if res.PageCount != 3 {
		t.Errorf("pageCount = %d, want 3", res.PageCount)
	}

	// Out-of-range page is empty, not an error.
	res, err = store.Search(ctx, userstore.SearchParams{Term: "paged", Page: 10, PageSize: 2})
	if err != nil {
		t.Fatalf("Search page 10 failed: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("page 10: got %d items, want 0", len(res.Items))
	}

	// Invalid paging is rejected before the store is touched.
	if _, err := store.Search(ctx, userstore.SearchParams{Page: -1}); !errors.Is(err, paging.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestStore_SearchMatchesFields(t *testing.T) {
	store, db := setupStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	maria := fixtures.CreateUser(ctx, "Maria", "Silva", func(u *models.User) {
		u.Contact1 = "821234567"
	})
	fixtures.CreateUser(ctx, "Carlos", "Macuácua")

	for _, term := range []string{"silva", "821234", "MARIA"} {
		res, err := store.Search(ctx, userstore.SearchParams{Term: term})
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", term, err)
		}
		if len(res.Items) != 1 || res.Items[0].ID != maria.ID {
			t.Errorf("Search(%q): expected exactly Maria, got %d items", term, len(res.Items))
		}
	}

	res, err := store.Search(ctx, userstore.SearchParams{Term: "nomatchterm"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("non-matching term returned %d items", len(res.Items))
	}
}

func TestStore_SearchNewestFirst(t *testing.T) {
	store, db := setupStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	older := fixtures.CreateUser(ctx, "Old", "Entry", func(u *models.User) {
		u.CreatedAt = time.Now().Add(-48 * time.Hour)
	})
	newer := fixtures.CreateUser(ctx, "New", "Entry")

	res, err := store.Search(ctx, userstore.SearchParams{Term: "entry"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(res.Items))
	}
	if res.Items[0].ID != newer.ID || res.Items[1].ID != older.ID {
		t.Error("results not sorted newest first")
	}
}
