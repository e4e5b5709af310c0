// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensurePlans(ctx, db); err != nil {
		problems = append(problems, "plans: "+err.Error())
	}
	if err := ensurePlanServices(ctx, db); err != nil {
		problems = append(problems, "plan_services: "+err.Error())
	}
	if err := ensureSignInRecords(ctx, db); err != nil {
		problems = append(problems, "signin_records: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// uniqueWhenPresent builds a partial unique index: uniqueness applies only
// to documents where the field exists as a string, so optional fields
// (contact2, username) may be absent on any number of records.
func uniqueWhenPresent(field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: field, Value: 1}},
		Options: options.Index().
			SetName("uniq_users_" + field).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{field: bson.M{"$type": "string"}}),
	}
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	desired := []mongo.IndexModel{
		uniqueWhenPresent("email"),
		uniqueWhenPresent("id_number"),
		uniqueWhenPresent("contact1"),
		uniqueWhenPresent("contact2"),
		uniqueWhenPresent("membership_id"),
		uniqueWhenPresent("username"),
		{
			// reset-token redemption lookup
			Keys:    bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetName("idx_users_reset_token").SetSparse(true),
		},
		{
			// newest-first listing and date-range search
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_created_at"),
		},
		{
			Keys:    bson.D{{Key: "manager_id", Value: 1}},
			Options: options.Index().SetName("idx_users_manager"),
		},
		{
			Keys:    bson.D{{Key: "account_owner_id", Value: 1}},
			Options: options.Index().SetName("idx_users_account_owner"),
		},
	}
	return ensureIndexSet(ctx, db.Collection("users"), desired)
}

func ensurePlans(ctx context.Context, db *mongo.Database) error {
	desired := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_plans_name"),
		},
	}
	return ensureIndexSet(ctx, db.Collection("plans"), desired)
}

func ensurePlanServices(ctx context.Context, db *mongo.Database) error {
	desired := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_plan_services_name"),
		},
	}
	return ensureIndexSet(ctx, db.Collection("plan_services"), desired)
}

func ensureSignInRecords(ctx context.Context, db *mongo.Database) error {
	desired := []mongo.IndexModel{
		{
			// recent-activity lookups per user
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_signins_user_created"),
		},
	}
	return ensureIndexSet(ctx, db.Collection("signin_records"), desired)
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameUnique(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// ensureIndexSet reconciles desired indexes against what exists: reuse when
// keys and uniqueness already match, otherwise drop the stale index and
// recreate. Errors are aggregated per collection.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()), zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
	}

	var errs []string
	for _, m := range desired {
		var wantUnique *bool
		var wantName string
		if m.Options != nil {
			wantUnique = m.Options.Unique
			if m.Options.Name != nil {
				wantName = *m.Options.Name
			}
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameUnique(wantUnique, ex.Unique) {
				continue // reuse
			}
			// Options mismatch (e.g., upgrading to unique): drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), wantName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): create failed: %v", coll.Name(), wantName, err))
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", wantName),
			zap.String("keys", sig),
			zap.Bool("unique", wantUnique != nil && *wantUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
