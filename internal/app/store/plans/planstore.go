// internal/app/store/plans/planstore.go
package planstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a plan or service lookup misses.
var ErrNotFound = errors.New("plan not found")

// Store reads subscription plans and their service-catalog entries.
// Plans and services are simple owned records; the interesting part is
// resolving a user's plan list into the services it covers.
type Store struct {
	plans    *mongo.Collection
	services *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		plans:    db.Collection("plans"),
		services: db.Collection("plan_services"),
	}
}

// CreatePlan inserts a plan. Used by admin tooling and fixtures.
func (s *Store) CreatePlan(ctx context.Context, p models.Plan) (models.Plan, error) {
	p.ID = primitive.NewObjectID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.plans.InsertOne(ctx, p); err != nil {
		return models.Plan{}, err
	}
	return p, nil
}

// GetByID loads a plan.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error) {
	var p models.Plan
	if err := s.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDs loads the plans for the given ids, preserving input order.
// Missing ids are simply absent from the result (dangling references are
// tolerated, not fatal).
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Plan, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.plans.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]models.Plan, len(ids))
	for cur.Next(ctx) {
		var p models.Plan
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		byID[p.ID] = p
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Plan, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Services loads the service-catalog entries for the given ids, preserving
// input order and skipping dangling references.
func (s *Store) Services(ctx context.Context, ids []primitive.ObjectID) ([]models.PlanService, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.services.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]models.PlanService, len(ids))
	for cur.Next(ctx) {
		var svc models.PlanService
		if err := cur.Decode(&svc); err != nil {
			return nil, err
		}
		byID[svc.ID] = svc
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	out := make([]models.PlanService, 0, len(ids))
	for _, id := range ids {
		if svc, ok := byID[id]; ok {
			out = append(out, svc)
		}
	}
	return out, nil
}
