// internal/app/system/resolve/resolve.go
//
// Package resolve expands a user's relationship references into a full
// profile view: the management chain, the account owner and their manager,
// direct members, and the services covered by the user's plans. Each hop
// is one store lookup; references to since-deleted users are tolerated and
// resolve to an empty branch rather than failing the whole profile.
package resolve

import (
	"context"
	"errors"

	planstore "github.com/dalemusser/memberhub/internal/app/store/plans"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/filestore"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PersonRef is the reduced projection used for resolved people: enough to
// display and link, nothing sensitive.
type PersonRef struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Email     string             `json:"email"`
}

// Profile is a user with every relationship branch expanded to its fixed
// depth. Branch fields are nil when the reference is unset or dangling.
type Profile struct {
	User models.User `json:"user"`

	Manager     *PersonRef `json:"manager,omitempty"`
	LineManager *PersonRef `json:"line_manager,omitempty"`

	AccountOwner        *PersonRef `json:"account_owner,omitempty"`
	AccountOwnerManager *PersonRef `json:"account_owner_manager,omitempty"`

	Members []PersonRef `json:"members"`

	Services []models.PlanService `json:"services"`

	AvatarURL string   `json:"avatar_url,omitempty"`
	FileURLs  []string `json:"file_urls,omitempty"`
}

// Resolver walks relationship references against the stores.
type Resolver struct {
	users *userstore.Store
	plans *planstore.Store
	files *filestore.Resolver
	log   *zap.Logger
}

func New(users *userstore.Store, plans *planstore.Store, files *filestore.Resolver, log *zap.Logger) *Resolver {
	return &Resolver{users: users, plans: plans, files: files, log: log}
}

// Profile loads the user and expands every branch. A missing root user
// returns userstore.ErrNotFound; a missing referenced user leaves that
// branch empty.
func (r *Resolver) Profile(ctx context.Context, id primitive.ObjectID) (*Profile, error) {
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		User:    *u,
		Members: []PersonRef{},
	}

	if u.ManagerID != nil {
		mgr, err := r.users.GetByID(ctx, *u.ManagerID)
		switch {
		case err == nil:
			p.Manager = ref(mgr)
			// The line manager hop hangs off the manager, not the root user.
			p.LineManager, err = r.person(ctx, mgr.LineManagerID)
			if err != nil {
				return nil, err
			}
		case errors.Is(err, userstore.ErrNotFound):
			r.log.Debug("manager reference dangling",
				zap.String("user_id", u.ID.Hex()),
				zap.String("manager_id", u.ManagerID.Hex()))
		default:
			return nil, err
		}
	}

	ownerPlans := u.PlanIDs
	if u.AccountOwnerID != nil {
		owner, err := r.users.GetByID(ctx, *u.AccountOwnerID)
		switch {
		case err == nil:
			p.AccountOwner = ref(owner)
			p.AccountOwnerManager, err = r.person(ctx, owner.ManagerID)
			if err != nil {
				return nil, err
			}
			// Dependents without plans of their own are covered through
			// their account owner.
			if len(ownerPlans) == 0 {
				ownerPlans = owner.PlanIDs
			}
		case errors.Is(err, userstore.ErrNotFound):
			r.log.Debug("account owner reference dangling",
				zap.String("user_id", u.ID.Hex()),
				zap.String("account_owner_id", u.AccountOwnerID.Hex()))
		default:
			return nil, err
		}
	}

	for _, mid := range u.MemberIDs {
		m, err := r.person(ctx, &mid)
		if err != nil {
			return nil, err
		}
		if m != nil {
			p.Members = append(p.Members, *m)
		}
	}

	services, err := r.plans.ServicesForPlans(ctx, ownerPlans)
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []models.PlanService{}
	}
	p.Services = services

	if r.files != nil {
		p.AvatarURL = r.files.URL(u.Avatar)
		p.FileURLs = r.files.URLs(u.MultipleFiles)
	}

	return p, nil
}

// PlanIDsFor returns the plan ids whose services cover the user: their own
// plans, or the account owner's plans when the user has none.
func (r *Resolver) PlanIDsFor(ctx context.Context, u *models.User) ([]primitive.ObjectID, error) {
	if len(u.PlanIDs) > 0 || u.AccountOwnerID == nil {
		return u.PlanIDs, nil
	}
	owner, err := r.users.GetByID(ctx, *u.AccountOwnerID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return owner.PlanIDs, nil
}

// person resolves one reference to its reduced projection, treating unset
// and dangling references both as nil.
func (r *Resolver) person(ctx context.Context, id *primitive.ObjectID) (*PersonRef, error) {
	if id == nil {
		return nil, nil
	}
	u, err := r.users.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			r.log.Debug("user reference dangling", zap.String("ref_id", id.Hex()))
			return nil, nil
		}
		return nil, err
	}
	return ref(u), nil
}

func ref(u *models.User) *PersonRef {
	return &PersonRef{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
