// internal/app/features/members/handler.go
package members

import (
	"errors"
	"net/http"
	"time"

	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/app/system/paging"
	"github.com/dalemusser/memberhub/internal/app/system/resolve"
	"github.com/dalemusser/memberhub/internal/app/system/webjson"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the member directory: search, profiles, and the
// administrative lifecycle operations.
type Handler struct {
	Users    *userstore.Store
	Resolver *resolve.Resolver
	Log      *zap.Logger
}

// HandleList searches the directory. Accepts term, startDate, endDate
// (YYYY-MM-DD, both or neither), page, and pageSize.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	params := userstore.SearchParams{Term: normalize.QueryParam(query.Get(r, "term"))}

	var err error
	if params.Page, params.PageSize, err = pageArgs(r); err != nil {
		webjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if params.StartDate, err = dateArg(r, "startDate"); err != nil {
		webjson.Error(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		return
	}
	if params.EndDate, err = dateArg(r, "endDate"); err != nil {
		webjson.Error(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		return
	}

	res, err := h.Users.Search(r.Context(), params)
	if err != nil {
		if errors.Is(err, paging.ErrInvalidArgument) {
			webjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("search users", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, res)
}

// HandleGet returns one user record without relationship expansion.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		h.writeLookupErr(w, err)
		return
	}
	webjson.Write(w, http.StatusOK, u)
}

// HandleProfile returns one user with every relationship branch resolved.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	p, err := h.Resolver.Profile(r.Context(), id)
	if err != nil {
		h.writeLookupErr(w, err)
		return
	}
	webjson.Write(w, http.StatusOK, p)
}

// HandleMembershipLookup finds a user by membership id, e.g. for a card
// scan at a service desk. Inactive members are reported as not found.
func (h *Handler) HandleMembershipLookup(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.GetByMembershipID(r.Context(), chi.URLParam(r, "membershipID"))
	if err != nil {
		h.writeLookupErr(w, err)
		return
	}
	if !u.IsActive() {
		webjson.Error(w, http.StatusNotFound, "user not found")
		return
	}
	webjson.Write(w, http.StatusOK, u)
}

type updateRequest struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	IDType     *string `json:"id_type,omitempty"`
	IDNumber   *string `json:"id_number,omitempty"`
	Address    *string `json:"address,omitempty"`
	Activities *string `json:"activities,omitempty"`
	Contact1   *string `json:"contact1,omitempty"`
	Contact2   *string `json:"contact2,omitempty"`
	Username   *string `json:"username,omitempty"`

	ManagerID      *string  `json:"manager_id,omitempty"`
	LineManagerID  *string  `json:"line_manager_id,omitempty"`
	AccountOwnerID *string  `json:"account_owner_id,omitempty"`
	MemberIDs      []string `json:"member_ids,omitempty"`
	PlanIDs        []string `json:"plan_ids,omitempty"`

	Avatar        *string `json:"avatar,omitempty"`
	MultipleFiles *string `json:"multiple_files,omitempty"`
}

// HandleUpdate applies a partial profile update. Members may edit their
// own record; editing anyone else takes at least the manager role.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	actor, ok := auth.CurrentUser(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if actor.ID != id && actor.Role < models.RoleManager {
		webjson.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	var req updateRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Members may edit their own profile, but reporting lines and plan
	// entitlements are only assignable by a manager or above.
	if actor.Role < models.RoleManager && req.touchesRelationships() {
		webjson.Error(w, http.StatusForbidden, "relationship and plan fields require the manager role")
		return
	}

	upd, err := req.toUpdate()
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.Users.UpdateByID(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrValidation):
			webjson.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, userstore.ErrDuplicateKey):
			webjson.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, userstore.ErrNotFound):
			webjson.Error(w, http.StatusNotFound, "user not found")
		default:
			h.Log.Error("update user", zap.Error(err))
			webjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	webjson.Write(w, http.StatusOK, u)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleSetStatus activates or deactivates a member.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	actor, err := authz.Check(r, models.RoleManager)
	if err != nil {
		h.writeAuthzErr(w, err)
		return
	}

	var req statusRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Users.SetStatus(r.Context(), id, req.Status, actor.ID); err != nil {
		switch {
		case errors.Is(err, userstore.ErrValidation):
			webjson.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, userstore.ErrNotFound):
			webjson.Error(w, http.StatusNotFound, "user not found")
		default:
			h.Log.Error("set status", zap.Error(err))
			webjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"message": "status updated"})
}

// HandleDelete hard-removes a member. Admin only; references from other
// records are tolerated by the resolver rather than cascaded here.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if _, err := authz.Check(r, models.RoleAdmin); err != nil {
		h.writeAuthzErr(w, err)
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			webjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("delete user", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (h *Handler) writeLookupErr(w http.ResponseWriter, err error) {
	if errors.Is(err, userstore.ErrNotFound) {
		webjson.Error(w, http.StatusNotFound, "user not found")
		return
	}
	h.Log.Error("load user", zap.Error(err))
	webjson.Error(w, http.StatusInternalServerError, "internal error")
}

func (h *Handler) writeAuthzErr(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrUnauthenticated) {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	webjson.Error(w, http.StatusForbidden, "forbidden")
}

// touchesRelationships reports whether the request sets fields that change
// reporting lines or plan entitlements.
func (req updateRequest) touchesRelationships() bool {
	return req.ManagerID != nil || req.LineManagerID != nil ||
		req.AccountOwnerID != nil || req.MemberIDs != nil || req.PlanIDs != nil
}

func (req updateRequest) toUpdate() (userstore.Update, error) {
	upd := userstore.Update{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Gender:     req.Gender,
		IDType:     req.IDType,
		IDNumber:   req.IDNumber,
		Address:    req.Address,
		Activities: req.Activities,
		Contact1:   req.Contact1,
		Contact2:   req.Contact2,
		Username:   req.Username,

		Avatar:        req.Avatar,
		MultipleFiles: req.MultipleFiles,
	}

	var err error
	if upd.ManagerID, err = refArg(req.ManagerID); err != nil {
		return userstore.Update{}, errors.New("manager_id is not a valid id")
	}
	if upd.LineManagerID, err = refArg(req.LineManagerID); err != nil {
		return userstore.Update{}, errors.New("line_manager_id is not a valid id")
	}
	if upd.AccountOwnerID, err = refArg(req.AccountOwnerID); err != nil {
		return userstore.Update{}, errors.New("account_owner_id is not a valid id")
	}
	if upd.MemberIDs, err = refsArg(req.MemberIDs); err != nil {
		return userstore.Update{}, errors.New("member_ids contains an invalid id")
	}
	if upd.PlanIDs, err = refsArg(req.PlanIDs); err != nil {
		return userstore.Update{}, errors.New("plan_ids contains an invalid id")
	}
	return upd, nil
}

func pathID(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
}

func pageArgs(r *http.Request) (page, size int, err error) {
	params, err := paging.Parse(r)
	if err != nil {
		return 0, 0, err
	}
	return params.Page, params.PageSize, nil
}

func dateArg(r *http.Request, name string) (time.Time, error) {
	raw := query.Get(r, name)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

func refArg(hex *string) (*primitive.ObjectID, error) {
	if hex == nil {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*hex)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func refsArg(hexes []string) ([]primitive.ObjectID, error) {
	if hexes == nil {
		return nil, nil
	}
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
