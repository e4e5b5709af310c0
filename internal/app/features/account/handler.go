// internal/app/features/account/handler.go
package account

import (
	"errors"
	"net/http"
	"time"

	planstore "github.com/dalemusser/memberhub/internal/app/store/plans"
	signinstore "github.com/dalemusser/memberhub/internal/app/store/signins"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/credentials"
	"github.com/dalemusser/memberhub/internal/app/system/mailer"
	"github.com/dalemusser/memberhub/internal/app/system/normalize"
	"github.com/dalemusser/memberhub/internal/app/system/paging"
	"github.com/dalemusser/memberhub/internal/app/system/ratelimit"
	"github.com/dalemusser/memberhub/internal/app/system/resolve"
	"github.com/dalemusser/memberhub/internal/app/system/webjson"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// signInFailedMsg is deliberately the same for unknown accounts, wrong
// passwords, and inactive accounts so responses don't reveal which
// accounts exist.
const signInFailedMsg = "invalid credentials"

// Handler serves account self-service: sign-up, sign-in, the signed-in
// profile, covered services, and the password-reset flow.
type Handler struct {
	Users    *userstore.Store
	Plans    *planstore.Store
	SignIns  *signinstore.Store
	Resolver *resolve.Resolver
	Hasher   *credentials.Hasher
	Sessions *credentials.Sessions
	Sender   mailer.Sender
	Limiter  *ratelimit.SignInLimiter
	ResetTTL time.Duration
	SiteName string
	BaseURL  string
	Log      *zap.Logger
}

type signUpRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Gender    string `json:"gender"`
	IDType    string `json:"id_type"`
	IDNumber  string `json:"id_number"`
	Contact1  string `json:"contact1"`
	Contact2  string `json:"contact2,omitempty"`
	Address   string `json:"address,omitempty"`
}

// HandleSignUp creates an account. New accounts start as active members.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		webjson.Error(w, http.StatusBadRequest, "password is required")
		return
	}

	hash, err := h.Hasher.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	u, err := h.Users.Create(r.Context(), models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Gender:       req.Gender,
		IDType:       req.IDType,
		IDNumber:     req.IDNumber,
		Contact1:     req.Contact1,
		Contact2:     req.Contact2,
		Address:      req.Address,
		Role:         models.RoleMember,
		PasswordHash: hash,
	})
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrValidation):
			webjson.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, userstore.ErrDuplicateKey):
			webjson.Error(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("create user", zap.Error(err))
			webjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	webjson.Write(w, http.StatusCreated, u)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expires_in"`
	User      models.User `json:"user"`
}

// HandleSignIn verifies credentials and issues a session token.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.Limiter != nil && !h.Limiter.Allow(signinstore.ClientIP(r), req.Email) {
		webjson.Error(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			webjson.Error(w, http.StatusUnauthorized, signInFailedMsg)
			return
		}
		h.Log.Error("sign-in lookup", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	ok, err := h.Hasher.VerifyPassword(req.Password, u.PasswordHash)
	if err != nil {
		// A malformed stored hash means corrupted credential storage,
		// not a bad guess; surface it instead of folding into the 401.
		h.Log.Error("verify password", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok || !u.IsActive() {
		webjson.Error(w, http.StatusUnauthorized, signInFailedMsg)
		return
	}

	token, err := h.Sessions.Issue(u.ID)
	if err != nil {
		h.Log.Error("issue session token", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(u.Email)
	}
	if h.SignIns != nil {
		if err := h.SignIns.CreateFrom(r.Context(), r, u.ID, u.Email); err != nil {
			h.Log.Warn("record sign-in", zap.Error(err))
		}
	}

	webjson.Write(w, http.StatusOK, signInResponse{
		Token:     token,
		ExpiresIn: int(h.Sessions.TTL().Seconds()),
		User:      *u,
	})
}

// HandleMe returns the signed-in user's resolved profile.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	p, err := h.Resolver.Profile(r.Context(), u.ID)
	if err != nil {
		h.Log.Error("resolve profile", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, p)
}

// HandleMyServices lists the services covering the signed-in user, with
// optional term filtering and paging.
func (h *Handler) HandleMyServices(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	params, err := paging.Parse(r)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	planIDs, err := h.Resolver.PlanIDsFor(r.Context(), u)
	if err != nil {
		h.Log.Error("resolve plan ids", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	services, err := h.Plans.ServicesForPlans(r.Context(), planIDs)
	if err != nil {
		h.Log.Error("load services", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	page := planstore.FilterServices(services, normalize.QueryParam(query.Get(r, "term")), params)
	webjson.Write(w, http.StatusOK, page)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword replaces the signed-in user's password after
// verifying the current one. Outstanding session tokens stay valid until
// they expire; only the stored hash changes.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewPassword == "" {
		webjson.Error(w, http.StatusBadRequest, "new password is required")
		return
	}

	ok, err := h.Hasher.VerifyPassword(req.CurrentPassword, u.PasswordHash)
	if err != nil {
		h.Log.Error("verify password", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, signInFailedMsg)
		return
	}

	hash, err := h.Hasher.HashPassword(req.NewPassword)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.Users.SetPasswordHash(r.Context(), u.ID, hash); err != nil {
		h.Log.Error("set password hash", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	webjson.Write(w, http.StatusOK, map[string]string{"message": "password updated"})
}

type forgotRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword starts the reset flow. The response is the same
// whether or not the email names an account; the email is sent in the
// background so delivery time doesn't leak either.
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Limited per client IP only, so a stranger spamming this endpoint
	// can't lock the account's owner out of signing in.
	if h.Limiter != nil && !h.Limiter.Allow(signinstore.ClientIP(r), "") {
		webjson.Error(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		// fall through to the uniform response
	case err != nil:
		h.Log.Error("forgot-password lookup", zap.Error(err))
	default:
		token := credentials.NewResetToken()
		expires := time.Now().Add(h.ResetTTL)
		if err := h.Users.SetResetToken(r.Context(), u.ID, token, expires); err != nil {
			h.Log.Error("set reset token", zap.Error(err))
			break
		}
		email := mailer.BuildResetEmail(mailer.ResetEmailData{
			SiteName:  h.SiteName,
			ResetLink: h.BaseURL + "/reset/" + token,
			ExpiresIn: h.ResetTTL.String(),
		})
		email.To = u.Email
		go func() {
			if err := h.Sender.Send(email); err != nil {
				h.Log.Error("send reset email", zap.Error(err))
			}
		}()
	}

	webjson.Write(w, http.StatusOK, map[string]string{
		"message": "if the account exists, a reset email has been sent",
	})
}

// HandleVerifyResetToken reports whether a reset token is still redeemable,
// so the client can show the new-password form only for live tokens.
func (h *Handler) HandleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	u, err := h.Users.GetByResetToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			webjson.Error(w, http.StatusBadRequest, "invalid or expired token")
			return
		}
		h.Log.Error("verify reset token", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"email": u.Email})
}

type resetRequest struct {
	Password string `json:"password"`
}

// HandleResetPassword redeems a reset token with a new password. The
// redeem is a single conditional update, so the token works exactly once.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req resetRequest
	if err := webjson.Decode(r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		webjson.Error(w, http.StatusBadRequest, "password is required")
		return
	}

	hash, err := h.Hasher.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Users.RedeemResetToken(r.Context(), token, hash); err != nil {
		if errors.Is(err, credentials.ErrInvalidOrExpiredToken) {
			webjson.Error(w, http.StatusBadRequest, "invalid or expired token")
			return
		}
		h.Log.Error("redeem reset token", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	webjson.Write(w, http.StatusOK, map[string]string{"message": "password updated"})
}
