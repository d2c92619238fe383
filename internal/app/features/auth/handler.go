// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	sysauth "github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/apperr"
	"github.com/tagauto/tagauto/internal/app/system/httpjson"
	"github.com/tagauto/tagauto/internal/app/system/metrics"
	"github.com/tagauto/tagauto/internal/app/system/sanitize"
	"github.com/tagauto/tagauto/internal/app/system/timeouts"
	"github.com/tagauto/tagauto/internal/domain/models"
)

// Handler serves registration and login. Both return a bearer token; the
// client keeps no other session state.
type Handler struct {
	Users  *userstore.Store
	Tokens *sysauth.Manager
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, tokens *sysauth.Manager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Tokens: tokens, Log: logger}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// ServeRegister handles POST /auth/register.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = sanitize.Text(req.FirstName)
	req.LastName = sanitize.Text(req.LastName)

	if !strings.Contains(req.Email, "@") {
		httpjson.WriteError(w, h.Log, apperr.Validation("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		httpjson.WriteError(w, h.Log, apperr.Validation("password must be at least 8 characters"))
		return
	}
	if req.FirstName == "" {
		httpjson.WriteError(w, h.Log, apperr.Validation("first name is required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if err == userstore.ErrDuplicateEmail {
		metrics.WorkflowOutcomes.WithLabelValues("register", "duplicate").Inc()
		httpjson.WriteError(w, h.Log, apperr.Validation("an account with this email already exists"))
		return
	}
	if err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("register", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}

	h.issue(w, user, "register")
}

// ServeLogin handles POST /auth/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, "login")
}

// ServeReauth handles POST /auth/reauth. It is the same credential check as
// login; the client calls it right before a sensitive operation to obtain a
// freshly minted token.
func (h *Handler) ServeReauth(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, "reauth")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, workflow string) {
	var req credentialsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err == mongo.ErrNoDocuments {
		// Burn a comparison anyway so a missing account costs the same
		// time as a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		h.deny(w, workflow)
		return
	}
	if err != nil {
		metrics.WorkflowOutcomes.WithLabelValues(workflow, "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		h.deny(w, workflow)
		return
	}

	h.issue(w, user, workflow)
}

func (h *Handler) issue(w http.ResponseWriter, user models.User, workflow string) {
	token, err := h.Tokens.Issue(user.ID, user.Email, user.FullName())
	if err != nil {
		metrics.WorkflowOutcomes.WithLabelValues(workflow, "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues(workflow, "ok").Inc()
	h.Log.Info("token issued",
		zap.String("workflow", workflow),
		zap.String("user_id", user.ID))
	httpjson.Write(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) deny(w http.ResponseWriter, workflow string) {
	metrics.WorkflowOutcomes.WithLabelValues(workflow, "denied").Inc()
	httpjson.WriteError(w, h.Log, apperr.AuthRequired("invalid email or password"))
}

// dummyHash is a bcrypt hash of an unguessable throwaway value, used to
// equalize response timing when the account does not exist.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tagauto-timing-pad"), bcrypt.DefaultCost)
