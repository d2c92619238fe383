// internal/app/features/invitations/handler.go
package invitations

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	groupstore "github.com/tagauto/tagauto/internal/app/store/groups"
	invitationstore "github.com/tagauto/tagauto/internal/app/store/invitations"
	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	"github.com/tagauto/tagauto/internal/app/system/apperr"
	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/cascade"
	"github.com/tagauto/tagauto/internal/app/system/events"
	"github.com/tagauto/tagauto/internal/app/system/httpjson"
	"github.com/tagauto/tagauto/internal/app/system/metrics"
	"github.com/tagauto/tagauto/internal/app/system/push"
	"github.com/tagauto/tagauto/internal/app/system/timeouts"
	"github.com/tagauto/tagauto/internal/domain/models"
)

// Handler serves the invitation lifecycle: a member invites an email
// address, the invitee sees it in their inbox, and accepting converts it
// into a membership.
type Handler struct {
	Users       *userstore.Store
	Groups      *groupstore.Store
	Invitations *invitationstore.Store
	Cascade     *cascade.Service
	Events      *events.Broadcaster
	Push        *push.Sender
	Log         *zap.Logger
}

func NewHandler(users *userstore.Store, groups *groupstore.Store, invs *invitationstore.Store, casc *cascade.Service, ev *events.Broadcaster, sender *push.Sender, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       users,
		Groups:      groups,
		Invitations: invs,
		Cascade:     casc,
		Events:      ev,
		Push:        sender,
		Log:         logger,
	}
}

type createRequest struct {
	Email string `json:"email"`
}

// ServeCreate handles POST /groups/{groupID}/invitations. Only members can
// invite. The invitee does not need an account yet; the invitation waits in
// their inbox keyed by email.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		httpjson.WriteError(w, h.Log, apperr.Validation("a valid email is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groupID := chi.URLParam(r, "groupID")
	group, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "group"))
		return
	}
	if !group.HasMember(p.UserID) {
		httpjson.WriteError(w, h.Log, apperr.NotFound("group"))
		return
	}

	// Already a member: the invitee's account exists and is in the group.
	if invitee, err := h.Users.GetByEmail(ctx, email); err == nil && group.HasMember(invitee.ID) {
		httpjson.WriteError(w, h.Log, apperr.Validation("%s is already a member", email))
		return
	}

	exists, err := h.Invitations.ExistsForGroupAndEmail(ctx, group.ID, email)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	if exists {
		httpjson.WriteError(w, h.Log, apperr.Validation("%s already has a pending invitation", email))
		return
	}

	inv, err := h.Invitations.Create(ctx, models.Invitation{
		Email:     email,
		GroupID:   group.ID,
		GroupName: group.Name,
	})
	if err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("invitation_create", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("invitation_create", "ok").Inc()

	h.notifyInvitee(ctx, inv, p.FullName)
	httpjson.Write(w, http.StatusCreated, inv)
}

// notifyInvitee pushes and publishes to the invitee if they already have an
// account. Invitees without one simply find the invitation after signing up.
func (h *Handler) notifyInvitee(ctx context.Context, inv models.Invitation, inviterName string) {
	invitee, err := h.Users.GetByEmail(ctx, inv.Email)
	if err != nil {
		return
	}
	h.Events.Publish(events.TypeInvitationCreated, []string{invitee.ID}, map[string]any{
		"invitationId": inv.ID,
		"groupId":      inv.GroupID,
		"groupName":    inv.GroupName,
	})
	h.Push.Send(ctx, invitee.FCMToken,
		"Group invitation",
		inviterName+" invited you to "+inv.GroupName,
		map[string]string{"invitationId": inv.ID, "groupId": inv.GroupID})
}

// ServeList handles GET /invitations: the caller's inbox, keyed by the
// email on their token.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	invs, err := h.Invitations.ListByEmail(ctx, p.Email)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	httpjson.Write(w, http.StatusOK, invs)
}

// ServeAccept handles POST /invitations/{invitationID}/accept: join the
// group, then burn the invitation. If the group vanished while the
// invitation sat in the inbox, the invitation is burned and the caller gets
// a not-found.
func (h *Handler) ServeAccept(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	inv, err := h.loadForInvitee(ctx, r, p)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	group, err := h.Groups.GetByID(ctx, inv.GroupID)
	if err == mongo.ErrNoDocuments {
		_, _ = h.Invitations.Delete(ctx, inv.ID)
		metrics.WorkflowOutcomes.WithLabelValues("invitation_accept", "stale").Inc()
		httpjson.WriteError(w, h.Log, apperr.NotFound("group"))
		return
	}
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}

	if !group.HasMember(p.UserID) {
		if err := h.Cascade.AddMember(ctx, group.ID, p.UserID); err != nil {
			metrics.WorkflowOutcomes.WithLabelValues("invitation_accept", "error").Inc()
			httpjson.WriteError(w, h.Log, apperr.Remote(err))
			return
		}
	}
	if _, err := h.Invitations.Delete(ctx, inv.ID); err != nil {
		h.Log.Warn("failed to delete accepted invitation",
			zap.String("invitation_id", inv.ID), zap.Error(err))
	}
	metrics.WorkflowOutcomes.WithLabelValues("invitation_accept", "ok").Inc()

	h.Events.GroupChanged(events.TypeMemberAdded, group.Members, group.ID, map[string]any{
		"userId":   p.UserID,
		"fullName": p.FullName,
	})

	group, err = h.Groups.GetByID(ctx, group.ID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "group"))
		return
	}
	httpjson.Write(w, http.StatusOK, group)
}

// ServeDecline handles DELETE /invitations/{invitationID}. Declining just
// burns the invitation; nothing else changes.
func (h *Handler) ServeDecline(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.loadForInvitee(ctx, r, p)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if _, err := h.Invitations.Delete(ctx, inv.ID); err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("invitation_decline", "ok").Inc()
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "declined"})
}

// loadForInvitee resolves {invitationID} and verifies it is addressed to
// the caller. Anyone else gets the same not-found as a missing invitation.
func (h *Handler) loadForInvitee(ctx context.Context, r *http.Request, p auth.Principal) (models.Invitation, error) {
	id := chi.URLParam(r, "invitationID")
	inv, err := h.Invitations.GetByID(ctx, id)
	if err != nil {
		return models.Invitation{}, apperr.FromMongo(err, "invitation")
	}
	if inv.Email != strings.ToLower(p.Email) {
		return models.Invitation{}, apperr.NotFound("invitation")
	}
	return inv, nil
}
