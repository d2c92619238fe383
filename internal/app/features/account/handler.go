// internal/app/features/account/handler.go
package account

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	groupstore "github.com/tagauto/tagauto/internal/app/store/groups"
	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	"github.com/tagauto/tagauto/internal/app/system/apperr"
	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/cascade"
	"github.com/tagauto/tagauto/internal/app/system/events"
	"github.com/tagauto/tagauto/internal/app/system/httpjson"
	"github.com/tagauto/tagauto/internal/app/system/metrics"
	"github.com/tagauto/tagauto/internal/app/system/timeouts"
)

// Handler serves account deletion.
type Handler struct {
	Users   *userstore.Store
	Groups  *groupstore.Store
	Cascade *cascade.Service
	Tokens  *auth.Manager
	Events  *events.Broadcaster
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, groups *groupstore.Store, casc *cascade.Service, tokens *auth.Manager, ev *events.Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Groups: groups, Cascade: casc, Tokens: tokens, Events: ev, Log: logger}
}

// ServeDelete handles DELETE /account. The caller's token must have been
// minted within the reauth window; a stale token is refused before any
// deletion is attempted, and the client is expected to reauthenticate and
// retry. Groups where the caller is the last member are deleted with their
// cars; in the rest the caller just leaves.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	if !h.Tokens.IsFresh(p) {
		metrics.WorkflowOutcomes.WithLabelValues("account_delete", "stale_token").Inc()
		httpjson.WriteError(w, h.Log, apperr.AuthRequired("recent authentication required, sign in again"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	user, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "user"))
		return
	}

	// Snapshot group memberships before the cascade so we can tell the
	// remaining members afterwards.
	affected := append([]string{}, user.Groups...)

	if err := h.Cascade.DeleteAccount(ctx, user); err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("account_delete", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("account_delete", "ok").Inc()

	for _, groupID := range affected {
		h.notifyGroup(ctx, groupID, user.ID)
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// notifyGroup tells a group's remaining members the user is gone. Groups
// the cascade deleted outright no longer resolve and need no event.
func (h *Handler) notifyGroup(ctx context.Context, groupID, userID string) {
	group, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		return
	}
	h.Events.GroupChanged(events.TypeMemberRemoved, group.Members, group.ID, map[string]any{
		"userId": userID,
	})
}
