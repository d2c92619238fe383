// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	groupstore "github.com/tagauto/tagauto/internal/app/store/groups"
	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	"github.com/tagauto/tagauto/internal/app/system/apperr"
	"github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/cascade"
	"github.com/tagauto/tagauto/internal/app/system/events"
	"github.com/tagauto/tagauto/internal/app/system/httpjson"
	"github.com/tagauto/tagauto/internal/app/system/metrics"
	"github.com/tagauto/tagauto/internal/app/system/sanitize"
	"github.com/tagauto/tagauto/internal/app/system/timeouts"
	"github.com/tagauto/tagauto/internal/domain/models"
)

// Handler serves group membership: creating groups, listing them, leaving,
// and deleting.
type Handler struct {
	Users   *userstore.Store
	Groups  *groupstore.Store
	Cascade *cascade.Service
	Events  *events.Broadcaster
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, groups *groupstore.Store, casc *cascade.Service, ev *events.Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Groups: groups, Cascade: casc, Events: ev, Log: logger}
}

// memberSummary is the member detail embedded in group responses so clients
// can render member lists without extra requests.
type memberSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type groupResponse struct {
	models.Group
	MemberDetails []memberSummary `json:"memberDetails"`
}

type createRequest struct {
	Name string `json:"name"`
}

// ServeCreate handles POST /groups. The creator becomes the group's first
// member.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	req.Name = sanitize.Text(req.Name)
	if req.Name == "" {
		httpjson.WriteError(w, h.Log, apperr.Validation("group name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.Cascade.CreateGroup(ctx, req.Name, p.UserID)
	if err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("group_create", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("group_create", "ok").Inc()

	resp, err := h.withMembers(ctx, group)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	httpjson.Write(w, http.StatusCreated, resp)
}

// ServeList handles GET /groups: every group the caller belongs to, with
// member details.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.FromMongo(err, "user"))
		return
	}

	groups, err := h.Groups.GetManyByIDs(ctx, user.Groups)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}

	out := []groupResponse{}
	for _, g := range groups {
		resp, err := h.withMembers(ctx, g)
		if err != nil {
			httpjson.WriteError(w, h.Log, apperr.Remote(err))
			return
		}
		out = append(out, resp)
	}
	httpjson.Write(w, http.StatusOK, out)
}

// ServeGet handles GET /groups/{groupID}. Only members can see a group;
// everyone else gets the same not-found as a group that doesn't exist.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	group, err := h.loadForMember(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	resp, err := h.withMembers(ctx, group)
	if err != nil {
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// ServeDelete handles DELETE /groups/{groupID}: the group, its cars, and
// its pending invitations all go together.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	group, err := h.loadForMember(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	if err := h.Cascade.DeleteGroup(ctx, group); err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("group_delete", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("group_delete", "ok").Inc()

	h.Events.GroupChanged(events.TypeGroupDeleted, group.Members, group.ID, map[string]any{
		"groupName": group.Name,
	})
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ServeRemoveMember handles DELETE /groups/{groupID}/members/{userID}.
// Members can only remove themselves (leave); kicking others is not a thing.
// The last member leaving takes the group and its cars down with them.
func (h *Handler) ServeRemoveMember(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	group, err := h.loadForMember(ctx, r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID != p.UserID {
		httpjson.WriteError(w, h.Log, apperr.Validation("members can only remove themselves"))
		return
	}

	wasLast := len(group.Members) == 1
	if err := h.Cascade.RemoveMember(ctx, group, userID); err != nil {
		metrics.WorkflowOutcomes.WithLabelValues("group_leave", "error").Inc()
		httpjson.WriteError(w, h.Log, apperr.Remote(err))
		return
	}
	metrics.WorkflowOutcomes.WithLabelValues("group_leave", "ok").Inc()

	if wasLast {
		h.Events.GroupChanged(events.TypeGroupDeleted, group.Members, group.ID, map[string]any{
			"groupName": group.Name,
		})
	} else {
		h.Events.GroupChanged(events.TypeMemberRemoved, group.Members, group.ID, map[string]any{
			"userId": userID,
		})
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "removed"})
}

// loadForMember resolves {groupID} and verifies the caller's membership.
func (h *Handler) loadForMember(ctx context.Context, r *http.Request) (models.Group, error) {
	p, _ := auth.CurrentUser(r)

	groupID := chi.URLParam(r, "groupID")
	group, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		return models.Group{}, apperr.FromMongo(err, "group")
	}
	if !group.HasMember(p.UserID) {
		return models.Group{}, apperr.NotFound("group")
	}
	return group, nil
}

func (h *Handler) withMembers(ctx context.Context, g models.Group) (groupResponse, error) {
	users, err := h.Users.GetManyByIDs(ctx, g.Members)
	if err != nil {
		return groupResponse{}, err
	}
	details := make([]memberSummary, 0, len(users))
	for _, u := range users {
		details = append(details, memberSummary{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		})
	}
	return groupResponse{Group: g, MemberDetails: details}, nil
}
