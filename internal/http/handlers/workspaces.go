package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/geocoder89/taskhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type WorkspaceManager interface {
	ListAll(ctx context.Context, filter workspace.ListFilter) (service.WorkspacePage, error)
	ListMine(ctx context.Context, userID int64) ([]workspace.WithRole, error)
	Get(ctx context.Context, actorID, workspaceID int64) (workspace.WithRole, error)
	Create(ctx context.Context, actorID int64, req workspace.CreateRequest) (workspace.WithRole, error)
	Update(ctx context.Context, actorID, workspaceID int64, req workspace.UpdateRequest) (workspace.Workspace, error)
	Delete(ctx context.Context, actorID, workspaceID int64) error
	Boards(ctx context.Context, actorID, workspaceID int64) ([]service.BoardView, error)
}

type MemberManager interface {
	ListMembers(ctx context.Context, actorID, workspaceID int64) ([]workspace.Member, error)
	AddMember(ctx context.Context, actorID, workspaceID int64, email string, role workspace.Role) (user.Summary, error)
	RemoveMember(ctx context.Context, actorID, workspaceID, targetUserID int64) error
}

type WorkspacesHandler struct {
	workspaces WorkspaceManager
	members    MemberManager
	prom       *observability.Prom
}

func NewWorkspacesHandler(workspaces WorkspaceManager, members MemberManager, prom *observability.Prom) *WorkspacesHandler {
	return &WorkspacesHandler{workspaces: workspaces, members: members, prom: prom}
}

// List pages through every workspace. Pass the returned next_cursor back as
// ?cursor= to continue.
func (h *WorkspacesHandler) List(ctx *gin.Context) {
	filter := workspace.ListFilter{Limit: service.DefaultPageSize}

	if raw := ctx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > service.MaxPageSize {
			RespondValidation(ctx, "Invalid query parameters", gin.H{"fields": []FieldError{{
				Field:   "limit",
				Rule:    "range",
				Message: "must be between 1 and " + strconv.Itoa(service.MaxPageSize),
			}}})
			return
		}
		filter.Limit = limit
	}

	if raw := ctx.Query("cursor"); raw != "" {
		cur, err := utils.DecodeWorkspaceCursor(raw)
		if err != nil {
			RespondDomainError(ctx, h.prom, err, "Could not list workspaces")
			return
		}
		filter.AfterCreatedAt = cur.CreatedAt
		filter.AfterID = cur.ID
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	page, err := h.workspaces.ListAll(cctx, filter)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not list workspaces")
		return
	}

	var next *string
	if page.HasMore && len(page.Items) > 0 {
		last := page.Items[len(page.Items)-1]
		c, err := utils.EncodeWorkspaceCursor(last.CreatedAt, last.ID)
		if err != nil {
			RespondInternal(ctx, "Could not list workspaces")
			return
		}
		next = &c
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":       page.Items,
		"count":       len(page.Items),
		"limit":       filter.Limit,
		"has_more":    page.HasMore,
		"next_cursor": next,
	})
}

func (h *WorkspacesHandler) ListMine(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	items, err := h.workspaces.ListMine(cctx, userID)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not list workspaces")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *WorkspacesHandler) Get(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Workspace")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	ws, err := h.workspaces.Get(cctx, userID, id)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not fetch workspace")
		return
	}

	RespondJSONWithETag(ctx, ws)
}

func (h *WorkspacesHandler) Create(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}

	var req workspace.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	ws, err := h.workspaces.Create(cctx, userID, req)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not create workspace")
		return
	}

	ctx.JSON(http.StatusCreated, ws)
}

func (h *WorkspacesHandler) Update(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Workspace")
	if !ok {
		return
	}

	var req workspace.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	ws, err := h.workspaces.Update(cctx, userID, id, req)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not update workspace")
		return
	}

	ctx.JSON(http.StatusOK, ws)
}

func (h *WorkspacesHandler) Delete(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Workspace")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.workspaces.Delete(cctx, userID, id); err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not delete workspace")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *WorkspacesHandler) Boards(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Workspace")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	boards, err := h.workspaces.Boards(cctx, userID, id)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not list boards")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": boards,
		"count": len(boards),
	})
}

func (h *WorkspacesHandler) Members(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Workspace")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	members, err := h.members.ListMembers(cctx, userID, id)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not list members")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": members,
		"count": len(members),
	})
}

func (h *WorkspacesHandler) AddMember(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Workspace")
	if !ok {
		return
	}

	var req workspace.AddMemberRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	added, err := h.members.AddMember(cctx, userID, id, req.Email, req.Role)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not add member")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User added to workspace successfully.",
		"user":    added,
		"role":    req.Role,
	})
}

func (h *WorkspacesHandler) RemoveMember(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Workspace")
	if !ok {
		return
	}
	target, ok := pathID(ctx, "userId", "User")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.members.RemoveMember(cctx, userID, id, target); err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not remove member")
		return
	}

	ctx.Status(http.StatusNoContent)
}
