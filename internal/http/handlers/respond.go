package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/domain/workspace"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/geocoder89/taskhub/internal/utils"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if s := ctx.GetString(middlewares.CtxRequestID); s != "" {
		return s
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondValidation(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "validation_error", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondForbidden(ctx *gin.Context) {
	RespondError(ctx, http.StatusForbidden, "forbidden", "You do not have permission to perform this action.", nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// domainError maps a service sentinel to its HTTP shape. Order matters:
// wrapped sentinels are listed before the errors they wrap.
type domainError struct {
	target  error
	status  int
	code    string
	message string
}

var domainErrors = []domainError{
	{service.ErrOwnerRequired, http.StatusForbidden, "forbidden", "Only the workspace owner can perform this action."},
	{workspace.ErrForbidden, http.StatusForbidden, "forbidden", "You do not have permission to perform this action."},

	{service.ErrPreviousBoardNotFound, http.StatusNotFound, "not_found", "Previous Board not found"},
	{service.ErrNewBoardNotFound, http.StatusNotFound, "not_found", "New Board not found"},
	{board.ErrNotFound, http.StatusNotFound, "not_found", "Board not found"},
	{task.ErrNotFound, http.StatusNotFound, "not_found", "Task not found"},
	{workspace.ErrNotFound, http.StatusNotFound, "not_found", "Workspace not found"},
	{service.ErrAssigneeNotFound, http.StatusNotFound, "not_found", "Assigned user not found"},
	{service.ErrMemberUserNotFound, http.StatusNotFound, "not_found", "User with this email does not exist"},
	{service.ErrMemberNotInWorkspace, http.StatusNotFound, "not_found", "User not found in workspace."},
	{user.ErrNotFound, http.StatusNotFound, "not_found", "User not found"},

	{workspace.ErrAlreadyMember, http.StatusBadRequest, "conflict", "User is already a member of this workspace."},
	{workspace.ErrOwnerExists, http.StatusBadRequest, "conflict", "Workspace already has an owner."},
	{user.ErrUsernameTaken, http.StatusBadRequest, "conflict", "A user with that username already exists."},
	{user.ErrEmailTaken, http.StatusBadRequest, "conflict", "A user with that email already exists."},
	{workspace.ErrOwnerSelfRemoval, http.StatusBadRequest, "invalid_operation", "Owner cannot remove themselves."},

	{task.ErrInvalidStatus, http.StatusBadRequest, "validation_error", "Invalid status"},
	{task.ErrInvalidAssignee, http.StatusBadRequest, "validation_error", task.ErrInvalidAssignee.Error()},
	{workspace.ErrInvalidRole, http.StatusBadRequest, "validation_error", "Invalid role"},
	{utils.ErrInvalidCursor, http.StatusBadRequest, "validation_error", "Invalid cursor"},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password"},
	{auth.ErrTokenMalformed, http.StatusBadRequest, "auth_error", "Invalid token"},
}

// RespondDomainError writes the response for err. Unknown errors are logged
// and reported as 500 with fallback as message.
func RespondDomainError(ctx *gin.Context, prom *observability.Prom, err error, fallback string) {
	for _, d := range domainErrors {
		if errors.Is(err, d.target) {
			if d.status == http.StatusForbidden && prom != nil {
				prom.AccessDenials.WithLabelValues(routeOf(ctx)).Inc()
			}
			RespondError(ctx, d.status, d.code, d.message, nil)
			return
		}
	}

	slog.Default().ErrorContext(ctx.Request.Context(), fallback,
		"err", err,
		"request_id", requestIDFrom(ctx),
	)
	RespondInternal(ctx, fallback)
}

func routeOf(ctx *gin.Context) string {
	if r := ctx.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}
