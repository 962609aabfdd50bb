package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/board"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type BoardManager interface {
	Get(ctx context.Context, actorID, boardID int64) (service.BoardView, error)
	Create(ctx context.Context, actorID int64, req board.CreateRequest) (service.BoardView, error)
	Update(ctx context.Context, actorID, boardID int64, req board.UpdateRequest) (service.BoardView, error)
	Delete(ctx context.Context, actorID, boardID int64) error
}

type BoardsHandler struct {
	boards BoardManager
	prom   *observability.Prom
}

func NewBoardsHandler(boards BoardManager, prom *observability.Prom) *BoardsHandler {
	return &BoardsHandler{boards: boards, prom: prom}
}

func (h *BoardsHandler) Get(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Board")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	b, err := h.boards.Get(cctx, userID, id)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not fetch board")
		return
	}

	RespondJSONWithETag(ctx, b)
}

func (h *BoardsHandler) Create(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}

	var req board.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	b, err := h.boards.Create(cctx, userID, req)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not create board")
		return
	}

	ctx.JSON(http.StatusCreated, b)
}

func (h *BoardsHandler) Update(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Board")
	if !ok {
		return
	}

	var req board.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	b, err := h.boards.Update(cctx, userID, id, req)
	if err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not update board")
		return
	}

	ctx.JSON(http.StatusOK, b)
}

func (h *BoardsHandler) Delete(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Board")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx)
	defer cancel()

	if err := h.boards.Delete(cctx, userID, id); err != nil {
		RespondDomainError(ctx, h.prom, err, "Could not delete board")
		return
	}

	ctx.Status(http.StatusNoContent)
}
