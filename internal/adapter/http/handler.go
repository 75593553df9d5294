package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"gridwar/internal/app/action"
	"gridwar/internal/app/observe"
	"gridwar/internal/app/ports"
	"gridwar/internal/app/replay"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	ActionUC  action.UseCase
	ObserveUC observe.UseCase
	ReplayUC  replay.UseCase
	KPI       kpiSnapshotProvider
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	agent := s.Group("/api/agent")
	agent.POST("/action", h.action)
	agent.POST("/observe", h.observe)
	agent.GET("/replay", h.replay)
	agent.GET("/replay/export", h.replayExport)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) action(c context.Context, ctx *app.RequestContext) {
	body := ctx.Request.Body()
	if err := validateActionBody(body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_action_request", err.Error())
		return
	}

	var req action.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.ActionUC.Execute(c, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) observe(c context.Context, ctx *app.RequestContext) {
	var req observe.Request
	if err := decodeJSON(ctx, &req); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.ObserveUC.Execute(c, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		GameID:  string(ctx.Query("game_id")),
		AgentID: string(ctx.Query("agent_id")),
		Limit:   limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replayExport(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	blob, err := h.ReplayUC.Export(c, replay.Request{
		GameID:  string(ctx.Query("game_id")),
		AgentID: string(ctx.Query("agent_id")),
		Limit:   limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="replay.json.zst"`)
	ctx.Data(consts.StatusOK, "application/zstd", blob)
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, action.ErrInvalidRequest),
		errors.Is(err, observe.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
