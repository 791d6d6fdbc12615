package http

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	channelerrors "github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/errors"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/usecase/business"
)

// Handlers exposes channel management over HTTP
type Handlers struct {
	uc     *business.UseCase
	logger zerolog.Logger
}

// NewHandlers creates channel management HTTP handlers
func NewHandlers(uc *business.UseCase, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		logger: logger.With().Str("component", "channel_handlers").Logger(),
	}
}

type addChannelRequest struct {
	Username string `json:"username"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// AddChannel handles POST /api/v1/channels
func (h *Handlers) AddChannel(ctx *fasthttp.RequestCtx) {
	var req addChannelRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.writeError(ctx, fasthttp.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.uc.AddChannel(requestContext(ctx), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, channelerrors.ErrInvalidUsername):
			h.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		case errors.Is(err, channelerrors.ErrChannelAlreadyExists):
			h.writeError(ctx, fasthttp.StatusConflict, err.Error())
		case errors.Is(err, channelerrors.ErrChannelNotFound):
			h.writeError(ctx, fasthttp.StatusNotFound, "channel not found or inaccessible")
		case errors.Is(err, domain.ErrNotConnected):
			h.writeError(ctx, fasthttp.StatusServiceUnavailable, "source connection unavailable")
		default:
			h.logger.Error().Err(err).Str("username", req.Username).Msg("Failed to add channel")
			h.writeError(ctx, fasthttp.StatusInternalServerError, "failed to add channel")
		}
		return
	}

	h.writeJSON(ctx, fasthttp.StatusCreated, channel)
}

// ListChannels handles GET /api/v1/channels
func (h *Handlers) ListChannels(ctx *fasthttp.RequestCtx) {
	channels, err := h.uc.ListActive(requestContext(ctx))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list channels")
		h.writeError(ctx, fasthttp.StatusInternalServerError, "failed to list channels")
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, channels)
}

// RefreshChannel handles POST /api/v1/channels/{id}/refresh
func (h *Handlers) RefreshChannel(ctx *fasthttp.RequestCtx) {
	id, ok := h.channelID(ctx)
	if !ok {
		return
	}

	channel, err := h.uc.RefreshChannel(requestContext(ctx), id)
	if err != nil {
		h.writeUseCaseError(ctx, id, err, "Failed to refresh channel")
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, channel)
}

// DeactivateChannel handles POST /api/v1/channels/{id}/deactivate
func (h *Handlers) DeactivateChannel(ctx *fasthttp.RequestCtx) {
	id, ok := h.channelID(ctx)
	if !ok {
		return
	}

	if err := h.uc.DeactivateChannel(requestContext(ctx), id); err != nil {
		h.writeUseCaseError(ctx, id, err, "Failed to deactivate channel")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

// ResetCursor handles POST /api/v1/channels/{id}/reset-cursor
func (h *Handlers) ResetCursor(ctx *fasthttp.RequestCtx) {
	id, ok := h.channelID(ctx)
	if !ok {
		return
	}

	if err := h.uc.ResetCursor(requestContext(ctx), id); err != nil {
		h.writeUseCaseError(ctx, id, err, "Failed to reset cursor")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

// RemoveChannel handles DELETE /api/v1/channels/{id}
func (h *Handlers) RemoveChannel(ctx *fasthttp.RequestCtx) {
	id, ok := h.channelID(ctx)
	if !ok {
		return
	}

	if err := h.uc.RemoveChannel(requestContext(ctx), id); err != nil {
		h.writeUseCaseError(ctx, id, err, "Failed to remove channel")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (h *Handlers) channelID(ctx *fasthttp.RequestCtx) (uint, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		h.writeError(ctx, fasthttp.StatusBadRequest, "invalid channel id")
		return 0, false
	}
	return uint(id), true
}

func (h *Handlers) writeUseCaseError(ctx *fasthttp.RequestCtx, id uint, err error, msg string) {
	if errors.Is(err, channelerrors.ErrChannelNotFound) {
		h.writeError(ctx, fasthttp.StatusNotFound, "channel not found")
		return
	}
	h.logger.Error().Err(err).Uint("channel_id", id).Msg(msg)
	h.writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
}

func (h *Handlers) writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h *Handlers) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	h.writeJSON(ctx, status, errorResponse{Error: message})
}

// requestContext extracts the request context for downstream calls
func requestContext(ctx *fasthttp.RequestCtx) context.Context {
	return ctx
}
