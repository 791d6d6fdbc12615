package http

import (
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/usecase/business"
)

// Handlers exposes collection operations over HTTP
type Handlers struct {
	uc         *business.UseCase
	healthRepo deps.HealthLogRepository
	logger     zerolog.Logger
}

// NewHandlers creates collection HTTP handlers
func NewHandlers(uc *business.UseCase, healthRepo deps.HealthLogRepository, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:         uc,
		healthRepo: healthRepo,
		logger:     logger.With().Str("component", "collection_handlers").Logger(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// CollectChannel handles POST /api/v1/channels/{id}/collect. It runs a
// one-off collection for a single channel outside the schedule.
func (h *Handlers) CollectChannel(ctx *fasthttp.RequestCtx) {
	id, ok := h.channelID(ctx)
	if !ok {
		return
	}

	report := h.uc.CollectChannel(ctx, id)
	h.writeJSON(ctx, fasthttp.StatusOK, report)
}

// ChannelHealth handles GET /api/v1/channels/{id}/health. It returns
// the latest health log row, or 404 when the channel was never attempted.
func (h *Handlers) ChannelHealth(ctx *fasthttp.RequestCtx) {
	id, ok := h.channelID(ctx)
	if !ok {
		return
	}

	latest, err := h.healthRepo.Latest(ctx, id)
	if err != nil {
		h.logger.Error().Err(err).Uint("channel_id", id).Msg("Failed to load channel health")
		h.writeError(ctx, fasthttp.StatusInternalServerError, "failed to load channel health")
		return
	}
	if latest == nil {
		h.writeError(ctx, fasthttp.StatusNotFound, "no health records for channel")
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, latest)
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
