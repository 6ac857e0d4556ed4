// Package handler exposes the settlement engine over HTTP.
package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tbcolby/settlement-game/internal/catalog"
	"github.com/tbcolby/settlement-game/internal/document"
	"github.com/tbcolby/settlement-game/internal/engine"
	"github.com/tbcolby/settlement-game/internal/equity"
	"github.com/tbcolby/settlement-game/internal/model"
	"github.com/tbcolby/settlement-game/internal/negotiation"
	"github.com/tbcolby/settlement-game/internal/storage"
	"github.com/tbcolby/settlement-game/internal/support"
)

const (
	contentTypeJSON = "application/json"
	requestTimeout  = 10 * time.Second
)

type Handler struct {
	machine *negotiation.Machine
	engine  *engine.Engine
	store   *storage.Store
	log     *zap.Logger
	version string
	now     func() time.Time
}

func New(machine *negotiation.Machine, store *storage.Store, log *zap.Logger, version string) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		machine: machine,
		engine:  engine.New(machine, version),
		store:   store,
		log:     log,
		version: version,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewServer wraps h in a fasthttp server.
func NewServer(h *Handler) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:      h.Handle,
		Name:         "settlement-game",
		ReadTimeout:  requestTimeout,
		WriteTimeout: requestTimeout,
	}
}

// Handle routes a request by method and path.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	segments := strings.Split(strings.Trim(string(ctx.Path()), "/"), "/")
	method := string(ctx.Method())

	switch {
	case segments[0] == "cards" && len(segments) == 1 && method == fasthttp.MethodGet:
		h.listCards(ctx)
	case segments[0] == "cards" && len(segments) == 2 && method == fasthttp.MethodGet:
		h.getCard(ctx, segments[1])
	case segments[0] == "child-support" && len(segments) == 1 && method == fasthttp.MethodPost:
		h.childSupport(ctx)
	case segments[0] == "analyze" && len(segments) == 1 && method == fasthttp.MethodPost:
		h.analyze(ctx)
	case segments[0] == "documents" && len(segments) == 1 && method == fasthttp.MethodPost:
		h.renderDocument(ctx)
	case segments[0] == "documents" && len(segments) == 2 && segments[1] == "summary" && method == fasthttp.MethodPost:
		h.renderSummary(ctx)
	case segments[0] == "replay" && len(segments) == 1 && method == fasthttp.MethodPost:
		h.replay(ctx)
	case segments[0] == "sessions":
		h.routeSessions(ctx, method, segments[1:])
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (h *Handler) routeSessions(ctx *fasthttp.RequestCtx, method string, rest []string) {
	switch {
	case len(rest) == 0 && method == fasthttp.MethodPost:
		h.createSession(ctx)
	case len(rest) == 1 && method == fasthttp.MethodGet:
		h.getSession(ctx, rest[0])
	case len(rest) == 1 && method == fasthttp.MethodDelete:
		h.deleteSession(ctx, rest[0])
	case len(rest) == 2 && rest[1] == "actions" && method == fasthttp.MethodPost:
		h.applyAction(ctx, rest[0])
	case len(rest) == 2 && rest[1] == "equity" && method == fasthttp.MethodGet:
		h.sessionEquity(ctx, rest[0])
	case len(rest) == 2 && rest[1] == "finalize" && method == fasthttp.MethodPost:
		h.finalize(ctx, rest[0])
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

func (h *Handler) listCards(ctx *fasthttp.RequestCtx) {
	cards := h.machine.Catalog().All()
	if category := string(ctx.QueryArgs().Peek("category")); category != "" {
		if !model.Category(category).Valid() {
			writeError(ctx, fasthttp.StatusBadRequest, "Unknown category: "+category)
			return
		}
		cards = h.machine.Catalog().ByCategory(model.Category(category))
	}
	writeJSON(ctx, fasthttp.StatusOK, cards)
}

func (h *Handler) getCard(ctx *fasthttp.RequestCtx, id string) {
	card, err := h.machine.Catalog().Lookup(id)
	if err != nil {
		writeError(ctx, fasthttp.StatusNotFound, "Card not found")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, card)
}

func (h *Handler) childSupport(ctx *fasthttp.RequestCtx) {
	var req model.ChildSupportRequest
	if !decode(ctx, &req) {
		return
	}
	if req.PayorIncome < 0 || req.PayeeIncome < 0 || req.NumberOfChildren < 0 ||
		req.PlacementPercentage < 0 || req.PlacementPercentage > 100 {
		writeError(ctx, fasthttp.StatusBadRequest, "Incomes and children must be non-negative and placement between 0 and 100")
		return
	}
	calc := support.Calculate(req.PayorIncome, req.PayeeIncome, req.NumberOfChildren, req.PlacementPercentage,
		support.WithHealthInsurance(req.HealthInsuranceCost),
		support.WithChildcare(req.ChildcareCost))
	writeJSON(ctx, fasthttp.StatusOK, calc)
}

func (h *Handler) analyze(ctx *fasthttp.RequestCtx) {
	var state model.SettlementState
	if !decode(ctx, &state) {
		return
	}
	analysis := equity.Analyze(state)
	writeJSON(ctx, fasthttp.StatusOK, model.AnalyzeResponse{
		Analysis:     analysis,
		ObligationsA: equity.MonthlyObligations(state.PartyA),
		ObligationsB: equity.MonthlyObligations(state.PartyB),
		Summary:      equity.Summary(state, analysis),
	})
}

func (h *Handler) renderDocument(ctx *fasthttp.RequestCtx) {
	format, err := document.ParseFormat(string(ctx.QueryArgs().Peek("format")))
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	var msa model.MaritalSettlementAgreement
	if !decode(ctx, &msa) {
		return
	}
	h.writeDocument(ctx, msa, format)
}

func (h *Handler) renderSummary(ctx *fasthttp.RequestCtx) {
	var msa model.MaritalSettlementAgreement
	if !decode(ctx, &msa) {
		return
	}
	writeText(ctx, document.FormatText.ContentType(), document.Summary(msa))
}

func (h *Handler) writeDocument(ctx *fasthttp.RequestCtx, msa model.MaritalSettlementAgreement, format document.Format) {
	out, err := document.Export(msa, format)
	if err != nil {
		h.log.Error("render document", zap.String("format", string(format)), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "Could not render document")
		return
	}
	writeText(ctx, format.ContentType(), out)
}

// replay runs a scripted negotiation without storing it.
func (h *Handler) replay(ctx *fasthttp.RequestCtx) {
	var req model.ReplayRequest
	if !decode(ctx, &req) {
		return
	}
	if strings.TrimSpace(req.Setup.County) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "County is required")
		return
	}
	resp := h.engine.Process(&req)
	h.log.Debug("replay processed",
		zap.String("replay_id", resp.Metadata.ReplayID),
		zap.String("outcome", resp.Metadata.Outcome),
		zap.Int("actions", len(resp.Result.Actions)))
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (h *Handler) createSession(ctx *fasthttp.RequestCtx) {
	var req model.CreateSessionRequest
	if !decode(ctx, &req) {
		return
	}
	if strings.TrimSpace(req.County) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "County is required")
		return
	}
	session := h.machine.NewSession(req)
	if err := h.store.Save(context.Background(), session); err != nil {
		h.storeError(ctx, session.ID, err)
		return
	}
	h.log.Info("session created", zap.String("session_id", session.ID))
	writeJSON(ctx, fasthttp.StatusCreated, session)
}

func (h *Handler) getSession(ctx *fasthttp.RequestCtx, id string) {
	session, err := h.store.Load(context.Background(), id)
	if err != nil {
		h.storeError(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, session)
}

func (h *Handler) deleteSession(ctx *fasthttp.RequestCtx, id string) {
	if err := h.store.Delete(context.Background(), id); err != nil {
		h.storeError(ctx, id, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (h *Handler) applyAction(ctx *fasthttp.RequestCtx, id string) {
	var action model.ActionRequest
	if !decode(ctx, &action) {
		return
	}

	var msgs []model.Message
	var refused error
	session, err := h.store.Update(context.Background(), id, func(s model.Session) (model.Session, error) {
		next, out, err := h.machine.Apply(s, action)
		msgs, refused = out, err
		return next, err
	})
	if refused != nil {
		writeJSON(ctx, actionStatus(refused), model.ActionResponse{Session: session, Messages: msgs})
		return
	}
	if err != nil {
		h.storeError(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, model.ActionResponse{Session: session, Messages: msgs})
}

func (h *Handler) sessionEquity(ctx *fasthttp.RequestCtx, id string) {
	session, err := h.store.Load(context.Background(), id)
	if err != nil {
		h.storeError(ctx, id, err)
		return
	}
	state := equity.StateFor(session, h.now())
	writeJSON(ctx, fasthttp.StatusOK, model.EquityResponse{State: state, Analysis: equity.Analyze(state)})
}

// finalize completes the session if it is still in play and renders the
// agreement. The finalizing party is taken from ?actor= and defaults to the
// party to move.
func (h *Handler) finalize(ctx *fasthttp.RequestCtx, id string) {
	format, err := document.ParseFormat(string(ctx.QueryArgs().Peek("format")))
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	var msgs []model.Message
	var refused error
	session, err := h.store.Update(context.Background(), id, func(s model.Session) (model.Session, error) {
		if s.Status == model.SessionCompleted {
			return s, nil
		}
		actor := model.PartyID(ctx.QueryArgs().Peek("actor"))
		if actor == "" {
			actor = s.CurrentTurn
		}
		next, out, err := h.machine.Apply(s, model.ActionRequest{Action: model.ActionFinalize, Actor: actor})
		msgs, refused = out, err
		return next, err
	})
	if refused != nil {
		writeJSON(ctx, actionStatus(refused), model.ActionResponse{Session: session, Messages: msgs})
		return
	}
	if err != nil {
		h.storeError(ctx, id, err)
		return
	}
	h.log.Info("session finalized", zap.String("session_id", id), zap.String("format", string(format)))
	h.writeDocument(ctx, h.machine.BuildAgreement(session, h.version), format)
}

func (h *Handler) storeError(ctx *fasthttp.RequestCtx, id string, err error) {
	switch {
	case errors.Is(err, storage.ErrNoSession):
		writeError(ctx, fasthttp.StatusNotFound, "Session not found")
	case errors.Is(err, storage.ErrInvalidID):
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid session id")
	default:
		h.log.Error("session storage", zap.String("session_id", id), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "Session storage failed")
	}
}

// actionStatus maps a refused action to an HTTP status: field problems are
// unprocessable, protocol violations conflict with the session state.
func actionStatus(err error) int {
	var missing *catalog.MissingFieldsError
	var invalid *catalog.InvalidFieldError
	switch {
	case errors.As(err, &missing), errors.As(err, &invalid):
		return fasthttp.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrCardNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, negotiation.ErrUnknownAction), errors.Is(err, negotiation.ErrUnknownActor), errors.Is(err, negotiation.ErrMetaCard):
		return fasthttp.StatusBadRequest
	default:
		return fasthttp.StatusConflict
	}
}

func decode(ctx *fasthttp.RequestCtx, v any) bool {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "Could not encode response")
		return
	}
	ctx.SetContentType(contentTypeJSON)
	ctx.SetStatusCode(status)
	ctx.SetBody(data)
}

func writeText(ctx *fasthttp.RequestCtx, contentType, body string) {
	ctx.SetContentType(contentType)
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	data, _ := json.Marshal(model.ErrorResponse{Status: status, Message: message})
	ctx.SetContentType(contentTypeJSON)
	ctx.SetStatusCode(status)
	ctx.SetBody(data)
}
