package handler

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tbcolby/settlement-game/internal/model"
	"github.com/tbcolby/settlement-game/internal/negotiation"
	"github.com/tbcolby/settlement-game/internal/storage"
)

var testNow = time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := storage.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	machine := negotiation.New(negotiation.WithClock(func() time.Time { return testNow }))
	h := New(machine, store, zap.NewNop(), "1.0.0")
	h.now = func() time.Time { return testNow }
	return h
}

func do(h *Handler, method, uri string, body any) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != nil {
		data, _ := json.Marshal(body)
		ctx.Request.SetBody(data)
	}
	h.Handle(&ctx)
	return &ctx
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), v), string(ctx.Response.Body()))
}

func createSession(t *testing.T, h *Handler) model.Session {
	t.Helper()
	ctx := do(h, fasthttp.MethodPost, "/sessions", model.CreateSessionRequest{
		County:       "Milwaukee",
		MarriageDate: model.NewDate(2015, time.June, 15),
		PartyA:       model.PlayerRequest{Name: "Alex"},
		PartyB:       model.PlayerRequest{Name: "Blair"},
	})
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	var s model.Session
	decodeBody(t, ctx, &s)
	return s
}

func TestCards(t *testing.T) {
	h := newHandler(t)

	ctx := do(h, fasthttp.MethodGet, "/cards", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, contentTypeJSON, string(ctx.Response.Header.ContentType()))
	var all []model.CardDefinition
	decodeBody(t, ctx, &all)
	assert.NotEmpty(t, all)

	ctx = do(h, fasthttp.MethodGet, "/cards?category=custody", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var custody []model.CardDefinition
	decodeBody(t, ctx, &custody)
	require.NotEmpty(t, custody)
	assert.Less(t, len(custody), len(all))
	for _, c := range custody {
		assert.Equal(t, model.CategoryCustody, c.Category)
	}

	ctx = do(h, fasthttp.MethodGet, "/cards?category=bogus", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodGet, "/cards/keep-house", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var card model.CardDefinition
	decodeBody(t, ctx, &card)
	assert.Equal(t, "Keep the House", card.Name)

	ctx = do(h, fasthttp.MethodGet, "/cards/no-such-card", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestChildSupport(t *testing.T) {
	h := newHandler(t)

	ctx := do(h, fasthttp.MethodPost, "/child-support", model.ChildSupportRequest{
		PayorIncome:      60000,
		PayeeIncome:      40000,
		NumberOfChildren: 1,
	})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var calc model.ChildSupportCalculation
	decodeBody(t, ctx, &calc)
	assert.InDelta(t, 10200, calc.GuidelineAmount, 0.01)
	assert.InDelta(t, 0.17, calc.GuidelinePercentage, 1e-9)

	ctx = do(h, fasthttp.MethodPost, "/child-support", model.ChildSupportRequest{PayorIncome: -1, NumberOfChildren: 1})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodPost, "/child-support", model.ChildSupportRequest{PayorIncome: 1, PlacementPercentage: 101})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestAnalyze(t *testing.T) {
	h := newHandler(t)

	ctx := do(h, fasthttp.MethodPost, "/analyze", model.SettlementState{})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp model.AnalyzeResponse
	decodeBody(t, ctx, &resp)
	assert.NotEmpty(t, resp.Summary)
}

func TestInvalidBody(t *testing.T) {
	h := newHandler(t)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/analyze")
	ctx.Request.SetBodyString("{not json")
	h.Handle(&ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	var e model.ErrorResponse
	decodeBody(t, &ctx, &e)
	assert.Equal(t, fasthttp.StatusBadRequest, e.Status)
	assert.Contains(t, e.Message, "Invalid request body")
}

func TestUnknownRoute(t *testing.T) {
	h := newHandler(t)

	for _, tc := range []struct{ method, uri string }{
		{fasthttp.MethodGet, "/"},
		{fasthttp.MethodGet, "/nope"},
		{fasthttp.MethodPut, "/cards"},
		{fasthttp.MethodGet, "/sessions/x/unknown"},
	} {
		ctx := do(h, tc.method, tc.uri, nil)
		assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode(), tc.uri)
	}
}

func TestDocuments(t *testing.T) {
	h := newHandler(t)
	msa := model.MaritalSettlementAgreement{
		County:       "Dane",
		PartyAName:   "Alex",
		PartyBName:   "Blair",
		MarriageDate: model.NewDate(2015, time.June, 15),
		Version:      "1.0.0",
	}

	ctx := do(h, fasthttp.MethodPost, "/documents", msa)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "text/plain; charset=utf-8", string(ctx.Response.Header.ContentType()))
	assert.Contains(t, string(ctx.Response.Body()), "MARITAL SETTLEMENT AGREEMENT")

	ctx = do(h, fasthttp.MethodPost, "/documents?format=html", msa)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "text/html; charset=utf-8", string(ctx.Response.Header.ContentType()))
	assert.Contains(t, string(ctx.Response.Body()), "<pre>")

	ctx = do(h, fasthttp.MethodPost, "/documents?format=pdf", msa)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodPost, "/documents/summary", msa)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "Generated by Settlement Game v1.0.0")
}

func TestSessionLifecycle(t *testing.T) {
	h := newHandler(t)
	s := createSession(t, h)
	assert.Equal(t, model.SessionPlaying, s.Status)
	assert.Equal(t, model.PartyA, s.CurrentTurn)

	ctx := do(h, fasthttp.MethodPost, "/sessions", model.CreateSessionRequest{County: "  "})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	base := "/sessions/" + s.ID
	ctx = do(h, fasthttp.MethodPost, base+"/actions", model.ActionRequest{
		Action: model.ActionPlay,
		Actor:  model.PartyA,
		CardID: "keep-house",
		Values: map[string]any{
			"keepingParty":      "A",
			"address":           "123 Main Street",
			"buyoutAmount":      100000,
			"refinanceTimeline": "180 days",
		},
	})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	var played model.ActionResponse
	decodeBody(t, ctx, &played)
	require.NotNil(t, played.Session.PendingProposal)
	assert.Equal(t, "Keep the House proposed. Waiting for response...", played.Messages[0].Message)

	ctx = do(h, fasthttp.MethodPost, base+"/actions", model.ActionRequest{Action: model.ActionPlay, Actor: model.PartyA, CardID: "name-change"})
	assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
	var refused model.ActionResponse
	decodeBody(t, ctx, &refused)
	require.Len(t, refused.Messages, 1)
	assert.Equal(t, "NOT_YOUR_TURN", refused.Messages[0].Code)
	assert.Equal(t, played.Session.TurnNumber, refused.Session.TurnNumber)

	ctx = do(h, fasthttp.MethodPost, base+"/actions", model.ActionRequest{Action: model.ActionAccept, Actor: model.PartyB})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var accepted model.ActionResponse
	decodeBody(t, ctx, &accepted)
	assert.Equal(t, 20, accepted.Session.AgreementPointsB)
	assert.Len(t, accepted.Session.AcceptedCards, 1)

	ctx = do(h, fasthttp.MethodGet, base+"/equity", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var eq model.EquityResponse
	decodeBody(t, ctx, &eq)
	assert.InDelta(t, 100000, eq.Analysis.PartyBAssets, 0.01)

	ctx = do(h, fasthttp.MethodGet, base, nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var stored model.Session
	decodeBody(t, ctx, &stored)
	assert.Equal(t, accepted.Session.TurnNumber, stored.TurnNumber)

	ctx = do(h, fasthttp.MethodPost, base+"/finalize", nil)
	assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodDelete, base, nil)
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
	ctx = do(h, fasthttp.MethodGet, base, nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	ctx = do(h, fasthttp.MethodGet, "/sessions/bad.id", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestActionFieldErrors(t *testing.T) {
	h := newHandler(t)
	s := createSession(t, h)
	base := "/sessions/" + s.ID + "/actions"

	ctx := do(h, fasthttp.MethodPost, base, model.ActionRequest{Action: model.ActionPlay, Actor: model.PartyA, CardID: "keep-house"})
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodPost, base, model.ActionRequest{Action: model.ActionPlay, Actor: model.PartyA, CardID: "no-such-card"})
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodPost, base, model.ActionRequest{Action: "shuffle", Actor: model.PartyA})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(h, fasthttp.MethodPost, "/sessions/missing/actions", model.ActionRequest{Action: model.ActionAccept, Actor: model.PartyA})
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestFinalizeRendersAgreement(t *testing.T) {
	h := newHandler(t)
	s := createSession(t, h)
	s.AgreementPointsA = model.MaxAgreementPoints
	s.AgreementPointsB = model.MaxAgreementPoints
	require.NoError(t, h.store.Save(context.Background(), s))

	uri := "/sessions/" + s.ID + "/finalize?format=markdown"
	ctx := do(h, fasthttp.MethodPost, uri, nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	assert.Equal(t, "text/markdown; charset=utf-8", string(ctx.Response.Header.ContentType()))
	assert.Contains(t, string(ctx.Response.Body()), "MARITAL SETTLEMENT AGREEMENT")
	assert.Contains(t, string(ctx.Response.Body()), "Alex")

	stored, err := h.store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, stored.Status)

	// A completed session renders again without another transition.
	ctx = do(h, fasthttp.MethodPost, uri, nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	again, err := h.store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Len(t, again.Moves, len(stored.Moves))
}

func TestReplay(t *testing.T) {
	h := newHandler(t)

	ctx := do(h, fasthttp.MethodPost, "/replay", model.ReplayRequest{
		Setup: model.CreateSessionRequest{County: "Dane", PartyA: model.PlayerRequest{Name: "Alex"}},
		Actions: []model.ActionRequest{
			{Action: model.ActionPlay, Actor: model.PartyA, CardID: "no-spousal-support"},
			{Action: model.ActionReject, Actor: model.PartyB, Message: "not yet"},
		},
	})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	var resp model.ReplayResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, model.OutcomeSuccess, resp.Metadata.Outcome)
	assert.Equal(t, 1, resp.Result.LastActionIndex)
	require.Len(t, resp.Result.Messages, 2)
	assert.Equal(t, "No Spousal Support rejected", resp.Result.Messages[1].Message.Message)

	ids, err := h.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)

	ctx = do(h, fasthttp.MethodPost, "/replay", model.ReplayRequest{})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}
