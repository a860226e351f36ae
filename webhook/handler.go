// Package webhook receives incoming-call events from the conversational
// engine, resolves the caller against the ledger, accepts the call, and
// hands it off to a call session.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/donext/calls-core/core/identity"
	"github.com/donext/calls-core/core/realtime"
	"github.com/donext/calls-core/core/tools"
)

// Pinger checks that the ledger is reachable before a call is accepted.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Resolver turns a caller phone number into an identity.
type Resolver interface {
	Resolve(ctx context.Context, phone string) (identity.Identity, error)
}

// Accepter answers an incoming call on the engine's REST surface.
type Accepter interface {
	Accept(ctx context.Context, callID string, params realtime.AcceptParams) error
}

// SessionStarter runs the realtime side of an accepted call. It is
// invoked on its own goroutine, one per call. providerCallID is the
// telephony provider's own identifier for the call, empty when the
// provider did not forward one.
type SessionStarter func(ctx context.Context, callID, providerCallID string, caller tools.Session, welcome string)

type Handler struct {
	ledger   Pinger
	resolver Resolver
	engine   Accepter
	start    SessionStarter

	model                string
	voice                string
	fallbackCampaignName string
}

func NewHandler(ledger Pinger, resolver Resolver, engine Accepter, start SessionStarter, model, voice, fallbackCampaignName string) *Handler {
	return &Handler{
		ledger:   ledger,
		resolver: resolver,
		engine:   engine,
		start:    start,

		model:                model,
		voice:                voice,
		fallbackCampaignName: fallbackCampaignName,
	}
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		CallID     string               `json:"call_id"`
		ID         string               `json:"id"`
		SIPHeaders []identity.SIPHeader `json:"sip_headers"`
	} `json:"data"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "incoming call webhook")
	defer span.End()

	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		logger.WarnContext(ctx, "undecodable webhook payload", "error", err)
	}
	span.SetAttributes(attribute.String("webhook.event_type", event.Type))

	if event.Type == "realtime.call.ended" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
		return
	}
	if event.Type != "realtime.call.incoming" {
		logger.InfoContext(ctx, "ignoring webhook event", "type", event.Type)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	callID := event.Data.CallID
	if callID == "" {
		callID = event.Data.ID
	}
	if callID == "" {
		logger.WarnContext(ctx, "incoming call event without a call id")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing call_id"})
		return
	}
	span.SetAttributes(attribute.String("call.id", callID))

	if err := h.ledger.Ping(ctx); err != nil {
		logger.ErrorContext(ctx, "ledger unreachable, rejecting call", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger unreachable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "api_unavailable"})
		return
	}

	callerPhone := identity.CallerFromSIPHeaders(event.Data.SIPHeaders)
	ident, err := h.resolver.Resolve(ctx, callerPhone)
	if err != nil {
		// Resolve degrades to defaults, never blocks the call.
		logger.WarnContext(ctx, "caller lookup failed, using defaults", "error", err)
	}
	logger.InfoContext(ctx, "caller resolved",
		"role", ident.Role, "campaign_id", ident.CampaignID)

	welcome := BuildWelcome(ident, h.fallbackCampaignName)
	options := OptionsText(ident.Role)

	var wireTools []realtime.Tool
	if err := copier.Copy(&wireTools, tools.Catalog(ident.Role, ident.CampaignID)); err != nil {
		logger.ErrorContext(ctx, "failed to convert tool catalog", "error", err)
	}

	err = h.engine.Accept(ctx, callID, realtime.AcceptParams{
		Model:        h.model,
		Voice:        h.voice,
		Instructions: BuildInstructions(ident, welcome, options),
		Tools:        wireTools,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to accept call", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "accept failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "accept_failed"})
		return
	}

	caller := tools.Session{
		CallerPhone:  callerPhone,
		FullName:     ident.FullName,
		Role:         ident.Role,
		CampaignID:   ident.CampaignID,
		CampaignName: ident.CampaignName,
	}
	go h.start(context.WithoutCancel(ctx), callID, providerCallID(event.Data.SIPHeaders), caller, welcome)

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// providerCallID pulls the telephony provider's call identifier out of
// the forwarded SIP headers.
func providerCallID(headers []identity.SIPHeader) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, "x-twilio-callsid") {
			return h.Value
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
