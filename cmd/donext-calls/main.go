// donext-calls answers inbound donation-campaign phone calls with a
// realtime voice assistant backed by the Donext ledger.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	orchestration "github.com/donext/calls-core/core"
	"github.com/donext/calls-core/core/identity"
	"github.com/donext/calls-core/core/ledger"
	"github.com/donext/calls-core/core/realtime"
	"github.com/donext/calls-core/core/telephony/twilio"
	"github.com/donext/calls-core/core/tools"
	"github.com/donext/calls-core/internal/config"
	"github.com/donext/calls-core/webhook"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ledgerClient := ledger.NewClient(cfg.LedgerURL)
	resolver := identity.NewResolver(ledgerClient, cfg.DefaultCampaignID, cfg.FallbackCampaignName)
	dispatcher := tools.NewDispatcher(ledgerClient)
	callControl := realtime.NewCallControl(cfg.CallControlURL, cfg.OpenAIAPIKey)

	var telephony orchestration.Telephony
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		telephony = twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	}

	startSession := func(ctx context.Context, callID, providerCallID string, caller tools.Session, _ string) {
		conn, err := realtime.Dial(ctx, cfg.RealtimeURL, cfg.OpenAIAPIKey, callID)
		if err != nil {
			slog.Error("failed to attach to call", "call_id", callID, "error", err)
			return
		}

		opts := []orchestration.SessionOption{
			orchestration.WithEngineControl(callControl, callID),
			orchestration.WithGracePeriod(cfg.TerminationGrace),
			orchestration.WithIdleTimeout(cfg.IdleTimeout),
		}
		if telephony != nil && providerCallID != "" {
			opts = append(opts, orchestration.WithTelephony(telephony, providerCallID))
		}

		session := orchestration.NewCallSession(conn, dispatcher, caller, opts...)
		if err := session.Run(ctx); err != nil {
			slog.Error("call session failed", "call_id", callID, "error", err)
		}
	}

	handler := webhook.NewHandler(
		ledgerClient, resolver, callControl, startSession,
		cfg.Model, cfg.Voice, cfg.FallbackCampaignName,
	)

	router := mux.NewRouter()
	router.Handle("/webhook", otelhttp.NewHandler(handler, "webhook")).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := ledgerClient.Ping(r.Context()); err != nil {
			http.Error(w, "ledger unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, router)
}
