package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/donext/calls-core/core/identity"
	"github.com/donext/calls-core/core/ledger"
)

type stubLedger struct {
	calls []string

	campaignTotal    *ledger.CampaignTotal
	donorTotal       *ledger.DonorTotal
	fundraiserStats  *ledger.FundraiserStats
	fundraiserDonors *ledger.FundraiserDonors
	receipt          *ledger.DonationReceipt
	err              error

	lastCampaignID int
	lastDonation   ledger.Donation
}

func (s *stubLedger) CampaignTotal(_ context.Context, campaignID int) (*ledger.CampaignTotal, error) {
	s.calls = append(s.calls, "campaignTotal")
	s.lastCampaignID = campaignID
	return s.campaignTotal, s.err
}

func (s *stubLedger) DonorTotal(_ context.Context, donorName string, campaignID int) (*ledger.DonorTotal, error) {
	s.calls = append(s.calls, "donorTotal")
	s.lastCampaignID = campaignID
	return s.donorTotal, s.err
}

func (s *stubLedger) FundraiserStats(_ context.Context, fundraiserPhone, fundraiserName string) (*ledger.FundraiserStats, error) {
	s.calls = append(s.calls, "fundraiserStats")
	return s.fundraiserStats, s.err
}

func (s *stubLedger) FundraiserDonors(_ context.Context, campaignID int, fundraiserPhone string) (*ledger.FundraiserDonors, error) {
	s.calls = append(s.calls, "fundraiserDonors")
	s.lastCampaignID = campaignID
	return s.fundraiserDonors, s.err
}

func (s *stubLedger) AddDonation(_ context.Context, donation ledger.Donation) (*ledger.DonationReceipt, error) {
	s.calls = append(s.calls, "addDonation")
	s.lastDonation = donation
	return s.receipt, s.err
}

func fundraiserSession() Session {
	return Session{
		CallerPhone: "0501234567",
		FullName:    "יוסי כהן",
		Role:        identity.RoleFundraiser,
		CampaignID:  42,
	}
}

func donorSession() Session {
	sess := fundraiserSession()
	sess.Role = identity.RoleDonor
	return sess
}

func decodeOutput(t *testing.T, result Result) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Output), &payload); err != nil {
		t.Fatalf("failed to decode result output %q: %v", result.Output, err)
	}
	return payload
}

func TestCampaignTotalFallsBackToSessionCampaign(t *testing.T) {
	backend := &stubLedger{campaignTotal: &ledger.CampaignTotal{
		TotalDonations:    50000,
		ActiveDonorsCount: 12,
	}}
	d := NewDispatcher(backend)

	result := d.Dispatch(context.Background(), fundraiserSession(),
		Call{InvocationID: "fc_1", Name: NameCampaignTotal, Arguments: "{}"})

	if backend.lastCampaignID != 42 {
		t.Fatalf("expected session campaign 42, got %d", backend.lastCampaignID)
	}
	payload := decodeOutput(t, result)
	if payload["success"] != true {
		t.Fatalf("expected success, got %v", result.Output)
	}
	if payload["totalDonationsSpoken"] != "חמישים אלף שקלים" {
		t.Fatalf("unexpected spoken total: %v", payload["totalDonationsSpoken"])
	}
}

func TestCampaignTotalComputesProgressWhenTargetIsNumeric(t *testing.T) {
	var total ledger.CampaignTotal
	if err := json.Unmarshal([]byte(`{"campaignId":42,"totalDonations":25000,"activeDonorsCount":8,"targetAmount":"100000"}`), &total); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	backend := &stubLedger{campaignTotal: &total}
	d := NewDispatcher(backend)

	result := d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameCampaignTotal, Arguments: "{}"})

	payload := decodeOutput(t, result)
	if payload["progressPercentage"] != 25.0 {
		t.Fatalf("expected 25%% progress, got %v", payload["progressPercentage"])
	}
	if payload["amountRemaining"] != 75000.0 {
		t.Fatalf("expected 75000 remaining, got %v", payload["amountRemaining"])
	}
}

func TestCampaignTotalSkipsProgressWhenTargetIsNotNumeric(t *testing.T) {
	var total ledger.CampaignTotal
	if err := json.Unmarshal([]byte(`{"campaignId":42,"totalDonations":25000,"activeDonorsCount":8,"targetAmount":""}`), &total); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	d := NewDispatcher(&stubLedger{campaignTotal: &total})

	payload := decodeOutput(t, d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameCampaignTotal, Arguments: "{}"}))

	if payload["progressPercentage"] != nil {
		t.Fatalf("expected no progress, got %v", payload["progressPercentage"])
	}
	if payload["amountRemaining"] != nil {
		t.Fatalf("expected no remaining amount, got %v", payload["amountRemaining"])
	}
}

func TestCampaignTotalWithoutAnyCampaignID(t *testing.T) {
	backend := &stubLedger{}
	d := NewDispatcher(backend)

	sess := fundraiserSession()
	sess.CampaignID = 0
	result := d.Dispatch(context.Background(), sess,
		Call{Name: NameCampaignTotal, Arguments: "{}"})

	if len(backend.calls) != 0 {
		t.Fatalf("expected no backend call, got %v", backend.calls)
	}
	payload := decodeOutput(t, result)
	if payload["error"] == "" {
		t.Fatalf("expected user-facing error, got %v", result.Output)
	}
}

func TestDonorTotalUsesSessionNameAndReportsZeroDistinctly(t *testing.T) {
	backend := &stubLedger{donorTotal: &ledger.DonorTotal{TotalDonation: 0}}
	d := NewDispatcher(backend)

	result := d.Dispatch(context.Background(), donorSession(),
		Call{Name: NameDonorTotal, Arguments: "{}"})

	payload := decodeOutput(t, result)
	if payload["success"] != true {
		t.Fatalf("expected success, got %v", result.Output)
	}
	if payload["hasDonations"] != false {
		t.Fatalf("expected hasDonations=false, got %v", payload["hasDonations"])
	}
	if !strings.Contains(payload["message"].(string), "עדיין לא תרם") {
		t.Fatalf("expected not-yet-donated message, got %v", payload["message"])
	}
}

func TestDonorTotalWithoutName(t *testing.T) {
	backend := &stubLedger{}
	d := NewDispatcher(backend)

	sess := donorSession()
	sess.FullName = ""
	result := d.Dispatch(context.Background(), sess,
		Call{Name: NameDonorTotal, Arguments: "{}"})

	if len(backend.calls) != 0 {
		t.Fatalf("expected no backend call, got %v", backend.calls)
	}
	payload := decodeOutput(t, result)
	if payload["error"] != msgNeedCallerName {
		t.Fatalf("unexpected error: %v", payload["error"])
	}
}

func TestFundraiserToolsRefuseNonFundraisers(t *testing.T) {
	for _, name := range []string{NameFundraiserStats, NameFundraiserDonors, NameAddDonation} {
		for _, role := range []identity.Role{identity.RoleDonor, identity.RoleUnknown} {
			backend := &stubLedger{}
			d := NewDispatcher(backend)

			sess := fundraiserSession()
			sess.Role = role
			result := d.Dispatch(context.Background(), sess,
				Call{Name: name, Arguments: `{"amount":100,"donorName":"א"}`})

			if len(backend.calls) != 0 {
				t.Fatalf("%s with role %s issued backend calls: %v", name, role, backend.calls)
			}
			payload := decodeOutput(t, result)
			if payload["error"] == nil || payload["error"] == "" {
				t.Fatalf("%s with role %s did not refuse: %v", name, role, result.Output)
			}
			if result.EndCall {
				t.Fatalf("%s refusal must not end the call", name)
			}
		}
	}
}

func TestFundraiserStatsPrefersFoundFundraisers(t *testing.T) {
	backend := &stubLedger{fundraiserStats: &ledger.FundraiserStats{
		FoundFundraisers: []ledger.FundraiserRecord{{
			FundraiserName:       "דוד לוי",
			TotalDonationsAmount: 8000,
			DonorsWithDonations:  5,
			TotalDonors:          20,
			TotalExpected:        16000,
		}},
	}}
	d := NewDispatcher(backend)

	payload := decodeOutput(t, d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameFundraiserStats, Arguments: "{}"}))

	if payload["fundraiserName"] != "דוד לוי" {
		t.Fatalf("unexpected fundraiser name: %v", payload["fundraiserName"])
	}
	if payload["totalRaisedSpoken"] != "שמונת אלפים שקלים" {
		t.Fatalf("unexpected spoken total: %v", payload["totalRaisedSpoken"])
	}
	if payload["progressPercentage"] != 50.0 {
		t.Fatalf("expected 50%% progress, got %v", payload["progressPercentage"])
	}
}

func TestFundraiserStatsFallsBackToLegacyShape(t *testing.T) {
	backend := &stubLedger{fundraiserStats: &ledger.FundraiserStats{
		TotalRaised: 3000,
		DonorsCount: 4,
	}}
	d := NewDispatcher(backend)

	payload := decodeOutput(t, d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameFundraiserStats, Arguments: "{}"}))

	if payload["success"] != true {
		t.Fatalf("expected success, got %v", payload)
	}
	if payload["donorsCount"] != 4.0 {
		t.Fatalf("expected legacy donorsCount, got %v", payload["donorsCount"])
	}
}

func TestFundraiserDonorsReturnsOrderedList(t *testing.T) {
	backend := &stubLedger{fundraiserDonors: &ledger.FundraiserDonors{
		FundraiserName: "דוד לוי",
		TotalDonors:    2,
		Donors: []ledger.Donor{
			{FullName: "אברהם", Phone: "0501111111", City: "ירושלים"},
			{FullName: "יצחק", Phone: "0502222222"},
		},
	}}
	d := NewDispatcher(backend)

	payload := decodeOutput(t, d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameFundraiserDonors, Arguments: "{}"}))

	donors := payload["donors"].([]any)
	if len(donors) != 2 {
		t.Fatalf("expected 2 donors, got %d", len(donors))
	}
	first := donors[0].(map[string]any)
	if first["index"] != 1.0 || first["fullName"] != "אברהם" {
		t.Fatalf("unexpected first donor: %v", first)
	}
}

func TestAddDonationRequiresAmountAndName(t *testing.T) {
	cases := []struct {
		name string
		args string
		want string
	}{
		{"missing amount", `{"donorName":"אברהם"}`, msgNeedAmount},
		{"missing donor name", `{"amount":180}`, msgNeedDonorName},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			backend := &stubLedger{}
			d := NewDispatcher(backend)

			result := d.Dispatch(context.Background(), fundraiserSession(),
				Call{Name: NameAddDonation, Arguments: c.args})

			if len(backend.calls) != 0 {
				t.Fatalf("expected no backend call, got %v", backend.calls)
			}
			payload := decodeOutput(t, result)
			if payload["error"] != c.want {
				t.Fatalf("unexpected error: %v", payload["error"])
			}
		})
	}
}

func TestAddDonationDefaultsFromSession(t *testing.T) {
	backend := &stubLedger{receipt: &ledger.DonationReceipt{}}
	d := NewDispatcher(backend)

	result := d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameAddDonation, Arguments: `{"amount":180,"donorName":"אברהם"}`})

	if backend.lastDonation.CampaignID != 42 {
		t.Fatalf("expected session campaign, got %d", backend.lastDonation.CampaignID)
	}
	if backend.lastDonation.FundraiserPhone != "0501234567" {
		t.Fatalf("expected caller phone, got %q", backend.lastDonation.FundraiserPhone)
	}
	if backend.lastDonation.NumberOfPayments != 1 {
		t.Fatalf("expected one payment by default, got %d", backend.lastDonation.NumberOfPayments)
	}
	if !backend.lastDonation.HasPaymentMethod {
		t.Fatalf("expected hasPaymentMethod to default to true")
	}

	payload := decodeOutput(t, result)
	if payload["success"] != true {
		t.Fatalf("expected confirmed donation, got %v", result.Output)
	}
	if payload["amountSpoken"] != "מאה שמונים שקלים" {
		t.Fatalf("unexpected spoken amount: %v", payload["amountSpoken"])
	}
}

func TestAddDonationSurfacesBackendMessage(t *testing.T) {
	backend := &stubLedger{err: &ledger.APIError{Message: "התורם כבר קיים"}}
	d := NewDispatcher(backend)

	payload := decodeOutput(t, d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameAddDonation, Arguments: `{"amount":180,"donorName":"אברהם"}`}))

	if payload["success"] != false {
		t.Fatalf("expected failure payload, got %v", payload)
	}
	errText := payload["error"].(string)
	if !strings.Contains(errText, "התורם כבר קיים") {
		t.Fatalf("expected backend message to surface, got %q", errText)
	}
}

func TestBackendLookupFailuresReportErrorField(t *testing.T) {
	cases := []struct {
		tool string
		want string
	}{
		{NameCampaignTotal, msgCampaignTotalFailed},
		{NameDonorTotal, msgDonorNotFound},
		{NameFundraiserStats, msgStatsNotFound},
		{NameFundraiserDonors, msgDonorsNotFound},
	}
	for _, c := range cases {
		t.Run(c.tool, func(t *testing.T) {
			d := NewDispatcher(&stubLedger{err: &ledger.APIError{}})

			payload := decodeOutput(t, d.Dispatch(context.Background(), fundraiserSession(),
				Call{Name: c.tool, Arguments: "{}"}))

			if payload["success"] != false {
				t.Fatalf("expected failure payload, got %v", payload)
			}
			if payload["error"] != c.want {
				t.Fatalf("expected error %q, got %v", c.want, payload["error"])
			}
			if _, ok := payload["message"]; ok {
				t.Fatalf("expected no message field on failure, got %v", payload)
			}
		})
	}
}

func TestTransportFailureIsGeneric(t *testing.T) {
	backend := &stubLedger{err: errors.New("dial tcp: connection refused")}
	d := NewDispatcher(backend)

	result := d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameCampaignTotal, Arguments: "{}"})

	if result.Output != msgTransientFailure {
		t.Fatalf("expected generic transient message, got %q", result.Output)
	}
	if strings.Contains(result.Output, "connection refused") {
		t.Fatalf("transport error leaked into the conversation: %q", result.Output)
	}
}

func TestMalformedArgumentsAreTreatedAsEmpty(t *testing.T) {
	backend := &stubLedger{campaignTotal: &ledger.CampaignTotal{TotalDonations: 100}}
	d := NewDispatcher(backend)

	result := d.Dispatch(context.Background(), fundraiserSession(),
		Call{Name: NameCampaignTotal, Arguments: `{"campaignId":`})

	if backend.lastCampaignID != 42 {
		t.Fatalf("expected session campaign after malformed args, got %d", backend.lastCampaignID)
	}
	payload := decodeOutput(t, result)
	if payload["success"] != true {
		t.Fatalf("expected success, got %v", result.Output)
	}
}

func TestEndCallSignalsTermination(t *testing.T) {
	d := NewDispatcher(&stubLedger{})

	result := d.Dispatch(context.Background(), donorSession(),
		Call{Name: NameEndCall, Arguments: "{}"})

	if !result.EndCall {
		t.Fatalf("expected EndCall to be set")
	}
}

func TestUnknownToolName(t *testing.T) {
	backend := &stubLedger{}
	d := NewDispatcher(backend)

	result := d.Dispatch(context.Background(), donorSession(),
		Call{Name: "transfer_money", Arguments: "{}"})

	if len(backend.calls) != 0 {
		t.Fatalf("expected no backend call, got %v", backend.calls)
	}
	if result.Output != msgUnknownTool {
		t.Fatalf("unexpected output: %q", result.Output)
	}
}
