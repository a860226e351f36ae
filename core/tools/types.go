// Package tools executes the backend actions the conversational engine may
// request mid-call, gated by the caller's resolved role.
package tools

import (
	"context"
	"encoding/json"

	"github.com/donext/calls-core/core/identity"
	"github.com/donext/calls-core/core/ledger"
)

// Tool names as the engine requests them.
const (
	NameCampaignTotal    = "campaign_total"
	NameDonorTotal       = "donor_total"
	NameFundraiserStats  = "fundraiser_stats"
	NameFundraiserDonors = "fundraiser_donors"
	NameAddDonation      = "add_donation"
	NameEndCall          = "end_call"
)

// Call is one fully assembled tool invocation.
type Call struct {
	InvocationID string
	Name         string
	Arguments    string
}

// Session is the caller context a tool runs against. It is resolved once
// when the call is accepted and never mutated afterwards.
type Session struct {
	CallerPhone  string
	FullName     string
	Role         identity.Role
	CampaignID   int
	CampaignName string
}

// Result is what gets reported back to the engine. Output is always a
// payload the engine can fold into its next spoken turn; EndCall marks
// that the call must wind down after the result is delivered.
type Result struct {
	Output  string
	EndCall bool
}

// Ledger is the slice of the ledger client the dispatcher needs.
type Ledger interface {
	CampaignTotal(ctx context.Context, campaignID int) (*ledger.CampaignTotal, error)
	DonorTotal(ctx context.Context, donorName string, campaignID int) (*ledger.DonorTotal, error)
	FundraiserStats(ctx context.Context, fundraiserPhone, fundraiserName string) (*ledger.FundraiserStats, error)
	FundraiserDonors(ctx context.Context, campaignID int, fundraiserPhone string) (*ledger.FundraiserDonors, error)
	AddDonation(ctx context.Context, donation ledger.Donation) (*ledger.DonationReceipt, error)
}

type campaignTotalArgs struct {
	CampaignID int `json:"campaignId"`
}

type donorTotalArgs struct {
	DonorName  string `json:"donorName"`
	CampaignID int    `json:"campaignId"`
}

type addDonationArgs struct {
	Amount           json.Number `json:"amount"`
	DonorName        string      `json:"donorName"`
	CampaignID       int         `json:"campaignId"`
	FundraiserPhone  string      `json:"fundraiserPhone"`
	NumberOfPayments int         `json:"numberOfPayments"`
	IsUnlimited      *bool       `json:"isUnlimited"`
	HasPaymentMethod *bool       `json:"hasPaymentMethod"`
}
