package ledger

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// envelope is the response wrapper every ledger action shares.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// APIError is a failure the ledger service itself reported (success=false,
// or a query answered without a data payload). It is distinct from
// transport-level errors so callers can surface the service's own message.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "ledger reported failure"
	}
	return "ledger reported failure: " + e.Message
}

// errorMessage extracts a human-readable message from the error field, which
// the service serializes either as {"message": ...} or as a bare string.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var structured struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Message != "" {
		return structured.Message
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// FlexInt holds a field the ledger serializes inconsistently as a number, a
// numeric string, or an empty string. The raw value round-trips unchanged;
// Int reports whether a whole-number reading exists.
type FlexInt struct {
	raw json.RawMessage
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	f.raw = slices.Clone(b)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if len(f.raw) == 0 {
		return []byte("null"), nil
	}
	return f.raw, nil
}

// Int returns the whole-number value and whether one exists.
func (f FlexInt) Int() (int, bool) {
	s := strings.Trim(strings.TrimSpace(string(f.raw)), `"`)
	if s == "" || s == "null" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the raw textual form for passthrough display.
func (f FlexInt) String() string {
	return strings.Trim(string(f.raw), `"`)
}

// CampaignTotal is the campaignTotal action payload.
type CampaignTotal struct {
	CampaignID        FlexInt `json:"campaignId"`
	TotalDonations    float64 `json:"totalDonations"`
	ActiveDonorsCount int     `json:"activeDonorsCount"`
	TargetAmount      FlexInt `json:"targetAmount"`
}

// DonorTotal is the donorTotal action payload.
type DonorTotal struct {
	TotalDonation float64 `json:"totalDonation"`
}

// FundraiserRecord is one fundraiser entry in the current fundraiserStats
// response shape.
type FundraiserRecord struct {
	FundraiserName       string  `json:"fundraiserName"`
	CampaignID           FlexInt `json:"campaignId"`
	TotalDonationsAmount float64 `json:"totalDonationsAmount"`
	DonorsWithDonations  int     `json:"donorsWithDonations"`
	TotalDonors          int     `json:"totalDonors"`
	TotalExpected        float64 `json:"totalExpected"`
}

// FundraiserStats is the fundraiserStats action payload. Older deployments
// return the flat TotalRaised/DonorsCount shape instead of FoundFundraisers.
type FundraiserStats struct {
	FoundFundraisers []FundraiserRecord `json:"foundFundraisers"`

	TotalRaised float64 `json:"totalRaised"`
	DonorsCount int     `json:"donorsCount"`
}

// Donor is one entry in a fundraiser's donor list.
type Donor struct {
	DonorID  FlexInt `json:"donorId"`
	FullName string  `json:"fullName"`
	Phone    string  `json:"phone"`
	City     string  `json:"city"`
}

// FundraiserDonors is the fundraiserDonors action payload.
type FundraiserDonors struct {
	FundraiserName string  `json:"fundraiserName"`
	TotalDonors    int     `json:"totalDonors"`
	Donors         []Donor `json:"donors"`
}

// Donation is the addDonation request payload.
type Donation struct {
	CampaignID       int         `json:"campaignId"`
	Amount           json.Number `json:"amount"`
	DonorName        string      `json:"donorName"`
	FundraiserPhone  string      `json:"fundraiserPhone"`
	NumberOfPayments int         `json:"numberOfPayments"`
	IsUnlimited      bool        `json:"isUnlimited"`
	HasPaymentMethod bool        `json:"hasPaymentMethod"`
}

// DonationReceipt is the addDonation action payload.
type DonationReceipt struct {
	DonationID FlexInt `json:"donationId"`
}

// CampaignMembership is one campaign a person belongs to in a searchByPhone
// response.
type CampaignMembership struct {
	CampaignNumber FlexInt `json:"campaignNumber"`
	CampaignName   string  `json:"campaignName"`
	Status         string  `json:"status"`
	TotalDonation  float64 `json:"totalDonation"`
}

// Person is one searchByPhone match.
type Person struct {
	FullName  string               `json:"fullName"`
	Campaigns []CampaignMembership `json:"campaigns"`
}
