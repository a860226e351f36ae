package tools

type errorResult struct {
	Error string `json:"error"`
}

// lookupFailure is the payload for a query the ledger answered with a
// failure. The engine's instructions branch on the error field.
type lookupFailure struct {
	Success   bool   `json:"success"`
	DonorName string `json:"donorName,omitempty"`
	Error     string `json:"error"`
}

type campaignTotalResult struct {
	Success                  bool     `json:"success"`
	CampaignID               string   `json:"campaignId"`
	TotalDonations           int      `json:"totalDonations"`
	TotalDonationsFormatted  string   `json:"totalDonationsFormatted"`
	TotalDonationsSpoken     string   `json:"totalDonationsSpoken"`
	ActiveDonorsCount        int      `json:"activeDonorsCount"`
	TargetAmount             string   `json:"targetAmount"`
	TargetAmountFormatted    string   `json:"targetAmountFormatted"`
	TargetAmountSpoken       string   `json:"targetAmountSpoken"`
	ProgressPercentage       *float64 `json:"progressPercentage"`
	AmountRemaining          *int     `json:"amountRemaining"`
	AmountRemainingFormatted string   `json:"amountRemainingFormatted,omitempty"`
	AmountRemainingSpoken    string   `json:"amountRemainingSpoken,omitempty"`
	Message                  string   `json:"message"`
}

type donorTotalResult struct {
	Success                bool   `json:"success"`
	DonorName              string `json:"donorName"`
	TotalDonation          int    `json:"totalDonation"`
	TotalDonationFormatted string `json:"totalDonationFormatted"`
	TotalDonationSpoken    string `json:"totalDonationSpoken"`
	HasDonations           bool   `json:"hasDonations"`
	Message                string `json:"message"`
}

type fundraiserStatsResult struct {
	Success              bool     `json:"success"`
	FundraiserName       string   `json:"fundraiserName,omitempty"`
	CampaignID           string   `json:"campaignId,omitempty"`
	TotalRaised          int      `json:"totalRaised"`
	TotalRaisedFormatted string   `json:"totalRaisedFormatted"`
	TotalRaisedSpoken    string   `json:"totalRaisedSpoken"`
	DonorsWithDonations  *int     `json:"donorsWithDonations,omitempty"`
	TotalDonors          *int     `json:"totalDonors,omitempty"`
	DonorsCount          *int     `json:"donorsCount,omitempty"`
	TotalExpected        *int     `json:"totalExpected,omitempty"`
	TotalExpectedSpoken  string   `json:"totalExpectedSpoken,omitempty"`
	HasPersonalTarget    *bool    `json:"hasPersonalTarget,omitempty"`
	ProgressPercentage   *float64 `json:"progressPercentage,omitempty"`
	Message              string   `json:"message"`
}

type donorEntry struct {
	Index    int    `json:"index"`
	DonorID  string `json:"donorId"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
}

type fundraiserDonorsResult struct {
	Success        bool         `json:"success"`
	FundraiserName string       `json:"fundraiserName"`
	TotalDonors    int          `json:"totalDonors"`
	Donors         []donorEntry `json:"donors"`
	Message        string       `json:"message"`
}

type addDonationResult struct {
	Success         bool   `json:"success"`
	DonorName       string `json:"donorName"`
	Amount          string `json:"amount"`
	AmountFormatted string `json:"amountFormatted,omitempty"`
	AmountSpoken    string `json:"amountSpoken,omitempty"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
}
