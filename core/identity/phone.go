package identity

import (
	"regexp"
	"strings"
)

var (
	nonDigits    = regexp.MustCompile(`\D+`)
	callerNumber = regexp.MustCompile(`(\+?972[ \-]?\d[ \-]?\d{7,8}|0\d{8,9})`)
)

// NormalizePhone reduces a phone number to the local Israeli format used as
// the ledger's lookup key. International 972 numbers are rewritten with a
// leading zero; anything unrecognized passes through as bare digits.
func NormalizePhone(s string) string {
	digits := nonDigits.ReplaceAllString(s, "")
	switch {
	case strings.HasPrefix(digits, "972") && len(digits) == 12:
		return "0" + digits[3:]
	case strings.HasPrefix(digits, "05") && len(digits) == 10:
		return digits
	case strings.HasPrefix(digits, "0") && len(digits) == 10:
		return digits
	}
	return digits
}

// SIPHeader is one header forwarded by the telephony provider with an
// incoming call.
type SIPHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CallerFromSIPHeaders extracts and normalizes the caller's number from the
// identity-bearing SIP headers. Returns "" when no number can be found.
func CallerFromSIPHeaders(headers []SIPHeader) string {
	var candidates []string
	for _, h := range headers {
		name := strings.ToLower(h.Name)
		for _, key := range []string{"p-asserted-identity", "from", "contact", "pai", "pai-number"} {
			if strings.Contains(name, key) {
				candidates = append(candidates, h.Value)
				break
			}
		}
	}

	match := callerNumber.FindString(strings.Join(candidates, " "))
	if match == "" {
		return ""
	}
	return NormalizePhone(match)
}
