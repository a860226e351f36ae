// Package identity resolves a caller's phone number into who they are within
// the campaign: their name, their authorization role, and the campaign they
// belong to.
package identity

import "strings"

// Role is a caller's authorization class. All tool gating switches on this
// enumeration, never on raw ledger status strings.
type Role string

const (
	RoleDonor      Role = "donor"
	RoleFundraiser Role = "fundraiser"
	RoleBoth       Role = "both"
	RoleUnknown    Role = "unknown"
)

// RoleFromStatus maps a ledger membership status string to a Role. The
// ledger stores Hebrew statuses, with English aliases seen in older data.
func RoleFromStatus(status string) Role {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "מתרים", "fundraiser", "raiser":
		return RoleFundraiser
	case "תורם", "donor":
		return RoleDonor
	}
	if strings.Contains(s, "תורם ומתרים") || strings.Contains(s, "both") {
		return RoleBoth
	}
	return RoleUnknown
}

// CanFundraise reports whether the role grants fundraiser-only tools.
func (r Role) CanFundraise() bool {
	return r == RoleFundraiser || r == RoleBoth
}

func (r Role) String() string {
	return string(r)
}
