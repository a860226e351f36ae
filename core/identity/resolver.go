package identity

import (
	"context"
	"fmt"

	"github.com/donext/calls-core/core/ledger"
)

// Identity is the resolved caller identity carried through a call session.
// It is produced once per call and immutable afterwards.
type Identity struct {
	FullName     string
	Role         Role
	CampaignID   int
	CampaignName string
	// TotalDonation is the caller's running donation total within the
	// resolved campaign, used for the welcome line.
	TotalDonation float64
}

// Resolver turns a caller phone number into an Identity using the ledger's
// phone search.
type Resolver struct {
	ledger *ledger.Client

	defaultCampaignID    int
	fallbackCampaignName string
}

func NewResolver(client *ledger.Client, defaultCampaignID int, fallbackCampaignName string) *Resolver {
	return &Resolver{
		ledger:               client,
		defaultCampaignID:    defaultCampaignID,
		fallbackCampaignName: fallbackCampaignName,
	}
}

// Resolve looks the phone up in the ledger and derives an identity. The
// returned Identity is always usable: when the lookup fails or the phone is
// empty the defaults (unknown role, configured campaign) are returned along
// with the error, and the call can proceed anonymously.
func (r *Resolver) Resolve(ctx context.Context, phone string) (Identity, error) {
	id := Identity{
		Role:         RoleUnknown,
		CampaignID:   r.defaultCampaignID,
		CampaignName: r.fallbackCampaignName,
	}

	if phone == "" {
		return id, nil
	}

	people, err := r.ledger.SearchByPhone(ctx, phone)
	if err != nil {
		return id, fmt.Errorf("phone search failed: %w", err)
	}
	if len(people) == 0 {
		return id, nil
	}

	// Prefer the membership matching the configured campaign, across all
	// matched people.
	if r.defaultCampaignID != 0 {
		for _, person := range people {
			for _, membership := range person.Campaigns {
				if n, ok := membership.CampaignNumber.Int(); ok && n == r.defaultCampaignID {
					return identityFrom(person, membership), nil
				}
			}
		}
	}

	// No matching campaign: fall back to the first person's first campaign.
	person := people[0]
	if len(person.Campaigns) > 0 {
		return identityFrom(person, person.Campaigns[0]), nil
	}

	id.FullName = person.FullName
	return id, nil
}

func identityFrom(person ledger.Person, membership ledger.CampaignMembership) Identity {
	id := Identity{
		FullName:      person.FullName,
		Role:          RoleFromStatus(membership.Status),
		CampaignName:  membership.CampaignName,
		TotalDonation: membership.TotalDonation,
	}
	if n, ok := membership.CampaignNumber.Int(); ok {
		id.CampaignID = n
	}
	return id
}
