package tools

import (
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/donext/calls-core/core/identity"
)

// Spec is one tool definition in the shape the engine expects.
type Spec struct {
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// Catalog lists the tools exposed to a caller. Fundraiser-only tools are
// held back from callers who cannot fundraise; the dispatcher still
// gates them in case the engine requests one anyway.
func Catalog(role identity.Role, campaignID int) []Spec {
	reflector := jsonschema.Reflector{DoNotReference: true}
	campaignIDNote := fmt.Sprintf("מספר הקמפיין, תמיד השתמש בערך: %d", campaignID)

	campaignTotalParams := reflector.Reflect(&campaignTotalArgs{})
	campaignTotalParams.Version = ""
	campaignTotalParams.Required = []string{"campaignId"}
	describe(campaignTotalParams, "campaignId", campaignIDNote)

	donorTotalParams := reflector.Reflect(&donorTotalArgs{})
	donorTotalParams.Version = ""
	donorTotalParams.Required = []string{"campaignId"}
	describe(donorTotalParams, "campaignId", campaignIDNote)
	describe(donorTotalParams, "donorName", "שם התורם - אופציונלי אם המשתמש כבר זוהה במערכת")

	specs := []Spec{
		{
			Type:        "function",
			Name:        NameCampaignTotal,
			Description: fmt.Sprintf("שליפת סך התרומות בקמפיין. חובה להעביר campaignId: %d", campaignID),
			Parameters:  campaignTotalParams,
		},
		{
			Type:        "function",
			Name:        NameDonorTotal,
			Description: fmt.Sprintf("סך תרומה אישי של תורם בקמפיין. חובה להעביר campaignId: %d. השם נלקח אוטומטית אם המשתמש זוהה במערכת", campaignID),
			Parameters:  donorTotalParams,
		},
		{
			Type:        "function",
			Name:        NameEndCall,
			Description: "סיום השיחה בפועל - ניתוק השיחה",
			Parameters:  emptyParams(),
		},
	}

	if !role.CanFundraise() {
		return specs
	}

	addDonationParams := reflector.Reflect(&addDonationArgs{})
	addDonationParams.Version = ""
	addDonationParams.Required = []string{"amount", "donorName"}
	describe(addDonationParams, "campaignId", campaignIDNote)
	describe(addDonationParams, "amount", "סכום התרומה")
	if prop, ok := addDonationParams.Properties.Get("amount"); ok {
		prop.Type = "number"
	}
	describe(addDonationParams, "donorName", "שם התורם המלא")
	describe(addDonationParams, "fundraiserPhone", "מספר טלפון של המתרים")
	describe(addDonationParams, "numberOfPayments", "מספר תשלומים")
	describe(addDonationParams, "isUnlimited", "האם תרומה בלתי מוגבלת")
	describe(addDonationParams, "hasPaymentMethod", "האם יש אמצעי תשלום")

	return append(specs,
		Spec{
			Type:        "function",
			Name:        NameFundraiserStats,
			Description: "הצגת נתוני מתרים אישיים (זמין רק למתרים, מספר הטלפון נלקח אוטומטית מהשיחה)",
			Parameters:  emptyParams(),
		},
		Spec{
			Type:        "function",
			Name:        NameFundraiserDonors,
			Description: "הצגת רשימת התורמים של המתרים (זמין רק למתרים, מספר הטלפון נלקח אוטומטית מהשיחה)",
			Parameters:  emptyParams(),
		},
		Spec{
			Type:        "function",
			Name:        NameAddDonation,
			Description: fmt.Sprintf("הוספת תרומה לקמפיין. חובה להעביר campaignId: %d", campaignID),
			Parameters:  addDonationParams,
		},
	)
}

func describe(schema *jsonschema.Schema, property, description string) {
	if prop, ok := schema.Properties.Get(property); ok {
		prop.Description = description
	}
}

func emptyParams() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
		Required:   []string{},
	}
}
