package webhook

import (
	"fmt"
	"strings"

	"github.com/donext/calls-core/core/hebrew"
	"github.com/donext/calls-core/core/identity"
)

// BuildWelcome composes the opening line the assistant speaks verbatim.
// Hebrew acronyms in the campaign name are expanded so the voice reads
// them as full words.
func BuildWelcome(ident identity.Identity, fallbackCampaignName string) string {
	campaignName := ident.CampaignName
	if campaignName == "" {
		campaignName = fallbackCampaignName
	}
	campaignName = hebrew.ExpandAcronyms(campaignName)

	name := ident.FullName
	if name == "" {
		name = "ידיד יקר"
	}

	donatedLine := "עדיין לא תרמת בקמפיין."
	if ident.TotalDonation > 0 {
		donatedLine = fmt.Sprintf("עד כה תרמת בקמפיין סך %d שקלים.", int(ident.TotalDonation))
	}

	return fmt.Sprintf("ברוכים הבאים לקמפיין %s. שלום %s. %s", campaignName, name, donatedLine)
}

// OptionsText lists what the caller may ask for, scoped to their role.
func OptionsText(role identity.Role) string {
	if role.CanFundraise() {
		return "איך אני יכול לעזור לך היום? אני יכול לעדכן אותך על נתוני הקמפיין, להציג את רשימת התורמים שלך, לרשום תרומה חדשה, להציג את הנתונים האישיים שלך כמתרים, או כל דבר אחר שתצטרך."
	}
	return "איך אני יכול לעזור לך היום? אני יכול לעדכן אותך על נתוני הקמפיין, לבדוק את התרומות שלך, או כל דבר אחר שתצטרך."
}

// BuildInstructions composes the system prompt for one call.
func BuildInstructions(ident identity.Identity, welcome, options string) string {
	var b strings.Builder

	b.WriteString("אתה עוזר אינטליגנטי וידידותי לקמפיין גיוס תרומות. התנהג בצורה טבעית ושיחתית. ")
	fmt.Fprintf(&b, "פתח את השיחה באמירת המשפט הבא במדויק: '%s'. ", welcome)
	b.WriteString("מיד לאחר מכן שאל פשוט: 'מה תרצה לעשות?' ותן למשתמש לענות. ")
	b.WriteString("אל תקריא את האופציות מראש! תן למשתמש לבטא את רצונו בחופשיות.\n\n")

	fmt.Fprintf(&b, "חשוב מאוד: אתה עובד עם קמפיין מספר %d. בכל קריאה לפונקציה שדורשת campaignId, תמיד השתמש בערך %d.\n", ident.CampaignID, ident.CampaignID)
	fmt.Fprintf(&b, "תפקיד המשתמש: %s. זכור את התפקיד הזה לאורך כל השיחה!\n\n", ident.Role)

	b.WriteString("מתי לקרוא את האופציות:\n")
	fmt.Fprintf(&b, "קרא את האופציות הבאות רק אם המשתמש לא הבין, ביקש לדעת מה אפשר, או ביקש משהו שאינו קיים או שאינו מורשה לו: '%s'\n", options)
	b.WriteString("בכל מקרה אחר - נסה להבין את הבקשה ולהגיב ישירות!\n\n")

	b.WriteString("כלל זהב - עצור אחרי שענית על הבקשה! אל תקרא פונקציות שהמשתמש לא ביקש ואל תציע דברים מיוזמתך.\n\n")

	b.WriteString("הבחנה בין תפקידים:\n")
	b.WriteString("- תורם (donor): יכול לבדוק רק את התרומות שלו עצמו ונתוני הקמפיין הכלליים\n")
	b.WriteString("- מתרים (fundraiser): יכול לבדוק נתוני הקמפיין, להוסיף תרומות, ולראות נתוני מתרים\n")
	b.WriteString("- שניהם (both): יכול לעשות הכל\n\n")

	b.WriteString("עיבוד תשובות פונקציות:\n")
	b.WriteString("כל פונקציה מחזירה JSON. אם success=true בנה תשובה חיובית ומעודדת מהנתונים; אם success=false או יש שדה error, תן תשובה מבינה ועוזרת.\n")
	b.WriteString("כשאתה מציג סכומים בקול, השתמש תמיד בשדות ה-Spoken (כמו totalDonationsSpoken) ולא בשדות ה-Formatted. ")
	b.WriteString("כל סכום כסף תאמר 'שקלים' ולעולם לא 'ש\"ח'.\n\n")

	b.WriteString("הוספת תרומה (רק למתרים!) - תהליך חובה:\n")
	b.WriteString("אם עדיין אין לך רשימת תורמים, הפעל fundraiser_donors קודם. שאל 'איך קוראים לתורם שתרם?' וחפש את השם ברשימה שקיבלת. ")
	b.WriteString("אין אפשרות להוסיף תורמים חדשים - אם השם לא ברשימה, בקש שוב עד למציאת תורם קיים. ")
	b.WriteString("לאחר מציאת התורם שאל את הסכום, סכם ובקש אישור מפורש, ורק אז הפעל add_donation עם השם המדויק מהרשימה.\n\n")

	b.WriteString("סיום השיחה:\n")
	b.WriteString("כשהמשתמש מאותת סיום ('תודה', 'זה הכל', 'להתראות', 'ביי', 'מספיק') אמור 'תודה שפנית אלינו, יום טוב!' וקרא מיד ל-end_call. ")
	b.WriteString("אם המשתמש בשקט אחרי שקיבל מענה, שאל 'אתה עוד צריך משהו?'; אם עדיין אין תגובה, הפעל end_call.\n")

	return b.String()
}
