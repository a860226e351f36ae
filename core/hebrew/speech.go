package hebrew

import (
	"strconv"
	"strings"
)

const currencyWord = "שקלים"

// AmountSpoken renders an amount as spoken Hebrew followed by the currency
// word. The input may be an integer, a float, or a grouped string such as
// "20,051"; anything that does not parse as a number is echoed as-is so the
// engine can still read it out.
func AmountSpoken(amount string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return Words(int(f)) + " " + currencyWord
	}
	return amount + " " + currencyWord
}

// AmountSpokenInt is AmountSpoken for amounts already held as integers.
func AmountSpokenInt(amount int) string {
	return Words(amount) + " " + currencyWord
}

// FormatAmount groups an integer amount with thousands separators and appends
// the currency word, e.g. 20051 -> "20,051 שקלים".
func FormatAmount(amount int) string {
	return GroupDigits(amount) + " " + currencyWord
}

// GroupDigits renders an integer with comma thousands separators.
func GroupDigits(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// acronyms maps Hebrew acronyms that appear in campaign names to speakable
// full forms. Both the geresh and ASCII-quote spellings are covered.
var acronyms = map[string]string{
	"תשפ\"ו": "תף שין פיי ויו",
	"תשפ״ו":  "תף שין פיי ויו",
	"תשפה":   "תף שין פיי הא",
	"תשפ\"ה": "תף שין פיי הא",
	"תשפ״ה":  "תף שין פיי הא",
	"תשפד":   "תף שין פיי דלת",
	"תשפ\"ד": "תף שין פיי דלת",
	"תשפ״ד":  "תף שין פיי דלת",
	"תשפג":   "תף שין פיי גימל",
	"תשפ\"ג": "תף שין פיי גימל",
	"תשפ״ג":  "תף שין פיי גימל",
	"תשפב":   "תף שין פיי בית",
	"תשפ\"ב": "תף שין פיי בית",
	"תשפ״ב":  "תף שין פיי בית",
	"תשפא":   "תף שין פיי אלף",
	"תשפ\"א": "תף שין פיי אלף",
	"תשפ״א":  "תף שין פיי אלף",
	"תש\"ף":  "תף שין פיי",
	"תש״ף":   "תף שין פיי",
	"ת\"א":   "תל אביב",
	"ת״א":    "תל אביב",
	"י-ם":    "ירושלים",
	"ב\"ה":   "בעזרת השם",
	"ב״ה":    "בעזרת השם",
}

// ExpandAcronyms replaces known Hebrew acronyms with their speakable full
// forms so the engine does not spell them letter by letter.
func ExpandAcronyms(text string) string {
	if text == "" {
		return text
	}
	for acronym, full := range acronyms {
		text = strings.ReplaceAll(text, acronym, full)
	}
	return text
}
