// Package hebrew renders amounts as spoken Hebrew for the voice channel.
package hebrew

import "strings"

var (
	ones = []string{"", "אחד", "שניים", "שלושה", "ארבעה", "חמישה", "שישה", "שבעה", "שמונה", "תשעה"}

	teens = []string{"עשרה", "אחד עשר", "שניים עשר", "שלושה עשר", "ארבעה עשר", "חמישה עשר",
		"שישה עשר", "שבעה עשר", "שמונה עשר", "תשעה עשר"}

	tens = []string{"", "", "עשרים", "שלושים", "ארבעים", "חמישים", "שישים", "שבעים", "שמונים", "תשעים"}

	hundreds = []string{"", "מאה", "מאתיים", "שלוש מאות", "ארבע מאות", "חמש מאות", "שש מאות",
		"שבע מאות", "שמונה מאות", "תשע מאות"}

	// thousandsConstruct holds the construct-state forms used for 3..10
	// thousand (שלושת אלפים, עשרת אלפים). Indexed by the thousands count.
	thousandsConstruct = []string{"", "", "", "שלושת", "ארבעת", "חמשת", "ששת", "שבעת", "שמונת", "תשעת", "עשרת"}
)

// Words spells out a non-negative integer in spoken Hebrew. Negative input is
// spelled as its absolute value prefixed with מינוס.
func Words(num int) string {
	if num == 0 {
		return "אפס"
	}
	if num < 0 {
		return "מינוס " + Words(-num)
	}

	if num < 1000 {
		return underThousand(num)
	}

	var parts []string

	if num >= 1_000_000_000 {
		billions := num / 1_000_000_000
		switch billions {
		case 1:
			parts = append(parts, "מיליארד")
		case 2:
			parts = append(parts, "שני מיליארד")
		default:
			parts = append(parts, underThousand(billions)+" מיליארד")
		}
		num %= 1_000_000_000
	}

	if num >= 1_000_000 {
		millions := num / 1_000_000
		switch millions {
		case 1:
			parts = append(parts, "מיליון")
		case 2:
			parts = append(parts, "שני מיליון")
		default:
			parts = append(parts, underThousand(millions)+" מיליון")
		}
		num %= 1_000_000
	}

	if num >= 1000 {
		parts = append(parts, thousandsWords(num/1000))
		num %= 1000
	}

	if num > 0 {
		parts = append(parts, underThousand(num))
	}

	return strings.Join(parts, " ")
}

// thousandsWords spells the thousands group. Counts 1 and 2 have irregular
// forms, 3..10 take the construct state with the plural אלפים, and 11 and up
// take the regular count with the singular אלף.
func thousandsWords(count int) string {
	switch {
	case count == 1:
		return "אלף"
	case count == 2:
		return "אלפיים"
	case count <= 10:
		return thousandsConstruct[count] + " אלפים"
	case count <= 19:
		return teens[count-10] + " אלף"
	default:
		return underThousand(count) + " אלף"
	}
}

func underThousand(n int) string {
	var parts []string

	if n >= 100 {
		parts = append(parts, hundreds[n/100])
		n %= 100
	}
	switch {
	case n >= 20:
		parts = append(parts, tens[n/10])
		if n%10 > 0 {
			parts = append(parts, ones[n%10])
		}
	case n >= 10:
		parts = append(parts, teens[n-10])
	case n > 0:
		parts = append(parts, ones[n])
	}

	return strings.Join(parts, " ")
}
