package normalize

import (
	"sort"
	"strings"
)

// CategoryThreshold is the floor below which AssignCategory refuses to pick
// a category and forces manual selection downstream. This is a contract with
// the orchestrator, not a tunable.
const CategoryThreshold = 0.7

// CategoryMatch is the transient result of matching free text against the
// category keyword tables. It is never persisted.
type CategoryMatch struct {
	Category        string
	Confidence      float64
	MatchedKeywords []string
}

// KeywordTable maps a category to the keywords (both languages mixed) that
// indicate it. Matching is case-insensitive substring containment.
type KeywordTable map[string][]string

// DefaultKeywords covers the categories the bot knows about. Arabic entries
// deliberately omit the definite article so "القهوة" still contains "قهوة".
var DefaultKeywords = KeywordTable{
	"food": {
		"قهوة", "اكل", "أكل", "طعام", "مطعم", "غداء", "عشاء", "فطار", "فطور",
		"جوعان", "وجبة", "شاي", "عصير",
		"coffee", "food", "restaurant", "lunch", "dinner", "breakfast",
		"meal", "snack", "tea", "juice",
	},
	"transport": {
		"مواصلات", "تاكسي", "أوبر", "اوبر", "بنزين", "وقود", "مترو", "اتوبيس",
		"قطر", "قطار",
		"taxi", "uber", "bus", "metro", "fuel", "gas", "petrol", "transport",
		"train", "careem",
	},
	"shopping": {
		"تسوق", "شراء", "ملابس", "هدوم", "جزمة", "حذاء", "سوبر ماركت",
		"shopping", "clothes", "shoes", "mall", "amazon", "supermarket",
	},
	"bills": {
		"فاتورة", "فواتير", "كهربا", "كهرباء", "مياه", "غاز", "انترنت", "إنترنت",
		"ايجار", "إيجار", "اشتراك",
		"bill", "bills", "electricity", "water", "internet", "rent",
		"subscription", "utilities",
	},
	"entertainment": {
		"سينما", "فيلم", "ترفيه", "خروجة", "رحلة", "لعبة",
		"cinema", "movie", "entertainment", "game", "netflix", "trip",
		"concert", "outing",
	},
	"health": {
		"دكتور", "دواء", "صيدلية", "مستشفى", "علاج", "تحاليل",
		"doctor", "medicine", "pharmacy", "hospital", "clinic", "dentist",
	},
	"education": {
		"كورس", "دورة", "كتاب", "مدرسة", "جامعة", "دروس",
		"course", "book", "school", "university", "tuition", "lesson",
	},
	"salary": {
		"مرتب", "راتب", "معاش",
		"salary", "wage", "paycheck", "payroll",
	},
	"other": {},
}

// AssignCategory fuzzy-matches text against the keyword table and scores the
// best category. Scoring: 0.6 for the first matched keyword, +0.15 for each
// additional keyword of the same category (capped at 0.9), plus a density
// boost of up to 0.1 for keyword-dense messages. Anything under
// CategoryThreshold comes back with an empty category so the caller asks the
// user instead of guessing.
func AssignCategory(text string, table KeywordTable) CategoryMatch {
	if table == nil {
		table = DefaultKeywords
	}

	lowered := strings.ToLower(text)
	wordCount := len(strings.Fields(lowered))
	if wordCount == 0 {
		return CategoryMatch{}
	}

	matches := make(map[string][]string)
	for category, keywords := range table {
		for _, kw := range keywords {
			if strings.Contains(lowered, strings.ToLower(kw)) {
				matches[category] = append(matches[category], kw)
			}
		}
	}
	if len(matches) == 0 {
		return CategoryMatch{}
	}

	// Pick the category with the most keyword hits; break ties
	// alphabetically so the result is deterministic.
	categories := make([]string, 0, len(matches))
	for c := range matches {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if len(matches[categories[i]]) != len(matches[categories[j]]) {
			return len(matches[categories[i]]) > len(matches[categories[j]])
		}
		return categories[i] < categories[j]
	})
	best := categories[0]
	matched := matches[best]

	confidence := 0.6 + 0.15*float64(len(matched)-1)
	if confidence > 0.9 {
		confidence = 0.9
	}

	boost := 0.5 * float64(len(matched)) / float64(wordCount)
	if boost > 0.1 {
		boost = 0.1
	}
	confidence += boost
	if confidence > 1.0 {
		confidence = 1.0
	}

	if confidence < CategoryThreshold {
		return CategoryMatch{Confidence: confidence, MatchedKeywords: matched}
	}

	return CategoryMatch{
		Category:        best,
		Confidence:      confidence,
		MatchedKeywords: matched,
	}
}
