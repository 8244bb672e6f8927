package classifier

import (
	"context"
	"regexp"

	"github.com/masroufy/masroufy/internal/models"
)

// HistoryMessage is one turn of rolling conversation context sent to the NLU
// backend.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Classifier turns a free-text message into an intent plus entities. Classify
// never returns an error: any internal failure produces the deterministic
// fallback result, which may itself be unknown with zero confidence.
type Classifier interface {
	Classify(ctx context.Context, message string, lang models.Language, history []HistoryMessage) models.IntentResult
}

var arabicScript = regexp.MustCompile(`\p{Arabic}`)

// DetectLanguage guesses the message language from its script. Any Arabic
// letter wins, since mixed messages from Arabic speakers usually embed Latin
// numbers and brand names.
func DetectLanguage(text string) models.Language {
	if arabicScript.MatchString(text) {
		return models.LanguageArabic
	}
	return models.LanguageEnglish
}

// sanitize clamps a parsed NLU result into the contract: intent from the
// closed set, confidence in [0,1], entities never nil.
func sanitize(result models.IntentResult, lang models.Language) models.IntentResult {
	if !result.Intent.Valid() {
		result.Intent = models.IntentUnknown
		result.Confidence = 0
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	if result.Entities == nil {
		result.Entities = map[string]interface{}{}
	}
	if result.Language != models.LanguageArabic && result.Language != models.LanguageEnglish {
		result.Language = lang
	}
	return result
}
