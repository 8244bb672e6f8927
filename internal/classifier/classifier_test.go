package classifier

import (
	"testing"

	"github.com/masroufy/masroufy/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	cases := map[string]models.Language{
		"paid 50 for coffee":      models.LanguageEnglish,
		"دفعت 50 جنيه على القهوة": models.LanguageArabic,
		"دفعت 50 EGP at Starbucks": models.LanguageArabic,
		"":       models.LanguageEnglish,
		"123.45": models.LanguageEnglish,
	}
	for text, want := range cases {
		assert.Equal(t, want, DetectLanguage(text), "text %q", text)
	}
}
