package classifier

import (
	"context"
	"testing"

	"github.com/masroufy/masroufy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFallback() *FallbackClassifier {
	return NewFallbackClassifier(nil, zap.NewNop())
}

func TestFallbackExpenseWithAmount(t *testing.T) {
	c := newTestFallback()

	result := c.Classify(context.Background(), "paid 50 for coffee", models.LanguageEnglish, nil)

	assert.Equal(t, models.IntentLogExpense, result.Intent)
	assert.Equal(t, 0.65, result.Confidence)
	assert.Equal(t, 50.0, result.Entities[models.EntityAmount])
	assert.Equal(t, "food", result.Entities[models.EntityCategory])
}

func TestFallbackMonetaryWithoutAmountIsUnknown(t *testing.T) {
	c := newTestFallback()

	// "spent" triggers the expense rule but there is no number to extract;
	// the classifier must not invent one.
	result := c.Classify(context.Background(), "I spent some money today", models.LanguageEnglish, nil)

	assert.Equal(t, models.IntentUnknown, result.Intent)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestFallbackArabicIndicDigits(t *testing.T) {
	c := newTestFallback()

	result := c.Classify(context.Background(), "دفعت ٥٠ جنيه على القهوة", models.LanguageArabic, nil)

	require.Equal(t, models.IntentLogExpense, result.Intent)
	assert.Equal(t, 50.0, result.Entities[models.EntityAmount])
	assert.Equal(t, models.LanguageArabic, result.Language)
}

func TestFallbackDecimalAmount(t *testing.T) {
	c := newTestFallback()

	result := c.Classify(context.Background(), "bought groceries for 120.75", models.LanguageEnglish, nil)

	require.Equal(t, models.IntentLogExpense, result.Intent)
	assert.Equal(t, 120.75, result.Entities[models.EntityAmount])
}

func TestFallbackAccountRulesWinOverMonetaryVocabulary(t *testing.T) {
	c := newTestFallback()

	// Contains "paid" but the account phrasing must take priority.
	result := c.Classify(context.Background(), "create a bank account for what I paid", models.LanguageEnglish, nil)

	assert.Equal(t, models.IntentCreateAccount, result.Intent)
	assert.Equal(t, string(models.AccountBank), result.Entities[models.EntityAccountType])
}

func TestFallbackCreateAccountWithInitialBalance(t *testing.T) {
	c := newTestFallback()

	result := c.Classify(context.Background(), "open a cash account with 1000", models.LanguageEnglish, nil)

	require.Equal(t, models.IntentCreateAccount, result.Intent)
	assert.Equal(t, string(models.AccountCash), result.Entities[models.EntityAccountType])
	assert.Equal(t, 1000.0, result.Entities[models.EntityInitialBalance])
}

func TestFallbackIncome(t *testing.T) {
	c := newTestFallback()

	result := c.Classify(context.Background(), "قبضت المرتب 5000 جنيه", models.LanguageArabic, nil)

	assert.Equal(t, models.IntentLogIncome, result.Intent)
	assert.Equal(t, 5000.0, result.Entities[models.EntityAmount])
}

func TestFallbackViewAccounts(t *testing.T) {
	c := newTestFallback()

	for _, message := range []string{"show my accounts", "حساباتي"} {
		result := c.Classify(context.Background(), message, models.LanguageEnglish, nil)
		assert.Equal(t, models.IntentViewAccounts, result.Intent, "message %q", message)
	}
}

func TestFallbackNoMatchIsUnknown(t *testing.T) {
	c := newTestFallback()

	result := c.Classify(context.Background(), "how is the weather today", models.LanguageEnglish, nil)

	assert.Equal(t, models.IntentUnknown, result.Intent)
}

func TestFallbackAlwaysReturnsValidResult(t *testing.T) {
	c := newTestFallback()

	messages := []string{
		"",
		"paid",
		"delete my bank account",
		"rename account to savings",
		"received 300",
		"؟؟؟",
	}
	for _, message := range messages {
		result := c.Classify(context.Background(), message, models.LanguageEnglish, nil)
		assert.True(t, result.Intent.Valid(), "message %q produced intent %q", message, result.Intent)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	}
}
