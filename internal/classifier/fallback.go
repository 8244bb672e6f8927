package classifier

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/masroufy/masroufy/internal/metrics"
	"github.com/masroufy/masroufy/internal/models"
	"github.com/masroufy/masroufy/internal/normalize"
	"go.uber.org/zap"
)

// FallbackClassifier is the deterministic regex path used whenever the NLU
// backend is unavailable or returns garbage. Its confidence ceiling sits
// below the AI path's typical output so downstream thresholding sends its
// results through confirmation more readily.
type FallbackClassifier struct {
	rules  []fallbackRule
	table  normalize.KeywordTable
	logger *zap.Logger
}

type fallbackRule struct {
	intent     models.Intent
	confidence float64
	pattern    *regexp.Regexp
}

// Rule order matters: account management phrases often contain spending
// vocabulary ("create account, I paid 500 in"), so account rules run first.
var defaultRules = []fallbackRule{
	{models.IntentCreateAccount, 0.7, regexp.MustCompile(`(?i)(create|open|add|new)\s+(\w+\s+){0,2}account|حساب جديد|(انشئ|أنشئ|انشاء|إنشاء|افتح|اضف|أضف)\s+حساب`)},
	{models.IntentDeleteAccount, 0.7, regexp.MustCompile(`(?i)(delete|remove|close)\s+(\w+\s+){0,2}account|(امسح|احذف|اقفل)\s+حساب`)},
	{models.IntentEditAccount, 0.65, regexp.MustCompile(`(?i)(rename|edit|update)\s+(\w+\s+){0,2}account|change\s+.*(balance|name)|(عدل|غير|غيّر)\s+(اسم\s+)?(حساب|رصيد)`)},
	{models.IntentViewAccounts, 0.7, regexp.MustCompile(`(?i)(my|show|list|view)\s+accounts?|balances?\b|حساباتي|أرصدتي|ارصدتي|رصيدي|(اعرض|أعرض|وريني)\s+(الحسابات|حساباتي)`)},
	{models.IntentLogIncome, 0.65, regexp.MustCompile(`(?i)received|earned|got\s+paid|salary|paycheck|income|قبضت|استلمت|جالي|مرتب|راتب|معاش|دخل`)},
	{models.IntentLogExpense, 0.65, regexp.MustCompile(`(?i)spent|paid|bought|purchased|cost|دفعت|صرفت|اشتريت|اتكلفت|خسرت`)},
}

var (
	amountPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	// Arabic-Indic digits normalize to ASCII before amount extraction.
	arabicDigits = strings.NewReplacer(
		"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
		"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
		"٫", ".",
	)
	accountTypePatterns = map[models.AccountType]*regexp.Regexp{
		models.AccountCash:   regexp.MustCompile(`(?i)cash|كاش|نقدي|نقد`),
		models.AccountBank:   regexp.MustCompile(`(?i)bank|بنك|بنكي`),
		models.AccountWallet: regexp.MustCompile(`(?i)wallet|محفظة|فودافون كاش`),
		models.AccountCredit: regexp.MustCompile(`(?i)credit|فيزا|ائتمان|بطاقة`),
	}
)

func NewFallbackClassifier(table normalize.KeywordTable, logger *zap.Logger) *FallbackClassifier {
	if table == nil {
		table = normalize.DefaultKeywords
	}
	return &FallbackClassifier{rules: defaultRules, table: table, logger: logger}
}

// Classify matches the ordered rule list and extracts what it can. It never
// invents an amount: a monetary trigger with no number in the text downgrades
// to unknown rather than defaulting the amount to zero.
func (c *FallbackClassifier) Classify(_ context.Context, message string, lang models.Language, _ []HistoryMessage) models.IntentResult {
	normalized := arabicDigits.Replace(message)

	for _, rule := range c.rules {
		if !rule.pattern.MatchString(normalized) {
			continue
		}

		entities := map[string]interface{}{}
		amount, hasAmount := firstAmount(normalized)

		if rule.intent.Monetary() {
			if !hasAmount {
				c.logger.Debug("fallback matched monetary intent without amount",
					zap.String("intent", string(rule.intent)))
				return models.Unknown(lang)
			}
			entities[models.EntityAmount] = amount
			entities[models.EntityDate] = message
			if match := normalize.AssignCategory(message, c.table); match.Category != "" {
				entities[models.EntityCategory] = match.Category
			}
		}

		switch rule.intent {
		case models.IntentCreateAccount:
			if accountType, ok := detectAccountType(normalized); ok {
				entities[models.EntityAccountType] = string(accountType)
			}
			if hasAmount {
				entities[models.EntityInitialBalance] = amount
			}
		case models.IntentEditAccount:
			if hasAmount {
				entities[models.EntityNewBalance] = amount
			}
		}

		result := models.IntentResult{
			Intent:     rule.intent,
			Confidence: rule.confidence,
			Entities:   entities,
			Language:   lang,
		}
		metrics.ClassificationsTotal.WithLabelValues(string(result.Intent), "fallback").Inc()
		return result
	}

	return models.Unknown(lang)
}

// firstAmount returns the first decimal number in the text.
func firstAmount(text string) (float64, bool) {
	raw := amountPattern.FindString(text)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func detectAccountType(text string) (models.AccountType, bool) {
	for accountType, pattern := range accountTypePatterns {
		if pattern.MatchString(text) {
			return accountType, true
		}
	}
	return "", false
}
