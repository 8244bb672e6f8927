package models

// Intent is the closed-set classification of what the user wants.
type Intent string

const (
	IntentCreateAccount Intent = "create_account"
	IntentEditAccount   Intent = "edit_account"
	IntentDeleteAccount Intent = "delete_account"
	IntentViewAccounts  Intent = "view_accounts"
	IntentLogExpense    Intent = "log_expense"
	IntentLogIncome     Intent = "log_income"
	IntentUnknown       Intent = "unknown"
)

// AllIntents lists every member of the closed intent set, including unknown.
var AllIntents = []Intent{
	IntentCreateAccount,
	IntentEditAccount,
	IntentDeleteAccount,
	IntentViewAccounts,
	IntentLogExpense,
	IntentLogIncome,
	IntentUnknown,
}

// Valid reports whether i is a member of the closed intent set.
func (i Intent) Valid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// Monetary reports whether the intent requires a numeric amount entity.
func (i Intent) Monetary() bool {
	return i == IntentLogExpense || i == IntentLogIncome
}

// Language is the detected language of a user message.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// Entity map keys shared between the classifier and the orchestrator.
const (
	EntityAmount         = "amount"
	EntityCategory       = "category"
	EntityDescription    = "description"
	EntityDate           = "date"
	EntityAccountName    = "accountName"
	EntityAccountType    = "accountType"
	EntityInitialBalance = "initialBalance"
	EntityNewName        = "newName"
	EntityNewBalance     = "newBalance"
	EntityAccountID      = "accountId"
)

// IntentResult is the outcome of classifying a single message. It lives for
// one request only; the orchestrator copies entities into a PendingAction
// when an operation needs confirmation.
type IntentResult struct {
	Intent     Intent                 `json:"intent"`
	Confidence float64                `json:"confidence"`
	Entities   map[string]interface{} `json:"entities"`
	Language   Language               `json:"language"`
}

// Unknown returns the zero-confidence result for text the classifier could
// not place anywhere in the intent set.
func Unknown(lang Language) IntentResult {
	return IntentResult{
		Intent:     IntentUnknown,
		Confidence: 0,
		Entities:   map[string]interface{}{},
		Language:   lang,
	}
}
