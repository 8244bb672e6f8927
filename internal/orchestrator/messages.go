package orchestrator

import (
	"fmt"
	"strings"

	"github.com/masroufy/masroufy/internal/models"
)

// User-facing copy. Presentation stays minimal: the orchestrator decides
// what to say, the transport renders it.

func pick(lang models.Language, en, ar string) string {
	if lang == models.LanguageArabic {
		return ar
	}
	return en
}

func msgWelcome(lang models.Language) string {
	return pick(lang,
		"Welcome to Masroufy! Tell me about your expenses and income in plain words, like \"paid 50 for coffee\", and I'll keep track. Use /help for more.",
		"أهلاً بك في مصروفي! اكتب مصاريفك ودخلك بكلامك العادي، مثلاً \"دفعت 50 على القهوة\"، وأنا أتابعها لك. اكتب /help للمزيد.")
}

func msgHelp(lang models.Language) string {
	return pick(lang,
		`You can write things like:
- "paid 50 for coffee"
- "got my salary 5000"
- "create cash account with 500"
- "show my accounts"

Commands:
/accounts - list your accounts
/cancel - cancel the current operation
/help - this message`,
		`تقدر تكتب حاجات زي:
- "دفعت 50 على القهوة"
- "قبضت المرتب 5000"
- "افتح حساب كاش فيه 500"
- "اعرض حساباتي"

الأوامر:
/accounts - عرض حساباتك
/cancel - إلغاء العملية الحالية
/help - هذه الرسالة`)
}

func msgCancelled(lang models.Language) string {
	return pick(lang, "Cancelled. Nothing was saved.", "تم الإلغاء. لم يتم حفظ أي شيء.")
}

func msgNothingToCancel(lang models.Language) string {
	return pick(lang, "There is nothing to cancel.", "لا يوجد شيء لإلغائه.")
}

func msgDidNotUnderstand(lang models.Language) string {
	return pick(lang,
		"I didn't quite get that. Try something like \"paid 50 for coffee\" or /help.",
		"لم أفهم قصدك. جرب مثلاً \"دفعت 50 على القهوة\" أو اكتب /help.")
}

func msgExpired(lang models.Language) string {
	return pick(lang,
		"This request has expired. Please send it again.",
		"انتهت صلاحية هذا الطلب. من فضلك أرسله من جديد.")
}

// msgExpiredUnknownLang covers callbacks whose pending action is already
// gone, taking its language with it.
func msgExpiredUnknownLang() string {
	return msgExpired(models.LanguageEnglish) + "\n" + msgExpired(models.LanguageArabic)
}

func msgGenericError(lang models.Language) string {
	return pick(lang,
		"Something went wrong, please try again.",
		"حدث خطأ ما، من فضلك حاول مرة أخرى.")
}

// msgGenericErrorUnknownLang covers failures before the pending action,
// and with it the user's language, could be read.
func msgGenericErrorUnknownLang() string {
	return msgGenericError(models.LanguageEnglish) + "\n" + msgGenericError(models.LanguageArabic)
}

func msgInvalidAmount(lang models.Language) string {
	return pick(lang,
		"The amount must be a positive number.",
		"المبلغ يجب أن يكون رقماً أكبر من صفر.")
}

func msgAskAmount(lang models.Language) string {
	return pick(lang, "How much was it?", "كم كان المبلغ؟")
}

func msgAskAccountName(lang models.Language) string {
	return pick(lang,
		"What do you want to name the new account?",
		"ماذا تريد أن تسمي الحساب الجديد؟")
}

func msgAskNewBalance(lang models.Language) string {
	return pick(lang,
		"What should the new balance be?",
		"ما هو الرصيد الجديد؟")
}

func msgPickCategory(lang models.Language) string {
	return pick(lang,
		"I couldn't tell the category. Pick one:",
		"لم أستطع تحديد التصنيف. اختر واحداً:")
}

func msgPickAccount(lang models.Language) string {
	return pick(lang, "Which account?", "أي حساب؟")
}

func msgNoAccounts(lang models.Language) string {
	return pick(lang,
		"You don't have any accounts yet. Try \"create cash account with 500\".",
		"ليس لديك أي حسابات بعد. جرب \"افتح حساب كاش فيه 500\".")
}

func msgAccountMissing(lang models.Language) string {
	return pick(lang,
		"I couldn't find that account anymore.",
		"لم أعد أجد هذا الحساب.")
}

func msgDone(lang models.Language) string {
	return pick(lang, "Done ✅", "تم ✅")
}

func msgConfirmTx(lang models.Language, kind models.TransactionKind, amount float64, category, accountName string) string {
	if category == "" {
		category = pick(lang, "uncategorized", "بدون تصنيف")
	}
	if lang == models.LanguageArabic {
		verb := "مصروف"
		if kind == models.TransactionIncome {
			verb = "دخل"
		}
		return fmt.Sprintf("تسجيل %s بمبلغ %.2f (%s) في حساب %s؟", verb, amount, category, accountName)
	}
	verb := "expense"
	if kind == models.TransactionIncome {
		verb = "income"
	}
	return fmt.Sprintf("Log %s of %.2f (%s) on account %s?", verb, amount, category, accountName)
}

func msgConfirmCreateAccount(lang models.Language, name string, accountType models.AccountType, initialBalance float64) string {
	return pick(lang,
		fmt.Sprintf("Create %s account \"%s\" with balance %.2f?", accountType, name, initialBalance),
		fmt.Sprintf("إنشاء حساب %s باسم \"%s\" برصيد %.2f؟", accountType, name, initialBalance))
}

func msgConfirmRename(lang models.Language, oldName, newName string) string {
	return pick(lang,
		fmt.Sprintf("Rename account \"%s\" to \"%s\"?", oldName, newName),
		fmt.Sprintf("تغيير اسم الحساب \"%s\" إلى \"%s\"؟", oldName, newName))
}

func msgConfirmBalance(lang models.Language, name string, balance float64) string {
	return pick(lang,
		fmt.Sprintf("Set balance of \"%s\" to %.2f?", name, balance),
		fmt.Sprintf("تعديل رصيد \"%s\" إلى %.2f؟", name, balance))
}

func msgConfirmDelete(lang models.Language, name string) string {
	return pick(lang,
		fmt.Sprintf("Delete account \"%s\" and all its transactions?", name),
		fmt.Sprintf("حذف حساب \"%s\" وكل معاملاته؟", name))
}

func msgAccountList(lang models.Language, accounts []models.Account) string {
	var b strings.Builder
	b.WriteString(pick(lang, "Your accounts:\n", "حساباتك:\n"))
	for _, account := range accounts {
		marker := ""
		if account.IsDefault {
			marker = pick(lang, " (default)", " (افتراضي)")
		}
		fmt.Fprintf(&b, "- %s: %.2f %s%s\n", account.Name, account.Balance, account.Currency, marker)
	}
	return b.String()
}

func labelConfirm(lang models.Language) string { return pick(lang, "✅ Confirm", "✅ تأكيد") }
func labelCancel(lang models.Language) string  { return pick(lang, "❌ Cancel", "❌ إلغاء") }
