// Package orchestrator decides what each classified message means for the
// user's money: execute immediately, ask a clarifying question, or park the
// operation behind an explicit confirm/cancel step.
package orchestrator

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/masroufy/masroufy/internal/classifier"
	"github.com/masroufy/masroufy/internal/models"
	"github.com/masroufy/masroufy/internal/normalize"
	"github.com/masroufy/masroufy/internal/repository"
	"github.com/masroufy/masroufy/internal/router"
	"github.com/masroufy/masroufy/internal/storage"
	"go.uber.org/zap"
)

// Callback token prefixes. The callback router matches these in
// registration order, so none may be a prefix of an earlier one.
const (
	tokenConfirmAccount = "confirm_account_"
	tokenConfirmTx      = "confirm_tx_"
	tokenCancel         = "cancel_"
	tokenSelectAccount  = "select_account_"
	tokenSelectCategory = "select_category_"
)

// Pending-action and conversation-state data keys.
const (
	dataKind           = "kind"
	dataAmount         = models.EntityAmount
	dataCategory       = models.EntityCategory
	dataDescription    = models.EntityDescription
	dataDate           = models.EntityDate
	dataAccountID      = models.EntityAccountID
	dataAccountName    = models.EntityAccountName
	dataName           = "name"
	dataType           = models.EntityAccountType
	dataInitialBalance = models.EntityInitialBalance
	dataNewName        = models.EntityNewName
	dataNewBalance     = models.EntityNewBalance
	dataPendingID      = "pendingId"
)

// Config carries the orchestrator's tunables. The confidence threshold is
// uniform across flows; below it the orchestrator never guesses.
type Config struct {
	ConfidenceThreshold float64
	ConfirmationTTL     time.Duration
	ConversationTTL     time.Duration
	HistoryDepth        int
	HistoryTTL          time.Duration
	Currency            string
	Categories          normalize.KeywordTable
}

type Orchestrator struct {
	classifier    classifier.Classifier
	confirmations storage.ConfirmationStore
	conversations storage.ConversationStore
	finance       repository.Finance
	responder     Responder
	callbacks     *router.CallbackRouter
	history       *classifier.HistoryBuffer
	cfg           Config
	logger        *zap.Logger
	now           func() time.Time
}

func New(clf classifier.Classifier, confirmations storage.ConfirmationStore, conversations storage.ConversationStore, finance repository.Finance, responder Responder, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.Categories == nil {
		cfg.Categories = normalize.DefaultKeywords
	}
	if cfg.Currency == "" {
		cfg.Currency = "EGP"
	}

	o := &Orchestrator{
		classifier:    clf,
		confirmations: confirmations,
		conversations: conversations,
		finance:       finance,
		responder:     responder,
		callbacks:     router.NewCallbackRouter(logger),
		history:       classifier.NewHistoryBuffer(cfg.HistoryDepth, cfg.HistoryTTL),
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}

	o.callbacks.HandlePrefix(tokenConfirmAccount, o.handleConfirmAccount)
	o.callbacks.HandlePrefix(tokenConfirmTx, o.handleConfirmTx)
	o.callbacks.HandlePrefix(tokenCancel, o.handleCancel)
	o.callbacks.HandlePrefix(tokenSelectAccount, o.handleSelectAccount)
	o.callbacks.HandlePrefix(tokenSelectCategory, o.handleSelectCategory)

	return o
}

// HandleMessage processes one inbound free-text message. It never returns
// an error: the ingress boundary must always acknowledge, so every failure
// ends in a logged error and a user-visible reply at worst.
func (o *Orchestrator) HandleMessage(ctx context.Context, userID, chatID int64, text string) {
	lang := classifier.DetectLanguage(text)

	if cmd, ok := router.DetectCommand(text); ok {
		o.handleCommand(ctx, userID, chatID, lang, cmd)
		return
	}

	// Snapshot the rolling window before recording this turn: the message
	// itself goes to the classifier separately.
	recent := o.history.Recent(userID)
	o.history.Append(userID, classifier.RoleUser, text)

	state, err := o.conversations.Get(ctx, userID)
	if err != nil {
		o.logger.Error("Failed to read conversation state",
			zap.Error(err), zap.Int64("user_id", userID))
	}
	if state != nil && state.StateType == models.StateAwaitingConfirmation {
		// The user typed past a button prompt: start over on the new
		// message and leave the pending action to its TTL.
		o.clearState(ctx, userID)
		state = nil
	}
	if state != nil {
		o.handleConversationReply(ctx, userID, chatID, state, text)
		return
	}

	result := o.classifier.Classify(ctx, text, lang, recent)
	o.logger.Info("Message classified",
		zap.String("intent", string(result.Intent)),
		zap.Float64("confidence", result.Confidence),
		zap.Int64("user_id", userID))

	if result.Intent == models.IntentUnknown || result.Confidence < o.cfg.ConfidenceThreshold {
		o.send(ctx, chatID, msgDidNotUnderstand(lang))
		return
	}

	switch result.Intent {
	case models.IntentViewAccounts:
		o.showAccounts(ctx, userID, chatID, result.Language)
	case models.IntentCreateAccount:
		o.startCreateAccount(ctx, userID, chatID, result)
	case models.IntentEditAccount:
		o.startEditAccount(ctx, userID, chatID, result)
	case models.IntentDeleteAccount:
		o.startDeleteAccount(ctx, userID, chatID, result)
	case models.IntentLogExpense:
		o.startTransaction(ctx, userID, chatID, result, models.TransactionExpense)
	case models.IntentLogIncome:
		o.startTransaction(ctx, userID, chatID, result, models.TransactionIncome)
	default:
		o.send(ctx, chatID, msgDidNotUnderstand(result.Language))
	}
}

// HandleCallback routes one inline-button press.
func (o *Orchestrator) HandleCallback(ctx context.Context, cb *router.Callback) {
	o.callbacks.Route(ctx, cb)
}

func (o *Orchestrator) handleCommand(ctx context.Context, userID, chatID int64, lang models.Language, cmd router.Command) {
	switch cmd {
	case router.CommandStart:
		o.send(ctx, chatID, msgWelcome(lang))
	case router.CommandHelp:
		o.send(ctx, chatID, msgHelp(lang))
	case router.CommandAccounts:
		o.showAccounts(ctx, userID, chatID, lang)
	case router.CommandCancel:
		state, err := o.conversations.Get(ctx, userID)
		if err != nil {
			o.logger.Error("Failed to read conversation state", zap.Error(err), zap.Int64("user_id", userID))
		}
		if state == nil {
			o.send(ctx, chatID, msgNothingToCancel(lang))
			return
		}
		if id, ok := state.StateData[dataPendingID].(string); ok {
			if err := o.confirmations.Delete(ctx, id); err != nil {
				o.logger.Error("Failed to delete pending action", zap.Error(err), zap.String("pending_id", id))
			}
		}
		if err := o.conversations.Clear(ctx, userID); err != nil {
			o.logger.Error("Failed to clear conversation state", zap.Error(err), zap.Int64("user_id", userID))
		}
		o.send(ctx, chatID, msgCancelled(lang))
	}
}

func (o *Orchestrator) showAccounts(ctx context.Context, userID, chatID int64, lang models.Language) {
	accounts, err := o.finance.ListAccounts(ctx, userID)
	if err != nil {
		o.logger.Error("Failed to list accounts", zap.Error(err), zap.Int64("user_id", userID))
		o.send(ctx, chatID, msgGenericError(lang))
		return
	}
	if len(accounts) == 0 {
		o.send(ctx, chatID, msgNoAccounts(lang))
		return
	}
	o.send(ctx, chatID, msgAccountList(lang, accounts))
}

func (o *Orchestrator) startCreateAccount(ctx context.Context, userID, chatID int64, result models.IntentResult) {
	lang := result.Language
	name := strings.TrimSpace(entityString(result.Entities, models.EntityAccountName))
	accountType := models.AccountType(entityString(result.Entities, models.EntityAccountType))
	initialBalance, _ := entityFloat(result.Entities, models.EntityInitialBalance)

	if initialBalance < 0 {
		o.send(ctx, chatID, msgInvalidAmount(lang))
		return
	}

	if name == "" && accountType == "" {
		o.setState(ctx, userID, chatID, models.StateAwaitingAccountName, map[string]interface{}{
			dataInitialBalance: initialBalance,
		}, lang, msgAskAccountName(lang))
		return
	}
	if accountType == "" {
		accountType = models.AccountCash
	}
	if name == "" {
		name = defaultAccountName(lang, accountType)
	}

	id, err := o.confirmations.Create(ctx, userID, models.ActionCreateAccount, map[string]interface{}{
		dataName:           name,
		dataType:           string(accountType),
		dataInitialBalance: initialBalance,
	}, lang, o.cfg.ConfirmationTTL)
	if err != nil {
		o.logger.Error("Failed to create pending action", zap.Error(err), zap.Int64("user_id", userID))
		o.send(ctx, chatID, msgGenericError(lang))
		return
	}

	o.sendConfirm(ctx, userID, chatID, lang, msgConfirmCreateAccount(lang, name, accountType, initialBalance), tokenConfirmAccount+id, id)
}

func (o *Orchestrator) startEditAccount(ctx context.Context, userID, chatID int64, result models.IntentResult) {
	lang := result.Language
	newName := strings.TrimSpace(entityString(result.Entities, models.EntityNewName))
	newBalance, hasNewBalance := entityFloat(result.Entities, models.EntityNewBalance)

	accounts, ok := o.listAccountsOrReply(ctx, userID, chatID, lang)
	if !ok {
		return
	}

	data := map[string]interface{}{}
	if newName != "" {
		data[dataNewName] = newName
	}
	if hasNewBalance {
		data[dataNewBalance] = newBalance
	}

	match := normalize.ResolveAccount(entityString(result.Entities, models.EntityAccountName), accounts)
	if match.Account != nil {
		data[dataAccountID] = match.Account.ID
		data[dataAccountName] = match.Account.Name
	}

	id, err := o.confirmations.Create(ctx, userID, models.ActionEditAccount, data, lang, o.cfg.ConfirmationTTL)
	if err != nil {
		o.logger.Error("Failed to create pending action", zap.Error(err), zap.Int64("user_id", userID))
		o.send(ctx, chatID, msgGenericError(lang))
		return
	}

	if match.Account == nil {
		o.sendAccountMenu(ctx, userID, chatID, lang, id, accounts)
		return
	}
	o.promptEditStep(ctx, userID, chatID, lang, id, data)
}

func (o *Orchestrator) startDeleteAccount(ctx context.Context, userID, chatID int64, result models.IntentResult) {
	lang := result.Language

	accounts, ok := o.listAccountsOrReply(ctx, userID, chatID, lang)
	if !ok {
		return
	}

	data := map[string]interface{}{}
	match := normalize.ResolveAccount(entityString(result.Entities, models.EntityAccountName), accounts)
	if match.Account != nil {
		data[dataAccountID] = match.Account.ID
		data[dataAccountName] = match.Account.Name
	}

	id, err := o.confirmations.Create(ctx, userID, models.ActionDeleteAccount, data, lang, o.cfg.ConfirmationTTL)
	if err != nil {
		o.logger.Error("Failed to create pending action", zap.Error(err), zap.Int64("user_id", userID))
		o.send(ctx, chatID, msgGenericError(lang))
		return
	}

	if match.Account == nil {
		o.sendAccountMenu(ctx, userID, chatID, lang, id, accounts)
		return
	}
	o.sendConfirm(ctx, userID, chatID, lang, msgConfirmDelete(lang, match.Account.Name), tokenConfirmAccount+id, id)
}

func (o *Orchestrator) startTransaction(ctx context.Context, userID, chatID int64, result models.IntentResult, kind models.TransactionKind) {
	lang := result.Language

	amount, hasAmount := entityFloat(result.Entities, models.EntityAmount)
	if !hasAmount {
		o.setState(ctx, userID, chatID, models.StateAwaitingAmount, map[string]interface{}{
			dataKind:        string(kind),
			dataCategory:    entityString(result.Entities, models.EntityCategory),
			dataDescription: entityString(result.Entities, models.EntityDescription),
			dataDate:        entityString(result.Entities, models.EntityDate),
			dataAccountName: entityString(result.Entities, models.EntityAccountName),
		}, lang, msgAskAmount(lang))
		return
	}
	if amount <= 0 {
		o.send(ctx, chatID, msgInvalidAmount(lang))
		return
	}

	o.buildTransactionPending(ctx, userID, chatID, lang, kind, amount,
		entityString(result.Entities, models.EntityCategory),
		entityString(result.Entities, models.EntityDescription),
		entityString(result.Entities, models.EntityDate),
		entityString(result.Entities, models.EntityAccountName))
}

// buildTransactionPending snapshots everything known about the transaction
// into a pending action, then walks the remaining steps: category selection,
// account selection, final confirmation.
func (o *Orchestrator) buildTransactionPending(ctx context.Context, userID, chatID int64, lang models.Language, kind models.TransactionKind, amount float64, category, description, datePhrase, accountHint string) {
	if category != "" && !o.validCategory(category) {
		category = ""
	}
	occurred := normalize.ParseRelativeDate(datePhrase)

	accounts, ok := o.listAccountsOrReply(ctx, userID, chatID, lang)
	if !ok {
		return
	}

	data := map[string]interface{}{
		dataKind:        string(kind),
		dataAmount:      amount,
		dataCategory:    category,
		dataDescription: description,
		dataDate:        occurred.Format(time.RFC3339),
	}

	match := normalize.ResolveAccount(accountHint, accounts)
	if match.Account != nil {
		data[dataAccountID] = match.Account.ID
		data[dataAccountName] = match.Account.Name
	}

	id, err := o.confirmations.Create(ctx, userID, kindToAction(kind), data, lang, o.cfg.ConfirmationTTL)
	if err != nil {
		o.logger.Error("Failed to create pending action", zap.Error(err), zap.Int64("user_id", userID))
		o.send(ctx, chatID, msgGenericError(lang))
		return
	}

	if category == "" {
		o.setState(ctx, userID, chatID, models.StateAwaitingCategory, map[string]interface{}{
			dataPendingID: id,
		}, lang, "")
		o.sendCategoryMenu(ctx, chatID, lang, id)
		return
	}
	if match.Account == nil {
		o.sendAccountMenu(ctx, userID, chatID, lang, id, accounts)
		return
	}
	o.sendConfirm(ctx, userID, chatID, lang, msgConfirmTx(lang, kind, amount, category, match.Account.Name), tokenConfirmTx+id, id)
}

// promptTxStep re-derives the next step for a transaction pending action
// after a selection merged new data into it.
func (o *Orchestrator) promptTxStep(ctx context.Context, userID, chatID int64, pending *models.PendingAction) {
	lang := pending.Language
	category := entityString(pending.ActionData, dataCategory)
	if category == "" {
		o.setState(ctx, userID, chatID, models.StateAwaitingCategory, map[string]interface{}{
			dataPendingID: pending.ID,
		}, lang, "")
		o.sendCategoryMenu(ctx, chatID, lang, pending.ID)
		return
	}
	if entityString(pending.ActionData, dataAccountID) == "" {
		accounts, ok := o.listAccountsOrReply(ctx, userID, chatID, lang)
		if !ok {
			return
		}
		o.sendAccountMenu(ctx, userID, chatID, lang, pending.ID, accounts)
		return
	}

	amount, _ := entityFloat(pending.ActionData, dataAmount)
	kind := models.TransactionKind(entityString(pending.ActionData, dataKind))
	accountName := entityString(pending.ActionData, dataAccountName)
	o.sendConfirm(ctx, userID, chatID, lang, msgConfirmTx(lang, kind, amount, category, accountName), tokenConfirmTx+pending.ID, pending.ID)
}

// promptEditStep asks for whatever the edit-account pending action still
// lacks: an account, a change to apply, or the final confirmation.
func (o *Orchestrator) promptEditStep(ctx context.Context, userID, chatID int64, lang models.Language, pendingID string, data map[string]interface{}) {
	accountName := entityString(data, dataAccountName)
	newName := entityString(data, dataNewName)
	newBalance, hasNewBalance := entityFloat(data, dataNewBalance)

	switch {
	case newName != "":
		o.sendConfirm(ctx, userID, chatID, lang, msgConfirmRename(lang, accountName, newName), tokenConfirmAccount+pendingID, pendingID)
	case hasNewBalance:
		o.sendConfirm(ctx, userID, chatID, lang, msgConfirmBalance(lang, accountName, newBalance), tokenConfirmAccount+pendingID, pendingID)
	default:
		o.setState(ctx, userID, chatID, models.StateAwaitingNewBalance, map[string]interface{}{
			dataPendingID: pendingID,
		}, lang, msgAskNewBalance(lang))
	}
}

func (o *Orchestrator) listAccountsOrReply(ctx context.Context, userID, chatID int64, lang models.Language) ([]models.Account, bool) {
	accounts, err := o.finance.ListAccounts(ctx, userID)
	if err != nil {
		o.logger.Error("Failed to list accounts", zap.Error(err), zap.Int64("user_id", userID))
		o.send(ctx, chatID, msgGenericError(lang))
		return nil, false
	}
	if len(accounts) == 0 {
		o.send(ctx, chatID, msgNoAccounts(lang))
		return nil, false
	}
	return accounts, true
}

func (o *Orchestrator) sendConfirm(ctx context.Context, userID, chatID int64, lang models.Language, text, confirmToken, pendingID string) {
	o.anchorPending(ctx, userID, lang, pendingID)
	rows := [][]Button{{
		{Label: labelConfirm(lang), Token: confirmToken},
		{Label: labelCancel(lang), Token: tokenCancel + pendingID},
	}}
	if err := o.responder.SendKeyboard(ctx, chatID, text, rows); err != nil {
		o.logger.Error("Failed to send confirmation prompt", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

// anchorPending points the user's conversation slot at the pending action so
// /cancel can discard it even though no free-text reply is expected.
func (o *Orchestrator) anchorPending(ctx context.Context, userID int64, lang models.Language, pendingID string) {
	if err := o.conversations.Set(ctx, userID, models.StateAwaitingConfirmation, map[string]interface{}{
		dataPendingID: pendingID,
	}, lang, o.cfg.ConversationTTL); err != nil {
		o.logger.Error("Failed to set conversation state",
			zap.Error(err), zap.Int64("user_id", userID))
	}
}

func (o *Orchestrator) sendAccountMenu(ctx context.Context, userID, chatID int64, lang models.Language, pendingID string, accounts []models.Account) {
	o.anchorPending(ctx, userID, lang, pendingID)
	rows := make([][]Button, 0, len(accounts)+1)
	for _, account := range accounts {
		rows = append(rows, []Button{{
			Label: account.Name,
			Token: tokenSelectAccount + pendingID + router.Delimiter + account.ID,
		}})
	}
	rows = append(rows, []Button{{Label: labelCancel(lang), Token: tokenCancel + pendingID}})
	if err := o.responder.SendKeyboard(ctx, chatID, msgPickAccount(lang), rows); err != nil {
		o.logger.Error("Failed to send account menu", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (o *Orchestrator) sendCategoryMenu(ctx context.Context, chatID int64, lang models.Language, pendingID string) {
	categories := make([]string, 0, len(o.cfg.Categories))
	for category := range o.cfg.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rows := make([][]Button, 0, len(categories)/2+2)
	var row []Button
	for _, category := range categories {
		row = append(row, Button{
			Label: category,
			Token: tokenSelectCategory + pendingID + router.Delimiter + category,
		})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{{Label: labelCancel(lang), Token: tokenCancel + pendingID}})

	if err := o.responder.SendKeyboard(ctx, chatID, msgPickCategory(lang), rows); err != nil {
		o.logger.Error("Failed to send category menu", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (o *Orchestrator) setState(ctx context.Context, userID, chatID int64, stateType models.StateType, stateData map[string]interface{}, lang models.Language, prompt string) {
	if err := o.conversations.Set(ctx, userID, stateType, stateData, lang, o.cfg.ConversationTTL); err != nil {
		o.logger.Error("Failed to set conversation state",
			zap.Error(err), zap.Int64("user_id", userID), zap.String("state", string(stateType)))
		o.send(ctx, chatID, msgGenericError(lang))
		return
	}
	if prompt != "" {
		o.send(ctx, chatID, prompt)
	}
}

func (o *Orchestrator) send(ctx context.Context, chatID int64, text string) {
	if err := o.responder.SendMessage(ctx, chatID, text); err != nil {
		o.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}

func (o *Orchestrator) validCategory(category string) bool {
	_, ok := o.cfg.Categories[category]
	return ok
}

func kindToAction(kind models.TransactionKind) models.ActionType {
	if kind == models.TransactionIncome {
		return models.ActionCreateIncome
	}
	return models.ActionCreateExpense
}

func defaultAccountName(lang models.Language, accountType models.AccountType) string {
	names := map[models.AccountType][2]string{
		models.AccountCash:   {"Cash", "كاش"},
		models.AccountBank:   {"Bank", "بنك"},
		models.AccountWallet: {"Wallet", "محفظة"},
		models.AccountCredit: {"Credit", "بطاقة ائتمان"},
	}
	pair, ok := names[accountType]
	if !ok {
		return string(accountType)
	}
	return pick(lang, pair[0], pair[1])
}

// parseAmountText parses a free-text numeric answer to a clarifying
// question, accepting comma decimals.
func parseAmountText(text string) (float64, bool) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	amount, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
