package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/masroufy/masroufy/internal/metrics"
	"github.com/masroufy/masroufy/internal/models"
	"github.com/masroufy/masroufy/internal/normalize"
	"github.com/masroufy/masroufy/internal/repository"
	"github.com/masroufy/masroufy/internal/router"
	"go.uber.org/zap"
)

// --- free-text continuations ---

func (o *Orchestrator) handleConversationReply(ctx context.Context, userID, chatID int64, state *models.ConversationState, text string) {
	lang := state.Language

	switch state.StateType {
	case models.StateAwaitingAccountName:
		name := strings.TrimSpace(text)
		if name == "" {
			o.send(ctx, chatID, msgAskAccountName(lang))
			return
		}
		o.clearState(ctx, userID)
		initialBalance, _ := entityFloat(state.StateData, dataInitialBalance)
		id, err := o.confirmations.Create(ctx, userID, models.ActionCreateAccount, map[string]interface{}{
			dataName:           name,
			dataType:           string(models.AccountCash),
			dataInitialBalance: initialBalance,
		}, lang, o.cfg.ConfirmationTTL)
		if err != nil {
			o.logger.Error("Failed to create pending action", zap.Error(err), zap.Int64("user_id", userID))
			o.send(ctx, chatID, msgGenericError(lang))
			return
		}
		o.sendConfirm(ctx, userID, chatID, lang, msgConfirmCreateAccount(lang, name, models.AccountCash, initialBalance), tokenConfirmAccount+id, id)

	case models.StateAwaitingAmount:
		amount, ok := parseAmountText(text)
		if !ok || amount <= 0 {
			// Keep the state so the user can just retype the number.
			o.send(ctx, chatID, msgInvalidAmount(lang))
			return
		}
		o.clearState(ctx, userID)
		o.buildTransactionPending(ctx, userID, chatID, lang,
			models.TransactionKind(entityString(state.StateData, dataKind)), amount,
			entityString(state.StateData, dataCategory),
			entityString(state.StateData, dataDescription),
			entityString(state.StateData, dataDate),
			entityString(state.StateData, dataAccountName))

	case models.StateAwaitingCategory:
		pendingID := entityString(state.StateData, dataPendingID)
		category := o.matchCategoryReply(text)
		if category == "" {
			o.send(ctx, chatID, msgPickCategory(lang))
			return
		}
		o.clearState(ctx, userID)
		o.mergeAndAdvanceTx(ctx, userID, chatID, lang, pendingID, map[string]interface{}{dataCategory: category})

	case models.StateAwaitingNewBalance:
		amount, ok := parseAmountText(text)
		if !ok {
			o.send(ctx, chatID, msgInvalidAmount(lang))
			return
		}
		pendingID := entityString(state.StateData, dataPendingID)
		o.clearState(ctx, userID)
		pending, err := o.confirmations.Get(ctx, pendingID)
		if err != nil {
			o.logger.Error("Failed to read pending action", zap.Error(err), zap.String("pending_id", pendingID))
			o.send(ctx, chatID, msgGenericError(lang))
			return
		}
		if pending == nil {
			o.send(ctx, chatID, msgExpired(lang))
			return
		}
		if err := o.confirmations.Update(ctx, pendingID, map[string]interface{}{dataNewBalance: amount}); err != nil {
			o.logger.Error("Failed to update pending action", zap.Error(err), zap.String("pending_id", pendingID))
			o.send(ctx, chatID, msgGenericError(lang))
			return
		}
		accountName := entityString(pending.ActionData, dataAccountName)
		o.sendConfirm(ctx, userID, chatID, lang, msgConfirmBalance(lang, accountName, amount), tokenConfirmAccount+pendingID, pendingID)

	default:
		o.clearState(ctx, userID)
		o.send(ctx, chatID, msgDidNotUnderstand(lang))
	}
}

// matchCategoryReply maps a typed category answer to the closed set: a
// literal category name first, then the keyword tables.
func (o *Orchestrator) matchCategoryReply(text string) string {
	candidate := strings.ToLower(strings.TrimSpace(text))
	if o.validCategory(candidate) {
		return candidate
	}
	if match := normalize.AssignCategory(text, o.cfg.Categories); match.Category != "" {
		return match.Category
	}
	return ""
}

func (o *Orchestrator) clearState(ctx context.Context, userID int64) {
	if err := o.conversations.Clear(ctx, userID); err != nil {
		o.logger.Error("Failed to clear conversation state", zap.Error(err), zap.Int64("user_id", userID))
	}
}

// --- callback handlers ---

func (o *Orchestrator) handleConfirmTx(ctx context.Context, cb *router.Callback) error {
	if len(cb.Params) != 1 {
		return fmt.Errorf("confirm_tx token carries %d params, want 1", len(cb.Params))
	}
	pending, err := o.loadPending(ctx, cb, cb.Params[0])
	if err != nil || pending == nil {
		return err
	}
	lang := pending.Language

	amount, _ := entityFloat(pending.ActionData, dataAmount)
	occurredAt, err := time.Parse(time.RFC3339, entityString(pending.ActionData, dataDate))
	if err != nil {
		occurredAt = o.now()
	}
	kind := models.TransactionExpense
	if pending.ActionType == models.ActionCreateIncome {
		kind = models.TransactionIncome
	}

	tx := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      pending.UserID,
		AccountID:   entityString(pending.ActionData, dataAccountID),
		Kind:        kind,
		Amount:      amount,
		Category:    entityString(pending.ActionData, dataCategory),
		Description: entityString(pending.ActionData, dataDescription),
		OccurredAt:  occurredAt,
		CreatedAt:   o.now(),
	}

	if err := o.finance.LogTransaction(ctx, tx); err != nil {
		o.reportMutationFailure(ctx, cb.ChatID, pending, err)
		return nil
	}

	o.consume(ctx, pending)
	o.send(ctx, cb.ChatID, msgDone(lang))
	return nil
}

func (o *Orchestrator) handleConfirmAccount(ctx context.Context, cb *router.Callback) error {
	if len(cb.Params) != 1 {
		return fmt.Errorf("confirm_account token carries %d params, want 1", len(cb.Params))
	}
	pending, err := o.loadPending(ctx, cb, cb.Params[0])
	if err != nil || pending == nil {
		return err
	}
	lang := pending.Language

	var mutationErr error
	switch pending.ActionType {
	case models.ActionCreateAccount:
		mutationErr = o.finance.CreateAccount(ctx, &models.Account{
			ID:        uuid.NewString(),
			UserID:    pending.UserID,
			Name:      entityString(pending.ActionData, dataName),
			Type:      models.AccountType(entityString(pending.ActionData, dataType)),
			Balance:   firstFloat(pending.ActionData, dataInitialBalance),
			Currency:  o.cfg.Currency,
			CreatedAt: o.now(),
		})
	case models.ActionEditAccount:
		accountID := entityString(pending.ActionData, dataAccountID)
		if newName := entityString(pending.ActionData, dataNewName); newName != "" {
			mutationErr = o.finance.RenameAccount(ctx, pending.UserID, accountID, newName)
		} else if newBalance, ok := entityFloat(pending.ActionData, dataNewBalance); ok {
			mutationErr = o.finance.SetAccountBalance(ctx, pending.UserID, accountID, newBalance)
		}
	case models.ActionDeleteAccount:
		mutationErr = o.finance.DeleteAccount(ctx, pending.UserID, entityString(pending.ActionData, dataAccountID))
	default:
		return fmt.Errorf("pending action %s has unexpected type %q", pending.ID, pending.ActionType)
	}

	if mutationErr != nil {
		o.reportMutationFailure(ctx, cb.ChatID, pending, mutationErr)
		return nil
	}

	o.consume(ctx, pending)
	o.send(ctx, cb.ChatID, msgDone(lang))
	return nil
}

func (o *Orchestrator) handleCancel(ctx context.Context, cb *router.Callback) error {
	if len(cb.Params) != 1 {
		return fmt.Errorf("cancel token carries %d params, want 1", len(cb.Params))
	}
	pending, err := o.loadPending(ctx, cb, cb.Params[0])
	if err != nil || pending == nil {
		return err
	}

	if err := o.confirmations.Delete(ctx, pending.ID); err != nil {
		o.logger.Error("Failed to delete pending action", zap.Error(err), zap.String("pending_id", pending.ID))
	}
	o.clearState(ctx, cb.UserID)
	metrics.ConfirmationsTotal.WithLabelValues("cancelled").Inc()
	o.send(ctx, cb.ChatID, msgCancelled(pending.Language))
	return nil
}

func (o *Orchestrator) handleSelectAccount(ctx context.Context, cb *router.Callback) error {
	if len(cb.Params) != 2 {
		return fmt.Errorf("select_account token carries %d params, want 2", len(cb.Params))
	}
	pendingID, accountID := cb.Params[0], cb.Params[1]

	pending, err := o.loadPending(ctx, cb, pendingID)
	if err != nil || pending == nil {
		return err
	}
	lang := pending.Language

	// The token's account id is user input as far as trust goes: re-check
	// it against the caller's own accounts.
	accounts, err := o.finance.ListAccounts(ctx, cb.UserID)
	if err != nil {
		o.send(ctx, cb.ChatID, msgGenericError(lang))
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	var selected *models.Account
	for i := range accounts {
		if accounts[i].ID == accountID {
			selected = &accounts[i]
			break
		}
	}
	if selected == nil {
		o.send(ctx, cb.ChatID, msgAccountMissing(lang))
		return nil
	}

	merge := map[string]interface{}{
		dataAccountID:   selected.ID,
		dataAccountName: selected.Name,
	}
	if err := o.confirmations.Update(ctx, pendingID, merge); err != nil {
		o.send(ctx, cb.ChatID, msgGenericError(lang))
		return fmt.Errorf("failed to update pending action: %w", err)
	}
	pending.ActionData = mergedCopy(pending.ActionData, merge)

	switch pending.ActionType {
	case models.ActionCreateExpense, models.ActionCreateIncome:
		o.promptTxStep(ctx, cb.UserID, cb.ChatID, pending)
	case models.ActionEditAccount:
		o.promptEditStep(ctx, cb.UserID, cb.ChatID, lang, pending.ID, pending.ActionData)
	case models.ActionDeleteAccount:
		o.sendConfirm(ctx, cb.UserID, cb.ChatID, lang, msgConfirmDelete(lang, selected.Name), tokenConfirmAccount+pending.ID, pending.ID)
	}
	return nil
}

func (o *Orchestrator) handleSelectCategory(ctx context.Context, cb *router.Callback) error {
	if len(cb.Params) != 2 {
		return fmt.Errorf("select_category token carries %d params, want 2", len(cb.Params))
	}
	pendingID, category := cb.Params[0], cb.Params[1]
	if !o.validCategory(category) {
		return fmt.Errorf("select_category token names unknown category %q", category)
	}

	pending, err := o.loadPending(ctx, cb, pendingID)
	if err != nil || pending == nil {
		return err
	}

	o.clearState(ctx, cb.UserID)
	o.mergeAndAdvanceTx(ctx, cb.UserID, cb.ChatID, pending.Language, pendingID, map[string]interface{}{dataCategory: category})
	return nil
}

// mergeAndAdvanceTx patches a transaction pending action and re-runs the
// next-step decision.
func (o *Orchestrator) mergeAndAdvanceTx(ctx context.Context, userID, chatID int64, lang models.Language, pendingID string, merge map[string]interface{}) {
	if err := o.confirmations.Update(ctx, pendingID, merge); err != nil {
		o.logger.Error("Failed to update pending action", zap.Error(err), zap.String("pending_id", pendingID))
		o.send(ctx, chatID, msgGenericError(lang))
		return
	}
	pending, err := o.confirmations.Get(ctx, pendingID)
	if err != nil {
		o.logger.Error("Failed to read pending action", zap.Error(err), zap.String("pending_id", pendingID))
		o.send(ctx, chatID, msgGenericError(lang))
		return
	}
	if pending == nil {
		o.send(ctx, chatID, msgExpired(lang))
		return
	}
	o.promptTxStep(ctx, userID, chatID, pending)
}

// loadPending fetches a pending action for a callback. A nil return with a
// nil error means the action is gone (consumed, cancelled or expired) and
// the user has already been told to resend.
func (o *Orchestrator) loadPending(ctx context.Context, cb *router.Callback, id string) (*models.PendingAction, error) {
	pending, err := o.confirmations.Get(ctx, id)
	if err != nil {
		// A store failure is not an expiry: the action may still be live,
		// so do not invite the user to resend it.
		o.send(ctx, cb.ChatID, msgGenericErrorUnknownLang())
		return nil, fmt.Errorf("failed to read pending action %s: %w", id, err)
	}
	if pending == nil {
		metrics.ConfirmationsTotal.WithLabelValues("expired").Inc()
		o.send(ctx, cb.ChatID, msgExpiredUnknownLang())
		return nil, nil
	}
	if pending.UserID != cb.UserID {
		// Tokens are delivered back by the transport; a mismatch means a
		// forwarded or replayed button, not this user's action.
		o.logger.Warn("Callback user does not own pending action",
			zap.String("pending_id", id),
			zap.Int64("callback_user", cb.UserID),
			zap.Int64("owner", pending.UserID))
		o.send(ctx, cb.ChatID, msgExpiredUnknownLang())
		return nil, nil
	}
	return pending, nil
}

// consume deletes a pending action after its mutation succeeded, along with
// the conversation slot anchoring it.
func (o *Orchestrator) consume(ctx context.Context, pending *models.PendingAction) {
	if err := o.confirmations.Delete(ctx, pending.ID); err != nil {
		o.logger.Error("Failed to delete consumed pending action",
			zap.Error(err), zap.String("pending_id", pending.ID))
	}
	o.clearState(ctx, pending.UserID)
	metrics.ConfirmationsTotal.WithLabelValues("confirmed").Inc()
}

// reportMutationFailure tells the user and decides the pending action's
// fate: transient-looking failures keep it so the same confirm button can
// retry, anything else discards it.
func (o *Orchestrator) reportMutationFailure(ctx context.Context, chatID int64, pending *models.PendingAction, err error) {
	transient := repository.IsTransient(err)
	o.logger.Error("Mutation failed",
		zap.Error(err),
		zap.String("pending_id", pending.ID),
		zap.String("action_type", string(pending.ActionType)),
		zap.Bool("kept_for_retry", transient))
	if !transient {
		if delErr := o.confirmations.Delete(ctx, pending.ID); delErr != nil {
			o.logger.Error("Failed to delete pending action", zap.Error(delErr), zap.String("pending_id", pending.ID))
		}
		o.clearState(ctx, pending.UserID)
	}
	o.send(ctx, chatID, msgGenericError(pending.Language))
}

func firstFloat(data map[string]interface{}, key string) float64 {
	value, _ := entityFloat(data, key)
	return value
}

func mergedCopy(base, partial map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(partial))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}
