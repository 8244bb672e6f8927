package normalize

import (
	"strings"

	"github.com/masroufy/masroufy/internal/models"
)

// ResolutionMethod records how an account reference was resolved.
type ResolutionMethod string

const (
	ResolvedByName      ResolutionMethod = "exact_name"
	ResolvedByDefault   ResolutionMethod = "default"
	ResolvedSoleAccount ResolutionMethod = "sole_account"
	ResolutionNone      ResolutionMethod = "none"
)

// AccountMatch is the transient result of resolving an account reference.
// When Method is ResolutionNone the caller must present a selection menu.
type AccountMatch struct {
	Account *models.Account
	Method  ResolutionMethod
}

// ResolveAccount picks the account a message refers to. Resolution order:
// case-insensitive substring match on the name hint, then the user's default
// account, then a sole account auto-selects itself. Anything else is
// ambiguous.
func ResolveAccount(hint string, accounts []models.Account) AccountMatch {
	hint = strings.ToLower(strings.TrimSpace(hint))

	if hint != "" {
		for i := range accounts {
			name := strings.ToLower(accounts[i].Name)
			if strings.Contains(name, hint) || strings.Contains(hint, name) {
				return AccountMatch{Account: &accounts[i], Method: ResolvedByName}
			}
		}
	}

	for i := range accounts {
		if accounts[i].IsDefault {
			return AccountMatch{Account: &accounts[i], Method: ResolvedByDefault}
		}
	}

	if len(accounts) == 1 {
		return AccountMatch{Account: &accounts[0], Method: ResolvedSoleAccount}
	}

	return AccountMatch{Method: ResolutionNone}
}
