package normalize

import (
	"testing"

	"github.com/masroufy/masroufy/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccounts() []models.Account {
	return []models.Account{
		{ID: "a1", Name: "Cash", Type: models.AccountCash},
		{ID: "a2", Name: "CIB Bank", Type: models.AccountBank},
		{ID: "a3", Name: "Vodafone Wallet", Type: models.AccountWallet},
	}
}

func TestResolveAccountByNameHint(t *testing.T) {
	match := ResolveAccount("cib", testAccounts())
	require.NotNil(t, match.Account)
	assert.Equal(t, "a2", match.Account.ID)
	assert.Equal(t, ResolvedByName, match.Method)
}

func TestResolveAccountHintContainsName(t *testing.T) {
	// The hint may be longer than the stored name ("my cash account"
	// against "Cash" still resolves).
	match := ResolveAccount("my cash account", testAccounts())
	require.NotNil(t, match.Account)
	assert.Equal(t, "a1", match.Account.ID)
	assert.Equal(t, ResolvedByName, match.Method)
}

func TestResolveAccountFallsBackToDefault(t *testing.T) {
	accounts := testAccounts()
	accounts[1].IsDefault = true

	match := ResolveAccount("", accounts)
	require.NotNil(t, match.Account)
	assert.Equal(t, "a2", match.Account.ID)
	assert.Equal(t, ResolvedByDefault, match.Method)
}

func TestResolveAccountSoleAccountAutoSelects(t *testing.T) {
	accounts := testAccounts()[:1]

	match := ResolveAccount("", accounts)
	require.NotNil(t, match.Account)
	assert.Equal(t, "a1", match.Account.ID)
	assert.Equal(t, ResolvedSoleAccount, match.Method)
}

func TestResolveAccountAmbiguous(t *testing.T) {
	match := ResolveAccount("", testAccounts())
	assert.Nil(t, match.Account)
	assert.Equal(t, ResolutionNone, match.Method)
}

func TestResolveAccountUnmatchedHintWithoutDefault(t *testing.T) {
	match := ResolveAccount("paypal", testAccounts())
	assert.Nil(t, match.Account)
	assert.Equal(t, ResolutionNone, match.Method)
}
