package types

import "math/big"

// Account holds the spendable balance for an address on the host ledger. The
// escrow engine moves value between accounts and its own custodial vault
// account through the state manager.
type Account struct {
	Balance *big.Int
}

// NewAccount returns an account with a zero balance.
func NewAccount() *Account {
	return &Account{Balance: big.NewInt(0)}
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	clone := &Account{Balance: big.NewInt(0)}
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	return clone
}
