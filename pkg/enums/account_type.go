package enums

import "fmt"

// AccountType distinguishes immediate settlement from deferred (credit) sales.
// Cash sales decrement stock at checkout; credit sales leave stock untouched
// and are reconciled by back-office action later.
type AccountType string

const (
	AccountTypeCash   AccountType = "cash"
	AccountTypeCredit AccountType = "credit"
)

var validAccountTypes = []AccountType{
	AccountTypeCash,
	AccountTypeCredit,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountType.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
