package enums

import "fmt"

// SaleStatus tracks a sale through its lifecycle. Cash sales are completed at
// checkout; credit sales start pending and are settled or cancelled later.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCancelled SaleStatus = "cancelled"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusCompleted,
	SaleStatusPending,
	SaleStatusCancelled,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status change is allowed. Only pending
// sales move; completed and cancelled are terminal.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	if s != SaleStatusPending {
		return false
	}
	return next == SaleStatusCompleted || next == SaleStatusCancelled
}

// ParseSaleStatus converts raw input into a SaleStatus.
func ParseSaleStatus(value string) (SaleStatus, error) {
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
