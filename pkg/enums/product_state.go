package enums

import "fmt"

// ProductState records how the goods left the counter (kept frozen or fried
// on the spot). It lives on the sale, not on individual items.
type ProductState string

const (
	ProductStateFrozen ProductState = "congelado"
	ProductStateFried  ProductState = "frito"
)

var validProductStates = []ProductState{
	ProductStateFrozen,
	ProductStateFried,
}

// String implements fmt.Stringer.
func (p ProductState) String() string {
	return string(p)
}

// Label returns the customer-facing badge text.
func (p ProductState) Label() string {
	switch p {
	case ProductStateFried:
		return "FRITO"
	case ProductStateFrozen:
		return "CONGELADO"
	}
	return string(p)
}

// IsValid reports whether the value is a known ProductState.
func (p ProductState) IsValid() bool {
	for _, candidate := range validProductStates {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductState converts raw input into a ProductState.
func ParseProductState(value string) (ProductState, error) {
	for _, candidate := range validProductStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product state %q", value)
}
