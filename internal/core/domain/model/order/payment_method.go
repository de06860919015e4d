package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// PaymentMethod is how the customer pays on delivery.
type PaymentMethod string

const (
	Cash   PaymentMethod = "cash"
	Card   PaymentMethod = "card"
	Wallet PaymentMethod = "wallet"
)

// ParsePaymentMethod accepts cash, card or wallet in any letter case.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

func (m PaymentMethod) Validate() error {
	switch m {
	case Cash, Card, Wallet:
		return nil
	case "":
		return errs.NewValueIsRequiredError("paymentMethod")
	default:
		return errs.NewValueIsInvalidErrorWithCause("paymentMethod",
			fmt.Errorf("%q is not one of cash, card, wallet", string(m)))
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}
