package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Item is one line of an order.
type Item struct {
	name     string
	quantity int
	price    decimal.Decimal
}

// NewItem requires a name, a quantity of at least one and a non-negative price.
func NewItem(name string, quantity int, price decimal.Decimal) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, errs.NewValueIsRequiredError("items.name")
	}
	if quantity < 1 {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("items.quantity",
			fmt.Errorf("%d is less than 1", quantity))
	}
	if price.IsNegative() {
		return Item{}, errs.NewValueIsInvalidErrorWithCause("items.price",
			fmt.Errorf("%s is negative", price))
	}
	return Item{name: name, quantity: quantity, price: price}, nil
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) Price() decimal.Decimal {
	return i.price
}
