package usecase

import (
	"fmt"

	domainErrors "github.com/polkiloo/discshop/internal/domain/errors"
)

// ValidateShipping checks the address block captured at order placement.
func ValidateShipping(s ShippingDetails) error {
	if s.Name == "" || s.StreetAddress == "" || s.City == "" || s.PostalCode == "" {
		return fmt.Errorf("%w: shipping details", domainErrors.ErrMissingField)
	}
	return nil
}

// ValidateLines checks line items submitted at order placement.
func ValidateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: order lines", domainErrors.ErrMissingField)
	}
	for _, line := range lines {
		if line.ProductName == "" {
			return fmt.Errorf("%w: product name", domainErrors.ErrMissingField)
		}
		if line.Quantity <= 0 || line.UnitAmount <= 0 {
			return fmt.Errorf("%w: %q", domainErrors.ErrInvalidLine, line.ProductName)
		}
	}
	return nil
}
