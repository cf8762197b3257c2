package usecase

import (
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/discshop/internal/domain/errors"
)

func TestValidateShipping(t *testing.T) {
	full := ShippingDetails{Name: "Jan", Phone: "+48", StreetAddress: "ul. Prosta 1", City: "Warszawa", State: "mazowieckie", PostalCode: "00-001"}
	if err := ValidateShipping(full); err != nil {
		t.Fatalf("valid shipping rejected: %v", err)
	}

	optional := full
	optional.Phone = ""
	optional.State = ""
	if err := ValidateShipping(optional); err != nil {
		t.Fatalf("phone and state are optional: %v", err)
	}

	cases := []struct {
		name  string
		strip func(*ShippingDetails)
	}{
		{"name", func(s *ShippingDetails) { s.Name = "" }},
		{"street", func(s *ShippingDetails) { s.StreetAddress = "" }},
		{"city", func(s *ShippingDetails) { s.City = "" }},
		{"postal code", func(s *ShippingDetails) { s.PostalCode = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := full
			tc.strip(&s)
			if err := ValidateShipping(s); !errors.Is(err, domainErrors.ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestValidateLines(t *testing.T) {
	if err := ValidateLines([]LineInput{{ProductName: "Aja", UnitAmount: 4200, Quantity: 1}}); err != nil {
		t.Fatalf("valid lines rejected: %v", err)
	}
	if err := ValidateLines(nil); !errors.Is(err, domainErrors.ErrMissingField) {
		t.Fatalf("expected ErrMissingField for empty lines, got %v", err)
	}
	if err := ValidateLines([]LineInput{{UnitAmount: 100, Quantity: 1}}); !errors.Is(err, domainErrors.ErrMissingField) {
		t.Fatalf("expected ErrMissingField for unnamed product, got %v", err)
	}
	if err := ValidateLines([]LineInput{{ProductName: "Aja", UnitAmount: 0, Quantity: 1}}); !errors.Is(err, domainErrors.ErrInvalidLine) {
		t.Fatalf("expected ErrInvalidLine for free line, got %v", err)
	}
	if err := ValidateLines([]LineInput{{ProductName: "Aja", UnitAmount: 100, Quantity: -1}}); !errors.Is(err, domainErrors.ErrInvalidLine) {
		t.Fatalf("expected ErrInvalidLine for negative quantity, got %v", err)
	}
}
